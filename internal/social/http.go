// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

package social

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bookshelfie/shelfie/internal/platform/middleware"
	requestutil "github.com/bookshelfie/shelfie/internal/platform/request"
	"github.com/bookshelfie/shelfie/internal/platform/respond"
	"github.com/bookshelfie/shelfie/internal/platform/validate"
)

// # Definitions & Constructors

// FieldAddresseeID names the addressee payload field in validation errors.
const FieldAddresseeID = "addressee_id"

// booksPerFriendDefault bounds how many books the feed lists per friend.
const booksPerFriendDefault = 3

// Handler implements social HTTP endpoints.
type Handler struct {
	socialService *Service
	feedCap       int
}

// NewHandler constructs a new [Handler] with its service dependency.
//
// feedCap bounds the number of distinct friends in the grouped feed.
func NewHandler(service *Service, feedCap int) *Handler {
	return &Handler{socialService: service, feedCap: feedCap}
}

// Routes returns a [chi.Router] configured with friendship routes.
//
// Mounted at /api/v1/friends.
//
// # Endpoints
//   - GET    /                     : List accepted friends.
//   - DELETE /{id}                 : Remove a friend.
//   - GET    /reading              : Grouped friends-reading feed.
//   - POST   /requests             : Send a friend request.
//   - GET    /requests             : List incoming pending requests.
//   - POST   /requests/{id}/accept : Accept a request.
//   - DELETE /requests/{id}        : Decline or cancel a request.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.listFriends)
	router.Delete("/{id}", handler.removeFriend)
	router.Get("/reading", handler.feed)
	router.Post("/requests", handler.sendRequest)
	router.Get("/requests", handler.listIncoming)
	router.Post("/requests/{id}/accept", handler.acceptRequest)
	router.Delete("/requests/{id}", handler.declineRequest)

	return router
}

// # Request Payloads

type sendRequestRequest struct {
	AddresseeID string `json:"addressee_id"`
}

/*
SendRequest sends a friend request to another member.

POST /api/v1/friends/requests

Request:
  - Body: sendRequestRequest (addressee_id required)

Response:
  - 201: Friendship: Pending edge
  - 400: ErrInvalidJSON: Validation failure
  - 409: ErrConflict: Edge already exists in either orientation
  - 422: Unprocessable: Self-friending
*/
func (handler *Handler) sendRequest(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input sendRequestRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldAddresseeID, input.AddresseeID).
		UUID(FieldAddresseeID, input.AddresseeID)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	friendship, err := handler.socialService.SendRequest(request.Context(), userID, input.AddresseeID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, friendship)
}

/*
ListIncoming returns pending requests addressed to the member.

GET /api/v1/friends/requests

Response:
  - 200: []FriendRequest
*/
func (handler *Handler) listIncoming(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	requests, err := handler.socialService.ListIncoming(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if requests == nil {
		requests = []FriendRequest{}
	}

	respond.OK(writer, requests)
}

/*
AcceptRequest accepts a pending friend request.

POST /api/v1/friends/requests/{id}/accept

Response:
  - 200: Friendship: Accepted edge
  - 403: ErrForbidden: Caller is not the addressee
  - 404: ErrNotFound: Unknown request
*/
func (handler *Handler) acceptRequest(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	friendship, err := handler.socialService.AcceptRequest(request.Context(), userID, requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, friendship)
}

/*
DeclineRequest declines a request, or cancels one the caller sent.

DELETE /api/v1/friends/requests/{id}

Response:
  - 204: No Content: Request removed
  - 403: ErrForbidden: Caller is not part of the request
  - 404: ErrNotFound: Unknown request
*/
func (handler *Handler) declineRequest(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.socialService.DeclineRequest(request.Context(), userID, requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
ListFriends returns the member's accepted friends.

GET /api/v1/friends

Response:
  - 200: []Member
*/
func (handler *Handler) listFriends(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	friends, err := handler.socialService.ListFriends(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if friends == nil {
		friends = []Member{}
	}

	respond.OK(writer, friends)
}

/*
RemoveFriend severs a friendship.

DELETE /api/v1/friends/{id}

Response:
  - 204: No Content: Friendship removed
  - 404: ErrNotFound: No edge between the members
*/
func (handler *Handler) removeFriend(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.socialService.RemoveFriend(request.Context(), userID, requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
Feed returns the grouped friends-reading view.

GET /api/v1/friends/reading

Response:
  - 200: []FeedEntry: Possibly empty; social storage failures degrade to empty
*/
func (handler *Handler) feed(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	entries, err := handler.socialService.FriendsFeed(request.Context(), userID, handler.feedCap, booksPerFriendDefault)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entries)
}

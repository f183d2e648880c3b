// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

package shelf

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bookshelfie/shelfie/internal/platform/middleware"
	requestutil "github.com/bookshelfie/shelfie/internal/platform/request"
	"github.com/bookshelfie/shelfie/internal/platform/respond"
	"github.com/bookshelfie/shelfie/internal/platform/validate"
	"github.com/bookshelfie/shelfie/pkg/pagination"
)

// # Definitions & Constructors

// Handler implements shelf-related HTTP endpoints.
type Handler struct {
	shelfService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{shelfService: service}
}

// Routes returns a [chi.Router] configured with shelf-specific routes.
//
// # Endpoints
//   - GET    /                 : Paginated shelf (all or filtered by status).
//   - POST   /                 : Start tracking a book.
//   - PATCH  /{id}/progress    : Report a reading position.
//   - POST   /{id}/complete    : Mark a book as finished.
//   - GET    /{id}/share-card  : Share-card payload.
//   - DELETE /{id}             : Remove a book.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.list)
	router.Post("/", handler.add)
	router.Patch("/{id}/progress", handler.updateProgress)
	router.Post("/{id}/complete", handler.complete)
	router.Get("/{id}/share-card", handler.shareCard)
	router.Delete("/{id}", handler.remove)

	return router
}

// # Request Payloads

type addBookRequest struct {
	Title      string `json:"title"`
	Author     string `json:"author"`
	CoverURL   string `json:"cover_url"`
	OpenLibID  string `json:"openlib_id"`
	TotalPages int    `json:"total_pages"`
}

type updateProgressRequest struct {
	CurrentPage *int `json:"current_page"`
	Percentage  *int `json:"percentage"`
}

/*
List returns the authenticated member's shelf.

GET /api/v1/shelf/books?status=reading&page=1&limit=20

Response:
  - 200: []Book with pagination metadata
  - 400: ErrInvalidJSON: Unknown status filter
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	status := requestutil.Query(request, "status")
	if status != "" {
		v := &validate.Validator{}
		v.OneOf("status", status, string(StatusReading), string(StatusFinished))
		if err := v.Err(); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	page := pagination.FromRequest(request)

	books, meta, err := handler.shelfService.ListShelf(request.Context(), userID, BookStatus(status), page)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, books, meta)
}

/*
Add starts tracking a new book.

POST /api/v1/shelf/books

Request:
  - Body: addBookRequest (Title required; TotalPages 0 allowed for unknown counts)

Response:
  - 201: Book: Created entry at 0%
  - 400: ErrInvalidJSON: Validation failure
  - 403: LIMIT_EXCEEDED: Free-tier active-book cap reached
*/
func (handler *Handler) add(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input addBookRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldTitle, input.Title).
		MaxLen(FieldTitle, input.Title, 300).
		MaxLen(FieldAuthor, input.Author, 200).
		Custom(FieldTotalPages, input.TotalPages < 0, "Must not be negative")

	if input.CoverURL != "" {
		validator.URL(FieldCoverURL, input.CoverURL)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := handler.shelfService.AddBook(request.Context(), userID, AddBookInput{
		Title:      input.Title,
		Author:     input.Author,
		CoverURL:   input.CoverURL,
		OpenLibID:  input.OpenLibID,
		TotalPages: input.TotalPages,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, book)
}

/*
UpdateProgress records a new reading position.

PATCH /api/v1/shelf/books/{id}/progress

Request:
  - Body: updateProgressRequest (CurrentPage and/or Percentage)

Response:
  - 200: Book: Entry with recomputed progress_percent
  - 400: ErrInvalidJSON: Neither field provided or out-of-range percentage
  - 404: ErrNotFound: Unknown or foreign book
*/
func (handler *Handler) updateProgress(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateProgressRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Custom(FieldCurrentPage, input.CurrentPage == nil && input.Percentage == nil,
		"Provide current_page or percentage")

	if input.CurrentPage != nil {
		validator.Custom(FieldCurrentPage, *input.CurrentPage < 0, "Must not be negative")
	}
	if input.Percentage != nil {
		validator.Range(FieldPercentage, *input.Percentage, 0, 100)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := handler.shelfService.UpdateProgress(request.Context(), userID, requestutil.Param(request, "id"), UpdateProgressInput{
		CurrentPage: input.CurrentPage,
		Percentage:  input.Percentage,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, book)
}

/*
Complete marks a book as finished.

POST /api/v1/shelf/books/{id}/complete

Response:
  - 200: Book: Finished entry pinned to 100%
  - 404: ErrNotFound: Unknown or foreign book
*/
func (handler *Handler) complete(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := handler.shelfService.CompleteBook(request.Context(), userID, requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, book)
}

/*
ShareCard returns the share payload for a shelf entry.

GET /api/v1/shelf/books/{id}/share-card

Response:
  - 200: ShareCard: Title, cover, progress, and link slug
  - 404: ErrNotFound: Unknown or foreign book
*/
func (handler *Handler) shareCard(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	card, err := handler.shelfService.BuildShareCard(request.Context(), userID, requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, card)
}

/*
Remove deletes a shelf entry.

DELETE /api/v1/shelf/books/{id}

Response:
  - 204: No Content: Entry removed
  - 404: ErrNotFound: Unknown or foreign book
*/
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.shelfService.RemoveBook(request.Context(), userID, requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

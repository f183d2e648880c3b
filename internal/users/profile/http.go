// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

package profile

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bookshelfie/shelfie/internal/platform/middleware"
	requestutil "github.com/bookshelfie/shelfie/internal/platform/request"
	"github.com/bookshelfie/shelfie/internal/platform/respond"
	"github.com/bookshelfie/shelfie/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements profile-related HTTP endpoints.
type Handler struct {
	profileService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{profileService: service}
}

// Routes returns a [chi.Router] configured with profile-specific routes.
//
// # Endpoints
//   - GET    /me      : The caller's private profile.
//   - PATCH  /me      : Partial profile update.
//   - DELETE /me      : Account soft-deletion.
//   - GET    /lookup  : Member directory lookup by phone.
//   - GET    /{id}    : A member's public profile.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/me", handler.getMe)
	router.Patch("/me", handler.updateMe)
	router.Delete("/me", handler.deleteMe)
	router.Get("/lookup", handler.lookup)
	router.Get("/{id}", handler.getPublic)

	return router
}

// # Request Payloads

type updateProfileRequest struct {
	DisplayName  *string       `json:"display_name"`
	Email        *string       `json:"email"`
	AvatarConfig *AvatarConfig `json:"avatar_config"`
}

/*
GetMe returns the authenticated user's private profile.

GET /api/v1/users/me

Response:
  - 200: User: Full private profile
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.profileService.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
UpdateMe applies a partial update to the authenticated user's profile.

PATCH /api/v1/users/me

Request:
  - Body: updateProfileRequest (DisplayName, Email, AvatarConfig; all optional)

Response:
  - 200: User: Updated private profile
  - 400: ErrInvalidJSON: Validation failure
  - 409: ErrConflict: Email already in use
*/
func (handler *Handler) updateMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateProfileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	if input.DisplayName != nil {
		validator.Required(FieldDisplayName, *input.DisplayName).
			MaxLen(FieldDisplayName, *input.DisplayName, 60)
	}
	if input.Email != nil && *input.Email != "" {
		validator.Email(FieldEmail, *input.Email)
	}
	if input.AvatarConfig != nil && input.AvatarConfig.Photo != "" {
		validator.URL(FieldAvatarConfig, input.AvatarConfig.Photo)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.profileService.UpdateProfile(request.Context(), userID, UpdateProfileInput{
		DisplayName:  input.DisplayName,
		Email:        input.Email,
		AvatarConfig: input.AvatarConfig,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
DeleteMe soft-deletes the authenticated user's account.

DELETE /api/v1/users/me

Response:
  - 204: No Content: Account deleted and sessions revoked
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) deleteMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.profileService.DeleteAccount(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
Lookup resolves a member's public profile by phone number.

GET /api/v1/users/lookup?phone=+14155550134

Description: Used by the add-friend flow. Only the public projection is
returned.

Response:
  - 200: PublicProfile: Matched member
  - 400: ErrInvalidJSON: Missing or malformed phone parameter
  - 404: ErrNotFound: No member with this number
*/
func (handler *Handler) lookup(writer http.ResponseWriter, request *http.Request) {
	phone := requestutil.Query(request, FieldPhone)

	v := &validate.Validator{}
	v.Required(FieldPhone, phone).Phone(FieldPhone, phone)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	member, err := handler.profileService.LookupByPhone(request.Context(), validate.NormalizePhone(phone))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, member)
}

/*
GetPublic returns a member's public profile by ID.

GET /api/v1/users/{id}

Response:
  - 200: PublicProfile: Matched member
  - 404: ErrNotFound: Unknown member
*/
func (handler *Handler) getPublic(writer http.ResponseWriter, request *http.Request) {
	memberID := requestutil.Param(request, "id")

	v := &validate.Validator{}
	v.UUID("id", memberID)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	member, err := handler.profileService.GetPublic(request.Context(), memberID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, member)
}

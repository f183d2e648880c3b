// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

package widget

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/bookshelfie/shelfie/internal/platform/request"
	"github.com/bookshelfie/shelfie/internal/platform/respond"
	"github.com/bookshelfie/shelfie/internal/platform/validate"
)

// FieldUserID names the user_id query parameter in validation errors.
const FieldUserID = "user_id"

// Handler implements the widget data endpoint.
type Handler struct {
	widgetService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{widgetService: service}
}

// Routes returns a [chi.Router] for the widget endpoint.
//
// # Endpoints
//   - GET / : Widget payload (unauthenticated, identified by user_id).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", handler.data)
	return router
}

/*
Data returns the widget payload for a member.

GET /api/widget-data?user_id={uuid}

Description: Unauthenticated by contract: deployed widget clients cannot
refresh tokens in the background, so they identify the owner by ID alone. The
response is the bare payload object, not the enveloped shape the v1 API uses.

Response:
  - 200: Payload: Bare object, possibly with empty sections
  - 400: ErrInvalidJSON: Missing or malformed user_id
  - 404: ErrNotFound: Unknown member
*/
func (handler *Handler) data(writer http.ResponseWriter, request *http.Request) {
	userID := requestutil.Query(request, FieldUserID)

	validator := &validate.Validator{}
	validator.Required(FieldUserID, userID)
	if userID != "" {
		validator.UUID(FieldUserID, userID)
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	payload, err := handler.widgetService.Payload(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Payload bytes are pre-marshaled; write them verbatim.
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(http.StatusOK)
	_, _ = writer.Write(payload)
}

// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bookshelfie/shelfie/internal/platform/middleware"
	requestutil "github.com/bookshelfie/shelfie/internal/platform/request"
	"github.com/bookshelfie/shelfie/internal/platform/respond"
	"github.com/bookshelfie/shelfie/internal/platform/validate"
)

// # Definitions & Constructors

// FieldQuery names the q query parameter in validation errors.
const FieldQuery = "q"

// defaultSearchLimit bounds results per search; catalog search backs an
// autocomplete UI, not a browse page.
const defaultSearchLimit = 20

// Handler implements catalog HTTP endpoints.
type Handler struct {
	searcher Searcher
}

// NewHandler constructs a new [Handler] with its search dependency.
func NewHandler(searcher Searcher) *Handler {
	return &Handler{searcher: searcher}
}

// Routes returns a [chi.Router] configured with catalog routes.
//
// # Endpoints
//   - GET /search : Free-text book search (authenticated).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/search", handler.search)

	return router
}

/*
Search proxies a free-text book search to the catalog.

GET /api/v1/catalog/search?q=dune

Response:
  - 200: []Book: Matches shaped for shelf pre-fill
  - 400: ErrInvalidJSON: Missing or oversized query
  - 502: UPSTREAM_UNAVAILABLE: Catalog unreachable
*/
func (handler *Handler) search(writer http.ResponseWriter, request *http.Request) {
	query := requestutil.Query(request, FieldQuery)

	validator := &validate.Validator{}
	validator.Required(FieldQuery, query).
		MaxLen(FieldQuery, query, 200)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	books, err := handler.searcher.Search(request.Context(), query, defaultSearchLimit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, books)
}

// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

package catalog_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookshelfie/shelfie/internal/catalog"
	"github.com/bookshelfie/shelfie/internal/platform/apperr"
)

/*
TestSearch_MapsResults verifies the Open Library response maps onto shelf
pre-fill fields.
*/
func TestSearch_MapsResults(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/search.json", request.URL.Path)
		assert.Equal(t, "dune", request.URL.Query().Get("q"))
		assert.Equal(t, "20", request.URL.Query().Get("limit"))

		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{
			"docs": [
				{
					"key": "/works/OL893415W",
					"title": "Dune",
					"author_name": ["Frank Herbert", "Someone Else"],
					"cover_i": 12345,
					"number_of_pages_median": 412,
					"first_publish_year": 1965
				},
				{
					"key": "/works/OL000001W",
					"title": "Anonymous Work"
				}
			]
		}`))
	}))
	defer upstream.Close()

	client := catalog.NewOpenLibraryClient(upstream.URL)

	books, err := client.Search(context.Background(), "dune", 20)
	require.NoError(t, err)
	require.Len(t, books, 2)

	assert.Equal(t, "OL893415W", books[0].OpenLibID)
	assert.Equal(t, "Dune", books[0].Title)
	assert.Equal(t, "Frank Herbert", books[0].Author, "only the primary author is kept")
	assert.Equal(t, "https://covers.openlibrary.org/b/id/12345-M.jpg", books[0].CoverURL)
	assert.Equal(t, 412, books[0].TotalPages)
	assert.Equal(t, 1965, books[0].FirstPublishYear)

	assert.Empty(t, books[1].Author)
	assert.Empty(t, books[1].CoverURL, "missing cover_i yields no cover URL")
	assert.Zero(t, books[1].TotalPages)
	assert.Zero(t, books[1].FirstPublishYear)
}

/*
TestSearch_UpstreamErrors verifies non-200 responses surface as an upstream
availability error, not a decode failure.
*/
func TestSearch_UpstreamErrors(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer upstream.Close()

	client := catalog.NewOpenLibraryClient(upstream.URL)

	_, err := client.Search(context.Background(), "dune", 20)
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "UPSTREAM_UNAVAILABLE", ae.Code)
}

/*
TestSearch_Unreachable verifies connection failures degrade the same way.
*/
func TestSearch_Unreachable(t *testing.T) {
	client := catalog.NewOpenLibraryClient("http://127.0.0.1:1")

	_, err := client.Search(context.Background(), "dune", 20)
	require.Error(t, err)
	assert.Equal(t, "UPSTREAM_UNAVAILABLE", apperr.As(err).Code)
}

// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bookshelfie/shelfie/internal/platform/apperr"
)

// # Open Library Client

const (
	searchTimeout = 5 * time.Second

	// coverBaseURL serves cover images by Open Library cover ID.
	coverBaseURL = "https://covers.openlibrary.org/b/id/"

	// searchFields trims the search response to what a shelf entry needs.
	searchFields = "key,title,author_name,cover_i,number_of_pages_median,first_publish_year"
)

// OpenLibraryClient implements [Searcher] against the Open Library API.
type OpenLibraryClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewOpenLibraryClient creates a client for the given Open Library origin.
func NewOpenLibraryClient(baseURL string) *OpenLibraryClient {
	return &OpenLibraryClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: searchTimeout,
		},
	}
}

// searchResponse mirrors the subset of the Open Library search payload the
// client reads.
type searchResponse struct {
	Docs []searchDoc `json:"docs"`
}

type searchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorNames      []string `json:"author_name"`
	CoverID          int      `json:"cover_i"`
	MedianPages      int      `json:"number_of_pages_median"`
	FirstPublishYear int      `json:"first_publish_year"`
}

/*
Search queries Open Library for books matching a free-text query.

Description: Results map onto shelf entry fields: the work key becomes the
stable openlib_id, the first listed author is kept, and the median page count
stands in for editions that disagree.

Parameters:
  - context: context.Context
  - query: string
  - limit: int

Returns:
  - []Book: Matching results, best first
  - error: apperr.UpstreamUnavailable when Open Library is unreachable
*/
func (client *OpenLibraryClient) Search(context context.Context, query string, limit int) ([]Book, error) {

	endpoint := fmt.Sprintf("%s/search.json?q=%s&limit=%d&fields=%s",
		client.baseURL, url.QueryEscape(query), limit, url.QueryEscape(searchFields))

	request, err := http.NewRequestWithContext(context, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("openlibrary_client_request_failed: %w", err)
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, apperr.UpstreamUnavailable("Open Library", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, apperr.UpstreamUnavailable("Open Library",
			fmt.Errorf("openlibrary_client_status: %d", response.StatusCode))
	}

	var decoded searchResponse
	if err := json.NewDecoder(response.Body).Decode(&decoded); err != nil {
		return nil, apperr.UpstreamUnavailable("Open Library", err)
	}

	books := make([]Book, 0, len(decoded.Docs))
	for _, doc := range decoded.Docs {
		books = append(books, Book{
			OpenLibID:        strings.TrimPrefix(doc.Key, "/works/"),
			Title:            doc.Title,
			Author:           firstAuthor(doc.AuthorNames),
			CoverURL:         coverURL(doc.CoverID),
			TotalPages:       doc.MedianPages,
			FirstPublishYear: doc.FirstPublishYear,
		})
	}

	return books, nil
}

// firstAuthor returns the primary author, or empty for anonymous works.
func firstAuthor(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

// coverURL builds a medium-size cover image URL, or empty when the work has
// no cover.
func coverURL(coverID int) string {
	if coverID <= 0 {
		return ""
	}
	return coverBaseURL + strconv.Itoa(coverID) + "-M.jpg"
}

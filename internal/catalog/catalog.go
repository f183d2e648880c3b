// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

/*
Package catalog proxies book search to Open Library.

Members search the catalog to pre-fill a shelf entry (title, author, cover,
page count) instead of typing it all by hand. Shelfie stores no catalog data
of its own; every search is a live proxy call, and a shelf entry keeps only
the fields the member imported.
*/
package catalog

import "context"

// Book is one catalog search result, shaped to pre-fill a shelf entry.
type Book struct {
	OpenLibID        string `json:"openlib_id"`
	Title            string `json:"title"`
	Author           string `json:"author,omitempty"`
	CoverURL         string `json:"cover_url,omitempty"`
	TotalPages       int    `json:"total_pages"`
	FirstPublishYear int    `json:"first_publish_year,omitempty"`
}

// Searcher defines the catalog lookup contract.
type Searcher interface {

	/*
		Search queries the catalog for books matching a free-text query.

		Parameters:
		  - context: context.Context
		  - query: string
		  - limit: int

		Returns:
		  - []Book: Matching results, best first
		  - error: apperr.UpstreamUnavailable when the catalog is unreachable
	*/
	Search(context context.Context, query string, limit int) ([]Book, error)
}

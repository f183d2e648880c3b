// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

/*
Package widget serves the home-screen widget payload.

The widget endpoint is polled by mobile home-screen clients on a fixed
interval, so it is the highest-traffic read path in the system. Responses are
cached in Redis and served WITHOUT the standard response envelope: the widget
clients shipped before the envelope existed and parse the bare object.

# Architecture

  - Composition: Owner identity, own shelf, and friends' reading are fetched
    concurrently from their owning services.
  - Resilience: Sub-fetch failures degrade to empty sections; only an unknown
    owner fails the request.
  - Caching: Whole marshaled payloads are cached per member with a short TTL.
*/
package widget

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bookshelfie/shelfie/internal/shelf"
	"github.com/bookshelfie/shelfie/internal/social"
	"github.com/bookshelfie/shelfie/internal/users/profile"
)

// # Payload Shapes

// Owner is the widget's view of the member it renders for.
type Owner struct {
	DisplayName  string          `json:"display_name"`
	AvatarConfig json.RawMessage `json:"avatar_config,omitempty"`
}

// OwnBook is one entry of the member's own currently-reading section.
//
// The widget decoder treats author as a required key, so it is emitted even
// when empty.
type OwnBook struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	CoverURL        string `json:"cover_url,omitempty"`
	TotalPages      int    `json:"total_pages"`
	CurrentPage     int    `json:"current_page"`
	ProgressPercent int    `json:"progress_percent"`
}

// FriendHighlight is one entry of the friends-reading section.
//
// current_page and total_pages are required keys in the widget decoder and
// must always be present, even at zero.
type FriendHighlight struct {
	FriendName      string          `json:"friend_name"`
	FriendAvatar    json.RawMessage `json:"friend_avatar,omitempty"`
	Title           string          `json:"title"`
	CoverURL        string          `json:"cover_url,omitempty"`
	TotalPages      int             `json:"total_pages"`
	CurrentPage     int             `json:"current_page"`
	ProgressPercent int             `json:"progress_percent"`
}

// Payload is the complete widget response body.
//
// Field names and nesting are frozen: deployed widget clients parse this
// shape directly.
type Payload struct {
	User             Owner             `json:"user"`
	CurrentlyReading []OwnBook         `json:"currently_reading"`
	FriendsReading   []FriendHighlight `json:"friends_reading"`
}

// # Data Source Contracts

// ProfileSource resolves the widget owner's public identity.
type ProfileSource interface {
	GetPublic(context context.Context, userID string) (*profile.PublicProfile, error)
}

// ShelfSource resolves the owner's actively-read books.
type ShelfSource interface {
	ListReading(context context.Context, userID string, limit int) ([]shelf.Book, error)
}

// SocialSource resolves what the owner's friends are reading.
type SocialSource interface {
	FriendsReading(context context.Context, userID string, limit int) ([]social.FriendBook, error)
}

// PayloadCache stores marshaled widget payloads keyed by member.
type PayloadCache interface {

	/*
		Get returns the cached payload bytes for a member.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - []byte: Marshaled payload
		  - error: apperr.NotFound on a cache miss
	*/
	Get(context context.Context, userID string) ([]byte, error)

	/*
		Set stores payload bytes for a member with a TTL.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - payload: []byte
		  - ttl: time.Duration

		Returns:
		  - error: Storage failures
	*/
	Set(context context.Context, userID string, payload []byte, ttl time.Duration) error
}

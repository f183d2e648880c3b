// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

/*
Package social implements friendships and the friends-reading feed.

A friendship is a single undirected row: one member requests, the other
accepts, and from then on both sides see each other symmetrically. Storing
one row per pair (instead of mirrored rows per direction) makes acceptance
atomic and removes an entire class of half-accepted states.

# Architecture

  - Entities: Friendship, Member (public projection), FriendBook (feed row).
  - Fan-out: Friend lists resolve to ID sets first; an empty set short-circuits
    without touching the shelf tables.
  - Resilience: Feed assembly degrades to an empty list on storage failure so
    a member's own shelf always renders.
*/
package social

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bookshelfie/shelfie/pkg/progress"
)

// # Domain Entities

// FriendshipStatus enumerates the lifecycle states of a friendship.
type FriendshipStatus string

const (
	// StatusPending marks a request awaiting the addressee's decision.
	StatusPending FriendshipStatus = "pending"
	// StatusAccepted marks an established friendship.
	StatusAccepted FriendshipStatus = "accepted"
)

// Friendship represents the undirected relationship between two members.
//
// RequesterID and AddresseeID record who initiated, which the UI needs to
// render "sent" versus "received" requests. Semantically the edge has no
// direction once accepted.
type Friendship struct {
	ID          string           `json:"id"`
	RequesterID string           `json:"requester_id"`
	AddresseeID string           `json:"addressee_id"`
	Status      FriendshipStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Member is the public projection of a user embedded in social payloads.
type Member struct {
	ID           string          `json:"id"`
	DisplayName  string          `json:"display_name"`
	AvatarConfig json.RawMessage `json:"avatar_config,omitempty"`
}

// FriendRequest pairs a pending friendship with the requester's profile.
type FriendRequest struct {
	FriendshipID string    `json:"friendship_id"`
	Requester    Member    `json:"requester"`
	CreatedAt    time.Time `json:"created_at"`
}

// FriendBook is one row of the friends-reading feed: a friend's actively-read
// book together with the identity needed to render it.
type FriendBook struct {
	FriendID     string          `json:"friend_id"`
	FriendName   string          `json:"friend_name"`
	FriendAvatar json.RawMessage `json:"friend_avatar,omitempty"`
	BookID       string          `json:"book_id"`
	Title        string          `json:"title"`
	Author       string          `json:"author,omitempty"`
	CoverURL     string          `json:"cover_url,omitempty"`
	TotalPages   int             `json:"total_pages"`
	CurrentPage  int             `json:"current_page"`
	Percentage   *int            `json:"-"`

	// ProgressPercent is derived, never stored.
	ProgressPercent int `json:"progress_percent"`
}

// ComputeProgress refreshes the derived ProgressPercent field using the same
// rules as a member's own shelf.
func (row *FriendBook) ComputeProgress() {
	if row.Percentage != nil {
		row.ProgressPercent = progress.Percent(0, 0, *row.Percentage)
		return
	}
	row.ProgressPercent = progress.Percent(row.CurrentPage, row.TotalPages, 0)
}

// FeedEntry groups a friend with their actively-read books for the web feed.
type FeedEntry struct {
	Friend Member       `json:"friend"`
	Books  []FriendBook `json:"books"`
}

// # Repository Contracts

// FriendshipRepository defines the persistence contract for friendship edges.
type FriendshipRepository interface {

	/*
		Create persists a new pending friendship request.

		Parameters:
		  - context: context.Context
		  - friendship: *Friendship

		Returns:
		  - error: apperr.Conflict if the pair already has an edge
	*/
	Create(context context.Context, friendship *Friendship) error

	/*
		FindByID retrieves a friendship row by its ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Friendship: Hydrated entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*Friendship, error)

	/*
		FindBetween retrieves the edge between two members in either
		orientation.

		Parameters:
		  - context: context.Context
		  - userA: string
		  - userB: string

		Returns:
		  - *Friendship: Hydrated entity
		  - error: apperr.NotFound or storage failures
	*/
	FindBetween(context context.Context, userA, userB string) (*Friendship, error)

	/*
		UpdateStatus transitions a friendship to a new status.

		Parameters:
		  - context: context.Context
		  - id: string
		  - status: FriendshipStatus

		Returns:
		  - error: Persistence failures
	*/
	UpdateStatus(context context.Context, id string, status FriendshipStatus) error

	/*
		Delete removes a friendship edge permanently.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, id string) error

	/*
		ListFriendIDs returns the IDs of all accepted friends of a member.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - []string: Friend IDs (possibly empty)
		  - error: Retrieval failures
	*/
	ListFriendIDs(context context.Context, userID string) ([]string, error)

	/*
		ListIncoming returns pending requests addressed to a member, with
		requester profiles, newest first.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - []FriendRequest: Pending requests
		  - error: Retrieval failures
	*/
	ListIncoming(context context.Context, userID string) ([]FriendRequest, error)

	/*
		ListFriends returns accepted friends of a member as public profiles.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - []Member: Friend profiles
		  - error: Retrieval failures
	*/
	ListFriends(context context.Context, userID string) ([]Member, error)
}

// FriendReadingRepository resolves what a set of friends is currently reading.
type FriendReadingRepository interface {

	/*
		ListReadingByFriends returns actively-read books for the given
		friend IDs, most recently updated first.

		Parameters:
		  - context: context.Context
		  - friendIDs: []string (must be non-empty; callers short-circuit)
		  - limit: int

		Returns:
		  - []FriendBook: Feed rows
		  - error: Retrieval failures
	*/
	ListReadingByFriends(context context.Context, friendIDs []string, limit int) ([]FriendBook, error)
}

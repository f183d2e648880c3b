// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

package social_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookshelfie/shelfie/internal/platform/apperr"
	"github.com/bookshelfie/shelfie/internal/social"
)

// # Test Doubles

type mockFriendshipRepo struct {
	social.FriendshipRepository

	findBetween   func(ctx context.Context, a, b string) (*social.Friendship, error)
	findByID      func(ctx context.Context, id string) (*social.Friendship, error)
	create        func(ctx context.Context, f *social.Friendship) error
	updateStatus  func(ctx context.Context, id string, s social.FriendshipStatus) error
	listFriendIDs func(ctx context.Context, userID string) ([]string, error)
}

func (m *mockFriendshipRepo) FindBetween(ctx context.Context, a, b string) (*social.Friendship, error) {
	return m.findBetween(ctx, a, b)
}

func (m *mockFriendshipRepo) FindByID(ctx context.Context, id string) (*social.Friendship, error) {
	return m.findByID(ctx, id)
}

func (m *mockFriendshipRepo) Create(ctx context.Context, f *social.Friendship) error {
	return m.create(ctx, f)
}

func (m *mockFriendshipRepo) UpdateStatus(ctx context.Context, id string, s social.FriendshipStatus) error {
	return m.updateStatus(ctx, id, s)
}

func (m *mockFriendshipRepo) ListFriendIDs(ctx context.Context, userID string) ([]string, error) {
	return m.listFriendIDs(ctx, userID)
}

type mockReadingRepo struct {
	called bool
	rows   []social.FriendBook
	err    error
}

func (m *mockReadingRepo) ListReadingByFriends(ctx context.Context, friendIDs []string, limit int) ([]social.FriendBook, error) {
	m.called = true
	return m.rows, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(value int) *int {
	return &value
}

// # Friends-Reading Fan-Out

/*
TestFriendsReading_NoFriends verifies the empty-set short-circuit: members
with no friends must never trigger a shelf query.
*/
func TestFriendsReading_NoFriends(t *testing.T) {
	friendships := &mockFriendshipRepo{
		listFriendIDs: func(ctx context.Context, userID string) ([]string, error) {
			return nil, nil
		},
	}
	reading := &mockReadingRepo{}

	service := social.NewService(friendships, reading, discardLogger())

	rows, err := service.FriendsReading(context.Background(), "user-1", 10)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
	assert.False(t, reading.called, "shelf tables must not be queried for an empty friend set")
}

/*
TestFriendsReading_IDLookupFailure verifies degradation: a broken friendship
store yields an empty feed, not an error.
*/
func TestFriendsReading_IDLookupFailure(t *testing.T) {
	friendships := &mockFriendshipRepo{
		listFriendIDs: func(ctx context.Context, userID string) ([]string, error) {
			return nil, errors.New("connection refused")
		},
	}
	reading := &mockReadingRepo{}

	service := social.NewService(friendships, reading, discardLogger())

	rows, err := service.FriendsReading(context.Background(), "user-1", 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.False(t, reading.called)
}

/*
TestFriendsReading_QueryFailure verifies degradation when the shelf query
itself fails after friend IDs resolved.
*/
func TestFriendsReading_QueryFailure(t *testing.T) {
	friendships := &mockFriendshipRepo{
		listFriendIDs: func(ctx context.Context, userID string) ([]string, error) {
			return []string{"friend-1"}, nil
		},
	}
	reading := &mockReadingRepo{err: errors.New("statement timeout")}

	service := social.NewService(friendships, reading, discardLogger())

	rows, err := service.FriendsReading(context.Background(), "user-1", 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

/*
TestFriendsReading_ComputesProgress verifies the derived percentage: pages
when no override exists, the override when it does.
*/
func TestFriendsReading_ComputesProgress(t *testing.T) {
	friendships := &mockFriendshipRepo{
		listFriendIDs: func(ctx context.Context, userID string) ([]string, error) {
			return []string{"friend-1"}, nil
		},
	}
	reading := &mockReadingRepo{
		rows: []social.FriendBook{
			{FriendID: "friend-1", Title: "1984", TotalPages: 328, CurrentPage: 164},
			{FriendID: "friend-1", Title: "Dune", TotalPages: 412, CurrentPage: 10, Percentage: intPtr(75)},
			{FriendID: "friend-1", Title: "Unknown Length", TotalPages: 0, CurrentPage: 42},
		},
	}

	service := social.NewService(friendships, reading, discardLogger())

	rows, err := service.FriendsReading(context.Background(), "user-1", 10)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, 50, rows[0].ProgressPercent)
	assert.Equal(t, 75, rows[1].ProgressPercent, "explicit percentage overrides pages")
	assert.Equal(t, 0, rows[2].ProgressPercent, "unknown page count reads as 0%")
}

/*
TestFriendsFeed_GroupsAndCaps verifies per-friend grouping in recency order
with both the friend cap and the per-friend book cap applied.
*/
func TestFriendsFeed_GroupsAndCaps(t *testing.T) {
	friendships := &mockFriendshipRepo{
		listFriendIDs: func(ctx context.Context, userID string) ([]string, error) {
			return []string{"a", "b", "c"}, nil
		},
	}
	// Recency order: a, b, a, a, c. With friendsCap=2 and booksPerFriend=2,
	// friend c never makes it in and a keeps only two books.
	reading := &mockReadingRepo{
		rows: []social.FriendBook{
			{FriendID: "a", FriendName: "Ada", Title: "Book A1"},
			{FriendID: "b", FriendName: "Ben", Title: "Book B1"},
			{FriendID: "a", FriendName: "Ada", Title: "Book A2"},
			{FriendID: "a", FriendName: "Ada", Title: "Book A3"},
			{FriendID: "c", FriendName: "Cleo", Title: "Book C1"},
		},
	}

	service := social.NewService(friendships, reading, discardLogger())

	entries, err := service.FriendsFeed(context.Background(), "user-1", 2, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "a", entries[0].Friend.ID)
	assert.Equal(t, "Ada", entries[0].Friend.DisplayName)
	require.Len(t, entries[0].Books, 2)
	assert.Equal(t, "Book A1", entries[0].Books[0].Title)
	assert.Equal(t, "Book A2", entries[0].Books[1].Title)

	assert.Equal(t, "b", entries[1].Friend.ID)
	require.Len(t, entries[1].Books, 1)
}

// # Friendship Lifecycle

/*
TestSendRequest_Self rejects self-friending.
*/
func TestSendRequest_Self(t *testing.T) {
	service := social.NewService(&mockFriendshipRepo{}, &mockReadingRepo{}, discardLogger())

	_, err := service.SendRequest(context.Background(), "user-1", "user-1")
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "UNPROCESSABLE", ae.Code)
}

/*
TestSendRequest_ExistingEdge verifies that a second request conflicts
regardless of which side sent the first one.
*/
func TestSendRequest_ExistingEdge(t *testing.T) {
	tests := []struct {
		name   string
		status social.FriendshipStatus
	}{
		{"already_friends", social.StatusAccepted},
		{"already_pending", social.StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			friendships := &mockFriendshipRepo{
				findBetween: func(ctx context.Context, a, b string) (*social.Friendship, error) {
					return &social.Friendship{
						ID:          "edge-1",
						RequesterID: b, // the other side initiated
						AddresseeID: a,
						Status:      tt.status,
					}, nil
				},
			}

			service := social.NewService(friendships, &mockReadingRepo{}, discardLogger())

			_, err := service.SendRequest(context.Background(), "user-1", "user-2")
			require.Error(t, err)

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, "CONFLICT", ae.Code)
		})
	}
}

/*
TestSendRequest_Creates verifies the happy path produces a pending edge.
*/
func TestSendRequest_Creates(t *testing.T) {
	var created *social.Friendship
	friendships := &mockFriendshipRepo{
		findBetween: func(ctx context.Context, a, b string) (*social.Friendship, error) {
			return nil, apperr.NotFound("Friendship")
		},
		create: func(ctx context.Context, f *social.Friendship) error {
			created = f
			return nil
		},
	}

	service := social.NewService(friendships, &mockReadingRepo{}, discardLogger())

	friendship, err := service.SendRequest(context.Background(), "user-1", "user-2")
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, social.StatusPending, friendship.Status)
	assert.Equal(t, "user-1", friendship.RequesterID)
	assert.Equal(t, "user-2", friendship.AddresseeID)
	assert.NotEmpty(t, friendship.ID)
}

/*
TestAcceptRequest_OnlyAddressee verifies the requester cannot accept their
own request.
*/
func TestAcceptRequest_OnlyAddressee(t *testing.T) {
	friendships := &mockFriendshipRepo{
		findByID: func(ctx context.Context, id string) (*social.Friendship, error) {
			return &social.Friendship{
				ID:          id,
				RequesterID: "user-1",
				AddresseeID: "user-2",
				Status:      social.StatusPending,
			}, nil
		},
	}

	service := social.NewService(friendships, &mockReadingRepo{}, discardLogger())

	_, err := service.AcceptRequest(context.Background(), "user-1", "edge-1")
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "FORBIDDEN", ae.Code)
}

/*
TestAcceptRequest_Transitions verifies acceptance is a single status change
and repeating it is harmless.
*/
func TestAcceptRequest_Transitions(t *testing.T) {
	updates := 0
	status := social.StatusPending
	friendships := &mockFriendshipRepo{
		findByID: func(ctx context.Context, id string) (*social.Friendship, error) {
			return &social.Friendship{
				ID:          id,
				RequesterID: "user-1",
				AddresseeID: "user-2",
				Status:      status,
			}, nil
		},
		updateStatus: func(ctx context.Context, id string, s social.FriendshipStatus) error {
			updates++
			status = s
			return nil
		},
	}

	service := social.NewService(friendships, &mockReadingRepo{}, discardLogger())

	friendship, err := service.AcceptRequest(context.Background(), "user-2", "edge-1")
	require.NoError(t, err)
	assert.Equal(t, social.StatusAccepted, friendship.Status)
	assert.Equal(t, 1, updates)

	// Accepting again is idempotent: no second write.
	_, err = service.AcceptRequest(context.Background(), "user-2", "edge-1")
	require.NoError(t, err)
	assert.Equal(t, 1, updates)
}

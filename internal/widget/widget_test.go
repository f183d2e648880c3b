// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

package widget_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookshelfie/shelfie/internal/platform/apperr"
	"github.com/bookshelfie/shelfie/internal/shelf"
	"github.com/bookshelfie/shelfie/internal/social"
	"github.com/bookshelfie/shelfie/internal/users/profile"
	"github.com/bookshelfie/shelfie/internal/widget"
)

// # Test Doubles

type stubProfiles struct {
	member *profile.PublicProfile
	err    error
}

func (s *stubProfiles) GetPublic(ctx context.Context, userID string) (*profile.PublicProfile, error) {
	return s.member, s.err
}

type stubShelf struct {
	books  []shelf.Book
	err    error
	called bool
}

func (s *stubShelf) ListReading(ctx context.Context, userID string, limit int) ([]shelf.Book, error) {
	s.called = true
	return s.books, s.err
}

type stubSocial struct {
	rows []social.FriendBook
	err  error
}

func (s *stubSocial) FriendsReading(ctx context.Context, userID string, limit int) ([]social.FriendBook, error) {
	return s.rows, s.err
}

// memoryCache is an in-process PayloadCache for tests.
type memoryCache struct {
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, userID string) ([]byte, error) {
	payload, ok := c.entries[userID]
	if !ok {
		return nil, apperr.NotFound("WidgetPayload")
	}
	return payload, nil
}

func (c *memoryCache) Set(ctx context.Context, userID string, payload []byte, ttl time.Duration) error {
	c.entries[userID] = payload
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(profiles widget.ProfileSource, shelves widget.ShelfSource, friends widget.SocialSource, cache widget.PayloadCache) *widget.Service {
	return widget.NewService(profiles, shelves, friends, cache,
		widget.Caps{OwnBooks: 5, Friends: 4}, time.Minute, discardLogger())
}

const testUserID = "0194e7a1-7b5a-7c3d-9e2f-0123456789ab"

// # Handler Contract

/*
TestWidgetData_MissingUserID verifies the 400 contract for requests without
an owner.
*/
func TestWidgetData_MissingUserID(t *testing.T) {
	service := newService(&stubProfiles{}, &stubShelf{}, &stubSocial{}, newMemoryCache())
	handler := widget.NewHandler(service)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	recorder := httptest.NewRecorder()
	handler.Routes().ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

/*
TestWidgetData_UnknownUser verifies an unknown owner fails the request
instead of rendering an empty widget for nobody.
*/
func TestWidgetData_UnknownUser(t *testing.T) {
	service := newService(
		&stubProfiles{err: apperr.NotFound("Member")},
		&stubShelf{}, &stubSocial{}, newMemoryCache())
	handler := widget.NewHandler(service)

	request := httptest.NewRequest(http.MethodGet, "/?user_id="+testUserID, nil)
	recorder := httptest.NewRecorder()
	handler.Routes().ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

/*
TestWidgetData_Shape verifies the bare (non-enveloped) payload shape the
deployed widget clients parse.
*/
func TestWidgetData_Shape(t *testing.T) {
	profiles := &stubProfiles{member: &profile.PublicProfile{
		ID:          testUserID,
		DisplayName: "Mika",
	}}
	// Empty author: the key must still be emitted for the strict decoder.
	shelves := &stubShelf{books: []shelf.Book{
		{ID: "book-1", Title: "1984", TotalPages: 328, CurrentPage: 164, ProgressPercent: 50},
	}}
	friends := &stubSocial{rows: []social.FriendBook{
		{FriendID: "friend-1", FriendName: "Ada", Title: "Dune",
			TotalPages: 412, CurrentPage: 124, ProgressPercent: 30},
	}}

	service := newService(profiles, shelves, friends, newMemoryCache())
	handler := widget.NewHandler(service)

	request := httptest.NewRequest(http.MethodGet, "/?user_id="+testUserID, nil)
	recorder := httptest.NewRecorder()
	handler.Routes().ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))

	// Bare payload: the legacy widget contract has no envelope.
	assert.NotContains(t, body, "data")
	assert.Contains(t, body, "user")
	assert.Contains(t, body, "currently_reading")
	assert.Contains(t, body, "friends_reading")

	var payload widget.Payload
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	assert.Equal(t, "Mika", payload.User.DisplayName)
	require.Len(t, payload.CurrentlyReading, 1)
	assert.Equal(t, 50, payload.CurrentlyReading[0].ProgressPercent)
	require.Len(t, payload.FriendsReading, 1)
	assert.Equal(t, "Ada", payload.FriendsReading[0].FriendName)
	assert.Equal(t, 412, payload.FriendsReading[0].TotalPages)
	assert.Equal(t, 124, payload.FriendsReading[0].CurrentPage)

	// The widget clients decode with required keys: author on own books,
	// current_page and total_pages on friend entries. They must be present
	// even when zero-valued, or the whole document fails to decode.
	var raw struct {
		CurrentlyReading []map[string]json.RawMessage `json:"currently_reading"`
		FriendsReading   []map[string]json.RawMessage `json:"friends_reading"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &raw))
	require.Len(t, raw.CurrentlyReading, 1)
	assert.Contains(t, raw.CurrentlyReading[0], "author")
	require.Len(t, raw.FriendsReading, 1)
	assert.Contains(t, raw.FriendsReading[0], "current_page")
	assert.Contains(t, raw.FriendsReading[0], "total_pages")
}

// # Degradation & Caching

/*
TestPayload_PartialFailure verifies a broken shelf or social source still
produces a renderable payload with empty sections.
*/
func TestPayload_PartialFailure(t *testing.T) {
	profiles := &stubProfiles{member: &profile.PublicProfile{ID: testUserID, DisplayName: "Mika"}}
	shelves := &stubShelf{err: errors.New("statement timeout")}
	friends := &stubSocial{err: errors.New("social column down")}

	service := newService(profiles, shelves, friends, newMemoryCache())

	encoded, err := service.Payload(context.Background(), testUserID)
	require.NoError(t, err)

	var payload widget.Payload
	require.NoError(t, json.Unmarshal(encoded, &payload))
	assert.Equal(t, "Mika", payload.User.DisplayName)
	assert.NotNil(t, payload.CurrentlyReading)
	assert.Empty(t, payload.CurrentlyReading)
	assert.NotNil(t, payload.FriendsReading)
	assert.Empty(t, payload.FriendsReading)
}

/*
TestPayload_CacheHit verifies a cached payload short-circuits every data
source.
*/
func TestPayload_CacheHit(t *testing.T) {
	cache := newMemoryCache()
	cache.entries[testUserID] = []byte(`{"user":{"display_name":"Cached"}}`)

	shelves := &stubShelf{}
	service := newService(&stubProfiles{}, shelves, &stubSocial{}, cache)

	encoded, err := service.Payload(context.Background(), testUserID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"user":{"display_name":"Cached"}}`, string(encoded))
	assert.False(t, shelves.called, "cache hits must not touch the database")
}

/*
TestPayload_PopulatesCache verifies a miss writes the assembled payload back.
*/
func TestPayload_PopulatesCache(t *testing.T) {
	cache := newMemoryCache()
	profiles := &stubProfiles{member: &profile.PublicProfile{ID: testUserID, DisplayName: "Mika"}}

	service := newService(profiles, &stubShelf{}, &stubSocial{}, cache)

	encoded, err := service.Payload(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, encoded, cache.entries[testUserID])
}

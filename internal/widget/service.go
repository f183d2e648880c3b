// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

package widget

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bookshelfie/shelfie/internal/shelf"
	"github.com/bookshelfie/shelfie/internal/social"
	"github.com/bookshelfie/shelfie/pkg/slice"
)

// # Service Layer

// Caps bounds the size of each widget section.
type Caps struct {
	OwnBooks int
	Friends  int
}

// Service assembles and caches widget payloads.
type Service struct {
	profileSource ProfileSource
	shelfSource   ShelfSource
	socialSource  SocialSource
	cache         PayloadCache
	caps          Caps
	cacheTTL      time.Duration
	logger        *slog.Logger
}

// NewService constructs a new [Service] with its data sources.
func NewService(
	profileSource ProfileSource,
	shelfSource ShelfSource,
	socialSource SocialSource,
	cache PayloadCache,
	caps Caps,
	cacheTTL time.Duration,
	logger *slog.Logger,
) *Service {
	return &Service{
		profileSource: profileSource,
		shelfSource:   shelfSource,
		socialSource:  socialSource,
		cache:         cache,
		caps:          caps,
		cacheTTL:      cacheTTL,
		logger:        logger,
	}
}

/*
Payload returns the marshaled widget payload for a member.

Description: A cache hit short-circuits everything. On a miss the three
sections are fetched concurrently; shelf or social failures degrade to empty
sections because a stale-but-rendering widget beats an error tile. Only an
unknown owner fails the request. Cache failures are logged and never surfaced.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []byte: Marshaled [Payload], ready to write verbatim
  - error: apperr.NotFound for unknown members, or marshal failures
*/
func (service *Service) Payload(context context.Context, userID string) ([]byte, error) {

	if cached, err := service.cache.Get(context, userID); err == nil {
		return cached, nil
	}

	payload, err := service.build(context, userID)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("widget_service_marshal_failed: %w", err)
	}

	if err := service.cache.Set(context, userID, encoded, service.cacheTTL); err != nil {
		service.logger.Warn("widget_cache_write_failed",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
	}

	return encoded, nil
}

// build assembles a fresh payload from the three data sources.
func (service *Service) build(context context.Context, userID string) (*Payload, error) {

	// The owner lookup gates the request; the shelf and social sections are
	// fetched alongside it and degrade independently.
	var (
		waitGroup   sync.WaitGroup
		owner       Owner
		ownerErr    error
		ownBooks    []OwnBook
		friendBooks []FriendHighlight
	)

	waitGroup.Add(3)

	go func() {
		defer waitGroup.Done()
		member, err := service.profileSource.GetPublic(context, userID)
		if err != nil {
			ownerErr = err
			return
		}
		owner = Owner{
			DisplayName:  member.DisplayName,
			AvatarConfig: member.AvatarConfig,
		}
	}()

	go func() {
		defer waitGroup.Done()
		books, err := service.shelfSource.ListReading(context, userID, service.caps.OwnBooks)
		if err != nil {
			service.logger.Error("widget_shelf_fetch_failed",
				slog.String("user_id", userID),
				slog.Any("error", err),
			)
			return
		}
		ownBooks = slice.Map(books, func(book shelf.Book) OwnBook {
			return OwnBook{
				ID:              book.ID,
				Title:           book.Title,
				Author:          book.Author,
				CoverURL:        book.CoverURL,
				TotalPages:      book.TotalPages,
				CurrentPage:     book.CurrentPage,
				ProgressPercent: book.ProgressPercent,
			}
		})
	}()

	go func() {
		defer waitGroup.Done()
		// FriendsReading degrades to an empty list internally; a returned
		// error would be a non-degradable failure.
		rows, err := service.socialSource.FriendsReading(context, userID, service.caps.Friends)
		if err != nil {
			service.logger.Error("widget_social_fetch_failed",
				slog.String("user_id", userID),
				slog.Any("error", err),
			)
			return
		}
		friendBooks = slice.Map(rows, func(row social.FriendBook) FriendHighlight {
			return FriendHighlight{
				FriendName:      row.FriendName,
				FriendAvatar:    row.FriendAvatar,
				Title:           row.Title,
				CoverURL:        row.CoverURL,
				TotalPages:      row.TotalPages,
				CurrentPage:     row.CurrentPage,
				ProgressPercent: row.ProgressPercent,
			}
		})
	}()

	waitGroup.Wait()

	if ownerErr != nil {
		return nil, fmt.Errorf("widget_service_owner_failed: %w", ownerErr)
	}

	if ownBooks == nil {
		ownBooks = []OwnBook{}
	}
	if friendBooks == nil {
		friendBooks = []FriendHighlight{}
	}

	return &Payload{
		User:             owner,
		CurrentlyReading: ownBooks,
		FriendsReading:   friendBooks,
	}, nil
}

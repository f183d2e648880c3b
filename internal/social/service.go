// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

package social

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bookshelfie/shelfie/internal/platform/apperr"
	"github.com/bookshelfie/shelfie/pkg/uuid"
)

// # Service Layer

// Service orchestrates friendships and the friends-reading feed.
type Service struct {
	friendshipRepository FriendshipRepository
	readingRepository    FriendReadingRepository
	logger               *slog.Logger
}

// NewService constructs a new [Service] with its repository dependencies.
func NewService(
	friendshipRepo FriendshipRepository,
	readingRepo FriendReadingRepository,
	logger *slog.Logger,
) *Service {
	return &Service{
		friendshipRepository: friendshipRepo,
		readingRepository:    readingRepo,
		logger:               logger,
	}
}

// # Friendship Lifecycle

/*
SendRequest creates a pending friendship request.

Description: Exactly one edge may exist per pair regardless of direction, so
a second request in either orientation is a conflict. Members cannot friend
themselves.

Parameters:
  - context: context.Context
  - requesterID: string
  - addresseeID: string

Returns:
  - *Friendship: Created pending edge
  - error: Conflict, Unprocessable, or storage failures
*/
func (service *Service) SendRequest(context context.Context, requesterID, addresseeID string) (*Friendship, error) {

	if requesterID == addresseeID {
		return nil, apperr.Unprocessable("You cannot add yourself as a friend")
	}

	// One edge per pair, checked in both orientations.
	existing, err := service.friendshipRepository.FindBetween(context, requesterID, addresseeID)
	if err == nil {
		if existing.Status == StatusAccepted {
			return nil, apperr.Conflict("You are already friends")
		}
		return nil, apperr.Conflict("A friend request between you already exists")
	}
	if !apperr.IsNotFound(err) {
		return nil, fmt.Errorf("social_service_pair_lookup_failed: %w", err)
	}

	friendship := &Friendship{
		ID:          uuid.New(),
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      StatusPending,
	}

	if err := service.friendshipRepository.Create(context, friendship); err != nil {
		return nil, fmt.Errorf("social_service_request_failed: %w", err)
	}

	service.logger.Info("friend_request_sent",
		slog.String("requester_id", requesterID),
		slog.String("addressee_id", addresseeID),
	)

	return friendship, nil
}

/*
AcceptRequest establishes a friendship from a pending request.

Description: Only the addressee may accept. Acceptance is a single status
transition on the pair's one edge, so there is no second mirrored row that
could be forgotten.

Parameters:
  - context: context.Context
  - userID: string (Must be the addressee)
  - friendshipID: string

Returns:
  - *Friendship: Accepted edge
  - error: NotFound, Forbidden, or storage failures
*/
func (service *Service) AcceptRequest(context context.Context, userID, friendshipID string) (*Friendship, error) {

	friendship, err := service.friendshipRepository.FindByID(context, friendshipID)
	if err != nil {
		return nil, fmt.Errorf("social_service_accept_lookup_failed: %w", err)
	}

	if friendship.AddresseeID != userID {
		return nil, apperr.Forbidden("Only the recipient can accept a friend request")
	}

	if friendship.Status == StatusAccepted {
		// Idempotent: accepting twice is not an error.
		return friendship, nil
	}

	if err := service.friendshipRepository.UpdateStatus(context, friendshipID, StatusAccepted); err != nil {
		return nil, fmt.Errorf("social_service_accept_failed: %w", err)
	}

	friendship.Status = StatusAccepted

	service.logger.Info("friend_request_accepted",
		slog.String("friendship_id", friendshipID),
		slog.String("user_id", userID),
	)

	return friendship, nil
}

/*
DeclineRequest removes a pending request, or cancels one the caller sent.

Parameters:
  - context: context.Context
  - userID: string (Must be requester or addressee)
  - friendshipID: string

Returns:
  - error: NotFound, Forbidden, or storage failures
*/
func (service *Service) DeclineRequest(context context.Context, userID, friendshipID string) error {

	friendship, err := service.friendshipRepository.FindByID(context, friendshipID)
	if err != nil {
		return fmt.Errorf("social_service_decline_lookup_failed: %w", err)
	}

	if friendship.RequesterID != userID && friendship.AddresseeID != userID {
		return apperr.Forbidden("You are not part of this friend request")
	}

	if err := service.friendshipRepository.Delete(context, friendshipID); err != nil {
		return fmt.Errorf("social_service_decline_failed: %w", err)
	}

	return nil
}

/*
RemoveFriend severs an established friendship.

Description: Removal is symmetric; either side may sever the edge.

Parameters:
  - context: context.Context
  - userID: string
  - friendID: string

Returns:
  - error: NotFound or storage failures
*/
func (service *Service) RemoveFriend(context context.Context, userID, friendID string) error {

	friendship, err := service.friendshipRepository.FindBetween(context, userID, friendID)
	if err != nil {
		return fmt.Errorf("social_service_remove_lookup_failed: %w", err)
	}

	if err := service.friendshipRepository.Delete(context, friendship.ID); err != nil {
		return fmt.Errorf("social_service_remove_failed: %w", err)
	}

	service.logger.Info("friendship_removed",
		slog.String("user_id", userID),
		slog.String("friend_id", friendID),
	)

	return nil
}

// # Social Views

/*
ListIncoming returns pending requests addressed to the member.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []FriendRequest: Pending requests with requester profiles
  - error: Retrieval failures
*/
func (service *Service) ListIncoming(context context.Context, userID string) ([]FriendRequest, error) {
	requests, err := service.friendshipRepository.ListIncoming(context, userID)
	if err != nil {
		return nil, fmt.Errorf("social_service_incoming_failed: %w", err)
	}
	return requests, nil
}

/*
ListFriends returns the member's accepted friends as public profiles.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []Member: Friend profiles
  - error: Retrieval failures
*/
func (service *Service) ListFriends(context context.Context, userID string) ([]Member, error) {
	friends, err := service.friendshipRepository.ListFriends(context, userID)
	if err != nil {
		return nil, fmt.Errorf("social_service_friends_failed: %w", err)
	}
	return friends, nil
}

// # Friends-Reading Fan-Out

/*
FriendsReading returns a flat list of what the member's friends are reading.

Description: This is the fan-out primitive behind both the web feed and the
widget. Resolution happens in two steps: accepted friend IDs first, then one
query across their shelves. An empty friend set short-circuits without
touching the shelf tables. Any storage failure degrades to an empty list
because a broken social column must never take down the member's own view.

Parameters:
  - context: context.Context
  - userID: string
  - limit: int (Maximum rows returned)

Returns:
  - []FriendBook: Feed rows with derived progress, possibly empty
  - error: Always nil today; reserved for future non-degradable failures
*/
func (service *Service) FriendsReading(context context.Context, userID string, limit int) ([]FriendBook, error) {

	friendIDs, err := service.friendshipRepository.ListFriendIDs(context, userID)
	if err != nil {
		service.logger.Error("friends_reading_ids_failed",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		return []FriendBook{}, nil
	}

	// No friends: do not run an IN () query against the shelf tables.
	if len(friendIDs) == 0 {
		return []FriendBook{}, nil
	}

	rows, err := service.readingRepository.ListReadingByFriends(context, friendIDs, limit)
	if err != nil {
		service.logger.Error("friends_reading_query_failed",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		return []FriendBook{}, nil
	}

	for index := range rows {
		rows[index].ComputeProgress()
	}

	return rows, nil
}

/*
FriendsFeed returns the grouped friends-reading view for the web app.

Description: Rows from [Service.FriendsReading] are grouped per friend in
first-seen order (which follows recency of shelf activity) and capped at
friendsCap distinct friends.

Parameters:
  - context: context.Context
  - userID: string
  - friendsCap: int (Maximum distinct friends)
  - booksPerFriend: int (Maximum books listed per friend)

Returns:
  - []FeedEntry: Grouped feed, possibly empty
  - error: Retrieval failures from the ID resolution step
*/
func (service *Service) FriendsFeed(context context.Context, userID string, friendsCap, booksPerFriend int) ([]FeedEntry, error) {

	// Fetch enough rows to fill every friend slot even when one friend
	// dominates recent activity.
	rows, err := service.FriendsReading(context, userID, friendsCap*booksPerFriend)
	if err != nil {
		return nil, err
	}

	entries := make([]FeedEntry, 0, friendsCap)
	indexByFriend := make(map[string]int, friendsCap)

	for _, row := range rows {
		position, seen := indexByFriend[row.FriendID]
		if !seen {
			if len(entries) >= friendsCap {
				continue
			}
			position = len(entries)
			indexByFriend[row.FriendID] = position
			entries = append(entries, FeedEntry{
				Friend: Member{
					ID:           row.FriendID,
					DisplayName:  row.FriendName,
					AvatarConfig: row.FriendAvatar,
				},
				Books: make([]FriendBook, 0, booksPerFriend),
			})
		}

		if len(entries[position].Books) < booksPerFriend {
			entries[position].Books = append(entries[position].Books, row)
		}
	}

	return entries, nil
}

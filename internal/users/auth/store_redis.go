// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bookshelfie/shelfie/internal/platform/apperr"
	"github.com/bookshelfie/shelfie/internal/platform/constants"
)

// RedisOTPCodeRepository implements [OTPCodeRepository] using Redis.
//
// Keys are scoped per phone number so requesting a fresh code atomically
// replaces the previous one, and Redis TTLs handle expiry for free.
type RedisOTPCodeRepository struct {
	client *redis.Client
}

// NewOTPCodeRepository creates a new Redis-backed OTPCodeRepository.
func NewOTPCodeRepository(client *redis.Client) *RedisOTPCodeRepository {
	return &RedisOTPCodeRepository{client: client}
}

// codeKey builds the Redis key holding the active code for a phone number.
func codeKey(phone string) string {
	return constants.RedisPrefixOTPCode + phone
}

// attemptsKey builds the Redis key counting failed verifications.
func attemptsKey(phone string) string {
	return constants.RedisPrefixOTPCode + phone + ":attempts"
}

/*
Set stores a sign-in code with its TTL, resetting the attempt counter.

Parameters:
  - context: context.Context
  - phone: string
  - code: string
  - ttl: time.Duration

Returns:
  - error: Execution errors
*/
func (repository *RedisOTPCodeRepository) Set(context context.Context, phone string, code string, ttl time.Duration) error {

	// Store the new code with TTL
	if err := repository.client.Set(context, codeKey(phone), code, ttl).Err(); err != nil {
		return fmt.Errorf("redis_otp_code_set_failed: %w", err)
	}

	// A fresh code starts with a clean attempt budget
	_ = repository.client.Del(context, attemptsKey(phone)).Err()

	// Return nil on success
	return nil
}

/*
Get retrieves the active sign-in code for a phone number.

Description: Returns apperr.NotFound if the code is absent or expired.

Parameters:
  - context: context.Context
  - phone: string

Returns:
  - string: The stored code
  - error: apperr.NotFound or connectivity errors
*/
func (repository *RedisOTPCodeRepository) Get(context context.Context, phone string) (string, error) {

	// Get the code from Redis
	code, err := repository.client.Get(context, codeKey(phone)).Result()

	// Handle errors
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.NotFound("Sign-in code is invalid or expired")
		}
		return "", fmt.Errorf("redis_otp_code_get_failed: %w", err)
	}

	// Return the code
	return code, nil
}

/*
Delete removes the code and its attempt counter from Redis.

Parameters:
  - context: context.Context
  - phone: string

Returns:
  - error: Deletion failures
*/
func (repository *RedisOTPCodeRepository) Delete(context context.Context, phone string) error {

	// Delete the code and counter from Redis
	if err := repository.client.Del(context, codeKey(phone), attemptsKey(phone)).Err(); err != nil {
		return fmt.Errorf("redis_otp_code_delete_failed: %w", err)
	}

	// Return nil on success
	return nil
}

/*
IncrementAttempts counts a failed verification and reports the total.

Description: The counter expires together with the code's TTL window so a
stale counter can never block a future sign-in.

Parameters:
  - context: context.Context
  - phone: string

Returns:
  - int: Attempts so far, including this one
  - error: Execution failures
*/
func (repository *RedisOTPCodeRepository) IncrementAttempts(context context.Context, phone string) (int, error) {

	key := attemptsKey(phone)

	attempts, err := repository.client.Incr(context, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis_otp_attempts_incr_failed: %w", err)
	}

	// Bind the counter's lifetime to the code's validity window
	if attempts == 1 {
		_ = repository.client.Expire(context, key, OTPCodeTTL).Err()
	}

	return int(attempts), nil
}

// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

package auth

import "time"

// # Authentication Constraints

const (
	// AccessTokenTTL is the duration a JWT access token remains valid.
	// We keep it short (15m) to minimize the impact of a leaked token.
	AccessTokenTTL = 15 * time.Minute

	// RefreshTokenTTL is the duration a session/refresh token remains valid.
	// Long-lived (30 days) to provide a good user experience.
	RefreshTokenTTL = 30 * 24 * time.Hour

	// RefreshTokenLength is the byte length of the random secure token.
	RefreshTokenLength = 32

	// OTPCodeDigits is the length of the numeric SMS sign-in code.
	OTPCodeDigits = 6

	// OTPCodeTTL is the duration a sign-in code remains valid.
	// Short-lived (5 minutes) since codes are only 6 digits.
	OTPCodeTTL = 5 * time.Minute

	// OTPMaxAttempts is the number of wrong codes allowed before the
	// stored code is invalidated.
	OTPMaxAttempts = 5
)

// Package entity defines the entities and errors used in the application.
// It includes the URL struct, which represents a shortened URL record, and the
// sentinel errors shared by the use case, repository and delivery layers.
package entity

import (
	"errors"
	"time"
)

var (
	// ErrInvalidURL is returned when the submitted URL is malformed or too long.
	ErrInvalidURL = errors.New("invalid url")
	// ErrSpamDetected is matched by every SpamError.
	ErrSpamDetected = errors.New("spam detected")
	// ErrRateLimited is returned when a client exceeded the submission threshold in the window.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrShortCodeExists is returned when attempting to save a URL with a short code that already exists.
	ErrShortCodeExists = errors.New("short code exists")
	// ErrURLNotFound is returned when a URL with the specified short code or original URL cannot be found.
	ErrURLNotFound = errors.New("url not found")
)

// SpamError carries the human-readable reason the spam classifier rejected a URL.
type SpamError struct {
	Reason string
}

func (e *SpamError) Error() string {
	return "spam detected: " + e.Reason
}

func (e *SpamError) Unwrap() error {
	return ErrSpamDetected
}

// URL represents a shortened URL record. Records are append-only.
type URL struct {
	ID          int64     // ID is the unique identifier of the URL in the database.
	ShortCode   string    // ShortCode is the generated code used to shorten the original URL.
	OriginalURL string    // OriginalURL is the full URL that the short code resolves to.
	ClientIP    string    // ClientIP identifies the submitter for rate limiting; empty when unknown.
	CreatedAt   time.Time // CreatedAt is the timestamp when the URL was created.
}

package domain

import "errors"

var (
	ErrSubscriptionExists    = errors.New("subscription already exists")
	ErrSubscriptionNotFound  = errors.New("subscription not found")
	ErrSubscriptionCancelled = errors.New("subscription already cancelled")
	ErrInvalidInterval       = errors.New("invalid billing interval")
)

package entity

import "errors"

var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrFlightNotFound   = errors.New("flight not found")
	ErrBookingNotFound  = errors.New("booking not found")
	// ErrNoRecipient means the passenger has no address for the channel; the job can never succeed.
	ErrNoRecipient = errors.New("passenger has no address for channel")
	ErrNoNotifier  = errors.New("no notifier registered for channel")
)

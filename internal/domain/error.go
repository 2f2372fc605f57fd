package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Payment / entitlement errors
	ErrPaymentRequired     = errors.New("chat access requires payment")
	ErrPaymentNotFound     = errors.New("payment transaction not found")
	ErrInvalidPlanType     = errors.New("unknown plan type")
	ErrInvalidSignature    = errors.New("webhook signature verification failed")
	ErrWebhookUnconfigured = errors.New("webhook secret is not configured")
	ErrGatewayUnavailable  = errors.New("payment gateway unavailable")

	// Matching / chat errors
	ErrSelfSwipe      = errors.New("cannot swipe on yourself")
	ErrNotParticipant = errors.New("user is not a participant of this match")

	// Infrastructure-facing errors surfaced through repositories
	ErrOperationFailed    = errors.New("operation failed")
	ErrInvalidExecContext = errors.New("invalid SQL execution context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
)

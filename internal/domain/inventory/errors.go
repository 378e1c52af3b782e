package inventory

import "github.com/pos/backend/internal/domain/shared"

// Stock take errors
var (
	ErrInvalidCount         = shared.NewDomainError("INVALID_INPUT", "Count must be a non-negative whole number")
	ErrSessionClosed        = shared.NewDomainError("SESSION_CLOSED", "Stock take session is closed")
	ErrNothingToFinalize    = shared.NewDomainError("NOTHING_TO_FINALIZE", "No counted line differs from expected stock")
	ErrProductNotInSession  = shared.NewDomainError("PRODUCT_NOT_IN_SESSION", "Product is not part of this stock take")
	ErrSessionAlreadyActive = shared.NewDomainError("SESSION_ALREADY_ACTIVE", "Location already has a stock take in progress")
	ErrConfirmationRequired = shared.NewDomainError("CONFIRMATION_REQUIRED", "Cancelling a stock take must be confirmed")
	ErrFinalizeInProgress   = shared.NewDomainError("FINALIZE_IN_PROGRESS", "Another stock take is being finalized for this location")
)

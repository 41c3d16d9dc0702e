package handlers

import (
	"errors"

	"github.com/fundflow/backend/internal/funding"
	"github.com/fundflow/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// statusForError maps domain errors onto HTTP statuses. Anything not
// recognized is treated as a bad request so the message still reaches the
// client.
func statusForError(err error) int {
	switch {
	case errors.Is(err, funding.ErrUnauthorized):
		return fiber.StatusForbidden
	case errors.Is(err, funding.ErrUnknownProposal),
		errors.Is(err, services.ErrCampaignNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, funding.ErrAlreadyReviewed),
		errors.Is(err, funding.ErrAlreadyClaimed),
		errors.Is(err, funding.ErrNotActive),
		errors.Is(err, funding.ErrNotEnded),
		errors.Is(err, funding.ErrTargetExceeded),
		errors.Is(err, funding.ErrTargetNotReached),
		errors.Is(err, funding.ErrCampaignSuccessful),
		errors.Is(err, funding.ErrNoContribution),
		errors.Is(err, funding.ErrReentrantCall):
		return fiber.StatusConflict
	case errors.Is(err, funding.ErrTransferFailed):
		return fiber.StatusPaymentRequired
	default:
		return fiber.StatusBadRequest
	}
}

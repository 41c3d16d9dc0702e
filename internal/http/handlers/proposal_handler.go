package handlers

import (
	"strconv"

	"github.com/fundflow/backend/internal/http/dto"
	"github.com/fundflow/backend/internal/middleware"
	"github.com/fundflow/backend/internal/repositories"
	"github.com/fundflow/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProposalHandler struct {
	registryService *services.RegistryService
	log             *zap.Logger
}

func NewProposalHandler(registryService *services.RegistryService, log *zap.Logger) *ProposalHandler {
	return &ProposalHandler{registryService: registryService, log: log}
}

func (h *ProposalHandler) SubmitProposal(c *fiber.Ctx) error {
	var req dto.SubmitProposalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	submitter := middleware.GetAccountID(c)
	p, err := h.registryService.Submit(c.Context(), submitter, req.MinTarget, req.MaxTarget, req.WindowStart, req.WindowEnd)
	if err != nil {
		return c.Status(statusForError(err)).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: p})
}

func (h *ProposalHandler) GetProposal(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid proposal id"})
	}

	p, err := h.registryService.GetProposal(id)
	if err != nil {
		return c.Status(statusForError(err)).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: p})
}

func (h *ProposalHandler) ListProposals(c *fiber.Ctx) error {
	filter := repositories.ProposalFilter{
		Limit:  20,
		Offset: 0,
	}

	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}
	if v := c.Query("status"); v != "" {
		filter.Status = &v
	}
	if v := c.Query("submitter"); v != "" {
		submitter, err := uuid.Parse(v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid submitter"})
		}
		filter.Submitter = &submitter
	}

	proposals, err := h.registryService.ListProposals(c.Context(), filter)
	if err != nil {
		h.log.Error("list proposals failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: proposals})
}

// MyProposals returns the caller's proposal ids in submission order.
func (h *ProposalHandler) MyProposals(c *fiber.Ctx) error {
	submitter := middleware.GetAccountID(c)
	history := h.registryService.SubmitterHistory(submitter)
	return c.JSON(dto.SuccessResponse{OK: true, Data: history})
}

func (h *ProposalHandler) ReviewProposal(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid proposal id"})
	}

	var req dto.ReviewProposalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	caller := middleware.GetAccountID(c)
	p, err := h.registryService.Review(c.Context(), caller, id, req.Approve)
	if err != nil {
		return c.Status(statusForError(err)).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: p})
}

func (h *ProposalHandler) TransferReviewer(c *fiber.Ctx) error {
	var req dto.TransferReviewerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	newReviewer, err := uuid.Parse(req.NewReviewer)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid new_reviewer"})
	}

	caller := middleware.GetAccountID(c)
	if err := h.registryService.TransferReviewer(c.Context(), caller, newReviewer); err != nil {
		return c.Status(statusForError(err)).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.SuccessResponse{OK: true})
}

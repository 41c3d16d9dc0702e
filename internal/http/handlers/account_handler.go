package handlers

import (
	"github.com/fundflow/backend/internal/config"
	"github.com/fundflow/backend/internal/http/dto"
	"github.com/fundflow/backend/internal/middleware"
	"github.com/fundflow/backend/internal/repositories"
	"github.com/fundflow/backend/internal/treasury"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AccountHandler struct {
	accountRepo *repositories.AccountRepo
	treasury    *treasury.Treasury
	cfg         *config.Config
	log         *zap.Logger
}

func NewAccountHandler(accountRepo *repositories.AccountRepo, tr *treasury.Treasury, cfg *config.Config, log *zap.Logger) *AccountHandler {
	return &AccountHandler{accountRepo: accountRepo, treasury: tr, cfg: cfg, log: log}
}

func (h *AccountHandler) GetMe(c *fiber.Ctx) error {
	accountID := middleware.GetAccountID(c)

	account, err := h.accountRepo.GetByID(c.Context(), accountID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "account not found"})
	}

	_ = h.accountRepo.UpdateLastActive(c.Context(), accountID)

	return c.JSON(dto.SuccessResponse{OK: true, Data: account})
}

// GetBalance reports the caller's balance in the settlement asset, or in
// the asset passed via ?asset=.
func (h *AccountHandler) GetBalance(c *fiber.Ctx) error {
	accountID := middleware.GetAccountID(c)

	assetID := h.cfg.SettlementAssetID
	if v := c.Query("asset"); v != "" {
		parsed, err := uuid.Parse(v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid asset id"})
		}
		assetID = parsed
	}

	balance, err := h.treasury.Balance(c.Context(), accountID, assetID)
	if err != nil {
		h.log.Error("failed to read balance", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.BalanceResponse{
		AccountID: accountID.String(),
		AssetID:   assetID.String(),
		Balance:   balance,
	}})
}

// Faucet credits the caller with test funds. Disabled unless FAUCET_ENABLED.
func (h *AccountHandler) Faucet(c *fiber.Ctx) error {
	if !h.cfg.FaucetEnabled {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: "faucet is disabled"})
	}

	accountID := middleware.GetAccountID(c)
	if err := h.treasury.Mint(c.Context(), accountID, h.cfg.SettlementAssetID, h.cfg.FaucetAmount); err != nil {
		h.log.Error("faucet mint failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: fiber.Map{"minted": h.cfg.FaucetAmount}})
}

package handler

import (
	"digital-wallet/internal/adapter/http/dto"
	"digital-wallet/internal/adapter/http/middleware"
	"digital-wallet/internal/core/domain"
	"digital-wallet/internal/core/ports"
	"digital-wallet/pkg/apperror"
	"digital-wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WalletHandler handles wallet endpoints.
type WalletHandler struct {
	walletSvc ports.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

// Create handles POST /api/v1/wallets.
func (h *WalletHandler) Create(c *gin.Context) {
	auth, ok := middleware.AuthFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		response.Error(c, apperror.Validation("customer_id must be a valid UUID"))
		return
	}

	wallet, err := h.walletSvc.Create(c.Request.Context(), ports.CreateWalletRequest{
		CustomerID:     customerID,
		Name:           req.Name,
		Currency:       domain.Currency(req.Currency),
		ActiveShopping: req.ActiveShopping,
		ActiveWithdraw: req.ActiveWithdraw,
	}, auth)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.FromWallet(wallet))
}

// List handles GET /api/v1/wallets. Customers see their own wallets; an
// employee may pass customer_id to inspect any customer.
func (h *WalletHandler) List(c *gin.Context) {
	auth, ok := middleware.AuthFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	customerID := auth.CustomerID
	if raw := c.Query("customer_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Error(c, apperror.Validation("customer_id must be a valid UUID"))
			return
		}
		if id != auth.CustomerID && !auth.IsEmployee() {
			response.Error(c, apperror.ErrUnauthorized("list wallets for this customer"))
			return
		}
		customerID = id
	}

	wallets, err := h.walletSvc.List(c.Request.Context(), customerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.WalletResponse, 0, len(wallets))
	for i := range wallets {
		out = append(out, dto.FromWallet(&wallets[i]))
	}
	response.OK(c, out)
}

// Deposit handles POST /api/v1/wallets/:id/deposit.
func (h *WalletHandler) Deposit(c *gin.Context) {
	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("wallet id must be a valid UUID"))
		return
	}

	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.walletSvc.Deposit(c.Request.Context(), ports.DepositRequest{
		WalletID:          walletID,
		Amount:            req.Amount,
		Source:            req.Source,
		OppositePartyType: domain.OppositePartyType(req.OppositePartyType),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toTransferResponse(result))
}

// Withdraw handles POST /api/v1/wallets/:id/withdraw.
func (h *WalletHandler) Withdraw(c *gin.Context) {
	auth, ok := middleware.AuthFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("wallet id must be a valid UUID"))
		return
	}

	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.walletSvc.Withdraw(c.Request.Context(), ports.WithdrawRequest{
		WalletID:          walletID,
		Amount:            req.Amount,
		Destination:       req.Destination,
		OppositePartyType: domain.OppositePartyType(req.OppositePartyType),
	}, auth)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toTransferResponse(result))
}

func toTransferResponse(r *ports.TransferResult) dto.TransferResponse {
	return dto.TransferResponse{
		Transaction: dto.FromTransaction(r.Transaction),
		Wallet:      dto.FromWallet(r.Wallet),
		Pending:     r.Pending,
	}
}

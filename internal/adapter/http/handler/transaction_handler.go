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

// TransactionHandler handles transaction endpoints.
type TransactionHandler struct {
	txSvc ports.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(txSvc ports.TransactionService) *TransactionHandler {
	return &TransactionHandler{txSvc: txSvc}
}

// ListByWallet handles GET /api/v1/wallets/:id/transactions.
func (h *TransactionHandler) ListByWallet(c *gin.Context) {
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

	txns, err := h.txSvc.ListByWallet(c.Request.Context(), walletID, auth)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toTransactionList(txns))
}

// ListAll handles GET /api/v1/transactions. EMPLOYEE only.
func (h *TransactionHandler) ListAll(c *gin.Context) {
	auth, ok := middleware.AuthFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	txns, err := h.txSvc.ListAll(c.Request.Context(), auth)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toTransactionList(txns))
}

// Decide handles POST /api/v1/transactions/:id/decision.
func (h *TransactionHandler) Decide(c *gin.Context) {
	auth, ok := middleware.AuthFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	txID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("transaction id must be a valid UUID"))
		return
	}

	var req dto.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.txSvc.Approve(c.Request.Context(), ports.ApproveTransactionRequest{
		TransactionID: txID,
		Status:        domain.TransactionStatus(req.Status),
	}, auth)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.DecisionResponse{
		Transaction: dto.FromTransaction(result.Transaction),
		Wallet:      dto.FromWallet(result.Wallet),
	})
}

func toTransactionList(txns []domain.Transaction) []dto.TransactionResponse {
	out := make([]dto.TransactionResponse, 0, len(txns))
	for i := range txns {
		out = append(out, dto.FromTransaction(&txns[i]))
	}
	return out
}

package dto

import (
	"time"

	"digital-wallet/internal/core/domain"

	"github.com/shopspring/decimal"
)

// RegisterRequest is the request body for customer registration.
type RegisterRequest struct {
	Username   string `json:"username" binding:"required,min=3,max=50"`
	Password   string `json:"password" binding:"required,min=8,max=128"`
	Name       string `json:"name" binding:"required,min=1,max=100"`
	Surname    string `json:"surname" binding:"required,min=1,max=100"`
	NationalID string `json:"national_id" binding:"required,min=5,max=20"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterResponse is the response body for successful registration.
type RegisterResponse struct {
	UserID     string `json:"user_id"`
	CustomerID string `json:"customer_id"`
	Username   string `json:"username"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// CreateWalletRequest is the request body for wallet creation.
type CreateWalletRequest struct {
	CustomerID     string `json:"customer_id" binding:"required,uuid"`
	Name           string `json:"name" binding:"required,min=1,max=100"`
	Currency       string `json:"currency" binding:"required,wallet_currency"`
	ActiveShopping bool   `json:"active_shopping"`
	ActiveWithdraw bool   `json:"active_withdraw"`
}

// DepositRequest is the request body for a deposit.
type DepositRequest struct {
	Amount            decimal.Decimal `json:"amount" binding:"required"`
	Source            string          `json:"source" binding:"required,max=100"`
	OppositePartyType string          `json:"opposite_party_type" binding:"required,opposite_party_type"`
}

// WithdrawRequest is the request body for a withdrawal.
type WithdrawRequest struct {
	Amount            decimal.Decimal `json:"amount" binding:"required"`
	Destination       string          `json:"destination" binding:"required,max=100"`
	OppositePartyType string          `json:"opposite_party_type" binding:"required,opposite_party_type"`
}

// DecisionRequest is the request body for approving or denying a transaction.
type DecisionRequest struct {
	Status string `json:"status" binding:"required,oneof=APPROVED DENIED"`
}

// WalletResponse is the response body for wallet state.
type WalletResponse struct {
	ID             string          `json:"id"`
	CustomerID     string          `json:"customer_id"`
	Name           string          `json:"name"`
	Currency       string          `json:"currency"`
	ActiveShopping bool            `json:"active_shopping"`
	ActiveWithdraw bool            `json:"active_withdraw"`
	Balance        decimal.Decimal `json:"balance"`
	UsableBalance  decimal.Decimal `json:"usable_balance"`
	CreatedAt      string          `json:"created_at"`
}

// TransactionResponse is the response body for transaction results.
type TransactionResponse struct {
	ID                string          `json:"id"`
	WalletID          string          `json:"wallet_id"`
	Amount            decimal.Decimal `json:"amount"`
	Type              string          `json:"type"`
	OppositeParty     string          `json:"opposite_party"`
	OppositePartyType string          `json:"opposite_party_type"`
	Status            string          `json:"status"`
	CreatedAt         string          `json:"created_at"`
	ProcessedAt       *string         `json:"processed_at,omitempty"`
}

// TransferResponse is the response body for deposit and withdraw requests.
type TransferResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Wallet      WalletResponse      `json:"wallet"`
	Pending     bool                `json:"pending"`
}

// DecisionResponse is the response body for a transaction decision.
type DecisionResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Wallet      WalletResponse      `json:"wallet"`
}

// FromWallet converts a domain wallet to its response shape.
func FromWallet(w *domain.Wallet) WalletResponse {
	return WalletResponse{
		ID:             w.ID.String(),
		CustomerID:     w.CustomerID.String(),
		Name:           w.Name,
		Currency:       string(w.Currency),
		ActiveShopping: w.ActiveShopping,
		ActiveWithdraw: w.ActiveWithdraw,
		Balance:        w.Balance,
		UsableBalance:  w.UsableBalance,
		CreatedAt:      w.CreatedAt.Format(time.RFC3339),
	}
}

// FromTransaction converts a domain transaction to its response shape.
func FromTransaction(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:                t.ID.String(),
		WalletID:          t.WalletID.String(),
		Amount:            t.Amount,
		Type:              string(t.Type),
		OppositeParty:     t.OppositeParty,
		OppositePartyType: string(t.OppositePartyType),
		Status:            string(t.Status),
		CreatedAt:         t.CreatedAt.Format(time.RFC3339),
	}
	if t.ProcessedAt != nil {
		processed := t.ProcessedAt.Format(time.RFC3339)
		resp.ProcessedAt = &processed
	}
	return resp
}

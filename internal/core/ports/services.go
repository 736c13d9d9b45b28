package ports

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

import (
	"context"
	"time"

	"digital-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(user *domain.User) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims the policy layer needs.
type TokenClaims struct {
	UserID     uuid.UUID
	CustomerID uuid.UUID
	Role       domain.Role
}

// HashService handles password hashing.
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// --- Service Ports (Business Logic) ---

// TransactionService governs the transaction lifecycle and drives the wallet
// balance engine.
type TransactionService interface {
	Create(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error)
	Approve(ctx context.Context, req ApproveTransactionRequest, auth domain.AuthContext) (*ApproveTransactionResult, error)
	ListByWallet(ctx context.Context, walletID uuid.UUID, auth domain.AuthContext) ([]domain.Transaction, error)
	ListAll(ctx context.Context, auth domain.AuthContext) ([]domain.Transaction, error)
}

// ApproveTransactionRequest holds validated input for an approval decision.
type ApproveTransactionRequest struct {
	TransactionID uuid.UUID
	Status        domain.TransactionStatus // APPROVED or DENIED
}

// ApproveTransactionResult is the decided transaction plus the wallet after
// the balance update.
type ApproveTransactionResult struct {
	Transaction *domain.Transaction
	Wallet      *domain.Wallet
}

// WalletService owns wallet creation and the deposit/withdraw entry points.
type WalletService interface {
	Create(ctx context.Context, req CreateWalletRequest, auth domain.AuthContext) (*domain.Wallet, error)
	List(ctx context.Context, customerID uuid.UUID) ([]domain.Wallet, error)
	Deposit(ctx context.Context, req DepositRequest) (*TransferResult, error)
	Withdraw(ctx context.Context, req WithdrawRequest, auth domain.AuthContext) (*TransferResult, error)
}

// CreateWalletRequest holds validated input for wallet creation.
type CreateWalletRequest struct {
	CustomerID     uuid.UUID
	Name           string
	Currency       domain.Currency
	ActiveShopping bool
	ActiveWithdraw bool
}

// DepositRequest holds validated input for a deposit.
type DepositRequest struct {
	WalletID          uuid.UUID
	Amount            decimal.Decimal
	Source            string
	OppositePartyType domain.OppositePartyType
}

// WithdrawRequest holds validated input for a withdrawal.
type WithdrawRequest struct {
	WalletID          uuid.UUID
	Amount            decimal.Decimal
	Destination       string
	OppositePartyType domain.OppositePartyType
}

// TransferResult is the created transaction plus the wallet after the
// balance update. Pending signals the caller that an employee decision is
// still outstanding.
type TransferResult struct {
	Transaction *domain.Transaction
	Wallet      *domain.Wallet
	Pending     bool
}

// AuthService defines authentication business logic.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
}

// RegisterRequest holds input for customer registration.
type RegisterRequest struct {
	Username   string
	Password   string
	Name       string
	Surname    string
	NationalID string
}

package ports

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

import (
	"context"

	"digital-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx run inside a database transaction; the ForUpdate
// read takes a row lock that serializes balance mutations per wallet.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error)
	UpdateBalances(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance, usableBalance decimal.Decimal) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Wallet, error)
	ExistsByCustomer(ctx context.Context, customerID uuid.UUID) (bool, error)
}

// TransactionRepository defines persistence operations for transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	// UpdateStatusIfPending moves a transaction out of PENDING. It returns
	// false when the transaction was not PENDING anymore, which callers
	// must treat as an invalid state transition.
	UpdateStatusIfPending(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.TransactionStatus) (bool, error)
	ListByWallet(ctx context.Context, walletID uuid.UUID) ([]domain.Transaction, error)
	// ListByWalletAndStatus reads within the caller's database transaction
	// so the balance recompute observes a consistent pending set.
	ListByWalletAndStatus(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, status domain.TransactionStatus) ([]domain.Transaction, error)
	ListAll(ctx context.Context) ([]domain.Transaction, error)
}

// CustomerRepository defines persistence operations for customers.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// UserRepository defines persistence operations for authentication users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"digital-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

const walletColumns = `id, customer_id, name, currency, active_shopping, active_withdraw, balance, usable_balance, created_at, updated_at`

// Create inserts a new wallet into the database.
func (r *WalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	query := `INSERT INTO wallets (id, customer_id, name, currency, active_shopping, active_withdraw, balance, usable_balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		w.ID, w.CustomerID, w.Name, w.Currency, w.ActiveShopping,
		w.ActiveWithdraw, w.Balance, w.UsableBalance, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetByID fetches a wallet by its UUID (without locking).
func (r *WalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1`

	w := &domain.Wallet{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&w.ID, &w.CustomerID, &w.Name, &w.Currency, &w.ActiveShopping,
		&w.ActiveWithdraw, &w.Balance, &w.UsableBalance, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet by id: %w", err)
	}
	return w, nil
}

// GetByIDForUpdate fetches a wallet by ID holding the row lock. NOWAIT makes
// contention surface immediately as SQLSTATE 55P03 instead of queueing; the
// caller owns the retry policy. Must be called within a transaction.
func (r *WalletRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1 FOR UPDATE NOWAIT`

	w := &domain.Wallet{}
	err := tx.QueryRow(ctx, query, id).Scan(
		&w.ID, &w.CustomerID, &w.Name, &w.Currency, &w.ActiveShopping,
		&w.ActiveWithdraw, &w.Balance, &w.UsableBalance, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet for update: %w", err)
	}
	return w, nil
}

// ListByCustomer fetches all wallets owned by a customer.
func (r *WalletRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE customer_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("list wallets by customer: %w", err)
	}
	defer rows.Close()

	var wallets []domain.Wallet
	for rows.Next() {
		var w domain.Wallet
		if err := rows.Scan(
			&w.ID, &w.CustomerID, &w.Name, &w.Currency, &w.ActiveShopping,
			&w.ActiveWithdraw, &w.Balance, &w.UsableBalance, &w.CreatedAt, &w.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan wallet: %w", err)
		}
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallets: %w", err)
	}
	return wallets, nil
}

// ExistsByCustomer reports whether the customer owns at least one wallet.
func (r *WalletRepo) ExistsByCustomer(ctx context.Context, customerID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM wallets WHERE customer_id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, customerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check wallets by customer: %w", err)
	}
	return exists, nil
}

// UpdateBalances persists both balance fields within a transaction.
func (r *WalletRepo) UpdateBalances(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance, usableBalance decimal.Decimal) error {
	query := `UPDATE wallets SET balance = $1, usable_balance = $2, updated_at = NOW() WHERE id = $3`

	tag, err := tx.Exec(ctx, query, balance, usableBalance, walletID)
	if err != nil {
		return fmt.Errorf("update wallet balances: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %s", walletID)
	}
	return nil
}

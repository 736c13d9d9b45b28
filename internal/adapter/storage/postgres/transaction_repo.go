package postgres

import (
	"context"
	"errors"
	"fmt"

	"digital-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

const transactionColumns = `id, wallet_id, amount, type, opposite_party, opposite_party_type, status, created_at, processed_at`

// Create inserts a transaction within the caller's database transaction so
// the insert commits atomically with the wallet balance update.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (id, wallet_id, amount, type, opposite_party, opposite_party_type, status, created_at, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := tx.Exec(ctx, query,
		t.ID, t.WalletID, t.Amount, t.Type, t.OppositeParty,
		t.OppositePartyType, t.Status, t.CreatedAt, t.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID fetches a transaction by its UUID.
func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	t := &domain.Transaction{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.WalletID, &t.Amount, &t.Type, &t.OppositeParty,
		&t.OppositePartyType, &t.Status, &t.CreatedAt, &t.ProcessedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction by id: %w", err)
	}
	return t, nil
}

// UpdateStatusIfPending moves a transaction out of PENDING. Returns false
// when the row was already decided; the status predicate in the WHERE clause
// is what makes concurrent decisions safe.
func (r *TransactionRepo) UpdateStatusIfPending(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.TransactionStatus) (bool, error) {
	query := `UPDATE transactions SET status = $1, processed_at = NOW() WHERE id = $2 AND status = 'PENDING'`

	tag, err := tx.Exec(ctx, query, status, id)
	if err != nil {
		return false, fmt.Errorf("update transaction status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListByWallet fetches a wallet's transactions, newest first.
func (r *TransactionRepo) ListByWallet(ctx context.Context, walletID uuid.UUID) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE wallet_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, walletID)
	if err != nil {
		return nil, fmt.Errorf("list transactions by wallet: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// ListByWalletAndStatus fetches a wallet's transactions in a given status
// within the caller's database transaction. The balance engine uses it under
// the wallet row lock, so the pending set it sums cannot move underneath it.
func (r *TransactionRepo) ListByWalletAndStatus(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, status domain.TransactionStatus) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE wallet_id = $1 AND status = $2 ORDER BY created_at`

	rows, err := tx.Query(ctx, query, walletID, status)
	if err != nil {
		return nil, fmt.Errorf("list transactions by wallet and status: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// ListAll fetches every transaction, newest first.
func (r *TransactionRepo) ListAll(ctx context.Context) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list all transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func scanTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	var txns []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(
			&t.ID, &t.WalletID, &t.Amount, &t.Type, &t.OppositeParty,
			&t.OppositePartyType, &t.Status, &t.CreatedAt, &t.ProcessedAt,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txns, nil
}

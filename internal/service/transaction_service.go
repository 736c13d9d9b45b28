package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"digital-wallet/internal/core/domain"
	"digital-wallet/internal/core/ports"
	"digital-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	// Bounded wait on wallet row contention: attempts * backoff.
	walletLockAttempts = 3
	walletLockBackoff  = 50 * time.Millisecond
)

// pgLockNotAvailable is the SQLSTATE returned for FOR UPDATE NOWAIT conflicts.
const pgLockNotAvailable = "55P03"

// TransactionServiceImpl implements ports.TransactionService: the transaction
// lifecycle plus the wallet balance engine it drives. Every balance mutation
// runs inside a database transaction holding the wallet row lock, so
// concurrent operations against the same wallet are serialized while
// different wallets proceed in parallel.
type TransactionServiceImpl struct {
	txRepo     ports.TransactionRepository
	walletRepo ports.WalletRepository
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewTransactionService creates a new TransactionServiceImpl.
func NewTransactionService(
	txRepo ports.TransactionRepository,
	walletRepo ports.WalletRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *TransactionServiceImpl {
	return &TransactionServiceImpl{
		txRepo:     txRepo,
		walletRepo: walletRepo,
		transactor: transactor,
		log:        log,
	}
}

// Create persists a transaction and applies its balance effect as one atomic
// unit. A transaction arriving APPROVED (at or under the approval threshold)
// settles both balance fields immediately; a PENDING one only reserves the
// amount against Balance.
func (s *TransactionServiceImpl) Create(ctx context.Context, txn *domain.Transaction) (*domain.Transaction, error) {
	s.log.Info().
		Str("wallet_id", txn.WalletID.String()).
		Str("type", string(txn.Type)).
		Str("status", string(txn.Status)).
		Msg("creating transaction")

	event := domain.EventCompletePending
	if txn.Status == domain.TransactionStatusApproved {
		event = domain.EventCompleteApproved
	}
	op, err := domain.ResolveBalanceOperation(event, txn.Type)
	if err != nil {
		return nil, apperror.ErrInvalidOperation(err)
	}

	err = s.inWalletTx(ctx, txn.WalletID, func(dbTx pgx.Tx, wallet *domain.Wallet) error {
		if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
			return apperror.InternalError(fmt.Errorf("create transaction: %w", err))
		}
		_, err := s.applyBalanceOperation(ctx, dbTx, wallet, txn, op)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("tx_id", txn.ID.String()).Msg("transaction created")
	return txn, nil
}

// Approve decides a PENDING transaction. APPROVED settles the amount into
// UsableBalance and re-syncs Balance; DENIED releases the reservation.
// EMPLOYEE only. Transactions already decided fail with an invalid-state
// error and cause no balance change.
func (s *TransactionServiceImpl) Approve(ctx context.Context, req ports.ApproveTransactionRequest, auth domain.AuthContext) (*ports.ApproveTransactionResult, error) {
	if !auth.IsEmployee() {
		s.log.Warn().
			Str("user_id", auth.UserID.String()).
			Str("tx_id", req.TransactionID.String()).
			Msg("non-employee attempted transaction decision")
		return nil, apperror.ErrUnauthorized("approve or deny transactions")
	}
	if req.Status != domain.TransactionStatusApproved && req.Status != domain.TransactionStatusDenied {
		return nil, apperror.Validation("decision must be APPROVED or DENIED")
	}

	txn, err := s.txRepo.GetByID(ctx, req.TransactionID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get transaction: %w", err))
	}
	if txn == nil {
		return nil, apperror.ErrNotFound("Transaction")
	}
	if txn.Status != domain.TransactionStatusPending {
		return nil, apperror.ErrInvalidState()
	}

	event := domain.EventCompleteApproved
	if req.Status == domain.TransactionStatusDenied {
		event = domain.EventRevertPending
	}
	op, err := domain.ResolveBalanceOperation(event, txn.Type)
	if err != nil {
		return nil, apperror.ErrInvalidOperation(err)
	}

	var updated *domain.Wallet
	err = s.inWalletTx(ctx, txn.WalletID, func(dbTx pgx.Tx, wallet *domain.Wallet) error {
		// Guarded update: a concurrent decision that won the wallet lock
		// first has already moved the transaction out of PENDING.
		moved, err := s.txRepo.UpdateStatusIfPending(ctx, dbTx, txn.ID, req.Status)
		if err != nil {
			return apperror.InternalError(fmt.Errorf("update transaction status: %w", err))
		}
		if !moved {
			return apperror.ErrInvalidState()
		}

		updated, err = s.applyBalanceOperation(ctx, dbTx, wallet, txn, op)
		return err
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	txn.Status = req.Status
	txn.ProcessedAt = &now

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("decision", string(req.Status)).
		Msg("transaction decided")

	return &ports.ApproveTransactionResult{Transaction: txn, Wallet: updated}, nil
}

// ListByWallet lists a wallet's transactions. Owner or EMPLOYEE only.
func (s *TransactionServiceImpl) ListByWallet(ctx context.Context, walletID uuid.UUID, auth domain.AuthContext) ([]domain.Transaction, error) {
	wallet, err := s.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("Wallet")
	}
	if !wallet.OwnedBy(auth.CustomerID) && !auth.IsEmployee() {
		return nil, apperror.ErrUnauthorized("list transactions for this wallet")
	}

	txns, err := s.txRepo.ListByWallet(ctx, walletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}
	return txns, nil
}

// ListAll lists every transaction in the system. EMPLOYEE only.
func (s *TransactionServiceImpl) ListAll(ctx context.Context, auth domain.AuthContext) ([]domain.Transaction, error) {
	if !auth.IsEmployee() {
		return nil, apperror.ErrUnauthorized("list all transactions")
	}

	txns, err := s.txRepo.ListAll(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list all transactions: %w", err))
	}
	return txns, nil
}

// applyBalanceOperation mutates the wallet's balance fields per the resolved
// rule and persists them within the caller's database transaction.
//
// COMPLETE_PENDING_* and REVERT_PENDING_* only move Balance (the reservation
// side). COMPLETE_APPROVED_* first settles UsableBalance, then recomputes
// Balance as usable funds plus the signed sum of all still-pending
// transactions; intervening pending activity may have moved Balance while
// this transaction sat in the queue, and the recompute keeps the two fields
// consistent regardless of approval order.
func (s *TransactionServiceImpl) applyBalanceOperation(ctx context.Context, dbTx pgx.Tx, wallet *domain.Wallet, txn *domain.Transaction, op domain.BalanceOperation) (*domain.Wallet, error) {
	amount := txn.Amount

	switch op {
	case domain.OpCompletePendingDeposit:
		wallet.Balance = wallet.Balance.Add(amount)
	case domain.OpCompletePendingWithdraw:
		wallet.Balance = wallet.Balance.Sub(amount)
	case domain.OpRevertPendingDeposit:
		wallet.Balance = wallet.Balance.Sub(amount)
	case domain.OpRevertPendingWithdraw:
		wallet.Balance = wallet.Balance.Add(amount)
	case domain.OpCompleteApprovedDeposit:
		wallet.UsableBalance = wallet.UsableBalance.Add(amount)
		balance, err := s.finalBalance(ctx, dbTx, wallet, txn)
		if err != nil {
			return nil, err
		}
		wallet.Balance = balance
	case domain.OpCompleteApprovedWithdraw:
		wallet.UsableBalance = wallet.UsableBalance.Sub(amount)
		balance, err := s.finalBalance(ctx, dbTx, wallet, txn)
		if err != nil {
			return nil, err
		}
		wallet.Balance = balance
	default:
		return nil, apperror.ErrInvalidOperation(fmt.Errorf("unhandled balance operation: %q", op))
	}

	if err := s.walletRepo.UpdateBalances(ctx, dbTx, wallet.ID, wallet.Balance, wallet.UsableBalance); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update wallet balances: %w", err))
	}

	s.log.Info().
		Str("wallet_id", wallet.ID.String()).
		Str("operation", string(op)).
		Str("balance", wallet.Balance.String()).
		Str("usable_balance", wallet.UsableBalance.String()).
		Msg("wallet balances updated")

	return wallet, nil
}

// finalBalance computes UsableBalance plus the signed amounts of every
// transaction still PENDING on the wallet, excluding the one just decided.
func (s *TransactionServiceImpl) finalBalance(ctx context.Context, dbTx pgx.Tx, wallet *domain.Wallet, decided *domain.Transaction) (decimal.Decimal, error) {
	pending, err := s.txRepo.ListByWalletAndStatus(ctx, dbTx, wallet.ID, domain.TransactionStatusPending)
	if err != nil {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("list pending transactions: %w", err))
	}

	balance := wallet.UsableBalance
	for i := range pending {
		if pending[i].ID == decided.ID {
			continue
		}
		balance = balance.Add(pending[i].SignedAmount())
	}
	return balance, nil
}

// inWalletTx runs fn inside a database transaction holding the wallet's row
// lock. Lock contention is retried with backoff; once attempts are exhausted
// the failure surfaces as a transient store conflict the caller may retry.
func (s *TransactionServiceImpl) inWalletTx(ctx context.Context, walletID uuid.UUID, fn func(dbTx pgx.Tx, wallet *domain.Wallet) error) error {
	var lastErr error
	for attempt := 1; attempt <= walletLockAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return apperror.InternalError(ctx.Err())
			case <-time.After(time.Duration(attempt-1) * walletLockBackoff):
			}
		}

		err := s.runWalletTx(ctx, walletID, fn)
		if err == nil {
			return nil
		}
		if !isLockConflict(err) {
			return err
		}
		lastErr = err
		s.log.Warn().
			Str("wallet_id", walletID.String()).
			Int("attempt", attempt).
			Msg("wallet row locked by concurrent operation, retrying")
	}
	return apperror.ErrStoreConflict(lastErr)
}

func (s *TransactionServiceImpl) runWalletTx(ctx context.Context, walletID uuid.UUID, fn func(dbTx pgx.Tx, wallet *domain.Wallet) error) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, walletID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return apperror.ErrNotFound("Wallet")
	}

	if err := fn(dbTx, wallet); err != nil {
		return err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

func isLockConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgLockNotAvailable
}

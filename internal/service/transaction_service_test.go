package service

import (
	"context"
	"testing"

	"digital-wallet/internal/core/domain"
	"digital-wallet/internal/core/ports"
	"digital-wallet/internal/core/ports/mocks"
	"digital-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type transactionTestDeps struct {
	svc        *TransactionServiceImpl
	txRepo     *mocks.MockTransactionRepository
	walletRepo *mocks.MockWalletRepository
	transactor *mocks.MockDBTransactor
	ctrl       *gomock.Controller
}

func setupTransactionService(t *testing.T) *transactionTestDeps {
	ctrl := gomock.NewController(t)
	d := &transactionTestDeps{
		txRepo:     mocks.NewMockTransactionRepository(ctrl),
		walletRepo: mocks.NewMockWalletRepository(ctrl),
		transactor: mocks.NewMockDBTransactor(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewTransactionService(d.txRepo, d.walletRepo, d.transactor, zerolog.Nop())
	return d
}

// mockTx implements pgx.Tx for testing
type mockTx struct{ pgx.Tx }

func (m *mockTx) Rollback(_ context.Context) error { return nil }
func (m *mockTx) Commit(_ context.Context) error   { return nil }

func testWallet(balance, usable string) *domain.Wallet {
	return &domain.Wallet{
		ID:             uuid.New(),
		CustomerID:     uuid.New(),
		Name:           "Main",
		Currency:       domain.CurrencyTRY,
		ActiveShopping: true,
		ActiveWithdraw: true,
		Balance:        decimal.RequireFromString(balance),
		UsableBalance:  decimal.RequireFromString(usable),
	}
}

func employeeAuth() domain.AuthContext {
	return domain.AuthContext{UserID: uuid.New(), CustomerID: uuid.New(), Role: domain.RoleEmployee}
}

func customerAuth(customerID uuid.UUID) domain.AuthContext {
	return domain.AuthContext{UserID: uuid.New(), CustomerID: customerID, Role: domain.RoleCustomer}
}

// ==================== Create Tests ====================

func TestTransactionService_Create_ApprovedDeposit_SettlesBothBalances(t *testing.T) {
	d := setupTransactionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	wallet := testWallet("1000", "1000")
	tx := &mockTx{}

	txn := &domain.Transaction{
		ID:       uuid.New(),
		WalletID: wallet.ID,
		Amount:   decimal.RequireFromString("500"),
		Type:     domain.TransactionTypeDeposit,
		Status:   domain.TransactionStatusApproved,
	}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, wallet.ID).Return(wallet, nil)
	d.txRepo.EXPECT().Create(ctx, tx, txn).Return(nil)
	d.txRepo.EXPECT().
		ListByWalletAndStatus(ctx, tx, wallet.ID, domain.TransactionStatusPending).
		Return(nil, nil)
	d.walletRepo.EXPECT().
		UpdateBalances(ctx, tx, wallet.ID, decimal.RequireFromString("1500"), decimal.RequireFromString("1500")).
		Return(nil)

	created, err := d.svc.Create(ctx, txn)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusApproved, created.Status)
	assert.True(t, wallet.Balance.Equal(decimal.RequireFromString("1500")))
	assert.True(t, wallet.UsableBalance.Equal(decimal.RequireFromString("1500")))
}

func TestTransactionService_Create_PendingWithdraw_ReservesBalanceOnly(t *testing.T) {
	d := setupTransactionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	wallet := testWallet("1500", "1500")
	tx := &mockTx{}

	txn := &domain.Transaction{
		ID:       uuid.New(),
		WalletID: wallet.ID,
		Amount:   decimal.RequireFromString("20000"),
		Type:     domain.TransactionTypeWithdraw,
		Status:   domain.TransactionStatusPending,
	}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, wallet.ID).Return(wallet, nil)
	d.txRepo.EXPECT().Create(ctx, tx, txn).Return(nil)
	d.walletRepo.EXPECT().
		UpdateBalances(ctx, tx, wallet.ID, decimal.RequireFromString("-18500"), decimal.RequireFromString("1500")).
		Return(nil)

	created, err := d.svc.Create(ctx, txn)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusPending, created.Status)
	assert.True(t, wallet.Balance.Equal(decimal.RequireFromString("-18500")))
	assert.True(t, wallet.UsableBalance.Equal(decimal.RequireFromString("1500")))
}

func TestTransactionService_Create_PendingDeposit_ReservesBalanceOnly(t *testing.T) {
	d := setupTransactionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	wallet := testWallet("100", "100")
	tx := &mockTx{}

	txn := &domain.Transaction{
		ID:       uuid.New(),
		WalletID: wallet.ID,
		Amount:   decimal.RequireFromString("5000"),
		Type:     domain.TransactionTypeDeposit,
		Status:   domain.TransactionStatusPending,
	}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, wallet.ID).Return(wallet, nil)
	d.txRepo.EXPECT().Create(ctx, tx, txn).Return(nil)
	d.walletRepo.EXPECT().
		UpdateBalances(ctx, tx, wallet.ID, decimal.RequireFromString("5100"), decimal.RequireFromString("100")).
		Return(nil)

	_, err := d.svc.Create(ctx, txn)
	require.NoError(t, err)
}

func TestTransactionService_Create_WalletNotFound(t *testing.T) {
	d := setupTransactionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()
	tx := &mockTx{}

	txn := &domain.Transaction{
		ID:       uuid.New(),
		WalletID: walletID,
		Amount:   decimal.RequireFromString("10"),
		Type:     domain.TransactionTypeDeposit,
		Status:   domain.TransactionStatusApproved,
	}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, walletID).Return(nil, nil)

	_, err := d.svc.Create(ctx, txn)
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "WAL_001", appErr.Code)
}

func TestTransactionService_Create_LockContention_RetriesThenConflict(t *testing.T) {
	d := setupTransactionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()
	tx := &mockTx{}
	lockErr := &pgconn.PgError{Code: "55P03"}

	txn := &domain.Transaction{
		ID:       uuid.New(),
		WalletID: walletID,
		Amount:   decimal.RequireFromString("10"),
		Type:     domain.TransactionTypeDeposit,
		Status:   domain.TransactionStatusApproved,
	}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil).Times(walletLockAttempts)
	d.walletRepo.EXPECT().
		GetByIDForUpdate(ctx, tx, walletID).
		Return(nil, lockErr).
		Times(walletLockAttempts)

	_, err := d.svc.Create(ctx, txn)
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "SYS_002", appErr.Code)
}

func TestTransactionService_Create_LockContention_SucceedsOnRetry(t *testing.T) {
	d := setupTransactionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	wallet := testWallet("0", "0")
	tx := &mockTx{}
	lockErr := &pgconn.PgError{Code: "55P03"}

	txn := &domain.Transaction{
		ID:       uuid.New(),
		WalletID: wallet.ID,
		Amount:   decimal.RequireFromString("100"),
		Type:     domain.TransactionTypeDeposit,
		Status:   domain.TransactionStatusApproved,
	}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil).Times(2)
	first := d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, wallet.ID).Return(nil, lockErr)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, wallet.ID).Return(wallet, nil).After(first)
	d.txRepo.EXPECT().Create(ctx, tx, txn).Return(nil)
	d.txRepo.EXPECT().
		ListByWalletAndStatus(ctx, tx, wallet.ID, domain.TransactionStatusPending).
		Return(nil, nil)
	d.walletRepo.EXPECT().
		UpdateBalances(ctx, tx, wallet.ID, decimal.RequireFromString("100"), decimal.RequireFromString("100")).
		Return(nil)

	_, err := d.svc.Create(ctx, txn)
	require.NoError(t, err)
}

// ==================== Approve Tests ====================

func TestTransactionService_Approve_Withdraw_SettlesUsableBalance(t *testing.T) {
	d := setupTransactionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	wallet := testWallet("-18500", "1500")
	tx := &mockTx{}

	txn := &domain.Transaction{
		ID:       uuid.New(),
		WalletID: wallet.ID,
		Amount:   decimal.RequireFromString("20000"),
		Type:     domain.TransactionTypeWithdraw,
		Status:   domain.TransactionStatusPending,
	}

	d.txRepo.EXPECT().GetByID(ctx, txn.ID).Return(txn, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, wallet.ID).Return(wallet, nil)
	d.txRepo.EXPECT().
		UpdateStatusIfPending(ctx, tx, txn.ID, domain.TransactionStatusApproved).
		Return(true, nil)
	// No other pending transactions, so Balance tracks UsableBalance exactly.
	d.txRepo.EXPECT().
		ListByWalletAndStatus(ctx, tx, wallet.ID, domain.TransactionStatusPending).
		Return([]domain.Transaction{*txn}, nil)
	d.walletRepo.EXPECT().
		UpdateBalances(ctx, tx, wallet.ID, decimal.RequireFromString("-18500"), decimal.RequireFromString("-18500")).
		Return(nil)

	result, err := d.svc.Approve(ctx, ports.ApproveTransactionRequest{
		TransactionID: txn.ID,
		Status:        domain.TransactionStatusApproved,
	}, employeeAuth())
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusApproved, result.Transaction.Status)
	require.NotNil(t, result.Transaction.ProcessedAt)
	assert.True(t, result.Wallet.UsableBalance.Equal(decimal.RequireFromString("-18500")))
}

func TestTransactionService_Approve_Deny_ReleasesReservation(t *testing.T) {
	d := setupTransactionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	wallet := testWallet("-18500", "1500")
	tx := &mockTx{}

	txn := &domain.Transaction{
		ID:       uuid.New(),
		WalletID: wallet.ID,
		Amount:   decimal.RequireFromString("20000"),
		Type:     domain.TransactionTypeWithdraw,
		Status:   domain.TransactionStatusPending,
	}

	d.txRepo.EXPECT().GetByID(ctx, txn.ID).Return(txn, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, wallet.ID).Return(wallet, nil)
	d.txRepo.EXPECT().
		UpdateStatusIfPending(ctx, tx, txn.ID, domain.TransactionStatusDenied).
		Return(true, nil)
	d.walletRepo.EXPECT().
		UpdateBalances(ctx, tx, wallet.ID, decimal.RequireFromString("1500"), decimal.RequireFromString("1500")).
		Return(nil)

	result, err := d.svc.Approve(ctx, ports.ApproveTransactionRequest{
		TransactionID: txn.ID,
		Status:        domain.TransactionStatusDenied,
	}, employeeAuth())
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusDenied, result.Transaction.Status)
	assert.True(t, result.Wallet.Balance.Equal(decimal.RequireFromString("1500")))
	assert.True(t, result.Wallet.UsableBalance.Equal(decimal.RequireFromString("1500")))
}

func TestTransactionService_Approve_RecomputesBalanceWithOtherPending(t *testing.T) {
	d := setupTransactionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	wallet := testWallet("1300", "1000")
	tx := &mockTx{}

	decided := &domain.Transaction{
		ID:       uuid.New(),
		WalletID: wallet.ID,
		Amount:   decimal.RequireFromString("500"),
		Type:     domain.TransactionTypeDeposit,
		Status:   domain.TransactionStatusPending,
	}
	otherPending := domain.Transaction{
		ID:       uuid.New(),
		WalletID: wallet.ID,
		Amount:   decimal.RequireFromString("200"),
		Type:     domain.TransactionTypeWithdraw,
		Status:   domain.TransactionStatusPending,
	}

	d.txRepo.EXPECT().GetByID(ctx, decided.ID).Return(decided, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, wallet.ID).Return(wallet, nil)
	d.txRepo.EXPECT().
		UpdateStatusIfPending(ctx, tx, decided.ID, domain.TransactionStatusApproved).
		Return(true, nil)
	d.txRepo.EXPECT().
		ListByWalletAndStatus(ctx, tx, wallet.ID, domain.TransactionStatusPending).
		Return([]domain.Transaction{*decided, otherPending}, nil)
	// Usable settles to 1500; the untouched pending withdrawal keeps a 200
	// reservation, so Balance lands at 1300.
	d.walletRepo.EXPECT().
		UpdateBalances(ctx, tx, wallet.ID, decimal.RequireFromString("1300"), decimal.RequireFromString("1500")).
		Return(nil)

	result, err := d.svc.Approve(ctx, ports.ApproveTransactionRequest{
		TransactionID: decided.ID,
		Status:        domain.TransactionStatusApproved,
	}, employeeAuth())
	require.NoError(t, err)
	assert.True(t, result.Wallet.Balance.Equal(decimal.RequireFromString("1300")))
	assert.True(t, result.Wallet.UsableBalance.Equal(decimal.RequireFromString("1500")))
}

func TestTransactionService_Approve_NonEmployee(t *testing.T) {
	d := setupTransactionService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.Approve(context.Background(), ports.ApproveTransactionRequest{
		TransactionID: uuid.New(),
		Status:        domain.TransactionStatusApproved,
	}, customerAuth(uuid.New()))
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "AUTH_004", appErr.Code)
}

func TestTransactionService_Approve_InvalidDecision(t *testing.T) {
	d := setupTransactionService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.Approve(context.Background(), ports.ApproveTransactionRequest{
		TransactionID: uuid.New(),
		Status:        domain.TransactionStatusPending,
	}, employeeAuth())
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "WAL_003", appErr.Code)
}

func TestTransactionService_Approve_NotFound(t *testing.T) {
	d := setupTransactionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	txID := uuid.New()
	d.txRepo.EXPECT().GetByID(ctx, txID).Return(nil, nil)

	_, err := d.svc.Approve(ctx, ports.ApproveTransactionRequest{
		TransactionID: txID,
		Status:        domain.TransactionStatusApproved,
	}, employeeAuth())
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "WAL_001", appErr.Code)
}

func TestTransactionService_Approve_AlreadyDecided(t *testing.T) {
	d := setupTransactionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	txn := &domain.Transaction{
		ID:       uuid.New(),
		WalletID: uuid.New(),
		Amount:   decimal.RequireFromString("100"),
		Type:     domain.TransactionTypeDeposit,
		Status:   domain.TransactionStatusApproved,
	}
	d.txRepo.EXPECT().GetByID(ctx, txn.ID).Return(txn, nil)

	_, err := d.svc.Approve(ctx, ports.ApproveTransactionRequest{
		TransactionID: txn.ID,
		Status:        domain.TransactionStatusDenied,
	}, employeeAuth())
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "TXN_001", appErr.Code)
}

func TestTransactionService_Approve_LostRace_NoBalanceChange(t *testing.T) {
	d := setupTransactionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	wallet := testWallet("900", "1000")
	tx := &mockTx{}

	txn := &domain.Transaction{
		ID:       uuid.New(),
		WalletID: wallet.ID,
		Amount:   decimal.RequireFromString("100"),
		Type:     domain.TransactionTypeWithdraw,
		Status:   domain.TransactionStatusPending,
	}

	d.txRepo.EXPECT().GetByID(ctx, txn.ID).Return(txn, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, wallet.ID).Return(wallet, nil)
	// A concurrent decision won the lock first and already moved the status.
	d.txRepo.EXPECT().
		UpdateStatusIfPending(ctx, tx, txn.ID, domain.TransactionStatusApproved).
		Return(false, nil)

	_, err := d.svc.Approve(ctx, ports.ApproveTransactionRequest{
		TransactionID: txn.ID,
		Status:        domain.TransactionStatusApproved,
	}, employeeAuth())
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "TXN_001", appErr.Code)
}

// ==================== Listing Tests ====================

func TestTransactionService_ListByWallet_Owner(t *testing.T) {
	d := setupTransactionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	wallet := testWallet("0", "0")

	d.walletRepo.EXPECT().GetByID(ctx, wallet.ID).Return(wallet, nil)
	d.txRepo.EXPECT().ListByWallet(ctx, wallet.ID).Return([]domain.Transaction{}, nil)

	txns, err := d.svc.ListByWallet(ctx, wallet.ID, customerAuth(wallet.CustomerID))
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestTransactionService_ListByWallet_StrangerDenied(t *testing.T) {
	d := setupTransactionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	wallet := testWallet("0", "0")

	d.walletRepo.EXPECT().GetByID(ctx, wallet.ID).Return(wallet, nil)

	_, err := d.svc.ListByWallet(ctx, wallet.ID, customerAuth(uuid.New()))
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "AUTH_004", appErr.Code)
}

func TestTransactionService_ListByWallet_WalletNotFound(t *testing.T) {
	d := setupTransactionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()
	d.walletRepo.EXPECT().GetByID(ctx, walletID).Return(nil, nil)

	_, err := d.svc.ListByWallet(ctx, walletID, employeeAuth())
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "WAL_001", appErr.Code)
}

func TestTransactionService_ListAll_EmployeeOnly(t *testing.T) {
	d := setupTransactionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	_, err := d.svc.ListAll(ctx, customerAuth(uuid.New()))
	require.Error(t, err)

	d.txRepo.EXPECT().ListAll(ctx).Return([]domain.Transaction{{ID: uuid.New()}}, nil)
	txns, err := d.svc.ListAll(ctx, employeeAuth())
	require.NoError(t, err)
	assert.Len(t, txns, 1)
}

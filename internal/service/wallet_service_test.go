package service

import (
	"context"
	"testing"
	"time"

	"digital-wallet/internal/core/domain"
	"digital-wallet/internal/core/ports"
	"digital-wallet/internal/core/ports/mocks"
	"digital-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type walletTestDeps struct {
	svc          *WalletServiceImpl
	walletRepo   *mocks.MockWalletRepository
	customerRepo *mocks.MockCustomerRepository
	txSvc        *mocks.MockTransactionService
	ctrl         *gomock.Controller
}

func setupWalletService(t *testing.T) *walletTestDeps {
	ctrl := gomock.NewController(t)
	d := &walletTestDeps{
		walletRepo:   mocks.NewMockWalletRepository(ctrl),
		customerRepo: mocks.NewMockCustomerRepository(ctrl),
		txSvc:        mocks.NewMockTransactionService(ctrl),
		ctrl:         ctrl,
	}
	d.svc = NewWalletService(
		d.walletRepo, d.customerRepo, d.txSvc,
		decimal.RequireFromString("1000"), zerolog.Nop(),
	)
	return d
}

// ==================== Create Tests ====================

func TestWalletService_Create_Success(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	customerID := uuid.New()
	customer := &domain.Customer{ID: customerID, Name: "Ada", Surname: "Lovelace", CreatedAt: time.Now()}

	d.customerRepo.EXPECT().GetByID(ctx, customerID).Return(customer, nil)
	d.walletRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)

	wallet, err := d.svc.Create(ctx, ports.CreateWalletRequest{
		CustomerID:     customerID,
		Name:           "Savings",
		Currency:       domain.CurrencyUSD,
		ActiveShopping: true,
		ActiveWithdraw: false,
	}, customerAuth(customerID))
	require.NoError(t, err)
	assert.Equal(t, customerID, wallet.CustomerID)
	assert.Equal(t, "Savings", wallet.Name)
	assert.True(t, wallet.Balance.IsZero())
	assert.True(t, wallet.UsableBalance.IsZero())
	assert.False(t, wallet.ActiveWithdraw)
}

func TestWalletService_Create_CustomerNotFound(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	customerID := uuid.New()
	d.customerRepo.EXPECT().GetByID(ctx, customerID).Return(nil, nil)

	_, err := d.svc.Create(ctx, ports.CreateWalletRequest{CustomerID: customerID}, employeeAuth())
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "WAL_001", appErr.Code)
}

func TestWalletService_Create_StrangerDenied(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	customerID := uuid.New()
	customer := &domain.Customer{ID: customerID}
	d.customerRepo.EXPECT().GetByID(ctx, customerID).Return(customer, nil)

	_, err := d.svc.Create(ctx, ports.CreateWalletRequest{CustomerID: customerID}, customerAuth(uuid.New()))
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "AUTH_004", appErr.Code)
}

func TestWalletService_Create_EmployeeForOtherCustomer(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	customerID := uuid.New()
	customer := &domain.Customer{ID: customerID}
	d.customerRepo.EXPECT().GetByID(ctx, customerID).Return(customer, nil)
	d.walletRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)

	_, err := d.svc.Create(ctx, ports.CreateWalletRequest{
		CustomerID: customerID,
		Name:       "Main",
		Currency:   domain.CurrencyTRY,
	}, employeeAuth())
	require.NoError(t, err)
}

// ==================== List Tests ====================

func TestWalletService_List_CustomerNotFound(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	customerID := uuid.New()
	d.customerRepo.EXPECT().Exists(ctx, customerID).Return(false, nil)

	_, err := d.svc.List(ctx, customerID)
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "WAL_001", appErr.Code)
}

func TestWalletService_List_Success(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	customerID := uuid.New()
	d.customerRepo.EXPECT().Exists(ctx, customerID).Return(true, nil)
	d.walletRepo.EXPECT().ListByCustomer(ctx, customerID).Return([]domain.Wallet{{ID: uuid.New()}}, nil)

	wallets, err := d.svc.List(ctx, customerID)
	require.NoError(t, err)
	assert.Len(t, wallets, 1)
}

// ==================== Deposit Tests ====================

func TestWalletService_Deposit_AtThreshold_AutoApproved(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	wallet := testWallet("0", "0")

	d.walletRepo.EXPECT().GetByID(ctx, wallet.ID).Return(wallet, nil)
	d.txSvc.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, txn *domain.Transaction) (*domain.Transaction, error) {
			// Exactly at the threshold stays below the approval bar.
			assert.Equal(t, domain.TransactionStatusApproved, txn.Status)
			assert.Equal(t, domain.TransactionTypeDeposit, txn.Type)
			return txn, nil
		})
	d.walletRepo.EXPECT().GetByID(ctx, wallet.ID).Return(wallet, nil)

	result, err := d.svc.Deposit(ctx, ports.DepositRequest{
		WalletID:          wallet.ID,
		Amount:            decimal.RequireFromString("1000"),
		Source:            "TR330006100519786457841326",
		OppositePartyType: domain.OppositePartyTypeIBAN,
	})
	require.NoError(t, err)
	assert.False(t, result.Pending)
}

func TestWalletService_Deposit_AboveThreshold_Pending(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	wallet := testWallet("0", "0")

	d.walletRepo.EXPECT().GetByID(ctx, wallet.ID).Return(wallet, nil)
	d.txSvc.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, txn *domain.Transaction) (*domain.Transaction, error) {
			assert.Equal(t, domain.TransactionStatusPending, txn.Status)
			return txn, nil
		})
	d.walletRepo.EXPECT().GetByID(ctx, wallet.ID).Return(wallet, nil)

	result, err := d.svc.Deposit(ctx, ports.DepositRequest{
		WalletID:          wallet.ID,
		Amount:            decimal.RequireFromString("1000.01"),
		Source:            "TR330006100519786457841326",
		OppositePartyType: domain.OppositePartyTypeIBAN,
	})
	require.NoError(t, err)
	assert.True(t, result.Pending)
}

func TestWalletService_Deposit_NonPositiveAmount(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	for _, amount := range []string{"0", "-5"} {
		_, err := d.svc.Deposit(context.Background(), ports.DepositRequest{
			WalletID: uuid.New(),
			Amount:   decimal.RequireFromString(amount),
		})
		require.Error(t, err)
		appErr, ok := err.(*apperror.AppError)
		require.True(t, ok)
		assert.Equal(t, "WAL_003", appErr.Code)
	}
}

func TestWalletService_Deposit_WalletNotFound(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()
	d.walletRepo.EXPECT().GetByID(ctx, walletID).Return(nil, nil)

	_, err := d.svc.Deposit(ctx, ports.DepositRequest{
		WalletID: walletID,
		Amount:   decimal.RequireFromString("50"),
	})
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "WAL_001", appErr.Code)
}

// ==================== Withdraw Tests ====================

func TestWalletService_Withdraw_StrangerDenied(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	wallet := testWallet("500", "500")

	d.walletRepo.EXPECT().GetByID(ctx, wallet.ID).Return(wallet, nil)

	_, err := d.svc.Withdraw(ctx, ports.WithdrawRequest{
		WalletID:          wallet.ID,
		Amount:            decimal.RequireFromString("100"),
		Destination:       "TR330006100519786457841326",
		OppositePartyType: domain.OppositePartyTypeIBAN,
	}, customerAuth(uuid.New()))
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "AUTH_004", appErr.Code)
}

func TestWalletService_Withdraw_WithdrawalsDisabled(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	wallet := testWallet("500", "500")
	wallet.ActiveWithdraw = false

	d.walletRepo.EXPECT().GetByID(ctx, wallet.ID).Return(wallet, nil)

	// Rejected before anything is handed to the transaction lifecycle.
	_, err := d.svc.Withdraw(ctx, ports.WithdrawRequest{
		WalletID:          wallet.ID,
		Amount:            decimal.RequireFromString("100"),
		Destination:       "TR330006100519786457841326",
		OppositePartyType: domain.OppositePartyTypeIBAN,
	}, customerAuth(wallet.CustomerID))
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "WAL_002", appErr.Code)
}

func TestWalletService_Withdraw_ShoppingDisabledForPayment(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	wallet := testWallet("500", "500")
	wallet.ActiveShopping = false

	d.walletRepo.EXPECT().GetByID(ctx, wallet.ID).Return(wallet, nil)

	_, err := d.svc.Withdraw(ctx, ports.WithdrawRequest{
		WalletID:          wallet.ID,
		Amount:            decimal.RequireFromString("100"),
		Destination:       "merchant-421",
		OppositePartyType: domain.OppositePartyTypePayment,
	}, customerAuth(wallet.CustomerID))
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "WAL_002", appErr.Code)
}

func TestWalletService_Withdraw_IBANAllowedWithShoppingDisabled(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	wallet := testWallet("500", "500")
	wallet.ActiveShopping = false

	d.walletRepo.EXPECT().GetByID(ctx, wallet.ID).Return(wallet, nil)
	d.txSvc.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, txn *domain.Transaction) (*domain.Transaction, error) {
			assert.Equal(t, domain.TransactionTypeWithdraw, txn.Type)
			return txn, nil
		})
	d.walletRepo.EXPECT().GetByID(ctx, wallet.ID).Return(wallet, nil)

	_, err := d.svc.Withdraw(ctx, ports.WithdrawRequest{
		WalletID:          wallet.ID,
		Amount:            decimal.RequireFromString("100"),
		Destination:       "TR330006100519786457841326",
		OppositePartyType: domain.OppositePartyTypeIBAN,
	}, customerAuth(wallet.CustomerID))
	require.NoError(t, err)
}

func TestWalletService_Withdraw_EmployeeOnBehalf(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	wallet := testWallet("500", "500")

	d.walletRepo.EXPECT().GetByID(ctx, wallet.ID).Return(wallet, nil)
	d.txSvc.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, txn *domain.Transaction) (*domain.Transaction, error) {
			return txn, nil
		})
	d.walletRepo.EXPECT().GetByID(ctx, wallet.ID).Return(wallet, nil)

	_, err := d.svc.Withdraw(ctx, ports.WithdrawRequest{
		WalletID:          wallet.ID,
		Amount:            decimal.RequireFromString("100"),
		Destination:       "TR330006100519786457841326",
		OppositePartyType: domain.OppositePartyTypeIBAN,
	}, employeeAuth())
	require.NoError(t, err)
}

package service

import (
	"context"
	"fmt"
	"time"

	"digital-wallet/internal/core/domain"
	"digital-wallet/internal/core/ports"
	"digital-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// WalletServiceImpl implements ports.WalletService: wallet creation, listing
// and the deposit/withdraw entry points with their access-policy checks.
type WalletServiceImpl struct {
	walletRepo   ports.WalletRepository
	customerRepo ports.CustomerRepository
	txSvc        ports.TransactionService
	// threshold above which a transaction needs an employee decision
	approvalThreshold decimal.Decimal
	log               zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	walletRepo ports.WalletRepository,
	customerRepo ports.CustomerRepository,
	txSvc ports.TransactionService,
	approvalThreshold decimal.Decimal,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		walletRepo:        walletRepo,
		customerRepo:      customerRepo,
		txSvc:             txSvc,
		approvalThreshold: approvalThreshold,
		log:               log,
	}
}

// Create opens a wallet for a customer with zero balances. The actor must be
// the target customer or an EMPLOYEE.
func (s *WalletServiceImpl) Create(ctx context.Context, req ports.CreateWalletRequest, auth domain.AuthContext) (*domain.Wallet, error) {
	s.log.Info().Str("customer_id", req.CustomerID.String()).Msg("creating wallet")

	customer, err := s.customerRepo.GetByID(ctx, req.CustomerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get customer: %w", err))
	}
	if customer == nil {
		return nil, apperror.ErrNotFound("Customer")
	}

	if req.CustomerID != auth.CustomerID && !auth.IsEmployee() {
		s.log.Warn().
			Str("user_id", auth.UserID.String()).
			Str("customer_id", req.CustomerID.String()).
			Msg("actor not allowed to create wallet for customer")
		return nil, apperror.ErrUnauthorized("create a wallet for this customer")
	}

	now := time.Now().UTC()
	wallet := &domain.Wallet{
		ID:             uuid.New(),
		CustomerID:     customer.ID,
		Name:           req.Name,
		Currency:       req.Currency,
		ActiveShopping: req.ActiveShopping,
		ActiveWithdraw: req.ActiveWithdraw,
		Balance:        decimal.Zero,
		UsableBalance:  decimal.Zero,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.walletRepo.Create(ctx, wallet); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create wallet: %w", err))
	}
	return wallet, nil
}

// List returns a customer's wallets. The customer must exist.
func (s *WalletServiceImpl) List(ctx context.Context, customerID uuid.UUID) ([]domain.Wallet, error) {
	exists, err := s.customerRepo.Exists(ctx, customerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check customer: %w", err))
	}
	if !exists {
		return nil, apperror.ErrNotFound("Customer")
	}

	wallets, err := s.walletRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list wallets: %w", err))
	}
	return wallets, nil
}

// Deposit books money into a wallet. Amounts above the approval threshold
// are created PENDING and wait for an employee decision.
//
// Deposits intentionally carry no ownership check: any authenticated actor
// may deposit into any wallet. Withdrawals do check ownership; the asymmetry
// mirrors the observed production behavior and is kept for parity.
func (s *WalletServiceImpl) Deposit(ctx context.Context, req ports.DepositRequest) (*ports.TransferResult, error) {
	s.log.Info().Str("wallet_id", req.WalletID.String()).Msg("deposit requested")

	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	wallet, err := s.walletRepo.GetByID(ctx, req.WalletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("Wallet")
	}

	txn := s.buildTransaction(wallet, req.Amount, domain.TransactionTypeDeposit, req.Source, req.OppositePartyType)

	if err := s.validateProcessing(wallet, txn); err != nil {
		return nil, err
	}
	return s.submit(ctx, txn)
}

// Withdraw books money out of a wallet. The actor must own the wallet or be
// an EMPLOYEE, and the wallet's capability flags must allow the operation.
func (s *WalletServiceImpl) Withdraw(ctx context.Context, req ports.WithdrawRequest, auth domain.AuthContext) (*ports.TransferResult, error) {
	s.log.Info().Str("wallet_id", req.WalletID.String()).Msg("withdrawal requested")

	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	wallet, err := s.walletRepo.GetByID(ctx, req.WalletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("Wallet")
	}

	if !wallet.OwnedBy(auth.CustomerID) && !auth.IsEmployee() {
		s.log.Warn().
			Str("user_id", auth.UserID.String()).
			Str("wallet_id", wallet.ID.String()).
			Msg("actor not allowed to withdraw from wallet")
		return nil, apperror.ErrUnauthorized("withdraw from this wallet")
	}

	txn := s.buildTransaction(wallet, req.Amount, domain.TransactionTypeWithdraw, req.Destination, req.OppositePartyType)

	if err := s.validateProcessing(wallet, txn); err != nil {
		return nil, err
	}
	return s.submit(ctx, txn)
}

// buildTransaction assembles a transaction with its initial status derived
// from the approval threshold.
func (s *WalletServiceImpl) buildTransaction(wallet *domain.Wallet, amount decimal.Decimal, txType domain.TransactionType, oppositeParty string, oppositePartyType domain.OppositePartyType) *domain.Transaction {
	now := time.Now().UTC()
	status := domain.TransactionStatusApproved
	var processedAt *time.Time
	if amount.GreaterThan(s.approvalThreshold) {
		status = domain.TransactionStatusPending
	} else {
		// Auto-approved transactions settle immediately.
		processedAt = &now
	}

	return &domain.Transaction{
		ID:                uuid.New(),
		WalletID:          wallet.ID,
		Amount:            amount,
		Type:              txType,
		OppositeParty:     oppositeParty,
		OppositePartyType: oppositePartyType,
		Status:            status,
		CreatedAt:         now,
		ProcessedAt:       processedAt,
	}
}

// validateProcessing enforces the wallet capability flags. Rejections happen
// before anything is persisted.
func (s *WalletServiceImpl) validateProcessing(wallet *domain.Wallet, txn *domain.Transaction) error {
	if txn.Type != domain.TransactionTypeWithdraw {
		return nil
	}

	if !wallet.ActiveWithdraw {
		s.log.Info().Str("wallet_id", wallet.ID.String()).Msg("wallet not enabled for withdrawals")
		return apperror.ErrWithdrawalDenied("This wallet is not authorized for withdrawals")
	}
	if txn.OppositePartyType == domain.OppositePartyTypePayment && !wallet.ActiveShopping {
		s.log.Info().Str("wallet_id", wallet.ID.String()).Msg("wallet not enabled for shopping payments")
		return apperror.ErrWithdrawalDenied("This wallet is not authorized for shopping payments")
	}
	return nil
}

// submit hands the transaction to the state machine and reloads the wallet
// for the response.
func (s *WalletServiceImpl) submit(ctx context.Context, txn *domain.Transaction) (*ports.TransferResult, error) {
	created, err := s.txSvc.Create(ctx, txn)
	if err != nil {
		return nil, err
	}

	wallet, err := s.walletRepo.GetByID(ctx, txn.WalletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("reload wallet: %w", err))
	}

	return &ports.TransferResult{
		Transaction: created,
		Wallet:      wallet,
		Pending:     created.Status == domain.TransactionStatusPending,
	}, nil
}

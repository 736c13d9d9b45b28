package service

import (
	"context"
	"fmt"
	"time"

	"digital-wallet/internal/core/domain"
	"digital-wallet/internal/core/ports"
	"digital-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// defaultWalletName is given to the wallet opened at registration.
const defaultWalletName = "Main"

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	userRepo     ports.UserRepository
	customerRepo ports.CustomerRepository
	walletRepo   ports.WalletRepository
	hashSvc      ports.HashService
	tokenSvc     ports.TokenService
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	userRepo ports.UserRepository,
	customerRepo ports.CustomerRepository,
	walletRepo ports.WalletRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		userRepo:     userRepo,
		customerRepo: customerRepo,
		walletRepo:   walletRepo,
		hashSvc:      hashSvc,
		tokenSvc:     tokenSvc,
	}
}

// Register creates a customer with a CUSTOMER-role login and a default TRY
// wallet. Employee accounts are seeded out of band (cmd/seed), never
// self-registered.
func (s *AuthServiceImpl) Register(ctx context.Context, req ports.RegisterRequest) (*domain.User, error) {
	existing, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check username: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrUsernameExists()
	}

	passwordHash, err := s.hashSvc.Hash(req.Password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	now := time.Now().UTC()
	customer := &domain.Customer{
		ID:         uuid.New(),
		Name:       req.Name,
		Surname:    req.Surname,
		NationalID: req.NationalID,
		CreatedAt:  now,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create customer: %w", err))
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     req.Username,
		PasswordHash: passwordHash,
		CustomerID:   customer.ID,
		Role:         domain.RoleCustomer,
		CreatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create user: %w", err))
	}

	hasWallet, err := s.walletRepo.ExistsByCustomer(ctx, customer.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check wallets: %w", err))
	}
	if !hasWallet {
		wallet := &domain.Wallet{
			ID:             uuid.New(),
			CustomerID:     customer.ID,
			Name:           defaultWalletName,
			Currency:       domain.CurrencyTRY,
			ActiveShopping: true,
			ActiveWithdraw: true,
			Balance:        decimal.Zero,
			UsableBalance:  decimal.Zero,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.walletRepo.Create(ctx, wallet); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("create default wallet: %w", err))
		}
	}

	return user, nil
}

// Login validates credentials and returns a JWT token with its expiry.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("find user: %w", err))
	}
	if user == nil {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	valid, err := s.hashSvc.Verify(password, user.PasswordHash)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !valid {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	token, expiry, err := s.tokenSvc.Generate(user)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	return token, expiry, nil
}

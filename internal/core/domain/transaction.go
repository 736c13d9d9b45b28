package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a money movement against a wallet.
type TransactionType string

const (
	TransactionTypeDeposit  TransactionType = "DEPOSIT"
	TransactionTypeWithdraw TransactionType = "WITHDRAW"
)

// TransactionStatus is the lifecycle state of a transaction.
// PENDING may move to APPROVED or DENIED, both terminal. A transaction at or
// under the approval threshold is created directly as APPROVED.
type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "PENDING"
	TransactionStatusApproved TransactionStatus = "APPROVED"
	TransactionStatusDenied   TransactionStatus = "DENIED"
)

// OppositePartyType classifies the external counterparty of a transaction.
type OppositePartyType string

const (
	OppositePartyTypeIBAN    OppositePartyType = "IBAN"
	OppositePartyTypePayment OppositePartyType = "PAYMENT"
)

// Transaction is a deposit or withdrawal against a single wallet. Once it
// leaves PENDING it is immutable evidence of a balance-affecting event.
type Transaction struct {
	ID                uuid.UUID         `json:"id"`
	WalletID          uuid.UUID         `json:"wallet_id"`
	Amount            decimal.Decimal   `json:"amount"`
	Type              TransactionType   `json:"type"`
	OppositeParty     string            `json:"opposite_party"`
	OppositePartyType OppositePartyType `json:"opposite_party_type"`
	Status            TransactionStatus `json:"status"`
	CreatedAt         time.Time         `json:"created_at"`
	ProcessedAt       *time.Time        `json:"processed_at,omitempty"`
}

// IsTerminal returns true once the transaction can no longer change state.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusApproved || t.Status == TransactionStatusDenied
}

// SignedAmount returns the amount with the sign of its balance effect:
// positive for deposits, negative for withdrawals.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionTypeWithdraw {
		return t.Amount.Neg()
	}
	return t.Amount
}

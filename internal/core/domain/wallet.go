package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Currency is the ISO-4217 code of the money a wallet holds.
type Currency string

const (
	CurrencyTRY Currency = "TRY"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// Wallet is a customer's named balance container in a single currency.
//
// Balance is the total including reservations for outstanding pending
// transactions; UsableBalance is the confirmed, immediately available part.
// UsableBalance moves only when a transaction reaches APPROVED; Balance moves
// on every lifecycle event touching the wallet. Both fields are mutated
// exclusively by the transaction service under a wallet row lock.
type Wallet struct {
	ID             uuid.UUID       `json:"id"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	Name           string          `json:"name"`
	Currency       Currency        `json:"currency"`
	ActiveShopping bool            `json:"active_shopping"`
	ActiveWithdraw bool            `json:"active_withdraw"`
	Balance        decimal.Decimal `json:"balance"`
	UsableBalance  decimal.Decimal `json:"usable_balance"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// OwnedBy reports whether the wallet belongs to the given customer.
func (w *Wallet) OwnedBy(customerID uuid.UUID) bool {
	return w.CustomerID == customerID
}

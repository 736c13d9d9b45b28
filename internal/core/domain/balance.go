package domain

import "fmt"

// LifecycleEvent names the transaction state transitions that affect wallet
// balances.
type LifecycleEvent string

const (
	// EventCompletePending fires when a transaction is created PENDING:
	// the amount is reserved against Balance, UsableBalance untouched.
	EventCompletePending LifecycleEvent = "COMPLETE_PENDING"
	// EventRevertPending fires when a PENDING transaction is denied:
	// the reservation on Balance is released.
	EventRevertPending LifecycleEvent = "REVERT_PENDING"
	// EventCompleteApproved fires when a transaction reaches APPROVED,
	// either by employee decision or directly at creation for amounts at
	// or under the approval threshold.
	EventCompleteApproved LifecycleEvent = "COMPLETE_APPROVED"
)

// BalanceOperation is a balance-mutation rule resolved from a lifecycle
// event and a transaction type.
type BalanceOperation string

const (
	OpCompletePendingDeposit   BalanceOperation = "COMPLETE_PENDING_DEPOSIT"
	OpCompletePendingWithdraw  BalanceOperation = "COMPLETE_PENDING_WITHDRAW"
	OpRevertPendingDeposit     BalanceOperation = "REVERT_PENDING_DEPOSIT"
	OpRevertPendingWithdraw    BalanceOperation = "REVERT_PENDING_WITHDRAW"
	OpCompleteApprovedDeposit  BalanceOperation = "COMPLETE_APPROVED_DEPOSIT"
	OpCompleteApprovedWithdraw BalanceOperation = "COMPLETE_APPROVED_WITHDRAW"
)

// balanceOperations is the closed lookup table: 3 events x 2 types.
var balanceOperations = map[LifecycleEvent]map[TransactionType]BalanceOperation{
	EventCompletePending: {
		TransactionTypeDeposit:  OpCompletePendingDeposit,
		TransactionTypeWithdraw: OpCompletePendingWithdraw,
	},
	EventRevertPending: {
		TransactionTypeDeposit:  OpRevertPendingDeposit,
		TransactionTypeWithdraw: OpRevertPendingWithdraw,
	},
	EventCompleteApproved: {
		TransactionTypeDeposit:  OpCompleteApprovedDeposit,
		TransactionTypeWithdraw: OpCompleteApprovedWithdraw,
	},
}

// ResolveBalanceOperation maps a lifecycle event and transaction type to the
// balance-mutation rule to apply. An unknown combination is a programming
// error: callers must treat the returned error as fatal, not as input
// validation.
func ResolveBalanceOperation(event LifecycleEvent, txType TransactionType) (BalanceOperation, error) {
	byType, ok := balanceOperations[event]
	if !ok {
		return "", fmt.Errorf("unknown lifecycle event: %q", event)
	}
	op, ok := byType[txType]
	if !ok {
		return "", fmt.Errorf("unknown transaction type %q for event %q", txType, event)
	}
	return op, nil
}

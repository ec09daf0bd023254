package fund

import "context"

// Repository reads the household registry and the contribution ledger.
type Repository interface {
	ListHouseholds(ctx context.Context) ([]*Household, error)
	// ListTransactions returns the ledger entries dated inside the period.
	ListTransactions(ctx context.Context, period Period) ([]*Transaction, error)
}

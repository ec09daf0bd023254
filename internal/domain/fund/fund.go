// internal/domain/fund/fund.go
package fund

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Household is a registered house. HeadMemberID is a weak reference to the
// member who pays the jimpitan contribution for the house.
type Household struct {
	ID           int64
	Address      string
	HeadMemberID sql.NullInt64
}

// Transaction is one fund contribution in the collection ledger.
type Transaction struct {
	ID       int64
	MemberID int64
	Amount   decimal.Decimal
	Date     time.Time
}

package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"jimpitan_ronda/internal/domain/attendance"
	"jimpitan_ronda/internal/domain/fund"
	"jimpitan_ronda/internal/domain/patrol"

	"github.com/shopspring/decimal"
)

// Seed is the registry snapshot loaded into a MemoryStore when running without Postgres.
type Seed struct {
	Groups []struct {
		ID       int64  `json:"id"`
		Name     string `json:"name"`
		Schedule string `json:"schedule"`
	} `json:"groups"`
	Members []struct {
		ID       int64  `json:"id"`
		Name     string `json:"name"`
		Position string `json:"position"`
		GroupID  *int64 `json:"group_id"`
	} `json:"members"`
	Households []struct {
		ID           int64  `json:"id"`
		Address      string `json:"address"`
		HeadMemberID *int64 `json:"head_member_id"`
	} `json:"households"`
	Transactions []struct {
		ID       int64           `json:"id"`
		MemberID int64           `json:"member_id"`
		Amount   decimal.Decimal `json:"amount"`
		Date     string          `json:"date"`
	} `json:"transactions"`
	// Attendance rows are imported as-is; several rows per member and day are allowed.
	Attendance []struct {
		MemberID  int64     `json:"member_id"`
		Date      string    `json:"date"`
		Status    string    `json:"status"`
		CreatedAt time.Time `json:"created_at"`
	} `json:"attendance"`
}

// LoadSeedFile reads a JSON seed file into the store. Dates are YYYY-MM-DD in loc.
func (s *MemoryStore) LoadSeedFile(path string, loc *time.Location) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}
	var seed Seed
	if err := json.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("failed to decode seed file: %w", err)
	}

	for _, g := range seed.Groups {
		s.AddGroup(patrol.DutyGroup{ID: g.ID, Name: g.Name, ScheduleSpec: g.Schedule})
	}
	for _, m := range seed.Members {
		s.AddMember(patrol.Member{ID: m.ID, Name: m.Name, Position: m.Position, GroupID: nullInt64(m.GroupID)})
	}
	for _, h := range seed.Households {
		s.AddHousehold(fund.Household{ID: h.ID, Address: h.Address, HeadMemberID: nullInt64(h.HeadMemberID)})
	}
	for _, tx := range seed.Transactions {
		date, err := time.ParseInLocation("2006-01-02", tx.Date, loc)
		if err != nil {
			return fmt.Errorf("invalid date %q on transaction %d: %w", tx.Date, tx.ID, err)
		}
		s.AddTransaction(fund.Transaction{ID: tx.ID, MemberID: tx.MemberID, Amount: tx.Amount, Date: date})
	}
	for _, a := range seed.Attendance {
		date, err := time.ParseInLocation("2006-01-02", a.Date, loc)
		if err != nil {
			return fmt.Errorf("invalid date %q on attendance of member %d: %w", a.Date, a.MemberID, err)
		}
		s.AppendAttendance(attendance.Record{MemberID: a.MemberID, Date: date, RawStatus: a.Status, CreatedAt: a.CreatedAt})
	}
	return nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

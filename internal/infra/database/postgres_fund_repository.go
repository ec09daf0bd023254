package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"jimpitan_ronda/internal/domain/fund"
)

// PostgresFundRepository reads the household registry and the jimpitan ledger.
type PostgresFundRepository struct {
	db       *sql.DB
	location *time.Location
}

func NewPostgresFundRepository(db *sql.DB, loc *time.Location) *PostgresFundRepository {
	if loc == nil {
		loc = time.Local
	}
	return &PostgresFundRepository{db: db, location: loc}
}

func (r *PostgresFundRepository) ListHouseholds(ctx context.Context) ([]*fund.Household, error) {
	query := `SELECT id, address, head_member_id FROM households ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing households: %w", err)
	}
	defer rows.Close()

	households := make([]*fund.Household, 0)
	for rows.Next() {
		h := &fund.Household{}
		if err := rows.Scan(&h.ID, &h.Address, &h.HeadMemberID); err != nil {
			return nil, fmt.Errorf("error scanning household: %w", err)
		}
		households = append(households, h)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating households: %w", err)
	}
	return households, nil
}

func (r *PostgresFundRepository) ListTransactions(ctx context.Context, period fund.Period) ([]*fund.Transaction, error) {
	query := `SELECT id, member_id, amount, tx_date
               FROM fund_transactions
               WHERE tx_date >= $1 AND tx_date <= $2
               ORDER BY tx_date, id`

	rows, err := r.db.QueryContext(ctx, query, dateParam(period.Start), dateParam(period.End))
	if err != nil {
		return nil, fmt.Errorf("error listing fund transactions: %w", err)
	}
	defer rows.Close()

	txs := make([]*fund.Transaction, 0)
	for rows.Next() {
		tx := &fund.Transaction{}
		if err := rows.Scan(&tx.ID, &tx.MemberID, &tx.Amount, &tx.Date); err != nil {
			return nil, fmt.Errorf("error scanning fund transaction: %w", err)
		}
		tx.Date = dateIn(tx.Date, r.location)
		txs = append(txs, tx)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fund transactions: %w", err)
	}
	return txs, nil
}

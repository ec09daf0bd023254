package app

import (
	"context"
	"fmt"
	"sort"

	"jimpitan_ronda/internal/domain/fund"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// PaymentStats is the paid/unpaid split of households for a period.
type PaymentStats struct {
	Period          fund.Period
	TotalHouseholds int
	PaidCount       int
	UnpaidCount     int
	PercentPaid     int
	PercentUnpaid   int
	TotalCollected  decimal.Decimal
}

// HouseholdDetail is the contribution of one household's head over a period.
type HouseholdDetail struct {
	HouseholdID      int64
	Address          string
	HeadMemberID     int64 // 0 when the household has no head
	TotalPaid        decimal.Decimal
	TransactionCount int
	Paid             bool
	Target           decimal.Decimal // zero when no quota is configured
	Overpay          decimal.Decimal
	DisplayPercent   int // capped at 100
	RawPercent       int // uncapped, above 100 when overpaid
}

type PaymentService struct {
	fundRepo fund.Repository
	target   decimal.Decimal
	logger   *logrus.Entry
}

// NewPaymentService builds the reconciler. A zero or negative target disables quota tracking.
func NewPaymentService(fr fund.Repository, targetPerHousehold decimal.Decimal, logger *logrus.Entry) *PaymentService {
	if targetPerHousehold.IsNegative() {
		targetPerHousehold = decimal.Zero
	}
	return &PaymentService{
		fundRepo: fr,
		target:   targetPerHousehold,
		logger:   logger,
	}
}

func (s *PaymentService) load(ctx context.Context, period fund.Period) ([]*fund.Household, []*fund.Transaction, error) {
	var households []*fund.Household
	var txs []*fund.Transaction

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		households, err = s.fundRepo.ListHouseholds(gctx)
		if err != nil {
			return fmt.Errorf("failed to list households: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		txs, err = s.fundRepo.ListTransactions(gctx, period)
		if err != nil {
			return fmt.Errorf("failed to list fund transactions for %s: %w", period, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return households, txs, nil
}

// Reconcile returns the paid/unpaid split for the period.
func (s *PaymentService) Reconcile(ctx context.Context, period fund.Period) (PaymentStats, error) {
	households, txs, err := s.load(ctx, period)
	if err != nil {
		return PaymentStats{}, err
	}
	_, stats := s.reconcile(households, txs, period)
	return stats, nil
}

// HouseholdDetails returns the per-household view for the period, ordered by household id.
func (s *PaymentService) HouseholdDetails(ctx context.Context, period fund.Period) ([]HouseholdDetail, error) {
	households, txs, err := s.load(ctx, period)
	if err != nil {
		return nil, err
	}
	details, _ := s.reconcile(households, txs, period)
	return details, nil
}

func (s *PaymentService) reconcile(households []*fund.Household, txs []*fund.Transaction, period fund.Period) ([]HouseholdDetail, PaymentStats) {
	type tally struct {
		total decimal.Decimal
		count int
	}
	byMember := make(map[int64]*tally)
	collected := decimal.Zero
	for _, tx := range txs {
		if tx == nil || !period.Contains(tx.Date) {
			continue
		}
		collected = collected.Add(tx.Amount)
		t, ok := byMember[tx.MemberID]
		if !ok {
			t = &tally{total: decimal.Zero}
			byMember[tx.MemberID] = t
		}
		t.total = t.total.Add(tx.Amount)
		t.count++
	}

	details := make([]HouseholdDetail, 0, len(households))
	stats := PaymentStats{Period: period, TotalCollected: collected}
	for _, h := range households {
		if h == nil {
			continue
		}
		d := HouseholdDetail{
			HouseholdID: h.ID,
			Address:     h.Address,
			TotalPaid:   decimal.Zero,
			Target:      s.target,
			Overpay:     decimal.Zero,
		}
		if h.HeadMemberID.Valid {
			d.HeadMemberID = h.HeadMemberID.Int64
			if t, ok := byMember[d.HeadMemberID]; ok {
				d.TotalPaid = t.total
				d.TransactionCount = t.count
			}
		} else {
			s.logger.WithField("household_id", h.ID).Debug("Household has no head of household, counted as unpaid")
		}
		d.Paid = d.TotalPaid.IsPositive()
		applyQuota(&d)

		stats.TotalHouseholds++
		if d.Paid {
			stats.PaidCount++
		}
		details = append(details, d)
	}
	stats.UnpaidCount = stats.TotalHouseholds - stats.PaidCount
	if stats.TotalHouseholds > 0 {
		stats.PercentPaid = roundPercent(stats.PaidCount, stats.TotalHouseholds)
		stats.PercentUnpaid = 100 - stats.PercentPaid
	}

	sort.SliceStable(details, func(i, j int) bool { return details[i].HouseholdID < details[j].HouseholdID })
	return details, stats
}

var hundred = decimal.NewFromInt(100)

func applyQuota(d *HouseholdDetail) {
	if !d.Target.IsPositive() {
		return
	}
	if over := d.TotalPaid.Sub(d.Target); over.IsPositive() {
		d.Overpay = over
	}
	d.RawPercent = int(d.TotalPaid.Div(d.Target).Mul(hundred).Round(0).IntPart())
	d.DisplayPercent = d.RawPercent
	if d.DisplayPercent > 100 {
		d.DisplayPercent = 100
	}
	if d.DisplayPercent < 0 {
		d.DisplayPercent = 0
	}
}

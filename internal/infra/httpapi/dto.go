package httpapi

import (
	"database/sql"
	"fmt"
	"time"

	"jimpitan_ronda/internal/app"
	"jimpitan_ronda/internal/domain/attendance"
	"jimpitan_ronda/internal/domain/schedule"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// MarkRequest is one attendance write. Date is YYYY-MM-DD in the service zone;
// check-in and check-out are RFC 3339.
type MarkRequest struct {
	MemberID int64      `json:"member_id"`
	Date     string     `json:"date"`
	Status   string     `json:"status"`
	CheckIn  *time.Time `json:"check_in,omitempty"`
	CheckOut *time.Time `json:"check_out,omitempty"`
}

func (r MarkRequest) toMark(loc *time.Location) (app.Mark, error) {
	m := app.Mark{MemberID: r.MemberID, Status: r.Status, CheckIn: r.CheckIn, CheckOut: r.CheckOut}
	if r.Date == "" {
		return m, nil // rejected by the service as a missing date
	}
	d, err := time.ParseInLocation(dateLayout, r.Date, loc)
	if err != nil {
		return m, &badRequest{msg: fmt.Sprintf("invalid date %q: expected YYYY-MM-DD", r.Date)}
	}
	m.Date = d
	return m, nil
}

type BatchRequest struct {
	Marks []MarkRequest `json:"marks"`
}

type MarkResponse struct {
	MemberID int64      `json:"member_id"`
	RecordID *uuid.UUID `json:"record_id,omitempty"`
	Error    string     `json:"error,omitempty"`
}

type BatchResponse struct {
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Results   []MarkResponse `json:"results"`
}

type ResolvedStatusResponse struct {
	MemberID int64      `json:"member_id"`
	Date     string     `json:"date"`
	Status   string     `json:"status"`
	Label    string     `json:"label"`
	CheckIn  *time.Time `json:"check_in,omitempty"`
	CheckOut *time.Time `json:"check_out,omitempty"`
}

func fromResolution(res attendance.Resolution, date time.Time) ResolvedStatusResponse {
	return ResolvedStatusResponse{
		MemberID: res.MemberID,
		Date:     date.Format(dateLayout),
		Status:   string(res.Status),
		Label:    res.Status.Label(),
		CheckIn:  nullTime(res.CheckIn),
		CheckOut: nullTime(res.CheckOut),
	}
}

type CountsResponse struct {
	Present  int `json:"present"`
	Excused  int `json:"excused"`
	Sick     int `json:"sick"`
	Absent   int `json:"absent"`
	Unmarked int `json:"unmarked"`
}

type GroupSummaryResponse struct {
	GroupID              int64          `json:"group_id"`
	Name                 string         `json:"name"`
	Schedule             string         `json:"schedule"`
	Counts               CountsResponse `json:"counts"`
	TotalMembers         int            `json:"total_members"`
	ParticipationPercent int            `json:"participation_percent"`
}

type SummaryResponse struct {
	Date    string                 `json:"date"`
	Weekday string                 `json:"weekday"`
	Groups  []GroupSummaryResponse `json:"groups"`
}

func fromSummaries(date time.Time, summaries []app.GroupSummary) SummaryResponse {
	out := SummaryResponse{
		Date:    date.Format(dateLayout),
		Weekday: schedule.WeekdayOf(date).String(),
		Groups:  make([]GroupSummaryResponse, 0, len(summaries)),
	}
	for _, s := range summaries {
		out.Groups = append(out.Groups, GroupSummaryResponse{
			GroupID:  s.GroupID,
			Name:     s.Name,
			Schedule: s.ScheduleSpec,
			Counts: CountsResponse{
				Present:  s.Counts.Present,
				Excused:  s.Counts.Excused,
				Sick:     s.Counts.Sick,
				Absent:   s.Counts.Absent,
				Unmarked: s.Counts.Unmarked,
			},
			TotalMembers:         s.TotalMembers,
			ParticipationPercent: s.ParticipationPercent,
		})
	}
	return out
}

type MemberStatusResponse struct {
	MemberID int64      `json:"member_id"`
	Name     string     `json:"name"`
	Position string     `json:"position"`
	GroupID  int64      `json:"group_id"`
	Status   string     `json:"status"`
	Label    string     `json:"label"`
	CheckIn  *time.Time `json:"check_in,omitempty"`
	CheckOut *time.Time `json:"check_out,omitempty"`
}

type MemberStatusesResponse struct {
	Date    string                 `json:"date"`
	Members []MemberStatusResponse `json:"members"`
}

func fromMemberStatuses(date time.Time, statuses []app.MemberStatus) MemberStatusesResponse {
	out := MemberStatusesResponse{Date: date.Format(dateLayout), Members: make([]MemberStatusResponse, 0, len(statuses))}
	for _, s := range statuses {
		out.Members = append(out.Members, MemberStatusResponse{
			MemberID: s.MemberID,
			Name:     s.MemberName,
			Position: s.Position,
			GroupID:  s.GroupID,
			Status:   string(s.Status),
			Label:    s.Status.Label(),
			CheckIn:  nullTime(s.CheckIn),
			CheckOut: nullTime(s.CheckOut),
		})
	}
	return out
}

// PaymentStatsResponse carries amounts as decimal strings.
type PaymentStatsResponse struct {
	Period          string          `json:"period"`
	TotalHouseholds int             `json:"total_households"`
	PaidCount       int             `json:"paid_count"`
	UnpaidCount     int             `json:"unpaid_count"`
	PercentPaid     int             `json:"percent_paid"`
	PercentUnpaid   int             `json:"percent_unpaid"`
	TotalCollected  decimal.Decimal `json:"total_collected"`
}

func fromPaymentStats(s app.PaymentStats) PaymentStatsResponse {
	return PaymentStatsResponse{
		Period:          s.Period.String(),
		TotalHouseholds: s.TotalHouseholds,
		PaidCount:       s.PaidCount,
		UnpaidCount:     s.UnpaidCount,
		PercentPaid:     s.PercentPaid,
		PercentUnpaid:   s.PercentUnpaid,
		TotalCollected:  s.TotalCollected,
	}
}

type HouseholdResponse struct {
	HouseholdID      int64           `json:"household_id"`
	Address          string          `json:"address"`
	HeadMemberID     *int64          `json:"head_member_id"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	TransactionCount int             `json:"transaction_count"`
	Paid             bool            `json:"paid"`
	Target           decimal.Decimal `json:"target"`
	Overpay          decimal.Decimal `json:"overpay"`
	PercentOfTarget  int             `json:"percent_of_target"`
	RawPercent       int             `json:"raw_percent"`
}

type HouseholdsResponse struct {
	Period     string              `json:"period"`
	Households []HouseholdResponse `json:"households"`
}

func fromHouseholdDetails(period string, details []app.HouseholdDetail) HouseholdsResponse {
	out := HouseholdsResponse{Period: period, Households: make([]HouseholdResponse, 0, len(details))}
	for _, d := range details {
		h := HouseholdResponse{
			HouseholdID:      d.HouseholdID,
			Address:          d.Address,
			TotalPaid:        d.TotalPaid,
			TransactionCount: d.TransactionCount,
			Paid:             d.Paid,
			Target:           d.Target,
			Overpay:          d.Overpay,
			PercentOfTarget:  d.DisplayPercent,
			RawPercent:       d.RawPercent,
		}
		if d.HeadMemberID != 0 {
			head := d.HeadMemberID
			h.HeadMemberID = &head
		}
		out.Households = append(out.Households, h)
	}
	return out
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

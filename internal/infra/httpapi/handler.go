package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"jimpitan_ronda/internal/app"
	"jimpitan_ronda/internal/domain/attendance"
	"jimpitan_ronda/internal/domain/fund"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AttendanceService writes and resolves attendance.
type AttendanceService interface {
	Location() *time.Location
	Today() time.Time
	UpsertAttendance(ctx context.Context, m app.Mark) (uuid.UUID, error)
	MarkBatch(ctx context.Context, marks []app.Mark) []app.MarkOutcome
	ResolveStatus(ctx context.Context, memberID int64, date time.Time) (attendance.Resolution, error)
}

// SummaryService aggregates participation of scheduled groups.
type SummaryService interface {
	Summarize(ctx context.Context, date time.Time) ([]app.GroupSummary, error)
	MemberStatuses(ctx context.Context, date time.Time) ([]app.MemberStatus, error)
}

// PaymentService reconciles fund payments against households.
type PaymentService interface {
	Reconcile(ctx context.Context, period fund.Period) (app.PaymentStats, error)
	HouseholdDetails(ctx context.Context, period fund.Period) ([]app.HouseholdDetail, error)
}

// Handler wires the JSON endpoints to the services.
type Handler struct {
	attendances AttendanceService
	summaries   SummaryService
	payments    PaymentService
	logger      *logrus.Entry
}

func New(attendances AttendanceService, summaries SummaryService, payments PaymentService, logger *logrus.Entry) *Handler {
	return &Handler{
		attendances: attendances,
		summaries:   summaries,
		payments:    payments,
		logger:      logger,
	}
}

// Register mounts the endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Post("/attendance", h.handleUpsert)
		r.Post("/attendance/batch", h.handleBatch)
		r.Get("/attendance/{memberID}", h.handleResolve)
		r.Get("/groups/summary", h.handleSummary)
		r.Get("/members/statuses", h.handleMemberStatuses)
		r.Get("/payments/stats", h.handlePaymentStats)
		r.Get("/payments/households", h.handleHouseholds)
	})
}

func (h *Handler) requestLogger(r *http.Request) *logrus.Entry {
	return h.logger.WithFields(logrus.Fields{
		"request_id": middleware.GetReqID(r.Context()),
		"method":     r.Method,
		"path":       r.URL.Path,
	})
}

func (h *Handler) handleUpsert(w http.ResponseWriter, r *http.Request) {
	var req MarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &badRequest{msg: "invalid JSON body"})
		return
	}
	mark, err := req.toMark(h.attendances.Location())
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := h.attendances.UpsertAttendance(r.Context(), mark)
	if err != nil {
		h.logFailure(r, err, "Attendance upsert failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MarkResponse{MemberID: mark.MemberID, RecordID: &id})
}

func (h *Handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &badRequest{msg: "invalid JSON body"})
		return
	}
	if len(req.Marks) == 0 {
		writeError(w, &badRequest{msg: "marks must not be empty"})
		return
	}

	resp := BatchResponse{Results: make([]MarkResponse, len(req.Marks))}
	marks := make([]app.Mark, 0, len(req.Marks))
	slots := make([]int, 0, len(req.Marks)) // result index of each parsed mark
	for i, mr := range req.Marks {
		mark, err := mr.toMark(h.attendances.Location())
		if err != nil {
			resp.Results[i] = MarkResponse{MemberID: mr.MemberID, Error: err.Error()}
			continue
		}
		marks = append(marks, mark)
		slots = append(slots, i)
	}
	for j, o := range h.attendances.MarkBatch(r.Context(), marks) {
		res := MarkResponse{MemberID: o.MemberID}
		if o.Err != nil {
			res.Error = o.Err.Error()
		} else {
			id := o.RecordID
			res.RecordID = &id
		}
		resp.Results[slots[j]] = res
	}
	for _, res := range resp.Results {
		if res.Error != "" {
			resp.Failed++
		} else {
			resp.Succeeded++
		}
	}
	h.requestLogger(r).WithFields(logrus.Fields{
		"succeeded": resp.Succeeded,
		"failed":    resp.Failed,
	}).Info("Attendance batch processed")
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	memberID, err := strconv.ParseInt(chi.URLParam(r, "memberID"), 10, 64)
	if err != nil || memberID <= 0 {
		writeError(w, &badRequest{msg: "memberID must be a positive integer"})
		return
	}
	date, err := h.dateParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := h.attendances.ResolveStatus(r.Context(), memberID, date)
	if err != nil {
		h.logFailure(r, err, "Resolving attendance failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fromResolution(res, date))
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	date, err := h.dateParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	summaries, err := h.summaries.Summarize(r.Context(), date)
	if err != nil {
		h.logFailure(r, err, "Group summary failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fromSummaries(date, summaries))
}

func (h *Handler) handleMemberStatuses(w http.ResponseWriter, r *http.Request) {
	date, err := h.dateParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	statuses, err := h.summaries.MemberStatuses(r.Context(), date)
	if err != nil {
		h.logFailure(r, err, "Member statuses failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fromMemberStatuses(date, statuses))
}

func (h *Handler) handlePaymentStats(w http.ResponseWriter, r *http.Request) {
	period, err := h.periodParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	stats, err := h.payments.Reconcile(r.Context(), period)
	if err != nil {
		h.logFailure(r, err, "Payment reconciliation failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fromPaymentStats(stats))
}

func (h *Handler) handleHouseholds(w http.ResponseWriter, r *http.Request) {
	period, err := h.periodParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	details, err := h.payments.HouseholdDetails(r.Context(), period)
	if err != nil {
		h.logFailure(r, err, "Household details failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fromHouseholdDetails(period.String(), details))
}

// dateParam reads ?date=YYYY-MM-DD, defaulting to today's duty date.
func (h *Handler) dateParam(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return h.attendances.Today(), nil
	}
	d, err := time.ParseInLocation(dateLayout, raw, h.attendances.Location())
	if err != nil {
		return time.Time{}, &badRequest{msg: "date must be YYYY-MM-DD"}
	}
	return d, nil
}

// periodParam reads ?period=, defaulting to the current month.
func (h *Handler) periodParam(r *http.Request) (fund.Period, error) {
	loc := h.attendances.Location()
	raw := r.URL.Query().Get("period")
	if raw == "" {
		today := h.attendances.Today()
		return fund.MonthPeriod(today.Year(), today.Month(), loc), nil
	}
	return fund.ParsePeriod(raw, loc)
}

func (h *Handler) logFailure(r *http.Request, err error, msg string) {
	entry := h.requestLogger(r).WithError(err)
	if isClientError(err) {
		entry.Warn(msg)
		return
	}
	entry.Error(msg)
}

package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"jimpitan_ronda/internal/app"
	"jimpitan_ronda/internal/domain/attendance"
	"jimpitan_ronda/internal/domain/fund"
	"jimpitan_ronda/internal/domain/patrol"
	"jimpitan_ronda/internal/domain/schedule"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// splitTrailingDate removes an optional YYYY-MM-DD last argument.
func splitTrailingDate(args []string, loc *time.Location, today time.Time) ([]string, time.Time, error) {
	if len(args) == 0 {
		return args, today, nil
	}
	last := args[len(args)-1]
	if len(last) != len(dateLayout) || strings.Count(last, "-") != 2 {
		return args, today, nil
	}
	d, err := time.ParseInLocation(dateLayout, last, loc)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("tanggal %q tidak valid, gunakan format YYYY-MM-DD", last)
	}
	return args[:len(args)-1], d, nil
}

// parseMarkArgs reads "/hadir <member_id> <status> [YYYY-MM-DD]". The status may
// span several words ("tidak hadir").
func parseMarkArgs(args []string, loc *time.Location, today time.Time) (app.Mark, error) {
	rest, date, err := splitTrailingDate(args, loc, today)
	if err != nil {
		return app.Mark{}, err
	}
	if len(rest) < 2 {
		return app.Mark{}, fmt.Errorf("format: /hadir <id_anggota> <status> [YYYY-MM-DD]")
	}
	memberID, err := strconv.ParseInt(rest[0], 10, 64)
	if err != nil {
		return app.Mark{}, fmt.Errorf("id anggota %q harus berupa angka", rest[0])
	}
	return app.Mark{MemberID: memberID, Date: date, Status: strings.Join(rest[1:], " ")}, nil
}

// parseBulkArgs reads "/absen_massal <status> <id,id,...> [YYYY-MM-DD]".
func parseBulkArgs(args []string, loc *time.Location, today time.Time) ([]app.Mark, error) {
	rest, date, err := splitTrailingDate(args, loc, today)
	if err != nil {
		return nil, err
	}
	if len(rest) < 2 {
		return nil, fmt.Errorf("format: /absen_massal <status> <id,id,...> [YYYY-MM-DD]")
	}
	status := strings.Join(rest[:len(rest)-1], " ")
	var marks []app.Mark
	for _, part := range strings.Split(rest[len(rest)-1], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("id anggota %q harus berupa angka", part)
		}
		marks = append(marks, app.Mark{MemberID: id, Date: date, Status: status})
	}
	if len(marks) == 0 {
		return nil, fmt.Errorf("daftar id anggota kosong")
	}
	return marks, nil
}

// parsePeriodArg reads an optional period, defaulting to the month of today.
func parsePeriodArg(args []string, loc *time.Location, today time.Time) (fund.Period, error) {
	if len(args) == 0 {
		return fund.MonthPeriod(today.Year(), today.Month(), loc), nil
	}
	p, err := fund.ParsePeriod(args[0], loc)
	if err != nil {
		return fund.Period{}, fmt.Errorf("periode %q tidak valid, gunakan YYYY-MM atau YYYY-MM-DD..YYYY-MM-DD", args[0])
	}
	return p, nil
}

func formatBatchOutcomes(outcomes []app.MarkOutcome) string {
	var ok, failed []string
	for _, o := range outcomes {
		if o.Err != nil {
			failed = append(failed, fmt.Sprintf("  %d: %v", o.MemberID, o.Err))
			continue
		}
		ok = append(ok, strconv.FormatInt(o.MemberID, 10))
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Berhasil dicatat: %d, gagal: %d\n", len(ok), len(failed)))
	if len(ok) > 0 {
		b.WriteString("Tercatat: " + strings.Join(ok, ", ") + "\n")
	}
	if len(failed) > 0 {
		b.WriteString("Gagal:\n" + strings.Join(failed, "\n"))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatMemberStatuses(date time.Time, statuses []app.MemberStatus) string {
	header := fmt.Sprintf("Status anggota ronda %s (%s)", date.Format(dateLayout), schedule.WeekdayOf(date))
	if len(statuses) == 0 {
		return header + "\nTidak ada jadwal ronda hari ini."
	}
	var b strings.Builder
	b.WriteString(header)
	var group int64 = -1
	for _, s := range statuses {
		if s.GroupID != group {
			group = s.GroupID
			b.WriteString(fmt.Sprintf("\n\nRegu #%d", group))
		}
		b.WriteString(fmt.Sprintf("\n  [%d] %s (%s): %s", s.MemberID, s.MemberName, s.Position, s.Status.Label()))
		if s.CheckIn.Valid {
			b.WriteString(" masuk " + s.CheckIn.Time.Format("15:04"))
		}
		if s.CheckOut.Valid {
			b.WriteString(" pulang " + s.CheckOut.Time.Format("15:04"))
		}
	}
	return b.String()
}

func formatRupiah(d decimal.Decimal) string {
	return "Rp " + d.StringFixed(0)
}

func formatPaymentStats(s app.PaymentStats) string {
	return fmt.Sprintf("Jimpitan periode %s\nRumah: %d\nSudah bayar: %d (%d%%)\nBelum bayar: %d (%d%%)\nTerkumpul: %s",
		s.Period, s.TotalHouseholds, s.PaidCount, s.PercentPaid, s.UnpaidCount, s.PercentUnpaid, formatRupiah(s.TotalCollected))
}

func formatHouseholds(period fund.Period, details []app.HouseholdDetail) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Jimpitan per rumah, periode %s", period))
	if len(details) == 0 {
		b.WriteString("\nBelum ada data rumah.")
		return b.String()
	}
	for _, d := range details {
		mark := "belum"
		if d.Paid {
			mark = "lunas"
		}
		b.WriteString(fmt.Sprintf("\n%s: %s, %s (%d transaksi)", d.Address, mark, formatRupiah(d.TotalPaid), d.TransactionCount))
		if d.Target.IsPositive() {
			b.WriteString(fmt.Sprintf(", %d%% dari target", d.DisplayPercent))
			if d.Overpay.IsPositive() {
				b.WriteString(", lebih " + formatRupiah(d.Overpay))
			}
		}
		if d.HeadMemberID == 0 {
			b.WriteString(" [tanpa kepala keluarga]")
		}
	}
	return b.String()
}

func formatSchedules(groups []*patrol.DutyGroup, today time.Time) string {
	if len(groups) == 0 {
		return "Belum ada regu ronda."
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Jadwal ronda (hari ini %s)", schedule.WeekdayOf(today)))
	for _, g := range groups {
		spec, err := schedule.Parse(g.ScheduleSpec)
		switch {
		case err != nil:
			b.WriteString(fmt.Sprintf("\n%s: jadwal tidak valid %q", g.Name, g.ScheduleSpec))
		case spec.IsEmpty():
			b.WriteString(fmt.Sprintf("\n%s: belum dijadwalkan", g.Name))
		default:
			days := make([]string, 0, schedule.DaysInWeek)
			for _, d := range spec.Days() {
				days = append(days, d.String())
			}
			line := fmt.Sprintf("\n%s: %s (%s)", g.Name, spec, strings.Join(days, ", "))
			if spec.MatchesDate(today) {
				line += " - bertugas hari ini"
			}
			b.WriteString(line)
		}
	}
	return b.String()
}

// Quick-mark buttons carry "att_<member_id>_<yyyymmdd>_<STATUS>".
const callbackPrefix = "att_"

func encodeMarkCallback(memberID int64, date time.Time, status attendance.Status) string {
	return fmt.Sprintf("%s%d_%s_%s", callbackPrefix, memberID, date.Format("20060102"), status)
}

func decodeMarkCallback(data string, loc *time.Location) (app.Mark, error) {
	parts := strings.Split(strings.TrimPrefix(data, callbackPrefix), "_")
	if !strings.HasPrefix(data, callbackPrefix) || len(parts) != 3 {
		return app.Mark{}, fmt.Errorf("invalid callback data %q", data)
	}
	memberID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return app.Mark{}, fmt.Errorf("invalid member id in callback %q: %w", data, err)
	}
	date, err := time.ParseInLocation("20060102", parts[1], loc)
	if err != nil {
		return app.Mark{}, fmt.Errorf("invalid date in callback %q: %w", data, err)
	}
	return app.Mark{MemberID: memberID, Date: date, Status: parts[2]}, nil
}

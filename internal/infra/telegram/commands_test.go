package telegram

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"jimpitan_ronda/internal/app"
	"jimpitan_ronda/internal/domain/attendance"
	"jimpitan_ronda/internal/domain/fund"
	"jimpitan_ronda/internal/domain/patrol"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC) // Selasa

func TestParseMarkArgs(t *testing.T) {
	mark, err := parseMarkArgs([]string{"7", "tidak", "hadir"}, time.UTC, today)
	require.NoError(t, err)
	assert.Equal(t, int64(7), mark.MemberID)
	assert.Equal(t, "tidak hadir", mark.Status)
	assert.True(t, mark.Date.Equal(today))

	mark, err = parseMarkArgs([]string{"7", "izin", "2024-01-05"}, time.UTC, today)
	require.NoError(t, err)
	assert.Equal(t, "izin", mark.Status)
	assert.Equal(t, 5, mark.Date.Day())

	for _, args := range [][]string{{}, {"7"}, {"tujuh", "hadir"}, {"7", "hadir", "2024-13-01"}} {
		_, err := parseMarkArgs(args, time.UTC, today)
		assert.Error(t, err, "%v", args)
	}
}

func TestParseBulkArgs(t *testing.T) {
	marks, err := parseBulkArgs([]string{"sakit", "1,2,,3", "2024-01-03"}, time.UTC, today)
	require.NoError(t, err)
	require.Len(t, marks, 3)
	for i, m := range marks {
		assert.Equal(t, int64(i+1), m.MemberID)
		assert.Equal(t, "sakit", m.Status)
		assert.Equal(t, 3, m.Date.Day())
	}

	_, err = parseBulkArgs([]string{"hadir", "1,x"}, time.UTC, today)
	assert.Error(t, err)
	_, err = parseBulkArgs([]string{"hadir", ","}, time.UTC, today)
	assert.Error(t, err)
}

func TestParsePeriodArg(t *testing.T) {
	p, err := parsePeriodArg(nil, time.UTC, today)
	require.NoError(t, err)
	assert.Equal(t, "2024-01", p.String())

	p, err = parsePeriodArg([]string{"2023-12-01..2023-12-15"}, time.UTC, today)
	require.NoError(t, err)
	assert.Equal(t, 15, p.End.Day())

	_, err = parsePeriodArg([]string{"desember"}, time.UTC, today)
	assert.Error(t, err)
}

func TestMarkCallbackRoundTrip(t *testing.T) {
	data := encodeMarkCallback(42, today, attendance.StatusSick)
	assert.Equal(t, "att_42_20240102_SICK", data)
	assert.LessOrEqual(t, len(data), 64)

	mark, err := decodeMarkCallback(data, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, int64(42), mark.MemberID)
	assert.True(t, mark.Date.Equal(today))
	status, err := attendance.ParseStatus(mark.Status)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusSick, status)

	for _, bad := range []string{"ans_yes_1", "att_x_20240102_SICK", "att_1_2024_SICK", "att_1_20240102"} {
		_, err := decodeMarkCallback(bad, time.UTC)
		assert.Error(t, err, bad)
	}
}

func TestFormatBatchOutcomes(t *testing.T) {
	text := formatBatchOutcomes([]app.MarkOutcome{
		{MemberID: 1},
		{MemberID: 2, Err: errors.New("unknown status")},
		{MemberID: 3},
	})
	assert.Contains(t, text, "Berhasil dicatat: 2, gagal: 1")
	assert.Contains(t, text, "Tercatat: 1, 3")
	assert.Contains(t, text, "2: unknown status")
}

func TestFormatMemberStatuses(t *testing.T) {
	assert.Contains(t, formatMemberStatuses(today, nil), "Tidak ada jadwal ronda hari ini.")

	text := formatMemberStatuses(today, []app.MemberStatus{
		{MemberID: 1, MemberName: "Budi", Position: "Ketua", GroupID: 1, Status: attendance.StatusPresent,
			CheckIn: sql.NullTime{Time: today.Add(21 * time.Hour), Valid: true}},
		{MemberID: 2, MemberName: "Sari", Position: "Anggota", GroupID: 1, Status: attendance.StatusUnmarked},
	})
	assert.Contains(t, text, "(Selasa)")
	assert.Contains(t, text, "[1] Budi (Ketua): Hadir masuk 21:00")
	assert.Contains(t, text, "[2] Sari (Anggota): Belum Diabsen")
}

func TestFormatPayments(t *testing.T) {
	period := fund.MonthPeriod(2024, time.January, time.UTC)
	text := formatPaymentStats(app.PaymentStats{
		Period: period, TotalHouseholds: 10, PaidCount: 6, UnpaidCount: 4,
		PercentPaid: 60, PercentUnpaid: 40, TotalCollected: decimal.NewFromInt(30000),
	})
	assert.Contains(t, text, "Sudah bayar: 6 (60%)")
	assert.Contains(t, text, "Belum bayar: 4 (40%)")
	assert.Contains(t, text, "Rp 30000")

	text = formatHouseholds(period, []app.HouseholdDetail{
		{Address: "Blok A1", HeadMemberID: 1, Paid: true, TotalPaid: decimal.NewFromInt(18000), TransactionCount: 2,
			Target: decimal.NewFromInt(15000), Overpay: decimal.NewFromInt(3000), DisplayPercent: 100},
		{Address: "Blok A2", TotalPaid: decimal.Zero, Target: decimal.NewFromInt(15000), Overpay: decimal.Zero},
	})
	assert.Contains(t, text, "Blok A1: lunas, Rp 18000 (2 transaksi), 100% dari target, lebih Rp 3000")
	assert.Contains(t, text, "Blok A2: belum, Rp 0 (0 transaksi), 0% dari target [tanpa kepala keluarga]")
}

func TestFormatSchedules(t *testing.T) {
	text := formatSchedules([]*patrol.DutyGroup{
		{ID: 1, Name: "Regu A", ScheduleSpec: "Sabtu - Senin"},
		{ID: 2, Name: "Regu B", ScheduleSpec: "Selasa"},
		{ID: 3, Name: "Regu C", ScheduleSpec: "Selasa-Kamis"},
		{ID: 4, Name: "Regu D", ScheduleSpec: ""},
	}, today)
	assert.Contains(t, text, "Regu A: Sabtu - Senin (Senin, Sabtu, Minggu)")
	assert.Contains(t, text, "Regu B: Selasa (Selasa) - bertugas hari ini")
	assert.Contains(t, text, `Regu C: jadwal tidak valid "Selasa-Kamis"`)
	assert.Contains(t, text, "Regu D: belum dijadwalkan")
	assert.Equal(t, "Belum ada regu ronda.", formatSchedules(nil, today))
}

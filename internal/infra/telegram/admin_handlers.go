package telegram

import (
	"context"
	"errors"
	"fmt"

	"jimpitan_ronda/internal/app"
	"jimpitan_ronda/internal/domain/attendance"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const msgUnauthorized = "Maaf, Anda tidak memiliki akses untuk perintah ini."

// Services bundles what the admin commands operate on.
type Services struct {
	Attendance *app.AttendanceService
	Summary    *app.SummaryService
	Payment    *app.PaymentService
}

// RegisterAdminHandlers registers the attendance, recap and fund commands.
// Only senders accepted by isAdmin may use them.
func RegisterAdminHandlers(ctx context.Context, b *telebot.Bot, svc Services, isAdmin func(int64) bool, baseLogger *logrus.Entry) {
	loc := svc.Attendance.Location()

	// guard wraps a handler with sender logging and the admin check.
	guard := func(command string, next func(c telebot.Context, log *logrus.Entry) error) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			handlerLogger := baseLogger.WithFields(logrus.Fields{
				"handler":   command,
				"sender_id": c.Sender().ID,
			})
			handlerLogger.Info("Command received")
			if !isAdmin(c.Sender().ID) {
				handlerLogger.Warn("Unauthorized access attempt")
				return c.Send(msgUnauthorized)
			}
			return next(c, handlerLogger)
		}
	}

	b.Handle("/hadir", guard("/hadir", func(c telebot.Context, log *logrus.Entry) error {
		mark, err := parseMarkArgs(c.Args(), loc, svc.Attendance.Today())
		if err != nil {
			log.WithError(err).Warn("Invalid command format")
			return c.Send(err.Error())
		}
		log = log.WithFields(logrus.Fields{"member_id": mark.MemberID, "raw_status": mark.Status})

		if _, err := svc.Attendance.UpsertAttendance(ctx, mark); err != nil {
			if errors.Is(err, app.ErrValidation) {
				return c.Send(fmt.Sprintf("Absensi ditolak: %v", err))
			}
			log.WithError(err).Error("Failed to record attendance")
			return c.Send("Terjadi kesalahan saat mencatat absensi. Silakan coba lagi.")
		}
		res, err := svc.Attendance.ResolveStatus(ctx, mark.MemberID, mark.Date)
		if err != nil {
			log.WithError(err).Error("Failed to read back attendance")
			return c.Send("Absensi tercatat.")
		}
		return c.Send(fmt.Sprintf("Absensi anggota %d tanggal %s: %s",
			mark.MemberID, mark.Date.Format(dateLayout), res.Status.Label()))
	}))

	b.Handle("/absen_massal", guard("/absen_massal", func(c telebot.Context, log *logrus.Entry) error {
		marks, err := parseBulkArgs(c.Args(), loc, svc.Attendance.Today())
		if err != nil {
			log.WithError(err).Warn("Invalid command format")
			return c.Send(err.Error())
		}
		outcomes := svc.Attendance.MarkBatch(ctx, marks)
		return c.Send(formatBatchOutcomes(outcomes))
	}))

	b.Handle("/rekap", guard("/rekap", func(c telebot.Context, log *logrus.Entry) error {
		_, date, err := splitTrailingDate(c.Args(), loc, svc.Attendance.Today())
		if err != nil {
			return c.Send(err.Error())
		}
		recap, err := svc.Summary.DailyRecap(ctx, date)
		if err != nil {
			log.WithError(err).Error("Failed to build recap")
			return c.Send("Terjadi kesalahan saat menyusun rekap.")
		}
		return c.Send(recap)
	}))

	b.Handle("/status", guard("/status", func(c telebot.Context, log *logrus.Entry) error {
		_, date, err := splitTrailingDate(c.Args(), loc, svc.Attendance.Today())
		if err != nil {
			return c.Send(err.Error())
		}
		statuses, err := svc.Summary.MemberStatuses(ctx, date)
		if err != nil {
			log.WithError(err).Error("Failed to list member statuses")
			return c.Send("Terjadi kesalahan saat mengambil status anggota.")
		}
		if err := c.Send(formatMemberStatuses(date, statuses)); err != nil {
			return err
		}
		// One quick-mark keyboard per member still unmarked.
		for _, s := range statuses {
			if s.Status != attendance.StatusUnmarked {
				continue
			}
			text := fmt.Sprintf("%s belum diabsen:", s.MemberName)
			if err := c.Send(text, quickMarkKeyboard(s.MemberID, date)); err != nil {
				log.WithError(err).WithField("member_id", s.MemberID).Warn("Failed to send quick-mark keyboard")
			}
		}
		return nil
	}))

	b.Handle("/jimpitan", guard("/jimpitan", func(c telebot.Context, log *logrus.Entry) error {
		period, err := parsePeriodArg(c.Args(), loc, svc.Attendance.Today())
		if err != nil {
			return c.Send(err.Error())
		}
		stats, err := svc.Payment.Reconcile(ctx, period)
		if err != nil {
			log.WithError(err).Error("Failed to reconcile payments")
			return c.Send("Terjadi kesalahan saat menghitung jimpitan.")
		}
		return c.Send(formatPaymentStats(stats))
	}))

	b.Handle("/jimpitan_rumah", guard("/jimpitan_rumah", func(c telebot.Context, log *logrus.Entry) error {
		period, err := parsePeriodArg(c.Args(), loc, svc.Attendance.Today())
		if err != nil {
			return c.Send(err.Error())
		}
		details, err := svc.Payment.HouseholdDetails(ctx, period)
		if err != nil {
			log.WithError(err).Error("Failed to list household payments")
			return c.Send("Terjadi kesalahan saat mengambil data jimpitan per rumah.")
		}
		return c.Send(formatHouseholds(period, details))
	}))
}

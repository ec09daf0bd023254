package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"jimpitan_ronda/internal/app"
	"jimpitan_ronda/internal/domain/attendance"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func quickMarkKeyboard(memberID int64, date time.Time) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	buttons := make([]telebot.Btn, 0, len(attendance.Marked))
	for _, s := range attendance.Marked {
		buttons = append(buttons, telebot.Btn{Text: s.Label(), Data: encodeMarkCallback(memberID, date, s)})
	}
	markup.Inline(markup.Row(buttons[:2]...), markup.Row(buttons[2:]...))
	return markup
}

// RegisterAttendanceCallbacks handles presses on the quick-mark keyboards sent by /status.
func RegisterAttendanceCallbacks(ctx context.Context, b *telebot.Bot, attendances *app.AttendanceService, isAdmin func(int64) bool, baseLogger *logrus.Entry) {
	b.Handle(telebot.OnCallback, func(c telebot.Context) error {
		data := c.Callback().Data
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "quick_mark",
			"sender_id": c.Sender().ID,
			"data":      data,
		})
		if !strings.HasPrefix(data, callbackPrefix) {
			return c.Respond()
		}
		if !isAdmin(c.Sender().ID) {
			handlerLogger.Warn("Unauthorized callback")
			return c.Respond(&telebot.CallbackResponse{Text: msgUnauthorized})
		}

		mark, err := decodeMarkCallback(data, attendances.Location())
		if err != nil {
			c.Bot().OnError(err, c)
			return c.Respond(&telebot.CallbackResponse{Text: "Data tombol tidak valid."})
		}
		if _, err := attendances.UpsertAttendance(ctx, mark); err != nil {
			if errors.Is(err, app.ErrValidation) {
				return c.Respond(&telebot.CallbackResponse{Text: fmt.Sprintf("Absensi ditolak: %v", err)})
			}
			handlerLogger.WithError(err).Error("Failed to record attendance from callback")
			return c.Respond(&telebot.CallbackResponse{Text: "Terjadi kesalahan, silakan coba lagi."})
		}

		status, _ := attendance.ParseStatus(mark.Status)
		confirmation := fmt.Sprintf("Anggota %d, %s: %s", mark.MemberID, mark.Date.Format(dateLayout), status.Label())
		if err := c.Edit(confirmation); err != nil {
			handlerLogger.WithError(err).Debug("Could not replace quick-mark keyboard")
		}
		return c.Respond(&telebot.CallbackResponse{Text: "Tercatat"})
	})
}

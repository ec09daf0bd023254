// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jimpitan_ronda/internal/domain/patrol"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func RegisterBotCommands(
	ctx context.Context,
	b *telebot.Bot,
	isAdmin func(int64) bool,
	patrolRepo patrol.Repository,
	today func() time.Time,
	baseLogger *logrus.Entry,
) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")

	b.Handle("/start", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/start").WithField("sender_id", senderID)
		logCtx.Info("Processing /start command")

		if isAdmin(senderID) {
			return c.Send(fmt.Sprintf("Halo %s! Bot ronda siap digunakan. Ketik /help untuk daftar perintah.", c.Sender().FirstName))
		}
		logCtx.Info("User is not an admin")
		return c.Send("Halo! Bot ini dipakai pengurus ronda untuk absensi dan jimpitan. Hubungi pengurus jika Anda memerlukan akses.")
	})

	b.Handle("/help", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/help").WithField("sender_id", senderID)
		logCtx.Info("Processing /help command")

		if !isAdmin(senderID) {
			return c.Send("Perintah yang tersedia untuk Anda: /jadwal")
		}
		var helpText strings.Builder
		helpText.WriteString("Perintah pengurus:\n\n")
		helpText.WriteString("/hadir <id_anggota> <status> [YYYY-MM-DD]\n - Catat absensi satu anggota. Status: hadir, izin, sakit, tidak hadir.\n\n")
		helpText.WriteString("/absen_massal <status> <id,id,...> [YYYY-MM-DD]\n - Catat status yang sama untuk beberapa anggota.\n\n")
		helpText.WriteString("/status [YYYY-MM-DD]\n - Status tiap anggota regu yang bertugas, dengan tombol absen cepat.\n\n")
		helpText.WriteString("/rekap [YYYY-MM-DD]\n - Rekap partisipasi per regu.\n\n")
		helpText.WriteString("/jimpitan [YYYY-MM]\n - Ringkasan rumah yang sudah dan belum membayar.\n\n")
		helpText.WriteString("/jimpitan_rumah [YYYY-MM]\n - Rincian pembayaran per rumah.\n\n")
		helpText.WriteString("/jadwal\n - Jadwal ronda semua regu.")
		return c.Send(helpText.String())
	})

	b.Handle("/jadwal", func(c telebot.Context) error {
		logCtx := startHelpLogger.WithField("command", "/jadwal").WithField("sender_id", c.Sender().ID)
		groups, err := patrolRepo.ListGroups(ctx)
		if err != nil {
			logCtx.WithError(err).Error("Failed to list duty groups")
			return c.Send("Terjadi kesalahan saat mengambil jadwal. Silakan coba lagi nanti.")
		}
		return c.Send(formatSchedules(groups, today()))
	})
}

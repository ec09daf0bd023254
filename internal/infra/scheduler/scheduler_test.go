package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"jimpitan_ronda/internal/app"
	"jimpitan_ronda/internal/domain/schedule"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"
)

type fakeSource struct {
	issues   []app.ScheduleIssue
	recap    string
	err      error
	recapFor time.Time
}

func (f *fakeSource) AuditSchedules(context.Context) ([]app.ScheduleIssue, error) {
	return f.issues, nil
}

func (f *fakeSource) DailyRecap(_ context.Context, date time.Time) (string, error) {
	f.recapFor = date
	return f.recap, f.err
}

type sentMessage struct {
	chatID int64
	text   string
}

type fakeClient struct {
	sent []sentMessage
}

func (c *fakeClient) SendMessage(chatID int64, text string, _ *telebot.SendOptions) error {
	c.sent = append(c.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

func newTestScheduler(source RecapSource, client *fakeClient, chatID int64) *RecapScheduler {
	l := logrus.New()
	l.SetOutput(io.Discard)
	s := NewRecapScheduler(source, nil, chatID, time.UTC, "0 21 * * *", logrus.NewEntry(l))
	if client != nil {
		s.client = client
	}
	s.now = func() time.Time { return time.Date(2024, time.January, 2, 21, 0, 0, 0, time.UTC) }
	return s
}

func TestRunDailyRecap_PostsToRecapChat(t *testing.T) {
	source := &fakeSource{
		recap: "Rekap ronda 2024-01-02 (Selasa)",
		issues: []app.ScheduleIssue{{
			GroupID:   3,
			GroupName: "Regu C",
			Err:       &schedule.InconsistentScheduleError{Spec: "Selasa-Kamis", Reason: "missing separator"},
		}},
	}
	client := &fakeClient{}
	s := newTestScheduler(source, client, -1001)

	require.NoError(t, s.RunDailyRecap(context.Background()))
	require.Len(t, client.sent, 1)
	assert.Equal(t, int64(-1001), client.sent[0].chatID)
	assert.Contains(t, client.sent[0].text, "Rekap ronda 2024-01-02")
	assert.Contains(t, client.sent[0].text, "1 regu memiliki jadwal yang tidak valid")
	assert.Equal(t, 2, source.recapFor.Day())
}

func TestRunDailyRecap_WithoutChatOnlyLogs(t *testing.T) {
	client := &fakeClient{}
	s := newTestScheduler(&fakeSource{recap: "ok"}, client, 0)

	require.NoError(t, s.RunDailyRecap(context.Background()))
	assert.Empty(t, client.sent)
}

func TestRunDailyRecap_PropagatesErrors(t *testing.T) {
	client := &fakeClient{}
	s := newTestScheduler(&fakeSource{err: errors.New("db down")}, client, 5)

	err := s.RunDailyRecap(context.Background())
	require.Error(t, err)
	assert.Empty(t, client.sent)
}

func TestStart_RejectsInvalidCronSpec(t *testing.T) {
	s := newTestScheduler(&fakeSource{}, nil, 0)
	s.cronSpec = "every night"
	assert.Error(t, s.Start())
}

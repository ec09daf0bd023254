package app

import (
	"database/sql"
	"io"
	"sync"
	"time"

	"jimpitan_ronda/internal/domain/patrol"
	idb "jimpitan_ronda/internal/infra/database"

	"github.com/sirupsen/logrus"
)

// 2024-01-01 is a Monday.
var (
	tuesday  = time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)
	thursday = time.Date(2024, time.January, 4, 0, 0, 0, 0, time.UTC)
)

type countingObserver struct {
	mu             sync.Mutex
	upsertOK       int
	upsertFailed   int
	unknownStatus  int
	scheduleErrors int
	summaries      int
}

func (o *countingObserver) AttendanceUpserted(ok bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if ok {
		o.upsertOK++
	} else {
		o.upsertFailed++
	}
}

func (o *countingObserver) StatusNormalizationFailed() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.unknownStatus++
}

func (o *countingObserver) ScheduleParseFailed() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.scheduleErrors++
}

func (o *countingObserver) SummaryComputed(time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.summaries++
}

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func groupRef(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: true}
}

type fixture struct {
	store       *idb.MemoryStore
	observer    *countingObserver
	attendances *AttendanceService
	summaries   *SummaryService
	clock       time.Time
}

func newFixture() *fixture {
	f := &fixture{
		store:    idb.NewMemoryStore(),
		observer: &countingObserver{},
		clock:    tuesday.Add(20 * time.Hour),
	}
	log := quietLogger()
	f.attendances = NewAttendanceService(f.store, f.store, time.UTC, f.observer, log)
	// Frozen clock: stamps must still increase strictly.
	f.attendances.now = func() time.Time { return f.clock }
	f.summaries = NewSummaryService(f.store, f.attendances, f.observer, log)
	return f
}

func (f *fixture) addGroup(id int64, name, spec string) {
	f.store.AddGroup(patrol.DutyGroup{ID: id, Name: name, ScheduleSpec: spec})
}

func (f *fixture) addMember(id int64, name string, groupID int64) {
	f.store.AddMember(patrol.Member{ID: id, Name: name, Position: "Anggota", GroupID: groupRef(groupID)})
}

package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/progress"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
)

// StudyLogRepo is an in-memory progress.Repository. Entries are keyed by
// participant and UTC day, matching the Postgres implementation.
type StudyLogRepo struct {
	mu      sync.RWMutex
	entries map[shared.ParticipantID]map[time.Time]float64
}

// NewStudyLogRepo creates an empty repository.
func NewStudyLogRepo() *StudyLogRepo {
	return &StudyLogRepo{entries: make(map[shared.ParticipantID]map[time.Time]float64)}
}

// LogHours records (or replaces) the study hours for one day.
func (r *StudyLogRepo) LogHours(ctx context.Context, id shared.ParticipantID, date time.Time, hours float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries[id] == nil {
		r.entries[id] = make(map[time.Time]float64)
	}
	r.entries[id][day] = hours
	return nil
}

// History returns up to days most recent daily entries in ascending date order.
func (r *StudyLogRepo) History(ctx context.Context, id shared.ParticipantID, days int) ([]progress.DailyStudyEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]progress.DailyStudyEntry, 0, len(r.entries[id]))
	for day, hours := range r.entries[id] {
		all = append(all, progress.DailyStudyEntry{Date: day, Hours: hours})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Date.Before(all[j].Date) })

	if days > 0 && len(all) > days {
		all = all[len(all)-days:]
	}
	return all, nil
}

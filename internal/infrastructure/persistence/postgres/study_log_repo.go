package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/progress"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
	"github.com/peerstudy-hub/peerstudy-matching/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDY LOG REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// StudyLogRepository implements progress.Repository for PostgreSQL.
type StudyLogRepository struct {
	conn *Connection
}

// NewStudyLogRepository creates a new StudyLogRepository.
func NewStudyLogRepository(conn *Connection) *StudyLogRepository {
	return &StudyLogRepository{conn: conn}
}

// LogHours records (or replaces) the study hours for one day.
func (r *StudyLogRepository) LogHours(ctx context.Context, id shared.ParticipantID, date time.Time, hours float64) error {
	query := `
		INSERT INTO study_log (participant_id, study_date, hours)
		VALUES ($1, $2, $3)
		ON CONFLICT (participant_id, study_date) DO UPDATE SET hours = EXCLUDED.hours
	`
	day := timeutil.UTCDay(date)

	if _, err := r.conn.Exec(ctx, query, id.String(), day, hours); err != nil {
		return fmt.Errorf("failed to log study hours: %w", err)
	}
	return nil
}

// History returns up to days most recent daily entries in ascending date order.
func (r *StudyLogRepository) History(ctx context.Context, id shared.ParticipantID, days int) ([]progress.DailyStudyEntry, error) {
	query := `
		SELECT study_date, hours FROM (
			SELECT study_date, hours
			FROM study_log
			WHERE participant_id = $1
			ORDER BY study_date DESC
			LIMIT $2
		) recent
		ORDER BY study_date ASC
	`

	rows, err := r.conn.Query(ctx, query, id.String(), days)
	if err != nil {
		return nil, fmt.Errorf("failed to query study history: %w", err)
	}
	defer rows.Close()

	var entries []progress.DailyStudyEntry
	for rows.Next() {
		var entry progress.DailyStudyEntry
		if err := rows.Scan(&entry.Date, &entry.Hours); err != nil {
			return nil, fmt.Errorf("failed to scan study entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/participant"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PARTICIPANT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ParticipantRepository implements participant.Repository for PostgreSQL.
// Subjects and availability are stored as JSONB and decoded at this boundary;
// the domain only ever sees the structured form.
type ParticipantRepository struct {
	conn *Connection
}

// NewParticipantRepository creates a new ParticipantRepository.
func NewParticipantRepository(conn *Connection) *ParticipantRepository {
	return &ParticipantRepository{conn: conn}
}

const participantColumns = `
	p.id, p.display_name, p.level, p.style, p.institution, p.major, p.year,
	p.timezone, p.region, p.subjects, p.availability, p.completed_sessions,
	p.active, p.last_active_at, p.created_at
`

// ─────────────────────────────────────────────────────────────────────────────
// Reads
// ─────────────────────────────────────────────────────────────────────────────

// GetByID returns a participant by ID with partners loaded.
func (r *ParticipantRepository) GetByID(ctx context.Context, id shared.ParticipantID) (*participant.Participant, error) {
	query := fmt.Sprintf(`SELECT %s FROM participants p WHERE p.id = $1`, participantColumns)

	row := r.conn.QueryRow(ctx, query, id.String())
	p, err := scanParticipant(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}

	if err := r.loadPartners(ctx, []*participant.Participant{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// ListByIDs returns participants by IDs; unknown IDs are skipped.
func (r *ParticipantRepository) ListByIDs(ctx context.Context, ids []shared.ParticipantID) ([]*participant.Participant, error) {
	if len(ids) == 0 {
		return []*participant.Participant{}, nil
	}

	args := make([]string, 0, len(ids))
	for _, id := range ids {
		args = append(args, id.String())
	}

	query := fmt.Sprintf(`SELECT %s FROM participants p WHERE p.id = ANY($1)`, participantColumns)
	rows, err := r.conn.Query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants by ids: %w", err)
	}
	defer rows.Close()

	participants, err := scanParticipants(rows)
	if err != nil {
		return nil, err
	}
	if err := r.loadPartners(ctx, participants); err != nil {
		return nil, err
	}
	return participants, nil
}

// ListCandidates returns the candidate pool with hard filters pushed into SQL.
// Ordering by ID keeps the pool deterministic across calls.
func (r *ParticipantRepository) ListCandidates(ctx context.Context, filter participant.PoolFilter) ([]*participant.Participant, error) {
	conditions := make([]string, 0, 6)
	args := make([]interface{}, 0, 4)

	if filter.OnlyActive {
		conditions = append(conditions, "p.active")
	}
	if filter.OnlyCompleteProfiles {
		conditions = append(conditions, "p.display_name <> ''", "jsonb_array_length(p.subjects) > 0")
	}
	if levels := levelsInRange(filter.MinLevel, filter.MaxLevel); levels != nil {
		args = append(args, levels)
		conditions = append(conditions, fmt.Sprintf("p.level = ANY($%d)", len(args)))
	}
	if len(filter.Subjects) > 0 {
		slugs := make([]string, 0, len(filter.Subjects))
		for _, s := range filter.Subjects {
			slugs = append(slugs, s.String())
		}
		args = append(args, slugs)
		conditions = append(conditions, fmt.Sprintf(
			`EXISTS (SELECT 1 FROM jsonb_array_elements(p.subjects) e WHERE e->>'subject' = ANY($%d))`,
			len(args)))
	}
	if len(filter.ExcludeIDs) > 0 {
		excluded := make([]string, 0, len(filter.ExcludeIDs))
		for _, id := range filter.ExcludeIDs {
			excluded = append(excluded, id.String())
		}
		args = append(args, excluded)
		conditions = append(conditions, fmt.Sprintf("p.id <> ALL($%d)", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM participants p`, participantColumns)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY p.id"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	participants, err := scanParticipants(rows)
	if err != nil {
		return nil, err
	}
	if err := r.loadPartners(ctx, participants); err != nil {
		return nil, err
	}
	return participants, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Writes
// ─────────────────────────────────────────────────────────────────────────────

// Upsert creates or replaces a participant row.
func (r *ParticipantRepository) Upsert(ctx context.Context, p *participant.Participant) error {
	if err := p.Validate(); err != nil {
		return err
	}

	subjectsJSON, err := json.Marshal(subjectsToJSON(p.Subjects))
	if err != nil {
		return fmt.Errorf("failed to marshal subjects: %w", err)
	}
	availabilityJSON, err := json.Marshal(availabilityToJSON(p.Availability))
	if err != nil {
		return fmt.Errorf("failed to marshal availability: %w", err)
	}

	query := `
		INSERT INTO participants (
			id, display_name, level, style, institution, major, year,
			timezone, region, subjects, availability, completed_sessions,
			active, last_active_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			level = EXCLUDED.level,
			style = EXCLUDED.style,
			institution = EXCLUDED.institution,
			major = EXCLUDED.major,
			year = EXCLUDED.year,
			timezone = EXCLUDED.timezone,
			region = EXCLUDED.region,
			subjects = EXCLUDED.subjects,
			availability = EXCLUDED.availability,
			completed_sessions = EXCLUDED.completed_sessions,
			active = EXCLUDED.active,
			last_active_at = EXCLUDED.last_active_at
	`

	var lastActive *time.Time
	if !p.LastActiveAt.IsZero() {
		lastActive = &p.LastActiveAt
	}
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = r.conn.Exec(ctx, query,
		p.ID.String(),
		p.DisplayName,
		p.Level.String(),
		p.Style.String(),
		p.Institution,
		p.Major,
		p.Year,
		p.Timezone,
		p.Region,
		subjectsJSON,
		availabilityJSON,
		p.CompletedSessions,
		p.Active,
		lastActive,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert participant: %w", err)
	}
	return nil
}

// RecordPartnership stores a partnership in both directions.
func (r *ParticipantRepository) RecordPartnership(ctx context.Context, a, b shared.ParticipantID) error {
	query := `
		INSERT INTO partnerships (participant_id, partner_id)
		VALUES ($1, $2), ($2, $1)
		ON CONFLICT DO NOTHING
	`
	if _, err := r.conn.Exec(ctx, query, a.String(), b.String()); err != nil {
		return fmt.Errorf("failed to record partnership: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

// loadPartners fills Partners for the given participants in one query.
func (r *ParticipantRepository) loadPartners(ctx context.Context, participants []*participant.Participant) error {
	if len(participants) == 0 {
		return nil
	}

	byID := make(map[shared.ParticipantID]*participant.Participant, len(participants))
	ids := make([]string, 0, len(participants))
	for _, p := range participants {
		byID[p.ID] = p
		ids = append(ids, p.ID.String())
	}

	rows, err := r.conn.Query(ctx,
		`SELECT participant_id, partner_id FROM partnerships WHERE participant_id = ANY($1) ORDER BY partner_id`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("failed to load partnerships: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var owner, partner string
		if err := rows.Scan(&owner, &partner); err != nil {
			return fmt.Errorf("failed to scan partnership: %w", err)
		}
		if p, ok := byID[shared.ParticipantID(owner)]; ok {
			p.Partners = append(p.Partners, shared.ParticipantID(partner))
		}
	}
	return rows.Err()
}

// levelsInRange returns level names inside [min, max], or nil when unbounded.
func levelsInRange(min, max shared.AcademicLevel) []string {
	if !min.IsValid() && !max.IsValid() {
		return nil
	}
	lo, hi := 0, 3
	if min.IsValid() {
		lo = min.Ordinal()
	}
	if max.IsValid() {
		hi = max.Ordinal()
	}
	ordered := []shared.AcademicLevel{
		shared.LevelBeginner, shared.LevelIntermediate,
		shared.LevelAdvanced, shared.LevelExpert,
	}
	levels := make([]string, 0, hi-lo+1)
	for i := lo; i <= hi && i < len(ordered); i++ {
		levels = append(levels, ordered[i].String())
	}
	return levels
}

// rowScanner covers both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanParticipant(row rowScanner) (*participant.Participant, error) {
	var (
		p                       participant.Participant
		id, level, style        string
		subjectsJSON, availJSON []byte
		lastActive              *time.Time
	)

	err := row.Scan(
		&id,
		&p.DisplayName,
		&level,
		&style,
		&p.Institution,
		&p.Major,
		&p.Year,
		&p.Timezone,
		&p.Region,
		&subjectsJSON,
		&availJSON,
		&p.CompletedSessions,
		&p.Active,
		&lastActive,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.ID = shared.ParticipantID(id)
	p.Level = shared.AcademicLevel(level)
	p.Style = shared.LearningStyle(style)
	p.Subjects = subjectsFromJSON(subjectsJSON)
	p.Availability = availabilityFromJSON(availJSON)
	if lastActive != nil {
		p.LastActiveAt = *lastActive
	}
	return &p, nil
}

func scanParticipants(rows interface {
	rowScanner
	Next() bool
	Err() error
}) ([]*participant.Participant, error) {
	var participants []*participant.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return participants, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// JSONB CONVERSION
// ══════════════════════════════════════════════════════════════════════════════

type subjectJSON struct {
	Subject string `json:"subject"`
	Level   int    `json:"level"`
}

type windowJSON struct {
	Day      int    `json:"day"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Timezone string `json:"timezone,omitempty"`
}

func subjectsToJSON(subjects []participant.SubjectProficiency) []subjectJSON {
	out := make([]subjectJSON, 0, len(subjects))
	for _, sp := range subjects {
		out = append(out, subjectJSON{Subject: sp.Subject.String(), Level: int(sp.Level)})
	}
	return out
}

func subjectsFromJSON(data []byte) []participant.SubjectProficiency {
	if len(data) == 0 {
		return nil
	}
	var raw []subjectJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	subjects := make([]participant.SubjectProficiency, 0, len(raw))
	for _, s := range raw {
		subjects = append(subjects, participant.SubjectProficiency{
			Subject: shared.SubjectID(s.Subject),
			Level:   shared.Proficiency(s.Level),
		})
	}
	return subjects
}

func availabilityToJSON(windows []participant.WeeklyWindow) []windowJSON {
	out := make([]windowJSON, 0, len(windows))
	for _, w := range windows {
		out = append(out, windowJSON{
			Day:      int(w.Day),
			Start:    int(w.Start),
			End:      int(w.End),
			Timezone: w.Timezone,
		})
	}
	return out
}

func availabilityFromJSON(data []byte) []participant.WeeklyWindow {
	if len(data) == 0 {
		return nil
	}
	var raw []windowJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	windows := make([]participant.WeeklyWindow, 0, len(raw))
	for _, w := range raw {
		windows = append(windows, participant.WeeklyWindow{
			Day:      time.Weekday(w.Day),
			Start:    participant.MinuteOfDay(w.Start),
			End:      participant.MinuteOfDay(w.End),
			Timezone: w.Timezone,
		})
	}
	return windows
}

package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/participant"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
)

// ParticipantRepo is an in-memory participant.Repository. Used by tests and
// the CLI's fixture mode; behavior mirrors the Postgres implementation.
type ParticipantRepo struct {
	mu   sync.RWMutex
	byID map[shared.ParticipantID]*participant.Participant
}

// NewParticipantRepo creates an empty repository.
func NewParticipantRepo() *ParticipantRepo {
	return &ParticipantRepo{byID: make(map[shared.ParticipantID]*participant.Participant)}
}

// Seed loads participants, replacing any existing entries with the same ID.
func (r *ParticipantRepo) Seed(participants ...*participant.Participant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range participants {
		if p != nil {
			r.byID[p.ID] = p
		}
	}
}

// GetByID returns the participant or shared.ErrParticipantNotFound.
func (r *ParticipantRepo) GetByID(ctx context.Context, id shared.ParticipantID) (*participant.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return nil, shared.ErrParticipantNotFound
	}
	return p, nil
}

// ListByIDs returns the participants that exist; unknown IDs are skipped.
func (r *ParticipantRepo) ListByIDs(ctx context.Context, ids []shared.ParticipantID) ([]*participant.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*participant.Participant, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.byID[id]; ok {
			result = append(result, p)
		}
	}
	return result, nil
}

// ListCandidates applies the hard filters and returns a deterministically
// ordered pool (by ID, so repeated calls rank identically).
func (r *ParticipantRepo) ListCandidates(ctx context.Context, filter participant.PoolFilter) ([]*participant.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	excluded := make(map[shared.ParticipantID]struct{}, len(filter.ExcludeIDs))
	for _, id := range filter.ExcludeIDs {
		excluded[id] = struct{}{}
	}

	pool := make([]*participant.Participant, 0, len(r.byID))
	for _, p := range r.byID {
		if _, skip := excluded[p.ID]; skip {
			continue
		}
		if !matchesFilter(p, filter) {
			continue
		}
		pool = append(pool, p)
	}

	sort.Slice(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })
	if filter.Limit > 0 && len(pool) > filter.Limit {
		pool = pool[:filter.Limit]
	}
	return pool, nil
}

// Upsert validates and stores a participant.
func (r *ParticipantRepo) Upsert(ctx context.Context, p *participant.Participant) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[p.ID] = p
	return nil
}

// RecordPartnership records a partnership in both directions.
func (r *ParticipantRepo) RecordPartnership(ctx context.Context, a, b shared.ParticipantID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	pa, okA := r.byID[a]
	pb, okB := r.byID[b]
	if !okA || !okB {
		return shared.ErrParticipantNotFound
	}
	if !pa.HasPartner(b) {
		pa.Partners = append(pa.Partners, b)
	}
	if !pb.HasPartner(a) {
		pb.Partners = append(pb.Partners, a)
	}
	return nil
}

func matchesFilter(p *participant.Participant, filter participant.PoolFilter) bool {
	if filter.OnlyActive && !p.Active {
		return false
	}
	if filter.OnlyCompleteProfiles && !p.IsProfileComplete() {
		return false
	}
	if filter.MinLevel.IsValid() && p.Level.Ordinal() < filter.MinLevel.Ordinal() {
		return false
	}
	if filter.MaxLevel.IsValid() && p.Level.Ordinal() > filter.MaxLevel.Ordinal() {
		return false
	}
	if len(filter.Subjects) > 0 {
		any := false
		for _, subject := range filter.Subjects {
			if p.HasSubject(subject) {
				any = true
				break
			}
		}
		if !any {
			return false
		}
	}
	return true
}

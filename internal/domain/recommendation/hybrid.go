package recommendation

import (
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/participant"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
	"github.com/peerstudy-hub/peerstudy-matching/pkg/pqueue"
)

// ══════════════════════════════════════════════════════════════════════════════
// HYBRID BLENDER
// Обе стратегии запускаются с запасом (2×limit), результаты сливаются по
// кандидату: 0.6×коллаборативный + 0.4×контентный. Кандидат из одного списка
// вносит только свой взвешенный вклад.
// ══════════════════════════════════════════════════════════════════════════════

const (
	collaborativeWeight = 0.6
	contentWeight       = 0.4
)

// HybridStrategy комбинирует коллаборативную и контентную стратегии.
type HybridStrategy struct {
	collaborative Strategy
	content       Strategy
}

// NewHybridStrategy создаёт гибридную стратегию поверх двух базовых.
func NewHybridStrategy(collaborative, content Strategy) *HybridStrategy {
	return &HybridStrategy{
		collaborative: collaborative,
		content:       content,
	}
}

// NewDefaultHybridStrategy создаёт гибрид из стратегий по умолчанию.
func NewDefaultHybridStrategy() *HybridStrategy {
	return NewHybridStrategy(NewCollaborativeStrategy(), NewContentStrategy())
}

// Method возвращает метод стратегии.
func (s *HybridStrategy) Method() Method {
	return MethodHybrid
}

// blended - промежуточное состояние слияния для одного кандидата.
type blended struct {
	recommendation Recommendation
	fromCollab     bool
	fromContent    bool
}

// Recommend сливает результаты обеих стратегий во взвешенный список.
func (s *HybridStrategy) Recommend(
	requester *participant.Participant,
	pool []*participant.Participant,
	limit int,
) ([]Recommendation, error) {
	if requester == nil {
		return nil, shared.ErrNilRequester
	}
	if limit <= 0 {
		return nil, shared.ErrInvalidLimit
	}

	collabResults, err := s.collaborative.Recommend(requester, pool, 2*limit)
	if err != nil {
		return nil, err
	}
	contentResults, err := s.content.Recommend(requester, pool, 2*limit)
	if err != nil {
		return nil, err
	}

	merged := make(map[shared.ParticipantID]*blended)
	for _, r := range collabResults {
		merged[r.CandidateID] = &blended{
			recommendation: Recommendation{
				CandidateID: r.CandidateID,
				Score:       collaborativeWeight * r.Score,
				Method:      MethodCollaborative,
				Reason:      r.Reason,
			},
			fromCollab: true,
		}
	}
	for _, r := range contentResults {
		if existing, ok := merged[r.CandidateID]; ok {
			existing.recommendation.Score += contentWeight * r.Score
			existing.recommendation.Method = MethodHybrid
			existing.recommendation.Reason = existing.recommendation.Reason + "; " + r.Reason
			existing.fromContent = true
			continue
		}
		merged[r.CandidateID] = &blended{
			recommendation: Recommendation{
				CandidateID: r.CandidateID,
				Score:       contentWeight * r.Score,
				Method:      MethodContent,
				Reason:      r.Reason,
			},
			fromContent: true,
		}
	}

	all := make([]Recommendation, 0, len(merged))
	for _, b := range merged {
		all = append(all, b.recommendation)
	}
	return pqueue.TopN(all, limit, func(a, b Recommendation) bool {
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.CandidateID < b.CandidateID
	}), nil
}

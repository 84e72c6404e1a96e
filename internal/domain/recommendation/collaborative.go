package recommendation

import (
	"fmt"
	"math"
	"sort"

	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/participant"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/social"
)

// ══════════════════════════════════════════════════════════════════════════════
// COLLABORATIVE FILTERING
// "Похожие на тебя участники занимаются с этими напарниками."
// Похожесть - корреляция Пирсона по уровням владения общими предметами.
// ══════════════════════════════════════════════════════════════════════════════

const (
	// similarityThreshold - минимальная похожесть для попадания в соседство.
	similarityThreshold = 0.3

	// neighborhoodSize - размер соседства.
	neighborhoodSize = 20

	// minSharedSubjects - минимум общих предметов для расчёта корреляции.
	minSharedSubjects = 2
)

// CollaborativeStrategy реализует коллаборативную фильтрацию.
type CollaborativeStrategy struct{}

// NewCollaborativeStrategy создаёт коллаборативную стратегию.
func NewCollaborativeStrategy() *CollaborativeStrategy {
	return &CollaborativeStrategy{}
}

// Method возвращает метод стратегии.
func (s *CollaborativeStrategy) Method() Method {
	return MethodCollaborative
}

// neighbor - похожий участник с его похожестью.
type neighbor struct {
	id         shared.ParticipantID
	similarity float64
}

// Recommend строит соседство из похожих участников и накапливает баллы
// кандидатов по партнёрам соседей.
func (s *CollaborativeStrategy) Recommend(
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

	// Соседство: участники с похожестью выше порога, топ-20.
	neighbors := make([]neighbor, 0)
	for _, other := range pool {
		if other == nil || other.ID == requester.ID {
			continue
		}
		sim := PearsonSimilarity(requester, other)
		if sim > similarityThreshold {
			neighbors = append(neighbors, neighbor{id: other.ID, similarity: sim})
		}
	}
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].similarity != neighbors[j].similarity {
			return neighbors[i].similarity > neighbors[j].similarity
		}
		return neighbors[i].id < neighbors[j].id
	})
	if len(neighbors) > neighborhoodSize {
		neighbors = neighbors[:neighborhoodSize]
	}

	// Кандидаты: партнёры соседей, кроме самого запрашивающего и его
	// собственных партнёров. Балл кандидата - сумма похожестей соседей,
	// которые с ним занимаются.
	graph := social.BuildPartnerGraph(pool)
	ownPartners := requester.PartnerSet()
	scores := make(map[shared.ParticipantID]float64)
	supporters := make(map[shared.ParticipantID]int)

	for _, n := range neighbors {
		for _, candidate := range graph.Partners(n.id) {
			if candidate == requester.ID {
				continue
			}
			if _, own := ownPartners[candidate]; own {
				continue
			}
			scores[candidate] += n.similarity
			supporters[candidate]++
		}
	}

	recommendations := make([]Recommendation, 0, len(scores))
	for id, score := range scores {
		recommendations = append(recommendations, Recommendation{
			CandidateID: id,
			Score:       score,
			Method:      MethodCollaborative,
			Reason:      fmt.Sprintf("занимается с %d похожими на тебя участниками", supporters[id]),
		})
	}
	sort.Slice(recommendations, func(i, j int) bool {
		if recommendations[i].Score != recommendations[j].Score {
			return recommendations[i].Score > recommendations[j].Score
		}
		return recommendations[i].CandidateID < recommendations[j].CandidateID
	})
	if len(recommendations) > limit {
		recommendations = recommendations[:limit]
	}
	return recommendations, nil
}

// PearsonSimilarity вычисляет корреляцию Пирсона по уровням владения общими
// предметами (Beginner=1 .. Expert=4). Меньше двух общих предметов или нулевая
// дисперсия - похожесть 0, не ошибка.
func PearsonSimilarity(a, b *participant.Participant) float64 {
	setA := a.SubjectSet()
	setB := b.SubjectSet()

	var x, y []float64
	for subject, levelA := range setA {
		if levelB, ok := setB[subject]; ok {
			x = append(x, levelA.Float64())
			y = append(y, levelB.Float64())
		}
	}
	n := len(x)
	if n < minSharedSubjects {
		return 0
	}

	var sumX, sumY, sumXY, sumX2, sumY2 float64
	for i := 0; i < n; i++ {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumX2 += x[i] * x[i]
		sumY2 += y[i] * y[i]
	}

	nf := float64(n)
	numerator := nf*sumXY - sumX*sumY
	denominator := math.Sqrt(nf*sumX2-sumX*sumX) * math.Sqrt(nf*sumY2-sumY*sumY)
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

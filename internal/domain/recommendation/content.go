package recommendation

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/participant"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONTENT-BASED FILTERING
// "Этот кандидат похож на твой профиль." Каждый участник превращается в
// разреженный вектор признаков; кандидаты ранжируются по косинусной близости.
// ══════════════════════════════════════════════════════════════════════════════

// ContentStrategy реализует контентную фильтрацию.
type ContentStrategy struct{}

// NewContentStrategy создаёт контентную стратегию.
func NewContentStrategy() *ContentStrategy {
	return &ContentStrategy{}
}

// Method возвращает метод стратегии.
func (s *ContentStrategy) Method() Method {
	return MethodContent
}

// Recommend ранжирует пул по косинусной близости векторов признаков.
func (s *ContentStrategy) Recommend(
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

	requesterVector := FeatureVector(requester)
	recommendations := make([]Recommendation, 0, len(pool))

	for _, candidate := range pool {
		if candidate == nil || candidate.ID == requester.ID {
			continue
		}
		score := cosineSimilarity(requesterVector, FeatureVector(candidate))
		if score <= 0 {
			continue
		}
		recommendations = append(recommendations, Recommendation{
			CandidateID: candidate.ID,
			Score:       score,
			Method:      MethodContent,
			Reason:      matchedDimensions(requester, candidate),
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

// FeatureVector строит разреженный вектор признаков участника: по измерению
// на каждый предмет (вес = уровень владения) и по единичному измерению на
// уровень, стиль, заведение, специальность и год обучения.
func FeatureVector(p *participant.Participant) map[string]float64 {
	vector := make(map[string]float64, len(p.Subjects)+5)
	for _, sp := range p.Subjects {
		vector["subject:"+sp.Subject.String()] = sp.Level.Float64()
	}
	if p.Level.IsValid() {
		vector["level:"+p.Level.String()] = 1
	}
	if p.Style.IsSet() {
		vector["style:"+p.Style.String()] = 1
	}
	if p.Institution != "" {
		vector["institution:"+p.Institution] = 1
	}
	if p.Major != "" {
		vector["major:"+p.Major] = 1
	}
	if p.Year > 0 {
		vector["year:"+strconv.Itoa(p.Year)] = 1
	}
	return vector
}

// cosineSimilarity вычисляет косинусную близость разреженных векторов.
func cosineSimilarity(a, b map[string]float64) float64 {
	smaller, larger := a, b
	if len(larger) < len(smaller) {
		smaller, larger = larger, smaller
	}

	var dot float64
	for dim, va := range smaller {
		if vb, ok := larger[dim]; ok {
			dot += va * vb
		}
	}
	if dot == 0 {
		return 0
	}

	var normA, normB float64
	for _, v := range a {
		normA += v * v
	}
	for _, v := range b {
		normB += v * v
	}
	denominator := math.Sqrt(normA) * math.Sqrt(normB)
	if denominator == 0 {
		return 0
	}
	return dot / denominator
}

// matchedDimensions собирает человекочитаемое объяснение по совпавшим
// измерениям профилей.
func matchedDimensions(requester, candidate *participant.Participant) string {
	parts := make([]string, 0, 4)
	if common := requester.SharedSubjects(candidate); len(common) > 0 {
		parts = append(parts, "общих предметов: "+strconv.Itoa(len(common)))
	}
	if requester.Level == candidate.Level {
		parts = append(parts, "тот же уровень")
	}
	if requester.Style.IsSet() && requester.Style == candidate.Style {
		parts = append(parts, "тот же стиль обучения")
	}
	if requester.Institution != "" && requester.Institution == candidate.Institution {
		parts = append(parts, "то же заведение")
	}
	if len(parts) == 0 {
		return "похожий профиль"
	}
	return strings.Join(parts, ", ")
}

package matching

import (
	"math"
	"time"

	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/participant"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// COLLABORATOR PORTS
// Дистанция и репутация поставляются внешними подсистемами. Движок потребляет
// готовые скаляры и не делает I/O сам.
// ══════════════════════════════════════════════════════════════════════════════

// DistanceResolver поставляет дистанцию между участниками в километрах.
// Возвращает ok=false, если дистанция неизвестна.
type DistanceResolver interface {
	Distance(a, b *participant.Participant) (km float64, ok bool)
}

// ReputationSource поставляет агрегированную репутацию участника [0,1].
type ReputationSource interface {
	Reputation(id shared.ParticipantID) shared.Reputation
}

// ══════════════════════════════════════════════════════════════════════════════
// SCORER
// Чистая детерминированная функция двух участников. Все компоненты в [0,1].
// ══════════════════════════════════════════════════════════════════════════════

// Scorer вычисляет многофакторную оценку совместимости.
type Scorer struct {
	weights    Weights
	distance   DistanceResolver
	reputation ReputationSource
	refWeek    time.Time
}

// ScorerOption настраивает Scorer.
type ScorerOption func(*Scorer)

// WithWeights задаёт веса факторов (должны суммироваться в 1.0).
func WithWeights(w Weights) ScorerOption {
	return func(s *Scorer) { s.weights = w }
}

// WithDistanceResolver задаёт источник дистанций.
func WithDistanceResolver(r DistanceResolver) ScorerOption {
	return func(s *Scorer) { s.distance = r }
}

// WithReputationSource задаёт источник репутации.
func WithReputationSource(r ReputationSource) ScorerOption {
	return func(s *Scorer) { s.reputation = r }
}

// WithReferenceWeek задаёт опорную неделю для материализации доступности.
func WithReferenceWeek(weekStart time.Time) ScorerOption {
	return func(s *Scorer) { s.refWeek = weekStart }
}

// NewScorer создаёт Scorer с весами по умолчанию.
func NewScorer(opts ...ScorerOption) (*Scorer, error) {
	s := &Scorer{
		weights: DefaultWeights(),
		refWeek: participant.DefaultReferenceWeek(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.weights.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Score вычисляет оценку совместимости a и b.
// Детерминирована для фиксированных входов; вырожденные входы (пустые
// множества предметов, нулевая доступность) дают 0 по соответствующему
// фактору, а не ошибку.
func (s *Scorer) Score(a, b *participant.Participant) CompatibilityScore {
	score := CompatibilityScore{
		SubjectMatch:          subjectJaccard(a, b),
		LevelCompatibility:    levelCompatibility(a.Level, b.Level),
		StyleCompatibility:    styleCompatibility(a.Style, b.Style),
		TimeOverlap:           s.timeOverlap(a, b),
		LocationCompatibility: s.locationCompatibility(a, b),
		ActivityCompatibility: activityCompatibility(a.CompletedSessions, b.CompletedSessions),
		ReputationScore:       s.reputationScore(b),
	}
	score.Overall = clamp01(score.weightedOverall(s.weights))
	return score
}

// ─────────────────────────────────────────────────────────────────────────────
// Subject overlap: индекс Жаккара |A∩B| / |A∪B|.
// ─────────────────────────────────────────────────────────────────────────────

func subjectJaccard(a, b *participant.Participant) float64 {
	setA := a.SubjectSet()
	setB := b.SubjectSet()
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}

	intersection := 0
	for subject := range setA {
		if _, ok := setB[subject]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// ─────────────────────────────────────────────────────────────────────────────
// Level compatibility: близкие уровни совместимее.
// ─────────────────────────────────────────────────────────────────────────────

func levelCompatibility(a, b shared.AcademicLevel) float64 {
	diff := a.Ordinal() - b.Ordinal()
	if diff < 0 {
		diff = -diff
	}
	switch diff {
	case 0:
		return 1.0
	case 1:
		return 0.8
	case 2:
		return 0.5
	default:
		return 0.2
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Style compatibility: одинаковые стили лучше всего, но часть пар
// считается взаимодополняющей.
// ─────────────────────────────────────────────────────────────────────────────

// complementaryStyles - неупорядоченные пары взаимодополняющих стилей.
var complementaryStyles = map[[2]shared.LearningStyle]bool{
	stylePair(shared.StyleVisual, shared.StyleKinesthetic): true,
	stylePair(shared.StyleAuditory, shared.StyleReading):   true,
	stylePair(shared.StyleVisual, shared.StyleAuditory):    true,
}

func stylePair(a, b shared.LearningStyle) [2]shared.LearningStyle {
	if a > b {
		a, b = b, a
	}
	return [2]shared.LearningStyle{a, b}
}

func styleCompatibility(a, b shared.LearningStyle) float64 {
	if !a.IsSet() || !b.IsSet() {
		return 0.5
	}
	if a == b {
		return 1.0
	}
	if complementaryStyles[stylePair(a, b)] {
		return 0.8
	}
	return 0.3
}

// ─────────────────────────────────────────────────────────────────────────────
// Time overlap: доля пересечения относительно меньшей суммарной доступности.
// ─────────────────────────────────────────────────────────────────────────────

func (s *Scorer) timeOverlap(a, b *participant.Participant) float64 {
	intervalsA := a.MaterializeAvailability(s.refWeek)
	intervalsB := b.MaterializeAvailability(s.refWeek)

	totalA := participant.TotalAvailability(intervalsA)
	totalB := participant.TotalAvailability(intervalsB)
	if totalA == 0 || totalB == 0 {
		return 0
	}

	overlap := participant.OverlapDuration(intervalsA, intervalsB)
	minTotal := totalA
	if totalB < minTotal {
		minTotal = totalB
	}
	return clamp01(float64(overlap) / float64(minTotal))
}

// ─────────────────────────────────────────────────────────────────────────────
// Location compatibility: идентичный тег - 1.0, иначе полосы по дистанции.
// ─────────────────────────────────────────────────────────────────────────────

func (s *Scorer) locationCompatibility(a, b *participant.Participant) float64 {
	if a.LocationTag() == b.LocationTag() {
		return 1.0
	}
	return locationBand(s.resolveDistance(a, b))
}

// locationBand переводит дистанцию в категориальную оценку близости.
func locationBand(km float64) float64 {
	switch {
	case km < 10:
		return 0.9
	case km < 50:
		return 0.7
	case km < 200:
		return 0.4
	default:
		return 0.1
	}
}

// resolveDistance запрашивает дистанцию у коллаборатора; без него (или при
// неизвестной дистанции) используется грубая эвристика по тегам: один регион -
// рядом, одна таймзона - та же зона, иначе далеко.
func (s *Scorer) resolveDistance(a, b *participant.Participant) float64 {
	if s.distance != nil {
		if km, ok := s.distance.Distance(a, b); ok {
			return km
		}
	}
	switch {
	case a.Region != "" && a.Region == b.Region:
		return 5
	case a.Timezone != "" && a.Timezone == b.Timezone:
		return 40
	default:
		return 500
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Activity compatibility: близкие уровни активности.
// ─────────────────────────────────────────────────────────────────────────────

func activityCompatibility(a, b int) float64 {
	if a == 0 && b == 0 {
		return 0.5
	}
	maxActivity := math.Max(float64(a), float64(b))
	diff := math.Abs(float64(a) - float64(b))
	return math.Max(0, 1-diff/maxActivity)
}

// ─────────────────────────────────────────────────────────────────────────────
// Reputation: непрозрачный вход от агрегатора отзывов.
// ─────────────────────────────────────────────────────────────────────────────

func (s *Scorer) reputationScore(candidate *participant.Participant) float64 {
	if s.reputation == nil {
		return 0.5
	}
	return s.reputation.Reputation(candidate.ID).Clamp().Float64()
}

package matching

import (
	"math"

	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCORE WEIGHTS
// Фиксированные веса семи факторов. Инвариант: сумма весов равна 1.0.
// ══════════════════════════════════════════════════════════════════════════════

// Weights - веса факторов совместимости.
type Weights struct {
	Subject    float64
	Level      float64
	Style      float64
	Time       float64
	Location   float64
	Activity   float64
	Reputation float64
}

// DefaultWeights возвращает веса по умолчанию.
func DefaultWeights() Weights {
	return Weights{
		Subject:    0.25,
		Level:      0.20,
		Style:      0.15,
		Time:       0.15,
		Location:   0.10,
		Activity:   0.10,
		Reputation: 0.05,
	}
}

// Validate проверяет, что веса неотрицательны и в сумме дают 1.0.
func (w Weights) Validate() error {
	components := []float64{w.Subject, w.Level, w.Style, w.Time, w.Location, w.Activity, w.Reputation}
	sum := 0.0
	for _, c := range components {
		if c < 0 {
			return shared.ErrInvalidScoreWeights
		}
		sum += c
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return shared.ErrInvalidScoreWeights
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// COMPATIBILITY SCORE
// Каждый компонент лежит в [0,1]; Overall - взвешенная сумма, тоже в [0,1].
// ══════════════════════════════════════════════════════════════════════════════

// CompatibilityScore - многофакторная оценка совместимости двух участников.
type CompatibilityScore struct {
	// SubjectMatch - пересечение предметов (индекс Жаккара).
	SubjectMatch float64

	// LevelCompatibility - близость академических уровней.
	LevelCompatibility float64

	// StyleCompatibility - совместимость стилей обучения.
	StyleCompatibility float64

	// TimeOverlap - пересечение окон доступности.
	TimeOverlap float64

	// LocationCompatibility - географическая близость.
	LocationCompatibility float64

	// ActivityCompatibility - близость уровней активности.
	ActivityCompatibility float64

	// ReputationScore - агрегированная репутация кандидата.
	ReputationScore float64

	// Overall - взвешенная сумма всех компонентов.
	Overall float64
}

// Breakdown возвращает разбивку оценки по факторам.
func (s CompatibilityScore) Breakdown() map[string]float64 {
	return map[string]float64{
		"subject":    s.SubjectMatch,
		"level":      s.LevelCompatibility,
		"style":      s.StyleCompatibility,
		"time":       s.TimeOverlap,
		"location":   s.LocationCompatibility,
		"activity":   s.ActivityCompatibility,
		"reputation": s.ReputationScore,
	}
}

// weightedOverall вычисляет Overall как скалярное произведение с весами.
func (s CompatibilityScore) weightedOverall(w Weights) float64 {
	return s.SubjectMatch*w.Subject +
		s.LevelCompatibility*w.Level +
		s.StyleCompatibility*w.Style +
		s.TimeOverlap*w.Time +
		s.LocationCompatibility*w.Location +
		s.ActivityCompatibility*w.Activity +
		s.ReputationScore*w.Reputation
}

// ══════════════════════════════════════════════════════════════════════════════
// MATCH QUALITY
// Качественная оценка совместимости для отображения пользователю.
// ══════════════════════════════════════════════════════════════════════════════

// MatchQuality определяет качество подбора.
type MatchQuality string

const (
	// MatchQualityExcellent - отличная совместимость (>= 0.8).
	MatchQualityExcellent MatchQuality = "excellent"

	// MatchQualityGood - хорошая совместимость (>= 0.6).
	MatchQualityGood MatchQuality = "good"

	// MatchQualityFair - удовлетворительная совместимость (>= 0.4).
	MatchQualityFair MatchQuality = "fair"

	// MatchQualityPoor - низкая совместимость (>= 0.2).
	MatchQualityPoor MatchQuality = "poor"

	// MatchQualityNone - нет совместимости (< 0.2).
	MatchQualityNone MatchQuality = "none"
)

// Quality возвращает качественную оценку по общему баллу.
func (s CompatibilityScore) Quality() MatchQuality {
	switch {
	case s.Overall >= 0.8:
		return MatchQualityExcellent
	case s.Overall >= 0.6:
		return MatchQualityGood
	case s.Overall >= 0.4:
		return MatchQualityFair
	case s.Overall >= 0.2:
		return MatchQualityPoor
	default:
		return MatchQualityNone
	}
}

// clamp01 ограничивает значение диапазоном [0,1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Package progress содержит проекцию учебного прогресса: по истории часов
// занятий оценивается дата достижения целевого объёма.
package progress

import (
	"math"
	"sort"
	"time"

	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDY HISTORY
// ══════════════════════════════════════════════════════════════════════════════

// DailyStudyEntry - часы занятий за один день.
type DailyStudyEntry struct {
	// Date - дата (время суток игнорируется).
	Date time.Time

	// Hours - часы занятий за день.
	Hours float64
}

// ══════════════════════════════════════════════════════════════════════════════
// PROJECTION
// ══════════════════════════════════════════════════════════════════════════════

// maxConfidence - верхняя граница уверенности: проекция никогда не бывает
// абсолютно надёжной.
const maxConfidence = 0.95

// Projection - результат проекции достижения цели.
type Projection struct {
	// TargetHours - целевой объём часов.
	TargetHours float64

	// LoggedHours - уже накопленные часы.
	LoggedHours float64

	// DailyRate - оценка темпа (часов в день) по регрессии.
	DailyRate float64

	// ProjectedDate - прогнозируемая дата достижения цели.
	// Всегда строго позже последней наблюдаемой даты.
	ProjectedDate time.Time

	// Confidence - уверенность прогноза в [0, 0.95].
	Confidence float64

	// Achievable - false, если темп нулевой и цель недостижима.
	Achievable bool
}

// ProjectCompletion строит линейную регрессию (метод наименьших квадратов)
// по дневным часам и проецирует дату достижения targetHours.
//
// Контрактные ошибки: targetHours <= 0. Пустая или нулевая история - не
// ошибка: возвращается недостижимая проекция с нулевой уверенностью.
func ProjectCompletion(entries []DailyStudyEntry, targetHours float64) (Projection, error) {
	if targetHours <= 0 {
		return Projection{}, shared.NewDomainError("progress", "ProjectCompletion",
			shared.ErrValidation, "target hours must be positive")
	}

	projection := Projection{TargetHours: targetHours}
	if len(entries) == 0 {
		return projection, nil
	}

	sorted := make([]DailyStudyEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	var logged float64
	for _, e := range sorted {
		logged += e.Hours
	}
	projection.LoggedHours = logged
	lastDate := sorted[len(sorted)-1].Date

	if logged >= targetHours {
		// Цель уже достигнута: прогноз - следующий день, уверенность максимальна.
		projection.DailyRate = meanHours(sorted)
		projection.ProjectedDate = lastDate.AddDate(0, 0, 1)
		projection.Confidence = maxConfidence
		projection.Achievable = true
		return projection, nil
	}

	slope, intercept, r2 := linearRegression(sorted)

	// Темп на ближайшие дни: значение регрессии на следующем дне,
	// с откатом на средний темп при неположительном прогнозе.
	nextIndex := float64(len(sorted))
	rate := slope*nextIndex + intercept
	if rate <= 0 {
		rate = meanHours(sorted)
	}
	if rate <= 0 {
		return projection, nil
	}

	remaining := targetHours - logged
	daysNeeded := int(math.Ceil(remaining / rate))
	if daysNeeded < 1 {
		daysNeeded = 1
	}

	projection.DailyRate = rate
	projection.ProjectedDate = lastDate.AddDate(0, 0, daysNeeded)
	projection.Confidence = confidence(r2, len(sorted))
	projection.Achievable = true
	return projection, nil
}

// linearRegression вычисляет наклон, свободный член и R² регрессии часов
// по индексу дня (0, 1, 2, ...).
func linearRegression(entries []DailyStudyEntry) (slope, intercept, r2 float64) {
	n := float64(len(entries))
	if n < 2 {
		return 0, entries[0].Hours, 0
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i, e := range entries {
		x := float64(i)
		sumX += x
		sumY += e.Hours
		sumXY += x * e.Hours
		sumX2 += x * x
	}

	denominator := n*sumX2 - sumX*sumX
	if denominator == 0 {
		return 0, sumY / n, 0
	}
	slope = (n*sumXY - sumX*sumY) / denominator
	intercept = (sumY - slope*sumX) / n

	// R²: доля объяснённой дисперсии.
	meanY := sumY / n
	var ssTotal, ssResidual float64
	for i, e := range entries {
		predicted := slope*float64(i) + intercept
		ssTotal += (e.Hours - meanY) * (e.Hours - meanY)
		ssResidual += (e.Hours - predicted) * (e.Hours - predicted)
	}
	if ssTotal == 0 {
		// Идеально ровный темп: регрессия тривиальна, но надёжна.
		return slope, intercept, 1
	}
	r2 = 1 - ssResidual/ssTotal
	if r2 < 0 {
		r2 = 0
	}
	return slope, intercept, r2
}

// confidence переводит качество регрессии и объём данных в уверенность.
// Две недели наблюдений дают полный вес данных.
func confidence(r2 float64, samples int) float64 {
	dataWeight := math.Min(1, float64(samples)/14.0)
	c := (0.4 + 0.6*r2) * dataWeight * maxConfidence
	if c < 0 {
		return 0
	}
	if c > maxConfidence {
		return maxConfidence
	}
	return c
}

// meanHours возвращает средние часы в день.
func meanHours(entries []DailyStudyEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	var sum float64
	for _, e := range entries {
		sum += e.Hours
	}
	return sum / float64(len(entries))
}

package participant

import (
	"sort"
	"time"

	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// AVAILABILITY
// Доступность хранится как структурированные еженедельные окна.
// Сериализованные представления (JSON из хранилища) разбираются на границе
// системы - движок работает только со структурой.
// ══════════════════════════════════════════════════════════════════════════════

// MinuteOfDay - минута суток (0..1439).
type MinuteOfDay int

// IsValid проверяет попадание в сутки.
func (m MinuteOfDay) IsValid() bool {
	return m >= 0 && m < 24*60
}

// WeeklyWindow представляет повторяющееся окно доступности.
type WeeklyWindow struct {
	// Day - день недели.
	Day time.Weekday

	// Start - начало окна (минута суток в локальной таймзоне окна).
	Start MinuteOfDay

	// End - конец окна (минута суток, строго больше Start).
	End MinuteOfDay

	// Timezone - таймзона окна (IANA). Пустая = таймзона участника.
	Timezone string
}

// Validate проверяет корректность окна.
// Вырожденные окна (Start == End) недопустимы: они дают нулевую доступность
// и приводят к делению на ноль при расчёте пересечений.
func (w WeeklyWindow) Validate() error {
	if !w.Start.IsValid() || !w.End.IsValid() {
		return shared.ErrInvalidAvailability
	}
	if w.Start >= w.End {
		return shared.ErrInvalidAvailability
	}
	return nil
}

// Duration возвращает длительность окна.
func (w WeeklyWindow) Duration() time.Duration {
	return time.Duration(w.End-w.Start) * time.Minute
}

// ══════════════════════════════════════════════════════════════════════════════
// INTERVAL
// Конкретный интервал на общей календарной оси (после материализации окон).
// ══════════════════════════════════════════════════════════════════════════════

// Interval - полуоткрытый интервал [Start, End) на общей оси времени.
type Interval struct {
	Start time.Time
	End   time.Time
}

// IsValid проверяет инвариант Start < End.
func (i Interval) IsValid() bool {
	return i.Start.Before(i.End)
}

// Duration возвращает длительность интервала.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Overlaps проверяет пересечение с другим интервалом.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Intersection возвращает длительность пересечения (0 если не пересекаются).
func (i Interval) Intersection(other Interval) time.Duration {
	start := i.Start
	if other.Start.After(start) {
		start = other.Start
	}
	end := i.End
	if other.End.Before(end) {
		end = other.End
	}
	if !start.Before(end) {
		return 0
	}
	return end.Sub(start)
}

// ══════════════════════════════════════════════════════════════════════════════
// MATERIALIZATION
// Окна проецируются на одну общую опорную неделю, чтобы интервалы разных
// участников можно было сравнивать на одной оси.
// ══════════════════════════════════════════════════════════════════════════════

// MaterializeAvailability проецирует еженедельные окна участника на опорную
// неделю, начинающуюся с weekStart (понедельник 00:00 UTC). Невалидные и
// вырожденные окна пропускаются, результат отсортирован по началу.
func (p *Participant) MaterializeAvailability(weekStart time.Time) []Interval {
	intervals := make([]Interval, 0, len(p.Availability))
	for _, w := range p.Availability {
		if w.Validate() != nil {
			continue
		}
		loc := resolveLocation(w.Timezone, p.Timezone)

		// Сдвиг дня относительно понедельника опорной недели.
		dayOffset := (int(w.Day) - int(time.Monday) + 7) % 7
		day := weekStart.AddDate(0, 0, dayOffset)

		start := time.Date(day.Year(), day.Month(), day.Day(), 0, int(w.Start), 0, 0, loc).UTC()
		end := time.Date(day.Year(), day.Month(), day.Day(), 0, int(w.End), 0, 0, loc).UTC()
		if !start.Before(end) {
			continue
		}
		intervals = append(intervals, Interval{Start: start, End: end})
	}

	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].Start.Before(intervals[j].Start)
	})
	return intervals
}

// TotalAvailability возвращает суммарную длительность интервалов.
func TotalAvailability(intervals []Interval) time.Duration {
	var total time.Duration
	for _, iv := range intervals {
		total += iv.Duration()
	}
	return total
}

// OverlapDuration вычисляет суммарное пересечение двух отсортированных
// списков интервалов методом двух указателей: продвигается тот интервал,
// который заканчивается раньше.
func OverlapDuration(a, b []Interval) time.Duration {
	var total time.Duration
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		total += a[i].Intersection(b[j])
		if a[i].End.Before(b[j].End) {
			i++
		} else {
			j++
		}
	}
	return total
}

// DefaultReferenceWeek возвращает опорную неделю для материализации:
// понедельник 00:00 UTC фиксированной календарной недели. Выбор недели не
// влияет на результат - важна только общая ось для всех участников.
func DefaultReferenceWeek() time.Time {
	// Monday, 5 January 2026, 00:00 UTC.
	return time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
}

// resolveLocation возвращает первую валидную таймзону из списка, иначе UTC.
func resolveLocation(zones ...string) *time.Location {
	for _, z := range zones {
		if z == "" {
			continue
		}
		if loc, err := time.LoadLocation(z); err == nil {
			return loc
		}
	}
	return time.UTC
}

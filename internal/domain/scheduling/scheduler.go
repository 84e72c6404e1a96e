package scheduling

import (
	"sort"
	"time"

	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/participant"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
	"github.com/peerstudy-hub/peerstudy-matching/pkg/pqueue"
)

// ══════════════════════════════════════════════════════════════════════════════
// AVAILABILITY SCHEDULER
// Якорный алгоритм: каждый исходный интервал становится кандидатным слотом,
// ограниченным собственными началом и концом, с множеством участников, чьи
// интервалы его пересекают. Полное sweep-line слияние здесь намеренно не
// используется - слоты совпадают с реальными окнами участников.
// ══════════════════════════════════════════════════════════════════════════════

// maxSlots - максимум возвращаемых слотов.
const maxSlots = 5

// Scheduler находит совместные окна доступности.
type Scheduler struct {
	refWeek time.Time
}

// NewScheduler создаёт Scheduler с опорной неделей по умолчанию.
func NewScheduler() *Scheduler {
	return &Scheduler{refWeek: participant.DefaultReferenceWeek()}
}

// NewSchedulerWithReference создаёт Scheduler с заданной опорной неделей.
func NewSchedulerWithReference(weekStart time.Time) *Scheduler {
	return &Scheduler{refWeek: weekStart}
}

// FindSlots возвращает до 5 слотов, в которых доступно не менее
// minParticipants участников на время не короче requiredDuration.
// Слоты отсортированы по числу участников по убыванию.
//
// Пустая доступность - не ошибка: возвращается пустой список. Ошибкой
// являются только нарушения контракта вызова (неположительные параметры).
func (s *Scheduler) FindSlots(
	participants []*participant.Participant,
	requiredDuration time.Duration,
	minParticipants int,
) ([]ScheduleSlot, error) {
	if requiredDuration <= 0 {
		return nil, shared.ErrInvalidDuration
	}
	if minParticipants <= 0 {
		return nil, shared.ErrInvalidMinParticipants
	}

	intervals := s.flatten(participants)
	if len(intervals) == 0 {
		return []ScheduleSlot{}, nil
	}

	candidates := make([]ScheduleSlot, 0, len(intervals))
	for _, anchor := range intervals {
		if anchor.Duration() < requiredDuration {
			continue
		}

		ids := overlappingOwners(anchor, intervals)
		if len(ids) < minParticipants {
			continue
		}

		candidates = append(candidates, ScheduleSlot{
			Start:          anchor.Start,
			End:            anchor.End,
			ParticipantIDs: ids,
		})
	}

	// Лучшие слоты - с наибольшим числом участников; при равенстве
	// детерминированно предпочитаем более ранний и длинный.
	top := pqueue.TopN(candidates, maxSlots, func(a, b ScheduleSlot) bool {
		if a.ParticipantCount() != b.ParticipantCount() {
			return a.ParticipantCount() > b.ParticipantCount()
		}
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		return a.Duration() > b.Duration()
	})
	return top, nil
}

// flatten материализует доступность всех участников в помеченные интервалы,
// отсортированные по началу.
func (s *Scheduler) flatten(participants []*participant.Participant) []TaggedInterval {
	intervals := make([]TaggedInterval, 0)
	for _, p := range participants {
		if p == nil {
			continue
		}
		for _, iv := range p.MaterializeAvailability(s.refWeek) {
			intervals = append(intervals, TaggedInterval{Interval: iv, Owner: p.ID})
		}
	}
	sort.Slice(intervals, func(i, j int) bool {
		if !intervals[i].Start.Equal(intervals[j].Start) {
			return intervals[i].Start.Before(intervals[j].Start)
		}
		return intervals[i].End.Before(intervals[j].End)
	})
	return intervals
}

// overlappingOwners возвращает множество владельцев интервалов, пересекающих
// якорь (включая владельца якоря). Порядок детерминирован порядком обхода.
func overlappingOwners(anchor TaggedInterval, intervals []TaggedInterval) []shared.ParticipantID {
	seen := make(map[shared.ParticipantID]struct{})
	ids := make([]shared.ParticipantID, 0)
	for _, other := range intervals {
		if !other.Start.Before(anchor.End) || !anchor.Start.Before(other.End) {
			continue
		}
		if _, ok := seen[other.Owner]; ok {
			continue
		}
		seen[other.Owner] = struct{}{}
		ids = append(ids, other.Owner)
	}
	return ids
}

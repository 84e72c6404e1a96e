// Package scheduling находит окна, в которых одновременно доступно нужное
// число участников. Потребляет ту же модель участника, что и подбор.
package scheduling

import (
	"time"

	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/participant"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// TAGGED INTERVAL
// ══════════════════════════════════════════════════════════════════════════════

// TaggedInterval - интервал доступности с владельцем.
// Инвариант: Start < End (вырожденные интервалы отбрасываются при сборке).
type TaggedInterval struct {
	participant.Interval

	// Owner - участник, которому принадлежит интервал.
	Owner shared.ParticipantID
}

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULE SLOT
// ══════════════════════════════════════════════════════════════════════════════

// ScheduleSlot - кандидатное окно для совместной сессии.
// Инвариант: len(ParticipantIDs) >= minParticipants для возвращаемых слотов.
type ScheduleSlot struct {
	// ID - уникальный идентификатор слота (UUID, присваивается обработчиком).
	ID string

	// Start/End - границы окна.
	Start time.Time
	End   time.Time

	// ParticipantIDs - участники, доступные в этом окне.
	ParticipantIDs []shared.ParticipantID
}

// Duration возвращает длительность слота.
func (s ScheduleSlot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// ParticipantCount возвращает число доступных участников.
func (s ScheduleSlot) ParticipantCount() int {
	return len(s.ParticipantIDs)
}

// Includes проверяет, доступен ли участник в слоте.
func (s ScheduleSlot) Includes(id shared.ParticipantID) bool {
	for _, pid := range s.ParticipantIDs {
		if pid == id {
			return true
		}
	}
	return false
}

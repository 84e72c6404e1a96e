package participant

import (
	"context"

	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для слоя данных, поставляющего пул
// кандидатов. Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// PoolFilter - жёсткие критерии отбора, которые слой данных может применить
// до передачи пула движку. Поведенчески эквивалентен фильтрации в памяти.
type PoolFilter struct {
	// Subjects - кандидат должен изучать хотя бы один из предметов
	// (пустой список = без ограничения).
	Subjects []shared.SubjectID

	// MinLevel/MaxLevel - границы академического уровня (пустые = без границ).
	MinLevel shared.AcademicLevel
	MaxLevel shared.AcademicLevel

	// OnlyActive - отбирать только активных участников.
	OnlyActive bool

	// OnlyCompleteProfiles - отбирать только заполненные профили.
	OnlyCompleteProfiles bool

	// ExcludeIDs - исключить участников (сам запрашивающий, его напарники).
	ExcludeIDs []shared.ParticipantID

	// Limit - максимальный размер пула (0 = без ограничения).
	Limit int
}

// Repository определяет операции чтения участников.
type Repository interface {
	// GetByID возвращает участника по ID.
	// Возвращает ErrParticipantNotFound, если участник не найден.
	GetByID(ctx context.Context, id shared.ParticipantID) (*Participant, error)

	// ListByIDs возвращает участников по списку ID (отсутствующие пропускаются).
	ListByIDs(ctx context.Context, ids []shared.ParticipantID) ([]*Participant, error)

	// ListCandidates возвращает пул кандидатов с применёнными жёсткими фильтрами.
	ListCandidates(ctx context.Context, filter PoolFilter) ([]*Participant, error)
}

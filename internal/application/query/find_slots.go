package query

import (
	"context"
	"time"

	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/participant"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/scheduling"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
	"github.com/peerstudy-hub/peerstudy-matching/pkg/logger"
	"github.com/peerstudy-hub/peerstudy-matching/pkg/metrics"
)

// ══════════════════════════════════════════════════════════════════════════════
// FIND SLOTS QUERY
// Поиск совместных окон доступности для группы участников: до 5 слотов,
// отсортированных по числу доступных участников.
// ══════════════════════════════════════════════════════════════════════════════

// defaultSlotDurationMinutes - длительность сессии по умолчанию.
const defaultSlotDurationMinutes = 60

// FindSlotsQuery содержит параметры поиска слотов.
type FindSlotsQuery struct {
	// ParticipantIDs - участники, для которых ищутся общие окна.
	ParticipantIDs []string

	// DurationMinutes - требуемая длительность сессии в минутах
	// (0 = по умолчанию 60).
	DurationMinutes int

	// MinParticipants - минимум одновременно доступных участников
	// (0 = все перечисленные).
	MinParticipants int
}

// Validate проверяет корректность параметров и нормализует значения.
func (q *FindSlotsQuery) Validate() error {
	if len(q.ParticipantIDs) == 0 {
		return shared.NewDomainError("query", "FindSlots", shared.ErrValidation, "participant list is empty")
	}
	if q.DurationMinutes < 0 {
		return shared.ErrInvalidDuration
	}
	if q.DurationMinutes == 0 {
		q.DurationMinutes = defaultSlotDurationMinutes
	}
	if q.MinParticipants < 0 {
		return shared.ErrInvalidMinParticipants
	}
	if q.MinParticipants == 0 {
		q.MinParticipants = len(q.ParticipantIDs)
	}
	return nil
}

// SlotDTO - один найденный слот.
type SlotDTO struct {
	// Start - начало слота (UTC).
	Start time.Time `json:"start"`

	// End - конец слота (UTC).
	End time.Time `json:"end"`

	// DurationMinutes - длительность слота в минутах.
	DurationMinutes int `json:"duration_minutes"`

	// ParticipantIDs - кто доступен в этом слоте.
	ParticipantIDs []string `json:"participant_ids"`

	// ParticipantCount - число доступных участников.
	ParticipantCount int `json:"participant_count"`
}

// FindSlotsResult содержит результат поиска слотов.
type FindSlotsResult struct {
	// Slots - найденные слоты (до 5, лучшие первыми).
	Slots []SlotDTO `json:"slots"`

	// RequestedCount - сколько участников было запрошено.
	RequestedCount int `json:"requested_count"`

	// ResolvedCount - сколько участников найдено в хранилище.
	ResolvedCount int `json:"resolved_count"`

	// GeneratedAt - время генерации.
	GeneratedAt time.Time `json:"generated_at"`
}

// FindSlotsHandler обрабатывает запросы поиска слотов.
type FindSlotsHandler struct {
	participantRepo participant.Repository
	scheduler       *scheduling.Scheduler
	metrics         *metrics.Metrics
	log             *logger.Logger
}

// NewFindSlotsHandler создаёт новый обработчик.
func NewFindSlotsHandler(
	participantRepo participant.Repository,
	scheduler *scheduling.Scheduler,
	m *metrics.Metrics,
	log *logger.Logger,
) *FindSlotsHandler {
	if log == nil {
		log = logger.Default()
	}
	return &FindSlotsHandler{
		participantRepo: participantRepo,
		scheduler:       scheduler,
		metrics:         m,
		log:             log,
	}
}

// Handle выполняет поиск слотов.
func (h *FindSlotsHandler) Handle(ctx context.Context, query FindSlotsQuery) (*FindSlotsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "FindSlots", shared.ErrValidation, "invalid query", err)
	}

	ids := make([]shared.ParticipantID, 0, len(query.ParticipantIDs))
	for _, raw := range query.ParticipantIDs {
		ids = append(ids, shared.ParticipantID(raw))
	}

	participants, err := h.participantRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, shared.WrapError("query", "FindSlots", shared.ErrExternalService, "participants unavailable", err)
	}

	slots, err := h.scheduler.FindSlots(
		participants,
		time.Duration(query.DurationMinutes)*time.Minute,
		query.MinParticipants,
	)
	if err != nil {
		return nil, err
	}

	if h.metrics != nil {
		h.metrics.SlotsFound.Observe(float64(len(slots)))
	}
	h.log.Debug("slots computed",
		logger.CandidateCount(len(participants)),
		logger.ResultCount(len(slots)),
	)

	dtos := make([]SlotDTO, 0, len(slots))
	for _, slot := range slots {
		slotIDs := make([]string, 0, len(slot.ParticipantIDs))
		for _, id := range slot.ParticipantIDs {
			slotIDs = append(slotIDs, id.String())
		}
		dtos = append(dtos, SlotDTO{
			Start:            slot.Start,
			End:              slot.End,
			DurationMinutes:  int(slot.Duration().Minutes()),
			ParticipantIDs:   slotIDs,
			ParticipantCount: slot.ParticipantCount(),
		})
	}

	return &FindSlotsResult{
		Slots:          dtos,
		RequestedCount: len(query.ParticipantIDs),
		ResolvedCount:  len(participants),
		GeneratedAt:    time.Now().UTC(),
	}, nil
}

package query

import (
	"context"
	"time"

	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/progress"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
	"github.com/peerstudy-hub/peerstudy-matching/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROJECT PROGRESS QUERY
// Проекция достижения учебной цели: по истории ежедневных часов оценивается
// темп и прогнозируется дата достижения цели.
// ══════════════════════════════════════════════════════════════════════════════

// defaultHistoryDays - глубина истории по умолчанию.
const defaultHistoryDays = 30

// ProjectProgressQuery содержит параметры запроса проекции.
type ProjectProgressQuery struct {
	// ParticipantID - ID участника.
	ParticipantID string

	// TargetHours - целевое число часов (должно быть положительным).
	TargetHours float64

	// HistoryDays - сколько последних дней истории учитывать
	// (0 = по умолчанию 30).
	HistoryDays int
}

// Validate проверяет корректность параметров и нормализует значения.
func (q *ProjectProgressQuery) Validate() error {
	if q.ParticipantID == "" {
		return shared.NewDomainError("query", "ProjectProgress", shared.ErrValidation, "participant_id is required")
	}
	if q.TargetHours <= 0 {
		return shared.NewDomainError("query", "ProjectProgress", shared.ErrValidation, "target_hours must be positive")
	}
	if q.HistoryDays < 0 {
		return shared.NewDomainError("query", "ProjectProgress", shared.ErrValidation, "history_days cannot be negative")
	}
	if q.HistoryDays == 0 {
		q.HistoryDays = defaultHistoryDays
	}
	return nil
}

// ProjectProgressResult содержит результат проекции.
type ProjectProgressResult struct {
	// ParticipantID - ID участника.
	ParticipantID string `json:"participant_id"`

	// TargetHours - целевое число часов.
	TargetHours float64 `json:"target_hours"`

	// LoggedHours - накопленные часы за рассмотренный период.
	LoggedHours float64 `json:"logged_hours"`

	// DailyRate - оценка темпа (часов в день).
	DailyRate float64 `json:"daily_rate"`

	// ProjectedDate - прогнозируемая дата достижения цели.
	ProjectedDate time.Time `json:"projected_date,omitempty"`

	// Confidence - уверенность прогноза [0, 0.95].
	Confidence float64 `json:"confidence"`

	// Achievable - достижима ли цель при текущем темпе.
	Achievable bool `json:"achievable"`

	// SampleDays - сколько дней истории учтено.
	SampleDays int `json:"sample_days"`

	// GeneratedAt - время генерации.
	GeneratedAt time.Time `json:"generated_at"`
}

// ProjectProgressHandler обрабатывает запросы проекции прогресса.
type ProjectProgressHandler struct {
	progressRepo progress.Repository
	log          *logger.Logger
}

// NewProjectProgressHandler создаёт новый обработчик.
func NewProjectProgressHandler(progressRepo progress.Repository, log *logger.Logger) *ProjectProgressHandler {
	if log == nil {
		log = logger.Default()
	}
	return &ProjectProgressHandler{progressRepo: progressRepo, log: log}
}

// Handle выполняет запрос проекции.
func (h *ProjectProgressHandler) Handle(ctx context.Context, query ProjectProgressQuery) (*ProjectProgressResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "ProjectProgress", shared.ErrValidation, "invalid query", err)
	}

	entries, err := h.progressRepo.History(ctx, shared.ParticipantID(query.ParticipantID), query.HistoryDays)
	if err != nil {
		return nil, shared.WrapError("query", "ProjectProgress", shared.ErrExternalService, "study history unavailable", err)
	}

	projection, err := progress.ProjectCompletion(entries, query.TargetHours)
	if err != nil {
		return nil, err
	}

	h.log.Debug("progress projected",
		logger.ParticipantID(query.ParticipantID),
		logger.Float64("daily_rate", projection.DailyRate),
		logger.Bool("achievable", projection.Achievable),
	)

	return &ProjectProgressResult{
		ParticipantID: query.ParticipantID,
		TargetHours:   projection.TargetHours,
		LoggedHours:   projection.LoggedHours,
		DailyRate:     projection.DailyRate,
		ProjectedDate: projection.ProjectedDate,
		Confidence:    projection.Confidence,
		Achievable:    projection.Achievable,
		SampleDays:    len(entries),
		GeneratedAt:   time.Now().UTC(),
	}, nil
}

package command

import (
	"context"
	"time"

	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/progress"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
	"github.com/peerstudy-hub/peerstudy-matching/pkg/logger"
	"github.com/peerstudy-hub/peerstudy-matching/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// LOG STUDY HOURS COMMAND
// Записывает часы занятий за день. Повторная запись за тот же день заменяет
// предыдущую - это источник данных для проекции прогресса.
// ══════════════════════════════════════════════════════════════════════════════

// maxDailyHours - физический потолок часов за один день.
const maxDailyHours = 24

// LogStudyHoursCommand содержит данные для записи часов.
type LogStudyHoursCommand struct {
	// ParticipantID - ID участника.
	ParticipantID string

	// Date - день, за который записываются часы (обрезается до суток UTC).
	Date time.Time

	// Hours - число часов за день.
	Hours float64
}

// Validate проверяет корректность команды.
func (c LogStudyHoursCommand) Validate() error {
	if c.ParticipantID == "" {
		return shared.NewDomainError("command", "LogStudyHours", shared.ErrValidation, "participant_id is required")
	}
	if c.Date.IsZero() {
		return shared.NewDomainError("command", "LogStudyHours", shared.ErrValidation, "date is required")
	}
	if c.Hours < 0 || c.Hours > maxDailyHours {
		return shared.NewDomainError("command", "LogStudyHours", shared.ErrValueOutOfRange, "hours must be within [0, 24]")
	}
	return nil
}

// LogStudyHoursHandler обрабатывает команды записи часов.
type LogStudyHoursHandler struct {
	progressRepo progress.Repository
	log          *logger.Logger
}

// NewLogStudyHoursHandler создаёт новый обработчик.
func NewLogStudyHoursHandler(progressRepo progress.Repository, log *logger.Logger) *LogStudyHoursHandler {
	if log == nil {
		log = logger.Default()
	}
	return &LogStudyHoursHandler{progressRepo: progressRepo, log: log}
}

// Handle выполняет команду записи часов.
func (h *LogStudyHoursHandler) Handle(ctx context.Context, cmd LogStudyHoursCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	day := timeutil.UTCDay(cmd.Date)
	if err := h.progressRepo.LogHours(ctx, shared.ParticipantID(cmd.ParticipantID), day, cmd.Hours); err != nil {
		return shared.WrapError("command", "LogStudyHours", shared.ErrExternalService, "failed to log study hours", err)
	}

	h.log.Debug("study hours logged",
		logger.ParticipantID(cmd.ParticipantID),
		logger.Float64("hours", cmd.Hours),
	)
	return nil
}

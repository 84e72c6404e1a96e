// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"

	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/participant"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
	"github.com/peerstudy-hub/peerstudy-matching/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD PARTNERSHIP COMMAND
// Фиксирует партнёрство между двумя участниками. Партнёрства симметричны и
// исключают участников из будущих выдач подбора друг для друга.
// ══════════════════════════════════════════════════════════════════════════════

// RecordPartnershipCommand содержит данные для записи партнёрства.
type RecordPartnershipCommand struct {
	// InitiatorID - ID инициатора партнёрства.
	InitiatorID string

	// PartnerID - ID второго участника.
	PartnerID string
}

// Validate проверяет корректность команды.
func (c RecordPartnershipCommand) Validate() error {
	if c.InitiatorID == "" || c.PartnerID == "" {
		return shared.NewDomainError("command", "RecordPartnership", shared.ErrValidation, "both participant IDs are required")
	}
	if c.InitiatorID == c.PartnerID {
		return shared.NewDomainError("command", "RecordPartnership", shared.ErrValidation, "participant cannot partner with themselves")
	}
	return nil
}

// PartnershipWriter записывает партнёрство в хранилище.
type PartnershipWriter interface {
	RecordPartnership(ctx context.Context, a, b shared.ParticipantID) error
}

// MatchCacheInvalidator сбрасывает кешированные выдачи подбора.
type MatchCacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// RecordPartnershipHandler обрабатывает команды записи партнёрства.
type RecordPartnershipHandler struct {
	participantRepo participant.Repository
	writer          PartnershipWriter
	invalidator     MatchCacheInvalidator
	log             *logger.Logger
}

// NewRecordPartnershipHandler создаёт новый обработчик.
// invalidator опционален: nil отключает сброс разделяемого кеша.
func NewRecordPartnershipHandler(
	participantRepo participant.Repository,
	writer PartnershipWriter,
	invalidator MatchCacheInvalidator,
	log *logger.Logger,
) *RecordPartnershipHandler {
	if log == nil {
		log = logger.Default()
	}
	return &RecordPartnershipHandler{
		participantRepo: participantRepo,
		writer:          writer,
		invalidator:     invalidator,
		log:             log,
	}
}

// Handle выполняет команду записи партнёрства.
func (h *RecordPartnershipHandler) Handle(ctx context.Context, cmd RecordPartnershipCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	initiatorID := shared.ParticipantID(cmd.InitiatorID)
	partnerID := shared.ParticipantID(cmd.PartnerID)

	if _, err := h.participantRepo.GetByID(ctx, initiatorID); err != nil {
		return shared.WrapError("command", "RecordPartnership", shared.ErrNotFound, "initiator not found", err)
	}
	if _, err := h.participantRepo.GetByID(ctx, partnerID); err != nil {
		return shared.WrapError("command", "RecordPartnership", shared.ErrNotFound, "partner not found", err)
	}

	if err := h.writer.RecordPartnership(ctx, initiatorID, partnerID); err != nil {
		return shared.WrapError("command", "RecordPartnership", shared.ErrExternalService, "failed to record partnership", err)
	}

	// Партнёрство меняет пулы кандидатов обоих участников; устаревшие
	// разделяемые выдачи сбрасываются целиком.
	if h.invalidator != nil {
		if err := h.invalidator.Invalidate(ctx); err != nil {
			h.log.Warn("match cache invalidation failed", logger.Err(err))
		}
	}

	h.log.Info("partnership recorded",
		logger.ParticipantID(cmd.InitiatorID),
		logger.String("partner_id", cmd.PartnerID),
	)
	return nil
}

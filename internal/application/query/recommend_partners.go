package query

import (
	"context"
	"time"

	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/participant"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/recommendation"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
	"github.com/peerstudy-hub/peerstudy-matching/pkg/logger"
	"github.com/peerstudy-hub/peerstudy-matching/pkg/metrics"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECOMMEND PARTNERS QUERY
// Рекомендации напарников одной из трёх стратегий: коллаборативной,
// контентной или гибридной. Стратегия выбирается параметром запроса.
// ══════════════════════════════════════════════════════════════════════════════

const (
	// defaultRecommendLimit - размер выдачи по умолчанию.
	defaultRecommendLimit = 10

	// maxRecommendLimit - верхняя граница размера выдачи.
	maxRecommendLimit = 50
)

// RecommendPartnersQuery содержит параметры запроса рекомендаций.
type RecommendPartnersQuery struct {
	// RequesterID - ID запрашивающего участника.
	RequesterID string

	// Method - стратегия: collaborative/content/hybrid (пустая = hybrid).
	Method string

	// Limit - максимум рекомендаций (0 = по умолчанию).
	Limit int
}

// Validate проверяет корректность параметров и нормализует значения.
func (q *RecommendPartnersQuery) Validate() error {
	if q.RequesterID == "" {
		return shared.ErrNilRequester
	}
	if q.Limit < 0 {
		return shared.ErrInvalidLimit
	}
	if q.Limit == 0 {
		q.Limit = defaultRecommendLimit
	}
	if q.Limit > maxRecommendLimit {
		q.Limit = maxRecommendLimit
	}
	if q.Method == "" {
		q.Method = string(recommendation.MethodHybrid)
	}
	if !recommendation.Method(q.Method).IsValid() {
		return shared.ErrUnknownStrategy
	}
	return nil
}

// RecommendationDTO - один рекомендованный кандидат.
type RecommendationDTO struct {
	// CandidateID - ID кандидата.
	CandidateID string `json:"candidate_id"`

	// DisplayName - отображаемое имя (пустое, если профиль не найден).
	DisplayName string `json:"display_name,omitempty"`

	// Score - накопленный балл рекомендации.
	Score float64 `json:"score"`

	// Method - стратегия, давшая рекомендацию.
	Method string `json:"method"`

	// Reason - человекочитаемое объяснение.
	Reason string `json:"reason"`
}

// RecommendPartnersResult содержит результат запроса рекомендаций.
type RecommendPartnersResult struct {
	// RequesterID - ID запрашивающего.
	RequesterID string `json:"requester_id"`

	// Method - использованная стратегия.
	Method string `json:"method"`

	// Recommendations - рекомендации, лучшие первыми.
	Recommendations []RecommendationDTO `json:"recommendations"`

	// GeneratedAt - время генерации.
	GeneratedAt time.Time `json:"generated_at"`
}

// RecommendPartnersHandler обрабатывает запросы рекомендаций.
type RecommendPartnersHandler struct {
	participantRepo participant.Repository
	strategies      map[recommendation.Method]recommendation.Strategy
	metrics         *metrics.Metrics
	log             *logger.Logger
}

// NewRecommendPartnersHandler создаёт обработчик со стратегиями по умолчанию.
func NewRecommendPartnersHandler(
	participantRepo participant.Repository,
	m *metrics.Metrics,
	log *logger.Logger,
) *RecommendPartnersHandler {
	if log == nil {
		log = logger.Default()
	}
	collaborative := recommendation.NewCollaborativeStrategy()
	content := recommendation.NewContentStrategy()
	return &RecommendPartnersHandler{
		participantRepo: participantRepo,
		strategies: map[recommendation.Method]recommendation.Strategy{
			recommendation.MethodCollaborative: collaborative,
			recommendation.MethodContent:       content,
			recommendation.MethodHybrid:        recommendation.NewHybridStrategy(collaborative, content),
		},
		metrics: m,
		log:     log,
	}
}

// Handle выполняет запрос рекомендаций.
func (h *RecommendPartnersHandler) Handle(ctx context.Context, query RecommendPartnersQuery) (*RecommendPartnersResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "RecommendPartners", shared.ErrValidation, "invalid query", err)
	}

	requester, err := h.participantRepo.GetByID(ctx, shared.ParticipantID(query.RequesterID))
	if err != nil {
		return nil, shared.WrapError("query", "RecommendPartners", shared.ErrNotFound, "requester not found", err)
	}

	pool, err := h.participantRepo.ListCandidates(ctx, participant.PoolFilter{
		OnlyActive: true,
		ExcludeIDs: []shared.ParticipantID{requester.ID},
	})
	if err != nil {
		return nil, shared.WrapError("query", "RecommendPartners", shared.ErrExternalService, "candidate pool unavailable", err)
	}

	strategy := h.strategies[recommendation.Method(query.Method)]
	recs, err := strategy.Recommend(requester, pool, query.Limit)
	if err != nil {
		return nil, err
	}

	if h.metrics != nil {
		h.metrics.RecommendationsServed.WithLabelValues(query.Method).Add(float64(len(recs)))
	}
	h.log.Debug("recommendations computed",
		logger.ParticipantID(query.RequesterID),
		logger.StrategyName(query.Method),
		logger.ResultCount(len(recs)),
	)

	return &RecommendPartnersResult{
		RequesterID:     requester.ID.String(),
		Method:          query.Method,
		Recommendations: h.enrich(ctx, recs),
		GeneratedAt:     time.Now().UTC(),
	}, nil
}

// enrich дополняет рекомендации именами кандидатов. Отсутствующие профили
// не ошибка - имя остаётся пустым.
func (h *RecommendPartnersHandler) enrich(ctx context.Context, recs []recommendation.Recommendation) []RecommendationDTO {
	ids := make([]shared.ParticipantID, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.CandidateID)
	}

	names := make(map[shared.ParticipantID]string, len(ids))
	if candidates, err := h.participantRepo.ListByIDs(ctx, ids); err == nil {
		for _, c := range candidates {
			names[c.ID] = c.DisplayName
		}
	}

	dtos := make([]RecommendationDTO, 0, len(recs))
	for _, r := range recs {
		dtos = append(dtos, RecommendationDTO{
			CandidateID: r.CandidateID.String(),
			DisplayName: names[r.CandidateID],
			Score:       r.Score,
			Method:      string(r.Method),
			Reason:      r.Reason,
		})
	}
	return dtos
}

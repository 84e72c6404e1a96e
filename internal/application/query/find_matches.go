// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/matching"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/participant"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
	"github.com/peerstudy-hub/peerstudy-matching/internal/infrastructure/persistence/memory"
	"github.com/peerstudy-hub/peerstudy-matching/pkg/logger"
	"github.com/peerstudy-hub/peerstudy-matching/pkg/metrics"
)

// ══════════════════════════════════════════════════════════════════════════════
// FIND MATCHES QUERY
// Главный запрос движка: подобрать напарников по множеству факторов.
// Пайплайн: кеш → пул кандидатов → скоринг → ранжирование → порог →
// диверсификация. Полный диверсифицированный список кешируется, выдача
// обрезается до limit.
// ══════════════════════════════════════════════════════════════════════════════

const (
	// defaultMatchLimit - размер выдачи по умолчанию.
	defaultMatchLimit = 10

	// maxMatchLimit - верхняя граница размера выдачи.
	maxMatchLimit = 50
)

// FindMatchesQuery содержит параметры запроса подбора.
type FindMatchesQuery struct {
	// RequesterID - ID запрашивающего участника.
	RequesterID string

	// Criteria - критерии подбора (пустые = по умолчанию).
	Criteria matching.Criteria

	// Limit - максимум результатов (0 = по умолчанию).
	Limit int
}

// Validate проверяет корректность параметров и нормализует limit.
func (q *FindMatchesQuery) Validate() error {
	if q.RequesterID == "" {
		return shared.ErrNilRequester
	}
	if q.Limit < 0 {
		return shared.ErrInvalidLimit
	}
	if q.Limit == 0 {
		q.Limit = defaultMatchLimit
	}
	if q.Limit > maxMatchLimit {
		q.Limit = maxMatchLimit
	}
	return q.Criteria.Validate()
}

// MatchDTO - один кандидат в выдаче.
type MatchDTO struct {
	// CandidateID - ID кандидата.
	CandidateID string `json:"candidate_id"`

	// DisplayName - отображаемое имя.
	DisplayName string `json:"display_name"`

	// Institution - учебное заведение.
	Institution string `json:"institution,omitempty"`

	// Level - академический уровень.
	Level string `json:"level"`

	// Overall - общий балл совместимости [0,1].
	Overall float64 `json:"overall"`

	// Breakdown - разбивка балла по факторам.
	Breakdown map[string]float64 `json:"breakdown"`

	// SharedSubjects - общие предметы с запрашивающим.
	SharedSubjects []string `json:"shared_subjects,omitempty"`

	// Quality - качественная оценка: excellent/good/fair/poor/none.
	Quality string `json:"quality"`

	// Reason - короткое объяснение подбора.
	Reason string `json:"reason"`

	// RankPosition - позиция в выдаче (с 1).
	RankPosition int `json:"rank_position"`
}

// FindMatchesResult содержит результат запроса подбора.
type FindMatchesResult struct {
	// RequesterID - ID запрашивающего.
	RequesterID string `json:"requester_id"`

	// Matches - подобранные кандидаты.
	Matches []MatchDTO `json:"matches"`

	// TotalCandidates - размер пула до скоринга (0 при попадании в кеш).
	TotalCandidates int `json:"total_candidates"`

	// FromCache - выдача взята из кеша.
	FromCache bool `json:"from_cache"`

	// GeneratedAt - время генерации.
	GeneratedAt time.Time `json:"generated_at"`
}

// MatchCache - внутрипроцессный кеш результатов подбора.
type MatchCache = memory.EvictionCache[string, matching.MatchResultList]

// SharedMatchCache - опциональный межпроцессный кеш второго уровня.
type SharedMatchCache interface {
	Fetch(ctx context.Context, requestHash string) (matching.MatchResultList, bool, error)
	Store(ctx context.Context, requestHash string, results matching.MatchResultList) error
}

// FindMatchesHandler обрабатывает запросы подбора напарников.
type FindMatchesHandler struct {
	participantRepo participant.Repository
	scorer          *matching.Scorer
	cache           *MatchCache
	sharedCache     SharedMatchCache
	metrics         *metrics.Metrics
	log             *logger.Logger
}

// NewFindMatchesHandler создаёт новый обработчик.
func NewFindMatchesHandler(
	participantRepo participant.Repository,
	scorer *matching.Scorer,
	cache *MatchCache,
	sharedCache SharedMatchCache,
	m *metrics.Metrics,
	log *logger.Logger,
) *FindMatchesHandler {
	if log == nil {
		log = logger.Default()
	}
	return &FindMatchesHandler{
		participantRepo: participantRepo,
		scorer:          scorer,
		cache:           cache,
		sharedCache:     sharedCache,
		metrics:         m,
		log:             log,
	}
}

// Handle выполняет запрос подбора.
func (h *FindMatchesHandler) Handle(ctx context.Context, query FindMatchesQuery) (*FindMatchesResult, error) {
	started := time.Now()

	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "FindMatches", shared.ErrValidation, "invalid query", err)
	}

	requester, err := h.participantRepo.GetByID(ctx, shared.ParticipantID(query.RequesterID))
	if err != nil {
		return nil, shared.WrapError("query", "FindMatches", shared.ErrNotFound, "requester not found", err)
	}

	key := requestHash(requester.ID, query.Criteria)

	// Первый уровень: внутрипроцессный кеш.
	if cached, ok := h.cache.Get(key); ok {
		h.countCacheHit(metrics.LayerMemory)
		h.log.Debug("match cache hit",
			logger.ParticipantID(query.RequesterID),
			logger.CacheHit(true),
		)
		return h.buildResult(requester, cached, query.Limit, 0, true), nil
	}
	h.countCacheMiss(metrics.LayerMemory)

	// Второй уровень: разделяемый кеш (best effort).
	if h.sharedCache != nil {
		if cached, ok, fetchErr := h.sharedCache.Fetch(ctx, key); fetchErr == nil && ok {
			h.countCacheHit(metrics.LayerRedis)
			h.cache.Set(key, cached)
			return h.buildResult(requester, cached, query.Limit, 0, true), nil
		}
		h.countCacheMiss(metrics.LayerRedis)
	}

	pool, err := h.participantRepo.ListCandidates(ctx, h.poolFilter(requester, query.Criteria))
	if err != nil {
		return nil, shared.WrapError("query", "FindMatches", shared.ErrExternalService, "candidate pool unavailable", err)
	}

	results := h.scorePool(requester, pool, query.Criteria)
	results.Rank()
	results = results.FilterByMinScore(query.Criteria.MinScore)
	diversified := results.Diversify(query.Limit)

	// Кешируется полный диверсифицированный список; обрезка - при выдаче.
	h.cache.Set(key, diversified)
	if h.sharedCache != nil {
		if storeErr := h.sharedCache.Store(ctx, key, diversified); storeErr != nil {
			h.log.Warn("shared match cache store failed", logger.Err(storeErr))
		}
	}

	if h.metrics != nil {
		h.metrics.ObserveMatch(time.Since(started), len(pool), len(diversified))
	}
	h.log.Info("matches computed",
		logger.ParticipantID(query.RequesterID),
		logger.CandidateCount(len(pool)),
		logger.ResultCount(len(diversified)),
		logger.Latency(time.Since(started)),
	)

	return h.buildResult(requester, diversified, query.Limit, len(pool), false), nil
}

// poolFilter переводит критерии в жёсткие фильтры слоя данных.
func (h *FindMatchesHandler) poolFilter(requester *participant.Participant, c matching.Criteria) participant.PoolFilter {
	exclude := make([]shared.ParticipantID, 0, len(requester.Partners)+1)
	exclude = append(exclude, requester.ID)
	exclude = append(exclude, requester.Partners...)

	filter := participant.PoolFilter{
		Subjects:             c.DesiredSubjects,
		OnlyActive:           true,
		OnlyCompleteProfiles: true,
		ExcludeIDs:           exclude,
	}
	if c.RequireExactLevel && c.DesiredLevel != "" {
		filter.MinLevel = c.DesiredLevel
		filter.MaxLevel = c.DesiredLevel
	}
	return filter
}

// scorePool прогоняет пул через скорер и применяет жёсткие фильтры критериев,
// которые слой данных применить не может.
func (h *FindMatchesHandler) scorePool(
	requester *participant.Participant,
	pool []*participant.Participant,
	c matching.Criteria,
) matching.MatchResultList {
	now := time.Now().UTC()
	results := make(matching.MatchResultList, 0, len(pool))
	for _, candidate := range pool {
		if candidate == nil || candidate.ID == requester.ID {
			continue
		}
		if c.RequireExactStyle && c.DesiredStyle != "" && candidate.Style != c.DesiredStyle {
			continue
		}

		score := h.scorer.Score(requester, candidate)
		result := &matching.MatchResult{
			ID:             uuid.NewString(),
			Candidate:      candidate,
			Score:          score,
			SharedSubjects: requester.SharedSubjects(candidate),
			Quality:        score.Quality(),
			GeneratedAt:    now,
		}
		result.Reason = result.BuildReason()
		results = append(results, result)
	}
	return results
}

// buildResult формирует DTO-выдачу, обрезанную до limit.
func (h *FindMatchesHandler) buildResult(
	requester *participant.Participant,
	results matching.MatchResultList,
	limit int,
	totalCandidates int,
	fromCache bool,
) *FindMatchesResult {
	top := results.TopN(limit)
	dtos := make([]MatchDTO, 0, len(top))
	for i, r := range top {
		subjects := make([]string, 0, len(r.SharedSubjects))
		for _, s := range r.SharedSubjects {
			subjects = append(subjects, s.String())
		}
		dtos = append(dtos, MatchDTO{
			CandidateID:    r.Candidate.ID.String(),
			DisplayName:    r.Candidate.DisplayName,
			Institution:    r.Candidate.Institution,
			Level:          r.Candidate.Level.String(),
			Overall:        r.Score.Overall,
			Breakdown:      r.Score.Breakdown(),
			SharedSubjects: subjects,
			Quality:        string(r.Quality),
			Reason:         r.Reason,
			RankPosition:   i + 1,
		})
	}
	return &FindMatchesResult{
		RequesterID:     requester.ID.String(),
		Matches:         dtos,
		TotalCandidates: totalCandidates,
		FromCache:       fromCache,
		GeneratedAt:     time.Now().UTC(),
	}
}

func (h *FindMatchesHandler) countCacheHit(layer string) {
	if h.metrics != nil {
		h.metrics.CacheHits.WithLabelValues(layer).Inc()
	}
}

func (h *FindMatchesHandler) countCacheMiss(layer string) {
	if h.metrics != nil {
		h.metrics.CacheMisses.WithLabelValues(layer).Inc()
	}
}

// requestHash вычисляет детерминированный ключ кеша запроса: BLAKE2b-256 от
// ID запрашивающего и канонической строки критериев.
func requestHash(requesterID shared.ParticipantID, c matching.Criteria) string {
	sum := blake2b.Sum256([]byte(requesterID.String() + "|" + c.CanonicalString()))
	return hex.EncodeToString(sum[:])
}

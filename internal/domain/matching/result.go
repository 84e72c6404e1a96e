package matching

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/participant"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MATCH RESULT
// Результат создаётся один раз и не мутируется; новый вызов с другой оценкой
// создаёт новый результат и перезаписывает запись в кеше.
// ══════════════════════════════════════════════════════════════════════════════

// MatchResult представляет кандидата с оценкой совместимости и метаданными.
type MatchResult struct {
	// ID - уникальный идентификатор результата (UUID, присваивается пайплайном).
	ID string

	// Candidate - кандидат.
	Candidate *participant.Participant

	// Score - оценка совместимости.
	Score CompatibilityScore

	// SharedSubjects - общие предметы с запрашивающим.
	SharedSubjects []shared.SubjectID

	// Quality - качественная оценка совместимости.
	Quality MatchQuality

	// Reason - короткое объяснение, почему кандидат подходит.
	Reason string

	// RankPosition - позиция в итоговом списке (с 1).
	RankPosition int

	// GeneratedAt - когда результат вычислен.
	GeneratedAt time.Time
}

// BuildReason генерирует объяснение по самым сильным факторам.
func (r *MatchResult) BuildReason() string {
	switch {
	case r.Score.SubjectMatch >= 0.99 && r.Score.LevelCompatibility >= 0.99:
		return "те же предметы и тот же уровень"
	case len(r.SharedSubjects) > 0 && r.Score.TimeOverlap >= 0.5:
		return fmt.Sprintf("общих предметов: %d, расписания совпадают", len(r.SharedSubjects))
	case len(r.SharedSubjects) > 0:
		return fmt.Sprintf("общих предметов: %d", len(r.SharedSubjects))
	case r.Score.TimeOverlap >= 0.5:
		return "удобное пересечение расписаний"
	case r.Score.LevelCompatibility >= 0.8:
		return "близкий академический уровень"
	default:
		return "частичная совместимость"
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// RESULT LIST: RANKING
// ══════════════════════════════════════════════════════════════════════════════

// MatchResultList - список результатов с операциями ранжирования.
type MatchResultList []*MatchResult

// rankTieWindow - разница общих баллов, в пределах которой включаются
// вторичные ключи сортировки.
const rankTieWindow = 0.1

// Rank сортирует список: первичный ключ - Overall по убыванию; если оценки
// различаются не более чем на 0.1, сравниваются SubjectMatch, затем
// TimeOverlap. Сортировка стабильная.
func (m MatchResultList) Rank() {
	sort.SliceStable(m, func(i, j int) bool {
		si, sj := m[i].Score, m[j].Score
		if math.Abs(si.Overall-sj.Overall) <= rankTieWindow {
			if math.Abs(si.SubjectMatch-sj.SubjectMatch) > 1e-9 {
				return si.SubjectMatch > sj.SubjectMatch
			}
			if math.Abs(si.TimeOverlap-sj.TimeOverlap) > 1e-9 {
				return si.TimeOverlap > sj.TimeOverlap
			}
		}
		return si.Overall > sj.Overall
	})
	for i := range m {
		m[i].RankPosition = i + 1
	}
}

// TopN возвращает первые n результатов.
func (m MatchResultList) TopN(n int) MatchResultList {
	if n >= len(m) {
		return m
	}
	return m[:n]
}

// FilterByMinScore отбрасывает результаты ниже порога.
func (m MatchResultList) FilterByMinScore(minScore float64) MatchResultList {
	if minScore <= 0 {
		return m
	}
	filtered := make(MatchResultList, 0, len(m))
	for _, r := range m {
		if r.Score.Overall >= minScore {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// ══════════════════════════════════════════════════════════════════════════════
// RESULT LIST: DIVERSIFICATION
// Мягкие лимиты против перепредставленности: не более 3 кандидатов из одного
// заведения и не более 2 одного уровня среди допущенных. После первого
// прохода недобор дополняется лучшими из пропущенных.
// ══════════════════════════════════════════════════════════════════════════════

const (
	maxPerInstitution = 3
	maxPerLevel       = 2
)

// Diversify проходит по всему ранжированному списку и допускает кандидата,
// только если оба мягких лимита не нарушены; если после прохода допущено
// меньше limit, недобор дополняется лучшими из пропущенных. Возвращает
// новый список с обновлёнными позициями (он может быть длиннее limit -
// пайплайн кеширует его целиком и обрезает при выдаче).
func (m MatchResultList) Diversify(limit int) MatchResultList {
	if limit <= 0 || len(m) == 0 {
		return MatchResultList{}
	}

	admitted := make(MatchResultList, 0, len(m))
	skipped := make(MatchResultList, 0)
	institutionCount := make(map[string]int)
	levelCount := make(map[shared.AcademicLevel]int)

	for _, r := range m {
		inst := r.Candidate.Institution
		level := r.Candidate.Level
		if institutionCount[inst] >= maxPerInstitution || levelCount[level] >= maxPerLevel {
			skipped = append(skipped, r)
			continue
		}
		admitted = append(admitted, r)
		institutionCount[inst]++
		levelCount[level]++
	}

	// Backfill: мягкие лимиты уступают полноте результата.
	for _, r := range skipped {
		if len(admitted) >= limit {
			break
		}
		admitted = append(admitted, r)
	}

	for i := range admitted {
		admitted[i].RankPosition = i + 1
	}
	return admitted
}

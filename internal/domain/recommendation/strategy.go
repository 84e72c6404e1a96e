// Package recommendation содержит три взаимозаменяемые стратегии рекомендации
// напарников: коллаборативную, контентную и гибридную. Все стратегии
// потребляют ту же модель участника, что и движок подбора.
package recommendation

import (
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/participant"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// STRATEGY CONTRACT
// ══════════════════════════════════════════════════════════════════════════════

// Method определяет, какая стратегия дала рекомендацию.
type Method string

const (
	// MethodCollaborative - коллаборативная фильтрация по похожим участникам.
	MethodCollaborative Method = "collaborative"

	// MethodContent - контентная фильтрация по признакам профиля.
	MethodContent Method = "content"

	// MethodHybrid - взвешенная комбинация обеих стратегий.
	MethodHybrid Method = "hybrid"
)

// IsValid проверяет корректность метода.
func (m Method) IsValid() bool {
	switch m {
	case MethodCollaborative, MethodContent, MethodHybrid:
		return true
	default:
		return false
	}
}

// Recommendation - один рекомендованный кандидат.
type Recommendation struct {
	// CandidateID - ID рекомендованного участника.
	CandidateID shared.ParticipantID

	// Score - накопленный балл рекомендации (чем выше, тем лучше).
	Score float64

	// Method - стратегия, давшая рекомендацию.
	Method Method

	// Reason - человекочитаемое объяснение.
	Reason string
}

// Strategy - контракт стратегии рекомендации.
type Strategy interface {
	// Recommend возвращает до limit кандидатов из пула для запрашивающего,
	// отсортированных по баллу по убыванию. Пустой пул - пустой результат.
	Recommend(requester *participant.Participant, pool []*participant.Participant, limit int) ([]Recommendation, error)

	// Method возвращает метод стратегии.
	Method() Method
}

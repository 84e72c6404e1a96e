// Package participant содержит доменную модель участника учебной платформы.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package participant

import (
	"errors"
	"time"

	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBJECT PROFICIENCY
// ══════════════════════════════════════════════════════════════════════════════

// SubjectProficiency связывает предмет с уровнем владения (1-4).
type SubjectProficiency struct {
	// Subject - идентификатор предмета.
	Subject shared.SubjectID

	// Level - уровень владения предметом.
	Level shared.Proficiency
}

// IsValid проверяет корректность пары предмет-уровень.
func (sp SubjectProficiency) IsValid() bool {
	return sp.Subject.IsValid() && sp.Level.IsValid()
}

// ══════════════════════════════════════════════════════════════════════════════
// PARTICIPANT ENTITY
// Участник неизменяем в течение одного вызова движка подбора.
// ══════════════════════════════════════════════════════════════════════════════

// Participant представляет участника, доступного для подбора напарников.
type Participant struct {
	// ID - уникальный идентификатор (UUID).
	ID shared.ParticipantID

	// DisplayName - имя для отображения.
	DisplayName string

	// Level - академический уровень.
	Level shared.AcademicLevel

	// Style - стиль обучения (опционально, StyleUnset если не указан).
	Style shared.LearningStyle

	// Institution - учебное заведение.
	Institution string

	// Major - специальность (опционально).
	Major string

	// Year - год обучения (0 если не указан).
	Year int

	// Timezone - таймзона участника (IANA, например "Asia/Almaty").
	Timezone string

	// Region - регион/город для оценки близости.
	Region string

	// Subjects - предметы с уровнями владения.
	Subjects []SubjectProficiency

	// Availability - еженедельные окна доступности.
	Availability []WeeklyWindow

	// CompletedSessions - количество завершённых учебных сессий.
	CompletedSessions int

	// Partners - ID уже подобранных напарников (исключаются из подбора).
	Partners []shared.ParticipantID

	// Active - активен ли участник на платформе.
	Active bool

	// LastActiveAt - время последней активности.
	LastActiveAt time.Time

	// CreatedAt - когда участник зарегистрирован.
	CreatedAt time.Time
}

// Validate проверяет базовые инварианты участника.
func (p *Participant) Validate() error {
	if p == nil {
		return shared.ErrNilRequester
	}
	if !p.ID.IsValid() {
		return shared.ErrInvalidParticipantID
	}
	if !p.Level.IsValid() {
		return shared.ErrInvalidAcademicLevel
	}
	if !p.Style.IsValid() {
		return errors.New("unknown learning style")
	}
	for _, sp := range p.Subjects {
		if !sp.IsValid() {
			return shared.ErrInvalidProficiency
		}
	}
	for _, w := range p.Availability {
		if err := w.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// IsProfileComplete проверяет, заполнен ли профиль достаточно для подбора.
// Минимум: имя, валидный уровень и хотя бы один предмет.
func (p *Participant) IsProfileComplete() bool {
	return p.DisplayName != "" && p.Level.IsValid() && len(p.Subjects) > 0
}

// SubjectSet возвращает предметы участника в виде множества предмет→уровень.
func (p *Participant) SubjectSet() map[shared.SubjectID]shared.Proficiency {
	set := make(map[shared.SubjectID]shared.Proficiency, len(p.Subjects))
	for _, sp := range p.Subjects {
		set[sp.Subject] = sp.Level
	}
	return set
}

// HasSubject проверяет, изучает ли участник предмет.
func (p *Participant) HasSubject(subject shared.SubjectID) bool {
	for _, sp := range p.Subjects {
		if sp.Subject == subject {
			return true
		}
	}
	return false
}

// SharedSubjects возвращает предметы, общие с другим участником.
func (p *Participant) SharedSubjects(other *Participant) []shared.SubjectID {
	if other == nil {
		return nil
	}
	otherSet := other.SubjectSet()
	common := make([]shared.SubjectID, 0)
	for _, sp := range p.Subjects {
		if _, ok := otherSet[sp.Subject]; ok {
			common = append(common, sp.Subject)
		}
	}
	return common
}

// HasPartner проверяет, является ли участник уже напарником.
func (p *Participant) HasPartner(id shared.ParticipantID) bool {
	for _, partner := range p.Partners {
		if partner == id {
			return true
		}
	}
	return false
}

// PartnerSet возвращает напарников в виде множества.
func (p *Participant) PartnerSet() map[shared.ParticipantID]struct{} {
	set := make(map[shared.ParticipantID]struct{}, len(p.Partners))
	for _, id := range p.Partners {
		set[id] = struct{}{}
	}
	return set
}

// LocationTag возвращает тег местоположения для сравнения (timezone/region).
func (p *Participant) LocationTag() string {
	return p.Timezone + "/" + p.Region
}

// Package matching содержит движок оценки совместимости участников:
// критерии подбора, многофакторный скоринг, ранжирование и диверсификацию.
// Философия та же, что и у всей платформы: "от конкуренции к сотрудничеству" -
// подбираем не самых "топовых" кандидатов, а самых совместимых.
package matching

import (
	"sort"
	"strconv"
	"strings"

	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/participant"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SESSION PREFERENCES
// ══════════════════════════════════════════════════════════════════════════════

// SessionType определяет предпочитаемый формат сессий.
type SessionType string

const (
	SessionAny       SessionType = ""
	SessionOneOnOne  SessionType = "one_on_one"
	SessionGroup     SessionType = "group"
	SessionWorkshop  SessionType = "workshop"
)

// Intensity определяет предпочитаемую интенсивность занятий.
type Intensity string

const (
	IntensityAny     Intensity = ""
	IntensityRelaxed Intensity = "relaxed"
	IntensityRegular Intensity = "regular"
	IntensityIntense Intensity = "intense"
)

// Communication определяет предпочитаемый канал общения.
type Communication string

const (
	CommunicationAny   Communication = ""
	CommunicationText  Communication = "text"
	CommunicationVoice Communication = "voice"
	CommunicationVideo Communication = "video"
)

// ══════════════════════════════════════════════════════════════════════════════
// MATCHING CRITERIA
// Критерии передаются на каждый запрос и никогда не мутируются движком.
// ══════════════════════════════════════════════════════════════════════════════

// Criteria - критерии подбора напарника.
type Criteria struct {
	// DesiredSubjects - желаемые предметы для совместного изучения.
	DesiredSubjects []shared.SubjectID

	// DesiredLevel - желаемый академический уровень кандидата.
	DesiredLevel shared.AcademicLevel

	// RequireExactLevel - отбрасывать кандидатов с другим уровнем.
	RequireExactLevel bool

	// DesiredStyle - желаемый стиль обучения кандидата.
	DesiredStyle shared.LearningStyle

	// RequireExactStyle - отбрасывать кандидатов с другим стилем.
	RequireExactStyle bool

	// AvailabilityWindows - желаемые окна доступности.
	AvailabilityWindows []participant.WeeklyWindow

	// LocationPreference - предпочитаемый регион (пустой = без предпочтения).
	LocationPreference string

	// SessionType - предпочитаемый формат сессий.
	SessionType SessionType

	// GroupSize - предпочитаемый размер группы (0 = без предпочтения).
	GroupSize int

	// Communication - предпочитаемый канал общения.
	Communication Communication

	// Intensity - предпочитаемая интенсивность.
	Intensity Intensity

	// MaxDistanceKM - максимальная дистанция в км (0 = без ограничения).
	MaxDistanceKM float64

	// MinScore - минимальный приемлемый общий балл (0 = без порога).
	MinScore float64
}

// Validate проверяет корректность критериев.
func (c Criteria) Validate() error {
	for _, s := range c.DesiredSubjects {
		if !s.IsValid() {
			return shared.ErrInvalidCriteria
		}
	}
	if c.DesiredLevel != "" && !c.DesiredLevel.IsValid() {
		return shared.ErrInvalidCriteria
	}
	if !c.DesiredStyle.IsValid() {
		return shared.ErrInvalidCriteria
	}
	if c.MinScore < 0 || c.MinScore > 1 {
		return shared.ErrInvalidCriteria
	}
	if c.MaxDistanceKM < 0 || c.GroupSize < 0 {
		return shared.ErrInvalidCriteria
	}
	for _, w := range c.AvailabilityWindows {
		if err := w.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// CanonicalString возвращает детерминированное строковое представление
// критериев для вычисления ключа кеша. Предметы и окна сортируются, чтобы
// порядок полей во входных данных не влиял на ключ.
func (c Criteria) CanonicalString() string {
	subjects := make([]string, 0, len(c.DesiredSubjects))
	for _, s := range c.DesiredSubjects {
		subjects = append(subjects, s.String())
	}
	sort.Strings(subjects)

	windows := make([]string, 0, len(c.AvailabilityWindows))
	for _, w := range c.AvailabilityWindows {
		windows = append(windows, strconv.Itoa(int(w.Day))+":"+
			strconv.Itoa(int(w.Start))+"-"+strconv.Itoa(int(w.End))+"@"+w.Timezone)
	}
	sort.Strings(windows)

	var b strings.Builder
	b.WriteString("subjects=")
	b.WriteString(strings.Join(subjects, ","))
	b.WriteString(";level=")
	b.WriteString(c.DesiredLevel.String())
	b.WriteString(";exact_level=")
	b.WriteString(strconv.FormatBool(c.RequireExactLevel))
	b.WriteString(";style=")
	b.WriteString(c.DesiredStyle.String())
	b.WriteString(";exact_style=")
	b.WriteString(strconv.FormatBool(c.RequireExactStyle))
	b.WriteString(";windows=")
	b.WriteString(strings.Join(windows, ","))
	b.WriteString(";location=")
	b.WriteString(c.LocationPreference)
	b.WriteString(";session=")
	b.WriteString(string(c.SessionType))
	b.WriteString(";group=")
	b.WriteString(strconv.Itoa(c.GroupSize))
	b.WriteString(";comm=")
	b.WriteString(string(c.Communication))
	b.WriteString(";intensity=")
	b.WriteString(string(c.Intensity))
	b.WriteString(";max_distance=")
	b.WriteString(strconv.FormatFloat(c.MaxDistanceKM, 'f', 2, 64))
	b.WriteString(";min_score=")
	b.WriteString(strconv.FormatFloat(c.MinScore, 'f', 4, 64))
	return b.String()
}

// DefaultCriteria возвращает критерии по умолчанию: без жёстких фильтров.
func DefaultCriteria() Criteria {
	return Criteria{}
}

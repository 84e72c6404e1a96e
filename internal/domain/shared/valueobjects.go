// Package shared contains common domain types, errors, and value objects
// that are used across all domain packages.
package shared

import (
	"fmt"
	"regexp"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// ParticipantID represents a unique participant identifier (UUID format).
type ParticipantID string

// UUID validation regex (simple version).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// IsValid checks if the participant ID is a valid UUID.
func (p ParticipantID) IsValid() bool {
	return uuidRegex.MatchString(string(p))
}

// String returns the string representation.
func (p ParticipantID) String() string {
	return string(p)
}

// IsEmpty checks if the ID is empty.
func (p ParticipantID) IsEmpty() bool {
	return p == ""
}

// NewParticipantID creates a new ParticipantID with validation.
func NewParticipantID(id string) (ParticipantID, error) {
	pid := ParticipantID(strings.ToLower(strings.TrimSpace(id)))
	if !pid.IsValid() {
		return "", NewDomainError("shared", "NewParticipantID", ErrInvalidID, "invalid participant ID format")
	}
	return pid, nil
}

// SubjectID represents a subject identifier (slug, e.g. "math", "cs-algorithms").
type SubjectID string

// Regular expression for valid subject slug format.
var subjectIDRegex = regexp.MustCompile(`^[a-z][a-z0-9-]{0,63}$`)

// IsValid checks if the subject ID has a valid slug format.
func (s SubjectID) IsValid() bool {
	return subjectIDRegex.MatchString(string(s))
}

// String returns the string representation.
func (s SubjectID) String() string {
	return string(s)
}

// Normalize returns a normalized (lowercase, trimmed) version of the subject ID.
func (s SubjectID) Normalize() SubjectID {
	return SubjectID(strings.ToLower(strings.TrimSpace(string(s))))
}

// NewSubjectID creates a new SubjectID with validation.
func NewSubjectID(slug string) (SubjectID, error) {
	id := SubjectID(slug).Normalize()
	if !id.IsValid() {
		return "", NewDomainError("shared", "NewSubjectID", ErrInvalidID, "invalid subject ID format")
	}
	return id, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Academic Level Value Object
// ═══════════════════════════════════════════════════════════════════════════

// AcademicLevel represents a participant's academic level.
// Levels form a strict order: Beginner < Intermediate < Advanced < Expert.
type AcademicLevel string

const (
	LevelBeginner     AcademicLevel = "beginner"
	LevelIntermediate AcademicLevel = "intermediate"
	LevelAdvanced     AcademicLevel = "advanced"
	LevelExpert       AcademicLevel = "expert"
)

// IsValid checks if the academic level is one of the known values.
func (l AcademicLevel) IsValid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced, LevelExpert:
		return true
	default:
		return false
	}
}

// Ordinal maps the level to 0..3 (Beginner=0 .. Expert=3).
// Unknown levels map to 0.
func (l AcademicLevel) Ordinal() int {
	switch l {
	case LevelBeginner:
		return 0
	case LevelIntermediate:
		return 1
	case LevelAdvanced:
		return 2
	case LevelExpert:
		return 3
	default:
		return 0
	}
}

// String returns the string representation.
func (l AcademicLevel) String() string {
	return string(l)
}

// ParseAcademicLevel parses a string into an AcademicLevel.
func ParseAcademicLevel(s string) (AcademicLevel, error) {
	level := AcademicLevel(strings.ToLower(strings.TrimSpace(s)))
	if !level.IsValid() {
		return "", ErrInvalidAcademicLevel
	}
	return level, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Learning Style Value Object
// ═══════════════════════════════════════════════════════════════════════════

// LearningStyle represents a participant's preferred way of learning.
// The zero value (StyleUnset) means the participant has not specified one.
type LearningStyle string

const (
	StyleUnset       LearningStyle = ""
	StyleVisual      LearningStyle = "visual"
	StyleAuditory    LearningStyle = "auditory"
	StyleReading     LearningStyle = "reading"
	StyleKinesthetic LearningStyle = "kinesthetic"
)

// IsValid checks if the learning style is known (unset counts as valid).
func (s LearningStyle) IsValid() bool {
	switch s {
	case StyleUnset, StyleVisual, StyleAuditory, StyleReading, StyleKinesthetic:
		return true
	default:
		return false
	}
}

// IsSet returns true if the participant specified a learning style.
func (s LearningStyle) IsSet() bool {
	return s != StyleUnset
}

// String returns the string representation.
func (s LearningStyle) String() string {
	return string(s)
}

// ═══════════════════════════════════════════════════════════════════════════
// Proficiency Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Proficiency represents a participant's proficiency in a subject (1-4).
// The scale mirrors academic levels: 1=Beginner .. 4=Expert.
type Proficiency int

const (
	MinProficiency Proficiency = 1
	MaxProficiency Proficiency = 4
)

// IsValid checks if the proficiency is within the 1-4 range.
func (p Proficiency) IsValid() bool {
	return p >= MinProficiency && p <= MaxProficiency
}

// Float64 returns the proficiency as a float64 (for vector math).
func (p Proficiency) Float64() float64 {
	return float64(p)
}

// ProficiencyForLevel maps an academic level to the matching proficiency.
func ProficiencyForLevel(l AcademicLevel) Proficiency {
	return Proficiency(l.Ordinal() + 1)
}

// ═══════════════════════════════════════════════════════════════════════════
// Reputation Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Reputation is an aggregated review score in [0,1].
// It is supplied by the review-aggregation collaborator and treated as opaque.
type Reputation float64

// IsValid checks if the reputation is within [0,1].
func (r Reputation) IsValid() bool {
	return r >= 0 && r <= 1
}

// Float64 returns the underlying float64 value.
func (r Reputation) Float64() float64 {
	return float64(r)
}

// Clamp forces the reputation into [0,1].
func (r Reputation) Clamp() Reputation {
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

// String returns a formatted representation.
func (r Reputation) String() string {
	return fmt.Sprintf("%.2f", float64(r))
}

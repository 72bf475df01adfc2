// Package models defines core data structures for skills, searches, and gap analysis.
package models

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Proficiency is a self-reported skill level.
type Proficiency string

const (
	ProficiencyBeginner     Proficiency = "beginner"
	ProficiencyIntermediate Proficiency = "intermediate"
	ProficiencyAdvanced     Proficiency = "advanced"
	ProficiencyExpert       Proficiency = "expert"
)

// Valid reports whether p is one of the four known levels.
func (p Proficiency) Valid() bool {
	switch p {
	case ProficiencyBeginner, ProficiencyIntermediate, ProficiencyAdvanced, ProficiencyExpert:
		return true
	}
	return false
}

// Metadata is an opaque key-value mapping carried alongside a skill.
// Values must be JSON-serializable.
type Metadata map[string]any

// Clone returns a shallow copy of m (nil stays nil).
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// SkillRecord is a self-reported skill used as input to indexing and comparison.
type SkillRecord struct {
	SkillName         string      `json:"skill_name" validate:"required"`
	ProficiencyLevel  Proficiency `json:"proficiency_level,omitempty" validate:"omitempty,oneof=beginner intermediate advanced expert"`
	YearsOfExperience float64     `json:"years_of_experience" validate:"gte=0"`
	Metadata          Metadata    `json:"metadata,omitempty"`
}

// IndexedSkillText is one entry of the skill index. ID is its position in the
// append-only corpus.
type IndexedSkillText struct {
	ID       int      `json:"id"`
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata,omitempty"`
}

var validate = validator.New()

// Validate checks a single record.
func (r *SkillRecord) Validate() error {
	return validate.Struct(r)
}

// ValidateSkills checks every record and reports the first failure with its position.
func ValidateSkills(skills []SkillRecord) error {
	for i := range skills {
		if err := skills[i].Validate(); err != nil {
			return fmt.Errorf("skills[%d]: %w", i, err)
		}
	}
	return nil
}

// SubmissionEvent is a batch of skills submitted by one user, as delivered by the
// queue and the inbox directory.
type SubmissionEvent struct {
	UserID any           `json:"user_id,omitempty"`
	Skills []SkillRecord `json:"skills" validate:"required,min=1,dive"`
}

// Validate checks the event and all of its skills.
func (e *SubmissionEvent) Validate() error {
	return validate.Struct(e)
}

// Records returns the event's skills with user_id merged into each record's
// metadata (existing user_id keys are kept).
func (e *SubmissionEvent) Records() []SkillRecord {
	out := make([]SkillRecord, len(e.Skills))
	for i, s := range e.Skills {
		s.Metadata = s.Metadata.Clone()
		if e.UserID != nil {
			if s.Metadata == nil {
				s.Metadata = Metadata{}
			}
			if _, ok := s.Metadata["user_id"]; !ok {
				s.Metadata["user_id"] = e.UserID
			}
		}
		out[i] = s
	}
	return out
}

// DecodeSubmission parses and validates a JSON submission event.
func DecodeSubmission(data []byte) (*SubmissionEvent, error) {
	var ev SubmissionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("decode submission: %w", err)
	}
	if err := ev.Validate(); err != nil {
		return nil, fmt.Errorf("invalid submission: %w", err)
	}
	return &ev, nil
}

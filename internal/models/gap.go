package models

// SkillMatch is the best employee skill for one required skill.
type SkillMatch struct {
	MatchedSkill string  `json:"matched_skill"`
	Similarity   float64 `json:"similarity"`
}

// GapResult classifies each required skill as matched or missing.
// MatchedSkills and MissingSkills keep the order of the required list.
type GapResult struct {
	MatchedSkills    []string              `json:"matched_skills"`
	MissingSkills    []string              `json:"missing_skills"`
	GapPercentage    float64               `json:"gap_percentage"`
	SimilarityScores map[string]SkillMatch `json:"similarity_scores"`
}

// CompareRequest is the input for a gap analysis.
type CompareRequest struct {
	EmployeeSkills []SkillRecord `json:"employee_skills" validate:"dive"`
	RequiredSkills []string      `json:"required_skills" validate:"dive,required"`
}

// Validate checks the employee skills and that no required skill is blank.
func (r *CompareRequest) Validate() error {
	return validate.Struct(r)
}

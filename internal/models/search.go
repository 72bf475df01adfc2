package models

import "fmt"

// SearchRequest asks the skill index for the k texts closest to Query.
type SearchRequest struct {
	Query string `json:"query" validate:"required"`
	K     int    `json:"k,omitempty" validate:"gte=0"`
}

// Validate ensures the query is present and k is not negative.
func (q *SearchRequest) Validate() error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("invalid search request: %w", err)
	}
	return nil
}

// SearchHit is one skill index match.
type SearchHit struct {
	ID       int      `json:"id"`
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata"`
	Score    float64  `json:"score"`
	Rank     int      `json:"rank"`
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Query     string       `json:"query"`
	Hits      []*SearchHit `json:"hits"`
	Total     int          `json:"total"`
	QueryTime int64        `json:"query_time_ms"`
}

// AddSkillsRequest submits skills to the index.
type AddSkillsRequest struct {
	Skills []SkillRecord `json:"skills" validate:"dive"`
}

// Validate checks every submitted skill.
func (r *AddSkillsRequest) Validate() error {
	return ValidateSkills(r.Skills)
}

package gap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/skillmatch/internal/models"
)

func TestCompare_NoEmployeeSkillsIsFullGap(t *testing.T) {
	got, err := NewAnalyzer().Compare(nil, []string{"Python", "SQL"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Python", "SQL"}, got.MissingSkills)
	assert.Empty(t, got.MatchedSkills)
	assert.NotNil(t, got.MatchedSkills)
	assert.Equal(t, 100.0, got.GapPercentage)
	assert.Empty(t, got.SimilarityScores)
}

func TestCompare_InsufficientData(t *testing.T) {
	a := NewAnalyzer()
	_, err := a.Compare(nil, nil)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = a.Compare([]models.SkillRecord{{SkillName: "Python"}}, []string{})
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestCompare_SameSkillMatches(t *testing.T) {
	employee := []models.SkillRecord{{SkillName: "Python", ProficiencyLevel: models.ProficiencyAdvanced, YearsOfExperience: 3}}
	got, err := NewAnalyzer().Compare(employee, []string{"Python"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Python"}, got.MatchedSkills)
	assert.Empty(t, got.MissingSkills)
	assert.Equal(t, 0.0, got.GapPercentage)
	assert.Equal(t, models.SkillMatch{MatchedSkill: "Python", Similarity: 1}, got.SimilarityScores["Python"])
}

func TestCompare_PartialMatch(t *testing.T) {
	employee := []models.SkillRecord{{SkillName: "Java"}}
	got, err := NewAnalyzer().Compare(employee, []string{"Python", "Java", "SQL"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Java"}, got.MatchedSkills)
	assert.Equal(t, []string{"Python", "SQL"}, got.MissingSkills)
	assert.Equal(t, 66.67, got.GapPercentage)

	require.Len(t, got.SimilarityScores, 3)
	for _, req := range []string{"Python", "SQL"} {
		score := got.SimilarityScores[req]
		assert.Equal(t, "Java", score.MatchedSkill)
		assert.Equal(t, 0.0, score.Similarity)
	}
}

func TestCompare_NameMatchIgnoresCaseAndSpace(t *testing.T) {
	employee := []models.SkillRecord{
		{SkillName: "Go", YearsOfExperience: 2},
		{SkillName: "  postgresql ", ProficiencyLevel: models.ProficiencyBeginner},
	}
	got, err := NewAnalyzer().Compare(employee, []string{"PostgreSQL"})
	require.NoError(t, err)
	assert.Equal(t, []string{"PostgreSQL"}, got.MatchedSkills)
	assert.Equal(t, "  postgresql ", got.SimilarityScores["PostgreSQL"].MatchedSkill)
}

func TestCompare_SimilarTextAboveThreshold(t *testing.T) {
	employee := []models.SkillRecord{
		{SkillName: "Machine Learning", ProficiencyLevel: models.ProficiencyExpert, YearsOfExperience: 5},
		{SkillName: "Docker", ProficiencyLevel: models.ProficiencyBeginner, YearsOfExperience: 1},
	}
	got, err := NewAnalyzer().Compare(employee, []string{"machine learning expert", "Kubernetes"})
	require.NoError(t, err)
	assert.Equal(t, []string{"machine learning expert"}, got.MatchedSkills)
	assert.Equal(t, []string{"Kubernetes"}, got.MissingSkills)
	assert.Equal(t, 50.0, got.GapPercentage)

	ml := got.SimilarityScores["machine learning expert"]
	assert.Equal(t, "Machine Learning", ml.MatchedSkill)
	assert.Greater(t, ml.Similarity, 0.5)
	assert.Less(t, ml.Similarity, 1.0)
}

func TestCompare_Threshold(t *testing.T) {
	employee := []models.SkillRecord{{SkillName: "Machine Learning", ProficiencyLevel: models.ProficiencyExpert, YearsOfExperience: 5}}
	required := []string{"machine learning expert"}

	got, err := NewAnalyzer(WithThreshold(0.99)).Compare(employee, required)
	require.NoError(t, err)
	assert.Equal(t, required, got.MissingSkills)
	assert.Equal(t, 100.0, got.GapPercentage)

	got, err = NewAnalyzer(WithThreshold(1)).Compare(employee, []string{"Machine Learning"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Machine Learning"}, got.MissingSkills, "similarity must exceed the threshold")
}

func TestCompare_KeepsRequiredOrderAndInputsUntouched(t *testing.T) {
	employee := []models.SkillRecord{{SkillName: "SQL"}, {SkillName: "Go"}}
	required := []string{"Rust", "Go", "Haskell", "SQL"}
	got, err := NewAnalyzer().Compare(employee, required)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "SQL"}, got.MatchedSkills)
	assert.Equal(t, []string{"Rust", "Haskell"}, got.MissingSkills)
	assert.Equal(t, 50.0, got.GapPercentage)
	assert.Equal(t, []string{"Rust", "Go", "Haskell", "SQL"}, required)
}

func TestCompare_Deterministic(t *testing.T) {
	employee := []models.SkillRecord{
		{SkillName: "Data Analysis", ProficiencyLevel: models.ProficiencyIntermediate, YearsOfExperience: 2.5},
		{SkillName: "Python", ProficiencyLevel: models.ProficiencyAdvanced, YearsOfExperience: 4},
	}
	required := []string{"data analysis", "python scripting", "statistics"}
	a := NewAnalyzer()
	first, err := a.Compare(employee, required)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := a.Compare(employee, required)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkillRecord_Validate(t *testing.T) {
	tests := []struct {
		name    string
		record  SkillRecord
		wantErr bool
	}{
		{"valid", SkillRecord{SkillName: "Go", ProficiencyLevel: ProficiencyExpert, YearsOfExperience: 4}, false},
		{"proficiency optional", SkillRecord{SkillName: "Java"}, false},
		{"missing name", SkillRecord{ProficiencyLevel: ProficiencyBeginner}, true},
		{"unknown proficiency", SkillRecord{SkillName: "SQL", ProficiencyLevel: "guru"}, true},
		{"negative years", SkillRecord{SkillName: "SQL", YearsOfExperience: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateSkills_ReportsPosition(t *testing.T) {
	err := ValidateSkills([]SkillRecord{{SkillName: "Go"}, {SkillName: ""}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "skills[1]")
}

func TestProficiency_Valid(t *testing.T) {
	assert.True(t, ProficiencyIntermediate.Valid())
	assert.False(t, Proficiency("").Valid())
	assert.False(t, Proficiency("Advanced").Valid())
}

func TestDecodeSubmission(t *testing.T) {
	body := []byte(`{"user_id": 7, "skills": [
		{"skill_name": "Python", "proficiency_level": "advanced", "years_of_experience": 3.5, "metadata": {"skill_id": 11}},
		{"skill_name": "SQL", "metadata": {"user_id": 99}}
	]}`)
	ev, err := DecodeSubmission(body)
	require.NoError(t, err)

	records := ev.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "Python", records[0].SkillName)
	assert.Equal(t, 3.5, records[0].YearsOfExperience)
	assert.Equal(t, float64(7), records[0].Metadata["user_id"])
	assert.Equal(t, float64(11), records[0].Metadata["skill_id"])
	assert.Equal(t, float64(99), records[1].Metadata["user_id"], "existing user_id is kept")

	_, hadUser := ev.Skills[0].Metadata["user_id"]
	assert.False(t, hadUser, "Records must not mutate the event")
}

func TestDecodeSubmission_Invalid(t *testing.T) {
	_, err := DecodeSubmission([]byte(`{not json`))
	assert.Error(t, err)

	_, err = DecodeSubmission([]byte(`{"user_id": 1, "skills": []}`))
	assert.Error(t, err)

	_, err = DecodeSubmission([]byte(`{"skills": [{"skill_name": "Go", "proficiency_level": "wizard"}]}`))
	assert.Error(t, err)
}

func TestCompareRequest_Validate(t *testing.T) {
	ok := CompareRequest{
		EmployeeSkills: []SkillRecord{{SkillName: "Go"}},
		RequiredSkills: []string{"Go", "SQL"},
	}
	assert.NoError(t, ok.Validate())

	blank := CompareRequest{RequiredSkills: []string{"Go", ""}}
	assert.Error(t, blank.Validate())
}

func TestSearchRequest_Validate(t *testing.T) {
	assert.NoError(t, (&SearchRequest{Query: "go"}).Validate())
	assert.Error(t, (&SearchRequest{}).Validate())
	assert.Error(t, (&SearchRequest{Query: "go", K: -1}).Validate())
}

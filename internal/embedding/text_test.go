package embedding

import (
	"testing"

	"github.com/hyperjump/skillmatch/internal/models"
)

func TestEmbedText(t *testing.T) {
	tests := []struct {
		name, proficiency string
		years             float64
		want              string
	}{
		{"Python", "advanced", 3, "Python advanced 3years"},
		{"Go", "expert", 3.5, "Go expert 3.5years"},
		{"Java", "", 0, "Java  0years"},
	}
	for _, tt := range tests {
		if got := EmbedText(tt.name, tt.proficiency, tt.years); got != tt.want {
			t.Errorf("EmbedText(%q, %q, %v) = %q, want %q", tt.name, tt.proficiency, tt.years, got, tt.want)
		}
	}
}

func TestSkillText_MatchesEmbedText(t *testing.T) {
	r := models.SkillRecord{SkillName: "SQL", ProficiencyLevel: models.ProficiencyBeginner, YearsOfExperience: 1.5}
	if SkillText(r) != EmbedText("SQL", "beginner", 1.5) {
		t.Errorf("SkillText = %q", SkillText(r))
	}
	texts := SkillTexts([]models.SkillRecord{r, {SkillName: "Go"}})
	if len(texts) != 2 || texts[1] != "Go  0years" {
		t.Errorf("SkillTexts = %q", texts)
	}
}

func TestSameSkill(t *testing.T) {
	if !SameSkill(" python ", "Python") {
		t.Error("case and whitespace should be ignored")
	}
	if SameSkill("Java", "JavaScript") {
		t.Error("different skills must not match")
	}
}

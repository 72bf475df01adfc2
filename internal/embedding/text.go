// Package embedding turns skill records into vectorizable text and splits that
// text into n-gram terms.
package embedding

import (
	"strconv"
	"strings"

	"github.com/hyperjump/skillmatch/internal/models"
)

// EmbedText joins skill name, proficiency and experience into one text:
// "<name> <proficiency> <years>years". Years use the shortest decimal form (3, 3.5).
func EmbedText(skillName, proficiency string, years float64) string {
	return skillName + " " + proficiency + " " + FormatYears(years) + "years"
}

// SkillText is EmbedText applied to a record. Every place a skill enters a
// vectorizer goes through here.
func SkillText(r models.SkillRecord) string {
	return EmbedText(r.SkillName, string(r.ProficiencyLevel), r.YearsOfExperience)
}

// SkillTexts maps SkillText over records, keeping order.
func SkillTexts(records []models.SkillRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = SkillText(r)
	}
	return out
}

// FormatYears formats an experience value without trailing zeros.
func FormatYears(years float64) string {
	return strconv.FormatFloat(years, 'f', -1, 64)
}

// SameSkill reports whether two skill names are equal ignoring case and
// surrounding whitespace.
func SameSkill(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

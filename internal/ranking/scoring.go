// Package ranking scores eligible drives for a student and orders them as recommendations.
package ranking

import (
	"github.com/jonathan/campus-placement/internal/skills"
	"github.com/jonathan/campus-placement/internal/types"
)

// Score components. A drive scores at most gpaBase+gpaMarginCap from GPA and
// skillWeight from skills, so every score lies in [0, 100].
const (
	gpaBase          = 30.0
	gpaMarginCap     = 20.0
	gpaMarginPerUnit = 10.0
	skillWeight      = 50.0
	// neutralSkillScore is awarded when a drive lists no required skills.
	neutralSkillScore = 25.0

	// MaxScore is the highest score any drive can reach.
	MaxScore = gpaBase + gpaMarginCap + skillWeight
)

// Breakdown is a drive's score split into its components.
type Breakdown struct {
	GPAScore      float64  `json:"gpa_score"`
	SkillScore    float64  `json:"skill_score"`
	Total         float64  `json:"recommendation_score"`
	MatchedSkills []string `json:"matched_skills"`
}

// computeGPAScore rewards clearing the minimum, plus a capped bonus per GPA point above it.
func computeGPAScore(gpa, minGPA float64) float64 {
	if gpa < minGPA {
		return 0
	}
	return gpaBase + min(gpaMarginCap, (gpa-minGPA)*gpaMarginPerUnit)
}

// computeSkillScore returns the share of required skills the student has, scaled to skillWeight.
func computeSkillScore(have, required []string) (float64, []string) {
	matched, total := skills.Overlap(have, required)
	if total == 0 {
		return neutralSkillScore, nil
	}
	return float64(len(matched)) / float64(total) * skillWeight, matched
}

// Score computes the recommendation score of d for p.
func Score(p *types.StudentProfile, d *types.Drive) Breakdown {
	gpaScore := computeGPAScore(p.GPA, d.MinGPA)
	skillScore, matched := computeSkillScore(p.Skills, d.RequiredSkills)
	if matched == nil {
		matched = []string{}
	}
	return Breakdown{
		GPAScore:      gpaScore,
		SkillScore:    skillScore,
		Total:         gpaScore + skillScore,
		MatchedSkills: matched,
	}
}

package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"credverify/internal/oracle"
)

// StaticCompleter answers every task with a deterministic reply derived from
// the prompt input. It backs local development and the end-to-end suite.
//
// Assessments start at 35 and add points for skills, experience, education,
// projects and certifications, capped at 95. Question i has correct answer i%4.
type StaticCompleter struct{}

func NewStaticCompleter() *StaticCompleter {
	return &StaticCompleter{}
}

func (StaticCompleter) Complete(_ context.Context, p oracle.Prompt) (string, error) {
	var reply any
	switch in := p.Input.(type) {
	case oracle.AssessmentInput:
		if p.Task == oracle.TaskCareerAdvice {
			return staticAdvice(in), nil
		}
		reply = staticAssessment(in)
	case oracle.QuestionRequest:
		reply = map[string]any{"questions": StaticQuestions(in.Skill, in.Count)}
	case oracle.SkillMatchRequest:
		reply = staticSkillMatch(in)
	default:
		return "", fmt.Errorf("static oracle: unsupported task %q", p.Task)
	}
	data, err := json.Marshal(reply)
	if err != nil {
		return "", fmt.Errorf("static oracle: %w", err)
	}
	return string(data), nil
}

// StaticScore is the score StaticCompleter assigns to in.
func StaticScore(in oracle.AssessmentInput) int {
	score := 35
	score += 5 * min(len(in.Skills), 6)
	score += 10 * min(len(in.Experience), 3)
	score += 5 * min(len(in.Education), 2)
	if len(in.Projects) > 0 {
		score += 5
	}
	if len(in.Certifications) > 0 {
		score += 5
	}
	return min(score, 95)
}

func staticAssessment(in oracle.AssessmentInput) oracle.Assessment {
	evidence := strings.ToLower(in.Summary)
	for _, e := range in.Experience {
		evidence += " " + strings.ToLower(e.Title+" "+e.Description)
	}
	for _, p := range in.Projects {
		evidence += " " + strings.ToLower(p.Description+" "+strings.Join(p.Technologies, " "))
	}

	a := oracle.Assessment{
		Score:              StaticScore(in),
		OverallAssessment:  fmt.Sprintf("Static assessment of %d skills and %d roles.", len(in.Skills), len(in.Experience)),
		SkillsAnalysis:     []oracle.SkillAnalysis{},
		EducationAnalysis:  []oracle.EducationAnalysis{},
		ExperienceAnalysis: []oracle.ExperienceAnalysis{},
		RedFlags:           []string{},
		Strengths:          []string{},
		Recommendations:    []string{},
	}
	for _, skill := range in.Skills {
		seen := strings.Contains(evidence, strings.ToLower(skill))
		sa := oracle.SkillAnalysis{Skill: skill, Verified: seen, Confidence: 40, Evidence: "not mentioned in experience or projects"}
		if seen {
			sa.Confidence = 80
			sa.Evidence = "mentioned in experience or projects"
		}
		a.SkillsAnalysis = append(a.SkillsAnalysis, sa)
	}
	for _, e := range in.Education {
		a.EducationAnalysis = append(a.EducationAnalysis, oracle.EducationAnalysis{Institution: e.Institution, Verified: true, Confidence: 70})
	}
	for _, e := range in.Experience {
		a.ExperienceAnalysis = append(a.ExperienceAnalysis, oracle.ExperienceAnalysis{Company: e.Company, Verified: e.Description != "", Confidence: 70})
	}
	if len(in.Experience) == 0 {
		a.RedFlags = append(a.RedFlags, "no work experience listed")
	}
	if len(in.Projects) == 0 {
		a.Recommendations = append(a.Recommendations, "add projects that demonstrate listed skills")
	}
	if len(in.Skills) > 0 {
		a.Strengths = append(a.Strengths, fmt.Sprintf("%d declared skills", len(in.Skills)))
	}
	return a
}

// StaticQuestions returns count questions about skill; question i has correct answer i%4.
func StaticQuestions(skill string, count int) []oracle.Question {
	qs := make([]oracle.Question, count)
	for i := range qs {
		qs[i] = oracle.Question{
			Question:      fmt.Sprintf("%s question %d", skill, i+1),
			Options:       []string{"Option A", "Option B", "Option C", "Option D"},
			CorrectAnswer: i % oracle.OptionCount,
			Explanation:   fmt.Sprintf("Option %c is correct.", 'A'+rune(i%oracle.OptionCount)),
		}
	}
	return qs
}

func staticSkillMatch(req oracle.SkillMatchRequest) oracle.SkillMatch {
	jd := strings.ToLower(req.JobDescription)
	out := oracle.SkillMatch{MatchedSkills: []string{}, MissingSkills: []string{}, Recommendations: []string{}}
	for _, skill := range req.Skills {
		if strings.Contains(jd, strings.ToLower(skill)) {
			out.MatchedSkills = append(out.MatchedSkills, skill)
		}
	}
	if len(req.Skills) > 0 {
		out.MatchScore = 100 * len(out.MatchedSkills) / len(req.Skills)
	}
	if out.MatchScore < 60 {
		out.Recommendations = append(out.Recommendations, "highlight experience relevant to the job description")
	}
	return out
}

func staticAdvice(in oracle.AssessmentInput) string {
	if len(in.Skills) == 0 {
		return "List your core skills and back each with a project or role."
	}
	return fmt.Sprintf("Build on %s with a public project and target roles that use it daily.", in.Skills[0])
}

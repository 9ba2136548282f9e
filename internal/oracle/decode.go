package oracle

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"credverify/pkg/validation"
)

var errNoJSON = errors.New("response contains no JSON object")

// ExtractJSON returns the outermost {...} span of a model reply, ignoring
// markdown fences and any prose around the object.
func ExtractJSON(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", errNoJSON
	}
	return text[start : end+1], nil
}

type rawAssessment struct {
	Score              *int                 `json:"score" validate:"required,min=0,max=100"`
	OverallAssessment  string               `json:"overallAssessment" validate:"notblank"`
	SkillsAnalysis     []SkillAnalysis      `json:"skillsAnalysis" validate:"dive"`
	EducationAnalysis  []EducationAnalysis  `json:"educationAnalysis" validate:"dive"`
	ExperienceAnalysis []ExperienceAnalysis `json:"experienceAnalysis" validate:"dive"`
	RedFlags           []string             `json:"redFlags"`
	Strengths          []string             `json:"strengths"`
	Recommendations    []string             `json:"recommendations"`
}

// DecodeAssessment parses and schema-checks an assessment reply.
func DecodeAssessment(text string) (*Assessment, error) {
	var raw rawAssessment
	if err := decodeStrict(text, &raw); err != nil {
		return nil, err
	}
	return &Assessment{
		Score:              *raw.Score,
		OverallAssessment:  raw.OverallAssessment,
		SkillsAnalysis:     raw.SkillsAnalysis,
		EducationAnalysis:  raw.EducationAnalysis,
		ExperienceAnalysis: raw.ExperienceAnalysis,
		RedFlags:           nonNil(raw.RedFlags),
		Strengths:          nonNil(raw.Strengths),
		Recommendations:    nonNil(raw.Recommendations),
	}, nil
}

type rawQuestion struct {
	Question      string   `json:"question" validate:"notblank"`
	Options       []string `json:"options" validate:"len=4,dive,notblank"`
	CorrectAnswer *int     `json:"correctAnswer" validate:"required,min=0,max=3"`
	Explanation   string   `json:"explanation"`
}

type rawQuestions struct {
	Questions []rawQuestion `json:"questions" validate:"required,dive"`
}

// DecodeQuestions parses a question reply and requires exactly want questions.
func DecodeQuestions(text string, want int) ([]Question, error) {
	var raw rawQuestions
	if err := decodeStrict(text, &raw); err != nil {
		return nil, err
	}
	out := make([]Question, len(raw.Questions))
	for i, q := range raw.Questions {
		out[i] = Question{
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: *q.CorrectAnswer,
			Explanation:   q.Explanation,
		}
	}
	if err := ValidateQuestions(out, want); err != nil {
		return nil, err
	}
	return out, nil
}

// ValidateQuestions checks the shape of a generated question set.
func ValidateQuestions(qs []Question, want int) error {
	if len(qs) != want {
		return fmt.Errorf("expected %d questions, got %d", want, len(qs))
	}
	for i, q := range qs {
		if strings.TrimSpace(q.Question) == "" {
			return fmt.Errorf("question %d: blank text", i)
		}
		if len(q.Options) != OptionCount {
			return fmt.Errorf("question %d: expected %d options, got %d", i, OptionCount, len(q.Options))
		}
		for j, opt := range q.Options {
			if strings.TrimSpace(opt) == "" {
				return fmt.Errorf("question %d: option %d is blank", i, j)
			}
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= OptionCount {
			return fmt.Errorf("question %d: correct answer %d out of range", i, q.CorrectAnswer)
		}
	}
	return nil
}

type rawSkillMatch struct {
	MatchScore      *int     `json:"matchScore" validate:"required,min=0,max=100"`
	MatchedSkills   []string `json:"matchedSkills"`
	MissingSkills   []string `json:"missingSkills"`
	Recommendations []string `json:"recommendations"`
}

// DecodeSkillMatch parses and schema-checks a skill-match reply.
func DecodeSkillMatch(text string) (*SkillMatch, error) {
	var raw rawSkillMatch
	if err := decodeStrict(text, &raw); err != nil {
		return nil, err
	}
	return &SkillMatch{
		MatchScore:      *raw.MatchScore,
		MatchedSkills:   nonNil(raw.MatchedSkills),
		MissingSkills:   nonNil(raw.MissingSkills),
		Recommendations: nonNil(raw.Recommendations),
	}, nil
}

func decodeStrict(text string, out any) error {
	body, err := ExtractJSON(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(body), out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if err := validation.Check(out); err != nil {
		return fmt.Errorf("response schema: %s", validation.ErrorMessage(err))
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

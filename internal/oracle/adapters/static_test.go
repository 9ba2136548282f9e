package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credverify/internal/oracle"
)

func staticClient() *oracle.Client {
	return oracle.New(NewStaticCompleter(), "static")
}

func TestStatic_AssessPassesStrictDecode(t *testing.T) {
	in := oracle.AssessmentInput{
		Skills:     []string{"Go", "PostgreSQL", "Kafka"},
		Experience: []oracle.ExperienceFact{{Company: "Acme", Title: "Engineer", Description: "Built Go services on PostgreSQL"}},
		Education:  []oracle.EducationFact{{Institution: "MIT"}},
	}

	a, err := staticClient().Assess(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, 65, a.Score)
	assert.Equal(t, StaticScore(in), a.Score)
	require.Len(t, a.SkillsAnalysis, 3)
	assert.True(t, a.SkillsAnalysis[0].Verified)
	assert.False(t, a.SkillsAnalysis[2].Verified)
}

func TestStatic_ScoreBounds(t *testing.T) {
	assert.Equal(t, 35, StaticScore(oracle.AssessmentInput{}))

	rich := oracle.AssessmentInput{
		Skills:         make([]string, 20),
		Experience:     make([]oracle.ExperienceFact, 5),
		Education:      make([]oracle.EducationFact, 3),
		Projects:       make([]oracle.ProjectFact, 1),
		Certifications: make([]oracle.CertificationFact, 1),
	}
	assert.Equal(t, 95, StaticScore(rich))
}

func TestStatic_Questions(t *testing.T) {
	qs, err := staticClient().GenerateQuestions(context.Background(), oracle.QuestionRequest{Skill: "Rust", Count: oracle.QuestionCount})

	require.NoError(t, err)
	require.Len(t, qs, 10)
	for i, q := range qs {
		assert.Equal(t, i%4, q.CorrectAnswer)
	}
	assert.Equal(t, "Rust question 1", qs[0].Question)
}

func TestStatic_SkillMatchAndAdvice(t *testing.T) {
	c := staticClient()

	m, err := c.MatchSkills(context.Background(), oracle.SkillMatchRequest{
		Skills:         []string{"Go", "Haskell"},
		JobDescription: "We need a Go developer with Kubernetes",
	})
	require.NoError(t, err)
	assert.Equal(t, 50, m.MatchScore)
	assert.Equal(t, []string{"Go"}, m.MatchedSkills)

	advice, err := c.CareerAdvice(context.Background(), oracle.AssessmentInput{Skills: []string{"Go"}})
	require.NoError(t, err)
	assert.Contains(t, advice, "Go")
}

func TestStatic_UnknownInput(t *testing.T) {
	_, err := NewStaticCompleter().Complete(context.Background(), oracle.Prompt{Task: "other"})
	assert.Error(t, err)
}

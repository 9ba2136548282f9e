// Package oracle talks to the external scoring model. Every response is decoded
// strictly; a timeout, transport error, non-JSON reply or schema violation all
// surface as CodeScoringUnavailable.
package oracle

import "context"

// QuestionCount is the number of questions in a skill test.
const QuestionCount = 10

// OptionCount is the number of options per question.
const OptionCount = 4

// Assessor scores the credibility of a resume.
type Assessor interface {
	Assess(ctx context.Context, in AssessmentInput) (*Assessment, error)
}

// QuestionGenerator produces multiple-choice questions for a skill.
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, req QuestionRequest) ([]Question, error)
}

// Advisor backs the AI assist endpoints.
type Advisor interface {
	CareerAdvice(ctx context.Context, in AssessmentInput) (string, error)
	MatchSkills(ctx context.Context, req SkillMatchRequest) (*SkillMatch, error)
}

// Task identifies which prompt a Completer is answering.
type Task string

const (
	TaskAssess       Task = "assess"
	TaskQuestions    Task = "questions"
	TaskSkillMatch   Task = "skill_match"
	TaskCareerAdvice Task = "career_advice"
)

// Prompt is a single model request. Input carries the structured request the
// prompt was rendered from; JSON asks the provider for a JSON-only reply.
type Prompt struct {
	Task  Task
	Text  string
	JSON  bool
	Input any
}

// Completer is a raw text-completion provider (Gemini, OpenAI, static).
type Completer interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}

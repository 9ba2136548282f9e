package models

import (
	"math"
	"time"

	id "credverify/pkg/domain"
)

const (
	// QuestionCount is the number of questions in every test.
	QuestionCount = 10
	// OptionCount is the number of options per question.
	OptionCount = 4
	// PassThreshold is the lowest passing score.
	PassThreshold = 60
)

type Status string

const (
	StatusStarted   Status = "started"
	StatusCompleted Status = "completed"
)

type Question struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// Test is one attempt by a subject at a skill assessment. It moves from
// started to completed exactly once.
type Test struct {
	ID              id.TestID    `json:"id"`
	Subject         id.SubjectID `json:"walletAddress"`
	Skill           string       `json:"skill"`
	Questions       []Question   `json:"questions"`
	Answers         []int        `json:"answers,omitempty"`
	Score           int          `json:"score"`
	CorrectCount    int          `json:"correctAnswers"`
	Passed          bool         `json:"passed"`
	Status          Status       `json:"status"`
	CompletedAt     *time.Time   `json:"completedAt,omitempty"`
	CertificateCode string       `json:"certificateCode,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
}

func (t *Test) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// Clone returns a deep copy.
func (t *Test) Clone() *Test {
	if t == nil {
		return nil
	}
	cp := *t
	cp.Questions = make([]Question, len(t.Questions))
	for i, q := range t.Questions {
		q.Options = append([]string(nil), q.Options...)
		cp.Questions[i] = q
	}
	if t.Answers != nil {
		cp.Answers = append([]int{}, t.Answers...)
	}
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		cp.CompletedAt = &at
	}
	return &cp
}

// Grade is the outcome of scoring a set of answers.
type Grade struct {
	CorrectCount int
	Score        int
	Passed       bool
}

// GradeAnswers counts matches position by position. Score is
// round(100*correct/total) and passing needs PassThreshold.
func GradeAnswers(questions []Question, answers []int) Grade {
	if len(questions) == 0 {
		return Grade{}
	}
	correct := 0
	for i, q := range questions {
		if i < len(answers) && answers[i] == q.CorrectAnswer {
			correct++
		}
	}
	score := int(math.Round(100 * float64(correct) / float64(len(questions))))
	return Grade{CorrectCount: correct, Score: score, Passed: score >= PassThreshold}
}

// Completion is the single write that finishes a test.
type Completion struct {
	Answers []int
	Grade
	CompletedAt     time.Time
	CertificateCode string
}

// Certificate proves a passed test. VerificationCode is globally unique.
type Certificate struct {
	ID               id.CertificateID `json:"id"`
	Subject          id.SubjectID     `json:"walletAddress"`
	TestID           id.TestID        `json:"testId"`
	Skill            string           `json:"skill"`
	Score            int              `json:"score"`
	VerificationCode string           `json:"verificationCode"`
	IPFSHash         string           `json:"ipfsHash"`
	TokenID          string           `json:"tokenId,omitempty"`
	TxRef            string           `json:"txHash,omitempty"`
	IssuedAt         time.Time        `json:"issuedAt"`
}

func (c *Certificate) Clone() *Certificate {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// QuestionView is a question as shown to a client. CorrectAnswer and
// Explanation are withheld until the test is completed.
type QuestionView struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer *int     `json:"correctAnswer,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
}

// TestView is the client-facing form of a Test.
type TestView struct {
	ID              id.TestID      `json:"id"`
	Skill           string         `json:"skill"`
	Status          Status         `json:"status"`
	Questions       []QuestionView `json:"questions"`
	Answers         []int          `json:"answers,omitempty"`
	Score           int            `json:"score"`
	CorrectCount    int            `json:"correctAnswers"`
	TotalQuestions  int            `json:"totalQuestions"`
	Passed          bool           `json:"passed"`
	CertificateCode string         `json:"certificateCode,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	CompletedAt     *time.Time     `json:"completedAt,omitempty"`
}

// View renders t for its owner, redacting answers while it is started.
func (t *Test) View() *TestView {
	cp := t.Clone()
	v := &TestView{
		ID:              cp.ID,
		Skill:           cp.Skill,
		Status:          cp.Status,
		Answers:         cp.Answers,
		Score:           cp.Score,
		CorrectCount:    cp.CorrectCount,
		TotalQuestions:  len(cp.Questions),
		Passed:          cp.Passed,
		CertificateCode: cp.CertificateCode,
		CreatedAt:       cp.CreatedAt,
		CompletedAt:     cp.CompletedAt,
	}
	v.Questions = make([]QuestionView, len(cp.Questions))
	for i, q := range cp.Questions {
		qv := QuestionView{Question: q.Question, Options: q.Options}
		if cp.IsCompleted() {
			correct := q.CorrectAnswer
			qv.CorrectAnswer = &correct
			qv.Explanation = q.Explanation
		}
		v.Questions[i] = qv
	}
	return v
}

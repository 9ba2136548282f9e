package skilltest

import (
	"context"
	"fmt"
	"regexp"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	GET(path string) error
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	CorrectAnswer(i int) int
	Save(key, value string)
	Saved(key string) (string, error)
}

const (
	testKey      = "test_id"
	questionsKey = "question_count"
	codeKey      = "certificate_code"
)

var certificateCode = regexp.MustCompile(`^[0-9A-F]{16}$`)

// RegisterSteps registers skill test and certificate steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &skillTestSteps{tc: tc}

	ctx.Step(`^I start a skill test for "([^"]*)"$`, steps.startTest)
	ctx.Step(`^the test should have (\d+) questions without answers$`, steps.testHasHiddenQuestions)
	ctx.Step(`^I submit answers with (\d+) correct$`, steps.submitAnswers)
	ctx.Step(`^the certificate code should be 16 uppercase hex characters$`, steps.certificateCodeIsHex)
	ctx.Step(`^I resolve the certificate$`, steps.resolveCertificate)
	ctx.Step(`^I resolve certificate "([^"]*)"$`, steps.resolveCode)
}

type skillTestSteps struct {
	tc TestContext
}

func (s *skillTestSteps) startTest(ctx context.Context, skill string) error {
	if err := s.tc.POST("/tests", map[string]any{"skill": skill}); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() != 201 {
		return nil
	}
	testID, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	s.tc.Save(testKey, fmt.Sprint(testID))
	return nil
}

func (s *skillTestSteps) questions() ([]any, error) {
	raw, err := s.tc.GetResponseField("questions")
	if err != nil {
		return nil, err
	}
	questions, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("questions is not a list: %v", raw)
	}
	return questions, nil
}

func (s *skillTestSteps) testHasHiddenQuestions(ctx context.Context, count int) error {
	questions, err := s.questions()
	if err != nil {
		return err
	}
	if len(questions) != count {
		return fmt.Errorf("expected %d questions, got %d", count, len(questions))
	}
	for i, q := range questions {
		question, _ := q.(map[string]any)
		if _, leaked := question["correctAnswer"]; leaked {
			return fmt.Errorf("question %d exposes its answer", i)
		}
	}
	s.tc.Save(questionsKey, fmt.Sprint(count))
	return nil
}

func (s *skillTestSteps) submitAnswers(ctx context.Context, correct int) error {
	testID, err := s.tc.Saved(testKey)
	if err != nil {
		return err
	}
	saved, err := s.tc.Saved(questionsKey)
	if err != nil {
		return err
	}
	var total int
	if _, err := fmt.Sscan(saved, &total); err != nil {
		return err
	}

	answers := make([]int, total)
	for i := range answers {
		answers[i] = s.tc.CorrectAnswer(i)
		if i >= correct {
			answers[i] = (answers[i] + 1) % 4
		}
	}
	if err := s.tc.POST("/tests/"+testID+"/submit", map[string]any{"answers": answers}); err != nil {
		return err
	}
	if code, err := s.tc.GetResponseField("certificate.verificationCode"); err == nil {
		s.tc.Save(codeKey, fmt.Sprint(code))
	}
	return nil
}

func (s *skillTestSteps) certificateCodeIsHex(ctx context.Context) error {
	code, err := s.tc.Saved(codeKey)
	if err != nil {
		return err
	}
	if !certificateCode.MatchString(code) {
		return fmt.Errorf("certificate code %q is not 16 uppercase hex characters", code)
	}
	return nil
}

func (s *skillTestSteps) resolveCertificate(ctx context.Context) error {
	code, err := s.tc.Saved(codeKey)
	if err != nil {
		return err
	}
	return s.tc.GET("/certificates/" + code)
}

func (s *skillTestSteps) resolveCode(ctx context.Context, code string) error {
	return s.tc.GET("/certificates/" + code)
}

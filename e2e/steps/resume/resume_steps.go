package resume

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	GET(path string) error
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	SetOracleScore(score int)
	Save(key, value string)
	Saved(key string) (string, error)
}

const resumeKey = "resume_id"

// RegisterSteps registers resume, verification and credential steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &resumeSteps{tc: tc}

	ctx.Step(`^the oracle will score resumes (\d+)$`, steps.oracleWillScore)
	ctx.Step(`^I submit a resume with skills "([^"]*)"$`, steps.submitResume)
	ctx.Step(`^I have a verified resume with skills "([^"]*)"$`, steps.haveVerifiedResume)
	ctx.Step(`^I request verification of the resume$`, steps.requestVerification)
	ctx.Step(`^I fetch the resume$`, steps.fetchResume)
	ctx.Step(`^I fetch the latest verification$`, steps.fetchLatestVerification)
	ctx.Step(`^I bind credential "([^"]*)" to the resume$`, steps.bindCredential)
	ctx.Step(`^I fetch my profile$`, steps.fetchProfile)

	ctx.Step(`^every skill in the analysis should be verified$`, steps.everySkillVerified)
	ctx.Step(`^my profile should list credential "([^"]*)" exactly once$`, steps.profileListsCredentialOnce)
}

type resumeSteps struct {
	tc TestContext
}

func (s *resumeSteps) oracleWillScore(ctx context.Context, score int) error {
	s.tc.SetOracleScore(score)
	return nil
}

func (s *resumeSteps) submitResume(ctx context.Context, skills string) error {
	list := strings.Split(skills, ",")
	for i := range list {
		list[i] = strings.TrimSpace(list[i])
	}
	body := map[string]any{
		"name":    "Alice Example",
		"email":   "alice@example.com",
		"summary": "Backend engineer working with " + strings.Join(list, " and ") + " every day.",
		"skills":  list,
		"experience": []map[string]any{{
			"company":     "Acme",
			"title":       "Engineer",
			"startDate":   "2020-01",
			"endDate":     "2024-06",
			"description": "Built services in " + strings.Join(list, ", ") + ".",
		}},
	}
	if err := s.tc.POST("/resumes", body); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() != 201 {
		return nil
	}
	resumeID, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	s.tc.Save(resumeKey, fmt.Sprint(resumeID))
	return nil
}

func (s *resumeSteps) haveVerifiedResume(ctx context.Context, skills string) error {
	if err := s.submitResume(ctx, skills); err != nil {
		return err
	}
	if err := s.requestVerification(ctx); err != nil {
		return err
	}
	status, err := s.tc.GetResponseField("verificationStatus")
	if err != nil {
		return err
	}
	if status != "verified" {
		return fmt.Errorf("expected a verified resume, got %v", status)
	}
	return nil
}

func (s *resumeSteps) resumePath(suffix string) (string, error) {
	resumeID, err := s.tc.Saved(resumeKey)
	if err != nil {
		return "", err
	}
	return "/resumes/" + resumeID + suffix, nil
}

func (s *resumeSteps) requestVerification(ctx context.Context) error {
	path, err := s.resumePath("/verify")
	if err != nil {
		return err
	}
	return s.tc.POST(path, map[string]any{})
}

func (s *resumeSteps) fetchResume(ctx context.Context) error {
	path, err := s.resumePath("")
	if err != nil {
		return err
	}
	return s.tc.GET(path)
}

func (s *resumeSteps) fetchLatestVerification(ctx context.Context) error {
	path, err := s.resumePath("/verification")
	if err != nil {
		return err
	}
	return s.tc.GET(path)
}

func (s *resumeSteps) bindCredential(ctx context.Context, tokenID string) error {
	path, err := s.resumePath("/credential")
	if err != nil {
		return err
	}
	return s.tc.POST(path, map[string]any{"tokenId": tokenID})
}

func (s *resumeSteps) fetchProfile(ctx context.Context) error {
	return s.tc.GET("/profile")
}

func (s *resumeSteps) everySkillVerified(ctx context.Context) error {
	raw, err := s.tc.GetResponseField("skillsAnalysis")
	if err != nil {
		return err
	}
	skills, ok := raw.([]any)
	if !ok || len(skills) == 0 {
		return fmt.Errorf("expected a skills analysis, got %v", raw)
	}
	for _, entry := range skills {
		skill, _ := entry.(map[string]any)
		if skill["verified"] != true {
			return fmt.Errorf("skill %v not verified", skill["skill"])
		}
	}
	return nil
}

func (s *resumeSteps) profileListsCredentialOnce(ctx context.Context, tokenID string) error {
	if err := s.fetchProfile(ctx); err != nil {
		return err
	}
	raw, err := s.tc.GetResponseField("credentials")
	if err != nil {
		return err
	}
	list, _ := raw.([]any)
	count := 0
	for _, c := range list {
		if c == tokenID {
			count++
		}
	}
	if count != 1 {
		return fmt.Errorf("expected credential %s once, found %d times in %v", tokenID, count, list)
	}
	return nil
}

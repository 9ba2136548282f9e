package oracle

import (
	"encoding/json"
	"fmt"
	"strings"
)

const assessTemplate = `You are an expert resume verifier and career analyst. Review the resume data below and produce a credibility report.

Resume data:
%s

Reply with a JSON object of exactly this shape:
{
  "score": <integer 0-100, overall credibility>,
  "overallAssessment": "<assessment of authenticity and quality>",
  "skillsAnalysis": [{"skill": "<name>", "verified": <bool>, "confidence": <integer 0-100>, "evidence": "<why>"}],
  "educationAnalysis": [{"institution": "<name>", "verified": <bool>, "confidence": <integer 0-100>}],
  "experienceAnalysis": [{"company": "<name>", "verified": <bool>, "confidence": <integer 0-100>}],
  "redFlags": ["<inconsistency or concerning pattern>"],
  "strengths": ["<notable positive aspect>"],
  "recommendations": ["<suggested improvement>"]
}

Weigh:
1. Consistency between skills, projects and experience
2. Timeline coherence: no overlapping dates, logical progression
3. Concrete achievements over vague claims
4. Skills that match the described work
5. Employment gaps, unrealistic claims and buzzword stuffing

Reply with the JSON object only.`

const questionsTemplate = `Write %d multiple choice questions that test knowledge of: %s

Rules:
- exactly %d options per question
- difficulty ranges from beginner to advanced
- prefer practical scenarios
- explain why the correct answer is correct

Reply with JSON only, in this format:
{
  "questions": [
    {"question": "<text>", "options": ["a", "b", "c", "d"], "correctAnswer": <0-%d index>, "explanation": "<text>"}
  ]
}`

const skillMatchTemplate = `Compare these candidate skills with the job requirements.

Candidate skills: %s

Job description: %s

Reply with JSON only:
{
  "matchScore": <integer 0-100>,
  "matchedSkills": ["<skill the candidate has>"],
  "missingSkills": ["<required skill the candidate lacks>"],
  "recommendations": ["<how to close the gap>"]
}`

const adviceTemplate = `As a career advisor, review this resume and give personalised advice:

%s

Cover:
1. Skill gaps to address
2. Career path options
3. Relevant industry trends
4. Networking
5. Learning resources

Keep it concise and actionable.`

func assessPrompt(in AssessmentInput) (Prompt, error) {
	data, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return Prompt{}, fmt.Errorf("render assessment prompt: %w", err)
	}
	return Prompt{Task: TaskAssess, Text: fmt.Sprintf(assessTemplate, data), JSON: true, Input: in}, nil
}

func questionsPrompt(req QuestionRequest) Prompt {
	text := fmt.Sprintf(questionsTemplate, req.Count, req.Skill, OptionCount, OptionCount-1)
	return Prompt{Task: TaskQuestions, Text: text, JSON: true, Input: req}
}

func skillMatchPrompt(req SkillMatchRequest) Prompt {
	text := fmt.Sprintf(skillMatchTemplate, strings.Join(req.Skills, ", "), req.JobDescription)
	return Prompt{Task: TaskSkillMatch, Text: text, JSON: true, Input: req}
}

func advicePrompt(in AssessmentInput) (Prompt, error) {
	data, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return Prompt{}, fmt.Errorf("render advice prompt: %w", err)
	}
	return Prompt{Task: TaskCareerAdvice, Text: fmt.Sprintf(adviceTemplate, data), Input: in}, nil
}

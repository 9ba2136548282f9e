package oracle

// AssessmentInput is the resume fact set sent to the Assessor.
type AssessmentInput struct {
	Name           string              `json:"name"`
	Email          string              `json:"email,omitempty"`
	Summary        string              `json:"summary,omitempty"`
	Skills         []string            `json:"skills,omitempty"`
	Education      []EducationFact     `json:"education,omitempty"`
	Experience     []ExperienceFact    `json:"experience,omitempty"`
	Certifications []CertificationFact `json:"certifications,omitempty"`
	Projects       []ProjectFact       `json:"projects,omitempty"`
	GitHubURL      string              `json:"githubUrl,omitempty"`
	LinkedInURL    string              `json:"linkedinUrl,omitempty"`
	PortfolioURL   string              `json:"portfolioUrl,omitempty"`
}

type EducationFact struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

type ExperienceFact struct {
	Company     string `json:"company"`
	Title       string `json:"title"`
	Description string `json:"description"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

type CertificationFact struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Date   string `json:"date"`
}

type ProjectFact struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies,omitempty"`
	URL          string   `json:"url,omitempty"`
}

// Assessment is a decoded, schema-checked credibility report.
type Assessment struct {
	Score              int                  `json:"score"`
	OverallAssessment  string               `json:"overallAssessment"`
	SkillsAnalysis     []SkillAnalysis      `json:"skillsAnalysis"`
	EducationAnalysis  []EducationAnalysis  `json:"educationAnalysis"`
	ExperienceAnalysis []ExperienceAnalysis `json:"experienceAnalysis"`
	RedFlags           []string             `json:"redFlags"`
	Strengths          []string             `json:"strengths"`
	Recommendations    []string             `json:"recommendations"`
}

type SkillAnalysis struct {
	Skill      string `json:"skill" validate:"notblank"`
	Verified   bool   `json:"verified"`
	Confidence int    `json:"confidence" validate:"min=0,max=100"`
	Evidence   string `json:"evidence"`
}

type EducationAnalysis struct {
	Institution string `json:"institution" validate:"notblank"`
	Verified    bool   `json:"verified"`
	Confidence  int    `json:"confidence" validate:"min=0,max=100"`
}

type ExperienceAnalysis struct {
	Company    string `json:"company" validate:"notblank"`
	Verified   bool   `json:"verified"`
	Confidence int    `json:"confidence" validate:"min=0,max=100"`
}

// Question is one multiple-choice item. CorrectAnswer indexes Options.
type Question struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// QuestionRequest asks for Count questions about Skill.
type QuestionRequest struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

// SkillMatchRequest compares a candidate's skills with a job description.
type SkillMatchRequest struct {
	Skills         []string `json:"skills"`
	JobDescription string   `json:"jobDescription"`
}

// SkillMatch is the decoded result of a skill/job comparison.
type SkillMatch struct {
	MatchScore      int      `json:"matchScore"`
	MatchedSkills   []string `json:"matchedSkills"`
	MissingSkills   []string `json:"missingSkills"`
	Recommendations []string `json:"recommendations"`
}

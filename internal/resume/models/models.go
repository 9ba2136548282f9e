package models

import (
	"time"

	id "credverify/pkg/domain"
)

// PassThreshold is the lowest score that verifies a resume.
const PassThreshold = 60

// Status is the derived verification state of a resume.
type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusRejected Status = "rejected"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusVerified, StatusRejected:
		return true
	}
	return false
}

// StatusForScore derives the status a score implies.
func StatusForScore(score int) Status {
	if score >= PassThreshold {
		return StatusVerified
	}
	return StatusRejected
}

// Resume is a subject's self-reported professional record. Subject never
// changes after creation; the verification fields are derived and written
// only by the verification pipeline and the credential binder.
type Resume struct {
	ID       id.ResumeID  `json:"id"`
	Subject  id.SubjectID `json:"walletAddress"`
	Name     string       `json:"name"`
	Email    string       `json:"email"`
	Phone    string       `json:"phone,omitempty"`
	Location string       `json:"location,omitempty"`
	Summary  string       `json:"summary,omitempty"`
	Details

	VerificationStatus Status `json:"verificationStatus"`
	VerificationScore  *int   `json:"verificationScore,omitempty"`
	VerificationReport string `json:"verificationReport,omitempty"`
	IPFSHash           string `json:"ipfsHash,omitempty"`
	CredentialID       string `json:"credentialId,omitempty"`
	Version            int    `json:"version"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Details is the structured part of a resume, persisted as one document.
type Details struct {
	Skills         []string        `json:"skills"`
	Education      []Education     `json:"education"`
	Experience     []Experience    `json:"experience"`
	Certifications []Certification `json:"certifications"`
	Projects       []Project       `json:"projects"`
	Links          Links           `json:"links"`
}

type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	GPA         string `json:"gpa,omitempty"`
}

type Experience struct {
	Company     string `json:"company"`
	Title       string `json:"title"`
	Location    string `json:"location,omitempty"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Description string `json:"description"`
}

type Certification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Date   string `json:"date"`
}

type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	URL          string   `json:"url,omitempty"`
}

type Links struct {
	LinkedIn  string `json:"linkedin,omitempty"`
	GitHub    string `json:"github,omitempty"`
	Portfolio string `json:"portfolio,omitempty"`
}

// Clone returns a deep copy.
func (r *Resume) Clone() *Resume {
	if r == nil {
		return nil
	}
	cp := *r
	if r.VerificationScore != nil {
		score := *r.VerificationScore
		cp.VerificationScore = &score
	}
	cp.Skills = append([]string(nil), r.Skills...)
	cp.Education = append([]Education(nil), r.Education...)
	cp.Experience = append([]Experience(nil), r.Experience...)
	cp.Certifications = append([]Certification(nil), r.Certifications...)
	cp.Projects = make([]Project, len(r.Projects))
	for i, p := range r.Projects {
		p.Technologies = append([]string(nil), p.Technologies...)
		cp.Projects[i] = p
	}
	if r.Projects == nil {
		cp.Projects = nil
	}
	return &cp
}

// DerivedUpdate is the pipeline's write to a resume's derived fields.
// ExpectedVersion < 0 disables the version check.
type DerivedUpdate struct {
	Status          Status
	Score           int
	Report          string
	IPFSHash        string
	ExpectedVersion int
	UpdatedAt       time.Time
}

// NoVersionCheck is the ExpectedVersion for last-writer-wins updates.
const NoVersionCheck = -1

// Verification is an immutable assessment outcome. TokenID and TxRef are
// written at most once, by the credential binder.
type Verification struct {
	ID       id.VerificationID `json:"id"`
	ResumeID id.ResumeID       `json:"resumeId"`
	Subject  id.SubjectID      `json:"walletAddress"`
	Score    int               `json:"score"`
	Analysis
	IPFSHash  string    `json:"ipfsHash"`
	TokenID   string    `json:"tokenId,omitempty"`
	TxRef     string    `json:"txHash,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Analysis is the oracle's report, persisted as one document.
type Analysis struct {
	OverallAssessment  string               `json:"overallAssessment"`
	SkillsAnalysis     []SkillAnalysis      `json:"skillsAnalysis"`
	EducationAnalysis  []EducationAnalysis  `json:"educationAnalysis"`
	ExperienceAnalysis []ExperienceAnalysis `json:"experienceAnalysis"`
	RedFlags           []string             `json:"redFlags"`
	Strengths          []string             `json:"strengths"`
	Recommendations    []string             `json:"recommendations"`
}

type SkillAnalysis struct {
	Skill      string `json:"skill"`
	Verified   bool   `json:"verified"`
	Confidence int    `json:"confidence"`
	Evidence   string `json:"evidence"`
}

type EducationAnalysis struct {
	Institution string `json:"institution"`
	Verified    bool   `json:"verified"`
	Confidence  int    `json:"confidence"`
}

type ExperienceAnalysis struct {
	Company    string `json:"company"`
	Verified   bool   `json:"verified"`
	Confidence int    `json:"confidence"`
}

// Clone returns a copy safe to hand out of a store.
func (v *Verification) Clone() *Verification {
	if v == nil {
		return nil
	}
	cp := *v
	cp.SkillsAnalysis = append([]SkillAnalysis(nil), v.SkillsAnalysis...)
	cp.EducationAnalysis = append([]EducationAnalysis(nil), v.EducationAnalysis...)
	cp.ExperienceAnalysis = append([]ExperienceAnalysis(nil), v.ExperienceAnalysis...)
	cp.RedFlags = append([]string(nil), v.RedFlags...)
	cp.Strengths = append([]string(nil), v.Strengths...)
	cp.Recommendations = append([]string(nil), v.Recommendations...)
	return &cp
}

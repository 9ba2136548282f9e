package handler

import (
	"strings"

	"credverify/internal/resume/models"
	resumeService "credverify/internal/resume/service"
	str "credverify/pkg/string"
	"credverify/pkg/validation"
)

// SubmitResumeRequest is the body of POST /resumes.
type SubmitResumeRequest struct {
	Name           string                 `json:"name" validate:"notblank,max=200"`
	Email          string                 `json:"email" validate:"required,email,max=320"`
	Phone          string                 `json:"phone" validate:"max=50"`
	Location       string                 `json:"location" validate:"max=200"`
	Summary        string                 `json:"summary" validate:"max=5000"`
	Skills         []string               `json:"skills"`
	Education      []EducationRequest     `json:"education" validate:"dive"`
	Experience     []ExperienceRequest    `json:"experience" validate:"dive"`
	Certifications []CertificationRequest `json:"certifications" validate:"max=50,dive"`
	Projects       []ProjectRequest       `json:"projects" validate:"max=50,dive"`
	Links          LinksRequest           `json:"links"`
}

type EducationRequest struct {
	Institution string `json:"institution" validate:"notblank,max=200"`
	Degree      string `json:"degree" validate:"max=200"`
	Field       string `json:"field" validate:"max=200"`
	StartDate   string `json:"startDate" validate:"max=32"`
	EndDate     string `json:"endDate" validate:"max=32"`
	GPA         string `json:"gpa" validate:"max=16"`
}

type ExperienceRequest struct {
	Company     string `json:"company" validate:"notblank,max=200"`
	Title       string `json:"title" validate:"max=200"`
	Location    string `json:"location" validate:"max=200"`
	StartDate   string `json:"startDate" validate:"max=32"`
	EndDate     string `json:"endDate" validate:"max=32"`
	Description string `json:"description" validate:"max=5000"`
}

type CertificationRequest struct {
	Name   string `json:"name" validate:"notblank,max=200"`
	Issuer string `json:"issuer" validate:"max=200"`
	Date   string `json:"date" validate:"max=32"`
}

type ProjectRequest struct {
	Name         string   `json:"name" validate:"notblank,max=200"`
	Description  string   `json:"description" validate:"max=5000"`
	Technologies []string `json:"technologies" validate:"max=50,dive,max=100"`
	URL          string   `json:"url" validate:"omitempty,url,max=2048"`
}

type LinksRequest struct {
	LinkedIn  string `json:"linkedin" validate:"omitempty,url,max=2048"`
	GitHub    string `json:"github" validate:"omitempty,url,max=2048"`
	Portfolio string `json:"portfolio" validate:"omitempty,url,max=2048"`
}

func (r *SubmitResumeRequest) Normalize() {
	str.TrimStrings(&r.Name, &r.Email, &r.Phone, &r.Location, &r.Summary)
	r.Email = strings.ToLower(r.Email)
	for i := range r.Education {
		e := &r.Education[i]
		str.TrimStrings(&e.Institution, &e.Degree, &e.Field, &e.StartDate, &e.EndDate, &e.GPA)
	}
	for i := range r.Experience {
		e := &r.Experience[i]
		str.TrimStrings(&e.Company, &e.Title, &e.Location, &e.StartDate, &e.EndDate, &e.Description)
	}
	for i := range r.Certifications {
		c := &r.Certifications[i]
		str.TrimStrings(&c.Name, &c.Issuer, &c.Date)
	}
	for i := range r.Projects {
		p := &r.Projects[i]
		str.TrimStrings(&p.Name, &p.Description, &p.URL)
	}
	str.TrimStrings(&r.Links.LinkedIn, &r.Links.GitHub, &r.Links.Portfolio)
}

func (r *SubmitResumeRequest) Validate() error {
	// Phase 1: size checks (fail fast on oversized payloads)
	if err := validation.CheckSliceCount("skills", len(r.Skills), validation.MaxSkills); err != nil {
		return err
	}
	if err := validation.CheckEachStringLength("skill", r.Skills, validation.MaxSkillLength); err != nil {
		return err
	}
	if err := validation.CheckSliceCount("experience entries", len(r.Experience), validation.MaxExperienceEntries); err != nil {
		return err
	}
	if err := validation.CheckSliceCount("education entries", len(r.Education), validation.MaxEducationEntries); err != nil {
		return err
	}
	// Phase 2: field rules
	return validation.Validate(r)
}

func (r *SubmitResumeRequest) toInput() resumeService.SubmitInput {
	in := resumeService.SubmitInput{
		Name:     r.Name,
		Email:    r.Email,
		Phone:    r.Phone,
		Location: r.Location,
		Summary:  r.Summary,
		Details: models.Details{
			Skills: r.Skills,
			Links: models.Links{
				LinkedIn:  r.Links.LinkedIn,
				GitHub:    r.Links.GitHub,
				Portfolio: r.Links.Portfolio,
			},
		},
	}
	for _, e := range r.Education {
		in.Education = append(in.Education, models.Education(e))
	}
	for _, e := range r.Experience {
		in.Experience = append(in.Experience, models.Experience(e))
	}
	for _, c := range r.Certifications {
		in.Certifications = append(in.Certifications, models.Certification(c))
	}
	for _, p := range r.Projects {
		in.Projects = append(in.Projects, models.Project(p))
	}
	return in
}

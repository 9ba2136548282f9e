package models

import "credverify/internal/oracle"

// AssessmentInput is the fact set the scoring oracle sees for r.
func (r *Resume) AssessmentInput() oracle.AssessmentInput {
	in := oracle.AssessmentInput{
		Name:         r.Name,
		Email:        r.Email,
		Summary:      r.Summary,
		Skills:       append([]string(nil), r.Skills...),
		GitHubURL:    r.Links.GitHub,
		LinkedInURL:  r.Links.LinkedIn,
		PortfolioURL: r.Links.Portfolio,
	}
	for _, e := range r.Education {
		in.Education = append(in.Education, oracle.EducationFact{
			Institution: e.Institution,
			Degree:      e.Degree,
			Field:       e.Field,
			StartDate:   e.StartDate,
			EndDate:     e.EndDate,
		})
	}
	for _, e := range r.Experience {
		in.Experience = append(in.Experience, oracle.ExperienceFact{
			Company:     e.Company,
			Title:       e.Title,
			Description: e.Description,
			StartDate:   e.StartDate,
			EndDate:     e.EndDate,
		})
	}
	for _, c := range r.Certifications {
		in.Certifications = append(in.Certifications, oracle.CertificationFact(c))
	}
	for _, p := range r.Projects {
		in.Projects = append(in.Projects, oracle.ProjectFact{
			Name:         p.Name,
			Description:  p.Description,
			Technologies: append([]string(nil), p.Technologies...),
			URL:          p.URL,
		})
	}
	return in
}

// AnalysisFrom copies the report sections of an oracle assessment.
func AnalysisFrom(a *oracle.Assessment) Analysis {
	out := Analysis{
		OverallAssessment: a.OverallAssessment,
		RedFlags:          append([]string{}, a.RedFlags...),
		Strengths:         append([]string{}, a.Strengths...),
		Recommendations:   append([]string{}, a.Recommendations...),
	}
	out.SkillsAnalysis = make([]SkillAnalysis, 0, len(a.SkillsAnalysis))
	for _, s := range a.SkillsAnalysis {
		out.SkillsAnalysis = append(out.SkillsAnalysis, SkillAnalysis(s))
	}
	out.EducationAnalysis = make([]EducationAnalysis, 0, len(a.EducationAnalysis))
	for _, e := range a.EducationAnalysis {
		out.EducationAnalysis = append(out.EducationAnalysis, EducationAnalysis(e))
	}
	out.ExperienceAnalysis = make([]ExperienceAnalysis, 0, len(a.ExperienceAnalysis))
	for _, e := range a.ExperienceAnalysis {
		out.ExperienceAnalysis = append(out.ExperienceAnalysis, ExperienceAnalysis(e))
	}
	return out
}

package profile

import "time"

// WorkExperienceInput is one position in the submitted work history.
type WorkExperienceInput struct {
	Title     string     `json:"title" validate:"required,min=2"`
	Company   string     `json:"company" validate:"required,min=2"`
	StartDate time.Time  `json:"startDate" validate:"required"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	Summary   string     `json:"summary"`
}

// Input is the full profile form. A save replaces every field,
// including the entire work-experience list.
type Input struct {
	FullName          string                `json:"fullName" validate:"required,min=2"`
	Email             string                `json:"email" validate:"required,email"`
	Phone             *string               `json:"phone,omitempty"`
	Location          *string               `json:"location,omitempty"`
	LinkedinURL       *string               `json:"linkedinUrl,omitempty" validate:"omitempty,url"`
	WebsiteURL        *string               `json:"websiteUrl,omitempty" validate:"omitempty,url"`
	GithubURL         *string               `json:"githubUrl,omitempty" validate:"omitempty,url"`
	CurrentJobTitle   *string               `json:"currentJobTitle,omitempty"`
	YearsOfExperience *int                  `json:"yearsOfExperience,omitempty" validate:"omitempty,gte=0"`
	Bio               *string               `json:"bio,omitempty"`
	Skills            []string              `json:"skills" validate:"required,min=1,dive,required"`
	Achievements      []string              `json:"achievements"`
	WorkExperience    []WorkExperienceInput `json:"workExperience" validate:"dive"`
}

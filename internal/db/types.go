package db

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account record used for authentication.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile is a user's professional profile. WorkExperience children are
// owned exclusively by the profile and replaced wholesale on every save.
type Profile struct {
	ID                uuid.UUID        `json:"id"`
	OwnerID           uuid.UUID        `json:"owner_id"`
	Email             string           `json:"email"`
	FullName          string           `json:"full_name"`
	Phone             *string          `json:"phone,omitempty"`
	Location          *string          `json:"location,omitempty"`
	LinkedinURL       *string          `json:"linkedin_url,omitempty"`
	WebsiteURL        *string          `json:"website_url,omitempty"`
	GithubURL         *string          `json:"github_url,omitempty"`
	CurrentJobTitle   *string          `json:"current_job_title,omitempty"`
	YearsOfExperience *int             `json:"years_of_experience,omitempty"`
	Bio               *string          `json:"bio,omitempty"`
	Skills            []string         `json:"skills"`
	Achievements      []string         `json:"achievements"`
	WorkExperience    []WorkExperience `json:"work_experience"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// WorkExperience is one position in a profile's history. A nil EndDate
// means the position is current.
type WorkExperience struct {
	ID        uuid.UUID  `json:"id"`
	ProfileID uuid.UUID  `json:"profile_id"`
	Title     string     `json:"title"`
	Company   string     `json:"company"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Summary   string     `json:"summary"`
}

// CoverLetter is one generated letter. ProfileID is nullable so a letter
// survives deletion of the profile it was generated from.
type CoverLetter struct {
	ID                     uuid.UUID  `json:"id"`
	OwnerID                uuid.UUID  `json:"owner_id"`
	ProfileID              *uuid.UUID `json:"profile_id,omitempty"`
	JobTitle               string     `json:"job_title"`
	CompanyName            string     `json:"company_name"`
	JobDescription         string     `json:"job_description"`
	AdditionalInstructions *string    `json:"additional_instructions,omitempty"`
	Content                string     `json:"content"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// Package profile implements the save-profile workflow: validate the
// submitted form, upsert it as one transactional unit, and invalidate
// the cached profile view.
package profile

import (
	"context"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/cover-letter-studio/internal/db"
)

// Store is the slice of the database layer the workflow needs.
type Store interface {
	GetProfileByOwnerID(ctx context.Context, ownerID uuid.UUID) (*db.Profile, error)
	CreateProfile(ctx context.Context, p *db.Profile) (*db.Profile, error)
	UpdateProfile(ctx context.Context, p *db.Profile) (*db.Profile, error)
}

// Revalidator invalidates cached views by path prefix.
type Revalidator interface {
	Revalidate(path string)
}

// SaveResult is the workflow outcome. Failures are reported through
// Success and Message rather than an error return so callers always
// render a user-facing message.
type SaveResult struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Profile *db.Profile `json:"profile,omitempty"`
}

// Service runs profile saves for authenticated owners.
type Service struct {
	store    Store
	cache    Revalidator
	validate *validator.Validate
}

func NewService(store Store, cache Revalidator) *Service {
	return &Service{
		store:    store,
		cache:    cache,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Save validates and upserts the owner's profile. The profile view is
// revalidated exactly once per call, whether the save succeeds or not.
func (s *Service) Save(ctx context.Context, ownerID uuid.UUID, input Input) SaveResult {
	defer s.cache.Revalidate("/profile")

	if err := s.validate.Struct(input); err != nil {
		log.Printf("profile validation failed for owner %s: %v", ownerID, err)
		return SaveResult{Success: false, Message: "Please fix the highlighted fields and try again."}
	}

	existing, err := s.store.GetProfileByOwnerID(ctx, ownerID)
	if err != nil {
		log.Printf("profile lookup failed for owner %s: %v", ownerID, err)
		return SaveResult{Success: false, Message: "Something went wrong while saving your profile."}
	}

	record := toRecord(ownerID, input)
	var saved *db.Profile
	if existing == nil {
		saved, err = s.store.CreateProfile(ctx, record)
	} else {
		record.ID = existing.ID
		saved, err = s.store.UpdateProfile(ctx, record)
	}
	if err != nil {
		log.Printf("profile save failed for owner %s: %v", ownerID, err)
		return SaveResult{Success: false, Message: "Something went wrong while saving your profile."}
	}

	return SaveResult{Success: true, Message: "Your profile has been saved.", Profile: saved}
}

// Get returns the owner's profile, or nil when none has been saved.
func (s *Service) Get(ctx context.Context, ownerID uuid.UUID) (*db.Profile, error) {
	return s.store.GetProfileByOwnerID(ctx, ownerID)
}

func toRecord(ownerID uuid.UUID, input Input) *db.Profile {
	record := &db.Profile{
		OwnerID:           ownerID,
		Email:             input.Email,
		FullName:          input.FullName,
		Phone:             input.Phone,
		Location:          input.Location,
		LinkedinURL:       input.LinkedinURL,
		WebsiteURL:        input.WebsiteURL,
		GithubURL:         input.GithubURL,
		CurrentJobTitle:   input.CurrentJobTitle,
		YearsOfExperience: input.YearsOfExperience,
		Bio:               input.Bio,
		Skills:            input.Skills,
		Achievements:      input.Achievements,
	}
	for _, exp := range input.WorkExperience {
		record.WorkExperience = append(record.WorkExperience, db.WorkExperience{
			Title:     exp.Title,
			Company:   exp.Company,
			StartDate: exp.StartDate,
			EndDate:   exp.EndDate,
			Summary:   exp.Summary,
		})
	}
	return record
}

// Package letters implements the cover-letter workflows: generate a
// letter from the saved profile and a job posting, regenerate it with
// revised inputs, and delete it.
package letters

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/cover-letter-studio/internal/db"
	"github.com/jonathan/cover-letter-studio/internal/llm"
)

// ErrInvalidInput marks errors caused by the caller's posting details.
// Everything else the workflows return is a terminal failure; the HTTP
// layer classifies with errors.Is (db.ErrNotFound for missing letters).
var ErrInvalidInput = errors.New("invalid input")

// Store is the slice of the database layer the workflows need.
type Store interface {
	GetProfileByOwnerID(ctx context.Context, ownerID uuid.UUID) (*db.Profile, error)
	CreateCoverLetter(ctx context.Context, letter *db.CoverLetter) (*db.CoverLetter, error)
	GetCoverLetter(ctx context.Context, id, ownerID uuid.UUID) (*db.CoverLetter, error)
	UpdateCoverLetter(ctx context.Context, letter *db.CoverLetter) (*db.CoverLetter, error)
	DeleteCoverLetter(ctx context.Context, id, ownerID uuid.UUID) error
	ListCoverLetters(ctx context.Context, ownerID uuid.UUID) ([]db.CoverLetter, error)
}

// Revalidator invalidates cached views by path prefix.
type Revalidator interface {
	Revalidate(path string)
}

// Service runs letter generation against a profile store and an LLM.
type Service struct {
	store    Store
	client   llm.Client
	cache    Revalidator
	validate *validator.Validate
}

func NewService(store Store, client llm.Client, cache Revalidator) *Service {
	return &Service{
		store:    store,
		client:   client,
		cache:    cache,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Generate writes a new letter for the posting, drawing on the owner's
// profile when one exists. Nothing is persisted when the model returns
// no usable text.
// The letters view is revalidated only after a successful save.
func (s *Service) Generate(ctx context.Context, ownerID uuid.UUID, input GenerateInput) (*db.CoverLetter, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// A missing profile is fine; the prompt just omits the candidate section.
	profile, err := s.store.GetProfileByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	content, err := s.compose(ctx, input, profile)
	if err != nil {
		return nil, err
	}

	var profileID *uuid.UUID
	if profile != nil {
		profileID = &profile.ID
	}
	letter := &db.CoverLetter{
		OwnerID:                ownerID,
		ProfileID:              profileID,
		JobTitle:               input.JobTitle,
		CompanyName:            input.CompanyName,
		JobDescription:         input.JobDescription,
		AdditionalInstructions: input.AdditionalInstructions,
		Content:                content,
	}
	saved, err := s.store.CreateCoverLetter(ctx, letter)
	if err != nil {
		return nil, fmt.Errorf("failed to save cover letter: %w", err)
	}

	s.cache.Revalidate("/cover")
	return saved, nil
}

// Edit regenerates an existing letter from the revised posting details.
// The stored content is replaced wholesale; there is no partial patch.
func (s *Service) Edit(ctx context.Context, ownerID, letterID uuid.UUID, input EditInput) (*db.CoverLetter, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	existing, err := s.store.GetCoverLetter(ctx, letterID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cover letter: %w", err)
	}
	if existing == nil {
		return nil, fmt.Errorf("cover letter %s: %w", letterID, db.ErrNotFound)
	}

	profile, err := s.store.GetProfileByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	content, err := s.compose(ctx, GenerateInput(input), profile)
	if err != nil {
		return nil, err
	}

	existing.JobTitle = input.JobTitle
	existing.CompanyName = input.CompanyName
	existing.JobDescription = input.JobDescription
	existing.AdditionalInstructions = input.AdditionalInstructions
	existing.Content = content

	updated, err := s.store.UpdateCoverLetter(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("failed to update cover letter: %w", err)
	}

	s.cache.Revalidate("/cover")
	return updated, nil
}

// Delete removes an owner's letter.
func (s *Service) Delete(ctx context.Context, ownerID, letterID uuid.UUID) error {
	if err := s.store.DeleteCoverLetter(ctx, letterID, ownerID); err != nil {
		return err
	}
	s.cache.Revalidate("/cover")
	return nil
}

// List returns the owner's letters, newest first.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]db.CoverLetter, error) {
	return s.store.ListCoverLetters(ctx, ownerID)
}

func (s *Service) compose(ctx context.Context, input GenerateInput, profile *db.Profile) (string, error) {
	prompt, err := ComposePrompt(input, profile)
	if err != nil {
		return "", err
	}

	content, err := s.client.GenerateContent(ctx, prompt, llm.TierStandard)
	if err != nil {
		return "", fmt.Errorf("failed to generate cover letter: %w", err)
	}
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("model returned an empty cover letter")
	}
	return content, nil
}

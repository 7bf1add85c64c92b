package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrNotFound reports an owner-scoped write that matched no row. Callers
// classify it with errors.Is.
var ErrNotFound = errors.New("not found")

// CreateCoverLetter persists a generated letter and returns it with its
// assigned ID and timestamps.
func (db *DB) CreateCoverLetter(ctx context.Context, letter *CoverLetter) (*CoverLetter, error) {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO cover_letters (owner_id, profile_id, job_title, company_name,
			job_description, additional_instructions, content)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		letter.OwnerID, letter.ProfileID, letter.JobTitle, letter.CompanyName,
		letter.JobDescription, letter.AdditionalInstructions, letter.Content,
	).Scan(&letter.ID, &letter.CreatedAt, &letter.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create cover letter: %w", err)
	}
	return letter, nil
}

// GetCoverLetter retrieves one letter scoped to its owner. Returns nil
// when the letter does not exist or belongs to someone else.
func (db *DB) GetCoverLetter(ctx context.Context, id, ownerID uuid.UUID) (*CoverLetter, error) {
	var letter CoverLetter
	err := db.pool.QueryRow(ctx,
		`SELECT id, owner_id, profile_id, job_title, company_name, job_description,
			additional_instructions, content, created_at, updated_at
		 FROM cover_letters WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	).Scan(&letter.ID, &letter.OwnerID, &letter.ProfileID, &letter.JobTitle,
		&letter.CompanyName, &letter.JobDescription, &letter.AdditionalInstructions,
		&letter.Content, &letter.CreatedAt, &letter.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cover letter: %w", err)
	}
	return &letter, nil
}

// UpdateCoverLetter rewrites the inputs and content of an existing
// letter, scoped to its owner.
func (db *DB) UpdateCoverLetter(ctx context.Context, letter *CoverLetter) (*CoverLetter, error) {
	err := db.pool.QueryRow(ctx,
		`UPDATE cover_letters SET job_title = $3, company_name = $4,
			job_description = $5, additional_instructions = $6, content = $7,
			updated_at = NOW()
		 WHERE id = $1 AND owner_id = $2
		 RETURNING created_at, updated_at`,
		letter.ID, letter.OwnerID, letter.JobTitle, letter.CompanyName,
		letter.JobDescription, letter.AdditionalInstructions, letter.Content,
	).Scan(&letter.CreatedAt, &letter.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("cover letter %s: %w", letter.ID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update cover letter: %w", err)
	}
	return letter, nil
}

// DeleteCoverLetter removes a letter scoped to its owner. Deleting a
// letter that does not exist is an error.
func (db *DB) DeleteCoverLetter(ctx context.Context, id, ownerID uuid.UUID) error {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM cover_letters WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete cover letter: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("cover letter %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListCoverLetters returns an owner's letters, newest first.
func (db *DB) ListCoverLetters(ctx context.Context, ownerID uuid.UUID) ([]CoverLetter, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, owner_id, profile_id, job_title, company_name, job_description,
			additional_instructions, content, created_at, updated_at
		 FROM cover_letters WHERE owner_id = $1
		 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cover letters: %w", err)
	}
	defer rows.Close()

	var letters []CoverLetter
	for rows.Next() {
		var letter CoverLetter
		if err := rows.Scan(&letter.ID, &letter.OwnerID, &letter.ProfileID,
			&letter.JobTitle, &letter.CompanyName, &letter.JobDescription,
			&letter.AdditionalInstructions, &letter.Content,
			&letter.CreatedAt, &letter.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cover letter: %w", err)
		}
		letters = append(letters, letter)
	}
	return letters, rows.Err()
}

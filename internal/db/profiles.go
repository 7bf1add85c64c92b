package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const profileColumns = `id, owner_id, email, full_name, phone, location,
	linkedin_url, website_url, github_url, current_job_title,
	years_of_experience, bio, skills, achievements, created_at, updated_at`

// GetProfileByOwnerID retrieves a profile with its work-experience
// children ordered by start date descending. Returns nil when absent.
func (db *DB) GetProfileByOwnerID(ctx context.Context, ownerID uuid.UUID) (*Profile, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE owner_id = $1`, ownerID)
	return db.scanProfile(ctx, row)
}

// GetProfileByEmail retrieves a profile by its email, children included.
func (db *DB) GetProfileByEmail(ctx context.Context, email string) (*Profile, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE email = $1`, email)
	return db.scanProfile(ctx, row)
}

// ProfileExists reports whether the owner has saved a profile.
func (db *DB) ProfileExists(ctx context.Context, ownerID uuid.UUID) (bool, error) {
	var exists bool
	err := db.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM profiles WHERE owner_id = $1)`, ownerID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check profile existence: %w", err)
	}
	return exists, nil
}

// CreateProfile inserts a new profile together with its work-experience
// children in one transaction and returns the stored record.
func (db *DB) CreateProfile(ctx context.Context, p *Profile) (*Profile, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	var profileID uuid.UUID
	err = tx.QueryRow(ctx,
		`INSERT INTO profiles (owner_id, email, full_name, phone, location,
			linkedin_url, website_url, github_url, current_job_title,
			years_of_experience, bio, skills, achievements)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id`,
		p.OwnerID, p.Email, p.FullName, p.Phone, p.Location,
		p.LinkedinURL, p.WebsiteURL, p.GithubURL, p.CurrentJobTitle,
		p.YearsOfExperience, p.Bio, p.Skills, p.Achievements,
	).Scan(&profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	if err := insertWorkExperience(ctx, tx, profileID, p.WorkExperience); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit profile: %w", err)
	}

	return db.GetProfileByOwnerID(ctx, p.OwnerID)
}

// UpdateProfile replaces every scalar field and the entire work-experience
// child set (delete-all then recreate) in one transaction, then returns
// the stored record. Replace-all is deliberate; children are never merged.
func (db *DB) UpdateProfile(ctx context.Context, p *Profile) (*Profile, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	var profileID uuid.UUID
	err = tx.QueryRow(ctx,
		`UPDATE profiles SET full_name = $2, phone = $3, location = $4,
			linkedin_url = $5, website_url = $6, github_url = $7,
			current_job_title = $8, years_of_experience = $9, bio = $10,
			skills = $11, achievements = $12, updated_at = NOW()
		 WHERE owner_id = $1
		 RETURNING id`,
		p.OwnerID, p.FullName, p.Phone, p.Location,
		p.LinkedinURL, p.WebsiteURL, p.GithubURL,
		p.CurrentJobTitle, p.YearsOfExperience, p.Bio,
		p.Skills, p.Achievements,
	).Scan(&profileID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("profile not found for owner %s", p.OwnerID)
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM work_experience WHERE profile_id = $1`, profileID); err != nil {
		return nil, fmt.Errorf("failed to clear work experience: %w", err)
	}
	if err := insertWorkExperience(ctx, tx, profileID, p.WorkExperience); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit profile: %w", err)
	}

	return db.GetProfileByOwnerID(ctx, p.OwnerID)
}

func insertWorkExperience(ctx context.Context, tx pgx.Tx, profileID uuid.UUID, entries []WorkExperience) error {
	for _, exp := range entries {
		_, err := tx.Exec(ctx,
			`INSERT INTO work_experience (profile_id, title, company, start_date, end_date, summary)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			profileID, exp.Title, exp.Company, exp.StartDate, exp.EndDate, exp.Summary,
		)
		if err != nil {
			return fmt.Errorf("failed to insert work experience: %w", err)
		}
	}
	return nil
}

func (db *DB) scanProfile(ctx context.Context, row pgx.Row) (*Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.OwnerID, &p.Email, &p.FullName, &p.Phone,
		&p.Location, &p.LinkedinURL, &p.WebsiteURL, &p.GithubURL,
		&p.CurrentJobTitle, &p.YearsOfExperience, &p.Bio,
		&p.Skills, &p.Achievements, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	experience, err := db.loadWorkExperience(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.WorkExperience = experience
	return &p, nil
}

func (db *DB) loadWorkExperience(ctx context.Context, profileID uuid.UUID) ([]WorkExperience, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, profile_id, title, company, start_date, end_date, summary
		 FROM work_experience WHERE profile_id = $1
		 ORDER BY start_date DESC`, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load work experience: %w", err)
	}
	defer rows.Close()

	var entries []WorkExperience
	for rows.Next() {
		var exp WorkExperience
		if err := rows.Scan(&exp.ID, &exp.ProfileID, &exp.Title, &exp.Company,
			&exp.StartDate, &exp.EndDate, &exp.Summary); err != nil {
			return nil, fmt.Errorf("failed to scan work experience: %w", err)
		}
		entries = append(entries, exp)
	}
	return entries, rows.Err()
}

package db

import (
	"context"
	"fmt"
)

// schemaStatements are applied in order at startup. Each statement is
// idempotent so repeated boots are safe.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS profiles (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		owner_id UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		email TEXT NOT NULL UNIQUE,
		full_name TEXT NOT NULL,
		phone TEXT,
		location TEXT,
		linkedin_url TEXT,
		website_url TEXT,
		github_url TEXT,
		current_job_title TEXT,
		years_of_experience INT,
		bio TEXT,
		skills TEXT[] NOT NULL DEFAULT '{}',
		achievements TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS work_experience (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		profile_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		company TEXT NOT NULL,
		start_date DATE NOT NULL,
		end_date DATE,
		summary TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_work_experience_profile
		ON work_experience(profile_id, start_date DESC)`,
	`CREATE TABLE IF NOT EXISTS cover_letters (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		profile_id UUID REFERENCES profiles(id) ON DELETE SET NULL,
		job_title TEXT NOT NULL,
		company_name TEXT NOT NULL,
		job_description TEXT NOT NULL,
		additional_instructions TEXT,
		content TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cover_letters_owner
		ON cover_letters(owner_id, created_at DESC)`,
}

// EnsureSchema applies the schema DDL. Called once at server startup.
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

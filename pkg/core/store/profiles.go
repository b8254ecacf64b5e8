// Package store persists assembled firm profiles to Postgres so repeated
// scouting runs can diff against what was seen before.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProfileRepo provides storage for firm profiles.
type ProfileRepo struct {
	pool *pgxpool.Pool
}

// Open connects to Postgres and returns a repository.
func Open(ctx context.Context, databaseURL string) (*ProfileRepo, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &ProfileRepo{pool: pool}, nil
}

// NewProfileRepo wraps an existing pool.
func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

// Init creates the profiles table if it does not exist.
func (r *ProfileRepo) Init(ctx context.Context) error {
	if r.pool == nil {
		return fmt.Errorf("database pool not configured")
	}
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS vc_firm_profiles (
			id UUID PRIMARY KEY,
			cik TEXT NOT NULL UNIQUE,
			firm_name TEXT NOT NULL,
			profile JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create profiles table: %w", err)
	}
	return nil
}

// SaveProfile upserts a firm profile keyed by CIK. The profile payload is
// stored as JSONB so its shape can evolve without migrations.
func (r *ProfileRepo) SaveProfile(ctx context.Context, cik, firmName string, profile any) error {
	if r.pool == nil {
		return fmt.Errorf("database pool not configured")
	}

	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	query := `
		INSERT INTO vc_firm_profiles (id, cik, firm_name, profile)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cik)
		DO UPDATE SET
			firm_name = EXCLUDED.firm_name,
			profile = EXCLUDED.profile,
			updated_at = NOW()
	`
	if _, err := r.pool.Exec(ctx, query, uuid.New(), cik, firmName, payload); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// StoredProfile is a persisted profile row.
type StoredProfile struct {
	CIK       string
	FirmName  string
	Profile   json.RawMessage
	UpdatedAt time.Time
}

// LoadProfile fetches a profile by CIK. Returns nil when none is stored.
func (r *ProfileRepo) LoadProfile(ctx context.Context, cik string) (*StoredProfile, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database pool not configured")
	}

	var p StoredProfile
	err := r.pool.QueryRow(ctx,
		`SELECT cik, firm_name, profile, updated_at FROM vc_firm_profiles WHERE cik = $1`, cik,
	).Scan(&p.CIK, &p.FirmName, &p.Profile, &p.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return &p, nil
}

// ListProfiles returns the most recently updated profiles.
func (r *ProfileRepo) ListProfiles(ctx context.Context, limit int) ([]StoredProfile, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database pool not configured")
	}

	rows, err := r.pool.Query(ctx,
		`SELECT cik, firm_name, profile, updated_at FROM vc_firm_profiles ORDER BY updated_at DESC LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var out []StoredProfile
	for rows.Next() {
		var p StoredProfile
		if err := rows.Scan(&p.CIK, &p.FirmName, &p.Profile, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Close releases the underlying pool.
func (r *ProfileRepo) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

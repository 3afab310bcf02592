package postgres

import (
	"context"
	"errors"
	"fmt"

	"go-jobseeker-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type profileRepo struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) domain.ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	query := `
		SELECT
			id, user_id, COALESCE(target_role, ''), experience_years, COALESCE(bio, ''),
			remote_only, COALESCE(preferred_location, ''), min_salary,
			COALESCE(github_profile, ''), COALESCE(linkedin_profile, ''),
			COALESCE(profile_picture_url, ''), COALESCE(resume_url, ''),
			created_at, updated_at
		FROM profiles WHERE user_id = $1`

	var p domain.Profile
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.ID, &p.UserID, &p.TargetRole, &p.ExperienceYears, &p.Bio,
		&p.RemoteOnly, &p.PreferredLocation, &p.MinSalary,
		&p.GithubProfile, &p.LinkedinProfile,
		&p.ProfilePictureURL, &p.ResumeURL,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	skillsQuery := `
		SELECT s.id, s.name
		FROM profile_skills ps
		JOIN skills s ON ps.skill_id = s.id
		WHERE ps.profile_id = $1
		ORDER BY s.name`

	rows, err := r.db.Query(ctx, skillsQuery, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile skills: %w", err)
	}
	defer rows.Close()

	p.Skills = []domain.Skill{}
	for rows.Next() {
		var s domain.Skill
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		p.Skills = append(p.Skills, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *profileRepo) Create(ctx context.Context, profile *domain.Profile) error {
	query := `
		INSERT INTO profiles (
			user_id, target_role, experience_years, bio, remote_only,
			preferred_location, min_salary, github_profile, linkedin_profile,
			profile_picture_url, resume_url, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		profile.UserID, profile.TargetRole, profile.ExperienceYears, profile.Bio,
		profile.RemoteOnly, profile.PreferredLocation, profile.MinSalary,
		profile.GithubProfile, profile.LinkedinProfile,
		profile.ProfilePictureURL, profile.ResumeURL,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			// Concurrent first creation for the same user lost the race
			return fmt.Errorf("profile for user %s: %w", profile.UserID, domain.ErrDuplicate)
		}
		return err
	}
	return nil
}

func (r *profileRepo) Update(ctx context.Context, profile *domain.Profile) error {
	_, err := r.db.Exec(ctx, updateProfileQuery, profileUpdateArgs(profile)...)
	return err
}

func (r *profileRepo) UpdateWithSkills(ctx context.Context, profile *domain.Profile, skillIDs []int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, updateProfileQuery, profileUpdateArgs(profile)...); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	// Replace the pivot wholesale. Skill rows themselves are shared and
	// never deleted here.
	if _, err := tx.Exec(ctx, `DELETE FROM profile_skills WHERE profile_id = $1`, profile.ID); err != nil {
		return fmt.Errorf("failed to clean profile skills: %w", err)
	}

	if len(skillIDs) > 0 {
		insert := `INSERT INTO profile_skills (profile_id, skill_id) SELECT $1, unnest($2::bigint[])`
		if _, err := tx.Exec(ctx, insert, profile.ID, pq.Array(skillIDs)); err != nil {
			return fmt.Errorf("failed to insert profile skills: %w", err)
		}
	}

	return tx.Commit(ctx)
}

const updateProfileQuery = `
	UPDATE profiles SET
		target_role = $1, experience_years = $2, bio = $3, remote_only = $4,
		preferred_location = $5, min_salary = $6, github_profile = $7,
		linkedin_profile = $8, profile_picture_url = $9, resume_url = $10,
		updated_at = NOW()
	WHERE id = $11`

func profileUpdateArgs(p *domain.Profile) []any {
	return []any{
		p.TargetRole, p.ExperienceYears, p.Bio, p.RemoteOnly,
		p.PreferredLocation, p.MinSalary, p.GithubProfile,
		p.LinkedinProfile, p.ProfilePictureURL, p.ResumeURL,
		p.ID,
	}
}

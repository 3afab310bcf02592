package postgres

import (
	"context"
	"errors"
	"fmt"

	"go-jobseeker-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type skillRepo struct {
	db *pgxpool.Pool
}

func NewSkillRepository(db *pgxpool.Pool) domain.SkillRepository {
	return &skillRepo{db: db}
}

func (r *skillRepo) GetByName(ctx context.Context, name string) (*domain.Skill, error) {
	query := `SELECT id, name FROM skills WHERE name = $1`
	var s domain.Skill
	err := r.db.QueryRow(ctx, query, name).Scan(&s.ID, &s.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *skillRepo) Create(ctx context.Context, skill *domain.Skill) error {
	query := `INSERT INTO skills (name) VALUES ($1) RETURNING id`
	err := r.db.QueryRow(ctx, query, skill.Name).Scan(&skill.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			// Another request created the same name first
			return fmt.Errorf("skill %q: %w", skill.Name, domain.ErrDuplicate)
		}
		return err
	}
	return nil
}

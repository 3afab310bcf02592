package usecase

import (
	"context"
	"errors"
	"strings"

	"go-jobseeker-backend/internal/domain"
	"go-jobseeker-backend/pkg/apperror"
)

type skillRegistry struct {
	repo domain.SkillRepository
}

func NewSkillRegistry(repo domain.SkillRepository) domain.SkillRegistry {
	return &skillRegistry{repo: repo}
}

// Resolve maps a free-text skill name to its canonical record, creating it
// on first reference. Names are trimmed but not case-folded: "Java" and
// "java" are distinct skills.
func (r *skillRegistry) Resolve(ctx context.Context, rawName string) (*domain.Skill, error) {
	name := strings.TrimSpace(rawName)
	if name == "" {
		return nil, apperror.BadRequest("Skill name cannot be empty")
	}

	skill, err := r.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if skill != nil {
		return skill, nil
	}

	skill = &domain.Skill{Name: name}
	err = r.repo.Create(ctx, skill)
	if err == nil {
		return skill, nil
	}

	if errors.Is(err, domain.ErrDuplicate) {
		// Lost the creation race; the winning row must be visible now
		existing, lookupErr := r.repo.GetByName(ctx, name)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if existing != nil {
			return existing, nil
		}
		return nil, apperror.Internal(err)
	}
	return nil, err
}

// ResolveAll resolves every entry, deduplicating inputs that collide after
// trimming. Blank entries are dropped. The result is never larger than the
// input.
func (r *skillRegistry) ResolveAll(ctx context.Context, rawNames []string) ([]domain.Skill, error) {
	skills := make([]domain.Skill, 0, len(rawNames))
	seen := make(map[string]bool, len(rawNames))

	for _, raw := range rawNames {
		name := strings.TrimSpace(raw)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		skill, err := r.Resolve(ctx, name)
		if err != nil {
			return nil, err
		}
		skills = append(skills, *skill)
	}

	return skills, nil
}

package domain

import "context"

// Skill is the canonical record for a skill name, shared across profiles.
// Uniqueness is enforced on the trimmed spelling; rows are never deleted.
type Skill struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type SkillRepository interface {
	// GetByName returns (nil, nil) when no skill has that exact name.
	GetByName(ctx context.Context, name string) (*Skill, error)
	// Create inserts the skill and fills its ID. A uniqueness conflict is
	// reported as a wrapped ErrDuplicate.
	Create(ctx context.Context, skill *Skill) error
}

// SkillRegistry deduplicates free-text skill names into canonical records.
type SkillRegistry interface {
	Resolve(ctx context.Context, rawName string) (*Skill, error)
	ResolveAll(ctx context.Context, rawNames []string) ([]Skill, error)
}

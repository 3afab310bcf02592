package domain

import (
	"context"
	"time"
)

type Profile struct {
	ID                int64     `json:"id"`
	UserID            string    `json:"user_id"`
	TargetRole        string    `json:"target_role"`
	ExperienceYears   int       `json:"experience_years"`
	Bio               string    `json:"bio"`
	RemoteOnly        bool      `json:"remote_only"`
	PreferredLocation string    `json:"preferred_location"`
	MinSalary         int       `json:"min_salary"`
	GithubProfile     string    `json:"github_profile"`
	LinkedinProfile   string    `json:"linkedin_profile"`
	ProfilePictureURL string    `json:"profile_picture_url"`
	ResumeURL         string    `json:"resume_url"`
	Skills            []Skill   `json:"skills"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ProfileUpdate is a partial update payload. Pointer fields track presence:
// nil means "leave the stored value untouched", a non-nil pointer overwrites
// unconditionally, including with the zero value. Skills is special - nil
// leaves the skill set alone, a non-nil empty slice detaches every skill.
type ProfileUpdate struct {
	TargetRole        *string   `json:"target_role" validate:"omitempty,max=100"`
	ExperienceYears   *int      `json:"experience_years" validate:"omitempty,gte=0"`
	Bio               *string   `json:"bio" validate:"omitempty,max=500"`
	RemoteOnly        *bool     `json:"remote_only"`
	PreferredLocation *string   `json:"preferred_location" validate:"omitempty,max=100"`
	MinSalary         *int      `json:"min_salary" validate:"omitempty,gte=0"`
	GithubProfile     *string   `json:"github_profile" validate:"omitempty,url"`
	LinkedinProfile   *string   `json:"linkedin_profile" validate:"omitempty,url"`
	Skills            *[]string `json:"skills"`
	// User-level fields, applied to the user record rather than the profile
	FullName    *string `json:"full_name" validate:"omitempty,max=100"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=30"`
}

// Apply merges the scalar fields of the update into the profile. Skill
// resolution happens in the service layer, so Skills is not touched here.
func (p *Profile) Apply(update ProfileUpdate) {
	if update.TargetRole != nil {
		p.TargetRole = *update.TargetRole
	}
	if update.ExperienceYears != nil {
		p.ExperienceYears = *update.ExperienceYears
	}
	if update.Bio != nil {
		p.Bio = *update.Bio
	}
	if update.RemoteOnly != nil {
		p.RemoteOnly = *update.RemoteOnly
	}
	if update.PreferredLocation != nil {
		p.PreferredLocation = *update.PreferredLocation
	}
	if update.MinSalary != nil {
		p.MinSalary = *update.MinSalary
	}
	if update.GithubProfile != nil {
		p.GithubProfile = *update.GithubProfile
	}
	if update.LinkedinProfile != nil {
		p.LinkedinProfile = *update.LinkedinProfile
	}
}

// ProfileView is the flattened read model combining user and profile data.
// Profile fields default to zero values while no profile row exists.
type ProfileView struct {
	FullName          string   `json:"full_name"`
	Email             string   `json:"email"`
	PhoneNumber       string   `json:"phone_number"`
	TargetRole        string   `json:"target_role"`
	ExperienceYears   int      `json:"experience_years"`
	Bio               string   `json:"bio"`
	Skills            []string `json:"skills"`
	RemoteOnly        bool     `json:"remote_only"`
	PreferredLocation string   `json:"preferred_location"`
	MinSalary         int      `json:"min_salary"`
	GithubProfile     string   `json:"github_profile"`
	LinkedinProfile   string   `json:"linkedin_profile"`
	ProfilePictureURL string   `json:"profile_picture_url"`
	ResumeURL         string   `json:"resume_url"`
}

// AssetKind selects which binary asset an upload targets.
type AssetKind string

const (
	AssetPicture AssetKind = "picture"
	AssetResume  AssetKind = "resume"
)

type ProfileRepository interface {
	// GetByUserID returns (nil, nil) when the user has no profile row yet.
	// The returned profile includes its resolved skill set.
	GetByUserID(ctx context.Context, userID string) (*Profile, error)
	// Create inserts a new profile and fills its ID. A concurrent first
	// creation for the same user surfaces as a wrapped ErrDuplicate.
	Create(ctx context.Context, profile *Profile) error
	// Update persists the profile's scalar fields, leaving the skill
	// pivot untouched.
	Update(ctx context.Context, profile *Profile) error
	// UpdateWithSkills persists scalar fields and replaces the skill
	// pivot in a single transaction.
	UpdateWithSkills(ctx context.Context, profile *Profile, skillIDs []int64) error
}

type ProfileUsecase interface {
	GetProfile(ctx context.Context, userID string) (*ProfileView, error)
	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) error
	AttachAsset(ctx context.Context, userID string, kind AssetKind, data []byte, originalName string) (string, error)
}

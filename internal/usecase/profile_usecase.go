package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"go-jobseeker-backend/internal/domain"
	"go-jobseeker-backend/pkg/apperror"
	"go-jobseeker-backend/pkg/blobstore"

	"github.com/go-playground/validator/v10"
)

type profileUsecase struct {
	userRepo    domain.UserRepository
	profileRepo domain.ProfileRepository
	skills      domain.SkillRegistry
	blob        *blobstore.Store
	validate    *validator.Validate
}

func NewProfileUsecase(
	userRepo domain.UserRepository,
	profileRepo domain.ProfileRepository,
	skills domain.SkillRegistry,
	blob *blobstore.Store,
	validate *validator.Validate,
) domain.ProfileUsecase {
	return &profileUsecase{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		skills:      skills,
		blob:        blob,
		validate:    validate,
	}
}

func (u *profileUsecase) GetProfile(ctx context.Context, userID string) (*domain.ProfileView, error) {
	user, err := u.resolveUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &domain.ProfileView{
		FullName:    user.FullName,
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
		Skills:      []string{},
	}

	profile, err := u.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	// Profile fields stay at their zero values until the first write
	// creates the row
	if profile != nil {
		view.TargetRole = profile.TargetRole
		view.ExperienceYears = profile.ExperienceYears
		view.Bio = profile.Bio
		view.RemoteOnly = profile.RemoteOnly
		view.PreferredLocation = profile.PreferredLocation
		view.MinSalary = profile.MinSalary
		view.GithubProfile = profile.GithubProfile
		view.LinkedinProfile = profile.LinkedinProfile
		view.ProfilePictureURL = profile.ProfilePictureURL
		view.ResumeURL = profile.ResumeURL
		for _, s := range profile.Skills {
			view.Skills = append(view.Skills, s.Name)
		}
	}

	return view, nil
}

func (u *profileUsecase) UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) error {
	if err := u.validate.Struct(update); err != nil {
		return apperror.BadRequest(err.Error())
	}

	user, err := u.resolveUser(ctx, userID)
	if err != nil {
		return err
	}

	// Resolve skills before any user/profile write so a registry failure
	// aborts the whole update
	replaceSkills := update.Skills != nil
	var resolved []domain.Skill
	if replaceSkills {
		resolved, err = u.skills.ResolveAll(ctx, *update.Skills)
		if err != nil {
			return err
		}
	}

	user.Apply(update)
	if err := u.userRepo.Update(ctx, user); err != nil {
		return err
	}

	profile, err := u.getOrCreateProfile(ctx, userID)
	if err != nil {
		return err
	}
	profile.Apply(update)

	if !replaceSkills {
		return u.profileRepo.Update(ctx, profile)
	}

	profile.Skills = resolved
	skillIDs := make([]int64, len(resolved))
	for i, s := range resolved {
		skillIDs[i] = s.ID
	}
	return u.profileRepo.UpdateWithSkills(ctx, profile, skillIDs)
}

func (u *profileUsecase) AttachAsset(ctx context.Context, userID string, kind domain.AssetKind, data []byte, originalName string) (string, error) {
	if len(data) == 0 {
		return "", apperror.BadRequest("No file uploaded")
	}

	var subDir string
	switch kind {
	case domain.AssetPicture:
		subDir = blobstore.DirProfilePictures
	case domain.AssetResume:
		subDir = blobstore.DirResumes
	default:
		return "", apperror.BadRequest(fmt.Sprintf("Unknown asset kind: %s", kind))
	}

	if _, err := u.resolveUser(ctx, userID); err != nil {
		return "", err
	}

	profile, err := u.getOrCreateProfile(ctx, userID)
	if err != nil {
		return "", err
	}

	path, err := u.blob.Save(subDir, originalName, bytes.NewReader(data))
	if err != nil {
		return "", apperror.Internal(err)
	}

	// The previously referenced blob, if any, is left in place; cleanup is
	// an operational concern, not handled here
	switch kind {
	case domain.AssetPicture:
		profile.ProfilePictureURL = path
	case domain.AssetResume:
		profile.ResumeURL = path
	}

	if err := u.profileRepo.Update(ctx, profile); err != nil {
		return "", err
	}

	return path, nil
}

// resolveUser loads the user backing an authenticated principal id. A
// missing row is an invariant violation - the id came from a verified
// session - so it surfaces as an internal error, not a client error.
func (u *profileUsecase) resolveUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.Internal(fmt.Errorf("user %s has a session but no user record", userID))
	}
	return user, nil
}

// getOrCreateProfile loads the user's profile, lazily inserting one on the
// first write. A concurrent first creation is resolved by re-fetching the
// row that won.
func (u *profileUsecase) getOrCreateProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	profile, err := u.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		return profile, nil
	}

	profile = &domain.Profile{UserID: userID, Skills: []domain.Skill{}}
	err = u.profileRepo.Create(ctx, profile)
	if err == nil {
		return profile, nil
	}

	if errors.Is(err, domain.ErrDuplicate) {
		existing, lookupErr := u.profileRepo.GetByUserID(ctx, userID)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if existing != nil {
			return existing, nil
		}
	}
	return nil, err
}

package usecase_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"go-jobseeker-backend/internal/domain"
	"go-jobseeker-backend/internal/usecase"
	"go-jobseeker-backend/pkg/apperror"
	"go-jobseeker-backend/pkg/blobstore"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock Repositories

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

type MockProfileRepo struct {
	mock.Mock
}

func (m *MockProfileRepo) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepo) Create(ctx context.Context, profile *domain.Profile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *MockProfileRepo) Update(ctx context.Context, profile *domain.Profile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *MockProfileRepo) UpdateWithSkills(ctx context.Context, profile *domain.Profile, skillIDs []int64) error {
	return m.Called(ctx, profile, skillIDs).Error(0)
}

type MockSkillRegistry struct {
	mock.Mock
}

func (m *MockSkillRegistry) Resolve(ctx context.Context, rawName string) (*domain.Skill, error) {
	args := m.Called(ctx, rawName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Skill), args.Error(1)
}

func (m *MockSkillRegistry) ResolveAll(ctx context.Context, rawNames []string) ([]domain.Skill, error) {
	args := m.Called(ctx, rawNames)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Skill), args.Error(1)
}

func ptr[T any](v T) *T { return &v }

func newTestUsecase(t *testing.T, userRepo *MockUserRepo, profileRepo *MockProfileRepo, registry *MockSkillRegistry) (domain.ProfileUsecase, *blobstore.Store) {
	t.Helper()
	blob, err := blobstore.New(t.TempDir())
	require.NoError(t, err)
	return usecase.NewProfileUsecase(userRepo, profileRepo, registry, blob, validator.New()), blob
}

func testUser() *domain.User {
	return &domain.User{
		ID:          "user-1",
		Email:       "jane@example.com",
		FullName:    "Jane Doe",
		PhoneNumber: "555-0101",
	}
}

func TestGetProfileWithoutProfileRow(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepo)
	profileRepo := new(MockProfileRepo)
	uc, _ := newTestUsecase(t, userRepo, profileRepo, new(MockSkillRegistry))

	userRepo.On("GetByID", ctx, "user-1").Return(testUser(), nil)
	profileRepo.On("GetByUserID", ctx, "user-1").Return(nil, nil)

	view, err := uc.GetProfile(ctx, "user-1")
	require.NoError(t, err)

	// User fields populated, profile fields at zero values
	assert.Equal(t, "Jane Doe", view.FullName)
	assert.Equal(t, "jane@example.com", view.Email)
	assert.Equal(t, "", view.TargetRole)
	assert.Equal(t, 0, view.ExperienceYears)
	assert.False(t, view.RemoteOnly)
	assert.NotNil(t, view.Skills)
	assert.Empty(t, view.Skills)
	// Reads never create a profile row
	profileRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetProfileMissingUserIsInternal(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepo)
	uc, _ := newTestUsecase(t, userRepo, new(MockProfileRepo), new(MockSkillRegistry))

	userRepo.On("GetByID", ctx, "ghost").Return(nil, nil)

	_, err := uc.GetProfile(ctx, "ghost")
	require.Error(t, err)

	// The id came from a verified session, so a missing user record is a
	// server-side invariant violation, not a client error
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusInternalServerError, appErr.Code)
}

func TestGetProfileFlattensUserAndProfile(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepo)
	profileRepo := new(MockProfileRepo)
	uc, _ := newTestUsecase(t, userRepo, profileRepo, new(MockSkillRegistry))

	userRepo.On("GetByID", ctx, "user-1").Return(testUser(), nil)
	profileRepo.On("GetByUserID", ctx, "user-1").Return(&domain.Profile{
		ID:                3,
		UserID:            "user-1",
		TargetRole:        "Backend Engineer",
		ExperienceYears:   5,
		Bio:               "hello",
		RemoteOnly:        true,
		MinSalary:         90000,
		ProfilePictureURL: "/uploads/profile-pictures/x.jpg",
		Skills:            []domain.Skill{{ID: 1, Name: "Go"}, {ID: 2, Name: "SQL"}},
	}, nil)

	view, err := uc.GetProfile(ctx, "user-1")
	require.NoError(t, err)

	assert.Equal(t, "Backend Engineer", view.TargetRole)
	assert.Equal(t, 5, view.ExperienceYears)
	assert.True(t, view.RemoteOnly)
	assert.Equal(t, []string{"Go", "SQL"}, view.Skills)
	assert.Equal(t, "/uploads/profile-pictures/x.jpg", view.ProfilePictureURL)
}

func TestUpdateProfileLazilyCreatesProfile(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepo)
	profileRepo := new(MockProfileRepo)
	registry := new(MockSkillRegistry)
	uc, _ := newTestUsecase(t, userRepo, profileRepo, registry)

	userRepo.On("GetByID", ctx, "user-1").Return(testUser(), nil)
	userRepo.On("Update", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

	// "Go" and "go " trim to distinct, case-sensitive canonical skills
	registry.On("ResolveAll", ctx, []string{"Go", "go "}).
		Return([]domain.Skill{{ID: 1, Name: "Go"}, {ID: 2, Name: "go"}}, nil)

	profileRepo.On("GetByUserID", ctx, "user-1").Return(nil, nil)
	profileRepo.On("Create", ctx, mock.AnythingOfType("*domain.Profile")).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Profile).ID = 10
	})
	profileRepo.On("UpdateWithSkills", ctx, mock.AnythingOfType("*domain.Profile"), []int64{1, 2}).Return(nil).Run(func(args mock.Arguments) {
		p := args.Get(1).(*domain.Profile)
		assert.Equal(t, "hi", p.Bio)
		assert.Equal(t, "user-1", p.UserID)
		assert.Len(t, p.Skills, 2)
	})

	update := domain.ProfileUpdate{
		Bio:    ptr("hi"),
		Skills: &[]string{"Go", "go "},
	}
	err := uc.UpdateProfile(ctx, "user-1", update)
	require.NoError(t, err)
	profileRepo.AssertExpectations(t)
}

func TestUpdateProfileZeroValueOverwrites(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepo)
	profileRepo := new(MockProfileRepo)
	registry := new(MockSkillRegistry)
	uc, _ := newTestUsecase(t, userRepo, profileRepo, registry)

	userRepo.On("GetByID", ctx, "user-1").Return(testUser(), nil)
	userRepo.On("Update", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

	existing := &domain.Profile{ID: 10, UserID: "user-1", ExperienceYears: 5, Bio: "keep me"}
	profileRepo.On("GetByUserID", ctx, "user-1").Return(existing, nil)
	profileRepo.On("Update", ctx, mock.AnythingOfType("*domain.Profile")).Return(nil).Run(func(args mock.Arguments) {
		p := args.Get(1).(*domain.Profile)
		// Present zero value is a real overwrite, not a skip
		assert.Equal(t, 0, p.ExperienceYears)
		assert.Equal(t, "keep me", p.Bio)
	})

	err := uc.UpdateProfile(ctx, "user-1", domain.ProfileUpdate{ExperienceYears: ptr(0)})
	require.NoError(t, err)

	// No skills field: the pivot is never touched and no resolution happens
	profileRepo.AssertNotCalled(t, "UpdateWithSkills", mock.Anything, mock.Anything, mock.Anything)
	registry.AssertNotCalled(t, "ResolveAll", mock.Anything, mock.Anything)
}

func TestUpdateProfileEmptySkillsDetachesAll(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepo)
	profileRepo := new(MockProfileRepo)
	registry := new(MockSkillRegistry)
	uc, _ := newTestUsecase(t, userRepo, profileRepo, registry)

	userRepo.On("GetByID", ctx, "user-1").Return(testUser(), nil)
	userRepo.On("Update", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

	registry.On("ResolveAll", ctx, []string{}).Return([]domain.Skill{}, nil)

	existing := &domain.Profile{ID: 10, UserID: "user-1", Skills: []domain.Skill{{ID: 1, Name: "Go"}}}
	profileRepo.On("GetByUserID", ctx, "user-1").Return(existing, nil)
	profileRepo.On("UpdateWithSkills", ctx, mock.AnythingOfType("*domain.Profile"), []int64{}).Return(nil).Run(func(args mock.Arguments) {
		assert.Empty(t, args.Get(1).(*domain.Profile).Skills)
	})

	err := uc.UpdateProfile(ctx, "user-1", domain.ProfileUpdate{Skills: &[]string{}})
	require.NoError(t, err)
	profileRepo.AssertExpectations(t)
}

func TestUpdateProfileUserFields(t *testing.T) {
	ctx := context.Background()

	t.Run("Present fields update the user record", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		profileRepo := new(MockProfileRepo)
		uc, _ := newTestUsecase(t, userRepo, profileRepo, new(MockSkillRegistry))

		userRepo.On("GetByID", ctx, "user-1").Return(testUser(), nil)
		userRepo.On("Update", ctx, mock.AnythingOfType("*domain.User")).Return(nil).Run(func(args mock.Arguments) {
			u := args.Get(1).(*domain.User)
			assert.Equal(t, "Jane Smith", u.FullName)
			assert.Equal(t, "555-0101", u.PhoneNumber)
		})
		profileRepo.On("GetByUserID", ctx, "user-1").Return(&domain.Profile{ID: 10, UserID: "user-1"}, nil)
		profileRepo.On("Update", ctx, mock.Anything).Return(nil)

		err := uc.UpdateProfile(ctx, "user-1", domain.ProfileUpdate{FullName: ptr("Jane Smith")})
		require.NoError(t, err)
		userRepo.AssertExpectations(t)
	})

	t.Run("Absent fields leave the user record alone", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		profileRepo := new(MockProfileRepo)
		uc, _ := newTestUsecase(t, userRepo, profileRepo, new(MockSkillRegistry))

		userRepo.On("GetByID", ctx, "user-1").Return(testUser(), nil)
		userRepo.On("Update", ctx, mock.AnythingOfType("*domain.User")).Return(nil).Run(func(args mock.Arguments) {
			u := args.Get(1).(*domain.User)
			assert.Equal(t, "Jane Doe", u.FullName)
		})
		profileRepo.On("GetByUserID", ctx, "user-1").Return(&domain.Profile{ID: 10, UserID: "user-1"}, nil)
		profileRepo.On("Update", ctx, mock.Anything).Return(nil)

		err := uc.UpdateProfile(ctx, "user-1", domain.ProfileUpdate{Bio: ptr("new bio")})
		require.NoError(t, err)
		userRepo.AssertExpectations(t)
	})
}

func TestUpdateProfileValidation(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepo)
	profileRepo := new(MockProfileRepo)
	uc, _ := newTestUsecase(t, userRepo, profileRepo, new(MockSkillRegistry))

	err := uc.UpdateProfile(ctx, "user-1", domain.ProfileUpdate{ExperienceYears: ptr(-1)})
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	// Validation failures abort before any persistence call
	userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	profileRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateProfileCreationRaceFallsBackToWinner(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepo)
	profileRepo := new(MockProfileRepo)
	uc, _ := newTestUsecase(t, userRepo, profileRepo, new(MockSkillRegistry))

	userRepo.On("GetByID", ctx, "user-1").Return(testUser(), nil)
	userRepo.On("Update", ctx, mock.Anything).Return(nil)

	winner := &domain.Profile{ID: 99, UserID: "user-1"}
	profileRepo.On("GetByUserID", ctx, "user-1").Return(nil, nil).Once()
	profileRepo.On("Create", ctx, mock.Anything).Return(domain.ErrDuplicate).Once()
	profileRepo.On("GetByUserID", ctx, "user-1").Return(winner, nil).Once()
	profileRepo.On("Update", ctx, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		assert.Equal(t, int64(99), args.Get(1).(*domain.Profile).ID)
	})

	err := uc.UpdateProfile(ctx, "user-1", domain.ProfileUpdate{Bio: ptr("hi")})
	require.NoError(t, err)
	profileRepo.AssertExpectations(t)
}

func TestAttachAssetEmptyUpload(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepo)
	profileRepo := new(MockProfileRepo)
	uc, _ := newTestUsecase(t, userRepo, profileRepo, new(MockSkillRegistry))

	_, err := uc.AttachAsset(ctx, "user-1", domain.AssetResume, []byte{}, "cv.pdf")
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	// Nothing stored, nothing persisted
	profileRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAttachAssetUnknownKind(t *testing.T) {
	uc, _ := newTestUsecase(t, new(MockUserRepo), new(MockProfileRepo), new(MockSkillRegistry))

	_, err := uc.AttachAsset(context.Background(), "user-1", domain.AssetKind("certificate"), []byte("x"), "x.pdf")
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
}

func TestAttachAssetStoresAndLinks(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name       string
		kind       domain.AssetKind
		category   string
		urlOf      func(p *domain.Profile) string
	}{
		{"picture", domain.AssetPicture, blobstore.DirProfilePictures, func(p *domain.Profile) string { return p.ProfilePictureURL }},
		{"resume", domain.AssetResume, blobstore.DirResumes, func(p *domain.Profile) string { return p.ResumeURL }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			userRepo := new(MockUserRepo)
			profileRepo := new(MockProfileRepo)
			uc, blob := newTestUsecase(t, userRepo, profileRepo, new(MockSkillRegistry))

			userRepo.On("GetByID", ctx, "user-1").Return(testUser(), nil)

			existing := &domain.Profile{ID: 10, UserID: "user-1"}
			profileRepo.On("GetByUserID", ctx, "user-1").Return(existing, nil)

			var linked string
			profileRepo.On("Update", ctx, mock.AnythingOfType("*domain.Profile")).Return(nil).Run(func(args mock.Arguments) {
				linked = tc.urlOf(args.Get(1).(*domain.Profile))
			})

			content := []byte("file body")
			path, err := uc.AttachAsset(ctx, "user-1", tc.kind, content, "upload.bin")
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(path, "/uploads/"+tc.category+"/"))
			assert.Equal(t, path, linked)

			// The stored bytes round-trip through the blob store
			storedName := strings.TrimPrefix(path, "/uploads/"+tc.category+"/")
			rc, err := blob.Open(tc.category, storedName)
			require.NoError(t, err)
			got, err := io.ReadAll(rc)
			rc.Close()
			require.NoError(t, err)
			assert.Equal(t, content, got)
		})
	}
}

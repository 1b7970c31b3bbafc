package service

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/logger"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeStorage struct {
	presignErr error
	deleted    []string
}

func (s *fakeStorage) GeneratePresignedUploadURL(_ context.Context, key, contentType string, _ time.Duration) (string, error) {
	if s.presignErr != nil {
		return "", s.presignErr
	}
	return "https://bucket.example.com/" + key + "?upload&type=" + contentType, nil
}

func (s *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	if s.presignErr != nil {
		return "", s.presignErr
	}
	return "https://bucket.example.com/" + key, nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return nil
}

func strPtr(v string) *string { return &v }

func TestUpdateProfile(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users, nil, logger.Nop())
	ctx := context.Background()
	u := users.add("Tomas", "tomas@example.com", domain.RoleTrainer)
	u.Profile.Phone = "555-0100"

	years := 7
	updated, err := svc.UpdateProfile(ctx, u.ID, ProfileUpdate{
		Name:            strPtr(" Tomas R. "),
		Specialty:       strPtr("Powerlifting"),
		ExperienceYears: &years,
	})
	require.NoError(t, err)
	assert.Equal(t, "Tomas R.", updated.Name)
	assert.Equal(t, "Powerlifting", updated.Profile.Specialty)
	assert.Equal(t, 7, updated.Profile.ExperienceYears)
	assert.Equal(t, "555-0100", updated.Profile.Phone, "fields not in the update are kept")

	negative := -1
	_, err = svc.UpdateProfile(ctx, u.ID, ProfileUpdate{ExperienceYears: &negative})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.UpdateProfile(ctx, u.ID, ProfileUpdate{Name: strPtr("  ")})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.UpdateProfile(ctx, primitive.NewObjectID(), ProfileUpdate{})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestListTrainers(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users, nil, logger.Nop())
	yoga := users.add("Yara", "yara@example.com", domain.RoleTrainer)
	yoga.Profile.Specialty = "Yoga"
	users.add("Boris", "boris@example.com", domain.RoleTrainer).Profile.Specialty = "Boxing"
	users.add("Carla", "carla@example.com", domain.RoleClient)

	all, err := svc.ListTrainers(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Boris", all[0].Name)

	filtered, err := svc.ListTrainers(context.Background(), " yoga ")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, yoga.ID, filtered[0].ID)
}

func TestAddClientByEmail(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users, nil, logger.Nop())
	ctx := context.Background()
	trainer := users.add("Tomas", "tomas@example.com", domain.RoleTrainer)
	other := users.add("Olga", "olga@example.com", domain.RoleTrainer)
	client := users.add("Carla", "carla@example.com", domain.RoleClient)

	added, err := svc.AddClientByEmail(ctx, trainer.ID, " CARLA@example.com ")
	require.NoError(t, err)
	require.NotNil(t, added.TrainerID)
	assert.Equal(t, trainer.ID, *added.TrainerID)

	// Adding the same client again is a no-op.
	_, err = svc.AddClientByEmail(ctx, trainer.ID, "carla@example.com")
	require.NoError(t, err)

	roster, err := svc.GetManagedClients(ctx, trainer.ID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, client.ID, roster[0].ID)

	_, err = svc.AddClientByEmail(ctx, other.ID, "carla@example.com")
	assert.ErrorIs(t, err, ErrClientAlreadyAssigned)

	_, err = svc.AddClientByEmail(ctx, trainer.ID, "olga@example.com")
	assert.ErrorIs(t, err, ErrNotAClient)

	_, err = svc.AddClientByEmail(ctx, trainer.ID, "ghost@example.com")
	assert.ErrorIs(t, err, ErrClientNotFound)

	_, err = svc.AddClientByEmail(ctx, trainer.ID, "")
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestProfileImageFlow(t *testing.T) {
	users := newFakeUserRepo()
	store := &fakeStorage{}
	svc := NewUserService(users, store, logger.Nop())
	ctx := context.Background()
	u := users.add("Carla", "carla@example.com", domain.RoleClient)

	_, err := svc.RequestProfileImageUpload(ctx, u.ID, "application/pdf")
	assert.ErrorIs(t, err, ErrInvalidContentType)

	upload, err := svc.RequestProfileImageUpload(ctx, u.ID, "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(upload.ObjectKey, "profiles/"+u.ID.Hex()+"/"))
	assert.True(t, strings.HasSuffix(upload.ObjectKey, ".png"))
	assert.Contains(t, upload.UploadURL, upload.ObjectKey)

	profile, err := svc.ConfirmProfileImage(ctx, u.ID, upload.ObjectKey)
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.example.com/"+upload.ObjectKey, profile.ProfileImageURL)
	assert.Empty(t, store.deleted)

	second, err := svc.RequestProfileImageUpload(ctx, u.ID, "image/jpeg")
	require.NoError(t, err)
	_, err = svc.ConfirmProfileImage(ctx, u.ID, second.ObjectKey)
	require.NoError(t, err)
	assert.Equal(t, []string{upload.ObjectKey}, store.deleted)

	fetched, err := svc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.example.com/"+second.ObjectKey, fetched.ProfileImageURL)
}

func TestRequestProfileImageUpload_ContentTypes(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users, &fakeStorage{}, logger.Nop())
	u := users.add("Carla", "carla@example.com", domain.RoleClient)

	tests := []struct {
		contentType string
		wantExt     string
		wantType    string
	}{
		{"image/jpeg", ".jpg", "image/jpeg"},
		{"IMAGE/PNG", ".png", "image/png"},
		{"image/svg+xml", ".svg", "image/svg+xml"},
		{"image/png; charset=binary", ".png", "image/png"},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			upload, err := svc.RequestProfileImageUpload(context.Background(), u.ID, tt.contentType)
			require.NoError(t, err)
			assert.True(t, strings.HasSuffix(upload.ObjectKey, tt.wantExt), upload.ObjectKey)
			assert.True(t, strings.HasSuffix(upload.UploadURL, "type="+tt.wantType), upload.UploadURL)
		})
	}

	for _, bad := range []string{"", "image/", "image", "image/x-unknown", "text/plain", "image/png; =broken"} {
		_, err := svc.RequestProfileImageUpload(context.Background(), u.ID, bad)
		assert.ErrorIs(t, err, ErrInvalidContentType, bad)
	}
}

func TestConfirmProfileImage_RejectsForeignKeys(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users, &fakeStorage{}, logger.Nop())
	u := users.add("Carla", "carla@example.com", domain.RoleClient)

	for _, key := range []string{
		"profiles/" + primitive.NewObjectID().Hex() + "/a.png",
		"profiles/" + u.ID.Hex() + "/../other/a.png",
		"a.png",
	} {
		_, err := svc.ConfirmProfileImage(context.Background(), u.ID, key)
		assert.ErrorIs(t, err, ErrInvalidObjectKey, key)
	}
}

func TestProfileImage_StorageProblems(t *testing.T) {
	users := newFakeUserRepo()
	u := users.add("Carla", "carla@example.com", domain.RoleClient)
	u.ProfileImageKey = "profiles/" + u.ID.Hex() + "/a.png"
	ctx := context.Background()

	disabled := NewUserService(users, nil, logger.Nop())
	_, err := disabled.RequestProfileImageUpload(ctx, u.ID, "image/png")
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	failing := NewUserService(users, &fakeStorage{presignErr: errors.New("expired credentials")}, logger.Nop())
	_, err = failing.RequestProfileImageUpload(ctx, u.ID, "image/png")
	assert.ErrorIs(t, err, ErrImageURLError)

	// A presign failure on read still returns the user.
	profile, err := failing.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, profile.ProfileImageURL)
}

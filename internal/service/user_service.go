package service

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/logger"
	"alcyxob/fitcoach/internal/repository"
	"alcyxob/fitcoach/internal/storage"
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrClientNotFound        = errors.New("client user not found")
	ErrClientAlreadyAssigned = errors.New("client is already assigned to a trainer")
	ErrInvalidContentType    = fmt.Errorf("%w: content type must be an image type", ErrValidationFailed)
	ErrInvalidObjectKey      = errors.New("object key does not belong to this user")
	ErrStorageUnavailable    = errors.New("object storage is not available")
	ErrImageURLError         = errors.New("failed to generate profile image URL")
)

const profileImagePrefix = "profiles"

// imageExtensions lists the accepted upload types and the key suffix for each.
var imageExtensions = map[string]string{
	"image/jpeg":    "jpg",
	"image/png":     "png",
	"image/gif":     "gif",
	"image/webp":    "webp",
	"image/avif":    "avif",
	"image/heic":    "heic",
	"image/heif":    "heif",
	"image/bmp":     "bmp",
	"image/tiff":    "tiff",
	"image/svg+xml": "svg",
}

// UserProfile is a user as shown to API callers, with a short-lived image URL.
type UserProfile struct {
	domain.User
	ProfileImageURL string
}

// ProfileUpdate carries the fields a caller wants to change; nil means keep.
type ProfileUpdate struct {
	Name            *string
	Bio             *string
	Phone           *string
	Specialty       *string
	ExperienceYears *int
	HourlyRateCents *int64
	Age             *int
	HeightCm        *float64
	WeightKg        *float64
	Goals           *string
}

type UploadURL struct {
	UploadURL string
	ObjectKey string
	ExpiresAt time.Time
}

type UserService interface {
	GetUser(ctx context.Context, userID primitive.ObjectID) (*UserProfile, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, update ProfileUpdate) (*UserProfile, error)
	ListTrainers(ctx context.Context, specialty string) ([]UserProfile, error)

	AddClientByEmail(ctx context.Context, trainerID primitive.ObjectID, clientEmail string) (*domain.User, error)
	GetManagedClients(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error)

	RequestProfileImageUpload(ctx context.Context, userID primitive.ObjectID, contentType string) (*UploadURL, error)
	ConfirmProfileImage(ctx context.Context, userID primitive.ObjectID, objectKey string) (*UserProfile, error)
}

type userService struct {
	userRepo    repository.UserRepository
	fileStorage storage.FileStorage // nil when storage is not configured
	log         *logger.Logger
}

func NewUserService(userRepo repository.UserRepository, fileStorage storage.FileStorage, log *logger.Logger) UserService {
	return &userService{
		userRepo:    userRepo,
		fileStorage: fileStorage,
		log:         log,
	}
}

func (s *userService) GetUser(ctx context.Context, userID primitive.ObjectID) (*UserProfile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.toProfile(ctx, user), nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, update ProfileUpdate) (*UserProfile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	name := user.Name
	if update.Name != nil {
		name = strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidationFailed)
		}
	}
	profile, err := applyProfileUpdate(user.Profile, update)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateProfile(ctx, userID, name, profile); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.Name = name
	user.Profile = profile
	return s.toProfile(ctx, user), nil
}

func applyProfileUpdate(p domain.Profile, u ProfileUpdate) (domain.Profile, error) {
	if u.Bio != nil {
		p.Bio = *u.Bio
	}
	if u.Phone != nil {
		p.Phone = *u.Phone
	}
	if u.Specialty != nil {
		p.Specialty = *u.Specialty
	}
	if u.Goals != nil {
		p.Goals = *u.Goals
	}
	if u.ExperienceYears != nil {
		if *u.ExperienceYears < 0 {
			return p, fmt.Errorf("%w: experienceYears cannot be negative", ErrValidationFailed)
		}
		p.ExperienceYears = *u.ExperienceYears
	}
	if u.HourlyRateCents != nil {
		if *u.HourlyRateCents < 0 {
			return p, fmt.Errorf("%w: hourlyRateCents cannot be negative", ErrValidationFailed)
		}
		p.HourlyRateCents = *u.HourlyRateCents
	}
	if u.Age != nil {
		if *u.Age < 0 || *u.Age > 120 {
			return p, fmt.Errorf("%w: age must be between 0 and 120", ErrValidationFailed)
		}
		p.Age = *u.Age
	}
	if u.HeightCm != nil {
		if *u.HeightCm < 0 {
			return p, fmt.Errorf("%w: heightCm cannot be negative", ErrValidationFailed)
		}
		p.HeightCm = *u.HeightCm
	}
	if u.WeightKg != nil {
		if *u.WeightKg < 0 {
			return p, fmt.Errorf("%w: weightKg cannot be negative", ErrValidationFailed)
		}
		p.WeightKg = *u.WeightKg
	}
	return p, nil
}

func (s *userService) ListTrainers(ctx context.Context, specialty string) ([]UserProfile, error) {
	trainers, err := s.userRepo.ListByRole(ctx, domain.RoleTrainer, strings.TrimSpace(specialty))
	if err != nil {
		return nil, err
	}
	profiles := make([]UserProfile, 0, len(trainers))
	for i := range trainers {
		profiles = append(profiles, *s.toProfile(ctx, &trainers[i]))
	}
	return profiles, nil
}

// AddClientByEmail finds a client by email and assigns them to the trainer.
func (s *userService) AddClientByEmail(ctx context.Context, trainerID primitive.ObjectID, clientEmail string) (*domain.User, error) {
	clientEmail = strings.ToLower(strings.TrimSpace(clientEmail))
	if trainerID == primitive.NilObjectID || clientEmail == "" {
		return nil, fmt.Errorf("%w: client email is required", ErrValidationFailed)
	}

	client, err := s.userRepo.GetByEmail(ctx, clientEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if !client.IsClient() {
		return nil, ErrNotAClient
	}

	if client.TrainerID != nil && *client.TrainerID != primitive.NilObjectID {
		if *client.TrainerID == trainerID {
			client.PasswordHash = ""
			return client, nil
		}
		return nil, ErrClientAlreadyAssigned
	}

	if err := s.userRepo.AddClientIDToTrainer(ctx, trainerID, client.ID); err != nil {
		return nil, err
	}
	if err := s.userRepo.SetTrainerForClient(ctx, client.ID, trainerID); err != nil {
		// the roster entry is already written; $addToSet makes a retry safe
		s.log.Errorw("failed to link client to trainer", "clientId", client.ID.Hex(), "trainerId", trainerID.Hex(), "error", err)
		return nil, err
	}

	client.TrainerID = &trainerID
	client.PasswordHash = ""
	return client, nil
}

// GetManagedClients retrieves the list of clients managed by the trainer.
func (s *userService) GetManagedClients(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error) {
	clients, err := s.userRepo.GetClientsByTrainerID(ctx, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	for i := range clients {
		clients[i].PasswordHash = ""
	}
	return clients, nil
}

// RequestProfileImageUpload hands out a presigned PUT URL under the caller's prefix.
func (s *userService) RequestProfileImageUpload(ctx context.Context, userID primitive.ObjectID, contentType string) (*UploadURL, error) {
	if s.fileStorage == nil {
		return nil, ErrStorageUnavailable
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, ErrInvalidContentType
	}
	ext, ok := imageExtensions[mediaType]
	if !ok {
		return nil, ErrInvalidContentType
	}
	contentType = mediaType

	objectKey := path.Join(profileImagePrefix, userID.Hex(), fmt.Sprintf("%s.%s", uuid.NewString(), ext))
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrImageURLError
	}

	return &UploadURL{
		UploadURL: uploadURL,
		ObjectKey: objectKey,
		ExpiresAt: time.Now().UTC().Add(storage.DefaultPresignedURLExpiry),
	}, nil
}

// ConfirmProfileImage records an uploaded image and removes the previous one.
func (s *userService) ConfirmProfileImage(ctx context.Context, userID primitive.ObjectID, objectKey string) (*UserProfile, error) {
	if s.fileStorage == nil {
		return nil, ErrStorageUnavailable
	}
	prefix := path.Join(profileImagePrefix, userID.Hex()) + "/"
	if !strings.HasPrefix(objectKey, prefix) || path.Clean(objectKey) != objectKey {
		return nil, ErrInvalidObjectKey
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	previous := user.ProfileImageKey

	if err := s.userRepo.SetProfileImage(ctx, userID, objectKey); err != nil {
		return nil, err
	}
	user.ProfileImageKey = objectKey

	if previous != "" && previous != objectKey {
		if err := s.fileStorage.DeleteObject(ctx, previous); err != nil {
			s.log.Warnw("failed to delete previous profile image", "key", previous, "error", err)
		}
	}
	return s.toProfile(ctx, user), nil
}

func (s *userService) toProfile(ctx context.Context, user *domain.User) *UserProfile {
	user.PasswordHash = ""
	profile := &UserProfile{User: *user}
	if user.ProfileImageKey == "" || s.fileStorage == nil {
		return profile
	}
	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, user.ProfileImageKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		s.log.Warnw("failed to presign profile image", "userId", user.ID.Hex(), "error", err)
		return profile
	}
	profile.ProfileImageURL = url
	return profile
}

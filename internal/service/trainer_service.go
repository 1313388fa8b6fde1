package service

import (
	"alcyxob/trainer-app/internal/cache"
	"alcyxob/trainer-app/internal/domain"
	"alcyxob/trainer-app/internal/repository"
	"alcyxob/trainer-app/internal/storage"
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrWrongPassword = errors.New("current password is incorrect")
	ErrUploadURL     = errors.New("failed to generate upload URL")
)

// UploadURLResponse is returned when a client asks to upload a file directly to storage.
type UploadURLResponse struct {
	UploadURL string    `json:"uploadUrl"`
	ObjectKey string    `json:"objectKey"` // reported back once the upload finished
	ExpiresAt time.Time `json:"expiresAt"`
}

// TrainerProfile is a trainer with a temporary avatar link resolved.
type TrainerProfile struct {
	domain.Trainer
	AvatarURL string
}

// ProfileInput replaces the editable profile fields.
type ProfileInput struct {
	Name         string
	Phone        string
	BusinessName string
	Bio          string
	Currency     string
}

type TrainerService interface {
	GetProfile(ctx context.Context, trainerID string) (*TrainerProfile, error)
	UpdateProfile(ctx context.Context, trainerID string, in ProfileInput) (*TrainerProfile, error)
	ChangePassword(ctx context.Context, trainerID, current, next string) error
	// ResetPassword sets a password without knowing the old one. Used by the admin CLI.
	ResetPassword(ctx context.Context, email, password string) error
	RequestAvatarUpload(ctx context.Context, trainerID, contentType string) (*UploadURLResponse, error)
	SetAvatar(ctx context.Context, trainerID, objectKey string) (*TrainerProfile, error)
}

// trainerService implements the TrainerService interface.
type trainerService struct {
	trainerRepo   repository.TrainerRepository
	planRepo      repository.PlanRepository
	planCache     cache.PlanCache
	fileStorage   storage.FileStorage // nil when storage is not configured
	presignExpiry time.Duration
}

// NewTrainerService creates a new instance of trainerService. planCache and fileStorage may be nil.
func NewTrainerService(trainerRepo repository.TrainerRepository, planRepo repository.PlanRepository, planCache cache.PlanCache, fileStorage storage.FileStorage, presignExpiry time.Duration) TrainerService {
	if presignExpiry <= 0 {
		presignExpiry = storage.DefaultPresignedURLExpiry
	}
	if planCache == nil {
		planCache = cache.NewNoopPlanCache()
	}
	return &trainerService{
		trainerRepo:   trainerRepo,
		planRepo:      planRepo,
		planCache:     planCache,
		fileStorage:   fileStorage,
		presignExpiry: presignExpiry,
	}
}

func (s *trainerService) getTrainer(ctx context.Context, trainerID string) (*domain.Trainer, error) {
	trainer, err := s.trainerRepo.GetByID(ctx, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainerNotFound
		}
		return nil, err
	}
	return trainer, nil
}

// profile resolves the avatar link. A failing presign only drops the link.
func (s *trainerService) profile(ctx context.Context, trainer *domain.Trainer) *TrainerProfile {
	p := &TrainerProfile{Trainer: *trainer}
	p.PasswordHash = ""
	if trainer.AvatarKey != "" && s.fileStorage != nil {
		url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, trainer.AvatarKey, s.presignExpiry)
		if err != nil {
			zap.L().Warn("failed to presign avatar", zap.String("trainerID", trainer.ID), zap.Error(err))
		} else {
			p.AvatarURL = url
		}
	}
	return p
}

func (s *trainerService) GetProfile(ctx context.Context, trainerID string) (*TrainerProfile, error) {
	trainer, err := s.getTrainer(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	return s.profile(ctx, trainer), nil
}

func (s *trainerService) UpdateProfile(ctx context.Context, trainerID string, in ProfileInput) (*TrainerProfile, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, validationError("name is required")
	}
	currency, err := normalizeCurrency(in.Currency, domain.DefaultCurrency)
	if err != nil {
		return nil, err
	}

	trainer, err := s.getTrainer(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	displayName := trainer.DisplayName()
	trainer.Name = in.Name
	trainer.Phone = strings.TrimSpace(in.Phone)
	trainer.BusinessName = strings.TrimSpace(in.BusinessName)
	trainer.Bio = strings.TrimSpace(in.Bio)
	trainer.Currency = currency

	if err := s.trainerRepo.Update(ctx, trainer); err != nil {
		return nil, err
	}
	if trainer.DisplayName() != displayName {
		invalidateSharedPlans(ctx, s.planRepo, s.planCache, trainer.ID, repository.PlanFilter{})
	}
	return s.profile(ctx, trainer), nil
}

func (s *trainerService) ChangePassword(ctx context.Context, trainerID, current, next string) error {
	trainer, err := s.getTrainer(ctx, trainerID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(trainer.PasswordHash), []byte(current)) != nil {
		return ErrWrongPassword
	}
	return s.setPassword(ctx, trainer, next)
}

func (s *trainerService) ResetPassword(ctx context.Context, email, password string) error {
	trainer, err := s.trainerRepo.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTrainerNotFound
		}
		return err
	}
	return s.setPassword(ctx, trainer, password)
}

func (s *trainerService) setPassword(ctx context.Context, trainer *domain.Trainer, password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	trainer.PasswordHash = hash
	return s.trainerRepo.Update(ctx, trainer)
}

// RequestAvatarUpload hands out a presigned PUT URL for a new avatar image.
func (s *trainerService) RequestAvatarUpload(ctx context.Context, trainerID, contentType string) (*UploadURLResponse, error) {
	if s.fileStorage == nil {
		return nil, ErrStorageNotConfigured
	}
	if _, err := s.getTrainer(ctx, trainerID); err != nil {
		return nil, err
	}
	objectKey, err := storage.AvatarKey(trainerID, contentType)
	if err != nil {
		return nil, validationError("%v", err)
	}

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, s.presignExpiry)
	if err != nil {
		return nil, ErrUploadURL
	}
	return &UploadURLResponse{
		UploadURL: uploadURL,
		ObjectKey: objectKey,
		ExpiresAt: nowFunc().Add(s.presignExpiry),
	}, nil
}

// SetAvatar records an uploaded avatar and removes the previous one from storage.
func (s *trainerService) SetAvatar(ctx context.Context, trainerID, objectKey string) (*TrainerProfile, error) {
	if s.fileStorage == nil {
		return nil, ErrStorageNotConfigured
	}
	if !storage.OwnsAvatarKey(trainerID, objectKey) {
		return nil, validationError("object key does not belong to this trainer")
	}
	trainer, err := s.getTrainer(ctx, trainerID)
	if err != nil {
		return nil, err
	}

	previous := trainer.AvatarKey
	trainer.AvatarKey = objectKey
	if err := s.trainerRepo.Update(ctx, trainer); err != nil {
		return nil, err
	}
	if previous != "" && previous != objectKey {
		if err := s.fileStorage.DeleteObject(ctx, previous); err != nil {
			zap.L().Warn("failed to delete previous avatar", zap.String("key", previous), zap.Error(err))
		}
	}
	return s.profile(ctx, trainer), nil
}

// normalizeCurrency accepts a three-letter ISO 4217 code, defaulting when empty.
func normalizeCurrency(code, fallback string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return fallback, nil
	}
	if len(code) != 3 {
		return "", validationError("currency must be a 3-letter code")
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", validationError("currency must be a 3-letter code")
		}
	}
	return code, nil
}

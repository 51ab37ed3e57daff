package service

import (
	"context"
	"encoding/json"

	"github.com/shopora/shopora-platform/internal/api/middleware"
	"github.com/shopora/shopora-platform/internal/cache"
	apperrors "github.com/shopora/shopora-platform/internal/errors"
	"github.com/shopora/shopora-platform/internal/models"
	repository "github.com/shopora/shopora-platform/internal/repositories"
)

type SettingsService interface {
	GetSetting(ctx context.Context, key string) (*models.Setting, error)
	PutSetting(ctx context.Context, key string, value json.RawMessage) (*models.Setting, error)
}

type settingsService struct {
	repo  repository.SettingsRepository
	cache cache.Cache
}

func NewSettingsService(repo repository.SettingsRepository, c cache.Cache) SettingsService {
	return &settingsService{repo: repo, cache: c}
}

func (s *settingsService) GetSetting(ctx context.Context, key string) (*models.Setting, error) {

	cacheKey := cache.Key(cache.SettingKeyPrefix, key)

	var cached models.Setting
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	setting, err := s.repo.GetSetting(ctx, key)
	if err != nil {
		// The carousel has a well-known default so the storefront renders
		// before an admin ever saves one.
		if key == models.SettingKeyCarousel {
			return defaultCarouselSetting(), nil
		}

		return nil, apperrors.NotFoundError("Setting not found").WithError(err)
	}

	if err := s.cache.Set(ctx, cacheKey, setting, 0); err != nil {
		middleware.LoggerFromContext(ctx).Warn("failed to cache setting", "key", key, "error", err)
	}

	return setting, nil
}

func (s *settingsService) PutSetting(ctx context.Context, key string, value json.RawMessage) (*models.Setting, error) {

	if key == models.SettingKeyCarousel {
		coerced, err := coerceCarousel(value)
		if err != nil {
			return nil, err
		}

		value = coerced
	}

	setting, err := s.repo.UpsertSetting(ctx, key, value)
	if err != nil {
		return nil, apperrors.DatabaseError("Failed to save setting").WithError(err)
	}

	if err := s.cache.Delete(ctx, cache.Key(cache.SettingKeyPrefix, key)); err != nil {
		middleware.LoggerFromContext(ctx).Warn("failed to invalidate setting cache", "key", key, "error", err)
	}

	return setting, nil
}

func defaultCarouselSetting() *models.Setting {
	value, _ := json.Marshal(models.CarouselSettings{
		AutoPlay: true,
		Interval: models.DefaultCarouselInterval,
	})

	return &models.Setting{Key: models.SettingKeyCarousel, Value: value}
}

// coerceCarousel normalizes the carousel payload: autoPlay defaults to true
// when absent, interval falls back to the default when absent or not positive.
func coerceCarousel(raw json.RawMessage) (json.RawMessage, error) {

	var incoming struct {
		AutoPlay *bool `json:"autoPlay"`
		Interval *int  `json:"interval"`
	}

	if err := json.Unmarshal(raw, &incoming); err != nil {
		return nil, apperrors.ValidationError("Carousel settings must be a JSON object").WithError(err)
	}

	settings := models.CarouselSettings{
		AutoPlay: true,
		Interval: models.DefaultCarouselInterval,
	}

	if incoming.AutoPlay != nil {
		settings.AutoPlay = *incoming.AutoPlay
	}

	if incoming.Interval != nil && *incoming.Interval > 0 {
		settings.Interval = *incoming.Interval
	}

	coerced, err := json.Marshal(settings)
	if err != nil {
		return nil, apperrors.InternalError("Failed to encode carousel settings").WithError(err)
	}

	return coerced, nil
}

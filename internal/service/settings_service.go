package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Leganyst/roadmate/internal/model"
	"github.com/Leganyst/roadmate/internal/repository"
)

type SettingsService struct {
	settings repository.SettingRepository
}

func NewSettingsService(settings repository.SettingRepository) *SettingsService {
	return &SettingsService{settings: settings}
}

func (s *SettingsService) Get(ctx context.Context, key string) (*model.SystemSetting, error) {
	st, err := s.settings.Get(ctx, key)
	if err != nil {
		return nil, notFound(err, "setting %q", key)
	}
	return st, nil
}

// Set создаёт или перезаписывает настройку и делает её активной.
func (s *SettingsService) Set(ctx context.Context, key, value, description string) (*model.SystemSetting, error) {
	return s.put(ctx, key, value, description, true)
}

// Deactivate скрывает настройку, не удаляя её значение.
func (s *SettingsService) Deactivate(ctx context.Context, key string) error {
	st, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	_, err = s.put(ctx, st.Key, st.Value, st.Description, false)
	return err
}

func (s *SettingsService) put(ctx context.Context, key, value, description string, active bool) (*model.SystemSetting, error) {
	key = strings.TrimSpace(key)
	switch {
	case key == "":
		return nil, fieldError("key", "This field is required.")
	case len(key) > 100:
		return nil, fieldError("key", "Ensure this value has at most 100 characters.")
	}
	st := &model.SystemSetting{
		Key:         key,
		Value:       value,
		Description: description,
		IsActive:    active,
	}
	if err := s.settings.Upsert(ctx, st); err != nil {
		return nil, fmt.Errorf("save setting %q: %w", key, err)
	}
	return st, nil
}

// ActiveNotices: активные настройки для главной страницы.
func (s *SettingsService) ActiveNotices(ctx context.Context) ([]model.SystemSetting, error) {
	settings, err := s.settings.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active settings: %w", err)
	}
	return settings, nil
}

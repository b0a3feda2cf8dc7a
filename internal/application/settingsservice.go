package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ericfisherdev/fundintake/internal/domain/model"
	"github.com/ericfisherdev/fundintake/internal/domain/port/driven"
)

// SettingsOptionName is the options-store key of the fallback settings blob.
const SettingsOptionName = "fundintake_settings"

// SettingsProvider resolves the effective settings.
type SettingsProvider interface {
	GetAll(ctx context.Context) model.Settings
}

// SaveResult is the outcome of SettingsService.Save. Settings is always the
// full sanitized mapping, even when persistence failed.
type SaveResult struct {
	Settings model.Settings
	Errors   []model.FieldError
}

// SettingsService resolves and persists the administrative settings. Reads go
// through an explicit priority chain: settings table, then the options blob,
// then defaults. Writes go to both stores.
type SettingsService struct {
	table    driven.SettingsTable
	options  driven.OptionsStore
	defaults model.Settings
	logger   *slog.Logger
}

// NewSettingsService creates a SettingsService. defaults must hold every
// recognized key.
func NewSettingsService(
	table driven.SettingsTable,
	options driven.OptionsStore,
	defaults model.Settings,
	logger *slog.Logger,
) *SettingsService {
	return &SettingsService{
		table:    table,
		options:  options,
		defaults: defaults,
		logger:   logger,
	}
}

// settingsLayer is one source in the lookup chain.
type settingsLayer struct {
	name   string
	values map[string]string
}

// GetAll returns a complete mapping of every recognized key. For each key the
// first layer holding it wins, even if the stored value is empty.
func (s *SettingsService) GetAll(ctx context.Context) model.Settings {
	chain := []settingsLayer{
		{name: "table", values: s.tableValues(ctx)},
		{name: "options", values: s.optionValues(ctx)},
		{name: "defaults", values: s.defaults},
	}

	out := make(model.Settings, len(model.SettingDefinitions))
	for _, def := range model.SettingDefinitions {
		for _, layer := range chain {
			if v, ok := layer.values[def.Key]; ok {
				out[def.Key] = v
				break
			}
		}
	}
	return out
}

func (s *SettingsService) tableValues(ctx context.Context) map[string]string {
	exists, err := s.table.Exists(ctx)
	if err != nil {
		s.logger.Warn("settings table check failed, using fallback", "error", err)
		return nil
	}
	if !exists {
		s.logger.Debug("settings table missing, using fallback")
		return nil
	}

	rows, err := s.table.ListAll(ctx)
	if err != nil {
		s.logger.Warn("settings table read failed, using fallback", "error", err)
		return nil
	}

	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Key] = row.Value
	}
	return values
}

func (s *SettingsService) optionValues(ctx context.Context) map[string]string {
	values, err := s.options.Get(ctx, SettingsOptionName)
	if errors.Is(err, driven.ErrOptionNotFound) {
		return nil
	}
	if err != nil {
		s.logger.Warn("settings option read failed, using defaults", "error", err)
		return nil
	}
	return values
}

// Save normalizes input against the recognized keys and persists the result.
// Keys absent from input keep their current value. Persistence failures are
// logged and do not fail the call.
func (s *SettingsService) Save(ctx context.Context, input map[string]string) SaveResult {
	current := s.GetAll(ctx)
	result := SaveResult{Settings: current.Clone()}

	for _, def := range model.SettingDefinitions {
		raw, present := input[def.Key]
		if !present {
			continue
		}

		value, ok := normalizeSetting(def, raw)
		if !ok {
			result.Errors = append(result.Errors, model.FieldError{
				Key:     def.Key,
				Message: model.Humanize(def.Key) + " is not valid.",
			})
			continue
		}
		result.Settings[def.Key] = value
	}

	if err := s.table.UpsertAll(ctx, result.Settings); err != nil {
		s.logger.Error("failed to write settings table", "error", err)
	}
	if err := s.options.Put(ctx, SettingsOptionName, result.Settings); err != nil {
		s.logger.Error("failed to write settings option", "error", err)
	}

	return result
}

// normalizeSetting applies the per-kind rules. ok is false only for a
// rejected value, in which case the previous value must be kept.
func normalizeSetting(def model.SettingDefinition, raw string) (string, bool) {
	switch def.Kind {
	case model.SettingKindCheckbox:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "", "0", "false", "off", "no":
			return "0", true
		}
		return "1", true

	case model.SettingKindNumber:
		port, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || port < 1 || port > 65535 {
			return model.DefaultSMTPPort, true
		}
		return strconv.Itoa(port), true

	case model.SettingKindEmail:
		email := SanitizeEmail(raw)
		if email != "" && !IsValidEmail(email) {
			return "", false
		}
		return email, true

	case model.SettingKindSelect:
		v := strings.ToLower(strings.TrimSpace(raw))
		for _, opt := range model.EncryptionOptions {
			if v == opt.Value {
				return v, true
			}
		}
		return model.EncryptionTLS, true

	case model.SettingKindPassword:
		return raw, true

	case model.SettingKindTextarea:
		return SanitizeTextarea(raw), true

	default:
		return SanitizeText(raw), true
	}
}

// Seed stores the defaults without touching existing values. Both stores are
// attempted; the first error is returned.
func (s *SettingsService) Seed(ctx context.Context) error {
	var firstErr error

	if err := s.table.InsertMissing(ctx, s.defaults); err != nil {
		firstErr = fmt.Errorf("seed settings table: %w", err)
	}
	if err := s.options.Add(ctx, SettingsOptionName, s.defaults); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("seed settings option: %w", err)
	}

	if firstErr != nil {
		s.logger.Error("settings seed incomplete", "error", firstErr)
	}
	return firstErr
}

// Warnings lists configuration problems an administrator should fix.
func (s *SettingsService) Warnings(ctx context.Context) []string {
	var warnings []string

	exists, err := s.table.Exists(ctx)
	if err != nil || !exists {
		warnings = append(warnings,
			"The settings table is missing. Settings are read from the fallback store until the migrate command is run.")
	}

	settings := s.GetAll(ctx)

	if settings.Enabled(model.KeyEnableSMTP) && strings.TrimSpace(settings[model.KeySMTPHost]) == "" {
		warnings = append(warnings,
			"SMTP is enabled but no SMTP host is set. Mail will be sent through the default transport.")
	}

	switch to := settings[model.KeyToEmail]; {
	case to == "":
		warnings = append(warnings, "No recipient email address is set. Submissions cannot be delivered.")
	case !IsValidEmail(to):
		warnings = append(warnings, "The recipient email address is not valid. Submissions cannot be delivered.")
	}

	return warnings
}

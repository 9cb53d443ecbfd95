package sql

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kkroo/qctl"
)

// Recognized config keys and their built-in defaults. ConfigSet rejects
// any key outside this set.
const (
	keyBackoffBase    = "backoff_base"
	keyMaxRetries     = "max_retries"
	keyDefaultTimeout = "default_timeout"
	keyPollIntervalMs = "poll_interval_ms"

	defaultBackoffBase     = 2
	defaultMaxRetries      = 3
	defaultTimeoutSeconds  = 30
	defaultPollIntervalMs  = 500
)

var recognizedConfigKeys = map[string]string{
	keyBackoffBase:    strconv.Itoa(defaultBackoffBase),
	keyMaxRetries:     strconv.Itoa(defaultMaxRetries),
	keyDefaultTimeout: strconv.Itoa(defaultTimeoutSeconds),
	keyPollIntervalMs: strconv.Itoa(defaultPollIntervalMs),
}

// ConfigGet returns the stored value for key, or its built-in default and
// ok=true if the key is recognized but has never been set. ok is false
// only when key is not a recognized config key.
func (s *Store) ConfigGet(ctx context.Context, key string) (string, bool, error) {
	def, recognized := recognizedConfigKeys[key]
	if !recognized {
		return "", false, nil
	}

	model := new(configModel)
	err := s.db.NewSelect().
		Model(model).
		Where("key = ?", key).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return def, true, nil
		}
		return "", false, fmt.Errorf("%w: %v", qctl.ErrStoreError, err)
	}
	return model.Value, true, nil
}

// ConfigSet upserts the value for key. It returns qctl.ErrUnknownConfig
// if key is not one of the recognized config keys, or
// qctl.ErrInvalidConfigValue if value doesn't satisfy key's type.
func (s *Store) ConfigSet(ctx context.Context, key string, value string) error {
	if _, recognized := recognizedConfigKeys[key]; !recognized {
		return fmt.Errorf("%w: %s", qctl.ErrUnknownConfig, key)
	}
	if err := validateConfigValue(key, value); err != nil {
		return err
	}

	model := &configModel{Key: key, Value: value}
	_, err := s.db.NewInsert().
		Model(model).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", qctl.ErrStoreError, err)
	}
	return nil
}

// validateConfigValue checks value against the type ConfigSet's recognized
// key expects: a positive integer for every key, and additionally >= 2
// for backoff_base (a base below 2 doesn't grow the retry delay).
func validateConfigValue(key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return fmt.Errorf("%w: %s must be a positive integer, got %q", qctl.ErrInvalidConfigValue, key, value)
	}
	if key == keyBackoffBase && n < 2 {
		return fmt.Errorf("%w: %s must be >= 2, got %q", qctl.ErrInvalidConfigValue, key, value)
	}
	return nil
}

// intConfig returns the configured integer value for key, or its
// built-in default if the key was never set (ConfigGet supplies it).
// fallback is returned only if the stored value does not parse as an
// integer, which ConfigSet's validation rules out for values it wrote.
func (s *Store) intConfig(ctx context.Context, key string, fallback int) (int, error) {
	raw, _, err := s.ConfigGet(ctx, key)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, nil
	}
	return v, nil
}

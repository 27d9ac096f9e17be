package types

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvString returns the trimmed value of key when it is set and non-empty.
func EnvString(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}

// EnvInt parses key as an integer.
func EnvInt(key string) (int, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, true, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, true, nil
}

// EnvBool parses key as a boolean (1, true, yes, ...).
func EnvBool(key string) (bool, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return false, false, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, true, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, true, nil
}

// EnvDuration parses key as a Go duration string such as "1200ms".
func EnvDuration(key string) (time.Duration, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, true, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, true, nil
}

// ApplyEnv overrides cfg with any ORDERWALK_* variables present in the environment.
func ApplyEnv(cfg *Config) error {
	if v, ok := EnvString("ORDERWALK_START_URL"); ok {
		cfg.StartURL = v
	}
	if v, ok := EnvString("ORDERWALK_STATE"); ok {
		cfg.StateURL = v
	}
	if v, ok := EnvString("ORDERWALK_NAMESPACE"); ok {
		cfg.StateNamespace = v
	}
	if v, ok := EnvString("ORDERWALK_OUTPUT"); ok {
		cfg.OutputDir = v
	}
	if v, ok := EnvString("ORDERWALK_USER_AGENT"); ok {
		cfg.UserAgent = v
	}
	if v, ok, err := EnvDuration("ORDERWALK_SETTLE_DELAY"); err != nil {
		return err
	} else if ok {
		cfg.SettleDelay = v
	}
	if v, ok, err := EnvDuration("ORDERWALK_TIMEOUT"); err != nil {
		return err
	} else if ok {
		cfg.Timeout = v
	}
	if v, ok, err := EnvInt("ORDERWALK_CONCURRENCY"); err != nil {
		return err
	} else if ok {
		cfg.MaxConcurrentRequests = v
	}
	if v, ok, err := EnvBool("ORDERWALK_INVOICES"); err != nil {
		return err
	} else if ok {
		cfg.FetchInvoices = v
	}
	if v, ok, err := EnvBool("ORDERWALK_HEADLESS"); err != nil {
		return err
	} else if ok {
		cfg.Headless = v
	}
	if v, ok := EnvString("ORDERWALK_SELECTORS"); ok {
		selectors, err := LoadSelectors(v)
		if err != nil {
			return err
		}
		cfg.Selectors = selectors
	}
	return nil
}

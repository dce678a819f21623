package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is read for WEBWAITER_* variables when present.
const DefaultEnvFile = ".env"

// Environment variables understood by ApplyEnv.
const (
	EnvProxy        = "WEBWAITER_PROXY"
	EnvUserAgent    = "WEBWAITER_USER_AGENT"
	EnvTimeout      = "WEBWAITER_TIMEOUT"
	EnvProbeTimeout = "WEBWAITER_PROBE_TIMEOUT"
	EnvBrowser      = "WEBWAITER_BROWSER"
	EnvChromePath   = "WEBWAITER_CHROME_PATH"
	EnvDownloadDir  = "WEBWAITER_DOWNLOAD_DIR"
	EnvDBDir        = "WEBWAITER_DB_DIR"
	EnvNoHistory    = "WEBWAITER_NO_HISTORY"
	EnvBatch        = "WEBWAITER_BATCH"
	EnvTor          = "WEBWAITER_TOR"
)

// LookupFunc looks up an environment variable the way os.LookupEnv does.
type LookupFunc func(key string) (string, bool)

// EnvLookup returns a LookupFunc over the process environment backed by
// the dotenv files. The process environment wins. Missing files are skipped.
func EnvLookup(files ...string) (LookupFunc, error) {
	fromFiles := make(map[string]string)
	for _, f := range files {
		values, err := godotenv.Read(f)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		for k, v := range values {
			if _, seen := fromFiles[k]; !seen {
				fromFiles[k] = v
			}
		}
	}

	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fromFiles[key]
		return v, ok
	}, nil
}

// ApplyEnv overrides fields from WEBWAITER_* variables. Unset variables
// leave the field alone.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if v, ok := lookup(EnvProxy); ok {
		c.ProxyAddress = v
	}
	if v, ok := lookup(EnvUserAgent); ok {
		c.UserAgent = v
	}
	if v, ok := lookup(EnvChromePath); ok {
		c.ChromePath = v
	}
	if v, ok := lookup(EnvDownloadDir); ok {
		c.DownloadDir = v
	}
	if v, ok := lookup(EnvDBDir); ok && v != "" {
		c.DBDir = v
	}

	var err error
	if c.Timeout, err = envDuration(lookup, EnvTimeout, c.Timeout); err != nil {
		return err
	}
	if c.ProbeTimeout, err = envDuration(lookup, EnvProbeTimeout, c.ProbeTimeout); err != nil {
		return err
	}
	if c.Browser, err = envBool(lookup, EnvBrowser, c.Browser); err != nil {
		return err
	}
	if c.UseTor, err = envBool(lookup, EnvTor, c.UseTor); err != nil {
		return err
	}
	if c.BatchSize, err = envInt(lookup, EnvBatch, c.BatchSize); err != nil {
		return err
	}

	noHistory, err := envBool(lookup, EnvNoHistory, !c.SaveToDB)
	if err != nil {
		return err
	}
	c.SaveToDB = !noHistory
	return nil
}

func envDuration(lookup LookupFunc, key string, current time.Duration) (time.Duration, error) {
	v, ok := lookup(key)
	if !ok || v == "" {
		return current, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return current, fmt.Errorf("%w: %s=%q: %w", ErrInvalidEnv, key, v, err)
	}
	return d, nil
}

func envInt(lookup LookupFunc, key string, current int) (int, error) {
	v, ok := lookup(key)
	if !ok || v == "" {
		return current, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return current, fmt.Errorf("%w: %s=%q: %w", ErrInvalidEnv, key, v, err)
	}
	return n, nil
}

func envBool(lookup LookupFunc, key string, current bool) (bool, error) {
	v, ok := lookup(key)
	if !ok || v == "" {
		return current, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return current, fmt.Errorf("%w: %s=%q: %w", ErrInvalidEnv, key, v, err)
	}
	return b, nil
}

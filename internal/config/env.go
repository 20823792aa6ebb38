package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LookupFunc reads one variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// LoadEnv builds the configuration from the process environment. Each
// existing file in dotenv is read with godotenv and consulted after the
// environment; the process environment is never modified.
func LoadEnv(dotenv ...string) (Config, error) {
	fileVars := map[string]string{}
	for _, path := range dotenv {
		vars, err := godotenv.Read(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
		for k, v := range vars {
			if _, ok := fileVars[k]; !ok {
				fileVars[k] = v
			}
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	}

	cfg, err := FromEnv(lookup)
	if err != nil {
		return Config{}, err
	}
	return finish(cfg)
}

// FromEnv builds a configuration from variables.
//
// Tenants come from CLIENT_NAMES ("acme, globex"). Each name is lowercased;
// its uppercase form prefixes the tenant's variables: ACME_NAME,
// ACME_VTEX_ACCOUNT_NAME, ACME_VTEX_APP_KEY, ACME_VTEX_APP_TOKEN,
// ACME_SHEET_ID and ACME_SHEET_NAME. The display name and sheet name default
// to the lowercased key.
//
// Global settings use the ORDERSYNC_ prefix. The BigQuery sink reads
// GOOGLE_PROJECT_ID, BIGQUERY_DATASET_ID and BIGQUERY_TABLE_ID. Defaults are
// not applied.
func FromEnv(lookup LookupFunc) (Config, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	var cfg Config
	cfg.StorePath = get("ORDERSYNC_STORE_PATH")
	cfg.LogLevel = get("ORDERSYNC_LOG_LEVEL")
	cfg.LogFormat = get("ORDERSYNC_LOG_FORMAT")
	cfg.Destination.Driver = get("ORDERSYNC_DESTINATION_DRIVER")
	cfg.Destination.CredentialsFile = get("ORDERSYNC_CREDENTIALS_FILE")
	if cfg.Destination.CredentialsFile == "" {
		cfg.Destination.CredentialsFile = get("GOOGLE_APPLICATION_CREDENTIALS")
	}
	cfg.Destination.BigQuery.ProjectID = get("GOOGLE_PROJECT_ID")
	cfg.Destination.BigQuery.Dataset = get("BIGQUERY_DATASET_ID")
	cfg.Destination.BigQuery.Table = get("BIGQUERY_TABLE_ID")
	cfg.Upstream.BaseURL = get("ORDERSYNC_UPSTREAM_BASE_URL")
	cfg.Upstream.Status = get("ORDERSYNC_UPSTREAM_STATUS")
	cfg.Metrics.Addr = get("ORDERSYNC_METRICS_ADDR")

	ints := []struct {
		key string
		dst *int
	}{
		{"ORDERSYNC_UPSTREAM_CONCURRENCY", &cfg.Upstream.Concurrency},
		{"ORDERSYNC_UPSTREAM_MAX_PAGES", &cfg.Upstream.MaxPages},
		{"ORDERSYNC_UPSTREAM_PER_PAGE", &cfg.Upstream.PerPage},
	}
	for _, f := range ints {
		if s := get(f.key); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				return Config{}, fmt.Errorf("%s: %w", f.key, err)
			}
			*f.dst = n
		}
	}
	if s := get("ORDERSYNC_UPSTREAM_REQUESTS_PER_SECOND"); s != "" {
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Config{}, fmt.Errorf("ORDERSYNC_UPSTREAM_REQUESTS_PER_SECOND: %w", err)
		}
		cfg.Upstream.RequestsPerSecond = &n
	}
	if s := get("ORDERSYNC_UPSTREAM_RETRIES"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return Config{}, fmt.Errorf("ORDERSYNC_UPSTREAM_RETRIES: %w", err)
		}
		cfg.Upstream.Retries = &n
	}

	durations := []struct {
		key string
		dst *Duration
	}{
		{"ORDERSYNC_UPSTREAM_TIMEOUT", &cfg.Upstream.Timeout},
		{"ORDERSYNC_SCHEDULE_INTERVAL", &cfg.Schedule.Interval},
	}
	for _, f := range durations {
		if s := get(f.key); s != "" {
			d, err := time.ParseDuration(s)
			if err != nil {
				return Config{}, fmt.Errorf("%s: %w", f.key, err)
			}
			*f.dst = Duration(d)
		}
	}

	for _, key := range clientKeys(get("CLIENT_NAMES")) {
		prefix := strings.ToUpper(key) + "_"
		t := Tenant{
			Name:            get(prefix + "NAME"),
			VtexAccountName: get(prefix + "VTEX_ACCOUNT_NAME"),
			VtexAppKey:      get(prefix + "VTEX_APP_KEY"),
			VtexAppToken:    get(prefix + "VTEX_APP_TOKEN"),
			SheetID:         get(prefix + "SHEET_ID"),
			SheetName:       get(prefix + "SHEET_NAME"),
		}
		if t.Name == "" {
			t.Name = key
		}
		if t.SheetName == "" {
			t.SheetName = key
		}
		cfg.TenantList = append(cfg.TenantList, t)
	}
	return cfg, nil
}

func clientKeys(list string) []string {
	var keys []string
	for _, k := range strings.Split(list, ",") {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

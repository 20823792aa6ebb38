package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ordersync/internal/syncerr"
)

func TestLoad_YAML(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/ordersync/ordersync.db", cfg.StorePath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, DriverSheets, cfg.Destination.Driver)
	assert.Equal(t, BigQuery{
		ProjectID:       "acme-analytics",
		Dataset:         "vtex",
		Table:           "orders",
		CredentialsFile: "/etc/ordersync/service-account.json",
	}, cfg.Destination.BigQuery)
	assert.NoError(t, cfg.Destination.BigQuery.Validate())
	assert.Equal(t, 45*time.Second, cfg.Upstream.Timeout.Std())
	assert.Equal(t, 8, cfg.Upstream.Concurrency)
	assert.Equal(t, 5.0, cfg.Upstream.RateLimit())
	assert.Equal(t, 3, cfg.Upstream.MaxPages)
	assert.Equal(t, DefaultRetries, cfg.Upstream.RetryCount())
	assert.Equal(t, DefaultPerPage, cfg.Upstream.PerPage)
	assert.Equal(t, 30*time.Minute, cfg.Schedule.Interval.Std())
	assert.Equal(t, DefaultMetricsAddr, cfg.Metrics.Addr)

	require.Len(t, cfg.TenantList, 3)
	tenants := cfg.Tenants()
	require.Len(t, tenants, 2)
	assert.Equal(t, "acme", tenants[0].Name)
	assert.Equal(t, "Pedidos", tenants[0].SheetName)
	assert.Equal(t, "globex", tenants[1].SheetName)

	excluded := cfg.Excluded()
	require.Len(t, excluded, 1)
	assert.Equal(t, "initech", excluded[0].Tenant.Name)
	assert.True(t, syncerr.Is(excluded[0].Err, syncerr.CodeConfigIncomplete))
}

func TestLoad_CUE(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "config.cue"))
	require.NoError(t, err)

	assert.Equal(t, "ordersync-cue.db", cfg.StorePath)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, DriverSQLite, cfg.Destination.Driver)
	assert.Equal(t, 4, cfg.Upstream.RetryCount())
	assert.Equal(t, 25, cfg.Upstream.PerPage)
	assert.Equal(t, 2*time.Hour, cfg.Schedule.Interval.Std())

	tenants := cfg.Tenants()
	require.Len(t, tenants, 2)
	assert.Equal(t, "shared-key", tenants[0].VtexAppKey)
	assert.Equal(t, "acme", tenants[0].SheetName)
	assert.Equal(t, "Orders", tenants[1].SheetName)
}

func TestParseCUE_RejectsSchemaViolations(t *testing.T) {
	tests := map[string]string{
		"unknown field":  `colour: "blue"`,
		"bad driver":     `destination: driver: "excel"`,
		"per page range": `upstream: per_page: 500`,
		"nameless":       `tenants: [{sheet_id: "x"}]`,
		"bad base url":   `upstream: base_url: "https://example.com"`,
	}

	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCUE([]byte(src), "bad.cue")
			assert.Error(t, err)
		})
	}
}

func TestLoad_JSONC(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "config.jsonc"))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9191", cfg.Metrics.Addr)
	assert.Equal(t, DriverMemory, cfg.Destination.Driver)
	require.Len(t, cfg.Tenants(), 1)
	assert.Equal(t, "acme", cfg.Tenants()[0].SheetName)
}

func TestParseYAML_UnknownField(t *testing.T) {
	_, err := ParseYAML([]byte("store_pth: x.db\n"))
	assert.Error(t, err)
}

func TestParseYAML_Empty(t *testing.T) {
	cfg, err := ParseYAML(nil)
	require.NoError(t, err)
	assert.Empty(t, cfg.TenantList)
}

func TestLoad_ExplicitZeroDisablesRetriesAndRateLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("upstream:\n  retries: 0\n  requests_per_second: 0\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Upstream.RetryCount())
	assert.Equal(t, 0.0, cfg.Upstream.RateLimit())

	unset, err := ParseYAML(nil)
	require.NoError(t, err)
	unset.ApplyDefaults()
	assert.Equal(t, DefaultRetries, unset.Upstream.RetryCount())
	assert.Equal(t, float64(DefaultRPS), unset.Upstream.RateLimit())
}

func TestParseJSON_UnknownField(t *testing.T) {
	_, err := ParseJSON([]byte(`{"tenants": [{"name": "a", "sheet": "x"}]}`))
	assert.Error(t, err)
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "unsupported extension")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		var c Config
		c.ApplyDefaults()
		return c
	}

	require.NoError(t, base().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"log level", func(c *Config) { c.LogLevel = "trace" }},
		{"log format", func(c *Config) { c.LogFormat = "xml" }},
		{"driver", func(c *Config) { c.Destination.Driver = "excel" }},
		{"base url", func(c *Config) { c.Upstream.BaseURL = "https://example.com" }},
		{"concurrency", func(c *Config) { c.Upstream.Concurrency = -1 }},
		{"per page", func(c *Config) { c.Upstream.PerPage = 101 }},
		{"negative retries", func(c *Config) { n := -1; c.Upstream.Retries = &n }},
		{"negative rate", func(c *Config) { r := -0.5; c.Upstream.RequestsPerSecond = &r }},
		{"interval", func(c *Config) { c.Schedule.Interval = -1 }},
		{"nameless tenant", func(c *Config) { c.TenantList = []Tenant{{}} }},
		{"duplicate tenant", func(c *Config) { c.TenantList = []Tenant{{Name: "a"}, {Name: "a"}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestTenantValidate(t *testing.T) {
	complete := Tenant{
		Name:            "acme",
		VtexAccountName: "acmestore",
		VtexAppKey:      "k",
		VtexAppToken:    "t",
		SheetID:         "1AbC",
		SheetName:       "acme",
	}
	require.NoError(t, complete.Validate())

	partial := complete
	partial.VtexAppToken = ""
	partial.SheetID = ""
	err := partial.Validate()
	require.Error(t, err)
	assert.True(t, syncerr.Is(err, syncerr.CodeConfigIncomplete))
	assert.Contains(t, err.Error(), "vtex_app_token, sheet_id")
}

func TestBigQueryValidate(t *testing.T) {
	err := BigQuery{ProjectID: "p"}.Validate()
	require.Error(t, err)
	assert.True(t, syncerr.Is(err, syncerr.CodeConfigIncomplete))
	assert.Contains(t, err.Error(), "dataset, table")

	assert.NoError(t, BigQuery{ProjectID: "p", Dataset: "d", Table: "t"}.Validate())
}

func TestTenantMasked(t *testing.T) {
	tn := Tenant{Name: "acme", VtexAppKey: "vtexappkey-acme-XYZ", VtexAppToken: "abc"}
	m := tn.Masked()

	assert.Equal(t, "********-XYZ", m.VtexAppKey)
	assert.Equal(t, "***", m.VtexAppToken)
	assert.Equal(t, "vtexappkey-acme-XYZ", tn.VtexAppKey)
}

func TestConfigTenantLookup(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "config.yaml"))
	require.NoError(t, err)

	got, ok := cfg.Tenant("globex")
	assert.True(t, ok)
	assert.Equal(t, "1GhIjKl", got.SheetID)

	_, ok = cfg.Tenant("initech")
	assert.False(t, ok, "incomplete tenants are not addressable")
}

func TestAccountURL(t *testing.T) {
	u := Upstream{BaseURL: DefaultBaseURL}
	assert.Equal(t, "https://acmestore.vtexcommercestable.com.br/api/oms/pvt/orders", u.AccountURL("acmestore"))
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", Config{LogLevel: "debug"}.SlogLevel().String())
	assert.Equal(t, "INFO", Config{LogLevel: ""}.SlogLevel().String())
	assert.Equal(t, "ERROR", Config{LogLevel: "error"}.SlogLevel().String())
}

func TestDurationText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1h30m")))
	assert.Equal(t, 90*time.Minute, d.Std())

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1h30m0s", string(text))

	assert.Error(t, d.UnmarshalText([]byte("soon")))
}

// Package config loads the process configuration: global settings plus the
// ordered list of tenants to synchronize.
//
// Configuration is read once at process start from a YAML, CUE or JSONC file,
// or from the environment (optionally seeded by a .env file). It is passed
// by value afterwards and never mutated.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/ordersync/internal/syncerr"
)

// Defaults.
const (
	DefaultStorePath   = "ordersync.db"
	DefaultBaseURL     = "https://{account}.vtexcommercestable.com.br/api/oms/pvt/orders"
	DefaultTimeout     = 30 * time.Second
	DefaultConcurrency = 4
	DefaultRPS         = 10
	DefaultRetries     = 2
	DefaultMaxPages    = 1
	DefaultStatus      = "invoiced"
	DefaultPerPage     = 50
	DefaultInterval    = time.Hour
	DefaultMetricsAddr = ":9090"
	DefaultDriver      = DriverSheets
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	maxPerPage         = 100
	accountPlaceholder = "{account}"
)

// Destination drivers.
const (
	DriverSheets = "sheets"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config is the full process configuration.
type Config struct {
	StorePath   string      `yaml:"store_path" json:"store_path"`
	LogLevel    string      `yaml:"log_level" json:"log_level"`
	LogFormat   string      `yaml:"log_format" json:"log_format"`
	Destination Destination `yaml:"destination" json:"destination"`
	Upstream    Upstream    `yaml:"upstream" json:"upstream"`
	Schedule    Schedule    `yaml:"schedule" json:"schedule"`
	Metrics     Metrics     `yaml:"metrics" json:"metrics"`
	TenantList  []Tenant    `yaml:"tenants" json:"tenants"`
}

// Destination selects where rows are written.
type Destination struct {
	Driver string `yaml:"driver" json:"driver"`

	// CredentialsFile is a Google service-account JSON key. Empty means
	// application default credentials.
	CredentialsFile string `yaml:"credentials_file" json:"credentials_file"`

	// BigQuery is the optional secondary sink.
	BigQuery BigQuery `yaml:"bigquery" json:"bigquery"`
}

// BigQuery names the table normalized batches are streamed into.
type BigQuery struct {
	ProjectID string `yaml:"project_id" json:"project_id"`
	Dataset   string `yaml:"dataset" json:"dataset"`
	Table     string `yaml:"table" json:"table"`

	// CredentialsFile overrides destination.credentials_file.
	CredentialsFile string `yaml:"credentials_file" json:"credentials_file"`
}

// Validate reports the missing fields as a CONFIG_INCOMPLETE error.
func (b BigQuery) Validate() error {
	var missing []string
	if b.ProjectID == "" {
		missing = append(missing, "project_id")
	}
	if b.Dataset == "" {
		missing = append(missing, "dataset")
	}
	if b.Table == "" {
		missing = append(missing, "table")
	}
	if len(missing) > 0 {
		return syncerr.New(syncerr.CodeConfigIncomplete, "bigquery", "missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// Upstream tunes the order API client.
type Upstream struct {
	// BaseURL is the order list endpoint; "{account}" is replaced by the
	// tenant's account name.
	BaseURL           string   `yaml:"base_url" json:"base_url"`
	Timeout           Duration `yaml:"timeout" json:"timeout"`
	Concurrency       int      `yaml:"concurrency" json:"concurrency"`
	MaxPages          int      `yaml:"max_pages" json:"max_pages"`
	Status            string   `yaml:"status" json:"status"`
	PerPage           int      `yaml:"per_page" json:"per_page"`

	// RequestsPerSecond and Retries are nil when unset. An explicit 0
	// disables rate limiting or retries.
	RequestsPerSecond *float64 `yaml:"requests_per_second" json:"requests_per_second"`
	Retries           *int     `yaml:"retries" json:"retries"`
}

// RateLimit returns the configured requests per second, or DefaultRPS when
// unset.
func (u Upstream) RateLimit() float64 {
	if u.RequestsPerSecond == nil {
		return DefaultRPS
	}
	return *u.RequestsPerSecond
}

// RetryCount returns the configured retry count, or DefaultRetries when
// unset.
func (u Upstream) RetryCount() int {
	if u.Retries == nil {
		return DefaultRetries
	}
	return *u.Retries
}

// Schedule configures the serve loop.
type Schedule struct {
	Interval Duration `yaml:"interval" json:"interval"`
}

// Metrics configures the Prometheus endpoint.
type Metrics struct {
	Addr string `yaml:"addr" json:"addr"`
}

// Tenant is one independently configured account.
type Tenant struct {
	Name            string `yaml:"name" json:"name"`
	VtexAccountName string `yaml:"vtex_account_name" json:"vtex_account_name"`
	VtexAppKey      string `yaml:"vtex_app_key" json:"vtex_app_key"`
	VtexAppToken    string `yaml:"vtex_app_token" json:"vtex_app_token"`
	SheetID         string `yaml:"sheet_id" json:"sheet_id"`
	SheetName       string `yaml:"sheet_name" json:"sheet_name"`
}

// Exclusion is a configured tenant left out of every pass.
type Exclusion struct {
	Tenant Tenant
	Err    error
}

// Validate reports the required fields the tenant is missing, as a
// CONFIG_INCOMPLETE error.
func (t Tenant) Validate() error {
	var missing []string
	if t.VtexAccountName == "" {
		missing = append(missing, "vtex_account_name")
	}
	if t.VtexAppKey == "" {
		missing = append(missing, "vtex_app_key")
	}
	if t.VtexAppToken == "" {
		missing = append(missing, "vtex_app_token")
	}
	if t.SheetID == "" {
		missing = append(missing, "sheet_id")
	}
	if t.SheetName == "" {
		missing = append(missing, "sheet_name")
	}
	if len(missing) > 0 {
		return syncerr.New(syncerr.CodeConfigIncomplete, "validate tenant",
			"tenant %q is missing %s", t.Name, strings.Join(missing, ", "))
	}
	return nil
}

// Masked returns a copy safe to print: credentials keep only their last
// four characters.
func (t Tenant) Masked() Tenant {
	t.VtexAppKey = mask(t.VtexAppKey)
	t.VtexAppToken = mask(t.VtexAppToken)
	return t
}

func mask(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", 8) + s[len(s)-4:]
}

// Tenants returns the complete tenants in configured order.
func (c Config) Tenants() []Tenant {
	var out []Tenant
	for _, t := range c.TenantList {
		if t.Validate() == nil {
			out = append(out, t)
		}
	}
	return out
}

// Excluded returns the incomplete tenants with the reason for each.
func (c Config) Excluded() []Exclusion {
	var out []Exclusion
	for _, t := range c.TenantList {
		if err := t.Validate(); err != nil {
			out = append(out, Exclusion{Tenant: t, Err: err})
		}
	}
	return out
}

// Tenant looks up a complete tenant by name.
func (c Config) Tenant(name string) (Tenant, bool) {
	for _, t := range c.Tenants() {
		if t.Name == name {
			return t, true
		}
	}
	return Tenant{}, false
}

// WarnExcluded logs one warning per incomplete tenant.
func (c Config) WarnExcluded(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, ex := range c.Excluded() {
		logger.Warn("tenant configuration incomplete, skipping", "tenant", ex.Tenant.Name, "error", ex.Err)
	}
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.StorePath == "" {
		c.StorePath = DefaultStorePath
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	if c.Destination.Driver == "" {
		c.Destination.Driver = DefaultDriver
	}
	if c.Destination.BigQuery.CredentialsFile == "" {
		c.Destination.BigQuery.CredentialsFile = c.Destination.CredentialsFile
	}
	u := &c.Upstream
	if u.BaseURL == "" {
		u.BaseURL = DefaultBaseURL
	}
	if u.Timeout == 0 {
		u.Timeout = Duration(DefaultTimeout)
	}
	if u.Concurrency == 0 {
		u.Concurrency = DefaultConcurrency
	}
	if u.RequestsPerSecond == nil {
		rps := float64(DefaultRPS)
		u.RequestsPerSecond = &rps
	}
	if u.Retries == nil {
		retries := DefaultRetries
		u.Retries = &retries
	}
	if u.MaxPages == 0 {
		u.MaxPages = DefaultMaxPages
	}
	if u.Status == "" {
		u.Status = DefaultStatus
	}
	if u.PerPage == 0 {
		u.PerPage = DefaultPerPage
	}
	if c.Schedule.Interval == 0 {
		c.Schedule.Interval = Duration(DefaultInterval)
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = DefaultMetricsAddr
	}
	for i := range c.TenantList {
		if c.TenantList[i].SheetName == "" {
			c.TenantList[i].SheetName = c.TenantList[i].Name
		}
	}
}

// Validate rejects invalid global settings. Incomplete tenants are not an
// error; see Excluded.
func (c Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level: unknown level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format: unknown format %q", c.LogFormat)
	}
	switch c.Destination.Driver {
	case DriverSheets, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("destination.driver: unknown driver %q", c.Destination.Driver)
	}
	u := c.Upstream
	if !strings.Contains(u.BaseURL, accountPlaceholder) {
		return fmt.Errorf("upstream.base_url: must contain %s", accountPlaceholder)
	}
	if u.Timeout < 0 || u.Concurrency < 1 || u.MaxPages < 1 {
		return fmt.Errorf("upstream: timeout, concurrency and max_pages must be positive")
	}
	if u.RateLimit() < 0 || u.RetryCount() < 0 {
		return fmt.Errorf("upstream: requests_per_second and retries must not be negative")
	}
	if u.PerPage < 1 || u.PerPage > maxPerPage {
		return fmt.Errorf("upstream.per_page: must be between 1 and %d", maxPerPage)
	}
	if c.Schedule.Interval <= 0 {
		return fmt.Errorf("schedule.interval: must be positive")
	}

	seen := make(map[string]bool, len(c.TenantList))
	for _, t := range c.TenantList {
		if t.Name == "" {
			return fmt.Errorf("tenants: every tenant needs a name")
		}
		if seen[t.Name] {
			return fmt.Errorf("tenants: duplicate tenant %q", t.Name)
		}
		seen[t.Name] = true
	}
	return nil
}

// SlogLevel returns the configured level as a slog.Level.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// AccountURL renders the order list endpoint for one account.
func (u Upstream) AccountURL(account string) string {
	return strings.ReplaceAll(u.BaseURL, accountPlaceholder, account)
}

// Duration is a time.Duration written as text ("90s", "1h") in config files.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

package contract

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/drawbias/core/agg"
	"github.com/huangsam/drawbias/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 9
	MaxResultLimit     = 100
	DefaultPrecision   = 2
	DefaultWindowDays  = 120
	MaxWindowDays      = 3650
)

// DateTimeFormat is the accepted layout of --now besides a plain date.
var DateTimeFormat = time.RFC3339

// Config holds the runtime configuration of a pass.
// This struct remains the "final, validated" config.
type Config struct {
	ResultLimit int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)

	// Now is the reference instant of every pass. It is never read from the clock elsewhere.
	Now        time.Time
	WindowDays int
	Context    schema.AnalysisContext
	GuidePath  string

	IncludeTest bool

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	LogLevel  slog.Level
	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	Limit          int    `mapstructure:"limit"`
	Precision      int    `mapstructure:"precision"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Width          int    `mapstructure:"width"`
	Now            string `mapstructure:"now"`
	WindowDays     int    `mapstructure:"window-days"`
	Context        string `mapstructure:"context"`
	Guide          string `mapstructure:"guide"`
	IncludeTest    bool   `mapstructure:"include-test"`
	StoreBackend   string `mapstructure:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect"`
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
	LogLevel       string `mapstructure:"log-level"`
	Emoji          string `mapstructure:"emoji"`
	Color          string `mapstructure:"color"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Context.Weekday != nil {
		wd := *c.Context.Weekday
		clone.Context.Weekday = &wd
	}
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct. clock supplies now when --now is empty.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput, clock func() time.Time) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	now, err := ParseNow(input.Now, clock)
	if err != nil {
		return err
	}
	cfg.Now = now
	analysisCtx, err := ParseAnalysisContext(input.Context)
	if err != nil {
		return err
	}
	cfg.Context = analysisCtx
	return nil
}

// validateSimpleInputs processes and validates all non-backend fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.GuidePath = strings.TrimSpace(input.Guide)
	cfg.IncludeTest = input.IncludeTest

	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Precision < 1 || input.Precision > 4 {
		return fmt.Errorf("precision must be between 1 and 4 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	if input.WindowDays <= 0 || input.WindowDays > MaxWindowDays {
		return fmt.Errorf("window-days must be greater than 0 and cannot exceed %d (received %d)", MaxWindowDays, input.WindowDays)
	}
	cfg.WindowDays = input.WindowDays

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}

	level, err := ParseLogLevel(input.LogLevel)
	if err != nil {
		return err
	}
	cfg.LogLevel = level
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates store and cache backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if cfg.StoreBackend == schema.NoneBackend {
		return fmt.Errorf("store backend cannot be none. must be sqlite, mysql, postgresql")
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	if err := ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
		return err
	}

	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// For SQLite, resolve to actual file paths to catch default path conflicts
	if cfg.StoreBackend == schema.SQLiteBackend && cfg.CacheBackend == schema.SQLiteBackend {
		storePath := cfg.StoreDBConnect
		if storePath == "" {
			storePath = GetStoreDBFilePath()
		}
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		if storePath == cachePath {
			return fmt.Errorf("store and cache must use different SQLite database files. Both resolve to %q", storePath)
		}
	}
	return nil
}

// ParseNow parses the reference instant. Empty input falls back to clock.
// A plain date means midnight UTC of that date.
func ParseNow(s string, clock func() time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return clock().UTC(), nil
	}
	if t, err := time.Parse(DateTimeFormat, s); err == nil {
		return t.UTC(), nil
	}
	if t, ok := agg.ParseDrawDate(s); ok {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid --now value '%s'. Expected YYYY-MM-DD or RFC3339", s)
}

// weekdayNames maps accepted spellings to weekdays.
var weekdayNames = map[string]time.Weekday{
	"dom": time.Sunday, "domingo": time.Sunday, "sun": time.Sunday, "sunday": time.Sunday,
	"lun": time.Monday, "lunes": time.Monday, "mon": time.Monday, "monday": time.Monday,
	"mar": time.Tuesday, "martes": time.Tuesday, "tue": time.Tuesday, "tuesday": time.Tuesday,
	"mie": time.Wednesday, "mié": time.Wednesday, "miercoles": time.Wednesday, "miércoles": time.Wednesday, "wed": time.Wednesday, "wednesday": time.Wednesday,
	"jue": time.Thursday, "jueves": time.Thursday, "thu": time.Thursday, "thursday": time.Thursday,
	"vie": time.Friday, "viernes": time.Friday, "fri": time.Friday, "friday": time.Friday,
	"sab": time.Saturday, "sáb": time.Saturday, "sabado": time.Saturday, "sábado": time.Saturday, "sat": time.Saturday, "saturday": time.Saturday,
}

// ParseWeekday accepts 0..6 (Sunday first) or a Spanish or English name.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > 6 {
			return 0, fmt.Errorf("weekday must be between 0 and 6 (received %d)", n)
		}
		return time.Weekday(n), nil
	}
	if wd, ok := weekdayNames[s]; ok {
		return wd, nil
	}
	return 0, fmt.Errorf("invalid weekday '%s'", s)
}

// ParseAnalysisContext parses "country=ni,weekday=lun,year=2024,target-slot=9PM".
// Unknown keys are rejected. An empty string yields the zero context.
func ParseAnalysisContext(s string) (schema.AnalysisContext, error) {
	var out schema.AnalysisContext
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return schema.AnalysisContext{}, fmt.Errorf("invalid context entry '%s', expected 'key=value'", part)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		switch key {
		case "country":
			out.Country = value
		case "weekday":
			wd, err := ParseWeekday(value)
			if err != nil {
				return schema.AnalysisContext{}, err
			}
			out.Weekday = &wd
		case "year":
			year, err := strconv.Atoi(value)
			if err != nil || year < 1900 || year > 9999 {
				return schema.AnalysisContext{}, fmt.Errorf("invalid context year '%s'", value)
			}
			out.Year = year
		case "target-slot", "slot":
			slot, ok := agg.ParseSlot(value)
			if !ok {
				return schema.AnalysisContext{}, fmt.Errorf("invalid context slot '%s'", value)
			}
			out.TargetSlot = slot
		default:
			return schema.AnalysisContext{}, fmt.Errorf("unknown context key '%s'. must be country, weekday, year, target-slot", key)
		}
	}
	return out, nil
}

// ParseLogLevel maps debug, info, warn and error onto slog levels.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelWarn, nil
	}
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level '%s'. must be debug, info, warn, error", s)
	}
	return level, nil
}

package contract

import (
	"fmt"
	"maps"
	"math"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/huangsam/courseload/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 25
	MaxResultLimit     = 1000
	DefaultPrecision   = 3
	MaxPrecision       = 4
	DefaultAddr        = ":8080"
	DefaultCatalogPath = "data"
	DefaultProfilesDir = "data/students"
)

// weightSumTolerance is how far explicit burnout weights may drift from 1.0.
const weightSumTolerance = 0.001

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// BurnoutRawInput holds the burnout parameters from the YAML config file.
// Use float64 pointers for optional fields.
type BurnoutRawInput struct {
	W1               *float64 `mapstructure:"w1"`
	W2               *float64 `mapstructure:"w2"`
	W3               *float64 `mapstructure:"w3"`
	K                *float64 `mapstructure:"k"`
	P0               *float64 `mapstructure:"p0"`
	ProficiencyScale *float64 `mapstructure:"proficiency_scale"`
}

// UtilityRawInput holds the utility coefficients from the YAML config file.
type UtilityRawInput struct {
	Alpha *float64 `mapstructure:"alpha"`
	Beta  *float64 `mapstructure:"beta"`
	Delta *float64 `mapstructure:"delta"`
}

// ThresholdsRawInput holds ranking thresholds from the YAML config file.
type ThresholdsRawInput struct {
	Match       *float64 `mapstructure:"match"`
	Competitive *float64 `mapstructure:"competitive"`
	MaxBurnout  *float64 `mapstructure:"max_burnout"`
}

// ParamsRawInput holds every engine parameter section of the config file.
type ParamsRawInput struct {
	Burnout    BurnoutRawInput    `mapstructure:"burnout"`
	Utility    UtilityRawInput    `mapstructure:"utility"`
	Thresholds ThresholdsRawInput `mapstructure:"thresholds"`
}

// Config holds the runtime configuration.
// This struct remains the "final, validated" config.
type Config struct {
	CatalogPath    string
	ProfilesDir    string
	StrictProfiles bool

	ResultLimit int
	Workers     int
	Detail      bool
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool

	Semester     int
	Interests    []string
	RoundExtras  [][]string // extra interests for session rounds after the first
	Rounds       int
	CheckStudent string

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	TableBackend   schema.DatabaseBackend
	TableDBConnect string // Please use env var as this is plaintext
	TableTTL       time.Duration

	Addr       string
	APIKeyHash string
	LogFormat  string
	LogLevel   string

	Burnout    schema.BurnoutParams
	Utility    schema.UtilityParams
	Thresholds schema.Thresholds
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Catalog        string `mapstructure:"catalog"`
	ProfilesDir    string `mapstructure:"profiles-dir"`
	Strict         bool   `mapstructure:"strict"`
	OutputFile     string `mapstructure:"output-file"`
	Limit          int    `mapstructure:"limit"`
	Workers        int    `mapstructure:"workers"`
	Precision      int    `mapstructure:"precision"`
	Output         string `mapstructure:"output"`
	Detail         bool   `mapstructure:"detail"`
	Width          int    `mapstructure:"width"`
	Color          string `mapstructure:"color"`
	StoreBackend   string `mapstructure:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect"`
	TableBackend   string `mapstructure:"table-backend"`
	TableDBConnect string `mapstructure:"table-db-connect"`
	TableTTL       string `mapstructure:"table-ttl"`

	// --- Fields from recommend/session flags ---
	Semester  int      `mapstructure:"semester"`
	Interests string   `mapstructure:"interests"`
	More      []string `mapstructure:"more"`
	Rounds    int      `mapstructure:"rounds"`

	// --- Fields from checkCmd.Flags() ---
	Student    string `mapstructure:"student"`
	MaxBurnout string `mapstructure:"max-burnout"`

	// --- Fields from serveCmd.Flags() ---
	Addr       string `mapstructure:"addr"`
	APIKeyHash string `mapstructure:"api-key-hash"`
	LogFormat  string `mapstructure:"log-format"`
	LogLevel   string `mapstructure:"log-level"`

	// --- Engine parameters from config file ---
	Params ParamsRawInput `mapstructure:",squash"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Interests = append([]string(nil), c.Interests...)
	if c.RoundExtras != nil {
		clone.RoundExtras = make([][]string, len(c.RoundExtras))
		for i, r := range c.RoundExtras {
			clone.RoundExtras[i] = append([]string(nil), r...)
		}
	}
	if c.Burnout.Weights != nil {
		clone.Burnout.Weights = maps.Clone(c.Burnout.Weights)
	}
	return &clone
}

// EngineParams returns the engine parameters carried by the config.
func (c *Config) EngineParams() schema.EngineParams {
	return schema.EngineParams{
		Burnout:    c.Burnout,
		Utility:    c.Utility,
		Thresholds: c.Thresholds,
	}
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processSessionInputs(cfg, input); err != nil {
		return err
	}
	if err := processServerInputs(cfg, input); err != nil {
		return err
	}
	params, err := ProcessParamsRawInput(input.Params, true)
	if err != nil {
		return err
	}
	cfg.Burnout, cfg.Utility, cfg.Thresholds = params.Burnout, params.Utility, params.Thresholds

	// Command-line --max-burnout flag takes precedence over config file settings.
	if input.MaxBurnout != "" {
		v, err := strconv.ParseFloat(strings.TrimSpace(input.MaxBurnout), 64)
		if err != nil {
			return fmt.Errorf("invalid --max-burnout value '%s': %w", input.MaxBurnout, err)
		}
		if v < 0 || v > 1 {
			return fmt.Errorf("max burnout must be between 0.0 and 1.0 (received %.2f)", v)
		}
		cfg.Thresholds.MaxBurnout = v
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of connection strings
// for the MySQL, PostgreSQL and Redis backends.
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
	case schema.RedisBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if _, err := redis.ParseURL(connStr); err != nil {
			return fmt.Errorf("invalid Redis URL: %w", err)
		}
	}
	return nil
}

// validateBackendConfigs validates run store and score table backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Run Store Validation ---
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if cfg.StoreBackend == "" {
		cfg.StoreBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	if err := ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
		return err
	}

	// --- Score Table Validation ---
	cfg.TableBackend = schema.DatabaseBackend(strings.ToLower(input.TableBackend))
	if cfg.TableBackend == "" {
		cfg.TableBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidTableBackends[cfg.TableBackend]; !ok {
		return fmt.Errorf("invalid table backend '%s'. must be sqlite, mysql, postgresql, redis, none", input.TableBackend)
	}
	cfg.TableDBConnect = input.TableDBConnect
	if err := ValidateDatabaseConnectionString(cfg.TableBackend, cfg.TableDBConnect); err != nil {
		return err
	}

	if input.TableTTL != "" {
		ttl, err := time.ParseDuration(input.TableTTL)
		if err != nil {
			return fmt.Errorf("invalid table TTL '%s': %w", input.TableTTL, err)
		}
		if ttl < 0 {
			return fmt.Errorf("table TTL cannot be negative (received %s)", ttl)
		}
		cfg.TableTTL = ttl
	}

	// Validate that the two SQLite stores do not share a file
	if cfg.StoreBackend == schema.SQLiteBackend && cfg.TableBackend == schema.SQLiteBackend {
		storePath := cfg.StoreDBConnect
		if storePath == "" {
			storePath = GetRunDBFilePath()
		}
		tablePath := cfg.TableDBConnect
		if tablePath == "" {
			tablePath = GetTableDBFilePath()
		}
		if storePath == tablePath {
			return fmt.Errorf("run and table storage must use different SQLite database files. Both resolve to %q", storePath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-backend fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.CatalogPath = strings.TrimSpace(input.Catalog)
	if cfg.CatalogPath == "" {
		cfg.CatalogPath = DefaultCatalogPath
	}
	cfg.ProfilesDir = strings.TrimSpace(input.ProfilesDir)
	if cfg.ProfilesDir == "" {
		cfg.ProfilesDir = DefaultProfilesDir
	}
	cfg.StrictProfiles = input.Strict
	cfg.OutputFile = input.OutputFile
	cfg.Detail = input.Detail
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}
	return nil
}

// processSessionInputs handles semester, interests and session rounds.
func processSessionInputs(cfg *Config, input *ConfigRawInput) error {
	if input.Semester < 0 {
		return fmt.Errorf("semester cannot be negative (received %d)", input.Semester)
	}
	cfg.Semester = input.Semester
	cfg.Interests = schema.SplitList(input.Interests, ",")

	cfg.RoundExtras = nil
	for _, more := range input.More {
		cfg.RoundExtras = append(cfg.RoundExtras, schema.SplitList(more, ","))
	}

	if input.Rounds < 0 {
		return fmt.Errorf("rounds cannot be negative (received %d)", input.Rounds)
	}
	cfg.Rounds = input.Rounds
	if cfg.Rounds == 0 {
		cfg.Rounds = 1 + len(cfg.RoundExtras)
	}
	cfg.CheckStudent = strings.TrimSpace(input.Student)
	return nil
}

// processServerInputs handles the HTTP server settings.
func processServerInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Addr = input.Addr
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	cfg.APIKeyHash = strings.TrimSpace(input.APIKeyHash)

	cfg.LogFormat = strings.ToLower(input.LogFormat)
	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format '%s'. must be text, json", input.LogFormat)
	}

	cfg.LogLevel = strings.ToLower(input.LogLevel)
	switch cfg.LogLevel {
	case "":
		cfg.LogLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level '%s'. must be debug, info, warn, error", input.LogLevel)
	}
	return nil
}

// ProcessParamsRawInput merges the raw parameter sections over the defaults.
// If validateSum is true and all three burnout weights are given, they must sum to 1.0.
func ProcessParamsRawInput(input ParamsRawInput, validateSum bool) (schema.EngineParams, error) {
	params := schema.GetDefaultEngineParams()

	b := input.Burnout
	weights := map[schema.BreakdownKey]*float64{
		schema.BreakdownWorkload: b.W1,
		schema.BreakdownMismatch: b.W2,
		schema.BreakdownStress:   b.W3,
	}
	given, sum := 0, 0.0
	for key, w := range weights {
		if w == nil {
			continue
		}
		if math.IsNaN(*w) || *w < 0 || *w > 1 {
			return schema.EngineParams{}, fmt.Errorf("burnout weight %s must be between 0.0 and 1.0 (received %.3f)", key, *w)
		}
		params.Burnout.Weights[key] = *w
		given++
		sum += *w
	}
	if validateSum && given == len(weights) && math.Abs(sum-1) > weightSumTolerance {
		return schema.EngineParams{}, fmt.Errorf("burnout weights must sum to 1.0, got %.3f", sum)
	}

	if b.K != nil {
		if *b.K <= 0 {
			return schema.EngineParams{}, fmt.Errorf("sigmoid k must be greater than 0 (received %.3f)", *b.K)
		}
		params.Burnout.K = *b.K
	}
	if b.P0 != nil {
		params.Burnout.P0 = *b.P0
	}
	if b.ProficiencyScale != nil {
		if *b.ProficiencyScale <= 0 {
			return schema.EngineParams{}, fmt.Errorf("proficiency scale must be greater than 0 (received %.3f)", *b.ProficiencyScale)
		}
		params.Burnout.ProficiencyScale = *b.ProficiencyScale
	}

	u := input.Utility
	for _, f := range []struct {
		v   *float64
		dst *float64
	}{{u.Alpha, &params.Utility.Alpha}, {u.Beta, &params.Utility.Beta}, {u.Delta, &params.Utility.Delta}} {
		if f.v != nil {
			*f.dst = *f.v
		}
	}

	t := input.Thresholds
	for _, f := range []struct {
		name string
		v    *float64
		dst  *float64
	}{
		{"match", t.Match, &params.Thresholds.Match},
		{"competitive", t.Competitive, &params.Thresholds.Competitive},
		{"max_burnout", t.MaxBurnout, &params.Thresholds.MaxBurnout},
	} {
		if f.v == nil {
			continue
		}
		if *f.v < 0 || *f.v > 1 {
			return schema.EngineParams{}, fmt.Errorf("threshold %s must be between 0.0 and 1.0 (received %.2f)", f.name, *f.v)
		}
		*f.dst = *f.v
	}
	return params, nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

package schema

// Custom string types for type safety.
type (
	// BreakdownKey represents keys used in burnout breakdowns.
	BreakdownKey string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for the run and score stores.
	DatabaseBackend string

	// RequirementType represents the kind of skill a subject requires.
	RequirementType string

	// RunKind represents the operation recorded by a tracked run.
	RunKind string

	// Partition represents which recommendation list a subject was placed in.
	Partition string
)

// Breakdown keys used in the burnout logic.
const (
	BreakdownWorkload BreakdownKey = "workload" // W'
	BreakdownMismatch BreakdownKey = "mismatch" // M'
	BreakdownStress   BreakdownKey = "stress"   // S'
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All store backends supported. RedisBackend only applies to the score table store.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	RedisBackend      DatabaseBackend = "redis"
	NoneBackend       DatabaseBackend = "none"
)

// All requirement types supported.
const (
	ProgrammingRequirement RequirementType = "programming"
	MathRequirement        RequirementType = "math"
)

// All run kinds tracked by the run store.
const (
	ScoresRun    RunKind = "scores"
	RecommendRun RunKind = "recommend"
	SessionRun   RunKind = "session"
	ScheduleRun  RunKind = "schedule"
)

// Recommendation partitions.
const (
	RecommendedPartition Partition = "recommended"
	CompetitivePartition Partition = "competitive"
)

// AllBreakdownKeys returns the burnout factors in formula order.
var AllBreakdownKeys = []BreakdownKey{BreakdownWorkload, BreakdownMismatch, BreakdownStress}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid run store backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidTableBackends lists all valid score table backends.
var ValidTableBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	RedisBackend:      {},
	NoneBackend:       {},
}

// ValidRequirementTypes lists all valid requirement types.
var ValidRequirementTypes = map[RequirementType]struct{}{
	ProgrammingRequirement: {},
	MathRequirement:        {},
}

// Scoring defaults.
const (
	DefaultSigmoidK         = 4.0
	DefaultSigmoidP0        = 0.5
	DefaultProficiencyScale = 3.0 // intake forms collect 1-5; see metrics output
	IntakeProficiencyMax    = 5.0

	DefaultAlpha = 0.5
	DefaultBeta  = 0.5
	DefaultDelta = 0.5

	DefaultMatchThreshold       = 0.3
	DefaultCompetitiveThreshold = 0.3
	DefaultMaxBurnout           = 0.8

	DefaultGrade = 70.0

	// ScheduleSize is the number of slots in a final schedule.
	ScheduleSize = 5

	// RoundSize caps each list per recommendation round.
	RoundSize = 5

	// TopScoresSize is how many rows the API echoes back as top_scores.
	TopScoresSize = 5
)

// DefaultInterests apply when a student has no interests at all.
var DefaultInterests = []string{"computer science", "data science", "programming"}

// InterestKeywords maps a recognized interest to the keywords searched for in course outcomes.
// Keyword order is the order reasons are emitted in.
var InterestKeywords = map[string][]string{
	"ai":               {"artificial intelligence", "machine learning", "deep learning", "neural", "nlp"},
	"web":              {"web", "javascript", "frontend", "backend", "full-stack", "react", "node"},
	"data":             {"data", "analytics", "database", "sql", "big data", "visualization"},
	"security":         {"security", "cryptography", "cyber", "network security"},
	"mobile":           {"mobile", "ios", "android", "app development"},
	"systems":          {"operating system", "distributed", "parallel", "architecture"},
	"programming":      {"python", "java", "c++", "algorithms", "software engineering"},
	"computer science": {"algorithms", "data structures", "programming", "software"},
}

// ProgrammingLanguages is the skill vocabulary for programming requirements.
var ProgrammingLanguages = []string{
	"Python", "Java", "C++", "JavaScript", "C#", "R", "MATLAB",
	"Go", "Rust", "Swift", "Kotlin", "PHP", "Ruby", "TypeScript",
	"SQL", "Scala", "Julia", "Haskell", "Perl", "Assembly",
}

// MathAreas is the skill vocabulary for math requirements.
var MathAreas = []string{
	"Calculus", "Linear Algebra", "Statistics", "Probability",
	"Discrete Mathematics", "Number Theory", "Graph Theory",
	"Differential Equations", "Numerical Analysis", "Real Analysis",
	"Complex Analysis", "Topology", "Abstract Algebra", "Optimization",
	"Game Theory", "Set Theory", "Logic", "Geometry", "Trigonometry",
	"Combinatorics",
}

// GetDefaultWeights returns the default burnout factor weights (w1, w2, w3).
func GetDefaultWeights() map[BreakdownKey]float64 {
	return map[BreakdownKey]float64{
		BreakdownWorkload: 0.4,
		BreakdownMismatch: 0.3,
		BreakdownStress:   0.3,
	}
}

// GetDefaultBurnoutParams returns the default burnout parameters.
func GetDefaultBurnoutParams() BurnoutParams {
	return BurnoutParams{
		Weights:          GetDefaultWeights(),
		K:                DefaultSigmoidK,
		P0:               DefaultSigmoidP0,
		ProficiencyScale: DefaultProficiencyScale,
	}
}

// GetDefaultUtilityParams returns the default utility parameters.
func GetDefaultUtilityParams() UtilityParams {
	return UtilityParams{Alpha: DefaultAlpha, Beta: DefaultBeta, Delta: DefaultDelta}
}

// GetDefaultThresholds returns the default ranking thresholds.
func GetDefaultThresholds() Thresholds {
	return Thresholds{
		Match:       DefaultMatchThreshold,
		Competitive: DefaultCompetitiveThreshold,
		MaxBurnout:  DefaultMaxBurnout,
	}
}

// GetDefaultEngineParams returns the stock engine parameter set.
func GetDefaultEngineParams() EngineParams {
	return EngineParams{
		Burnout:    GetDefaultBurnoutParams(),
		Utility:    GetDefaultUtilityParams(),
		Thresholds: GetDefaultThresholds(),
	}
}

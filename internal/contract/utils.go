package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/huangsam/courseload/schema"
)

// Color variables for console output.
var (
	HighColor         = color.New(color.FgRed, color.Bold)     // strong danger.
	ModerateHighColor = color.New(color.FgMagenta, color.Bold) // distinct warning.
	ModerateColor     = color.New(color.FgYellow)              // caution, not bold.
	LowColor          = color.New(color.FgCyan)                // informational.
	GoodColor         = color.New(color.FgGreen)
)

// GetColorLabel returns a colored burnout label for console output (table).
// It uses schema.GetBurnoutLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(score float64) string {
	text := schema.GetBurnoutLabel(score)

	switch text {
	case schema.BurnoutHigh:
		return HighColor.Sprint(text)
	case schema.BurnoutModerateHigh:
		return ModerateHighColor.Sprint(text)
	case schema.BurnoutModerate:
		return ModerateColor.Sprint(text)
	default: // "Low"
		return LowColor.Sprint(text)
	}
}

// GetColorEnrollmentLabel returns a colored seat availability label.
func GetColorEnrollmentLabel(seats, enrollments float64) string {
	text := schema.GetEnrollmentLabel(seats, enrollments)

	switch text {
	case schema.EnrollmentFull:
		return HighColor.Sprint(text)
	case schema.EnrollmentLimited:
		return ModerateHighColor.Sprint(text)
	case schema.EnrollmentFilling:
		return ModerateColor.Sprint(text)
	case schema.EnrollmentGood:
		return GoodColor.Sprint(text)
	default:
		return text
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path means os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetTableDBFilePath returns the path to the SQLite DB file for score table storage.
func GetTableDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".courseload_tables.db"
	}
	return filepath.Join(homeDir, ".courseload_tables.db")
}

// GetRunDBFilePath returns the path to the SQLite DB file for run storage.
func GetRunDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".courseload_runs.db"
	}
	return filepath.Join(homeDir, ".courseload_runs.db")
}

// TruncateText truncates text to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 to leave room for the ellipsis and at least one character.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// Package main times the courseload CLI against a subject catalog and a directory of
// student profiles. Each command runs several times without a score table store, then
// several times with a fresh SQLite store, where the first successful run is cold and
// the rest are averaged as warm. Results are written to a CSV file.
//
// Prerequisites:
// - courseload binary installed and available in PATH
// - A data directory with subjects.yaml (or subjects.csv) and a students/ subdirectory
//
// Usage: go run benchmark/main.go [data-dir]
//
//	data-dir: Directory containing the catalog and students/
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the no-store average, cold run and warm average of one command.
type BenchmarkResult struct {
	Student     string
	Command     string
	NoStoreTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	DataDir     string
	ProfilesDir string
	Timeout     time.Duration
	Workers     int
	NoStoreRuns int
	StoreRuns   int
	Students    []string
}

// benchCommand is one CLI invocation under test. Success is the phrase the text output ends with.
type benchCommand struct {
	Name    string
	Args    []string
	Success string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [data-dir]\n", os.Args[0])
		os.Exit(1)
	}
	dataDir, err := filepath.Abs(os.Args[1])
	if err != nil {
		fmt.Printf("Invalid data directory: %v\n", err)
		os.Exit(1)
	}

	config := BenchmarkConfig{
		DataDir:     dataDir,
		ProfilesDir: filepath.Join(dataDir, "students"),
		Timeout:     time.Minute,
		Workers:     8,
		NoStoreRuns: 3,
		StoreRuns:   4,
	}

	if err := checkPrerequisites(&config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies the binary and data directory, and discovers the students to time.
func checkPrerequisites(config *BenchmarkConfig) error {
	if _, err := exec.LookPath("courseload"); err != nil {
		return fmt.Errorf("courseload binary not found in PATH")
	}
	if _, err := os.Stat(config.DataDir); os.IsNotExist(err) {
		return fmt.Errorf("data directory not found at %s", config.DataDir)
	}

	matches, err := filepath.Glob(filepath.Join(config.ProfilesDir, "student_*"))
	if err != nil {
		return err
	}
	for _, m := range matches {
		name := strings.TrimPrefix(filepath.Base(m), "student_")
		config.Students = append(config.Students, strings.TrimSuffix(name, filepath.Ext(name)))
	}
	if len(config.Students) == 0 {
		return fmt.Errorf("no student profiles found in %s", config.ProfilesDir)
	}
	return nil
}

// runBenchmarks times every command for every student, then the batch command once.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d students, %v timeout, %d workers, no-store: %d runs, store: %d runs\n",
		len(config.Students), config.Timeout, config.Workers, config.NoStoreRuns, config.StoreRuns)

	for _, student := range config.Students {
		fmt.Printf("Benchmarking student %s\n", student)
		commands := []benchCommand{
			{Name: "scores", Args: []string{"scores", student}, Success: "Scored in"},
			{Name: "recommend", Args: []string{"recommend", student}, Success: "Ranked"},
			{Name: "session", Args: []string{"session", student, "--more", "machine learning"}, Success: "completed in"},
		}
		for _, c := range commands {
			results = append(results, runBenchmarkSuite(config, student, c))
		}
	}

	batch := benchCommand{Name: "scores-all", Args: []string{"scores", "--all"}, Success: "Scored"}
	results = append(results, runBenchmarkSuite(config, "*", batch))
	return results
}

// runBenchmarkSuite runs the no-store and store phases for one command.
func runBenchmarkSuite(config BenchmarkConfig, student string, c benchCommand) BenchmarkResult {
	fmt.Printf("Running %s for %s\n", c.Name, student)

	runPhase := func(backend, dbPath string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, c, backend, dbPath, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	_, noStoreAvg := runPhase("none", "", config.NoStoreRuns, "No-store")

	// A fresh database per suite keeps the first store run cold
	dir, err := os.MkdirTemp("", "courseload-bench-")
	if err != nil {
		fmt.Printf("Warning: failed to create temp dir: %v\n", err)
		return BenchmarkResult{Student: student, Command: c.Name, NoStoreTime: noStoreAvg, ColdTime: "ERROR", WarmTime: "ERROR"}
	}
	defer func() { _ = os.RemoveAll(dir) }()
	coldTime, warmAvg := runPhase("sqlite", filepath.Join(dir, "tables.db"), config.StoreRuns, "Store")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-store average: %s, Cold time: %s, Warm average: %s\n", noStoreAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Student:     student,
		Command:     c.Name,
		NoStoreTime: noStoreAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a command numRuns times with the given table backend and returns the cold and warm times.
func runBenchmark(config BenchmarkConfig, c benchCommand, backend, dbPath string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := append([]string{}, c.Args...)
	args = append(args,
		"--catalog", config.DataDir,
		"--profiles-dir", config.ProfilesDir,
		"--workers", fmt.Sprint(config.Workers),
		"--table-backend", backend,
		"--store-backend", "none",
		"--color", "no",
	)
	if dbPath != "" {
		args = append(args, "--table-db-connect", dbPath)
	}

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("courseload", args...)

		done := make(chan bool, 1)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && strings.Contains(string(output), c.Success) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("courseload_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"student", "cmd", "no_store_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Student, result.Command, result.NoStoreTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final results grouped by command
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, command := range []string{"scores", "recommend", "session", "scores-all"} {
		fmt.Printf("%s:\n", command)
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %-8s: No-store: %s, Cold: %s, Warm: %s\n", result.Student, result.NoStoreTime, result.ColdTime, result.WarmTime)
			}
		}
	}
}

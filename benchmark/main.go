// Package main provides a performance benchmarking tool for the drawbias CLI.
// It generates synthetic ledgers of increasing size, imports each into its own
// SQLite store and times the read commands without cache, on a cold cache and
// on a warm cache, generating CSV output for performance analysis.
//
// Prerequisites:
// - drawbias binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where ledgers and databases are written
package main

import (
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Ledger      string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	LedgerSizes map[string]int
	Commands    [][]string
	Now         string
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:     os.Args[1],
		Timeout:     5 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		LedgerSizes: map[string]int{"small": 300, "medium": 3000, "large": 30000},
		Commands:    [][]string{{"predict"}, {"patterns"}, {"profiles"}, {"tiers"}},
		Now:         "2030-01-01",
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(config, results)
}

// checkPrerequisites verifies that the drawbias binary and the work dir exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("drawbias"); err != nil {
		return fmt.Errorf("drawbias binary not found in PATH")
	}
	return os.MkdirAll(config.WorkDir, 0o755)
}

// writeLedger writes a synthetic CSV ledger with three draws per day.
func writeLedger(path string, size int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	rng := rand.New(rand.NewPCG(uint64(size), 42))
	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"fecha", "horario", "pais", "numero"}); err != nil {
		return err
	}
	slots := []string{"11AM", "3PM", "9PM"}
	countries := []string{"cr", "cr", "ni"}
	day := time.Date(2029, 12, 31, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -size/3)
	for i := range size {
		if i > 0 && i%3 == 0 {
			day = day.AddDate(0, 0, 1)
		}
		rec := []string{day.Format("2006-01-02"), slots[i%3], countries[rng.IntN(len(countries))], fmt.Sprintf("%02d", rng.IntN(100))}
		if err := writer.Write(rec); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// runBenchmarks prepares every ledger and times every command against it
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d ledgers, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.LedgerSizes), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, name := range []string{"small", "medium", "large"} {
		size := config.LedgerSizes[name]
		dir := filepath.Join(config.WorkDir, name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Printf("Skipping %s: %v\n", name, err)
			continue
		}
		env := ledgerEnv(config, dir)
		ledgerPath := filepath.Join(dir, "draws.csv")
		if err := writeLedger(ledgerPath, size); err != nil {
			fmt.Printf("Skipping %s: %v\n", name, err)
			continue
		}
		fmt.Printf("Importing %d draws into %s\n", size, name)
		if output, err := drawbias(env, "draws", "import", ledgerPath).CombinedOutput(); err != nil {
			fmt.Printf("Skipping %s: import failed: %v\nOutput: %s\n", name, err, string(output))
			continue
		}

		for _, args := range config.Commands {
			results = append(results, runBenchmarkSuite(config, name, env, args))
		}
	}

	return results
}

// ledgerEnv points the store and cache of one ledger at files under dir.
func ledgerEnv(config BenchmarkConfig, dir string) []string {
	return []string{
		"DRAWBIAS_STORE_BACKEND=sqlite",
		"DRAWBIAS_STORE_DB_CONNECT=" + filepath.Join(dir, "ledger.db"),
		"DRAWBIAS_CACHE_DB_CONNECT=" + filepath.Join(dir, "cache.db"),
		"DRAWBIAS_NOW=" + config.Now,
	}
}

func drawbias(env []string, args ...string) *exec.Cmd {
	cmd := exec.Command("drawbias", args...)
	cmd.Env = append(os.Environ(), env...)
	return cmd
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, ledger string, env, args []string) BenchmarkResult {
	command := args[0]
	fmt.Printf("Running %s on %s\n", command, ledger)

	// Helper to run a benchmark phase
	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, env, args, cacheBackend, numRuns)
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

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs, starting from an empty cache
	clearEnv := append(append([]string{}, env...), "DRAWBIAS_CACHE_BACKEND=sqlite")
	if output, err := drawbias(clearEnv, "cache", "clear").CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	}
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Ledger:      ledger,
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a drawbias command multiple times with specified cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, env, args []string, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	runEnv := append(append([]string{}, env...), "DRAWBIAS_CACHE_BACKEND="+cacheBackend)

	var times []float64
	for range numRuns {
		start := time.Now()
		cmd := drawbias(runEnv, args...)

		done := make(chan error, 1)
		go func() {
			_, err := cmd.CombinedOutput()
			done <- err
		}()

		select {
		case err := <-done:
			if err == nil {
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
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("drawbias_benchmark_%s.csv", timestamp))

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

	// Write header
	if err := writer.Write([]string{"ledger", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Ledger, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(config BenchmarkConfig, results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, args := range config.Commands {
		fmt.Printf("%s:\n", args[0])
		for _, result := range results {
			if result.Command == args[0] {
				fmt.Printf("  %-8s: No-cache: %s, Cold: %s, Warm: %s\n", result.Ledger, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
}

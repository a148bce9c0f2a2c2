package prefs

import (
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/sprefs/cmd/util"
	"github.com/ValentinKolb/sprefs/lib/common"
	prefslib "github.com/ValentinKolb/sprefs/lib/prefs"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for preference namespaces",
		RunE:    run,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix  = "__perf"
	perfNumThreads = 10
	perfKeySpread  = 100
	perfSkip       = make([]string, 0)
)

func init() {
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. put,commit)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	perfKeySpread = max(viper.GetInt("keys"), 1)
	perfNumThreads = max(viper.GetInt("threads"), 1)
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

// benchmark is one named test, fn runs inside testing.Benchmark
type benchmark struct {
	name string
	fn   func(b *testing.B)
}

func run(_ *cobra.Command, _ []string) error {
	fmt.Println("Performance testing tool for preference namespaces")

	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetCLIConfig().String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Println()

	fmt.Println("starting tests...")

	benchmarks := []benchmark{
		{"put", benchPut},
		{"commit", benchCommit},
		{"get", benchGet},
		{"contains", benchContains},
		{"contains-not", benchContainsNot},
		{"mixed", benchMixed},
	}

	results := make(map[string]testing.BenchmarkResult)
	for _, bm := range benchmarks {
		if shouldSkip(bm.name) {
			results[bm.name] = testing.BenchmarkResult{}
			printResult(bm.name, testing.BenchmarkResult{})
			continue
		}
		result := testing.Benchmark(bm.fn)
		results[bm.name] = result
		printResult(bm.name, result)
	}

	if err := prefslib.Flush(); err != nil {
		return err
	}

	// Write results to csv is specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, util.GetCLIConfig()); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Benchmarks
// --------------------------------------------------------------------------

// prepare fills the keys of a test (optional) and removes them after the test
func prepare(b *testing.B, name string, fill bool) func(int) string {
	getKey, iter := getKeys(name)
	if fill {
		iter(func(k string) {
			if err := prefslib.PutString(k, "test"); err != nil {
				log.Printf("(%s) - error setting key: %v\n", name, err)
			}
		})
	}
	b.Cleanup(func() {
		iter(func(k string) {
			if err := prefslib.Remove(k); err != nil {
				log.Printf("(%s) - error deleting key: %v\n", name, err)
			}
		})
	})
	b.SetParallelism(perfNumThreads)
	b.ResetTimer()
	return getKey
}

func benchPut(b *testing.B) {
	getKey := prepare(b, "put", false)
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			if err := prefslib.PutInt(getKey(counter), int32(counter)); err != nil {
				log.Printf("(put) - error setting key: %v\n", err)
			}
			counter++
		}
	})
}

func benchCommit(b *testing.B) {
	getKey := prepare(b, "commit", false)
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			editor, err := prefslib.Edit()
			if err == nil {
				err = editor.PutInt(getKey(counter), int32(counter)).Commit()
			}
			if err != nil {
				log.Printf("(commit) - error committing key: %v\n", err)
			}
			counter++
		}
	})
}

func benchGet(b *testing.B) {
	getKey := prepare(b, "get", true)
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			if _, err := prefslib.GetString(getKey(counter)); err != nil {
				log.Printf("(get) - error getting key: %v\n", err)
			}
			counter++
		}
	})
}

func benchContains(b *testing.B) {
	getKey := prepare(b, "contains", true)
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			if _, err := prefslib.Contains(getKey(counter)); err != nil {
				log.Printf("(contains) - error checking key: %v\n", err)
			}
			counter++
		}
	})
}

func benchContainsNot(b *testing.B) {
	b.SetParallelism(perfNumThreads)
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			key := fmt.Sprintf("%s/contains-not-%d", perfKeyPrefix, counter%100)
			if _, err := prefslib.Contains(key); err != nil {
				log.Printf("(contains-not) - error checking key: %v\n", err)
			}
			counter++
		}
	})
}

func benchMixed(b *testing.B) {
	getKey := prepare(b, "mixed", true)
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			key := getKey(counter)
			var err error
			switch counter % 4 {
			case 0: // put
				err = prefslib.PutString(key, "test")
			case 1: // get
				_, err = prefslib.GetString(key)
			case 2: // remove
				err = prefslib.Remove(key)
			case 3: // contains
				_, err = prefslib.Contains(key)
			}
			if err != nil {
				log.Printf("(mixed) - error performing operation (%d): %v\n", counter%4, err)
			}
			counter++
		}
	})
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	for _, skip := range perfSkip {
		if test == strings.TrimSpace(skip) {
			return true
		}
	}
	return false
}

// creates an array of test keys and functions to work with them
func getKeys(prefix string) (func(int) string, func(func(string))) {
	keys := make([]string, perfKeySpread)
	for i := 0; i < perfKeySpread; i++ {
		keys[i] = fmt.Sprintf("%s-%s-%d", perfKeyPrefix, prefix, i)
	}

	// Function to get a key by index (with wraparound)
	getKey := func(i int) string {
		return keys[i%perfKeySpread]
	}

	// Function to iterate over all keys and apply a function to each
	iterateKeys := func(fn func(string)) {
		for _, key := range keys {
			fn(key)
		}
	}

	return getKey, iterateKeys
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result testing.BenchmarkResult) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\n", test, nsPerOp, time.Duration(nsPerOp), opsPerSec)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]testing.BenchmarkResult, config *common.CLIConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "Skipped",
		"Package", "Namespace", "Mode", "Shards",
		"Threads", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	tests := make([]string, 0, len(results))
	for test := range results {
		tests = append(tests, test)
	}
	sort.Strings(tests)

	for _, test := range tests {
		result := results[test]
		var nsPerOp, opsPerSec float64
		skipped := "true"
		if result.NsPerOp() != 0 {
			skipped = "false"
			nsPerOp = math.Max(float64(result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			skipped,
			config.Host.PackageName,
			config.Namespace,
			config.Mode,
			strconv.Itoa(config.Host.Shards),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfKeySpread),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}

package arr

import (
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ValentinKolb/dArr/cmd/util"
	"github.com/ValentinKolb/dArr/lib/array"
	"github.com/ValentinKolb/dArr/lib/value"
	"github.com/ValentinKolb/dArr/rpc/common"
	"github.com/google/uuid"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for dArr servers",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfArrayPrefix = "__perf"
	perfNumThreads  = 10
	perfArrays      = 10
	perfIndices     = 1000
	perfSparseStep  = uint32(100003)
	perfSkip        = make([]string, 0)
)

// benchmark is one named perf test
type benchmark struct {
	name string
	// prepare fills the arrays before the timer starts
	prepare func(arrays []string)
	// op runs one operation, i counts the operations of the calling goroutine
	op func(arrays []string, i int) error
}

// perfResult pairs the testing result with the latency distribution
type perfResult struct {
	bench   testing.BenchmarkResult
	latency gometrics.Timer
}

func init() {
	flags := perfTestCmd.Flags()
	flags.String("skip", "", util.WrapString("Benchmarks to skip (comma separated, e.g. put-sparse,sort)"))
	flags.Int("threads", 10, util.WrapString("Number of threads to use for the benchmark"))
	flags.Int("arrays", 10, util.WrapString("How many different arrays to use for the tests"))
	flags.Int("indices", 1000, util.WrapString("How many indices per array the tests touch"))
	flags.String("csv", "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	perfNumThreads = max(1, viper.GetInt("threads"))
	perfArrays = max(1, viper.GetInt("arrays"))
	perfIndices = max(1, viper.GetInt("indices"))
	perfSkip = util.SplitList(viper.GetString("skip"))

	return nil
}

func runPerf(_ *cobra.Command, _ []string) error {
	fmt.Println("Performance testing tool for dArr servers")

	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Threads: %d, Arrays: %d, Indices: %d\n", perfNumThreads, perfArrays, perfIndices)
	fmt.Println()

	fmt.Println("starting tests...")

	results := make(map[string]perfResult)
	for _, b := range benchmarks() {
		if slices.Contains(perfSkip, b.name) {
			printResult(b.name, perfResult{})
			continue
		}
		result := runBenchmark(b)
		results[b.name] = result
		printResult(b.name, result)
	}

	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, util.GetClientConfig()); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// benchmarks lists the perf tests in the order they run
func benchmarks() []benchmark {
	small := value.String("test")
	fill := func(arrays []string) {
		for _, name := range arrays {
			for i := 0; i < perfIndices; i++ {
				if err := rpcStore.Put(name, uint32(i), value.Int(perfIndices-i)); err != nil {
					log.Printf("(prepare) - error putting value: %v\n", err)
				}
			}
		}
	}

	return []benchmark{
		{
			name: "put",
			op: func(arrays []string, i int) error {
				return rpcStore.Put(arrays[i%len(arrays)], uint32(i%perfIndices), small)
			},
		},
		{
			// indices far apart keep the arrays in sparse mode
			name: "put-sparse",
			op: func(arrays []string, i int) error {
				index := (uint32(i%perfIndices) * perfSparseStep) % array.MaxArrayIndex
				return rpcStore.Put(arrays[i%len(arrays)], index, small)
			},
		},
		{
			name:    "get",
			prepare: fill,
			op: func(arrays []string, i int) error {
				_, err := rpcStore.Get(arrays[i%len(arrays)], uint32(i%perfIndices))
				return err
			},
		},
		{
			name:    "delete",
			prepare: fill,
			op: func(arrays []string, i int) error {
				_, err := rpcStore.Delete(arrays[i%len(arrays)], uint32(i%perfIndices))
				return err
			},
		},
		{
			name:    "length",
			prepare: fill,
			op: func(arrays []string, i int) error {
				_, err := rpcStore.Length(arrays[i%len(arrays)])
				return err
			},
		},
		{
			name:    "sort",
			prepare: fill,
			op: func(arrays []string, i int) error {
				order := array.SortNumeric
				if i%2 == 1 {
					order = array.SortNumericDesc
				}
				return rpcStore.Sort(arrays[i%len(arrays)], order)
			},
		},
		{
			name:    "mixed",
			prepare: fill,
			op: func(arrays []string, i int) error {
				name, index := arrays[i%len(arrays)], uint32(i%perfIndices)
				var err error
				switch i % 4 {
				case 0:
					err = rpcStore.Put(name, index, small)
				case 1:
					_, err = rpcStore.Get(name, index)
				case 2:
					_, err = rpcStore.Delete(name, index)
				case 3:
					_, err = rpcStore.Length(name)
				}
				return err
			},
		},
	}
}

// runBenchmark runs b in parallel on fresh arrays and drops them afterwards
func runBenchmark(b benchmark) perfResult {
	latency := gometrics.NewTimer()

	result := testing.Benchmark(func(tb *testing.B) {
		arrays := arrayNames(b.name)
		if b.prepare != nil {
			b.prepare(arrays)
		}

		tb.Cleanup(func() {
			for _, name := range arrays {
				if _, err := rpcStore.Drop(name); err != nil {
					log.Printf("(%s) - error dropping array: %v\n", b.name, err)
				}
			}
		})

		var goroutines atomic.Int64
		tb.SetParallelism(perfNumThreads)
		tb.ResetTimer()

		tb.RunParallel(func(pb *testing.PB) {
			// spread the goroutines over the arrays
			i := int(goroutines.Add(1)) * perfIndices
			for pb.Next() {
				start := time.Now()
				if err := b.op(arrays, i); err != nil {
					log.Printf("(%s) - error performing operation: %v\n", b.name, err)
				}
				latency.UpdateSince(start)
				i++
			}
		})
	})

	return perfResult{bench: result, latency: latency}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// arrayNames creates unique array names for one test run
func arrayNames(test string) []string {
	run := uuid.NewString()
	names := make([]string, perfArrays)
	for i := range names {
		names[i] = fmt.Sprintf("%s-%s-%s-%d", perfArrayPrefix, test, run, i)
	}
	return names
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result perfResult) {
	if result.latency == nil || result.bench.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.bench.NsPerOp()), 1)
	opsPerSec := 1.0 / (nsPerOp / 1e9)
	p := result.latency.Percentiles([]float64{0.5, 0.99})

	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\tp50=%s p99=%s\n",
		test, nsPerOp, time.Duration(nsPerOp), opsPerSec, time.Duration(p[0]), time.Duration(p[1]))
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]perfResult, config *common.ClientConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "P50Ns", "P99Ns",
		"Endpoints", "TimeoutSec", "RetryCount", "ConnectionsPerEndpoint",
		"ShardID", "Serializer", "Transport",
		"Threads", "Arrays", "Indices",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	tests := make([]string, 0, len(results))
	for test := range results {
		tests = append(tests, test)
	}
	slices.Sort(tests)

	for _, test := range tests {
		result := results[test]
		nsPerOp := math.Max(float64(result.bench.NsPerOp()), 1)
		p := result.latency.Percentiles([]float64{0.5, 0.99})

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", 1.0/(nsPerOp/1e9)),
			fmt.Sprintf("%.0f", p[0]),
			fmt.Sprintf("%.0f", p[1]),
			strings.Join(config.Transport.Endpoints, ";"),
			strconv.Itoa(config.TimeoutSecond),
			strconv.Itoa(config.Transport.RetryCount),
			strconv.Itoa(config.Transport.ConnectionsPerEndpoint),
			strconv.FormatUint(util.GetShardID(), 10),
			viper.GetString("serializer"),
			viper.GetString("transport"),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfArrays),
			strconv.Itoa(perfIndices),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}

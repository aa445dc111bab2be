package bench

import (
	"fmt"
	"github.com/ValentinKolb/dPortable/cmd/util"
	"github.com/ValentinKolb/dPortable/lib/portable"
	"github.com/ValentinKolb/dPortable/rpc/common"
	"github.com/ValentinKolb/dPortable/rpc/serializer"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"math"
	"os"
	"reflect"
	"testing"
	"time"
)

var Logger = logger.GetLogger("cmd")

var (
	benchConfig     = &common.CodecConfig{}
	benchNodes      = 100
	benchIterations = 1000

	// BenchCmd measures the encoder on a cyclic object graph and on protocol messages
	BenchCmd = &cobra.Command{
		Use:     "bench",
		Short:   "Performance testing tool for the portable encoder",
		PreRunE: processBenchConfig,
		RunE:    runBench,
	}
)

func init() {
	key := "nodes"
	BenchCmd.Flags().Int(key, 100, util.WrapString("Number of nodes in the benchmark graph"))

	key = "iterations"
	BenchCmd.Flags().Int(key, 1000, util.WrapString("Number of timed encodes per test for the latency percentiles"))

	key = "metrics"
	BenchCmd.Flags().Bool(key, false, util.WrapString("Print all collected metrics after the benchmark"))
}

func processBenchConfig(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	benchConfig = util.GetCodecConfig()
	benchNodes = viper.GetInt("nodes")
	benchIterations = viper.GetInt("iterations")

	if benchNodes <= 0 || benchIterations <= 0 {
		return fmt.Errorf("nodes and iterations must be positive")
	}
	return nil
}

func runBench(_ *cobra.Command, _ []string) error {
	fmt.Println("Performance testing tool for the portable encoder")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(benchConfig.String())
	fmt.Printf("Nodes: %d, Iterations: %d\n", benchNodes, benchIterations)
	fmt.Println()

	m, err := util.NewMarshaller(benchConfig, RegisterNode, func(r *portable.TypeRegistry) error {
		_, err := serializer.RegisterMessage(r)
		return err
	})
	if err != nil {
		return err
	}
	s, err := serializer.NewPortableSerializerWith(m)
	if err != nil {
		return err
	}

	registry := metrics.NewRegistry()
	graph := BuildGraph(benchNodes)
	msg := *common.NewSetERequest("bench-key", make([]byte, 1024), 60_000, 120_000)

	if err := verifyMessage(s, msg); err != nil {
		return err
	}

	fmt.Println("starting tests...")

	tests := []struct {
		name   string
		encode func() (int, error)
	}{
		{"graph", func() (int, error) {
			data, err := m.Marshal(graph)
			return len(data), err
		}},
		{"message", func() (int, error) {
			data, err := s.Serialize(msg)
			return len(data), err
		}},
	}

	for _, test := range tests {
		timer := metrics.GetOrRegisterTimer("encode."+test.name+".latency", registry)
		sizes := metrics.GetOrRegisterHistogram("encode."+test.name+".size", registry, metrics.NewUniformSample(1028))

		if err := measure(test.encode, timer, sizes, benchIterations); err != nil {
			return fmt.Errorf("%s: %w", test.name, err)
		}

		result := testing.Benchmark(func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := test.encode(); err != nil {
					Logger.Errorf("(%s) - error encoding: %v", test.name, err)
					return
				}
			}
		})
		printResult(test.name, result, timer, sizes)
	}

	stats := m.Stats()
	fmt.Printf("\n%d encodes, %d failures, %d bytes, %d records, %d back-references\n",
		stats.Encodes, stats.Failures, stats.Bytes, stats.Records, stats.BackReferences)

	if viper.GetBool("metrics") {
		fmt.Println()
		metrics.WriteOnce(registry, os.Stdout)
		m.WriteMetrics(os.Stdout)
	}
	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// measure runs encode n times and records the latency and the encoded size of every run
func measure(encode func() (int, error), timer metrics.Timer, sizes metrics.Histogram, n int) error {
	for i := 0; i < n; i++ {
		start := time.Now()
		size, err := encode()
		if err != nil {
			return err
		}
		timer.UpdateSince(start)
		sizes.Update(int64(size))
	}
	return nil
}

// verifyMessage checks that msg survives a round trip through the serializer
func verifyMessage(s serializer.IRPCSerializer, msg common.Message) error {
	data, err := s.Serialize(msg)
	if err != nil {
		return err
	}
	var result common.Message
	if err := s.Deserialize(data, &result); err != nil {
		return err
	}
	if !reflect.DeepEqual(msg, result) {
		return fmt.Errorf("message changed in round trip: %s != %s", &msg, &result)
	}
	return nil
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result testing.BenchmarkResult, timer metrics.Timer, sizes metrics.Histogram) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	ps := timer.Percentiles([]float64{0.5, 0.95, 0.99})

	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\t%d allocs/op\n", test, nsPerOp, time.Duration(nsPerOp), opsPerSec, result.AllocsPerOp())
	fmt.Printf("%-20sp50 %s  p95 %s  p99 %s\n", "", time.Duration(ps[0]), time.Duration(ps[1]), time.Duration(ps[2]))
	fmt.Printf("%-20ssize %d bytes (min %d, max %d)\n", "", int64(sizes.Mean()), sizes.Min(), sizes.Max())
}

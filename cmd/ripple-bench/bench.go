package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"runtime"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/ripplekit/ripple/pkg/ripple"
)

type benchConfig struct {
	Objects    int
	Effects    int
	Writes     int
	Batched    bool
	UseQueue   bool
	JSONOutput string
}

type benchReport struct {
	Run        runInfo        `json:"run"`
	Workload   workloadInfo   `json:"workload"`
	Throughput throughputInfo `json:"throughput"`
	LatencyUS  latencyInfo    `json:"write_latency_us"`
	GC         gcInfo         `json:"gc"`
}

type runInfo struct {
	Timestamp string `json:"timestamp"`
	Go        string `json:"go"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	CPUCount  int    `json:"cpu_count"`
}

type workloadInfo struct {
	Objects  int  `json:"objects"`
	Effects  int  `json:"effects"`
	Writes   int  `json:"writes"`
	Batched  bool `json:"batched"`
	UseQueue bool `json:"use_queue"`
}

type throughputInfo struct {
	EffectRuns   uint64  `json:"effect_runs"`
	WritesPerSec float64 `json:"writes_per_sec"`
	ElapsedMS    float64 `json:"elapsed_ms"`
}

type latencyInfo struct {
	Min float64 `json:"min"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
	Max float64 `json:"max"`
}

type gcInfo struct {
	AllocMB float64 `json:"alloc_mb"`
	NumGC   uint32  `json:"num_gc"`
}

func benchCmd() *cobra.Command {
	cfg := benchConfig{}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run a synthetic reactive workload",
		Long: `bench builds a grid of reactive objects, subscribes effects to
their keys, then writes values in a round-robin pattern, measuring write
latency and total effect executions.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cfg)
		},
	}

	cmd.Flags().IntVar(&cfg.Objects, "objects", 100, "number of reactive objects")
	cmd.Flags().IntVar(&cfg.Effects, "effects", 500, "number of subscribed effects")
	cmd.Flags().IntVar(&cfg.Writes, "writes", 100000, "number of writes to perform")
	cmd.Flags().BoolVar(&cfg.Batched, "batched", false, "wrap writes in batches of 100")
	cmd.Flags().BoolVar(&cfg.UseQueue, "queue", false, "defer effects through a flush queue")
	cmd.Flags().StringVar(&cfg.JSONOutput, "json", "", "JSON report path ('-' for stdout)")

	return cmd
}

// benchProbe counts effect runs without touching reactive state.
type benchProbe struct {
	effectRuns uint64
}

func (p *benchProbe) EffectRan(uint64)      { p.effectRuns++ }
func (p *benchProbe) Triggered(string, int) {}
func (p *benchProbe) FlushBegan()           {}
func (p *benchProbe) FlushEnded(int, error) {}

func runBench(cfg benchConfig) error {
	if cfg.Objects <= 0 || cfg.Effects <= 0 || cfg.Writes <= 0 {
		return fmt.Errorf("objects, effects, and writes must all be > 0")
	}

	probe := &benchProbe{}
	ripple.SetProbe(probe)
	defer ripple.SetProbe(nil)

	objects := make([]*ripple.Object, cfg.Objects)
	for i := range objects {
		objects[i] = ripple.NewObject(map[string]any{"value": 0})
	}

	var queue *ripple.Queue
	if cfg.UseQueue {
		queue = ripple.NewQueue()
	}

	scope := ripple.NewScope(nil)
	scope.Run(func() {
		for i := 0; i < cfg.Effects; i++ {
			obj := objects[i%len(objects)]
			var opts []ripple.EffectOption
			if queue != nil {
				opts = append(opts, ripple.WithScheduler(queue.EnqueueEffect))
			}
			ripple.NewEffect(func() any {
				return obj.Get("value")
			}, opts...)
		}
	})
	defer scope.Dispose()

	samples := make([]time.Duration, 0, cfg.Writes)

	var before runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)

	start := time.Now()
	const batchSize = 100

	write := func(i int) {
		obj := objects[i%len(objects)]
		t0 := time.Now()
		obj.Set("value", i)
		samples = append(samples, time.Since(t0))
	}

	if cfg.Batched {
		for i := 0; i < cfg.Writes; i += batchSize {
			end := i + batchSize
			if end > cfg.Writes {
				end = cfg.Writes
			}
			lo, hi := i, end
			ripple.Batch(func() {
				for j := lo; j < hi; j++ {
					write(j)
				}
			})
			if queue != nil {
				if err := queue.Flush(); err != nil {
					return err
				}
			}
		}
	} else {
		for i := 0; i < cfg.Writes; i++ {
			write(i)
		}
		if queue != nil {
			if err := queue.Flush(); err != nil {
				return err
			}
		}
	}

	elapsed := time.Since(start)

	var after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&after)

	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })

	report := benchReport{
		Run: runInfo{
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			Go:        runtime.Version(),
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			CPUCount:  runtime.NumCPU(),
		},
		Workload: workloadInfo{
			Objects:  cfg.Objects,
			Effects:  cfg.Effects,
			Writes:   cfg.Writes,
			Batched:  cfg.Batched,
			UseQueue: cfg.UseQueue,
		},
		Throughput: throughputInfo{
			EffectRuns:   probe.effectRuns,
			WritesPerSec: float64(cfg.Writes) / math.Max(0.001, elapsed.Seconds()),
			ElapsedMS:    float64(elapsed) / float64(time.Millisecond),
		},
		LatencyUS: latencySummary(samples),
		GC: gcInfo{
			AllocMB: float64(after.TotalAlloc-before.TotalAlloc) / (1024 * 1024),
			NumGC:   after.NumGC - before.NumGC,
		},
	}

	writeSummary(os.Stderr, report)

	if cfg.JSONOutput != "" {
		return writeJSON(cfg.JSONOutput, report)
	}
	return nil
}

func latencySummary(sorted []time.Duration) latencyInfo {
	if len(sorted) == 0 {
		return latencyInfo{}
	}
	return latencyInfo{
		Min: us(sorted[0]),
		P50: us(percentile(sorted, 0.50)),
		P95: us(percentile(sorted, 0.95)),
		P99: us(percentile(sorted, 0.99)),
		Max: us(sorted[len(sorted)-1]),
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	idx := int(math.Ceil(float64(len(sorted))*p)) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func us(d time.Duration) float64 {
	return float64(d) / float64(time.Microsecond)
}

func writeSummary(w io.Writer, report benchReport) {
	fmt.Fprintln(w, "=== Ripple Reactive Benchmark ===")
	fmt.Fprintf(w, "Objects: %d\n", report.Workload.Objects)
	fmt.Fprintf(w, "Effects: %d\n", report.Workload.Effects)
	fmt.Fprintf(w, "Writes: %d (batched=%v queue=%v)\n",
		report.Workload.Writes, report.Workload.Batched, report.Workload.UseQueue)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Elapsed: %.1f ms\n", report.Throughput.ElapsedMS)
	fmt.Fprintf(w, "Throughput: %.0f writes/s\n", report.Throughput.WritesPerSec)
	fmt.Fprintf(w, "Effect runs: %d\n", report.Throughput.EffectRuns)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Write latency:")
	fmt.Fprintf(w, "  min: %.2f us\n", report.LatencyUS.Min)
	fmt.Fprintf(w, "  p50: %.2f us\n", report.LatencyUS.P50)
	fmt.Fprintf(w, "  p95: %.2f us\n", report.LatencyUS.P95)
	fmt.Fprintf(w, "  p99: %.2f us\n", report.LatencyUS.P99)
	fmt.Fprintf(w, "  max: %.2f us\n", report.LatencyUS.Max)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "GC: alloc %.2f MB, %d collections\n", report.GC.AllocMB, report.GC.NumGC)
}

func writeJSON(path string, report benchReport) error {
	var out io.Writer
	if path == "-" {
		out = os.Stdout
	} else {
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

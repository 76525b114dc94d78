package benchmark

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/klauspost/cpuid/v2"
	"github.com/nvr-ai/go-filters/processor"
)

// HostInfo describes the machine a benchmark ran on.
type HostInfo struct {
	CPU            string   `json:"cpu"             yaml:"cpu"`
	Vendor         string   `json:"vendor"          yaml:"vendor"`
	PhysicalCores  int      `json:"physical_cores"  yaml:"physical_cores"`
	LogicalCores   int      `json:"logical_cores"   yaml:"logical_cores"`
	ThreadsPerCore int      `json:"threads_per_core" yaml:"threads_per_core"`
	L2CacheBytes   int      `json:"l2_cache_bytes"  yaml:"l2_cache_bytes"`
	SIMD           []string `json:"simd"            yaml:"simd"`
	GOOS           string   `json:"goos"            yaml:"goos"`
	GOARCH         string   `json:"goarch"          yaml:"goarch"`
	GoVersion      string   `json:"go_version"      yaml:"go_version"`
	GOMAXPROCS     int      `json:"gomaxprocs"      yaml:"gomaxprocs"`
	Accelerator    string   `json:"accelerator"     yaml:"accelerator"`
}

// DetectHost reads the CPU identification and Go runtime settings.
//
// Arguments:
// - accelerator: A description of the GPU probe outcome, may be empty.
//
// Returns:
// - HostInfo: The host description.
func DetectHost(accelerator string) HostInfo {
	info := HostInfo{
		CPU:            cpuid.CPU.BrandName,
		Vendor:         cpuid.CPU.VendorString,
		PhysicalCores:  cpuid.CPU.PhysicalCores,
		LogicalCores:   cpuid.CPU.LogicalCores,
		ThreadsPerCore: cpuid.CPU.ThreadsPerCore,
		L2CacheBytes:   cpuid.CPU.Cache.L2,
		GOOS:           runtime.GOOS,
		GOARCH:         runtime.GOARCH,
		GoVersion:      runtime.Version(),
		GOMAXPROCS:     runtime.GOMAXPROCS(0),
		Accelerator:    accelerator,
	}
	if info.CPU == "" {
		info.CPU = "unknown"
	}
	if info.LogicalCores == 0 {
		info.LogicalCores = runtime.NumCPU()
	}
	for _, f := range []struct {
		id   cpuid.FeatureID
		name string
	}{
		{cpuid.SSE4, "SSE4.1"},
		{cpuid.AVX, "AVX"},
		{cpuid.AVX2, "AVX2"},
		{cpuid.AVX512F, "AVX512F"},
		{cpuid.ASIMD, "NEON"},
	} {
		if cpuid.CPU.Supports(f.id) {
			info.SIMD = append(info.SIMD, f.name)
		}
	}
	return info
}

// String renders a one-line host summary.
func (h HostInfo) String() string {
	simd := "none"
	if len(h.SIMD) > 0 {
		simd = strings.Join(h.SIMD, ",")
	}
	s := fmt.Sprintf("%s (%d physical / %d logical cores, SIMD %s) %s/%s %s GOMAXPROCS=%d",
		h.CPU, h.PhysicalCores, h.LogicalCores, simd, h.GOOS, h.GOARCH, h.GoVersion, h.GOMAXPROCS)
	if h.Accelerator != "" {
		s += ", accelerator " + h.Accelerator
	}
	return s
}

// Report renders a text report: per filter, the average, min, max and standard
// deviation of every measured strategy followed by the fastest one.
//
// Arguments:
// - host: The host description printed in the header.
//
// Returns:
// - string: The report.
func (m *Metrics) Report(host HostInfo) string {
	var b strings.Builder
	b.WriteString("go-filters performance report\n")
	fmt.Fprintf(&b, "Host: %s\n", host)
	fmt.Fprintf(&b, "Metrics collected: %d\n\n", m.Len())

	for _, cmp := range m.AllComparisons() {
		fmt.Fprintf(&b, "%s:\n", cmp.Filter)
		for _, s := range processor.AllStrategies() {
			avg, ok := cmp.Times[s]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "  - %-12s avg %9.3f ms  min %9.3f  max %9.3f  stddev %8.3f  (n=%d)\n",
				s, avg, m.Min(cmp.Filter, s), m.Max(cmp.Filter, s), m.StdDev(cmp.Filter, s),
				len(m.Times(cmp.Filter, s)))
		}
		fmt.Fprintf(&b, "  > Fastest: %s, speedup vs Sequential: %.2fx\n\n", cmp.Fastest, cmp.SpeedupVsSequential)
	}
	return b.String()
}

// WriteComparisonTable prints one row per filter with the average milliseconds
// of each requested strategy ("N/A" when not measured) and the speedup.
//
// Arguments:
// - w: The destination.
// - strategies: The columns to print, in order.
//
// Returns:
// - error: The first write error.
func (m *Metrics) WriteComparisonTable(w io.Writer, strategies []processor.StrategyID) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%-15s", "Filter")
	for _, s := range strategies {
		fmt.Fprintf(&b, "%-12s", s)
	}
	fmt.Fprintf(&b, "%-10s\n", "Speedup")
	b.WriteString(strings.Repeat("-", 15+12*len(strategies)+10))
	b.WriteString("\n")

	for _, cmp := range m.AllComparisons() {
		fmt.Fprintf(&b, "%-15s", cmp.Filter)
		for _, s := range strategies {
			if avg, ok := cmp.Times[s]; ok {
				fmt.Fprintf(&b, "%-12.2f", avg)
			} else {
				fmt.Fprintf(&b, "%-12s", "N/A")
			}
		}
		fmt.Fprintf(&b, "%.2fx\n", cmp.SpeedupVsSequential)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

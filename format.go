package uringbench

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// OutputFormat represents the supported result rendering formats.
type OutputFormat string

const (
	// TableFormat renders results as a human-readable table.
	TableFormat OutputFormat = "table"

	// JSONFormat renders results as a json array.
	JSONFormat OutputFormat = "json"

	// FlatFormat renders results as space-separated values.
	FlatFormat OutputFormat = "flat"
)

// ValidateFormat checks that the provided format string is supported.
func ValidateFormat(format string) (OutputFormat, error) {
	f := OutputFormat(strings.ToLower(format))
	switch f {
	case TableFormat, JSONFormat, FlatFormat:
		return f, nil
	default:
		return "", fmt.Errorf("invalid format %q, supported formats are: table, json, flat", format)
	}
}

// FormatResults renders a result set in the requested format.
func FormatResults(results []Result, format OutputFormat) (string, error) {
	switch format {
	case TableFormat:
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("\n%-6s  %-8s  %10s  %10s  %12s  %12s  %12s  %8s\n",
			"OP", "PATTERN", "BLOCK", "REQUESTS", "ELAPSED", "IOPS", "BW (MB/s)", "FAILED"))
		for _, r := range results {
			sb.WriteString(fmt.Sprintf("%-6s  %-8s  %10d  %10d  %12s  %12.2f  %12.2f  %8d\n",
				r.Op, r.Pattern, r.BlockSize, r.NumRequests,
				r.Elapsed.Round(100*time.Microsecond).String(), r.IOPS, r.MBps, r.Failed))
		}
		return sb.String(), nil

	case JSONFormat:
		type formattedResult struct {
			Op          string  `json:"op"`
			Pattern     string  `json:"pattern"`
			BlockSize   int64   `json:"block_size"`
			Requests    int     `json:"requests"`
			ElapsedSecs float64 `json:"elapsed_seconds"`
			IOPS        float64 `json:"iops"`
			MBps        float64 `json:"throughput_mbs"`
			Failed      uint64  `json:"failed"`
			AvgLatNs    int64   `json:"avg_latency_ns"`
		}

		formatted := make([]formattedResult, 0, len(results))
		for _, r := range results {
			formatted = append(formatted, formattedResult{
				Op:          string(r.Op),
				Pattern:     string(r.Pattern),
				BlockSize:   r.BlockSize,
				Requests:    r.NumRequests,
				ElapsedSecs: r.Elapsed.Seconds(),
				IOPS:        r.IOPS,
				MBps:        r.MBps,
				Failed:      r.Failed,
				AvgLatNs:    r.AvgLatency.Nanoseconds(),
			})
		}

		jsonBytes, err := json.MarshalIndent(formatted, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal json: %w", err)
		}
		return string(jsonBytes), nil

	case FlatFormat:
		var sb strings.Builder
		for _, r := range results {
			sb.WriteString(fmt.Sprintf("%s %s %d %d %.6f %.2f %.2f %d\n",
				r.Op, r.Pattern, r.BlockSize, r.NumRequests,
				r.Elapsed.Seconds(), r.IOPS, r.MBps, r.Failed))
		}
		return sb.String(), nil

	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}

// Command uringbench benchmarks disk I/O by driving a raw io_uring
// instance against a preallocated file opened with O_DIRECT.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/dmahler/uringbench"
	"github.com/dmahler/uringbench/internal/logging"
	"github.com/dmahler/uringbench/internal/uring"
)

var (
	filePath    string
	fileSizeStr string
	queueDepth  int
	numRequests int
	formatStr   string
	dropCaches  bool
	keepFile    bool
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "uringbench",
	Short: "io_uring direct I/O disk benchmark",
	Long: `uringbench measures disk read/write performance through a raw io_uring
instance. It preallocates a target file, opens it with O_DIRECT to bypass
the page cache, and runs a matrix of sequential and random workloads at
several block sizes, keeping a bounded number of requests in flight.

Writes run before reads so the read phases always find real data on disk.
Results go to stdout; logs go to stderr.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runBenchmark,
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&filePath, "file", "f", "uringbench.dat", "target file path")
	f.StringVarP(&fileSizeStr, "size", "s", "1G", "target file size (supports K/M/G suffixes)")
	f.IntVarP(&queueDepth, "depth", "d", uringbench.DefaultQueueDepth, "maximum requests kept in flight")
	f.IntVarP(&numRequests, "requests", "n", 4096, "requests per workload")
	f.StringVarP(&formatStr, "format", "F", "table", "output format: table, json, or flat")
	f.BoolVar(&dropCaches, "drop-caches", false, "drop kernel caches before the read phase (requires root)")
	f.BoolVar(&keepFile, "keep", false, "keep the target file after the run")
	f.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "uringbench: %v\n", err)
		os.Exit(1)
	}
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	format, err := uringbench.ValidateFormat(formatStr)
	if err != nil {
		return err
	}

	level := logging.LevelInfo
	if verbose {
		level = logging.LevelDebug
	}
	logging.SetDefault(logging.NewLogger(&logging.Config{
		Level:  level,
		Format: "text",
		Output: os.Stderr,
	}))
	log := logging.Default()

	size, err := parseSize(fileSizeStr)
	if err != nil {
		return fmt.Errorf("invalid --size: %w", err)
	}
	if size < uringbench.MaxBlockSize {
		return fmt.Errorf("--size must be at least %d bytes", uringbench.MaxBlockSize)
	}
	if queueDepth <= 0 {
		return fmt.Errorf("--depth must be positive")
	}
	if numRequests <= 0 {
		return fmt.Errorf("--requests must be positive")
	}

	log.Info("laying out target file", "path", filePath, "size", size)
	if err := uringbench.LayoutFile(filePath, size); err != nil {
		return err
	}
	if !keepFile {
		defer os.Remove(filePath)
	}

	fd, err := uringbench.OpenDirect(filePath)
	if err != nil {
		return err
	}
	defer unix.Close(fd)

	ring, err := uring.Setup(uint32(queueDepth))
	if err != nil {
		return uringbench.WrapError("setup", err)
	}
	defer ring.Close()
	log.Debug("ring ready", "sq_entries", ring.SQEntries(), "features", ring.Features())

	engine, err := uringbench.NewEngine(ring, fd, size, queueDepth)
	if err != nil {
		return err
	}
	defer engine.Close()

	var (
		results       []uringbench.Result
		cachesDropped bool
	)
	for _, w := range uringbench.DefaultMatrix(numRequests) {
		if dropCaches && w.Op == uringbench.OpRead && !cachesDropped {
			if err := uringbench.DropCaches(); err != nil {
				log.Warn("could not drop caches, reads may hit memory", "error", err.Error())
			}
			cachesDropped = true
		}
		res, err := engine.Run(w)
		if err != nil {
			return fmt.Errorf("workload %s: %w", w, err)
		}
		results = append(results, res)
	}

	out, err := uringbench.FormatResults(results, format)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

// parseSize parses a byte count with an optional K, M or G suffix.
func parseSize(s string) (int64, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}

	mult := int64(1)
	switch s[len(s)-1] {
	case 'K':
		mult = 1 << 10
		s = s[:len(s)-1]
	case 'M':
		mult = 1 << 20
		s = s[:len(s)-1]
	case 'G':
		mult = 1 << 30
		s = s[:len(s)-1]
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("size must be positive")
	}
	return n * mult, nil
}

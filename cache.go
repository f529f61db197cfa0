package uringbench

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

const dropCachesPath = "/proc/sys/vm/drop_caches"

// DropCaches flushes dirty pages and asks the kernel to drop the page,
// dentry and inode caches. Run between write and read phases so reads are
// not served out of memory. Requires root; callers should treat a failure
// here as advisory, the benchmark itself is unaffected.
func DropCaches() error {
	unix.Sync()

	f, err := os.OpenFile(dropCachesPath, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("open %s (requires root): %w", dropCachesPath, err)
	}
	defer f.Close()

	if _, err := f.Write([]byte("3")); err != nil {
		return fmt.Errorf("write %s: %w", dropCachesPath, err)
	}
	return nil
}

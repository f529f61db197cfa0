package uringbench

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// LayoutFile creates the target file if needed and preallocates it to size
// bytes. fallocate assigns real extents so direct reads hit the device
// instead of hole-filled zero pages; filesystems without fallocate support
// fall back to truncate.
func LayoutFile(path string, size int64) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := unix.Fallocate(int(f.Fd()), 0, 0, size); err != nil {
		if !errors.Is(err, unix.EOPNOTSUPP) && !errors.Is(err, unix.ENOSYS) {
			return fmt.Errorf("fallocate %s to %d bytes: %w", path, size, err)
		}
		if err := f.Truncate(size); err != nil {
			return fmt.Errorf("truncate %s to %d bytes: %w", path, size, err)
		}
	}
	return f.Sync()
}

// OpenDirect opens path for unbuffered I/O. The returned descriptor
// bypasses the page cache; every offset and length used on it must be
// block-aligned.
func OpenDirect(path string) (int, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_DIRECT, 0)
	if err != nil {
		return -1, fmt.Errorf("open %s with O_DIRECT: %w", path, err)
	}
	return fd, nil
}

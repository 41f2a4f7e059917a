package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"scribe/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace verifies that the filesystem holding path has at least
// minFreeMiB mebibytes available.
func CheckFreeSpace(name, path string, minFreeMiB int) Result {
	if minFreeMiB <= 0 {
		return Result{Name: name, Passed: true, Detail: "no minimum configured"}
	}
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	freeMiB := int64(stat.Bavail) * stat.Bsize / (1 << 20)
	if freeMiB < int64(minFreeMiB) {
		return Result{Name: name, Detail: fmt.Sprintf("%s (%d MiB free, %d MiB required)", path, freeMiB, minFreeMiB)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d MiB free)", path, freeMiB)}
}

// CheckSystemDeps evaluates the external binaries the provider shells out
// to. Both the daemon and the CLI status command use this to avoid
// duplicating the requirements list.
func CheckSystemDeps() []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "uvx",
			Command:     "uvx",
			Description: "Required for WhisperX transcription",
		},
		{
			Name:        "FFmpeg",
			Command:     "ffmpeg",
			Description: "Required for audio extraction",
		},
	}
	return deps.CheckBinaries(requirements)
}

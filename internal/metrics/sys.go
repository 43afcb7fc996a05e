package metrics

import (
	"fmt"
	"os"
	"runtime"
)

// SysHealth is a point-in-time snapshot of process memory and of the
// two on-disk artifacts, the sqlite database and the JSON state file.
type SysHealth struct {
	AllocMB      uint64
	SysMB        uint64
	Goroutines   int
	DatabaseSize string
	StateSize    string
}

// GetSysHealth collects the health data for the admin report.
func GetSysHealth(databasePath, statePath string) SysHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SysHealth{
		AllocMB:      m.Alloc / 1024 / 1024,
		SysMB:        m.Sys / 1024 / 1024,
		Goroutines:   runtime.NumGoroutine(),
		DatabaseSize: fileSize(databasePath),
		StateSize:    fileSize(statePath),
	}
}

// fileSize reports a file's size in human-readable form; a missing
// file reads as zero rather than an error.
func fileSize(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "0 B"
	}
	return humanSize(info.Size())
}

func humanSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

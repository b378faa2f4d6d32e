// Package progress renders a terminal progress bar and spinner for the
// install pipeline. Unlike an io.Writer-wrapping progress meter, Bar is
// driven externally: the pipeline already tracks byte counts itself
// (internal/pipeline.Status), so the caller polls status between advance()
// calls and feeds the counts in directly.
package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"os"

	"golang.org/x/term"
)

// IsTerminalFunc is the function used to check if a file descriptor is a terminal.
// It can be overridden for testing.
var IsTerminalFunc = term.IsTerminal

// Bar renders a rate-limited download progress line from externally
// reported byte counts.
type Bar struct {
	output    io.Writer
	startTime time.Time
	lastPrint time.Time
	started   bool
	mu        sync.Mutex
}

// NewBar creates a progress bar that writes to output.
func NewBar(output io.Writer) *Bar {
	return &Bar{output: output}
}

// Update renders the current progress. total may be nil when the pipeline
// doesn't know the download size in advance. Calls are rate-limited to 10
// updates per second to avoid flickering.
func (b *Bar) Update(downloaded int64, total *int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	if !b.started {
		b.started = true
		b.startTime = now
	}
	if now.Sub(b.lastPrint) < 100*time.Millisecond {
		return
	}
	b.lastPrint = now

	elapsed := now.Sub(b.startTime).Seconds()
	if elapsed < 0.1 {
		return
	}
	speed := float64(downloaded) / elapsed

	var line string
	if total != nil && *total > 0 {
		percent := float64(downloaded) / float64(*total) * 100
		if percent > 100 {
			percent = 100
		}

		var etaStr string
		if speed > 0 {
			remaining := float64(*total-downloaded) / speed
			if remaining < 0 {
				remaining = 0
			}
			etaStr = formatDuration(remaining)
		} else {
			etaStr = "--:--"
		}

		barWidth := 30
		filled := int(percent / 100 * float64(barWidth))
		if filled > barWidth {
			filled = barWidth
		}
		bar := strings.Repeat("=", filled)
		if filled < barWidth {
			bar += ">"
			bar += strings.Repeat(" ", barWidth-filled-1)
		}

		line = fmt.Sprintf("\r   [%s] %3.0f%% (%s/%s) %s/s ETA: %s",
			bar,
			percent,
			formatBytes(downloaded),
			formatBytes(*total),
			formatBytes(int64(speed)),
			etaStr,
		)
	} else {
		line = fmt.Sprintf("\r   Downloaded: %s (%s/s)",
			formatBytes(downloaded),
			formatBytes(int64(speed)),
		)
	}

	if len(line) < 80 {
		line += strings.Repeat(" ", 80-len(line))
	}
	_, _ = fmt.Fprint(b.output, line)
}

// Finish clears the progress line.
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	fmt.Fprintf(b.output, "\r%s\r", strings.Repeat(" ", 80))
}

// formatBytes formats bytes into human-readable format
func formatBytes(b int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case b >= GB:
		return fmt.Sprintf("%.1fGB", float64(b)/GB)
	case b >= MB:
		return fmt.Sprintf("%.1fMB", float64(b)/MB)
	case b >= KB:
		return fmt.Sprintf("%.1fKB", float64(b)/KB)
	default:
		return fmt.Sprintf("%dB", b)
	}
}

// formatDuration formats seconds into MM:SS or HH:MM:SS format
func formatDuration(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	s := int(seconds)
	if s >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", s/3600, (s%3600)/60, s%60)
	}
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

// ShouldShowProgress returns true if progress should be displayed.
// Progress is shown when stderr is a terminal.
func ShouldShowProgress() bool {
	return IsTerminalFunc(int(os.Stderr.Fd()))
}

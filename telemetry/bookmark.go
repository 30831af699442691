package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkSplatBurst BookmarkType = "splat_burst"
	BookmarkSaturation BookmarkType = "saturation"
	BookmarkQuiescent  BookmarkType = "quiescent"
	BookmarkSteady     BookmarkType = "steady"
)

// Detector thresholds.
const (
	saturationLevel = 1.0  // display intensity where dye stops brightening
	activeMean      = 1e-2 // mean dye of a visibly smoky field
	quiescentMean   = 1e-3 // mean dye of a field that has died down
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Frame       int64        `csv:"frame"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark.
func (b Bookmark) LogBookmark(log *slog.Logger) {
	log.Info("bookmark",
		"type", string(b.Type),
		"frame", b.Frame,
		"description", b.Description,
	)
}

// BookmarkDetector detects notable moments in the simulation.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	saturated          bool // max intensity above saturationLevel last window
	wasActive          bool // field was smoky since the last quiescent bookmark
	steadyWindowsCount int  // consecutive windows with stable dye totals
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for steady state detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		if b := bd.checkSplatBurst(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkSteady(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}
	if b := bd.checkSaturation(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkQuiescent(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

// checkSplatBurst fires when a window injects more than twice the rolling average.
func (bd *BookmarkDetector) checkSplatBurst(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.Splats + h.PointerSplats
	}
	avg := float64(total) / float64(len(history))
	current := float64(stats.Splats + stats.PointerSplats)

	if current >= 10 && current > avg*2.0 {
		return &Bookmark{
			Type:        BookmarkSplatBurst,
			Frame:       stats.WindowEnd,
			Description: fmt.Sprintf("%.0f splats is %.1fx average (%.1f)", current, current/max(avg, 1), avg),
		}
	}
	return nil
}

// checkSaturation fires once each time the brightest texel crosses saturationLevel.
func (bd *BookmarkDetector) checkSaturation(stats WindowStats) *Bookmark {
	was := bd.saturated
	bd.saturated = stats.DensityMax >= saturationLevel
	if bd.saturated && !was {
		return &Bookmark{
			Type:        BookmarkSaturation,
			Frame:       stats.WindowEnd,
			Description: fmt.Sprintf("Peak dye intensity %.2f reached saturation", stats.DensityMax),
		}
	}
	return nil
}

// checkQuiescent fires when a smoky field has decayed to near nothing.
func (bd *BookmarkDetector) checkQuiescent(stats WindowStats) *Bookmark {
	if stats.DensityMean >= activeMean {
		bd.wasActive = true
		return nil
	}
	if bd.wasActive && stats.DensityMean < quiescentMean {
		bd.wasActive = false
		return &Bookmark{
			Type:        BookmarkQuiescent,
			Frame:       stats.WindowEnd,
			Description: fmt.Sprintf("Smoke faded to mean %.4f", stats.DensityMean),
		}
	}
	return nil
}

// checkSteady fires once after five windows whose dye totals vary by less than 20%.
func (bd *BookmarkDetector) checkSteady(stats WindowStats) *Bookmark {
	if stats.DensityMean < activeMean {
		bd.steadyWindowsCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	totals := make([]float64, 0, 4)
	for _, h := range history[len(history)-4:] {
		totals = append(totals, h.DensityTotal)
	}
	mean, std := stat.PopMeanStdDev(totals, nil)

	if mean > 0 && std/mean < 0.2 {
		bd.steadyWindowsCount++
	} else {
		bd.steadyWindowsCount = 0
	}

	if bd.steadyWindowsCount == 5 { // trigger exactly once at 5 windows
		return &Bookmark{
			Type:        BookmarkSteady,
			Frame:       stats.WindowEnd,
			Description: fmt.Sprintf("Steady dye total %.1f over 5+ windows", mean),
		}
	}
	return nil
}

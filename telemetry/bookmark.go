package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/planisuss/config"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkHerbivoreCrash    BookmarkType = "herbivore_crash"
	BookmarkCarnivoreRecovery BookmarkType = "carnivore_recovery"
	BookmarkStableEcosystem   BookmarkType = "stable_ecosystem"
	BookmarkExtinction        BookmarkType = "extinction"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Day         int          `csv:"day" json:"day"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"day", b.Day,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	cfg config.BookmarksConfig

	// Rolling history (circular buffer)
	history     []DayStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	recentCarnMin      int  // minimum carnivore count in recent history
	recentHerbPeak     int  // peak herbivore count in recent history
	stableWindowsCount int  // consecutive windows with stable populations
	herbExtinct        bool // extinction bookmarks fire once per species
	carnExtinct        bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int, cfg config.BookmarksConfig) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for stable ecosystem detection
	}
	return &BookmarkDetector{
		cfg:         cfg,
		history:     make([]DayStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats DayStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		if b := bd.checkCarnivoreRecovery(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkHerbivoreCrash(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkStableEcosystem(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}
	bookmarks = append(bookmarks, bd.checkExtinction(stats)...)

	bd.addToHistory(stats)

	if stats.Carnivores < bd.recentCarnMin || bd.recentCarnMin == 0 {
		bd.recentCarnMin = stats.Carnivores
	}
	if stats.Herbivores > bd.recentHerbPeak {
		bd.recentHerbPeak = stats.Herbivores
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats DayStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// recent returns up to n of the latest history entries, oldest first.
func (bd *BookmarkDetector) recent(n int) []DayStats {
	size := bd.historyIdx
	if bd.historyFull {
		size = bd.historySize
	}
	n = min(n, size)
	out := make([]DayStats, 0, n)
	for i := n; i > 0; i-- {
		out = append(out, bd.history[(bd.historyIdx-i+bd.historySize)%bd.historySize])
	}
	return out
}

func (bd *BookmarkDetector) checkCarnivoreRecovery(stats DayStats) *Bookmark {
	if bd.recentCarnMin == 0 || bd.recentCarnMin > bd.cfg.RecoveryFloor {
		return nil
	}

	threshold := bd.recentCarnMin * bd.cfg.RecoveryFactor
	if stats.Carnivores >= threshold && stats.Carnivores >= bd.cfg.RecoveryMin {
		oldMin := bd.recentCarnMin
		bd.recentCarnMin = stats.Carnivores

		return &Bookmark{
			Type:        BookmarkCarnivoreRecovery,
			Day:         stats.Day,
			Description: fmt.Sprintf("Carnivore population recovered from %d to %d", oldMin, stats.Carnivores),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkHerbivoreCrash(stats DayStats) *Bookmark {
	if bd.recentHerbPeak == 0 {
		return nil
	}

	drop := 1.0 - float64(stats.Herbivores)/float64(bd.recentHerbPeak)
	if drop > bd.cfg.CrashDrop && stats.Herbivores < bd.recentHerbPeak-bd.cfg.CrashMinLoss {
		oldPeak := bd.recentHerbPeak
		bd.recentHerbPeak = stats.Herbivores

		return &Bookmark{
			Type:        BookmarkHerbivoreCrash,
			Day:         stats.Day,
			Description: fmt.Sprintf("Herbivores crashed %.0f%% from peak %d to %d", drop*100, oldPeak, stats.Herbivores),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkStableEcosystem(stats DayStats) *Bookmark {
	if stats.Herbivores < 10 || stats.Carnivores < 3 {
		bd.stableWindowsCount = 0
		return nil
	}

	window := bd.recent(4)
	if len(window) < 4 {
		return nil
	}

	var herbSum, carnSum float64
	for _, h := range window {
		herbSum += float64(h.Herbivores)
		carnSum += float64(h.Carnivores)
	}
	herbMean := herbSum / 4
	carnMean := carnSum / 4

	var herbVar, carnVar float64
	for _, h := range window {
		dh := float64(h.Herbivores) - herbMean
		dc := float64(h.Carnivores) - carnMean
		herbVar += dh * dh
		carnVar += dc * dc
	}
	herbVar /= 4
	carnVar /= 4

	// Squared coefficient of variation
	herbCV2, carnCV2 := 0.0, 0.0
	if herbMean > 0 {
		herbCV2 = herbVar / (herbMean * herbMean)
	}
	if carnMean > 0 {
		carnCV2 = carnVar / (carnMean * carnMean)
	}

	if herbCV2 < bd.cfg.StableCV2 && carnCV2 < bd.cfg.StableCV2 {
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == bd.cfg.StableWindows { // trigger exactly once per stable run
		return &Bookmark{
			Type:        BookmarkStableEcosystem,
			Day:         stats.Day,
			Description: fmt.Sprintf("Stable ecosystem with %d herbivores, %d carnivores over %d+ windows", stats.Herbivores, stats.Carnivores, bd.cfg.StableWindows),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkExtinction(stats DayStats) []Bookmark {
	var out []Bookmark
	if stats.Herbivores == 0 && !bd.herbExtinct {
		bd.herbExtinct = true
		out = append(out, Bookmark{Type: BookmarkExtinction, Day: stats.Day, Description: "Herbivores extinct"})
	}
	if stats.Carnivores == 0 && !bd.carnExtinct {
		bd.carnExtinct = true
		out = append(out, Bookmark{Type: BookmarkExtinction, Day: stats.Day, Description: "Carnivores extinct"})
	}
	return out
}

package telemetry

import (
	"testing"

	"github.com/pthm-cable/planisuss/config"
)

func init() {
	config.MustInit("")
}

func newDetector() *BookmarkDetector {
	return NewBookmarkDetector(10, config.Cfg().Bookmarks)
}

func hasBookmark(bookmarks []Bookmark, t BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == t {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_HerbivoreCrash(t *testing.T) {
	bd := newDetector()

	for i := 0; i < 5; i++ {
		bd.Check(DayStats{Day: i, Herbivores: 100, Carnivores: 10})
	}

	bookmarks := bd.Check(DayStats{Day: 5, Herbivores: 50, Carnivores: 10})
	if !hasBookmark(bookmarks, BookmarkHerbivoreCrash) {
		t.Error("expected herbivore_crash bookmark")
	}

	// Peak resets after a crash, so a steady low population does not retrigger.
	bookmarks = bd.Check(DayStats{Day: 6, Herbivores: 50, Carnivores: 10})
	if hasBookmark(bookmarks, BookmarkHerbivoreCrash) {
		t.Error("crash bookmark fired twice")
	}
}

func TestBookmarkDetector_CarnivoreRecovery(t *testing.T) {
	bd := newDetector()

	for i := 0; i < 3; i++ {
		bd.Check(DayStats{Day: i, Herbivores: 100, Carnivores: 2})
	}

	bookmarks := bd.Check(DayStats{Day: 3, Herbivores: 100, Carnivores: 10})
	if !hasBookmark(bookmarks, BookmarkCarnivoreRecovery) {
		t.Error("expected carnivore_recovery bookmark")
	}
}

func TestBookmarkDetector_StableEcosystem(t *testing.T) {
	bd := newDetector()

	fired := 0
	for i := 0; i < 15; i++ {
		if hasBookmark(bd.Check(DayStats{Day: i, Herbivores: 100, Carnivores: 20}), BookmarkStableEcosystem) {
			fired++
		}
	}
	if fired != 1 {
		t.Errorf("stable_ecosystem fired %d times, want exactly 1", fired)
	}
}

func TestBookmarkDetector_Extinction(t *testing.T) {
	bd := newDetector()

	bd.Check(DayStats{Day: 1, Herbivores: 10, Carnivores: 5})
	bookmarks := bd.Check(DayStats{Day: 2, Herbivores: 10, Carnivores: 0})
	if len(bookmarks) != 1 || bookmarks[0].Type != BookmarkExtinction {
		t.Fatalf("bookmarks = %+v, want one extinction", bookmarks)
	}
	if bookmarks := bd.Check(DayStats{Day: 3, Herbivores: 10, Carnivores: 0}); hasBookmark(bookmarks, BookmarkExtinction) {
		t.Error("extinction fired twice for the same species")
	}
}

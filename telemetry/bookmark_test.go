package telemetry

import "testing"

func hasBookmark(bms []Bookmark, typ BookmarkType) bool {
	for _, bm := range bms {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_SplatBurst(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEnd: int64(i * 120), Splats: 5})
	}

	bms := bd.Check(WindowStats{WindowEnd: 600, Splats: 30})
	if !hasBookmark(bms, BookmarkSplatBurst) {
		t.Error("expected splat_burst bookmark")
	}
}

func TestBookmarkDetector_NoBurstWithoutHistory(t *testing.T) {
	bd := NewBookmarkDetector(10)
	if bms := bd.Check(WindowStats{Splats: 100}); hasBookmark(bms, BookmarkSplatBurst) {
		t.Error("burst needs history to compare against")
	}
}

func TestBookmarkDetector_SaturationOnce(t *testing.T) {
	bd := NewBookmarkDetector(10)

	if !hasBookmark(bd.Check(WindowStats{DensityMax: 1.2}), BookmarkSaturation) {
		t.Fatal("expected saturation bookmark")
	}
	if hasBookmark(bd.Check(WindowStats{DensityMax: 1.5}), BookmarkSaturation) {
		t.Error("saturation should not repeat while saturated")
	}
	bd.Check(WindowStats{DensityMax: 0.5})
	if !hasBookmark(bd.Check(WindowStats{DensityMax: 1.1}), BookmarkSaturation) {
		t.Error("expected saturation after dropping below and crossing again")
	}
}

func TestBookmarkDetector_Quiescent(t *testing.T) {
	bd := NewBookmarkDetector(10)

	if hasBookmark(bd.Check(WindowStats{DensityMean: 0}), BookmarkQuiescent) {
		t.Error("an empty field that never had smoke is not quiescent")
	}
	bd.Check(WindowStats{DensityMean: 0.05})
	bd.Check(WindowStats{DensityMean: 0.005})
	if !hasBookmark(bd.Check(WindowStats{DensityMean: 0.0005}), BookmarkQuiescent) {
		t.Error("expected quiescent bookmark after smoke faded")
	}
	if hasBookmark(bd.Check(WindowStats{DensityMean: 0.0001}), BookmarkQuiescent) {
		t.Error("quiescent should fire once")
	}
}

func TestBookmarkDetector_Steady(t *testing.T) {
	bd := NewBookmarkDetector(10)

	var fired int
	for i := 0; i < 12; i++ {
		bms := bd.Check(WindowStats{WindowEnd: int64(i), DensityMean: 0.1, DensityTotal: 100})
		if hasBookmark(bms, BookmarkSteady) {
			fired++
		}
	}
	if fired != 1 {
		t.Errorf("expected steady bookmark exactly once, got %d", fired)
	}
}

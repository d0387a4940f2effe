package scheduler

import (
	"os"
	"path/filepath"
	"testing"

	"ChartAlign/internal/config"
)

func writeFeed(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	spx := writeFeed(t, dir, "spx.csv", `timestamp,open,high,low,close,volume
100,1,1,1,10,1
200,1,1,1,20,1
300,1,1,1,30,1
400,1,1,1,40,1
500,1,1,1,50,1
600,1,1,1,60,1
`)
	vix := writeFeed(t, dir, "vix.csv", `timestamp,open,high,low,close,volume
100,1,1,1,1,1
300,1,1,1,3,1
500,1,1,1,5,1
`)
	cfg := &config.Config{}
	cfg.Feeds = []config.FeedConfig{
		{Name: "spx", Path: spx, Primary: true},
		{Name: "vix", Path: vix},
	}
	cfg.Align.SkipLines = []string{"open", "high", "low", "volume"}
	return cfg
}

func TestBuildSnapshot_AlignsSecondaryFeed(t *testing.T) {
	snap, err := BuildSnapshot(testConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	tbl := snap.Table
	if tbl.Rows() != 6 {
		t.Fatalf("rows = %d, want 6 (reference clock length)", tbl.Rows())
	}
	if len(tbl.Columns) != 2 {
		t.Fatalf("columns = %d, want spx_close and vix_close", len(tbl.Columns))
	}

	spx, ok := tbl.Column("spx_close")
	if !ok {
		t.Fatal("missing spx_close column")
	}
	for i, want := range []float64{10, 20, 30, 40, 50, 60} {
		if spx.Values[i] != want {
			t.Errorf("spx_close[%d] = %v, want %v", i, spx.Values[i], want)
		}
	}

	// The coarser feed forward-fills between its own sampling instants.
	vix, ok := tbl.Column("vix_close")
	if !ok {
		t.Fatal("missing vix_close column")
	}
	for i, want := range []float64{1, 1, 3, 3, 5, 5} {
		if vix.Values[i] != want {
			t.Errorf("vix_close[%d] = %v, want %v", i, vix.Values[i], want)
		}
	}
}

func TestBuildSnapshot_BackWindow(t *testing.T) {
	cfg := testConfig(t)
	cfg.Align.Back = 2
	snap, err := BuildSnapshot(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Table.Rows() != 2 {
		t.Fatalf("rows = %d, want 2", snap.Table.Rows())
	}
	if snap.Start != 4 || snap.End != 5 {
		t.Errorf("range = (%d, %d), want (4, 5)", snap.Start, snap.End)
	}
	spx, _ := snap.Table.Column("spx_close")
	if spx.Values[0] != 50 || spx.Values[1] != 60 {
		t.Errorf("windowed spx_close = %v, want [50 60]", spx.Values)
	}
}

func TestBuildSnapshot_UnknownClockFeed(t *testing.T) {
	cfg := testConfig(t)
	cfg.Align.ClockFeed = "nope"
	if _, err := BuildSnapshot(cfg); err == nil {
		t.Fatal("expected lookup error for unknown clock feed")
	}
}

func TestBuildSnapshot_GapFill(t *testing.T) {
	cfg := testConfig(t)
	cfg.Align.FillGaps = true
	snap, err := BuildSnapshot(cfg)
	if err != nil {
		t.Fatal(err)
	}
	vix, _ := snap.Table.Column("vix_close")
	// With gap filling the instants between vix samples adopt the next
	// sample instead of holding the previous one; past the last sample
	// the final value still carries forward.
	for i, want := range []float64{1, 3, 3, 5, 5, 5} {
		if vix.Values[i] != want {
			t.Errorf("vix_close[%d] = %v, want %v", i, vix.Values[i], want)
		}
	}
}

package loader

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFromCSV(t *testing.T) {
	path := writeTemp(t, "spx.csv", `timestamp,open,high,low,close,volume
100,10,11,9,10.5,1000
300,12,13,11,12.5,
200,11,12,10,11.5,1200
`)
	feed, err := FromCSV("spx", path, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if len(feed.Stamps) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(feed.Stamps))
	}
	// Rows are sorted by timestamp.
	if feed.Stamps[0] != 100 || feed.Stamps[1] != 200 || feed.Stamps[2] != 300 {
		t.Errorf("stamps not sorted: %v", feed.Stamps)
	}
	closeLine, ok := feed.Line("close")
	if !ok {
		t.Fatal("missing close line")
	}
	if closeLine[1] != 11.5 {
		t.Errorf("close[1] = %v, want 11.5", closeLine[1])
	}
	volume, _ := feed.Line("volume")
	if !math.IsNaN(volume[2]) {
		t.Errorf("blank volume cell should load as NaN, got %v", volume[2])
	}
}

func TestFromCSV_MillisecondStamps(t *testing.T) {
	path := writeTemp(t, "ms.csv", "1700000000000,1,2,0.5,1.5,10\n")
	feed, err := FromCSV("ms", path, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if feed.Stamps[0] != 1700000000 {
		t.Errorf("millisecond stamp not scaled: %v", feed.Stamps[0])
	}
}

func TestFromCSV_NoRows(t *testing.T) {
	path := writeTemp(t, "empty.csv", "timestamp,open,high,low,close,volume\n")
	if _, err := FromCSV("empty", path, time.UTC); err == nil {
		t.Fatal("expected error for a header-only file")
	}
}

func TestLoadBundle_PrimarySelection(t *testing.T) {
	a := writeTemp(t, "a.csv", "100,1,1,1,1,1\n")
	b := writeTemp(t, "b.csv", "100,2,2,2,2,2\n")
	bundle, err := LoadBundle([]Spec{
		{Name: "a", Path: a},
		{Name: "b", Path: b, Primary: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	if bundle.Primary().Name != "b" {
		t.Errorf("primary = %q, want b", bundle.Primary().Name)
	}
}

func TestLoadBundle_Empty(t *testing.T) {
	if _, err := LoadBundle(nil); err == nil {
		t.Fatal("expected error for empty spec list")
	}
}

func TestLoadBundle_BadTimezone(t *testing.T) {
	a := writeTemp(t, "a.csv", "100,1,1,1,1,1\n")
	if _, err := LoadBundle([]Spec{{Name: "a", Path: a, Timezone: "Not/AZone"}}); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

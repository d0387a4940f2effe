package recorder

import (
	"time"

	"ChartAlign/internal/model"
)

// Snapshot holds one aligned table together with the context it was
// produced in.
type Snapshot struct {
	Label     string
	FillGaps  bool
	Start     int
	End       int
	CreatedAt time.Time
	Table     *model.Table
}

// Recorder persists alignment snapshots for later inspection.
type Recorder interface {
	RecordSnapshot(snap *Snapshot) error
	Close() error
}

package scheduler

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"ChartAlign/internal/align"
	"ChartAlign/internal/config"
	"ChartAlign/internal/export"
	"ChartAlign/internal/loader"
	"ChartAlign/internal/model"
	"ChartAlign/internal/recorder"
)

// Scheduler runs the periodic alignment snapshot task.
type Scheduler struct {
	Cron     *cron.Cron
	Cfg      *config.Config
	Recorder recorder.Recorder
}

// NewScheduler creates a new Scheduler.
func NewScheduler(cfg *config.Config, rec recorder.Recorder) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Cfg:      cfg,
		Recorder: rec,
	}
}

// Register registers the snapshot task with the configured cron expression.
func (s *Scheduler) Register() error {
	if _, err := s.Cron.AddFunc(s.Cfg.Schedule.SnapshotCron, s.snapshotTask); err != nil {
		return fmt.Errorf("register snapshot task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the snapshot task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.snapshotTask()
}

func (s *Scheduler) snapshotTask() {
	log.Println("[INFO] running alignment snapshot")

	snap, err := BuildSnapshot(s.Cfg)
	if err != nil {
		log.Printf("[ERROR] build snapshot: %v", err)
		return
	}
	if snap.Table.Empty() {
		log.Println("[WARN] snapshot produced an empty table, nothing to write")
		return
	}
	log.Printf("[INFO] aligned %s", export.Summary(snap.Table))

	if err := export.WriteCSVFile(s.Cfg.Output.CSVPath, snap.Table, s.Cfg.Output.TimeFormat); err != nil {
		log.Printf("[ERROR] export csv: %v", err)
	}
	if err := s.Recorder.RecordSnapshot(snap); err != nil {
		log.Printf("[ERROR] record snapshot: %v", err)
	}
}

// BuildSnapshot loads the configured feeds, aligns every feed's lines onto
// the reference clock and assembles one table. Each feed gets its own
// handler over its own clock, windowed to the reference range by timestamp;
// columns are prefixed with the feed name.
func BuildSnapshot(cfg *config.Config) (*recorder.Snapshot, error) {
	specs := make([]loader.Spec, len(cfg.Feeds))
	for i, f := range cfg.Feeds {
		specs[i] = loader.Spec{Name: f.Name, Path: f.Path, Timezone: f.Timezone, Primary: f.Primary}
	}
	bundle, err := loader.LoadBundle(specs)
	if err != nil {
		return nil, err
	}

	refGen, err := align.NewGenerator(bundle, cfg.Align.ClockFeed)
	if err != nil {
		return nil, err
	}
	refClk, start, end := refGen.Clock(align.Bound{}, align.Bound{}, cfg.Align.Back)

	table := &model.Table{Index: refClk}
	snap := &recorder.Snapshot{
		Label:     cfg.Align.ClockFeed,
		FillGaps:  cfg.Align.FillGaps,
		Start:     start,
		End:       end,
		CreatedAt: time.Now(),
		Table:     table,
	}
	if len(refClk) == 0 {
		return snap, nil
	}

	clockFeed, err := bundle.ByName(cfg.Align.ClockFeed)
	if err != nil {
		return nil, err
	}
	for _, feed := range bundle.Feeds() {
		gen, err := align.NewGenerator(bundle, feed.Name)
		if err != nil {
			return nil, err
		}
		var h *align.Handler
		if feed == clockFeed {
			h = align.NewHandler(refClk, start, end)
		} else {
			// Window the feed's own clock to the reference span, then
			// let the handler project onto the reference instants.
			clk, s, e := gen.Clock(
				align.BoundTime(refClk[0]),
				align.BoundTime(refClk[len(refClk)-1]), 0)
			h = align.NewHandler(clk, s, e)
		}
		part := h.Table(feed.Lines, refClk, feed.Name+"_", cfg.Align.SkipLines, cfg.Align.FillGaps)
		table.Columns = append(table.Columns, part.Columns...)
	}
	return snap, nil
}

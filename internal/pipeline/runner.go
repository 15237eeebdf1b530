package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"BlanketWatch/internal/collector"
	"BlanketWatch/internal/distribute"
	"BlanketWatch/internal/indicator"
	"BlanketWatch/internal/memo"
	"BlanketWatch/internal/model"
	"BlanketWatch/internal/report"
)

// Options controls what a run produces and where it goes.
type Options struct {
	WorkbookDir string
	MemoDir     string
	// DryRun renders every artifact but sends nothing and cleans nothing.
	DryRun    bool
	SkipMemos bool
	// DistributeMemos mails memos alongside the workbooks. Otherwise memos stay on disk.
	DistributeMemos bool
	Engine          indicator.Options
}

// Runner executes one end-to-end pass over the contract register.
type Runner struct {
	Collector  *collector.Collector
	Workbooks  *report.WorkbookWriter
	Memos      *memo.Renderer
	Dispatcher *distribute.Dispatcher
	Options    Options
	Clock      func() time.Time
	Logger     *zap.Logger
}

// NewRunner creates a Runner that reads the wall clock. Memos may be nil to disable memo output.
func NewRunner(col *collector.Collector, wb *report.WorkbookWriter, mr *memo.Renderer, d *distribute.Dispatcher, opts Options, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		Collector:  col,
		Workbooks:  wb,
		Memos:      mr,
		Dispatcher: d,
		Options:    opts,
		Clock:      time.Now,
		Logger:     logger,
	}
}

// Evaluation is the indicator pass without any artifacts.
type Evaluation struct {
	Now    time.Time
	Loaded int
	Result *indicator.Result
}

// Evaluate collects the active register and computes indicators at the current instant.
func (r *Runner) Evaluate(ctx context.Context) (*Evaluation, error) {
	return r.evaluate(ctx, r.Clock(), r.Logger)
}

func (r *Runner) evaluate(ctx context.Context, now time.Time, log *zap.Logger) (*Evaluation, error) {
	col, err := r.Collector.Collect(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}
	res, err := indicator.Evaluate(col.Active, now, r.Options.Engine)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	for _, de := range res.Rejected {
		log.Warn("contract rejected",
			zap.String("contract_id", de.ContractID),
			zap.Error(de.Err))
	}
	return &Evaluation{Now: now, Loaded: col.Loaded, Result: res}, nil
}

// Run collects, evaluates, renders, distributes and cleans up. Every step sees the
// same instant, taken once from Clock. Per-artifact failures are reported in the
// Summary and do not fail the run.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	now := r.Clock()
	runID := uuid.NewString()
	log := r.Logger.With(zap.String("run_id", runID))
	log.Info("run started", zap.Time("now", now), zap.Bool("dry_run", r.Options.DryRun))

	ev, err := r.evaluate(ctx, now, log)
	if err != nil {
		return nil, err
	}
	sum := &Summary{
		RunID:     runID,
		Now:       now,
		DryRun:    r.Options.DryRun,
		Loaded:    ev.Loaded,
		Evaluated: len(ev.Result.Evaluated),
		Rejected:  ev.Result.Rejected,
	}
	sum.Active = sum.Evaluated + len(sum.Rejected)

	var outgoing []model.Artifact
	for _, dr := range report.GroupByDivision(ev.Result.Evaluated) {
		path, err := r.Workbooks.Write(r.Options.WorkbookDir, dr, now)
		if err != nil {
			log.Error("workbook failed", zap.String("division", dr.Division), zap.Error(err))
			sum.RenderErrors = append(sum.RenderErrors, err)
			continue
		}
		a := model.Artifact{Kind: model.ArtifactWorkbook, Path: path, Division: dr.Division}
		sum.Artifacts = append(sum.Artifacts, a)
		outgoing = append(outgoing, a)
	}

	if r.Memos != nil && !r.Options.SkipMemos {
		for _, ec := range memo.Select(ev.Result.Evaluated) {
			path, err := r.Memos.Render(r.Options.MemoDir, ec, now)
			if err != nil {
				log.Error("memo failed", zap.String("contract_id", ec.ID), zap.Error(err))
				sum.RenderErrors = append(sum.RenderErrors, err)
				continue
			}
			a := model.Artifact{Kind: model.ArtifactMemo, Path: path, Division: ec.Division, ContractID: ec.ID}
			sum.Artifacts = append(sum.Artifacts, a)
			if r.Options.DistributeMemos {
				outgoing = append(outgoing, a)
			}
		}
	}

	if r.Options.DryRun || r.Dispatcher == nil {
		log.Info("run finished without distribution", zap.Int("artifacts", len(sum.Artifacts)))
		return sum, nil
	}

	sum.Deliveries = r.Dispatcher.Dispatch(ctx, outgoing, now)
	delivered := distribute.DeliveredPaths(sum.Deliveries)

	dirs := []string{r.Options.WorkbookDir}
	if r.Options.DistributeMemos && r.Options.MemoDir != r.Options.WorkbookDir {
		dirs = append(dirs, r.Options.MemoDir)
	}
	for _, dir := range dirs {
		n, err := distribute.Clean(dir, delivered)
		sum.Cleaned += n
		if err != nil {
			log.Error("cleanup failed", zap.String("dir", dir), zap.Error(err))
			sum.CleanupErrors = append(sum.CleanupErrors, err)
		}
	}

	log.Info("run finished",
		zap.Int("artifacts", len(sum.Artifacts)),
		zap.Int("delivered", sum.Delivered()),
		zap.Int("failed", sum.Failed()),
		zap.Int("cleaned", sum.Cleaned))
	return sum, nil
}

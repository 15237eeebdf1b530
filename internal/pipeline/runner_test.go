package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"BlanketWatch/internal/calculator"
	"BlanketWatch/internal/collector"
	"BlanketWatch/internal/distribute"
	"BlanketWatch/internal/indicator"
	"BlanketWatch/internal/memo"
	"BlanketWatch/internal/model"
	"BlanketWatch/internal/notifier"
	"BlanketWatch/internal/report"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func contract(id, division string, start, end time.Time, limit, spent int64) model.Contract {
	return model.Contract{
		ID:            id,
		StartDate:     start,
		EndDate:       end,
		SpendingLimit: decimal.NewFromInt(limit),
		AmountSpent:   decimal.NewFromInt(spent),
		Division:      division,
		Description:   "blanket order " + id,
		Vendor:        "Acme",
	}
}

// register holds one contract per interesting path through a run at 2023-07-01.
func register() []model.Contract {
	return []model.Contract{
		contract("P12246", "Fleet", day(2023, 1, 1), day(2024, 1, 1), 120000, 70000), // high burn
		contract("P20001", "Parks", day(2023, 1, 1), day(2023, 9, 1), 80000, 10000),  // expires in 2 months
		contract("P30001", "Water", day(2023, 1, 1), day(2026, 1, 1), 90000, 0),      // nothing to report
		contract("P40001", "Water", day(2023, 1, 1), day(2025, 1, 1), 0, 0),          // rejected
		contract("P50001", "Fleet", day(2022, 1, 1), day(2023, 6, 1), 10000, 9000),   // expired
	}
}

type fakeSender struct {
	mu       sync.Mutex
	fail     string
	subjects []string
}

func (s *fakeSender) Send(_ context.Context, msg *notifier.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != "" && strings.Contains(msg.Subject, s.fail) {
		return errors.New("421 service not available")
	}
	s.subjects = append(s.subjects, msg.Subject)
	return nil
}

func newRunner(t *testing.T, sender notifier.Sender, opts Options) *Runner {
	t.Helper()
	logger := zaptest.NewLogger(t)
	opts.WorkbookDir = filepath.Join(t.TempDir(), "workbooks")
	opts.MemoDir = filepath.Join(t.TempDir(), "memos")
	opts.Engine = indicator.Options{Basis: calculator.BasisCalendar, OnReject: opts.Engine.OnReject}

	composer := &notifier.Composer{
		DefaultRecipient: "contracts@example.gov",
		MemoRecipients:   []string{"procurement@example.gov"},
	}
	d := distribute.NewDispatcher(composer, notifier.NewNotifier(sender, 0, time.Millisecond, logger), 2, logger)
	lh := memo.Letterhead{Recipient: "jane roe", Address: []string{"Office of Procurement"}, SignatureTitle: "AP Supervisor"}

	r := NewRunner(
		collector.NewCollector(&collector.StaticSource{Contracts: register()}, logger),
		report.NewWorkbookWriter(logger),
		memo.NewRenderer(memo.DefaultDivisor, lh, logger),
		d, opts, logger)
	r.Clock = func() time.Time { return day(2023, 7, 1) }
	return r
}

func names(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	var out []string
	for _, e := range entries {
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out
}

func TestRun_EndToEnd(t *testing.T) {
	sender := &fakeSender{fail: "Parks"}
	r := newRunner(t, sender, Options{DistributeMemos: true})

	sum, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, sum.RunID)
	assert.True(t, sum.Now.Equal(day(2023, 7, 1)))
	assert.Equal(t, 5, sum.Loaded)
	assert.Equal(t, 4, sum.Active)
	assert.Equal(t, 3, sum.Evaluated)
	require.Len(t, sum.Rejected, 1)
	assert.Equal(t, "P40001", sum.Rejected[0].ContractID)
	assert.ErrorIs(t, sum.Rejected[0], indicator.ErrNonPositiveLimit)

	require.Len(t, sum.Artifacts, 3)
	assert.Equal(t, "fleet-blankets-07-01-23.xlsx", filepath.Base(sum.Artifacts[0].Path))
	assert.Equal(t, "parks-blankets-07-01-23.xlsx", filepath.Base(sum.Artifacts[1].Path))
	assert.Equal(t, "P12246-changeorder-07-01-23.pdf", filepath.Base(sum.Artifacts[2].Path))
	assert.Empty(t, sum.RenderErrors)

	assert.Equal(t, 2, sum.Delivered())
	assert.Equal(t, 1, sum.Failed())
	assert.Equal(t, 2, sum.Cleaned)
	assert.True(t, sum.HasFailures())

	// The undelivered workbook stays behind; everything sent is gone.
	assert.Equal(t, []string{"parks-blankets-07-01-23.xlsx"}, names(t, r.Options.WorkbookDir))
	assert.Empty(t, names(t, r.Options.MemoDir))

	assert.ElementsMatch(t, []string{
		"Fleet Contract Management Watchlist 07-01-23",
		"Change Order Request P12246 07-01-23",
	}, sender.subjects)

	out := FormatSummary(sum)
	assert.Contains(t, out, "Artifacts written: 3 files")
	assert.Contains(t, out, "Rejected:            1")
	assert.Contains(t, out, "P40001")
	assert.Contains(t, out, "Delivered: 2 | Failed: 1 | Cleaned: 2")
}

func TestRun_DryRunKeepsEverything(t *testing.T) {
	sender := &fakeSender{}
	r := newRunner(t, sender, Options{DryRun: true, DistributeMemos: true})

	sum, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, sum.Artifacts, 3)
	assert.Empty(t, sum.Deliveries)
	assert.Zero(t, sum.Cleaned)
	assert.Empty(t, sender.subjects)
	assert.Len(t, names(t, r.Options.WorkbookDir), 2)
	assert.Len(t, names(t, r.Options.MemoDir), 1)
	assert.Contains(t, FormatSummary(sum), "dry run")
}

func TestRun_MemosStayWhenNotDistributed(t *testing.T) {
	sender := &fakeSender{}
	r := newRunner(t, sender, Options{})

	sum, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Delivered())
	assert.Empty(t, names(t, r.Options.WorkbookDir))
	assert.Equal(t, []string{"P12246-changeorder-07-01-23.pdf"}, names(t, r.Options.MemoDir))
}

func TestRun_SkipMemos(t *testing.T) {
	r := newRunner(t, &fakeSender{}, Options{SkipMemos: true, DryRun: true})

	sum, err := r.Run(context.Background())
	require.NoError(t, err)
	for _, a := range sum.Artifacts {
		assert.Equal(t, model.ArtifactWorkbook, a.Kind)
	}
	assert.Empty(t, names(t, r.Options.MemoDir))
}

func TestRun_AbortOnInvalid(t *testing.T) {
	r := newRunner(t, &fakeSender{}, Options{Engine: indicator.Options{OnReject: indicator.RejectAbort}})

	_, err := r.Run(context.Background())
	require.Error(t, err)
	de, ok := indicator.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "P40001", de.ContractID)
	assert.Empty(t, names(t, r.Options.WorkbookDir), "nothing is produced after an abort")
}

func TestRun_SourceFailure(t *testing.T) {
	r := newRunner(t, &fakeSender{}, Options{})
	r.Collector = collector.NewCollector(&collector.StaticSource{Err: errors.New("register locked")}, nil)

	_, err := r.Run(context.Background())
	assert.ErrorContains(t, err, "register locked")
}

func TestEvaluate_NoArtifacts(t *testing.T) {
	r := newRunner(t, &fakeSender{}, Options{})

	ev, err := r.Evaluate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, ev.Loaded)
	assert.Len(t, ev.Result.Evaluated, 3)
	assert.Len(t, ev.Result.Rejected, 1)
	assert.Empty(t, names(t, r.Options.WorkbookDir))
}

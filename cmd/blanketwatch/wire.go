package main

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"BlanketWatch/internal/calculator"
	"BlanketWatch/internal/collector"
	"BlanketWatch/internal/config"
	"BlanketWatch/internal/distribute"
	"BlanketWatch/internal/indicator"
	"BlanketWatch/internal/memo"
	"BlanketWatch/internal/notifier"
	"BlanketWatch/internal/pipeline"
	"BlanketWatch/internal/report"
)

var nowFlag string

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func parseNow(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("--now %q: want RFC3339 or 2006-01-02", s)
}

func newSource(cfg *config.Config, log *zap.Logger) collector.Source {
	c := cfg.Source.Columns
	cols := collector.Columns{
		ID:          c.ID,
		Buyer:       c.Buyer,
		Start:       c.Start,
		End:         c.End,
		Description: c.Description,
		Vendor:      c.Vendor,
		Limit:       c.Limit,
		Spent:       c.Spent,
		Division:    c.Division,
	}
	if cfg.Source.Kind == "sqlite" {
		return collector.NewSQLiteSource(cfg.Source.Path, cfg.Source.Table, cols, log)
	}
	return collector.NewXLSXSource(cfg.Source.Path, cfg.Source.Sheet, cols, log)
}

// buildRunner wires every component from cfg. Mail is only configured when send is true.
func buildRunner(cfg *config.Config, opts pipeline.Options, send bool, log *zap.Logger) (*pipeline.Runner, error) {
	basis, err := calculator.ParseMonthBasis(cfg.Indicators.MonthBasis)
	if err != nil {
		return nil, err
	}
	policy, err := indicator.ParseRejectPolicy(cfg.Indicators.OnInvalid)
	if err != nil {
		return nil, err
	}
	opts.Engine = indicator.Options{Basis: basis, OnReject: policy}
	opts.WorkbookDir = cfg.Output.WorkbookDir
	opts.MemoDir = cfg.Output.MemoDir
	opts.DistributeMemos = cfg.Memo.Distribute

	src := newSource(cfg, log)
	log.Info("contract source", zap.String("kind", src.Name()), zap.String("path", cfg.Source.Path))

	var mr *memo.Renderer
	if cfg.MemoEnabled() {
		mr = memo.NewRenderer(cfg.Memo.Divisor, memo.Letterhead{
			Recipient:      cfg.Memo.Recipient,
			Address:        cfg.Memo.Address,
			ChiefFiscal:    cfg.Memo.ChiefFiscal,
			BudgetAccount:  cfg.Memo.BudgetAccount,
			SignatureTitle: cfg.Memo.SignatureTitle,
			HeaderImage:    cfg.Memo.HeaderImage,
			SignatureImage: cfg.Memo.SignatureImage,
		}, log)
	}

	var d *distribute.Dispatcher
	if send {
		if err := cfg.ValidateMail(); err != nil {
			return nil, fmt.Errorf("config validation: %w", err)
		}
		sender := notifier.NewSMTPSender(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.From)
		n := notifier.NewNotifier(sender, cfg.MailRetries(), time.Duration(cfg.Mail.BackoffSeconds)*time.Second, log)
		composer := &notifier.Composer{
			DefaultRecipient:   cfg.Mail.DefaultRecipient,
			DivisionRecipients: cfg.Mail.Divisions,
			MemoRecipients:     cfg.Memo.RecipientEmail,
		}
		d = distribute.NewDispatcher(composer, n, cfg.Mail.Concurrency, log)
	}

	r := pipeline.NewRunner(
		collector.NewCollector(src, log),
		report.NewWorkbookWriter(log),
		mr, d, opts, log)

	if nowFlag != "" {
		now, err := parseNow(nowFlag)
		if err != nil {
			return nil, err
		}
		r.Clock = func() time.Time { return now }
	}
	return r, nil
}

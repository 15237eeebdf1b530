package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"BlanketWatch/internal/distribute"
	"BlanketWatch/internal/indicator"
	"BlanketWatch/internal/model"
)

// Summary records what a run did.
type Summary struct {
	RunID         string
	Now           time.Time
	DryRun        bool
	Loaded        int
	Active        int
	Evaluated     int
	Rejected      []*indicator.DomainError
	Artifacts     []model.Artifact
	RenderErrors  []error
	Deliveries    []distribute.Delivery
	CleanupErrors []error
	Cleaned       int
}

// Delivered counts artifacts that reached their recipients.
func (s *Summary) Delivered() int {
	n := 0
	for _, d := range s.Deliveries {
		if d.Delivered() {
			n++
		}
	}
	return n
}

// Failed counts artifacts whose delivery failed.
func (s *Summary) Failed() int {
	return len(s.Deliveries) - s.Delivered()
}

// HasFailures reports whether anything in the run needs attention.
func (s *Summary) HasFailures() bool {
	return s.Failed() > 0 || len(s.RenderErrors) > 0 || len(s.CleanupErrors) > 0
}

// FormatSummary renders the run summary as plain text for the console.
func FormatSummary(s *Summary) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("BlanketWatch run %s | %s\n", s.RunID, s.Now.Format("2006-01-02 15:04")))
	if s.DryRun {
		b.WriteString("(dry run: nothing sent, nothing removed)\n")
	}
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("Contracts loaded:    %s\n", humanize.Comma(int64(s.Loaded))))
	b.WriteString(fmt.Sprintf("Active:              %s\n", humanize.Comma(int64(s.Active))))
	b.WriteString(fmt.Sprintf("Evaluated:           %s\n", humanize.Comma(int64(s.Evaluated))))
	b.WriteString(fmt.Sprintf("Rejected:            %s\n", humanize.Comma(int64(len(s.Rejected)))))
	for _, de := range s.Rejected {
		b.WriteString(fmt.Sprintf("  - %s\n", de.Error()))
	}

	b.WriteString(fmt.Sprintf("\nArtifacts written: %s\n", english.Plural(len(s.Artifacts), "file", "files")))
	for _, a := range s.Artifacts {
		b.WriteString(fmt.Sprintf("  %-8s %s\n", a.Kind, filepath.Base(a.Path)))
	}
	for _, err := range s.RenderErrors {
		b.WriteString(fmt.Sprintf("  ! %v\n", err))
	}

	if !s.DryRun && len(s.Deliveries) > 0 {
		b.WriteString(fmt.Sprintf("\nDelivered: %d | Failed: %d | Cleaned: %d\n", s.Delivered(), s.Failed(), s.Cleaned))
		for _, d := range s.Deliveries {
			if !d.Delivered() {
				b.WriteString(fmt.Sprintf("  ! %v\n", d.Err))
			}
		}
	}
	for _, err := range s.CleanupErrors {
		b.WriteString(fmt.Sprintf("  ! %v\n", err))
	}

	return b.String()
}

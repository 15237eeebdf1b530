package notifier

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"BlanketWatch/internal/model"
)

// RunDateFormat is the MM-DD-YY stamp used in subjects.
const RunDateFormat = "01-02-06"

var ErrNoRecipient = errors.New("no recipient configured")

// Message is one outgoing e-mail.
type Message struct {
	To          []string
	Subject     string
	Body        string
	Attachments []string
}

const workbookBody = "Attached please find the contract management report for your division indicating " +
	"those contracts requiring your attention due to:\n" +
	"\t1) a high burn rate, and or\n" +
	"\t2) approaching contract expiration."

const memoBody = "Attached please find a change order request memo for a blanket purchase order " +
	"that is on pace to exceed its spending limit before it expires."

// Composer turns artifacts into messages addressed to the right stakeholders.
type Composer struct {
	DefaultRecipient string
	// Division names match exactly first, then case-insensitively in sorted key order.
	DivisionRecipients map[string][]string
	MemoRecipients     []string
}

// Recipients resolves the addresses for an artifact.
func (c *Composer) Recipients(a model.Artifact) []string {
	if a.Kind == model.ArtifactMemo && len(c.MemoRecipients) > 0 {
		return c.MemoRecipients
	}
	if to := c.DivisionRecipients[a.Division]; len(to) > 0 {
		return to
	}
	for _, div := range slices.Sorted(maps.Keys(c.DivisionRecipients)) {
		if to := c.DivisionRecipients[div]; strings.EqualFold(div, a.Division) && len(to) > 0 {
			return to
		}
	}
	if c.DefaultRecipient != "" {
		return []string{c.DefaultRecipient}
	}
	return nil
}

// Compose builds the message for a.
func (c *Composer) Compose(a model.Artifact, runDate time.Time) (*Message, error) {
	to := c.Recipients(a)
	if len(to) == 0 {
		return nil, fmt.Errorf("%s %s: %w", a.Kind, a.Path, ErrNoRecipient)
	}
	msg := &Message{To: to, Attachments: []string{a.Path}}
	switch a.Kind {
	case model.ArtifactMemo:
		msg.Subject = fmt.Sprintf("Change Order Request %s %s", a.ContractID, runDate.Format(RunDateFormat))
		msg.Body = memoBody
	default:
		msg.Subject = fmt.Sprintf("%s Contract Management Watchlist %s", a.Division, runDate.Format(RunDateFormat))
		msg.Body = workbookBody
	}
	return msg, nil
}

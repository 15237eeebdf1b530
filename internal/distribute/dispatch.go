package distribute

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"BlanketWatch/internal/model"
	"BlanketWatch/internal/notifier"
)

// TransportError reports an artifact that could not be delivered.
type TransportError struct {
	Artifact string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("deliver %s: %v", e.Artifact, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Delivery is the outcome for one artifact. Err is nil when it was sent.
type Delivery struct {
	Artifact model.Artifact
	Err      error
}

// Delivered reports whether the artifact reached its recipients.
func (d Delivery) Delivered() bool { return d.Err == nil }

// Dispatcher sends artifacts to their recipients.
type Dispatcher struct {
	Composer    *notifier.Composer
	Notifier    *notifier.Notifier
	Concurrency int
	Logger      *zap.Logger
}

// NewDispatcher creates a Dispatcher. Concurrency below 1 means one send at a time.
func NewDispatcher(composer *notifier.Composer, n *notifier.Notifier, concurrency int, logger *zap.Logger) *Dispatcher {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{Composer: composer, Notifier: n, Concurrency: concurrency, Logger: logger}
}

// Dispatch sends every artifact and returns one Delivery per artifact, in input order.
// A failed artifact never stops the others.
func (d *Dispatcher) Dispatch(ctx context.Context, artifacts []model.Artifact, runDate time.Time) []Delivery {
	results := make([]Delivery, len(artifacts))
	var g errgroup.Group
	g.SetLimit(d.Concurrency)

	for i, a := range artifacts {
		g.Go(func() error {
			results[i] = Delivery{Artifact: a, Err: d.deliver(ctx, a, runDate)}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (d *Dispatcher) deliver(ctx context.Context, a model.Artifact, runDate time.Time) error {
	msg, err := d.Composer.Compose(a, runDate)
	if err == nil {
		err = d.Notifier.SendWithRetry(ctx, msg)
	}
	if err != nil {
		d.Logger.Error("delivery failed",
			zap.String("artifact", a.Path),
			zap.String("division", a.Division),
			zap.Error(err))
		return &TransportError{Artifact: a.Path, Err: err}
	}
	d.Logger.Info("artifact sent",
		zap.String("artifact", a.Path),
		zap.String("division", a.Division),
		zap.Strings("to", msg.To))
	return nil
}

// DeliveredPaths lists the paths of the artifacts that were sent.
func DeliveredPaths(deliveries []Delivery) []string {
	var out []string
	for _, dl := range deliveries {
		if dl.Delivered() {
			out = append(out, dl.Artifact.Path)
		}
	}
	return out
}

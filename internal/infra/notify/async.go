// Package notify adapts a blocking Notifier into a fire-and-forget effect.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"voice-scene/internal/application"
)

// Async sends each message on its own goroutine. Failures are logged and
// otherwise dropped; Wait is the only way to observe completion.
type Async struct {
	ctx      context.Context
	notifier application.Notifier
	timeout  time.Duration
	logger   *slog.Logger
	wg       sync.WaitGroup
}

func NewAsync(ctx context.Context, notifier application.Notifier, timeout time.Duration, logger *slog.Logger) *Async {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Async{
		ctx:      ctx,
		notifier: notifier,
		timeout:  timeout,
		logger:   logger,
	}
}

func (a *Async) Send(text string) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		ctx, cancel := context.WithTimeout(a.ctx, a.timeout)
		defer cancel()

		if err := a.notifier.Notify(ctx, text); err != nil {
			a.logger.Error("sending notification", "error", err)
			return
		}
		a.logger.Info("notification sent", "text", text)
	}()
}

// Wait blocks until every notification started so far has finished.
func (a *Async) Wait() {
	a.wg.Wait()
}

// cmd/regpoll/orchestrate.go
package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/register-poller/internal/poller"
	"github.com/tamzrod/register-poller/internal/status"
	"github.com/tamzrod/register-poller/internal/writer"
)

// orchestrate owns delivery and device status until ctx is done.
// Data sinks only ever see successful cycles. Status is updated on every
// result and on every tick while the device is not OK.
func orchestrate(
	ctx context.Context,
	unitID string,
	out <-chan poller.PollResult,
	tick <-chan time.Time,
	sinks writer.Sinks,
	tracker *status.Tracker,
	log *zap.Logger,
) {
	log = log.With(zap.String("unit", unitID))

	deliverStatus := func() {
		if sinks.Status == nil {
			return
		}
		if err := sinks.Status.WriteStatus(unitID, tracker.Snapshot()); err != nil {
			log.Warn("status write failed", zap.Error(err))
		}
	}

	// Full status on start (identity re-assert)
	deliverStatus()

	for {
		select {
		case <-ctx.Done():
			return

		case res := <-out:
			if res.Err == nil {
				// --- data delivery ---
				if err := sinks.Data.Write(res); err != nil {
					log.Error("writer error", zap.Error(err))
				}
			} else {
				log.Warn("poll cycle failed",
					zap.Error(res.Err),
					zap.Uint16("code", status.Code(res.Err)),
				)
			}

			// --- status update (device-level truth) ---
			if tracker.Observe(res) {
				deliverStatus()
			}

		case <-tick:
			// seconds_in_error moves on the 1 Hz tick only
			if tracker.Tick() {
				deliverStatus()
			}
		}
	}
}

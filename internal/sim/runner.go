package sim

import (
	"context"
	"time"

	"go.uber.org/zap"

	"chunkstream/internal/stream"
)

type tickerFactory func(time.Duration) (<-chan time.Time, func())

type timeSource func() time.Time

func defaultTickerFactory() tickerFactory {
	return func(d time.Duration) (<-chan time.Time, func()) {
		ticker := time.NewTicker(d)
		return ticker.C, ticker.Stop
	}
}

// Runner drives a Simulation from a fixed frame clock.
type Runner struct {
	sim       *Simulation
	viewpoint stream.Viewpoint
	frame     time.Duration
	onFrame   func(Frame)
	logger    *zap.Logger
	newTicker tickerFactory
	now       timeSource
}

func NewRunner(sim *Simulation, vp stream.Viewpoint, frame time.Duration, logger *zap.Logger) *Runner {
	if frame <= 0 {
		frame = 16 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		sim:       sim,
		viewpoint: vp,
		frame:     frame,
		logger:    logger,
		newTicker: defaultTickerFactory(),
		now:       time.Now,
	}
}

// OnFrame installs a callback invoked after every frame.
func (r *Runner) OnFrame(fn func(Frame)) {
	r.onFrame = fn
}

// Run feeds frame deltas to the simulation until ctx is done or a frame
// fails. It returns nil on cancellation.
func (r *Runner) Run(ctx context.Context) error {
	tickerC, stop := r.newTicker(r.frame)
	defer stop()

	last := r.now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-tickerC:
			delta := now.Sub(last)
			if delta <= 0 || delta > 10*r.frame {
				delta = r.frame
			}
			last = now
			frame, err := r.sim.Update(ctx, delta, r.viewpoint)
			if err != nil && ctx.Err() != nil {
				return nil
			}
			if err != nil {
				r.logger.Error("Frame failed", zap.Error(err))
				return err
			}
			if frame.Ticked && (frame.Loaded > 0 || len(frame.Stream.Evicted) > 0) {
				r.logger.Info("Streamed chunks",
					zap.Stringer("center", frame.Stream.Center),
					zap.Int("loaded", frame.Loaded),
					zap.Int("evicted", len(frame.Stream.Evicted)),
					zap.Int("meshed", frame.Meshed),
					zap.Int("resident", r.sim.Store().Len()),
				)
			}
			if r.onFrame != nil {
				r.onFrame(frame)
			}
		}
	}
}

package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Originalimoc/compatctl/ds4"
	"github.com/Originalimoc/compatctl/internal/log"
	"github.com/Originalimoc/compatctl/legiongo"
	"github.com/Originalimoc/compatctl/vbus"
)

// Source produces raw input reports from the physical device.
// Implemented by legiongo.Reader and by test fakes.
type Source interface {
	Open(ctx context.Context) error
	Read(ctx context.Context) ([]byte, error)
	Close() error
}

// Sink owns the virtual bus handle and accepts encoded target reports.
// Implemented by vbus.Client and by test fakes.
type Sink interface {
	Connect(ctx context.Context) error
	Submit(report []byte) error
	Close() error
}

// LoopState is the lifecycle phase of the translation loop.
type LoopState int32

const (
	StateStarting LoopState = iota
	StateRunning
	StateReconnecting
	StateStopping
	StateStopped
)

func (s LoopState) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateReconnecting:
		return "reconnecting"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// LoopConfig bounds the reconnect backoff and stats cadence.
type LoopConfig struct {
	ReconnectMin  time.Duration
	ReconnectMax  time.Duration
	StatsInterval time.Duration
}

func (c *LoopConfig) fillDefaults() {
	if c.ReconnectMin <= 0 {
		c.ReconnectMin = 250 * time.Millisecond
	}
	if c.ReconnectMax < c.ReconnectMin {
		c.ReconnectMax = 5 * time.Second
	}
	if c.StatsInterval <= 0 {
		c.StatsInterval = 30 * time.Second
	}
}

// Loop drives the continuous read→decode→normalize→encode→submit cycle.
//
// It is the sole owner of the previous-snapshot value threaded between
// iterations; at most one raw report and one target report are in flight at
// any time.
type Loop struct {
	src    Source
	sink   Sink
	layout legiongo.Layout
	norm   *Normalizer
	cfg    LoopConfig
	logger *slog.Logger
	raw    log.RawLogger

	state atomic.Int32

	droppedSamples  atomic.Uint64
	rejectedSubmits atomic.Uint64
	reconnects      atomic.Uint64

	motionDegradedLogged bool
}

func NewLoop(src Source, sink Sink, layout legiongo.Layout, norm *Normalizer, cfg LoopConfig, logger *slog.Logger, raw log.RawLogger) *Loop {
	cfg.fillDefaults()
	return &Loop{
		src:    src,
		sink:   sink,
		layout: layout,
		norm:   norm,
		cfg:    cfg,
		logger: logger,
		raw:    raw,
	}
}

// State returns the loop's current lifecycle phase.
func (l *Loop) State() LoopState { return LoopState(l.state.Load()) }

// Counters returns the running totals of dropped samples, rejected submits,
// and reconnect cycles.
func (l *Loop) Counters() (dropped, rejected, reconnects uint64) {
	return l.droppedSamples.Load(), l.rejectedSubmits.Load(), l.reconnects.Load()
}

func (l *Loop) setState(s LoopState) {
	old := LoopState(l.state.Swap(int32(s)))
	if old != s {
		l.logger.Debug("loop state", "from", old.String(), "to", s.String())
	}
}

// Run executes the loop until ctx is cancelled or a fatal startup error
// occurs. Both handles are acquired in Starting; failure there is fatal and
// returned to the caller. After that, device and bus loss only ever lead to
// Reconnecting, never to an error return.
func (l *Loop) Run(ctx context.Context) error {
	l.setState(StateStarting)

	if err := l.sink.Connect(ctx); err != nil {
		l.setState(StateStopped)
		return fmt.Errorf("acquire virtual bus: %w", err)
	}
	defer l.sink.Close()

	if err := l.src.Open(ctx); err != nil {
		l.setState(StateStopped)
		return fmt.Errorf("acquire device: %w", err)
	}
	defer l.src.Close()

	l.setState(StateRunning)
	l.logger.Info("translation loop running", "variant", l.layout.Name)

	statsTicker := time.NewTicker(l.cfg.StatsInterval)
	defer statsTicker.Stop()

	var prev *legiongo.Snapshot

	for {
		select {
		case <-ctx.Done():
			return l.stop()
		case <-statsTicker.C:
			d, r, c := l.Counters()
			l.logger.Debug("loop stats", "dropped", d, "rejected", r, "reconnects", c)
		default:
		}

		raw, err := l.src.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return l.stop()
			}
			if errors.Is(err, legiongo.ErrDeviceGone) || errors.Is(err, legiongo.ErrDeviceNotFound) {
				l.logger.Info("device lost, reconnecting", "error", err)
				if !l.reconnectDevice(ctx) {
					return l.stop()
				}
				prev = nil
				l.norm.Reset()
				continue
			}
			// Unclassified read failure: treat as a dropped sample.
			l.droppedSamples.Add(1)
			continue
		}

		snap, err := legiongo.Decode(l.layout, raw)
		if err != nil {
			l.droppedSamples.Add(1)
			l.logger.Debug("sample dropped", "error", err)
			continue
		}

		st := l.norm.Normalize(prev, snap)
		prev = &snap
		l.noteMotionHealth(st)

		report := ds4.Encode(st.DS4())
		l.raw.Log(log.RawBus, report)

		if err := l.sink.Submit(report); err != nil {
			switch {
			case errors.Is(err, vbus.ErrSubmitRejected):
				l.rejectedSubmits.Add(1)
				l.logger.Debug("submit rejected", "error", err)
			case errors.Is(err, vbus.ErrBusGone), errors.Is(err, vbus.ErrBusUnavailable):
				l.logger.Info("virtual bus lost, reconnecting", "error", err)
				if !l.reconnectBus(ctx) {
					return l.stop()
				}
			default:
				l.rejectedSubmits.Add(1)
				l.logger.Debug("submit failed", "error", err)
			}
		}
	}
}

func (l *Loop) stop() error {
	l.setState(StateStopping)
	_ = l.src.Close()
	_ = l.sink.Close()
	l.setState(StateStopped)
	l.logger.Info("translation loop stopped")
	return nil
}

func (l *Loop) noteMotionHealth(st State) {
	if st.MotionDegraded && !l.motionDegradedLogged {
		l.motionDegradedLogged = true
		l.logger.Warn("motion sensor degraded after sleep, holding neutral rest values")
	} else if !st.MotionDegraded && l.motionDegradedLogged {
		l.motionDegradedLogged = false
		l.logger.Info("motion sensor recovered")
	}
}

// reconnectDevice re-acquires the device handle with bounded exponential
// backoff. Returns false when ctx was cancelled instead.
func (l *Loop) reconnectDevice(ctx context.Context) bool {
	return l.reconnect(ctx, "device", func(ctx context.Context) error {
		_ = l.src.Close()
		return l.src.Open(ctx)
	})
}

// reconnectBus does the same for the bus handle.
func (l *Loop) reconnectBus(ctx context.Context) bool {
	return l.reconnect(ctx, "bus", func(ctx context.Context) error {
		_ = l.sink.Close()
		return l.sink.Connect(ctx)
	})
}

func (l *Loop) reconnect(ctx context.Context, what string, acquire func(context.Context) error) bool {
	l.setState(StateReconnecting)
	l.reconnects.Add(1)

	backoff := l.cfg.ReconnectMin
	for {
		if err := acquire(ctx); err == nil {
			l.setState(StateRunning)
			l.logger.Info("reacquired", "what", what)
			return true
		} else if ctx.Err() == nil {
			l.logger.Debug("reacquire failed", "what", what, "backoff", backoff, "error", err)
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > l.cfg.ReconnectMax {
			backoff = l.cfg.ReconnectMax
		}
	}
}

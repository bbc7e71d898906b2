package legiongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/karalabe/hid"

	"github.com/Originalimoc/compatctl/internal/log"
)

var (
	// ErrDeviceNotFound means no matching HID interface is currently present.
	ErrDeviceNotFound = errors.New("device not found")

	// ErrDeviceGone means the open handle failed mid-stream: the device was
	// unplugged or went to sleep. Not fatal; callers re-open with backoff.
	ErrDeviceGone = errors.New("device disconnected")
)

// Reader owns the HID handle to the physical controller and produces raw
// input reports one at a time.
//
// The blocking OS read runs on a background goroutine that feeds a
// single-slot channel; a stale report still sitting in the slot is replaced
// by the newer one, never queued behind it. That keeps latency bounded and
// makes cancellation observable within one polling interval even though the
// OS call itself blocks.
type Reader struct {
	layout Layout
	logger *slog.Logger
	raw    log.RawLogger

	mu      sync.Mutex
	dev     *hid.Device
	reports chan readResult
	done    chan struct{}
}

type readResult struct {
	data []byte
	err  error
}

func NewReader(layout Layout, logger *slog.Logger, raw log.RawLogger) *Reader {
	return &Reader{layout: layout, logger: logger, raw: raw}
}

// Open locates the device by VID/PID and opens its HID interface. Returns
// ErrDeviceNotFound (possibly wrapped) when no matching interface is present;
// the caller decides whether that is fatal (startup) or a retry (reconnect).
func (r *Reader) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	infos := hid.Enumerate(r.layout.VendorID, r.layout.ProductID)
	if len(infos) == 0 {
		return fmt.Errorf("%w: no HID interface with VID 0x%04x PID 0x%04x",
			ErrDeviceNotFound, r.layout.VendorID, r.layout.ProductID)
	}

	dev, err := infos[0].Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", infos[0].Path, err)
	}

	r.mu.Lock()
	r.dev = dev
	r.reports = make(chan readResult, 1)
	r.done = make(chan struct{})
	r.mu.Unlock()

	r.logger.Info("device opened",
		"variant", r.layout.Name,
		"path", infos[0].Path,
		"product", infos[0].Product)

	go r.pump(dev, r.reports, r.done)
	return nil
}

// pump performs the blocking OS reads. It exits on the first read error
// (treated as disconnect) or when done is closed.
func (r *Reader) pump(dev *hid.Device, reports chan readResult, done chan struct{}) {
	shortReads := 0
	defer func() {
		if shortReads > 0 {
			r.logger.Debug("device read loop ended", "shortReads", shortReads)
		}
	}()
	for {
		buf := make([]byte, r.layout.ReportSize)
		n, err := dev.Read(buf)
		if err != nil {
			select {
			case <-done:
			default:
				r.deliver(reports, readResult{err: fmt.Errorf("%w: %v", ErrDeviceGone, err)})
			}
			return
		}
		if n != r.layout.ReportSize {
			// Short read: a single dropped sample, not a fault.
			shortReads++
			r.logger.Debug("short read dropped", "got", n, "want", r.layout.ReportSize)
			continue
		}
		select {
		case <-done:
			return
		default:
		}
		r.raw.Log(log.RawDev, buf)
		r.deliver(reports, readResult{data: buf})
	}
}

// deliver places a result in the single-slot channel, displacing a stale
// entry if one is still waiting.
func (r *Reader) deliver(reports chan readResult, res readResult) {
	for {
		select {
		case reports <- res:
			return
		default:
			select {
			case <-reports:
			default:
			}
		}
	}
}

// Read returns the next raw report, or ErrDeviceGone when the handle died,
// or ctx.Err() on cancellation.
func (r *Reader) Read(ctx context.Context) ([]byte, error) {
	r.mu.Lock()
	reports := r.reports
	r.mu.Unlock()
	if reports == nil {
		return nil, ErrDeviceGone
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res, ok := <-reports:
		if !ok {
			return nil, ErrDeviceGone
		}
		return res.data, res.err
	}
}

// Close releases the device handle. Safe to call on an already-closed or
// never-opened reader; Open may be called again afterwards.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dev == nil {
		return nil
	}
	close(r.done)
	err := r.dev.Close()
	r.dev = nil
	r.reports = nil
	r.done = nil
	return err
}

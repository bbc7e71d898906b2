// Package vbus is the client side of the virtual controller bus: it attaches
// a virtual DualShock 4 on a bus server and streams encoded input reports to
// it, receiving rumble/led feedback in return.
//
// Wire protocol: after an optional authenticated handshake the client sends
// the attach request `attach <device-type>` terminated by \x00; the server
// answers with a single JSON line (AttachReply on success, problem+json
// ApiError otherwise). The connection then switches to streaming mode:
// fixed-size input report frames flow client→server and fixed-size output
// report frames flow server→client.
package vbus

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/Originalimoc/compatctl/ds4"
	"github.com/Originalimoc/compatctl/internal/auth"
	"github.com/Originalimoc/compatctl/internal/log"
)

// DeviceType is the device the bridge attaches on the bus.
const DeviceType = "dualshock4"

// Config controls bus client behavior.
type Config struct {
	Addr           string        `help:"Virtual bus server address" default:"127.0.0.1:27890" env:"COMPATCTL_BUS_ADDR"`
	Password       string        `help:"Bus server password, if the server requires one" env:"COMPATCTL_BUS_PASSWORD"`
	PasswordPrompt bool          `help:"Prompt for the bus password on stdin" default:"false"`
	DialTimeout    time.Duration `help:"Bus connect timeout" default:"3s"`
	ReadTimeout    time.Duration `help:"Bus attach-reply read timeout" default:"5s"`
	WriteTimeout   time.Duration `help:"Per-report submit timeout" default:"1s"`
}

// Client owns the TCP connection to the bus server. One Client drives one
// virtual controller; Connect may be called again after Close to re-acquire.
type Client struct {
	cfg    Config
	logger *slog.Logger
	raw    log.RawLogger

	mu       sync.Mutex
	conn     net.Conn
	attached AttachReply
	closed   bool

	feedbackFn func(ds4.OutputState)
}

func New(cfg Config, logger *slog.Logger, raw log.RawLogger) *Client {
	return &Client{cfg: cfg, logger: logger, raw: raw}
}

// OnFeedback registers a callback for rumble/led output reports received
// from the bus. Must be set before Connect.
func (c *Client) OnFeedback(fn func(ds4.OutputState)) { c.feedbackFn = fn }

// Attached returns the attach reply from the most recent Connect.
func (c *Client) Attached() AttachReply {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attached
}

// Connect dials the bus server, authenticates when a password is configured,
// and attaches the virtual controller. Any failure maps onto
// ErrBusUnavailable so the caller can distinguish "no bus at all" from a
// mid-stream loss.
func (c *Client) Connect(ctx context.Context) error {
	d := &net.Dialer{Timeout: c.cfg.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", c.cfg.Addr)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %v", ErrBusUnavailable, c.cfg.Addr, err)
	}

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		if err := tcpConn.SetNoDelay(true); err != nil {
			c.logger.Warn("failed to set TCP_NODELAY", "error", err)
		}
	}

	br := bufio.NewReader(conn)

	if c.cfg.Password != "" {
		key, err := auth.DeriveKey(c.cfg.Password)
		if err != nil {
			conn.Close()
			return fmt.Errorf("%w: %v", ErrBusUnavailable, err)
		}
		if c.cfg.ReadTimeout > 0 {
			_ = conn.SetDeadline(time.Now().Add(c.cfg.ReadTimeout))
		}
		clientNonce, serverNonce, err := auth.Handshake(br, conn, key, true)
		if err != nil {
			conn.Close()
			if strings.Contains(err.Error(), "read handshake response: EOF") {
				return fmt.Errorf("%w: bus server rejected the password", ErrBusUnavailable)
			}
			return fmt.Errorf("%w: handshake: %v", ErrBusUnavailable, err)
		}
		sessionKey := auth.DeriveSessionKey(key, serverNonce, clientNonce)
		wrapped, err := auth.WrapConn(conn, sessionKey)
		if err != nil {
			conn.Close()
			return fmt.Errorf("%w: %v", ErrBusUnavailable, err)
		}
		conn = wrapped
		br = bufio.NewReader(conn)
		_ = conn.SetDeadline(time.Time{})
	}

	reply, err := c.attach(conn, br)
	if err != nil {
		conn.Close()
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.attached = reply
	c.closed = false
	c.mu.Unlock()

	c.logger.Info("attached virtual controller",
		"addr", c.cfg.Addr,
		"bus", reply.BusID,
		"device", reply.DevID,
		"type", reply.Type)

	go c.readFeedback(conn, br)
	return nil
}

func (c *Client) attach(conn net.Conn, br *bufio.Reader) (AttachReply, error) {
	if c.cfg.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	}
	if _, err := conn.Write([]byte("attach " + DeviceType + "\x00")); err != nil {
		return AttachReply{}, fmt.Errorf("%w: write attach request: %v", ErrBusUnavailable, err)
	}

	if c.cfg.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
	}
	line, err := br.ReadString('\n')
	if err != nil {
		return AttachReply{}, fmt.Errorf("%w: read attach reply: %v", ErrBusUnavailable, err)
	}
	_ = conn.SetDeadline(time.Time{})
	line = strings.TrimSuffix(line, "\n")

	// Problem replies and success replies share the wire; a reply carrying
	// a status or title is an error.
	var problem ApiError
	if err := json.Unmarshal([]byte(line), &problem); err == nil && (problem.Status != 0 || problem.Title != "") {
		return AttachReply{}, fmt.Errorf("%w: attach refused: %v", ErrBusUnavailable, &problem)
	}
	var reply AttachReply
	if err := json.Unmarshal([]byte(line), &reply); err != nil {
		return AttachReply{}, fmt.Errorf("%w: decode attach reply: %v", ErrBusUnavailable, err)
	}
	return reply, nil
}

// Submit writes one encoded input report to the bus. A dead connection maps
// to ErrBusGone (reconnect path); a short write is a single rejected
// submission.
func (c *Client) Submit(report []byte) error {
	c.mu.Lock()
	conn := c.conn
	closed := c.closed
	c.mu.Unlock()

	if conn == nil || closed {
		return ErrBusGone
	}

	if c.cfg.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	}
	n, err := conn.Write(report)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBusGone, err)
	}
	if n != len(report) {
		return fmt.Errorf("%w: short write %d of %d bytes", ErrSubmitRejected, n, len(report))
	}
	return nil
}

// readFeedback drains output reports from the bus until the connection dies.
func (c *Client) readFeedback(conn net.Conn, br *bufio.Reader) {
	buf := make([]byte, ds4.OutputReportSize)
	for {
		if _, err := io.ReadFull(br, buf); err != nil {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if !closed {
				c.logger.Debug("feedback stream ended", "error", err)
			}
			return
		}
		c.raw.Log(log.RawFb, buf)

		fb, err := ds4.DecodeOutput(buf)
		if err != nil {
			c.logger.Debug("bad feedback report", "error", err)
			continue
		}
		if c.feedbackFn != nil {
			c.feedbackFn(fb)
		}
	}
}

// Close releases the bus connection. Safe to call twice; Connect may be
// called again afterwards.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || c.closed {
		return nil
	}
	c.closed = true
	err := c.conn.Close()
	c.conn = nil
	return err
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/Originalimoc/compatctl/bridge"
	"github.com/Originalimoc/compatctl/ds4"
	"github.com/Originalimoc/compatctl/internal/log"
	"github.com/Originalimoc/compatctl/legiongo"
	"github.com/Originalimoc/compatctl/vbus"
)

// Run is the main command: the continuous translation loop.
type Run struct {
	EnableShareButton bool    `help:"Map the capture button onto the virtual controller's Share button" default:"false" env:"COMPATCTL_ENABLE_SHARE_BUTTON"`
	Deadzone          float64 `help:"Radial stick deadzone as a fraction of full deflection" default:"0.08" env:"COMPATCTL_DEADZONE"`
	Variant           string  `help:"Device variant table to use" default:"legion-go" env:"COMPATCTL_VARIANT"`

	ReconnectMin time.Duration `help:"Initial reconnect backoff" default:"250ms"`
	ReconnectMax time.Duration `help:"Maximum reconnect backoff" default:"5s"`

	Bus vbus.Config `embed:"" prefix:"bus."`
}

// Run is called by kong when the run command is executed.
func (r *Run) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	layout, err := legiongo.Variant(r.Variant)
	if err != nil {
		return fmt.Errorf("%w (known variants: %v)", err, legiongo.VariantNames())
	}

	if r.Deadzone < 0 || r.Deadzone >= 1 {
		return fmt.Errorf("deadzone %v out of range [0, 1)", r.Deadzone)
	}

	if r.Bus.PasswordPrompt && r.Bus.Password == "" {
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		r.Bus.Password = pwd
	}

	reader := legiongo.NewReader(layout, logger, rawLogger)

	sink := vbus.New(r.Bus, logger, rawLogger)
	sink.OnFeedback(func(fb ds4.OutputState) {
		logger.Debug("feedback",
			"rumbleSmall", fb.RumbleSmall,
			"rumbleLarge", fb.RumbleLarge,
			"led", fmt.Sprintf("#%02x%02x%02x", fb.LedRed, fb.LedGreen, fb.LedBlue))
	})

	norm := bridge.NewNormalizer(layout, bridge.Config{
		EnableShareButton: r.EnableShareButton,
		StickDeadzone:     r.Deadzone,
	})

	loop := bridge.NewLoop(reader, sink, layout, norm, bridge.LoopConfig{
		ReconnectMin: r.ReconnectMin,
		ReconnectMax: r.ReconnectMax,
	}, logger, rawLogger)

	logger.Info("starting translator",
		"variant", layout.Name,
		"shareButton", r.EnableShareButton,
		"deadzone", r.Deadzone,
		"bus", r.Bus.Addr)

	if err := loop.Run(ctx); err != nil {
		switch {
		case errors.Is(err, vbus.ErrBusUnavailable):
			return fmt.Errorf("%w\nstart the virtual bus server or point --bus.addr at it", err)
		case errors.Is(err, legiongo.ErrDeviceNotFound):
			return fmt.Errorf("%w\nconnect the controller (or pick another --variant) and try again", err)
		default:
			return err
		}
	}
	return nil
}

func promptPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("cannot prompt for bus password: stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, "Bus server password: ")
	pwd, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pwd), nil
}

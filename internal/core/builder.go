package core

import (
	"context"
	"fmt"
	"strings"

	"sniffterm/config"
	"sniffterm/internal/capture"
	"sniffterm/internal/metrics"
	"sniffterm/internal/transport"
	"sniffterm/tunnel"
	"sniffterm/util"
)

// Build constructs the terminal from a validated configuration.
// Device lines and status text go to console; logger should already
// write through a sink of the same console.
func Build(cfg *config.Config, logger *util.Logger, console *util.Console) (Mode, error) {
	open, err := buildOpener(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &TerminalMode{
		Open:        open,
		Baud:        cfg.Baud,
		Terminator:  config.LineTerminator,
		Trigger:     cfg.Trigger,
		Stop:        cfg.Stop,
		FlushIdle:   cfg.FlushIdle,
		IdlePause:   cfg.IdlePause,
		ReadSize:    cfg.ReadSize,
		JoinTimeout: cfg.JoinTimeout,
		PreCapture:  cfg.PreCapture,
		PostStop:    cfg.PostStop,
		Writer:      &capture.Writer{Dir: cfg.OutDir, Ext: cfg.CaptureExt},
		Console:     console,
		Logger:      logger,
		Metrics:     metrics.New(),
	}, nil
}

// ── shared helpers ───────────────────────────────────────────────────

// buildOpener returns the function that opens the configured device.
func buildOpener(cfg *config.Config, logger *util.Logger) (func(context.Context) (transport.Device, error), error) {
	dev := cfg.Device
	switch dev.Kind {
	case config.DeviceSerial:
		opts := transport.SerialOptions{
			Baud:        cfg.Baud,
			DataBits:    cfg.DataBits,
			Parity:      cfg.Parity,
			StopBits:    cfg.StopBits,
			ReadTimeout: cfg.ReadTimeout,
		}
		return func(context.Context) (transport.Device, error) {
			logger.Verbose("opening %s (%d %d%s%d)", dev.Path, opts.Baud, opts.DataBits, parityLetter(opts.Parity), opts.StopBits)
			return transport.OpenSerial(dev.Path, opts)
		}, nil

	case config.DeviceTCP:
		address := util.FormatAddr(dev.Host, dev.Port)
		return func(ctx context.Context) (transport.Device, error) {
			logger.Verbose("connecting to bridge %s", address)
			return transport.DialDevice(ctx, buildDialer(cfg, logger), address, dev.String(), cfg.ReadTimeout)
		}, nil
	}
	return nil, fmt.Errorf("unsupported device %q", cfg.Port)
}

// buildDialer creates the right transport.Dialer for a bridge device.
func buildDialer(cfg *config.Config, logger *util.Logger) transport.Dialer {
	if cfg.TunnelEnabled {
		return transport.NewSSHDialer(&tunnel.SSHConfig{
			User:          cfg.TunnelUser,
			Host:          cfg.TunnelHost,
			Port:          cfg.TunnelPort,
			KeyPath:       cfg.SSHKeyPath,
			PromptPass:    cfg.SSHPassword,
			UseAgent:      cfg.UseSSHAgent,
			StrictHostKey: cfg.StrictHostKey,
			KnownHosts:    cfg.KnownHostsPath,
			ConnTimeout:   cfg.ConnTimeout,
			Keepalive:     config.DefaultKeepalive,
		}, logger)
	}

	return &transport.TCPDialer{Timeout: cfg.ConnTimeout}
}

func parityLetter(p string) string {
	if p == "" {
		return "N"
	}
	return strings.ToUpper(p[:1])
}

// Package cmd wires up the CLI flags and dispatches to the terminal core.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"sniffterm/config"
	"sniffterm/internal/core"
	"sniffterm/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X sniffterm/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// Execute parses args and runs the terminal on the process's stdio.
func Execute(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdin, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	// Config file and environment provide the defaults flags override.
	cfg := config.Defaults()
	if path := config.ConfigPath(args); path != "" {
		if err := config.LoadFile(cfg, path); err != nil {
			return err
		}
	}
	config.LoadFromEnv(cfg)
	baseVerbose := cfg.Verbose

	fs := flag.NewFlagSet("sniffterm", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// ── device ───────────────────────────────────────────────────
	fs.StringVarP(&cfg.Port, "port", "p", cfg.Port, "Serial port (/dev/ttyUSB0, COM5) or tcp://host:port bridge")
	fs.IntVarP(&cfg.Baud, "baud", "b", cfg.Baud, "Baud rate")
	fs.IntVar(&cfg.DataBits, "data-bits", cfg.DataBits, "Data bits (5-8)")
	fs.StringVar(&cfg.Parity, "parity", cfg.Parity, "Parity: none, odd, even, mark, space")
	fs.IntVar(&cfg.StopBits, "stop-bits", cfg.StopBits, "Stop bits (1 or 2)")
	fs.DurationVar(&cfg.ReadTimeout, "read-timeout", cfg.ReadTimeout, "Bounded device read timeout")

	// ── display & capture ────────────────────────────────────────
	fs.DurationVar(&cfg.FlushIdle, "flush-idle", cfg.FlushIdle, "Print an unterminated line after this idle time")
	fs.StringVar(&cfg.OutDir, "outdir", cfg.OutDir, "Directory to save captures")
	fs.StringVar(&cfg.CaptureExt, "ext", cfg.CaptureExt, "Capture file extension")
	fs.StringVar(&cfg.Trigger, "trigger", cfg.Trigger, "Two-word command that starts a capture")
	fs.StringVar(&cfg.Stop, "stop", cfg.Stop, "Command that ends a capture")
	fs.DurationVar(&cfg.PreCapture, "pre-capture", cfg.PreCapture, "Display grace after the trigger")
	fs.DurationVar(&cfg.PostStop, "post-stop", cfg.PostStop, "Capture grace after stop")

	// ── SSH tunnel ───────────────────────────────────────────────
	fs.StringVarP(&cfg.TunnelSpec, "tunnel", "T", cfg.TunnelSpec, "Reach a tcp:// bridge via SSH [user@]host[:port]")
	fs.StringVar(&cfg.SSHKeyPath, "ssh-key", cfg.SSHKeyPath, "SSH private key file")
	fs.BoolVar(&cfg.SSHPassword, "ssh-password", cfg.SSHPassword, "Prompt for SSH password")
	fs.BoolVar(&cfg.UseSSHAgent, "ssh-agent", cfg.UseSSHAgent, "Use SSH agent")
	fs.BoolVar(&cfg.StrictHostKey, "strict-hostkey", cfg.StrictHostKey, "Verify SSH host keys")
	fs.StringVar(&cfg.KnownHostsPath, "known-hosts", cfg.KnownHostsPath, "Custom known_hosts path")

	// ── output ───────────────────────────────────────────────────
	fs.CountVarP(&cfg.Verbose, "verbose", "v", "Increase verbosity (repeatable)")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Validate configuration and exit")

	var configPath string
	fs.StringVar(&configPath, "config", cfg.ConfigFile, "YAML config file (also SNIFFTERM_CONFIG)")

	var showVersion, showHelp bool
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(stderr, fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !fs.Changed("verbose") {
		cfg.Verbose = baseVerbose
	}

	if showHelp || (len(args) == 0 && cfg.Port == "") {
		printUsage(stderr, fs)
		return nil
	}
	if showVersion {
		fmt.Fprintf(stdout, "sniffterm %s\n", version)
		return nil
	}

	// ── positional device ────────────────────────────────────────
	switch rest := fs.Args(); {
	case len(rest) > 1:
		return fmt.Errorf("unexpected arguments %q (use --help for usage)", rest[1:])
	case len(rest) == 1 && cfg.Port != "" && fs.Changed("port"):
		return fmt.Errorf("device given twice: -p %s and %s", cfg.Port, rest[0])
	case len(rest) == 1:
		cfg.Port = rest[0]
	}

	// ── tunnel spec ──────────────────────────────────────────────
	if cfg.TunnelSpec != "" {
		user, host, port, err := config.ParseTunnelSpec(cfg.TunnelSpec)
		if err != nil {
			return fmt.Errorf("tunnel: %w", err)
		}
		if user == "" {
			user = currentUser()
		}
		cfg.TunnelEnabled = true
		cfg.TunnelUser = user
		cfg.TunnelHost = host
		cfg.TunnelPort = port
	}

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.DryRun {
		printConfig(stdout, cfg)
		return nil
	}

	// ── build components ─────────────────────────────────────────
	console := util.NewConsole(stdout)
	logger := util.NewLogger(cfg.Verbose)
	logger.SetOutput(console.Sink(stderr))
	if cfg.ConfigFile != "" {
		logger.Verbose("loaded %s", cfg.ConfigFile)
	}

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return fmt.Errorf("output directory: %w", err)
	}

	mode, err := core.Build(cfg, logger, console)
	if err != nil {
		return err
	}
	if tm, ok := mode.(*core.TerminalMode); ok {
		tm.Stdin = stdin
	}
	return mode.Run(ctx)
}

// ── helpers ──────────────────────────────────────────────────────────

func currentUser() string {
	for _, k := range []string{"USER", "USERNAME"} {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return "root"
}

func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "device:       %s (%s)\n", cfg.Device, cfg.Device.Kind)
	fmt.Fprintf(w, "line:         %d %d%s%d\n", cfg.Baud, cfg.DataBits, strings.ToUpper(cfg.Parity[:1]), cfg.StopBits)
	fmt.Fprintf(w, "read timeout: %s\n", cfg.ReadTimeout)
	fmt.Fprintf(w, "flush idle:   %s\n", cfg.FlushIdle)
	fmt.Fprintf(w, "capture:      %q … %q → %s/*.%s\n", cfg.Trigger, cfg.Stop, cfg.OutDir, cfg.CaptureExt)
	fmt.Fprintf(w, "grace:        pre %s, post %s\n", cfg.PreCapture, cfg.PostStop)
	if cfg.TunnelEnabled {
		fmt.Fprintf(w, "tunnel:       %s@%s\n", cfg.TunnelUser, util.FormatAddr(cfg.TunnelHost, cfg.TunnelPort))
	}
	if cfg.ConfigFile != "" {
		fmt.Fprintf(w, "config file:  %s\n", cfg.ConfigFile)
	}
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, `sniffterm – serial terminal with raw capture v%s

Type commands for the device; its replies print line by line.  The
capture trigger (default "sniff -c [channel]") switches to silent raw
capture until you type "stop"; the bytes are saved unchanged.

Usage:
  sniffterm -p <device> [options]
  sniffterm [options] <device>

Options:
`, version)
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintf(w, `
Examples:
  sniffterm -p /dev/ttyUSB0                       921600 8N1
  sniffterm -p COM5 -b 115200 --outdir captures   Windows, custom rate
  sniffterm -p tcp://lab-pi:4001                  ser2net bridge
  sniffterm -T pi@gateway -p tcp://10.0.0.7:4001  Bridge behind SSH
`)
}

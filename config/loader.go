package config

// loader.go - configuration loading from a YAML file and environment
// variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables  (LoadFromEnv)
//   3. Config file  (LoadFile)
//   4. Defaults   (defaults.go)

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ── Config file ──────────────────────────────────────────────────────

// fileConfig mirrors the YAML layout.  Durations are Go duration
// strings ("500ms", "1s").
type fileConfig struct {
	Port     string `yaml:"port"`
	Baud     int    `yaml:"baud"`
	DataBits int    `yaml:"data_bits"`
	Parity   string `yaml:"parity"`
	StopBits int    `yaml:"stop_bits"`

	ReadTimeout string `yaml:"read_timeout"`
	FlushIdle   string `yaml:"flush_idle"`
	PreCapture  string `yaml:"pre_capture"`
	PostStop    string `yaml:"post_stop"`
	JoinTimeout string `yaml:"join_timeout"`

	OutDir     string `yaml:"outdir"`
	CaptureExt string `yaml:"ext"`
	Trigger    string `yaml:"trigger"`
	Stop       string `yaml:"stop"`

	Tunnel        string `yaml:"tunnel"`
	SSHKey        string `yaml:"ssh_key"`
	SSHAgent      bool   `yaml:"ssh_agent"`
	StrictHostKey bool   `yaml:"strict_hostkey"`
	KnownHosts    string `yaml:"known_hosts"`

	Verbose int `yaml:"verbose"`
}

// LoadFile overlays the YAML file at path onto cfg.  Only non-zero
// values override.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	setString(&cfg.Port, fc.Port)
	setInt(&cfg.Baud, fc.Baud)
	setInt(&cfg.DataBits, fc.DataBits)
	setString(&cfg.Parity, fc.Parity)
	setInt(&cfg.StopBits, fc.StopBits)
	setString(&cfg.OutDir, fc.OutDir)
	setString(&cfg.CaptureExt, fc.CaptureExt)
	setString(&cfg.Trigger, fc.Trigger)
	setString(&cfg.Stop, fc.Stop)
	setString(&cfg.TunnelSpec, fc.Tunnel)
	setString(&cfg.SSHKeyPath, fc.SSHKey)
	setString(&cfg.KnownHostsPath, fc.KnownHosts)
	setInt(&cfg.Verbose, fc.Verbose)
	cfg.UseSSHAgent = cfg.UseSSHAgent || fc.SSHAgent
	cfg.StrictHostKey = cfg.StrictHostKey || fc.StrictHostKey

	for _, d := range []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"read_timeout", fc.ReadTimeout, &cfg.ReadTimeout},
		{"flush_idle", fc.FlushIdle, &cfg.FlushIdle},
		{"pre_capture", fc.PreCapture, &cfg.PreCapture},
		{"post_stop", fc.PostStop, &cfg.PostStop},
		{"join_timeout", fc.JoinTimeout, &cfg.JoinTimeout},
	} {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("config file %s: %s: %w", path, d.key, err)
		}
		*d.dst = v
	}

	cfg.ConfigFile = path
	return nil
}

// ── Environment variable mapping ─────────────────────────────────────
//
// Every supported env var uses the SNIFFTERM_ prefix.  Boolean values
// accept "1", "true", "yes" (case-insensitive).

// LoadFromEnv overlays environment variables onto cfg.  Only non-empty
// env vars override the existing value.  This should be called BEFORE
// CLI flag parsing so that flags take precedence.
func LoadFromEnv(cfg *Config) {
	setString(&cfg.Port, os.Getenv("SNIFFTERM_PORT"))
	setInt(&cfg.Baud, envInt("SNIFFTERM_BAUD"))
	setString(&cfg.OutDir, os.Getenv("SNIFFTERM_OUTDIR"))
	setString(&cfg.CaptureExt, os.Getenv("SNIFFTERM_EXT"))
	setString(&cfg.Trigger, os.Getenv("SNIFFTERM_TRIGGER"))
	setString(&cfg.Stop, os.Getenv("SNIFFTERM_STOP"))
	setString(&cfg.Parity, os.Getenv("SNIFFTERM_PARITY"))

	if v := envDuration("SNIFFTERM_PRE_CAPTURE"); v > 0 {
		cfg.PreCapture = v
	}
	if v := envDuration("SNIFFTERM_POST_STOP"); v > 0 {
		cfg.PostStop = v
	}
	if v := envDuration("SNIFFTERM_FLUSH_IDLE"); v > 0 {
		cfg.FlushIdle = v
	}

	// SSH tunnel
	setString(&cfg.TunnelSpec, os.Getenv("SNIFFTERM_TUNNEL"))
	setString(&cfg.SSHKeyPath, os.Getenv("SNIFFTERM_SSH_KEY"))
	setString(&cfg.KnownHostsPath, os.Getenv("SNIFFTERM_KNOWN_HOSTS"))
	if envBool("SNIFFTERM_SSH_PASSWORD") {
		cfg.SSHPassword = true
	}
	if envBool("SNIFFTERM_SSH_AGENT") {
		cfg.UseSSHAgent = true
	}
	if envBool("SNIFFTERM_STRICT_HOSTKEY") {
		cfg.StrictHostKey = true
	}

	// Output
	setInt(&cfg.Verbose, envInt("SNIFFTERM_VERBOSE"))
}

// ConfigPath returns the config file named by --config in args, or by
// SNIFFTERM_CONFIG.  Flags win.
func ConfigPath(args []string) string {
	for i, a := range args {
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
		if v, ok := strings.CutPrefix(a, "--config="); ok {
			return v
		}
	}
	return os.Getenv("SNIFFTERM_CONFIG")
}

// ── helpers ──────────────────────────────────────────────────────────

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}

// envDuration accepts a Go duration ("250ms") or a bare number of
// milliseconds.
func envDuration(key string) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return 0
}

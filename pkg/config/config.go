// Package config loads the optional client configuration file: socket
// path override, default MinSuffixComponents policy, PIT half-life,
// fetch window size, and sync heartbeat/stall budgets. It uses the
// gopkg.in/ini.v1 section/key access pattern of a CANopen EDS file loader,
// just against a much smaller, hand-written schema instead of a device
// description.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/ini.v1"

	"github.com/ProjectCCNx/ccnx-sub003/pkg/ccnlog"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/client"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/fetch"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/schema"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/sync"
)

// Config holds the resolved, ready-to-use settings a Handle, Stream, or
// Root is built with. Zero value is meaningless; use Default or Load.
type Config struct {
	// SocketPath, if non-empty, is passed to client.Open as the daemon
	// socket path. Always overridden by CCN_LOCAL_PORT when that env
	// var is set, regardless of what the file says.
	SocketPath string

	// MinSuffixComponents is the default applied to outgoing interests
	// that don't set one explicitly; see Template.
	MinSuffixComponents int

	// HalfLife is the pending-interest aging period (pkg/client.HalfLife
	// by default).
	HalfLife time.Duration

	// FetchWindow is a stream's prefetch ring size
	// (pkg/fetch.DefaultCapacity by default).
	FetchWindow int

	// FetchTimeout is a stream's per-segment interest budget
	// (pkg/fetch.DefaultTimeout by default).
	FetchTimeout time.Duration

	// SyncHeartbeat is how often an idle Root re-issues its root-advise
	// interest (pkg/sync.HeartbeatInterval by default).
	SyncHeartbeat time.Duration

	// SyncStallTimeout is how long a Root lets a comparison sit idle
	// before abandoning it (pkg/sync.StallTimeout by default).
	SyncStallTimeout time.Duration

	// Debug enables verbose per-message logging, equivalent to
	// client.WithDebug(true). Always overridden by CCN_DEBUG.
	Debug bool
}

// Default returns a Config carrying every package's compiled-in default,
// with no file and no env overrides applied.
func Default() *Config {
	return &Config{
		MinSuffixComponents: -1,
		HalfLife:            client.HalfLife,
		FetchWindow:         fetch.DefaultCapacity,
		FetchTimeout:        fetch.DefaultTimeout,
		SyncHeartbeat:       sync.HeartbeatInterval,
		SyncStallTimeout:    sync.StallTimeout,
	}
}

// Load builds a Config starting from Default, overlaying path's [client],
// [fetch], and [sync] sections if path is non-empty, then applying the
// CCN_LOCAL_PORT and CCN_DEBUG env vars, which always win over anything
// the file says (CCN_TAP is read by pkg/face alone). If path is empty, CCN_CONFIG is consulted; if
// that's empty too, Load behaves like Default plus env overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CCN_CONFIG")
	}
	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (cfg *Config) loadFile(path string) error {
	f, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}

	if s, err := f.GetSection("client"); err == nil {
		if k, err := s.GetKey("SocketPath"); err == nil {
			cfg.SocketPath = k.String()
		}
		if k, err := s.GetKey("MinSuffixComponents"); err == nil {
			v, err := k.Int()
			if err != nil {
				return fmt.Errorf("config: client.MinSuffixComponents: %w", err)
			}
			cfg.MinSuffixComponents = v
		}
		if k, err := s.GetKey("HalfLife"); err == nil {
			d, err := k.Duration()
			if err != nil {
				return fmt.Errorf("config: client.HalfLife: %w", err)
			}
			cfg.HalfLife = d
		}
	}

	if s, err := f.GetSection("fetch"); err == nil {
		if k, err := s.GetKey("Window"); err == nil {
			v, err := k.Int()
			if err != nil {
				return fmt.Errorf("config: fetch.Window: %w", err)
			}
			cfg.FetchWindow = v
		}
		if k, err := s.GetKey("Timeout"); err == nil {
			d, err := k.Duration()
			if err != nil {
				return fmt.Errorf("config: fetch.Timeout: %w", err)
			}
			cfg.FetchTimeout = d
		}
	}

	if s, err := f.GetSection("sync"); err == nil {
		if k, err := s.GetKey("Heartbeat"); err == nil {
			d, err := k.Duration()
			if err != nil {
				return fmt.Errorf("config: sync.Heartbeat: %w", err)
			}
			cfg.SyncHeartbeat = d
		}
		if k, err := s.GetKey("StallTimeout"); err == nil {
			d, err := k.Duration()
			if err != nil {
				return fmt.Errorf("config: sync.StallTimeout: %w", err)
			}
			cfg.SyncStallTimeout = d
		}
	}

	return nil
}

// applyEnv overlays CCN_LOCAL_PORT and CCN_DEBUG, which take precedence
// over any file value. CCN_LOCAL_PORT and CCN_TAP are read directly by
// pkg/face at Connect time regardless of this package, so this only
// clears a conflicting SocketPath and sets Debug; face itself resolves
// the actual socket path and tap file.
func (cfg *Config) applyEnv() {
	if os.Getenv("CCN_LOCAL_PORT") != "" {
		cfg.SocketPath = ""
	}
	if os.Getenv("CCN_DEBUG") != "" {
		cfg.Debug = true
	}
}

// Open connects a client.Handle using cfg's SocketPath and HalfLife.
func (cfg *Config) Open() (*client.Handle, error) {
	h, err := client.Open(cfg.SocketPath, client.WithHalfLife(cfg.HalfLife), client.WithDebug(cfg.Debug))
	if err != nil {
		return nil, err
	}
	ccnlog.Default().Debugf("config: handle opened with half-life %s", cfg.HalfLife)
	return h, nil
}

// Template returns an interest template carrying cfg.MinSuffixComponents,
// suitable for passing to ExpressInterest or fetch.WithTemplate when a
// caller has no more specific requirements.
func (cfg *Config) Template() *schema.Interest {
	return &schema.Interest{
		MinSuffixComponents: cfg.MinSuffixComponents,
		MaxSuffixComponents: -1,
		ChildSelector:       -1,
		AnswerOriginKind:    -1,
		Scope:               -1,
	}
}

// FetchOptions returns the pkg/fetch.Option set matching cfg's window and
// timeout, ready to pass to fetch.Open.
func (cfg *Config) FetchOptions() []fetch.Option {
	return []fetch.Option{
		fetch.WithCapacity(cfg.FetchWindow),
		fetch.WithTimeout(cfg.FetchTimeout),
	}
}

// SyncOptions returns the pkg/sync.Option set matching cfg's heartbeat and
// stall budgets, ready to pass to sync.NewRoot.
func (cfg *Config) SyncOptions() []sync.Option {
	return []sync.Option{
		sync.WithHeartbeatInterval(cfg.SyncHeartbeat),
		sync.WithStallTimeout(cfg.SyncStallTimeout),
	}
}

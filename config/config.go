// SPDX-FileCopyrightText: Copyright (C) 2026  MatiPl01
// SPDX-License-Identifier: AGPL-3.0-only

// Package config implements the configuration of the cipher tools.
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultSeed is the table seed used when none is configured.
	DefaultSeed = 42

	defaultLogLevel = "NOTICE"
	defaultWorkers  = 1
)

// Tables selects the cipher table set.
type Tables struct {
	// Seed is the integer all tables are derived from.  When omitted,
	// DefaultSeed is used; 0 is a valid seed.
	Seed *uint64

	// File, if set, is a CBOR table export to load instead of deriving
	// the tables from Seed.
	File string
}

func (t *Tables) fixup() {
	if t.Seed == nil {
		seed := uint64(DefaultSeed)
		t.Seed = &seed
	}
}

func (t *Tables) validate() error {
	if t.File == "" {
		return nil
	}
	if _, err := os.Stat(t.File); err != nil {
		return fmt.Errorf("config: Tables: File '%v' is unusable: %v", t.File, err)
	}
	return nil
}

// Engine is the block processing configuration.
type Engine struct {
	// Workers is the number of blocks of one message processed
	// concurrently.
	Workers int
}

func (e *Engine) fixup() {
	if e.Workers == 0 {
		e.Workers = defaultWorkers
	}
}

func (e *Engine) validate() error {
	if e.Workers < 1 {
		return fmt.Errorf("config: Engine: Workers %d must be positive", e.Workers)
	}
	return nil
}

// Logging is the logging configuration.
type Logging struct {
	// Disable disables logging entirely.
	Disable bool

	// File specifies the log file, if omitted stdout will be used.
	File string

	// Level specifies the log level.
	Level string
}

func (l *Logging) validate() error {
	lvl := strings.ToUpper(l.Level)
	switch lvl {
	case "ERROR", "WARNING", "NOTICE", "INFO", "DEBUG":
	case "":
		lvl = defaultLogLevel
	default:
		return fmt.Errorf("config: Logging: Level '%v' is invalid", l.Level)
	}
	l.Level = lvl
	return nil
}

// Metrics is the prometheus exporter configuration.
type Metrics struct {
	// Address is the address/port to serve /metrics on, empty disables
	// the listener.
	Address string
}

func (m *Metrics) validate() error {
	if m.Address == "" {
		return nil
	}
	if _, err := netip.ParseAddrPort(m.Address); err != nil {
		return fmt.Errorf("config: Metrics: Address '%v' is invalid: %v", m.Address, err)
	}
	return nil
}

// Config is the top level configuration.
type Config struct {
	Tables  *Tables
	Engine  *Engine
	Logging *Logging
	Metrics *Metrics
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := new(Config)
	if err := cfg.FixupAndValidate(); err != nil {
		panic("BUG: default config is invalid: " + err.Error())
	}
	return cfg
}

// FixupAndValidate applies defaults to config entries and validates the
// configuration sections.
func (c *Config) FixupAndValidate() error {
	// Handle missing sections if possible.
	if c.Tables == nil {
		c.Tables = &Tables{}
	}
	c.Tables.fixup()
	if c.Engine == nil {
		c.Engine = &Engine{}
	}
	c.Engine.fixup()
	if c.Logging == nil {
		c.Logging = &Logging{Level: defaultLogLevel}
	}
	if c.Metrics == nil {
		c.Metrics = &Metrics{}
	}

	if err := c.Tables.validate(); err != nil {
		return err
	}
	if err := c.Engine.validate(); err != nil {
		return err
	}
	if err := c.Logging.validate(); err != nil {
		return err
	}
	return c.Metrics.validate()
}

// Load parses and validates the provided buffer b as a config file body and
// returns the Config.
func Load(b []byte) (*Config, error) {
	if len(b) == 0 {
		return nil, errors.New("config: empty configuration")
	}
	cfg := new(Config)
	md, err := toml.Decode(string(b), cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		return nil, fmt.Errorf("config: Undecoded keys in config file: %v", undecoded)
	}
	if err := cfg.FixupAndValidate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads, parses, and validates the provided file and returns the
// Config.
func LoadFile(f string) (*Config, error) {
	b, err := os.ReadFile(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%v': %v", f, err)
	}
	return Load(b)
}

// SPDX-FileCopyrightText: Copyright (C) 2026  MatiPl01
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"gopkg.in/op/go-logging.v1"

	"github.com/MatiPl01/cryptography/common"
	"github.com/MatiPl01/cryptography/config"
	"github.com/MatiPl01/cryptography/core/log"
	"github.com/MatiPl01/cryptography/core/tables"
	"github.com/MatiPl01/cryptography/framing"
	"github.com/MatiPl01/cryptography/instrument"
)

// Options holds the flags shared by every subcommand.
type Options struct {
	ConfigFile string
	Seed       uint64
	TablesFile string
	Workers    int
	LogLevel   string
	Metrics    string
}

// env is the state one subcommand invocation runs with.
type env struct {
	cfg     *config.Config
	backend *log.Backend
	log     *logging.Logger
	tables  *tables.Tables
	codec   *framing.Codec
	metrics *http.Server
}

func (e *env) Close() {
	if e.metrics != nil {
		e.metrics.Close()
	}
	e.backend.Close()
}

// loadConfig reads the config file, if any, and applies the flags that
// were explicitly set on top of it.
func loadConfig(cmd *cobra.Command, opts *Options) (*config.Config, error) {
	cfg := config.Default()
	if opts.ConfigFile != "" {
		var err error
		if cfg, err = config.LoadFile(opts.ConfigFile); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		seed := opts.Seed
		cfg.Tables.Seed = &seed
		cfg.Tables.File = ""
	}
	if flags.Changed("tables") {
		cfg.Tables.File = opts.TablesFile
	}
	if flags.Changed("workers") {
		cfg.Engine.Workers = opts.Workers
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = opts.LogLevel
	}
	if flags.Changed("metrics") {
		cfg.Metrics.Address = opts.Metrics
	}
	if err := cfg.FixupAndValidate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setup(cmd *cobra.Command, opts *Options) (*env, error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, err
	}

	backend, err := log.New(cfg.Logging.File, cfg.Logging.Level, cfg.Logging.Disable)
	if err != nil {
		return nil, err
	}
	e := &env{
		cfg:     cfg,
		backend: backend,
		log:     backend.GetLogger("feistel"),
	}

	if cfg.Tables.File != "" {
		e.tables, err = tables.LoadFile(cfg.Tables.File)
		if err != nil {
			backend.Close()
			return nil, fmt.Errorf("failed to load tables '%v': %w", cfg.Tables.File, err)
		}
		e.log.Infof("Loaded tables from %s", cfg.Tables.File)
	} else {
		e.tables = tables.Generate(*cfg.Tables.Seed)
	}

	e.codec, err = framing.New(e.tables,
		framing.WithLogger(backend.GetLogger("framing")),
		framing.WithWorkers(cfg.Engine.Workers),
	)
	if err != nil {
		backend.Close()
		return nil, err
	}

	if cfg.Metrics.Address != "" {
		e.metrics = instrument.StartListener(cfg.Metrics.Address, backend.GetLogger("instrument"))
	}
	return e, nil
}

func newRootCommand() *cobra.Command {
	opts := new(Options)

	cmd := &cobra.Command{
		Use:   "feistel",
		Short: "Seeded-table Feistel block cipher",
		Long: `A 16 round Feistel block cipher whose S-boxes, expansion, permutation and
key selection tables are all derived from an integer seed.

This cipher is a teaching tool.  DO NOT DEPEND ON IT FOR CONFIDENTIALITY.`,
		Example: `  # Encrypt and decrypt the sample message
  feistel encrypt -k mojklucz "Message!"
  feistel decrypt -k mojklucz <hex ciphertext>

  # Export the tables for seed 7
  feistel tables --seed 7 --out tables.cbor`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigFile, "config", "c", "", "TOML configuration file")
	pf.Uint64Var(&opts.Seed, "seed", config.DefaultSeed, "table generation seed")
	pf.StringVar(&opts.TablesFile, "tables", "", "CBOR table file to use instead of the seed")
	pf.IntVar(&opts.Workers, "workers", 1, "blocks processed concurrently")
	pf.StringVar(&opts.LogLevel, "log-level", "NOTICE", "logging level (ERROR, WARNING, NOTICE, INFO, DEBUG)")
	pf.StringVar(&opts.Metrics, "metrics", "", "address to serve prometheus metrics on")

	cmd.AddCommand(
		newEncryptCommand(opts),
		newDecryptCommand(opts),
		newStreamCommand(opts),
		newTablesCommand(opts),
		newScheduleCommand(opts),
	)
	return cmd
}

func main() {
	common.ExecuteWithFang(newRootCommand())
}

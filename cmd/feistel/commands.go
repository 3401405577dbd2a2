// SPDX-FileCopyrightText: Copyright (C) 2026  MatiPl01
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/MatiPl01/cryptography/core/bits"
	"github.com/MatiPl01/cryptography/core/schedule"
	"github.com/MatiPl01/cryptography/core/tables"
	"github.com/MatiPl01/cryptography/framing"
)

const flagKey = "key"

var headerStyle = lipgloss.NewStyle().Bold(true)

// messageArg returns the single argument, or stdin without its final line
// ending.  A raw Latin-1 ciphertext may itself end in CR or LF, so in raw
// mode only the one LF added by the writer is cut off.
func messageArg(args []string, in io.Reader, raw bool) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	b, err := io.ReadAll(in)
	if err != nil {
		return "", err
	}
	s := strings.TrimSuffix(string(b), "\n")
	if !raw {
		s = strings.TrimSuffix(s, "\r")
	}
	return s, nil
}

func newEncryptCommand(opts *Options) *cobra.Command {
	var key string
	var text bool

	cmd := &cobra.Command{
		Use:   "encrypt [message]",
		Short: "Encrypt a message",
		Long: `Encrypt a Latin-1 message, read from the argument or stdin.  The
ciphertext is printed as hex unless --text is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := messageArg(args, cmd.InOrStdin(), false)
			if err != nil {
				return err
			}
			e, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			defer e.Close()

			if text {
				ct, err := e.codec.Encrypt(msg, key)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), ct)
				return err
			}
			b, err := framing.EncodeText(msg)
			if err != nil {
				return err
			}
			ct, err := e.codec.EncryptBytes(b, key)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(ct))
			return err
		},
	}
	cmd.Flags().StringVarP(&key, flagKey, "k", "", "encryption key")
	cmd.Flags().BoolVar(&text, "text", false, "print the ciphertext as raw Latin-1 text")
	cmd.MarkFlagRequired(flagKey)
	return cmd
}

func newDecryptCommand(opts *Options) *cobra.Command {
	var key string
	var text bool

	cmd := &cobra.Command{
		Use:   "decrypt [ciphertext]",
		Short: "Decrypt a ciphertext",
		Long: `Decrypt a hex ciphertext, read from the argument or stdin.  With --text
the ciphertext is taken as raw Latin-1 text instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := messageArg(args, cmd.InOrStdin(), text)
			if err != nil {
				return err
			}
			e, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			defer e.Close()

			if text {
				pt, err := e.codec.Decrypt(in, key)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), pt)
				return err
			}
			ct, err := hex.DecodeString(strings.TrimSpace(in))
			if err != nil {
				return fmt.Errorf("invalid argument: ciphertext is not hex: %v", err)
			}
			pt, err := e.codec.DecryptBytes(ct, key)
			if err != nil {
				return err
			}
			s, err := framing.DecodeText(pt)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), s)
			return err
		},
	}
	cmd.Flags().StringVarP(&key, flagKey, "k", "", "decryption key")
	cmd.Flags().BoolVar(&text, "text", false, "read the ciphertext as raw Latin-1 text")
	cmd.MarkFlagRequired(flagKey)
	return cmd
}

func newStreamCommand(opts *Options) *cobra.Command {
	var key string
	var decrypt bool

	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Encrypt or decrypt stdin line by line",
		Long: `Read stdin one line at a time and print one hex ciphertext (or, with
--decrypt, one plaintext) per line until EOF.  Failed lines are logged and
skipped.  This is the mode to combine with --metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			defer e.Close()

			out := cmd.OutOrStdout()
			scanner := bufio.NewScanner(cmd.InOrStdin())
			line := 0
			for scanner.Scan() {
				line++
				var result string
				if decrypt {
					result, err = decryptHex(e, scanner.Text(), key)
				} else {
					result, err = encryptHex(e, scanner.Text(), key)
				}
				if errors.Is(err, schedule.ErrInvalidKey) {
					return err
				}
				if err != nil {
					e.log.Warningf("line %d: %v", line, err)
					continue
				}
				if _, err := fmt.Fprintln(out, result); err != nil {
					return err
				}
			}
			return scanner.Err()
		},
	}
	cmd.Flags().StringVarP(&key, flagKey, "k", "", "cipher key")
	cmd.Flags().BoolVar(&decrypt, "decrypt", false, "decrypt hex lines instead of encrypting")
	cmd.MarkFlagRequired(flagKey)
	return cmd
}

func encryptHex(e *env, line, key string) (string, error) {
	b, err := framing.EncodeText(line)
	if err != nil {
		return "", err
	}
	ct, err := e.codec.EncryptBytes(b, key)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(ct), nil
}

func decryptHex(e *env, line, key string) (string, error) {
	ct, err := hex.DecodeString(strings.TrimSpace(line))
	if err != nil {
		return "", err
	}
	pt, err := e.codec.DecryptBytes(ct, key)
	if err != nil {
		return "", err
	}
	return framing.DecodeText(pt)
}

func newTablesCommand(opts *Options) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Print or export the cipher tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			defer e.Close()

			if out != "" {
				if err := e.tables.WriteFile(out); err != nil {
					return err
				}
				e.log.Noticef("Wrote tables %s to %s", e.tables.FingerprintString(), out)
				return nil
			}
			printTables(cmd.OutOrStdout(), e.tables)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the tables as CBOR to this file")
	return cmd
}

func printTables(w io.Writer, t *tables.Tables) {
	section := func(name string) {
		fmt.Fprintln(w, headerStyle.Render(name))
	}
	section("Fingerprint")
	fmt.Fprintln(w, t.FingerprintString())
	section("Seed")
	fmt.Fprintln(w, t.Seed)
	section("PC1")
	fmt.Fprintln(w, t.PC1)
	section("PC2")
	fmt.Fprintln(w, t.PC2)
	section("Shifts")
	fmt.Fprintln(w, t.Shifts)
	section("Expansion")
	fmt.Fprintln(w, t.Expansion)
	for i, box := range t.SBoxes {
		section(fmt.Sprintf("S%d", i+1))
		for _, row := range box {
			fmt.Fprintln(w, row)
		}
	}
	section("P")
	fmt.Fprintln(w, t.P)
	section("IP")
	fmt.Fprintln(w, t.IP)
	section("IP inverse")
	fmt.Fprintln(w, t.IPInverse)
}

func newScheduleCommand(opts *Options) *cobra.Command {
	var key string
	var reverse bool

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print the round keys derived from a key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			defer e.Close()

			s, err := schedule.FromString(key, e.tables)
			if err != nil {
				return err
			}
			keys := s.Keys()
			if reverse {
				keys = s.Reversed()
			}
			w := cmd.OutOrStdout()
			for i, k := range keys {
				fmt.Fprintf(w, "%2d %012x %s\n", i+1, k, bits.String(k, tables.RoundKeyBits))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&key, flagKey, "k", "", "cipher key")
	cmd.Flags().BoolVar(&reverse, "reverse", false, "print the decryption order")
	cmd.MarkFlagRequired(flagKey)
	return cmd
}

// SPDX-FileCopyrightText: Copyright (C) 2026  MatiPl01
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MatiPl01/cryptography/config"
	"github.com/MatiPl01/cryptography/core/tables"
	"github.com/MatiPl01/cryptography/framing"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(args, "--log-level", "ERROR"))
	err := cmd.Execute()
	return out.String(), err
}

func TestEncryptDecrypt(t *testing.T) {
	require := require.New(t)

	ct, err := run(t, "", "encrypt", "-k", "mojklucz", "Message!")
	require.NoError(err)
	ct = strings.TrimSpace(ct)
	require.Len(ct, 16)

	pt, err := run(t, "", "decrypt", "-k", "mojklucz", ct)
	require.NoError(err)
	require.Equal("Message!\n", pt)
}

func TestEncryptFromStdin(t *testing.T) {
	require := require.New(t)

	ct, err := run(t, "Hello, world\n", "encrypt", "-k", "ab", "--workers", "2")
	require.NoError(err)
	require.Len(strings.TrimSpace(ct), 32)

	pt, err := run(t, ct, "decrypt", "-k", "ab")
	require.NoError(err)
	require.Equal("Hello, world\n", pt)
}

func TestTextMode(t *testing.T) {
	require := require.New(t)

	hexCT, err := run(t, "", "encrypt", "-k", "mojklucz", "Message!")
	require.NoError(err)
	textCT, err := run(t, "", "encrypt", "--text", "-k", "mojklucz", "Message!")
	require.NoError(err)
	require.NotEqual(hexCT, textCT)
	require.Len([]rune(strings.TrimSuffix(textCT, "\n")), 8)
}

func TestMessageArg(t *testing.T) {
	require := require.New(t)

	s, err := messageArg([]string{"as is\n"}, nil, false)
	require.NoError(err)
	require.Equal("as is\n", s)

	for _, tc := range []struct {
		in   string
		raw  bool
		want string
	}{
		{"line\n", false, "line"},
		{"line\r\n", false, "line"},
		{"line\n\n", false, "line\n"},
		{"ct\r\n", true, "ct\r"},
		{"ct\n\n", true, "ct\n"},
		{"ct", true, "ct"},
	} {
		s, err := messageArg(nil, strings.NewReader(tc.in), tc.raw)
		require.NoError(err)
		require.Equal(tc.want, s, "%q raw %v", tc.in, tc.raw)
	}
}

func TestTextModeKeepsLineEndingCiphertext(t *testing.T) {
	require := require.New(t)

	c, err := framing.New(tables.Generate(config.DefaultSeed))
	require.NoError(err)
	for _, last := range []string{"\n", "\r"} {
		var msg, ct string
		for i := 0; i < 1<<16; i++ {
			msg = fmt.Sprintf("msg-%d", i)
			ct, err = c.Encrypt(msg, "mojklucz")
			require.NoError(err)
			if strings.HasSuffix(ct, last) {
				break
			}
		}
		require.True(strings.HasSuffix(ct, last), "no ciphertext ending in %q", last)

		pt, err := run(t, ct+"\n", "decrypt", "--text", "-k", "mojklucz")
		require.NoError(err)
		require.Equal(msg+"\n", pt)
	}
}

func TestSeedChangesOutput(t *testing.T) {
	a, err := run(t, "", "encrypt", "-k", "mojklucz", "Message!")
	require.NoError(t, err)
	b, err := run(t, "", "encrypt", "--seed", "7", "-k", "mojklucz", "Message!")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestTablesExport(t *testing.T) {
	require := require.New(t)

	f := filepath.Join(t.TempDir(), "tables.cbor")
	_, err := run(t, "", "tables", "--seed", "7", "--out", f)
	require.NoError(err)

	fromSeed, err := run(t, "", "encrypt", "--seed", "7", "-k", "key", "Message!")
	require.NoError(err)
	fromFile, err := run(t, "", "encrypt", "--tables", f, "-k", "key", "Message!")
	require.NoError(err)
	require.Equal(fromSeed, fromFile)

	listing, err := run(t, "", "tables")
	require.NoError(err)
	require.Contains(listing, "Fingerprint")
	require.Contains(listing, "S8")
}

func TestSchedule(t *testing.T) {
	out, err := run(t, "", "schedule", "-k", "mojklucz")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 16)
	for _, line := range lines {
		fields := strings.Fields(line)
		require.Len(t, fields, 3)
		require.Len(t, fields[1], 12)
		require.Len(t, fields[2], 48)
	}

	rev, err := run(t, "", "schedule", "--reverse", "-k", "mojklucz")
	require.NoError(t, err)
	revLines := strings.Split(strings.TrimSpace(rev), "\n")
	require.Equal(t, strings.Fields(lines[0])[1], strings.Fields(revLines[15])[1])
}

func TestStream(t *testing.T) {
	require := require.New(t)

	ct, err := run(t, "first line\nsecond\nzażółć\n", "stream", "-k", "mojklucz")
	require.NoError(err)
	lines := strings.Split(strings.TrimSpace(ct), "\n")
	require.Len(lines, 2)

	pt, err := run(t, ct+"not hex\n", "stream", "--decrypt", "-k", "mojklucz")
	require.NoError(err)
	require.Equal("first line\nsecond\n", pt)
}

func TestConfigFile(t *testing.T) {
	require := require.New(t)

	f := filepath.Join(t.TempDir(), "feistel.toml")
	require.NoError(os.WriteFile(f, []byte("[Tables]\nSeed = 7\n"), 0600))

	fromConfig, err := run(t, "", "encrypt", "-c", f, "-k", "key", "Message!")
	require.NoError(err)
	fromSeed, err := run(t, "", "encrypt", "--seed", "7", "-k", "key", "Message!")
	require.NoError(err)
	require.Equal(fromSeed, fromConfig)
}

func TestErrors(t *testing.T) {
	require := require.New(t)

	_, err := run(t, "", "encrypt", "Message!")
	require.ErrorContains(err, "required flag")

	_, err = run(t, "", "decrypt", "-k", "key", "zz")
	require.ErrorContains(err, "invalid argument")

	_, err = run(t, "", "encrypt", "-k", "key", "--workers", "-1", "Message!")
	require.ErrorContains(err, "config: Engine")

	_, err = run(t, "", "encrypt", "-k", "key", "")
	require.Error(err)
}

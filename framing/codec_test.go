// SPDX-FileCopyrightText: Copyright (C) 2026  MatiPl01
// SPDX-License-Identifier: AGPL-3.0-only

package framing

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/schwarmco/go-cartesian-product"
	"github.com/stretchr/testify/require"

	"github.com/MatiPl01/cryptography/core/log"
	"github.com/MatiPl01/cryptography/core/tables"
)

func newTestCodec(t *testing.T, seed uint64, opts ...Option) *Codec {
	c, err := New(tables.Generate(seed), opts...)
	require.NoError(t, err)
	return c
}

func TestMessageScenario(t *testing.T) {
	require := require.New(t)

	c := newTestCodec(t, 42)
	ct, err := c.Encrypt("Message!", "mojklucz")
	require.NoError(err)
	require.Len([]rune(ct), 8)
	require.NotEqual("Message!", ct)

	raw, err := c.EncryptBytes([]byte("Message!"), "mojklucz")
	require.NoError(err)
	require.Len(raw, 8)

	pt, err := c.Decrypt(ct, "mojklucz")
	require.NoError(err)
	require.Equal("Message!", pt)
}

func TestShortKeyIsCyclic(t *testing.T) {
	require := require.New(t)

	c := newTestCodec(t, 42)
	a, err := c.Encrypt("Message!", "ab")
	require.NoError(err)
	b, err := c.Encrypt("Message!", "abababab")
	require.NoError(err)
	require.Equal(a, b)

	long, err := c.Encrypt("Message!", "abababab-and-more")
	require.NoError(err)
	require.Equal(a, long)
}

func TestDecryptWithWrongKey(t *testing.T) {
	c := newTestCodec(t, 42)
	ct, err := c.Encrypt("Message!", "mojklucz")
	require.NoError(t, err)
	pt, err := c.Decrypt(ct, "twojklucz")
	require.NoError(t, err)
	require.NotEqual(t, "Message!", pt)
}

func TestSeedChangesCiphertext(t *testing.T) {
	a, err := newTestCodec(t, 42).Encrypt("Message!", "mojklucz")
	require.NoError(t, err)
	b, err := newTestCodec(t, 43).Encrypt("Message!", "mojklucz")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestErrors(t *testing.T) {
	require := require.New(t)

	c := newTestCodec(t, 42)

	_, err := c.Encrypt("Message!", "")
	require.ErrorIs(err, ErrInvalidKey)
	_, err = c.Decrypt("12345678", "")
	require.ErrorIs(err, ErrInvalidKey)

	_, err = c.Encrypt("", "mojklucz")
	require.ErrorIs(err, ErrInvalidMessage)
	_, err = c.Decrypt("", "mojklucz")
	require.ErrorIs(err, ErrInvalidMessage)
	_, err = c.Decrypt("short", "mojklucz")
	require.ErrorIs(err, ErrInvalidMessage)

	_, err = c.Encrypt("Wiadomość", "mojklucz")
	require.ErrorIs(err, ErrUnsupportedCharacter)
	_, err = c.Encrypt("Message!", "kluczł")
	require.ErrorIs(err, ErrUnsupportedCharacter)

	_, err = New(tables.Generate(42), WithWorkers(0))
	require.Error(err)

	broken := tables.Generate(42)
	broken.P = broken.P[:4]
	_, err = New(broken)
	require.ErrorIs(err, tables.ErrInvalidTables)
}

func TestLatin1RoundTrip(t *testing.T) {
	c := newTestCodec(t, 42)
	const msg = "Grüße, señor! ÿ"
	ct, err := c.Encrypt(msg, "clé")
	require.NoError(t, err)
	pt, err := c.Decrypt(ct, "clé")
	require.NoError(t, err)
	require.Equal(t, msg, pt)
}

func TestNULBytes(t *testing.T) {
	require := require.New(t)

	c := newTestCodec(t, 42)
	for _, msg := range []string{"Message\x00", "abc\x00", strings.Repeat("\x00", 8), "Message!\x00\x00"} {
		_, err := c.Encrypt(msg, "mojklucz")
		require.ErrorIs(err, ErrInvalidMessage, "%q", msg)
		_, err = c.EncryptBytes([]byte(msg), "mojklucz")
		require.ErrorIs(err, ErrInvalidMessage, "%q", msg)
	}

	for _, msg := range []string{"\x00\x00\x00x", "Mess\x00ge!", "Message!\x00\x00\x00\x00\x00\x00\x00z", "a\x00b"} {
		ct, err := c.Encrypt(msg, "mojklucz")
		require.NoError(err, "%q", msg)
		pt, err := c.Decrypt(ct, "mojklucz")
		require.NoError(err, "%q", msg)
		require.Equal(msg, pt)
	}
}

func TestFrameRoundTripKeepsLength(t *testing.T) {
	require := require.New(t)

	c := newTestCodec(t, 42)
	msg := []byte("ends in NUL\x00")
	ct, err := c.EncryptFrame(Encode(msg), "mojklucz")
	require.NoError(err)
	pt, err := c.DecryptFrame(ct, "mojklucz")
	require.NoError(err)
	require.Equal(msg, pt.Bytes())
}

func TestRoundTripProperties(t *testing.T) {
	backend, err := log.New("", "DEBUG", true)
	require.NoError(t, err)
	c := newTestCodec(t, 42, WithLogger(backend.GetLogger("framing_test")), WithWorkers(4))

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	nonEmpty := func(s string) bool { return s != "" }

	properties.Property("full blocks round trip", prop.ForAll(
		func(block string, n int, key string) bool {
			msg := strings.Repeat(block, n)
			ct, err := c.Encrypt(msg, key)
			if strings.HasSuffix(msg, "\x00") {
				return errors.Is(err, ErrInvalidMessage)
			}
			if err != nil || len([]rune(ct)) != 8*n {
				return false
			}
			pt, err := c.Decrypt(ct, key)
			return err == nil && pt == msg
		},
		gen.SliceOfN(8, gen.UInt8()).Map(latin1),
		gen.IntRange(1, 8),
		gen.AlphaString().SuchThat(nonEmpty),
	))

	properties.Property("arbitrary lengths round trip", prop.ForAll(
		func(msg string, key string) bool {
			ct, err := c.Encrypt(msg, key)
			if strings.HasSuffix(msg, "\x00") {
				return errors.Is(err, ErrInvalidMessage)
			}
			if err != nil || len([]rune(ct))%8 != 0 {
				return false
			}
			pt, err := c.Decrypt(ct, key)
			return err == nil && pt == msg
		},
		gen.SliceOf(gen.UInt8()).Map(latin1).SuchThat(nonEmpty),
		gen.AlphaString().SuchThat(nonEmpty),
	))

	properties.TestingRun(t)
}

// latin1 maps bytes onto Latin-1 text, NUL included.  Small values are
// skewed towards NUL so messages ending in one are common.
func latin1(b []uint8) string {
	var sb strings.Builder
	for _, c := range b {
		if c < 0x20 {
			c = 0
		}
		sb.WriteRune(rune(c))
	}
	return sb.String()
}

func TestRoundTripMatrix(t *testing.T) {
	seeds := []interface{}{uint64(0), uint64(42), uint64(9001)}
	keys := []interface{}{"k", "ab", "mojklucz", "a much longer key"}
	messages := []interface{}{"M", "Message!", "Message!Message!", "Lorem ipsum dolor sit amet"}

	codecs := make(map[uint64]*Codec)
	for product := range cartesian.Iter(seeds, keys, messages) {
		seed, key, msg := product[0].(uint64), product[1].(string), product[2].(string)
		c, ok := codecs[seed]
		if !ok {
			c = newTestCodec(t, seed)
			codecs[seed] = c
		}
		name := fmt.Sprintf("seed %d key %q message %q", seed, key, msg)

		ct, err := c.Encrypt(msg, key)
		require.NoError(t, err, name)
		require.Equal(t, (len(msg)+7)/8*8, len([]rune(ct)), name)
		pt, err := c.Decrypt(ct, key)
		require.NoError(t, err, name)
		require.Equal(t, msg, pt, name)
	}
}

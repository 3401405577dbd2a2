// SPDX-FileCopyrightText: Copyright (C) 2026  MatiPl01
// SPDX-License-Identifier: AGPL-3.0-only

// Package framing turns text into cipher blocks and back, and drives the
// Feistel network over every block of a message.
package framing

import (
	"errors"
	"fmt"

	"golang.org/x/text/encoding/charmap"
	"gopkg.in/op/go-logging.v1"

	"github.com/MatiPl01/cryptography/core/feistel"
	"github.com/MatiPl01/cryptography/core/log"
	"github.com/MatiPl01/cryptography/core/schedule"
	"github.com/MatiPl01/cryptography/core/tables"
	"github.com/MatiPl01/cryptography/instrument"
)

var (
	// ErrInvalidKey is returned when the key is empty.
	ErrInvalidKey = schedule.ErrInvalidKey

	// ErrUnsupportedCharacter is returned for text outside of Latin-1.
	ErrUnsupportedCharacter = schedule.ErrUnsupportedCharacter

	// ErrInvalidMessage is returned for an empty message, a message ending
	// in a NUL byte, or a ciphertext that is not made of whole blocks.
	ErrInvalidMessage = errors.New("framing: invalid message")
)

// Codec encrypts and decrypts messages with one immutable table set.  It
// is safe for concurrent use.
type Codec struct {
	t       *tables.Tables
	log     *logging.Logger
	workers int
}

// Option configures a Codec.
type Option func(*Codec)

// WithLogger sets the logger used by the Codec.
func WithLogger(l *logging.Logger) Option {
	return func(c *Codec) {
		c.log = l
	}
}

// WithWorkers sets how many blocks of one message may be processed
// concurrently.
func WithWorkers(n int) Option {
	return func(c *Codec) {
		c.workers = n
	}
}

// New returns a Codec over t after validating it.
func New(t *tables.Tables, opts ...Option) (*Codec, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	c := &Codec{
		t:       t,
		workers: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.workers < 1 {
		return nil, fmt.Errorf("framing: workers must be positive, got %d", c.workers)
	}
	if c.log == nil {
		backend, err := log.New("", "ERROR", true)
		if err != nil {
			return nil, err
		}
		c.log = backend.GetLogger("framing")
	}
	c.log.Noticef("Tables ready: seed %d fingerprint %s", t.Seed, t.FingerprintString())
	return c, nil
}

// EncryptFrame encrypts every block of f.  The result keeps TailBits, so
// DecryptFrame can restore the exact original length.
func (c *Codec) EncryptFrame(f Frame, key string) (Frame, error) {
	return c.run(f, key, instrument.Encrypt)
}

// DecryptFrame decrypts every block of f; Bytes of the result is the
// original message when f came from EncryptFrame.
func (c *Codec) DecryptFrame(f Frame, key string) (Frame, error) {
	return c.run(f, key, instrument.Decrypt)
}

func (c *Codec) run(f Frame, key, direction string) (Frame, error) {
	if len(f.Blocks) == 0 {
		instrument.Failure("invalid_message")
		return Frame{}, fmt.Errorf("%w: no blocks", ErrInvalidMessage)
	}
	s, err := schedule.FromString(key, c.t)
	if err != nil {
		if errors.Is(err, ErrUnsupportedCharacter) {
			instrument.Failure("unsupported_character")
		} else {
			instrument.Failure("invalid_key")
		}
		return Frame{}, err
	}
	ciph := feistel.NewCipherFromSchedule(c.t, s)
	crypt := ciph.EncryptUint64
	if direction == instrument.Decrypt {
		crypt = ciph.DecryptUint64
	}
	c.log.Debugf("%s: %d blocks, %d tail bits", direction, len(f.Blocks), f.TailBits)

	out := Transform(f, crypt, c.workers)
	instrument.BlocksProcessed(direction, len(f.Blocks))
	instrument.MessageProcessed(direction)
	return out, nil
}

// EncryptBytes encrypts msg and returns whole ciphertext blocks.  The
// ciphertext does not carry the message length, so a msg ending in a NUL
// byte is rejected: DecryptBytes could not tell it apart from padding.
// Use EncryptFrame for such messages.
func (c *Codec) EncryptBytes(msg []byte, key string) ([]byte, error) {
	if n := len(msg); n > 0 && msg[n-1] == 0 {
		instrument.Failure("invalid_message")
		return nil, fmt.Errorf("%w: message ends in a NUL byte", ErrInvalidMessage)
	}
	out, err := c.EncryptFrame(Encode(msg), key)
	if err != nil {
		return nil, err
	}
	return out.Padded(), nil
}

// DecryptBytes decrypts whole ciphertext blocks.  The zero padding added
// to the last block on encryption is cut off again.
func (c *Codec) DecryptBytes(ct []byte, key string) ([]byte, error) {
	f, err := DecodePadded(ct)
	if err != nil {
		instrument.Failure("invalid_message")
		return nil, err
	}
	out, err := c.DecryptFrame(f, key)
	if err != nil {
		return nil, err
	}
	return out.TrimZeroPadding().Bytes(), nil
}

// Encrypt encrypts a Latin-1 text message and returns the ciphertext as
// text, one character per byte.
func (c *Codec) Encrypt(message, key string) (string, error) {
	b, err := EncodeText(message)
	if err != nil {
		return "", err
	}
	ct, err := c.EncryptBytes(b, key)
	if err != nil {
		return "", err
	}
	return DecodeText(ct)
}

// Decrypt reverses Encrypt.
func (c *Codec) Decrypt(message, key string) (string, error) {
	b, err := EncodeText(message)
	if err != nil {
		return "", err
	}
	pt, err := c.DecryptBytes(b, key)
	if err != nil {
		return "", err
	}
	return DecodeText(pt)
}

// EncodeText maps Latin-1 text to one byte per character.
func EncodeText(s string) ([]byte, error) {
	b, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	if err != nil {
		instrument.Failure("unsupported_character")
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedCharacter, err)
	}
	return b, nil
}

// DecodeText maps bytes back to Latin-1 text.
func DecodeText(b []byte) (string, error) {
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(s), nil
}

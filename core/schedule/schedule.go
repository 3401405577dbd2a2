// SPDX-FileCopyrightText: Copyright (C) 2026  MatiPl01
// SPDX-License-Identifier: AGPL-3.0-only

// Package schedule derives the 16 round keys of the cipher from a 64-bit
// key and the PC1/PC2 tables.
package schedule

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MatiPl01/cryptography/core/bits"
	"github.com/MatiPl01/cryptography/core/tables"
)

// KeyChars is the number of characters a text key is stretched or cut to.
const KeyChars = 8

var (
	// ErrInvalidKey is returned for an empty key.
	ErrInvalidKey = errors.New("schedule: invalid key")

	// ErrUnsupportedCharacter is returned for characters that do not fit
	// in a single byte.
	ErrUnsupportedCharacter = errors.New("schedule: unsupported character")
)

// Extend repeats key until it is at least KeyChars characters long and
// truncates it to exactly KeyChars characters.
func Extend(key string) (string, error) {
	r := []rune(key)
	if len(r) == 0 {
		return "", ErrInvalidKey
	}
	n := (KeyChars + len(r) - 1) / len(r)
	return string([]rune(strings.Repeat(key, n))[:KeyChars]), nil
}

// DeriveKey maps a text key to the 64-bit schedule input: the cyclically
// extended 8 characters, 8 bits each, first character most significant.
func DeriveKey(key string) (uint64, error) {
	ext, err := Extend(key)
	if err != nil {
		return 0, err
	}
	var k uint64
	for i, c := range []rune(ext) {
		if c > 0xff {
			return 0, fmt.Errorf("%w: key character %d is %U", ErrUnsupportedCharacter, i, c)
		}
		k = k<<8 | uint64(c)
	}
	return k, nil
}

// Schedule is an immutable sequence of round keys, in encryption order.
type Schedule struct {
	keys [tables.Rounds]uint64
}

// New runs the key schedule over the 64-bit key.
//
// PC1 is a permutation of 1..56 applied to the 64-bit key, so it only ever
// selects from the first 56 key bits.  Every round rotates the halves left
// by the round shift (left half) and right (right half), keeping the
// rotation of the previous round, and keeps the first 48 bits of the PC2
// output as the round key.
func New(key uint64, t *tables.Tables) *Schedule {
	const half = tables.KeyBits / 2

	permuted := bits.Permute(key, tables.BlockBits, t.PC1)
	c, d := bits.Split(permuted, half)

	s := new(Schedule)
	for round, shift := range t.Shifts[:tables.Rounds] {
		c = bits.RotateLeft(c, half, shift)
		d = bits.RotateRight(d, half, shift)
		s.keys[round] = bits.Permute(bits.Join(c, d, half), tables.KeyBits, t.PC2[:tables.RoundKeyBits])
	}
	return s
}

// FromString derives the key and runs the key schedule in one step.
func FromString(key string, t *tables.Tables) (*Schedule, error) {
	k, err := DeriveKey(key)
	if err != nil {
		return nil, err
	}
	return New(k, t), nil
}

// Keys returns the round keys in encryption order.
func (s *Schedule) Keys() []uint64 {
	out := make([]uint64, len(s.keys))
	copy(out, s.keys[:])
	return out
}

// Reversed returns the round keys in decryption order.
func (s *Schedule) Reversed() []uint64 {
	return Reverse(s.keys[:])
}

// Reverse returns keys in the opposite order.
func Reverse(keys []uint64) []uint64 {
	out := make([]uint64, len(keys))
	for i, k := range keys {
		out[len(out)-1-i] = k
	}
	return out
}

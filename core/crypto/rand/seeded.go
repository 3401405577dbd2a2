// SPDX-FileCopyrightText: Copyright (C) 2026  MatiPl01
// SPDX-License-Identifier: AGPL-3.0-only

// Package rand provides the seeded pseudo-random generator the cipher
// tables are drawn from.
package rand

import (
	"encoding/binary"
	"math/rand"

	hpqcrand "github.com/katzenpost/hpqc/rand"
	"golang.org/x/crypto/blake2b"
)

const seedDomain = "feistel-table-seed-v1"

// SeedKey expands an integer seed into the 32 byte chacha20 key that drives
// the generator.
func SeedKey(seed uint64) [blake2b.Size256]byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], seed)
	return blake2b.Sum256(append([]byte(seedDomain), tmp[:]...))
}

// NewSeeded returns a math/rand.Rand whose output is a deterministic
// function of seed.  Every draw advances one shared keystream, so callers
// that need reproducible results must also reproduce their draw order.
//
// The returned Rand must never be re-seeded.
func NewSeeded(seed uint64) *rand.Rand {
	key := SeedKey(seed)
	r, err := hpqcrand.NewDeterministicRandReader(key[:])
	if err != nil {
		panic("rand: chacha20 keying failed, not expected: " + err.Error())
	}
	return rand.New(r)
}

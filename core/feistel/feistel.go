// SPDX-FileCopyrightText: Copyright (C) 2026  MatiPl01
// SPDX-License-Identifier: AGPL-3.0-only

// Package feistel implements the round function and the 16 round Feistel
// network of the cipher over 64-bit blocks.
package feistel

import (
	"github.com/MatiPl01/cryptography/core/bits"
	"github.com/MatiPl01/cryptography/core/tables"
)

// Block runs one 64-bit block through the network, one round per key.
//
// Each round replaces (L, R) with (R xor F(L, k), L).  The halves are
// swapped once more after the last round, so feeding the output back in
// with the keys reversed undoes the transform.
func Block(t *tables.Tables, block uint64, keys []uint64) uint64 {
	l, r := bits.Split(block, tables.HalfBits)
	for _, k := range keys {
		l, r = r^uint64(Round(t, uint32(l), k)), l
	}
	return bits.Join(r, l, tables.HalfBits)
}

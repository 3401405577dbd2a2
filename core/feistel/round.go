// SPDX-FileCopyrightText: Copyright (C) 2026  MatiPl01
// SPDX-License-Identifier: AGPL-3.0-only

package feistel

import (
	"github.com/MatiPl01/cryptography/core/bits"
	"github.com/MatiPl01/cryptography/core/tables"
)

const groupBits = 6

// Round is the round function F.  The 32-bit half is expanded to 48 bits,
// mixed with the round key, pushed through the S-boxes six bits at a time
// and finally permuted with P.
func Round(t *tables.Tables, half uint32, roundKey uint64) uint32 {
	x := bits.Permute(uint64(half), tables.HalfBits, t.Expansion) ^ roundKey

	var sub uint64
	for box := 0; box < tables.NumSBoxes; box++ {
		shift := uint(tables.RoundKeyBits - groupBits*(box+1))
		group := (x >> shift) & 0x3f

		// The outer bits pick the row, the middle four the column.
		row := int(group>>4&0x2 | group&0x1)
		col := int(group >> 1 & 0xf)
		sub = sub<<4 | uint64(t.Lookup(box, row, col))
	}
	return uint32(bits.Permute(sub, tables.HalfBits, t.P))
}

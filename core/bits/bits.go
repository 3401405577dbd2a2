// SPDX-FileCopyrightText: Copyright (C) 2026  MatiPl01
// SPDX-License-Identifier: AGPL-3.0-only

// Package bits implements the fixed-width bit vector helpers used by the
// cipher.  An n-bit value is held in the low n bits of a uint64 and its
// bits are numbered 1..n starting from the most significant one, which is
// the numbering every cipher table uses.
package bits

import "fmt"

// Bit returns bit i (1-indexed, MSB first) of the width-bit value v.
func Bit(v uint64, width, i int) uint64 {
	return (v >> uint(width-i)) & 1
}

// Permute builds a len(table)-bit value whose i-th bit is bit table[i] of
// the width-bit value src.
func Permute(src uint64, width int, table []int) uint64 {
	if len(table) > 64 {
		panic(fmt.Sprintf("bits: table of %d entries exceeds 64 bits", len(table)))
	}
	var out uint64
	for _, idx := range table {
		if idx < 1 || idx > width {
			panic(fmt.Sprintf("bits: index %d outside 1..%d", idx, width))
		}
		out = out<<1 | Bit(src, width, idx)
	}
	return out
}

// Mask returns a value with the low width bits set.
func Mask(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(width)) - 1
}

// RotateLeft rotates the width-bit value v left by n positions.
func RotateLeft(v uint64, width, n int) uint64 {
	n %= width
	if n == 0 {
		return v
	}
	return ((v << uint(n)) | (v >> uint(width-n))) & Mask(width)
}

// RotateRight rotates the width-bit value v right by n positions.
func RotateRight(v uint64, width, n int) uint64 {
	n %= width
	return RotateLeft(v, width, width-n)
}

// Split returns the upper and lower halves of the 2*half-bit value v.
func Split(v uint64, half int) (uint64, uint64) {
	return v >> uint(half), v & Mask(half)
}

// Join concatenates two half-bit values, hi first.
func Join(hi, lo uint64, half int) uint64 {
	return hi<<uint(half) | lo&Mask(half)
}

// String renders the width-bit value v as a string of '0' and '1'.
func String(v uint64, width int) string {
	return fmt.Sprintf("%0*b", width, v&Mask(width))
}

// SPDX-FileCopyrightText: Copyright (C) 2026  MatiPl01
// SPDX-License-Identifier: AGPL-3.0-only

package tables

import (
	"math/rand"

	seeded "github.com/MatiPl01/cryptography/core/crypto/rand"
)

// Permutation returns a pseudo-random permutation of 1..n.
func Permutation(r *rand.Rand, n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i + 1
	}
	r.Shuffle(n, func(i, j int) { p[i], p[j] = p[j], p[i] })
	return p
}

// Expansion returns a to-entry table over 1..from, built by repeatedly
// shuffling 1..from and concatenating the shuffled copies until at least
// to entries exist.
func Expansion(r *rand.Rand, from, to int) []int {
	src := make([]int, from)
	for i := range src {
		src[i] = i + 1
	}
	out := make([]int, 0, to+from)
	for len(out) < to {
		r.Shuffle(from, func(i, j int) { src[i], src[j] = src[j], src[i] })
		out = append(out, src...)
	}
	return out[:to]
}

// SBoxes returns count S-boxes whose rows are independent shuffles of
// 0..15.
func SBoxes(r *rand.Rand, count int) []SBox {
	boxes := make([]SBox, count)
	for b := range boxes {
		for row := range boxes[b] {
			for col := range boxes[b][row] {
				boxes[b][row][col] = uint8(col)
			}
			line := &boxes[b][row]
			r.Shuffle(SBoxCols, func(i, j int) { line[i], line[j] = line[j], line[i] })
		}
	}
	return boxes
}

// Generate derives every cipher table from seed.  The draw order is part
// of the output: PC1, PC2, expansion, S-boxes, P, IP, IP inverse.
func Generate(seed uint64) *Tables {
	r := seeded.NewSeeded(seed)

	t := &Tables{
		Seed:   seed,
		Shifts: append([]int(nil), RoundShifts[:]...),
	}
	t.PC1 = Permutation(r, KeyBits)
	t.PC2 = Permutation(r, KeyBits)
	t.Expansion = Expansion(r, HalfBits, RoundKeyBits)
	t.SBoxes = SBoxes(r, NumSBoxes)
	t.P = Permutation(r, HalfBits)
	t.IP = Permutation(r, BlockBits)
	t.IPInverse = Permutation(r, BlockBits)
	return t
}

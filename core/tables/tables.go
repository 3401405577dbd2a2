// SPDX-FileCopyrightText: Copyright (C) 2026  MatiPl01
// SPDX-License-Identifier: AGPL-3.0-only

// Package tables generates and validates the structural tables of the
// cipher: the permuted choice tables of the key schedule, the expansion
// table, the S-boxes and the bit permutations.  Every table is a pure
// function of an integer seed.
package tables

import (
	"errors"
	"fmt"
)

const (
	// BlockBits is the cipher block size in bits.
	BlockBits = 64

	// HalfBits is the size of a Feistel half block.
	HalfBits = 32

	// KeyBits is the size of the permuted key fed to the round shifts.
	KeyBits = 56

	// RoundKeyBits is the size of a round key and of an expanded half.
	RoundKeyBits = 48

	// Rounds is the number of Feistel rounds.
	Rounds = 16

	// NumSBoxes is the number of S-boxes, one per 6-bit group.
	NumSBoxes = 8

	// SBoxRows and SBoxCols give the shape of an S-box.
	SBoxRows = 4
	SBoxCols = 16
)

// RoundShifts is the per-round rotation amount of the key schedule halves.
var RoundShifts = [Rounds]int{2, 1, 1, 3, 1, 3, 2, 1, 2, 2, 1, 1, 1, 3, 1, 3}

// ErrInvalidTables is returned when a table set violates its invariants.
var ErrInvalidTables = errors.New("tables: invalid table set")

// SBox is a 4x16 substitution box of 4-bit values.
type SBox [SBoxRows][SBoxCols]uint8

// Tables is the immutable table set shared by every encryption and
// decryption performed with one seed.  Table entries are 1-indexed bit
// positions.
type Tables struct {
	Seed uint64 `cbor:"1,keyasint"`

	PC1       []int  `cbor:"2,keyasint"`
	PC2       []int  `cbor:"3,keyasint"`
	Shifts    []int  `cbor:"4,keyasint"`
	Expansion []int  `cbor:"5,keyasint"`
	SBoxes    []SBox `cbor:"6,keyasint"`
	P         []int  `cbor:"7,keyasint"`

	// IP and IPInverse are generated for parity with the table layout of
	// a DES-style cipher; the round pipeline never applies them.
	IP        []int `cbor:"8,keyasint"`
	IPInverse []int `cbor:"9,keyasint"`
}

// Lookup returns the 4-bit output of S-box box for the given row and column.
func (t *Tables) Lookup(box, row, col int) uint8 {
	return t.SBoxes[box][row][col]
}

// Validate checks every structural invariant of the table set.
func (t *Tables) Validate() error {
	if err := checkPermutation("PC1", t.PC1, KeyBits); err != nil {
		return err
	}
	if err := checkPermutation("PC2", t.PC2, KeyBits); err != nil {
		return err
	}
	if len(t.Shifts) != Rounds {
		return fmt.Errorf("%w: %d round shifts, expected %d", ErrInvalidTables, len(t.Shifts), Rounds)
	}
	for i, s := range t.Shifts {
		if s < 1 {
			return fmt.Errorf("%w: round %d shift %d is not positive", ErrInvalidTables, i+1, s)
		}
	}
	if len(t.Expansion) != RoundKeyBits {
		return fmt.Errorf("%w: expansion has %d entries, expected %d", ErrInvalidTables, len(t.Expansion), RoundKeyBits)
	}
	for i, idx := range t.Expansion {
		if idx < 1 || idx > HalfBits {
			return fmt.Errorf("%w: expansion[%d] = %d outside 1..%d", ErrInvalidTables, i, idx, HalfBits)
		}
	}
	if len(t.SBoxes) != NumSBoxes {
		return fmt.Errorf("%w: %d S-boxes, expected %d", ErrInvalidTables, len(t.SBoxes), NumSBoxes)
	}
	for b := range t.SBoxes {
		for row := range t.SBoxes[b] {
			var seen [SBoxCols]bool
			for _, v := range t.SBoxes[b][row] {
				if int(v) >= SBoxCols || seen[v] {
					return fmt.Errorf("%w: S-box %d row %d is not a permutation of 0..15", ErrInvalidTables, b, row)
				}
				seen[v] = true
			}
		}
	}
	if err := checkPermutation("P", t.P, HalfBits); err != nil {
		return err
	}
	if err := checkPermutation("IP", t.IP, BlockBits); err != nil {
		return err
	}
	return checkPermutation("IPInverse", t.IPInverse, BlockBits)
}

func checkPermutation(name string, p []int, n int) error {
	if len(p) != n {
		return fmt.Errorf("%w: %s has %d entries, expected %d", ErrInvalidTables, name, len(p), n)
	}
	seen := make([]bool, n+1)
	for i, idx := range p {
		if idx < 1 || idx > n || seen[idx] {
			return fmt.Errorf("%w: %s[%d] = %d breaks the permutation of 1..%d", ErrInvalidTables, name, i, idx, n)
		}
		seen[idx] = true
	}
	return nil
}

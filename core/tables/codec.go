// SPDX-FileCopyrightText: Copyright (C) 2026  MatiPl01
// SPDX-License-Identifier: AGPL-3.0-only

package tables

import (
	"encoding/hex"
	"os"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
)

var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
}

// Marshal serializes the table set as canonical CBOR.
func (t *Tables) Marshal() ([]byte, error) {
	return encMode.Marshal(t)
}

// Fingerprint is the BLAKE2b-256 digest of the canonical encoding.  Two
// table sets with the same fingerprint encrypt identically.
func (t *Tables) Fingerprint() [blake2b.Size256]byte {
	b, err := t.Marshal()
	if err != nil {
		panic("tables: canonical encoding failed: " + err.Error())
	}
	return blake2b.Sum256(b)
}

// FingerprintString returns the hex encoded fingerprint.
func (t *Tables) FingerprintString() string {
	fp := t.Fingerprint()
	return hex.EncodeToString(fp[:])
}

// Unmarshal decodes and validates a CBOR encoded table set.
func Unmarshal(b []byte) (*Tables, error) {
	t := new(Tables)
	if err := cbor.Unmarshal(b, t); err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// WriteFile writes the CBOR encoded table set to f.
func (t *Tables) WriteFile(f string) error {
	b, err := t.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(f, b, 0644)
}

// LoadFile reads and validates a table set written by WriteFile.
func LoadFile(f string) (*Tables, error) {
	b, err := os.ReadFile(f)
	if err != nil {
		return nil, err
	}
	return Unmarshal(b)
}

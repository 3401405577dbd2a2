// SPDX-FileCopyrightText: Copyright (C) 2026  MatiPl01
// SPDX-License-Identifier: AGPL-3.0-only

package feistel

import (
	"crypto/cipher"
	"encoding/binary"
	"strconv"

	"github.com/MatiPl01/cryptography/core/schedule"
	"github.com/MatiPl01/cryptography/core/tables"
)

// BlockSize is the cipher block size in bytes.
const BlockSize = tables.BlockBits / 8

// KeySizeError is returned by NewCipher for keys that are not 8 bytes.
type KeySizeError int

func (k KeySizeError) Error() string {
	return "feistel: invalid key size " + strconv.Itoa(int(k))
}

// Cipher is a crypto/cipher.Block over one table set and one key.  Blocks
// are read and written big endian.
type Cipher struct {
	t   *tables.Tables
	enc []uint64
	dec []uint64
}

var _ cipher.Block = (*Cipher)(nil)

// NewCipher returns a Cipher for the 8 byte key.
func NewCipher(t *tables.Tables, key []byte) (*Cipher, error) {
	if len(key) != BlockSize {
		return nil, KeySizeError(len(key))
	}
	return NewCipherFromSchedule(t, schedule.New(binary.BigEndian.Uint64(key), t)), nil
}

// NewCipherFromSchedule returns a Cipher using an already derived schedule.
func NewCipherFromSchedule(t *tables.Tables, s *schedule.Schedule) *Cipher {
	return &Cipher{
		t:   t,
		enc: s.Keys(),
		dec: s.Reversed(),
	}
}

// BlockSize returns the cipher's block size.
func (c *Cipher) BlockSize() int {
	return BlockSize
}

// Encrypt encrypts the first block in src into dst.
func (c *Cipher) Encrypt(dst, src []byte) {
	c.crypt(dst, src, c.enc)
}

// Decrypt decrypts the first block in src into dst.
func (c *Cipher) Decrypt(dst, src []byte) {
	c.crypt(dst, src, c.dec)
}

// EncryptUint64 encrypts one block held as an integer.
func (c *Cipher) EncryptUint64(block uint64) uint64 {
	return Block(c.t, block, c.enc)
}

// DecryptUint64 decrypts one block held as an integer.
func (c *Cipher) DecryptUint64(block uint64) uint64 {
	return Block(c.t, block, c.dec)
}

func (c *Cipher) crypt(dst, src []byte, keys []uint64) {
	if len(src) < BlockSize {
		panic("feistel: input not full block")
	}
	if len(dst) < BlockSize {
		panic("feistel: output not full block")
	}
	binary.BigEndian.PutUint64(dst, Block(c.t, binary.BigEndian.Uint64(src), keys))
}

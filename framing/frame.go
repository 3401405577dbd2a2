// SPDX-FileCopyrightText: Copyright (C) 2026  MatiPl01
// SPDX-License-Identifier: AGPL-3.0-only

package framing

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/MatiPl01/cryptography/core/tables"
)

const (
	blockBytes = tables.BlockBits / 8
	blockBits  = tables.BlockBits
)

// Frame is a message cut into 64-bit blocks.  The last block is zero
// padded on the right; TailBits is the number of its bits that carried
// message data before padding.
type Frame struct {
	Blocks   []uint64
	TailBits int
}

// Encode splits msg into blocks, 8 bits per byte, zero padding the last.
func Encode(msg []byte) Frame {
	n := (len(msg) + blockBytes - 1) / blockBytes
	f := Frame{Blocks: make([]uint64, n)}
	var buf [blockBytes]byte
	for i := range f.Blocks {
		chunk := msg[i*blockBytes:]
		if len(chunk) > blockBytes {
			chunk = chunk[:blockBytes]
		}
		buf = [blockBytes]byte{}
		copy(buf[:], chunk)
		f.Blocks[i] = binary.BigEndian.Uint64(buf[:])
		f.TailBits = len(chunk) * 8
	}
	return f
}

// DecodePadded frames a byte string made of whole blocks, such as a
// ciphertext.
func DecodePadded(b []byte) (Frame, error) {
	if len(b)%blockBytes != 0 {
		return Frame{}, fmt.Errorf("%w: %d bytes is not a whole number of blocks", ErrInvalidMessage, len(b))
	}
	return Encode(b), nil
}

// Len is the number of meaningful bytes in the frame.
func (f Frame) Len() int {
	if len(f.Blocks) == 0 {
		return 0
	}
	return (len(f.Blocks)-1)*blockBytes + f.TailBits/8
}

// Padded returns every block in full.
func (f Frame) Padded() []byte {
	out := make([]byte, len(f.Blocks)*blockBytes)
	for i, b := range f.Blocks {
		binary.BigEndian.PutUint64(out[i*blockBytes:], b)
	}
	return out
}

// Bytes returns the frame contents with the last block truncated to
// TailBits.
func (f Frame) Bytes() []byte {
	return f.Padded()[:f.Len()]
}

// TrimZeroPadding returns f with TailBits lowered past the trailing zero
// bytes of the last block.  At least one byte of the last block is kept.
// It restores the original length only for messages that do not end in a
// zero byte.
func (f Frame) TrimZeroPadding() Frame {
	if len(f.Blocks) == 0 {
		return f
	}
	last := f.Blocks[len(f.Blocks)-1]
	tail := f.TailBits
	for tail > 8 && (last>>uint(blockBits-tail))&0xff == 0 {
		tail -= 8
	}
	return Frame{Blocks: f.Blocks, TailBits: tail}
}

// Transform runs every block of f through crypt, usually the EncryptUint64
// or DecryptUint64 method of a feistel.Cipher.  Blocks do not depend on
// each other, so up to workers blocks are processed concurrently; the
// output keeps the input order and TailBits.
func Transform(f Frame, crypt func(uint64) uint64, workers int) Frame {
	out := Frame{
		Blocks:   make([]uint64, len(f.Blocks)),
		TailBits: f.TailBits,
	}
	if workers <= 1 || len(f.Blocks) < 2 {
		for i, b := range f.Blocks {
			out.Blocks[i] = crypt(b)
		}
		return out
	}

	var g errgroup.Group
	g.SetLimit(workers)
	stride := (len(f.Blocks) + workers - 1) / workers
	for lo := 0; lo < len(f.Blocks); lo += stride {
		hi := min(lo+stride, len(f.Blocks))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				out.Blocks[i] = crypt(f.Blocks[i])
			}
			return nil
		})
	}
	g.Wait()
	return out
}

package lzss

import (
	"bytes"
	"testing"
)

func TestDecompressLiteralsOnly(t *testing.T) {
	// target_len = 8, cmd byte 0x00 (all literals), 8 literal bytes.
	input := []byte{
		0x08, 0x00, 0x00, 0x00, // target length = 8
		0x00,                   // control byte: all 8 bits are literals
		1, 2, 3, 4, 5, 6, 7, 8, // literals
	}
	out, err := Decompress(input)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	want := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	if !bytes.Equal(out, want) {
		t.Errorf("got %v, want %v", out, want)
	}
	if len(out) != 8 {
		t.Errorf("expected exactly 8 bytes, got %d", len(out))
	}
}

func TestDecompressBackReference(t *testing.T) {
	// 4 literals "abcd", then a back-reference copying the whole 4 bytes
	// (pos=3 -> start = 4-3-1 = 0, count=4) to reach target length 8.
	// Control byte bits (LSB first): 0,0,0,0,1 -> literal,literal,literal,literal,backref.
	input := []byte{
		0x08, 0x00, 0x00, 0x00,
		0b00010000,
		'a', 'b', 'c', 'd',
		0x00, 0x33, // pos=3, count=4
	}

	out, err := Decompress(input)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	want := []byte("abcdabcd")
	if !bytes.Equal(out, want) {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestDecompressCountOneInvalid(t *testing.T) {
	input := []byte{
		0x08, 0x00, 0x00, 0x00,
		0b00000001, // first bit is a back-reference
		0x00, 0x00, // pos=0, count=(0&0xf)+1=1 -> invalid
	}
	if _, err := Decompress(input); err != ErrDecompressionFailed {
		t.Errorf("expected ErrDecompressionFailed, got %v", err)
	}
}

func TestDecompressTruncatedInput(t *testing.T) {
	input := []byte{0x08, 0x00, 0x00, 0x00, 0x00, 'a'}
	if _, err := Decompress(input); err != ErrDecompressionFailed {
		t.Errorf("expected ErrDecompressionFailed, got %v", err)
	}
}

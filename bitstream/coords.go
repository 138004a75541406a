// This file contains the Source-engine specific primitive decoders built on
// top of the raw bit reader/writer: world coordinates, normalized direction
// components, and bit-quantized bounded floats, per spec.md §4.A/§4.H.

package bitstream

const (
	coordIntegerBits   = 14
	coordFractionBits  = 5
	coordDenominator   = 1 << coordFractionBits
	coordResolution    = 1.0 / coordDenominator
	normalFractionBits = 11
	normalDenominator  = (1 << normalFractionBits) - 1
)

// ReadBitCoord reads a Source-engine "coord" value: a present flag for the
// integer part, a present flag for the fractional part, an optional sign
// bit, then the integer (14 bits) and/or fractional (5 bits) magnitudes.
func (r *Reader) ReadBitCoord() (float32, error) {
	hasInt, err := r.ReadBool()
	if err != nil {
		return 0, err
	}
	hasFrac, err := r.ReadBool()
	if err != nil {
		return 0, err
	}
	if !hasInt && !hasFrac {
		return 0, nil
	}

	negative, err := r.ReadBool()
	if err != nil {
		return 0, err
	}

	var intVal uint64
	if hasInt {
		// Stored as value-1 so the all-zero pattern is never emitted for a
		// present integer part.
		intVal, err = r.ReadUint(coordIntegerBits)
		if err != nil {
			return 0, err
		}
		intVal++
	}

	var fracVal uint64
	if hasFrac {
		fracVal, err = r.ReadUint(coordFractionBits)
		if err != nil {
			return 0, err
		}
	}

	value := float32(intVal) + float32(fracVal)*coordResolution
	if negative {
		value = -value
	}
	return value, nil
}

// ReadBitCoordMP reads the more compact "multiplayer" coord encoding used by
// newer Source engine branches: a single flag selecting between an
// integral-only encoding and the full ReadBitCoord encoding.
func (r *Reader) ReadBitCoordMP() (float32, error) {
	inBounds, err := r.ReadBool()
	if err != nil {
		return 0, err
	}
	if inBounds {
		intPlusSign, err := r.ReadUint(1 + coordIntegerBits)
		if err != nil {
			return 0, err
		}
		negative := intPlusSign&1 != 0
		value := float32(intPlusSign >> 1)
		if negative {
			value = -value
		}
		return value, nil
	}
	return r.ReadBitCoord()
}

// ReadBitNormal reads a normalized (-1..1) component: a sign bit followed by
// an 11-bit fraction of the unit range.
func (r *Reader) ReadBitNormal() (float32, error) {
	negative, err := r.ReadBool()
	if err != nil {
		return 0, err
	}
	frac, err := r.ReadUint(normalFractionBits)
	if err != nil {
		return 0, err
	}
	value := float32(frac) / float32(normalDenominator)
	if negative {
		value = -value
	}
	return value, nil
}

// ReadBitCellCoord reads an unsigned, fixed-width integer-and-fraction
// coordinate relative to a grid cell (used by some world-space properties):
// an integerBits-wide integer part followed by a fractionBits-wide
// fractional part, no sign.
func (r *Reader) ReadBitCellCoord(integerBits, fractionBits uint) (float32, error) {
	intVal, err := r.ReadUint(integerBits)
	if err != nil {
		return 0, err
	}
	fracVal, err := r.ReadUint(fractionBits)
	if err != nil {
		return 0, err
	}
	denom := float32(int64(1) << fractionBits)
	return float32(intVal) + float32(fracVal)/denom, nil
}

// ReadBitFloat reads a quantized float bound to [low, high] using bitCount
// bits of precision, per the SendProp Float encoding of spec.md §4.H.
func (r *Reader) ReadBitFloat(bitCount uint, low, high float32) (float32, error) {
	raw, err := r.ReadUint(bitCount)
	if err != nil {
		return 0, err
	}
	maxVal := float32((uint64(1) << bitCount) - 1)
	frac := float32(raw) / maxVal
	return low + (high-low)*frac, nil
}

// WriteBitCoord mirrors ReadBitCoord.
func (w *Writer) WriteBitCoord(v float32) {
	negative := v < 0
	if negative {
		v = -v
	}
	intPart := uint64(v)
	fracPart := uint64((v - float32(intPart)) * coordDenominator)

	hasInt := intPart > 0
	hasFrac := fracPart > 0 || !hasInt
	w.WriteBool(hasInt)
	w.WriteBool(hasFrac)
	if !hasInt && !hasFrac {
		return
	}
	w.WriteBool(negative)
	if hasInt {
		w.WriteUint(intPart-1, coordIntegerBits)
	}
	if hasFrac {
		w.WriteUint(fracPart, coordFractionBits)
	}
}

// WriteBitNormal mirrors ReadBitNormal.
func (w *Writer) WriteBitNormal(v float32) {
	negative := v < 0
	if negative {
		v = -v
	}
	w.WriteBool(negative)
	w.WriteUint(uint64(v*float32(normalDenominator)+0.5), normalFractionBits)
}

// WriteBitFloat mirrors ReadBitFloat.
func (w *Writer) WriteBitFloat(v float32, bitCount uint, low, high float32) {
	maxVal := float32((uint64(1) << bitCount) - 1)
	frac := (v - low) / (high - low)
	w.WriteUint(uint64(frac*maxVal+0.5), bitCount)
}

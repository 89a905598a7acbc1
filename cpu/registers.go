package cpu

import (
	stdbits "math/bits"

	"github.com/christopherjmedlin/hackman/bits"
)

// Flag bit positions within F, per the documented Z80 layout
// S Z _ H _ P/V N C.
const (
	FlagC  = 1 << 0 // carry
	FlagN  = 1 << 1 // subtract
	FlagPV = 1 << 2 // parity / overflow
	FlagH  = 1 << 4 // half carry
	FlagZ  = 1 << 6 // zero
	FlagS  = 1 << 7 // sign
)

// patchMode tracks which index register, if any, currently aliases
// H/L. At most one is ever active, satisfying invariant I1; modeled
// as a single enum rather than two independent booleans per the
// re-architecture spec.md §9 suggests.
type patchMode int

const (
	patchNone patchMode = iota
	patchIX
	patchIY
)

// Registers holds one bank of the Z80 register file: the eight 8-bit
// registers, the split halves of IX/IY, SP/I/R/PC, and the currently
// active index-register patch. The shadow bank is a second Registers
// value held by the CPU.
//
// Ported from _examples/original_source/src/cpu/reg.rs, which is the
// authoritative source for the index semantics spec.md §4.1
// summarizes but does not spell out byte-for-byte.
type Registers struct {
	B, C, D, E, H, L, F, A byte

	IXH, IXL byte
	IYH, IYL byte

	SP, PC uint16
	I, R   byte

	patch patchMode
}

// read8 indexes the 8-bit registers as (B, C, D, E, H, L, F, A).
// Index 4 and 5 honor the active IX/IY patch. Index 6 returns F; the
// interpreter, not this component, is responsible for redirecting
// r[6] through memory for the "(HL)" slot.
func (r *Registers) read8(i byte) byte {
	switch i {
	case 0:
		return r.B
	case 1:
		return r.C
	case 2:
		return r.D
	case 3:
		return r.E
	case 4:
		switch r.patch {
		case patchIX:
			return r.IXH
		case patchIY:
			return r.IYH
		default:
			return r.H
		}
	case 5:
		switch r.patch {
		case patchIX:
			return r.IXL
		case patchIY:
			return r.IYL
		default:
			return r.L
		}
	case 6:
		return r.F
	default: // 7
		return r.A
	}
}

func (r *Registers) write8(i byte, v byte) {
	switch i {
	case 0:
		r.B = v
	case 1:
		r.C = v
	case 2:
		r.D = v
	case 3:
		r.E = v
	case 4:
		switch r.patch {
		case patchIX:
			r.IXH = v
		case patchIY:
			r.IYH = v
		default:
			r.H = v
		}
	case 5:
		switch r.patch {
		case patchIX:
			r.IXL = v
		case patchIY:
			r.IYL = v
		default:
			r.L = v
		}
	case 6:
		r.F = v
	default: // 7
		r.A = v
	}
}

// read16 indexes the 16-bit composites as (BC, DE, HL, SP-or-AF).
// When spTable is true the fourth slot is SP (used by the rp table);
// when false it is AF (used by the rp2 table, for PUSH/POP).
func (r *Registers) read16(i byte, spTable bool) uint16 {
	switch i {
	case 0:
		return r.bc()
	case 1:
		return r.de()
	case 2:
		return r.hl()
	default: // 3
		if spTable {
			return r.SP
		}
		return r.af()
	}
}

func (r *Registers) write16(i byte, spTable bool, v uint16) {
	switch i {
	case 0:
		r.writeBC(v)
	case 1:
		r.writeDE(v)
	case 2:
		r.writeHL(v)
	default: // 3
		if spTable {
			r.SP = v
		} else {
			r.writeAF(v)
		}
	}
}

func (r *Registers) af() uint16 { return uint16(r.A)<<8 | uint16(r.F) }
func (r *Registers) bc() uint16 { return uint16(r.B)<<8 | uint16(r.C) }
func (r *Registers) de() uint16 { return uint16(r.D)<<8 | uint16(r.E) }

// hl respects the active IX/IY patch.
func (r *Registers) hl() uint16 {
	switch r.patch {
	case patchIX:
		return uint16(r.IXH)<<8 | uint16(r.IXL)
	case patchIY:
		return uint16(r.IYH)<<8 | uint16(r.IYL)
	default:
		return uint16(r.H)<<8 | uint16(r.L)
	}
}

func (r *Registers) writeAF(v uint16) { r.A = byte(v >> 8); r.F = byte(v) }
func (r *Registers) writeBC(v uint16) { r.B = byte(v >> 8); r.C = byte(v) }
func (r *Registers) writeDE(v uint16) { r.D = byte(v >> 8); r.E = byte(v) }

func (r *Registers) writeHL(v uint16) {
	switch r.patch {
	case patchIX:
		r.IXH, r.IXL = byte(v>>8), byte(v)
	case patchIY:
		r.IYH, r.IYL = byte(v>>8), byte(v)
	default:
		r.H, r.L = byte(v>>8), byte(v)
	}
}

func (r *Registers) ix() uint16     { return uint16(r.IXH)<<8 | uint16(r.IXL) }
func (r *Registers) iy() uint16     { return uint16(r.IYH)<<8 | uint16(r.IYL) }
func (r *Registers) writeIX(v uint16) { r.IXH, r.IXL = byte(v>>8), byte(v) }
func (r *Registers) writeIY(v uint16) { r.IYH, r.IYL = byte(v>>8), byte(v) }

// flag and setFlag take a single-bit mask (one of the Flag* constants)
// and address it through the bits package by converting to the
// package's 1-indexed MSB-first bit position.
func (r *Registers) flag(mask byte) bool {
	return bits.IsSet(r.F, bits.BitLSB0(byte(stdbits.TrailingZeros8(mask))))
}

func (r *Registers) setFlag(mask byte, on bool) {
	pos := bits.BitLSB0(byte(stdbits.TrailingZeros8(mask)))
	if on {
		r.F = bits.Set(r.F, pos, 1)
	} else {
		r.F = bits.Unset(r.F, pos, pos)
	}
}

// cond evaluates condition code c (0..7) against the current flags:
// NZ, Z, NC, C, PO, PE, P, M. Mirrors reg.rs's cc().
func (r *Registers) cond(c byte) bool {
	switch c {
	case 0:
		return !r.flag(FlagZ)
	case 1:
		return r.flag(FlagZ)
	case 2:
		return !r.flag(FlagC)
	case 3:
		return r.flag(FlagC)
	case 4:
		return !r.flag(FlagPV)
	case 5:
		return r.flag(FlagPV)
	case 6:
		return !r.flag(FlagS)
	default: // 7
		return r.flag(FlagS)
	}
}

func (r *Registers) patchIXOn(on bool) {
	if on {
		r.patch = patchIX
	} else if r.patch == patchIX {
		r.patch = patchNone
	}
}

func (r *Registers) patchIYOn(on bool) {
	if on {
		r.patch = patchIY
	} else if r.patch == patchIY {
		r.patch = patchNone
	}
}

func (r *Registers) exAF(shadow *Registers) {
	r.A, shadow.A = shadow.A, r.A
	r.F, shadow.F = shadow.F, r.F
}

func (r *Registers) exx(shadow *Registers) {
	r.B, shadow.B = shadow.B, r.B
	r.C, shadow.C = shadow.C, r.C
	r.D, shadow.D = shadow.D, r.D
	r.E, shadow.E = shadow.E, r.E
	r.H, shadow.H = shadow.H, r.H
	r.L, shadow.L = shadow.L, r.L
}

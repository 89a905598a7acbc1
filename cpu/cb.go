package cpu

import "github.com/christopherjmedlin/hackman/bits"

// CB-prefix dispatch: rotates/shifts, BIT, RES, SET over r[z], per
// spec.md §4.4's CB table. Grounded on
// _examples/original_source/src/cpu/mod.rs's run_cb_opcode, generalized
// to also serve the CB-under-DD/FD form (execCBIndexed), where the
// effective address is (IX+d)/(IY+d) with d already fetched by the
// caller rather than the plain HL slot.
//
// Under a DD/FD prefix, a CB opcode with z != 6 still nominally names
// a register, but the Z80 quirk-table behavior is to perform the
// operation against (IX+d)/(IY+d) and ALSO store the result back into
// that same named register. This holds for rotates, RES and SET; BIT
// never writes anything back.
//
// RES/SET's bit position is converted from the CB table's 0-indexed
// LSB bit number to the bits package's 1-indexed MSB-first convention
// via bits.BitLSB0, then applied with bits.Unset/bits.Set.

func (c *CPU) execCB(op byte, mem Memory) int {
	x := op >> 6
	y := (op >> 3) & 7
	z := op & 7

	v := c.r(z, mem)
	pos := bits.BitLSB0(y)

	switch x {
	case 0: // rot[y] r[z]
		result := c.reg.rot(y, v)
		c.writeR(z, result, mem)
	case 1: // BIT y, r[z]
		c.reg.bit(y, v)
		if z == 6 {
			return 12
		}
		return 8
	case 2: // RES y, r[z]
		c.writeR(z, bits.Unset(v, pos, pos), mem)
	default: // 3: SET y, r[z]
		c.writeR(z, bits.Set(v, pos, 1), mem)
	}

	if z == 6 {
		return 15
	}
	return 8
}

// execCBIndexed executes a CB opcode that followed a displacement
// byte under a DD/FD prefix. addr is always (IX+d)/(IY+d) regardless
// of the opcode's own z field; for non-BIT operations the result is
// also written back to the register named by z, unless z==6 (in which
// case the memory write at addr is the only write).
func (c *CPU) execCBIndexed(op byte, d int8, mem Memory) int {
	var addr uint16
	switch c.reg.patch {
	case patchIX:
		addr = uint16(int32(c.reg.ix()) + int32(d))
	case patchIY:
		addr = uint16(int32(c.reg.iy()) + int32(d))
	default:
		addr = c.reg.hl()
	}

	x := op >> 6
	y := (op >> 3) & 7
	z := op & 7
	pos := bits.BitLSB0(y)

	v := mem.ReadByte(addr)

	switch x {
	case 0: // rot[y] (addr), also into r[z] unless z==6
		result := c.reg.rot(y, v)
		mem.WriteByte(result, addr)
		if z != 6 {
			c.reg.write8(z, result)
		}
		return 23
	case 1: // BIT y, (addr)
		c.reg.bit(y, v)
		return 20
	case 2: // RES y, (addr), also into r[z] unless z==6
		result := bits.Unset(v, pos, pos)
		mem.WriteByte(result, addr)
		if z != 6 {
			c.reg.write8(z, result)
		}
		return 23
	default: // 3: SET y, (addr), also into r[z] unless z==6
		result := bits.Set(v, pos, 1)
		mem.WriteByte(result, addr)
		if z != 6 {
			c.reg.write8(z, result)
		}
		return 23
	}
}

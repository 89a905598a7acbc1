package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/christopherjmedlin/hackman/iobus"
)

// flatMemory is a plain writable 64kB Memory. Unlike membus.Bus it has
// no read-only ROM region, so the scenarios below can place data and
// stack bytes at any address.
type flatMemory [64 * 1024]byte

func (m *flatMemory) ReadByte(addr uint16) byte     { return m[addr] }
func (m *flatMemory) WriteByte(b byte, addr uint16) { m[addr] = b }

// LoadROM copies program into memory starting at origin.
func (m *flatMemory) LoadROM(program []byte, origin uint16) { copy(m[origin:], program) }

func newHarness() (*CPU, *flatMemory, *iobus.Bus) {
	return New(), &flatMemory{}, iobus.New()
}

func TestResetState(t *testing.T) {
	c := New()
	assert.Equal(t, uint16(0x4FEF), c.reg.SP, "initial SP")
	assert.Equal(t, uint16(0), c.PC(), "initial PC")
	assert.True(t, c.InterruptsEnabled(), "interrupts enabled on reset")
	assert.False(t, c.Halted(), "not halted on reset")
}

func TestLoadImmediate16(t *testing.T) {
	c, mem, io := newHarness()
	mem.LoadROM([]byte{0x01, 0x34, 0x12}, 0) // LD BC, 0x1234

	cycles := c.Step(mem, io)

	reg := c.Registers()
	assert.Equal(t, uint16(0x1234), reg.bc(), "BC after LD BC,nn")
	assert.Equal(t, uint16(3), c.PC())
	assert.Equal(t, 10, cycles)
}

func TestLoadAIndirectBC(t *testing.T) {
	c, mem, io := newHarness()
	mem.LoadROM([]byte{0x0A}, 0) // LD A, (BC)
	mem.WriteByte(0x11, 0x12)
	c.reg.writeBC(0x12)

	cycles := c.Step(mem, io)

	assert.Equal(t, byte(0x11), c.Registers().A)
	assert.Equal(t, uint16(1), c.PC())
	assert.Equal(t, 7, cycles)
}

func TestAddAB(t *testing.T) {
	c, mem, io := newHarness()
	mem.LoadROM([]byte{0x80}, 0) // ADD A, B
	c.reg.A = 5
	c.reg.B = 6

	cycles := c.Step(mem, io)

	reg := c.Registers()
	assert.Equal(t, byte(11), reg.A)
	assert.False(t, reg.flag(FlagC))
	assert.False(t, reg.flag(FlagH))
	assert.False(t, reg.flag(FlagZ))
	assert.False(t, reg.flag(FlagS))
	assert.False(t, reg.flag(FlagPV))
	assert.False(t, reg.flag(FlagN))
	assert.Equal(t, uint16(1), c.PC())
	assert.Equal(t, 4, cycles)
}

func TestPushPopRoundTrip(t *testing.T) {
	c, mem, io := newHarness()
	mem.LoadROM([]byte{0xC5, 0xD1}, 0) // PUSH BC; POP DE
	c.reg.writeBC(0x1234)
	c.reg.SP = 50

	c.Step(mem, io)
	c.Step(mem, io)

	reg := c.Registers()
	assert.Equal(t, uint16(0x1234), reg.de())
	assert.Equal(t, uint16(50), c.Registers().SP)
}

func TestInterruptMode2(t *testing.T) {
	c, mem, io := newHarness()
	mem.LoadROM([]byte{0x00}, 0) // NOP at PC=0, must never execute
	mem.WriteByte(0x09, 0x0302)
	mem.WriteByte(0x00, 0x0303)
	c.reg.I = 3
	c.interruptMode = 2

	c.Interrupt(2)
	c.Step(mem, io)

	assert.Equal(t, uint16(0x0009), c.PC())
	assert.Equal(t, uint16(0), ReadWord(mem, c.Registers().SP))
	assert.False(t, c.InterruptsEnabled(), "IFF disabled after acceptance, until EI")
}

func TestEIReenablesInterruptsAfterAcceptance(t *testing.T) {
	c, mem, io := newHarness()
	mem.WriteByte(0xFB, 0x0038) // EI, placed at the IM1 vector
	c.interruptMode = 1

	c.Interrupt(0)
	c.Step(mem, io) // accepts the interrupt, jumps to 0x0038, disables IFF
	assert.False(t, c.InterruptsEnabled())

	c.Step(mem, io) // executes EI at 0x0038
	assert.True(t, c.InterruptsEnabled())
}

func TestDDPrefixLoadAndAdd(t *testing.T) {
	c, mem, io := newHarness()
	mem.LoadROM([]byte{
		0xDD, 0x21, 0x13, 0x37, // LD IX, 0x3713
		0xDD, 0x39, // ADD IX, SP
	}, 0)
	c.reg.SP = 0x1000

	c.Step(mem, io)
	c.Step(mem, io)

	reg := c.Registers()
	assert.Equal(t, uint16(0x4713), reg.ix())
	assert.Equal(t, uint16(6), c.PC())
}

func TestIncWraps(t *testing.T) {
	c, mem, io := newHarness()
	mem.LoadROM([]byte{0x3C}, 0) // INC A
	c.reg.A = 0xFF

	c.Step(mem, io)

	reg := c.Registers()
	assert.Equal(t, byte(0x00), reg.A)
	assert.True(t, reg.flag(FlagZ))
	assert.True(t, reg.flag(FlagH))
	assert.False(t, reg.flag(FlagPV))
}

func TestDecOverflow(t *testing.T) {
	c, mem, io := newHarness()
	mem.LoadROM([]byte{0x3D}, 0) // DEC A
	c.reg.A = 0x80

	c.Step(mem, io)

	reg := c.Registers()
	assert.Equal(t, byte(0x7F), reg.A)
	assert.True(t, reg.flag(FlagPV))
}

func TestAddCarryHalfZero(t *testing.T) {
	c, mem, io := newHarness()
	mem.LoadROM([]byte{0xC6, 0x01}, 0) // ADD A, 1
	c.reg.A = 0xFF

	c.Step(mem, io)

	reg := c.Registers()
	assert.Equal(t, byte(0x00), reg.A)
	assert.True(t, reg.flag(FlagC))
	assert.True(t, reg.flag(FlagH))
	assert.True(t, reg.flag(FlagZ))
}

func TestSubSetsCarryAndSubtract(t *testing.T) {
	c, mem, io := newHarness()
	mem.LoadROM([]byte{0x90}, 0) // SUB B
	c.reg.A = 0x00
	c.reg.B = 0x01

	c.Step(mem, io)

	reg := c.Registers()
	assert.True(t, reg.flag(FlagC))
	assert.True(t, reg.flag(FlagN))
}

func TestRLCACarry(t *testing.T) {
	c, mem, io := newHarness()
	mem.LoadROM([]byte{0x07}, 0) // RLCA
	c.reg.A = 0x85

	c.Step(mem, io)

	reg := c.Registers()
	assert.Equal(t, byte(0x0B), reg.A)
	assert.True(t, reg.flag(FlagC))
}

func TestBitInstruction(t *testing.T) {
	c, mem, io := newHarness()
	mem.LoadROM([]byte{0xCB, 0x40}, 0) // BIT 0, B
	c.reg.B = 0x00

	cycles := c.Step(mem, io)

	reg := c.Registers()
	assert.True(t, reg.flag(FlagZ))
	assert.True(t, reg.flag(FlagH))
	assert.False(t, reg.flag(FlagN))
	assert.Equal(t, 8, cycles, "BIT b,r is 8 T-states")
}

func TestBitHLTiming(t *testing.T) {
	c, mem, io := newHarness()
	mem.LoadROM([]byte{0xCB, 0x46}, 0) // BIT 0, (HL)
	c.reg.writeHL(0x2000)
	mem.WriteByte(0x00, 0x2000)

	cycles := c.Step(mem, io)

	reg := c.Registers()
	assert.True(t, reg.flag(FlagZ))
	assert.Equal(t, 12, cycles, "BIT b,(HL) is 12 T-states, not 15 like RES/SET/rot (HL)")
}

func TestDJNZNoJumpAtOne(t *testing.T) {
	c, mem, io := newHarness()
	mem.LoadROM([]byte{0x10, 0x05}, 0) // DJNZ +5
	c.reg.B = 1

	c.Step(mem, io)

	assert.Equal(t, byte(0), c.Registers().B)
	assert.Equal(t, uint16(2), c.PC(), "no jump taken once B reaches 0")
}

func TestHaltBlocksExecutionUntilInterrupt(t *testing.T) {
	c, mem, io := newHarness()
	mem.LoadROM([]byte{0x76}, 0) // HALT

	c.Step(mem, io)
	assert.True(t, c.Halted())

	cycles := c.RunBatch(10, mem, io)
	assert.True(t, c.Halted(), "still halted with no pending interrupt")
	assert.Equal(t, 4, cycles)

	c.Interrupt(1)
	c.interruptMode = 1
	c.Step(mem, io)
	assert.False(t, c.Halted(), "interrupt wakes a halted CPU")
}

func TestStackWrapsModulo65536(t *testing.T) {
	c, mem, io := newHarness()
	mem.LoadROM([]byte{0xC5}, 0) // PUSH BC
	c.reg.SP = 0
	c.reg.writeBC(0xABCD)

	c.Step(mem, io)

	assert.Equal(t, uint16(0xFFFE), c.Registers().SP, "SP wraps rather than going negative")
}

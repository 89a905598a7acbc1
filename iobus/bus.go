// Package iobus is a reference implementation of the cpu.IO contract:
// a port-indexed echo store, plus the InterruptVector device Pac-Man's
// hardware uses to supply the IM2 vector low byte during interrupt
// acknowledge.
//
// Grounded on _examples/original_source/src/cpu/io.rs's TestIO
// (port-echo stub) and _examples/original_source/src/interrupt_vector.rs's
// InterruptVector struct.
package iobus

// Bus is a simple 256-port store: Output(port, b) latches b at port;
// Input(port) returns the last latched byte (0 if never written).
type Bus struct {
	ports [256]byte
}

func New() *Bus {
	return &Bus{}
}

func (b *Bus) Input(port byte) byte       { return b.ports[port] }
func (b *Bus) Output(port byte, v byte)    { b.ports[port] = v }

// InterruptVector is the hardware device Pac-Man latches its IM2
// vector byte onto. It is not wired through Bus.Input/Output (the Z80
// forms the IM2 address from the CPU's own interrupt_data field, not
// a live bus read — see spec.md §4.4's interrupt acceptance rules),
// but is kept here as the documented source of that byte for host
// code wiring cpu.Interrupt(data).
type InterruptVector struct {
	data byte
}

func (v *InterruptVector) Input(_ byte) byte    { return v.data }
func (v *InterruptVector) Output(_ byte, b byte) { v.data = b }

// Data returns the currently latched vector byte, for host code to
// pass to cpu.CPU.Interrupt.
func (v *InterruptVector) Data() byte { return v.data }

// SetData latches a new vector byte, as the Pac-Man hardware does
// each vertical blank.
func (v *InterruptVector) SetData(b byte) { v.data = b }

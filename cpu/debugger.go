package cpu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"
)

// Debuggable is the narrow view of a memory bus the TUI needs beyond
// the cpu.Memory contract: a way to peek at a byte without triggering
// read-only/mapping side effects, for rendering.
type Debuggable interface {
	Memory
	Peek(addr uint16) byte
}

type model struct {
	cpu *CPU
	mem Debuggable
	io  IO

	offset uint16
	prevPC uint16
	err    error
}

// Init satisfies tea.Model. The CPU and bus are already loaded by the
// caller of Debug; there is no startup command to issue.
func (m model) Init() tea.Cmd {
	return nil
}

// Update is called when a message is received. Use it to inspect messages
// and, in response, update the model and/or send a command.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case " ", "j":
			m.prevPC = m.cpu.PC()
			m.cpu.Step(m.mem, m.io)
		}
	}
	return m, nil
}

// renderPage renders a single 16-byte page as a line. The current PC
// is highlighted.
func (m model) renderPage(start uint16) string {
	if start%16 != 0 {
		panic("start must be a multiple of 16")
	}
	s := fmt.Sprintf("%04x | ", start)
	for i := uint16(0); i < 16; i++ {
		addr := start + i
		b := m.mem.Peek(addr)
		if addr == m.cpu.PC() {
			s += fmt.Sprintf("[%02x] ", b)
		} else {
			s += fmt.Sprintf(" %02x  ", b)
		}
	}
	return s
}

func (m model) status() string {
	reg := m.cpu.Registers()
	alt := m.cpu.ShadowRegisters()
	var flags string
	for _, flag := range []bool{
		reg.flag(FlagS), reg.flag(FlagZ), reg.flag(FlagH),
		reg.flag(FlagPV), reg.flag(FlagN), reg.flag(FlagC),
	} {
		if flag {
			flags += "/ "
		} else {
			flags += "  "
		}
	}
	return fmt.Sprintf(`
PC: %04x (%04x)
SP: %04x
 A: %02x  F: %02x
 B: %02x  C: %02x
 D: %02x  E: %02x
 H: %02x  L: %02x
IX: %04x IY: %04x
 I: %02x  R: %02x
A': %02x F': %02x
S Z H P N C
`,
		m.cpu.PC(), m.prevPC,
		reg.SP,
		reg.A, reg.F,
		reg.B, reg.C,
		reg.D, reg.E,
		reg.H, reg.L,
		reg.ix(), reg.iy(),
		reg.I, reg.R,
		alt.A, alt.F,
	) + flags + fmt.Sprintf("\nhalted: %v  IFF: %v", m.cpu.Halted(), m.cpu.InterruptsEnabled())
}

func (m model) pageTable() string {
	header := "page | "
	for b := 0; b < 16; b++ {
		header += fmt.Sprintf("  %01x  ", b)
	}

	pages := []string{header}

	pcPage := m.cpu.PC() &^ 0x0F
	offsets := []uint16{
		0, 16, 32, 48,
		pcPage,
		pcPage + 16,
		pcPage + 32,
	}
	for _, start := range offsets {
		pages = append(pages, m.renderPage(start))
	}
	return strings.Join(pages, "\n")
}

// View renders the program's UI, which is just a string. The view is
// rendered after every Update.
func (m model) View() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			m.pageTable(),
			m.status(),
		),
		"",
		spew.Sdump(m.cpu.Registers()),
	)
}

// Debug starts an interactive TUI against an already-loaded memory bus,
// stepping one instruction per keypress.
func Debug(c *CPU, mem Debuggable, io IO) {
	m, err := tea.NewProgram(model{
		cpu: c,
		mem: mem,
		io:  io,
	}).Run()
	if err != nil {
		panic(err)
	}
	x := m.(model)
	if x.err != nil {
		fmt.Println("Error:", x.err)
	}
}

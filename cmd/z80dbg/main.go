// Command z80dbg drives a cpu.CPU against a ROM image: either running
// it to completion (or until a batch ceiling, since a freestanding Z80
// core never "finishes" on its own) or stepping through it in the
// bubbletea TUI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/christopherjmedlin/hackman/cpu"
	"github.com/christopherjmedlin/hackman/iobus"
	"github.com/christopherjmedlin/hackman/membus"
)

func main() {
	var romPath string
	var origin uint16
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "z80dbg",
		Short: "Run or step a Z80 ROM image against a flat Pac-Man-shaped memory map",
	}
	rootCmd.PersistentFlags().StringVar(&romPath, "rom", "", "path to the ROM image (required)")
	rootCmd.PersistentFlags().Uint16Var(&origin, "origin", 0, "address the ROM is loaded at")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log each frame's interrupt delivery to stderr")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the ROM for a number of vblank frames, delivering one IM2 interrupt per frame",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, mem, io, err := setup(romPath, origin)
			if err != nil {
				return err
			}
			batch, _ := cmd.Flags().GetInt("instructions")
			frames, _ := cmd.Flags().GetInt("frames")
			vectorByte, _ := cmd.Flags().GetUint8("vector")

			// Pac-Man's hardware latches the IM2 vector low byte once per
			// vblank; InterruptVector is that device, separate from the
			// port-addressed iobus.Bus above.
			vector := &iobus.InterruptVector{}
			vector.SetData(vectorByte)

			totalCycles := 0
			for f := 0; f < frames; f++ {
				totalCycles += c.RunBatch(batch, mem, io)
				c.Interrupt(vector.Data())
				if verbose {
					fmt.Fprintf(os.Stderr, "frame %d: delivered interrupt vector=0x%02x PC=%04x halted=%v\n",
						f, vector.Data(), c.PC(), c.Halted())
				}
			}
			fmt.Printf("PC=%04x cycles=%d halted=%v\n", c.PC(), totalCycles, c.Halted())
			return nil
		},
	}
	runCmd.Flags().Int("instructions", 1000, "number of instructions to execute per frame")
	runCmd.Flags().Int("frames", 1, "number of vblank interrupts to deliver")
	runCmd.Flags().Uint8("vector", 0x02, "IM2 interrupt vector low byte delivered each frame")

	debugCmd := &cobra.Command{
		Use:   "debug",
		Short: "Step through the ROM interactively in a TUI",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, mem, io, err := setup(romPath, origin)
			if err != nil {
				return err
			}
			cpu.Debug(c, mem, io)
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, debugCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func setup(romPath string, origin uint16) (*cpu.CPU, *membus.Bus, *iobus.Bus, error) {
	if romPath == "" {
		return nil, nil, nil, fmt.Errorf("--rom is required")
	}
	program, err := os.ReadFile(romPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("reading ROM: %w", err)
	}

	mem := membus.New()
	mem.LoadROM(program, origin)
	io := iobus.New()
	c := cpu.New()
	return c, mem, io, nil
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abcd-project/abcd/cfgbuild"
	"github.com/abcd-project/abcd/cfgverify"
	"github.com/abcd-project/abcd/container"
	"github.com/abcd-project/abcd/decode"
	"github.com/abcd-project/abcd/ir"
)

func newDisasmCmd() *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:   "disasm <file.abc>",
		Short: "Disassemble every method's bytecode to a mnemonic listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cf, err := container.Open(args[0])
			if err != nil {
				return err
			}
			defer cf.Close()

			classes, err := cf.Classes()
			if err != nil {
				return err
			}

			for _, c := range classes {
				for _, methodOff := range c.MethodOffsets {
					m, err := cf.Method(methodOff)
					if err != nil {
						warnf("%v", err)
						continue
					}
					if !m.HasCode {
						continue
					}
					code, err := cf.Code(m.CodeOff)
					if err != nil {
						warnf("method %s: %v", m.Name, err)
						continue
					}

					fmt.Printf("%s.%s:\n", c.Name, m.Name)
					res := decode.Decode(code.Instructions)
					for _, w := range res.Warnings {
						warnf("%s+%#x: %s", m.Name, w.Offset, w.Message)
					}
					for _, insn := range res.Instructions {
						printInsn(insn)
					}
					if verify {
						verifyCFG(c.Name, m.Name, res.Instructions, code.TryBlocks)
					}
					fmt.Println()
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "run CFG well-formedness checks on each method")
	return cmd
}

// verifyCFG runs the ambient CFG well-formedness pass and reports any
// failure as a warning without aborting disassembly of the rest of the
// file — this is a diagnostic aid, not part of the decompile contract.
func verifyCFG(className, methodName string, insns []ir.Instruction, tryBlocks []container.TryBlock) {
	tries := make([]ir.TryRegion, 0, len(tryBlocks))
	for _, tr := range tryBlocks {
		catches := make([]ir.CatchInfo, 0, len(tr.CatchBlocks))
		for _, cb := range tr.CatchBlocks {
			catches = append(catches, ir.CatchInfo{TypeIdx: cb.TypeIdx, HandlerPC: cb.HandlerPC, CodeSize: cb.CodeSize})
		}
		tries = append(tries, ir.TryRegion{StartPC: tr.StartPC, Length: tr.Length, Catches: catches})
	}
	g := cfgbuild.Build(insns, tries)
	if err := cfgverify.Verify(g); err != nil {
		warnf("%s.%s: CFG verification failed: %v", className, methodName, err)
	}
}

func printInsn(insn ir.Instruction) {
	operands := make([]string, len(insn.Operands))
	for i, op := range insn.Operands {
		operands[i] = op.String()
	}
	fmt.Printf("  %#06x: %-24s %s\n", insn.Offset, insn.Mnemonic, strings.Join(operands, ", "))
}

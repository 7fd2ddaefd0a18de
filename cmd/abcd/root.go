// Command abcd disassembles and decompiles ArkCompiler ABC container files.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var warnColor = color.New(color.FgYellow)

func warnf(format string, args ...interface{}) {
	warnColor.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "abcd",
		Short: "ArkCompiler ABC bytecode disassembler and decompiler",
	}
	cmd.AddCommand(newHeaderCmd())
	cmd.AddCommand(newDisasmCmd())
	cmd.AddCommand(newDecompileCmd())
	return cmd
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		os.Exit(1)
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abcd-project/abcd/container"
)

func newHeaderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "header <file.abc>",
		Short: "Print the container header and index-section summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cf, err := container.Open(args[0])
			if err != nil {
				return err
			}
			defer cf.Close()

			h := cf.Header
			fmt.Printf("version:          %s\n", h.VersionString())
			fmt.Printf("file size:        %d bytes\n", h.FileSize)
			fmt.Printf("classes:          %d (index @ %#x)\n", h.NumClasses, h.ClassIdxOff)
			fmt.Printf("literal arrays:   %d (index @ %#x)\n", h.NumLiteralArrays, h.LiteralArrayIdxOff)
			fmt.Printf("line number progs: %d (@ %#x)\n", h.NumLineNumberProgs, h.LineNumberProgsOff)
			fmt.Printf("index regions:    %d (@ %#x)\n", h.NumIndexes, h.IndexSectionOff)
			for i, r := range cf.Index.Regions {
				fmt.Printf("  region %d: [%#x, %#x) methods=%d fields=%d classes=%d protos=%d\n",
					i, r.StartOff, r.EndOff, r.MethodIdxSize, r.FieldIdxSize, r.ClassIdxSize, r.ProtoIdxSize)
			}
			return nil
		},
	}
}

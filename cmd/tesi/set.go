package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gregoriobaldi/tesi/internal/storage"
	"github.com/gregoriobaldi/tesi/internal/undo"
)

func setCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <file> <address> <text>",
		Short: "Write a cell, recalculate, and save",
		Long: "Set stores new raw text in a cell. Text starting with '=' is a\n" +
			"formula; everything that depends on the cell recalculates before\n" +
			"the sheet is written back.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			addr, err := parseAddrArg(args[1])
			if err != nil {
				return err
			}
			e, doc, err := loadSheet(v, path)
			if err != nil {
				return err
			}

			if err := undo.SetCell(e, addr, args[2]).Execute(); err != nil {
				return err
			}
			if args[2] == "" {
				delete(doc.Raws, addr)
				delete(doc.Formats, addr)
			} else {
				doc.Raws[addr] = args[2]
			}
			if err := storage.Save(path, doc); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", addr, e.GetValue(addr))
			for _, dep := range e.GetDependents(addr) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", dep, e.GetValue(dep))
			}
			return nil
		},
	}
	return cmd
}

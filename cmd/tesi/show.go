package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func showCmd(v *viper.Viper) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Render a sheet file as a grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, doc, err := loadSheet(v, args[0])
			if err != nil {
				return err
			}
			if raw {
				for addr, text := range doc.Raws {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", addr, text)
				}
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), renderGrid(e, doc))
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print raw cell text instead of the grid")
	return cmd
}

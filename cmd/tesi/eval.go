package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gregoriobaldi/tesi/internal/cell"
	"github.com/gregoriobaldi/tesi/internal/engine"
	"github.com/gregoriobaldi/tesi/internal/storage"
)

func evalCmd(v *viper.Viper) *cobra.Command {
	var sheetPath string

	cmd := &cobra.Command{
		Use:   "eval <formula>",
		Short: "Evaluate a formula, optionally against a sheet file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, err := loadSheet(v, sheetPath)
			if err != nil {
				return err
			}

			input := args[0]
			if !strings.HasPrefix(input, "=") {
				input = "=" + input
			}
			// evaluate through a scratch cell so references resolve
			// against the loaded sheet
			scratch, err := freeCell(e)
			if err != nil {
				return err
			}
			if err := e.SetCell(scratch, input); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), storage.Display(e.GetValue(scratch), -1))
			return nil
		},
	}

	cmd.Flags().StringVarP(&sheetPath, "sheet", "s", "", "sheet file providing cell values")
	return cmd
}

// freeCell picks an unused address in the sheet's last column for the
// throwaway evaluation.
func freeCell(e *engine.Engine) (cell.Address, error) {
	cfg := e.Config()
	used := e.Snapshot()
	col := cfg.MaxCols - 1
	for row := cfg.MaxRows - 1; row >= 0; row-- {
		addr := cell.Address{Col: col, Row: row}
		if _, taken := used[addr]; !taken {
			return addr, nil
		}
	}
	return cell.Address{}, fmt.Errorf("no free cell for evaluation")
}

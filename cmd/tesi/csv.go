package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gregoriobaldi/tesi/internal/cell"
	"github.com/gregoriobaldi/tesi/internal/storage"
)

func exportCmd(v *viper.Viper) *cobra.Command {
	var rangeText string

	cmd := &cobra.Command{
		Use:   "export <file> <out.csv>",
		Short: "Export computed values to CSV",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, doc, err := loadSheet(v, args[0])
			if err != nil {
				return err
			}

			var rng cell.Range
			if rangeText != "" {
				rng, err = cell.ParseRange(rangeText)
				if err != nil {
					return err
				}
			} else {
				bounds, ok := doc.Bounds()
				if !ok {
					return fmt.Errorf("sheet is empty")
				}
				rng = cell.NewRange(cell.Address{}, bounds.End)
			}

			out, err := os.Create(args[1])
			if err != nil {
				return err
			}
			defer out.Close()
			return storage.ExportCSV(out, e, rng, doc.Formats)
		},
	}

	cmd.Flags().StringVarP(&rangeText, "range", "r", "", "range to export, e.g. A1:D10 (default whole sheet)")
	return cmd
}

func importCmd(v *viper.Viper) *cobra.Command {
	var startText string

	cmd := &cobra.Command{
		Use:   "import <file> <in.csv>",
		Short: "Import CSV data into a sheet file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			start := cell.Address{}
			if startText != "" {
				var err error
				start, err = parseAddrArg(startText)
				if err != nil {
					return err
				}
			}

			doc := storage.NewDocument()
			if _, err := os.Stat(path); err == nil {
				var loadErr error
				doc, loadErr = storage.Load(path)
				if loadErr != nil {
					return loadErr
				}
			}

			in, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer in.Close()
			if err := storage.ImportCSV(in, doc, start); err != nil {
				return err
			}

			// reload through the engine so bad formulas surface now
			e, _, err := loadSheet(v, "")
			if err != nil {
				return err
			}
			if err := e.LoadAll(doc.Raws); err != nil {
				return err
			}
			return storage.Save(path, doc)
		},
	}

	cmd.Flags().StringVar(&startText, "at", "", "anchor cell for imported data (default A1)")
	return cmd
}

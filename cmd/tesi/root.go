package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gregoriobaldi/tesi/internal/cell"
	"github.com/gregoriobaldi/tesi/internal/config"
	"github.com/gregoriobaldi/tesi/internal/engine"
	"github.com/gregoriobaldi/tesi/internal/storage"
)

func rootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:           "tesi",
		Short:         "Spreadsheet calculation engine",
		Long:          "tesi evaluates spreadsheet formulas with dependency-aware recalculation.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initViper(v, cmd)
		},
	}

	cmd.PersistentFlags().String("config", "", "config file (default searches for tesi.toml)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().Int("max-depth", config.Default().MaxDepth, "maximum formula nesting depth")
	cmd.PersistentFlags().Int("precision", config.Default().Precision, "default display precision")

	cmd.AddCommand(evalCmd(v))
	cmd.AddCommand(showCmd(v))
	cmd.AddCommand(setCmd(v))
	cmd.AddCommand(exportCmd(v))
	cmd.AddCommand(importCmd(v))
	cmd.AddCommand(watchCmd(v))
	return cmd
}

func initViper(v *viper.Viper, cmd *cobra.Command) error {
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if err := v.BindPFlags(cmd.Root().PersistentFlags()); err != nil {
		return err
	}
	v.SetEnvPrefix("TESI")
	v.AutomaticEnv()

	if cfgFile := v.GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
	} else {
		v.SetConfigName("tesi")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return fmt.Errorf("reading config: %w", err)
			}
		}
	}
	return nil
}

func newLogger(v *viper.Viper) *slog.Logger {
	level := slog.LevelWarn
	if v.GetBool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func engineConfig(v *viper.Viper) (config.Config, error) {
	cfg := config.Default()
	if v.IsSet("max-depth") {
		cfg.MaxDepth = v.GetInt("max-depth")
	}
	if v.IsSet("max_depth") {
		cfg.MaxDepth = v.GetInt("max_depth")
	}
	if v.IsSet("precision") {
		cfg.Precision = v.GetInt("precision")
	}
	if v.IsSet("max_rows") {
		cfg.MaxRows = v.GetInt("max_rows")
	}
	if v.IsSet("max_cols") {
		cfg.MaxCols = v.GetInt("max_cols")
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// loadSheet reads a sheet file and replays it through a fresh engine.
func loadSheet(v *viper.Viper, path string) (*engine.Engine, *storage.Document, error) {
	cfg, err := engineConfig(v)
	if err != nil {
		return nil, nil, err
	}
	e := engine.New(engine.NewMemStore(),
		engine.WithLogger(newLogger(v)),
		engine.WithConfig(cfg),
	)
	doc := storage.NewDocument()
	if path != "" {
		doc, err = storage.Load(path)
		if err != nil {
			return nil, nil, err
		}
	}
	if err := e.LoadAll(doc.Raws); err != nil {
		return nil, nil, err
	}
	return e, doc, nil
}

func parseAddrArg(s string) (cell.Address, error) {
	addr, err := cell.ParseAddress(s)
	if err != nil {
		return cell.Address{}, fmt.Errorf("bad address %q: %w", s, err)
	}
	return addr, nil
}

package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func watchCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-render the sheet whenever the file changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if err := renderOnce(cmd, v, path); err != nil {
				return err
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return err
			}
			defer watcher.Close()
			// watch the directory: editors replace files instead of
			// writing in place
			if err := watcher.Add(filepath.Dir(path)); err != nil {
				return err
			}

			log := newLogger(v)
			var pending <-chan time.Time
			for {
				select {
				case <-cmd.Context().Done():
					return nil
				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if filepath.Clean(event.Name) != filepath.Clean(path) {
						continue
					}
					if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
						continue
					}
					// coalesce bursts of events into one reload
					pending = time.After(100 * time.Millisecond)
				case <-pending:
					pending = nil
					if err := renderOnce(cmd, v, path); err != nil {
						log.Warn("reload failed", "path", path, "err", err)
					}
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					log.Warn("watch error", "err", err)
				}
			}
		},
	}
	return cmd
}

func renderOnce(cmd *cobra.Command, v *viper.Viper, path string) error {
	e, doc, err := loadSheet(v, path)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%s @ %s\n", path, time.Now().Format(time.TimeOnly))
	fmt.Fprint(cmd.OutOrStdout(), renderGrid(e, doc))
	return nil
}

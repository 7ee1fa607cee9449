package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gridpulse/csgstat/internal/model"
)

var collectOutput string

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Run one refresh cycle and print the snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		e := newEnv(cfg)
		snaps, err := e.worker.RunOnce(cmd.Context())
		if err != nil {
			return err
		}
		return writeSnapshots(os.Stdout, snaps, collectOutput)
	},
}

func writeSnapshots(w io.Writer, snaps model.Snapshots, format string) error {
	switch format {
	case "yaml":
		b, err := yaml.Marshal(snaps)
		if err != nil {
			return eris.Wrap(err, "collect: marshal yaml")
		}
		_, err = w.Write(b)
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snaps); err != nil {
			return eris.Wrap(err, "collect: marshal json")
		}
		return nil
	}
	return eris.Errorf("collect: unknown output format %q", format)
}

func init() {
	collectCmd.Flags().StringVar(&collectOutput, "output", "json", "output format: json or yaml")
	rootCmd.AddCommand(collectCmd)
}

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List configured electricity accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(cfg.Accounts) == 0 {
			fmt.Println("no accounts configured")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NUMBER\tMETERING POINT\tAREA")
		for _, a := range cfg.Accounts {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", a.Number, a.MeteringPoint, a.AreaCode)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(accountsCmd)
}

package main

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var configPath string

func main() {
	decimal.MarshalJSONWithoutQuotes = true

	root := &cobra.Command{
		Use:           "simkas",
		Short:         "SimKas class/cohort cash collection backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default ./config.yaml)")
	root.AddCommand(serveCmd(), migrateCmd(), createUserCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "simkas:", err)
		os.Exit(1)
	}
}

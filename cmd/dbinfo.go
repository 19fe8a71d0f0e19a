// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"dbgate/cli/internal/config"
	"dbgate/cli/internal/dsn"
	"dbgate/cli/internal/logging"
)

// dbinfoCmd shows which database dbgate would use, with the password masked.
var dbinfoCmd = &cobra.Command{
	Use:   "dbinfo",
	Short: "Show current database connection string",
	Long: `The dbinfo command displays the database connection string (DSN) dbgate resolves,
where it came from, and the driver it maps to. Passwords are masked.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			pterm.Error.Println(logging.PresentError("cannot read config", err))
			return err
		}

		raw, source, err := cfg.ResolveDSN(keychainDSN)
		if err != nil {
			pterm.Warning.Println("No database connection configured")
			pterm.Println("   Please run: dbgate connect")
			return nil
		}

		info := [][]string{
			{"DSN", logging.Mask(raw)},
			{"Source", string(source)},
		}
		if target, err := dsn.Resolve(raw); err == nil {
			info = append(info, []string{"Backend", string(target.Type)}, []string{"Driver", target.Driver})
		} else {
			info = append(info, []string{"Problem", err.Error()})
		}

		body, _ := pterm.DefaultTable.WithData(info).Srender()
		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Database Connection")).
			WithPadding(1).
			Println(body)
		pterm.Println()
		pterm.Println("To update this connection, run: dbgate connect")
		pterm.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbinfoCmd)
}

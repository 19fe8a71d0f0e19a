// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"dbgate/cli/internal/logging"
	"dbgate/cli/internal/stmt"

	"github.com/pterm/pterm"
)

var outputJSON bool

// runOnce connects, executes req and prints the outcome.
func runOnce(cmd *cobra.Command, req stmt.Request) error {
	sess, err := openSession(cmd.Context())
	if err != nil {
		pterm.Error.Println(logging.PresentError("", err))
		if logging.ClassifyConnectError(err) != logging.ConnectErrorUnknown {
			pterm.Println(logging.FormatConnectError(err))
		}
		return err
	}
	defer sess.Close()

	out := sess.exec.Run(cmd.Context(), sess.builder, req)
	return printOutcome(os.Stdout, out, outputJSON)
}

func toArgs(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce(cmd, stmt.NewListTables())
	},
}

var describeCmd = &cobra.Command{
	Use:   "describe <table>",
	Short: "Show a table's column layout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce(cmd, stmt.NewDescribeTable(args[0]))
	},
}

var selectCmd = &cobra.Command{
	Use:   "select <table>",
	Short: "Print every row of a table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce(cmd, stmt.NewSelectAll(args[0]))
	},
}

var callCmd = &cobra.Command{
	Use:   "call <procedure> [args...]",
	Short: "Call a stored procedure and print its first result set",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce(cmd, stmt.NewCallProcedure(args[0], toArgs(args[1:])))
	},
}

var fnCmd = &cobra.Command{
	Use:   "fn <function> [args...]",
	Short: "Evaluate a stored function",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce(cmd, stmt.NewCallFunction(args[0], toArgs(args[1:])))
	},
}

func init() {
	for _, c := range []*cobra.Command{tablesCmd, describeCmd, selectCmd, callCmd, fnCmd} {
		c.Flags().BoolVar(&outputJSON, "json", false, "Print the gateway's JSON response instead of a table")
		rootCmd.AddCommand(c)
	}
}

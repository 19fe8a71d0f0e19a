// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"dbgate/cli/internal/logging"
	"dbgate/cli/internal/stmt"
	"dbgate/cli/internal/xdg"
)

const shellHelp = `Commands:
  tables                                   list tables
  describe <table>                         column layout
  select <table>                           all rows
  create <table> <col:type> [...]          quote definitions with spaces: "name:VARCHAR(10) NOT NULL"
  drop <table>
  truncate <table>
  update <table> <col> <value> <pcol> <pval>
  delete <table> <pcol> <pval>
  call <procedure> [args...]
  fn <function> [args...]
  help | exit`

// splitArgs splits on whitespace, keeping double-quoted runs together.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inQuote bool
		started bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
			started = true
		case (r == ' ' || r == '\t') && !inQuote:
			if started {
				args = append(args, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if inQuote {
		return nil, errors.New("unterminated quote")
	}
	if started {
		args = append(args, cur.String())
	}
	return args, nil
}

// parseShellLine turns one shell line into a request.
func parseShellLine(line string) (stmt.Request, error) {
	args, err := splitArgs(line)
	if err != nil {
		return stmt.Request{}, err
	}
	if len(args) == 0 {
		return stmt.Request{}, errors.New("empty command")
	}
	verb, rest := strings.ToLower(args[0]), args[1:]

	need := func(n int, usage string) error {
		if len(rest) != n {
			return fmt.Errorf("usage: %s", usage)
		}
		return nil
	}

	switch verb {
	case "tables":
		return stmt.NewListTables(), need(0, "tables")
	case "describe":
		if err := need(1, "describe <table>"); err != nil {
			return stmt.Request{}, err
		}
		return stmt.NewDescribeTable(rest[0]), nil
	case "select":
		if err := need(1, "select <table>"); err != nil {
			return stmt.Request{}, err
		}
		return stmt.NewSelectAll(rest[0]), nil
	case "drop", "truncate":
		if err := need(1, verb+" <table>"); err != nil {
			return stmt.Request{}, err
		}
		if verb == "drop" {
			return stmt.NewDropTable(rest[0]), nil
		}
		return stmt.NewTruncateTable(rest[0]), nil
	case "create":
		if len(rest) < 1 {
			return stmt.Request{}, errors.New("usage: create <table> <col:type> [...]")
		}
		cols := make([]stmt.ColumnDef, 0, len(rest)-1)
		for _, def := range rest[1:] {
			name, typ, ok := strings.Cut(def, ":")
			if !ok {
				return stmt.Request{}, fmt.Errorf("column %q must be name:type", def)
			}
			cols = append(cols, stmt.ColumnDef{Name: name, Type: typ})
		}
		return stmt.NewCreateTable(rest[0], cols), nil
	case "update":
		if err := need(5, "update <table> <col> <value> <pcol> <pval>"); err != nil {
			return stmt.Request{}, err
		}
		return stmt.NewUpdateRow(rest[0], rest[1], rest[2], rest[3], rest[4]), nil
	case "delete":
		if err := need(3, "delete <table> <pcol> <pval>"); err != nil {
			return stmt.Request{}, err
		}
		return stmt.NewDeleteRow(rest[0], rest[1], rest[2]), nil
	case "call", "fn":
		if len(rest) < 1 {
			return stmt.Request{}, fmt.Errorf("usage: %s <name> [args...]", verb)
		}
		if verb == "call" {
			return stmt.NewCallProcedure(rest[0], toArgs(rest[1:])), nil
		}
		return stmt.NewCallFunction(rest[0], toArgs(rest[1:])), nil
	default:
		return stmt.Request{}, fmt.Errorf("unknown command %q, type 'help'", verb)
	}
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive shell over the gateway operations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession(cmd.Context())
		if err != nil {
			pterm.Error.Println(logging.PresentError("", err))
			return err
		}
		defer sess.Close()

		rlCfg := &readline.Config{
			Prompt:          fmt.Sprintf("dbgate(%s)> ", sess.target.Type),
			InterruptPrompt: "^C",
			EOFPrompt:       "exit",
			AutoComplete: readline.NewPrefixCompleter(
				readline.PcItem("tables"), readline.PcItem("describe"), readline.PcItem("select"),
				readline.PcItem("create"), readline.PcItem("drop"), readline.PcItem("truncate"),
				readline.PcItem("update"), readline.PcItem("delete"),
				readline.PcItem("call"), readline.PcItem("fn"),
				readline.PcItem("help"), readline.PcItem("exit"),
			),
		}
		if dir, err := xdg.StateDir(); err == nil {
			rlCfg.HistoryFile = filepath.Join(dir, "shell_history")
		}
		rl, err := readline.NewEx(rlCfg)
		if err != nil {
			return err
		}
		defer rl.Close()

		pterm.Info.Printfln("connected to %s via %s, type 'help' for commands", sess.target.Type, sess.source)
		for {
			line, err := rl.Readline()
			if errors.Is(err, readline.ErrInterrupt) {
				if line == "" {
					return nil
				}
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}

			line = strings.TrimSpace(line)
			switch strings.ToLower(line) {
			case "":
				continue
			case "exit", "quit":
				return nil
			case "help":
				fmt.Fprintln(rl.Stdout(), shellHelp)
				continue
			}

			req, err := parseShellLine(line)
			if err != nil {
				pterm.Warning.WithWriter(rl.Stdout()).Println(err.Error())
				continue
			}
			// Errors are already printed; the shell keeps going.
			_ = printOutcome(rl.Stdout(), sess.exec.Run(cmd.Context(), sess.builder, req), false)
		}
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"

	"dbgate/cli/internal/sqlexec"
)

// startInlineSpinner draws frames followed by text on one line until the
// returned stop function is called. The cursor is hidden meanwhile.
func startInlineSpinner(w io.Writer, text string, frames []string, interval time.Duration) func() {
	cursor.Hide()
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		i := 0
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			line := fmt.Sprintf("%s %s", frames[i%len(frames)], text)
			select {
			case <-stop:
				fmt.Fprintf(w, "\r%*s\r", len(line), "")
				return
			case <-ticker.C:
				fmt.Fprintf(w, "\r%s", line)
				i++
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			wg.Wait()
			cursor.Show()
		})
	}
}

// outcomeTable renders rows as a pterm table. Header cells come from the
// result set's column names.
func outcomeTable(out sqlexec.Outcome) pterm.TableData {
	data := pterm.TableData{out.Rows.Columns}
	rows, _ := out.Value().([][]any)
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			if v == nil {
				cells[i] = "NULL"
				continue
			}
			cells[i] = fmt.Sprint(v)
		}
		data = append(data, cells)
	}
	return data
}

// printOutcome writes out for a terminal, or as the gateway's JSON when
// asJSON is set. Error outcomes are returned so the command exits non-zero.
func printOutcome(w io.Writer, out sqlexec.Outcome, asJSON bool) error {
	if asJSON {
		b, err := json.Marshal(out)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(b))
		if out.Kind == sqlexec.OutcomeError {
			return out.Err
		}
		return nil
	}

	switch out.Kind {
	case sqlexec.OutcomeRows:
		if len(out.Rows.Rows) == 0 {
			pterm.Info.WithWriter(w).Println("no rows")
			return nil
		}
		return pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(outcomeTable(out)).Render()
	case sqlexec.OutcomeStatus:
		pterm.Success.WithWriter(w).Printfln("%s: success", out.Entity)
		return nil
	default:
		pterm.Error.WithWriter(w).Println(out.Value().(map[string]any)["error"])
		return out.Err
	}
}

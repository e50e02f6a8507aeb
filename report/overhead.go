package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/weiihann/simbench/results"
	"github.com/weiihann/simbench/sweep"
)

// Cell is one (mode, cmd) measurement. OK is false when the result file
// was absent.
type Cell struct {
	Cmd     string          `json:"cmd"`
	SimTime results.SimTime `json:"sim_minutes"`
	OK      bool            `json:"ok"`
}

// Row holds the measurements of one mode, in cmd order.
type Row struct {
	Mode  string `json:"mode"`
	Cells []Cell `json:"cells"`
}

// Collect reads the result file of every cell of the matrix. Missing files
// leave the cell empty; any other read or parse failure aborts.
func Collect(cfg sweep.Config) ([]Row, error) {
	rows := make([]Row, len(cfg.Modes))
	for i, m := range cfg.Modes {
		rows[i] = Row{Mode: m, Cells: make([]Cell, 0, len(cfg.Cmds))}
	}

	// Cells are mode-major, so a repeated mode still gets its own row.
	for i, c := range cfg.Cells() {
		t, found, err := results.ParseSimTime(c.Result)
		if err != nil {
			return nil, fmt.Errorf("cell %s: %w", c.Name, err)
		}

		row := &rows[i/len(cfg.Cmds)]
		row.Cells = append(row.Cells, Cell{
			Cmd:     c.Cmd,
			SimTime: t,
			OK:      found,
		})
	}

	return rows, nil
}

func (c Cell) text() string {
	if !c.OK {
		return ""
	}

	return c.SimTime.String()
}

// SyncOverhead writes the plain summary table: a header naming the cmds,
// then one line per mode with one space-separated field per cmd. Missing
// cells are empty fields.
func SyncOverhead(w io.Writer, cmds []string, rows []Row) error {
	header := "mode"
	for _, c := range cmds {
		header += "  " + c
	}

	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}

	for _, r := range rows {
		var b strings.Builder
		b.WriteString(r.Mode)

		for _, c := range r.Cells {
			b.WriteString(" ")
			b.WriteString(c.text())
		}

		if _, err := fmt.Fprintln(w, b.String()); err != nil {
			return err
		}
	}

	return nil
}

// SyncOverheadMarkdown writes the same table as markdown, with "-" for
// missing cells.
func SyncOverheadMarkdown(w io.Writer, cmds []string, rows []Row) error {
	fmt.Fprintln(w, "| Mode | "+strings.Join(cmds, " | ")+" |")
	fmt.Fprintln(w, "|------"+strings.Repeat("|------", len(cmds))+"|")

	for _, r := range rows {
		fields := make([]string, 0, len(r.Cells))
		for _, c := range r.Cells {
			s := c.text()
			if s == "" {
				s = "-"
			}

			fields = append(fields, s)
		}

		if _, err := fmt.Fprintf(w, "| %s | %s |\n",
			r.Mode, strings.Join(fields, " | ")); err != nil {
			return err
		}
	}

	return nil
}

// SyncOverheadJSON writes rows as JSON to w.
func SyncOverheadJSON(w io.Writer, rows []Row) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(rows)
}

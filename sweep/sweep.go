// Package sweep enumerates the (mode, cmd) result matrix of a benchmark
// campaign and the output file each cell is expected to produce.
package sweep

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/weiihann/simbench/results"
)

// Defaults of the synchronization-overhead campaign.
var (
	DefaultModes = []string{"no_simb-gt", "noTraf-gt-ib-sw"}
	DefaultCmds  = []string{"sleep", "busy"}
)

// DefaultRun is the run index reported when none is given.
const DefaultRun = 1

// Cell is one entry of the matrix.
type Cell struct {
	Mode   string `json:"mode"`
	Cmd    string `json:"cmd"`
	Run    int    `json:"run"`
	Name   string `json:"name"`
	Result string `json:"result"`
}

// Summary contains statistics about the generated matrix.
type Summary struct {
	Modes int
	Cmds  int
	Cells int
}

// Config controls matrix generation.
type Config struct {
	Modes []string
	Cmds  []string
	Run   int
	// Dir is the output directory result paths are rooted at.
	Dir string
}

// DefaultConfig returns the synchronization-overhead matrix rooted at dir.
func DefaultConfig(dir string) Config {
	return Config{
		Modes: append([]string(nil), DefaultModes...),
		Cmds:  append([]string(nil), DefaultCmds...),
		Run:   DefaultRun,
		Dir:   dir,
	}
}

// Cells returns the mode x cmd cross product, modes in declared order and
// cmds in declared order within each mode.
func (c Config) Cells() []Cell {
	cells := make([]Cell, 0, len(c.Modes)*len(c.Cmds))

	for _, m := range c.Modes {
		for _, cmd := range c.Cmds {
			cells = append(cells, Cell{
				Mode:   m,
				Cmd:    cmd,
				Run:    c.Run,
				Name:   fmt.Sprintf("%s-%s", m, cmd),
				Result: results.ResultPath(c.Dir, m, cmd, c.Run),
			})
		}
	}

	return cells
}

// Generate writes the matrix to w as JSONL, one cell per line.
func (c Config) Generate(w io.Writer) (Summary, error) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	summary := Summary{Modes: len(c.Modes), Cmds: len(c.Cmds)}

	for _, cell := range c.Cells() {
		if err := enc.Encode(cell); err != nil {
			return summary, fmt.Errorf("encode cell %s: %w", cell.Name, err)
		}

		summary.Cells++
	}

	return summary, nil
}

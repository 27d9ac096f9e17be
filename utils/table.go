package utils

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// NewTable returns a rounded table writer rendering to out.
func NewTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

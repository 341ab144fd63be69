package global

import (
	"bytes"

	"github.com/guptarohit/asciigraph"
	"github.com/markusressel/twiddle/internal/ui"
	"github.com/mgutz/ansi"
	"github.com/tomlazar/table"
)

// PrintTable prints the given rows as a table, respecting the --no-color flag
func PrintTable(headers []string, rows [][]string) error {
	tab := table.Table{
		Headers: headers,
		Rows:    rows,
	}
	var buf bytes.Buffer
	err := tab.WriteTable(&buf, &table.Config{
		ShowIndex:       false,
		Color:           !NoColor,
		AlternateColors: true,
		TitleColorCode:  ansi.ColorCode("white+buf"),
		AltColorCodes: []string{
			ansi.ColorCode("white"),
			ansi.ColorCode("white:236"),
		},
	})
	if err != nil {
		return err
	}
	ui.Printfln("%s", buf.String())
	return nil
}

// PrintGraph plots the given values, nothing is printed for less than two values
func PrintGraph(values []float64, caption string) {
	if len(values) < 2 {
		return
	}
	graph := asciigraph.Plot(values, asciigraph.Height(15), asciigraph.Width(100), asciigraph.Caption(caption))
	ui.Printfln("%s", graph)
}

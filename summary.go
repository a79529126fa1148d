package intsurv

import (
	"bytes"
	"fmt"
	"strings"
)

// SummaryTable renders a fitted-model summary as fixed-width text.  Top
// holds key/value lines shown above the coefficient table, ColNames and
// Cols the coefficient table itself, and Msg free-form notes appended
// below it.
type SummaryTable struct {
	Title    string
	Top      []string
	ColNames []string
	Cols     [][]string
	Msg      []string
}

// FmtNumber formats a numeric column for use in a SummaryTable.
func FmtNumber(x []float64) []string {
	s := make([]string, len(x))
	for i := range x {
		s[i] = fmt.Sprintf("%12.4f", x[i])
	}
	return s
}

// FmtString left-justifies a string column to a common width.
func FmtString(x []string) []string {
	w := 0
	for _, v := range x {
		if len(v) > w {
			w = len(v)
		}
	}
	s := make([]string, len(x))
	for i := range x {
		s[i] = fmt.Sprintf("%-*s", w, x[i])
	}
	return s
}

// String returns the rendered table.
func (s *SummaryTable) String() string {

	// Column widths
	wx := make([]int, len(s.Cols))
	for j, c := range s.Cols {
		wx[j] = len(s.ColNames[j])
		for _, v := range c {
			if len(v) > wx[j] {
				wx[j] = len(v)
			}
		}
	}

	tw := 0
	for _, w := range wx {
		tw += w + 2
	}
	if tw < len(s.Title) {
		tw = len(s.Title)
	}
	for _, x := range s.Top {
		if tw < len(x) {
			tw = len(x)
		}
	}

	line := func(c string) string {
		return strings.Repeat(c, tw) + "\n"
	}

	var buf bytes.Buffer

	k := (tw - len(s.Title)) / 2
	if k < 0 {
		k = 0
	}
	buf.WriteString(strings.Repeat(" ", k) + s.Title + "\n")
	buf.WriteString(line("="))

	for _, x := range s.Top {
		buf.WriteString(x + "\n")
	}
	buf.WriteString(line("-"))

	for j, c := range s.ColNames {
		fmt.Fprintf(&buf, "%*s  ", wx[j], c)
	}
	buf.WriteString("\n")
	buf.WriteString(line("-"))

	nrow := 0
	if len(s.Cols) > 0 {
		nrow = len(s.Cols[0])
	}
	for i := 0; i < nrow; i++ {
		for j := range s.Cols {
			fmt.Fprintf(&buf, "%*s  ", wx[j], s.Cols[j][i])
		}
		buf.WriteString("\n")
	}
	buf.WriteString(line("-"))

	for _, msg := range s.Msg {
		buf.WriteString(msg + "\n")
	}

	return buf.String()
}

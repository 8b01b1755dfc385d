// Package report renders grade reports for people and for machines.
package report

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/okian/autograder/internal/domain/model"
)

// Row statuses.
const (
	StatusPass    = "PASS"
	StatusFail    = "FAIL"
	StatusError   = "ERROR"
	StatusSkipped = "skipped"
)

// JSON renders the report with its fixed keys, indented.
func JSON(r model.GradeReport) ([]byte, error) {
	if r.Results == nil {
		r.Results = model.Results{}
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return append(data, '\n'), nil
}

// Text renders the grading summary table followed by the verdict.
// Categories with no result are shown as skipped.
func Text(r model.GradeReport, opts ...Option) string {
	o := textOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.SetTitle("GRADING SUMMARY")
	tbl.AppendHeader(table.Row{"Category", "Score", "Status"})
	for _, c := range model.AllCategories() {
		label := c.Label()
		if !c.Scored() {
			label += " (not scored)"
		}
		res, ok := r.Results[c]
		if !ok {
			tbl.AppendRow(table.Row{label, "-", StatusSkipped})
			continue
		}
		tbl.AppendRow(table.Row{label, fraction(res.Score, res.MaxScore), status(res)})
	}
	tbl.AppendFooter(table.Row{"Total", fraction(r.TotalScore, r.MaxScore), "Grade " + string(r.Grade)})

	var b strings.Builder
	b.WriteString(tbl.Render())
	b.WriteString("\n\n")

	verdict := color.New(color.FgGreen, color.Bold)
	word := "PASSED"
	if !r.Passed {
		verdict = color.New(color.FgRed, color.Bold)
		word = "FAILED"
	}
	if o.color {
		verdict.EnableColor()
	} else {
		verdict.DisableColor()
	}
	fmt.Fprintf(&b, "Result: %s (%s/%s, grade %s)\n",
		verdict.Sprint(word), humanize.Ftoa(round2(r.TotalScore)), humanize.Ftoa(r.MaxScore), r.Grade)

	if r.ExecutionTime != nil {
		d := time.Duration(*r.ExecutionTime * float64(time.Second))
		fmt.Fprintf(&b, "Execution time: %s\n", d.Round(time.Millisecond))
	}
	if r.WasEarlyExit() {
		b.WriteString("Early exit: critical security failure, remaining categories skipped\n")
	}

	if o.details {
		for _, c := range model.AllCategories() {
			if res, ok := r.Results[c]; ok && res.Failed() {
				fmt.Fprintf(&b, "  %s: %s\n", c, res.Error)
			}
		}
	}
	return b.String()
}

func status(r model.PartialResult) string {
	switch {
	case r.Failed():
		return StatusError
	case r.Passed:
		return StatusPass
	default:
		return StatusFail
	}
}

func fraction(score, maxScore float64) string {
	return humanize.Ftoa(round2(score)) + "/" + humanize.Ftoa(maxScore)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

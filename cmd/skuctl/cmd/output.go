package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/donaldgifford/refurb-sku-matcher/internal/engine"
	domain "github.com/donaldgifford/refurb-sku-matcher/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printMatchResult(w io.Writer, r *domain.MatchResult) error {
	tw := newTabWriter(w)
	if r.SkuCode != "" {
		tw.writef("SKU:\t%s\n", r.SkuCode)
	}
	tw.writef("Method:\t%s\n", r.MatchMethod)
	tw.writef("Score:\t%.3f\n", r.MatchScore)
	if r.Tier != "" {
		tw.writef("Tier:\t%s\n", r.Tier)
	}
	if o := r.CarrierOverride; o != nil {
		switch {
		case o.IsExcluded:
			tw.writef("Excluded:\t%s\n", o.Reason)
		case o.ShouldOverride:
			tw.writef("Carrier:\t%s (%s)\n", o.EffectiveCarrier, o.Reason)
		}
	}
	return tw.finish()
}

func printCandidatesTable(w io.Writer, candidates []domain.MatchCandidate) error {
	tw := newTabWriter(w)
	tw.writef("SKU\tRAW\tADJUSTED\tCARRIER\tACCEPTED\n")
	for i := range candidates {
		c := &candidates[i]
		tw.writef("%s\t%.3f\t%.3f\t%.2f\t%v\n",
			c.SkuCode,
			c.RawScore,
			c.AdjustedScore,
			c.CarrierScore,
			c.Accepted,
		)
	}
	return tw.finish()
}

func printSummary(w io.Writer, s *engine.Summary) error {
	tw := newTabWriter(w)
	tw.writef("Job:\t%s\n", s.JobID)
	tw.writef("Devices:\t%d\n", s.Devices)
	tw.writef("Matched:\t%d\n", s.Matched)
	tw.writef("No match:\t%d\n", s.NoMatch)
	tw.writef("Excluded:\t%d\n", s.Excluded)
	tw.writef("Invalid:\t%d\n", s.Invalid)
	tw.writef("Duration:\t%s\n", s.Duration)
	return tw.finish()
}

func printJobRunsTable(w io.Writer, runs []domain.JobRun) error {
	tw := newTabWriter(w)
	tw.writef("JOB\tSTATUS\tSTARTED\tCOMPLETED\tMATCHED\tERROR\n")
	for i := range runs {
		r := &runs[i]
		completed := "-"
		if r.CompletedAt != nil {
			completed = r.CompletedAt.Format("2006-01-02 15:04:05")
		}
		rows := "-"
		if r.RowsAffected != nil {
			rows = fmt.Sprintf("%d", *r.RowsAffected)
		}
		tw.writef("%s\t%s\t%s\t%s\t%s\t%s\n",
			r.JobName,
			r.Status,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			completed,
			rows,
			truncate(r.ErrorText, 40),
		)
	}
	return tw.finish()
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

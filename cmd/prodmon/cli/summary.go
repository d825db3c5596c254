package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/odyssey-erp/prodmon/internal/production"
)

// DashboardSource is the read side of the production service.
type DashboardSource interface {
	Dashboard(ctx context.Context, f production.Filter) (production.Dashboard, error)
}

// SummaryOptions defines available flags for the summary command.
type SummaryOptions struct {
	From       string
	To         string
	All        bool
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
	Now        func() time.Time
}

// SummaryReport is the JSON shape printed by the summary command.
type SummaryReport struct {
	Source  production.Source `json:"source"`
	From    string            `json:"from,omitempty"`
	To      string            `json:"to,omitempty"`
	Records int               `json:"records"`
	Totals  production.Totals `json:"totals"`
}

// SummaryCommand fetches the dashboard for a window and prints its totals.
// It exits 10 when the rows came from the fallback set.
func SummaryCommand(ctx context.Context, source DashboardSource, opts SummaryOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	filter, err := summaryFilter(opts)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "summary: %v\n", err)
		return 1
	}
	d, err := source.Dashboard(ctx, filter)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "summary: %v\n", err)
		return 1
	}
	report := SummaryReport{
		Source:  d.Source,
		From:    filter.DateFrom,
		To:      filter.DateTo,
		Records: len(d.Records),
		Totals:  d.Totals,
	}
	if opts.JSONOutput {
		if err := json.NewEncoder(opts.Stdout).Encode(report); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "summary: encode json: %v\n", err)
			return 1
		}
	} else {
		renderSummaryHuman(opts.Stdout, report)
	}
	if d.Source == production.SourceFallback {
		return 10
	}
	return 0
}

func summaryFilter(opts SummaryOptions) (production.Filter, error) {
	if opts.All {
		return production.Filter{}, nil
	}
	from, to := strings.TrimSpace(opts.From), strings.TrimSpace(opts.To)
	if from == "" && to == "" {
		return production.DefaultFilter(opts.Now()), nil
	}
	for _, v := range []string{from, to} {
		if v == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", v); err != nil {
			return production.Filter{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", v)
		}
	}
	if from != "" && to != "" && from > to {
		return production.Filter{}, fmt.Errorf("from %s is after to %s", from, to)
	}
	return production.Filter{DateFrom: from, DateTo: to}, nil
}

func renderSummaryHuman(out io.Writer, r SummaryReport) {
	window := "all dates"
	if r.From != "" || r.To != "" {
		window = orDots(r.From) + " .. " + orDots(r.To)
	}
	_, _ = fmt.Fprintf(out, "Production summary (%s, source %s)\n", window, r.Source)
	_, _ = fmt.Fprintf(out, "  records  %d\n", r.Records)
	_, _ = fmt.Fprintf(out, "  input    %.0f\n", r.Totals.TotalInput)
	_, _ = fmt.Fprintf(out, "  pass     %.0f (%.2f%%)\n", r.Totals.TotalPass, r.Totals.PassRate)
	_, _ = fmt.Fprintf(out, "  ng       %.0f (%.2f%%)\n", r.Totals.TotalNG, r.Totals.NGRate)
	_, _ = fmt.Fprintf(out, "  pending  %.0f (%.2f%%)\n", r.Totals.TotalPending, r.Totals.PendingRate)
}

func orDots(v string) string {
	if v == "" {
		return "..."
	}
	return v
}

// internal/shapes/printer.go
package shapes

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mobs-lab/hubverse-dashboards/internal/models"
)

var rule = strings.Repeat("=", 80)

// Printer writes the sample shapes and the configuration summary.
type Printer struct {
	cfg *models.DashboardConfig
	gen *Generator
	out io.Writer
}

func NewPrinter(cfg *models.DashboardConfig, out io.Writer) *Printer {
	return &Printer{cfg: cfg, gen: NewGenerator(cfg), out: out}
}

// PrintAll writes target-data, model-output and the summary, in that order.
func (p *Printer) PrintAll() {
	p.PrintTargetData()
	p.PrintModelOutput()
	p.PrintSummary()
}

func (p *Printer) heading(title string) {
	fmt.Fprintf(p.out, "\n%s\n%s\n%s\n", rule, title, rule)
}

func (p *Printer) columns(title string, cols []Column) {
	fmt.Fprintln(p.out, title)
	for _, c := range cols {
		fmt.Fprintf(p.out, "  • %-25s (%s)\n", c.Name, c.Description)
	}
}

func (p *Printer) PrintTargetData() {
	s := p.gen.TargetData()
	p.heading("TARGET-DATA Expected Structure")
	fmt.Fprint(p.out, "\nBased on your configuration, your target-data CSV should have these columns:\n\n")
	p.columns("Required Columns:", s.Required)
	if len(s.Optional) > 0 {
		fmt.Fprintln(p.out)
		p.columns("Optional Columns:", s.Optional)
	}
	fmt.Fprintln(p.out, "\nSample Rows (what your CSV should look like):")
	fmt.Fprintln(p.out, RenderTable(s.Headers, s.Rows))
}

func (p *Printer) PrintModelOutput() {
	s := p.gen.ModelOutput()
	p.heading("MODEL-OUTPUT Expected Structure")
	fmt.Fprint(p.out, "\nBased on your configuration, your model-output CSV should have these columns:\n\n")
	p.columns("Required Columns:", s.Required)

	quoted := make([]string, len(s.Expected.Targets))
	for i, t := range s.Expected.Targets {
		quoted[i] = strconv.Quote(t)
	}
	fmt.Fprintln(p.out, "\nExpected Values:")
	fmt.Fprintf(p.out, "  • target: %s\n", strings.Join(quoted, ", "))
	fmt.Fprintf(p.out, "  • horizons: %v\n", s.Expected.Horizons)
	fmt.Fprintf(p.out, "  • output_type: %q\n", s.Expected.OutputType)
	fmt.Fprintf(p.out, "  • output_type_ids: %v\n", s.Expected.OutputTypeIDs)

	fmt.Fprintf(p.out, "\nSample Rows (4 rows per target, %d target(s) = %d rows total):\n", len(p.cfg.Targets), len(s.Rows))
	fmt.Fprintln(p.out, RenderTable(s.Headers, s.Rows))
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func (p *Printer) PrintSummary() {
	p.heading("Configuration Summary")
	w := p.out
	fmt.Fprintf(w, "\n✓ Time Unit: %d days\n", p.cfg.TimeUnit)
	fmt.Fprintf(w, "✓ Horizons: %v\n", p.cfg.Horizons)
	fmt.Fprintf(w, "✓ Forecast Periods: %d standard period(s)\n", len(p.cfg.ForecastPeriods))
	if len(p.cfg.SpecialPeriods) > 0 {
		fmt.Fprintf(w, "✓ Special Periods: %d special period(s)\n", len(p.cfg.SpecialPeriods))
	}
	fmt.Fprintf(w, "✓ Targets: %d modelling task(s)\n", len(p.cfg.Targets))
	for _, t := range p.cfg.Targets {
		fmt.Fprintf(w, "    - %s → %s\n", t.TargetDataKey, t.ModelOutputKey)
	}
	fmt.Fprintf(w, "✓ Models: %d model(s) configured\n", len(p.cfg.Models))
	for _, m := range p.cfg.Models {
		fmt.Fprintf(w, "    - %s\n", m.Name)
	}
	fmt.Fprintf(w, "✓ Prediction Intervals: %d level(s)\n", len(p.cfg.PredictionIntervals))
	for _, pi := range p.cfg.PredictionIntervals {
		fmt.Fprintf(w, "    - %d%% (quantiles: %v)\n", pi.Level, pi.OutputTypeIDs)
	}
	fmt.Fprintf(w, "✓ Single Location Mode: %s\n", yesNo(p.cfg.IsSingleLocation))
	if p.cfg.IsSingleLocation {
		fmt.Fprintf(w, "    Location: %s (%s)\n", p.cfg.SingleLocationMapping, p.cfg.LocationName(p.cfg.SingleLocationMapping))
	} else {
		fmt.Fprintln(w, "    Locations will be auto-detected from your data files")
	}
	fmt.Fprintf(w, "✓ Single Target Mode: %s\n", yesNo(p.cfg.IsSingleTarget))
	fmt.Fprintf(w, "\n%s\n", rule)
}

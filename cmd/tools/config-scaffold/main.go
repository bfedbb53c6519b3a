// cmd/tools/config-scaffold/main.go
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"
	"time"
)

// ScaffoldData fills the config template.
type ScaffoldData struct {
	PeriodID     string
	PeriodName   string
	StartDate    string
	EndDate      string
	TimeUnit     int
	Horizons     []int
	Targets      []TargetData
	Models       []string
	Baseline     string
	TargetLink   string
	ModelLink    string
	SingleLocale string
}

type TargetData struct {
	Key         string
	ModelKey    string
	DisplayName string
}

const configTemplate = `# Hubverse dashboard builder configuration.
# Copy this file to config.yaml and adjust it for your hub.
{{- if or .TargetLink .ModelLink}}
- links_to_hubverse_compatible_data:
    - target_data_link: "{{.TargetLink}}"
    - model_output_link: "{{.ModelLink}}"
{{- end}}
- forecast_periods:
    - {{.PeriodID}}:
        - display_string: "{{.PeriodName}}"
        - start_date: {{.StartDate}}
        - end_date: {{.EndDate}}
        - is_default_selected: true
- special_forecast_periods:
    - last_4_weeks:
        - special_period_id: "last-4-weeks"
        - display_string: "Last 4 Weeks"
        - time_anchor:
            - anchor_on: "{{.PeriodID}}"
            - anchor_mode: "model-output"
            - range_calculation: -4
{{- if .SingleLocale}}
- is_single_location_forecast: true
- single_location_mapping: "{{.SingleLocale}}"
{{- else}}
- is_single_location_forecast: false
{{- end}}
- targets:
{{- range .Targets}}
    - {{.Key}}:
        - corresponding_key_in_model_output_target_column: "{{.ModelKey}}"
        - for_forecast_periods: ["{{$.PeriodID}}", "last-4-weeks"]
        - display_name: "{{.DisplayName}}"
{{- end}}
- time_unit: {{.TimeUnit}}
- horizons: [{{join .Horizons}}]
- target_data_header_mapping:
    - date_col_name: "date"
    - observation_col_name: "value"
    - location_col_name: "location"
    - location_name_col_name: "location_name"
    - target_col_name: "target"
- model_output_data_header_mapping:
    - reference_date_col_name: "reference_date"
    - target_end_date_col_name: "target_end_date"
    - horizon_col_name: "horizon"
    - output_type_col_name: "output_type"
    - output_type_id_col_name: "output_type_id"
    - value_col_name: "value"
- target_data_observation_format: "float"
- target_data_file_format: "csv"
- model_output_data_file_naming_standard: "ISODate"
- available_models:
{{- range .Models}}
    - {{.}}:
        - display_name: "{{.}}"
{{- end}}
- prediction_intervals:
    - 50:
        - uses_output_type_ids: [0.25, 0.75]
    - 95:
        - uses_output_type_ids: [0.025, 0.975]
- evaluations_prediction_intervals:
    - 50:
        - uses_output_type_ids: [0.25, 0.75]
- baseline_model_for_relative_WIS: "{{.Baseline}}"
`

var tmpl = template.Must(template.New("config").Funcs(template.FuncMap{
	"join": func(xs []int) string {
		parts := make([]string, len(xs))
		for i, x := range xs {
			parts[i] = fmt.Sprint(x)
		}
		return strings.Join(parts, ", ")
	},
}).Parse(configTemplate))

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, time.Now))
}

func run(args []string, out io.Writer, now func() time.Time) int {
	fs := flag.NewFlagSet("config-scaffold", flag.ContinueOnError)
	fs.SetOutput(out)
	output := fs.String("out", "config.example.yaml", "file to write; - writes to stdout")
	force := fs.Bool("force", false, "overwrite an existing file")
	modelList := fs.String("models", "hub-baseline,hub-ensemble", "comma-separated model directory names; the first is the WIS baseline")
	targetList := fs.String("targets", "wk inc flu hosp", "comma-separated model-output target names")
	timeUnit := fs.Int("time-unit", 7, "days between forecast dates")
	start := fs.String("start", "", "season start date (default: Aug 1 of the current season)")
	end := fs.String("end", "", "season end date (default: May 31 after start)")
	targetLink := fs.String("target-link", "", "online target-data CSV URL")
	modelLink := fs.String("model-link", "", "online model-output URL containing {model}")
	single := fs.String("single-location", "", "location code for a single-location hub")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	data, err := buildData(now(), *modelList, *targetList, *timeUnit, *start, *end)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return 1
	}
	data.TargetLink, data.ModelLink, data.SingleLocale = *targetLink, *modelLink, *single

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		fmt.Fprintf(out, "Error: failed to render config: %v\n", err)
		return 1
	}

	if *output == "-" {
		_, _ = out.Write(buf.Bytes())
		return 0
	}
	if _, err := os.Stat(*output); err == nil && !*force {
		fmt.Fprintf(out, "Error: %s already exists (use -force to overwrite)\n", *output)
		return 1
	}
	if err := os.WriteFile(*output, buf.Bytes(), 0o644); err != nil {
		fmt.Fprintf(out, "Error: failed to write %s: %v\n", *output, err)
		return 1
	}
	fmt.Fprintf(out, "Wrote %s\n", *output)
	return 0
}

func buildData(now time.Time, modelList, targetList string, timeUnit int, start, end string) (*ScaffoldData, error) {
	modelNames := splitList(modelList)
	if len(modelNames) == 0 {
		return nil, fmt.Errorf("at least one model is required")
	}
	targetNames := splitList(targetList)
	if len(targetNames) == 0 {
		return nil, fmt.Errorf("at least one target is required")
	}
	if timeUnit < 1 {
		return nil, fmt.Errorf("time-unit must be at least 1 day")
	}

	startDate, endDate, err := seasonDates(now, start, end)
	if err != nil {
		return nil, err
	}

	data := &ScaffoldData{
		PeriodID:  fmt.Sprintf("%d-%d", startDate.Year(), endDate.Year()),
		StartDate: startDate.Format("2006-01-02"),
		EndDate:   endDate.Format("2006-01-02"),
		TimeUnit:  timeUnit,
		Horizons:  []int{0, 1, 2, 3},
		Models:    modelNames,
		Baseline:  modelNames[0],
	}
	data.PeriodName = data.PeriodID + " Season"
	for _, t := range targetNames {
		data.Targets = append(data.Targets, TargetData{
			Key:         targetKey(t),
			ModelKey:    t,
			DisplayName: t,
		})
	}
	return data, nil
}

// seasonDates defaults to an August to May respiratory season containing now.
func seasonDates(now time.Time, start, end string) (time.Time, time.Time, error) {
	var startDate, endDate time.Time
	var err error
	if start != "" {
		if startDate, err = time.Parse("2006-01-02", start); err != nil {
			return startDate, endDate, fmt.Errorf("invalid start date %q", start)
		}
	} else {
		year := now.Year()
		if now.Month() < time.August {
			year--
		}
		startDate = time.Date(year, time.August, 1, 0, 0, 0, 0, time.UTC)
	}
	if end != "" {
		if endDate, err = time.Parse("2006-01-02", end); err != nil {
			return startDate, endDate, fmt.Errorf("invalid end date %q", end)
		}
	} else {
		endDate = time.Date(startDate.Year()+1, time.May, 31, 0, 0, 0, 0, time.UTC)
	}
	if startDate.After(endDate) {
		return startDate, endDate, fmt.Errorf("start date %s is after end date %s", startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
	}
	return startDate, endDate, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// targetKey turns "wk inc flu hosp" into the target-data key "wk_inc_flu_hosp".
func targetKey(t string) string {
	return strings.ReplaceAll(t, " ", "_")
}

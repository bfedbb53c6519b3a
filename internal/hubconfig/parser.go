// internal/hubconfig/parser.go
package hubconfig

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/mobs-lab/hubverse-dashboards/internal/common/errors"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/logger"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/validation"
	"github.com/mobs-lab/hubverse-dashboards/internal/models"
	"github.com/mobs-lab/hubverse-dashboards/pkg/locations"
)

// Options tune parsing. The zero value is usable.
type Options struct {
	// LocationNames overrides the embedded FIPS table.
	LocationNames map[string]string
	// ProjectRoot is where local target-data/ and model-output/ are looked
	// for when checking data-source conflicts. Defaults to the config's directory.
	ProjectRoot string
	// Now is the clock used to tell whether an anchor period has ended.
	Now    func() time.Time
	Logger logger.Logger
}

const (
	fieldLinks       = "links_to_hubverse_compatible_data"
	fieldPeriods     = "forecast_periods"
	fieldSpecial     = "special_forecast_periods"
	fieldTargets     = "targets"
	fieldModels      = "available_models"
	fieldIntervals   = "prediction_intervals"
	fieldEvalInts    = "evaluations_prediction_intervals"
	fieldTimeUnit    = "time_unit"
	fieldHorizons    = "horizons"
	fieldBaseline    = "baseline_model_for_relative_WIS"
	fieldSingleLoc   = "single_location_mapping"
	fieldObsFormat   = "target_data_observation_format"
	fieldFileFormat  = "target_data_file_format"
	fieldNamingStd   = "model_output_data_file_naming_standard"
	fieldTargetHdr   = "target_data_header_mapping"
	fieldModelHdr    = "model_output_data_header_mapping"
	fieldDataSource  = "data_source"
	modelPlaceholder = "{model}"
)

// Load reads and validates the config at path. The report is returned
// whenever the YAML could be parsed, even when validation fails, so callers
// can print it.
func Load(path string, opts Options) (*models.DashboardConfig, *Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, apperrors.NewConfigNotFoundError(path)
		}
		return nil, nil, apperrors.NewConfigParseFailedError("failed to read "+path, err)
	}
	if opts.ProjectRoot == "" {
		opts.ProjectRoot = filepath.Dir(path)
	}
	cfg, report, err := Parse(data, opts)
	if cfg != nil {
		cfg.ConfigPath = path
	}
	return cfg, report, err
}

// Parse validates config.yaml content.
func Parse(data []byte, opts Options) (*models.DashboardConfig, *Report, error) {
	items, err := rootItems(data)
	if err != nil {
		return nil, nil, err
	}

	p := &parser{
		items:  items,
		opts:   opts,
		report: &Report{},
		cfg:    &models.DashboardConfig{},
	}
	if p.opts.Now == nil {
		p.opts.Now = time.Now
	}
	if p.opts.Logger == nil {
		p.opts.Logger = logger.NewNoOpLogger()
	}
	if p.opts.LocationNames == nil {
		p.opts.LocationNames = locations.Default()
	}

	p.parse()

	if p.report.HasErrors() {
		return p.cfg, p.report, apperrors.NewConfigValidationFailedError(p.report.ErrorMessages())
	}
	return p.cfg, p.report, nil
}

func rootItems(data []byte) ([]*yaml.Node, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, apperrors.NewConfigParseFailedError("config file is empty", nil)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, apperrors.NewConfigParseFailedError("invalid YAML", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || isNull(doc.Content[0]) {
		return nil, apperrors.NewConfigParseFailedError("config file is empty", nil)
	}
	root := doc.Content[0]
	if root.Kind != yaml.SequenceNode {
		return nil, apperrors.NewConfigParseFailedError("config file must have a list of dictionaries at root level", nil)
	}
	if len(root.Content) == 0 {
		return nil, apperrors.NewConfigParseFailedError("config file is empty", nil)
	}
	return root.Content, nil
}

type parser struct {
	items  []*yaml.Node
	opts   Options
	report *Report
	cfg    *models.DashboardConfig
}

// value returns the first top-level value stored under key.
func (p *parser) value(key string) (*yaml.Node, bool) {
	for _, item := range p.items {
		for _, kv := range mappingPairs(item) {
			if kv.key == key {
				return kv.value, true
			}
		}
	}
	return nil, false
}

// sections returns every top-level value stored under key, in file order.
func (p *parser) sections(key string) []*yaml.Node {
	var out []*yaml.Node
	for _, item := range p.items {
		for _, kv := range mappingPairs(item) {
			if kv.key == key {
				out = append(out, kv.value)
			}
		}
	}
	return out
}

func (p *parser) boolSetting(key string) bool {
	n, _ := p.value(key)
	v, ok := boolValue(n, false)
	if !ok {
		p.report.addError(key, "%s must be true or false (got %q)", key, scalar(n))
	}
	return v
}

func (p *parser) parse() {
	p.parseLinks()

	p.cfg.ForecastPeriods = p.parseForecastPeriods()
	p.cfg.SpecialPeriods = p.parseSpecialPeriods()
	p.validatePeriods()

	p.cfg.IsSingleLocation = p.boolSetting("is_single_location_forecast")
	p.cfg.LocationNames = p.opts.LocationNames
	p.parseSingleLocation()

	p.cfg.IsSingleTarget = p.boolSetting("is_single_forecast_target")
	p.cfg.Targets = p.parseTargets()

	p.parseTimeUnit()
	p.parseHorizons()

	p.cfg.Columns = p.parseColumnMappings()
	p.parseFormats()

	p.cfg.Models = p.parseModels()
	p.assignModelColors()

	p.cfg.PredictionIntervals = p.parseIntervals(fieldIntervals, true)
	p.cfg.EvaluationIntervals = p.parseIntervals(fieldEvalInts, false)

	p.cfg.ModelOutputNamingStandard = "ISODate"
	if n, ok := p.value(fieldNamingStd); ok && scalar(n) != "" {
		p.cfg.ModelOutputNamingStandard = scalar(n)
	}

	p.parseBaseline()
	p.crossCheck()
}

func (p *parser) parseLinks() {
	n, _ := p.value(fieldLinks)
	links := mergeProps(n)
	p.cfg.TargetDataLink = links.str("target_data_link")
	p.cfg.ModelOutputLink = links.str("model_output_link")

	if p.cfg.TargetDataLink != "" && !validation.ValidateURL(p.cfg.TargetDataLink) {
		p.report.addError(fieldLinks, "target_data_link is not a valid URL: %q", p.cfg.TargetDataLink)
	}
	if p.cfg.ModelOutputLink != "" {
		probe := strings.ReplaceAll(p.cfg.ModelOutputLink, modelPlaceholder, "model")
		if !validation.ValidateURL(probe) {
			p.report.addError(fieldLinks, "model_output_link is not a valid URL: %q", p.cfg.ModelOutputLink)
		} else if !strings.Contains(p.cfg.ModelOutputLink, modelPlaceholder) {
			p.report.addWarning(fieldLinks, "model_output_link has no %s placeholder; every model will read the same file", modelPlaceholder)
		}
	}

	hasOnline := p.cfg.TargetDataLink != "" || p.cfg.ModelOutputLink != ""
	if !hasOnline {
		return
	}
	if dirExists(filepath.Join(p.opts.ProjectRoot, "target-data")) || dirExists(filepath.Join(p.opts.ProjectRoot, "model-output")) {
		p.report.addError(fieldDataSource,
			"Both local and online data sources are configured. Please use either local directories "+
				"(target-data/, model-output/) OR online links, not both.")
	}
}

func dirExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (p *parser) parseForecastPeriods() []models.ForecastPeriod {
	var periods []models.ForecastPeriod
	for _, section := range p.sections(fieldPeriods) {
		for _, entry := range entries(section) {
			props := mergeProps(entry.value)

			missing := firstMissing(props, "display_string", "start_date", "end_date")
			if missing != "" {
				p.report.addError(fieldPeriods, "Missing required field in forecast period %s: '%s'", entry.key, missing)
				continue
			}

			id := entry.key
			if v := props.str("forecast_period_id"); v != "" {
				id = v
			}

			start, err := ParseDate(props.str("start_date"))
			if err != nil {
				p.report.addError(fieldPeriods, "Invalid start_date for forecast period %s: %v", id, err)
				continue
			}
			end, err := ParseDate(props.str("end_date"))
			if err != nil {
				p.report.addError(fieldPeriods, "Invalid end_date for forecast period %s: %v", id, err)
				continue
			}

			n, _ := props.get("is_default_selected")
			isDefault, ok := boolValue(n, false)
			if !ok {
				p.report.addError(fieldPeriods, "is_default_selected must be true or false for forecast period %s", id)
			}

			periods = append(periods, models.ForecastPeriod{
				ID:                id,
				DisplayString:     props.str("display_string"),
				Start:             start,
				End:               end,
				IsDefaultSelected: isDefault,
			})
			p.opts.Logger.Debug("Parsed forecast period", map[string]interface{}{"period": id})
		}
	}
	return periods
}

func (p *parser) parseSpecialPeriods() []models.ForecastPeriod {
	var periods []models.ForecastPeriod
	for _, section := range p.sections(fieldSpecial) {
		for _, entry := range entries(section) {
			props := mergeProps(entry.value)

			missing := firstMissing(props, "special_period_id", "display_string")
			if missing != "" {
				p.report.addError(fieldSpecial, "Missing field in special period '%s': '%s'", entry.key, missing)
				continue
			}

			period := models.ForecastPeriod{
				ID:            props.str("special_period_id"),
				DisplayString: props.str("display_string"),
				IsSpecial:     true,
			}
			if anchorNode, ok := props.get("time_anchor"); ok && !isNull(anchorNode) {
				period.Anchor = p.parseAnchor(period.ID, mergeProps(anchorNode))
			} else {
				p.report.addError(fieldSpecial, "Special period '%s' is missing 'time_anchor'.", period.ID)
			}
			periods = append(periods, period)
			p.opts.Logger.Debug("Parsed special period", map[string]interface{}{"period": period.ID})
		}
	}
	return periods
}

// parseAnchor validates a time_anchor block. Static periods must already be parsed.
func (p *parser) parseAnchor(periodID string, anchorProps props) *models.TimeAnchor {
	anchor := &models.TimeAnchor{
		AnchorOn:   anchorProps.str("anchor_on"),
		AnchorMode: anchorProps.str("anchor_mode"),
	}

	rangeNode, present := anchorProps.get("range_calculation")
	switch {
	case !present || isNull(rangeNode):
		p.report.addError(fieldSpecial, "Special period '%s' is missing 'range_calculation' inside 'time_anchor'.", periodID)
	default:
		v, ok := intValue(rangeNode)
		if !ok {
			p.report.addError(fieldSpecial, "Special period '%s' 'range_calculation' must be an integer.", periodID)
		} else if v > 0 {
			p.report.addError(fieldSpecial,
				"Special period '%s' must have a negative 'range_calculation' to look backward in time (got %d).", periodID, v)
		} else {
			anchor.RangeCalculation = v
		}
	}

	if anchor.AnchorOn == "" {
		p.report.addError(fieldSpecial, "Special period '%s' is missing 'anchor_on' inside 'time_anchor'.", periodID)
	}
	if anchor.AnchorMode != models.AnchorModeTargetData && anchor.AnchorMode != models.AnchorModeModelOutput {
		p.report.addError(fieldSpecial,
			"Special period '%s' has invalid 'anchor_mode'. Must be 'target-data' or 'model-output'.", periodID)
	}

	if anchor.AnchorOn != "" {
		var found *models.ForecastPeriod
		for i := range p.cfg.ForecastPeriods {
			if p.cfg.ForecastPeriods[i].ID == anchor.AnchorOn {
				found = &p.cfg.ForecastPeriods[i]
				break
			}
		}
		switch {
		case found == nil:
			p.report.addError(fieldSpecial,
				"Special period '%s' anchors on an undefined forecast period '%s'.", periodID, anchor.AnchorOn)
		case !found.End.After(p.opts.Now()):
			p.report.addWarning(fieldSpecial,
				"Special period '%s' is anchored to a static (non-dynamic) forecast period '%s'. It will not update.",
				periodID, anchor.AnchorOn)
		}
	}
	return anchor
}

func (p *parser) validatePeriods() {
	seenIDs := make(map[string]bool)
	seenDisplay := make(map[string]bool)

	for _, period := range p.cfg.AllPeriods() {
		if seenIDs[period.ID] {
			p.report.addError(fieldPeriods, "Duplicate forecast_period_id: '%s'", period.ID)
		}
		seenIDs[period.ID] = true

		if seenDisplay[period.DisplayString] {
			p.report.addWarning(fieldPeriods, "Duplicate display_string: '%s' (period: %s)", period.DisplayString, period.ID)
		}
		seenDisplay[period.DisplayString] = true

		if !period.IsSpecial && period.Start.After(period.End) {
			p.report.addError(fieldPeriods, "start_date is after end_date for period '%s' (%s > %s)",
				period.ID, period.Start.Format("2006-01-02"), period.End.Format("2006-01-02"))
		}
	}

	var defaults []string
	for _, period := range p.cfg.ForecastPeriods {
		if period.IsDefaultSelected {
			defaults = append(defaults, period.ID)
		}
	}
	if len(defaults) > 1 {
		p.report.addError(fieldPeriods, "Only one forecast period can be set as default. Found: %s", strings.Join(defaults, ", "))
	}
}

func (p *parser) parseSingleLocation() {
	if !p.cfg.IsSingleLocation {
		return
	}
	n, _ := p.value(fieldSingleLoc)
	p.cfg.SingleLocationMapping = scalar(n)

	if p.cfg.SingleLocationMapping == "" {
		p.report.addError(fieldSingleLoc,
			"single_location_mapping is REQUIRED when is_single_location_forecast is True. "+
				"Please specify a US state FIPS code (e.g., '01' for Alabama).")
		return
	}
	if _, ok := p.cfg.LocationNames[p.cfg.SingleLocationMapping]; !ok {
		p.report.addWarning(fieldSingleLoc,
			"Location code '%s' is not a standard US state FIPS code. Dashboard may not display location name correctly.",
			p.cfg.SingleLocationMapping)
	}
}

func (p *parser) parseTargets() []models.TargetConfig {
	var targets []models.TargetConfig
	for _, section := range p.sections(fieldTargets) {
		for _, entry := range entries(section) {
			props := mergeProps(entry.value)

			key := props.str("corresponding_key_in_model_output_target_column")
			if key == "" {
				p.report.addError(fieldTargets,
					"Missing required field in target %s: 'corresponding_key_in_model_output_target_column'", entry.key)
				continue
			}

			n, _ := props.get("for_forecast_periods")
			periods := stringList(n)
			if len(periods) == 0 {
				periods = p.cfg.AllPeriodIDs()
				p.report.addWarning(fieldTargets,
					"Target '%s' missing 'for_forecast_periods', defaulting to all available periods", entry.key)
			}

			display := props.str("display_name")
			if display == "" {
				display = entry.key
			}

			targets = append(targets, models.TargetConfig{
				TargetDataKey:   entry.key,
				ModelOutputKey:  key,
				ForecastPeriods: periods,
				DisplayName:     display,
			})
			p.opts.Logger.Debug("Parsed target", map[string]interface{}{"target": entry.key, "modelOutputKey": key})
		}
	}
	return targets
}

func (p *parser) parseTimeUnit() {
	n, ok := p.value(fieldTimeUnit)
	if !ok || isNull(n) || scalar(n) == "0" {
		p.report.addError(fieldTimeUnit, "time_unit is required in config")
		return
	}
	v, isInt := intValue(n)
	if !isInt {
		p.report.addError(fieldTimeUnit, "time_unit must be an integer number of days (got %q)", scalar(n))
		return
	}
	p.cfg.TimeUnit = v
	if v < 1 {
		p.report.addError(fieldTimeUnit, "time_unit must be at least 1 day (got %d)", v)
	}
	if v > 14 {
		p.report.addWarning(fieldTimeUnit,
			"time_unit is %d days, which is unusually large. Most forecasting hubs use 7 days (weekly) or 1 day (daily).", v)
	}
}

func (p *parser) parseHorizons() {
	n, ok := p.value(fieldHorizons)
	if !ok || isNull(n) || (n.Kind == yaml.SequenceNode && len(n.Content) == 0) {
		p.report.addError(fieldHorizons, "horizons list is required in config")
		return
	}
	horizons, valid := intList(n)
	if !valid {
		p.report.addError(fieldHorizons, "horizons must be a list of integers")
		return
	}
	p.cfg.Horizons = horizons
}

func (p *parser) parseColumnMappings() models.ColumnMapping {
	var target, model props
	for _, section := range p.sections(fieldTargetHdr) {
		for _, kv := range mergeProps(section).keyValues() {
			target.set(kv.key, kv.value)
		}
	}
	for _, section := range p.sections(fieldModelHdr) {
		for _, kv := range mergeProps(section).keyValues() {
			model.set(kv.key, kv.value)
		}
	}

	m := models.DefaultColumnMapping()
	override := func(dst *string, ps props, key string) {
		if v := ps.str(key); v != "" {
			*dst = v
		}
	}
	override(&m.DateCol, target, "date_col_name")
	override(&m.ObservationCol, target, "observation_col_name")
	override(&m.LocationCol, target, "location_col_name")
	override(&m.LocationNameCol, target, "location_name_col_name")
	override(&m.TargetCol, target, "target_col_name")
	override(&m.AsOfCol, target, "as_of_col_name")

	override(&m.ReferenceDateCol, model, "reference_date_col_name")
	override(&m.TargetEndDateCol, model, "target_end_date_col_name")
	override(&m.ModelTargetCol, model, "target_col_name")
	override(&m.HorizonCol, model, "horizon_col_name")
	override(&m.OutputTypeCol, model, "output_type_col_name")
	override(&m.OutputTypeIDCol, model, "output_type_id_col_name")
	override(&m.ValueCol, model, "value_col_name")
	return m
}

func (ps props) keyValues() []pair {
	out := make([]pair, 0, len(ps.keys))
	for _, k := range ps.keys {
		out = append(out, pair{key: k, value: ps.values[k]})
	}
	return out
}

func (p *parser) parseFormats() {
	n, _ := p.value(fieldObsFormat)
	format := scalar(n)
	switch format {
	case "":
		format = "float"
		p.report.addWarning(fieldObsFormat, "target_data_observation_format missing, defaulting to 'float'")
	case "float", "int":
	default:
		p.report.addError(fieldObsFormat, "target_data_observation_format must be 'float' or 'int' (got %q)", format)
	}
	p.cfg.ObservationFormat = format

	n, _ = p.value(fieldFileFormat)
	fileFormat := scalar(n)
	switch fileFormat {
	case "":
		fileFormat = "csv"
	case "csv", "parquet":
	default:
		p.report.addError(fieldFileFormat, "Unsupported target_data_file_format: %s", fileFormat)
	}
	p.cfg.TargetDataFileFormat = fileFormat
}

func (p *parser) parseModels() []models.ModelConfig {
	var out []models.ModelConfig
	for _, section := range p.sections(fieldModels) {
		for _, entry := range entries(section) {
			props := mergeProps(entry.value)
			m := models.ModelConfig{
				Name:        entry.key,
				ColorHex:    props.str("color_hex"),
				DisplayName: props.str("display_name"),
			}
			if m.DisplayName == "" {
				m.DisplayName = m.Name
			}
			if m.ColorHex != "" && !validation.ValidateHexColor(m.ColorHex) {
				p.report.addWarning(fieldModels, "Model '%s' has an invalid color_hex %q", m.Name, m.ColorHex)
			}
			out = append(out, m)
			p.opts.Logger.Debug("Parsed model", map[string]interface{}{"model": m.Name})
		}
	}
	return out
}

func (p *parser) assignModelColors() {
	var missing []string
	for _, m := range p.cfg.Models {
		if m.ColorHex == "" {
			missing = append(missing, m.Name)
		}
	}
	if len(missing) == 0 {
		return
	}
	p.report.addWarning(fieldModels, "%d model(s) missing color_hex, will use default color palette: %s",
		len(missing), strings.Join(missing, ", "))

	idx := 0
	for i := range p.cfg.Models {
		if p.cfg.Models[i].ColorHex == "" {
			p.cfg.Models[i].ColorHex = models.DefaultColorPalette[idx%len(models.DefaultColorPalette)]
			idx++
		}
	}
}

// parseIntervals reads prediction interval levels. Problems are errors when
// required is set and warnings otherwise.
func (p *parser) parseIntervals(field string, required bool) []models.PredictionInterval {
	report := p.report.addWarning
	label := "Invalid evaluation interval"
	if required {
		report = p.report.addError
		label = "Invalid prediction interval"
	}

	var out []models.PredictionInterval
	for _, section := range p.sections(field) {
		for _, entry := range entries(section) {
			level, err := strconv.Atoi(strings.TrimSuffix(entry.key, "%"))
			if err != nil {
				report(field, "%s: level %q is not an integer", label, entry.key)
				continue
			}
			props := mergeProps(entry.value)
			n, ok := props.get("uses_output_type_ids")
			ids := stringList(n)
			if !ok || len(ids) == 0 {
				report(field, "%s: level %d is missing 'uses_output_type_ids'", label, level)
				continue
			}
			if bad := firstNonNumeric(ids); bad != "" {
				report(field, "%s: output type id %q for level %d is not numeric", label, bad, level)
				continue
			}
			models.SortNumeric(ids)
			out = append(out, models.PredictionInterval{Level: level, OutputTypeIDs: ids})
		}
	}
	return out
}

func (p *parser) parseBaseline() {
	n, _ := p.value(fieldBaseline)
	p.cfg.BaselineModel = scalar(n)
	if p.cfg.BaselineModel == "" {
		p.report.addError(fieldBaseline, "baseline_model_for_relative_WIS is REQUIRED for model evaluation calculations")
		return
	}
	names := p.cfg.ModelNames()
	for _, name := range names {
		if name == p.cfg.BaselineModel {
			return
		}
	}
	p.report.addError(fieldBaseline,
		"Baseline model '%s' must be one of the models listed in available_models. Available models: %s",
		p.cfg.BaselineModel, strings.Join(names, ", "))
}

func (p *parser) crossCheck() {
	if len(p.cfg.ForecastPeriods) == 0 && len(p.cfg.SpecialPeriods) == 0 {
		p.report.addError(fieldPeriods, "At least one forecast period must be defined")
	}
	if len(p.cfg.Targets) == 0 {
		p.report.addError(fieldTargets, "At least one target must be defined")
	}
	if len(p.cfg.Models) == 0 {
		p.report.addError(fieldModels, "At least one model must be defined")
	}
	if len(p.cfg.PredictionIntervals) == 0 {
		p.report.addError(fieldIntervals, "At least one prediction interval must be defined")
	}

	known := make(map[string]bool)
	for _, id := range p.cfg.AllPeriodIDs() {
		known[id] = true
	}
	for _, t := range p.cfg.Targets {
		for _, id := range t.ForecastPeriods {
			if !known[id] {
				p.report.addError(fieldTargets, "Target '%s' references undefined forecast period: '%s'", t.TargetDataKey, id)
			}
		}
	}
}

func firstMissing(ps props, keys ...string) string {
	for _, k := range keys {
		if ps.str(k) == "" {
			return k
		}
	}
	return ""
}

func firstNonNumeric(ids []string) string {
	for _, id := range ids {
		if _, err := strconv.ParseFloat(id, 64); err != nil {
			return id
		}
	}
	return ""
}

// ParseDate accepts YYYY-MM-DD, YYYY-MM-DDTHH:MM:SS[Z] and YYYY-MM-DD HH:MM:SS.
// A value that fails every layout is retried on its date part alone.
func ParseDate(s string) (time.Time, error) {
	v := strings.TrimSpace(s)
	v = strings.TrimSuffix(strings.Replace(v, "T", " ", 1), "Z")
	layouts := []string{
		"2006-01-02 15:04:05",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	if fields := strings.Fields(v); len(fields) > 0 {
		if t, err := time.Parse("2006-01-02", fields[0]); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

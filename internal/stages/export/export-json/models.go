// internal/stages/export/export-json/models.go
package exportjson

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/mobs-lab/hubverse-dashboards/internal/models"
)

// File names inside the output directory.
const (
	MetadataFile = "metadata.json"
	ManifestFile = "manifest.json"
)

type Output struct {
	OutputDir string   `json:"outputDir"`
	Files     []string `json:"files"`
}

// PeriodFile is written to periods/<id>.json.
type PeriodFile struct {
	PeriodID      string `json:"periodId"`
	DisplayString string `json:"displayString"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
	IsSpecial     bool   `json:"isSpecial"`

	TargetData        []TargetPoint            `json:"targetData"`
	TargetDataHistory map[string][]TargetPoint `json:"targetDataHistory,omitempty"`

	ModelOutput         *ModelOutputDoc            `json:"modelOutput,omitempty"`
	ModelOutputByTarget map[string]*ModelOutputDoc `json:"modelOutputByTarget,omitempty"`
}

type TargetPoint struct {
	Date         string  `json:"date"`
	Observation  float64 `json:"observation"`
	Location     string  `json:"location,omitempty"`
	LocationName string  `json:"locationName,omitempty"`
	Target       string  `json:"target,omitempty"`
	AsOf         string  `json:"asOf,omitempty"`
}

// ModelOutputDoc holds wide quantile rows, whose keys are the fixed columns
// plus one q-key per quantile, and the remaining long rows.
type ModelOutputDoc struct {
	Quantiles []map[string]interface{} `json:"quantiles"`
	Other     []LongRow                `json:"other"`
}

type LongRow struct {
	ReferenceDate string  `json:"referenceDate"`
	TargetEndDate string  `json:"targetEndDate"`
	Location      string  `json:"location,omitempty"`
	Target        string  `json:"target,omitempty"`
	Horizon       int     `json:"horizon"`
	Model         string  `json:"model"`
	OutputType    string  `json:"outputType"`
	OutputTypeID  string  `json:"outputTypeId"`
	Value         float64 `json:"value"`
}

// Manifest records what a build wrote.
type Manifest struct {
	RunID       string   `json:"runId"`
	GeneratedAt string   `json:"generatedAt"`
	Mode        string   `json:"mode,omitempty"`
	Fingerprint string   `json:"fingerprint,omitempty"`
	Files       []string `json:"files"`
}

// ReadManifest loads the manifest of the last export in outputDir.
func ReadManifest(outputDir string) (*Manifest, error) {
	raw, err := os.ReadFile(filepath.Join(outputDir, ManifestFile))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func toTargetPoints(rows []models.TargetRow) []TargetPoint {
	out := make([]TargetPoint, 0, len(rows))
	for _, r := range rows {
		p := TargetPoint{
			Date:         models.FormatDate(r.Date),
			Observation:  r.Observation,
			Location:     r.Location,
			LocationName: r.LocationName,
			Target:       r.Target,
		}
		if r.AsOf != nil {
			p.AsOf = models.FormatISO(*r.AsOf)
		}
		out = append(out, p)
	}
	return out
}

func toModelOutputDoc(mo *models.ModelOutput) *ModelOutputDoc {
	doc := &ModelOutputDoc{
		Quantiles: make([]map[string]interface{}, 0),
		Other:     make([]LongRow, 0),
	}
	if mo == nil {
		return doc
	}
	for _, q := range mo.Quantiles {
		row := make(map[string]interface{}, len(q.Quantiles)+6)
		row["referenceDate"] = models.FormatDate(q.ReferenceDate)
		row["targetEndDate"] = models.FormatDate(q.TargetEndDate)
		row["horizon"] = q.Horizon
		row["model"] = q.Model
		if q.Location != "" {
			row["location"] = q.Location
		}
		if q.Target != "" {
			row["target"] = q.Target
		}
		for k, v := range q.Quantiles {
			row[k] = v
		}
		doc.Quantiles = append(doc.Quantiles, row)
	}
	for _, r := range mo.Other {
		doc.Other = append(doc.Other, LongRow{
			ReferenceDate: models.FormatDate(r.ReferenceDate),
			TargetEndDate: models.FormatDate(r.TargetEndDate),
			Location:      r.Location,
			Target:        r.Target,
			Horizon:       r.Horizon,
			Model:         r.Model,
			OutputType:    r.OutputType,
			OutputTypeID:  r.OutputTypeID,
			Value:         r.Value,
		})
	}
	return doc
}

func toPeriodFile(p *models.Partition) *PeriodFile {
	f := &PeriodFile{
		PeriodID:      p.Period.ID,
		DisplayString: p.Period.DisplayString,
		StartDate:     models.FormatISO(p.Period.Start),
		EndDate:       models.FormatISO(p.Period.End),
		IsSpecial:     p.Period.IsSpecial,
		TargetData:    toTargetPoints(p.TargetData),
	}
	if len(p.TargetHistory) > 0 {
		f.TargetDataHistory = make(map[string][]TargetPoint, len(p.TargetHistory))
		for asOf, rows := range p.TargetHistory {
			f.TargetDataHistory[asOf] = toTargetPoints(rows)
		}
	}
	if p.ByTarget != nil {
		f.ModelOutputByTarget = make(map[string]*ModelOutputDoc, len(p.ByTarget))
		for target, mo := range p.ByTarget {
			f.ModelOutputByTarget[target] = toModelOutputDoc(mo)
		}
	} else {
		f.ModelOutput = toModelOutputDoc(p.ModelOutput)
	}
	return f
}

package export

import (
	"encoding/json"
	"io"

	"github.com/san-kum/tgisim/internal/sim"
)

// Meta describes the scenario a result came from.
type Meta struct {
	Scenario        string  `json:"scenario"`
	Description     string  `json:"description,omitempty"`
	Mode            string  `json:"mode"`
	Dt              float64 `json:"dt"`
	Duration        float64 `json:"duration"`
	InitialDiameter float64 `json:"initial_diameter"`
}

type ExportData struct {
	Meta
	Steps     int                `json:"steps"`
	Times     []float64          `json:"times"`
	Diameters []float64          `json:"diameters"`
	Exposures []float64          `json:"exposures"`
	Clock     []float64          `json:"time_on_treatment"`
	Active    []bool             `json:"active"`
	Doses     []sim.DoseEvent    `json:"doses"`
	Metrics   map[string]float64 `json:"metrics"`
}

func NewExportData(meta Meta, result *sim.Result) ExportData {
	return ExportData{
		Meta:      meta,
		Steps:     result.Len() - 1,
		Times:     result.Times(),
		Diameters: result.Diameters(),
		Exposures: result.Exposures(),
		Clock:     result.TimeOnTreatment(),
		Active:    result.Active(),
		Doses:     result.Doses(),
		Metrics:   result.Metrics(),
	}
}

func WriteJSON(w io.Writer, meta Meta, result *sim.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(meta, result))
}

package storage

import (
	"encoding/json"
	"io"

	"github.com/LemoMew/FractalPendulum/internal/sim"
)

type ExportData struct {
	Name     string             `json:"name"`
	Dt       float64            `json:"dt"`
	Steps    int                `json:"steps"`
	Times    []float64          `json:"times"`
	States   [][]float64        `json:"states"`
	Energies []float64          `json:"energies"`
	Metrics  map[string]float64 `json:"metrics"`
}

// ExportJSON writes a whole run as one indented JSON document.
func ExportJSON(w io.Writer, info RunInfo, result *sim.Result) error {
	data := ExportData{
		Name:     info.Name,
		Dt:       info.Step.Dt,
		Steps:    result.StepsTaken,
		Times:    result.Times,
		States:   make([][]float64, len(result.States)),
		Energies: make([]float64, len(result.Energies)),
		Metrics:  result.Metrics,
	}
	for i, s := range result.States {
		data.States[i] = s
	}
	for i, e := range result.Energies {
		data.Energies[i] = e.Total
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

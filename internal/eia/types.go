// Package eia fetches monthly facility-fuel generation data from the EIA
// v2 open-data API.
package eia

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// GenerationRow is one raw facility-fuel observation as delivered by the
// feed: one plant, one fuel, one prime mover, one period. The feed is not
// strict about numeric encoding, so measured values arrive through tolerant
// decoders and may be absent.
type GenerationRow struct {
	Period           string
	PlantCode        string
	PlantName        string
	FuelCode         string
	FuelDescription  string
	PrimeMover       string
	State            string
	StateDescription string
	GrossGeneration  *float64
	GenerationUnits  string
}

// rawRow mirrors the wire field names of the facility-fuel dataset.
type rawRow struct {
	Period           flexString `json:"period"`
	PlantCode        flexString `json:"plantCode"`
	PlantName        string     `json:"plantName"`
	Fuel2002         string     `json:"fuel2002"`
	FuelTypeDesc     string     `json:"fuelTypeDescription"`
	PrimeMover       string     `json:"primeMover"`
	State            string     `json:"state"`
	StateDescription string     `json:"stateDescription"`
	GrossGeneration  flexFloat  `json:"gross-generation"`
	GenerationUnits  string     `json:"gross-generation-units"`
}

func (r rawRow) toGenerationRow() GenerationRow {
	return GenerationRow{
		Period:           string(r.Period),
		PlantCode:        string(r.PlantCode),
		PlantName:        r.PlantName,
		FuelCode:         r.Fuel2002,
		FuelDescription:  r.FuelTypeDesc,
		PrimeMover:       r.PrimeMover,
		State:            r.State,
		StateDescription: r.StateDescription,
		GrossGeneration:  r.GrossGeneration.value,
		GenerationUnits:  r.GenerationUnits,
	}
}

// envelope is the EIA v2 response wrapper.
type envelope struct {
	Response struct {
		Total flexString `json:"total"`
		Data  []rawRow   `json:"data"`
	} `json:"response"`
}

// flexString decodes a JSON string or number into a string.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = flexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = flexString(num.String())
	return nil
}

// flexFloat decodes a JSON number, numeric string, or null. Non-numeric
// values decode to nil rather than failing the row.
type flexFloat struct {
	value *float64
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		f.value = nil
		return nil
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(str, 64)
		if err != nil {
			f.value = nil
			return nil
		}
		f.value = &v
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		f.value = nil
		return nil
	}
	f.value = &v
	return nil
}

// Package refdata loads the plant metadata reference table (the EIA-860
// style Power_Plants.csv export) used to attach capacity and location to
// generation records.
package refdata

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gridsage/plantenrich/internal/fetcher"
)

// capacityColumns are the per-fuel nameplate capacity columns carried into
// PlantMeta.CapacityByType when non-zero.
var capacityColumns = []string{
	"Bat_MW", "Bio_MW", "Coal_MW", "Geo_MW", "Hydro_MW", "HydroPS_MW",
	"NG_MW", "Nuclear_MW", "Crude_MW", "Solar_MW", "Wind_MW", "Other_MW",
}

// PlantMeta is one reference-table row keyed by plant code.
type PlantMeta struct {
	PlantCode      int64
	PlantName      string
	UtilityName    string
	StreetAddress  string
	City           string
	State          string
	Zip            string
	Latitude       *float64
	Longitude      *float64
	TotalMW        *float64
	CapacityByType map[string]float64
	PrimarySource  string
	TechDesc       string
	SectorName     string
}

// Address joins the available address components.
func (m PlantMeta) Address() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{m.StreetAddress, m.City, m.State, m.Zip} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Table is the loaded reference table.
type Table struct {
	Plants      map[int64]PlantMeta
	SkippedRows int // rows whose plant code failed numeric coercion
}

// Load parses the reference CSV. Rows with an uncoercible plant code are
// skipped and counted; they only cost the affected plant its metadata match.
func Load(ctx context.Context, r io.Reader) (*Table, error) {
	// Cancel the streamer on early return so its goroutine never blocks.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	headerCh := make(chan []string, 1)
	rowCh, errCh := fetcher.StreamCSV(ctx, r, fetcher.CSVOptions{
		HasHeader: true,
		HeaderCh:  headerCh,
		TrimSpace: true,
	})

	table := &Table{Plants: make(map[int64]PlantMeta)}
	var cols map[string]int

	for row := range rowCh {
		if cols == nil {
			header := <-headerCh
			cols = make(map[string]int, len(header))
			for i, name := range header {
				cols[name] = i
			}
			if _, ok := cols["Plant_Code"]; !ok {
				return nil, eris.New("refdata: missing Plant_Code column")
			}
		}

		get := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return row[idx]
		}

		code, err := strconv.ParseInt(get("Plant_Code"), 10, 64)
		if err != nil {
			table.SkippedRows++
			continue
		}

		meta := PlantMeta{
			PlantCode:     code,
			PlantName:     get("Plant_Name"),
			UtilityName:   get("Utility_Name"),
			StreetAddress: get("Street_Address"),
			City:          get("City"),
			State:         get("State"),
			Zip:           get("Zip"),
			Latitude:      parseFloat(get("Latitude")),
			Longitude:     parseFloat(get("Longitude")),
			TotalMW:       parseFloat(get("Total_MW")),
			PrimarySource: get("PrimSource"),
			TechDesc:      get("tech_desc"),
			SectorName:    get("sector_name"),
		}

		for _, col := range capacityColumns {
			if v := parseFloat(get(col)); v != nil && *v > 0 {
				if meta.CapacityByType == nil {
					meta.CapacityByType = make(map[string]float64)
				}
				meta.CapacityByType[col] = *v
			}
		}

		table.Plants[code] = meta
	}

	if err := <-errCh; err != nil {
		return nil, eris.Wrap(err, "refdata: read table")
	}

	zap.L().Info("refdata: reference table loaded",
		zap.Int("plants", len(table.Plants)),
		zap.Int("skipped_rows", table.SkippedRows),
	)
	return table, nil
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

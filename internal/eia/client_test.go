package eia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridsage/plantenrich/internal/fetcher"
)

func testFetcher() fetcher.Fetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{Timeout: 5 * time.Second, MaxRetries: 1})
}

func TestFacilityFuel_SinglePage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "monthly", r.URL.Query().Get("frequency"))
		assert.Equal(t, "gross-generation", r.URL.Query().Get("data[0]"))
		assert.Equal(t, "2025-02", r.URL.Query().Get("start"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))

		fmt.Fprint(w, `{"response": {"total": "2", "data": [
			{"period":"2025-02","plantCode":"3","plantName":"Barry","fuel2002":"NG",
			 "fuelTypeDescription":"Natural Gas","primeMover":"CA","state":"AL",
			 "stateDescription":"Alabama","gross-generation":"1051677.2",
			 "gross-generation-units":"megawatthours"},
			{"period":"2025-02","plantCode":7,"plantName":"Gadsden","fuel2002":"ALL",
			 "fuelTypeDescription":"All Fuels","primeMover":"ALL","state":"AL",
			 "stateDescription":"Alabama","gross-generation":null,
			 "gross-generation-units":"megawatthours"}
		]}}`)
	}))
	defer srv.Close()

	c := NewClient(testFetcher(), srv.URL, "test-key", 5000)
	rows, err := c.FacilityFuel(context.Background(), "2025-02")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "3", rows[0].PlantCode)
	assert.Equal(t, "Barry", rows[0].PlantName)
	require.NotNil(t, rows[0].GrossGeneration)
	assert.InDelta(t, 1051677.2, *rows[0].GrossGeneration, 0.001)

	// Numeric plant code and null generation both decode tolerantly.
	assert.Equal(t, "7", rows[1].PlantCode)
	assert.Nil(t, rows[1].GrossGeneration)
	assert.Equal(t, "ALL", rows[1].FuelCode)
}

func TestFacilityFuel_Paginates(t *testing.T) {
	pageRows := func(n, start int) []map[string]any {
		rows := make([]map[string]any, n)
		for i := range n {
			rows[i] = map[string]any{
				"period":           "2025-02",
				"plantCode":        fmt.Sprint(start + i),
				"plantName":        fmt.Sprintf("Plant %d", start+i),
				"gross-generation": 100.0,
			}
		}
		return rows
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset := r.URL.Query().Get("offset")
		var data []map[string]any
		if offset == "0" {
			data = pageRows(2, 0)
		} else {
			data = pageRows(1, 2)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"response": map[string]any{"total": "3", "data": data},
		})
	}))
	defer srv.Close()

	c := NewClient(testFetcher(), srv.URL, "test-key", 2)
	rows, err := c.FacilityFuel(context.Background(), "2025-02")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, "Plant 2", rows[2].PlantName)
}

func TestFacilityFuel_MissingKey(t *testing.T) {
	c := NewClient(testFetcher(), "http://localhost:0", "", 10)
	_, err := c.FacilityFuel(context.Background(), "2025-02")
	assert.Error(t, err)
}

func TestFlexFloat_NonNumericString(t *testing.T) {
	var row rawRow
	require.NoError(t, json.Unmarshal([]byte(`{"gross-generation": "W"}`), &row))
	assert.Nil(t, row.GrossGeneration.value)
}

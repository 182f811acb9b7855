package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gridsage/plantenrich/internal/config"
	"github.com/gridsage/plantenrich/internal/eia"
	"github.com/gridsage/plantenrich/internal/model"
	"github.com/gridsage/plantenrich/pkg/anthropic"
)

const testMetadataCSV = `Plant_Code,Plant_Name,Utility_Name,Street_Address,City,State,Zip,Latitude,Longitude,Total_MW,NG_MW,Nuclear_MW
3,Barry,Alabama Power Co,North Highway 43,Bucks,AL,36512,31.0069,-88.0103,2657.2,2282.2,
46,Browns Ferry,Tennessee Valley Authority,Shaw Road,Athens,AL,35611,34.7043,-87.1189,3951.8,,3951.8
`

func testFeedRows() []eia.GenerationRow {
	return []eia.GenerationRow{
		// Sentinel row the cleaner must drop.
		{PlantCode: "99998", PlantName: "Alabama Total", FuelCode: "ALL", FuelDescription: "All Fuels", PrimeMover: "ALL", State: "AL", Period: "2025-02", GrossGeneration: floatPtr(999999)},
		{PlantCode: "3", PlantName: "Barry", FuelCode: "NG", FuelDescription: "Natural Gas", PrimeMover: "CC", State: "AL", Period: "2025-02", GrossGeneration: floatPtr(1000000)},
		{PlantCode: "46", PlantName: "Browns Ferry", FuelCode: "NUC", FuelDescription: "Nuclear", PrimeMover: "ST", State: "AL", Period: "2025-02", GrossGeneration: floatPtr(2500000)},
		// No metadata row exists for this one.
		{PlantCode: "777", PlantName: "Orphan Wind", FuelCode: "WND", FuelDescription: "Wind", PrimeMover: "WT", State: "TX", Period: "2025-02", GrossGeneration: floatPtr(40000)},
	}
}

func TestPipelineRun_EndToEnd(t *testing.T) {
	feed := new(mockFeed)
	feed.On("FacilityFuel", mock.Anything, "2025-02").Return(testFeedRows(), nil).Once()

	client := new(mockAnthropicClient)
	client.On("CreateMessage", mock.Anything, mock.AnythingOfType("anthropic.MessageRequest")).
		Return(&anthropic.MessageResponse{
			Content:    []anthropic.ContentBlock{{Type: "text", Text: `{"Browns Ferry": "Normal", "Barry": "Normal"}`}},
			StopReason: "end_turn",
			Usage:      anthropic.TokenUsage{InputTokens: 500, OutputTokens: 80},
		}, nil).Once()

	st := new(mockStore)
	st.On("SaveRun", mock.Anything, mock.AnythingOfType("*store.Run"), mock.AnythingOfType("[]model.PlantRecord")).
		Return(nil).Once()

	orch := NewOrchestrator(client, "claude-haiku-4-5-20251001", config.ClassifyConfig{BatchSize: 25})
	p := New(feed, stringSource{csv: testMetadataCSV}, orch, st)

	result, err := p.Run(context.Background(), "2025-02", model.AllFilter(), 0)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.NotEmpty(t, result.RunID)
	require.Len(t, result.Records, 3) // sentinel row removed

	// Sorted by generation: Browns Ferry, Barry, Orphan Wind.
	bf := result.Records[0]
	assert.Equal(t, "Browns Ferry", bf.PlantName)
	assert.True(t, bf.MetadataMatched)
	require.NotNil(t, bf.CapacityFactorPercent)
	// 2,500,000 / (3,951.8 × 672) × 100
	assert.InDelta(t, 94.14, *bf.CapacityFactorPercent, 0.01)
	assert.Equal(t, "Normal", bf.ClassificationFlag)
	assert.Equal(t, model.FlagSourceClassifier, bf.FlagSource)

	orphan := result.Records[2]
	assert.Equal(t, "Orphan Wind", orphan.PlantName)
	assert.False(t, orphan.MetadataMatched)
	assert.Nil(t, orphan.CapacityFactorPercent)
	// No capacity factor: never submitted, flagged by the fallback.
	assert.Equal(t, model.FlagNoData, orphan.ClassificationFlag)
	assert.Equal(t, model.FlagSourceFallback, orphan.FlagSource)

	s := result.Summary
	assert.Equal(t, "2025-02", s.Period)
	assert.Equal(t, "all", s.Filter)
	assert.Equal(t, 4, s.RawRecords)
	assert.Equal(t, 1, s.RemovedSentinel)
	assert.Equal(t, 3, s.AggregatedPlants)
	assert.Equal(t, 2, s.MetadataMatched)
	assert.Equal(t, 1, s.MetadataUnmatched)
	assert.Equal(t, 2, s.CapacityComputed)
	assert.Equal(t, 3, s.FilteredRecords)
	assert.Equal(t, 2, s.ClassifierFlags)
	assert.Equal(t, 1, s.FallbackFlags)

	feed.AssertExpectations(t)
	client.AssertExpectations(t)
	st.AssertExpectations(t)
}

func TestPipelineRun_GeographicFilterApplied(t *testing.T) {
	feed := new(mockFeed)
	feed.On("FacilityFuel", mock.Anything, "2025-02").Return(testFeedRows(), nil).Once()

	client := new(mockAnthropicClient)
	client.On("CreateMessage", mock.Anything, mock.AnythingOfType("anthropic.MessageRequest")).
		Return(&anthropic.MessageResponse{
			Content: []anthropic.ContentBlock{{Type: "text", Text: `{"Browns Ferry": "Normal", "Barry": "Normal"}`}},
		}, nil).Once()

	spec, unmatched, err := model.ParseFilterSpec("", []string{"AL", "XX"})
	require.NoError(t, err)
	require.Len(t, unmatched, 1)

	orch := NewOrchestrator(client, "claude-haiku-4-5-20251001", config.ClassifyConfig{BatchSize: 25})
	p := New(feed, stringSource{csv: testMetadataCSV}, orch, nil) // no store

	result, err := p.Run(context.Background(), "2025-02", spec, len(unmatched))

	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	for _, rec := range result.Records {
		assert.Equal(t, "AL", rec.StateCode)
	}
	assert.Equal(t, "states:AL", result.Summary.Filter)
	assert.Equal(t, 1, result.Summary.UnmatchedCodes)
	assert.Equal(t, 2, result.Summary.FilteredRecords)
}

func TestPipelineRun_FeedFailure(t *testing.T) {
	feed := new(mockFeed)
	feed.On("FacilityFuel", mock.Anything, "2025-02").Return(nil, errors.New("503 from upstream"))

	orch := NewOrchestrator(new(mockAnthropicClient), "claude-haiku-4-5-20251001", config.ClassifyConfig{})
	p := New(feed, stringSource{csv: testMetadataCSV}, orch, nil)

	_, err := p.Run(context.Background(), "2025-02", model.AllFilter(), 0)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "generation snapshot")
}

func TestPipelineRun_StoreFailureIsFatal(t *testing.T) {
	feed := new(mockFeed)
	feed.On("FacilityFuel", mock.Anything, "2025-02").Return(testFeedRows(), nil).Once()

	client := new(mockAnthropicClient)
	client.On("CreateMessage", mock.Anything, mock.AnythingOfType("anthropic.MessageRequest")).
		Return(&anthropic.MessageResponse{
			Content: []anthropic.ContentBlock{{Type: "text", Text: `{"Browns Ferry": "Normal", "Barry": "Normal"}`}},
		}, nil).Once()

	st := new(mockStore)
	st.On("SaveRun", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

	orch := NewOrchestrator(client, "claude-haiku-4-5-20251001", config.ClassifyConfig{BatchSize: 25})
	p := New(feed, stringSource{csv: testMetadataCSV}, orch, st)

	_, err := p.Run(context.Background(), "2025-02", model.AllFilter(), 0)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "persist run")
}

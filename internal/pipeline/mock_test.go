package pipeline

import (
	"context"
	"io"
	"strings"

	"github.com/stretchr/testify/mock"

	"github.com/gridsage/plantenrich/internal/eia"
	"github.com/gridsage/plantenrich/internal/model"
	"github.com/gridsage/plantenrich/internal/refdata"
	"github.com/gridsage/plantenrich/internal/store"
	"github.com/gridsage/plantenrich/pkg/anthropic"
)

// --- Anthropic Mock ---

type mockAnthropicClient struct {
	mock.Mock
}

func (m *mockAnthropicClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

// --- Feed Mock ---

type mockFeed struct {
	mock.Mock
}

func (m *mockFeed) FacilityFuel(ctx context.Context, period string) ([]eia.GenerationRow, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]eia.GenerationRow), args.Error(1)
}

// --- Metadata Source Mock ---

type stringSource struct {
	csv string
}

func (s stringSource) Open(_ context.Context) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(s.csv)), nil
}

// --- Store Mock ---

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Migrate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockStore) SaveRun(ctx context.Context, run *store.Run, records []model.PlantRecord) error {
	args := m.Called(ctx, run, records)
	return args.Error(0)
}

func (m *mockStore) GetRun(ctx context.Context, runID string) (*store.Run, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Run), args.Error(1)
}

func (m *mockStore) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Run), args.Error(1)
}

func (m *mockStore) GetRecords(ctx context.Context, runID string) ([]model.PlantRecord, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PlantRecord), args.Error(1)
}

func (m *mockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// --- Shared record helpers ---

func floatPtr(v float64) *float64 { return &v }

func testRecord(name, fuel, state string, cf float64) model.PlantRecord {
	return model.PlantRecord{
		PlantName:             name,
		FuelType:              fuel,
		StateCode:             state,
		CapacityFactorPercent: floatPtr(cf),
		PlantCapacityMW:       floatPtr(100),
		TotalGenerationMWh:    floatPtr(10000),
	}
}

// --- Ensure interface compliance ---
var (
	_ anthropic.Client = (*mockAnthropicClient)(nil)
	_ Feed             = (*mockFeed)(nil)
	_ refdata.Source   = stringSource{}
	_ store.Store      = (*mockStore)(nil)
)

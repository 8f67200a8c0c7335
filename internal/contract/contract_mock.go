package contract

import (
	"context"

	"github.com/benchboard/benchboard/schema"
	"github.com/stretchr/testify/mock"
)

// MockSystemStore is a mock implementation of SystemStore for testing.
type MockSystemStore struct {
	mock.Mock
}

var _ SystemStore = &MockSystemStore{} // Compile-time check

// CreateSystem implements the SystemStore interface.
func (m *MockSystemStore) CreateSystem(ctx context.Context, sys schema.System, outputs []schema.SystemOutput) (schema.System, error) {
	args := m.Called(ctx, sys, outputs)
	return args.Get(0).(schema.System), args.Error(1)
}

// GetSystem implements the SystemStore interface.
func (m *MockSystemStore) GetSystem(ctx context.Context, systemID string) (schema.System, error) {
	args := m.Called(ctx, systemID)
	return args.Get(0).(schema.System), args.Error(1)
}

// FindSystems implements the SystemStore interface.
func (m *MockSystemStore) FindSystems(ctx context.Context, query schema.SystemQuery) ([]schema.System, int, error) {
	args := m.Called(ctx, query)
	systems, _ := args.Get(0).([]schema.System)
	return systems, args.Int(1), args.Error(2)
}

// GetSystemOutputs implements the SystemStore interface.
func (m *MockSystemStore) GetSystemOutputs(ctx context.Context, systemID string, outputIDs []string, limit int) ([]schema.SystemOutput, error) {
	args := m.Called(ctx, systemID, outputIDs, limit)
	outputs, _ := args.Get(0).([]schema.SystemOutput)
	return outputs, args.Error(1)
}

// DeleteSystem implements the SystemStore interface.
func (m *MockSystemStore) DeleteSystem(ctx context.Context, systemID string) error {
	args := m.Called(ctx, systemID)
	return args.Error(0)
}

// GetStatus implements the SystemStore interface.
func (m *MockSystemStore) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Close implements the SystemStore interface.
func (m *MockSystemStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ StoreManager = &MockStoreManager{} // Compile-time check

// GetSystemStore implements the StoreManager interface.
func (m *MockStoreManager) GetSystemStore() SystemStore {
	ret := m.Called()
	store, _ := ret.Get(0).(SystemStore)
	return store
}

// MockConfigLoader is a mock implementation of ConfigLoader for testing.
type MockConfigLoader struct {
	mock.Mock
}

var _ ConfigLoader = &MockConfigLoader{} // Compile-time check

// Load implements the ConfigLoader interface.
func (m *MockConfigLoader) Load(ctx context.Context, benchmarkID string) (*schema.BenchmarkConfig, error) {
	args := m.Called(ctx, benchmarkID)
	cfg, _ := args.Get(0).(*schema.BenchmarkConfig)
	return cfg, args.Error(1)
}

// List implements the ConfigLoader interface.
func (m *MockConfigLoader) List(ctx context.Context) ([]*schema.BenchmarkConfig, error) {
	args := m.Called(ctx)
	cfgs, _ := args.Get(0).([]*schema.BenchmarkConfig)
	return cfgs, args.Error(1)
}

// Package mocks provides mock implementations of core interfaces for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"viralcut/internal/types"
)

// MockChatCompleter is a mock implementation of types.ChatCompleter
type MockChatCompleter struct {
	mock.Mock
}

func (m *MockChatCompleter) ChatCompletion(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	args := m.Called(ctx, systemPrompt, userPrompt)
	return args.String(0), args.Error(1)
}

// MockViralAnalyzer is a mock implementation of types.ViralAnalyzer
type MockViralAnalyzer struct {
	mock.Mock
}

func (m *MockViralAnalyzer) AnalyzeVideo(ctx context.Context, req types.AnalysisRequest) (*types.ViralAnalysis, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ViralAnalysis), args.Error(1)
}

func (m *MockViralAnalyzer) Model() string {
	args := m.Called()
	return args.String(0)
}

// MockAccountChecker is a mock implementation of types.AccountChecker
type MockAccountChecker struct {
	mock.Mock
}

func (m *MockAccountChecker) IsPremium(ctx context.Context, accountRef string) (bool, error) {
	args := m.Called(ctx, accountRef)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountChecker) MaxDuration(ctx context.Context, accountRef string) (float64, error) {
	args := m.Called(ctx, accountRef)
	return args.Get(0).(float64), args.Error(1)
}

package matchsvc

import (
	"context"
)

// MockClient is a mock matcher client for testing
type MockClient struct {
	suggestions map[string][]Suggestion // lookup key -> suggestions
	findErr     error
}

// MockOption configures the mock client
type MockOption func(*MockClient)

// WithSuggestions sets the suggestions to return for a name/position pair
func WithSuggestions(name, position string, suggestions []Suggestion) MockOption {
	return func(m *MockClient) {
		m.suggestions[mockKey(name, position)] = suggestions
	}
}

// WithFindError sets an error to return from FindSimilar
func WithFindError(err error) MockOption {
	return func(m *MockClient) {
		m.findErr = err
	}
}

// NewMockClient creates a new mock matcher client. With no options it
// returns no suggestions for every lookup.
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{
		suggestions: make(map[string][]Suggestion),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// FindSimilar returns the configured suggestions for name and position
func (m *MockClient) FindSimilar(ctx context.Context, name, position string) ([]Suggestion, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.suggestions[mockKey(name, position)], nil
}

func mockKey(name, position string) string {
	return position + "|" + name
}

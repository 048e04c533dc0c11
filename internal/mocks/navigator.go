package mocks

import "sync"

// MockNavigator records navigation requests.
type MockNavigator struct {
	NavigateFn func(path string)

	mu    sync.Mutex
	paths []string
}

// Navigate implements the taskform.Navigator interface
func (m *MockNavigator) Navigate(path string) {
	m.mu.Lock()
	m.paths = append(m.paths, path)
	m.mu.Unlock()

	if m.NavigateFn != nil {
		m.NavigateFn(path)
	}
}

// Paths returns every path navigated to, in order.
func (m *MockNavigator) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.paths...)
}

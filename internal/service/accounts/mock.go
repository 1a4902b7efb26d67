package accounts

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const (
	mockDuplicateEmail = "Email déjà utilisé"
	mockBadCredentials = "Identifiants incorrects."
)

type mockAccount struct {
	id       string
	password string
	role     Role
}

// MockService implements Service in memory. It rejects duplicate emails the way
// the real service does, and is used by tests and the CLI's dry-run mode.
type MockService struct {
	mu       sync.Mutex
	accounts map[string]mockAccount
	calls    map[string]int
	lastReg  *ProviderRegistration
	// Err, when set, is returned by every call instead of the in-memory result.
	Err error
}

// NewMockService creates an empty mock.
func NewMockService() *MockService {
	return &MockService{
		accounts: make(map[string]mockAccount),
		calls:    make(map[string]int),
	}
}

func (m *MockService) RegisterProvider(_ context.Context, reg ProviderRegistration) (*Ack, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["RegisterProvider"]++
	if m.Err != nil {
		return nil, m.Err
	}
	if _, err := toWireProvider(reg); err != nil {
		return nil, err
	}
	r := reg
	m.lastReg = &r
	return m.createLocked(reg.Email, reg.Password, RoleProvider)
}

func (m *MockService) RegisterClient(_ context.Context, reg ClientRegistration) (*Ack, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["RegisterClient"]++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.createLocked(reg.Email, reg.Password, RoleClient)
}

func (m *MockService) Login(_ context.Context, creds Credentials) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["Login"]++
	if m.Err != nil {
		return nil, m.Err
	}
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	acc, ok := m.accounts[email]
	if !ok || acc.password != creds.Password {
		return nil, &UpstreamError{
			Kind:          UpstreamErrorKindRejected,
			Status:        http.StatusUnauthorized,
			ServerMessage: mockBadCredentials,
			cause:         ErrRejected,
		}
	}
	return &Session{
		Token:  "mock-token-" + acc.id,
		UserID: acc.id,
		Email:  email,
		Role:   acc.role,
	}, nil
}

// Calls returns how many times the named method was invoked.
func (m *MockService) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// LastProviderRegistration returns the last provider payload received.
func (m *MockService) LastProviderRegistration() (ProviderRegistration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastReg == nil {
		return ProviderRegistration{}, false
	}
	return *m.lastReg, true
}

func (m *MockService) createLocked(email, password string, role Role) (*Ack, error) {
	key := strings.ToLower(strings.TrimSpace(email))
	if _, exists := m.accounts[key]; exists {
		return nil, &UpstreamError{
			Kind:          UpstreamErrorKindRejected,
			Status:        http.StatusBadRequest,
			ServerMessage: mockDuplicateEmail,
			cause:         ErrRejected,
		}
	}
	id := uuid.NewString()
	m.accounts[key] = mockAccount{id: id, password: password, role: role}
	return &Ack{Status: http.StatusCreated, UserID: id}, nil
}

// Compile-time interface check
var _ Service = (*MockService)(nil)

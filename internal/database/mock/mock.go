package mock

import (
	"context"
	"sync"
	"time"

	"github.com/smartbrain/smartbrain/internal/database"
)

var _ database.DB = (*MockDB)(nil)

// MockDB is a mock implementation of database.DB for testing.
type MockDB struct {
	mu sync.RWMutex

	logins     map[string]*database.Login // key: email
	users      map[uint]*database.User
	nextUserID uint

	// Error simulation
	CreateUserError       error
	GetLoginByEmailError  error
	GetUserByEmailError   error
	GetUserByIDError      error
	IncrementEntriesError error
}

// NewMockDB creates a new MockDB instance.
func NewMockDB() *MockDB {
	return &MockDB{
		logins:     make(map[string]*database.Login),
		users:      make(map[uint]*database.User),
		nextUserID: 1,
	}
}

func (m *MockDB) CreateUser(_ context.Context, name, email, hash string) (*database.User, error) {
	if m.CreateUserError != nil {
		return nil, m.CreateUserError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.logins[email]; ok {
		return nil, database.ErrDuplicateEmail
	}
	for _, u := range m.users {
		if u.Email == email {
			return nil, database.ErrDuplicateEmail
		}
	}

	m.logins[email] = &database.Login{Email: email, Hash: hash}
	user := &database.User{
		ID:      m.nextUserID,
		Name:    name,
		Email:   email,
		Entries: 0,
		Joined:  time.Now(),
	}
	m.users[user.ID] = user
	m.nextUserID++

	cp := *user
	return &cp, nil
}

func (m *MockDB) GetLoginByEmail(_ context.Context, email string) (*database.Login, error) {
	if m.GetLoginByEmailError != nil {
		return nil, m.GetLoginByEmailError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	login, ok := m.logins[email]
	if !ok {
		return nil, database.ErrLoginNotFound
	}
	cp := *login
	return &cp, nil
}

func (m *MockDB) GetUserByEmail(_ context.Context, email string) (*database.User, error) {
	if m.GetUserByEmailError != nil {
		return nil, m.GetUserByEmailError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, database.ErrUserNotFound
}

func (m *MockDB) GetUserByID(_ context.Context, id uint) (*database.User, error) {
	if m.GetUserByIDError != nil {
		return nil, m.GetUserByIDError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, database.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (m *MockDB) IncrementEntries(_ context.Context, id uint) (*database.User, error) {
	if m.IncrementEntriesError != nil {
		return nil, m.IncrementEntriesError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return nil, database.ErrUserNotFound
	}
	user.Entries++
	cp := *user
	return &cp, nil
}

// DeleteLogin removes a login row without touching the user row. Used to
// simulate inconsistent state in tests.
func (m *MockDB) DeleteLogin(email string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.logins, email)
}

// DeleteUser removes a user row without touching the login row.
func (m *MockDB) DeleteUser(id uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
}

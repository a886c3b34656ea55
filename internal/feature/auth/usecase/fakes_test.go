package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"taskandtime_backend/internal/feature/auth/domain/entity"
)

// memUsers is an in-memory UserRepository that enforces email uniqueness
// the same way the database index does.
type memUsers struct {
	mu     sync.Mutex
	nextID uint
	byID   map[uint]entity.User

	// CreateFunc overrides Create when set.
	CreateFunc func(user *entity.User) error
	// FindByEmailFunc overrides FindByEmail when set.
	FindByEmailFunc func(email string) (*entity.User, error)
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[uint]entity.User{}}
}

func (m *memUsers) emailTaken(email string, except uint) bool {
	for id, u := range m.byID {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}

func (m *memUsers) Create(ctx context.Context, user *entity.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.emailTaken(user.Email, 0) {
		return ErrEmailAlreadyExists
	}
	m.nextID++
	user.ID = m.nextID
	m.byID[user.ID] = *user
	return nil
}

func (m *memUsers) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(email)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *memUsers) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (m *memUsers) FindAll(ctx context.Context) ([]entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.User, 0, len(m.byID))
	for _, u := range m.byID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memUsers) Save(ctx context.Context, user *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.emailTaken(user.Email, user.ID) {
		return ErrEmailAlreadyExists
	}
	m.byID[user.ID] = *user
	return nil
}

func (m *memUsers) Delete(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
	return nil
}

func (m *memUsers) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

// memLedger is an in-memory TokenRepository.
type memLedger struct {
	mu     sync.Mutex
	tokens []*entity.AccessToken

	// RotateErr is returned by RotateForUser when set, before anything changes.
	RotateErr error
	rotations int
}

func (m *memLedger) FindValidByUserID(ctx context.Context, userID uint) ([]*entity.AccessToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.AccessToken
	for _, t := range m.tokens {
		if t.UserID == userID && t.IsValid() {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memLedger) FindByToken(ctx context.Context, raw string) (*entity.AccessToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens {
		if t.Token == raw {
			cp := *t
			return &cp, nil
		}
	}
	return nil, ErrTokenNotFound
}

func (m *memLedger) RotateForUser(ctx context.Context, userID uint, token *entity.AccessToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RotateErr != nil {
		return m.RotateErr
	}
	m.rotations++
	for _, t := range m.tokens {
		if t.UserID == userID && t.IsValid() {
			t.Retire()
		}
	}
	token.ID = uint(len(m.tokens) + 1)
	stored := *token
	m.tokens = append(m.tokens, &stored)
	return nil
}

func (m *memLedger) RevokeAllByUserID(ctx context.Context, userID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, t := range m.tokens {
		if t.UserID == userID && t.IsValid() {
			t.Retire()
			n++
		}
	}
	return n, nil
}

func (m *memLedger) Revoke(ctx context.Context, raw string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens {
		if t.Token == raw {
			t.Retire()
			return nil
		}
	}
	return ErrTokenNotFound
}

func (m *memLedger) seed(tokens ...*entity.AccessToken) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = append(m.tokens, tokens...)
}

func (m *memLedger) get(raw string) *entity.AccessToken {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens {
		if t.Token == raw {
			return t
		}
	}
	return nil
}

// mockJWTGenerator is a mock implementation of JWTGenerator interface.
// By default it returns "token-1", "token-2", ... and records the last role.
type mockJWTGenerator struct {
	GenerateTokenFunc func(userID uint, email, role string) (string, error)
	issued            int
	lastRole          string
}

func (m *mockJWTGenerator) GenerateToken(userID uint, email, role string) (string, error) {
	if m.GenerateTokenFunc != nil {
		return m.GenerateTokenFunc(userID, email, role)
	}
	m.issued++
	m.lastRole = role
	return fmt.Sprintf("token-%d", m.issued), nil
}

// mockAuthenticator is a mock implementation of Authenticator.
type mockAuthenticator struct {
	AuthenticateFunc func(email, password string) error
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, email, password string) error {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(email, password)
	}
	return nil
}

// failingHasher always fails to hash.
type failingHasher struct{ err error }

func (f failingHasher) Hash(string) (string, error) { return "", f.err }

func (f failingHasher) Verify(string, string) bool { return false }

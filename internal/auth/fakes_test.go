package auth

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"go.uber.org/goleak"

	"github.com/redmonkez12/go-blog-auth/internal/logging"
	"github.com/redmonkez12/go-blog-auth/internal/token"
	"github.com/redmonkez12/go-blog-auth/internal/user"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// memStore is an in-process token.Store
type memStore struct {
	mu        sync.Mutex
	data      map[string][]byte
	ttls      map[string]time.Duration
	deleteErr error
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (s *memStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, token.ErrNotFound
	}
	return v, nil
}

func (s *memStore) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	s.ttls[key] = ttl
	return nil
}

func (s *memStore) Delete(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return 0, s.deleteErr
	}
	if _, ok := s.data[key]; !ok {
		return 0, nil
	}
	delete(s.data, key)
	return 1, nil
}

func (s *memStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

func (s *memStore) put(key string, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = []byte(value)
}

// fakeUsers is an in-process UserRepository with a unique email constraint
type fakeUsers struct {
	mu        sync.Mutex
	nextID    int64
	byID      map[int64]*user.User
	createErr error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{nextID: 1, byID: map[int64]*user.User{}}
}

func (f *fakeUsers) add(u *user.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[u.ID] = u
	if u.ID >= f.nextID {
		f.nextID = u.ID + 1
	}
}

func (f *fakeUsers) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

func (f *fakeUsers) Create(_ context.Context, name, email, passwordHash, avatarURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			return user.ErrDuplicateEmail
		}
	}
	f.byID[f.nextID] = &user.User{ID: f.nextID, Name: name, Email: email, PasswordHash: passwordHash, AvatarURL: avatarURL}
	f.nextID++
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrNotFound
}

func (f *fakeUsers) List(_ context.Context) ([]*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*user.User, 0, len(f.byID))
	for id := f.nextID - 1; id > 0; id-- {
		if u, ok := f.byID[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeUsers) Update(_ context.Context, id int64, fields user.UpdateFields) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return user.ErrNotFound
	}
	if fields.Name != nil {
		u.Name = *fields.Name
	}
	if fields.PasswordHash != nil {
		u.PasswordHash = *fields.PasswordHash
	}
	if fields.AvatarURL != nil {
		u.AvatarURL = *fields.AvatarURL
	}
	return nil
}

func (f *fakeUsers) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return f.Update(ctx, id, user.UpdateFields{PasswordHash: &passwordHash})
}

func (f *fakeUsers) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return user.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeKeys struct {
	mu        sync.Mutex
	keys      map[int64]string
	createErr error
}

func (f *fakeKeys) Create(_ context.Context, userID int64, publicKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.keys[userID] = publicKey
	return nil
}

func (f *fakeKeys) get(userID int64) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k, ok := f.keys[userID]
	return k, ok
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendSignUpPin(ctx context.Context, toEmail, name, pin string) error {
	args := m.Called(ctx, toEmail, name, pin)
	return args.Error(0)
}

func (m *mockMailer) SendTemporaryPassword(ctx context.Context, toEmail, tokenID, temporaryPassword string) error {
	args := m.Called(ctx, toEmail, tokenID, temporaryPassword)
	return args.Error(0)
}

type fixture struct {
	service *Service
	store   *memStore
	users   *fakeUsers
	keys    *fakeKeys
	mailer  *mockMailer
	hasher  PasswordHasher
	metrics *Metrics
}

// cheapHasher keeps the argon2id format with parameters small enough for tests
func cheapHasher() *Argon2idHasher {
	return &Argon2idHasher{time: 1, memory: 1024, threads: 1}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:   newMemStore(),
		users:   newFakeUsers(),
		keys:    &fakeKeys{keys: map[int64]string{}},
		mailer:  new(mockMailer),
		hasher:  cheapHasher(),
		metrics: NewMetrics(prometheus.NewRegistry()),
	}
	f.service = NewService(
		f.users,
		f.keys,
		token.NewSignUpTokenRepository(f.store, 10*time.Minute),
		token.NewPasswordTokenRepository(f.store, time.Hour),
		f.hasher,
		f.mailer,
		f.metrics,
		logging.NewLoggerWithWriter(io.Discard, false),
	)
	t.Cleanup(func() { f.mailer.AssertExpectations(t) })
	return f
}

func (f *fixture) mustHash(t *testing.T, password string) string {
	t.Helper()
	h, err := f.hasher.Hash(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return h
}

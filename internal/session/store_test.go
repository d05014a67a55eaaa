package session

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"foodguard/internal/directory"
	apperrors "foodguard/internal/errors"
	"foodguard/internal/model"
	"foodguard/internal/storage"
)

// MockStorage is a mock implementation of storage.Storage.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockStorage) Set(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockStorage) Remove(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockDirectory is a mock implementation of directory.Directory.
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) Lookup(ctx context.Context, email, password string) (*model.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// stubIssuer mints predictable tokens.
type stubIssuer struct {
	calls int
}

func (s *stubIssuer) Issue(user *model.User) (string, error) {
	s.calls++
	return fmt.Sprintf("token-%d", s.calls), nil
}

func testDirectory(t *testing.T) *directory.Seed {
	t.Helper()
	seed, err := directory.NewSeed([]directory.Entry{
		{
			User: model.User{
				Email:            "chef@harborbistro.com",
				Name:             "Tomas Lindgren",
				Role:             model.RoleUser,
				RestaurantName:   "Harbor Bistro",
				SubscriptionType: model.SubscriptionSensor,
			},
			Password: "Lin3Ch3f!",
		},
	})
	assert.NoError(t, err)
	return seed
}

func TestStore_LoginSuccess(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	store := NewStore(mem, testDirectory(t))
	store.Restore(ctx)

	sess, err := store.Login(ctx, "chef@harborbistro.com", "Lin3Ch3f!")

	assert.NoError(t, err)
	assert.True(t, sess.Authenticated)
	// The snapshot handed back by Login must already have the loading
	// flag cleared, not just later reads of the store.
	assert.False(t, sess.Loading)
	assert.False(t, store.Current().Loading)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "chef@harborbistro.com", sess.User.Email)
	assert.Empty(t, sess.User.PasswordHash)

	// Persisted token matches the in-memory one.
	raw, err := mem.Get(ctx, "auth_token")
	assert.NoError(t, err)
	assert.Equal(t, sess.Token, string(raw))

	// Persisted user is sanitized: no password-related field at all.
	raw, err = mem.Get(ctx, "auth_user")
	assert.NoError(t, err)
	var persisted map[string]interface{}
	assert.NoError(t, json.Unmarshal(raw, &persisted))
	assert.Equal(t, "chef@harborbistro.com", persisted["email"])
	for key := range persisted {
		assert.NotContains(t, key, "password")
	}
}

func TestStore_LoginFailures(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		password      string
		expectedError error
	}{
		{
			name:          "unknown email",
			email:         "nobody@harborbistro.com",
			password:      "Lin3Ch3f!",
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:          "wrong password",
			email:         "chef@harborbistro.com",
			password:      "wrong",
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:          "email is case-sensitive",
			email:         "Chef@harborbistro.com",
			password:      "Lin3Ch3f!",
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:          "empty email",
			email:         "",
			password:      "Lin3Ch3f!",
			expectedError: apperrors.ErrMissingCredentials,
		},
		{
			name:          "empty password",
			email:         "chef@harborbistro.com",
			password:      "",
			expectedError: apperrors.ErrMissingCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			mockStorage := new(MockStorage)
			mockStorage.On("Get", mock.Anything, mock.Anything).Return(nil, nil)

			store := NewStore(mockStorage, testDirectory(t))
			store.Restore(ctx)

			sess, err := store.Login(ctx, tt.email, tt.password)

			assert.ErrorIs(t, err, tt.expectedError)
			assert.False(t, sess.Authenticated)
			assert.Nil(t, sess.User)
			assert.Empty(t, store.Token())

			// No persistence writes happen on a failed login.
			mockStorage.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestStore_LoginWhileAuthenticated(t *testing.T) {
	ctx := context.Background()
	store := NewStore(storage.NewMemory(), testDirectory(t))
	store.Restore(ctx)

	first, err := store.Login(ctx, "chef@harborbistro.com", "Lin3Ch3f!")
	assert.NoError(t, err)

	_, err = store.Login(ctx, "chef@harborbistro.com", "Lin3Ch3f!")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyAuthenticated)

	// The prior session survives the rejected attempt.
	assert.Equal(t, first.Token, store.Token())
}

func TestStore_LoginStorageFailureAborts(t *testing.T) {
	ctx := context.Background()
	writeErr := &storage.Error{Op: "set", Key: "auth_user", Err: fmt.Errorf("connection refused")}

	mockStorage := new(MockStorage)
	mockStorage.On("Get", mock.Anything, mock.Anything).Return(nil, nil)
	mockStorage.On("Set", mock.Anything, "auth_token", mock.Anything).Return(nil)
	mockStorage.On("Set", mock.Anything, "auth_user", mock.Anything).Return(writeErr)
	mockStorage.On("Remove", mock.Anything, "auth_token").Return(nil)

	store := NewStore(mockStorage, testDirectory(t))
	store.Restore(ctx)

	sess, err := store.Login(ctx, "chef@harborbistro.com", "Lin3Ch3f!")

	assert.Error(t, err)
	assert.False(t, sess.Authenticated)
	assert.Empty(t, store.Token())

	// The half-written token is rolled back.
	mockStorage.AssertCalled(t, "Remove", mock.Anything, "auth_token")
}

func TestStore_RestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	dir := testDirectory(t)

	first := NewStore(mem, dir)
	first.Restore(ctx)
	sess, err := first.Login(ctx, "chef@harborbistro.com", "Lin3Ch3f!")
	assert.NoError(t, err)

	// Simulated restart: a fresh store over the same persisted state.
	second := NewStore(mem, dir)
	second.Restore(ctx)

	restored := second.Current()
	assert.True(t, restored.Authenticated)
	assert.False(t, restored.Loading)
	assert.Equal(t, sess.Token, restored.Token)
	assert.Equal(t, sess.User.Email, restored.User.Email)
	assert.Equal(t, sess.User.Role, restored.User.Role)
	assert.Equal(t, sess.User.SubscriptionType, restored.User.SubscriptionType)
}

func TestStore_Restore(t *testing.T) {
	tests := []struct {
		name  string
		setup func(ctx context.Context, mem *storage.Memory)
	}{
		{
			name:  "no persisted session",
			setup: func(ctx context.Context, mem *storage.Memory) {},
		},
		{
			name: "token without user",
			setup: func(ctx context.Context, mem *storage.Memory) {
				_ = mem.Set(ctx, "auth_token", []byte("orphan"))
			},
		},
		{
			name: "user without token",
			setup: func(ctx context.Context, mem *storage.Memory) {
				_ = mem.Set(ctx, "auth_user", []byte(`{"email":"chef@harborbistro.com"}`))
			},
		},
		{
			name: "corrupt user record",
			setup: func(ctx context.Context, mem *storage.Memory) {
				_ = mem.Set(ctx, "auth_token", []byte("tok"))
				_ = mem.Set(ctx, "auth_user", []byte("{not json"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			mem := storage.NewMemory()
			tt.setup(ctx, mem)

			store := NewStore(mem, testDirectory(t))
			assert.True(t, store.Current().Loading)

			store.Restore(ctx)

			sess := store.Current()
			assert.False(t, sess.Loading)
			assert.False(t, sess.Authenticated)
			assert.Nil(t, sess.User)
			assert.Empty(t, sess.Token)
		})
	}
}

func TestStore_RestoreStorageFailure(t *testing.T) {
	ctx := context.Background()
	mockStorage := new(MockStorage)
	mockStorage.On("Get", mock.Anything, "auth_token").
		Return(nil, &storage.Error{Op: "get", Key: "auth_token", Err: fmt.Errorf("connection refused")})

	store := NewStore(mockStorage, testDirectory(t))
	store.Restore(ctx)

	// A broken backend degrades to logged-out, never to an error.
	sess := store.Current()
	assert.False(t, sess.Loading)
	assert.False(t, sess.Authenticated)
}

func TestStore_RestoreIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewStore(storage.NewMemory(), testDirectory(t))
	store.Restore(ctx)

	_, err := store.Login(ctx, "chef@harborbistro.com", "Lin3Ch3f!")
	assert.NoError(t, err)

	// A second restore must not disturb the live session.
	store.Restore(ctx)
	assert.True(t, store.Authenticated())
}

func TestStore_LogoutClearsPersistedState(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	dir := testDirectory(t)

	store := NewStore(mem, dir)
	store.Restore(ctx)
	_, err := store.Login(ctx, "chef@harborbistro.com", "Lin3Ch3f!")
	assert.NoError(t, err)

	store.Logout(ctx)

	sess := store.Current()
	assert.False(t, sess.Authenticated)
	assert.Nil(t, sess.User)
	assert.Empty(t, store.Token())
	assert.Equal(t, 0, mem.Len())

	// Simulated restart after logout stays unauthenticated.
	next := NewStore(mem, dir)
	next.Restore(ctx)
	assert.False(t, next.Authenticated())
}

func TestStore_LogoutSurvivesStorageFailure(t *testing.T) {
	ctx := context.Background()
	mockStorage := new(MockStorage)
	mockStorage.On("Get", mock.Anything, mock.Anything).Return(nil, nil)
	mockStorage.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mockStorage.On("Remove", mock.Anything, mock.Anything).
		Return(&storage.Error{Op: "remove", Key: "auth_token", Err: fmt.Errorf("connection refused")})

	store := NewStore(mockStorage, testDirectory(t))
	store.Restore(ctx)
	_, err := store.Login(ctx, "chef@harborbistro.com", "Lin3Ch3f!")
	assert.NoError(t, err)

	// Logout always succeeds from the caller's perspective.
	store.Logout(ctx)
	assert.False(t, store.Authenticated())
	assert.Empty(t, store.Token())
}

func TestStore_RefreshTokenWithoutIssuerIsNoop(t *testing.T) {
	ctx := context.Background()
	store := NewStore(storage.NewMemory(), testDirectory(t))
	store.Restore(ctx)

	sess, err := store.Login(ctx, "chef@harborbistro.com", "Lin3Ch3f!")
	assert.NoError(t, err)

	assert.NoError(t, store.RefreshToken(ctx))
	assert.Equal(t, sess.Token, store.Token())
}

func TestStore_RefreshTokenWhileUnauthenticatedIsNoop(t *testing.T) {
	ctx := context.Background()
	store := NewStore(storage.NewMemory(), testDirectory(t), WithIssuer(&stubIssuer{}))
	store.Restore(ctx)

	assert.NoError(t, store.RefreshToken(ctx))
	assert.Empty(t, store.Token())
}

func TestStore_RefreshTokenReplacesToken(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	store := NewStore(mem, testDirectory(t), WithIssuer(&stubIssuer{}))
	store.Restore(ctx)

	sess, err := store.Login(ctx, "chef@harborbistro.com", "Lin3Ch3f!")
	assert.NoError(t, err)
	assert.Equal(t, "token-1", sess.Token)

	assert.NoError(t, store.RefreshToken(ctx))
	assert.Equal(t, "token-2", store.Token())

	// The replacement is persisted, not just swapped in memory.
	raw, err := mem.Get(ctx, "auth_token")
	assert.NoError(t, err)
	assert.Equal(t, "token-2", string(raw))
}

func TestManager_OneStorePerDevice(t *testing.T) {
	ctx := context.Background()
	dir := testDirectory(t)
	backends := map[string]*storage.Memory{}

	manager := NewManager(func(deviceID string) *Store {
		mem := storage.NewMemory()
		backends[deviceID] = mem
		return NewStore(mem, dir)
	})

	tablet := manager.Get(ctx, "tablet-1")
	phone := manager.Get(ctx, "phone-2")
	assert.NotSame(t, tablet, phone)

	_, err := tablet.Login(ctx, "chef@harborbistro.com", "Lin3Ch3f!")
	assert.NoError(t, err)

	// The same device always gets the same store back.
	assert.Same(t, tablet, manager.Get(ctx, "tablet-1"))
	assert.True(t, manager.Get(ctx, "tablet-1").Authenticated())
	assert.False(t, phone.Authenticated())

	// Sessions are isolated per device namespace.
	assert.NotEqual(t, 0, backends["tablet-1"].Len())
	assert.Equal(t, 0, backends["phone-2"].Len())
}

func TestManager_CapsStoreMap(t *testing.T) {
	ctx := context.Background()
	dir := testDirectory(t)
	backends := map[string]*storage.Memory{}

	manager := NewManager(func(deviceID string) *Store {
		mem, ok := backends[deviceID]
		if !ok {
			mem = storage.NewMemory()
			backends[deviceID] = mem
		}
		return NewStore(mem, dir)
	}, WithMaxStores(2))

	_, err := manager.Get(ctx, "tablet-1").Login(ctx, "chef@harborbistro.com", "Lin3Ch3f!")
	assert.NoError(t, err)

	// Flooding with fresh device IDs never grows the map past the cap.
	for _, id := range []string{"flood-1", "flood-2", "flood-3", "flood-4"} {
		manager.Get(ctx, id)
		assert.LessOrEqual(t, manager.Len(), 2)
	}

	// An evicted device restores from its persisted state on the next
	// request, so eviction never loses a session.
	assert.True(t, manager.Get(ctx, "tablet-1").Authenticated())
}

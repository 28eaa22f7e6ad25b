package users

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/storefront-go/apperror"
	"github.com/user/storefront-go/auth"
	"github.com/user/storefront-go/config"
)

type fakeRepository struct {
	users map[uuid.UUID]User

	lastCreateEmail string
	lastCreateHash  string
	lastUpdateHash  *string
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{users: make(map[uuid.UUID]User)}
}

func (f *fakeRepository) List(ctx context.Context, filter Filter) ([]User, error) {
	out := []User{}
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NewNotFoundError("User with ID "+id.String()+" not found", nil)
	}
	return &u, nil
}

func (f *fakeRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperror.NewNotFoundError("user not found", nil)
}

func (f *fakeRepository) Create(ctx context.Context, username, email, passwordHash string) (*User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return nil, apperror.NewConflictError("Email already in use", nil)
		}
		if u.Username == username {
			return nil, apperror.NewConflictError("Username already in use", nil)
		}
	}

	f.lastCreateEmail = email
	f.lastCreateHash = passwordHash

	u := User{
		ID:        uuid.New(),
		Username:  username,
		Email:     email,
		Password:  passwordHash,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.users[u.ID] = u
	return &u, nil
}

func (f *fakeRepository) Update(ctx context.Context, id uuid.UUID, username, email *string, passwordHash *string) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NewNotFoundError("User with ID "+id.String()+" not found", nil)
	}

	f.lastUpdateHash = passwordHash

	if username != nil {
		u.Username = *username
	}
	if email != nil {
		u.Email = *email
	}
	if passwordHash != nil {
		u.Password = *passwordHash
	}
	u.UpdatedAt = time.Now()
	f.users[id] = u
	return &u, nil
}

func (f *fakeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.users[id]; !ok {
		return apperror.NewNotFoundError("User with ID "+id.String()+" not found", nil)
	}
	delete(f.users, id)
	return nil
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:     "test-secret-key",
		TokenDuration: time.Hour,
	}
}

func TestRegisterHashesPasswordAndLowercasesEmail(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, testAuthConfig())

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Username: "alice",
		Email:    "Alice@Example.COM",
		Password: "longenough",
	})
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", resp.Email)
	assert.Equal(t, "alice@example.com", repo.lastCreateEmail)
	assert.NotEqual(t, "longenough", repo.lastCreateHash)
	assert.True(t, strings.HasPrefix(repo.lastCreateHash, "$argon2id$"))
	assert.True(t, auth.VerifyPassword("longenough", repo.lastCreateHash))
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(newFakeRepository(), testAuthConfig())

	cases := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing username", RegisterRequest{Email: "a@b.com", Password: "longenough"}},
		{"bad email", RegisterRequest{Username: "alice", Email: "nope", Password: "longenough"}},
		{"short password", RegisterRequest{Username: "alice", Email: "a@b.com", Password: "short"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.req)
			assert.True(t, apperror.IsValidationError(err))
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := NewService(newFakeRepository(), testAuthConfig())

	req := RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "longenough"}
	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), req)
	assert.True(t, apperror.IsConflictError(err))
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := NewService(newFakeRepository(), testAuthConfig())

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "longenough",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterRequest{
		Username: "alice", Email: "alice2@example.com", Password: "longenough",
	})
	require.True(t, apperror.IsConflictError(err))

	appErr, _ := apperror.FromError(err)
	assert.Equal(t, "Username already in use", appErr.Message)
}

func TestLoginSuccess(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, testAuthConfig())

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "longenough",
	})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "Alice@Example.com",
		Password: "longenough",
	})
	require.NoError(t, err)

	assert.Equal(t, "alice", resp.User.Username)
	require.NotEmpty(t, resp.Token)

	claims, err := auth.VerifyToken(resp.Token, "test-secret-key")
	require.NoError(t, err)
	userID, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, userID)
}

// A login failure must read the same whether the account does not exist or
// the password is wrong.
func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, testAuthConfig())

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "longenough",
	})
	require.NoError(t, err)

	_, unknownErr := svc.Login(context.Background(), LoginRequest{
		Email:    "nobody@example.com",
		Password: "longenough",
	})
	_, wrongPassErr := svc.Login(context.Background(), LoginRequest{
		Email:    "alice@example.com",
		Password: "wrongpassword",
	})

	require.True(t, apperror.IsAuthError(unknownErr))
	require.True(t, apperror.IsAuthError(wrongPassErr))

	unknownApp, _ := apperror.FromError(unknownErr)
	wrongApp, _ := apperror.FromError(wrongPassErr)
	assert.Equal(t, "Invalid email or password", unknownApp.Message)
	assert.Equal(t, unknownApp.Message, wrongApp.Message)
}

func TestUpdateRehashesOnlyWhenPasswordSupplied(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, testAuthConfig())

	created, err := svc.Register(context.Background(), RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "longenough",
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), created.ID.String(), UpdateUserRequest{
		Username: strPtr("alice2"),
	})
	require.NoError(t, err)
	assert.Nil(t, repo.lastUpdateHash)

	_, err = svc.Update(context.Background(), created.ID.String(), UpdateUserRequest{
		Password: strPtr("newpassword1"),
	})
	require.NoError(t, err)
	require.NotNil(t, repo.lastUpdateHash)
	assert.True(t, auth.VerifyPassword("newpassword1", *repo.lastUpdateHash))
}

func TestUpdateLowercasesEmail(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, testAuthConfig())

	created, err := svc.Register(context.Background(), RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "longenough",
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID.String(), UpdateUserRequest{
		Email: strPtr("Alice@NEW.example.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@new.example.com", updated.Email)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
}

func TestGetMalformedID(t *testing.T) {
	svc := NewService(newFakeRepository(), testAuthConfig())

	_, err := svc.Get(context.Background(), "not-a-uuid")
	assert.True(t, apperror.IsNotFound(err))
}

func TestDelete(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, testAuthConfig())

	created, err := svc.Register(context.Background(), RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "longenough",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID.String()))
	err = svc.Delete(context.Background(), created.ID.String())
	assert.True(t, apperror.IsNotFound(err))
}

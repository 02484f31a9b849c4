package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/crypto/bcrypt"

	"github.com/FilipPawlowski3TP/MoneySplit/internal/auth"
	"github.com/FilipPawlowski3TP/MoneySplit/internal/middleware"
	"github.com/FilipPawlowski3TP/MoneySplit/internal/storage/sqlite"
	"github.com/FilipPawlowski3TP/MoneySplit/pkg/api"
	"github.com/FilipPawlowski3TP/MoneySplit/pkg/api/apiconnect"
)

const testSecret = "test-secret-key-that-is-long-enough"

// testServer runs every service behind the production interceptors.
type testServer struct {
	store    *sqlite.SQLiteStore
	auth     apiconnect.AuthServiceClient
	groups   apiconnect.GroupServiceClient
	expenses apiconnect.ExpenseServiceClient
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	jwtManager := auth.NewJWTManager(testSecret, time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store, auth.WithBcryptCost(bcrypt.MinCost))

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(
		NewAuthService(authenticator, jwtManager, store, nil),
		connect.WithInterceptors(middleware.OptionalAuth(jwtManager)),
	))
	mux.Handle(apiconnect.NewGroupServiceHandler(
		NewGroupService(store),
		connect.WithInterceptors(middleware.RequireAuth(jwtManager)),
	))
	mux.Handle(apiconnect.NewExpenseServiceHandler(
		NewExpenseService(store, nil, nil),
		connect.WithInterceptors(middleware.RequireAuth(jwtManager)),
	))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testServer{
		store:    store,
		auth:     apiconnect.NewAuthServiceClient(http.DefaultClient, server.URL),
		groups:   apiconnect.NewGroupServiceClient(http.DefaultClient, server.URL),
		expenses: apiconnect.NewExpenseServiceClient(http.DefaultClient, server.URL),
	}
}

// testUser is a registered account and its bearer token.
type testUser struct {
	ID    string
	Name  string
	Token string
}

func (s *testServer) register(t *testing.T, name string) testUser {
	t.Helper()

	resp, err := s.auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:       name + "@example.com",
		DisplayName: name,
		Password:    "password123",
	}))
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", name, err)
	}
	return testUser{ID: resp.Msg.User.ID, Name: name, Token: resp.Msg.Token}
}

// as wraps msg in a request authenticated as user.
func as[T any](user testUser, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	if user.Token != "" {
		req.Header().Set("Authorization", "Bearer "+user.Token)
	}
	return req
}

// newGroup creates a group owned by owner and joins every other user to it.
func (s *testServer) newGroup(t *testing.T, owner testUser, others ...testUser) *api.Group {
	t.Helper()
	ctx := context.Background()

	resp, err := s.groups.CreateGroup(ctx, as(owner, &api.CreateGroupRequest{Name: "Trip"}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	group := resp.Msg.Group

	for _, u := range others {
		joined, err := s.groups.JoinGroup(ctx, as(u, &api.JoinGroupRequest{InviteCode: group.InviteCode}))
		if err != nil {
			t.Fatalf("JoinGroup(%s) failed: %v", u.Name, err)
		}
		group = joined.Msg.Group
	}
	return group
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Fatalf("expected code %v, got %v (%v)", want, got, err)
	}
}

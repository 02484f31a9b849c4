package service

import (
	"context"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/FilipPawlowski3TP/MoneySplit/pkg/api"
)

func TestRegister(t *testing.T) {
	s := setupTestServer(t)
	ctx := context.Background()

	resp, err := s.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email:       "  Alice@Example.com ",
		DisplayName: "Alice",
		Password:    "password123",
	}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if resp.Msg.Token == "" {
		t.Error("expected token in response")
	}
	if resp.Msg.User.Email != "alice@example.com" {
		t.Errorf("expected normalized email, got %q", resp.Msg.User.Email)
	}
	if resp.Msg.User.ID == "" {
		t.Error("expected user ID")
	}
}

func TestRegister_Rejects(t *testing.T) {
	s := setupTestServer(t)
	s.register(t, "alice")

	tests := []struct {
		name string
		req  *api.RegisterRequest
		code connect.Code
	}{
		{
			name: "missing email",
			req:  &api.RegisterRequest{DisplayName: "Bob", Password: "password123"},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "missing display name",
			req:  &api.RegisterRequest{Email: "bob@example.com", Password: "password123"},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "weak password",
			req:  &api.RegisterRequest{Email: "bob@example.com", DisplayName: "Bob", Password: "short"},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "duplicate email",
			req:  &api.RegisterRequest{Email: "ALICE@example.com", DisplayName: "Alice 2", Password: "password123"},
			code: connect.CodeAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.auth.Register(context.Background(), connect.NewRequest(tt.req))
			assertCode(t, err, tt.code)
		})
	}
}

func TestLogin(t *testing.T) {
	s := setupTestServer(t)
	alice := s.register(t, "alice")
	ctx := context.Background()

	resp, err := s.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	}))
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if resp.Msg.User.ID != alice.ID {
		t.Errorf("expected user %s, got %s", alice.ID, resp.Msg.User.ID)
	}

	_, err = s.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password",
	}))
	assertCode(t, err, connect.CodeUnauthenticated)

	_, err = s.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{
		Email:    "nobody@example.com",
		Password: "password123",
	}))
	assertCode(t, err, connect.CodeUnauthenticated)
}

func TestGetCurrentUser(t *testing.T) {
	s := setupTestServer(t)
	alice := s.register(t, "alice")
	ctx := context.Background()

	resp, err := s.auth.GetCurrentUser(ctx, as(alice, &api.GetCurrentUserRequest{}))
	if err != nil {
		t.Fatalf("GetCurrentUser failed: %v", err)
	}
	if resp.Msg.User.DisplayName != "alice" {
		t.Errorf("expected display name alice, got %q", resp.Msg.User.DisplayName)
	}

	_, err = s.auth.GetCurrentUser(ctx, connect.NewRequest(&api.GetCurrentUserRequest{}))
	assertCode(t, err, connect.CodeUnauthenticated)

	_, err = s.auth.GetCurrentUser(ctx, as(testUser{Token: "garbage"}, &api.GetCurrentUserRequest{}))
	assertCode(t, err, connect.CodeUnauthenticated)
}

func TestLogin_ExpiresAt(t *testing.T) {
	s := setupTestServer(t)
	s.register(t, "alice")

	before := time.Now().Unix()
	resp, err := s.auth.Login(context.Background(), connect.NewRequest(&api.LoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	}))
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if got, want := resp.Msg.ExpiresAt, before+int64(time.Hour/time.Second); got < want {
		t.Errorf("ExpiresAt = %d, want at least %d", got, want)
	}
}

package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/FilipPawlowski3TP/MoneySplit/internal/auth"
	"github.com/FilipPawlowski3TP/MoneySplit/internal/metrics"
	"github.com/FilipPawlowski3TP/MoneySplit/internal/models"
)

type empty struct{}

// capture returns a terminal UnaryFunc that records the user it saw.
func capture(userID *string, err error) connect.UnaryFunc {
	return func(ctx context.Context, _ connect.AnyRequest) (connect.AnyResponse, error) {
		*userID = GetUserID(ctx)
		if err != nil {
			return nil, err
		}
		return connect.NewResponse(&empty{}), nil
	}
}

func requestWithHeader(value string) connect.AnyRequest {
	req := connect.NewRequest(&empty{})
	if value != "" {
		req.Header().Set("Authorization", value)
	}
	return req
}

func TestRequireAuth(t *testing.T) {
	manager := auth.NewJWTManager("test-secret", time.Hour)
	token, err := manager.Generate(&models.User{ID: "user-1", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	tests := []struct {
		name     string
		header   string
		wantUser string
		wantCode connect.Code
	}{
		{name: "valid token", header: "Bearer " + token, wantUser: "user-1"},
		{name: "lower-case scheme", header: "bearer " + token, wantUser: "user-1"},
		{name: "missing header", header: "", wantCode: connect.CodeUnauthenticated},
		{name: "wrong scheme", header: "Basic abc", wantCode: connect.CodeUnauthenticated},
		{name: "bad token", header: "Bearer nope", wantCode: connect.CodeUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			_, err := RequireAuth(manager)(capture(&seen, nil))(context.Background(), requestWithHeader(tt.header))

			if tt.wantCode != 0 {
				if connect.CodeOf(err) != tt.wantCode {
					t.Fatalf("expected %v, got %v", tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if seen != tt.wantUser {
				t.Errorf("user = %q, want %q", seen, tt.wantUser)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	manager := auth.NewJWTManager("test-secret", time.Hour)
	token, err := manager.Generate(&models.User{ID: "user-1", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	for header, want := range map[string]string{
		"Bearer " + token: "user-1",
		"Bearer invalid":  "",
		"":                "",
	} {
		var seen string
		if _, err := OptionalAuth(manager)(capture(&seen, nil))(context.Background(), requestWithHeader(header)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen != want {
			t.Errorf("header %q: user = %q, want %q", header, seen, want)
		}
	}
}

func TestLoggingInterceptor(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := WithUser(context.Background(), "user-1", "alice@example.com")

	var seen string
	LoggingInterceptor(logger)(capture(&seen, nil))(ctx, requestWithHeader(""))
	LoggingInterceptor(logger)(capture(&seen, connect.NewError(connect.CodeNotFound, errors.New("gone"))))(ctx, requestWithHeader(""))
	LoggingInterceptor(logger)(capture(&seen, errors.New("boom")))(ctx, requestWithHeader(""))

	out := buf.String()
	for _, want := range []string{"level=INFO msg=\"RPC ok\"", "level=WARN", "code=not_found", "level=ERROR", "user_id=user-1"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestMetricsInterceptor(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	var seen string
	MetricsInterceptor(m)(capture(&seen, nil))(context.Background(), requestWithHeader(""))
	MetricsInterceptor(m)(capture(&seen, connect.NewError(connect.CodeInvalidArgument, errors.New("bad"))))(context.Background(), requestWithHeader(""))

	count, err := testutil.GatherAndCount(reg, "moneysplit_rpc_requests_total")
	if err != nil {
		t.Fatalf("GatherAndCount failed: %v", err)
	}
	if count != 2 {
		t.Errorf("request series = %d, want 2 (ok and invalid_argument)", count)
	}
}

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jewel109/mobiledoor-api/pkg/enums"
)

type fakeLimiter struct {
	counts map[string]int64
	err    error
}

func (f *fakeLimiter) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	if f.err != nil {
		return false, 0, f.err
	}
	if f.counts == nil {
		f.counts = map[string]int64{}
	}
	f.counts[scope]++
	return f.counts[scope] <= limit, f.counts[scope], nil
}

func TestUserRateLimitBlocksAfterLimit(t *testing.T) {
	limiter := &fakeLimiter{}
	policy := RateLimitPolicy{Name: "checkout", Limit: 2, Window: time.Minute}
	handler := UserRateLimit(policy, limiter, nil)(okHandler())
	ctx := WithActor(context.Background(), uuid.New(), enums.UserRoleUser)

	codes := []int{}
	for i := 0; i < 3; i++ {
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/", nil).WithContext(ctx))
		codes = append(codes, resp.Code)
		if i == 2 && resp.Header().Get("Retry-After") != "60" {
			t.Fatalf("expected Retry-After 60 got %q", resp.Header().Get("Retry-After"))
		}
	}
	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("request %d: expected %d got %d", i, want[i], codes[i])
		}
	}
}

func TestUserRateLimitSurfacesStoreFailure(t *testing.T) {
	limiter := &fakeLimiter{err: errors.New("redis down")}
	handler := UserRateLimit(RateLimitPolicy{Name: "checkout", Limit: 1, Window: time.Minute}, limiter, nil)(okHandler())
	ctx := WithActor(context.Background(), uuid.New(), enums.UserRoleUser)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/", nil).WithContext(ctx))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func TestUserRateLimitDisabledPolicy(t *testing.T) {
	handler := UserRateLimit(RateLimitPolicy{}, &fakeLimiter{}, nil)(okHandler())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected pass-through got %d", resp.Code)
	}
}

package apperr

import (
	"fmt"
	"net/http"
	"testing"
)

func TestRateLimitedError(t *testing.T) {
	if ErrRateLimited.Code != CodeRateLimited {
		t.Errorf("expected code %s, got %s", CodeRateLimited, ErrRateLimited.Code)
	}
	if ErrRateLimited.Status != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", ErrRateLimited.Status)
	}
	if !IsCode(ErrRateLimited, CodeRateLimited) {
		t.Error("IsCode should match the rate limit code")
	}
}

func TestIsCodeUnwraps(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", NotFound("job"))
	if !IsCode(wrapped, CodeNotFound) {
		t.Error("IsCode should see through wrapping")
	}
	if IsCode(wrapped, CodeConflict) {
		t.Error("IsCode must not match a different code")
	}
	if GetHTTPStatus(wrapped) != http.StatusNotFound {
		t.Errorf("expected 404, got %d", GetHTTPStatus(wrapped))
	}
}

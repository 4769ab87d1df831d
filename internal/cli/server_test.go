package cli

import (
	"testing"
	"time"

	"exam-simulator/internal/config"
)

func TestIdleTimeoutCoversTheCountdown(t *testing.T) {
	cfg := config.Defaults()
	if got := idleTimeout(cfg); got != 2*time.Hour {
		t.Fatalf("expected default 2h idle, got %s", got)
	}

	cfg.Exam.Duration = "3h"
	if got := idleTimeout(cfg); got != 3*time.Hour {
		t.Fatalf("expected idle clamped to 3h duration, got %s", got)
	}

	cfg.Exam.Duration = "30m"
	cfg.Exam.IdleTimeout = "45m"
	if got := idleTimeout(cfg); got != 45*time.Minute {
		t.Fatalf("expected configured 45m idle, got %s", got)
	}
}

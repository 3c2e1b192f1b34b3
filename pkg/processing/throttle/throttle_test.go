package throttle

import (
	"context"
	"testing"
	"time"

	"github.com/vnykmshr/nexus/internal/testutil"
	"github.com/vnykmshr/nexus/pkg/common/errors"
)

func TestNewSafeValidation(t *testing.T) {
	tests := []struct {
		name    string
		rate    float64
		burst   int
		wantErr bool
	}{
		{"valid", 10, 5, false},
		{"burst defaults to rate", 2.5, 0, false},
		{"zero rate", 0, 5, true},
		{"negative rate", -1, 5, true},
		{"negative burst", 10, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th, err := NewSafe(tt.rate, tt.burst)
			if tt.wantErr {
				testutil.AssertError(t, err)
				testutil.AssertEqual(t, errors.IsValidationError(err), true)
				if th != nil {
					t.Error("expected nil throttle on error")
				}
				return
			}
			testutil.AssertNoError(t, err)
			testutil.AssertEqual(t, th.Rate(), tt.rate)
		})
	}
}

func TestBurstDefault(t *testing.T) {
	th, err := NewSafe(2.5, 0)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, th.Burst(), 3)
	testutil.AssertEqual(t, th.Tokens(), 3.0)
}

func TestAllowRefill(t *testing.T) {
	clock := testutil.NewMockClock(time.Unix(0, 0))
	th, err := NewWithConfigSafe(Config{Rate: 10, Burst: 2, Clock: clock})
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, th.Allow(), true)
	testutil.AssertEqual(t, th.Allow(), true)
	testutil.AssertEqual(t, th.Allow(), false)

	clock.Advance(100 * time.Millisecond)
	testutil.AssertEqual(t, th.Allow(), true)
	testutil.AssertEqual(t, th.Allow(), false)

	clock.Advance(time.Hour)
	testutil.AssertEqual(t, th.Tokens(), 2.0)
}

func TestWaitImmediate(t *testing.T) {
	clock := testutil.NewMockClock(time.Unix(0, 0))
	th, err := NewWithConfigSafe(Config{Rate: 1, Burst: 1, Clock: clock})
	testutil.AssertNoError(t, err)

	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()
	testutil.AssertNoError(t, th.Wait(ctx))
	testutil.AssertEqual(t, th.Tokens(), 0.0)
}

func TestWaitBlocksUntilRefill(t *testing.T) {
	th, err := NewSafe(50, 1)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, th.Allow(), true)

	start := time.Now()
	testutil.AssertNoError(t, th.Wait(context.Background()))
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Errorf("Wait returned after %v, expected about 20ms", elapsed)
	}
}

func TestWaitCancelledReturnsToken(t *testing.T) {
	clock := testutil.NewMockClock(time.Unix(0, 0))
	th, err := NewWithConfigSafe(Config{Rate: 0.001, Burst: 1, Clock: clock})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, th.Allow(), true)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err = th.Wait(ctx)
	testutil.AssertErrorIs(t, err, context.DeadlineExceeded)
	testutil.AssertEqual(t, th.Tokens(), 0.0)
}

func TestWaitAlreadyCancelled(t *testing.T) {
	th, err := NewSafe(10, 1)
	testutil.AssertNoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	testutil.AssertErrorIs(t, th.Wait(ctx), context.Canceled)
	testutil.AssertEqual(t, th.Allow(), true)
}

package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func recordAll(error) Classification { return Classification{RecordFailure: true} }

func recordNone(error) Classification { return Classification{RecordFailure: false} }

func TestExecutePassesThroughWhenDisabled(t *testing.T) {
	breaker := NewBreaker(Config{Enabled: false})
	wantErr := errors.New("boom")

	for i := 0; i < 50; i++ {
		err := breaker.Execute(context.Background(), "op", func(ctx context.Context) error {
			return wantErr
		}, recordAll)
		if !errors.Is(err, wantErr) {
			t.Fatalf("err = %v, disabled breaker must never shed", err)
		}
	}
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	breaker := NewBreaker(Config{
		Enabled:      true,
		MinRequests:  3,
		FailureRatio: 0.5,
		OpenTimeout:  time.Minute,
	})
	boom := errors.New("backend down")

	var sawOpen bool
	for i := 0; i < 10; i++ {
		err := breaker.Execute(context.Background(), "documents.list", func(ctx context.Context) error {
			return boom
		}, recordAll)
		if IsCircuitOpen(err) {
			sawOpen = true
			break
		}
	}
	if !sawOpen {
		t.Fatal("breaker never opened under sustained failures")
	}
}

func TestClientErrorsDoNotTrip(t *testing.T) {
	breaker := NewBreaker(Config{
		Enabled:      true,
		MinRequests:  3,
		FailureRatio: 0.5,
		OpenTimeout:  time.Minute,
	})
	badInput := errors.New("validation failed")

	for i := 0; i < 20; i++ {
		err := breaker.Execute(context.Background(), "documents.upload", func(ctx context.Context) error {
			return badInput
		}, recordNone)
		if IsCircuitOpen(err) {
			t.Fatal("client-side errors must not open the circuit")
		}
	}
}

func TestOperationsAreIsolated(t *testing.T) {
	breaker := NewBreaker(Config{
		Enabled:      true,
		MinRequests:  3,
		FailureRatio: 0.5,
		OpenTimeout:  time.Minute,
	})
	boom := errors.New("backend down")

	for i := 0; i < 10; i++ {
		_ = breaker.Execute(context.Background(), "documents.export", func(ctx context.Context) error {
			return boom
		}, recordAll)
	}

	err := breaker.Execute(context.Background(), "documents.list", func(ctx context.Context) error {
		return nil
	}, recordAll)
	if err != nil {
		t.Fatalf("healthy operation affected by another circuit: %v", err)
	}
}

func TestNilCallbackRejected(t *testing.T) {
	breaker := NewBreaker(DefaultConfig())
	if err := breaker.Execute(context.Background(), "op", nil, recordAll); err == nil {
		t.Fatal("nil callback must be an error")
	}
}

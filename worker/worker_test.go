package worker

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/atomic"
)

func TestGoReturnsError(t *testing.T) {
	want := errors.New("job failed")
	if err := <-Go(func() error { return want }); err != want {
		t.Fatalf("expected %v, got %v", want, err)
	}
	if err := <-Go(func() error { return nil }); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestGoRecoversPanic(t *testing.T) {
	err := <-Go(func() error { panic("boom") })
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected the panic as an error, got %v", err)
	}

	// The pool keeps working afterwards.
	if err := <-Go(func() error { return nil }); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestGroup(t *testing.T) {
	var (
		g   Group
		ran atomic.Int32
	)
	for i := 0; i < 50; i++ {
		i := i
		g.Go(func() error {
			ran.Add(1)
			if i%10 == 0 {
				return errors.New("failed")
			}
			return nil
		})
	}
	errs := g.Wait()
	if ran.Load() != 50 {
		t.Fatalf("expected every job to run, got %d", ran.Load())
	}
	if len(errs) != 5 {
		t.Fatalf("expected 5 errors, got %d", len(errs))
	}
}

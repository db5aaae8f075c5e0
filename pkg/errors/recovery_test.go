package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestRecover_WithPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		panic("test panic message")
	}

	err := testFunc()
	if err == nil {
		t.Fatal("Expected error from recovered panic, got nil")
	}

	var panicErr *PanicError
	if !errors.As(err, &panicErr) {
		t.Fatalf("Expected PanicError, got %T", err)
	}

	if panicErr.Operation != "TestOperation" {
		t.Errorf("Expected operation 'TestOperation', got '%s'", panicErr.Operation)
	}
	if panicErr.StackTrace == "" {
		t.Error("Expected non-empty stack trace")
	}

	expectedMsg := "panic in TestOperation: test panic message"
	if panicErr.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, panicErr.Error())
	}
}

func TestRecover_WithoutPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		return nil
	}

	if err := testFunc(); err != nil {
		t.Fatalf("Expected no error when no panic occurs, got: %v", err)
	}
}

func TestRecover_WithExistingError(t *testing.T) {
	originalErr := fmt.Errorf("original error")

	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		err = originalErr
		panic("panic after error")
	}

	err := testFunc()
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "panic in TestOperation") {
		t.Errorf("Error message should contain panic info: %s", err.Error())
	}
	if !errors.Is(err, originalErr) {
		t.Error("Original error should remain in the chain")
	}
}

func TestSafeExecute(t *testing.T) {
	err := SafeExecute("index", func() error {
		var s []int
		_ = s[3]
		return nil
	})

	var panicErr *PanicError
	if !errors.As(err, &panicErr) {
		t.Fatalf("Expected PanicError, got %T", err)
	}
	if !strings.Contains(panicErr.Error(), "index out of range") {
		t.Errorf("unexpected message: %s", panicErr.Error())
	}

	if err := SafeExecute("ok", func() error { return nil }); err != nil {
		t.Errorf("Expected nil, got %v", err)
	}
}

func TestCheckMatrix(t *testing.T) {
	m := stubMatrix{{1, 2}, {3, nan()}}

	err := CheckMatrix("standardize", m, 2, 2)
	var numErr *NumericalInstabilityError
	if !As(err, &numErr) {
		t.Fatalf("Expected NumericalInstabilityError, got %v", err)
	}
	if numErr.Iteration != 1 {
		t.Errorf("Iteration = %d, want 1", numErr.Iteration)
	}

	if err := CheckMatrix("standardize", stubMatrix{{1, 2}}, 1, 2); err != nil {
		t.Errorf("Expected nil, got %v", err)
	}
}

type stubMatrix [][]float64

func (m stubMatrix) At(i, j int) float64 { return m[i][j] }

func nan() float64 {
	zero := 0.0
	return zero / zero
}

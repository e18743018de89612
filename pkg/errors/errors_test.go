package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestNewStructuralError(t *testing.T) {
	tests := []struct {
		name     string
		op       string
		position int
		reason   string
		wantMsg  string
	}{
		{
			name:     "with position",
			op:       "Fit",
			position: 2,
			reason:   "3 stages cannot consume 5 datasets",
			wantMsg:  "pipekit: Fit: position 2: 3 stages cannot consume 5 datasets",
		},
		{
			name:     "without position",
			op:       "New",
			position: -1,
			reason:   "pipeline has no stages",
			wantMsg:  "pipekit: New: pipeline has no stages",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewStructuralError(tt.op, tt.position, tt.reason)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// スタックトレースの存在確認
			formatted := fmt.Sprintf("%+v", err)
			if !strings.Contains(formatted, "errors_test.go") {
				t.Error("Expected stack trace to contain test file name")
			}

			// StructuralError型にキャスト可能か確認
			var structErr *StructuralError
			if !As(err, &structErr) {
				t.Error("Error should be castable to *StructuralError")
			}
			if structErr.Position != tt.position {
				t.Errorf("Position = %d, want %d", structErr.Position, tt.position)
			}
		})
	}
}

func TestNewInvalidInputError(t *testing.T) {
	err := NewInvalidInputError("KernelClassifier", "Fit", "requires exactly 2 classes, got 3")

	want := "pipekit: KernelClassifier.Fit: invalid input: requires exactly 2 classes, got 3"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	// InvalidInputError型にキャスト可能か確認
	var invErr *InvalidInputError
	if !As(err, &invErr) {
		t.Error("Error should be castable to *InvalidInputError")
	}
	if invErr.Stage != "KernelClassifier" {
		t.Errorf("Stage = %s, want KernelClassifier", invErr.Stage)
	}
}

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		kind    string
		err     error
		wantMsg string
	}{
		{
			name:    "with original error",
			op:      "Fit",
			kind:    "singular matrix",
			err:     ErrSingularMatrix,
			wantMsg: "pipekit: Fit: singular matrix: singular matrix",
		},
		{
			name:    "without original error",
			op:      "Transform",
			kind:    "not fitted",
			err:     nil,
			wantMsg: "pipekit: Transform: not fitted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}

			// ラップされた元エラーの確認
			if tt.err != nil && !Is(err, tt.err) {
				t.Error("Wrapped error should be identifiable with Is")
			}
		})
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("Transform", 4, 3, 1)

	want := "pipekit: Transform: dimension mismatch on axis 1 (features). Expected 4, got 3"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Error("Error should be castable to *DimensionError")
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("PCA", "Transform")

	want := "pipekit: PCA: this stage is not fitted yet. Call Fit() before using Transform()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var notFittedErr *NotFittedError
	if !As(err, &notFittedErr) {
		t.Error("Error should be castable to *NotFittedError")
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("retained_variance", "must be in (0, 1)", 1.5)

	want := "pipekit: validation failed for parameter 'retained_variance': must be in (0, 1) (got: 1.5)"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var valErr *ValidationError
	if !As(err, &valErr) {
		t.Error("Error should be castable to *ValidationError")
	}
}

func TestWarnUsesHandler(t *testing.T) {
	var captured error
	SetWarningHandler(func(w error) {
		captured = w
	})
	defer SetWarningHandler(nil)

	warning := NewComponentTruncationWarning("PCA", 10, 4)
	Warn(warning)

	if captured == nil {
		t.Fatal("Expected warning handler to capture the warning")
	}

	wantMsg := "PCA: requested 10 components but only 4 are available; keeping 4"
	if captured.Error() != wantMsg {
		t.Errorf("Warning message = %v, want %v", captured.Error(), wantMsg)
	}
}

func TestWarnPrefersZerologFunc(t *testing.T) {
	var viaHandler, viaZerolog error
	SetWarningHandler(func(w error) { viaHandler = w })
	SetZerologWarnFunc(func(w error) { viaZerolog = w })
	defer func() {
		SetWarningHandler(nil)
		SetZerologWarnFunc(nil)
	}()

	warning := NewComponentTruncationWarning("PCA", 3, 2)
	Warn(warning)

	if viaZerolog == nil {
		t.Error("Expected zerolog warn func to receive the warning")
	}
	if viaHandler != nil {
		t.Error("Handler should not fire when zerolog warn func is set")
	}
}

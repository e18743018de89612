package decomposition

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/YuminosukeSato/pipekit/pkg/errors"
)

func TestSaveScreePlot(t *testing.T) {
	fitted, err := NewPCA().Fit(anisotropicData(), nil)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	pca := fitted.(*PCA)

	dir := t.TempDir()
	for _, name := range []string{"scree.png", "scree.svg"} {
		path := filepath.Join(dir, name)
		if err := pca.SaveScreePlot(path); err != nil {
			t.Fatalf("SaveScreePlot(%s) error = %v", name, err)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("Stat(%s) error = %v", name, err)
		}
		if info.Size() == 0 {
			t.Errorf("SaveScreePlot(%s) wrote an empty file", name)
		}
	}
}

func TestSaveScreePlotNotFitted(t *testing.T) {
	err := NewPCA().SaveScreePlot(filepath.Join(t.TempDir(), "scree.png"))
	if err == nil {
		t.Fatal("SaveScreePlot() before Fit() should fail")
	}
	var notFitted *errors.NotFittedError
	if !errors.As(err, &notFitted) {
		t.Errorf("Error should be *NotFittedError, got %T", err)
	}
}

// Package pipekit provides a composable classification pipeline framework
// for Go, built around small immutable stages that train once and predict
// many times.
//
// A pipeline threads data through an ordered list of stages. Each position
// holds a single stage or an ensemble of stages, and the data between
// positions is a single dataset or an ordered collection of datasets, so
// the same pipeline definition covers plain chains, model committees and
// per-dataset fan-out without special cases.
//
// # Features
//
// - Pure-fit stages: Fit returns a new fitted value, the receiver stays reusable
// - Ensembles and fan-out: one definition trains per member or per dataset
// - Joint stages: scalers that pool statistics across a whole collection
// - Declarative assembly: pipelines declared in YAML and built via a registry
// - Robust Error Handling: typed errors with stack traces and positions
// - CPU-parallel processing for large datasets and independent branches
//
// # Installation
//
// Install pipekit using go get:
//
//	go get github.com/YuminosukeSato/pipekit
//
// # Quick Start
//
// Here's a pipeline that compresses features and classifies sessions:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/pipekit/decomposition"
//	    "github.com/YuminosukeSato/pipekit/discriminant"
//	    "github.com/YuminosukeSato/pipekit/pipeline"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(4, 3, []float64{
//	        0.1, 0.2, 0.0,
//	        0.0, 0.1, 0.2,
//	        5.0, 5.1, 4.9,
//	        5.2, 4.8, 5.0,
//	    })
//	    y := mat.NewDense(4, 1, []float64{1, 1, 2, 2})
//
//	    p, err := pipeline.Chain(
//	        decomposition.NewPCA(decomposition.WithComponents(2)),
//	        discriminant.NewKernelClassifier(),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := p.Fit(X, y); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    res, err := p.Predict(X)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println("Predictions:", mat.Formatted(res.Matrix()))
//	}
//
// # Packages
//
// The library is organized into several packages:
//
//   - pipeline: Orchestration, YAML configuration and structure graphs
//   - compose: Built-in stage registry and declarative assembly
//   - decomposition: Variance-based feature reduction (PCA, scree plots)
//   - discriminant: Regularized kernel discriminant classifier
//   - preprocessing: Scalers, including collection-pooled scaling
//   - regression: Ridge regression stage for numeric targets
//   - metrics: Evaluation metrics (accuracy, AUC, MSE, R²)
//   - core/stage: The stage contract shared by every component
//   - core/parallel: Parallel processing utilities
//
// # Ensembles and Collections
//
// A Group entry trains every member on the same input and carries the
// outputs forward as a parallel collection; a collection input fans a
// plain stage out into one fitted copy per dataset:
//
//	p, err := pipeline.New([]pipeline.Entry{
//	    pipeline.One(preprocessing.NewStandardScaler()),
//	    pipeline.Group(
//	        discriminant.NewKernelClassifier(),
//	        discriminant.NewKernelClassifier(discriminant.WithKernel(discriminant.RBFKernel{Gamma: 0.5})),
//	    ),
//	})
//
// # Performance
//
// pipekit parallelizes element-wise work on large datasets and can run
// independent pipeline branches concurrently:
//
//   - Automatic parallelization for datasets with >1000 rows
//   - Optional concurrent fan-out across ensemble members and datasets
//   - Read-only inference, safe for concurrent Transform and Predict
//
// # Contributing
//
// Contributions are welcome! Please see our GitHub repository:
// https://github.com/YuminosukeSato/pipekit
//
// # License
//
// pipekit is released under the MIT License.
package pipekit

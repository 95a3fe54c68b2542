// Package concretego models concrete compressive strength with support
// vector regression, in a scikit-learn-like Go API.
//
// The library covers the full batch workflow: loading the UCI concrete
// table, per-column preprocessing (standardization plus an invertible log
// transform for the age feature), an epsilon-SVR estimator with RBF and
// linear kernels, pipeline composition, randomized hyperparameter search
// under k-fold cross-validation, and held-out evaluation with a confidence
// interval on the RMSE.
//
// # Quick Start
//
//	table, err := dataset.LoadConcrete("concrete_data.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	X, y, names, _ := table.FeaturesTarget(dataset.ConcreteTarget)
//
//	pipe := pipeline.New(
//	    pipeline.Step{Name: "features", Estimator: transformer},
//	    pipeline.Step{Name: "svr", Estimator: svm.NewSVR()},
//	)
//	err = pipe.Fit(X, y)
//
// The cmd/concrete-strength command runs the complete tuned workflow.
package concretego

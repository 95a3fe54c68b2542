// Command concrete-strength tunes and evaluates an SVR model on the UCI
// concrete compressive-strength table.
//
// The workflow: load the CSV, hold out a test split, build a preprocessing +
// SVR pipeline, tune kernel/gamma/C with randomized search under 5-fold
// cross-validation, then report the held-out RMSE with a 95% confidence
// interval.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/YuminosukeSato/concretego/dataset"
	"github.com/YuminosukeSato/concretego/evaluation"
	"github.com/YuminosukeSato/concretego/modelselection"
	"github.com/YuminosukeSato/concretego/pipeline"
	"github.com/YuminosukeSato/concretego/pkg/log"
	"github.com/YuminosukeSato/concretego/preprocessing"
	"github.com/YuminosukeSato/concretego/svm"
)

const (
	testSize   = 0.2
	seed       = 42
	nIter      = 50
	cvFolds    = 5
	confidence = 0.95
	cMin       = 0.01
	cMax       = 15.0
)

func main() {
	dataPath := flag.String("data", "concrete_data.csv", "path to the concrete strength CSV")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	log.SetupLogger(*logLevel)

	provider := log.NewZerologProvider(log.ToLogLevel(*logLevel))
	provider.InstallWarningHandler()
	logger := provider.GetLoggerWithName("concrete-strength")

	if err := run(*dataPath, logger); err != nil {
		slog.Error("workflow failed", log.ErrAttr(err))
		os.Exit(1)
	}
}

func run(dataPath string, logger log.Logger) error {
	table, err := dataset.LoadConcrete(dataPath)
	if err != nil {
		return err
	}
	logger.Info("loaded dataset",
		log.SamplesKey, table.NRows(),
		log.FeaturesKey, table.NCols()-1,
		log.TargetKey, dataset.ConcreteTarget)
	for _, s := range table.Describe() {
		logger.Debug("column summary",
			log.ComponentKey, s.Name,
			"mean", s.Mean, "std", s.Std, "min", s.Min, "max", s.Max)
	}

	X, y, featureNames, err := table.FeaturesTarget(dataset.ConcreteTarget)
	if err != nil {
		return err
	}

	XTrain, XTest, yTrain, yTest, err := modelselection.TrainTestSplit(X, y, testSize, seed)
	if err != nil {
		return err
	}
	nTrain, _ := XTrain.Dims()
	nTest, _ := XTest.Dims()
	logger.Info("split dataset", "train", nTrain, "test", nTest)

	pipe, err := buildPipeline(featureNames)
	if err != nil {
		return err
	}

	search := &modelselection.RandomizedSearchCV{
		Estimator: pipe,
		Params: modelselection.ParamDistributions{
			"svr__kernel": modelselection.Choice("rbf", "linear"),
			"svr__gamma":  modelselection.Choice("auto", "scale"),
			"svr__C":      modelselection.Uniform{Min: cMin, Max: cMax},
		},
		NIter:  nIter,
		CV:     modelselection.NewKFold(cvFolds, true, seed),
		Scorer: modelselection.NegRMSE,
		Seed:   seed,
		Logger: logger,
	}

	result, err := search.Fit(XTrain, yTrain)
	if err != nil {
		return err
	}
	logger.Info("search complete",
		log.ParamsKey, result.BestParams,
		log.ScoreKey, result.BestScore)

	report, err := evaluation.Evaluate(result.BestEstimator, XTest, yTest, confidence)
	if err != nil {
		return err
	}
	logger.Info("evaluated on held-out data",
		log.RMSEKey, report.RMSE,
		log.SamplesKey, report.NSamples)

	fmt.Printf("Test RMSE: %.2f\n", report.RMSE)
	fmt.Printf("95%% CI: [%.2g, %.2g]\n", report.Lower, report.Upper)
	return nil
}

// buildPipeline assembles the preprocessing + SVR pipeline: standardize every
// feature except age, log-transform age, then regress.
func buildPipeline(featureNames []string) (*pipeline.Pipeline, error) {
	var standardizeCols, logCols []int
	for j, name := range featureNames {
		if name == dataset.ConcreteLogColumn {
			logCols = append(logCols, j)
		} else {
			standardizeCols = append(standardizeCols, j)
		}
	}

	ct, err := preprocessing.NewColumnTransformer(standardizeCols, logCols)
	if err != nil {
		return nil, err
	}
	ct.SetFeatureNames(featureNames)

	return pipeline.New(
		pipeline.Step{Name: "features", Estimator: ct},
		pipeline.Step{Name: "svr", Estimator: svm.NewSVR()},
	), nil
}

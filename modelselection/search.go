package modelselection

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/concretego/core/model"
	"github.com/YuminosukeSato/concretego/core/parallel"
	"github.com/YuminosukeSato/concretego/pkg/errors"
	"github.com/YuminosukeSato/concretego/pkg/log"
)

// Sampler draws one hyperparameter value from a distribution.
type Sampler interface {
	Sample(rng *rand.Rand) interface{}
}

// ParamDistributions maps hyperparameter names to their sampling
// distributions.
type ParamDistributions map[string]Sampler

// choice samples uniformly from a fixed list of values.
type choice struct {
	values []interface{}
}

// Choice returns a sampler drawing uniformly from the given values.
func Choice(values ...interface{}) Sampler {
	return choice{values: values}
}

func (c choice) Sample(rng *rand.Rand) interface{} {
	return c.values[rng.IntN(len(c.values))]
}

// Uniform samples float64 values uniformly from the half-open interval
// [Min, Max).
type Uniform struct {
	Min float64
	Max float64
}

// Sample implements Sampler.
func (u Uniform) Sample(rng *rand.Rand) interface{} {
	return distuv.Uniform{Min: u.Min, Max: u.Max, Src: rng}.Rand()
}

// CandidateResult records one sampled configuration and its fold scores.
type CandidateResult struct {
	Params     map[string]interface{}
	FoldScores []float64
	MeanScore  float64
	StdScore   float64
}

// SearchResult is the outcome of a randomized search.
type SearchResult struct {
	// BestParams is the winning configuration.
	BestParams map[string]interface{}

	// BestScore is the winning configuration's mean cross-validation score.
	BestScore float64

	// BestEstimator is a fresh estimator carrying BestParams, refitted on the
	// full training data.
	BestEstimator Estimator

	// CVResults holds every evaluated candidate in sampling order.
	CVResults []CandidateResult
}

// RandomizedSearchCV samples NIter hyperparameter configurations, scores each
// with k-fold cross-validation and refits the best one on the full data.
//
// All candidates are drawn up front from a generator seeded with Seed, with
// parameter names visited in sorted order. Evaluation may then run in
// parallel; ties on the mean score resolve to the earliest-sampled candidate,
// so the winner does not depend on NJobs.
type RandomizedSearchCV struct {
	// Estimator is the template model. It must also implement
	// model.ParameterSetter so sampled configurations can be applied.
	Estimator Estimator

	// Params defines the search space.
	Params ParamDistributions

	// NIter is the number of sampled configurations.
	NIter int

	// CV is the fold splitter. Nil defaults to 5-fold without shuffling.
	CV *KFold

	// Scorer ranks configurations, greater is better. Nil defaults to NegRMSE.
	Scorer Scorer

	// Seed drives candidate sampling.
	Seed int64

	// NJobs controls evaluation parallelism: 1 forces sequential execution,
	// any other value uses all available cores.
	NJobs int

	// Logger receives per-candidate progress records. Nil disables logging.
	Logger log.Logger
}

// Fit runs the search on the training data.
func (rs *RandomizedSearchCV) Fit(X mat.Matrix, y *mat.VecDense) (*SearchResult, error) {
	if rs.Estimator == nil {
		return nil, errors.NewValueError("RandomizedSearchCV.Fit", "estimator must not be nil")
	}
	if _, ok := rs.Estimator.(model.ParameterSetter); !ok {
		return nil, errors.NewValueError("RandomizedSearchCV.Fit",
			"estimator must implement SetParams")
	}
	if rs.NIter <= 0 {
		return nil, errors.NewValidationError("NIter", "must be positive", rs.NIter)
	}
	if len(rs.Params) == 0 {
		return nil, errors.NewValueError("RandomizedSearchCV.Fit", "empty parameter space")
	}

	kf := rs.CV
	if kf == nil {
		kf = NewKFold(5, false, 0)
	}
	scorer := rs.Scorer
	if scorer == nil {
		scorer = NegRMSE
	}

	candidates := rs.sampleCandidates()

	results := make([]CandidateResult, len(candidates))
	errs := make([]error, len(candidates))

	evaluate := func(i int) {
		params := candidates[i]

		clone, ok := rs.Estimator.Clone().(Estimator)
		if !ok {
			errs[i] = errors.NewValueError("RandomizedSearchCV.Fit", "Clone must return an Estimator")
			return
		}
		if err := clone.(model.ParameterSetter).SetParams(params); err != nil {
			errs[i] = errors.Wrapf(err, "candidate %d: invalid parameters", i)
			return
		}

		scores, err := CrossValScore(clone, X, y, kf, scorer)
		if err != nil {
			errs[i] = errors.Wrapf(err, "candidate %d: evaluation failed", i)
			return
		}

		mean, std := meanStd(scores)
		results[i] = CandidateResult{
			Params:     params,
			FoldScores: scores,
			MeanScore:  mean,
			StdScore:   std,
		}
		if rs.Logger != nil {
			rs.Logger.Debug("evaluated candidate",
				log.CandidateKey, i,
				log.ParamsKey, params,
				log.ScoreKey, mean)
		}
	}

	if rs.NJobs == 1 {
		for i := range candidates {
			evaluate(i)
		}
	} else {
		parallel.ForEach(len(candidates), evaluate)
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	// Best mean score, earliest candidate on ties
	best := 0
	for i := 1; i < len(results); i++ {
		if results[i].MeanScore > results[best].MeanScore {
			best = i
		}
	}

	if rs.Logger != nil {
		rs.Logger.Info("search finished",
			log.CandidateKey, best,
			log.ParamsKey, results[best].Params,
			log.ScoreKey, results[best].MeanScore)
	}

	bestEst, ok := rs.Estimator.Clone().(Estimator)
	if !ok {
		return nil, errors.NewValueError("RandomizedSearchCV.Fit", "Clone must return an Estimator")
	}
	if err := bestEst.(model.ParameterSetter).SetParams(results[best].Params); err != nil {
		return nil, errors.Wrap(err, "refitting best candidate")
	}
	if err := bestEst.Fit(X, y); err != nil {
		return nil, errors.Wrap(err, "refitting best candidate")
	}

	return &SearchResult{
		BestParams:    results[best].Params,
		BestScore:     results[best].MeanScore,
		BestEstimator: bestEst,
		CVResults:     results,
	}, nil
}

// sampleCandidates draws every configuration before any evaluation starts.
// Parameter names are visited in sorted order, so the seed fully determines
// the sequence.
func (rs *RandomizedSearchCV) sampleCandidates() []map[string]interface{} {
	names := make([]string, 0, len(rs.Params))
	for name := range rs.Params {
		names = append(names, name)
	}
	sort.Strings(names)

	rng := rand.New(rand.NewPCG(uint64(rs.Seed), uint64(rs.Seed)))

	candidates := make([]map[string]interface{}, rs.NIter)
	for i := 0; i < rs.NIter; i++ {
		params := make(map[string]interface{}, len(names))
		for _, name := range names {
			params[name] = rs.Params[name].Sample(rng)
		}
		candidates[i] = params
	}
	return candidates
}

func meanStd(values []float64) (mean, std float64) {
	n := float64(len(values))
	for _, v := range values {
		mean += v
	}
	mean /= n
	for _, v := range values {
		d := v - mean
		std += d * d
	}
	return mean, math.Sqrt(std / n)
}

// Command edmctl is a thin CLI driver over package edm, wiring
// together dataio (CSV in/out) and benchmark (linear VAR baseline),
// in the teacher's own hand-parsed-flags style (legacy/main.go).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"edm/benchmark"
	"edm/dataio"
	"edm/edm"
)

func main() {
	var (
		input      = flag.String("input", "", "input CSV path (required)")
		config     = flag.String("config", "", "optional YAML parameters file; flags override its values")
		methodName = flag.String("method", "smap", "smap | embed (simplex projection output is not yet wired)")
		lib        = flag.String("lib", "", "library range, \"start end\" (1-based inclusive)")
		pred       = flag.String("pred", "", "prediction range, \"start end\" (1-based inclusive)")
		e          = flag.Int("E", 1, "embedding dimension")
		tau        = flag.Int("tau", 1, "embedding lag")
		tp         = flag.Int("tp", 0, "prediction horizon")
		knn        = flag.Int("knn", 0, "neighbor count (0 = method default)")
		theta      = flag.Float64("theta", 0, "S-Map localization exponent")
		columns    = flag.String("columns", "", "columns to embed/use (comma-separated names or indices)")
		target     = flag.String("target", "", "target column (name or index)")
		embedded   = flag.Bool("embedded", false, "treat input as already embedded")
		verbose    = flag.Bool("verbose", false, "emit debug-level warnings")
		predOut    = flag.String("predictions", "", "output CSV for predictions (required)")
		coefOut    = flag.String("coefficients", "", "output CSV for S-Map coefficients (S-Map only)")
		timeColumn = flag.String("timeColumn", "", "name of an explicit time column in the input CSV")
		runBench   = flag.Bool("benchmark", false, "also fit a linear VAR baseline and report skill comparison")
		varLags    = flag.Int("varLags", 2, "VAR lag order, when -benchmark is set")
	)
	flag.Parse()

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	if *input == "" || *predOut == "" {
		fmt.Fprintln(os.Stderr, "usage: edmctl -input data.csv -predictions out.csv [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	raw := edm.RawParams{
		Lib: *lib, Pred: *pred,
		E: *e, Tau: *tau, Tp: *tp, Knn: *knn, Theta: *theta,
		Columns: *columns, Target: *target,
		Embedded: *embedded, Verbose: *verbose,
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if *config != "" {
		fileRaw, err := edm.LoadParamsFile(*config)
		if err != nil {
			log.Fatal().Err(err).Msg("edmctl: load config")
		}
		raw = mergeRawParams(fileRaw, raw, set)
	}

	// A method named in the config file stands unless -method is passed.
	if *config == "" || set["method"] || raw.Method == edm.MethodNone {
		switch *methodName {
		case "simplex":
			raw.Method = edm.MethodSimplex
		case "smap":
			raw.Method = edm.MethodSMap
		case "embed":
			raw.Method = edm.MethodEmbed
		default:
			log.Fatal().Str("method", *methodName).Msg("edmctl: unknown method")
		}
	}

	coreLog := edm.NewLogger(raw.Verbose)

	frame, timeCol, err := dataio.LoadSeries(*input, *timeColumn)
	if err != nil {
		log.Fatal().Err(err).Msg("edmctl: load input")
	}
	log.Info().Int("rows", frame.NRows()).Int("cols", frame.NColumns()).Msg("edmctl: loaded input")

	params, err := raw.Validate(coreLog)
	if err != nil {
		log.Fatal().Err(err).Msg("edmctl: validate parameters")
	}

	columnNames := params.ColumnNames
	if len(columnNames) == 0 && len(params.ColumnIndex) == 0 {
		columnNames = frame.ColumnNames()
	}

	block := frame
	if !params.Embedded {
		block, err = edm.Embed(frame, params.E, params.Tau, columnNames, params.ColumnIndex)
		if err != nil {
			log.Fatal().Err(err).Msg("edmctl: embed")
		}
	}

	if params.Method == edm.MethodEmbed {
		if err := dataio.WriteCSV(*predOut, block); err != nil {
			log.Fatal().Err(err).Msg("edmctl: write embedded block")
		}
		return
	}

	if len(params.Library) == 0 {
		params.Library = sequentialRange(block.NRows())
	}
	if len(params.Prediction) == 0 {
		params.Prediction = sequentialRange(block.NRows())
	}

	neighbors, err := edm.FindNeighbors(block, params, coreLog, true)
	if err != nil {
		log.Fatal().Err(err).Msg("edmctl: neighbor search")
	}

	targetIdx := 0
	if params.TargetName != "" {
		// After embedding, input column x is found as "x(t-0)".
		name := params.TargetName
		if !params.Embedded {
			name += "(t-0)"
		}
		idx, ok := block.ColumnNameToIndex()[name]
		if !ok {
			log.Fatal().Str("target", params.TargetName).Msg("edmctl: unknown target column")
		}
		targetIdx = idx
	} else if params.TargetIndex > 0 {
		targetIdx = params.TargetIndex
	}
	target := block.Column(targetIdx)

	predTime := make([]float64, len(params.Prediction))
	predObserved := make([]float64, len(params.Prediction))
	for i, r := range params.Prediction {
		predTime[i] = timeCol[r]
		predObserved[i] = target[r]
	}

	if params.Method == edm.MethodSimplex {
		log.Fatal().Msg("edmctl: simplex projection output is not yet wired (use -method smap)")
	}

	values, err := edm.SMap(block, target, neighbors, params, predObserved, predTime, coreLog, true)
	if err != nil {
		log.Fatal().Err(err).Msg("edmctl: smap")
	}

	if err := dataio.WriteCSV(*predOut, values.Predictions); err != nil {
		log.Fatal().Err(err).Msg("edmctl: write predictions")
	}
	if *coefOut != "" {
		if err := dataio.WriteCSV(*coefOut, values.Coefficients); err != nil {
			log.Fatal().Err(err).Msg("edmctl: write coefficients")
		}
	}

	if *runBench {
		runBenchmarkComparison(log, frame, values, *varLags)
	}
}

// mergeRawParams layers fileRaw under flagRaw: a field is taken from
// flagRaw only when the corresponding flag was explicitly passed on
// the command line (per set, built from flag.Visit), so the config
// file supplies defaults and flags override them field-by-field.
func mergeRawParams(fileRaw, flagRaw edm.RawParams, set map[string]bool) edm.RawParams {
	out := fileRaw
	if set["lib"] {
		out.Lib = flagRaw.Lib
	}
	if set["pred"] {
		out.Pred = flagRaw.Pred
	}
	if set["E"] {
		out.E = flagRaw.E
	}
	if set["tau"] {
		out.Tau = flagRaw.Tau
	}
	if set["tp"] {
		out.Tp = flagRaw.Tp
	}
	if set["knn"] {
		out.Knn = flagRaw.Knn
	}
	if set["theta"] {
		out.Theta = flagRaw.Theta
	}
	if set["columns"] {
		out.Columns = flagRaw.Columns
	}
	if set["target"] {
		out.Target = flagRaw.Target
	}
	if set["embedded"] {
		out.Embedded = flagRaw.Embedded
	}
	if set["verbose"] {
		out.Verbose = flagRaw.Verbose
	}
	return out
}

func sequentialRange(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func runBenchmarkComparison(log zerolog.Logger, frame *edm.Frame, values *edm.SMapValues, varLags int) {
	est := &benchmark.OLSEstimator{}
	rf, err := est.Estimate(frame, benchmark.ModelSpec{Lags: varLags, Deterministic: benchmark.DetConst}, benchmark.EstimationOptions{})
	if err != nil {
		log.Error().Err(err).Msg("edmctl: benchmark estimate failed, skipping skill comparison")
		return
	}

	nPred := values.Predictions.NRows()
	fcst, err := rf.Forecast(frame.Matrix(), nPred)
	if err != nil {
		log.Error().Err(err).Msg("edmctl: benchmark forecast failed, skipping skill comparison")
		return
	}

	observed := make([]float64, nPred)
	smapPred := make([]float64, nPred)
	varPred := make([]float64, nPred)
	for i := 0; i < nPred; i++ {
		observed[i] = values.Predictions.At(i, 1)
		smapPred[i] = values.Predictions.At(i, 2)
		varPred[i] = fcst.At(i, 0)
	}

	report, err := benchmark.CompareSkill(observed, smapPred, varPred)
	if err != nil {
		log.Error().Err(err).Msg("edmctl: CompareSkill failed")
		return
	}

	log.Info().
		Float64("rhoSMap", report.RhoSMap).
		Float64("rhoVAR", report.RhoVAR).
		Float64("rmseSMap", report.RMSESMap).
		Float64("rmseVAR", report.RMSEVAR).
		Float64("maeSMap", report.MAESMap).
		Float64("maeVAR", report.MAEVAR).
		Msg("edmctl: skill comparison")
}

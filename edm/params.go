package edm

import (
	"strconv"
	"strings"
)

// Method selects which operation the core performs with a set of
// Parameters (spec.md §3).
type Method int

const (
	MethodNone Method = iota
	MethodSimplex
	MethodSMap
	MethodEmbed
)

// Metric selects the distance function used by NeighborSearch
// (spec.md §4.3).
type Metric int

const (
	Euclidean Metric = iota
	Manhattan
)

// RawParams holds the boundary-grammar string/scalar fields accepted
// from a CLI or config file (spec.md §6 "Parameter input grammar").
// Validate() converts a RawParams into a validated *Parameters.
type RawParams struct {
	Method Method

	Lib  string // "start end", 1-based inclusive
	Pred string // "start end", 1-based inclusive

	E     int
	Tp    int
	Knn   int
	Tau   int
	Theta float64

	Columns   string // comma/whitespace list; digit-only -> index, else name
	Target    string // single token; digit-only -> index, else name
	Jacobians string // comma/whitespace list of integers, even length, no zero

	Embedded        bool
	NoNeighborLimit bool
	Verbose         bool

	SVDSignificance float64
	TikhonovAlpha   float64
	ElasticNetAlpha float64
}

// Parameters is the validated, immutable-after-Validate configuration
// consumed by Embedding, NeighborSearch and SMap (spec.md §3).
type Parameters struct {
	Method Method

	E     int
	Tp    int
	Knn   int
	Tau   int
	Theta float64

	// Library and Prediction are zero-based row indices, derived from
	// the 1-based inclusive "start end" input form.
	Library    []int
	Prediction []int

	ColumnNames []string
	ColumnIndex []int

	TargetName  string
	TargetIndex int

	Jacobians []int

	Embedded        bool
	NoNeighborLimit bool
	Verbose         bool
	Validated       bool

	SVDSignificance float64
	TikhonovAlpha   float64
	ElasticNetAlpha float64

	Metric Metric

	log *Logger
}

func splitTokens(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ',' || r == '\n'
	})
	return fields
}

func onlyDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func parseRange(s, label string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	tok := splitTokens(s)
	if len(tok) != 2 {
		return nil, newError(ConfigInvalid, "%s must be two integers, got %q", label, s)
	}
	start, err := strconv.Atoi(tok[0])
	if err != nil {
		return nil, wrapError(ConfigInvalid, err, "%s: invalid start %q", label, tok[0])
	}
	end, err := strconv.Atoi(tok[1])
	if err != nil {
		return nil, wrapError(ConfigInvalid, err, "%s: invalid end %q", label, tok[1])
	}
	n := end - start + 1
	if n <= 0 {
		return nil, newError(ConfigInvalid, "%s: empty or negative range %q", label, s)
	}
	out := make([]int, n)
	for i := range out {
		out[i] = start - 1 + i
	}
	return out, nil
}

// Validate converts a RawParams into a validated *Parameters, applying
// the steps of spec.md §4.1. log may be nil.
func (r RawParams) Validate(log *Logger) (*Parameters, error) {
	p := &Parameters{
		Method:          r.Method,
		E:               r.E,
		Tp:              r.Tp,
		Knn:             r.Knn,
		Tau:             r.Tau,
		Theta:           r.Theta,
		Embedded:        r.Embedded,
		NoNeighborLimit: r.NoNeighborLimit,
		Verbose:         r.Verbose,
		SVDSignificance: r.SVDSignificance,
		TikhonovAlpha:   r.TikhonovAlpha,
		ElasticNetAlpha: r.ElasticNetAlpha,
		Metric:          Euclidean,
		log:             log,
	}
	if p.Tau == 0 {
		p.Tau = 1
	}

	lib, err := parseRange(r.Lib, "library")
	if err != nil {
		return nil, err
	}
	p.Library = lib

	pred, err := parseRange(r.Pred, "prediction")
	if err != nil {
		return nil, err
	}
	p.Prediction = pred

	if r.Columns != "" {
		cols := splitTokens(r.Columns)
		allDigits := true
		for _, c := range cols {
			if !onlyDigits(c) {
				allDigits = false
				break
			}
		}
		if allDigits {
			idx := make([]int, len(cols))
			for i, c := range cols {
				v, err := strconv.Atoi(c)
				if err != nil {
					return nil, wrapError(ConfigInvalid, err, "columns: invalid index %q", c)
				}
				idx[i] = v
			}
			p.ColumnIndex = idx
		} else {
			p.ColumnNames = cols
		}
	}

	if r.Target != "" {
		if onlyDigits(r.Target) {
			v, err := strconv.Atoi(r.Target)
			if err != nil {
				return nil, wrapError(ConfigInvalid, err, "target: invalid index %q", r.Target)
			}
			p.TargetIndex = v
		} else {
			p.TargetName = r.Target
		}
	}

	if r.Jacobians != "" {
		tok := splitTokens(r.Jacobians)
		if len(tok) < 2 {
			return nil, newError(ConfigInvalid, "jacobians must be at least two integers, got %q", r.Jacobians)
		}
		jac := make([]int, len(tok))
		for i, t := range tok {
			v, err := strconv.Atoi(t)
			if err != nil {
				return nil, wrapError(ConfigInvalid, err, "jacobians: invalid entry %q", t)
			}
			jac[i] = v
		}
		p.Jacobians = jac
	}

	switch p.Method {
	case MethodSimplex:
		if p.Knn < 1 {
			p.Knn = p.E + 1
			log.debugf("Validate: set knn = %d (E+1) for Simplex", p.Knn)
		}
		if p.Knn < p.E+1 {
			return nil, newError(ConfigInvalid, "Simplex knn %d is less than E+1 = %d", p.Knn, p.E+1)
		}
	case MethodSMap:
		if p.Knn > 0 {
			if p.Knn < p.E+1 {
				return nil, newError(ConfigInvalid, "S-Map knn must be at least E+1 = %d", p.E+1)
			}
		} else {
			p.Knn = len(p.Prediction) - p.Tp
			log.debugf("Validate: set knn = %d for SMap", p.Knn)
		}
		if !p.Embedded && len(p.ColumnNames) > 1 {
			log.warn("Validate: multivariable S-Map should use embedded=true input to ensure data/dimension correspondence")
		}
		if len(p.Jacobians) > 1 {
			for _, j := range p.Jacobians {
				if j == 0 {
					return nil, newError(ConfigInvalid, "S-Map jacobian columns cannot use column 0")
				}
			}
			if len(p.Jacobians)%2 != 0 {
				return nil, newError(ConfigInvalid, "S-Map jacobian columns must be in pairs")
			}
		}
		if p.TikhonovAlpha != 0 && p.ElasticNetAlpha != 0 {
			return nil, newError(ConfigInvalid, "multiple S-Map solve methods specified: use one or none of tikhonov, elasticNet")
		}
		if p.ElasticNetAlpha != 0 {
			if p.ElasticNetAlpha < 0.01 {
				log.warn("Validate: ElasticNetAlpha too small, clamped to 0.01")
				p.ElasticNetAlpha = 0.01
			}
			if p.ElasticNetAlpha > 1 {
				log.warn("Validate: ElasticNetAlpha too large, clamped to 1")
				p.ElasticNetAlpha = 1
			}
		}
	case MethodEmbed:
		// no-op
	default:
		return nil, newError(ConfigInvalid, "unknown method %v", p.Method)
	}

	p.Validated = true
	return p, nil
}

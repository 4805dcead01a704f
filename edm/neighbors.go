package edm

import (
	"math"
	"slices"
	"sort"
	"strconv"
	"sync"
)

// maxDistanceSentinel is the initial "no neighbor found yet" distance.
// Preserved at 1e300 (rather than math.MaxFloat64) per spec.md §9 Open
// Question 2, matching the legacy reference implementation exactly.
const maxDistanceSentinel = 1e300

// libraryTooSmallThreshold: if after scanning the library the maximum
// slot distance still exceeds this, knn could not be resolved.
const libraryTooSmallThreshold = 1e299

// Neighbors holds the k-nearest-library-row search result: two aligned
// matrices of shape (|prediction|, knn). Row order of k is NOT sorted
// by distance (spec.md §3) — only set identity and row alignment
// matter to downstream consumers (SMap).
type Neighbors struct {
	Indices   [][]int
	Distances [][]float64
}

// Distance computes the distance between v1 and v2 under metric.
// Vectors are not validated for equal length; the caller ensures it
// (both rows of the same matrix).
func Distance(v1, v2 []float64, metric Metric) (float64, error) {
	switch metric {
	case Euclidean:
		sum := 0.0
		for i := range v1 {
			d := v2[i] - v1[i]
			sum += d * d
		}
		return math.Sqrt(sum), nil
	case Manhattan:
		sum := 0.0
		for i := range v1 {
			sum += math.Abs(v2[i] - v1[i])
		}
		return sum, nil
	default:
		return 0, newError(UnknownMetric, "Distance: invalid metric %v", metric)
	}
}

// FindNeighbors computes, for each prediction row, the knn nearest
// library rows under the configured metric (spec.md §4.3).
//
// matrix is assumed to contain only the columns over which distance is
// computed (no time column). If parallel is true, the outer
// prediction-row loop is distributed across goroutines; warnings are
// aggregated and deduplicated before being logged, preserving
// deterministic output (spec.md §5).
func FindNeighbors(matrix *Frame, params *Parameters, log *Logger, parallel bool) (*Neighbors, error) {
	if !params.Validated {
		return nil, newError(ConfigInvalid, "FindNeighbors: Parameters not validated")
	}
	if params.Embedded && params.E != matrix.NColumns() {
		return nil, wrapError(DimensionMismatch, nil,
			"FindNeighbors: matrix columns (%d) does not match embedding dimension E (%d)",
			matrix.NColumns(), params.E)
	}
	if len(params.Library) == 0 || len(params.Prediction) == 0 {
		return nil, newError(ConfigInvalid, "FindNeighbors: library and prediction must be non-empty")
	}

	nLib := len(params.Library)
	nPred := len(params.Prediction)

	if overlap := intersectSorted(params.Prediction, params.Library); len(overlap) > 0 {
		log.warn(overlapMessage(overlap))
	}

	out := &Neighbors{
		Indices:   make([][]int, nPred),
		Distances: make([][]float64, nPred),
	}

	// Per-row warning flags, logged once after all rows are done.
	degenerate := make([]bool, nPred)
	tpOverrun := make([]bool, nPred)

	rowFn := func(rowI int) error {
		predRow := params.Prediction[rowI]
		predVec := matrix.Row(predRow)

		idx := make([]int, params.Knn)
		dist := make([]float64, params.Knn)
		for i := range dist {
			dist[i] = maxDistanceSentinel
		}

		for _, libRow := range params.Library {
			if libRow == predRow {
				log.debugf("FindNeighbors: ignoring degenerate lib_row %d and pred_row %d", libRow, predRow)
				continue
			}
			if libRow+params.Tp >= nLib && !params.NoNeighborLimit {
				continue
			}

			libVec := matrix.Row(libRow)
			d, err := Distance(libVec, predVec, params.Metric)
			if err != nil {
				return err
			}

			maxI := argmax(dist)
			if d < dist[maxI] {
				idx[maxI] = libRow
				dist[maxI] = d
			}
		}

		if dist[argmax(dist)] > libraryTooSmallThreshold {
			return newError(LibraryTooSmall,
				"FindNeighbors: library is too small to resolve %d knn neighbors", params.Knn)
		}

		if hasDuplicates(idx) {
			degenerate[rowI] = true
		}
		if params.NoNeighborLimit {
			for _, l := range idx {
				if l+params.Tp >= nLib {
					tpOverrun[rowI] = true
				}
			}
		}

		out.Indices[rowI] = idx
		out.Distances[rowI] = dist
		return nil
	}

	var err error
	if parallel {
		err = parallelRows(nPred, rowFn)
	} else {
		for i := 0; i < nPred && err == nil; i++ {
			err = rowFn(i)
		}
	}
	if err != nil {
		return nil, err
	}

	if slices.Contains(tpOverrun, true) {
		log.warn("FindNeighbors: neighbor row + Tp is outside the library (noNeighborLimit)")
	}
	if slices.Contains(degenerate, true) {
		log.warn("FindNeighbors: degenerate neighbors")
	}
	return out, nil
}

// parallelRows runs fn(i) for i in [0, n) across a bounded goroutine
// pool, returning the first error encountered. Each call writes only
// to its own disjoint output row, so no synchronization is needed
// beyond collecting the first error (spec.md §5).
func parallelRows(n int, fn func(i int) error) error {
	var wg sync.WaitGroup
	errs := make([]error, n)
	sem := make(chan struct{}, maxWorkers())

	for i := 0; i < n; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			errs[i] = fn(i)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func maxWorkers() int {
	return 8
}

func argmax(v []float64) int {
	maxI := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[maxI] {
			maxI = i
		}
	}
	return maxI
}

func hasDuplicates(idx []int) bool {
	cp := append([]int(nil), idx...)
	sort.Ints(cp)
	for i := 1; i < len(cp); i++ {
		if cp[i] == cp[i-1] {
			return true
		}
	}
	return false
}

// intersectSorted returns the sorted intersection of two possibly
// unsorted int slices (library/prediction ranges are already sorted
// ascending in practice, but we sort defensively).
func intersectSorted(a, b []int) []int {
	as := append([]int(nil), a...)
	bs := append([]int(nil), b...)
	sort.Ints(as)
	sort.Ints(bs)

	var out []int
	i, j := 0, 0
	for i < len(as) && j < len(bs) {
		switch {
		case as[i] == bs[j]:
			out = append(out, as[i])
			i++
			j++
		case as[i] < bs[j]:
			i++
		default:
			j++
		}
	}
	return out
}

func overlapMessage(overlap []int) string {
	msg := "FindNeighbors: degenerate library and prediction data found. Overlap indices:"
	for _, o := range overlap {
		msg += " " + strconv.Itoa(o)
	}
	return msg
}

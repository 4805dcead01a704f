package edm

import (
	"os"

	"gopkg.in/yaml.v3"
)

// configDoc mirrors RawParams's boundary grammar for YAML input,
// grounded in itohio-EasyRobot's yaml.v3-based config loader.
type configDoc struct {
	Method string `yaml:"method"`

	Lib  string `yaml:"lib"`
	Pred string `yaml:"pred"`

	E     int     `yaml:"e"`
	Tp    int     `yaml:"tp"`
	Knn   int     `yaml:"knn"`
	Tau   int     `yaml:"tau"`
	Theta float64 `yaml:"theta"`

	Columns   string `yaml:"columns"`
	Target    string `yaml:"target"`
	Jacobians string `yaml:"jacobians"`

	Embedded        bool `yaml:"embedded"`
	NoNeighborLimit bool `yaml:"noNeighborLimit"`
	Verbose         bool `yaml:"verbose"`

	SVDSignificance float64 `yaml:"svdSignificance"`
	TikhonovAlpha   float64 `yaml:"tikhonovAlpha"`
	ElasticNetAlpha float64 `yaml:"elasticNetAlpha"`
}

var methodNames = map[string]Method{
	"none":    MethodNone,
	"simplex": MethodSimplex,
	"smap":    MethodSMap,
	"embed":   MethodEmbed,
}

// LoadParamsFile parses a YAML config document into a RawParams.
// RawParams zero-values are used for any field the document omits, so
// flags can be layered on top by the caller (cmd/edmctl does this:
// flags override config-file values when both are given).
func LoadParamsFile(path string) (RawParams, error) {
	var doc configDoc
	raw, err := os.ReadFile(path)
	if err != nil {
		return RawParams{}, wrapError(IOFailure, err, "LoadParamsFile: read %s", path)
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return RawParams{}, wrapError(ConfigInvalid, err, "LoadParamsFile: parse %s", path)
	}

	method, ok := methodNames[doc.Method]
	if doc.Method != "" && !ok {
		return RawParams{}, newError(ConfigInvalid, "LoadParamsFile: unknown method %q", doc.Method)
	}

	return RawParams{
		Method:          method,
		Lib:             doc.Lib,
		Pred:            doc.Pred,
		E:               doc.E,
		Tp:              doc.Tp,
		Knn:             doc.Knn,
		Tau:             doc.Tau,
		Theta:           doc.Theta,
		Columns:         doc.Columns,
		Target:          doc.Target,
		Jacobians:       doc.Jacobians,
		Embedded:        doc.Embedded,
		NoNeighborLimit: doc.NoNeighborLimit,
		Verbose:         doc.Verbose,
		SVDSignificance: doc.SVDSignificance,
		TikhonovAlpha:   doc.TikhonovAlpha,
		ElasticNetAlpha: doc.ElasticNetAlpha,
	}, nil
}

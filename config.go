package distmesh

import (
	"io"
	"math"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Default tuning of the relaxation. These are the constants of the
// published DistMesh algorithm.
const (
	DefaultMaxIterations          = 1000
	DefaultDPTol                  = 1e-3
	DefaultTTol                   = 0.1
	DefaultFScale                 = 1.2
	DefaultDeltaT                 = 0.2
	DefaultGeomEps                = 0.1
	DefaultDensityControlInterval = 30
	DefaultSeed                   = 1
)

// DefaultDiffEps is the finite difference step relative to h0 used for
// gradient estimation, the square root of the float64 machine epsilon.
var DefaultDiffEps = math.Sqrt(0x1p-52)

// Config holds the tunable parameters of a mesh generation run. The zero
// value of any numeric field selects its default.
type Config struct {
	// MaxIterations caps the number of relaxation steps. Reaching it is
	// not an error, the Result is flagged as Exhausted.
	MaxIterations int `toml:"max_iterations"`
	// DPTol is the convergence tolerance: relaxation stops when every
	// interior node moves less than DPTol*h0 in a step.
	DPTol float64 `toml:"dptol"`
	// TTol triggers a retriangulation when any node moved more than
	// TTol*h0 since the last triangulation.
	TTol float64 `toml:"ttol"`
	// FScale scales desired bar lengths above the actual ones so that
	// bars push outward and fill the domain.
	FScale float64 `toml:"fscale"`
	// DeltaT is the explicit Euler step size.
	DeltaT float64 `toml:"deltat"`
	// GeomEps is the geometric tolerance relative to h0 used to decide if
	// a point or centroid is inside the domain.
	GeomEps float64 `toml:"geps"`
	// DiffEps is the finite difference step relative to h0.
	DiffEps float64 `toml:"deps"`
	// DensityControlInterval is the number of iterations between density
	// control passes that remove nodes of overly compressed bars.
	// Negative values disable density control.
	DensityControlInterval int `toml:"density_control_interval"`
	// Seed seeds the rejection sampling of the initial node set.
	Seed int64 `toml:"seed"`

	// Triangulator computes triangulations. Defaults to Delaunay.
	Triangulator Triangulator `toml:"-"`
	// Logger receives progress information. Nil discards all logs.
	Logger logrus.FieldLogger `toml:"-"`
}

// DefaultConfig returns the configuration with every parameter set to its default.
func DefaultConfig() Config {
	return Config{
		MaxIterations:          DefaultMaxIterations,
		DPTol:                  DefaultDPTol,
		TTol:                   DefaultTTol,
		FScale:                 DefaultFScale,
		DeltaT:                 DefaultDeltaT,
		GeomEps:                DefaultGeomEps,
		DiffEps:                DefaultDiffEps,
		DensityControlInterval: DefaultDensityControlInterval,
		Seed:                   DefaultSeed,
		Triangulator:           Delaunay{},
	}
}

// LoadConfig reads a TOML document and overlays it on DefaultConfig.
// Unknown keys are rejected.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, errors.Wrap(err, "decoding config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

// Validate checks that all parameters are usable. Zero values are
// accepted since they select defaults.
func (c Config) Validate() error {
	switch {
	case c.MaxIterations < 0:
		return errors.New("negative MaxIterations")
	case c.DPTol < 0 || c.TTol < 0 || c.FScale < 0 || c.DeltaT < 0 || c.GeomEps < 0 || c.DiffEps < 0:
		return errors.New("negative tolerance or step parameter")
	case isNaN(c.DPTol, c.TTol, c.FScale, c.DeltaT, c.GeomEps, c.DiffEps):
		return errors.New("NaN config parameter")
	case isInf(c.DPTol, c.TTol, c.FScale, c.DeltaT, c.GeomEps, c.DiffEps):
		return errors.New("infinite config parameter")
	}
	return nil
}

// withDefaults returns a copy of c with zero fields replaced by defaults.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.MaxIterations == 0 {
		c.MaxIterations = def.MaxIterations
	}
	if c.DPTol == 0 {
		c.DPTol = def.DPTol
	}
	if c.TTol == 0 {
		c.TTol = def.TTol
	}
	if c.FScale == 0 {
		c.FScale = def.FScale
	}
	if c.DeltaT == 0 {
		c.DeltaT = def.DeltaT
	}
	if c.GeomEps == 0 {
		c.GeomEps = def.GeomEps
	}
	if c.DiffEps == 0 {
		c.DiffEps = def.DiffEps
	}
	if c.DensityControlInterval == 0 {
		c.DensityControlInterval = def.DensityControlInterval
	}
	if c.Seed == 0 {
		c.Seed = def.Seed
	}
	if c.Triangulator == nil {
		c.Triangulator = def.Triangulator
	}
	if c.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		c.Logger = l
	}
	return c
}

func isNaN(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

func isInf(values ...float64) bool {
	for _, v := range values {
		if math.IsInf(v, 0) {
			return true
		}
	}
	return false
}

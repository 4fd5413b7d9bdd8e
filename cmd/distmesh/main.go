// Command distmesh generates triangle meshes of built-in planar domains and
// writes them as STL files or images.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/soypat/distmesh"
	"github.com/soypat/distmesh/form2"
	"github.com/soypat/distmesh/meshutil"
	"github.com/soypat/distmesh/render"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/plot/vg"
)

type flags struct {
	h0         float64
	configPath string
	maxIter    int
	workers    int
	stlPath    string
	imgPath    string
	imgSize    float64
	verbose    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags
	log := logrus.New()
	cmd := &cobra.Command{
		Use:   "distmesh <domain>",
		Short: "Generate a triangle mesh of a planar domain",
		Long: "Generate a triangle mesh of a planar domain by force relaxation.\n\nDomains: " +
			strings.Join(domainNames(), ", "),
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log.SetOutput(cmd.ErrOrStderr())
			if f.verbose {
				log.SetLevel(logrus.DebugLevel)
			}
			return run(cmd.Context(), log, args[0], f)
		},
	}
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	fl := cmd.Flags()
	fl.Float64Var(&f.h0, "h0", 0.1, "desired edge length where the density field is 1")
	fl.StringVar(&f.configPath, "config", "", "TOML file with relaxation parameters")
	fl.IntVar(&f.maxIter, "max-iterations", 0, "override maximum number of iterations")
	fl.IntVar(&f.workers, "workers", 1, "goroutines used to evaluate fields, 0 uses all CPUs")
	fl.StringVar(&f.stlPath, "stl", "", "write mesh to binary STL file")
	fl.StringVar(&f.imgPath, "img", "", "write mesh image, format taken from extension (png, svg, pdf)")
	fl.Float64Var(&f.imgSize, "img-size", 12, "image side length in centimetres")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "log relaxation progress")
	return cmd
}

func run(ctx context.Context, log logrus.FieldLogger, name string, f flags) error {
	dom, ok := domains[name]
	if !ok {
		return errors.Errorf("unknown domain %q, want one of %s", name, strings.Join(domainNames(), ", "))
	}
	cfg := distmesh.DefaultConfig()
	if f.configPath != "" {
		fp, err := os.Open(f.configPath)
		if err != nil {
			return err
		}
		cfg, err = distmesh.LoadConfig(fp)
		fp.Close()
		if err != nil {
			return errors.Wrapf(err, "loading %s", f.configPath)
		}
	}
	if f.maxIter > 0 {
		cfg.MaxIterations = f.maxIter
	}
	cfg.Logger = log

	fd, fh, pfix, err := dom()
	if err != nil {
		return errors.Wrapf(err, "building domain %s", name)
	}
	if f.workers != 1 {
		fd = distmesh.ParallelField(fd, f.workers).(distmesh.SDF2)
		fh = distmesh.ParallelField(fh, f.workers)
	}
	res, err := distmesh.Generate(ctx, fd, fh, f.h0, r2.Box{}, pfix, cfg)
	if err != nil {
		if len(res.Triangles) == 0 {
			return err
		}
		log.WithError(err).Warn("keeping last valid mesh")
	}
	summarize(log, res)

	if f.stlPath != "" {
		if err := render.CreateSTL(f.stlPath, render.NewMeshRenderer(res.Mesh)); err != nil {
			return errors.Wrap(err, "writing STL")
		}
	}
	if f.imgPath != "" {
		if err := writeImage(f.imgPath, res, vg.Length(f.imgSize)*vg.Centimeter); err != nil {
			return errors.Wrap(err, "writing image")
		}
	}
	return err
}

func writeImage(path string, res distmesh.Result, size vg.Length) (err error) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := fp.Close(); err == nil {
			err = cerr
		}
	}()
	return render.WriteImage(fp, res.Mesh, res.NFix, size, size, format)
}

func summarize(log logrus.FieldLogger, res distmesh.Result) {
	st := meshutil.Stats(res.Nodes, meshutil.Edges(res.Triangles))
	fields := logrus.Fields{
		"status":    res.Status,
		"nodes":     len(res.Nodes),
		"triangles": len(res.Triangles),
		"edgeMean":  fmt.Sprintf("%.4g", st.Mean),
		"edgeStd":   fmt.Sprintf("%.4g", st.StdDev),
	}
	if q := meshutil.Quality(res.Nodes, res.Triangles); len(q) > 0 {
		fields["minQuality"] = fmt.Sprintf("%.3f", floats.Min(q))
	}
	log.WithFields(fields).Info("mesh generated")
}

type domainFunc func() (fd distmesh.SDF2, fh distmesh.Field, pfix []r2.Vec, err error)

var domains = map[string]domainFunc{
	"disk": func() (distmesh.SDF2, distmesh.Field, []r2.Vec, error) {
		fd, err := form2.Circle(1)
		return fd, form2.Uniform(), nil, err
	},
	"square": func() (distmesh.SDF2, distmesh.Field, []r2.Vec, error) {
		bb := r2.Box{Min: r2.Vec{X: -1, Y: -1}, Max: r2.Vec{X: 1, Y: 1}}
		fd, err := form2.Rectangle(bb)
		corners := []r2.Vec{bb.Min, {X: 1, Y: -1}, {X: -1, Y: 1}, bb.Max}
		return fd, form2.Uniform(), corners, err
	},
	"annulus": func() (distmesh.SDF2, distmesh.Field, []r2.Vec, error) {
		outer, err := form2.Circle(1)
		if err != nil {
			return nil, nil, nil, err
		}
		inner, err := form2.Circle(0.4)
		if err != nil {
			return nil, nil, nil, err
		}
		fd, err := form2.Difference(outer, inner)
		if err != nil {
			return nil, nil, nil, err
		}
		fh, err := form2.DistanceGraded(inner, 1, 2, 3)
		return fd, fh, nil, err
	},
	"polygon": func() (distmesh.SDF2, distmesh.Field, []r2.Vec, error) {
		verts, err := form2.Nagon(5, 1)
		if err != nil {
			return nil, nil, nil, err
		}
		fd, err := form2.Polygon(verts)
		return fd, form2.Uniform(), verts, err
	},
}

func domainNames() []string {
	names := make([]string, 0, len(domains))
	for name := range domains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

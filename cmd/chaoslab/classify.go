package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/chaoslab/internal/analysis"
	"github.com/san-kum/chaoslab/internal/dynamo"
	"github.com/san-kum/chaoslab/internal/experiment"
	"github.com/san-kum/chaoslab/internal/viz"
)

var (
	classifyTrace float64
	classifyDet   float64
	classifyAt    []float64
)

// fixedPointer is implemented by maps with closed-form fixed points.
type fixedPointer interface {
	FixedPoints(p dynamo.Params) []dynamo.State
}

func newClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify [map]",
		Short: "classify a planar fixed point by the eigenvalues of its Jacobian",
		Long: "With a map, linearizes it at --at (default: its known fixed points, or the origin).\n" +
			"Without one, classifies the point (--trace, --det) of the trace-determinant plane.",
		Args: cobra.MaximumNArgs(1),
		RunE: classify,
	}
	f := cmd.Flags()
	f.Float64Var(&classifyTrace, "trace", 0, "trace of A")
	f.Float64Var(&classifyDet, "det", 0, "determinant of A")
	f.Float64SliceVar(&classifyAt, "at", nil, "fixed point x,y")
	f.StringArrayVarP(&params, "param", "p", nil, "map parameter as name=value (repeatable)")
	return cmd
}

func classify(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		if !cmd.Flags().Changed("trace") && !cmd.Flags().Changed("det") {
			return fmt.Errorf("classify needs a map or --trace/--det")
		}
		printLinearization(os.Stdout, "", analysis.Classify(classifyTrace, classifyDet))
		return nil
	}

	m, err := experiment.NewRegistry().GetMap(args[0])
	if err != nil {
		return err
	}
	named, err := parseParams(params)
	if err != nil {
		return err
	}
	p, err := experiment.ResolveParams(m, named)
	if err != nil {
		return err
	}

	var points []dynamo.State
	switch {
	case len(classifyAt) > 0:
		points = []dynamo.State{dynamo.State(classifyAt)}
	default:
		if fp, ok := m.(fixedPointer); ok {
			points = fp.FixedPoints(p)
		} else {
			points = []dynamo.State{make(dynamo.State, m.Dim())}
		}
	}
	if len(points) == 0 {
		fmt.Printf("%s has no fixed points at %v\n", m.Name(), p)
		return nil
	}

	for _, x := range points {
		l, err := analysis.ClassifyFixedPoint(m, p, x, 1e-9)
		if err != nil {
			return err
		}
		logger.Debug("classified fixed point",
			zap.String("map", m.Name()),
			zap.Float64s("at", x),
			zap.Stringer("kind", l.Kind),
		)
		printLinearization(os.Stdout, fmt.Sprintf("%s at %v", m.Name(), []float64(x)), l)
	}
	return nil
}

func printLinearization(out io.Writer, title string, l analysis.Linearization) {
	if title != "" {
		fmt.Fprintln(out, viz.Title.Render(title))
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  trace\t%g\n", l.Trace)
	fmt.Fprintf(w, "  det\t%g\n", l.Det)
	fmt.Fprintf(w, "  eigenvalues\t%.6g, %.6g\n", l.Lambda1, l.Lambda2)
	fmt.Fprintf(w, "  zone\t%s\n", l.Zone)

	// colors follow the exponent convention: green contracts, red expands
	kind := viz.MetricValue.Render(l.Kind.String())
	switch {
	case l.Stable():
		kind = viz.Negative.Render(l.Kind.String())
	case l.Kind == analysis.UnstableNode || l.Kind == analysis.UnstableFocus:
		kind = viz.Positive.Render(l.Kind.String())
	}
	if l.Reflecting {
		kind += viz.Subtle.Render("  (reflecting)")
	}
	fmt.Fprintf(w, "  type\t%s\n", kind)
	_ = w.Flush()
	fmt.Fprintln(out)
}

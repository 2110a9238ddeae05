package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/chaoslab/internal/analysis"
	"github.com/san-kum/chaoslab/internal/config"
	"github.com/san-kum/chaoslab/internal/experiment"
	"github.com/san-kum/chaoslab/internal/export"
	"github.com/san-kum/chaoslab/internal/storage"
	"github.com/san-kum/chaoslab/internal/sweep"
	"github.com/san-kum/chaoslab/internal/viz"
)

// presetByPath resolves "map/name".
func presetByPath(path string) (*config.Config, error) {
	mapName, name, ok := strings.Cut(path, "/")
	if !ok {
		return nil, fmt.Errorf("preset %q: want map/name", path)
	}
	cfg := config.GetPreset(mapName, name)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s (available for %s: %v)", path, mapName, config.ListPresets(mapName))
	}
	return cfg, nil
}

// parseParams reads name=value pairs.
func parseParams(pairs []string) (map[string]float64, error) {
	out := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		name, val, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("parameter %q: want name=value", pair)
		}
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", pair, err)
		}
		out[name] = v
	}
	return out, nil
}

// parseAxis reads name=min:max:steps.
func parseAxis(spec string) (*config.AxisConfig, error) {
	name, rng, ok := strings.Cut(spec, "=")
	parts := strings.Split(rng, ":")
	if !ok || name == "" || len(parts) != 3 {
		return nil, fmt.Errorf("axis %q: want name=min:max:steps", spec)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return nil, fmt.Errorf("axis %q: %w", spec, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return nil, fmt.Errorf("axis %q: %w", spec, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil {
		return nil, fmt.Errorf("axis %q: %w", spec, err)
	}
	return &config.AxisConfig{Param: name, Min: lo, Max: hi, Steps: n}, nil
}

// applyFlags overrides cfg with every flag set on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	if f.Changed("param") {
		named, err := parseParams(params)
		if err != nil {
			return err
		}
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64, len(named))
		}
		for k, v := range named {
			cfg.Params[k] = v
		}
	}
	if f.Changed("init") {
		cfg.Init = append([]float64(nil), initState...)
	}
	if f.Changed("compose") {
		cfg.Compose = compose
	}
	if f.Changed("transient") {
		cfg.Transient = transient
	}
	if f.Changed("measure") {
		cfg.Measure = measure
	}
	if f.Changed("exponents") {
		cfg.Exponents = exponents
	}
	if f.Changed("threshold") {
		cfg.Threshold = threshold
	}
	if f.Changed("renorm") {
		cfg.RenormInterval = renorm
	}
	if f.Changed("mode") {
		cfg.Mode = mode
	}
	if f.Changed("axis") {
		a, err := parseAxis(axisSpec)
		if err != nil {
			return err
		}
		cfg.Axis = a
	}
	if f.Changed("axis2") {
		a, err := parseAxis(axis2Spec)
		if err != nil {
			return err
		}
		cfg.Axis2 = a
	}
	if f.Changed("samples") {
		cfg.Bifurcation.Samples = samples
	}
	if f.Changed("component") {
		cfg.Bifurcation.Component = component
	}
	if f.Changed("resolution") {
		cfg.Bifurcation.Resolution = resolution
	}
	if f.Changed("delta") {
		cfg.Sensitivity.Delta = delta
	}
	if f.Changed("steps") {
		cfg.Sensitivity.Steps = steps
	}
	if f.Changed("period") {
		cfg.Sensitivity.Period = period
	}
	if f.Changed("workers") {
		cfg.Workers = workers
	}
	return nil
}

func runKind(cmd *cobra.Command, kind, mapName string) error {
	cfg := config.DefaultConfig()
	if preset != "" {
		p := config.GetPreset(mapName, preset)
		if p == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(mapName))
		}
		cfg = p
	}
	cfg.Kind = kind
	cfg.Map = mapName
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}
	return execute(cmd, cfg)
}

func runConfigured(cmd *cobra.Command, args []string) error {
	var cfg *config.Config
	switch {
	case configFile != "" && preset != "":
		return fmt.Errorf("--config and --preset are exclusive")
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return err
		}
		cfg = c
	case preset != "":
		c, err := presetByPath(preset)
		if err != nil {
			return err
		}
		cfg = c
	default:
		return fmt.Errorf("run needs --config or --preset")
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}
	return execute(cmd, cfg)
}

// relay lets the experiment be built before the progress display exists.
type relay struct {
	to sweep.Progress
}

func (r *relay) Update(done, total int) {
	if r.to != nil {
		r.to.Update(done, total)
	}
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}

func sweeps(kind string) bool {
	switch kind {
	case config.KindSweep, config.KindPlane, config.KindBifurcation, config.KindSpectrum:
		return true
	}
	return false
}

func execute(cmd *cobra.Command, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	progress := &relay{}
	exp, err := experiment.New(cfg, nil,
		experiment.WithLogger(logger),
		experiment.WithSweepOptions(sweep.WithProgress(progress)),
	)
	if err != nil {
		return err
	}

	var res *experiment.Result
	if sweeps(cfg.Kind) && !quiet && isTerminal(os.Stderr) {
		title := fmt.Sprintf("%s %s", cfg.Kind, exp.Map().Name())
		err = viz.RunWithProgress(ctx, os.Stderr, title, func(ctx context.Context, p sweep.Progress) error {
			progress.to = p
			var err error
			res, err = exp.Run(ctx)
			return err
		})
	} else {
		res, err = exp.Run(ctx)
	}
	if err != nil {
		return err
	}

	render(os.Stdout, res)

	if !noSave {
		st, cat, err := openStore()
		if err != nil {
			return err
		}
		defer cat.Close()
		runID, err := st.Save(res, cfg.Transient, cfg.Measure, cfg.Threshold, cfg.Mode)
		if err != nil {
			return err
		}
		logger.Debug("saved run", zap.String("id", runID), zap.String("dir", st.Dir(runID)))
		fmt.Printf("run id: %s\n", runID)
	}

	return writeFigures(res, pngOut, svgOut)
}

func writeFigures(res *experiment.Result, pngPath, svgPath string) error {
	if pngPath != "" {
		if err := export.SavePNG(pngPath, res); err != nil {
			return fmt.Errorf("png: %w", err)
		}
		fmt.Printf("wrote %s\n", pngPath)
	}
	if svgPath != "" {
		svg, err := export.ResultToSVG(res)
		if err != nil {
			return fmt.Errorf("svg: %w", err)
		}
		if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgPath)
	}
	return nil
}

func openStore() (*storage.Store, *storage.Catalog, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return nil, nil, err
	}
	cat, err := storage.OpenCatalog(filepath.Join(dataDir, "catalog.sqlite3"))
	if err != nil {
		return nil, nil, err
	}
	return st.WithCatalog(cat), cat, nil
}

func render(w io.Writer, res *experiment.Result) {
	header := res.Map
	if res.Name != "" {
		header = res.Name
	}
	fmt.Fprintln(w, viz.Title.Render(fmt.Sprintf("%s  %s", res.Kind, header)))
	fmt.Fprintln(w, viz.Subtle.Render(fmt.Sprintf("params %v  init %v  %s", res.Params, res.Init, res.Elapsed.Round(time.Millisecond))))
	fmt.Fprintln(w)

	switch {
	case res.Exponents != nil:
		sum := 0.0
		for i, v := range res.Exponents {
			fmt.Fprintf(w, "  %s %s\n", viz.MetricLabel.Render(fmt.Sprintf("lambda%d", i+1)), viz.Exponent(v))
			sum += v
		}
		if len(res.Exponents) > 1 {
			fmt.Fprintf(w, "  %s %s\n", viz.MetricLabel.Render("sum    "), viz.Exponent(sum))
		}
	case res.Series != nil:
		fmt.Fprintln(w, viz.Curve(res.Series, 80, 12))
		ch := res.Series.Channel(0)
		fmt.Fprintf(w, "  %s %s\n", viz.MetricLabel.Render("lambda1"), viz.Sparkline(ch, 80))
		if i, ok := argmax(ch); ok {
			fmt.Fprintf(w, "  max lambda1 %s at %s=%g\n", viz.Exponent(ch[i]), res.Series.Param, res.Series.Params[i])
		}
	case res.Grid != nil:
		fmt.Fprint(w, viz.Heatmap(res.Grid, 0))
	case res.Bifurcation != nil:
		fmt.Fprint(w, viz.BifurcationPlot(res.Bifurcation, 80, 20))
	case res.Portrait != nil:
		fmt.Fprint(w, viz.PhasePlot(res.Portrait, 60, 20))
		xs := make([]float64, len(res.Portrait.Points))
		for i, p := range res.Portrait.Points {
			xs[i] = p.X
		}
		ps := analysis.PowerSpectrum(xs)
		fmt.Fprintf(w, "  %s %s\n", viz.MetricLabel.Render("power   "), viz.Sparkline(ps, 60))
		if period := analysis.DominantPeriod(ps, len(xs)); period > 0 {
			fmt.Fprintf(w, "  %s %s  %s %s\n",
				viz.MetricLabel.Render("period  "), viz.MetricValue.Render(fmt.Sprintf("%.4g", period)),
				viz.MetricLabel.Render("flatness"), viz.MetricValue.Render(fmt.Sprintf("%.3f", analysis.SpectralFlatness(ps))))
		} else {
			fmt.Fprintf(w, "  %s %s\n", viz.MetricLabel.Render("period  "), viz.MetricValue.Render("fixed point"))
		}
	case res.Distances != nil:
		logd := make([]float64, len(res.Distances))
		for i, d := range res.Distances {
			logd[i] = math.Log(d)
		}
		fmt.Fprintln(w, viz.Line(logd, "log distance per step", 80, 10))
		fmt.Fprintf(w, "  %s %s\n", viz.MetricLabel.Render("rate"), viz.Exponent(res.Rate))
	}
	fmt.Fprintln(w)
}

func argmax(v []float64) (int, bool) {
	best, ok := 0, false
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		if !ok || x > v[best] {
			best, ok = i, true
		}
	}
	return best, ok
}

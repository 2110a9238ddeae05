package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/chaoslab/internal/config"
	"github.com/san-kum/chaoslab/internal/dynamo"
	"github.com/san-kum/chaoslab/internal/experiment"
	"github.com/san-kum/chaoslab/internal/logging"
)

var (
	dataDir string
	debug   bool
	workers int
	quiet   bool
	noSave  bool

	configFile string
	preset     string

	params     []string
	initState  []float64
	compose    int
	transient  int
	measure    int
	exponents  int
	threshold  float64
	renorm     int
	mode       string
	axisSpec   string
	axis2Spec  string
	samples    int
	component  int
	resolution float64
	delta      float64
	steps      int
	period     float64

	pngOut string
	svgOut string

	listKind  string
	listMap   string
	listLimit int

	exportFormat string
	exportOut    string
)

var logger = zap.NewNop()

func main() {
	rootCmd := &cobra.Command{
		Use:           "chaoslab",
		Short:         "Lyapunov exponents and bifurcation diagrams of iterated maps",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New(debug)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".chaoslab", "data directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "verbose diagnostics")

	mapsCmd := &cobra.Command{
		Use:   "maps",
		Short: "list bundled maps and their parameters",
		RunE:  listMaps,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [map]",
		Short: "list presets, for every map or one",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run an experiment from a config file or preset",
		Args:  cobra.NoArgs,
		RunE:  runConfigured,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "experiment file (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "preset as map/name")
	addExperimentFlags(runCmd)

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a config file from the defaults or a preset",
		Args:  cobra.ExactArgs(1),
		RunE:  writeConfig,
	}
	initCmd.Flags().StringVar(&preset, "preset", "", "preset as map/name")

	rootCmd.AddCommand(mapsCmd, presetsCmd, runCmd, initCmd)

	for _, k := range []struct{ kind, short string }{
		{config.KindLyapunov, "estimate the Lyapunov spectrum at one parameter point"},
		{config.KindSweep, "sweep the exponents over one parameter"},
		{config.KindPlane, "sweep the exponents over two parameters"},
		{config.KindBifurcation, "sample attractors over one parameter"},
		{config.KindSpectrum, "exponents of a constant-matrix map over one parameter"},
		{config.KindOrbit, "phase portrait of one orbit"},
		{config.KindSensitivity, "separation growth of two nearby orbits"},
	} {
		kind := k.kind
		cmd := &cobra.Command{
			Use:   kind + " [map]",
			Short: k.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runKind(cmd, kind, args[0])
			},
		}
		cmd.Flags().StringVar(&preset, "preset", "", "start from a preset of this map")
		addExperimentFlags(cmd)
		rootCmd.AddCommand(cmd)
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}
	listCmd.Flags().StringVar(&listKind, "kind", "", "only runs of this kind")
	listCmd.Flags().StringVar(&listMap, "map", "", "only runs of this map")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "at most this many runs")

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a saved run as json, csv, png or svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "json, csv, png or svg")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (stdout for json, csv and svg when empty)")

	deleteCmd := &cobra.Command{
		Use:   "delete [run_id]",
		Short: "delete a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  deleteRun,
	}

	rootCmd.AddCommand(listCmd, showCmd, exportCmd, deleteCmd, newClassifyCmd())

	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addExperimentFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringArrayVarP(&params, "param", "p", nil, "map parameter as name=value (repeatable)")
	f.Float64SliceVar(&initState, "init", nil, "initial state (default 0.1 per component)")
	f.IntVar(&compose, "compose", 0, "iterate the n-fold composition of the map")
	f.IntVar(&transient, "transient", config.DefaultTransient, "iterations discarded before measuring")
	f.IntVar(&measure, "measure", config.DefaultMeasure, "iterations measured")
	f.IntVar(&exponents, "exponents", 1, "number of exponents")
	f.Float64Var(&threshold, "threshold", config.DefaultThreshold, "divergence threshold on any |component|")
	f.IntVar(&renorm, "renorm", 1, "steps between renormalizations")
	f.StringVar(&mode, "mode", "strict", "strict or lenient divergence handling")
	f.StringVar(&axisSpec, "axis", "", "swept parameter as name=min:max:steps")
	f.StringVar(&axis2Spec, "axis2", "", "second swept parameter as name=min:max:steps")
	f.IntVar(&samples, "samples", config.DefaultSamples, "attractor samples per bifurcation point")
	f.IntVar(&component, "component", 0, "state component for bifurcation diagrams")
	f.Float64Var(&resolution, "resolution", 0, "merge bifurcation samples closer than this")
	f.Float64Var(&delta, "delta", config.DefaultDelta, "initial separation for sensitivity")
	f.IntVar(&steps, "steps", 25, "sensitivity steps")
	f.Float64Var(&period, "period", 0, "state period for sensitivity distances (0 for none)")
	f.IntVar(&workers, "workers", 0, "parallel workers for sweeps (default: all CPUs)")
	f.BoolVarP(&quiet, "quiet", "q", false, "no progress display")
	f.BoolVar(&noSave, "no-save", false, "do not store the run")
	f.StringVar(&pngOut, "png", "", "also write a PNG figure here")
	f.StringVar(&svgOut, "svg", "", "also write an SVG figure here")
}

func listMaps(cmd *cobra.Command, args []string) error {
	reg := experiment.NewRegistry()
	for _, name := range reg.ListMaps() {
		m, err := reg.GetMap(name)
		if err != nil {
			return err
		}
		_, hasJac := dynamo.JacobianOf(m)
		jac := "jacobian"
		if !hasJac {
			jac = "no jacobian"
		}
		fmt.Printf("%-14s dim %d  %-12s", name, m.Dim(), jac)
		for i, p := range m.ParamNames() {
			fmt.Printf(" %s=%g", p, m.DefaultParams()[i])
		}
		fmt.Println()
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	mapNames := experiment.NewRegistry().ListMaps()
	if len(args) == 1 {
		mapNames = args[:1]
	}
	found := false
	for _, name := range mapNames {
		names := config.ListPresets(name)
		if len(names) == 0 {
			continue
		}
		found = true
		fmt.Printf("presets for %s:\n", name)
		for _, p := range names {
			cfg := config.GetPreset(name, p)
			fmt.Printf("  %-14s %s\n", p, cfg.Kind)
		}
	}
	if !found {
		fmt.Println("no presets found")
	}
	return nil
}

func writeConfig(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if preset != "" {
		p, err := presetByPath(preset)
		if err != nil {
			return err
		}
		cfg = p
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}

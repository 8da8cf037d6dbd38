package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"driftchamber/internal/chamber"
	"driftchamber/internal/config"
	"driftchamber/internal/montecarlo"
	"driftchamber/internal/muon"
	"driftchamber/internal/sim"
	"driftchamber/internal/solver"
	"driftchamber/internal/storage"
	"driftchamber/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string

	spacing       float64
	diffusivity   float64
	field         float64
	mobility      float64
	dt            float64
	steps         int
	dampingMargin float64
	seed          int64
	frameRate     int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "driftchamber",
		Short: "cosmic-ray muon drift chamber simulator",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".driftchamber", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "simulate one muon event headless and store the result",
		RunE:  runSimulation,
	}
	addPhysicsFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "simulate one muon event with live visualization",
		RunE:  runLive,
	}
	addPhysicsFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	muonCmd := &cobra.Command{
		Use:   "muon",
		Short: "generate a random cosmic-ray muon and print it",
		RunE:  generateMuon,
	}
	muonCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time-based)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available chamber presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range config.ListPresets() {
				fmt.Println(p)
			}
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a stored run's frames as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	rootCmd.AddCommand(runCmd, liveCmd, muonCmd, presetsCmd, listCmd, exportJSONCmd, exportCSVCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func addPhysicsFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&spacing, "spacing", config.DefaultSpacing, "grid spacing (cm)")
	cmd.Flags().Float64Var(&diffusivity, "diffusivity", config.DefaultDiffusivity, "gas diffusivity D")
	cmd.Flags().Float64Var(&field, "field", config.DefaultField, "electric field E")
	cmd.Flags().Float64Var(&mobility, "mobility", config.DefaultMobility, "charge mobility μ")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep (s)")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of timesteps")
	cmd.Flags().Float64Var(&dampingMargin, "margin", config.DefaultDampingMargin, "boundary damping margin (cm)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time-based)")
}

// buildConfig layers preset < config file < explicitly set flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s", preset)
		}
		tmp := *p
		cfg = &tmp
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	set := func(name string, apply func()) {
		if cmd.Flags().Changed(name) {
			apply()
		}
	}
	set("spacing", func() { cfg.Spacing = spacing })
	set("diffusivity", func() { cfg.Diffusivity = diffusivity })
	set("field", func() { cfg.Field = field })
	set("mobility", func() { cfg.Mobility = mobility })
	set("dt", func() { cfg.Dt = dt })
	set("steps", func() { cfg.Steps = steps })
	set("margin", func() { cfg.DampingMargin = dampingMargin })
	set("seed", func() { cfg.Seed = seed })
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type engine struct {
	driver  *sim.Driver
	initial chamber.Snapshot
	muon    *muon.Muon
	seed    int64
}

// buildEngine wires a seeded sampler, an incident muon, its ionization
// deposit, and the solver into a ready-to-run driver.
func buildEngine(cfg *config.Config) (*engine, error) {
	runSeed := cfg.Seed
	if runSeed == 0 {
		runSeed = time.Now().UnixNano()
	}
	sampler := montecarlo.NewSampler(montecarlo.NewSource(runSeed))
	if cfg.MaxAttempts > 0 {
		sampler.MaxAttempts = cfg.MaxAttempts
	}

	grid, err := chamber.New(cfg.ChamberHeight, cfg.ChamberWidth, cfg.Spacing)
	if err != nil {
		return nil, err
	}

	gen, err := muon.NewGenerator(sampler, muon.Plane{
		Width:  cfg.Plane.Width,
		Length: cfg.Plane.Length,
		Height: cfg.Plane.Height,
	}, muon.Chamber{Width: grid.Width(), Height: grid.Height()})
	if err != nil {
		return nil, err
	}
	gen.SetZenithBound(cfg.ZenithBound)
	m, _, _, err := gen.GenerateIncident()
	if err != nil {
		return nil, err
	}

	ionizer := chamber.NewIonizer(sampler)
	ionizer.Rate = cfg.Ionization
	if err := ionizer.Deposit(grid, m); err != nil {
		return nil, err
	}

	sol, err := solver.New(solver.Parameters{
		Diffusivity:   cfg.Diffusivity,
		Field:         cfg.Field,
		Mobility:      cfg.Mobility,
		Dt:            cfg.Dt,
		Spacing:       cfg.Spacing,
		DampingMargin: cfg.DampingMargin,
	}, nil)
	if err != nil {
		return nil, err
	}

	return &engine{
		driver:  sim.New(grid, sol),
		initial: grid.Snapshot(0, 0),
		muon:    m,
		seed:    runSeed,
	}, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	eng, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	result, err := eng.driver.Run(context.Background(), cfg.Steps)
	if err != nil {
		return err
	}

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}
	runID, err := store.Save(storage.RunMetadata{
		Seed:          eng.seed,
		Spacing:       cfg.Spacing,
		Diffusivity:   cfg.Diffusivity,
		Field:         cfg.Field,
		Mobility:      cfg.Mobility,
		Dt:            cfg.Dt,
		DampingMargin: cfg.DampingMargin,
		Muon:          eng.muon.String(),
		InitialCharge: eng.initial.Total,
	}, result)
	if err != nil {
		return err
	}

	final := eng.initial.Total
	if len(result.Totals) > 0 {
		final = result.Totals[len(result.Totals)-1]
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "run\t%s\n", runID)
	fmt.Fprintf(w, "muon\t%s\n", eng.muon)
	fmt.Fprintf(w, "seed\t%d\n", eng.seed)
	fmt.Fprintf(w, "steps\t%d\n", result.Steps)
	fmt.Fprintf(w, "initial charge\t%.6g\n", eng.initial.Total)
	fmt.Fprintf(w, "final charge\t%.6g\n", final)
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	eng, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	return viz.Run(eng.driver, eng.initial, eng.muon.String(), frameRate)
}

func generateMuon(cmd *cobra.Command, args []string) error {
	runSeed := seed
	if runSeed == 0 {
		runSeed = time.Now().UnixNano()
	}
	cfg := config.DefaultConfig()
	sampler := montecarlo.NewSampler(montecarlo.NewSource(runSeed))
	gen, err := muon.NewGenerator(sampler, muon.Plane{
		Width:  cfg.Plane.Width,
		Length: cfg.Plane.Length,
		Height: cfg.Plane.Height,
	}, muon.Chamber{Width: cfg.ChamberWidth, Height: cfg.ChamberHeight})
	if err != nil {
		return err
	}
	m, y, z, err := gen.GenerateIncident()
	if err != nil {
		return err
	}
	fmt.Println(m)
	fmt.Printf("enters chamber at y=%.2f cm, z=%.2f cm\n", y, z)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no stored runs")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tSTEPS\tFINAL CHARGE")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.6g\n", r.ID, r.Timestamp.Format(time.RFC3339), r.Steps, r.FinalCharge)
	}
	return w.Flush()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	meta, err := store.Load(args[0])
	if err != nil {
		return err
	}
	times, totals, err := store.LoadFrames(args[0])
	if err != nil {
		return err
	}
	out := struct {
		*storage.RunMetadata
		Times  []float64 `json:"times"`
		Totals []float64 `json:"totals"`
	}{meta, times, totals}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	times, totals, err := storage.New(dataDir).LoadFrames(args[0])
	if err != nil {
		return err
	}
	fmt.Println("step,time,total_charge")
	for i := range times {
		fmt.Printf("%d,%s,%s\n", i+1,
			strconv.FormatFloat(times[i], 'g', -1, 64),
			strconv.FormatFloat(totals[i], 'g', -1, 64))
	}
	return nil
}

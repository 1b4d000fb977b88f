package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/odeflow/internal/analysis"
	"github.com/san-kum/odeflow/internal/config"
	"github.com/san-kum/odeflow/internal/solve"
	"github.com/san-kum/odeflow/internal/storage"
	"github.com/san-kum/odeflow/internal/tableau"
	"github.com/san-kum/odeflow/internal/viz"
)

var (
	dataDir    string
	configFile string
	method     string
	rtol       float64
	atol       float64
	firstStep  float64
	maxSteps   int
	tEnd       float64
	samples    int
	// order command
	orderDt float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "odeflow",
		Short: "adaptive runge-kutta integration for linear systems",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".odeflow", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "integrate a system and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runIntegration,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&method, "method", "", "integration method")
	runCmd.Flags().Float64Var(&rtol, "rtol", 0, "relative tolerance")
	runCmd.Flags().Float64Var(&atol, "atol", 0, "absolute tolerance")
	runCmd.Flags().Float64Var(&firstStep, "first-step", 0, "initial step size (0 = estimate)")
	runCmd.Flags().IntVar(&maxSteps, "max-steps", 0, "step attempt budget")
	runCmd.Flags().Float64Var(&tEnd, "t-end", 0, "end time")
	runCmd.Flags().IntVar(&samples, "samples", 0, "number of output samples")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to csv",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	methodsCmd := &cobra.Command{
		Use:   "methods",
		Short: "list available integration methods",
		RunE:  listMethods,
	}

	orderCmd := &cobra.Command{
		Use:   "order [preset]",
		Short: "measure empirical convergence order of each method",
		Args:  cobra.MaximumNArgs(1),
		RunE:  measureOrder,
	}
	orderCmd.Flags().Float64Var(&orderDt, "dt", 0.1, "base step size")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in system presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets()
			sort.Strings(names)
			for _, name := range names {
				cfg := config.GetPreset(name)
				fmt.Printf("  %-12s %s, dim %d, t in [%g, %g]\n",
					name, cfg.Operator.Kind, len(cfg.Y0), cfg.T0, cfg.TEnd)
			}
			return nil
		},
	}

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "integrate with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	liveCmd.Flags().StringVar(&method, "method", "", "integration method")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, methodsCmd, orderCmd, presetsCmd, liveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the run configuration: preset, then config file,
// then individual flag overrides, each layer winning over the last.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if len(args) > 0 {
		preset := config.GetPreset(args[0])
		if preset == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
		cfg = preset
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("method") {
		cfg.Method = method
	}
	if cmd.Flags().Changed("rtol") {
		cfg.Rtol = rtol
	}
	if cmd.Flags().Changed("atol") {
		cfg.Atol = atol
	}
	if cmd.Flags().Changed("first-step") {
		cfg.FirstStep = firstStep
	}
	if cmd.Flags().Changed("max-steps") {
		cfg.MaxSteps = maxSteps
	}
	if cmd.Flags().Changed("t-end") {
		cfg.TEnd = tEnd
	}
	if cmd.Flags().Changed("samples") {
		cfg.Samples = samples
	}

	return cfg, nil
}

func runIntegration(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	op, err := cfg.BuildOperator()
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("integrating with %s, rtol=%.1e atol=%.1e...\n", cfg.Method, cfg.Rtol, cfg.Atol)
	start := time.Now()

	result, err := solve.Run(context.Background(), op, cfg.InitialState(), cfg.SolveConfig())
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(cfg.Method, cfg.Rtol, cfg.Atol, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n\n", runID)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "samples\t%d\n", len(result.Times))
	fmt.Fprintf(w, "steps accepted\t%d\n", result.Stats.Accepted)
	fmt.Fprintf(w, "steps rejected\t%d\n", result.Stats.Rejected)
	fmt.Fprintf(w, "evaluations\t%d\n", result.Stats.Evaluations)
	fmt.Fprintf(w, "final step\t%.3e\n", result.Stats.LastStep)
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMETHOD\tTIME\tSPAN\tRTOL\tACCEPTED\tREJECTED\tEVALS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t[%g, %g]\t%.1e\t%d\t%d\t%d\n",
			run.ID,
			run.Method,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.T0, run.TEnd,
			run.Rtol,
			run.Accepted,
			run.Rejected,
			run.Evaluations,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	states, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("method: %s\n", meta.Method)
	fmt.Printf("samples: %d\n\n", len(states))

	dim := len(states[0])
	maxPlots := 6
	if dim > maxPlots {
		dim = maxPlots
	}

	for idx := 0; idx < dim; idx++ {
		data := make([]float64, len(states))
		for i := range states {
			if idx < len(states[i]) {
				data[i] = states[i][idx]
			}
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("y%d vs time", idx)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	states, times, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	header := []string{"time"}
	for i := range states[0] {
		header = append(header, fmt.Sprintf("y%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range states {
		row := []string{strconv.FormatFloat(times[i], 'g', 12, 64)}
		for _, val := range states[i] {
			row = append(row, strconv.FormatFloat(val, 'g', 12, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func listMethods(cmd *cobra.Command, args []string) error {
	names := tableau.Names()
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tORDER\tSTAGES\tADAPTIVE\tDENSE")

	for _, name := range names {
		tab, err := tableau.Get(name)
		if err != nil {
			return err
		}
		adaptive, dense := "no", "no"
		if tab.Adaptive {
			adaptive = "yes"
		}
		if tab.Interpolate {
			dense = fmt.Sprintf("order %d", tab.DenseOrder)
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\n", name, tab.Order, tab.TotalStages(), adaptive, dense)
	}

	return w.Flush()
}

func measureOrder(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	op, err := cfg.BuildOperator()
	if err != nil {
		return err
	}
	y0 := cfg.InitialState()

	names := tableau.Names()
	sort.Strings(names)

	fmt.Printf("empirical local order at dt=%g\n\n", orderDt)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METHOD\tNOMINAL\tOBSERVED")

	for _, name := range names {
		tab, err := tableau.Get(name)
		if err != nil {
			return err
		}

		observed, err := analysis.LocalOrder(op, y0, cfg.T0, orderDt, name)
		if err != nil {
			fmt.Fprintf(w, "%s\t%d\terror: %v\n", name, tab.Order, err)
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%.2f\n", name, tab.Order, observed)
	}

	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	op, err := cfg.BuildOperator()
	if err != nil {
		return err
	}

	name := "custom"
	if len(args) > 0 {
		name = args[0]
	}

	m, err := viz.NewModel(op, cfg.StepperOptions(), cfg.InitialState(), cfg.T0, cfg.TEnd, name)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

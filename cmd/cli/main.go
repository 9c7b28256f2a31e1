package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"stochastic-dispatch/internal/config"
	"stochastic-dispatch/internal/data"
	"stochastic-dispatch/internal/market"
	"stochastic-dispatch/internal/report"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "solve":
		cmdSolve(os.Args[2:])
	case "refresh":
		cmdRefresh(os.Args[2:])
	case "inspect":
		cmdInspect(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli solve --config examples/dispatch.yaml --out results/ledger.csv --summary results/summary.csv")
	fmt.Println("  cli refresh --config examples/dispatch.yaml --forecast next_day.json --out results/ledger_next.csv")
	fmt.Println("  cli inspect --config examples/dispatch.yaml")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - solve builds the stochastic dispatch model from the config and solves it once")
	fmt.Println("  - refresh solves, swaps in a new forecast block without rebuilding, and solves again")
	fmt.Println("  - inspect prints model dimensions without solving")
}

func mustOpen(cfgPath string) *market.Market {
	if cfgPath == "" {
		fmt.Println("--config is required")
		os.Exit(2)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}
	m, err := data.Open(cfg)
	if err != nil {
		panic(err)
	}
	return m
}

func cmdSolve(args []string) {
	fs := flag.NewFlagSet("solve", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML config")
	outPath := fs.String("out", "results/ledger.csv", "Output ledger CSV path")
	summaryPath := fs.String("summary", "", "Optional: per scenario/step summary CSV path")
	_ = fs.Parse(args)

	m := mustOpen(*cfgPath)
	sol, err := m.Solve(context.Background())
	if err != nil {
		panic(err)
	}
	writeOutputs(sol, *outPath, *summaryPath)
}

func cmdRefresh(args []string) {
	fs := flag.NewFlagSet("refresh", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML config")
	forecastPath := fs.String("forecast", "", "Path to JSON forecast block for the next horizon")
	outPath := fs.String("out", "results/ledger_refreshed.csv", "Output ledger CSV path for the refreshed solve")
	summaryPath := fs.String("summary", "", "Optional: summary CSV path for the refreshed solve")
	_ = fs.Parse(args)

	if *forecastPath == "" {
		fmt.Println("--forecast is required")
		os.Exit(2)
	}

	m := mustOpen(*cfgPath)
	ctx := context.Background()
	before, err := m.Solve(ctx)
	if err != nil {
		panic(err)
	}
	fmt.Printf("Initial forecast: objective=%.2f\n", before.Objective)

	next, err := data.LoadForecastJSON(*forecastPath)
	if err != nil {
		panic(err)
	}
	if err := m.Refresh(next); err != nil {
		panic(err)
	}
	after, err := m.Solve(ctx)
	if err != nil {
		panic(err)
	}
	fmt.Printf("Refreshed forecast: objective=%.2f (delta %+.2f)\n", after.Objective, after.Objective-before.Objective)
	writeOutputs(after, *outPath, *summaryPath)
}

func cmdInspect(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML config")
	_ = fs.Parse(args)

	m := mustOpen(*cfgPath)
	topo, store := m.Topology(), m.Store()
	fmt.Printf("nodes=%d lines=%d generators=%d slack=%v\n", topo.NumNodes(), topo.NumLines(), m.Fleet().NumGenerators(), topo.SlackNodeIDs())
	fmt.Printf("scenarios=%d steps=%d voll=%.2f\n", store.NumScenarios(), store.NumSteps(), m.VOLL())
	fmt.Printf("%-16s %10s\n", "variables", "count")
	for _, k := range market.Kinds() {
		fmt.Printf("%-16s %10d\n", k, m.Variables().Count(k))
	}
	fmt.Printf("%-16s %10s\n", "constraints", "count")
	for _, k := range market.ConstraintKinds() {
		fmt.Printf("%-16s %10d\n", k, m.Constraints().Count(k))
	}
}

func writeOutputs(sol *market.Solution, outPath, summaryPath string) {
	ledger := report.Ledger(sol)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		panic(err)
	}
	if err := report.WriteLedgerCSV(outPath, ledger); err != nil {
		panic(err)
	}
	fmt.Printf("Wrote %d rows to %s\n", len(ledger), outPath)

	summary := report.Summarize(sol)
	if summaryPath != "" {
		if err := os.MkdirAll(filepath.Dir(summaryPath), 0o755); err != nil {
			panic(err)
		}
		if err := report.WriteSummaryCSV(summaryPath, summary); err != nil {
			panic(err)
		}
		fmt.Printf("Wrote %d rows to %s\n", len(summary), summaryPath)
	}
	fmt.Printf("Status=%s Expected cost=$%.2f Curtailed wind=%.2f MWh\n", sol.Status, sol.Objective, report.Curtailment(summary))
}

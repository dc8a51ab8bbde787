package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"leqo/internal/config"
	"leqo/internal/diag"
	"leqo/internal/enrich"
	"leqo/internal/model"
	"leqo/internal/pipeline"
)

var (
	compileOut      string
	compileReport   string
	compileRegister string
	compileStrategy string
	compileNoSched  bool
)

func init() {
	compileCmd.Flags().StringVarP(&compileOut, "out", "o", "", "write the merged program here instead of stdout")
	compileCmd.Flags().StringVar(&compileReport, "report", "", "write the JSON compile report here")
	compileCmd.Flags().StringVar(&compileRegister, "register", "", "override the shared register name")
	compileCmd.Flags().StringVar(&compileStrategy, "strategy", "", "scheduler strategy (weighted|stack)")
	compileCmd.Flags().BoolVar(&compileNoSched, "no-schedule", false, "disable the ancilla scheduler")
}

var compileCmd = &cobra.Command{
	Use:   "compile [flags] [request.json]",
	Short: "Merge a request graph into one program",
	Long:  "Merge a JSON request graph of annotated fragments into one OpenQASM program.\nReads the request from the given file, or from stdin when no file is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  compileExecution,
}

func compileExecution(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if compileRegister != "" {
		cfg.Compile.Register = compileRegister
	}
	if compileStrategy != "" {
		cfg.Compile.Strategy = compileStrategy
	}
	if compileNoSched {
		cfg.Compile.Schedule = false
	}

	req, err := readRequest(args)
	if err != nil {
		return err
	}

	enricher, err := buildEnricher(cfg)
	if err != nil {
		return err
	}

	program, report, d := pipeline.Compile(cmd.Context(), req, cfg, enricher)

	bag := diag.NewBag(64)
	if report != nil {
		for _, w := range report.Warnings {
			bag.Add(w)
		}
	}
	if d != nil {
		bag.Add(*d)
	}
	bag.Sort()
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	if !quiet || bag.HasErrors() {
		for _, item := range bag.Items() {
			if quiet && item.Severity < diag.SevError {
				continue
			}
			printDiagnostic(cmd.ErrOrStderr(), &item)
		}
	}
	if d != nil {
		return fmt.Errorf("compile failed")
	}

	out := cmd.OutOrStdout()
	if compileOut != "" {
		f, err := os.Create(compileOut)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	if _, err := io.WriteString(out, program.String()); err != nil {
		return err
	}

	if compileReport != "" {
		if err := writeReport(compileReport, report); err != nil {
			return err
		}
	}

	timings, _ := cmd.Root().PersistentFlags().GetBool("timings")
	if timings {
		printTimings(cmd.ErrOrStderr(), report)
	}
	return nil
}

func readRequest(args []string) (*model.Request, error) {
	in := io.Reader(os.Stdin)
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, err
		}
		defer f.Close()
		in = f
	}
	req, d := model.Decode(in)
	if d != nil {
		return nil, d
	}
	return req, nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Root().PersistentFlags().GetString("config")
	if path == "" {
		path = config.DefaultPath
	}
	return config.Load(path)
}

func buildEnricher(cfg *config.Config) (enrich.Enricher, error) {
	var enricher enrich.Enricher = enrich.Inline{}
	if cfg.Cache.Enabled {
		cache, err := enrich.OpenCache(cfg.Cache.Dir, enricher)
		if err != nil {
			return nil, fmt.Errorf("open enrichment cache: %w", err)
		}
		enricher = cache
	}
	return enricher, nil
}

func writeReport(path string, report *pipeline.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func printDiagnostic(out io.Writer, d *diag.Diagnostic) {
	label := color.New(color.FgRed, color.Bold).Sprint("error")
	if d.Severity == diag.SevWarning {
		label = color.New(color.FgYellow, color.Bold).Sprint("warning")
	}
	fmt.Fprintf(out, "%s[%s]: %s\n", label, d.Code, d.Message)
	if d.Node != "" {
		fmt.Fprintf(out, "  node: %s\n", d.Node)
	}
	for _, n := range d.Notes {
		if n.Node != "" {
			fmt.Fprintf(out, "  note: %s (node %s)\n", n.Msg, n.Node)
		} else {
			fmt.Fprintf(out, "  note: %s\n", n.Msg)
		}
	}
}

func printTimings(out io.Writer, report *pipeline.Report) {
	fmt.Fprintln(out, "timings:")
	for _, p := range report.Timings.Phases {
		fmt.Fprintf(out, "  %-12s %7.2f ms\n", p.Name, p.DurationMS)
	}
	fmt.Fprintf(out, "  %-12s %7.2f ms\n", "total", report.Timings.TotalMS)
}

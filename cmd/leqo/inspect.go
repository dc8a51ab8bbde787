package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"leqo/internal/pipeline"
	"leqo/internal/ui"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [flags] [request.json]",
	Short: "Compile a request and browse the result interactively",
	Long:  "Compile a JSON request graph and open an interactive view of the merged\nprogram, node order and register layout.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  inspectExecution,
}

func inspectExecution(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
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
	if d != nil {
		printDiagnostic(cmd.ErrOrStderr(), d)
		return fmt.Errorf("compile failed")
	}

	if !isTerminal(os.Stdout) {
		// Not a terminal: fall back to the plain summary.
		printSummary(cmd.OutOrStdout(), report)
		return nil
	}

	model := ui.NewInspectModel("leqo inspect", summarizeNodes(report), report.RegisterSize, program.String())
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

func printSummary(out io.Writer, report *pipeline.Report) {
	fmt.Fprintf(out, "register: %d qubits\n", report.RegisterSize)
	for _, s := range summarizeNodes(report) {
		unc := ""
		if s.Uncompute {
			unc = "  uncompute"
		}
		fmt.Fprintf(out, "  %-24s %3d qubits, %d in, %d out%s\n", s.Name, s.Qubits, s.Inputs, s.Outputs, unc)
	}
}

// summarizeNodes orders the layout rows by merge order.
func summarizeNodes(report *pipeline.Report) []ui.NodeSummary {
	byName := make(map[string]pipeline.NodeLayout, len(report.Layout))
	for _, l := range report.Layout {
		byName[l.Node] = l
	}
	out := make([]ui.NodeSummary, 0, len(report.Order))
	for _, name := range report.Order {
		l := byName[name]
		out = append(out, ui.NodeSummary{
			Name:      name,
			Qubits:    l.Qubits,
			Inputs:    l.Inputs,
			Outputs:   l.Outputs,
			Width:     l.Width,
			Depth:     l.Depth,
			Uncompute: report.Uncompute[name],
		})
	}
	return out
}

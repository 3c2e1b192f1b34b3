package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vnykmshr/nexus/pkg/processing/manager"
	"github.com/vnykmshr/nexus/pkg/processing/pipeline"
)

func newBatchCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "batch [file]",
		Short: "Process one input per line in parallel",
		Long: "Process every non-empty line of file (or stdin) through the pipeline for\n" +
			"--format. Results are printed in input order, followed by the report.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.batch(cmd, format, args)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(pipeline.FormatJSON), "input format: json, csv, stream")
	return cmd
}

func (a *app) batch(cmd *cobra.Command, formatName string, args []string) error {
	format, err := pipeline.ParseFormat(formatName)
	if err != nil {
		return err
	}

	var src io.Reader = cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
	}

	var jobs []manager.Job
	scanner := bufio.NewScanner(src)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		jobs = append(jobs, manager.Job{PipelineID: pipelineID(format), Input: parseInput(format, line)})
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	m, err := a.newManager()
	if err != nil {
		return err
	}

	stop, err := a.startReporter(m, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	results := m.RunBatch(commandContext(cmd.Context()), jobs)
	stop()

	out := cmd.OutOrStdout()
	failed := 0
	for i, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(out, "%d: [ERROR] %v\n", i+1, r.Err)
			continue
		}
		fmt.Fprintf(out, "%d: %s\n", i+1, r.Output)
	}
	if err := m.Report(out); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, len(results))
	}
	return nil
}

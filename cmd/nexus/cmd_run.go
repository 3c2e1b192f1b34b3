package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vnykmshr/nexus/pkg/processing/pipeline"
)

type runFlags struct {
	format string
	backup bool
	stats  bool
}

func newRunCmd(a *app) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run [input]",
		Short: "Process one input through a pipeline",
		Long: "Process one input through the pipeline for --format. Stream input is a\n" +
			"comma-separated list of readings. With no argument the input is read\n" +
			"from stdin.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, flags, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.format, "format", "f", string(pipeline.FormatJSON), "input format: json, csv, stream")
	f.BoolVar(&flags.backup, "backup", false, "retry failures on the permissive recovery pipeline")
	f.BoolVar(&flags.stats, "stats", false, "print pipeline statistics as YAML")
	return cmd
}

func (a *app) run(cmd *cobra.Command, flags runFlags, args []string) error {
	format, err := pipeline.ParseFormat(flags.format)
	if err != nil {
		return err
	}

	var text string
	if len(args) == 1 {
		text = args[0]
	} else {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = strings.TrimSpace(string(data))
	}

	m, err := a.newManager()
	if err != nil {
		return err
	}

	ctx := commandContext(cmd.Context())
	input := parseInput(format, text)
	out := cmd.OutOrStdout()

	var result string
	if flags.backup {
		backup, berr := a.newBackup(format)
		if berr != nil {
			return berr
		}
		m.Register(backup)
		result, err = m.RunWithRecovery(ctx, pipelineID(format), input, backup)
		for _, entry := range m.ErrorLog() {
			fmt.Fprintln(cmd.ErrOrStderr(), entry)
		}
	} else {
		result, err = m.RunPipeline(ctx, pipelineID(format), input)
	}

	if flags.stats {
		if serr := writeStats(out, m.Snapshot()); serr != nil {
			return serr
		}
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(out, result)
	return nil
}

// writeStats renders stats as a YAML sequence in registration order.
func writeStats(w io.Writer, stats []pipeline.Stats) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(stats); err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	return enc.Close()
}

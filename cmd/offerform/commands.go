package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-offerform/internal/httpapi"
	"github.com/goliatone/go-offerform/pkg/render"
	"github.com/goliatone/go-offerform/pkg/renderers/tui"
	"github.com/goliatone/go-offerform/pkg/validation"
)

func newFillCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fill",
		Short: "Fill in the offer form interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pipeline, err := a.pipeline(cmd.Context())
			if err != nil {
				return err
			}
			renderer, err := tui.New(tui.WithPromptDriver(tui.NewSurveyDriver(cmd.OutOrStdout())))
			if err != nil {
				return err
			}
			_, err = tui.NewSession(pipeline, renderer).Run(cmd.Context())
			return err
		},
	}
}

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			pipeline, err := a.pipeline(ctx)
			if err != nil {
				return err
			}
			opts := []httpapi.Option{
				httpapi.WithLogger(a.log),
				httpapi.WithMode(a.cfg.HTTP.Mode),
			}
			summaries, err := a.summaries(ctx, pipeline.Gateway())
			switch {
			case err == nil:
				opts = append(opts, httpapi.WithSummarizer(summaries))
			case errors.Is(err, errNoAPIKey):
				a.log.Info("text generation disabled", "reason", err)
			default:
				return err
			}

			server, err := httpapi.New(pipeline, opts...)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.HTTP.Addr
			}
			return server.Run(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides http.addr)")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show EMAIL",
		Short: "Print the stored submission for an email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, err := a.pipeline(cmd.Context())
			if err != nil {
				return err
			}
			record, found, err := pipeline.Lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no submission for %s", args[0])
			}
			return encode(cmd.OutOrStdout(), format, record)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format (json or yaml)")
	return cmd
}

func newSummarizeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summarize EMAIL",
		Short: "Generate and store a summary of a submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pipeline, err := a.pipeline(ctx)
			if err != nil {
				return err
			}
			summaries, err := a.summaries(ctx, pipeline.Gateway())
			if err != nil {
				return err
			}
			text, err := summaries.Summarize(ctx, args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var topic, extra string
	cmd := &cobra.Command{
		Use:   "analyze EMAIL",
		Short: "Generate and store an analysis of a submission on a topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pipeline, err := a.pipeline(ctx)
			if err != nil {
				return err
			}
			summaries, err := a.summaries(ctx, pipeline.Gateway())
			if err != nil {
				return err
			}
			analysis, err := summaries.Analyze(ctx, args[0], topic, extra)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), analysis.Analysis)
			return err
		},
	}
	cmd.Flags().StringVar(&topic, "topic", "", "analysis topic")
	cmd.Flags().StringVar(&extra, "extra", "", "additional notes for the analysis")
	_ = cmd.MarkFlagRequired("topic")
	return cmd
}

func newFormCmd(a *app) *cobra.Command {
	var (
		count    int
		order    []string
		renderer string
		output   string
	)
	cmd := &cobra.Command{
		Use:   "form",
		Short: "Render the form for a section count and order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			pipeline, err := a.pipeline(ctx)
			if err != nil {
				return err
			}
			form, err := pipeline.Form(count, order)
			if err != nil {
				return err
			}
			out, _, err := pipeline.Render(ctx, renderer, form, render.RenderOptions{})
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Form written to %s\n", output)
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 0, "number of offer sections (profile default when 0)")
	cmd.Flags().StringSliceVar(&order, "order", nil, "section identifiers in display order")
	cmd.Flags().StringVarP(&renderer, "renderer", "r", "text", "renderer to use")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}

func newSchemaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of a stored submission",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry, err := a.registry()
			if err != nil {
				return err
			}
			return encode(cmd.OutOrStdout(), "json", validation.RecordSchema(registry))
		},
	}
}

func encode(w io.Writer, format string, value any) error {
	switch strings.ToLower(format) {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(value); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

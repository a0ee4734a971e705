package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/codetour/internal/tour"
)

var (
	renderSelect int64
	renderTab    string
	renderFormat string
	renderOutput string
)

var renderCmd = &cobra.Command{
	Use:   "render <tour>",
	Short: "Render a tour page or summarise its state",
	Long: `Open a tour, load its files and render the page as static HTML, or print
a summary of its files, references and selection.

The tour is a path to a .tour.yaml document or a slug in the tours
directory.

Examples:
  codetour render two-column-demo -o demo.html
  codetour render two-column-demo --select 2 --format yaml
  codetour render tours/intro.tour.yaml --tab 1 --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().Int64Var(&renderSelect, "select", 0, "Activate the reference with this id before rendering")
	renderCmd.Flags().StringVar(&renderTab, "tab", "", "Show this file tab (label, path or index)")
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "html", "Output format (html, yaml, json)")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "Write to this file instead of stdout")
}

type renderSummary struct {
	Tour       string             `json:"tour" yaml:"tour"`
	Title      string             `json:"title" yaml:"title"`
	Mode       string             `json:"mode" yaml:"mode"`
	Files      []fileSummary      `json:"files" yaml:"files"`
	References []referenceSummary `json:"references" yaml:"references"`
	Selection  selectionSummary   `json:"selection" yaml:"selection"`
}

type fileSummary struct {
	Path        string `json:"path" yaml:"path"`
	Tab         string `json:"tab" yaml:"tab"`
	Lines       int    `json:"lines" yaml:"lines"`
	Highlighted string `json:"highlighted,omitempty" yaml:"highlighted,omitempty"`
}

type referenceSummary struct {
	ID          int64  `json:"id" yaml:"id"`
	File        string `json:"file" yaml:"file"`
	Lines       string `json:"lines,omitempty" yaml:"lines,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

type selectionSummary struct {
	File      string `json:"file,omitempty" yaml:"file,omitempty"`
	Lines     string `json:"lines,omitempty" yaml:"lines,omitempty"`
	Reference int64  `json:"reference,omitempty" yaml:"reference,omitempty"`
	Tab       int    `json:"tab" yaml:"tab"`
}

func runRender(cmd *cobra.Command, args []string) error {
	switch renderFormat {
	case "html", "yaml", "json":
	default:
		return fmt.Errorf("unsupported format: %s (supported: html, yaml, json)", renderFormat)
	}

	env, err := newEnvironment(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	t, err := env.openTour(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	session, err := env.openSession(ctx, t, renderSelect)
	if err != nil {
		return err
	}
	defer session.Close()

	if renderTab != "" {
		if err := selectTab(ctx, session, renderTab); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if renderOutput != "" {
		f, err := os.Create(renderOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	return writeRender(ctx, out, session, renderFormat)
}

func selectTab(ctx context.Context, session *tour.Session, name string) error {
	index := session.Tabs().Find(name)
	if index < 0 {
		if i, err := strconv.Atoi(name); err == nil {
			index = i
		}
	}
	if !session.SelectTab(ctx, index) {
		return fmt.Errorf("tour %s has no tab %q", session.Tour.Slug, name)
	}
	return nil
}

func writeRender(ctx context.Context, out io.Writer, session *tour.Session, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summarize(session))
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(summarize(session)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return session.Page().Render(ctx, out)
	}
}

func summarize(session *tour.Session) renderSummary {
	state := session.State()
	tabs := session.Tabs()
	tabs.Sync(state)

	summary := renderSummary{
		Tour:  session.Tour.Slug,
		Title: session.Tour.Title,
		Mode:  string(session.Mode()),
		Selection: selectionSummary{
			File:      state.SelectedFile,
			Lines:     state.SelectedLines.String(),
			Reference: int64(state.SelectedReferenceID),
			Tab:       tabs.SelectedIndex(),
		},
	}

	for i, v := range session.Viewers() {
		summary.Files = append(summary.Files, fileSummary{
			Path:        v.Path(),
			Tab:         tabs.Tabs()[i].Label,
			Lines:       len(v.Lines()),
			Highlighted: v.Highlighted(state).String(),
		})
	}
	for _, ref := range session.References() {
		summary.References = append(summary.References, referenceSummary{
			ID:          int64(ref.ID),
			File:        ref.Path,
			Lines:       ref.Lines.String(),
			Description: ref.Description,
		})
	}
	return summary
}

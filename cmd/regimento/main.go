package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/prototiposlegisla/regimento/pkg/amend"
	"github.com/prototiposlegisla/regimento/pkg/build"
	"github.com/prototiposlegisla/regimento/pkg/classify"
	"github.com/prototiposlegisla/regimento/pkg/docstream"
	"github.com/prototiposlegisla/regimento/pkg/index"
	"github.com/prototiposlegisla/regimento/pkg/model"
	"github.com/prototiposlegisla/regimento/pkg/refs"
	"github.com/prototiposlegisla/regimento/pkg/render"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "regimento",
		Short: "Structure inference for municipal legal codes",
		Long: `Regimento parses word-processing documents holding municipal legal
codes (Regimento Interno, Lei Orgânica) and infers their structure from
formatting conventions alone.

It produces:
  - A hierarchical JSON document: headings, articles, sub-provisions
  - Resolved amendment history with superseded versions flagged
  - A systematic index with per-section article ranges
  - Cross-reference validation for the remissive index spreadsheet
  - Markdown export suited to diffing and language-model consumption`,
		Version: version,
	}

	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(indexCmd())
	rootCmd.AddCommand(refsCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(conventionsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadDocument runs the shared front half of every command: extract the
// paragraph stream, classify and assemble it, then resolve amendments.
func loadDocument(source, conventionsDir, conventionsName string, includePrivate bool) (*model.Document, error) {
	conv, err := selectConventions(conventionsDir, conventionsName)
	if err != nil {
		return nil, err
	}

	src, err := docstream.Open(source, includePrivate)
	if err != nil {
		if errors.Is(err, docstream.ErrContainerBusy) {
			return nil, fmt.Errorf("%s is open in another program, close it and retry: %w", source, err)
		}
		return nil, err
	}

	builder := build.NewBuilder(classify.New(conv))
	builder.OnOrphan = func(p docstream.Paragraph) {
		fmt.Fprintf(os.Stderr, "warning: sub-provision before any article, dropped: %.60q\n", p.Text)
	}

	return amend.Resolve(builder.BuildSource(src)), nil
}

func selectConventions(dir, name string) (*classify.Conventions, error) {
	if dir == "" && name == "" {
		return classify.Default(), nil
	}

	reg := classify.NewRegistry()
	if dir != "" {
		if err := reg.LoadDirectory(dir); err != nil {
			return nil, err
		}
	}
	if name == "" {
		return classify.Default(), nil
	}
	conv, ok := reg.Get(name)
	if !ok {
		return nil, fmt.Errorf("conventions %q not found (available: %v)", name, reg.List())
	}
	return conv, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	data = append(data, '\n')
	if path == "" || path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <document.docx>",
		Short: "Parse a document into structured JSON",
		Long: `Parse a word-processing document and emit the inferred structure as JSON.

Example:
  regimento parse regimento.docx --output regimento.json --stats
  regimento parse leiorganica.docx --include-private`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			includePrivate, _ := cmd.Flags().GetBool("include-private")
			showStats, _ := cmd.Flags().GetBool("stats")
			convDir, _ := cmd.Flags().GetString("conventions-dir")
			convName, _ := cmd.Flags().GetString("conventions")

			start := time.Now()
			doc, err := loadDocument(args[0], convDir, convName, includePrivate)
			if err != nil {
				return err
			}

			if err := writeJSON(output, doc); err != nil {
				return err
			}

			if showStats {
				s := doc.Statistics()
				fmt.Fprintf(os.Stderr, "Parsed %s in %v\n", args[0], time.Since(start).Round(time.Millisecond))
				fmt.Fprintf(os.Stderr, "  headings:  %d\n", s.Headings)
				fmt.Fprintf(os.Stderr, "  articles:  %d\n", s.Articles)
				fmt.Fprintf(os.Stderr, "  units:     %d\n", s.Units)
				fmt.Fprintf(os.Stderr, "  footnotes: %d\n", s.Footnotes)
				fmt.Fprintf(os.Stderr, "  revoked:   %d\n", s.Revoked)
			}
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	cmd.Flags().Bool("include-private", false, "keep editorial footnotes marked private")
	cmd.Flags().Bool("stats", false, "print document statistics to stderr")
	cmd.Flags().String("conventions-dir", "", "directory of conventions YAML files")
	cmd.Flags().String("conventions", "", "named conventions to apply (default built-in)")
	return cmd
}

func indexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index <document.docx>",
		Short: "Build the systematic index",
		Long: `Build the systematic index: the title/chapter/section tree with
article leaves and per-node article ranges, as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			includePrivate, _ := cmd.Flags().GetBool("include-private")
			convDir, _ := cmd.Flags().GetString("conventions-dir")
			convName, _ := cmd.Flags().GetString("conventions")

			doc, err := loadDocument(args[0], convDir, convName, includePrivate)
			if err != nil {
				return err
			}
			return writeJSON(output, index.Build(doc))
		},
	}
	cmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	cmd.Flags().Bool("include-private", false, "keep editorial footnotes marked private")
	cmd.Flags().String("conventions-dir", "", "directory of conventions YAML files")
	cmd.Flags().String("conventions", "", "named conventions to apply (default built-in)")
	return cmd
}

func refsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refs <document.docx> <references.csv>",
		Short: "Check remissive index references against the document",
		Long: `Load the remissive index spreadsheet (exported as CSV with columns
subject, sub_subject, devices, vides) and verify that every declared
reference points at an article present in the parsed document.

Exits non-zero when any reference fails to resolve.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			includePrivate, _ := cmd.Flags().GetBool("include-private")
			convDir, _ := cmd.Flags().GetString("conventions-dir")
			convName, _ := cmd.Flags().GetString("conventions")

			doc, err := loadDocument(args[0], convDir, convName, includePrivate)
			if err != nil {
				return err
			}

			// Lettered article numbers present in the document drive
			// range expansion in the declarations.
			knownLettered := make(map[string]bool)
			for _, a := range doc.Articles() {
				if len(a.Number) > 0 && a.Number[len(a.Number)-1] >= 'A' && a.Number[len(a.Number)-1] <= 'Z' {
					knownLettered[a.Number] = true
				}
			}

			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			entries, err := refs.LoadCSV(f, knownLettered)
			if err != nil {
				return err
			}

			problems := refs.Check(doc, entries)
			if output != "" {
				if err := writeJSON(output, problems); err != nil {
					return err
				}
			} else {
				for _, p := range problems {
					fmt.Printf("%s: %s (art %s)\n", p.Subject, p.Message, p.Ref.Art)
				}
			}
			if len(problems) > 0 {
				return fmt.Errorf("%d reference problem(s)", len(problems))
			}
			fmt.Fprintf(os.Stderr, "All %d entries resolve.\n", len(entries))
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "write problems as JSON to file")
	cmd.Flags().Bool("include-private", false, "keep editorial footnotes marked private")
	cmd.Flags().String("conventions-dir", "", "directory of conventions YAML files")
	cmd.Flags().String("conventions", "", "named conventions to apply (default built-in)")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <document.docx>",
		Short: "Export the parsed document as markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			includePrivate, _ := cmd.Flags().GetBool("include-private")
			convDir, _ := cmd.Flags().GetString("conventions-dir")
			convName, _ := cmd.Flags().GetString("conventions")

			doc, err := loadDocument(args[0], convDir, convName, includePrivate)
			if err != nil {
				return err
			}

			md := render.Markdown(doc)
			if output == "" || output == "-" {
				fmt.Print(md)
				return nil
			}
			if err := os.WriteFile(output, []byte(md), 0644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	cmd.Flags().Bool("include-private", false, "keep editorial footnotes marked private")
	cmd.Flags().String("conventions-dir", "", "directory of conventions YAML files")
	cmd.Flags().String("conventions", "", "named conventions to apply (default built-in)")
	return cmd
}

func conventionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conventions",
		Short: "Manage classification conventions",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List available conventions",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			reg := classify.NewRegistry()
			if dir != "" {
				if err := reg.LoadDirectory(dir); err != nil {
					return err
				}
			}
			for _, name := range reg.List() {
				fmt.Println(name)
			}
			return nil
		},
	}
	list.Flags().String("dir", "", "directory of conventions YAML files")

	validate := &cobra.Command{
		Use:   "validate <file.yaml>",
		Short: "Validate a conventions file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := classify.NewRegistry()
			if err := reg.LoadFile(args[0]); err != nil {
				return err
			}
			fmt.Printf("%s: OK\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, validate)
	return cmd
}

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"drift/internal/diagfmt"
	"drift/internal/driver"
	"drift/internal/ui"
)

var interiorCmd = &cobra.Command{
	Use:   "interior [flags] <artifact.drift|directory>...",
	Short: "Compute the suspension interior of body artifacts",
	Long: `Decode suspendable body artifacts, validate them, and compute for each
the set of types live across its suspension points. The composite of
those types is what the coroutine's state must be able to store.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInterior,
}

func init() {
	interiorCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	interiorCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	interiorCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	interiorCmd.Flags().Bool("disk-cache", false, "reuse cached results for unchanged artifacts")
}

type interiorPayload struct {
	Path      string   `json:"path"`
	Body      string   `json:"body,omitempty"`
	Composite string   `json:"composite,omitempty"`
	Elems     []string `json:"elems,omitempty"`
	Pending   int      `json:"pending_obligations,omitempty"`
	Cached    bool     `json:"cached,omitempty"`
	Error     string   `json:"error,omitempty"`
	Invalid   bool     `json:"invalid,omitempty"`
}

func runInterior(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	useDiskCache, err := cmd.Flags().GetBool("disk-cache")
	if err != nil {
		return fmt.Errorf("failed to get disk-cache flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	cfg, err := driver.LoadConfig(".")
	if err != nil {
		return err
	}
	if jobs == 0 {
		jobs = cfg.Analyze.Jobs
	}

	colored, err := resolveColor(cmd, cfg.Analyze.Color)
	if err != nil {
		return err
	}
	color.NoColor = !colored

	tracer, cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	files, err := driver.ListArtifacts(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .drift artifacts found in %v", args)
	}

	var cache *driver.DiskCache
	if useDiskCache || cfg.Analyze.Cache {
		cache, err = driver.OpenDiskCache("drift")
		if err != nil {
			return fmt.Errorf("failed to open disk cache: %w", err)
		}
	}

	results, err := driver.AnalyzeAll(cmd.Context(), files, driver.Options{
		Jobs:           jobs,
		MaxDiagnostics: maxDiagnostics,
		Tracer:         tracer,
		Cache:          cache,
	})
	if err != nil {
		return err
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil || res.Bag.HasErrors() {
			failed++
		}
	}

	if format == "json" {
		if err := renderInteriorJSON(cmd, results); err != nil {
			return err
		}
	} else {
		renderInteriorPretty(cmd, results, colored, withNotes, quiet)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d artifacts failed", failed, len(results))
	}
	return nil
}

func renderInteriorPretty(cmd *cobra.Command, results []driver.Result, colored, withNotes, quiet bool) {
	out := cmd.OutOrStdout()
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", res.Path, res.Err)
			continue
		}
		if res.Bag.HasErrors() {
			res.Bag.Sort()
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: invalid artifact\n", res.Path)
			diagfmt.Pretty(cmd.ErrOrStderr(), res.Bag, nil, diagfmt.PrettyOpts{
				Color:     colored,
				ShowNotes: withNotes,
			})
		}
	}
	if !quiet {
		fmt.Fprint(out, ui.RenderSummary(results, summaryWidth()))
	}
}

func renderInteriorJSON(cmd *cobra.Command, results []driver.Result) error {
	payloads := make([]interiorPayload, len(results))
	for i, res := range results {
		p := interiorPayload{
			Path:      res.Path,
			Body:      res.Body,
			Composite: res.Composite,
			Elems:     res.Elems,
			Pending:   res.Pending,
			Cached:    res.Cached,
			Invalid:   res.Bag.HasErrors(),
		}
		if res.Err != nil {
			p.Error = res.Err.Error()
		}
		payloads[i] = p
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(payloads)
}

// resolveColor combines the --color flag, the manifest setting, and
// terminal detection.
func resolveColor(cmd *cobra.Command, manifestMode string) (bool, error) {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	if mode == "auto" && manifestMode != "" {
		mode = manifestMode
	}
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "", "auto":
		return isTerminal(os.Stdout), nil
	default:
		return false, fmt.Errorf("invalid color mode %q (expected: auto|always|never)", mode)
	}
}

func summaryWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 100
}

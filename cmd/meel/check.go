package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"meel/internal/diag"
	"meel/internal/diagfmt"
	"meel/internal/driver"
	"meel/internal/observ"
	"meel/internal/source"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [file.meel|directory]",
	Short: "Report unmatched {{ and }} markers",
	Long: `Check pairs the markers of a template file, or of every template in a directory,
and reports the ones left unmatched. Without an argument the configured template
directory is checked. The exit status is 1 when any error is reported.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=config or auto)")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().String("path-mode", "auto", "how to print file paths (auto|absolute|relative|basename)")
	checkCmd.Flags().Bool("cache", false, "reuse results from the on-disk cache")
	checkCmd.Flags().String("cache-dir", "", "cache directory (default: $XDG_CACHE_HOME/meel)")
	checkCmd.Flags().Bool("cache-clear", false, "drop every cached result before checking (implies --cache)")
	checkCmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
}

// runCheck executes the "check" command: it resolves the target path, runs
// the checker over it and prints the diagnostics in the requested format.
func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "pretty", "json", "short":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	pathModeStr, err := cmd.Flags().GetString("path-mode")
	if err != nil {
		return fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	pathMode, ok := diagfmt.ParsePathMode(pathModeStr)
	if !ok {
		return fmt.Errorf("unknown path mode: %s", pathModeStr)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if jobs == 0 {
		jobs = cfg.Check.Jobs
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	target := cfg.Templates.Dir
	if len(args) == 1 {
		target = args[0]
	}
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", target, err)
	}

	opts := driver.CheckOptions{
		MaxDiagnostics: cfg.Check.MaxDiagnostics,
		Jobs:           jobs,
		Extension:      cfg.Templates.Extension,
		Timings:        showTimings,
	}
	if opts.Cache, err = openCache(cmd); err != nil {
		return err
	}

	var (
		fileSet *source.FileSet
		results []driver.CheckResult
	)
	useUI := progressWanted(mode, format, quiet(cmd), info.IsDir())
	if useUI {
		files := []string{target}
		if info.IsDir() {
			if files, err = driver.ListTemplates(target, opts.Extension); err != nil {
				return err
			}
		}
		fileSet, results, err = runCheckWithUI(cmd.Context(), "checking templates", target, files, opts)
	} else {
		fileSet, results, err = driver.CheckPath(cmd.Context(), target, opts)
	}
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	bag := diag.NewBag(0)
	for i := range results {
		bag.Merge(results[i].Bag)
	}
	bag.Sort()

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		err = diagfmt.JSON(out, bag, fileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     withNotes,
		})
	case "short":
		err = diagfmt.Short(out, bag, fileSet, withNotes)
	default:
		diagfmt.Pretty(out, withoutTimings(bag), fileSet, diagfmt.PrettyOpts{
			Color:     useColor(cmd, os.Stdout),
			Context:   1,
			PathMode:  pathMode,
			ShowNotes: withNotes,
		})
		if showTimings {
			printTimings(cmd.ErrOrStderr(), results)
		}
		if !quiet(cmd) {
			printSummary(cmd.ErrOrStderr(), results)
		}
	}
	if err != nil {
		return err
	}

	if bag.HasErrors() {
		return &exitError{code: 1}
	}
	return nil
}

func openCache(cmd *cobra.Command) (*driver.DiskCache, error) {
	enabled, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return nil, fmt.Errorf("failed to get cache flag: %w", err)
	}
	wipe, err := cmd.Flags().GetBool("cache-clear")
	if err != nil {
		return nil, fmt.Errorf("failed to get cache-clear flag: %w", err)
	}
	if !enabled && !wipe {
		return nil, nil
	}
	dir, err := cmd.Flags().GetString("cache-dir")
	if err != nil {
		return nil, fmt.Errorf("failed to get cache-dir flag: %w", err)
	}

	var cache *driver.DiskCache
	if dir != "" {
		cache, err = driver.OpenDiskCacheAt(dir)
	} else {
		cache, err = driver.OpenDiskCache("meel")
	}
	if err != nil {
		return nil, err
	}
	if wipe {
		if err := cache.DropAll(); err != nil {
			return nil, fmt.Errorf("failed to clear cache %s: %w", cache.Dir(), err)
		}
	}
	return cache, nil
}

func printSummary(out io.Writer, results []driver.CheckResult) {
	files, failing, errorsCount, cached := len(results), 0, 0, 0
	for i := range results {
		r := &results[i]
		if r.Cached {
			cached++
		}
		if !r.HasErrors() {
			continue
		}
		failing++
		errorsCount += r.Bag.Count(diag.SevError)
	}
	if failing == 0 {
		fmt.Fprintf(out, "%s %d file(s) checked, all braces matched", color.GreenString("ok:"), files)
	} else {
		fmt.Fprintf(out, "%s %d error(s) in %d of %d file(s)", color.RedString("fail:"), errorsCount, failing, files)
	}
	if cached > 0 {
		fmt.Fprintf(out, " (%d cached)", cached)
	}
	fmt.Fprintln(out)
}

func printTimings(out io.Writer, results []driver.CheckResult) {
	var report observ.Report
	for i := range results {
		if t := results[i].Timing; t != nil {
			report.Merge(*t)
		}
	}
	fmt.Fprint(out, report.Summary())
}

// withoutTimings drops the per-file timing entries; pretty output prints
// one aggregated table instead.
func withoutTimings(bag *diag.Bag) *diag.Bag {
	out := diag.NewBag(0)
	for _, d := range bag.Items() {
		if d.Code != diag.ObsTimings {
			out.Add(d)
		}
	}
	return out
}

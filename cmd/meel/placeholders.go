package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"meel/internal/braces"
)

var placeholdersCmd = &cobra.Command{
	Use:   "placeholders [flags] <file|template-name>",
	Short: "List the placeholder names of a template",
	Long: `Placeholders prints the distinct names used between matched {{ and }} markers.
The argument is a path, or a template name looked up in the configured template directory.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runPlaceholders,
}

func init() {
	placeholdersCmd.Flags().String("format", "text", "output format (text|json)")
}

type placeholdersOutput struct {
	Template     string   `json:"template"`
	Path         string   `json:"path"`
	Placeholders []string `json:"placeholders"`
	Balanced     bool     `json:"balanced"`
}

func runPlaceholders(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "text" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}

	path, content, err := readTemplateArg(cmd, args[0])
	if err != nil {
		return err
	}
	res := braces.Analyze(content)
	out := placeholdersOutput{
		Template:     args[0],
		Path:         path,
		Placeholders: braces.PlaceholderNames(content, res),
		Balanced:     res.Balanced(),
	}
	if out.Placeholders == nil {
		out.Placeholders = []string{}
	}

	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	for _, name := range out.Placeholders {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	if !out.Balanced && !quiet(cmd) {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s has unmatched markers, run `meel check %s`\n", path, path)
	}
	return nil
}

// readTemplateArg reads arg as a file when it exists, otherwise resolves it
// as a template name.
func readTemplateArg(cmd *cobra.Command, arg string) (string, []byte, error) {
	// #nosec G304 -- path is provided by the user
	content, err := os.ReadFile(arg)
	if err == nil {
		return arg, content, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", nil, err
	}
	cfg, cfgErr := loadConfig(cmd)
	if cfgErr != nil {
		return "", nil, cfgErr
	}
	return cfg.TemplateStore().Open(arg)
}

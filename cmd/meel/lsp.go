package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"meel/internal/lsp"
	"meel/internal/trace"
	"meel/internal/version"
)

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Run the meel language server over stdio",
	SilenceUsage: true,
	RunE:         runLSP,
}

func runLSP(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	server := lsp.NewServer(os.Stdin, os.Stdout, lsp.ServerOptions{
		LanguageID:       cfg.Language.ID,
		MarkerColor:      cfg.Decorations.MarkerColor,
		PlaceholderColor: cfg.Decorations.PlaceholderColor,
		Version:          version.Plain(),
		Tracer:           trace.FromContext(cmd.Context()),
		Log:              os.Stderr,
	})
	if err := server.Run(cmd.Context()); err != nil {
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}

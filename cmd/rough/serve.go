package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"rough/internal/builder"
	"rough/internal/logger"
	"rough/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <SRC> [OUT]",
		Short: "Serve a site locally, rebuilding and reloading on change",
		Long: `Serve builds SRC into OUT, serves OUT over HTTP and rebuilds on every
change under SRC. Open pages reload themselves after each rebuild.
Without OUT the site is built into a temporary directory.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runServe,
	}
	addBuildFlags(cmd)
	cmd.Flags().IntP("port", "p", 1313, "Port for the development server")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	src := args[0]
	if err := requireDir(src); err != nil {
		return err
	}

	out := ""
	if len(args) == 2 {
		out = args[1]
	} else {
		tmp, err := os.MkdirTemp("", "rough-serve-*")
		if err != nil {
			return err
		}
		defer os.RemoveAll(tmp)
		out = tmp
	}

	cfg, err := loadConfig(cmd, src)
	if err != nil {
		return err
	}

	// The first build starts from an empty OUT. Rebuilds overwrite in place
	// and drop the pages of removed projects.
	clean := true
	build := func() error {
		current, err := loadConfig(cmd, src)
		if err != nil {
			return err
		}
		current.Build.Clean = clean
		clean = false
		res, err := builder.BuildSite(builder.BuildOptions{SrcDir: src, OutDir: out, Config: current, Logger: log})
		if err != nil {
			return fmt.Errorf("site generation failed: %w", err)
		}
		log.Info("site built", logger.Pages(res.Pages), logger.Duration(res.Duration))
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.Run(ctx, server.Options{SrcDir: src, OutDir: out, Port: cfg.Serve.Port, Logger: log}, build)
}

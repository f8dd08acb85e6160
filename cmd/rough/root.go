package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"rough/internal/builder"
	"rough/internal/config"
	"rough/internal/logger"
)

const rootLongDesc = `Rough is a very simple and very opinionated static site generator.

It renders SRC into OUT:
  SRC/static/        copied to OUT/static/
  SRC/projects/*     rendered with SRC/project.html to OUT/projects/<name>.html
  SRC/index.html     rendered with the list of projects to OUT/index.html

Project files are Markdown with optional YAML front matter, available to
templates as .Meta. A paragraph holding nothing but one image renders as
the bare image.`

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "rough <SRC> <OUT>",
		Short:         "Render a Rough site",
		Long:          rootLongDesc,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runBuild,
	}

	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("log-format", "text", "Log format: text or json")

	addBuildFlags(cmd)
	cmd.Flags().Bool("clean", false, "Empty OUT before writing")

	cmd.AddCommand(newServeCmd(), newNewCmd())
	return cmd
}

func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("unsafe", false, "Disable HTML sanitizing; raw HTML in documents reaches the page")
	cmd.Flags().Bool("drafts", false, "Include documents with draft: true")
}

func runBuild(cmd *cobra.Command, args []string) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	src, out := args[0], args[1]
	if err := requireDir(src); err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, src)
	if err != nil {
		return err
	}

	res, err := builder.BuildSite(builder.BuildOptions{SrcDir: src, OutDir: out, Config: cfg, Logger: log})
	if err != nil {
		return fmt.Errorf("site generation failed: %w", err)
	}
	log.Info("site generated", logger.Path(out), logger.Pages(res.Pages), slog.Int("drafts", res.Drafts), logger.Duration(res.Duration))
	return nil
}

func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	debug, _ := cmd.Flags().GetBool("debug")
	format, _ := cmd.Flags().GetString("log-format")
	switch format {
	case "text", "json":
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	return logger.New(
		logger.WithDebug(debug),
		logger.WithJSON(format == "json"),
		logger.WithWriter(cmd.ErrOrStderr()),
	), nil
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"clean":  "build.clean",
	"unsafe": "build.unsafe",
	"drafts": "build.drafts",
	"port":   "serve.port",
}

// loadConfig layers the flags of cmd over the configuration of src.
func loadConfig(cmd *cobra.Command, src string) (config.Config, error) {
	v, err := config.InitViper(src)
	if err != nil {
		return config.Config{}, err
	}
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return config.Config{}, err
			}
		}
	}
	return config.Load(v)
}

func requireDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("'%s' is not a directory", path)
	}
	return nil
}

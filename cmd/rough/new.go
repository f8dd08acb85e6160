package main

import (
	"github.com/spf13/cobra"

	"rough/internal/logger"
	"rough/internal/scaffold"
)

func newNewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a new site or project",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "site <DIR>",
			Short: "Create a starter site in DIR",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				log, err := newLogger(cmd)
				if err != nil {
					return err
				}
				created, err := scaffold.CreateSite(args[0])
				if err != nil {
					return err
				}
				for _, path := range created {
					log.Debug("created", logger.Path(path))
				}
				log.Info("site scaffolded", logger.Path(args[0]))
				return nil
			},
		},
		&cobra.Command{
			Use:   "project <SRC> <TITLE>",
			Short: "Create a draft project in SRC/projects from the site archetype",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				log, err := newLogger(cmd)
				if err != nil {
					return err
				}
				path, err := scaffold.CreateProject(args[0], args[1])
				if err != nil {
					return err
				}
				log.Info("project created", logger.Path(path))
				return nil
			},
		},
	)
	return cmd
}

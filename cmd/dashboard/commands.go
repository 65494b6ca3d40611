/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	dashboard "github.com/suparena/dashboard"
	"github.com/suparena/dashboard/internal/bootstrap"
	"github.com/suparena/dashboard/internal/config"
	"github.com/suparena/dashboard/internal/logger"
	"github.com/suparena/dashboard/internal/metrics"
	"github.com/suparena/dashboard/internal/server"
	"github.com/suparena/dashboard/render"
)

type rootFlags struct {
	configFile string
	envFile    string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:          "dashboard",
		Short:        "Serve listing pages over CSV, SQL and DynamoDB datasources.",
		SilenceUsage: true,
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			// A missing .env file is normal outside development.
			if err := godotenv.Load(flags.envFile); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("load %s: %w", flags.envFile, err)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "config.yaml", "path to the configuration file")
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file loaded before the configuration")

	root.AddCommand(newServeCmd(flags), newExportCmd(flags), newVersionCmd())
	return root
}

func loadConfig(flags *rootFlags) (*config.Config, error) {
	cfg, err := config.Load(afero.NewOsFs(), flags.configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			log, err := logger.NewZapLogger(cfg.App.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Infof(ctx, "%s starting (%s)", cfg.App.Name, dashboard.GetVersionInfo())
			m := metrics.New("dashboard")
			app, err := bootstrap.Build(ctx, cfg, bootstrap.Deps{Log: log, Metrics: m})
			if err != nil {
				return err
			}
			defer func() {
				if err := app.Close(); err != nil {
					log.Warnf(context.Background(), "close: %v", err)
				}
			}()

			return server.New(cfg.Server, app.Dashboard, log, m).Run(ctx)
		},
	}
}

func newExportCmd(flags *rootFlags) *cobra.Command {
	var (
		query  string
		output string
	)

	c := &cobra.Command{
		Use:   "export <page>",
		Short: "Write every row of a page as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			values, err := url.ParseQuery(query)
			if err != nil {
				return fmt.Errorf("parse --query: %w", err)
			}
			req, err := render.ParseRequest(values)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			app, err := bootstrap.Build(c.Context(), cfg, bootstrap.Deps{})
			if err != nil {
				return err
			}
			defer app.Close()

			var w io.Writer = c.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			n, err := app.Dashboard.Export(c.Context(), w, args[0], req)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.ErrOrStderr(), "exported %d rows\n", n)
			return nil
		},
	}
	c.Flags().StringVarP(&query, "query", "q", "", "page parameters, e.g. \"sort=name&filter[status]=active\"")
	c.Flags().StringVarP(&output, "output", "o", "-", "output file, - for stdout")
	return c
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(c *cobra.Command, _ []string) {
			info := dashboard.GetVersionInfo()
			fmt.Fprintf(c.OutOrStdout(), "Dashboard version %s\n", info.Version)
			fmt.Fprintf(c.OutOrStdout(), "Git commit: %s\n", info.GitCommit)
			fmt.Fprintf(c.OutOrStdout(), "Build date: %s\n", info.BuildDate)
			fmt.Fprintf(c.OutOrStdout(), "Go version: %s\n", info.GoVersion)
		},
	}
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/amankumarsingh77/seo_audit/internal/content"
	"github.com/amankumarsingh77/seo_audit/internal/report"
	"github.com/amankumarsingh77/seo_audit/models"
	"github.com/amankumarsingh77/seo_audit/pkg/seeds"
	"github.com/spf13/cobra"
)

var (
	auditPage    string
	auditFormat  string
	auditArchive bool

	monitorSeeds string
)

var auditCmd = &cobra.Command{
	Use:   "audit <domain>",
	Short: "Audit a domain and print the report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		a := newApp(ctx, cfg, logger)
		defer a.Close()

		var issues []models.Issue
		if auditPage != "" {
			issues = a.engine.CorrelatePage(ctx, args[0], auditPage)
		} else {
			issues = a.engine.Correlate(ctx, args[0])
		}
		var out string
		switch auditFormat {
		case "markdown", "md":
			out = report.ToMarkdown(issues)
		case "html":
			out = report.ToHTML(issues)
		default:
			return fmt.Errorf("unknown format %q, use markdown or html", auditFormat)
		}
		if auditArchive {
			if err := a.archive(ctx).Save(ctx, report.NewRecord(args[0], auditPage, issues)); err != nil {
				return err
			}
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

var monitorCmd = &cobra.Command{
	Use:   "monitor [url...]",
	Short: "Trace redirects, sample uptime and print the alerts",
	RunE: func(cmd *cobra.Command, args []string) error {
		urls := args
		if monitorSeeds != "" {
			seeded, err := seeds.LoadURLs(monitorSeeds)
			if err != nil {
				return err
			}
			urls = append(urls, seeded...)
		}
		if len(urls) == 0 {
			return errors.New("no urls given, pass them as arguments or with --seeds")
		}

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		a := newApp(ctx, cfg, logger)
		defer a.Close()

		alerts, err := a.monitor.Deploy(ctx, urls)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(alerts)
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh [url...]",
	Short: "Suggest and apply content updates in the foreground",
	RunE: func(cmd *cobra.Command, args []string) error {
		urls := args
		if len(urls) == 0 {
			urls = cfg.Tasks.RefreshURLs
		}
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		a := newApp(ctx, cfg, logger)
		defer a.Close()

		r := content.NewRefresher(a.suggester, a.updater, cfg.Tasks.RefreshPrompt, logger.Named("refresh"))
		msg, err := r.Refresh(ctx, urls)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

func init() {
	auditCmd.Flags().StringVar(&auditPage, "page", "", "audit only this page, skipping discovery")
	auditCmd.Flags().StringVarP(&auditFormat, "format", "f", "markdown", "report format: markdown or html")
	auditCmd.Flags().BoolVar(&auditArchive, "archive", false, "store the report in the archive")
	monitorCmd.Flags().StringVar(&monitorSeeds, "seeds", "", "CSV file with a URL or Domain column")
}

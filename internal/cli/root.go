package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ckan-publisher/internal/ckan"
	"github.com/ckan-publisher/internal/common/config"
	"github.com/ckan-publisher/internal/common/logger"
)

var version = "dev"

// app carries what every subcommand needs once flags and env are resolved.
type app struct {
	cfg    *config.Config
	log    logger.Logger
	client *ckan.Client
	out    io.Writer
	output string
}

// Execute runs the CLI and returns the process exit code.
func Execute(args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd(stdout)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == "json" {
			errObj := map[string]interface{}{"error": err.Error()}
			var apiErr *ckan.APIError
			if errors.As(err, &apiErr) {
				errObj["operation"] = apiErr.Operation
				if apiErr.StatusCode != 0 {
					errObj["http_status"] = apiErr.StatusCode
				}
			}
			_ = printJSON(stdout, errObj)
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	a := &app{out: stdout}

	var (
		baseURL  string
		apiKey   string
		timeout  time.Duration
		logLevel string
		logFile  string
	)

	rootCmd := &cobra.Command{
		Use:           "ckanpublisher",
		Short:         "Publish CSV data and CSVW metadata to CKAN",
		Long:          "Updates CKAN dataset and resource metadata and writes CSV files with CSVW schema descriptors.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			// Apply precedence: flag > env > default
			flags := cmd.Flags()
			if flags.Changed("base-url") {
				cfg.CKAN.BaseURL = baseURL
			}
			if flags.Changed("api-key") {
				cfg.CKAN.APIKey = apiKey
			}
			if flags.Changed("timeout") {
				cfg.CKAN.HTTPTimeout = timeout
			}
			if flags.Changed("log-level") {
				cfg.Logging.Level = logLevel
			}
			if flags.Changed("log-file") {
				cfg.Logging.FilePath = logFile
			}

			logCfg := logger.DefaultLoggerConfig()
			logCfg.Level = logger.ParseLogLevel(cfg.Logging.Level)
			logCfg.FilePath = cfg.Logging.FilePath
			logCfg.File = cfg.Logging.FilePath != ""

			a.cfg = cfg
			a.log = logger.NewFromConfig(logCfg)
			a.client = ckan.New(cfg.CKAN.BaseURL, a.log, ckan.WithTimeout(cfg.CKAN.HTTPTimeout))
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&baseURL, "base-url", "", "CKAN instance URL (env CKAN_BASE_URL)")
	pf.StringVar(&apiKey, "api-key", "", "CKAN API key (env CKAN_API_KEY)")
	pf.DurationVar(&timeout, "timeout", 30*time.Second, "HTTP timeout for CKAN calls (env CKAN_HTTP_TIMEOUT)")
	pf.StringVar(&logLevel, "log-level", "info", "Log level (env LOG_LEVEL)")
	pf.StringVar(&logFile, "log-file", "", "Rotating log file, empty to disable (env LOG_FILE)")
	pf.StringVarP(&a.output, "output", "o", "text", "Output format (text, json)")

	rootCmd.AddCommand(
		newResolveCmd(a),
		newDatasetURLCmd(a),
		newDatasetAttrCmd(a),
		newShowResourceCmd(a),
		newUpdateDatasetCmd(a),
		newUpdateResourceCmd(a),
		newWriteCSVWCmd(a),
		newPublishCmd(a),
	)

	return rootCmd
}

// requireCKAN is the PreRunE of every command that talks to CKAN.
func (a *app) requireCKAN(_ *cobra.Command, _ []string) error {
	return a.cfg.CKAN.Validate()
}

// print writes value as JSON, or text as a plain line.
func (a *app) print(text string, value interface{}) error {
	if a.output == "json" {
		return printJSON(a.out, value)
	}
	_, err := fmt.Fprintln(a.out, text)
	return err
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

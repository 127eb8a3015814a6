// Package cli implements the resume-warehouse command line with cobra.
//
// Commands talk to the core through driving ports held in package
// variables. The binary sets an Initializer that builds them from the
// parsed persistent flags; tests assign mocks directly instead.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/resume-warehouse/internal/core/domain"
	"github.com/custodia-labs/resume-warehouse/internal/core/ports/driving"
	"github.com/custodia-labs/resume-warehouse/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// Driving ports used by the commands.
var (
	candidateService driving.CandidateService
	ingestService    driving.IngestService
	settingsService  driving.SettingsService
	exporter         Exporter
	resumeExtensions []string
	closeServices    func() error
)

// Exporter writes candidate records to a file.
type Exporter interface {
	Export(path string, details []domain.CandidateDetail) error
}

// Config holds the persistent flags handed to the Initializer.
type Config struct {
	DataDir     string
	ConfigDir   string
	MetricsFile string
	Verbose     bool
	JSONLogs    bool
}

// Services is what an Initializer builds for the commands.
type Services struct {
	Candidates driving.CandidateService
	Ingest     driving.IngestService
	Settings   driving.SettingsService
	Exporter   Exporter

	// ResumeExtensions are the file extensions ingest picks up from directories.
	ResumeExtensions []string

	// Close releases the store and flushes metrics. It may be nil.
	Close func() error
}

// Initializer builds the services for a command invocation.
type Initializer func(cfg Config) (*Services, error)

var (
	initializer Initializer
	rootConfig  Config
)

var rootCmd = &cobra.Command{
	Use:   "resume-warehouse",
	Short: "Ingest, validate and search resumes",
	Long: `resume-warehouse extracts text from resumes, turns it into structured
records with a language model, scores the data quality and loads the result
into a local SQLite warehouse with full-text search and filter values.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootConfig.DataDir, "data-dir", "", "warehouse directory (default ~/.resume-warehouse/data)")
	flags.StringVar(&rootConfig.ConfigDir, "config-dir", "", "settings directory (default ~/.resume-warehouse)")
	flags.StringVar(&rootConfig.MetricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")
	flags.BoolVarP(&rootConfig.Verbose, "verbose", "v", false, "print debug output")
	flags.BoolVar(&rootConfig.JSONLogs, "json-logs", false, "write logs as JSON")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetInitializer sets the function that builds services before each command.
func SetInitializer(fn Initializer) {
	initializer = fn
}

// SetOutput redirects command output, for embedding and tests.
func SetOutput(w io.Writer) {
	rootCmd.SetOut(w)
	rootCmd.SetErr(w)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// setup configures logging and builds the services unless they are already set.
func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(rootConfig.Verbose)
	logger.SetJSON(rootConfig.JSONLogs)

	if initializer == nil || cmd == versionCmd {
		return nil
	}

	services, err := initializer(rootConfig)
	if err != nil {
		return err
	}
	applyServices(services)
	return nil
}

func applyServices(s *Services) {
	candidateService = s.Candidates
	ingestService = s.Ingest
	settingsService = s.Settings
	exporter = s.Exporter
	resumeExtensions = s.ResumeExtensions
	closeServices = s.Close
}

// teardown releases what setup acquired.
func teardown(_ *cobra.Command, _ []string) error {
	if closeServices == nil {
		return nil
	}
	err := closeServices()
	closeServices = nil
	if err != nil {
		return fmt.Errorf("closing services: %w", err)
	}
	return nil
}

// Close releases services after a failed command, when teardown did not run.
func Close() {
	if closeServices != nil {
		if err := closeServices(); err != nil {
			logger.Warn("closing services: %v", err)
		}
		closeServices = nil
	}
}

// Service guards used by the commands.
var (
	errNoCandidates = errors.New("candidate service not configured")
	errNoIngest     = errors.New("ingest service not configured")
	errNoSettings   = errors.New("settings service not configured")
)

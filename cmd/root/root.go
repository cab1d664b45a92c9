// Package root contains the root command for the application.
package root

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rgriggs0072/fliptrack-ai/internal/config"
	"github.com/rgriggs0072/fliptrack-ai/internal/container"
)

// CommonFlags represents the flags that are common to multiple commands.
type CommonFlags struct {
	Input  string
	Output string
}

var (
	// Log is the shared logger instance for commands.
	Log = logrus.New()

	// Cmd is the root command.
	Cmd = &cobra.Command{
		Use:   "fliptrack",
		Short: "A CLI tool to normalize and categorize property-rehab expenses.",
		Long: `fliptrack imports heterogeneous expense spreadsheets, voice transcripts
and receipt extracts, maps their columns onto a canonical schema, and
categorizes each expense against a fixed rehab taxonomy.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to fliptrack!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()

			cfg, err := config.InitializeConfig()
			if err != nil {
				return err
			}

			c, err := container.NewContainer(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			app = c
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil {
				if err := app.Close(); err != nil {
					Log.Warnf("Failed to close container: %v", err)
				}
			}
		},
	}

	// SharedFlags are common flags accessible to all commands.
	SharedFlags = CommonFlags{}

	// Specific import command flags.
	SummaryFile   string
	SummaryFormat string
	HeaderRow     int
	Sheet         string
	Persist       bool
	TenantID      string

	// Specific batch command flags.
	InputDir string

	// Specific classify command flags.
	Text   string
	Source string

	app *container.Container
)

// App returns the wired dependency container. It is available once the root
// command's PersistentPreRun has run.
func App() (*container.Container, error) {
	if app == nil {
		return nil, fmt.Errorf("application container not initialized")
	}
	return app, nil
}

// Init initializes the root command and all flags.
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input file")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file")
}

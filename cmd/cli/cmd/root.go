// Package cmd provides the CLI commands for shipping-cost.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"shipping-cost/core/output"
	"shipping-cost/internal/config"
	"shipping-cost/internal/errors"
	"shipping-cost/internal/logging"
)

// Version is the CLI version
const Version = "1.0.0"

var (
	cfgFile      string
	verbose      bool
	outputFormat string
	noColor      bool

	// overrides for the configured data files
	catalogPath   string
	locationsPath string
	itemRatesPath string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "shipping-cost",
	Short: "Quote delivery costs from warehouse origins",
	Long: `shipping-cost prices deliveries from a small set of warehouses to
destinations listed in a zone table.

Quotes use either distance-tiered per-km pricing or flat per-unit service
rates, gated by the destination's service zone.

Examples:
  shipping-cost quote --origin banjaran --postal 40191 --item kulkas=1
  shipping-cost quote --compare --postal 40191 --item tv=2 --format json
  shipping-cost destinations search soreang
  shipping-cost catalog validate ./catalog.hcl`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI. Errors are rendered in the selected output format.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		// flag and argument errors come from cobra untyped
		if _, ok := errors.As(err); !ok {
			err = errors.New(errors.TypeInput, err.Error())
		}
		f, ferr := output.New(outputFormat, output.Options{NoColor: noColor})
		if ferr != nil {
			f = output.NewCLIFormatter(noColor)
		}
		f.RenderError(os.Stderr, err)
	}
	logging.Sync()
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.shipping-cost/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "cli", "output format (cli, json)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "rate catalog file (.hcl or .json)")
	rootCmd.PersistentFlags().StringVar(&locationsPath, "locations", "", "zone table CSV")
	rootCmd.PersistentFlags().StringVar(&itemRatesPath, "item-rates", "", "item rate CSV replacing the catalog's items")

	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(destinationsCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	path := cfgFile
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, ".shipping-cost", "config.json")
		}
	}
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(cfg)
	}

	cfg := config.Get()
	if catalogPath != "" {
		cfg.Catalog.Path = catalogPath
	}
	if locationsPath != "" {
		cfg.Locations.CSVPath = locationsPath
	}
	if itemRatesPath != "" {
		cfg.Catalog.ItemRatesCSV = itemRatesPath
	}

	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("shipping-cost version %s\n", Version)
	},
}

package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	ptof "github.com/ptof-dev/ptof"
	"github.com/ptof-dev/ptof/pkg/config"
)

var (
	outputDir    string
	markerColor  string
	tolerance    float64
	margin       float64
	dpi          float64
	noBackground bool
	autoName     bool
	dryRun       bool
	force        bool
	quiet        bool
	reportFile   string
	configFile   string
	fontDirs     []string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ptof [flags] INPUT...",
		Short: "Extract figures from PowerPoint slides",
		Long: "ptof finds colored marker rectangles on PowerPoint slides, pairs each with a\n" +
			"nearby filename=<name>.<ext> text box, and exports the marked regions as\n" +
			"PDF, PNG, or SVG files.",
		Args: cobra.MinimumNArgs(1),
		Run:  run,
	}

	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "output_dir", "Output directory for extracted figures")
	rootCmd.Flags().StringVarP(&markerColor, "color", "c", "cyan", "Marker color: name or hex (#RRGGBB)")
	rootCmd.Flags().Float64Var(&tolerance, "tolerance", 30, "Per-channel color tolerance (0 = exact match)")
	rootCmd.Flags().Float64Var(&margin, "margin", 0, "Margin in points added around each marker (may be negative)")
	rootCmd.Flags().Float64Var(&dpi, "dpi", 300, "Raster resolution for exported figures")
	rootCmd.Flags().BoolVar(&noBackground, "no-background", false, "Render figures on a transparent background")
	rootCmd.Flags().BoolVar(&autoName, "auto-name", false, "Export unlabeled markers as PDF under generated names")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Detect and report figures without writing any files")
	rootCmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing output files")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output (warnings still shown)")
	rootCmd.Flags().StringVar(&reportFile, "report", "", "Write a markdown run report to this file")
	rootCmd.Flags().StringVar(&configFile, "config", "", "Config file (default: .ptof.yaml in the working directory)")
	rootCmd.Flags().StringSliceVar(&fontDirs, "font-dir", nil, "Extra font directories for slide rendering (repeatable)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ptof version %s\n", ptof.Version)
		},
	}

	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) {
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)

	cfg, err := loadConfig(cmd)
	if err != nil {
		red.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if !cfg.Quiet {
		cyan.Println("\nptof - PowerPoint figure extractor")
		cyan.Println("===================================")
		cyan.Println()
	}

	opts := ptof.Options{
		Inputs:       args,
		OutputDir:    cfg.Output,
		Color:        cfg.Color,
		Tolerance:    cfg.Tolerance,
		Margin:       cfg.Margin,
		DPI:          cfg.DPI,
		NoBackground: cfg.NoBackground,
		AutoName:     cfg.AutoName,
		DryRun:       dryRun,
		Force:        cfg.Force,
		FontDirs:     fontDirs,
		Logger:       &cliLogger{quiet: cfg.Quiet},
	}

	result, err := ptof.Run(opts)
	if err != nil {
		red.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if !cfg.Quiet {
		cyan.Println("\nSummary:")
		fmt.Printf("  • Figures found: %d\n", len(result.Exports))
		fmt.Printf("  • Files written: %d\n", len(result.Outputs))
		fmt.Printf("  • Warnings: %d\n", len(result.Warnings))
		if dryRun {
			fmt.Println("  • Dry run: nothing was written")
		}
	}

	if reportFile != "" {
		if err := os.WriteFile(reportFile, []byte(result.Markdown), 0o644); err != nil {
			red.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if !cfg.Quiet {
			green.Printf("\nReport written to %s\n", reportFile)
		}
	}

	if len(result.FileErrors) > 0 {
		red.Printf("\n%d error(s) occurred during the run\n", len(result.FileErrors))
		os.Exit(1)
	}

	if !cfg.Quiet && len(result.Outputs) > 0 {
		green.Printf("\nExtracted %d figure(s) to %s\n\n", len(result.Outputs), cfg.Output)
	}
}

// loadConfig merges the config file (explicit --config path or a discovered
// .ptof.yaml) with the command line. Flags the user actually set win over
// file values.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	var err error

	if configFile != "" {
		cfg, err = config.Load(configFile)
	} else {
		cfg, _, err = config.Discover(".")
	}
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output = outputDir
	}
	if flags.Changed("color") {
		cfg.Color = markerColor
	}
	if flags.Changed("tolerance") {
		cfg.Tolerance = tolerance
	}
	if flags.Changed("margin") {
		cfg.Margin = margin
	}
	if flags.Changed("dpi") {
		cfg.DPI = dpi
	}
	if flags.Changed("no-background") {
		cfg.NoBackground = noBackground
	}
	if flags.Changed("auto-name") {
		cfg.AutoName = autoName
	}
	if flags.Changed("force") {
		cfg.Force = force
	}
	if flags.Changed("quiet") {
		cfg.Quiet = quiet
	}
	return cfg, nil
}

// cliLogger implements ptof.Logger with colored terminal output.
type cliLogger struct {
	quiet bool
}

func (l *cliLogger) Infof(format string, args ...any) {
	if l.quiet {
		return
	}
	fmt.Printf(format+"\n", args...)
}

func (l *cliLogger) Warnf(format string, args ...any) {
	color.New(color.FgYellow).Printf("⚠ "+format+"\n", args...)
}

func (l *cliLogger) Errorf(format string, args ...any) {
	color.New(color.FgRed).Printf("✗ "+format+"\n", args...)
}

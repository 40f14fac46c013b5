package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/gerunddev/orgweave/internal/config"
	"github.com/gerunddev/orgweave/internal/logger"
	"github.com/gerunddev/orgweave/internal/site"
	"github.com/gerunddev/orgweave/styles"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "build", "b":
		handleBuild(os.Args[2:])
	case "version", "-v", "--version":
		fmt.Printf("orgweave v%s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	usage := `orgweave - Generate a static site from an org-mode tree

Usage:
  orgweave <command> [options]

Commands:
  build, b          Build the site from a source directory
  version           Show version information
  help              Show this help message

Examples:
  orgweave build site/
  orgweave build site/ --out public
  orgweave build site/ --dry-run

For more information, visit: https://github.com/gerunddev/orgweave
`
	fmt.Print(usage)
}

func handleBuild(args []string) {
	flags := pflag.NewFlagSet("build", pflag.ExitOnError)
	out := flags.StringP("out", "o", "public", "output directory")
	dryRun := flags.Bool("dry-run", false, "render everything but write nothing, printing diffs")
	force := flags.BoolP("force", "f", false, "rebuild every file regardless of the cache")
	verbose := flags.BoolP("verbose", "V", false, "enable debug logging")
	if err := flags.Parse(args); err != nil {
		os.Exit(1)
	}

	sourceDir := "."
	if flags.NArg() > 0 {
		sourceDir = flags.Arg(0)
	}

	level := log.InfoLevel
	if *verbose {
		level = log.DebugLevel
	}
	logg := logger.NewWithLevel(os.Stderr, level).WithBuildID()

	cfg, err := config.Load(sourceDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, styles.ErrorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}

	opts := site.Options{
		DryRun:  *dryRun,
		Force:   *force,
		DiffOut: os.Stdout,
	}

	start := time.Now()
	dispatcher := site.NewDispatcher(logg, cfg, opts)
	result, err := dispatcher.Build(sourceDir, *out)
	if err != nil {
		fmt.Fprintln(os.Stderr, styles.ErrorStyle.Render("Build failed: ")+err.Error())
		os.Exit(1)
	}
	duration := time.Since(start)

	logg.BuildCompleted(result.Rendered, result.Copied, result.Skipped, len(result.Errors), duration)
	printSummary(result, *out, duration, *dryRun)

	if len(result.Errors) > 0 {
		os.Exit(1)
	}
}

func printSummary(result *site.Result, out string, duration time.Duration, dryRun bool) {
	verb := "Built"
	if dryRun {
		verb = "Would build"
	}
	fmt.Printf("%s %s in %s (%s rendered, %s copied, %s skipped)\n",
		styles.SuccessStyle.Render(verb),
		styles.PathStyle.Render(out),
		styles.HighlightStyle.Render(duration.Round(time.Millisecond).String()),
		styles.SuccessStyle.Render(fmt.Sprint(result.Rendered)),
		styles.DimStyle.Render(fmt.Sprint(result.Copied)),
		styles.DimStyle.Render(fmt.Sprint(result.Skipped)))

	for _, err := range result.Errors {
		fmt.Println(styles.ErrorStyle.Render("  ✗ ") + err.Error())
	}
}

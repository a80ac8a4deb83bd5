// Package main provides the claude-watch CLI application.
//
// claude-watch tracks Claude Code token usage from local JSONL logs:
// five-hour session blocks, plan limits with burn-rate projections, and
// daily or monthly cost summaries.
package main

import (
	"flag"
	"fmt"
	"os"
)

// version is set during build time.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run executes the main application logic.
func run() error {
	configPath := flag.String("config", "", "path to configuration file")
	plan := flag.String("plan", "", "plan to evaluate limits against (pro, max5, max20, custom)")
	timezone := flag.String("timezone", "", "IANA timezone for period boundaries")
	format := flag.String("format", "", "output format (table, json)")
	showVersion := flag.Bool("version", false, "show version information")

	flag.Parse()

	if *showVersion {
		fmt.Printf("claude-watch %s\n", version)
		return nil
	}

	args := flag.Args()
	if len(args) == 0 {
		return showUsage()
	}

	overrides := cliOverrides{
		plan:     *plan,
		timezone: *timezone,
		format:   *format,
	}

	switch args[0] {
	case "monitor":
		return runMonitorCommand(*configPath, overrides)
	case "daily":
		return runReportCommand(*configPath, overrides, periodDaily)
	case "monthly":
		return runReportCommand(*configPath, overrides, periodMonthly)
	case "blocks":
		return runBlocksCommand(*configPath, overrides)
	case "version":
		fmt.Printf("claude-watch %s\n", version)
		return nil
	case "help":
		return showUsage()
	default:
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

// showUsage displays usage information.
func showUsage() error {
	usage := `claude-watch - Claude Code usage and cost monitoring

Usage:
  claude-watch [flags] <command>

Commands:
  monitor     Live monitoring of the active session block
  daily       Daily usage and cost summary
  monthly     Monthly usage and cost summary
  blocks      List five-hour session blocks
  version     Show version information
  help        Show this help message

Flags:
  -config     Path to configuration file
  -plan       Plan to evaluate limits against (pro, max5, max20, custom)
  -timezone   IANA timezone for period boundaries
  -format     Output format (table, json)
  -version    Show version information

Examples:
  # Watch the active session against the Pro plan limits
  claude-watch -plan pro monitor

  # Daily summary in your local timezone
  claude-watch daily

  # Monthly summary as JSON
  claude-watch -format json monthly

  # Session block history
  claude-watch blocks

Version: %s
`
	fmt.Printf(usage, version)
	return nil
}

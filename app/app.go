// Package app assembles the command-line interface and wires the engines
// to the backend, the local store, and the terminal UI.
package app

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/kirokuapp/kiroku/config"
	"github.com/kirokuapp/kiroku/internal/logging"
)

const version = "v0.3.1"

const envNoColor = "NO_COLOR"

// disableStyling disables all styling provided by pterm.
func disableStyling() {
	pterm.DisableColor()
	pterm.DisableStyling()
	pterm.Debug.Prefix.Text = ""
	pterm.Info.Prefix.Text = ""
	pterm.Success.Prefix.Text = ""
	pterm.Warning.Prefix.Text = ""
	pterm.Error.Prefix.Text = ""
	pterm.Fatal.Prefix.Text = ""
}

// Get retrieves the kiroku app instance.
func Get() *cli.App {
	return &cli.App{
		Name: "kiroku",
		Usage: `
		Kiroku is a personal activity tracker for the command-line. Run it
		without a command to start tracking; completed measurements become
		records you can aggregate, chart, and rank.`,
		UsageText:            "[COMMAND] [OPTIONS]",
		Version:              version,
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name: "stats",
				Usage: `
				Aggregate records into per-period buckets and display them as a
				bar chart with a per-key breakdown`,
				Flags: []cli.Flag{
					tagFlag,
					periodFlag,
					startFlag,
					endFlag,
					intervalFlag,
					groupByFlag,
					modeFlag,
					cumulativeFlag,
					liveFlag,
					jsonFlag,
				},
				Action: statsAction,
			},
			{
				Name: "trend",
				Usage: `
				Rank activities by growth or decline across 7-day and 30-day
				windows`,
				Flags: []cli.Flag{
					groupByFlag,
					windowFlag,
					sortFlag,
					modeFlag,
					jsonFlag,
				},
				Action: trendAction,
			},
			{
				Name:  "list",
				Usage: "Print a table of records within a time period",
				Flags: []cli.Flag{
					tagFlag,
					periodFlag,
					startFlag,
					endFlag,
					jsonFlag,
				},
				Action: listAction,
			},
			{
				Name:   "serve",
				Usage:  "Run the bundled record backend on a local port",
				Flags:  []cli.Flag{portFlag},
				Action: serveAction,
			},
			{
				Name:   "edit-config",
				Usage:  "Edit the configuration file",
				Action: editConfigAction,
			},
		},
		Flags: []cli.Flag{
			activityFlag,
			subActivityFlag,
			recordCmdFlag,
			debugFlag,
			noColorFlag,
		},
		Action: trackAction,
		Before: beforeAction,
	}
}

func beforeAction(ctx *cli.Context) error {
	if err := config.InitializePaths(); err != nil {
		return err
	}

	logging.Init(config.LogFilePath(), ctx.Bool("debug"))

	pterm.Error.MessageStyle = pterm.NewStyle(pterm.FgRed)
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "ERROR",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}

	if _, exists := os.LookupEnv(envNoColor); exists {
		disableStyling()
	}

	if ctx.Bool("no-color") {
		disableStyling()
	}

	return nil
}

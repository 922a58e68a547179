package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/kirokuapp/kiroku/api"
	"github.com/kirokuapp/kiroku/config"
	"github.com/kirokuapp/kiroku/internal/appstate"
	"github.com/kirokuapp/kiroku/internal/models"
	"github.com/kirokuapp/kiroku/internal/timeutil"
	"github.com/kirokuapp/kiroku/internal/ui"
	"github.com/kirokuapp/kiroku/notify"
	"github.com/kirokuapp/kiroku/record"
	"github.com/kirokuapp/kiroku/server"
	"github.com/kirokuapp/kiroku/stats"
	"github.com/kirokuapp/kiroku/store"
	"github.com/kirokuapp/kiroku/timer"
)

const backendTimeout = 30 * time.Second

var errUnknownActivity = errors.New(
	"no activity with that name; check `kiroku list` or create one first",
)

// firstNonEmptyString returns its first non-empty argument, or "" if all
// arguments are empty.
func firstNonEmptyString(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}

	return ""
}

// openKV opens the durable local store, falling back to an in-memory store
// when the file cannot be opened. Nothing in the program treats local
// storage as mandatory; a fallback only costs state across restarts.
func openKV() store.KV {
	kv, err := store.NewClient(config.KVFilePath())
	if err != nil {
		slog.Warn(
			"local store unavailable, continuing in memory",
			slog.Any("error", err),
		)

		return store.NewMemory()
	}

	return kv
}

func findActivity(
	activities []models.Activity,
	name string,
) (models.ActivityRef, error) {
	for _, a := range activities {
		if strings.EqualFold(a.Name, name) {
			return a.Ref(), nil
		}
	}

	return models.ActivityRef{}, errUnknownActivity
}

func tagNames(rec models.Record) []string {
	names := make([]string, 0, len(rec.Tags))
	for _, tag := range rec.Tags {
		names = append(names, tag.Name)
	}

	return names
}

func applyTheme(cfg *config.Config) {
	ui.DarkTheme = cfg.Display.DarkTheme
}

// fetchRecords lists all records from the backend and applies the filter.
func fetchRecords(
	ctx context.Context,
	client *api.Client,
	filter *config.FilterConfig,
) ([]models.Record, error) {
	reqCtx, cancel := context.WithTimeout(ctx, backendTimeout)
	defer cancel()

	all, err := client.ListRecords(reqCtx)
	if err != nil {
		return nil, err
	}

	filtered := all[:0]

	for _, rec := range all {
		if filter.Contains(rec.CreatedAt, tagNames(rec)) {
			filtered = append(filtered, rec)
		}
	}

	return filtered, nil
}

// buildNotifier assembles the notifier stack from the configuration.
func buildNotifier(cfg *config.Config, client *api.Client) notify.Notifier {
	var notifiers []notify.Notifier

	if cfg.Notifications.Enabled {
		notifiers = append(notifiers, notify.Desktop{})
	}

	if cfg.Presence.Enabled {
		notifiers = append(notifiers, notify.NewPresence(client))
	}

	if len(notifiers) == 0 {
		return notify.Noop{}
	}

	return notify.Multi(notifiers)
}

// trackAction runs the interactive tracking UI. The main slot resumes a
// saved measurement or starts one for the requested activity; the sub slot
// is attached when requested or previously active.
func trackAction(ctx *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	kv := openKV()
	client := api.NewClient(cfg.Backend.URL)
	notifier := buildNotifier(cfg, client)
	recordStore := record.NewStore(client)
	states := appstate.New(kv)

	reqCtx, cancel := context.WithTimeout(ctx.Context, backendTimeout)
	activities, err := client.ListActivities(reqCtx)

	cancel()

	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}

	recordCmd := firstNonEmptyString(
		ctx.String("record-cmd"),
		cfg.Settings.RecordCmd,
	)

	makeCallbacks := func(ref *models.ActivityRef) timer.Callbacks {
		return timer.Callbacks{
			OnComplete: func(minutes float64, memo string) {
				createCtx, cancel := context.WithTimeout(
					context.Background(),
					backendTimeout,
				)
				defer cancel()

				err := recordStore.Create(createCtx, models.RecordDraft{
					ActivityID: ref.ID,
					Value:      minutes,
					Memo:       memo,
				})
				if err != nil {
					pterm.Error.Printfln("failed to save record: %v", err)
					return
				}

				runRecordCmd(recordCmd)
			},
		}
	}

	var mainRef models.ActivityRef

	if name := ctx.String("activity"); name != "" {
		mainRef, err = findActivity(activities, name)
		if err != nil {
			return err
		}
	}

	mainWatch := timer.New(timer.Options{
		Slot:      timer.SlotMain,
		Activity:  mainRef,
		KV:        kv,
		Notifier:  notifier,
		Callbacks: makeCallbacks(&mainRef),
		AutoStart: mainRef.ID != 0,
	})

	if mainWatch.Activity().ID == 0 {
		return errors.New("provide --activity to start tracking")
	}

	mainRef = mainWatch.Activity()

	opts := []timer.ModelOption{
		timer.WithSubVisible(states.State().ShowSubTimer),
		timer.WithSubVisibleFunc(func(bool) {
			states.Dispatch(appstate.ToggleSubTimer{})
		}),
	}

	var subRef models.ActivityRef

	if name := ctx.String("sub"); name != "" {
		subRef, err = findActivity(activities, name)
		if err != nil {
			return err
		}
	}

	subWatch := timer.New(timer.Options{
		Slot:      timer.SlotSub,
		Activity:  subRef,
		KV:        kv,
		Notifier:  notifier,
		Callbacks: makeCallbacks(&subRef),
	})

	if subWatch.Activity().ID != 0 {
		subRef = subWatch.Activity()
		opts = append(opts, timer.WithSub(subWatch))
	}

	if ctx.Bool("debug") {
		opts = append(opts, timer.WithDebug())
	}

	model := timer.NewModel(mainWatch, opts...)

	_, err = tea.NewProgram(model).Run()

	return err
}

// statsAction aggregates records into per-period buckets and renders them.
func statsAction(ctx *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	filter, err := config.Filter(ctx)
	if err != nil {
		return err
	}

	view, err := config.View(ctx)
	if err != nil {
		return err
	}

	applyTheme(cfg)

	client := api.NewClient(cfg.Backend.URL)

	records, err := fetchRecords(ctx.Context, client, filter)
	if err != nil {
		return err
	}

	if ctx.Bool("live") {
		synth := record.NewSynthesizer(openKV(), nil)
		records = append(records, synth.Current()...)
	}

	buckets := stats.Aggregate(
		records,
		view.Interval,
		view.GroupBy,
		view.Mode,
		view.Cumulative,
	)

	if ctx.Bool("json") {
		b, err := json.Marshal(buckets)
		if err != nil {
			return err
		}

		fmt.Println(string(b))

		return nil
	}

	stats.RenderChart(os.Stdout, buckets, view.Mode)

	return nil
}

// trendAction ranks record groups by growth or decline.
func trendAction(ctx *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	view, err := config.View(ctx)
	if err != nil {
		return err
	}

	applyTheme(cfg)

	client := api.NewClient(cfg.Backend.URL)

	records, err := fetchRecords(ctx.Context, client, &config.FilterConfig{})
	if err != nil {
		return err
	}

	entries := stats.ComputeTrends(records, view.GroupBy, time.Now())

	window := stats.Window7Days
	if ctx.String("window") == "30" {
		window = stats.Window30Days
	}

	if ctx.String("sort") == "decrease" {
		stats.SortDecrease(entries, window)
	} else {
		stats.SortIncrease(entries, window)
	}

	if ctx.Bool("json") {
		b, err := json.Marshal(entries)
		if err != nil {
			return err
		}

		fmt.Println(string(b))

		return nil
	}

	stats.RenderTrends(os.Stdout, entries, window, view.Mode)

	return nil
}

// listAction prints a table of records within a time period.
func listAction(ctx *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	filter, err := config.Filter(ctx)
	if err != nil {
		return err
	}

	applyTheme(cfg)

	client := api.NewClient(cfg.Backend.URL)

	records, err := fetchRecords(ctx.Context, client, filter)
	if err != nil {
		return err
	}

	if ctx.Bool("json") {
		b, err := json.Marshal(records)
		if err != nil {
			return err
		}

		fmt.Println(string(b))

		return nil
	}

	if len(records) == 0 {
		pterm.Info.Println("no records within the specified period")
		return nil
	}

	data := [][]string{
		{"#", "date", "activity", "group", "value", "memo", "tags"},
	}

	for _, rec := range records {
		value := fmt.Sprintf("%.0f", rec.Value)
		if rec.Unit == models.UnitMinutes {
			value = timeutil.FormatClock(
				time.Duration(rec.Value * float64(time.Minute)),
			)
		}

		data = append(data, []string{
			rec.ID,
			rec.CreatedAt.Local().Format("Jan 02 2006 15:04"),
			rec.ActivityName,
			rec.ActivityGroup,
			value,
			rec.Memo,
			strings.Join(tagNames(rec), ", "),
		})
	}

	ui.PrintTable(data, os.Stdout)

	return nil
}

// serveAction runs the bundled backend server.
func serveAction(ctx *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	dbStore, err := server.Open(config.ServerDBPath())
	if err != nil {
		return err
	}
	defer dbStore.Close()

	port := cfg.Server.Port
	if ctx.Uint("port") != 0 {
		port = int(ctx.Uint("port"))
	}

	pterm.Info.Printfln("starting server on port: %d", port)

	return server.NewHandler(dbStore).Router().Run(fmt.Sprintf(":%d", port))
}

// editConfigAction opens the config file in the user's default editor.
func editConfigAction(_ *cli.Context) error {
	defaultEditor := "nano"

	if runtime.GOOS == "windows" {
		defaultEditor = "C:\\Windows\\system32\\notepad.exe"
	}

	editor := firstNonEmptyString(
		os.Getenv("VISUAL"),
		os.Getenv("EDITOR"),
		defaultEditor,
	)

	if _, err := config.Load(); err != nil {
		return err
	}

	cmd := exec.Command(editor, config.ConfigFilePath())

	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout

	return cmd.Run()
}

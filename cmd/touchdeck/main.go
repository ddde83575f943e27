// Package main provides the touchdeck console entry point.
package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/mattn/go-runewidth"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/touchdeck/internal/app/filter"
	"github.com/osa030/touchdeck/internal/app/notification"
	"github.com/osa030/touchdeck/internal/domain/track"
	"github.com/osa030/touchdeck/internal/infra/audio"
	"github.com/osa030/touchdeck/internal/infra/config"
	"github.com/osa030/touchdeck/internal/infra/logger"
	"github.com/osa030/touchdeck/internal/infra/script"
)

// settle is how long replay keeps the console running after the last step.
const settle = time.Second

var (
	app        = kingpin.New("touchdeck", "touchdeck media console")
	configPath = app.Flag("config", "Path to config file").Default("config/touchdeck.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	runCmd = app.Command("run", "Run the headless console until interrupted (default)").Default()

	replCmd = app.Command("repl", "Run the console with an interactive command prompt")

	replayCmd  = app.Command("replay", "Run the console while replaying a timed input script")
	replayPath = replayCmd.Arg("script", "Path to the script YAML").Required().ExistingFile()

	tracksCmd = app.Command("tracks", "Print the catalog with probed durations and exit")

	listFiltersCmd = app.Command("list-filters", "List available input filters and exit")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if command == listFiltersCmd.FullCommand() {
		printFilters()
		return
	}

	loggerConfig := logger.Config{
		Output: "stdout",
		Level:  "info",
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = "file"
		loggerConfig.File = *logfile
	} else if command == replCmd.FullCommand() {
		// keep the prompt readable
		loggerConfig.Output = "stderr"
	}
	closer, err := logger.Init(loggerConfig)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer closer.Close()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	if command == tracksCmd.FullCommand() {
		printTracks(cfg.Catalog.Tracks)
		return
	}

	if err := run(cfg, command); err != nil {
		zlog.Error().Msgf("Console error: %v", err)
		closer.Close()
		os.Exit(1)
	}
}

// loadConfig loads path, falling back to defaults when the file does not exist.
func loadConfig(path string) (*config.Config, error) {
	zlog.Info().Msgf("Loading config from %s", path)
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		zlog.Warn().Msgf("Config file %s not found, using defaults", path)
		return config.Default(), nil
	}
	return cfg, err
}

// run executes the console. Using a separate function ensures deferred
// cleanup runs even when returning with an error.
func run(cfg *config.Config, command string) error {
	d, err := newDeck(cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	d.notifier.Subscribe(notification.StreamFunc(logNotification), notification.DefaultBuffer)
	if len(cfg.Hooks.OnTrackChanged) > 0 {
		d.notifier.Subscribe(&trackHooks{commands: cfg.Hooks.OnTrackChanged}, notification.DefaultBuffer)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- d.run(ctx)
	}()

	var driveErr error
	switch command {
	case replCmd.FullCommand():
		driveErr = runREPL(ctx, d)
		cancel()
	case replayCmd.FullCommand():
		driveErr = replay(ctx, d, *replayPath)
		cancel()
	case runCmd.FullCommand():
		zlog.Info().Msg("Console running, press Ctrl+C to stop")
	}

	if err := <-done; err != nil {
		return err
	}
	if driveErr != nil {
		return driveErr
	}

	zlog.Info().Msgf("Console stopped: %s dropped=%d", d.status(), d.queue.Dropped())
	return nil
}

// replay posts a script and lets the console settle before returning.
func replay(ctx context.Context, d *deck, path string) error {
	s, err := script.Load(path)
	if err != nil {
		return err
	}
	if err := script.Run(ctx, s, d.parser, d.queue.Post); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	select {
	case <-ctx.Done():
	case <-time.After(settle):
	}
	fmt.Println(d.status())
	for class, n := range d.router.Classes() {
		fmt.Printf("  %-12s %d\n", class, n)
	}
	for code, n := range d.router.Rejections() {
		fmt.Printf("  rejected %-12s %d\n", code, n)
	}
	return nil
}

// printFilters prints available filters.
func printFilters() {
	fmt.Println("Available Filters:")
	for _, name := range filter.Names() {
		f := filter.GetRegistered()[name]()
		codes := strings.Join(f.ReturnCodes(), ", ")
		fmt.Printf("  %-30s - %s [codes: %s]\n", f.Name(), f.Description(), codes)
	}
}

// printTracks probes every catalog track and prints title, artist and duration.
func printTracks(ids []string) {
	if len(ids) == 0 {
		fmt.Println("Catalog is empty (set catalog.tracks or TOUCHDECK_TRACKS)")
		return
	}

	const titleWidth, artistWidth = 40, 24
	prober := audio.FileProber{}
	for i, id := range ids {
		t, err := prober.Probe(id)
		if err != nil {
			fmt.Printf("%3d  %s  %s  (%v)\n", i+1, runewidth.FillRight(track.NameFromID(id), titleWidth), track.UnknownClock, err)
			continue
		}
		title := runewidth.Truncate(t.DisplayTitle(), titleWidth, "…")
		artist := runewidth.Truncate(t.Artist, artistWidth, "…")
		fmt.Printf("%3d  %s  %s  %s\n", i+1,
			runewidth.FillRight(title, titleWidth),
			runewidth.FillRight(artist, artistWidth),
			track.FormatClock(t.DurationSeconds()))
	}
}

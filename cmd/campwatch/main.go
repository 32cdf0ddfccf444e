package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/brensch/campwatch/internal/config"
	"github.com/brensch/campwatch/internal/httpx"
	"github.com/brensch/campwatch/internal/notify"
	"github.com/brensch/campwatch/internal/providers"
	"github.com/brensch/campwatch/internal/search"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

const dateFormat = "2006-01-02"

var (
	cfgFile      string
	debug        bool
	startDateStr string
	endDateStr   string
	nights       int
	campsiteType string
	allNights    bool
	parks        []int
	parksFile    string
	schedule     string
)

var rootCmd = &cobra.Command{
	Use:   "campwatch",
	Short: "Find campgrounds with open stretches of consecutive nights",
	Long: `campwatch polls the recreation.gov availability API across a date range
and reports which campgrounds have campsites free for enough consecutive
nights. By default only weekend nights (Friday through Sunday) are counted;
pass --all-nights to count every night in the range.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&cfgFile, "config", "", "config file (default is ./campwatch.yaml)")
	rootCmd.Flags().BoolVarP(&debug, "debug", "d", false, "debug log level")
	rootCmd.Flags().StringVar(&startDateStr, "start-date", "", "start date [YYYY-MM-DD]")
	rootCmd.Flags().StringVar(&endDateStr, "end-date", "", "end date [YYYY-MM-DD]; you expect to leave this day, not stay the night")
	rootCmd.Flags().IntVar(&nights, "nights", 0, "number of consecutive nights (default is all nights in the given range)")
	rootCmd.Flags().StringVar(&campsiteType, "campsite-type", "", `only count campsites of this exact type, e.g. "STANDARD NONELECTRIC"`)
	rootCmd.Flags().BoolVar(&allNights, "all-nights", false, "count every night in the range, not just Friday-Sunday")
	rootCmd.Flags().IntSliceVar(&parks, "parks", nil, "park ID(s)")
	rootCmd.Flags().StringVarP(&parksFile, "parks-file", "f", "", "JSON file mapping group names to lists of park IDs")
	rootCmd.Flags().StringVar(&schedule, "schedule", "", `cron expression to re-run the search on, e.g. "0 9 * * *"`)
	rootCmd.MarkFlagsMutuallyExclusive("parks", "parks-file")
	rootCmd.MarkFlagsOneRequired("parks", "parks-file")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	setupLogger(cfg.Logging, debug)

	window, err := parseWindow(cfg)
	if err != nil {
		return err
	}
	siteType := campsiteType
	if siteType == "" {
		siteType = cfg.Search.CampsiteType
	}

	headers := httpx.RandomBrowserHeaders()
	registry := providers.NewRegistry()
	registry.Register("recreation_gov", providers.NewRecreationGov(headers, cfg.BaseURL))
	prov, ok := registry.Get(cfg.Provider)
	if !ok {
		return fmt.Errorf("unknown provider: %s", cfg.Provider)
	}

	var notifier search.Notifier
	if cfg.NotifyEnabled() {
		d, err := notify.NewDiscord(cfg.Discord.Token, cfg.Discord.ChannelID)
		if err != nil {
			return err
		}
		notifier = d
		slog.Info("discord notifications enabled", slog.String("channel", cfg.Discord.ChannelID))
	}

	runner := search.NewRunner(prov, cfg.Delay(), notifier, os.Stdout)

	var groups map[string][]string
	if parksFile != "" {
		groups, err = loadParksFile(parksFile)
		if err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	if schedule != "" {
		return runOnSchedule(ctx, runner, window, siteType, groups)
	}

	if groups != nil {
		results := runner.SearchGroups(ctx, groups, window, siteType)
		code := 0
		for _, res := range results {
			if !res.Found {
				code++
			}
		}
		os.Exit(code)
	}

	found, err := runner.SearchParks(ctx, parkIDs(), window, siteType)
	if err != nil {
		slog.Error("search failed", slog.Any("err", err))
		os.Exit(1)
	}
	if !found {
		os.Exit(1)
	}
	return nil
}

// runOnSchedule runs the search immediately, then again on every cron tick
// until the context is cancelled. Exit codes don't apply in this mode.
func runOnSchedule(ctx context.Context, runner *search.Runner, w search.Window, siteType string, groups map[string][]string) error {
	pass := func() {
		if groups != nil {
			results := runner.SearchGroups(ctx, groups, w, siteType)
			for _, res := range results {
				if res.Err != nil {
					slog.Error("group failed", slog.String("group", res.Group), slog.Any("err", res.Err))
				}
			}
			return
		}
		_, err := runner.SearchParks(ctx, parkIDs(), w, siteType)
		if err != nil {
			slog.Error("scheduled search failed", slog.Any("err", err))
		}
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, pass); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}
	pass()
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

func setupLogger(cfg config.LoggingConfig, debug bool) {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// parseWindow resolves the search window from flags and config. With no
// dates given the window is today through eight months out.
func parseWindow(cfg *config.Config) (search.Window, error) {
	w := search.Window{Nights: nights, AllNights: allNights || cfg.Search.AllNights}
	if nights < 0 {
		return w, fmt.Errorf("not a valid number of nights: %d", nights)
	}
	if startDateStr == "" && endDateStr == "" {
		now := time.Now().UTC()
		w.Start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		w.End = w.Start.AddDate(0, 8, 0)
		return w, nil
	}
	var err error
	w.Start, err = time.ParseInLocation(dateFormat, startDateStr, time.UTC)
	if err != nil {
		return w, fmt.Errorf("not a valid start date: %q", startDateStr)
	}
	w.End, err = time.ParseInLocation(dateFormat, endDateStr, time.UTC)
	if err != nil {
		return w, fmt.Errorf("not a valid end date: %q", endDateStr)
	}
	if !w.Start.Before(w.End) {
		return w, fmt.Errorf("start date %s must be before end date %s", startDateStr, endDateStr)
	}
	return w, nil
}

func parkIDs() []string {
	out := make([]string, 0, len(parks))
	for _, id := range parks {
		out = append(out, strconv.Itoa(id))
	}
	return out
}

// loadParksFile reads a JSON object mapping group name to park ID list.
func loadParksFile(path string) (map[string][]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read parks file: %w", err)
	}
	var raw map[string][]int
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse parks file %s: %w", path, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("parks file %s has no groups", path)
	}
	out := make(map[string][]string, len(raw))
	for group, ids := range raw {
		strs := make([]string, 0, len(ids))
		for _, id := range ids {
			strs = append(strs, strconv.Itoa(id))
		}
		out[group] = strs
	}
	return out, nil
}

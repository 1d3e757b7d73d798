package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/playwright-community/playwright-go"

	"go-zhipin-crawler/internal/browser"
	"go-zhipin-crawler/internal/config"
	"go-zhipin-crawler/internal/crawl"
	"go-zhipin-crawler/internal/dedup"
	"go-zhipin-crawler/internal/filtermenu"
	"go-zhipin-crawler/internal/retry"
	"go-zhipin-crawler/internal/session"
	"go-zhipin-crawler/internal/sink"
)

func main() {
	var (
		query      = flag.String("query", "", "search keyword, e.g. golang (required)")
		city       = flag.String("city", "全国", "city from the board's dropdown")
		pages      = flag.Int("pages", 5, "maximum result pages to scan")
		filters    = flag.String("filters", "", "filter selections, e.g. \"求职类型=全职;学历要求=本科,硕士\"")
		configPath = flag.String("config", "configs/config.yaml", "path to config file")
		headless   = flag.Bool("headless", true, "run the browser headless")
	)
	flag.Parse()

	if *query == "" {
		fmt.Fprintln(os.Stderr, "usage: crawler -query <keyword> [-city 北京] [-pages 5] [-filters \"求职类型=全职\"]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Config error: %v", err)
	}
	headlessSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "headless" {
			headlessSet = true
		}
	})
	if headlessSet {
		cfg.Headless = *headless
	}

	selections, err := parseFilters(*filters)
	if err != nil {
		log.Fatalf("❌ Bad -filters value: %v", err)
	}

	menu, err := filtermenu.Load(cfg.MenuPath)
	if err != nil {
		log.Fatalf("❌ Failed to load filter menu %s: %v", cfg.MenuPath, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, menu, *query, *city, *pages, selections); err != nil {
		log.Fatalf("❌ Crawl failed: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, menu filtermenu.Menu, query, city string, maxPages int, selections map[string][]string) error {
	log.Println("🚀 Starting job crawler...")

	mgr, err := browser.New(browser.Options{
		Headless:  cfg.Headless,
		UserAgent: cfg.UserAgent,
		Proxy:     cfg.Proxy,
		Timeout:   cfg.Timeout(),
	})
	if err != nil {
		return err
	}
	defer mgr.Close()

	var cookies []playwright.OptionalCookie
	if cfg.CookiesPath != "" {
		cookies, err = browser.LoadCookies(cfg.CookiesPath)
		if err != nil {
			log.Printf("⚠️ Could not load cookies, continuing without: %v", err)
			cookies = nil
		}
	}

	browserCtx, err := mgr.NewContext(cookies, cfg.UserAgent)
	if err != nil {
		return err
	}
	page, err := browserCtx.NewPage()
	if err != nil {
		return fmt.Errorf("%w: new page: %v", session.ErrSessionStartup, err)
	}
	shots := browser.NewScreenshotDebugger(cfg.ScreenshotDir)

	sess := session.NewPageSession(page, cfg.Timeout())
	crawler := crawl.New(sess, crawl.Config{
		BaseURL:           cfg.BaseURL,
		Menu:              menu,
		DelayMin:          cfg.DelayMin(),
		DelayMax:          cfg.DelayMax(),
		LookupPolicy:      retry.Policy{Attempts: cfg.RetryAttempts, MinDelay: cfg.DelayMin(), MaxDelay: cfg.DelayMax(), Timeout: cfg.Timeout()},
		MaxScrollAttempts: cfg.MaxScrollAttempts,
		ScrollStep:        cfg.ScrollStepPx,
		PopupInterval:     cfg.PopupInterval(),
		NavPerMinute:      cfg.NavPerMinute,
	})
	defer func() {
		if err := crawler.Close(context.Background()); err != nil {
			log.Printf("⚠️ Session close: %v", err)
		}
	}()

	browser.Warmup(page)

	sinks, err := buildSinks(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := sinks.Close(context.Background()); err != nil {
			log.Printf("⚠️ Sink close: %v", err)
		}
	}()

	var cache *dedup.Cache
	if cfg.CachePath != "" {
		cache, err = dedup.Open(cfg.CachePath)
		if err != nil {
			return err
		}
		log.Printf("🧠 Dedup cache loaded: %d known listings", cache.Len())
	}

	log.Printf("🔍 Searching %q in %s...", query, city)
	if err := crawler.Search(ctx, query, city, selections); err != nil {
		shots.Capture(page, "search-failed")
		return err
	}

	total := 0
	for {
		jobs, err := crawler.ScanPage(ctx)
		if err != nil {
			shots.Capture(page, fmt.Sprintf("scan-page-%d-failed", crawler.Page()))
			return err
		}

		fresh := jobs
		if cache != nil {
			fresh = fresh[:0:0]
			keys := make([]string, 0, len(jobs))
			for _, job := range jobs {
				if cache.Seen(job.Key()) {
					continue
				}
				fresh = append(fresh, job)
				keys = append(keys, job.Key())
			}
			if err := cache.Add(keys); err != nil {
				log.Printf("⚠️ Dedup cache save: %v", err)
			}
		}

		total += len(fresh)
		log.Printf("📄 Page %d: %d listings (%d new)", crawler.Page(), len(jobs), len(fresh))
		if len(fresh) > 0 {
			if err := sinks.Emit(ctx, fresh); err != nil {
				return err
			}
		}

		if crawler.Page() >= maxPages {
			break
		}
		if err := crawler.NextPage(ctx); err != nil {
			if errors.Is(err, session.ErrNoMorePages) {
				log.Println("🏁 Reached the last results page")
				break
			}
			shots.Capture(page, fmt.Sprintf("next-page-%d-failed", crawler.Page()))
			return err
		}
	}

	log.Printf("✅ Done: %d listings over %d pages, %d popups dismissed",
		total, crawler.Page(), crawler.Watcher().Dismissed())
	return nil
}

func buildSinks(cfg *config.Config) (sink.Multi, error) {
	sinks := sink.Multi{sink.NewWriter(os.Stdout)}
	if cfg.OutputDir != "" {
		sinks = append(sinks, sink.NewFile(cfg.OutputDir))
	}
	if cfg.SQLitePath != "" {
		store, err := sink.NewStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, store)
	}
	if cfg.TelegramToken != "" {
		tg, err := sink.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, tg)
	}
	return sinks, nil
}

// parseFilters turns "求职类型=全职;学历要求=本科,硕士" into category →
// option labels.
func parseFilters(raw string) (map[string][]string, error) {
	if raw == "" {
		return nil, nil
	}
	selections := make(map[string][]string)
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		category, opts, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("expected category=option in %q", part)
		}
		for _, opt := range strings.Split(opts, ",") {
			if opt = strings.TrimSpace(opt); opt != "" {
				selections[category] = append(selections[category], opt)
			}
		}
	}
	return selections, nil
}

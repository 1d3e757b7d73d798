// Crawler for one search session against the board: apply the search,
// walk the result pages, pull the cards apart. It owns the session handle
// and the popup watcher; nothing else touches either while it is open.

package crawl

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/time/rate"

	"go-zhipin-crawler/internal/filtermenu"
	"go-zhipin-crawler/internal/popup"
	"go-zhipin-crawler/internal/retry"
	"go-zhipin-crawler/internal/session"
	"go-zhipin-crawler/utils"
)

// Config carries the crawl-side tunables. Zero values fall back to the
// defaults set in New.
type Config struct {
	BaseURL string
	Menu    filtermenu.Menu

	// DelayMin and DelayMax bound the human-like pause around
	// navigations and interactions.
	DelayMin time.Duration
	DelayMax time.Duration

	// LookupPolicy retries read-only element lookups; ClickPolicy caps
	// mutating clicks.
	LookupPolicy retry.Policy
	ClickPolicy  retry.Policy

	// MaxScrollAttempts bounds the scroll-and-wait cycles that force
	// lazy-loaded cards in, so a page that never settles cannot loop
	// forever.
	MaxScrollAttempts int
	ScrollStep        int

	// PopupInterval is the watcher's polling cadence.
	PopupInterval time.Duration

	// NavPerMinute rate-limits navigations on top of the jittered
	// delays.
	NavPerMinute float64
}

func (c *Config) applyDefaults() {
	if c.DelayMin <= 0 {
		c.DelayMin = time.Second
	}
	if c.DelayMax < c.DelayMin {
		c.DelayMax = 3 * c.DelayMin
	}
	if c.LookupPolicy.Attempts == 0 {
		c.LookupPolicy = retry.DefaultPolicy()
	}
	if c.ClickPolicy.Attempts == 0 {
		c.ClickPolicy = retry.ClickPolicy()
	}
	if c.MaxScrollAttempts <= 0 {
		c.MaxScrollAttempts = 20
	}
	if c.ScrollStep <= 0 {
		c.ScrollStep = 250
	}
	if c.NavPerMinute <= 0 {
		c.NavPerMinute = 10
	}
}

// Crawler drives one crawl session. Single-owner lifecycle: New, use from
// one goroutine, Close. The watcher is the only concurrent actor and it
// shares the session's command lock.
type Crawler struct {
	sess    session.Session
	watcher *popup.Watcher
	limiter *rate.Limiter
	cfg     Config

	pages   [][]Job
	seen    mapset.Set[string]
	pageNum int
}

// New wraps an open session and starts the popup watcher over it.
func New(sess session.Session, cfg Config) *Crawler {
	cfg.applyDefaults()
	c := &Crawler{
		sess:    sess,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.NavPerMinute/60.0), 1),
		seen:    mapset.NewSet[string](),
	}
	c.watcher = popup.New(sess, SelLoginDialog, SelDialogClose, cfg.PopupInterval)
	c.watcher.Start()
	return c
}

// Watcher exposes the popup watcher, mainly so callers can report its
// dismiss count.
func (c *Crawler) Watcher() *popup.Watcher { return c.watcher }

// Page returns the 1-based number of the page currently loaded, 0 before
// the first Search.
func (c *Crawler) Page() int { return c.pageNum }

// Pages returns the records extracted so far, one slice per scanned page.
// Pagination failures never touch what is already here.
func (c *Crawler) Pages() [][]Job { return c.pages }

// Results flattens Pages in scan order.
func (c *Crawler) Results() []Job {
	var out []Job
	for _, page := range c.pages {
		out = append(out, page...)
	}
	return out
}

// Search loads the board, applies city and query, then navigates to the
// URL composed from the filter selections. An unknown filter option fails
// the call but leaves the session usable.
func (c *Crawler) Search(ctx context.Context, query, city string, selections map[string][]string) error {
	if err := c.navigate(ctx, c.cfg.BaseURL); err != nil {
		return err
	}
	if city != "" {
		if err := c.selectCity(ctx, city); err != nil {
			// the city tab moves around a lot; the query still narrows
			// results, so keep going
			log.Printf("crawl: city selection failed: %v", err)
		}
	}
	if err := c.submitQuery(ctx, query); err != nil {
		return err
	}

	if len(selections) > 0 {
		filtered, err := c.cfg.Menu.Compose(c.sess.CurrentURL(), selections)
		if err != nil {
			return err
		}
		if err := c.navigate(ctx, filtered); err != nil {
			return err
		}
	}
	c.pageNum = 1
	return nil
}

// ScanPage scrolls the current results page to pull lazy cards in, then
// extracts every listing in top-to-bottom DOM order.
func (c *Crawler) ScanPage(ctx context.Context) ([]Job, error) {
	c.scrollThrough(ctx)
	jobs, err := c.extract(ctx)
	if err != nil {
		return nil, err
	}
	c.pages = append(c.pages, jobs)
	return jobs, nil
}

// NextPage activates the pagination control. session.ErrNoMorePages means
// the end of results: expected, terminal, and everything scanned so far
// stays available.
func (c *Crawler) NextPage(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	area, err := retry.Do(ctx, c.cfg.LookupPolicy, func(ctx context.Context) (session.Element, error) {
		return c.sess.Locate(ctx, selPagination)
	})
	if err != nil {
		return fmt.Errorf("%w: pagination area absent", session.ErrNoMorePages)
	}
	pager, err := area.Locate(ctx, selPager)
	if err != nil {
		return fmt.Errorf("%w: pager absent", session.ErrNoMorePages)
	}

	before := c.sess.CurrentURL()
	err = retry.Run(ctx, c.cfg.ClickPolicy, func(ctx context.Context) error {
		next, err := pager.Locate(ctx, selNextPage)
		if err != nil {
			return retry.Permanent(fmt.Errorf("%w: next control absent", session.ErrNoMorePages))
		}
		if cls, err := next.Attr(ctx, "class"); err == nil && strings.Contains(cls, "disabled") {
			return retry.Permanent(fmt.Errorf("%w: next control disabled", session.ErrNoMorePages))
		}
		if err := next.Click(ctx); err != nil {
			// the click may have landed even though the driver reported
			// failure; never re-click a control that already advanced
			if c.sess.CurrentURL() != before {
				return nil
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := retry.Sleep(ctx, c.cfg.DelayMin, c.cfg.DelayMax); err != nil {
		return err
	}
	c.pageNum++
	return nil
}

// Close stops the watcher and waits for it, then releases the session —
// in that order, so the watcher can never act on a torn-down session.
func (c *Crawler) Close(ctx context.Context) error {
	c.watcher.Stop()
	return c.sess.Close(ctx)
}

func (c *Crawler) navigate(ctx context.Context, url string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	err := retry.Run(ctx, c.cfg.LookupPolicy, func(ctx context.Context) error {
		return c.sess.Navigate(ctx, url)
	})
	if err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return retry.Sleep(ctx, c.cfg.DelayMin, c.cfg.DelayMax)
}

func (c *Crawler) selectCity(ctx context.Context, city string) error {
	known := false
	for _, listed := range listedCities {
		if listed == city {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("city %q is not in the board's dropdown", city)
	}

	if _, err := retry.Do(ctx, c.cfg.LookupPolicy, func(ctx context.Context) (session.Element, error) {
		return c.sess.Locate(ctx, selCityDropdown)
	}); err != nil {
		return err
	}

	// activate the 城市和区域 tab when it is not already the active one
	if tabs, err := c.sess.All(ctx, selCityTab); err == nil {
		for _, tab := range tabs {
			text, err := tab.Text(ctx)
			if err != nil || strings.TrimSpace(text) != "城市和区域" {
				continue
			}
			if cls, err := tab.Attr(ctx, "class"); err == nil && strings.Contains(cls, "active") {
				break
			}
			if err := tab.Click(ctx); err != nil {
				log.Printf("crawl: city tab click failed: %v", err)
			}
			break
		}
	}

	items, err := c.sess.All(ctx, selCityList)
	if err != nil {
		return err
	}
	for _, item := range items {
		text, err := item.Text(ctx)
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) == city {
			if err := item.Click(ctx); err != nil {
				return err
			}
			return retry.Sleep(ctx, c.cfg.DelayMin, c.cfg.DelayMax)
		}
	}
	return fmt.Errorf("%w: city %q", session.ErrNotFound, city)
}

func (c *Crawler) submitQuery(ctx context.Context, query string) error {
	err := retry.Run(ctx, c.cfg.LookupPolicy, func(ctx context.Context) error {
		return c.sess.Fill(ctx, selSearchInput, query)
	})
	if err != nil {
		return fmt.Errorf("search box: %w", err)
	}
	if err := retry.Sleep(ctx, c.cfg.DelayMin, c.cfg.DelayMax); err != nil {
		return err
	}
	err = retry.Run(ctx, c.cfg.ClickPolicy, func(ctx context.Context) error {
		return c.sess.Click(ctx, selSearchButton)
	})
	if err != nil {
		return fmt.Errorf("search button: %w", err)
	}
	return retry.Sleep(ctx, c.cfg.DelayMin, c.cfg.DelayMax)
}

// scrollThrough steps the viewport down until the page bottom or the
// attempt bound, waiting briefly after each step so lazy cards can render.
// Scroll failures are not fatal: extraction just sees fewer cards.
func (c *Crawler) scrollThrough(ctx context.Context) {
	for i := 0; i < c.cfg.MaxScrollAttempts; i++ {
		pos, err := c.evalInt(ctx, "window.pageYOffset + window.innerHeight")
		if err != nil {
			return
		}
		height, err := c.evalInt(ctx, "document.body.scrollHeight")
		if err != nil || pos >= height {
			return
		}
		if _, err := c.sess.Evaluate(ctx, fmt.Sprintf("window.scrollBy(0, %d)", c.cfg.ScrollStep)); err != nil {
			return
		}
		if err := retry.Sleep(ctx, 100*time.Millisecond, 300*time.Millisecond); err != nil {
			return
		}
	}
}

func (c *Crawler) evalInt(ctx context.Context, script string) (int, error) {
	v, err := c.sess.Evaluate(ctx, script)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("unexpected evaluate result %T", v)
	}
}

func (c *Crawler) extract(ctx context.Context) ([]Job, error) {
	cards, err := retry.Do(ctx, c.cfg.LookupPolicy, func(ctx context.Context) ([]session.Element, error) {
		cards, err := c.sess.All(ctx, selJobCard)
		if err != nil {
			return nil, err
		}
		if len(cards) == 0 {
			return nil, fmt.Errorf("%w: %q", session.ErrNotFound, selJobCard)
		}
		return cards, nil
	})
	if err != nil {
		return nil, err
	}

	jobs := make([]Job, 0, len(cards))
	for i, card := range cards {
		job, err := c.extractCard(ctx, card)
		if err != nil {
			log.Printf("crawl: skipping card %d: %v", i, err)
			continue
		}
		if !c.seen.Add(job.Key()) {
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// extractCard reads one listing card. Field lookups are best-effort: a
// missing field stays empty, only a card with no usable fields at all is
// an error.
func (c *Crawler) extractCard(ctx context.Context, card session.Element) (Job, error) {
	var job Job

	left, err := card.Locate(ctx, selCardLeft)
	if err != nil {
		return job, fmt.Errorf("card body: %w", err)
	}

	if href, err := left.Attr(ctx, "href"); err == nil {
		job.URL = href
	}
	if text, err := childText(ctx, left, selJobTitle); err == nil {
		job.Title = utils.FirstLine(text)
		job.Location = utils.LastLine(text)
	}
	if text, err := childText(ctx, left, selTagList); err == nil {
		job.Experience = utils.FirstLine(text)
		job.Degree = utils.LastLine(text)
	}
	if text, err := childText(ctx, left, selSalary); err == nil {
		job.Salary = text
	}
	if text, err := childText(ctx, left, selContact); err == nil {
		job.Contact = text
	}

	if right, err := card.Locate(ctx, selCardRight); err == nil {
		if text, err := childText(ctx, right, selCompanyName); err == nil {
			job.Company = text
		}
		if tags, err := right.Locate(ctx, selCompanyTags); err == nil {
			c.readCompanyTags(ctx, tags, &job)
		}
	}

	if job.Title == "" && job.Company == "" {
		return job, errors.New("card yielded no fields")
	}
	return job, nil
}

// readCompanyTags splits the company tag strip. The board renders
// industry first and size last; the financing stage sits between them and
// simply is not rendered for unfunded companies.
func (c *Crawler) readCompanyTags(ctx context.Context, tags session.Element, job *Job) {
	items, err := tags.All(ctx, "li")
	if err != nil || len(items) == 0 {
		return
	}
	texts := make([]string, 0, len(items))
	for _, item := range items {
		text, err := item.Text(ctx)
		if err != nil {
			continue
		}
		texts = append(texts, utils.Clean(text))
	}
	if len(texts) == 0 {
		return
	}
	job.Industry = texts[0]
	job.CompanySize = texts[len(texts)-1]
	if len(texts) >= 3 {
		job.FinancingStage = texts[1]
	}
}

func childText(ctx context.Context, parent session.Element, selector string) (string, error) {
	child, err := parent.Locate(ctx, selector)
	if err != nil {
		return "", err
	}
	text, err := child.Text(ctx)
	if err != nil {
		return "", err
	}
	return utils.Clean(text), nil
}

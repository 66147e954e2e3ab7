package browser

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/octobees/leads-generator/enricher/internal/fetch"
)

// ErrAutomation wraps every failure raised while driving the browser.
var ErrAutomation = errors.New("browser automation failed")

const (
	idleWindow    = 500 * time.Millisecond
	idlePoll      = 100 * time.Millisecond
	maxIdleWait   = 3 * time.Second
	defaultSettle = 2 * time.Second
)

// Page is the rendered DOM of a URL.
type Page struct {
	HTML     string
	FinalURL string
}

// RenderOptions tunes a single render.
type RenderOptions struct {
	Timeout time.Duration
	// WaitSelector is awaited after navigation; on timeout the render falls back to Settle.
	WaitSelector string
	// WaitIdle waits for the network to go quiet before reading the DOM.
	WaitIdle bool
	// Settle is a fixed delay applied after navigation.
	Settle    time.Duration
	UserAgent string
}

// Config controls how Chrome is launched.
type Config struct {
	ExecPath string
	Headless bool
	Timeout  time.Duration
}

// Browser launches short-lived headless Chrome sessions. Launches are serialized so that
// at most one browser process exists at a time.
type Browser struct {
	cfg  Config
	gate *semaphore.Weighted
	log  logrus.FieldLogger
}

// New builds a browser launcher.
func New(cfg Config, log logrus.FieldLogger) *Browser {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &Browser{cfg: cfg, gate: semaphore.NewWeighted(1), log: log}
}

func (b *Browser) allocatorOptions(userAgent string) []chromedp.ExecAllocatorOption {
	if userAgent == "" {
		agents := fetch.UserAgents()
		userAgent = agents[rand.IntN(len(agents))]
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.cfg.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.WindowSize(1366, 900),
		chromedp.UserAgent(userAgent),
	)
	if b.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(b.cfg.ExecPath))
	}
	return opts
}

// Render launches Chrome, loads url and returns the live DOM. The browser process is
// torn down before Render returns.
func (b *Browser) Render(ctx context.Context, url string, opts RenderOptions) (Page, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = b.cfg.Timeout
	}

	// The slot wait counts against the render timeout.
	waitCtx, cancelWait := context.WithTimeout(ctx, timeout)
	err := b.gate.Acquire(waitCtx, 1)
	cancelWait()
	if err != nil {
		return Page{}, fmt.Errorf("%w: waiting for browser slot: %v", ErrAutomation, err)
	}
	defer b.gate.Release(1)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, b.allocatorOptions(opts.UserAgent)...)
	defer cancelAlloc()
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()
	runCtx, cancelRun := context.WithTimeout(tabCtx, timeout)
	defer cancelRun()

	var inflight int64
	if opts.WaitIdle {
		chromedp.ListenTarget(runCtx, func(ev interface{}) {
			switch ev.(type) {
			case *network.EventRequestWillBeSent:
				atomic.AddInt64(&inflight, 1)
			case *network.EventLoadingFinished, *network.EventLoadingFailed:
				if atomic.AddInt64(&inflight, -1) < 0 {
					atomic.StoreInt64(&inflight, 0)
				}
			}
		})
	}

	tasks := chromedp.Tasks{network.Enable(), chromedp.Navigate(url)}
	if opts.WaitSelector != "" {
		tasks = append(tasks, waitOrSettle(opts.WaitSelector, opts.Settle))
	} else if opts.Settle > 0 {
		tasks = append(tasks, chromedp.Sleep(opts.Settle))
	}
	if opts.WaitIdle {
		tasks = append(tasks, waitNetworkIdle(&inflight))
	}

	var page Page
	tasks = append(tasks,
		chromedp.Location(&page.FinalURL),
		chromedp.OuterHTML("html", &page.HTML, chromedp.ByQuery),
	)

	start := time.Now()
	if err := chromedp.Run(runCtx, tasks); err != nil {
		return Page{}, fmt.Errorf("%w: render %s: %v", ErrAutomation, url, err)
	}
	b.log.WithFields(logrus.Fields{
		"url":     url,
		"final":   page.FinalURL,
		"latency": time.Since(start).String(),
	}).Debug("browser render finished")
	return page, nil
}

// waitOrSettle waits for selector for up to settle (or the default), ignoring a timeout
// so that pages without the element still get read.
func waitOrSettle(selector string, settle time.Duration) chromedp.Action {
	if settle <= 0 {
		settle = defaultSettle
	}
	return chromedp.ActionFunc(func(ctx context.Context) error {
		waitCtx, cancel := context.WithTimeout(ctx, settle)
		defer cancel()
		err := chromedp.WaitReady(selector, chromedp.ByQuery).Do(waitCtx)
		if err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		return nil
	})
}

// waitNetworkIdle returns once no request has been in flight for idleWindow, or after
// maxIdleWait for pages that keep polling.
func waitNetworkIdle(inflight *int64) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		quietSince := time.Now()
		deadline := time.NewTimer(maxIdleWait)
		defer deadline.Stop()
		ticker := time.NewTicker(idlePoll)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-deadline.C:
				return nil
			case <-ticker.C:
				if atomic.LoadInt64(inflight) > 0 {
					quietSince = time.Now()
					continue
				}
				if time.Since(quietSince) >= idleWindow {
					return nil
				}
			}
		}
	})
}

// SameDocument compares two URLs ignoring scheme case, a trailing slash and fragments.
func SameDocument(a, b string) bool {
	norm := func(s string) string {
		s = strings.TrimSpace(strings.ToLower(s))
		if i := strings.Index(s, "#"); i >= 0 {
			s = s[:i]
		}
		return strings.TrimRight(s, "/")
	}
	return norm(a) == norm(b)
}

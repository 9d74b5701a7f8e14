package browser

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"github.com/skoom21/zocdoc-scraper/internal/logger"
	"github.com/skoom21/zocdoc-scraper/internal/proxy"
)

// chromeLauncher starts headless Chrome sessions via chromedp.
type chromeLauncher struct {
	log logger.Logger
}

func NewLauncher(log logger.Logger) Launcher {
	return &chromeLauncher{log: log}
}

func (l *chromeLauncher) Launch(opts LaunchOptions) (Session, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	if opts.Humanize {
		// Closer to a real browser profile; reduces trivial bot signals.
		allocOpts = append(allocOpts,
			chromedp.Flag("disable-infobars", true),
			chromedp.WindowSize(1366, 768),
		)
	}
	if !opts.Proxy.IsZero() {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.Proxy.Server))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser process now so a bad proxy or missing binary
	// fails at launch rather than on first navigation.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("starting browser: %w", err)
	}

	s := &chromeSession{
		ctx:            browserCtx,
		cancel:         browserCancel,
		allocCancel:    allocCancel,
		endpoint:       opts.Proxy,
		elementTimeout: opts.ElementTimeout,
		log:            l.log,
	}
	if s.elementTimeout <= 0 {
		s.elementTimeout = 5 * time.Second
	}
	return s, nil
}

type chromeSession struct {
	ctx            context.Context
	cancel         context.CancelFunc
	allocCancel    context.CancelFunc
	endpoint       proxy.Endpoint
	elementTimeout time.Duration
	log            logger.Logger
}

func (s *chromeSession) NewPage() (Page, error) {
	if s.endpoint.Username != "" {
		if err := s.enableProxyAuth(); err != nil {
			return nil, err
		}
	}
	return &chromePage{ctx: s.ctx, opTimeout: s.elementTimeout, log: s.log}, nil
}

// enableProxyAuth answers HTTP proxy authentication challenges with the
// endpoint credentials via the fetch domain.
func (s *chromeSession) enableProxyAuth() error {
	chromedp.ListenTarget(s.ctx, func(ev interface{}) {
		switch ev := ev.(type) {
		case *fetch.EventAuthRequired:
			go func() {
				resp := &fetch.AuthChallengeResponse{
					Response: fetch.AuthChallengeResponseResponseProvideCredentials,
					Username: s.endpoint.Username,
					Password: s.endpoint.Password,
				}
				if err := chromedp.Run(s.ctx, fetch.ContinueWithAuth(ev.RequestID, resp)); err != nil {
					s.log.Warnf("Proxy auth response failed: %v", err)
				}
			}()
		case *fetch.EventRequestPaused:
			go func() {
				if err := chromedp.Run(s.ctx, fetch.ContinueRequest(ev.RequestID)); err != nil {
					s.log.Debugf("Continue request failed: %v", err)
				}
			}()
		}
	})
	return chromedp.Run(s.ctx, fetch.Enable().WithHandleAuthRequests(true))
}

func (s *chromeSession) Close() error {
	s.cancel()
	s.allocCancel()
	return nil
}

type chromePage struct {
	ctx       context.Context
	opTimeout time.Duration
	log       logger.Logger
}

// Navigate waits for body readiness only; callers sleep through a
// settle interval afterwards instead of tracking network idleness.
func (p *chromePage) Navigate(url string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()
	return chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (p *chromePage) Reload(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()
	return chromedp.Run(ctx,
		chromedp.Reload(),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (p *chromePage) Title() (string, error) {
	ctx, cancel := context.WithTimeout(p.ctx, p.opTimeout)
	defer cancel()
	var title string
	err := chromedp.Run(ctx, chromedp.Title(&title))
	return title, err
}

func (p *chromePage) Content() (string, error) {
	ctx, cancel := context.WithTimeout(p.ctx, p.opTimeout)
	defer cancel()
	var html string
	err := chromedp.Run(ctx, chromedp.OuterHTML("html", &html))
	return html, err
}

func (p *chromePage) WaitForMarker(selector string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()
	return chromedp.Run(ctx, chromedp.WaitReady(selector, chromedp.ByQuery))
}

// matchScript selects the elements a Locator addresses: querySelectorAll
// filtered by visible-text substring when the locator carries one.
func matchScript(loc Locator) string {
	return fmt.Sprintf(
		`Array.from(document.querySelectorAll(%q)).filter(el => %q === "" || (el.innerText || "").includes(%q))`,
		loc.Selector, loc.Text, loc.Text)
}

func (p *chromePage) Count(loc Locator) (int, error) {
	ctx, cancel := context.WithTimeout(p.ctx, p.opTimeout)
	defer cancel()
	var n int
	err := chromedp.Run(ctx, chromedp.Evaluate(matchScript(loc)+".length", &n))
	return n, err
}

func (p *chromePage) Text(loc Locator, index int) (string, error) {
	ctx, cancel := context.WithTimeout(p.ctx, p.opTimeout)
	defer cancel()
	script := fmt.Sprintf(
		`(() => { const els = %s; return els[%d] ? (els[%d].innerText || "") : ""; })()`,
		matchScript(loc), index, index)
	var text string
	err := chromedp.Run(ctx, chromedp.Evaluate(script, &text))
	return text, err
}

func (p *chromePage) Visible(loc Locator, index int) (bool, error) {
	ctx, cancel := context.WithTimeout(p.ctx, p.opTimeout)
	defer cancel()
	script := fmt.Sprintf(
		`(() => { const el = (%s)[%d]; return !!el && el.getClientRects().length > 0; })()`,
		matchScript(loc), index)
	var visible bool
	err := chromedp.Run(ctx, chromedp.Evaluate(script, &visible))
	return visible, err
}

func (p *chromePage) Click(loc Locator, index int, force bool) error {
	ctx, cancel := context.WithTimeout(p.ctx, p.opTimeout)
	defer cancel()

	action := `el.dispatchEvent(new MouseEvent("mousedown", {bubbles: true}));
		el.dispatchEvent(new MouseEvent("mouseup", {bubbles: true}));
		el.dispatchEvent(new MouseEvent("click", {bubbles: true}));`
	if force {
		action = `el.click();`
	}
	script := fmt.Sprintf(
		`(() => {
			const el = (%s)[%d];
			if (!el) { return false; }
			el.scrollIntoView({block: "center"});
			%s
			return true;
		})()`,
		matchScript(loc), index, action)

	var ok bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(script, &ok)); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no element at index %d for selector %q", index, loc.Selector)
	}
	return nil
}

func (p *chromePage) Screenshot(path string) error {
	ctx, cancel := context.WithTimeout(p.ctx, p.opTimeout)
	defer cancel()
	var buf []byte
	if err := chromedp.Run(ctx, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}

func (p *chromePage) SendKey(key string) error {
	ctx, cancel := context.WithTimeout(p.ctx, p.opTimeout)
	defer cancel()
	if key == "Escape" {
		key = kb.Escape
	}
	return chromedp.Run(ctx, chromedp.KeyEvent(key))
}

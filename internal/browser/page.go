package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
)

// Tab is the surface the session manager, scraper and apply machine
// drive. Page is the live implementation; tests substitute fakes.
type Tab interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, sel string) error
	Present(ctx context.Context, sel string) (bool, error)
	Text(ctx context.Context, sel string) (string, error)
	Texts(ctx context.Context, sel string) ([]string, error)
	HTML(ctx context.Context, sel string) (string, error)
	Click(ctx context.Context, sel string) error
	ClickByText(ctx context.Context, sel, label string) (bool, error)
	SendKeys(ctx context.Context, sel, text string) error
	BodyContains(ctx context.Context, phrase string) (bool, error)
	Cookies(ctx context.Context) ([]Cookie, error)
	SetCookies(ctx context.Context, cookies []Cookie) error
	Close()
}

// Cookie is the serializable subset of browser cookie state that makes
// up a portal session token.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"http_only"`
	Secure   bool    `json:"secure"`
}

// Page wraps one browser tab. Every operation is bounded by the
// configured navigation timeout.
type Page struct {
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
}

// run executes actions on the tab with the per-operation timeout, also
// honoring cancellation of the caller's context.
func (p *Page) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(tctx, actions...)
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	if err := p.run(ctx, chromedp.Navigate(url), chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (p *Page) WaitVisible(ctx context.Context, sel string) error {
	if err := p.run(ctx, chromedp.WaitVisible(sel, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("wait visible %q: %w", sel, err)
	}
	return nil
}

func (p *Page) Present(ctx context.Context, sel string) (bool, error) {
	var nodes []*cdp.Node
	if err := p.run(ctx, chromedp.Nodes(sel, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return false, fmt.Errorf("query %q: %w", sel, err)
	}
	return len(nodes) > 0, nil
}

func (p *Page) Text(ctx context.Context, sel string) (string, error) {
	var out string
	if err := p.run(ctx, chromedp.Text(sel, &out, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("text %q: %w", sel, err)
	}
	return strings.TrimSpace(out), nil
}

func (p *Page) Texts(ctx context.Context, sel string) ([]string, error) {
	expr := fmt.Sprintf(
		`Array.from(document.querySelectorAll(%s)).map(e => e.innerText.trim())`,
		jsString(sel))
	var out []string
	if err := p.run(ctx, chromedp.Evaluate(expr, &out)); err != nil {
		return nil, fmt.Errorf("texts %q: %w", sel, err)
	}
	return out, nil
}

func (p *Page) HTML(ctx context.Context, sel string) (string, error) {
	var out string
	if err := p.run(ctx, chromedp.OuterHTML(sel, &out, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("html %q: %w", sel, err)
	}
	return out, nil
}

func (p *Page) Click(ctx context.Context, sel string) error {
	if err := p.run(ctx, chromedp.Click(sel, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("click %q: %w", sel, err)
	}
	return nil
}

// ClickByText clicks the first element matching sel whose trimmed text
// equals label, case-insensitively. Returns false when nothing matched.
func (p *Page) ClickByText(ctx context.Context, sel, label string) (bool, error) {
	expr := fmt.Sprintf(`(() => {
		const want = %s.trim().toLowerCase();
		for (const el of document.querySelectorAll(%s)) {
			if (el.innerText.trim().toLowerCase() === want) { el.click(); return true; }
		}
		return false;
	})()`, jsString(label), jsString(sel))

	var clicked bool
	if err := p.run(ctx, chromedp.Evaluate(expr, &clicked)); err != nil {
		return false, fmt.Errorf("click by text %q: %w", label, err)
	}
	return clicked, nil
}

func (p *Page) SendKeys(ctx context.Context, sel, text string) error {
	if err := p.run(ctx, chromedp.SendKeys(sel, text, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("send keys %q: %w", sel, err)
	}
	return nil
}

func (p *Page) BodyContains(ctx context.Context, phrase string) (bool, error) {
	var body string
	if err := p.run(ctx, chromedp.Text("body", &body, chromedp.ByQuery)); err != nil {
		return false, fmt.Errorf("read body: %w", err)
	}
	return strings.Contains(strings.ToLower(body), strings.ToLower(phrase)), nil
}

func (p *Page) Cookies(ctx context.Context) ([]Cookie, error) {
	var raw []*network.Cookie
	err := p.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		raw, err = storage.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("get cookies: %w", err)
	}

	cookies := make([]Cookie, 0, len(raw))
	for _, c := range raw {
		cookies = append(cookies, Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		})
	}
	return cookies, nil
}

func (p *Page) SetCookies(ctx context.Context, cookies []Cookie) error {
	params := make([]*network.CookieParam, 0, len(cookies))
	for _, c := range cookies {
		param := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		}
		if c.Expires > 0 {
			expires := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
			param.Expires = &expires
		}
		params = append(params, param)
	}

	err := p.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return storage.SetCookies(params).Do(ctx)
	}))
	if err != nil {
		return fmt.Errorf("set cookies: %w", err)
	}
	return nil
}

func (p *Page) Close() {
	p.cancel()
}

// jsString renders s as a JS string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

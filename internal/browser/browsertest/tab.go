// Package browsertest provides a scriptable browser.Tab for tests.
package browsertest

import (
	"context"
	"fmt"

	"github.com/amolmagar-dev/jobsuitex/internal/browser"
)

// Tab implements browser.Tab with overridable function fields. Unset
// fields return zero values. Every call is recorded in Calls as
// "op selector" for order assertions.
type Tab struct {
	NavigateFn     func(ctx context.Context, url string) error
	WaitVisibleFn  func(ctx context.Context, sel string) error
	PresentFn      func(ctx context.Context, sel string) (bool, error)
	TextFn         func(ctx context.Context, sel string) (string, error)
	TextsFn        func(ctx context.Context, sel string) ([]string, error)
	HTMLFn         func(ctx context.Context, sel string) (string, error)
	ClickFn        func(ctx context.Context, sel string) error
	ClickByTextFn  func(ctx context.Context, sel, label string) (bool, error)
	SendKeysFn     func(ctx context.Context, sel, text string) error
	BodyContainsFn func(ctx context.Context, phrase string) (bool, error)
	CookiesFn      func(ctx context.Context) ([]browser.Cookie, error)
	SetCookiesFn   func(ctx context.Context, cookies []browser.Cookie) error

	Calls  []string
	Closed bool
}

var _ browser.Tab = (*Tab)(nil)

func (t *Tab) record(op, arg string) {
	t.Calls = append(t.Calls, fmt.Sprintf("%s %s", op, arg))
}

func (t *Tab) Navigate(ctx context.Context, url string) error {
	t.record("navigate", url)
	if t.NavigateFn != nil {
		return t.NavigateFn(ctx, url)
	}
	return nil
}

func (t *Tab) WaitVisible(ctx context.Context, sel string) error {
	t.record("wait", sel)
	if t.WaitVisibleFn != nil {
		return t.WaitVisibleFn(ctx, sel)
	}
	return nil
}

func (t *Tab) Present(ctx context.Context, sel string) (bool, error) {
	t.record("present", sel)
	if t.PresentFn != nil {
		return t.PresentFn(ctx, sel)
	}
	return false, nil
}

func (t *Tab) Text(ctx context.Context, sel string) (string, error) {
	t.record("text", sel)
	if t.TextFn != nil {
		return t.TextFn(ctx, sel)
	}
	return "", nil
}

func (t *Tab) Texts(ctx context.Context, sel string) ([]string, error) {
	t.record("texts", sel)
	if t.TextsFn != nil {
		return t.TextsFn(ctx, sel)
	}
	return nil, nil
}

func (t *Tab) HTML(ctx context.Context, sel string) (string, error) {
	t.record("html", sel)
	if t.HTMLFn != nil {
		return t.HTMLFn(ctx, sel)
	}
	return "", nil
}

func (t *Tab) Click(ctx context.Context, sel string) error {
	t.record("click", sel)
	if t.ClickFn != nil {
		return t.ClickFn(ctx, sel)
	}
	return nil
}

func (t *Tab) ClickByText(ctx context.Context, sel, label string) (bool, error) {
	t.record("clickbytext", label)
	if t.ClickByTextFn != nil {
		return t.ClickByTextFn(ctx, sel, label)
	}
	return false, nil
}

func (t *Tab) SendKeys(ctx context.Context, sel, text string) error {
	t.record("sendkeys", sel)
	if t.SendKeysFn != nil {
		return t.SendKeysFn(ctx, sel, text)
	}
	return nil
}

func (t *Tab) BodyContains(ctx context.Context, phrase string) (bool, error) {
	t.record("bodycontains", phrase)
	if t.BodyContainsFn != nil {
		return t.BodyContainsFn(ctx, phrase)
	}
	return false, nil
}

func (t *Tab) Cookies(ctx context.Context) ([]browser.Cookie, error) {
	t.record("cookies", "")
	if t.CookiesFn != nil {
		return t.CookiesFn(ctx)
	}
	return nil, nil
}

func (t *Tab) SetCookies(ctx context.Context, cookies []browser.Cookie) error {
	t.record("setcookies", "")
	if t.SetCookiesFn != nil {
		return t.SetCookiesFn(ctx, cookies)
	}
	return nil
}

func (t *Tab) Close() {
	t.Closed = true
}

package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/amolmagar-dev/jobsuitex/internal/browser"
	"github.com/amolmagar-dev/jobsuitex/internal/domain"
	"github.com/amolmagar-dev/jobsuitex/internal/repository"
)

// SessionManager performs authenticated login against a portal, reusing
// a cached cookie jar when it still holds and falling back to full
// credential submission when it doesn't.
type SessionManager struct {
	store  repository.SessionStore
	logger *slog.Logger
}

func NewSessionManager(store repository.SessionStore, logger *slog.Logger) *SessionManager {
	return &SessionManager{store: store, logger: logger.With("component", "session")}
}

// Login leaves the tab in an authenticated state or returns a
// domain.ErrLoginFailed. Credential submission is retried exactly once.
func (m *SessionManager) Login(ctx context.Context, tab browser.Tab, profile Profile, ownerID string, creds domain.Credentials) error {
	if m.tryCachedSession(ctx, tab, profile, ownerID) {
		return nil
	}

	if err := m.submitCredentials(ctx, tab, profile, creds); err != nil {
		m.logger.Warn("credential submission failed, retrying once", "portal", profile.Name, "error", err)
		if err := m.submitCredentials(ctx, tab, profile, creds); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrLoginFailed, err)
		}
	}

	m.persistSession(ctx, tab, profile, ownerID)
	m.logger.Info("logged in with credentials", "portal", profile.Name)
	return nil
}

// tryCachedSession applies a stored cookie jar and checks whether the
// portal still treats it as authenticated. A stale jar is discarded.
func (m *SessionManager) tryCachedSession(ctx context.Context, tab browser.Tab, profile Profile, ownerID string) bool {
	token, err := m.store.Get(ctx, ownerID, profile.Name)
	if err != nil {
		m.logger.Warn("session store read failed", "portal", profile.Name, "error", err)
		return false
	}
	if len(token) == 0 {
		return false
	}

	var cookies []browser.Cookie
	if err := json.Unmarshal(token, &cookies); err != nil {
		m.logger.Warn("discarding unreadable session token", "portal", profile.Name, "error", err)
		_ = m.store.Delete(ctx, ownerID, profile.Name)
		return false
	}

	if err := tab.SetCookies(ctx, cookies); err != nil {
		return false
	}
	if err := tab.Navigate(ctx, profile.HomeURL); err != nil {
		return false
	}

	loggedIn, err := tab.Present(ctx, profile.Selectors.LoggedInMarker)
	if err != nil || !loggedIn {
		m.logger.Info("cached session stale, discarding", "portal", profile.Name)
		_ = m.store.Delete(ctx, ownerID, profile.Name)
		return false
	}

	m.logger.Info("reused cached session", "portal", profile.Name)
	return true
}

func (m *SessionManager) submitCredentials(ctx context.Context, tab browser.Tab, profile Profile, creds domain.Credentials) error {
	sel := profile.Selectors

	if err := tab.Navigate(ctx, profile.LoginURL); err != nil {
		return err
	}
	if err := tab.WaitVisible(ctx, sel.UsernameInput); err != nil {
		return err
	}
	if err := tab.SendKeys(ctx, sel.UsernameInput, creds.Username); err != nil {
		return err
	}
	if err := tab.SendKeys(ctx, sel.PasswordInput, creds.Password); err != nil {
		return err
	}
	if err := tab.Click(ctx, sel.LoginSubmit); err != nil {
		return err
	}
	// The logged-in marker appearing is the only success signal; a wrong
	// password times out here.
	return tab.WaitVisible(ctx, sel.LoggedInMarker)
}

func (m *SessionManager) persistSession(ctx context.Context, tab browser.Tab, profile Profile, ownerID string) {
	cookies, err := tab.Cookies(ctx)
	if err != nil {
		m.logger.Warn("could not read cookies after login", "portal", profile.Name, "error", err)
		return
	}
	data, err := json.Marshal(cookies)
	if err != nil {
		return
	}
	if err := m.store.Put(ctx, ownerID, profile.Name, data); err != nil {
		m.logger.Warn("could not persist session token", "portal", profile.Name, "error", err)
	}
}

package portal_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/amolmagar-dev/jobsuitex/internal/browser"
	"github.com/amolmagar-dev/jobsuitex/internal/browser/browsertest"
	"github.com/amolmagar-dev/jobsuitex/internal/domain"
	"github.com/amolmagar-dev/jobsuitex/internal/portal"
)

// ---- fakes ----

type fakeSessionStore struct {
	tokens  map[string][]byte
	deleted []string
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{tokens: make(map[string][]byte)}
}

func (s *fakeSessionStore) key(owner, portal string) string { return owner + ":" + portal }

func (s *fakeSessionStore) Get(_ context.Context, owner, portal string) ([]byte, error) {
	return s.tokens[s.key(owner, portal)], nil
}

func (s *fakeSessionStore) Put(_ context.Context, owner, portal string, token []byte) error {
	s.tokens[s.key(owner, portal)] = token
	return nil
}

func (s *fakeSessionStore) Delete(_ context.Context, owner, portal string) error {
	s.deleted = append(s.deleted, s.key(owner, portal))
	delete(s.tokens, s.key(owner, portal))
	return nil
}

// ---- helpers ----

func testProfile(t *testing.T) portal.Profile {
	t.Helper()
	p, err := portal.Lookup("naukri")
	if err != nil {
		t.Fatalf("lookup naukri: %v", err)
	}
	return p
}

var testCreds = domain.Credentials{Username: "dev@example.com", Password: "hunter2"}

func storedJar(t *testing.T) []byte {
	t.Helper()
	data, err := json.Marshal([]browser.Cookie{{Name: "nauk_sid", Value: "abc", Domain: ".naukri.com"}})
	if err != nil {
		t.Fatal(err)
	}
	return data
}

// ---- tests ----

func TestLogin_ReusesValidCachedSession(t *testing.T) {
	profile := testProfile(t)
	store := newFakeSessionStore()
	store.tokens["owner-1:naukri"] = storedJar(t)

	tab := &browsertest.Tab{
		PresentFn: func(_ context.Context, sel string) (bool, error) {
			return sel == profile.Selectors.LoggedInMarker, nil
		},
	}

	m := portal.NewSessionManager(store, slog.Default())
	if err := m.Login(context.Background(), tab, profile, "owner-1", testCreds); err != nil {
		t.Fatalf("Login: %v", err)
	}

	for _, call := range tab.Calls {
		if strings.HasPrefix(call, "sendkeys") {
			t.Fatalf("credentials were submitted despite a valid cached session: %v", tab.Calls)
		}
	}
}

func TestLogin_StaleSessionFallsBackToCredentials(t *testing.T) {
	profile := testProfile(t)
	store := newFakeSessionStore()
	store.tokens["owner-1:naukri"] = storedJar(t)

	var markerChecks int
	tab := &browsertest.Tab{
		// First Present (cached-session check) fails, so the manager
		// must discard the jar and submit credentials.
		PresentFn: func(_ context.Context, sel string) (bool, error) {
			markerChecks++
			return markerChecks > 1, nil
		},
	}

	m := portal.NewSessionManager(store, slog.Default())
	if err := m.Login(context.Background(), tab, profile, "owner-1", testCreds); err != nil {
		t.Fatalf("Login: %v", err)
	}

	if len(store.deleted) != 1 {
		t.Errorf("stale token was not discarded: deleted=%v", store.deleted)
	}

	var submitted bool
	for _, call := range tab.Calls {
		if call == "sendkeys "+profile.Selectors.UsernameInput {
			submitted = true
		}
	}
	if !submitted {
		t.Errorf("credentials were never submitted: %v", tab.Calls)
	}

	if _, ok := store.tokens["owner-1:naukri"]; !ok {
		t.Error("fresh session token was not persisted after login")
	}
}

func TestLogin_RetriesOnceThenFailsTyped(t *testing.T) {
	profile := testProfile(t)
	store := newFakeSessionStore()

	var attempts int
	tab := &browsertest.Tab{
		WaitVisibleFn: func(_ context.Context, sel string) error {
			if sel == profile.Selectors.LoggedInMarker {
				attempts++
				return errors.New("timeout waiting for selector")
			}
			return nil
		},
	}

	m := portal.NewSessionManager(store, slog.Default())
	err := m.Login(context.Background(), tab, profile, "owner-1", testCreds)
	if !errors.Is(err, domain.ErrLoginFailed) {
		t.Fatalf("Login error = %v, want ErrLoginFailed", err)
	}
	if attempts != 2 {
		t.Errorf("credential submission attempts = %d, want exactly 2", attempts)
	}
}

func TestSearchURL_BuildsSlugAndQuery(t *testing.T) {
	profile := testProfile(t)
	criteria := domain.SearchCriteria{
		Keywords:      []string{"golang", "backend developer"},
		Location:      "Pune",
		MinExperience: 3,
	}

	u := profile.SearchURL(criteria, 2)
	if !strings.Contains(u, "golang-backend-developer-jobs-2") {
		t.Errorf("SearchURL = %q, missing keyword slug with page", u)
	}
	if !strings.Contains(u, "experience=3") {
		t.Errorf("SearchURL = %q, missing experience", u)
	}
}

package apply_test

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/amolmagar-dev/jobsuitex/internal/apply"
	"github.com/amolmagar-dev/jobsuitex/internal/browser/browsertest"
	"github.com/amolmagar-dev/jobsuitex/internal/domain"
	"github.com/amolmagar-dev/jobsuitex/internal/oracle"
	"github.com/amolmagar-dev/jobsuitex/internal/portal"
)

// ---- fakes ----

type fakeOracle struct {
	openEnded         func(question string) string
	constrainedChoice func(question string, options []string) string
}

func (o *fakeOracle) AskOpenEnded(_ context.Context, question string) string {
	if o.openEnded != nil {
		return o.openEnded(question)
	}
	return "I have the required experience."
}

func (o *fakeOracle) AskConstrainedChoice(_ context.Context, question string, options []string) string {
	if o.constrainedChoice != nil {
		return o.constrainedChoice(question, options)
	}
	return options[0]
}

// chatScript drives the fake tab through a sequence of conversational
// questions, one per settle cycle.
type chatScript struct {
	profile  portal.Profile
	step     int
	steps    []chatStep
	succeeds bool
}

type chatStep struct {
	question string
	options  []string
	checkbox bool
}

func newChatScript(t *testing.T, steps []chatStep, succeeds bool) (*chatScript, *browsertest.Tab) {
	t.Helper()
	profile, err := portal.Lookup("naukri")
	if err != nil {
		t.Fatal(err)
	}

	script := &chatScript{profile: profile, steps: steps, succeeds: succeeds}
	sel := profile.Selectors

	tab := &browsertest.Tab{}
	tab.PresentFn = func(_ context.Context, s string) (bool, error) {
		switch s {
		case sel.ChatDrawer:
			return script.step < len(script.steps), nil
		case sel.ChatCheckbox:
			return script.current().checkbox, nil
		case sel.ChatSend:
			return true, nil
		}
		return false, nil
	}
	tab.TextFn = func(_ context.Context, s string) (string, error) {
		if s == sel.ChatQuestion {
			return script.current().question, nil
		}
		return "", nil
	}
	tab.TextsFn = func(_ context.Context, s string) ([]string, error) {
		if s == sel.ChatRadioOption {
			return script.current().options, nil
		}
		return nil, nil
	}
	tab.ClickFn = func(_ context.Context, s string) error {
		if s == sel.ChatSend {
			script.advance()
		}
		return nil
	}
	tab.ClickByTextFn = func(_ context.Context, _, label string) (bool, error) {
		for _, opt := range script.current().options {
			if strings.EqualFold(opt, label) {
				return true, nil
			}
		}
		return false, nil
	}
	tab.BodyContainsFn = func(_ context.Context, phrase string) (bool, error) {
		return script.succeeds && strings.EqualFold(phrase, profile.SuccessPhrase), nil
	}
	return script, tab
}

func (s *chatScript) current() chatStep {
	if s.step < len(s.steps) {
		return s.steps[s.step]
	}
	return chatStep{}
}

func (s *chatScript) advance() { s.step++ }

// ---- helpers ----

var testListing = domain.Listing{
	Title:     "Go Developer",
	Company:   "Acme",
	ApplyLink: "https://jobs.test/apply/1",
}

func newMachine() *apply.Machine {
	return apply.NewMachine(time.Millisecond, 10, slog.Default())
}

// ---- tests ----

func TestApply_ConversationalFlowReachesApplied(t *testing.T) {
	script, tab := newChatScript(t, []chatStep{
		{question: "Are you willing to relocate?", options: []string{"Yes", "No"}},
		{question: "I agree to share my details", checkbox: true},
		{question: "What is your notice period?"},
	}, true)

	var freeTextQuestions []string
	o := &fakeOracle{
		openEnded: func(q string) string {
			freeTextQuestions = append(freeTextQuestions, q)
			return "30 days"
		},
	}

	result := newMachine().Apply(context.Background(), tab, script.profile, o, "camp-1", testListing)

	if result.Status != domain.StatusApplied {
		t.Fatalf("status = %s (%s), want applied", result.Status, result.Reason)
	}
	if len(freeTextQuestions) != 1 || freeTextQuestions[0] != "What is your notice period?" {
		t.Errorf("open-ended questions = %v", freeTextQuestions)
	}

	// The checkbox step must not have consulted the oracle.
	for _, q := range freeTextQuestions {
		if strings.Contains(q, "agree to share") {
			t.Error("checkbox widget consulted the oracle")
		}
	}
}

func TestApply_ChoiceMatchIsCaseInsensitive(t *testing.T) {
	script, tab := newChatScript(t, []chatStep{
		{question: "Can you start immediately?", options: []string{"Yes", "No"}},
	}, true)

	// Oracle answers in lowercase; the engine must still select "Yes".
	o := &fakeOracle{constrainedChoice: func(string, []string) string { return "yes" }}

	result := newMachine().Apply(context.Background(), tab, script.profile, o, "camp-1", testListing)
	if result.Status != domain.StatusApplied {
		t.Fatalf("status = %s (%s), want applied", result.Status, result.Reason)
	}

	var clickedYes bool
	for _, call := range tab.Calls {
		if call == "clickbytext Yes" {
			clickedYes = true
		}
	}
	if !clickedYes {
		t.Errorf("did not click the Yes option: %v", tab.Calls)
	}
}

func TestApply_UnmatchedChoiceFallsBackToFirstOption(t *testing.T) {
	script, tab := newChatScript(t, []chatStep{
		{question: "Preferred location?", options: []string{"Pune", "Mumbai"}},
	}, true)

	o := &fakeOracle{constrainedChoice: func(string, []string) string { return oracle.FallbackAnswer }}

	result := newMachine().Apply(context.Background(), tab, script.profile, o, "camp-1", testListing)
	if result.Status != domain.StatusApplied {
		t.Fatalf("status = %s (%s), want applied", result.Status, result.Reason)
	}

	var clickedFirst bool
	for _, call := range tab.Calls {
		if call == "clickbytext Pune" {
			clickedFirst = true
		}
	}
	if !clickedFirst {
		t.Errorf("fallback did not click the first option: %v", tab.Calls)
	}
}

func TestApply_OracleFailureStillCompletesListing(t *testing.T) {
	script, tab := newChatScript(t, []chatStep{
		{question: "Tell us about yourself"},
	}, true)

	// Simulate a dead oracle through the real Oracle type: its fallback
	// answer keeps the flow moving instead of aborting the listing.
	dead := oracle.New(failingCompleter{}, "profile", slog.Default())

	result := newMachine().Apply(context.Background(), tab, script.profile, dead, "camp-1", testListing)
	if result.Status != domain.StatusApplied {
		t.Fatalf("status = %s (%s), want applied", result.Status, result.Reason)
	}

	var typedFallback bool
	for _, call := range tab.Calls {
		if call == "sendkeys "+script.profile.Selectors.ChatTextInput {
			typedFallback = true
		}
	}
	if !typedFallback {
		t.Errorf("fallback answer was never typed: %v", tab.Calls)
	}
}

type failingCompleter struct{}

func (failingCompleter) Complete(context.Context, string, string) (string, error) {
	return "", errors.New("model endpoint down")
}

func TestApply_NoSuccessPhraseIsFailed(t *testing.T) {
	script, tab := newChatScript(t, nil, false)

	result := newMachine().Apply(context.Background(), tab, script.profile, &fakeOracle{}, "camp-1", testListing)
	if result.Status != domain.StatusFailed {
		t.Fatalf("status = %s, want failed", result.Status)
	}
	if result.Reason == "" {
		t.Error("failed result carries no reason")
	}
}

func TestApply_MissingApplyLinkIsSkipped(t *testing.T) {
	script, tab := newChatScript(t, nil, true)

	listing := testListing
	listing.ApplyLink = ""

	result := newMachine().Apply(context.Background(), tab, script.profile, &fakeOracle{}, "camp-1", listing)
	if result.Status != domain.StatusSkipped {
		t.Fatalf("status = %s, want skipped", result.Status)
	}
}

func TestApply_AttemptBoundTerminatesMalformedForm(t *testing.T) {
	profile, err := portal.Lookup("naukri")
	if err != nil {
		t.Fatal(err)
	}
	sel := profile.Selectors

	// Drawer never disappears, question never changes: a malformed form.
	tab := &browsertest.Tab{
		PresentFn: func(_ context.Context, s string) (bool, error) {
			return s == sel.ChatDrawer, nil
		},
		TextFn: func(_ context.Context, _ string) (string, error) {
			return "stuck question", nil
		},
	}

	m := apply.NewMachine(time.Millisecond, 3, slog.Default())
	result := m.Apply(context.Background(), tab, profile, &fakeOracle{}, "camp-1", testListing)

	if result.Status != domain.StatusFailed {
		t.Fatalf("status = %s, want failed", result.Status)
	}

	var questions int
	for _, call := range tab.Calls {
		if call == "text "+sel.ChatQuestion {
			questions++
		}
	}
	if questions != 3 {
		t.Errorf("question reads = %d, want exactly the attempt bound of 3", questions)
	}
}

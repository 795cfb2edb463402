package apply

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/amolmagar-dev/jobsuitex/internal/browser"
	"github.com/amolmagar-dev/jobsuitex/internal/domain"
	"github.com/amolmagar-dev/jobsuitex/internal/metrics"
	"github.com/amolmagar-dev/jobsuitex/internal/portal"
)

// AnswerOracle is the slice of the decision oracle the apply flow needs.
type AnswerOracle interface {
	AskOpenEnded(ctx context.Context, question string) string
	AskConstrainedChoice(ctx context.Context, question string, options []string) string
}

// Machine drives one listing through the apply flow:
//
//	Opened -> ApplyTriggered -> {Conversational | StaticForm | NoForm}
//	       -> (Answering)* -> Terminal(Applied | Failed)
//
// It never returns an error: every failure mode collapses to a Failed
// result so one bad listing cannot abort the campaign.
type Machine struct {
	settleDelay time.Duration
	maxAttempts int
	logger      *slog.Logger
	sleep       func(ctx context.Context, d time.Duration)
}

func NewMachine(settleDelay time.Duration, maxAttempts int, logger *slog.Logger) *Machine {
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	return &Machine{
		settleDelay: settleDelay,
		maxAttempts: maxAttempts,
		logger:      logger.With("component", "apply"),
		sleep:       sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Apply runs the full flow for one listing in its own tab. The returned
// result is Applied only when the portal's success phrase was observed.
func (m *Machine) Apply(ctx context.Context, tab browser.Tab, profile portal.Profile, oracle AnswerOracle, campaignID string, listing domain.Listing) (result *domain.ApplicationResult) {
	logger := m.logger.With("company", listing.Company, "title", listing.Title)

	defer func() {
		// A panic inside the flow aborts only this listing.
		if r := recover(); r != nil {
			logger.Error("apply flow panicked", "panic", r)
			result = m.terminal(campaignID, listing, domain.StatusFailed, fmt.Sprintf("apply flow panicked: %v", r))
		}
		metrics.ApplicationsTotal.WithLabelValues(string(result.Status)).Inc()
	}()

	if listing.ApplyLink == "" {
		return m.terminal(campaignID, listing, domain.StatusSkipped, "listing has no apply link")
	}

	sel := profile.Selectors

	if err := tab.Navigate(ctx, listing.ApplyLink); err != nil {
		return m.terminal(campaignID, listing, domain.StatusFailed, err.Error())
	}
	if err := tab.WaitVisible(ctx, sel.ApplyButton); err != nil {
		return m.terminal(campaignID, listing, domain.StatusFailed,
			fmt.Sprintf("%v: apply control never appeared: %v", domain.ErrApplyFlowTimeout, err))
	}
	if err := tab.Click(ctx, sel.ApplyButton); err != nil {
		return m.terminal(campaignID, listing, domain.StatusFailed, err.Error())
	}

	m.sleep(ctx, m.settleDelay)

	conversational, err := tab.Present(ctx, sel.ChatDrawer)
	if err != nil {
		return m.terminal(campaignID, listing, domain.StatusFailed, err.Error())
	}

	if conversational {
		logger.Info("conversational form detected")
		if err := m.converse(ctx, tab, profile, oracle, logger); err != nil {
			return m.terminal(campaignID, listing, domain.StatusFailed, err.Error())
		}
	} else {
		// Static form and no form collapse to the same success check
		// after a settle delay.
		m.sleep(ctx, m.settleDelay)
	}

	applied, err := tab.BodyContains(ctx, profile.SuccessPhrase)
	if err != nil {
		return m.terminal(campaignID, listing, domain.StatusFailed, err.Error())
	}
	if !applied {
		logger.Warn("no success confirmation found")
		return m.terminal(campaignID, listing, domain.StatusFailed, "no success confirmation found")
	}

	logger.Info("application submitted")
	return m.terminal(campaignID, listing, domain.StatusApplied, "")
}

// converse answers posed questions until the conversational container
// disappears or the attempt bound is reached. The bound keeps malformed
// forms from looping forever.
func (m *Machine) converse(ctx context.Context, tab browser.Tab, profile portal.Profile, oracle AnswerOracle, logger *slog.Logger) error {
	sel := profile.Selectors

	for attempt := 0; attempt < m.maxAttempts; attempt++ {
		present, err := tab.Present(ctx, sel.ChatDrawer)
		if err != nil {
			return err
		}
		if !present {
			return nil
		}

		question, err := tab.Text(ctx, sel.ChatQuestion)
		if err != nil {
			return err
		}

		options, _ := tab.Texts(ctx, sel.ChatRadioOption)
		checkbox, _ := tab.Present(ctx, sel.ChatCheckbox)

		switch {
		case len(options) > 0:
			if err := m.answerChoice(ctx, tab, profile, oracle, question, options, logger); err != nil {
				return err
			}
		case checkbox:
			// Boolean consent widgets are ticked unconditionally; no
			// oracle call needed.
			if err := tab.Click(ctx, sel.ChatCheckbox); err != nil {
				return err
			}
			m.clickSendIfPresent(ctx, tab, profile)
		default:
			answer := oracle.AskOpenEnded(ctx, question)
			logger.Info("answering free-text question", "question", question, "answer", answer)
			if err := tab.SendKeys(ctx, sel.ChatTextInput, answer); err != nil {
				return err
			}
			if err := tab.Click(ctx, sel.ChatSend); err != nil {
				return err
			}
		}

		m.sleep(ctx, m.settleDelay)
	}

	logger.Warn("conversational form attempt bound reached", "max_attempts", m.maxAttempts)
	return nil
}

func (m *Machine) answerChoice(ctx context.Context, tab browser.Tab, profile portal.Profile, oracle AnswerOracle, question string, options []string, logger *slog.Logger) error {
	sel := profile.Selectors

	choice := oracle.AskConstrainedChoice(ctx, question, options)
	logger.Info("answering choice question", "question", question, "choice", choice)

	var clicked bool
	for _, opt := range options {
		if strings.EqualFold(opt, choice) {
			ok, err := tab.ClickByText(ctx, sel.ChatRadioOption, opt)
			if err != nil {
				return err
			}
			clicked = ok
			break
		}
	}
	if !clicked {
		// Documented policy: when no oracle answer matches an option
		// label, fall back to the first option rather than stalling.
		logger.Warn("oracle choice matched no option, falling back to first", "choice", choice, "options", options)
		if _, err := tab.ClickByText(ctx, sel.ChatRadioOption, options[0]); err != nil {
			return err
		}
	}

	m.clickSendIfPresent(ctx, tab, profile)
	return nil
}

// clickSendIfPresent clicks the confirm/save control when the widget
// has one; some widgets submit on selection.
func (m *Machine) clickSendIfPresent(ctx context.Context, tab browser.Tab, profile portal.Profile) {
	if present, _ := tab.Present(ctx, profile.Selectors.ChatSend); present {
		_ = tab.Click(ctx, profile.Selectors.ChatSend)
	}
}

func (m *Machine) terminal(campaignID string, listing domain.Listing, status domain.ApplicationStatus, reason string) *domain.ApplicationResult {
	return &domain.ApplicationResult{
		ID:         uuid.NewString(),
		CampaignID: campaignID,
		Listing:    listing,
		Status:     status,
		Reason:     reason,
		AppliedAt:  time.Now(),
	}
}

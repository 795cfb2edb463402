package oracle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/amolmagar-dev/jobsuitex/internal/metrics"
)

// FallbackAnswer is returned whenever the underlying model call fails,
// so the apply flow can continue instead of aborting a listing.
const FallbackAnswer = "Skip"

// Completer abstracts the language-model transport.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Oracle answers screening questions on the user's behalf, conditioned
// on their profile text.
type Oracle struct {
	completer   Completer
	instruction string
	logger      *slog.Logger
}

func New(completer Completer, profileText string, logger *slog.Logger) *Oracle {
	return &Oracle{
		completer:   completer,
		instruction: buildInstruction(profileText),
		logger:      logger.With("component", "oracle"),
	}
}

func buildInstruction(profileText string) string {
	return "You are filling out job application screening questions on behalf of the candidate described below. " +
		"Answer every question in the first person, as the candidate, in a single short line. " +
		"Never refuse, never explain, never add preamble.\n\nCandidate profile:\n" + profileText
}

// AskOpenEnded returns a single-line first-person answer.
func (o *Oracle) AskOpenEnded(ctx context.Context, question string) string {
	answer, err := o.completer.Complete(ctx, o.instruction, question)
	if err != nil {
		metrics.OracleCallsTotal.WithLabelValues("open", "error").Inc()
		o.logger.Warn("oracle unavailable, using fallback answer", "error", err)
		return FallbackAnswer
	}
	metrics.OracleCallsTotal.WithLabelValues("open", "ok").Inc()
	return firstLine(answer)
}

// AskConstrainedChoice picks one of options. When the model's reply
// matches an option case-insensitively the literal option string is
// returned; otherwise the reply's first clause is returned as-is and
// the caller applies its own fallback.
func (o *Oracle) AskConstrainedChoice(ctx context.Context, question string, options []string) string {
	prompt := fmt.Sprintf(
		"Question: %s\nOptions: %s\nReply with exactly one of the options, nothing else.",
		question, strings.Join(options, " | "))

	answer, err := o.completer.Complete(ctx, o.instruction, prompt)
	if err != nil {
		metrics.OracleCallsTotal.WithLabelValues("choice", "error").Inc()
		o.logger.Warn("oracle unavailable, using fallback answer", "error", err)
		return FallbackAnswer
	}
	metrics.OracleCallsTotal.WithLabelValues("choice", "ok").Inc()

	clause := firstClause(answer)
	for _, opt := range options {
		if strings.EqualFold(clause, opt) {
			return opt
		}
	}
	return clause
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(line)
}

// firstClause trims the reply down to its first sentence or clause.
func firstClause(s string) string {
	line := firstLine(s)
	for _, sep := range []string{".", ",", ";"} {
		if cut, _, found := strings.Cut(line, sep); found {
			line = cut
		}
	}
	return strings.TrimSpace(line)
}

// Provider owns the process-wide oracle instance. Reconfiguring with a
// new profile replaces it wholesale: the latest description always
// wins, instructions are never blended.
type Provider struct {
	completer Completer
	logger    *slog.Logger

	mu      sync.Mutex
	profile string
	current *Oracle
}

func NewProvider(completer Completer, logger *slog.Logger) *Provider {
	return &Provider{completer: completer, logger: logger}
}

// Configure returns the oracle for profileText, rebuilding the
// singleton only when the profile changed.
func (p *Provider) Configure(profileText string) *Oracle {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil || p.profile != profileText {
		p.current = New(p.completer, profileText, p.logger)
		p.profile = profileText
	}
	return p.current
}

package notify

import (
	"fmt"
	"strings"

	"github.com/amolmagar-dev/jobsuitex/internal/domain"
)

// ComposeApplication builds the message for one successful application.
func ComposeApplication(result *domain.ApplicationResult) (subject, body string) {
	l := result.Listing
	subject = fmt.Sprintf("Applied: %s at %s", l.Title, l.Company)

	var b strings.Builder
	fmt.Fprintf(&b, "Your campaign applied to a new listing.\n\n")
	fmt.Fprintf(&b, "Role:     %s\n", l.Title)
	fmt.Fprintf(&b, "Company:  %s\n", l.Company)
	if l.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", l.Location)
	}
	if l.Salary != "" {
		fmt.Fprintf(&b, "Salary:   %s\n", l.Salary)
	}
	if l.ApplyLink != "" {
		fmt.Fprintf(&b, "Link:     %s\n", l.ApplyLink)
	}
	fmt.Fprintf(&b, "\nApplied at %s.\n", result.AppliedAt.Format("2 Jan 2006 15:04"))
	return subject, b.String()
}

// ComposeRunFailure builds the message for a campaign run that aborted.
func ComposeRunFailure(campaign *domain.Campaign, reason string) (subject, body string) {
	subject = fmt.Sprintf("Campaign run failed: %s", campaign.Portal)
	body = fmt.Sprintf(
		"A scheduled run of your %s campaign could not complete.\n\nReason: %s\n\nThe campaign stays active and will run again on its next schedule.\n",
		campaign.Portal, reason)
	return subject, body
}

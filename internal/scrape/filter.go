package scrape

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/amolmagar-dev/jobsuitex/internal/domain"
)

// Filter returns the listings that satisfy the campaign's search and
// filter criteria. Pure and idempotent: filtering an already-filtered
// slice is a no-op.
func Filter(listings []domain.Listing, search domain.SearchCriteria, filter domain.FilterCriteria) []domain.Listing {
	out := make([]domain.Listing, 0, len(listings))
	for _, l := range listings {
		if Matches(l, search, filter) {
			out = append(out, l)
		}
	}
	return out
}

// Matches decides whether one listing passes all predicates.
func Matches(l domain.Listing, search domain.SearchCriteria, filter domain.FilterCriteria) bool {
	if search.Location != "" &&
		!strings.Contains(strings.ToLower(l.Location), strings.ToLower(search.Location)) {
		return false
	}

	// A malformed experience string excludes the listing rather than
	// crashing the run.
	lo, hi, ok := parseExperienceRange(l.Experience)
	if !ok {
		return false
	}
	if lo > search.MaxExperience || hi < search.MinExperience {
		return false
	}

	for _, required := range filter.RequiredSkills {
		if !hasSkill(l.Skills, required) {
			return false
		}
	}

	if filter.MinRating > 0 {
		rating, err := strconv.ParseFloat(strings.TrimSpace(l.Rating), 64)
		if err != nil || rating < filter.MinRating {
			return false
		}
	}

	for _, excluded := range filter.ExcludeCompanies {
		if strings.EqualFold(strings.TrimSpace(excluded), strings.TrimSpace(l.Company)) {
			return false
		}
	}

	return true
}

func hasSkill(skills []string, required string) bool {
	required = strings.ToLower(required)
	for _, s := range skills {
		if strings.Contains(strings.ToLower(s), required) {
			return true
		}
	}
	return false
}

var experienceRe = regexp.MustCompile(`(\d+)\s*(?:-\s*(\d+))?\s*\+?\s*[Yy]`)

// parseExperienceRange understands the portal's experience strings:
// "2-5 Yrs", "5+ Yrs", "0-1 Yrs", "Fresher". Anything else reports
// ok=false.
func parseExperienceRange(s string) (lo, hi int, ok bool) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "fresher") {
		return 0, 0, true
	}

	m := experienceRe.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}

	lo, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false
	}
	if m[2] == "" {
		if strings.Contains(s, "+") {
			return lo, math.MaxInt32, true
		}
		return lo, lo, true
	}
	hi, err = strconv.Atoi(m[2])
	if err != nil || hi < lo {
		return 0, 0, false
	}
	return lo, hi, true
}

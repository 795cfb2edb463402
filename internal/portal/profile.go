package portal

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/amolmagar-dev/jobsuitex/internal/domain"
)

// Selectors are the CSS hooks a portal's pages expose. They are the
// brittle part of the system: a portal redesign lands here first.
type Selectors struct {
	// Login
	UsernameInput  string
	PasswordInput  string
	LoginSubmit    string
	LoggedInMarker string

	// Listings
	ListingContainer string
	ListingCard      string
	Title            string
	Company          string
	Location         string
	Experience       string
	Salary           string
	Rating           string
	Skill            string
	PostedOn         string
	NextPage         string
	NextPageDisabled string

	// Apply flow
	ApplyButton     string
	ChatDrawer      string
	ChatQuestion    string
	ChatRadioOption string
	ChatCheckbox    string
	ChatTextInput   string
	ChatSend        string
}

// Profile describes one supported portal.
type Profile struct {
	Name          string
	LoginURL      string
	HomeURL       string
	SearchBase    string
	SuccessPhrase string
	Selectors     Selectors
}

// SearchURL builds the listing-search URL for one result page.
func (p Profile) SearchURL(c domain.SearchCriteria, page int) string {
	slug := strings.ToLower(strings.Join(c.Keywords, "-"))
	slug = strings.ReplaceAll(slug, " ", "-")

	u := fmt.Sprintf("%s/%s-jobs", p.SearchBase, slug)
	if page > 1 {
		u = fmt.Sprintf("%s-%d", u, page)
	}

	q := url.Values{}
	if c.Location != "" {
		q.Set("l", c.Location)
	}
	if c.MinExperience > 0 {
		q.Set("experience", fmt.Sprintf("%d", c.MinExperience))
	}
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

var profiles = map[string]Profile{
	"naukri": {
		Name:          "naukri",
		LoginURL:      "https://www.naukri.com/nlogin/login",
		HomeURL:       "https://www.naukri.com/mnjuser/homepage",
		SearchBase:    "https://www.naukri.com",
		SuccessPhrase: "successfully applied",
		Selectors: Selectors{
			UsernameInput:  "#usernameField",
			PasswordInput:  "#passwordField",
			LoginSubmit:    "button[type='submit']",
			LoggedInMarker: ".nI-gNb-drawer__icon-img",

			ListingContainer: ".styles_job-listing-container__OeZhW",
			ListingCard:      ".srp-jobtuple-wrapper",
			Title:            "a.title",
			Company:          ".comp-name",
			Location:         ".locWdth",
			Experience:       ".expwdth",
			Salary:           ".sal-wrap",
			Rating:           ".main-2",
			Skill:            ".tag-li",
			PostedOn:         ".job-post-day",
			NextPage:         "a.styles_btn-secondary__2AsIP:last-of-type",
			NextPageDisabled: "a.styles_btn-secondary__2AsIP.styles_disabled__2bQTQ:last-of-type",

			ApplyButton:     "#apply-button",
			ChatDrawer:      ".chatbot_DrawerContentWrapper",
			ChatQuestion:    ".botItem .botMsg span",
			ChatRadioOption: ".ssrc__radio-btn-container label",
			ChatCheckbox:    ".ssc__checkbox-container input[type='checkbox']",
			ChatTextInput:   ".textArea",
			ChatSend:        ".sendMsg",
		},
	},
}

// Lookup returns the profile for a portal identifier.
func Lookup(name string) (Profile, error) {
	p, ok := profiles[strings.ToLower(name)]
	if !ok {
		return Profile{}, fmt.Errorf("unsupported portal %q", name)
	}
	return p, nil
}

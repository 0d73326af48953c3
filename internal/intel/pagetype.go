package intel

import (
	"strings"

	"github.com/browsyhq/browsy-core/api/schemas"
)

// longParagraphChars is the character threshold above which a paragraph
// counts as article prose.
const longParagraphChars = 100

var (
	errorMarkers   = []string{"404", "500", "403", "not found", "error"}
	captchaTitle   = []string{"captcha", "verify you're human", "verify you are human", "robot", "security check", "just a moment", "attention required"}
	captchaHeading = []string{"captcha", "security check", "complete the challenge", "human verification", "are you human"}
	twoFactorWords = []string{"verification", "enter code", "security code", "2fa", "two-factor", "otp", "one-time", "passcode"}
	oauthWords     = []string{"authorize", "allow access", "grant permission", "oauth", "consent"}
	inboxWords     = []string{"inbox", "mail", "messages"}
	emailMarkers   = []string{"from:", "to:", "subject:", "date:"}
	dashboardWords = []string{"dashboard", "welcome back", "overview"}
	searchTitle    = []string{"search results", "results for", "search"}
	searchParams   = []string{"?q=", "?query=", "?s=", "?search=", "/search"}
)

// Classify assigns the page type. Rules are evaluated in a fixed priority
// order and the first match wins.
func Classify(d *schemas.SpatialDOM, captcha *schemas.Captcha) schemas.PageType {
	p := newPageFacts(d)

	switch {
	case p.isError():
		return schemas.PageError
	case p.isCaptcha(captcha):
		return schemas.PageCaptcha
	case p.visiblePasswordCount > 0:
		return schemas.PageLogin
	case p.isTwoFactor():
		return schemas.PageTwoFactorAuth
	case p.titleOrHeadingContains(oauthWords):
		return schemas.PageOAuthConsent
	case containsAny(p.titleLower, inboxWords) && p.visibleLinks >= 10:
		return schemas.PageInbox
	case p.emailMarkerCount() >= 3:
		return schemas.PageEmailBody
	case p.isDashboard():
		return schemas.PageDashboard
	case p.isArticle():
		return schemas.PageArticle
	case p.isSearchResults(d.URL):
		return schemas.PageSearchResults
	case p.visibleLinks >= 10:
		return schemas.PageList
	case p.isSearch():
		return schemas.PageSearch
	case p.dataInputs >= 2:
		return schemas.PageForm
	default:
		return schemas.PageOther
	}
}

// pageFacts caches the counted features the classifier and detectors share.
type pageFacts struct {
	d                    *schemas.SpatialDOM
	titleLower           string
	headingsLower        []string
	visibleLinks         int
	visibleElements      int
	visiblePasswordCount int
	passwordCount        int
	dataInputs           int
	longParagraphs       int
	hasVisibleSearch     bool
	hasHiddenSearch      bool
	hasVisibleTextInput  bool
	hasNav, hasMain      bool
	allText              string
}

func newPageFacts(d *schemas.SpatialDOM) *pageFacts {
	p := &pageFacts{d: d, titleLower: strings.ToLower(d.Title)}
	var text strings.Builder
	for _, el := range d.Els {
		if el.Text != "" {
			text.WriteString(strings.ToLower(el.Text))
			text.WriteByte('\n')
		}
		if !el.Hidden {
			p.visibleElements++
		}
		switch el.Role {
		case "navigation":
			p.hasNav = true
		case "main":
			p.hasMain = true
		}
		if el.Role == "heading" {
			p.headingsLower = append(p.headingsLower, strings.ToLower(el.Text))
		}
		if el.Tag == "a" && el.Href != "" && !el.Hidden {
			p.visibleLinks++
		}
		if (el.Tag == "p" || el.Tag == "blockquote") && len(el.Text) > longParagraphChars {
			p.longParagraphs++
		}
		if el.Tag == "input" || el.Tag == "textarea" {
			p.countInput(el)
		}
	}
	p.allText = text.String()
	return p
}

func (p *pageFacts) countInput(el schemas.Element) {
	t := el.InputType
	if el.Tag == "textarea" {
		t = "textarea"
	}
	if t == "password" {
		p.passwordCount++
		if !el.Hidden {
			p.visiblePasswordCount++
		}
	}
	if isSearchInput(el) {
		if el.Hidden {
			p.hasHiddenSearch = true
		} else {
			p.hasVisibleSearch = true
		}
	}
	if !el.Hidden && (t == "text" || t == "number" || t == "tel") {
		p.hasVisibleTextInput = true
	}
	if !el.Hidden {
		switch t {
		case "checkbox", "radio", "hidden", "submit", "button", "image":
		default:
			p.dataInputs++
		}
	}
}

func isSearchInput(el schemas.Element) bool {
	if el.InputType == "search" || el.Role == "searchbox" {
		return true
	}
	if el.Name == "q" {
		return true
	}
	lower := strings.ToLower(el.Ph + " " + el.Name)
	return strings.Contains(lower, "search")
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

func (p *pageFacts) titleOrHeadingContains(words []string) bool {
	if containsAny(p.titleLower, words) {
		return true
	}
	for _, h := range p.headingsLower {
		if containsAny(h, words) {
			return true
		}
	}
	return false
}

func (p *pageFacts) headingContains(words []string) bool {
	for _, h := range p.headingsLower {
		if containsAny(h, words) {
			return true
		}
	}
	return false
}

func (p *pageFacts) isError() bool {
	for _, el := range p.d.Els {
		if el.AlertType == "error" {
			return true
		}
	}
	return p.titleOrHeadingContains(errorMarkers)
}

func (p *pageFacts) isCaptcha(captcha *schemas.Captcha) bool {
	return captcha != nil ||
		containsAny(p.titleLower, captchaTitle) ||
		p.headingContains(captchaHeading)
}

func (p *pageFacts) isTwoFactor() bool {
	return p.titleOrHeadingContains(twoFactorWords) &&
		p.hasVisibleTextInput &&
		p.passwordCount == 0
}

func (p *pageFacts) emailMarkerCount() int {
	n := 0
	for _, m := range emailMarkers {
		if strings.Contains(p.allText, m) {
			n++
		}
	}
	return n
}

func (p *pageFacts) isDashboard() bool {
	return p.titleOrHeadingContains(dashboardWords) && p.hasNav && p.hasMain
}

func (p *pageFacts) isArticle() bool {
	headings := len(p.headingsLower)
	if headings < 3 {
		return false
	}
	required := 3
	if p.visibleLinks >= 20 {
		required = 10
	}
	if p.longParagraphs < required {
		return false
	}
	if headings >= 15 && float64(p.longParagraphs)/float64(headings) < 0.8 {
		return false
	}
	return true
}

func (p *pageFacts) isSearchResults(pageURL string) bool {
	if !p.hasVisibleSearch && !p.hasHiddenSearch {
		return false
	}
	if p.visibleLinks < 8 {
		return false
	}
	if p.titleOrHeadingContains(searchTitle) {
		return true
	}
	return containsAny(strings.ToLower(pageURL), searchParams)
}

func (p *pageFacts) isSearch() bool {
	if p.hasVisibleSearch {
		return true
	}
	return p.visibleElements < 5 && p.hasHiddenSearch
}

// internal/intel/pagetype_test.go
package intel_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/browsyhq/browsy-core/api/schemas"
	"github.com/browsyhq/browsy-core/internal/intel"
)

// page builds a snapshot with sequential IDs from y-stacked elements.
func page(title string, els ...schemas.Element) *schemas.SpatialDOM {
	d := &schemas.SpatialDOM{Title: title, VP: [2]float64{1280, 720}}
	for i := range els {
		els[i].ID = uint32(i + 1)
		if els[i].B == ([4]int{}) && !els[i].Hidden {
			els[i].B = [4]int{8, 8 + i*30, 200, 21}
		}
	}
	d.Els = els
	d.RebuildIndex()
	return d
}

func manyLinks(n int) []schemas.Element {
	out := make([]schemas.Element, n)
	for i := range out {
		out[i] = schemas.Element{
			Tag: "a", Text: fmt.Sprintf("Item %d", i), Href: fmt.Sprintf("/item/%d", i),
			B: [4]int{8, 8 + i*40, 200, 14},
		}
	}
	return out
}

func TestClassifyError(t *testing.T) {
	assert.Equal(t, schemas.PageError, intel.Classify(page("404 Not Found"), nil))
	assert.Equal(t, schemas.PageError, intel.Classify(page("Oops",
		schemas.Element{Tag: "h1", Role: "heading", Text: "500 Internal Server Error"},
	), nil))
	assert.Equal(t, schemas.PageError, intel.Classify(page("Checkout",
		schemas.Element{Tag: "p", Text: "Card declined", AlertType: "error"},
	), nil))
}

func TestClassifyCaptcha(t *testing.T) {
	captcha := &schemas.Captcha{Type: schemas.CaptchaReCaptcha}
	assert.Equal(t, schemas.PageCaptcha, intel.Classify(page("Home"), captcha))
	assert.Equal(t, schemas.PageCaptcha, intel.Classify(page("Just a moment..."), nil))
	assert.Equal(t, schemas.PageCaptcha, intel.Classify(page("Example",
		schemas.Element{Tag: "h1", Role: "heading", Text: "Complete the challenge below"},
	), nil))
}

func TestClassifyLogin(t *testing.T) {
	d := page("Welcome",
		schemas.Element{Tag: "input", InputType: "email", Name: "email"},
		schemas.Element{Tag: "input", InputType: "password", Name: "pw"},
		schemas.Element{Tag: "button", Text: "Sign in"},
	)
	assert.Equal(t, schemas.PageLogin, intel.Classify(d, nil))
}

func TestClassifyLoginBeatsTwoFactorWording(t *testing.T) {
	// A visible password field wins even under 2FA wording.
	d := page("Two-factor verification",
		schemas.Element{Tag: "input", InputType: "password", Name: "pw"},
	)
	assert.Equal(t, schemas.PageLogin, intel.Classify(d, nil))
}

func TestClassifyHiddenPasswordIsNotLogin(t *testing.T) {
	d := page("Shop",
		schemas.Element{Tag: "input", InputType: "password", Name: "pw", Hidden: true},
	)
	assert.NotEqual(t, schemas.PageLogin, intel.Classify(d, nil))
}

func TestClassifyTwoFactor(t *testing.T) {
	d := page("Enter verification code",
		schemas.Element{Tag: "p", Text: "We sent a code to your phone"},
		schemas.Element{Tag: "input", InputType: "text", Name: "code"},
		schemas.Element{Tag: "button", Text: "Verify"},
	)
	assert.Equal(t, schemas.PageTwoFactorAuth, intel.Classify(d, nil))
}

func TestClassifyOAuthConsent(t *testing.T) {
	d := page("Authorize application",
		schemas.Element{Tag: "button", Text: "Allow"},
		schemas.Element{Tag: "button", Text: "Deny"},
	)
	assert.Equal(t, schemas.PageOAuthConsent, intel.Classify(d, nil))
}

func TestClassifyInbox(t *testing.T) {
	els := manyLinks(12)
	d := page("Inbox (3) - Mail", els...)
	assert.Equal(t, schemas.PageInbox, intel.Classify(d, nil))
}

func TestClassifyEmailBody(t *testing.T) {
	d := page("Re: Invoice",
		schemas.Element{Tag: "p", Text: "From: alice@example.com"},
		schemas.Element{Tag: "p", Text: "To: bob@example.com"},
		schemas.Element{Tag: "p", Text: "Subject: Invoice for June"},
	)
	assert.Equal(t, schemas.PageEmailBody, intel.Classify(d, nil))
}

func TestClassifyDashboard(t *testing.T) {
	d := page("Dashboard",
		schemas.Element{Tag: "nav", Role: "navigation"},
		schemas.Element{Tag: "main", Role: "main"},
		schemas.Element{Tag: "h1", Role: "heading", Text: "Welcome back, Alice"},
	)
	assert.Equal(t, schemas.PageDashboard, intel.Classify(d, nil))
}

func TestClassifyDashboardNeedsLandmarks(t *testing.T) {
	d := page("Dashboard",
		schemas.Element{Tag: "h1", Role: "heading", Text: "Overview"},
	)
	assert.NotEqual(t, schemas.PageDashboard, intel.Classify(d, nil))
}

func longText(n int) string {
	s := make([]byte, n)
	for i := range s {
		s[i] = 'a'
	}
	return string(s)
}

func TestClassifyArticle(t *testing.T) {
	els := []schemas.Element{
		{Tag: "h1", Role: "heading", Text: "The Piece"},
		{Tag: "h2", Role: "heading", Text: "Part one"},
		{Tag: "h2", Role: "heading", Text: "Part two"},
	}
	for i := 0; i < 4; i++ {
		els = append(els, schemas.Element{Tag: "p", Text: longText(150)})
	}
	assert.Equal(t, schemas.PageArticle, intel.Classify(page("The Piece", els...), nil))
}

func TestClassifyArticleNeedsProse(t *testing.T) {
	els := []schemas.Element{
		{Tag: "h1", Role: "heading", Text: "A"},
		{Tag: "h2", Role: "heading", Text: "B"},
		{Tag: "h2", Role: "heading", Text: "C"},
		{Tag: "p", Text: "short"},
	}
	assert.NotEqual(t, schemas.PageArticle, intel.Classify(page("A", els...), nil))
}

func TestClassifySearchResults(t *testing.T) {
	els := append([]schemas.Element{
		{Tag: "input", InputType: "search", Name: "q"},
	}, manyLinks(9)...)
	d := page("Results for golang", els...)
	d.URL = "https://example.com/search?q=golang"
	assert.Equal(t, schemas.PageSearchResults, intel.Classify(d, nil))
}

func TestClassifyList(t *testing.T) {
	d := page("Products", manyLinks(12)...)
	assert.Equal(t, schemas.PageList, intel.Classify(d, nil))
}

func TestClassifySearch(t *testing.T) {
	d := page("Example",
		schemas.Element{Tag: "input", InputType: "search", Name: "q"},
		schemas.Element{Tag: "button", Text: "Search"},
	)
	assert.Equal(t, schemas.PageSearch, intel.Classify(d, nil))
}

func TestClassifySparseHiddenSearch(t *testing.T) {
	// A near-empty page with only a hidden search control still reads as a
	// search page.
	d := page("Example",
		schemas.Element{Tag: "input", InputType: "search", Name: "q", Hidden: true},
		schemas.Element{Tag: "p", Text: "Loading"},
	)
	assert.Equal(t, schemas.PageSearch, intel.Classify(d, nil))
}

func TestClassifyForm(t *testing.T) {
	d := page("Shipping details",
		schemas.Element{Tag: "input", InputType: "text", Name: "street"},
		schemas.Element{Tag: "input", InputType: "text", Name: "city"},
		schemas.Element{Tag: "button", Text: "Save"},
	)
	assert.Equal(t, schemas.PageForm, intel.Classify(d, nil))
}

func TestClassifyOther(t *testing.T) {
	d := page("Example",
		schemas.Element{Tag: "h1", Role: "heading", Text: "Hello"},
		schemas.Element{Tag: "p", Text: "Short page"},
	)
	assert.Equal(t, schemas.PageOther, intel.Classify(d, nil))
}

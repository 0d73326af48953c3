// Package intel derives page-level intelligence from a completed Spatial
// DOM: the page-type classification, CAPTCHA detection over the raw parse
// tree, and the suggested-action detectors.
package intel

import (
	"strings"

	"github.com/browsyhq/browsy-core/api/schemas"
	"github.com/browsyhq/browsy-core/internal/browser/dom"
)

// DetectCaptcha scans the raw node tree for the markers of the known
// CAPTCHA services. Returns nil when none are found.
func DetectCaptcha(root *dom.Node) *schemas.Captcha {
	if root == nil {
		return nil
	}
	var found *schemas.Captcha
	sitekey := ""

	root.Walk(func(n *dom.Node) bool {
		if n.Type != dom.ElementNode {
			return true
		}
		if key := n.Attr("data-sitekey"); key != "" && sitekey == "" {
			sitekey = key
		}
		if found != nil {
			// Keep walking for a sitekey, but the type is settled.
			return true
		}

		switch n.Tag {
		case "script", "iframe":
			src := strings.ToLower(n.Attr("src"))
			switch {
			case strings.Contains(src, "recaptcha"):
				found = &schemas.Captcha{Type: schemas.CaptchaReCaptcha}
			case strings.Contains(src, "hcaptcha.com"):
				found = &schemas.Captcha{Type: schemas.CaptchaHCaptcha}
			case strings.Contains(src, "challenges.cloudflare.com/turnstile"):
				found = &schemas.Captcha{Type: schemas.CaptchaTurnstile}
			}
		case "div":
			classes := strings.Fields(strings.ToLower(n.Attr("class")))
			for _, c := range classes {
				switch c {
				case "g-recaptcha":
					found = &schemas.Captcha{Type: schemas.CaptchaReCaptcha}
				case "h-captcha":
					found = &schemas.Captcha{Type: schemas.CaptchaHCaptcha}
				case "cf-turnstile":
					found = &schemas.Captcha{Type: schemas.CaptchaTurnstile}
				}
			}
			switch strings.ToLower(n.Attr("id")) {
			case "challenge-running", "cf-challenge":
				found = &schemas.Captcha{Type: schemas.CaptchaCloudflareChallenge}
			}
		}
		return true
	})

	if found == nil && sitekey != "" {
		found = &schemas.Captcha{Type: schemas.CaptchaUnknown}
	}
	if found != nil {
		found.Sitekey = sitekey
	}
	return found
}

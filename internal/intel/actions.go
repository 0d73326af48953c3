package intel

import (
	"math"
	"strconv"
	"strings"

	"github.com/browsyhq/browsy-core/api/schemas"
)

// Detector pairing distances, in pixels.
const (
	usernamePairDistance = 500
	listRowTolerance     = 30
	narrowCodeInputWidth = 60
)

var (
	loginWords    = []string{"log in", "login", "sign in", "signin", "welcome back"}
	registerWords = []string{"register", "sign up", "signup", "create account", "join", "new account"}
	contactWords  = []string{"contact", "get in touch", "reach out", "send us a message"}

	approvePatterns = []string{"allow", "authorize", "approve", "accept", "grant", "continue", "yes"}
	denyPatterns    = []string{"deny", "decline", "cancel", "reject", "no thanks"}

	acceptCookiePhrases = []string{
		"accept all", "accept cookies", "allow cookies", "allow all",
		"agree", "got it", "i understand", "i agree",
	}
	rejectCookiePhrases = []string{
		"reject all", "reject cookies", "reject", "decline", "refuse",
		"necessary only", "only necessary",
	}

	nextWords = []string{"next", ">", ">>", "›", "»", "→"}
	prevWords = []string{"prev", "previous", "<", "<<", "‹", "«", "←"}

	downloadExtensions = []string{
		".zip", ".tar.gz", ".dmg", ".exe", ".msi", ".deb", ".rpm",
		".pkg", ".appimage", ".pdf", ".csv", ".xlsx",
	}

	verifyWords = []string{"verify", "submit", "continue", "check"}
)

// DetectActions runs the detectors in their fixed order and returns every
// recipe that applies. Multiple recipes may co-exist on one page.
func DetectActions(d *schemas.SpatialDOM, pageType schemas.PageType, captcha *schemas.Captcha) []schemas.SuggestedAction {
	p := newPageFacts(d)
	det := &detectors{d: d, p: p}

	det.registerOrLogin()
	det.enterCode()
	det.consent()
	det.contact()
	det.search()
	det.selectFromList()
	det.cookieConsent()
	det.paginate()
	det.fillForm(pageType)
	det.download()
	det.captchaChallenge(pageType, captcha)

	return det.out
}

type detectors struct {
	d   *schemas.SpatialDOM
	p   *pageFacts
	out []schemas.SuggestedAction
	// formAction records that a form-specific recipe fired, which blocks the
	// generic FillForm fallback.
	formAction bool
}

func (det *detectors) add(a schemas.Action) {
	det.out = append(det.out, schemas.SuggestedAction{Action: a})
}

// registerOrLogin resolves the two password-based recipes. Registration
// context (second password or register keywords) yields Register unless a
// login keyword is also present, in which case Login wins.
func (det *detectors) registerOrLogin() {
	pw := det.firstVisible(func(el schemas.Element) bool {
		return el.Tag == "input" && el.InputType == "password"
	})
	if pw == nil {
		return
	}
	det.formAction = true

	var secondPw *schemas.Element
	seenFirst := false
	for i := range det.d.Els {
		el := &det.d.Els[i]
		if el.Tag == "input" && el.InputType == "password" && !el.Hidden {
			if !seenFirst {
				seenFirst = true
				continue
			}
			secondPw = el
			break
		}
	}

	registerContext := secondPw != nil || det.p.titleOrHeadingContains(registerWords)
	loginContext := det.p.titleOrHeadingContains(loginWords)

	if registerContext && !loginContext {
		det.emitRegister(pw, secondPw)
		return
	}

	action := schemas.Login{PasswordID: pw.ID}
	if username := det.nearestVertically(pw, usernamePairDistance, func(el schemas.Element) bool {
		return el.Tag == "input" && (el.InputType == "text" || el.InputType == "email")
	}); username != nil {
		action.UsernameID = username.ID
	}
	if submit := det.nearestSubmitBelow(pw); submit != nil {
		action.SubmitID = submit.ID
	}
	if remember := det.nearestVertically(pw, usernamePairDistance, func(el schemas.Element) bool {
		if el.Tag != "input" || el.InputType != "checkbox" {
			return false
		}
		lower := strings.ToLower(el.Label + " " + el.Name)
		return strings.Contains(lower, "remember")
	}); remember != nil {
		action.RememberMeID = remember.ID
	}
	det.add(action)
}

func (det *detectors) emitRegister(pw, secondPw *schemas.Element) {
	action := schemas.Register{PasswordID: pw.ID}
	if secondPw != nil {
		action.ConfirmPasswordID = secondPw.ID
	}
	if email := det.firstVisible(func(el schemas.Element) bool {
		if el.Tag != "input" {
			return false
		}
		lower := strings.ToLower(el.Label + " " + el.Name + " " + el.Ph)
		return el.InputType == "email" || strings.Contains(lower, "email")
	}); email != nil {
		action.EmailID = email.ID
	}
	if user := det.firstVisible(func(el schemas.Element) bool {
		if el.Tag != "input" || el.InputType != "text" {
			return false
		}
		lower := strings.ToLower(el.Label + " " + el.Name + " " + el.Ph)
		return strings.Contains(lower, "user")
	}); user != nil {
		action.UsernameID = user.ID
	}
	if name := det.firstVisible(func(el schemas.Element) bool {
		if el.Tag != "input" || el.InputType != "text" {
			return false
		}
		lower := strings.ToLower(el.Label + " " + el.Name + " " + el.Ph)
		return strings.Contains(lower, "name") && !strings.Contains(lower, "user")
	}); name != nil {
		action.NameID = name.ID
	}
	anchor := pw
	if secondPw != nil {
		anchor = secondPw
	}
	if submit := det.nearestSubmitBelow(anchor); submit != nil {
		action.SubmitID = submit.ID
	}
	det.add(action)
}

func (det *detectors) enterCode() {
	if !det.p.isTwoFactor() {
		return
	}
	isCodeInput := func(el schemas.Element) bool {
		if el.Tag != "input" {
			return false
		}
		switch el.InputType {
		case "text", "number", "tel":
			return true
		}
		return false
	}
	var narrow []*schemas.Element
	for i := range det.d.Els {
		el := &det.d.Els[i]
		if !el.Hidden && isCodeInput(*el) && el.B[2] > 0 && el.B[2] < narrowCodeInputWidth {
			narrow = append(narrow, el)
		}
	}

	input := det.firstVisible(isCodeInput)
	if len(narrow) > 0 {
		input = narrow[0]
	}
	if input == nil {
		return
	}
	det.formAction = true

	action := schemas.EnterCode{InputID: input.ID}
	if n := len(narrow); n >= 4 && n <= 8 {
		action.CodeLength = n
	}
	if submit := det.nearestSubmitBelow(input); submit != nil {
		action.SubmitID = submit.ID
	}
	det.add(action)
}

func (det *detectors) consent() {
	if !det.p.titleOrHeadingContains(oauthWords) {
		return
	}
	action := schemas.Consent{ApproveIDs: []uint32{}, DenyIDs: []uint32{}}
	for _, el := range det.d.Els {
		if el.Hidden || !isButton(el) {
			continue
		}
		lower := strings.ToLower(el.Text)
		switch {
		case containsAny(lower, denyPatterns):
			action.DenyIDs = append(action.DenyIDs, el.ID)
		case containsAny(lower, approvePatterns):
			action.ApproveIDs = append(action.ApproveIDs, el.ID)
		}
	}
	if len(action.ApproveIDs) == 0 && len(action.DenyIDs) == 0 {
		return
	}
	det.formAction = true
	det.add(action)
}

func (det *detectors) contact() {
	if !det.p.titleOrHeadingContains(contactWords) {
		return
	}
	message := det.firstVisible(func(el schemas.Element) bool { return el.Tag == "textarea" })
	if message == nil {
		return
	}
	det.formAction = true

	action := schemas.Contact{MessageID: message.ID}
	if name := det.firstVisible(func(el schemas.Element) bool {
		if el.Tag != "input" || el.InputType != "text" {
			return false
		}
		lower := strings.ToLower(el.Label + " " + el.Name + " " + el.Ph)
		return strings.Contains(lower, "name")
	}); name != nil {
		action.NameID = name.ID
	}
	if email := det.firstVisible(func(el schemas.Element) bool {
		if el.Tag != "input" {
			return false
		}
		lower := strings.ToLower(el.Label + " " + el.Name + " " + el.Ph)
		return el.InputType == "email" || strings.Contains(lower, "email")
	}); email != nil {
		action.EmailID = email.ID
	}
	if submit := det.nearestSubmitBelow(message); submit != nil {
		action.SubmitID = submit.ID
	}
	det.add(action)
}

func (det *detectors) search() {
	input := det.firstVisible(isSearchInput)
	if input == nil && det.p.visibleElements < 5 {
		input = det.first(func(el schemas.Element) bool { return el.Hidden && isSearchInput(el) })
	}
	if input == nil {
		return
	}
	det.formAction = true

	action := schemas.Search{InputID: input.ID}
	if submit := det.nearestSubmit(input); submit != nil {
		action.SubmitID = submit.ID
	}
	det.add(action)
}

// selectFromList groups visible links into rows by y proximity and offers
// the first link of each row once five or more rows exist.
func (det *detectors) selectFromList() {
	var links []schemas.Element
	for _, el := range det.d.Els {
		if el.Tag == "a" && el.Href != "" && !el.Hidden {
			links = append(links, el)
		}
	}
	if len(links) < 5 {
		return
	}
	var rows [][]schemas.Element
	for _, l := range links {
		placed := false
		for i := range rows {
			if absInt(l.B[1]-rows[i][0].B[1]) <= listRowTolerance {
				rows[i] = append(rows[i], l)
				placed = true
				break
			}
		}
		if !placed {
			rows = append(rows, []schemas.Element{l})
		}
	}
	if len(rows) < 5 {
		return
	}
	action := schemas.SelectFromList{Items: make([]uint32, 0, len(rows))}
	for _, row := range rows {
		action.Items = append(action.Items, row[0].ID)
	}
	det.add(action)
}

func (det *detectors) cookieConsent() {
	mentionsCookies := false
	for _, el := range det.d.Els {
		if len(el.Text) <= 30 {
			continue
		}
		lower := strings.ToLower(el.Text)
		if strings.Contains(lower, "cookie") || strings.Contains(lower, "gdpr") {
			mentionsCookies = true
			break
		}
	}
	if !mentionsCookies {
		return
	}
	var accept, reject *schemas.Element
	for i := range det.d.Els {
		el := &det.d.Els[i]
		if el.Hidden || !isButton(*el) {
			continue
		}
		lower := strings.ToLower(el.Text)
		if reject == nil && containsAny(lower, rejectCookiePhrases) {
			reject = el
			continue
		}
		if accept == nil && containsAny(lower, acceptCookiePhrases) {
			accept = el
		}
	}
	if accept == nil {
		return
	}
	det.formAction = true
	action := schemas.CookieConsent{AcceptID: accept.ID}
	if reject != nil {
		action.RejectID = reject.ID
	}
	det.add(action)
}

func (det *detectors) paginate() {
	matches := func(text string, words []string) bool {
		t := strings.ToLower(strings.TrimSpace(text))
		if t == "" {
			return false
		}
		for _, w := range words {
			if t == w || strings.HasPrefix(t, w+" ") || strings.HasSuffix(t, " "+w) {
				return true
			}
		}
		return false
	}
	action := schemas.Paginate{}
	for _, el := range det.d.Els {
		if el.Hidden || (el.Tag != "a" && !isButton(el)) {
			continue
		}
		switch {
		case action.NextID == 0 && matches(el.Text, nextWords):
			action.NextID = el.ID
		case action.PrevID == 0 && matches(el.Text, prevWords):
			action.PrevID = el.ID
		}
	}
	if action.NextID == 0 && action.PrevID == 0 {
		return
	}
	for _, el := range det.d.Els {
		if el.Hidden || el.Tag != "a" {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimSpace(el.Text)); err == nil && n > 0 && n < 1000 {
			action.PageIDs = append(action.PageIDs, el.ID)
		}
	}
	det.add(action)
}

func (det *detectors) fillForm(pageType schemas.PageType) {
	if pageType != schemas.PageForm || det.formAction {
		return
	}
	action := schemas.FillForm{Fields: []schemas.FormField{}}
	for _, el := range det.d.Els {
		if el.Hidden {
			continue
		}
		switch el.Tag {
		case "input":
			switch el.InputType {
			case "checkbox", "radio", "hidden", "submit", "button", "image":
				continue
			}
		case "textarea", "select":
		default:
			continue
		}
		action.Fields = append(action.Fields, schemas.FormField{
			ID:        el.ID,
			Label:     el.Label,
			Name:      el.Name,
			InputType: el.InputType,
		})
	}
	if len(action.Fields) == 0 {
		return
	}
	if submit := det.firstVisible(func(el schemas.Element) bool { return isSubmit(el) }); submit != nil {
		action.SubmitID = submit.ID
	}
	det.add(action)
}

func (det *detectors) download() {
	action := schemas.Download{}
	for _, el := range det.d.Els {
		if el.Hidden {
			continue
		}
		if el.Tag != "a" && !isButton(el) {
			continue
		}
		lower := strings.ToLower(strings.TrimSpace(el.Text))
		byText := strings.HasPrefix(lower, "download")
		byHref := false
		if el.Href != "" {
			href := strings.ToLower(el.Href)
			for _, ext := range downloadExtensions {
				if strings.HasSuffix(href, ext) {
					byHref = true
					break
				}
			}
		}
		if !byText && !byHref {
			continue
		}
		action.Items = append(action.Items, schemas.DownloadItem{
			ID: el.ID, Text: el.Text, Href: el.Href,
		})
	}
	if len(action.Items) == 0 {
		return
	}
	det.add(action)
}

func (det *detectors) captchaChallenge(pageType schemas.PageType, captcha *schemas.Captcha) {
	if captcha == nil && pageType != schemas.PageCaptcha {
		return
	}
	action := schemas.CaptchaChallenge{CaptchaType: schemas.CaptchaUnknown}
	if captcha != nil {
		action.CaptchaType = captcha.Type
		action.Sitekey = captcha.Sitekey
	}
	if submit := det.firstVisible(func(el schemas.Element) bool {
		return isButton(el) && containsAny(strings.ToLower(el.Text), verifyWords)
	}); submit != nil {
		action.SubmitID = submit.ID
	}
	if action.CaptchaType == schemas.CaptchaUnknown {
		imageButtons := 0
		for _, el := range det.d.Els {
			if el.Hidden {
				continue
			}
			if (el.Tag == "input" && el.InputType == "image") ||
				(el.Role == "button" && el.Text == "") {
				imageButtons++
			}
		}
		if imageButtons >= 4 {
			action.CaptchaType = schemas.CaptchaImageGrid
		}
	}
	det.add(action)
}

// -- geometry and lookup helpers --

func isSubmit(el schemas.Element) bool {
	if el.Tag == "button" {
		return true
	}
	return el.Tag == "input" && (el.InputType == "submit" || el.InputType == "button")
}

func isButton(el schemas.Element) bool {
	return isSubmit(el) || el.Role == "button"
}

func (det *detectors) first(pred func(schemas.Element) bool) *schemas.Element {
	for i := range det.d.Els {
		if pred(det.d.Els[i]) {
			return &det.d.Els[i]
		}
	}
	return nil
}

func (det *detectors) firstVisible(pred func(schemas.Element) bool) *schemas.Element {
	return det.first(func(el schemas.Element) bool { return !el.Hidden && pred(el) })
}

// nearestVertically finds the visible element matching pred whose vertical
// centre is closest to the anchor, within maxDist pixels.
func (det *detectors) nearestVertically(anchor *schemas.Element, maxDist float64, pred func(schemas.Element) bool) *schemas.Element {
	var best *schemas.Element
	bestDist := maxDist
	for i := range det.d.Els {
		el := &det.d.Els[i]
		if el.ID == anchor.ID || el.Hidden || !pred(*el) {
			continue
		}
		dist := math.Abs(centerY(*el) - centerY(*anchor))
		if dist <= bestDist {
			if best == nil || dist < bestDist {
				best = el
				bestDist = dist
			}
		}
	}
	return best
}

// nearestSubmitBelow finds the closest visible submit control at or below
// the anchor's top edge.
func (det *detectors) nearestSubmitBelow(anchor *schemas.Element) *schemas.Element {
	var best *schemas.Element
	bestDist := math.Inf(1)
	for i := range det.d.Els {
		el := &det.d.Els[i]
		if el.Hidden || !isSubmit(*el) {
			continue
		}
		if el.B[1] < anchor.B[1] {
			continue
		}
		dist := centerY(*el) - centerY(*anchor)
		if dist < bestDist {
			best = el
			bestDist = dist
		}
	}
	return best
}

func (det *detectors) nearestSubmit(anchor *schemas.Element) *schemas.Element {
	var best *schemas.Element
	bestDist := math.Inf(1)
	for i := range det.d.Els {
		el := &det.d.Els[i]
		if el.Hidden || !isSubmit(*el) {
			continue
		}
		dist := math.Abs(centerY(*el) - centerY(*anchor))
		if dist < bestDist {
			best = el
			bestDist = dist
		}
	}
	return best
}

func centerY(el schemas.Element) float64 {
	return float64(el.B[1]) + float64(el.B[3])/2
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

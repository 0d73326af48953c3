package schemas

import (
	"bytes"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// -- Page Classification Schemas --

// PageType is the single highest-priority classification of a page.
type PageType string

const (
	PageError         PageType = "Error"
	PageCaptcha       PageType = "Captcha"
	PageLogin         PageType = "Login"
	PageTwoFactorAuth PageType = "TwoFactorAuth"
	PageOAuthConsent  PageType = "OAuthConsent"
	PageInbox         PageType = "Inbox"
	PageEmailBody     PageType = "EmailBody"
	PageDashboard     PageType = "Dashboard"
	PageArticle       PageType = "Article"
	PageSearchResults PageType = "SearchResults"
	PageList          PageType = "List"
	PageSearch        PageType = "Search"
	PageForm          PageType = "Form"
	PageOther         PageType = "Other"
)

// CaptchaType identifies the detected CAPTCHA service.
type CaptchaType string

const (
	CaptchaReCaptcha           CaptchaType = "ReCaptcha"
	CaptchaHCaptcha            CaptchaType = "HCaptcha"
	CaptchaTurnstile           CaptchaType = "Turnstile"
	CaptchaCloudflareChallenge CaptchaType = "CloudflareChallenge"
	CaptchaImageGrid           CaptchaType = "ImageGrid"
	CaptchaTextCaptcha         CaptchaType = "TextCaptcha"
	CaptchaUnknown             CaptchaType = "Unknown"
)

// Captcha describes a CAPTCHA found in the source tree.
type Captcha struct {
	Type    CaptchaType `json:"captcha_type"`
	Sitekey string      `json:"sitekey,omitempty"`
}

// -- Suggested Action Schemas --

// Action is one recipe variant. Element ID fields use 0 for "absent"; IDs
// start at 1 so zero never collides with a real element.
type Action interface {
	ActionName() string
}

// SuggestedAction wraps a variant so the serialized form carries the
// "action" discriminator alongside the variant's own fields.
type SuggestedAction struct {
	Action Action
}

func (s SuggestedAction) MarshalJSON() ([]byte, error) {
	body, err := json.Marshal(s.Action)
	if err != nil {
		return nil, err
	}
	head := []byte(`{"action":`)
	name, _ := json.Marshal(s.Action.ActionName())
	head = append(head, name...)
	if bytes.Equal(body, []byte("{}")) {
		return append(head, '}'), nil
	}
	head = append(head, ',')
	head = append(head, body[1:]...)
	return head, nil
}

type Login struct {
	UsernameID   uint32 `json:"username_id,omitempty"`
	PasswordID   uint32 `json:"password_id"`
	SubmitID     uint32 `json:"submit_id,omitempty"`
	RememberMeID uint32 `json:"remember_me_id,omitempty"`
}

func (Login) ActionName() string { return "Login" }

type Register struct {
	EmailID           uint32 `json:"email_id,omitempty"`
	UsernameID        uint32 `json:"username_id,omitempty"`
	PasswordID        uint32 `json:"password_id"`
	ConfirmPasswordID uint32 `json:"confirm_password_id,omitempty"`
	NameID            uint32 `json:"name_id,omitempty"`
	SubmitID          uint32 `json:"submit_id,omitempty"`
}

func (Register) ActionName() string { return "Register" }

type EnterCode struct {
	InputID    uint32 `json:"input_id"`
	SubmitID   uint32 `json:"submit_id,omitempty"`
	CodeLength int    `json:"code_length,omitempty"`
}

func (EnterCode) ActionName() string { return "EnterCode" }

type Search struct {
	InputID  uint32 `json:"input_id"`
	SubmitID uint32 `json:"submit_id,omitempty"`
}

func (Search) ActionName() string { return "Search" }

type Consent struct {
	ApproveIDs []uint32 `json:"approve_ids"`
	DenyIDs    []uint32 `json:"deny_ids"`
}

func (Consent) ActionName() string { return "Consent" }

type CookieConsent struct {
	AcceptID uint32 `json:"accept_id"`
	RejectID uint32 `json:"reject_id,omitempty"`
}

func (CookieConsent) ActionName() string { return "CookieConsent" }

type Contact struct {
	NameID    uint32 `json:"name_id,omitempty"`
	EmailID   uint32 `json:"email_id,omitempty"`
	MessageID uint32 `json:"message_id"`
	SubmitID  uint32 `json:"submit_id,omitempty"`
}

func (Contact) ActionName() string { return "Contact" }

// FormField is one labeled entry of a FillForm recipe.
type FormField struct {
	ID        uint32 `json:"id"`
	Label     string `json:"label,omitempty"`
	Name      string `json:"name,omitempty"`
	InputType string `json:"input_type,omitempty"`
}

type FillForm struct {
	Fields   []FormField `json:"fields"`
	SubmitID uint32      `json:"submit_id,omitempty"`
}

func (FillForm) ActionName() string { return "FillForm" }

type SelectFromList struct {
	Items []uint32 `json:"items"`
}

func (SelectFromList) ActionName() string { return "SelectFromList" }

type Paginate struct {
	NextID uint32 `json:"next_id,omitempty"`
	PrevID uint32 `json:"prev_id,omitempty"`
	// PageIDs lists numbered page links in document order, when present.
	PageIDs []uint32 `json:"page_ids,omitempty"`
}

func (Paginate) ActionName() string { return "Paginate" }

// DownloadItem is one downloadable target.
type DownloadItem struct {
	ID   uint32 `json:"id"`
	Text string `json:"text,omitempty"`
	Href string `json:"href,omitempty"`
}

type Download struct {
	Items []DownloadItem `json:"items"`
}

func (Download) ActionName() string { return "Download" }

type CaptchaChallenge struct {
	CaptchaType CaptchaType `json:"captcha_type"`
	Sitekey     string      `json:"sitekey,omitempty"`
	SubmitID    uint32      `json:"submit_id,omitempty"`
}

func (CaptchaChallenge) ActionName() string { return "CaptchaChallenge" }

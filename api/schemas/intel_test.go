// api/schemas/intel_test.go
package schemas_test

import (
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/browsyhq/browsy-core/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func marshal(t *testing.T, v interface{}) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestSuggestedActionMarshalDiscriminator(t *testing.T) {
	s := schemas.SuggestedAction{Action: schemas.Login{
		UsernameID: 3, PasswordID: 4, SubmitID: 7,
	}}
	assert.Equal(t,
		`{"action":"Login","username_id":3,"password_id":4,"submit_id":7}`,
		marshal(t, s))
}

func TestSuggestedActionMarshalOmitsAbsentIDs(t *testing.T) {
	s := schemas.SuggestedAction{Action: schemas.Login{PasswordID: 2}}
	assert.Equal(t, `{"action":"Login","password_id":2}`, marshal(t, s))
}

func TestSuggestedActionMarshalEmptyBody(t *testing.T) {
	s := schemas.SuggestedAction{Action: schemas.Paginate{}}
	assert.Equal(t, `{"action":"Paginate"}`, marshal(t, s))
}

func TestSuggestedActionMarshalNestedFields(t *testing.T) {
	s := schemas.SuggestedAction{Action: schemas.FillForm{
		Fields: []schemas.FormField{
			{ID: 2, Label: "City", Name: "city", InputType: "text"},
		},
		SubmitID: 9,
	}}
	assert.Equal(t,
		`{"action":"FillForm","fields":[{"id":2,"label":"City","name":"city","input_type":"text"}],"submit_id":9}`,
		marshal(t, s))
}

func TestSuggestedActionMarshalInsideList(t *testing.T) {
	actions := []schemas.SuggestedAction{
		{Action: schemas.Search{InputID: 1}},
		{Action: schemas.CaptchaChallenge{CaptchaType: schemas.CaptchaTurnstile, Sitekey: "tk"}},
	}
	assert.Equal(t,
		`[{"action":"Search","input_id":1},{"action":"CaptchaChallenge","captcha_type":"Turnstile","sitekey":"tk"}]`,
		marshal(t, actions))
}

func TestActionByName(t *testing.T) {
	d := &schemas.SpatialDOM{
		SuggestedActions: []schemas.SuggestedAction{
			{Action: schemas.Login{PasswordID: 4, SubmitID: 7}},
			{Action: schemas.Search{InputID: 2}},
		},
	}

	got, err := d.ActionByName("Search")
	require.NoError(t, err)
	assert.Equal(t, schemas.Search{InputID: 2}, got.Action)

	_, err = d.ActionByName("Paginate")
	assert.ErrorIs(t, err, schemas.ErrActionNotApplicable)

	empty := &schemas.SpatialDOM{}
	_, err = empty.ActionByName("Login")
	assert.ErrorIs(t, err, schemas.ErrActionNotApplicable)
}

func TestSpatialDOMMarshalOmissions(t *testing.T) {
	d := &schemas.SpatialDOM{
		URL:   "https://example.com/",
		Title: "Example",
		VP:    [2]float64{1280, 720},
		Els:   []schemas.Element{{ID: 1, Tag: "p", Text: "hi", B: [4]int{8, 8, 20, 12}}},
	}
	out := marshal(t, d)

	// PageOther renders as omitted, and unset optional sections disappear.
	assert.NotContains(t, out, "page_type")
	assert.NotContains(t, out, "suggested_actions")
	assert.NotContains(t, out, "captcha")
	assert.Contains(t, out, `"els":[{"id":1,"tag":"p","text":"hi","b":[8,8,20,12]}]`)
}

func TestElementMarshalFlags(t *testing.T) {
	el := schemas.Element{
		ID: 2, Tag: "input", InputType: "checkbox", Name: "rm",
		Checked: true, Required: true, B: [4]int{8, 8, 13, 13},
	}
	out := marshal(t, el)
	assert.Contains(t, out, `"type":"checkbox"`)
	assert.Contains(t, out, `"checked":true`)
	assert.Contains(t, out, `"required":true`)
	// False flags never serialize.
	assert.NotContains(t, out, "disabled")
	assert.NotContains(t, out, "hidden")
}

func TestCaptchaMarshal(t *testing.T) {
	out := marshal(t, &schemas.Captcha{Type: schemas.CaptchaReCaptcha, Sitekey: "k"})
	assert.Equal(t, `{"captcha_type":"ReCaptcha","sitekey":"k"}`, out)

	out = marshal(t, &schemas.Captcha{Type: schemas.CaptchaCloudflareChallenge})
	assert.Equal(t, `{"captcha_type":"CloudflareChallenge"}`, out)
}

package inline

import (
	"strings"
	"testing"

	"github.com/Moole123/cf-tempmail/internal/model"
)

func testURL(a model.Attachment) string {
	return "https://mail.test/api/attachments/" + a.ID
}

func TestResolveEmptyInputsUnchanged(t *testing.T) {
	atts := []model.Attachment{
		{ID: "abc123", Filename: "logo.png", ContentType: "image/png"},
	}

	if got := Resolve("", atts, testURL); got != "" {
		t.Errorf("empty html: got %q, want empty", got)
	}

	html := `<p>Hello <img src="cid:logo.png"></p>`
	if got := Resolve(html, nil, testURL); got != html {
		t.Errorf("no attachments: got %q, want unchanged", got)
	}
}

func TestResolveNoImageAttachmentsUnchanged(t *testing.T) {
	html := `<img src="cid:report.pdf">`
	atts := []model.Attachment{
		{ID: "a1", Filename: "report.pdf", ContentType: "application/pdf"},
	}

	if got := Resolve(html, atts, testURL); got != html {
		t.Errorf("got %q, want unchanged", got)
	}
}

func TestResolveImgTagByFilename(t *testing.T) {
	html := `<p>Logo: <img src="cid:logo.png" alt="logo"></p>`
	atts := []model.Attachment{
		{ID: "abc123", Filename: "logo.png", ContentType: "image/png"},
	}

	got := Resolve(html, atts, testURL)
	want := `<p>Logo: <img src="https://mail.test/api/attachments/abc123" alt="logo"></p>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveImgTagByID(t *testing.T) {
	html := `<img src="cid:abc123">`
	atts := []model.Attachment{
		{ID: "abc123", Filename: "photo.jpg", ContentType: "image/jpeg"},
	}

	got := Resolve(html, atts, testURL)
	want := `<img src="https://mail.test/api/attachments/abc123">`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveImgTagByStem(t *testing.T) {
	html := `<img src="cid:logo">`
	atts := []model.Attachment{
		{ID: "abc123", Filename: "logo.png", ContentType: "image/png"},
	}

	got := Resolve(html, atts, testURL)
	want := `<img src="https://mail.test/api/attachments/abc123">`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveImgTagCaseInsensitive(t *testing.T) {
	html := `<img src="CID:Logo.PNG">`
	atts := []model.Attachment{
		{ID: "abc123", Filename: "logo.png", ContentType: "image/png"},
	}

	got := Resolve(html, atts, testURL)
	if !strings.Contains(got, "https://mail.test/api/attachments/abc123") {
		t.Errorf("case-insensitive cid reference not resolved: %q", got)
	}
}

func TestResolveExactFilenameBeatsID(t *testing.T) {
	// One attachment's id collides with another's filename; the exact
	// filename match must win.
	html := `<img src="cid:logo.png">`
	atts := []model.Attachment{
		{ID: "logo.png", Filename: "other.png", ContentType: "image/png"},
		{ID: "real", Filename: "logo.png", ContentType: "image/png"},
	}

	got := Resolve(html, atts, testURL)
	if !strings.Contains(got, "/attachments/real") {
		t.Errorf("exact filename should beat id match: %q", got)
	}
}

func TestResolveFirstListedWinsWithinRule(t *testing.T) {
	html := `<img src="cid:Logo.png">`
	atts := []model.Attachment{
		{ID: "first", Filename: "LOGO.PNG", ContentType: "image/png"},
		{ID: "second", Filename: "logo.png", ContentType: "image/png"},
	}

	got := Resolve(html, atts, testURL)
	if !strings.Contains(got, "/attachments/first") {
		t.Errorf("first-listed attachment should win within a rule: %q", got)
	}
}

func TestResolveUnknownReferenceUnchanged(t *testing.T) {
	html := `<img src="cid:missing">`
	atts := []model.Attachment{
		{ID: "abc123", Filename: "logo.png", ContentType: "image/png"},
	}

	if got := Resolve(html, atts, testURL); got != html {
		t.Errorf("got %q, want unchanged", got)
	}
}

func TestResolveHTTPSourceUntouched(t *testing.T) {
	html := `<img src="https://example.com/pic.png">`
	atts := []model.Attachment{
		{ID: "abc123", Filename: "pic.png", ContentType: "image/png"},
	}

	if got := Resolve(html, atts, testURL); got != html {
		t.Errorf("remote image source rewritten: got %q", got)
	}
}

func TestResolveSingleQuotedSrc(t *testing.T) {
	html := `<img src='cid:logo.png'>`
	atts := []model.Attachment{
		{ID: "abc123", Filename: "logo.png", ContentType: "image/png"},
	}

	got := Resolve(html, atts, testURL)
	want := `<img src='https://mail.test/api/attachments/abc123'>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveResidualQuotedCid(t *testing.T) {
	html := `<div style='background: url("cid:bg.png")'>content</div>`
	atts := []model.Attachment{
		{ID: "bg1", Filename: "bg.png", ContentType: "image/png"},
	}

	got := Resolve(html, atts, testURL)
	want := `<div style='background: url("https://mail.test/api/attachments/bg1")'>content</div>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveBareFilenameWrapped(t *testing.T) {
	html := `<p>See the attached logo.png for details</p>`
	atts := []model.Attachment{
		{ID: "abc123", Filename: "logo.png", ContentType: "image/png"},
	}

	got := Resolve(html, atts, testURL)
	want := `<p>See the attached <img src="https://mail.test/api/attachments/abc123" alt="logo.png"> for details</p>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveBareFilenameAtStart(t *testing.T) {
	html := `screenshot.png shows the error`
	atts := []model.Attachment{
		{ID: "s1", Filename: "screenshot.png", ContentType: "image/png"},
	}

	got := Resolve(html, atts, testURL)
	want := `<img src="https://mail.test/api/attachments/s1" alt="screenshot.png"> shows the error`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveFilenameWithMetacharacters(t *testing.T) {
	html := `<img src="cid:a+b.png"> and a+b.png in text`
	atts := []model.Attachment{
		{ID: "meta", Filename: "a+b.png", ContentType: "image/png"},
	}

	got := Resolve(html, atts, testURL)
	if !strings.HasPrefix(got, `<img src="https://mail.test/api/attachments/meta">`) {
		t.Errorf("cid with metacharacters not resolved: %q", got)
	}
	if !strings.Contains(got, `<img src="https://mail.test/api/attachments/meta" alt="a+b.png">`) {
		t.Errorf("bare filename with metacharacters not wrapped: %q", got)
	}
}

func TestResolveMultipleAttachments(t *testing.T) {
	html := `<img src="cid:one.png"><img src="cid:two.png">`
	atts := []model.Attachment{
		{ID: "id1", Filename: "one.png", ContentType: "image/png"},
		{ID: "id2", Filename: "two.png", ContentType: "image/png"},
	}

	got := Resolve(html, atts, testURL)
	want := `<img src="https://mail.test/api/attachments/id1"><img src="https://mail.test/api/attachments/id2">`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveSkipsNonImageForBareText(t *testing.T) {
	html := `<p>See report.pdf attached</p>`
	atts := []model.Attachment{
		{ID: "p1", Filename: "report.pdf", ContentType: "application/pdf"},
	}

	if got := Resolve(html, atts, testURL); got != html {
		t.Errorf("non-image filename wrapped: %q", got)
	}
}

func TestStem(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"logo.png", "logo"},
		{"archive.tar.gz", "archive.tar"},
		{"noext", "noext"},
		{".hidden", ".hidden"},
	}
	for _, c := range cases {
		if got := stem(c.in); got != c.want {
			t.Errorf("stem(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

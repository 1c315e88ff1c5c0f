package inline

import (
	"regexp"
	"sort"
	"strings"

	"github.com/Moole123/cf-tempmail/internal/model"
)

// URLFunc constructs the fetchable URL for an attachment.
type URLFunc func(model.Attachment) string

// imgTagPattern matches a complete <img ...> tag.
var imgTagPattern = regexp.MustCompile(`(?is)<img\b[^>]*>`)

// srcAttrPattern matches the src attribute inside an <img> tag and
// captures the value for double-quoted, single-quoted, and bare forms.
var srcAttrPattern = regexp.MustCompile(
	`(?is)\bsrc\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s>]+))`,
)

// Resolve rewrites image references in an HTML email body so they point
// at fetchable attachment URLs. <img> tags with cid: sources are
// rewritten first, then residual cid: tokens and bare filename mentions
// in the remaining text. The input is returned unchanged when either
// argument is empty. No sanitization is performed; the caller owns
// trust decisions for the rendered output.
func Resolve(
	html string,
	attachments []model.Attachment,
	urlFor URLFunc,
) string {
	if html == "" || len(attachments) == 0 {
		return html
	}

	var images []model.Attachment
	for _, a := range attachments {
		if a.IsImage() {
			images = append(images, a)
		}
	}
	if len(images) == 0 {
		return html
	}

	out := imgTagPattern.ReplaceAllStringFunc(html, func(tag string) string {
		return rewriteImgTag(tag, images, urlFor)
	})

	// Residual pass over the remaining text, one attachment at a time
	// in filename order. Replacements are applied sequentially on the
	// working string.
	sorted := make([]model.Attachment, len(images))
	copy(sorted, images)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Filename < sorted[j].Filename
	})
	for _, a := range sorted {
		out = rewriteResidual(out, a.Filename, urlFor(a))
	}

	return out
}

// rewriteImgTag replaces the src value of a single <img> tag when it is
// a cid: reference matching one of the image attachments. Tags without
// a match are returned untouched.
func rewriteImgTag(
	tag string,
	images []model.Attachment,
	urlFor URLFunc,
) string {
	loc := srcAttrPattern.FindStringSubmatchIndex(tag)
	if loc == nil {
		return tag
	}

	// First capture group that participated holds the value.
	start, end := -1, -1
	for group := 1; group <= 3; group++ {
		if loc[2*group] >= 0 {
			start, end = loc[2*group], loc[2*group+1]
			break
		}
	}
	if start < 0 {
		return tag
	}

	src := tag[start:end]
	if !strings.HasPrefix(strings.ToLower(src), "cid:") {
		return tag
	}

	matched, ok := matchReference(src[len("cid:"):], images)
	if !ok {
		return tag
	}

	return tag[:start] + urlFor(matched) + tag[end:]
}

// matchReference finds the image attachment a cid reference points at.
// Match rules are tried in priority order across all attachments, so
// the first-listed attachment wins within a rule: exact filename, exact
// id, case-insensitive filename, filename without extension (exact,
// then case-insensitive).
func matchReference(
	ref string,
	images []model.Attachment,
) (model.Attachment, bool) {
	rules := []func(model.Attachment) bool{
		func(a model.Attachment) bool { return a.Filename == ref },
		func(a model.Attachment) bool { return a.ID == ref },
		func(a model.Attachment) bool { return strings.EqualFold(a.Filename, ref) },
		func(a model.Attachment) bool { return stem(a.Filename) == ref },
		func(a model.Attachment) bool { return strings.EqualFold(stem(a.Filename), ref) },
	}

	for _, rule := range rules {
		for _, a := range images {
			if rule(a) {
				return a, true
			}
		}
	}
	return model.Attachment{}, false
}

// stem returns the filename without its extension.
func stem(name string) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[:i]
	}
	return name
}

// rewriteResidual replaces leftover references to one attachment in the
// working string: quoted and plain cid: tokens become the attachment
// URL, and bare filename mentions outside any tag are wrapped into a
// new <img> tag. The filename is quoted so regex metacharacters in it
// match literally.
func rewriteResidual(html string, filename string, url string) string {
	name := regexp.QuoteMeta(filename)

	doubleQuoted := regexp.MustCompile(`(?i)"cid:` + name + `"`)
	html = doubleQuoted.ReplaceAllString(html, `"`+url+`"`)

	singleQuoted := regexp.MustCompile(`(?i)'cid:` + name + `'`)
	html = singleQuoted.ReplaceAllString(html, `'`+url+`'`)

	plain := regexp.MustCompile(`(?i)cid:` + name)
	html = plain.ReplaceAllString(html, url)

	// Bare filename in text content: anchored to the start of the
	// string or the end of the previous tag so matches inside tags
	// are impossible.
	bare := regexp.MustCompile(`(?i)(^|>)([^<]*?)` + name)
	html = bare.ReplaceAllString(
		html,
		`${1}${2}<img src="`+url+`" alt="`+filename+`">`,
	)

	return html
}

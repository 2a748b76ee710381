// Package enumerate discovers the static assets a page references.
package enumerate

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	cssURLRe      = regexp.MustCompile(`url\(\s*['"]?([^'")\s]+)['"]?\s*\)`)
	playlistURLRe = regexp.MustCompile(`url:\s*['"]([^'"]+)['"]`)
)

// srcAttrs lists, per element, the attribute that points at an asset.
var srcAttrs = map[string]string{
	"img":    "src",
	"audio":  "src",
	"video":  "src",
	"source": "src",
	"script": "src",
	"link":   "href",
}

// Assets returns the same-origin asset paths referenced by body, each as an
// absolute path ("/audio/track1.mp3") ready to append to the base URL.
// Sources are element attributes, CSS url(...) references in <style> blocks
// and style attributes, and `url: "..."` entries in inline scripts.
// Order is first appearance; duplicates are dropped.
func Assets(body string) []string {
	var refs []string
	z := html.NewTokenizer(strings.NewReader(body))
	var inStyle, inScript bool

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return normalize(refs)
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			name := tok.Data
			for _, a := range tok.Attr {
				if want, ok := srcAttrs[name]; ok && a.Key == want {
					refs = append(refs, a.Val)
				}
				if a.Key == "style" {
					refs = append(refs, cssURLs(a.Val)...)
				}
			}
			inStyle = name == "style" && tt == html.StartTagToken
			inScript = name == "script" && tt == html.StartTagToken
		case html.EndTagToken:
			inStyle, inScript = false, false
		case html.TextToken:
			text := string(z.Text())
			if inStyle {
				refs = append(refs, cssURLs(text)...)
			}
			if inScript {
				for _, m := range playlistURLRe.FindAllStringSubmatch(text, -1) {
					refs = append(refs, m[1])
				}
			}
		}
	}
}

func cssURLs(css string) []string {
	var out []string
	for _, m := range cssURLRe.FindAllStringSubmatch(css, -1) {
		out = append(out, m[1])
	}
	return out
}

func normalize(refs []string) []string {
	seen := make(map[string]bool, len(refs))
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		p, ok := assetPath(ref)
		if !ok || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// assetPath turns a reference into a root-relative path. External URLs,
// data: URIs and fragments are not assets of this page.
func assetPath(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "#") {
		return "", false
	}
	u, err := url.Parse(ref)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}
	p := strings.TrimPrefix(u.Path, "./")
	if p == "" {
		return "", false
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p, true
}

// Merge appends the entries of extra that are not already in base.
func Merge(base, extra []string) []string {
	seen := make(map[string]bool, len(base))
	out := append([]string(nil), base...)
	for _, p := range base {
		seen[p] = true
	}
	for _, p := range extra {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

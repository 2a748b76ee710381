package check

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Expect is a substring that must appear in the page, with a label for the report.
type Expect struct {
	Needle string
	Label  string
}

// Missing returns the needles absent from body, in the order given.
func Missing(body string, needles ...string) []string {
	var out []string
	for _, n := range needles {
		if !strings.Contains(body, n) {
			out = append(out, n)
		}
	}
	return out
}

// FirstMissing returns the first needle absent from body.
func FirstMissing(body string, needles ...string) (string, bool) {
	for _, n := range needles {
		if !strings.Contains(body, n) {
			return n, true
		}
	}
	return "", false
}

// Each prints one line per expectation and reports whether all were found.
// okFormat and failFormat receive the expectation label as their only verb.
func Each(w io.Writer, body string, expects []Expect, okFormat, failFormat string) bool {
	all := true
	for _, e := range expects {
		if strings.Contains(body, e.Needle) {
			fmt.Fprintf(w, okFormat, e.Label)
		} else {
			fmt.Fprintf(w, failFormat, e.Label)
			all = false
		}
	}
	return all
}

// Position is a left/top pixel offset captured from a CSS rule.
type Position struct {
	Left string
	Top  string
}

var (
	rootDimsRe  = regexp.MustCompile(`:root\s*\{\s*--w:\s*(\d+)px;\s*--h:\s*(\d+)px;`)
	playPosRe   = regexp.MustCompile(`\.btn\.play\s*\{\s*left:\s*(\d+)px;\s*top:\s*(\d+)px;`)
	nextPosRe   = regexp.MustCompile(`\.btn\.next\s*\{\s*left:\s*(\d+)px;\s*top:\s*(\d+)px;`)
	volumePosRe = regexp.MustCompile(`\.slider\.volume\s*\{\s*left:\s*(\d+)px;\s*top:\s*(\d+)px;`)
	tickerPosRe = regexp.MustCompile(`\.ticker-wrap\s*\{\s*[^}]*left:\s*(\d+)px;\s*top:\s*(\d+)px;`)
	tickerRe    = regexp.MustCompile(`<div class="ticker" id="ticker">([^<]+)</div>`)
	tracksRe    = regexp.MustCompile(`(?s)tracks = \[(.*?)\];`)
)

// DeckDimensions extracts --w and --h from the :root rule.
func DeckDimensions(body string) (width, height string, ok bool) {
	m := rootDimsRe.FindStringSubmatch(body)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

func position(re *regexp.Regexp, body string) (Position, bool) {
	m := re.FindStringSubmatch(body)
	if m == nil {
		return Position{}, false
	}
	return Position{Left: m[1], Top: m[2]}, true
}

// PlayButtonPosition reads the .btn.play offset.
func PlayButtonPosition(body string) (Position, bool) { return position(playPosRe, body) }

// NextButtonPosition reads the .btn.next offset.
func NextButtonPosition(body string) (Position, bool) { return position(nextPosRe, body) }

// VolumeSliderPosition reads the .slider.volume offset.
func VolumeSliderPosition(body string) (Position, bool) { return position(volumePosRe, body) }

// TickerPosition reads the .ticker-wrap offset; other declarations may precede it.
func TickerPosition(body string) (Position, bool) { return position(tickerPosRe, body) }

// TickerText returns the initial text of the ticker div.
func TickerText(body string) (string, bool) {
	m := tickerRe.FindStringSubmatch(body)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Playlist is the body of the `tracks = [...]` array literal.
type Playlist struct {
	Raw string
}

// FindPlaylist captures the tracks array, spanning lines.
func FindPlaylist(body string) (Playlist, bool) {
	m := tracksRe.FindStringSubmatch(body)
	if m == nil {
		return Playlist{}, false
	}
	return Playlist{Raw: m[1]}, true
}

// Count is the number of `url:` entries.
func (p Playlist) Count() int { return strings.Count(p.Raw, "url:") }

// Has reports whether file is referenced in the playlist.
func (p Playlist) Has(file string) bool { return strings.Contains(p.Raw, file) }

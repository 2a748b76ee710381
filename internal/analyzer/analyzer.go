// Package analyzer reads the DOM of the fetched page.
package analyzer

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Document is what the report needs to know about the page's DOM.
type Document struct {
	Title      string
	TickerText string
	StatusText string
	AudioID    string
	Buttons    []Control
	Sliders    []Control
	ElementIDs []string
	Scripts    int
}

// Control is an interactive element on the faceplate.
type Control struct {
	ID    string
	Label string
}

// Inspect parses body as HTML. Malformed markup is tolerated the way
// browsers tolerate it; only a reader failure is an error.
func Inspect(body string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	d := &Document{
		Title:      strings.TrimSpace(doc.Find("title").First().Text()),
		TickerText: strings.TrimSpace(doc.Find("#ticker").First().Text()),
		StatusText: strings.TrimSpace(doc.Find("#status").First().Text()),
		Scripts:    doc.Find("script").Length(),
	}

	if audio := doc.Find("audio").First(); audio.Length() > 0 {
		d.AudioID, _ = audio.Attr("id")
	}

	doc.Find("button").Each(func(_ int, s *goquery.Selection) {
		d.Buttons = append(d.Buttons, control(s))
	})
	doc.Find(`input[type="range"]`).Each(func(_ int, s *goquery.Selection) {
		d.Sliders = append(d.Sliders, control(s))
	})
	doc.Find("[id]").Each(func(_ int, s *goquery.Selection) {
		if id, _ := s.Attr("id"); id != "" {
			d.ElementIDs = append(d.ElementIDs, id)
		}
	})

	return d, nil
}

func control(s *goquery.Selection) Control {
	id, _ := s.Attr("id")
	label, ok := s.Attr("aria-label")
	if !ok {
		label, _ = s.Attr("title")
	}
	if label == "" {
		label = strings.TrimSpace(s.Text())
	}
	return Control{ID: id, Label: label}
}

package demoserver

import (
	_ "embed"
	"fmt"
	"strings"
)

// Page versions. The regressed version drops the debug shortcut and the
// third track so the checkers have something to catch.
const (
	VersionComplete  = 1
	VersionRegressed = 2
)

//go:embed static/index.html
var indexHTML string

var regressions = strings.NewReplacer(
	"        case \"KeyD\": deck.classList.toggle('debug'); break;\n", "",
	"99 CENTS STEREO - PRESS PLAY", "99 CENTS STEREO - NOW WITH MORE BASS",
)

// Tracks lists the audio file names the player references.
var Tracks = []string{"track1.mp3", "track2.mp3", "track3.mp3"}

// PageHTML returns the player page for a version.
func PageHTML(version int) (string, error) {
	switch version {
	case VersionComplete:
		return indexHTML, nil
	case VersionRegressed:
		return regressions.Replace(indexHTML), nil
	default:
		return "", fmt.Errorf("unknown page version %d", version)
	}
}

// PlaceholderAudio is the body served for a track. The real MP3s are not
// shipped, so the player is expected to report an audio error.
func PlaceholderAudio(track string) []byte {
	return []byte("Placeholder audio for " + track + ". Replace with a real MP3 file.\n")
}

// trackServed reports whether a version serves the named track.
func trackServed(version int, track string) bool {
	for i, t := range Tracks {
		if t != track {
			continue
		}
		return version != VersionRegressed || i < len(Tracks)-1
	}
	return false
}

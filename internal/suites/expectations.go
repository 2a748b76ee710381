package suites

import "github.com/raysh454/stereocheck/internal/check"

// Asset paths probed with HEAD, relative to the base URL.
var backendAssets = []string{
	"/assets/alpine_faceplate.png",
	"/audio/track1.mp3",
	"/audio/track2.mp3",
	"/audio/track3.mp3",
}

var mainPageElements = []string{
	"99 CENTS Car Stereo Player",
	`class="deck"`,
	`id="playBtn"`,
	`id="nextBtn"`,
	`id="vol"`,
	`id="ticker"`,
	`id="status"`,
	"alpine_faceplate.png",
}

var backendJS = []string{
	"tracks = [",
	"playPause()",
	"nextTrack()",
	"updateVolume()",
	"addEventListener",
	"KeyD",
	"Space",
	"ArrowRight",
}

var backendCSS = []string{
	".deck {",
	".btn",
	".slider",
	".ticker",
	".debug",
	"@keyframes scroll",
	"@media",
}

var frontendControls = []check.Expect{
	{Needle: `id="playBtn"`, Label: "Play/Pause button"},
	{Needle: `id="nextBtn"`, Label: "Next track button"},
	{Needle: `id="vol"`, Label: "Volume slider"},
	{Needle: `class="btn play"`, Label: "Play button styling"},
	{Needle: `class="btn next"`, Label: "Next button styling"},
	{Needle: `class="slider volume"`, Label: "Volume slider styling"},
}

var frontendDisplay = []check.Expect{
	{Needle: `id="ticker"`, Label: "Scrolling ticker display"},
	{Needle: `id="status"`, Label: "Status display"},
	{Needle: ".ticker-wrap", Label: "Ticker wrapper"},
	{Needle: "@keyframes scroll", Label: "Scrolling animation"},
	{Needle: `class="ticker"`, Label: "Ticker styling"},
}

var frontendKeyboard = []check.Expect{
	{Needle: `case "Space":`, Label: "SPACE key for play/pause"},
	{Needle: `case "ArrowRight":`, Label: "RIGHT ARROW for next track"},
	{Needle: `case "ArrowUp":`, Label: "UP ARROW for volume up"},
	{Needle: `case "ArrowDown":`, Label: "DOWN ARROW for volume down"},
	{Needle: `case "KeyD":`, Label: "D key for debug mode"},
	{Needle: `addEventListener("keydown"`, Label: "Keyboard event listener"},
}

var frontendDebug = []check.Expect{
	{Needle: ".debug .btn", Label: "Debug button styling"},
	{Needle: ".debug .ticker-wrap", Label: "Debug ticker styling"},
	{Needle: ".debug .slider", Label: "Debug slider styling"},
	{Needle: "deck.classList.toggle('debug')", Label: "Debug toggle functionality"},
	{Needle: "outline: 2px dashed", Label: "Debug outline styling"},
}

var frontendAudio = []check.Expect{
	{Needle: `<audio id="player"`, Label: "HTML5 audio element"},
	{Needle: "tracks = [", Label: "Track playlist array"},
	{Needle: "playPause()", Label: "Play/pause function"},
	{Needle: "nextTrack()", Label: "Next track function"},
	{Needle: "updateVolume()", Label: "Volume update function"},
	{Needle: `audio.addEventListener("ended"`, Label: "Track end handling"},
	{Needle: `audio.addEventListener("error"`, Label: "Audio error handling"},
}

var frontendErrors = []check.Expect{
	{Needle: `audio.addEventListener("error"`, Label: "Audio error listener"},
	{Needle: `updateStatus("ERROR")`, Label: "Error status update"},
	{Needle: "Audio file not found", Label: "Audio error message"},
	{Needle: ".error", Label: "Error styling class"},
	{Needle: "console.error", Label: "Console error logging"},
}

var expectedTracks = []string{"track1.mp3", "track2.mp3", "track3.mp3"}

// Report sections 3, 4, 5 and 8.

var reportHTML = []check.Expect{
	{Needle: "<!doctype html>", Label: "HTML5 doctype"},
	{Needle: "<title>99 CENTS Car Stereo Player</title>", Label: "Page title"},
	{Needle: `class="deck"`, Label: "Main deck container"},
	{Needle: `id="playBtn"`, Label: "Play/Pause button"},
	{Needle: `id="nextBtn"`, Label: "Next track button"},
	{Needle: `id="vol"`, Label: "Volume slider"},
	{Needle: `id="ticker"`, Label: "Scrolling ticker"},
	{Needle: `id="status"`, Label: "Status display"},
	{Needle: `<audio id="player"`, Label: "HTML5 audio element"},
}

var reportCSS = []check.Expect{
	{Needle: ":root {", Label: "CSS custom properties"},
	{Needle: "--w: 700px; --h: 218px;", Label: "Deck dimensions (700x218px)"},
	{Needle: "alpine_faceplate.png", Label: "Background image reference"},
	{Needle: ".btn", Label: "Button styling"},
	{Needle: ".slider", Label: "Slider styling"},
	{Needle: ".ticker", Label: "Ticker styling"},
	{Needle: "@keyframes scroll", Label: "Scrolling animation"},
	{Needle: "@media", Label: "Responsive design"},
	{Needle: ".debug", Label: "Debug mode styling"},
}

var reportJS = []check.Expect{
	{Needle: "tracks = [", Label: "Track playlist configuration"},
	{Needle: "playPause()", Label: "Play/Pause functionality"},
	{Needle: "nextTrack()", Label: "Next track functionality"},
	{Needle: "updateVolume()", Label: "Volume control"},
	{Needle: "setTrack()", Label: "Track switching"},
	{Needle: `addEventListener("click"`, Label: "Click event handlers"},
	{Needle: `addEventListener("keydown"`, Label: "Keyboard event handlers"},
	{Needle: `case "Space":`, Label: "SPACE key handler"},
	{Needle: `case "ArrowRight":`, Label: "RIGHT ARROW key handler"},
	{Needle: `case "ArrowUp":`, Label: "UP ARROW key handler"},
	{Needle: `case "ArrowDown":`, Label: "DOWN ARROW key handler"},
	{Needle: `case "KeyD":`, Label: "Debug mode toggle"},
	{Needle: `audio.addEventListener("ended"`, Label: "Track end handling"},
	{Needle: `audio.addEventListener("error"`, Label: "Error handling"},
}

var reportErrors = []check.Expect{
	{Needle: `audio.addEventListener("error"`, Label: "Audio error listener"},
	{Needle: `updateStatus("ERROR")`, Label: "Error status display"},
	{Needle: "Audio file not found", Label: "Error message text"},
	{Needle: "console.error", Label: "Console error logging"},
	{Needle: ".error", Label: "Error styling class"},
}

// localFile is a file expected under the application root.
type localFile struct {
	Path  string
	Label string
}

var reportFiles = []localFile{
	{Path: "index.html", Label: "Main application file"},
	{Path: "assets/alpine_faceplate.png", Label: "Alpine faceplate image"},
	{Path: "audio/track1.mp3", Label: "Audio track 1"},
	{Path: "audio/track2.mp3", Label: "Audio track 2"},
	{Path: "audio/track3.mp3", Label: "Audio track 3"},
}

package enumerate_test

import (
	"reflect"
	"testing"

	"github.com/raysh454/stereocheck/internal/enumerate"
)

func TestAssets(t *testing.T) {
	t.Parallel()
	body := `<!doctype html>
<html><head>
<link rel="icon" href="favicon.ico">
<link rel="stylesheet" href="https://fonts.example.com/x.css">
<style>
  .deck { background: url("assets/alpine_faceplate.png") no-repeat; }
  .logo { background: url(data:image/png;base64,AAAA); }
</style>
</head><body>
<div style="background-image: url('/assets/glow.png')"></div>
<img src="./assets/alpine_faceplate.png">
<a href="#top">top</a>
<audio id="player"></audio>
<script src="app.js"></script>
<script>
const tracks = [
  { title: "Track 1", url: "audio/track1.mp3" },
  { title: "Track 2", url: 'audio/track2.mp3' },
  { title: "Track 3", url: "audio/track3.mp3" },
];
</script>
</body></html>`

	got := enumerate.Assets(body)
	want := []string{
		"/favicon.ico",
		"/assets/alpine_faceplate.png",
		"/assets/glow.png",
		"/app.js",
		"/audio/track1.mp3",
		"/audio/track2.mp3",
		"/audio/track3.mp3",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Assets() =\n%v\nwant\n%v", got, want)
	}
}

func TestAssets_Empty(t *testing.T) {
	t.Parallel()
	if got := enumerate.Assets(""); len(got) != 0 {
		t.Errorf("expected no assets, got %v", got)
	}
}

func TestMerge(t *testing.T) {
	t.Parallel()
	got := enumerate.Merge(
		[]string{"/assets/alpine_faceplate.png", "/audio/track1.mp3"},
		[]string{"/audio/track1.mp3", "/favicon.ico"},
	)
	want := []string{"/assets/alpine_faceplate.png", "/audio/track1.mp3", "/favicon.ico"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Merge() = %v, want %v", got, want)
	}
}

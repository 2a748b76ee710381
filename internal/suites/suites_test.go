package suites_test

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raysh454/stereocheck/internal/check"
	"github.com/raysh454/stereocheck/internal/demoserver"
	"github.com/raysh454/stereocheck/internal/fetcher"
	"github.com/raysh454/stereocheck/internal/suites"
	"github.com/raysh454/stereocheck/internal/testutil"
	"github.com/raysh454/stereocheck/internal/webclient"
)

// stereoServer starts the demo page at the given version.
func stereoServer(t *testing.T, version int) string {
	t.Helper()
	ds, err := demoserver.NewDemoServer(demoserver.Config{InitialVersion: version}, nil)
	require.NoError(t, err)
	srv := httptest.NewServer(ds.Handler())
	t.Cleanup(srv.Close)
	return srv.URL
}

func liveEnv(t *testing.T, baseURL string, out *bytes.Buffer) *suites.Env {
	t.Helper()
	wc, err := webclient.NewWebClient(webclient.Config{}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = wc.Close() })

	f, err := fetcher.New(fetcher.DefaultConfig(), wc, nil, nil)
	require.NoError(t, err)
	return &suites.Env{BaseURL: baseURL, Fetcher: f, Out: out, Logger: &testutil.DummyLogger{}}
}

func dummyEnv(t *testing.T, wc *testutil.DummyWebClient, out *bytes.Buffer) *suites.Env {
	t.Helper()
	f, err := fetcher.New(fetcher.DefaultConfig(), wc, nil, nil)
	require.NoError(t, err)
	return &suites.Env{BaseURL: "http://stereo.local", Fetcher: f, Out: out}
}

func TestBackend_AllPass(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	env := liveEnv(t, stereoServer(t, demoserver.VersionComplete), &out)

	res := suites.Backend(context.Background(), env)

	assert.True(t, res.OK)
	assert.Equal(t, 4, res.Summary.Run)
	assert.Equal(t, 4, res.Summary.Passed)
	require.NotNil(t, res.Page)

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "🎵 99 CENTS CAR STEREO PLAYER - BACKEND TESTING\n"+strings.Repeat("=", 50)+"\n"))
	assert.Contains(t, text, "\n🔍 Testing Main Page Load...\n")
	assert.Contains(t, text, "Page size: ")
	assert.Contains(t, text, "  ✅ /assets/alpine_faceplate.png - Available\n")
	assert.Contains(t, text, "  ✅ /audio/track3.mp3 - Available\n")
	assert.Contains(t, text, "All essential JavaScript functionality present\n")
	assert.Contains(t, text, "All essential CSS styling present\n")
	assert.Contains(t, text, "Tests passed: 4/4\n")
	assert.Contains(t, text, "🎉 ALL BACKEND TESTS PASSED!\n✅ Application is ready for frontend testing\n")
}

func TestBackend_Regressed(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	env := liveEnv(t, stereoServer(t, demoserver.VersionRegressed), &out)

	res := suites.Backend(context.Background(), env)

	assert.False(t, res.OK)
	assert.Equal(t, 2, res.Summary.Passed)

	text := out.String()
	assert.Contains(t, text, "  ❌ /audio/track3.mp3 - Status 404\n")
	assert.Contains(t, text, "Missing JavaScript functionality: ['KeyD']\n")
	assert.Contains(t, text, "Tests passed: 2/4\n")
	assert.Contains(t, text, "❌ Some backend tests failed\n")
}

func TestBackend_NetworkErrorsAreCaptured(t *testing.T) {
	t.Parallel()
	base := "http://stereo.local"
	fail := map[string]bool{base: true}
	for _, p := range []string{"/assets/alpine_faceplate.png", "/audio/track1.mp3", "/audio/track2.mp3", "/audio/track3.mp3"} {
		fail[base+p] = true
	}
	var out bytes.Buffer
	env := dummyEnv(t, &testutil.DummyWebClient{FailURLs: fail}, &out)

	res := suites.Backend(context.Background(), env)

	assert.False(t, res.OK)
	assert.Equal(t, 4, res.Summary.Run)
	assert.Equal(t, 0, res.Summary.Passed)
	assert.Nil(t, res.Page)

	text := out.String()
	assert.Equal(t, 3, strings.Count(text, "❌ Failed - Error: error GETting"))
	assert.Equal(t, 4, strings.Count(text, " - Error: error HEADing"))
	assert.Contains(t, text, "Tests passed: 0/4\n")
}

func TestBackend_WrongStatus(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	env := dummyEnv(t, &testutil.DummyWebClient{}, &out)

	res := suites.Backend(context.Background(), env)

	assert.False(t, res.OK)
	assert.Contains(t, out.String(), "Expected status 200, got 404\n")
	assert.Contains(t, out.String(), "  ❌ /assets/alpine_faceplate.png - Status 404\n")
}

func TestBackend_MissingRequiredElement(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{Pages: map[string]testutil.DummyResponse{
		"http://stereo.local": {Status: 200, Body: `<title>99 CENTS Car Stereo Player</title><div class="deck">`},
	}}
	var out bytes.Buffer
	env := dummyEnv(t, wc, &out)

	suites.Backend(context.Background(), env)

	assert.Contains(t, out.String(), "Missing required element: id=\"playBtn\"\n")
}

func TestBackend_DiscoverAssetsDeduplicates(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	env := liveEnv(t, stereoServer(t, demoserver.VersionComplete), &out)
	env.DiscoverAssets = true

	res := suites.Backend(context.Background(), env)

	assert.True(t, res.OK)
	assert.Equal(t, 4, strings.Count(out.String(), " - Available\n"))
}

func TestBackend_EmitsEvents(t *testing.T) {
	t.Parallel()
	var events []check.Event
	var out bytes.Buffer
	env := liveEnv(t, stereoServer(t, demoserver.VersionComplete), &out)
	env.Sink = func(ev check.Event) { events = append(events, ev) }

	suites.Backend(context.Background(), env)

	require.Len(t, events, 8)
	assert.Equal(t, check.EventTestStarted, events[0].Kind)
	assert.Equal(t, "Main Page Load", events[0].Test)
	assert.Equal(t, check.EventTestFinished, events[7].Kind)
	require.NotNil(t, events[7].Result)
	assert.Equal(t, "CSS Styling", events[7].Result.Name)
}

func TestFrontend_AllPass(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	env := liveEnv(t, stereoServer(t, demoserver.VersionComplete), &out)

	res := suites.Frontend(context.Background(), env)

	assert.True(t, res.OK)
	assert.Equal(t, 7, res.Summary.Run)

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "🎵 99 CENTS CAR STEREO PLAYER - FRONTEND TESTING\n"+strings.Repeat("=", 55)+"\n"))
	assert.Contains(t, text, "✅ Page loaded successfully\n")
	assert.Contains(t, text, "  ✅ Deck dimensions defined: 700x218px\n")
	assert.Contains(t, text, "  ✅ Correct Alpine faceplate dimensions\n")
	assert.Contains(t, text, "  ✅ Play button positioned at left:52px, top:120px\n")
	assert.Contains(t, text, "  ✅ Initial ticker text: '99 CENTS STEREO - PRESS PLAY'\n")
	assert.Contains(t, text, "  ✅ Found 3 tracks configured\n")
	assert.Contains(t, text, "    ✅ track3.mp3 configured\n")
	assert.Contains(t, text, "Tests passed: 7/7\n")
	assert.Contains(t, text, "🎉 ALL FRONTEND TESTS PASSED!\n")
	assert.Contains(t, text, "6. ⚠️ Browser testing needed: Cross-browser compatibility\n")
}

func TestFrontend_Regressed(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	env := liveEnv(t, stereoServer(t, demoserver.VersionRegressed), &out)

	res := suites.Frontend(context.Background(), env)

	assert.False(t, res.OK)
	text := out.String()
	assert.Contains(t, text, "  ❌ D key for debug mode not found\n")
	assert.Contains(t, text, "  ❌ Debug toggle functionality not found\n")
	assert.Contains(t, text, "Tests passed: 5/7\n")
	assert.Contains(t, text, "⚠️ Some frontend tests had issues\n")
	assert.Contains(t, text, "📋 TESTING RECOMMENDATIONS:")
}

func TestFrontend_LoadFailureSkipsTests(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	env := dummyEnv(t, &testutil.DummyWebClient{}, &out)

	res := suites.Frontend(context.Background(), env)

	assert.False(t, res.OK)
	assert.Equal(t, 0, res.Summary.Run)
	assert.Contains(t, out.String(), "❌ Failed to load the main page\n")
	assert.NotContains(t, out.String(), "🔍 Testing")
}

func TestFrontend_LoadErrorSkipsTests(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	env := dummyEnv(t, &testutil.DummyWebClient{FailURLs: map[string]bool{"http://stereo.local": true}}, &out)

	res := suites.Frontend(context.Background(), env)

	assert.False(t, res.OK)
	assert.Contains(t, out.String(), "❌ Failed to load the main page\n")
}

func TestFrontend_UnexpectedDimensionsWarnOnly(t *testing.T) {
	t.Parallel()
	body := `:root { --w: 640px; --h: 200px; --scale: 1; } alpine_faceplate.png @media`
	wc := &testutil.DummyWebClient{Pages: map[string]testutil.DummyResponse{
		"http://stereo.local": {Status: 200, Body: body},
	}}
	var out bytes.Buffer
	env := dummyEnv(t, wc, &out)

	res := suites.Frontend(context.Background(), env)

	require.NotEmpty(t, res.Summary.Results)
	assert.True(t, res.Summary.Results[0].Passed)
	assert.Contains(t, out.String(), "  ⚠️ Unexpected dimensions (expected 700x218)\n")
}

func TestReport_AllSections(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, demoserver.WriteAppRoot(root, demoserver.VersionComplete))

	var out bytes.Buffer
	base := stereoServer(t, demoserver.VersionComplete)
	env := liveEnv(t, base, &out)
	env.AppRoot = root
	env.Now = func() time.Time { return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC) }

	res := suites.Report(context.Background(), env)

	assert.True(t, res.OK)
	assert.Equal(t, 9, res.Summary.Run)
	assert.Equal(t, 9, res.Summary.Passed)

	text := out.String()
	assert.Contains(t, text, "Test Date: 2025-03-14 09:26:53\n")
	assert.Contains(t, text, "Application URL: "+base+"\n")
	assert.Contains(t, text, "✅ Application loads successfully\n   Status Code: 200\n")
	assert.Contains(t, text, "   Content Type: text/html; charset=utf-8\n")
	assert.Contains(t, text, "\n2. FILE STRUCTURE\n"+strings.Repeat("-", 20)+"\n")
	assert.Contains(t, text, "✅ Audio track 3: ")
	assert.Contains(t, text, "✅ HTML5 doctype\n")
	assert.Contains(t, text, "   DOM ticker: \"99 CENTS STEREO - PRESS PLAY\"\n")
	assert.Contains(t, text, "   DOM status: \"STOPPED\"\n")
	assert.Contains(t, text, "   Audio element: #player\n")
	assert.Contains(t, text, "   Buttons: Play/Pause (#playBtn), Next track (#nextBtn)\n")
	assert.Contains(t, text, "   Sliders: #vol\n")
	assert.Contains(t, text, "✅ Deck dimensions (700x218px)\n")
	assert.Contains(t, text, "✅ Track switching\n")
	assert.Contains(t, text, "✅ Volume slider positioned at: left:520px, top:150px\n")
	assert.Contains(t, text, "✅ Ticker display positioned at: left:240px, top:70px\n")
	assert.Contains(t, text, "✅ track2.mp3 configured in playlist\n")
	assert.Contains(t, text, "✅ track1.mp3 is placeholder (as expected)\n")
	assert.Contains(t, text, "1. Open "+base+" in Chrome/Edge browser\n")
	assert.Contains(t, text, "10. Replace placeholder MP3s with real audio files for full functionality\n")
	assert.Contains(t, text, "🎉 OVERALL STATUS: READY FOR DEPLOYMENT\n")
}

func TestReport_MissingFilesAreInformational(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	env := liveEnv(t, stereoServer(t, demoserver.VersionComplete), &out)
	env.AppRoot = t.TempDir()

	res := suites.Report(context.Background(), env)

	assert.True(t, res.OK)
	assert.Less(t, res.Summary.Passed, res.Summary.Run)
	text := out.String()
	assert.Contains(t, text, "❌ Main application file: Missing\n")
	assert.Contains(t, text, "❌ track3.mp3 read error: ")
	assert.Contains(t, text, "FINAL ASSESSMENT")
}

func TestReport_InaccessibleIsFatal(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{Pages: map[string]testutil.DummyResponse{
		"http://stereo.local": {Status: 500, Body: "boom"},
	}}
	var out bytes.Buffer
	env := dummyEnv(t, wc, &out)

	res := suites.Report(context.Background(), env)

	assert.False(t, res.OK)
	assert.Equal(t, 1, res.Summary.Run)
	assert.Contains(t, out.String(), "❌ Application failed to load (Status: 500)\n")
	assert.NotContains(t, out.String(), "FINAL ASSESSMENT")
}

func TestReport_NetworkErrorIsFatal(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	env := dummyEnv(t, &testutil.DummyWebClient{FailURLs: map[string]bool{"http://stereo.local": true}}, &out)

	res := suites.Report(context.Background(), env)

	assert.False(t, res.OK)
	assert.Contains(t, out.String(), "❌ Application not accessible: ")
}

func TestReport_EmitsEventsForEverySection(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, demoserver.WriteAppRoot(root, demoserver.VersionComplete))

	var events []check.Event
	var out bytes.Buffer
	env := liveEnv(t, stereoServer(t, demoserver.VersionComplete), &out)
	env.AppRoot = root
	env.Sink = func(ev check.Event) { events = append(events, ev) }

	res := suites.Report(context.Background(), env)

	require.Len(t, events, 2*res.Summary.Run)
	assert.Equal(t, check.EventTestStarted, events[0].Kind)
	assert.Equal(t, "1. APPLICATION ACCESSIBILITY", events[0].Test)
	assert.Equal(t, check.EventTestFinished, events[1].Kind)
	require.NotNil(t, events[1].Result)
	assert.True(t, events[1].Result.Passed)
	assert.Equal(t, "report", events[1].Suite)
}

func TestReport_InaccessibleStillEmitsEvents(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{Pages: map[string]testutil.DummyResponse{
		"http://stereo.local": {Status: 503},
	}}
	var events []check.Event
	var out bytes.Buffer
	env := dummyEnv(t, wc, &out)
	env.Sink = func(ev check.Event) { events = append(events, ev) }

	suites.Report(context.Background(), env)

	require.Len(t, events, 2)
	require.NotNil(t, events[1].Result)
	assert.Equal(t, "1. APPLICATION ACCESSIBILITY", events[1].Result.Name)
	assert.False(t, events[1].Result.Passed)
}

func TestLookup(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"backend", "frontend", "report"}, suites.Names())

	for _, name := range suites.Names() {
		s, err := suites.Lookup(name)
		require.NoError(t, err)
		assert.NotNil(t, s)
	}

	_, err := suites.Lookup(" Backend ")
	assert.NoError(t, err)

	_, err = suites.Lookup("integration")
	assert.True(t, errors.Is(err, suites.ErrUnknownSuite))
}

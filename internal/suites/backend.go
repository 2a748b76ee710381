package suites

import (
	"context"
	"net/http"
	"strings"

	"github.com/raysh454/stereocheck/internal/check"
	"github.com/raysh454/stereocheck/internal/enumerate"
	"github.com/raysh454/stereocheck/internal/fetcher"
	"github.com/raysh454/stereocheck/internal/logging"
)

// Backend checks that the server delivers the page and its static files.
// Every test fetches the page again on its own.
func Backend(ctx context.Context, env *Env) Outcome {
	env.println("🎵 99 CENTS CAR STEREO PLAYER - BACKEND TESTING")
	env.println(strings.Repeat("=", 50))

	r := check.NewRunner("backend", env.out(), env.Sink, env.Logger)
	var last *fetcher.Page

	load := func(ctx context.Context) (*fetcher.Page, error) {
		page, err := env.Fetcher.Page(ctx, env.BaseURL)
		if err != nil {
			return nil, err
		}
		last = page
		return page, nil
	}

	r.Run(ctx, "Main Page Load", func(ctx context.Context) (bool, error) {
		page, err := load(ctx)
		if err != nil {
			return false, err
		}
		if !page.OK() {
			r.Printf("Expected status 200, got %d\n", page.StatusCode)
			return false, nil
		}
		if missing, ok := check.FirstMissing(page.Body, mainPageElements...); ok {
			r.Printf("Missing required element: %s\n", missing)
			return false, nil
		}
		r.Printf("Page size: %d bytes\n", page.Size())
		return true, nil
	})

	r.Run(ctx, "Assets Availability", func(ctx context.Context) (bool, error) {
		assets := backendAssets
		if env.DiscoverAssets && last != nil {
			assets = enumerate.Merge(assets, enumerate.Assets(last.Body))
		}

		allPassed := true
		for _, asset := range assets {
			status, err := env.Fetcher.Head(ctx, fetcher.JoinURL(env.BaseURL, asset))
			switch {
			case err != nil:
				r.Printf("  ❌ %s - Error: %s\n", asset, err)
				env.logger().Debug("asset probe failed", logging.Field{Key: "asset", Value: asset}, logging.Field{Key: "error", Value: err})
				allPassed = false
			case status == http.StatusOK:
				r.Printf("  ✅ %s - Available\n", asset)
			default:
				r.Printf("  ❌ %s - Status %d\n", asset, status)
				allPassed = false
			}
		}
		return allPassed, nil
	})

	r.Run(ctx, "HTML Structure", func(ctx context.Context) (bool, error) {
		page, err := load(ctx)
		if err != nil {
			return false, err
		}
		if missing := check.Missing(page.Body, backendJS...); len(missing) > 0 {
			r.Printf("Missing JavaScript functionality: %s\n", listRepr(missing))
			return false, nil
		}
		r.Println("All essential JavaScript functionality present")
		return true, nil
	})

	r.Run(ctx, "CSS Styling", func(ctx context.Context) (bool, error) {
		page, err := load(ctx)
		if err != nil {
			return false, err
		}
		if missing := check.Missing(page.Body, backendCSS...); len(missing) > 0 {
			r.Printf("Missing CSS functionality: %s\n", listRepr(missing))
			return false, nil
		}
		r.Println("All essential CSS styling present")
		return true, nil
	})

	env.printf("\n📊 BACKEND TEST RESULTS\n")
	env.printf("Tests passed: %d/%d\n", r.TestsPassed(), r.TestsRun())

	ok := r.AllPassed()
	if ok {
		env.println("🎉 ALL BACKEND TESTS PASSED!")
		env.println("✅ Application is ready for frontend testing")
	} else {
		env.println("❌ Some backend tests failed")
	}

	return Outcome{Summary: r.Summary(env.BaseURL), OK: ok, Page: last}
}

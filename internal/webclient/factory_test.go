package webclient_test

import (
	"context"
	"testing"

	"github.com/raysh454/stereocheck/internal/logging"
	"github.com/raysh454/stereocheck/internal/webclient"
)

func TestNewWebClient_DefaultBackend(t *testing.T) {
	t.Parallel()
	client, err := webclient.NewWebClient(webclient.Config{}, logging.Nop())
	if err != nil {
		t.Fatalf("Failed to create default client: %v", err)
	}
	defer client.Close()
	if _, ok := client.(*webclient.NetHTTPClient); !ok {
		t.Fatalf("expected *NetHTTPClient, got %T", client)
	}
}

func TestNewWebClient_FastHTTP(t *testing.T) {
	t.Parallel()
	client, err := webclient.NewWebClient(webclient.Config{Client: "FastHTTP"}, nil)
	if err != nil {
		t.Fatalf("Failed to create fasthttp client: %v", err)
	}
	defer client.Close()
	if _, ok := client.(*webclient.FastHTTPClient); !ok {
		t.Fatalf("expected *FastHTTPClient, got %T", client)
	}
}

func TestNewWebClient_RateLimitedWrapper(t *testing.T) {
	t.Parallel()
	client, err := webclient.NewWebClient(webclient.Config{RequestsPerSecond: 5}, nil)
	if err != nil {
		t.Fatalf("NewWebClient: %v", err)
	}
	defer client.Close()
	if _, ok := client.(*webclient.RateLimited); !ok {
		t.Fatalf("expected *RateLimited, got %T", client)
	}
}

func TestNewWebClient_UnknownBackend(t *testing.T) {
	t.Parallel()
	client, err := webclient.NewWebClient(webclient.Config{Client: "unknown"}, nil)
	if err == nil {
		t.Fatal("Expected error for unknown backend, got nil")
	}
	if client != nil {
		t.Fatal("Expected nil client for unknown backend")
	}
}

func TestRegisterBackend_Custom(t *testing.T) {
	t.Parallel()
	webclient.RegisterBackend("Custom-Test", func(cfg webclient.Config, logger logging.Logger) (webclient.WebClient, error) {
		return webclient.NewNetHTTPClient(cfg, logger, nil)
	})

	found := false
	for _, b := range webclient.ListBackends() {
		if b == "custom-test" {
			found = true
		}
	}
	if !found {
		t.Fatalf("custom backend not listed: %v", webclient.ListBackends())
	}

	client, err := webclient.NewWebClient(webclient.Config{Client: "custom-test"}, nil)
	if err != nil {
		t.Fatalf("NewWebClient: %v", err)
	}
	_ = client.Close()
}

func TestChromedpClient_RejectsNonGET(t *testing.T) {
	t.Parallel()
	client, err := webclient.NewChromedpClient(webclient.Config{}, nil)
	if err != nil {
		t.Skipf("chromedp allocator unavailable: %v", err)
	}
	defer client.Close()

	if _, err := client.Head(context.Background(), "http://example.com"); err == nil {
		t.Fatal("expected error for HEAD request")
	}
}

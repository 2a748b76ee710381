package server

import (
	"github.com/raysh454/stereocheck/internal/app"
	"github.com/raysh454/stereocheck/internal/logging"
)

type Config struct {
	// ListenAddr is the HTTP listen address for the API server.
	ListenAddr string

	// AppConfig configures the orchestrator the server creates.
	AppConfig *app.Config

	Logger logging.Logger
}

package server

import "github.com/swaggo/swag"

//go:generate swag init -g internal/server/server.go -o docs/swagger

// @title stereocheck API
// @version 0.1
// @description Run the car stereo page checks and browse their history.
// @contact.name stereocheck maintainers
// @contact.url https://github.com/raysh454/stereocheck
// @BasePath /

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "stereocheck maintainers",
            "url": "https://github.com/raysh454/stereocheck"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/suites": {
            "get": {
                "produces": ["application/json"],
                "summary": "List runnable suites",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/server.SuitesResponse"}}}
            }
        },
        "/suites/{suite}/runs": {
            "post": {
                "produces": ["application/json"],
                "summary": "Run a suite and wait for the result",
                "parameters": [{"type": "string", "description": "backend, frontend or report", "name": "suite", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/app.RunResult"}},
                    "404": {"description": "Unknown suite", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/suites/{suite}/jobs": {
            "post": {
                "produces": ["application/json"],
                "summary": "Start a suite in the background",
                "parameters": [{"type": "string", "description": "backend, frontend or report", "name": "suite", "in": "path", "required": true}],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/app.Job"}},
                    "404": {"description": "Unknown suite", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/runs": {
            "get": {
                "produces": ["application/json"],
                "summary": "List recorded runs, newest first",
                "parameters": [{"type": "integer", "description": "Maximum runs (default 50, 0 for all)", "name": "limit", "in": "query"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.RunsResponse"}},
                    "400": {"description": "Invalid limit", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/runs/{runID}": {
            "get": {
                "produces": ["application/json"],
                "summary": "Get a run with its test results",
                "parameters": [{"type": "string", "name": "runID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/tracker.Run"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/runs/{runID}/drift": {
            "get": {
                "produces": ["application/json"],
                "summary": "Page changes since the previous run of the same base URL",
                "parameters": [{"type": "string", "name": "runID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/tracker.Drift"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/jobs": {
            "get": {
                "produces": ["application/json"],
                "summary": "List jobs, oldest first",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/app.Job"}}}}
            }
        },
        "/jobs/{jobID}": {
            "get": {
                "produces": ["application/json"],
                "summary": "Get a job",
                "parameters": [{"type": "string", "name": "jobID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/app.Job"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            },
            "delete": {
                "summary": "Cancel a job",
                "parameters": [{"type": "string", "name": "jobID", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "Canceled"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/ws/runs/{suite}": {
            "get": {
                "summary": "Run a suite and stream job events over a WebSocket",
                "parameters": [{"type": "string", "name": "suite", "in": "path", "required": true}],
                "responses": {
                    "101": {"description": "Switching Protocols"},
                    "404": {"description": "Unknown suite", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "server.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "server.SuitesResponse": {
            "type": "object",
            "properties": {
                "suites": {"type": "array", "items": {"type": "string"}},
                "base_url": {"type": "string"}
            }
        },
        "server.RunsResponse": {
            "type": "object",
            "properties": {"runs": {"type": "array", "items": {"$ref": "#/definitions/tracker.Run"}}}
        },
        "check.Result": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "passed": {"type": "boolean"},
                "error": {"type": "string"},
                "duration": {"type": "integer"}
            }
        },
        "check.Summary": {
            "type": "object",
            "properties": {
                "suite": {"type": "string"},
                "base_url": {"type": "string"},
                "tests_run": {"type": "integer"},
                "tests_passed": {"type": "integer"},
                "results": {"type": "array", "items": {"$ref": "#/definitions/check.Result"}}
            }
        },
        "app.RunResult": {
            "type": "object",
            "properties": {
                "suite": {"type": "string"},
                "ok": {"type": "boolean"},
                "summary": {"$ref": "#/definitions/check.Summary"},
                "report": {"type": "string"},
                "run": {"$ref": "#/definitions/tracker.Run"},
                "drift": {"$ref": "#/definitions/tracker.Drift"}
            }
        },
        "app.Job": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "suite": {"type": "string"},
                "status": {"type": "string", "enum": ["pending", "running", "done", "failed", "canceled"]},
                "error": {"type": "string"},
                "started_at": {"type": "string"},
                "ended_at": {"type": "string"},
                "result": {"$ref": "#/definitions/app.RunResult"}
            }
        },
        "tracker.Run": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "suite": {"type": "string"},
                "base_url": {"type": "string"},
                "started_at": {"type": "string"},
                "finished_at": {"type": "string"},
                "tests_run": {"type": "integer"},
                "tests_passed": {"type": "integer"},
                "ok": {"type": "boolean"},
                "page_hash": {"type": "string"},
                "results": {"type": "array", "items": {"$ref": "#/definitions/check.Result"}}
            }
        },
        "tracker.Chunk": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["added", "removed"]},
                "content": {"type": "string"}
            }
        },
        "tracker.Drift": {
            "type": "object",
            "properties": {
                "base_run_id": {"type": "string"},
                "head_run_id": {"type": "string"},
                "added": {"type": "integer"},
                "removed": {"type": "integer"},
                "chunks": {"type": "array", "items": {"$ref": "#/definitions/tracker.Chunk"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "stereocheck API",
	Description:      "Run the car stereo page checks and browse their history.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

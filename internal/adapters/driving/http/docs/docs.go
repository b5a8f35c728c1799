// Package docs registers the OpenAPI document of the /api/v1 endpoints.
// It follows the layout swag init emits so swag.ReadDoc serves it; keep it
// in step with the @Router annotations in handlers.go.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/check": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Queries the database version, pings the API and the lock backend",
                "produces": ["application/json"],
                "tags": ["Sync"],
                "summary": "Connectivity check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.CheckResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "503": {"description": "A dependency is unreachable", "schema": {"$ref": "#/definitions/http.CheckResponse"}}
                }
            }
        },
        "/runs": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Lists recorded runs, newest first. Requires RUN_HISTORY.",
                "produces": ["application/json"],
                "tags": ["Sync"],
                "summary": "List runs",
                "parameters": [
                    {"type": "integer", "default": 20, "description": "Maximum number of runs", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.SyncRun"}}},
                    "400": {"description": "Invalid limit", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Run history disabled", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/status": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Reports whether a run is active, the last outcome and the next scheduled run",
                "produces": ["application/json"],
                "tags": ["Sync"],
                "summary": "Scheduler status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/driving.SchedulerStatus"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/sync": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Starts a run in the background. The body is optional.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Sync"],
                "summary": "Trigger a sync",
                "parameters": [
                    {"description": "Run options", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/http.TriggerSyncRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/http.StatusResponse"}},
                    "400": {"description": "Invalid request body or resource", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "409": {"description": "A run is already active", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "503": {"description": "Scheduler stopped", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.SyncRun": {
            "type": "object",
            "properties": {
                "completed_at": {"type": "string"},
                "credit_notes_inserted": {"type": "integer"},
                "error": {"type": "string"},
                "id": {"type": "string"},
                "invoices_inserted": {"type": "integer"},
                "started_at": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "driving.SchedulerStatus": {
            "type": "object",
            "properties": {
                "busy": {"type": "boolean"},
                "interval": {"type": "integer"},
                "last_error": {"type": "string"},
                "last_run_at": {"type": "string"},
                "last_run_id": {"type": "string"},
                "next_run_at": {"type": "string"},
                "running": {"type": "boolean"}
            }
        },
        "http.CheckResponse": {
            "description": "Connectivity check result",
            "type": "object",
            "properties": {
                "api_reachable": {"type": "boolean"},
                "database_version": {"type": "string"},
                "error": {"type": "string"},
                "lock_backend": {"type": "string"}
            }
        },
        "http.ErrorResponse": {
            "description": "API error response",
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "invalid request body"}
            }
        },
        "http.StatusResponse": {
            "description": "Simple status response",
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "ok"}
            }
        },
        "http.TriggerSyncRequest": {
            "description": "On-demand sync options",
            "type": "object",
            "properties": {
                "dry_run": {"type": "boolean"},
                "resources": {"type": "array", "items": {"type": "string"}, "example": ["invoices"]}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "JWT Bearer token minted by \"unleashed-sync token\". Format: \"Bearer {token}\"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Unleashed Sync API",
	Description:      "Health, run history and on-demand triggers for the Unleashed credit note and invoice importer.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

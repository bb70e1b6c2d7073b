// Package docs registers the OpenAPI document served under /swagger.
// Regenerate with: swag init -g cmd/server/main.go -o docs
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
        "/health": {
            "get": {"tags": ["system"], "summary": "Service health", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}
        },
        "/metrics": {
            "get": {"tags": ["system"], "summary": "Runtime and request metrics", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}}
        },
        "/api/ingest": {
            "post": {
                "tags": ["ingest"],
                "summary": "Ingest a GitHub repository or Hugging Face model",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/types.IngestRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.IngestResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/score": {
            "post": {
                "tags": ["score"],
                "summary": "Compute a Frugal Score",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/types.ScoreRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.FrugalScore"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/tools": {
            "get": {"tags": ["tools"], "summary": "List approved tools", "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "in": "query", "name": "category"},
                    {"type": "integer", "in": "query", "name": "limit"}
                ],
                "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["tools"], "summary": "Submit a tool", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"type": "object"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}}}
        },
        "/api/tools/{slug}": {
            "get": {"tags": ["tools"], "summary": "Get a tool", "produces": ["application/json"],
                "parameters": [{"type": "string", "in": "path", "name": "slug", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}}},
            "put": {"tags": ["tools"], "summary": "Edit a tool", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "in": "path", "name": "slug", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}}
        },
        "/api/tools/{slug}/views": {
            "post": {"tags": ["tools"], "summary": "Count a tool page view",
                "parameters": [{"type": "string", "in": "path", "name": "slug", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}}
        },
        "/api/leaderboard": {
            "get": {"tags": ["leaderboard"], "summary": "Ranked leaderboard tab", "produces": ["application/json"],
                "parameters": [{"type": "string", "in": "query", "name": "tab", "enum": ["frugal50", "edge", "tiny", "opensource", "trending"]}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/api/leaderboard/fresh": {
            "get": {"tags": ["leaderboard"], "summary": "Most recently approved tools", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}}
        },
        "/api/admin/tools": {
            "get": {"tags": ["admin"], "summary": "Moderation queue and stats", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}}
        },
        "/api/admin/tools/{id}/status": {
            "patch": {"tags": ["admin"], "summary": "Record a moderation decision", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "in": "path", "name": "id", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/tools.StatusRequest"}}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}}
        }
    },
    "definitions": {
        "errors.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "category": {"type": "string"},
                "code": {"type": "string"}
            }
        },
        "types.IngestRequest": {
            "type": "object",
            "required": ["repo_id"],
            "properties": {"repo_id": {"type": "string", "example": "TheBloke/Mistral-7B-GGUF"}}
        },
        "types.VettingResult": {
            "type": "object",
            "properties": {
                "has_weights": {"type": "boolean"},
                "license_ok": {"type": "boolean"},
                "is_active": {"type": "boolean"},
                "detected_keywords": {"type": "array", "items": {"type": "string"}},
                "flags": {"type": "array", "items": {"type": "string"}}
            }
        },
        "types.IngestResult": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "tagline": {"type": "string"},
                "description": {"type": "string"},
                "url": {"type": "string"},
                "source": {"type": "string", "enum": ["github", "huggingface"]},
                "analysis": {"$ref": "#/definitions/types.VettingResult"}
            }
        },
        "types.ScoreRequest": {
            "type": "object",
            "properties": {
                "min_ram": {"type": "string", "enum": ["< 1GB", "4GB", "8GB", "16GB", "32GB+"]},
                "storage_footprint": {"type": "string", "example": "500MB"},
                "is_offline_capable": {"type": "boolean"},
                "supported_hardware": {"type": "array", "items": {"type": "string", "enum": ["CPU", "GPU", "Edge/NPU", "Apple Silicon"]}},
                "deployment_context": {"type": "array", "items": {"type": "string", "enum": ["Edge / On-device", "On-prem / Sovereign", "Enterprise Backend"]}},
                "has_weights": {"type": "boolean"},
                "license_ok": {"type": "boolean"}
            }
        },
        "types.FrugalScore": {
            "type": "object",
            "properties": {
                "footprint": {"type": "integer"},
                "hardware": {"type": "integer"},
                "energy": {"type": "integer"},
                "tco": {"type": "integer"},
                "data": {"type": "integer"},
                "total": {"type": "integer"}
            }
        },
        "tools.StatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["pending", "under_review", "approved", "rejected", "needs_clarification"]},
                "feedback": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Frugal AI Hub API",
	Description:      "Ingestion, vetting and Frugal Score ranking for resource-efficient AI tools.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// Package docs registers the Swagger 2.0 document served at /swagger. It is
// maintained by hand in the layout swag init produces; keep it in step with
// the routes in internal/handlers.
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
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/auth/sign-up": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register an operator",
                "parameters": [
                    {"description": "operator", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.SignUpRequest"}}
                ],
                "responses": {
                    "200": {"description": "id, role", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Name taken", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/auth/sign-in": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Sign in",
                "description": "Returns a bearer token for the REST API and the method channel.",
                "parameters": [
                    {"description": "credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.Credentials"}}
                ],
                "responses": {
                    "200": {"description": "token", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Invalid credentials", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/ws/time_change_listener": {
            "get": {
                "tags": ["channel"],
                "summary": "Method channel",
                "description": "Upgrades to a websocket. The server pushes {\"type\":\"method\",\"method\":\"onTimeChanged\"} to every client. Command frames {\"id\",\"method\",\"arguments\"} need a controller token, passed as a Bearer header or the access_token query parameter; clients without a token only listen.",
                "parameters": [
                    {"type": "string", "description": "bearer token", "name": "access_token", "in": "query"}
                ],
                "responses": {
                    "101": {"description": "Switching Protocols"},
                    "401": {"description": "Invalid token", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/guard/state": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["guard"],
                "summary": "Get guard state",
                "description": "Visibility, screen power, notification eligibility and the diagnostics flag.",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.GuardState"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/guard/visibility": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["guard"],
                "summary": "Report visibility",
                "parameters": [
                    {"description": "foreground or background", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.StateRequest"}}
                ],
                "responses": {
                    "403": {"description": "Forbidden: observer token", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.GuardState"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/guard/screen": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["guard"],
                "summary": "Report screen power",
                "parameters": [
                    {"description": "on or off", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.StateRequest"}}
                ],
                "responses": {
                    "403": {"description": "Forbidden: observer token", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.GuardState"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/guard/signal": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["guard"],
                "summary": "Inject a time signal",
                "parameters": [
                    {"description": "clock, timezone or date", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.SignalRequest"}}
                ],
                "responses": {
                    "403": {"description": "Forbidden: observer token", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "202": {"description": "Accepted", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/guard/stats": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["guard"],
                "summary": "Gate and delivery counters",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.GuardStats"}}
                }
            }
        },
        "/api/v1/commands/{method}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["commands"],
                "summary": "Invoke a method channel command",
                "parameters": [
                    {"enum": ["reset", "configureLogging", "getPlatformVersion"], "type": "string", "description": "Command name", "name": "method", "in": "path", "required": true},
                    {"description": "Command arguments", "name": "body", "in": "body", "schema": {"type": "object"}}
                ],
                "responses": {
                    "403": {"description": "Forbidden: observer token", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "200": {"description": "method, result", "schema": {"type": "object", "additionalProperties": true}},
                    "501": {"description": "Not Implemented", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/logs/": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["logs"],
                "summary": "List gate decisions",
                "parameters": [
                    {"type": "string", "description": "Start of range", "name": "from", "in": "query"},
                    {"type": "string", "description": "End of range. Date-only treated as end of day.", "name": "to", "in": "query"},
                    {"enum": ["clock", "timezone", "date"], "type": "string", "description": "Signal kind", "name": "kind", "in": "query"},
                    {"enum": ["NOTIFIED", "SUPPRESSED"], "type": "string", "description": "Outcome", "name": "decision", "in": "query"},
                    {"type": "integer", "description": "Maximum rows (capped at 1000)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "count, decisions", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "handlers.Credentials": {
            "type": "object",
            "required": ["name", "password"],
            "properties": {
                "name": {"type": "string", "example": "ops"},
                "password": {"type": "string"}
            }
        },
        "handlers.SignUpRequest": {
            "type": "object",
            "required": ["name", "password"],
            "properties": {
                "name": {"type": "string", "example": "ops"},
                "password": {"type": "string"},
                "role": {"type": "string", "enum": ["observer", "controller"], "example": "controller"}
            }
        },
        "handlers.SignalRequest": {
            "type": "object",
            "required": ["kind"],
            "properties": {"kind": {"type": "string", "example": "timezone"}}
        },
        "handlers.StateRequest": {
            "type": "object",
            "required": ["state"],
            "properties": {"state": {"type": "string", "example": "background"}}
        },
        "models.GuardState": {
            "type": "object",
            "properties": {
                "eligible": {"type": "boolean"},
                "logging_enabled": {"type": "boolean"},
                "screen_power": {"type": "string"},
                "visibility": {"type": "string"}
            }
        },
        "models.GuardStats": {
            "type": "object",
            "properties": {
                "clients": {"type": "integer"},
                "delivered": {"type": "integer"},
                "dropped": {"type": "integer"},
                "enqueued": {"type": "integer"},
                "failed": {"type": "integer"},
                "notified": {"type": "integer"},
                "received": {"type": "integer"},
                "suppressed": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "timeguard API",
	Description:      "Time-change detection and notification gating daemon.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// Package docs registers the OpenAPI description served at /swagger.
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
        "/diaries/{id}/emotion": {
            "get": {
                "produces": ["application/json"],
                "tags": ["DiaryEmotions"],
                "summary": "Get the emotion stored for a diary",
                "operationId": "getDiaryEmotion",
                "parameters": [{"type": "integer", "description": "Diary ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Messenger"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/domain.Messenger"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/domain.Messenger"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["DiaryEmotions"],
                "summary": "Score a diary and store the result",
                "operationId": "analyzeDiary",
                "parameters": [
                    {"type": "integer", "description": "Diary ID", "name": "id", "in": "path", "required": true},
                    {"description": "Diary text", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.AnalyzeDiaryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Messenger"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/domain.Messenger"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/domain.Messenger"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["DiaryEmotions"],
                "summary": "Delete the emotion stored for a diary",
                "operationId": "deleteDiaryEmotion",
                "parameters": [{"type": "integer", "description": "Diary ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Messenger"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/domain.Messenger"}}
                }
            }
        },
        "/diary-emotions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["DiaryEmotions"],
                "summary": "Look up emotions for many diaries",
                "operationId": "batchDiaryEmotions",
                "parameters": [{"type": "string", "description": "Comma-separated diary ids", "name": "diary_ids", "in": "query", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Messenger"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/accounts/{id}/alerts": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Alerts"],
                "summary": "List an account's alerts (newest first)",
                "operationId": "listAccountAlerts",
                "parameters": [
                    {"type": "integer", "description": "Account ID", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "default": 1, "minimum": 1, "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "default": 20, "maximum": 100, "minimum": 1, "description": "Items per page", "name": "page_size", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Messenger"}}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Alerts"],
                "summary": "Create an alert for an account",
                "operationId": "createAlert",
                "parameters": [
                    {"type": "integer", "description": "Account ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Retry-safe key", "name": "Idempotency-Key", "in": "header"},
                    {"description": "Alert", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CreateAlertBody"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Messenger"}, "headers": {"Idempotency-Replayed": {"type": "string", "description": "true when replayed"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/domain.Messenger"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["Alerts"],
                "summary": "Delete every alert of an account",
                "operationId": "deleteAccountAlerts",
                "parameters": [{"type": "integer", "description": "Account ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Messenger"}}}
            }
        },
        "/alerts/latest": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Alerts"],
                "summary": "Newest alert per account",
                "operationId": "latestAlerts",
                "parameters": [{"type": "string", "description": "Comma-separated account ids", "name": "account_ids", "in": "query", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Messenger"}}}
            }
        },
        "/alerts/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Alerts"],
                "summary": "Get an alert",
                "operationId": "getAlert",
                "parameters": [{"type": "integer", "description": "Alert ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Messenger"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/domain.Messenger"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["Alerts"],
                "summary": "Delete an alert",
                "operationId": "deleteAlert",
                "parameters": [{"type": "integer", "description": "Alert ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Messenger"}}}
            }
        },
        "/alerts/{id}/read": {
            "patch": {
                "produces": ["application/json"],
                "tags": ["Alerts"],
                "summary": "Mark an alert as read",
                "operationId": "markAlertRead",
                "parameters": [{"type": "integer", "description": "Alert ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Messenger"}}}
            }
        }
    },
    "definitions": {
        "domain.Messenger": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 200},
                "message": {"type": "string", "example": "diary emotion found"},
                "data": {}
            }
        },
        "handlers.AnalyzeDiaryRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "content": {"type": "string"}
            }
        },
        "handlers.CreateAlertBody": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "example": "reminder"},
                "title": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string"},
                "code": {"type": "string", "example": "bad_request"},
                "message": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Diary Emotion API",
	Description:      "Emotion analysis results for diaries and per-account alerts.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

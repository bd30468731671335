// Package docs registers the OpenAPI description served at /swagger/*.
package docs

import (
	"strings"

	"github.com/swaggo/swag"
)

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/users": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "List active users",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Response"}}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Create user",
                "parameters": [{"description": "User payload", "name": "user", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.CreateUserInput"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.Response"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/users/bulk": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Create many users",
                "description": "Rows are processed in order; rejected rows are counted, not reported.",
                "parameters": [{"description": "User payloads", "name": "users", "in": "body", "required": true, "schema": {"type": "array", "items": {"$ref": "#/definitions/service.CreateUserInput"}}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Response"}}}
            }
        },
        "/users/search": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Filter users",
                "description": "eliminated=false selects active users, any other value selects soft-deleted ones. When both loggedInBefore and loggedInAfter are given only loggedInAfter applies.",
                "parameters": [
                    {"type": "string", "description": "true or false", "name": "eliminated", "in": "query"},
                    {"type": "string", "description": "Substring of the name", "name": "name", "in": "query"},
                    {"type": "string", "description": "RFC 3339 or YYYY-MM-DD", "name": "loggedInBefore", "in": "query"},
                    {"type": "string", "description": "RFC 3339 or YYYY-MM-DD", "name": "loggedInAfter", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Get active user by id",
                "parameters": [{"type": "integer", "description": "User ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Response"}}}
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Update user",
                "parameters": [
                    {"type": "integer", "description": "User ID", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "user", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.UpdateUserInput"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Response"}}}
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Soft-delete user",
                "parameters": [{"type": "integer", "description": "User ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Response"}}}
            }
        }
    },
    "definitions": {
        "errors.ErrorResponse": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "error": {"type": "string"}}
        },
        "model.Response": {
            "type": "object",
            "properties": {"code": {"type": "integer"}, "message": {}}
        },
        "service.CreateUserInput": {
            "type": "object",
            "properties": {
                "cellphone": {"type": "string"},
                "email": {"type": "string"},
                "name": {"type": "string"},
                "password": {"type": "string"},
                "password_second": {"type": "string"}
            }
        },
        "service.UpdateUserInput": {
            "type": "object",
            "properties": {
                "cellphone": {"type": "string"},
                "name": {"type": "string"},
                "password": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{"http"},
	Title:            "User Accounts API",
	Description:      "Create, read, update, soft-delete, filter and bulk-create user accounts.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

// SetHost points the served docs at host. A leading http:// or https://
// selects the scheme and is stripped from the host.
func SetHost(host string) {
	host = strings.TrimRight(host, "/")
	switch {
	case strings.HasPrefix(host, "https://"):
		SwaggerInfo.Schemes = []string{"https"}
		host = strings.TrimPrefix(host, "https://")
	case strings.HasPrefix(host, "http://"):
		SwaggerInfo.Schemes = []string{"http"}
		host = strings.TrimPrefix(host, "http://")
	}
	SwaggerInfo.Host = host
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

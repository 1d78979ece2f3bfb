// Package docs holds the Swagger document served at /swagger/*.
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
        "/": {
            "get": {
                "produces": ["text/html"],
                "tags": ["order"],
                "summary": "Order form",
                "responses": {
                    "200": {"description": "html page", "schema": {"type": "string"}}
                }
            }
        },
        "/admin": {
            "get": {
                "produces": ["text/html"],
                "tags": ["admin"],
                "summary": "Admin summary of every order",
                "responses": {
                    "200": {"description": "html page", "schema": {"type": "string"}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/admin/live": {
            "get": {
                "produces": ["text/event-stream"],
                "tags": ["admin"],
                "summary": "Get orders as they are placed via Server-Sent Events (SSE)",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/order.PersistedOrder"}}
                }
            }
        },
        "/admin/live/ws": {
            "get": {
                "tags": ["admin"],
                "summary": "Get orders as they are placed over a WebSocket",
                "responses": {
                    "101": {"description": "Switching Protocols", "schema": {"$ref": "#/definitions/order.PersistedOrder"}}
                }
            }
        },
        "/admin/orders": {
            "get": {
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "List every order",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/order.PersistedOrder"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Check the health of the service",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/health.Check"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/health.Check"}}
                }
            }
        },
        "/thankyou": {
            "post": {
                "description": "Invalid submissions are answered with the list of validation messages.",
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["text/html", "application/json"],
                "tags": ["order"],
                "summary": "Submit a new pizza order",
                "parameters": [
                    {"type": "string", "description": "First name", "name": "fname", "in": "formData", "required": true},
                    {"type": "string", "description": "Last name", "name": "lname", "in": "formData", "required": true},
                    {"type": "string", "description": "Email", "name": "email", "in": "formData", "required": true},
                    {"type": "string", "description": "pickup or delivery", "name": "method", "in": "formData", "required": true},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "description": "Toppings", "name": "toppings", "in": "formData"},
                    {"type": "string", "description": "small, med or large", "name": "size", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "validation errors, or the html confirmation", "schema": {"type": "array", "items": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "health.Check": {
            "type": "object",
            "properties": {
                "component": {"$ref": "#/definitions/health.Component"},
                "failures": {"type": "object", "additionalProperties": {"type": "string"}},
                "status": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        },
        "health.Component": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "version": {"type": "string"}
            }
        },
        "order.PersistedOrder": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "email": {"type": "string"},
                "method": {"type": "string"},
                "toppings": {"type": "string"},
                "size": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3000",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Cassiere",
	Description:      "Pizza order intake: order form, confirmation and admin listing.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

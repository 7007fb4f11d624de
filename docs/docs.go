// Package docs holds the Swagger document of the run API.
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
        "/runs": {
            "get": {
                "description": "Summaries of the most recent runs, newest first",
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "List runs",
                "responses": {
                    "200": {
                        "description": "Run summaries",
                        "schema": {"type": "object", "additionalProperties": true}
                    }
                }
            },
            "post": {
                "description": "Run the mining and aggregation engine over the posted captures. Whole-run failures come back as an error document with status 200.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "Create a run",
                "parameters": [
                    {
                        "description": "Captured portal responses",
                        "name": "run",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handler.CreateRunRequest"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Run document",
                        "schema": {"$ref": "#/definitions/handler.RunResponse"}
                    },
                    "400": {
                        "description": "Invalid request payload",
                        "schema": {"type": "object", "additionalProperties": true}
                    }
                }
            }
        },
        "/runs/latest": {
            "get": {
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "Latest run",
                "responses": {
                    "200": {
                        "description": "Run document",
                        "schema": {"$ref": "#/definitions/handler.RunResponse"}
                    },
                    "404": {
                        "description": "No run yet",
                        "schema": {"type": "object", "additionalProperties": true}
                    }
                }
            }
        },
        "/runs/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "Get run",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Run ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Run document",
                        "schema": {"$ref": "#/definitions/handler.RunResponse"}
                    },
                    "400": {
                        "description": "Invalid run ID",
                        "schema": {"type": "object", "additionalProperties": true}
                    },
                    "404": {
                        "description": "Run not found",
                        "schema": {"type": "object", "additionalProperties": true}
                    }
                }
            }
        }
    },
    "definitions": {
        "handler.CreateRunRequest": {
            "type": "object",
            "properties": {
                "days": {"type": "integer"},
                "price_m3": {"type": "number"},
                "responses": {
                    "type": "array",
                    "items": {"type": "object"}
                }
            }
        },
        "handler.RunResponse": {
            "type": "object",
            "properties": {
                "run_id": {"type": "string"},
                "document": {"type": "object"}
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
	Title:            "SEDIF water pipeline API",
	Description:      "Runs the consumption mining and aggregation engine over captured portal responses.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

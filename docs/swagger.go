// Package docs registers the OpenAPI document served under /swagger.
package docs

import "github.com/swaggo/swag"

// @title Content Desk API
// @version 1.0
// @description Collections, facets, load-more paging, bookmarks and news activity.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

func init() {
	swag.Register(swag.Name, &swag.Spec{
		InfoInstanceName: "swagger",
		SwaggerTemplate:  docTemplate,
	})
}

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Content Desk API",
        "description": "Collections, facets, load-more paging, bookmarks and news activity.",
        "version": "1.0.0",
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        }
    },
    "host": "localhost:8080",
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "consumes": ["application/json"],
    "produces": ["application/json"],
    "paths": {
        "/collections": {
            "get": {
                "tags": ["collections"],
                "summary": "List collections with their item counts",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}}
                }
            }
        },
        "/collections/{collection}/items": {
            "get": {
                "tags": ["collections"],
                "summary": "Filtered items inside the visible window",
                "parameters": [
                    {"name": "collection", "in": "path", "required": true, "type": "string"},
                    {"name": "category", "in": "query", "type": "string", "description": "Case-insensitive; 'all' or empty means no filter"},
                    {"name": "subcategory", "in": "query", "type": "string"},
                    {"name": "subsubcategory", "in": "query", "type": "string"},
                    {"name": "clicks", "in": "query", "type": "integer", "description": "Number of load-more clicks since the selection was made"},
                    {"name": "visible", "in": "query", "type": "integer", "description": "Explicit window size, overrides clicks"},
                    {"name": "$filter", "in": "query", "type": "string", "description": "OData filter, e.g. author eq 'Lina Haddad'"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ItemsPage"}},
                    "400": {"description": "Invalid filter", "schema": {"$ref": "#/definitions/Response"}},
                    "404": {"description": "Collection not found", "schema": {"$ref": "#/definitions/Response"}}
                }
            }
        },
        "/collections/{collection}/items/{id}": {
            "get": {
                "tags": ["collections"],
                "summary": "One item with rendered HTML content",
                "parameters": [
                    {"name": "collection", "in": "path", "required": true, "type": "string"},
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}},
                    "404": {"description": "Item not found", "schema": {"$ref": "#/definitions/Response"}}
                }
            }
        },
        "/collections/{collection}/facets": {
            "get": {
                "tags": ["collections"],
                "summary": "Category facets, plus subcategory facets for the current selection",
                "parameters": [
                    {"name": "collection", "in": "path", "required": true, "type": "string"},
                    {"name": "category", "in": "query", "type": "string"},
                    {"name": "subcategory", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}}
                }
            }
        },
        "/collections/{collection}/reload": {
            "post": {
                "tags": ["collections"],
                "summary": "Drop the cached collection and load it again",
                "parameters": [
                    {"name": "collection", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}}
                }
            }
        },
        "/bookmarks": {
            "get": {
                "tags": ["bookmarks"],
                "summary": "Saved item ids for this client, in save order",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}}
                }
            }
        },
        "/bookmarks/{id}/toggle": {
            "post": {
                "tags": ["bookmarks"],
                "summary": "Save or unsave an item",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}}
                }
            }
        },
        "/news/categories": {
            "get": {
                "tags": ["news"],
                "summary": "Backend categories",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}},
                    "502": {"description": "Backend unavailable", "schema": {"$ref": "#/definitions/Response"}}
                }
            }
        },
        "/news/{id}": {
            "get": {
                "tags": ["news"],
                "summary": "News detail; records one view",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}},
                    "404": {"description": "News item not found", "schema": {"$ref": "#/definitions/Response"}},
                    "502": {"description": "Backend unavailable", "schema": {"$ref": "#/definitions/Response"}}
                }
            }
        },
        "/news/{id}/comments": {
            "get": {
                "tags": ["news"],
                "summary": "Comments for a news item",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}}
                }
            },
            "post": {
                "tags": ["news"],
                "summary": "Submit a comment; returns the refreshed list",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CommentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Response"}},
                    "400": {"description": "Empty comment", "schema": {"$ref": "#/definitions/Response"}},
                    "409": {"description": "Submission in progress", "schema": {"$ref": "#/definitions/Response"}}
                }
            }
        },
        "/news/{id}/like": {
            "post": {
                "tags": ["news"],
                "summary": "Record a like and return fresh counters",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}}
                }
            }
        },
        "/news/{id}/share": {
            "post": {
                "tags": ["news"],
                "summary": "Record a share and return fresh counters",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}}
                }
            }
        },
        "/poller/status": {
            "get": {
                "tags": ["poller"],
                "summary": "Background task status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}}
                }
            }
        },
        "/poller/refresh/{target}": {
            "post": {
                "tags": ["poller"],
                "summary": "Run a background task now (counters, trends, fixtures)",
                "parameters": [
                    {"name": "target", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}},
                    "404": {"description": "Unknown target", "schema": {"$ref": "#/definitions/Response"}}
                }
            }
        }
    },
    "definitions": {
        "Response": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {"type": "object"},
                "error": {"type": "string"}
            }
        },
        "ContentItem": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "category": {"type": "string"},
                "subcategory": {"type": "string"},
                "subsubcategory": {"type": "string"},
                "excerpt": {"type": "string"},
                "content": {"type": "string"},
                "image": {"type": "string"},
                "author": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "ItemsPage": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/ContentItem"}},
                "total": {"type": "integer"},
                "visible": {"type": "integer"},
                "has_more": {"type": "boolean"},
                "selection": {"type": "object"}
            }
        },
        "CommentRequest": {
            "type": "object",
            "properties": {
                "author": {"type": "string"},
                "text": {"type": "string"}
            }
        }
    }
}`

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the service.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Header("Content-Type", "application/json")
		c.String(http.StatusOK, swaggerJSON)
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>flocknet — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document describing the service endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "flocknet", "version": "v0.1.0" },
  "paths": {
    "/auth/login": {
      "post": {
        "summary": "Exchange authorization code / login",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"mode":{"type":"string"},"username":{"type":"string"},"password":{"type":"string"},"code":{"type":"string"},"redirect_uri":{"type":"string"}}}}}},
        "responses": { "200": { "description": "tokens returned" } }
      }
    },
    "/auth/refresh": {
      "post": { "summary": "Refresh access token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refresh_token":{"type":"string"}}}}}}, "responses": { "200": { "description": "new access token" }, "401": { "description": "invalid refresh" } } }
    },
    "/auth/logout": {
      "post": { "summary": "Logout and invalidate refresh token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refresh_token":{"type":"string"}}}}}}, "responses": { "200": { "description": "logged out" } } }
    },
    "/api/v1/sessions": {
      "get": { "summary": "List the caller's live session ids", "responses": { "200": { "description": "session list" }, "401": { "description": "unauthenticated" } } }
    },
    "/api/v1/2fa": {
      "get": { "summary": "Current two-factor configuration", "responses": { "200": { "description": "config" }, "401": { "description": "unauthenticated" }, "404": { "description": "user not found" } } }
    },
    "/api/v1/2fa/enable": {
      "post": { "summary": "Enable two-factor and enroll a verification method", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"method":{"type":"string"}}}}}}, "responses": { "200": { "description": "enabled" }, "400": { "description": "invalid method" } } }
    },
    "/api/v1/2fa/disable": {
      "post": { "summary": "Disable two-factor and clear enrolled methods", "responses": { "200": { "description": "disabled" }, "401": { "description": "unauthenticated" }, "404": { "description": "user not found" } } }
    },
    "/api/v1/security/audit": {
      "get": { "summary": "Recent security events for the caller", "responses": { "200": { "description": "event list" }, "401": { "description": "unauthenticated" } } }
    },
    "/api/v1/hashtags/trending": {
      "get": { "summary": "Top hashtags by usage", "parameters": [ { "name": "limit", "in": "query", "schema": { "type": "integer", "default": 10 } } ], "responses": { "200": { "description": "ranked hashtags" }, "400": { "description": "invalid limit" } } }
    },
    "/api/v1/posts": {
      "get": { "summary": "List posts", "responses": { "200": { "description": "posts" } } },
      "post": { "summary": "Create a post", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"text":{"type":"string"},"mediaKey":{"type":"string"}}}}}}, "responses": { "201": { "description": "created" }, "401": { "description": "unauthenticated" } } }
    },
    "/api/v1/media": {
      "post": { "summary": "Upload avatar/attachment (multipart)", "responses": { "201": { "description": "stored" }, "401": { "description": "unauthenticated" } } }
    },
    "/api/v1/me": {
      "get": { "summary": "Current user from verified token", "responses": { "200": { "description": "user or claims" }, "401": { "description": "unauthenticated" } } }
    }
  }
}`

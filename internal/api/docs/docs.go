// Package docs registers the OpenAPI description of the HTTP API with swag so
// gin-swagger can serve it under /swagger.
package docs

import "github.com/swaggo/swag"

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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Create an account",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/dto.RegisterRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.UserResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Exchange credentials for a bearer token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/dto.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.TokenResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/user/profile": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["user"],
                "summary": "Current user",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.UserResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/user/settings/update": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["user"],
                "summary": "Change username and/or background image",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/dto.UpdateSettingsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.UserResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/user/avatar": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["user"],
                "summary": "Upload an avatar (jpg, jpeg, png, gif)",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "formData", "name": "file", "type": "file", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.UserResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/user/background": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["user"],
                "summary": "Upload a background image (jpg, jpeg, png, gif)",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "formData", "name": "file", "type": "file", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.UserResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/metrics": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["telemetry"],
                "summary": "Household power readings",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.MetricsResponse"}}
                }
            }
        },
        "/dashboard-data": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["telemetry"],
                "summary": "Devices, environment and energy chart",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.DashboardDataResponse"}}
                }
            }
        },
        "/devices/{id}/toggle": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["telemetry"],
                "summary": "Toggle a device",
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.MessageResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "tags": ["system"],
                "summary": "Liveness",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.HealthResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.RegisterRequest": {
            "type": "object",
            "required": ["username", "email", "password"],
            "properties": {
                "username": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "dto.LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "dto.TokenResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "token_type": {"type": "string"},
                "expires_in": {"type": "integer"}
            }
        },
        "dto.UserResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "username": {"type": "string"},
                "email": {"type": "string"},
                "avatar_url": {"type": "string"},
                "background_image": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"}
            }
        },
        "dto.UpdateSettingsRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "background_image": {"type": "string"}
            }
        },
        "dto.MetricsResponse": {
            "type": "object",
            "properties": {
                "global_active_power": {"type": "number"},
                "global_reactive_power": {"type": "number"},
                "voltage": {"type": "number"},
                "global_intensity": {"type": "number"},
                "sub_metering_1": {"type": "number"},
                "sub_metering_2": {"type": "number"},
                "sub_metering_3": {"type": "number"},
                "timestamp": {"type": "string", "format": "date-time"}
            }
        },
        "dto.DeviceResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "isOn": {"type": "boolean"},
                "devices": {"type": "integer"},
                "powerUsage": {"type": "number"},
                "powerOnTime": {"type": "string"}
            }
        },
        "dto.EnvironmentResponse": {
            "type": "object",
            "properties": {
                "humidity": {"type": "integer"},
                "temperature": {"type": "integer"}
            }
        },
        "dto.EnergyUsageResponse": {
            "type": "object",
            "properties": {
                "timestamp": {"type": "string"},
                "usage": {"type": "number"},
                "efficiency": {"type": "number"}
            }
        },
        "dto.DashboardDataResponse": {
            "type": "object",
            "properties": {
                "devices": {"type": "array", "items": {"$ref": "#/definitions/dto.DeviceResponse"}},
                "environment": {"$ref": "#/definitions/dto.EnvironmentResponse"},
                "energyData": {"type": "array", "items": {"$ref": "#/definitions/dto.EnergyUsageResponse"}}
            }
        },
        "dto.MessageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "dto.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "time": {"type": "string"},
                "schema_version": {"type": "integer"}
            }
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"},
                "detail": {"type": "string"},
                "code": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "homedash API",
	Description:      "Smart home dashboard backend: accounts, profile settings, image uploads and mocked telemetry.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

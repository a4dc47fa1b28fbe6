// Package docs holds the OpenAPI description served at /swagger.
// Regenerate with: swag init -g cmd/server/main.go -o docs
package docs

import "github.com/swaggo/swag/v2"

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
        "/health": {
            "get": {"tags": ["system"], "summary": "Health check", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "503": {"description": "Base de datos no disponible"}}}
        },
        "/auth/login": {
            "post": {"tags": ["auth"], "summary": "Iniciar sesión", "consumes": ["application/json"], "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}}}
        },
        "/auth/verificar": {
            "get": {"tags": ["auth"], "summary": "Verificar token", "security": [{"BearerAuth": []}], "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}
        },
        "/auth/cambiar-password": {
            "post": {"tags": ["auth"], "summary": "Cambiar contraseña", "security": [{"BearerAuth": []}], "consumes": ["application/json"], "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}}}
        },
        "/proveedores": {
            "get": {"tags": ["proveedores"], "summary": "Listar proveedores", "security": [{"BearerAuth": []}], "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "buscar", "in": "query"}],
                "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["proveedores"], "summary": "Crear proveedor", "security": [{"BearerAuth": []}], "consumes": ["application/json"], "produces": ["application/json"],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/proveedores/{id}": {
            "get": {"tags": ["proveedores"], "summary": "Obtener proveedor", "security": [{"BearerAuth": []}],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"tags": ["proveedores"], "summary": "Actualizar proveedor", "security": [{"BearerAuth": []}],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["proveedores"], "summary": "Eliminar proveedor", "security": [{"BearerAuth": []}],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/inventario": {
            "get": {"tags": ["inventario"], "summary": "Listar artículos", "security": [{"BearerAuth": []}],
                "parameters": [{"type": "string", "name": "buscar", "in": "query"}, {"type": "string", "name": "categoria", "in": "query"}],
                "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["inventario"], "summary": "Crear artículo", "security": [{"BearerAuth": []}],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}
        },
        "/inventario/stock-bajo": {
            "get": {"tags": ["inventario"], "summary": "Artículos con stock bajo", "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/inventario/{id}": {
            "get": {"tags": ["inventario"], "summary": "Obtener artículo", "security": [{"BearerAuth": []}],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"tags": ["inventario"], "summary": "Actualizar artículo", "security": [{"BearerAuth": []}],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["inventario"], "summary": "Eliminar artículo", "security": [{"BearerAuth": []}],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/inventario/{id}/stock": {
            "patch": {"tags": ["inventario"], "summary": "Ajustar stock", "security": [{"BearerAuth": []}],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/inventario/{id}/movimientos": {
            "get": {"tags": ["inventario"], "summary": "Movimientos de stock", "security": [{"BearerAuth": []}],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"type": "integer", "name": "limit", "in": "query"}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/ordenes": {
            "get": {"tags": ["ordenes"], "summary": "Listar órdenes", "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["ordenes"], "summary": "Crear orden y descontar stock", "security": [{"BearerAuth": []}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/ordenes/{id}": {
            "get": {"tags": ["ordenes"], "summary": "Obtener orden con sus líneas", "security": [{"BearerAuth": []}],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"tags": ["ordenes"], "summary": "Actualizar orden", "security": [{"BearerAuth": []}],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["ordenes"], "summary": "Eliminar orden", "security": [{"BearerAuth": []}],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/ordenes/{id}/pdf": {
            "get": {"tags": ["ordenes"], "summary": "Descargar PDF", "security": [{"BearerAuth": []}], "produces": ["application/pdf"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}
        },
        "/facturas": {
            "get": {"tags": ["facturas"], "summary": "Listar facturas", "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["facturas"], "summary": "Crear factura y descontar stock", "security": [{"BearerAuth": []}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/facturas/{id}": {
            "get": {"tags": ["facturas"], "summary": "Obtener factura con sus líneas", "security": [{"BearerAuth": []}],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"tags": ["facturas"], "summary": "Actualizar factura", "security": [{"BearerAuth": []}],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["facturas"], "summary": "Eliminar factura", "security": [{"BearerAuth": []}],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/facturas/{id}/archivo": {
            "post": {"tags": ["facturas"], "summary": "Adjuntar archivo", "security": [{"BearerAuth": []}], "consumes": ["multipart/form-data"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"type": "file", "name": "archivo", "in": "formData", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}},
            "delete": {"tags": ["facturas"], "summary": "Eliminar archivo adjunto", "security": [{"BearerAuth": []}],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/facturas/{id}/pdf": {
            "get": {"tags": ["facturas"], "summary": "Descargar PDF", "security": [{"BearerAuth": []}], "produces": ["application/pdf"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}
        },
        "/ordenes-trabajo": {
            "get": {"tags": ["ordenes-trabajo"], "summary": "Listar órdenes de trabajo", "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["ordenes-trabajo"], "summary": "Crear orden de trabajo y descontar stock", "security": [{"BearerAuth": []}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/ordenes-trabajo/{id}": {
            "get": {"tags": ["ordenes-trabajo"], "summary": "Obtener orden de trabajo", "security": [{"BearerAuth": []}],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"tags": ["ordenes-trabajo"], "summary": "Actualizar orden de trabajo", "security": [{"BearerAuth": []}],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["ordenes-trabajo"], "summary": "Eliminar orden de trabajo", "security": [{"BearerAuth": []}],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/ordenes-trabajo/{id}/pdf": {
            "get": {"tags": ["ordenes-trabajo"], "summary": "Descargar PDF", "security": [{"BearerAuth": []}], "produces": ["application/pdf"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}
        },
        "/cache": {
            "delete": {"tags": ["cache"], "summary": "Invalidar caché", "security": [{"BearerAuth": []}],
                "parameters": [{"type": "string", "name": "pattern", "in": "query"}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/cache/stats": {
            "get": {"tags": ["cache"], "summary": "Estadísticas de caché", "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Bearer token authentication. Format: \"Bearer {token}\"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3000",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Gestión de Compras API",
	Description:      "Backend de compras, inventario y facturación: proveedores, órdenes, facturas y órdenes de trabajo con descuento de stock.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

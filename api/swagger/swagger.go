package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Leave Dashboard API",
        "description": "Leave calendars, monthly summaries and analytics over synced attendance data.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Leave", "description": "Monthly tables, calendars and exports"},
        {"name": "Analytics", "description": "Yearly leave charts"},
        {"name": "Organization", "description": "Department tree"},
        {"name": "Authentication", "description": "Dashboard sessions"},
        {"name": "Admin", "description": "Maintenance"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["System"],
                "summary": "Liveness check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["System"],
                "summary": "Readiness of database and redis",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Degraded"}
                }
            }
        },
        "/api/v1/auth/config": {
            "get": {
                "tags": ["Authentication"],
                "summary": "DingTalk settings for the front end login handshake",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/auth/dev-login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Issue a session for a verified identity",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Identity"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current session",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Revoke the current session",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/departments": {
            "get": {
                "tags": ["Organization"],
                "summary": "Child departments",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "parentId", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/leave/types": {
            "get": {
                "tags": ["Leave"],
                "summary": "Visible leave types",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/leave/summary": {
            "get": {
                "tags": ["Leave"],
                "summary": "Monthly leave table",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "deptId", "in": "query", "type": "integer"},
                    {"name": "leaveTypes", "in": "query", "type": "array", "items": {"type": "string"}, "collectionFormat": "csv"},
                    {"name": "employeeName", "in": "query", "type": "string"},
                    {"name": "unit", "in": "query", "type": "string", "description": "day or hour"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"},
                    {"name": "sortBy", "in": "query", "type": "string", "description": "name or total"},
                    {"name": "sortOrder", "in": "query", "type": "string", "description": "asc or desc"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/leave/detail": {
            "get": {
                "tags": ["Leave"],
                "summary": "One employee's month of leave",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "employeeId", "in": "query", "type": "string", "required": true},
                    {"name": "year", "in": "query", "type": "integer", "required": true},
                    {"name": "month", "in": "query", "type": "integer", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Employee not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/leave/daily": {
            "get": {
                "tags": ["Leave"],
                "summary": "Daily headcount on leave",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "month", "in": "query", "type": "integer"},
                    {"name": "deptId", "in": "query", "type": "integer"},
                    {"name": "employeeName", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/leave/calendar": {
            "post": {
                "tags": ["Leave"],
                "summary": "Build a month grid from supplied records",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CalendarRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/leave/export": {
            "get": {
                "tags": ["Leave"],
                "summary": "Download the monthly leave table",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "description": "csv or pdf"},
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "deptId", "in": "query", "type": "integer"},
                    {"name": "leaveTypes", "in": "query", "type": "array", "items": {"type": "string"}, "collectionFormat": "csv"},
                    {"name": "employeeName", "in": "query", "type": "string"},
                    {"name": "unit", "in": "query", "type": "string", "description": "day or hour"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"},
                    {"name": "sortBy", "in": "query", "type": "string", "description": "name or total"},
                    {"name": "sortOrder", "in": "query", "type": "string", "description": "asc or desc"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/analytics/trend": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Leave days per month against the previous year",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "year", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/analytics/types": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Leave days per type",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "year", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/analytics/departments": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Leave per department",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "metric", "in": "query", "type": "string", "description": "total or avg"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/analytics/weekdays": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Leave days per weekday",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "year", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/analytics/ranking": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Employees with the most leave",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/admin/system": {
            "get": {
                "tags": ["Admin"],
                "summary": "Runtime counters",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/api/v1/admin/cache/invalidate": {
            "post": {
                "tags": ["Admin"],
                "summary": "Drop cached dashboard data",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/CacheInvalidateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/api/v1/admin/users": {
            "get": {
                "tags": ["Admin"],
                "summary": "List mobiles allowed to sign in",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden"}
                }
            },
            "post": {
                "tags": ["Admin"],
                "summary": "Grant a mobile access to the dashboard",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddAllowedUserRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/admin/users/{mobile}": {
            "delete": {
                "tags": ["Admin"],
                "summary": "Revoke dashboard access of a mobile",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "mobile", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "AddAllowedUserRequest": {
            "type": "object",
            "required": ["mobile"],
            "properties": {
                "mobile": {"type": "string", "example": "13900000000"},
                "name": {"type": "string"}
            }
        },
        "Identity": {
            "type": "object",
            "required": ["userId", "name"],
            "properties": {
                "userId": {"type": "string"},
                "name": {"type": "string"},
                "mobile": {"type": "string"},
                "avatar": {"type": "string"}
            }
        },
        "LeaveRecord": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "example": "2025-01-06"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "hours": {"type": "number"},
                "leaveType": {"type": "string"},
                "category": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "DailyLeaveAggregate": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "employees": {"type": "array", "items": {"type": "object"}}
            }
        },
        "CalendarRequest": {
            "type": "object",
            "required": ["year", "month"],
            "properties": {
                "year": {"type": "integer"},
                "month": {"type": "integer"},
                "records": {"type": "array", "items": {"$ref": "#/definitions/LeaveRecord"}},
                "aggregates": {"type": "array", "items": {"$ref": "#/definitions/DailyLeaveAggregate"}}
            }
        },
        "CacheInvalidateRequest": {
            "type": "object",
            "properties": {
                "namespaces": {"type": "array", "items": {"type": "string", "enum": ["leave", "analytics"]}}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "total": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}

package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "LMS Admin API",
        "description": "Admin gateway over the LMS backend: dashboards, learner browsing and report exports",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Dashboard", "description": "Aggregated progress statistics"},
        {"name": "Learners", "description": "Paginated browsing of learner progress"},
        {"name": "Reports", "description": "Background report exports"},
        {"name": "Courses", "description": "Course catalog management"},
        {"name": "Users", "description": "Account management"},
        {"name": "Providers", "description": "Content provider management"},
        {"name": "Verbs", "description": "xAPI verb configuration"},
        {"name": "System", "description": "Gateway diagnostics"}
    ],
    "paths": {
        "/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Aggregated progress dashboard",
                "parameters": [
                    {"name": "courseId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Backend unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/learners/sessions": {
            "post": {
                "tags": ["Learners"],
                "summary": "Open a browse session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/learners/sessions/{id}": {
            "get": {
                "tags": ["Learners"],
                "summary": "Current page of a session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown or expired session", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Learners"],
                "summary": "Change session filters or page size",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSessionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Learners"],
                "summary": "Close a session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Closed"}
                }
            }
        },
        "/learners/sessions/{id}/next": {
            "post": {
                "tags": ["Learners"],
                "summary": "Advance to the next page",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "A fetch is already in flight", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/learners/sessions/{id}/prev": {
            "post": {
                "tags": ["Learners"],
                "summary": "Step back to the previous page",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "A fetch is already in flight", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/export": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue a full report export",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Same filters already exporting", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/jobs": {
            "get": {
                "tags": ["Reports"],
                "summary": "List export jobs",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/jobs/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Export job status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown job", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/export/{token}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a finished export",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "produces": ["text/csv", "application/pdf"],
                "responses": {
                    "200": {"description": "File"},
                    "403": {"description": "Invalid or expired token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "Course catalog",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Courses"],
                "summary": "Add a catalog entry",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CourseRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{id}": {
            "put": {
                "tags": ["Courses"],
                "summary": "Replace a catalog entry",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CourseRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Courses"],
                "summary": "Remove a catalog entry",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List accounts",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Users"],
                "summary": "Register an account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateUserRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/users/{id}": {
            "put": {
                "tags": ["Users"],
                "summary": "Modify an account",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateUserRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Users"],
                "summary": "Remove an account",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/providers": {
            "get": {
                "tags": ["Providers"],
                "summary": "List content providers",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Providers"],
                "summary": "Register a content provider",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ProviderRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/providers/{id}": {
            "put": {
                "tags": ["Providers"],
                "summary": "Replace a provider",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ProviderRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Providers"],
                "summary": "Remove a provider",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/verbs": {
            "get": {
                "tags": ["Verbs"],
                "summary": "List configured xAPI verbs",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Verbs"],
                "summary": "Add a verb configuration",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/VerbRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/verbs/{id}": {
            "put": {
                "tags": ["Verbs"],
                "summary": "Replace a verb configuration",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/VerbRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Verbs"],
                "summary": "Remove a verb configuration",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/system/metrics": {
            "get": {
                "tags": ["System"],
                "summary": "Gateway runtime statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateSessionRequest": {
            "type": "object",
            "properties": {
                "courseId": {"type": "string"},
                "pageSize": {"type": "integer"}
            }
        },
        "UpdateSessionRequest": {
            "type": "object",
            "properties": {
                "courseId": {"type": "string"},
                "pageSize": {"type": "integer"}
            }
        },
        "ExportRequest": {
            "type": "object",
            "properties": {
                "courseId": {"type": "string"},
                "format": {"type": "string", "enum": ["csv", "pdf"]}
            }
        },
        "CourseRequest": {
            "type": "object",
            "required": ["courseId", "title"],
            "properties": {
                "courseId": {"type": "string"},
                "title": {"type": "string"},
                "provider": {"type": "string"}
            }
        },
        "CreateUserRequest": {
            "type": "object",
            "required": ["email", "username", "fullName", "role"],
            "properties": {
                "email": {"type": "string"},
                "username": {"type": "string"},
                "fullName": {"type": "string"},
                "role": {"type": "string", "enum": ["ADMIN", "LEARNER"]}
            }
        },
        "UpdateUserRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "username": {"type": "string"},
                "fullName": {"type": "string"},
                "role": {"type": "string", "enum": ["ADMIN", "LEARNER"]},
                "active": {"type": "boolean"}
            }
        },
        "ProviderRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"},
                "contact": {"type": "string"},
                "courseIds": {"type": "array", "items": {"type": "string"}}
            }
        },
        "VerbRequest": {
            "type": "object",
            "required": ["iri", "display"],
            "properties": {
                "iri": {"type": "string"},
                "display": {"type": "string"},
                "enabled": {"type": "boolean"}
            }
        },
        "PageMeta": {
            "type": "object",
            "properties": {
                "page_index": {"type": "integer"},
                "page_size": {"type": "integer"},
                "has_next": {"type": "boolean"},
                "has_prev": {"type": "boolean"}
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
                "pagination": {"$ref": "#/definitions/PageMeta"},
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

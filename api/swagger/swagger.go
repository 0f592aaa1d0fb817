package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Ethics Case API",
        "description": "Ethics and compliance case workflow: analyst assignment, phase reviews, closure follow-ups and audit trail",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Cases", "description": "Case workflow operations"},
        {"name": "History", "description": "Case audit trail"}
    ],
    "paths": {
        "/cases": {
            "get": {
                "tags": ["Cases"],
                "summary": "List cases (DIRECTOR, ADMIN)",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "description": "Comma separated statuses"},
                    {"name": "analystId", "in": "query", "type": "string"},
                    {"name": "severity", "in": "query", "type": "string", "enum": ["LOW", "MEDIUM", "HIGH", "CRITICAL"]},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "offset", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/cases/{id}": {
            "get": {
                "tags": ["Cases"],
                "summary": "Get case",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/cases/{id}/assign": {
            "post": {
                "tags": ["Cases"],
                "summary": "Assign an analyst to a phase (DIRECTOR)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignAnalystRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TransitionEnvelope"}},
                    "400": {"description": "Validation error"},
                    "404": {"description": "Not found"},
                    "409": {"description": "Invalid transition, segregation of duties or concurrent modification"}
                }
            }
        },
        "/cases/{id}/report": {
            "post": {
                "tags": ["Cases"],
                "summary": "Submit a phase report for review (ANALYST)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PhaseReportRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TransitionEnvelope"}},
                    "403": {"description": "Caller is not the phase analyst"},
                    "409": {"description": "Invalid transition"}
                }
            }
        },
        "/cases/{id}/draft": {
            "post": {
                "tags": ["Cases"],
                "summary": "Save a phase report draft (ANALYST)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PhaseReportRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TransitionEnvelope"}},
                    "403": {"description": "Caller is not the phase analyst"},
                    "409": {"description": "Invalid transition"}
                }
            }
        },
        "/cases/{id}/review": {
            "post": {
                "tags": ["Cases"],
                "summary": "Approve or return a phase (DIRECTOR)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReviewRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TransitionEnvelope"}},
                    "409": {"description": "Invalid transition"},
                    "500": {"description": "Closure artifacts could not be created, case stays in review"}
                }
            }
        },
        "/cases/{id}/archive": {
            "post": {
                "tags": ["Cases"],
                "summary": "Archive from the first review (DIRECTOR)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ArchiveRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TransitionEnvelope"}},
                    "409": {"description": "Invalid transition"}
                }
            }
        },
        "/cases/{id}/visibility": {
            "put": {
                "tags": ["Cases"],
                "summary": "Toggle school management access to the narrative (DIRECTOR)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/VisibilityRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/cases/{id}/history": {
            "get": {
                "tags": ["History"],
                "summary": "Audit trail in commit order (DIRECTOR, ADMIN, ANALYST)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Entries with meta.consistent", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/cases/{id}/history/export": {
            "get": {
                "tags": ["History"],
                "summary": "Download the audit trail (DIRECTOR, ADMIN)",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "400": {"description": "Unsupported format"}
                }
            }
        }
    },
    "definitions": {
        "AssignAnalystRequest": {
            "type": "object",
            "properties": {
                "phase": {"type": "integer", "minimum": 1, "maximum": 3},
                "analystId": {"type": "string"},
                "branch": {"type": "string", "enum": ["MEDIATION", "DISCIPLINARY"]}
            },
            "required": ["phase", "analystId"]
        },
        "PhaseReportRequest": {
            "type": "object",
            "properties": {
                "phase": {"type": "integer", "minimum": 1, "maximum": 3},
                "text": {"type": "string"}
            },
            "required": ["phase", "text"]
        },
        "ReviewRequest": {
            "type": "object",
            "properties": {
                "phase": {"type": "integer", "minimum": 1, "maximum": 3},
                "approved": {"type": "boolean"},
                "comment": {"type": "string"}
            },
            "required": ["phase", "approved"]
        },
        "ArchiveRequest": {
            "type": "object",
            "properties": {
                "comment": {"type": "string"}
            },
            "required": ["comment"]
        },
        "VisibilityRequest": {
            "type": "object",
            "properties": {
                "visible": {"type": "boolean"}
            },
            "required": ["visible"]
        },
        "ArtifactSet": {
            "type": "object",
            "properties": {
                "auditFindingId": {"type": "string"},
                "riskEntryId": {"type": "string"},
                "controlTicketId": {"type": "string"}
            }
        },
        "TransitionResult": {
            "type": "object",
            "properties": {
                "caseId": {"type": "string"},
                "protocol": {"type": "string"},
                "previousStatus": {"type": "string"},
                "status": {"type": "string"},
                "artifacts": {"$ref": "#/definitions/ArtifactSet"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "limit": {"type": "integer"},
                "offset": {"type": "integer"},
                "totalCount": {"type": "integer"}
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
        },
        "TransitionEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/TransitionResult"},
                "error": {"$ref": "#/definitions/APIError"}
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

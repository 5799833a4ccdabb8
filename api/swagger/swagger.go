package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Enrollment Eligibility & Workflow API",
        "description": "Prerequisite resolution, eligibility classification and the enrollment workflow state machine.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Subjects", "description": "Subject catalog browsing"},
        {"name": "Terms", "description": "Academic calendar and enrollment windows"},
        {"name": "Eligibility", "description": "Per-subject eligibility classification and unit-load checks"},
        {"name": "Enrollments", "description": "Clearance, submission, confirmation and status"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Degraded"}
                }
            }
        },
        "/subjects": {
            "get": {
                "tags": ["Subjects"],
                "summary": "List catalog subjects",
                "parameters": [
                    {"name": "term", "in": "query", "type": "string"},
                    {"name": "yearLevel", "in": "query", "type": "integer"},
                    {"name": "programId", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/terms/current": {
            "get": {
                "tags": ["Terms"],
                "summary": "Resolve the current term",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/terms/{term}/window": {
            "get": {
                "tags": ["Terms"],
                "summary": "Get the enrollment window for a term",
                "parameters": [
                    {"name": "term", "in": "path", "required": true, "type": "string"},
                    {"name": "academicYear", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Term configuration not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/eligibility/{studentId}": {
            "get": {
                "tags": ["Eligibility"],
                "summary": "Classify every catalog subject for a student and term",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "term", "in": "query", "required": true, "type": "string"},
                    {"name": "academicYear", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Student not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/eligibility/unit-load": {
            "post": {
                "tags": ["Eligibility"],
                "summary": "Classify the unit load of a subject selection",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UnitLoadRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/clearance": {
            "put": {
                "tags": ["Enrollments"],
                "summary": "Set or revoke a student's enrollment clearance",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetClearanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/submit": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Submit an enrollment with chosen subject sections",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitEnrollmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "State changed, retry", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Policy violation", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/confirm": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Confirm a submitted enrollment",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollmentActionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "State changed, retry", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/revoke": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Revoke a submitted or confirmed enrollment",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollmentActionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "State changed, retry", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/status": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "Get enrollment statuses for many students in one term",
                "parameters": [
                    {"name": "term", "in": "query", "required": true, "type": "string"},
                    {"name": "academicYear", "in": "query", "required": true, "type": "string"},
                    {"name": "studentIds", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/status/{studentId}": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "Get the enrollment status for one student and term",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "term", "in": "query", "required": true, "type": "string"},
                    {"name": "academicYear", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "SetClearanceRequest": {
            "type": "object",
            "required": ["student_id", "term", "academic_year"],
            "properties": {
                "student_id": {"type": "string"},
                "term": {"type": "string"},
                "academic_year": {"type": "string"},
                "cleared": {"type": "boolean"}
            }
        },
        "SubjectSelection": {
            "type": "object",
            "required": ["subject_code", "section"],
            "properties": {
                "subject_code": {"type": "string"},
                "section": {"type": "string"}
            }
        },
        "SubmitEnrollmentRequest": {
            "type": "object",
            "required": ["student_id", "term", "academic_year", "subjects"],
            "properties": {
                "student_id": {"type": "string"},
                "term": {"type": "string"},
                "academic_year": {"type": "string"},
                "subjects": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/SubjectSelection"}
                }
            }
        },
        "EnrollmentActionRequest": {
            "type": "object",
            "required": ["student_id", "term", "academic_year"],
            "properties": {
                "student_id": {"type": "string"},
                "term": {"type": "string"},
                "academic_year": {"type": "string"}
            }
        },
        "UnitLoadRequest": {
            "type": "object",
            "properties": {
                "subjects": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "subject_code": {"type": "string"},
                            "section": {"type": "string"},
                            "units": {"type": "integer"}
                        }
                    }
                }
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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

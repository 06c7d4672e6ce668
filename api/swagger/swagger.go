package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Campusworks Timetable API",
        "description": "Conflict-minimised weekly timetable optimization for students",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Timetable", "description": "Schedule optimization and export"},
        {"name": "Catalog", "description": "Course catalog browsing"},
        {"name": "Observability", "description": "Runtime metrics"}
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
                    "200": {"description": "Ready"}
                }
            }
        },
        "/timetable/optimize": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Build an optimized weekly timetable",
                "description": "Runs the greedy optimizer over the candidate courses and returns the primary schedule, ranked alternatives and recommendations.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/OptimizeScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown course id", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/optimize/export": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Export the optimized timetable",
                "description": "Runs the optimizer and streams the primary schedule as CSV or PDF.",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/OptimizeScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "Rendered document"},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/catalog/courses": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List catalog courses",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "difficulty", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["Observability"],
                "summary": "Aggregated runtime metrics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "TimeSlot": {
            "type": "object",
            "properties": {
                "day": {"type": "string"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"}
            },
            "required": ["day", "startTime", "endTime"]
        },
        "Section": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "professor": {"type": "string"},
                "format": {"type": "string", "enum": ["in-person", "hybrid", "online"]},
                "seatsAvailable": {"type": "integer"},
                "timeSlots": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/TimeSlot"}
                }
            },
            "required": ["id", "timeSlots"]
        },
        "Course": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "credits": {"type": "integer"},
                "difficulty": {"type": "string", "enum": ["beginner", "intermediate", "advanced", "expert"]},
                "sections": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/Section"}
                }
            },
            "required": ["id", "title", "credits", "difficulty", "sections"]
        },
        "Constraints": {
            "type": "object",
            "properties": {
                "preferredDays": {"type": "array", "items": {"type": "string"}},
                "avoidProfessors": {"type": "array", "items": {"type": "string"}},
                "preferredTimeSlots": {"type": "array", "items": {"type": "string"}},
                "budget": {"type": "number"},
                "availableTime": {"type": "number"}
            }
        },
        "OptimizeScheduleRequest": {
            "type": "object",
            "properties": {
                "studentId": {"type": "string"},
                "courses": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/Course"}
                },
                "courseIds": {"type": "array", "items": {"type": "string"}},
                "constraints": {"$ref": "#/definitions/Constraints"},
                "maxAlternatives": {"type": "integer", "minimum": 0, "maximum": 2}
            },
            "required": ["studentId"]
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

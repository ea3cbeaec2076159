package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Timetable API",
        "description": "University timetable registry: professors, classrooms, courses and conflict-free lessons.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Catalog", "description": "Professors, classrooms and courses"},
        {"name": "Lessons", "description": "Scheduling with professor and classroom conflict detection"},
        {"name": "Courses", "description": "Course-level reassignment and cancellation"},
        {"name": "Reports", "description": "Availability, utilisation and course type popularity"},
        {"name": "Exports", "description": "Asynchronous CSV and PDF timetable exports"}
    ],
    "paths": {
        "/professors": {
            "get": {"tags": ["Catalog"], "summary": "List professors", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "post": {
                "tags": ["Catalog"],
                "summary": "Add professor",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Professor"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Validation error"}}
            }
        },
        "/professors/{id}/schedule": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Lessons taught by a professor",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid id"}}
            }
        },
        "/classrooms": {
            "get": {"tags": ["Catalog"], "summary": "List classrooms", "responses": {"200": {"description": "OK"}}},
            "post": {
                "tags": ["Catalog"],
                "summary": "Add classroom",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Classroom"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Validation error"}}
            }
        },
        "/classrooms/available": {
            "get": {
                "tags": ["Reports"],
                "summary": "Classrooms free at a day and time slot",
                "parameters": [
                    {"name": "dayOfWeek", "in": "query", "required": true, "type": "string", "enum": ["Monday", "Tuesday", "Wednesday", "Thursday", "Friday"]},
                    {"name": "timeSlot", "in": "query", "required": true, "type": "string", "enum": ["8:30-10:00", "10:15-11:45", "12:15-13:45", "14:00-15:30", "15:45-17:15"]}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid day or slot"}}
            }
        },
        "/classrooms/{number}/utilization": {
            "get": {
                "tags": ["Reports"],
                "summary": "Weekly utilisation of a classroom",
                "parameters": [{"name": "number", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/courses": {
            "get": {"tags": ["Catalog"], "summary": "List courses", "responses": {"200": {"description": "OK"}}},
            "post": {
                "tags": ["Catalog"],
                "summary": "Add course",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Course"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Validation error"}}
            }
        },
        "/courses/{id}/lessons/classroom": {
            "patch": {
                "tags": ["Courses"],
                "summary": "Move the first lesson of a course to another classroom",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReassignClassroomRequest"}}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Course has no lessons"}, "409": {"description": "Schedule conflict"}}
            }
        },
        "/courses/{id}/lessons": {
            "delete": {
                "tags": ["Courses"],
                "summary": "Cancel every lesson of a course",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"204": {"description": "Removed, count in X-Removed-Count"}}
            }
        },
        "/lessons": {
            "get": {
                "tags": ["Lessons"],
                "summary": "List lessons",
                "parameters": [
                    {"name": "courseId", "in": "query", "type": "integer"},
                    {"name": "professorId", "in": "query", "type": "integer"},
                    {"name": "classroomNumber", "in": "query", "type": "string"},
                    {"name": "dayOfWeek", "in": "query", "type": "string"},
                    {"name": "timeSlot", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Lessons"],
                "summary": "Schedule a lesson",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LessonRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Validation error"}, "409": {"description": "Schedule conflict, existing lesson in meta.details"}}
            }
        },
        "/lessons/bulk": {
            "post": {
                "tags": ["Lessons"],
                "summary": "Schedule several lessons",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkLessonRequest"}}],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Schedule conflict"}}
            }
        },
        "/lessons/validate": {
            "post": {
                "tags": ["Lessons"],
                "summary": "Check a lesson for conflicts without scheduling it",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LessonRequest"}}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/lessons/{id}": {
            "get": {
                "tags": ["Lessons"],
                "summary": "Get lesson",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "delete": {
                "tags": ["Lessons"],
                "summary": "Cancel one lesson",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Removed"}, "404": {"description": "Not found"}}
            }
        },
        "/lessons/{id}/classroom": {
            "patch": {
                "tags": ["Lessons"],
                "summary": "Move one lesson to another classroom",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReassignClassroomRequest"}}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}, "409": {"description": "Schedule conflict"}}
            }
        },
        "/reports/popular-course-type": {
            "get": {"tags": ["Reports"], "summary": "Course type with the most scheduled lessons", "responses": {"200": {"description": "OK"}}}
        },
        "/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue a timetable export",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}],
                "responses": {"202": {"description": "Accepted"}, "400": {"description": "Validation error"}, "503": {"description": "Exports disabled"}}
            }
        },
        "/exports/{id}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export job status",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/exports/download": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a finished export",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [{"name": "token", "in": "query", "required": true, "type": "string"}],
                "responses": {"200": {"description": "File"}, "403": {"description": "Invalid or expired token"}}
            }
        },
        "/metrics/summary": {
            "get": {"tags": ["Observability"], "summary": "Process metrics snapshot", "responses": {"200": {"description": "OK"}}}
        }
    },
    "definitions": {
        "Professor": {
            "type": "object",
            "properties": {"id": {"type": "integer"}, "name": {"type": "string"}, "department": {"type": "string"}}
        },
        "Classroom": {
            "type": "object",
            "required": ["number"],
            "properties": {"number": {"type": "string"}, "capacity": {"type": "integer"}, "hasProjector": {"type": "boolean"}}
        },
        "Course": {
            "type": "object",
            "required": ["name", "type"],
            "properties": {"id": {"type": "integer"}, "name": {"type": "string"}, "type": {"type": "string", "enum": ["Lecture", "Seminar", "Lab", "Practice"]}}
        },
        "LessonRequest": {
            "type": "object",
            "required": ["dayOfWeek", "timeSlot"],
            "properties": {
                "courseId": {"type": "integer"},
                "professorId": {"type": "integer"},
                "classroomNumber": {"type": "string"},
                "dayOfWeek": {"type": "string"},
                "timeSlot": {"type": "string"}
            }
        },
        "BulkLessonRequest": {
            "type": "object",
            "required": ["items"],
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/LessonRequest"}},
                "partialOnError": {"type": "boolean"}
            }
        },
        "ReassignClassroomRequest": {
            "type": "object",
            "required": ["classroomNumber"],
            "properties": {"classroomNumber": {"type": "string"}}
        },
        "ExportRequest": {
            "type": "object",
            "required": ["format"],
            "properties": {
                "format": {"type": "string", "enum": ["csv", "pdf"]},
                "professorId": {"type": "integer"},
                "classroomNumber": {"type": "string"}
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

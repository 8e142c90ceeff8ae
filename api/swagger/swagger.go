package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Deep API",
        "description": "Mentorship sessions and the personalized community feed",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Sessions", "description": "Mentorship booking and lifecycle"},
        {"name": "Mentors", "description": "Availability and earnings statements"},
        {"name": "Feed", "description": "Personalized feed, search and engagement"},
        {"name": "Moderation", "description": "Post visibility"}
    ],
    "paths": {
        "/sessions": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Book a mentorship session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateBookingRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Session"}},
                    "400": {"description": "Validation error or slot unavailable", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Mentor not found", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "409": {"description": "Mentor already booked that day", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            },
            "get": {
                "tags": ["Sessions"],
                "summary": "List the caller's sessions",
                "parameters": [
                    {"name": "as", "in": "query", "type": "string", "enum": ["mentor", "learner"]},
                    {"name": "status", "in": "query", "type": "string", "enum": ["scheduled", "in_progress", "completed", "cancelled"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SessionListResponse"}}
                }
            }
        },
        "/sessions/{id}": {
            "get": {
                "tags": ["Sessions"],
                "summary": "Get a session",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Session"}},
                    "403": {"description": "Not a participant", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/sessions/{id}/transitions": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Start, complete, cancel or review a session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TransitionSessionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Session"}},
                    "400": {"description": "Invalid transition", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/mentors/{id}/availability": {
            "get": {
                "tags": ["Mentors"],
                "summary": "Get a mentor's weekly availability",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/MentorAvailabilityResponse"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/mentors/me/statement": {
            "get": {
                "tags": ["Mentors"],
                "summary": "Render the caller's earnings statement",
                "parameters": [
                    {"name": "from", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "to", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/StatementResponse"}},
                    "403": {"description": "Caller is not a mentor", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/statements/{token}": {
            "get": {
                "tags": ["Mentors"],
                "summary": "Download a rendered statement",
                "security": [],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Statement file", "schema": {"type": "file"}},
                    "403": {"description": "Invalid or expired link", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Statement removed", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/feed": {
            "get": {
                "tags": ["Feed"],
                "summary": "Personalized community feed",
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/FeedResponse"}}
                }
            }
        },
        "/posts/search": {
            "get": {
                "tags": ["Feed"],
                "summary": "Search visible posts",
                "parameters": [
                    {"name": "q", "in": "query", "required": true, "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/PostListResponse"}}
                }
            }
        },
        "/posts/{id}/similar": {
            "get": {
                "tags": ["Feed"],
                "summary": "Posts related to a post",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/PostListResponse"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/posts/{id}/moderation": {
            "patch": {
                "tags": ["Moderation"],
                "summary": "Hide, delete or restore a post",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ModeratePostRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Post"}},
                    "403": {"description": "Moderator role required", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/engagements": {
            "post": {
                "tags": ["Feed"],
                "summary": "Record an engagement event",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TrackEngagementRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/EngagementEvent"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        }
    },
    "definitions": {
        "CreateBookingRequest": {
            "type": "object",
            "required": ["mentorId", "date", "durationMinutes", "topic"],
            "properties": {
                "mentorId": {"type": "string"},
                "learnerId": {"type": "string"},
                "date": {"type": "string", "format": "date-time"},
                "durationMinutes": {"type": "integer"},
                "topic": {"type": "string"}
            }
        },
        "TransitionSessionRequest": {
            "type": "object",
            "required": ["action"],
            "properties": {
                "action": {"type": "string", "enum": ["start", "complete", "cancel", "update"]},
                "feedback": {"type": "string"},
                "rating": {"type": "integer", "minimum": 1, "maximum": 5},
                "notes": {"type": "string"}
            }
        },
        "Session": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "mentorId": {"type": "string"},
                "learnerId": {"type": "string"},
                "learnerName": {"type": "string"},
                "date": {"type": "string", "format": "date-time"},
                "durationMinutes": {"type": "integer"},
                "topic": {"type": "string"},
                "price": {"type": "number"},
                "status": {"type": "string", "enum": ["scheduled", "in_progress", "completed", "cancelled"]},
                "feedback": {"type": "string"},
                "rating": {"type": "integer"},
                "notes": {"type": "string"},
                "createdAt": {"type": "string", "format": "date-time"},
                "updatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "SessionListResponse": {
            "type": "object",
            "properties": {
                "sessions": {"type": "array", "items": {"$ref": "#/definitions/Session"}},
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "hasMore": {"type": "boolean"}
            }
        },
        "MentorAvailabilityResponse": {
            "type": "object",
            "properties": {
                "mentorId": {"type": "string"},
                "timezone": {"type": "string"},
                "hourlyRate": {"type": "number"},
                "availability": {
                    "type": "object",
                    "additionalProperties": {"type": "array", "items": {"type": "string"}}
                }
            }
        },
        "StatementResponse": {
            "type": "object",
            "properties": {
                "url": {"type": "string"},
                "expiresAt": {"type": "string", "format": "date-time"},
                "format": {"type": "string"},
                "sessions": {"type": "integer"},
                "total": {"type": "number"}
            }
        },
        "Post": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "authorId": {"type": "string"},
                "postType": {"type": "string"},
                "content": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "likesCount": {"type": "integer"},
                "commentsCount": {"type": "integer"},
                "status": {"type": "string", "enum": ["visible", "hidden", "deleted"]},
                "createdAt": {"type": "string", "format": "date-time"}
            }
        },
        "ScoredPost": {
            "allOf": [
                {"$ref": "#/definitions/Post"},
                {"type": "object", "properties": {"score": {"type": "number"}}}
            ]
        },
        "FeedResponse": {
            "type": "object",
            "properties": {
                "posts": {"type": "array", "items": {"$ref": "#/definitions/ScoredPost"}},
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "hasMore": {"type": "boolean"}
            }
        },
        "PostListResponse": {
            "type": "object",
            "properties": {
                "posts": {"type": "array", "items": {"$ref": "#/definitions/Post"}},
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "hasMore": {"type": "boolean"}
            }
        },
        "ModeratePostRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["visible", "hidden", "deleted"]},
                "reason": {"type": "string"}
            }
        },
        "TrackEngagementRequest": {
            "type": "object",
            "required": ["postId", "action"],
            "properties": {
                "postId": {"type": "string"},
                "action": {"type": "string", "enum": ["view", "like", "comment", "share", "save"]},
                "metadata": {"type": "object"}
            }
        },
        "EngagementEvent": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "userId": {"type": "string"},
                "postId": {"type": "string"},
                "action": {"type": "string"},
                "metadata": {"type": "object"},
                "createdAt": {"type": "string", "format": "date-time"}
            }
        },
        "ErrorBody": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "code": {"type": "string"},
                "details": {"type": "string"}
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

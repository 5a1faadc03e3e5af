package snapshot

import "github.com/xeipuuv/gojsonschema"

const documentSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "version": {"type": "string"},
    "exportDate": {"type": ["string", "number"]},
    "tasks": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "name": {"type": "string", "minLength": 1},
          "description": {"type": ["string", "null"]},
          "duration": {"type": "integer", "minimum": 1},
          "category": {"enum": ["Work", "Study", "Health", "Personal", "Social"]},
          "completed": {"type": "boolean"},
          "deleted": {"type": "boolean"},
          "createdAt": {"anyOf": [{"type": "string", "format": "date-time"}, {"type": "number", "minimum": 0}]},
          "completedAt": {"anyOf": [{"type": "string", "format": "date-time"}, {"type": "number", "minimum": 0}, {"type": "null"}]}
        },
        "required": ["id", "name", "duration", "category", "createdAt"]
      }
    },
    "stats": {
      "type": ["object", "null"],
      "properties": {
        "currentCombo": {"type": "integer", "minimum": 0},
        "longestCombo": {"type": "integer", "minimum": 0},
        "totalStars": {"type": "integer", "minimum": 0},
        "totalCompleted": {"type": "integer", "minimum": 0},
        "tasksSkipped": {"type": "integer", "minimum": 0},
        "consecutiveNoSkip": {"type": "integer", "minimum": 0},
        "speedRunCount": {"type": "integer", "minimum": 0},
        "speedRunStart": {"anyOf": [{"type": "string", "format": "date-time"}, {"type": "number", "minimum": 0}, {"type": "null"}]},
        "lastCompletionDate": {"type": ["string", "null"]},
        "dailyHistory": {
          "type": ["object", "null"],
          "additionalProperties": {
            "type": "object",
            "properties": {
              "completed": {"type": "integer", "minimum": 0},
              "stars": {"type": "integer", "minimum": 0},
              "skipped": {"type": "integer", "minimum": 0}
            }
          }
        },
        "categoryStats": {
          "type": ["object", "null"],
          "additionalProperties": {"type": "integer", "minimum": 0}
        }
      }
    },
    "achievements": {
      "type": ["object", "null"],
      "additionalProperties": {"type": "boolean"}
    },
    "missions": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "title": {"type": "string"},
          "reward": {"type": "integer", "minimum": 0},
          "completed": {"type": "boolean"},
          "date": {"type": "string", "minLength": 1}
        },
        "required": ["id", "reward", "date"]
      }
    }
  }
}`

var documentSchema = gojsonschema.NewStringLoader(documentSchemaJSON)

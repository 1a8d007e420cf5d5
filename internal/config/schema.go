package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// FileSchema is the JSON Schema for config file validation
const FileSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "server": {
      "type": "object",
      "properties": {
        "host": {"type": "string"},
        "port": {"type": "integer", "minimum": 1, "maximum": 65535},
        "public_base_url": {"type": "string"}
      }
    },
    "whatsapp": {
      "type": "object",
      "properties": {
        "api_version": {"type": "string", "pattern": "^v\\d+\\.\\d+$"},
        "phone_number_id": {"type": "string"},
        "access_token": {"type": "string"},
        "verify_token": {"type": "string"}
      }
    },
    "assistant": {
      "type": "object",
      "properties": {
        "provider": {"type": "string", "enum": ["openai", "anthropic"]},
        "api_key": {"type": "string"},
        "model": {"type": "string"}
      }
    },
    "imagegen": {
      "type": "object",
      "properties": {
        "api_key": {"type": "string"},
        "engine": {"type": "string"},
        "command_token": {"type": "string", "minLength": 1},
        "artifact_dir": {"type": "string"}
      }
    },
    "storage": {
      "type": "object",
      "properties": {
        "cloud_name": {"type": "string"},
        "api_key": {"type": "string"},
        "api_secret": {"type": "string"},
        "folder": {"type": "string"}
      }
    },
    "capture": {
      "type": "object",
      "properties": {
        "dir": {"type": "string"},
        "retention_days": {"type": "integer", "minimum": 0},
        "sweep_schedule": {"type": "string"}
      }
    },
    "history": {
      "type": "object",
      "properties": {
        "database_path": {"type": "string"}
      }
    },
    "logging": {
      "type": "object",
      "properties": {
        "level": {"type": "string", "enum": ["trace", "debug", "info", "warn", "error"]},
        "file": {"type": "string"},
        "console": {"type": "boolean"},
        "pretty": {"type": "boolean"},
        "redaction": {"type": "boolean"}
      }
    }
  }
}`

// ValidateFile validates a config file against the schema
func ValidateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	schemaLoader := gojsonschema.NewStringLoader(FileSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("failed to validate config file: %w", err)
	}

	if !result.Valid() {
		var issues []string
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		return fmt.Errorf("invalid config file: %s", strings.Join(issues, "; "))
	}

	return nil
}

package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "hellobench-config.json"

// documentSchema is the structural schema every config document must satisfy.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "definitions": {
    "duration": {
      "type": "string",
      "pattern": "^([0-9]+(\\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$"
    }
  },
  "properties": {
    "name": {"type": "string"},
    "server": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "addr": {"type": "string"},
        "readTimeout": {"$ref": "#/definitions/duration"},
        "writeTimeout": {"$ref": "#/definitions/duration"},
        "idleTimeout": {"$ref": "#/definitions/duration"}
      }
    },
    "logging": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "level": {"enum": ["debug", "info", "warn", "error"]},
        "format": {"enum": ["console", "json"]},
        "output": {"enum": ["stdout", "file", "both"]},
        "filePath": {"type": "string"},
        "maxSize": {"type": "integer", "minimum": 0},
        "maxBackups": {"type": "integer", "minimum": 0},
        "maxAge": {"type": "integer", "minimum": 0}
      }
    },
    "loadTest": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "workers": {"type": "integer", "minimum": 1},
        "iterations": {"type": "integer", "minimum": 1},
        "targetUrl": {"type": "string"},
        "timeout": {"$ref": "#/definitions/duration"},
        "requestTimeout": {"$ref": "#/definitions/duration"}
      }
    },
    "provision": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "mode": {"enum": ["local", "static", "docker"]},
        "url": {"type": "string"},
        "image": {"type": "string"},
        "containerPort": {"type": "integer", "minimum": 1, "maximum": 65535},
        "startupTimeout": {"$ref": "#/definitions/duration"}
      }
    },
    "report": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "dir": {"type": "string"},
        "html": {"type": "boolean"},
        "json": {"type": "boolean"}
      }
    }
  }
}`

var (
	compiledSchema *jsonschema.Schema
	compileErr     error
	compileOnce    sync.Once
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, strings.NewReader(documentSchema)); err != nil {
			compileErr = fmt.Errorf("invalid config schema: %w", err)
			return
		}
		compiledSchema, compileErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, compileErr
}

// validateDocument checks a decoded YAML or JSON document against the schema.
func validateDocument(doc interface{}) error {
	s, err := schema()
	if err != nil {
		return err
	}

	// Round-trip through encoding/json so numbers and maps have JSON types.
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("config is not representable as JSON: %w", err)
	}
	var normalized interface{}
	if err := json.Unmarshal(raw, &normalized); err != nil {
		return fmt.Errorf("config is not representable as JSON: %w", err)
	}

	if err := s.Validate(normalized); err != nil {
		return schemaErrors(err)
	}
	return nil
}

// schemaErrors flattens a jsonschema error tree into ValidationErrors.
func schemaErrors(err error) error {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err
	}

	errs := &ValidationErrors{}
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			field := strings.TrimPrefix(strings.ReplaceAll(e.InstanceLocation, "/", "."), ".")
			errs.Add(field, e.Message)
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(verr)

	if !errs.HasErrors() {
		errs.Add("", verr.Message)
	}
	return errs
}

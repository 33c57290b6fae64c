package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors struct {
	Errors []*ValidationError
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Add adds an error to the collection.
func (e *ValidationErrors) Add(field, message string) {
	e.Errors = append(e.Errors, &ValidationError{Field: field, Message: message})
}

// HasErrors returns true if there are any errors.
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

// Fields returns the offending field names in order.
func (e *ValidationErrors) Fields() []string {
	fields := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		fields[i] = err.Field
	}
	return fields
}

// Validate checks the semantic rules the schema cannot express.
//
// Returns nil if valid, or a ValidationErrors containing all validation errors.
func (c *Config) Validate() error {
	errs := &ValidationErrors{}

	if c.LoadTest.Workers < 1 {
		errs.Add("loadTest.workers", "workers must be >= 1")
	}
	if c.LoadTest.Iterations < 1 {
		errs.Add("loadTest.iterations", "iterations must be >= 1")
	}
	if c.LoadTest.Timeout < 0 {
		errs.Add("loadTest.timeout", "timeout must be >= 0")
	}
	if c.LoadTest.RequestTimeout < 0 {
		errs.Add("loadTest.requestTimeout", "requestTimeout must be >= 0")
	}
	if c.LoadTest.TargetURL != "" {
		validateURL("loadTest.targetUrl", c.LoadTest.TargetURL, errs)
	}

	switch c.Provision.Mode {
	case ProvisionLocal:
	case ProvisionStatic:
		if c.Provision.URL == "" {
			errs.Add("provision.url", "url is required for static provisioning")
		} else {
			validateURL("provision.url", c.Provision.URL, errs)
		}
	case ProvisionDocker:
		if c.Provision.Image == "" {
			errs.Add("provision.image", "image is required for docker provisioning")
		}
	default:
		errs.Add("provision.mode", fmt.Sprintf("unknown provision mode: %s", c.Provision.Mode))
	}
	if c.Provision.ContainerPort < 0 || c.Provision.ContainerPort > 65535 {
		errs.Add("provision.containerPort", "containerPort must be between 1 and 65535")
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		errs.Add("logging.level", fmt.Sprintf("unknown level %q (want debug, info, warn or error)", c.Logging.Level))
	}

	if c.Logging.Output == "file" || c.Logging.Output == "both" {
		if c.Logging.FilePath == "" {
			errs.Add("logging.filePath", "filePath is required when output includes file")
		}
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

func validateURL(field, raw string, errs *ValidationErrors) {
	u, err := url.Parse(raw)
	if err != nil {
		errs.Add(field, fmt.Sprintf("invalid URL: %v", err))
		return
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		errs.Add(field, "URL scheme must be http or https")
	}
	if u.Host == "" {
		errs.Add(field, "URL must include a host")
	}
}

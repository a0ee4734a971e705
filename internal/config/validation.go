package config

import (
	"fmt"
	"net"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2/styles"

	"github.com/conneroisu/codetour/internal/logging"
	"github.com/conneroisu/codetour/internal/reference"
	"github.com/conneroisu/codetour/internal/validation"
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder

	write := func(title string, issues []ValidationError) {
		if len(issues) == 0 {
			return
		}
		builder.WriteString(title + ":\n")
		for _, issue := range issues {
			builder.WriteString(fmt.Sprintf("  - %s: %s\n", issue.Field, issue.Message))
			for _, suggestion := range issue.Suggestions {
				builder.WriteString(fmt.Sprintf("      hint: %s\n", suggestion))
			}
		}
	}

	write("Validation errors", vr.Errors)
	write("Validation warnings", vr.Warnings)
	return builder.String()
}

func (vr *ValidationResult) fail(field string, value interface{}, message string, suggestions ...string) {
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Value: value, Message: message, Suggestions: suggestions})
}

func (vr *ValidationResult) warn(field string, value interface{}, message string, suggestions ...string) {
	vr.Warnings = append(vr.Warnings, ValidationError{Field: field, Value: value, Message: message, Suggestions: suggestions})
}

// ValidateConfigWithDetails performs comprehensive validation with detailed feedback
func ValidateConfigWithDetails(config *Config) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	validateServerConfig(&config.Server, result)
	validateContentConfig(&config.Content, result)
	validateLoaderConfig(&config.Loader, result)
	validateViewerConfig(&config.Viewer, result)
	validateTourConfig(&config.Tour, result)
	validateLogConfig(&config.Log, result)

	result.Valid = !result.HasErrors()
	return result
}

// validateConfig returns the first validation error, if any
func validateConfig(config *Config) error {
	result := ValidateConfigWithDetails(config)
	if result.HasErrors() {
		return &result.Errors[0]
	}
	return nil
}

func validateServerConfig(config *ServerConfig, result *ValidationResult) {
	// allow 0 for system-assigned ports in tests
	if config.Port < 0 || config.Port > 65535 {
		result.fail("server.port", config.Port,
			fmt.Sprintf("port %d is not in valid range 0-65535", config.Port),
			"Common development ports: 3000, 8080, 8000",
			"Port 0 lets the system assign an available port")
	} else if config.Port > 0 && config.Port < 1024 {
		result.warn("server.port", config.Port, "port below 1024 requires elevated privileges")
	}

	if err := validateHostname(config.Host); err != nil {
		result.fail("server.host", config.Host, err.Error(),
			"Use 'localhost' for local development",
			"Use '0.0.0.0' to bind to all interfaces")
	}

	if config.SessionTTL <= 0 {
		result.fail("server.session_ttl", config.SessionTTL, "session ttl must be positive", "Use a duration such as 30m")
	}
	if config.MaxSessions <= 0 {
		result.fail("server.max_sessions", config.MaxSessions, "max sessions must be positive")
	}

	validEnvs := []string{"development", "production", "test"}
	if !contains(validEnvs, config.Environment) {
		result.fail("server.environment", config.Environment, "unknown environment",
			"Available environments: "+strings.Join(validEnvs, ", "))
	}

	for _, origin := range config.AllowedOrigins {
		if origin == "*" && config.Environment == "production" {
			result.warn("server.allowed_origins", origin, "wildcard origin accepts websocket connections from any site")
		}
	}
}

func validateContentConfig(config *ContentConfig, result *ValidationResult) {
	if err := validatePath(config.Root); err != nil {
		result.fail("content.root", config.Root, err.Error())
	}

	if err := validatePath(config.Tours); err != nil {
		result.fail("content.tours", config.Tours, err.Error())
	} else if filepath.IsAbs(config.Tours) {
		result.fail("content.tours", config.Tours, "tours directory must be relative to content.root")
	}

	if config.Static != "" {
		if err := validatePath(config.Static); err != nil {
			result.fail("content.static", config.Static, err.Error())
		}
	}
}

func validateLoaderConfig(config *LoaderConfig, result *ValidationResult) {
	if config.Timeout <= 0 {
		result.fail("loader.timeout", config.Timeout, "timeout must be positive", "Use a duration such as 10s")
	}
	if config.Concurrency < 1 || config.Concurrency > 64 {
		result.fail("loader.concurrency", config.Concurrency, "concurrency must be between 1 and 64")
	}
	if config.MaxBytes <= 0 {
		result.fail("loader.max_bytes", config.MaxBytes, "max bytes must be positive")
	}
	if config.BaseURL != "" {
		if err := validation.ValidateBaseURL(config.BaseURL); err != nil {
			result.fail("loader.base_url", config.BaseURL, err.Error())
		}
	}
}

func validateViewerConfig(config *ViewerConfig, result *ValidationResult) {
	for field, name := range map[string]string{"viewer.style": config.Style, "viewer.dark_style": config.DarkStyle} {
		if name == "" {
			continue
		}
		if _, ok := styles.Registry[strings.ToLower(name)]; !ok {
			result.warn(field, name, fmt.Sprintf("unknown chroma style '%s', using the fallback style", name),
				"Common styles: github, monokai, dracula, nord")
		}
	}
}

func validateTourConfig(config *TourConfig, result *ValidationResult) {
	if _, err := reference.ParseMode(config.Interaction); err != nil {
		result.fail("tour.interaction", config.Interaction, err.Error(), "Use 'persistent' or 'hover'")
	}
	if config.Watch && config.Debounce <= 0 {
		result.fail("tour.debounce", config.Debounce, "debounce must be positive when watching")
	}
}

func validateLogConfig(config *LogConfig, result *ValidationResult) {
	if _, err := logging.ParseLevel(config.Level); err != nil {
		result.fail("log.level", config.Level, err.Error(), "Use debug, info, warn or error")
	}
	if config.Format != "text" && config.Format != "json" {
		result.fail("log.format", config.Format, "log format must be 'text' or 'json'")
	}
}

func validateHostname(host string) error {
	if host == "" {
		return fmt.Errorf("host cannot be empty")
	}
	if strings.ContainsAny(host, ";&|$`()<>\"'\\ /") {
		return fmt.Errorf("host contains invalid characters: %s", host)
	}
	if net.ParseIP(host) != nil || host == "localhost" {
		return nil
	}
	for _, label := range strings.Split(host, ".") {
		if label == "" || len(label) > 63 {
			return fmt.Errorf("invalid hostname: %s", host)
		}
	}
	return nil
}

// validatePath validates a configured directory
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	for _, segment := range strings.Split(filepath.ToSlash(path), "/") {
		if segment == ".." {
			return fmt.Errorf("path contains traversal: %s", path)
		}
	}

	if strings.ContainsAny(path, ";&|$`<>\"'\x00") {
		return fmt.Errorf("path contains invalid characters: %s", path)
	}

	return nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

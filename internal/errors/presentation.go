package errors

import (
	stderrors "errors"
	"fmt"
)

// UserMessage returns a user-friendly error message
func UserMessage(err error) string {
	var cErr *CalloutError
	if stderrors.As(err, &cErr) {
		return formatUserError(cErr)
	}
	return err.Error()
}

// formatUserError creates user-friendly error messages based on error type
func formatUserError(cErr *CalloutError) string {
	switch cErr.Type {
	case ErrorTypeValidation:
		return formatValidationError(cErr)
	case ErrorTypeNetwork:
		return formatNetworkError(cErr)
	case ErrorTypeResolution:
		return formatResolutionError(cErr)
	case ErrorTypeConfig:
		return formatConfigError(cErr)
	default:
		return cErr.Error()
	}
}

func formatValidationError(cErr *CalloutError) string {
	msg := cErr.Message
	if field, ok := cErr.Context["field"]; ok {
		msg = fmt.Sprintf("Invalid %s: %s", field, msg)
	}
	return msg
}

func formatNetworkError(cErr *CalloutError) string {
	msg := cErr.Error()
	if url, ok := cErr.Context["url"]; ok {
		msg = fmt.Sprintf("Network error accessing %s: %s", url, msg)
	}
	return msg
}

func formatResolutionError(cErr *CalloutError) string {
	if alias, ok := cErr.Context["alias"]; ok {
		return fmt.Sprintf("Alias %q: %s", alias, cErr.Message)
	}
	return cErr.Message
}

func formatConfigError(cErr *CalloutError) string {
	msg := cErr.Error()
	if configType, ok := cErr.Context["config_type"]; ok {
		msg = fmt.Sprintf("Configuration error (%s): %s", configType, msg)
	}
	return msg
}

// DebugInfo returns detailed error information for debugging
func DebugInfo(err error) map[string]interface{} {
	info := map[string]interface{}{
		"error":   err.Error(),
		"type":    "unknown",
		"context": map[string]interface{}{},
	}

	var cErr *CalloutError
	if stderrors.As(err, &cErr) {
		info["type"] = string(cErr.Type)
		info["message"] = cErr.Message
		info["context"] = cErr.Context

		if cErr.Cause != nil {
			info["cause"] = cErr.Cause.Error()
		}
	}

	return info
}

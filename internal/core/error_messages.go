package core

// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// Error codes are grouped by category:
//
// # File Errors (FILE001-FILE099)
//
// Errors related to reading and parsing the selected log file:
//
//	FILE001 - File too large: File exceeds the maximum size limit
//	          Action: Trim the log or raise UPLOAD_MAX_FILE_SIZE
//	          Patterns: "file too large", "request body too large"
//
//	FILE002 - Invalid JSON: File is not valid JSON
//	          Action: Check that the file is a complete JSON document
//	          Patterns: "invalid json"
//
//	FILE003 - Read error: File could not be read
//	          Action: Select the file again; check that it is readable
//	          Patterns: "read file", "encoding error"
//
//	FILE004 - No file: No file was selected
//	          Action: Please select a JSON log file
//	          Patterns: "no file provided"
//
//	FILE005 - Empty file: The selected file is empty
//	          Action: Select a log file with content
//	          Patterns: "empty file"
//
// # Load Errors (LOAD001-LOAD099)
//
//	LOAD001 - Superseded: A newer file was selected while this one loaded
//	          Action: None; the newer file is shown
//	          Patterns: "load superseded"
//
//	LOAD002 - System busy: Too many loads in progress
//	          Action: Please wait a moment and try again
//	          Patterns: "too many loads"
//
// # Session Errors (SES001-SES099)
//
//	SES001 - Session expired: Viewer session not found
//	         Action: Reload the page and select the file again
//	         Patterns: "session not found"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled: Request was cancelled
//	         Action: Please try again
//	         Patterns: "context canceled"
//
//	REQ002 - Request timeout: Request timed out
//	         Action: Try a smaller file or check your connection
//	         Patterns: "context deadline exceeded"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches:
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns are defined
// before general ones. "empty file" precedes "invalid json" because an empty
// upload fails to parse and carries both.
//
// # For Support Staff
//
// When a user reports an error code:
//  1. Look up the code in this reference
//  2. Check the associated patterns to understand what triggered it
//  3. Review the suggested action to guide the user
//  4. If ERR000, check application logs for the original technical error

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
//
// To add a new error pattern:
//  1. Choose the appropriate category and code range
//  2. Add the pattern in the correct position (specific before general)
//  3. Update the package documentation at the top of this file
var errorPatterns = []errorPattern{
	// =========================================================================
	// File Errors (FILE001-FILE005)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Trim the log or raise UPLOAD_MAX_FILE_SIZE",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Trim the log or raise UPLOAD_MAX_FILE_SIZE",
			Code:    "FILE001",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The selected file is empty",
			Action:  "Select a log file with content",
			Code:    "FILE005",
		},
	},
	{
		pattern: "invalid json",
		msg: UserMessage{
			Message: "File is not valid JSON",
			Action:  "Check that the file is a complete JSON document",
			Code:    "FILE002",
		},
	},
	{
		pattern: "read file",
		msg: UserMessage{
			Message: "File could not be read",
			Action:  "Select the file again and check that it is readable",
			Code:    "FILE003",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File contains invalid characters",
			Action:  "Save the log as UTF-8",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a JSON log file",
			Code:    "FILE004",
		},
	},

	// =========================================================================
	// Load Errors (LOAD001-LOAD002)
	// =========================================================================
	{
		pattern: "load superseded",
		msg: UserMessage{
			Message: "A newer file was selected while this one was loading",
			Action:  "The newer file is shown",
			Code:    "LOAD001",
		},
	},
	{
		pattern: "too many loads",
		msg: UserMessage{
			Message: "System is busy loading other files",
			Action:  "Please wait a moment and try again",
			Code:    "LOAD002",
		},
	},

	// =========================================================================
	// Session Errors (SES001)
	// =========================================================================
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "Viewer session not found",
			Action:  "The session may have expired. Reload the page and select the file again",
			Code:    "SES001",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},

	// =========================================================================
	// Request Errors (REQ001-REQ002)
	// =========================================================================
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "REQ002",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
// This is the fallback for unexpected errors. Support staff should check
// application logs for the original technical error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
//
// Example:
//
//	_, err := porelog.LoadBytes([]byte("{oops"))
//	msg := MapError(err)
//	// msg.Code == "FILE002"
//	// msg.Message == "File is not valid JSON"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
//
// Example output: "File is not valid JSON (Code: FILE002). Check that the file is a complete JSON document"
//
// This is the primary function for displaying errors to end users.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing checks if an error matches a known pattern and should be shown to users.
// Returns true if the error matches a specific pattern (not the generic ERR000 fallback).
// Use this to decide whether to show the raw error or the mapped user message.
//
// Example:
//
//	if IsUserFacing(err) {
//	    showToUser(FormatUserError(err))
//	} else {
//	    log.Error(err) // Log technical error
//	    showToUser("An error occurred. Please try again.")
//	}
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging while providing a clean message for users.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error to a user-friendly message.
// The returned UserError preserves the original technical error for logging via Unwrap(),
// while providing a clean user message via Error().
//
// Returns nil if err is nil.
//
// Example:
//
//	ue := NewUserError(loadErr)
//	log.Error(ue.Technical)   // Log original error
//	fmt.Println(ue.Error())   // Show "File is not valid JSON"
//	fmt.Println(ue.User.Code) // Show "FILE002"
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}

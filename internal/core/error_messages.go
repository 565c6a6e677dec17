package core

// error_messages.go maps technical errors to user-facing messages with codes
// that users can quote to support.
//
// # Extraction Errors (EXT001-EXT099)
//
//	EXT001 - No pages: the document has no pages
//	EXT002 - Unreadable: the file is not a readable PDF or table
//	EXT003 - No table: no table was found on any page
//	EXT004 - No data: the table has a header but no data rows
//
// # Column Errors (COL001-COL099)
//
//	COL001 - Identifier column not found in headers or values
//
// # Normalization Errors (NRM001-NRM099)
//
//	NRM001 - No valid records: every row was dropped during normalization
//	NRM002 - Invalid seniority: a seniority value has no digits
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - A roster failed validation before comparison
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large
//	FILE002 - Unsupported document type
//	FILE003 - No file provided
//	FILE004 - Empty file
//
// # Comparison Errors (CMP001-CMP099)
//
//	CMP001 - System busy: too many comparisons in progress
//	CMP002 - Request cancelled
//	CMP003 - Request timed out
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Missing RE for a lookup
//	REQ002 - Unsupported report format
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error; check application logs for the technical error
//
// Patterns are matched case-insensitively with strings.Contains. The first
// matching pattern wins, so specific patterns come before general ones.

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
// Order matters: the first match wins.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Extraction Errors (EXT001-EXT004)
	// =========================================================================
	{
		pattern: ReasonNoPages,
		msg: UserMessage{
			Message: "The document has no pages",
			Action:  "Check that the correct file was selected",
			Code:    "EXT001",
		},
	},
	{
		pattern: ReasonUnreadable,
		msg: UserMessage{
			Message: "The document could not be read",
			Action:  "Upload the roster as a text PDF or a CSV export",
			Code:    "EXT002",
		},
	},
	{
		pattern: ReasonNoTable,
		msg: UserMessage{
			Message: "No table was found in the document",
			Action:  "Scanned PDFs are not supported; use the published text PDF",
			Code:    "EXT003",
		},
	},
	{
		pattern: ReasonNoDataRows,
		msg: UserMessage{
			Message: "The table has no data rows",
			Action:  "Check that the roster is not empty",
			Code:    "EXT004",
		},
	},

	// =========================================================================
	// Column Errors (COL001)
	// =========================================================================
	{
		pattern: "identifier column not found",
		msg: UserMessage{
			Message: "Could not find the RE column",
			Action:  "Make sure the roster has an RE column with registration numbers",
			Code:    "COL001",
		},
	},

	// =========================================================================
	// Normalization Errors (NRM001-NRM002)
	// =========================================================================
	{
		pattern: "no valid records",
		msg: UserMessage{
			Message: "No valid records were found",
			Action:  "Check that RE values have between 4 and 7 digits",
			Code:    "NRM001",
		},
	},
	{
		pattern: "normalize seniority_rank",
		msg: UserMessage{
			Message: "A seniority value is not a number",
			Action:  "Review the SENIORIDADE column",
			Code:    "NRM002",
		},
	},

	// =========================================================================
	// Validation Errors (VAL001)
	// =========================================================================
	{
		pattern: "validate ",
		msg: UserMessage{
			Message: "A roster is not valid for comparison",
			Action:  "Check that both files are seniority rosters",
			Code:    "VAL001",
		},
	},

	// =========================================================================
	// File Errors (FILE001-FILE004)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Upload only the roster document",
			Code:    "FILE001",
		},
	},
	{
		pattern: "unsupported document",
		msg: UserMessage{
			Message: "Unsupported document type",
			Action:  "Upload a PDF or CSV file",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select both roster files",
			Code:    "FILE003",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a roster with data rows",
			Code:    "FILE004",
		},
	},

	// =========================================================================
	// Comparison Errors (CMP001-CMP003)
	// =========================================================================
	{
		pattern: "too many comparisons",
		msg: UserMessage{
			Message: "System is busy processing other comparisons",
			Action:  "Please wait a moment and try again",
			Code:    "CMP001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "CMP002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try again with smaller documents",
			Code:    "CMP003",
		},
	},

	// =========================================================================
	// Request Errors (REQ001-REQ002)
	// =========================================================================
	{
		pattern: "identifier is required",
		msg: UserMessage{
			Message: "No RE was given",
			Action:  "Enter the RE of the person to look up",
			Code:    "REQ001",
		},
	},
	{
		pattern: "unsupported format",
		msg: UserMessage{
			Message: "Unsupported report format",
			Action:  "Use json, csv or html",
			Code:    "REQ002",
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
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the first pattern match, or ERR000 when nothing matches.
//
// Example:
//
//	msg := MapError(&ColumnResolutionError{Headers: h})
//	// msg.Code == "COL001"
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
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
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
// Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}

// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package internal

import "errors"

// ErrorWithSuggestion pairs an error with the action that resolves it, e.g. the environment variable to set.
type ErrorWithSuggestion struct {
	Suggestion string
	Err        error
}

// Error returns the error message
func (es *ErrorWithSuggestion) Error() string {
	return es.Err.Error()
}

// Unwrap returns the wrapped error
func (es *ErrorWithSuggestion) Unwrap() error {
	return es.Err
}

// ErrorWithTraceId carries the id of the trace recorded for a failed tool call.
type ErrorWithTraceId struct {
	TraceId string
	Err     error
}

// Error returns the error message
func (et *ErrorWithTraceId) Error() string {
	return et.Err.Error()
}

// Unwrap returns the wrapped error
func (et *ErrorWithTraceId) Unwrap() error {
	return et.Err
}

// SuggestionOf returns the suggestion of the first ErrorWithSuggestion in err's chain.
func SuggestionOf(err error) (string, bool) {
	var suggestionErr *ErrorWithSuggestion
	if errors.As(err, &suggestionErr) && suggestionErr.Suggestion != "" {
		return suggestionErr.Suggestion, true
	}

	return "", false
}

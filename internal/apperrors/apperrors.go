package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("resource not found")

	// Configuration errors: the caller asked for something inconsistent
	// with the project's setup. Never degraded to an empty recipient set.
	ErrUnknownTarget     = errors.New("unknown notification target type")
	ErrMissingAttributes = errors.New("issue owners target requires event attributes")
	ErrTeamNotInProject  = errors.New("team is not associated with project")

	// Data errors: a persisted ownership schema could not be decoded.
	// Resolution never proceeds with a partially parsed schema.
	ErrMalformedSchema = errors.New("malformed ownership schema")

	ErrInvalidRequest = errors.New("invalid request body")
	ErrValidation     = errors.New("validation failed")
)

type TeamNotInProjectError struct {
	TeamSlug  string
	ProjectID string
}

func (e *TeamNotInProjectError) Error() string {
	return fmt.Sprintf("team '%s' is not associated with project '%s'", e.TeamSlug, e.ProjectID)
}
func (e *TeamNotInProjectError) Is(target error) bool { return target == ErrTeamNotInProject }

type MalformedSchemaError struct {
	Reason string
}

func (e *MalformedSchemaError) Error() string {
	return fmt.Sprintf("malformed ownership schema: %s", e.Reason)
}
func (e *MalformedSchemaError) Is(target error) bool { return target == ErrMalformedSchema }

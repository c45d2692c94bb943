package cmd

import "fmt"

// InputNotFoundError reports a missing source file.
type InputNotFoundError struct {
	Path string
}

func (e InputNotFoundError) Error() string {
	return fmt.Sprintf("Error: Input file not found at %s", e.Path)
}

// ValidationError reports bad user input such as an unknown flag value.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("no records found for the provided keys")
	ErrNoRecords         = errors.New("no records found")
	ErrSyncInProgress    = errors.New("a sync is already running")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrMissingRecordID   = errors.New("record has no id")
	ErrMappingExists     = errors.New("an active mapping already exists for this field")
	ErrUnknownField      = errors.New("unknown app field")
	ErrInvalidRecordType = errors.New("invalid record type")
)

// UnknownFieldError names the rejected field and the fields that can be mapped
type UnknownFieldError struct {
	Field string
	Known []string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("%s %q (known: %s)", ErrUnknownField, e.Field, strings.Join(e.Known, ", "))
}

func (e *UnknownFieldError) Unwrap() error {
	return ErrUnknownField
}

func errorsIsAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

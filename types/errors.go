package types

import (
	"errors"
	"fmt"
)

var (
	ErrMissingParam       = errors.New("missing param")
	ErrInvalidParam       = errors.New("invalid param")
	ErrModelNotFound      = errors.New("model not found")
	ErrModelNotModifiable = errors.New("model not modifiable")
	ErrMessageTooLarge    = errors.New("message too large")
	ErrNotImplemented     = errors.New("not implemented")
	ErrSendFailed         = errors.New("send failed")
)

type MissingParamError struct {
	Name string
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("Missing %s.", e.Name)
}

func (e *MissingParamError) Unwrap() error { return ErrMissingParam }

type InvalidParamError struct {
	Name     string
	Expected string
}

func (e *InvalidParamError) Error() string {
	return fmt.Sprintf("Invalid %s, expected %s.", e.Name, e.Expected)
}

func (e *InvalidParamError) Unwrap() error { return ErrInvalidParam }

type ModelNotFoundError struct {
	Model string
}

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("Entity with name %s cannot be found.", e.Model)
}

func (e *ModelNotFoundError) Unwrap() error { return ErrModelNotFound }

type ModelNotModifiableError struct {
	Model string
}

func (e *ModelNotModifiableError) Error() string {
	return fmt.Sprintf("%s is not modifiable.", e.Model)
}

func (e *ModelNotModifiableError) Unwrap() error { return ErrModelNotModifiable }

type MessageTooLargeError struct {
	Size int
	Max  int
}

func (e *MessageTooLargeError) Error() string {
	return fmt.Sprintf("message size %d exceeds limit %d", e.Size, e.Max)
}

func (e *MessageTooLargeError) Unwrap() error { return ErrMessageTooLarge }

type NotImplementedError struct {
	Scheme string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("not implemented: %s", e.Scheme)
}

func (e *NotImplementedError) Unwrap() error { return ErrNotImplemented }

// SendError marks a failed network send. Callers decide whether to retry.
type SendError struct {
	Type ActionType
	Err  error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send %s fail: %v", e.Type, e.Err)
}

func (e *SendError) Unwrap() []error { return []error{ErrSendFailed, e.Err} }

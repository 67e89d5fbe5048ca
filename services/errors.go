// services/errors.go
package services

import "fmt"

// ErrorKind classifies a service failure so the HTTP layer can map it to a
// status code without inspecting message text.
type ErrorKind int

const (
	KindBadRequest ErrorKind = iota
	KindNotFound
	KindConflict
	KindBusinessRule
)

// ServiceError is returned by the billing services for every validation
// failure. The message always names the offending entity.
type ServiceError struct {
	Kind    ErrorKind
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func BadRequestf(format string, args ...interface{}) *ServiceError {
	return &ServiceError{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...interface{}) *ServiceError {
	return &ServiceError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...interface{}) *ServiceError {
	return &ServiceError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func BusinessRulef(format string, args ...interface{}) *ServiceError {
	return &ServiceError{Kind: KindBusinessRule, Message: fmt.Sprintf(format, args...)}
}

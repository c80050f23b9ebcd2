package core

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorProxyCreationFailed   = "NEARD_PROXY_CREATION_FAILED"
	ErrorEnumerationFailed     = "NEARD_ENUMERATION_FAILED"
	ErrorAdapterNotFound       = "NEARD_ADAPTER_NOT_FOUND"
	ErrorInvalidParameter      = "NEARD_INVALID_PARAMETER"
	ErrorAdapterConflict       = "NEARD_ADAPTER_CONFLICT"
	ErrorAdapterCreationFailed = "NEARD_ADAPTER_CREATION_FAILED"
	ErrorSubscriptionFailed    = "NEARD_SUBSCRIPTION_FAILED"
	ErrorInternal              = "NEARD_INTERNAL_ERROR"
)

func newError(message string, category goerrors.Category, textCode string, metadata map[string]any) *goerrors.Error {
	err := goerrors.New(message, category).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func wrapError(
	source error,
	category goerrors.Category,
	textCode string,
	message string,
	metadata map[string]any,
) *goerrors.Error {
	if source == nil {
		return newError(message, category, textCode, metadata)
	}
	err := goerrors.Wrap(source, category, message).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func ProxyCreationError(source error, path string) error {
	return wrapError(source, goerrors.CategoryExternal, ErrorProxyCreationFailed,
		"core: unable to create proxy", map[string]any{"path": path})
}

func EnumerationError(source error) error {
	return wrapError(source, goerrors.CategoryExternal, ErrorEnumerationFailed,
		"core: managed objects enumeration failed", nil)
}

func NotFoundError(identifier string) error {
	return newError("core: adapter not found", goerrors.CategoryNotFound, ErrorAdapterNotFound,
		map[string]any{"adapter": identifier})
}

func InvalidParameterError(field string, message string) error {
	return newError("core: "+message, goerrors.CategoryBadInput, ErrorInvalidParameter,
		map[string]any{"field": field})
}

func AdapterConflictError(name string, handleID string) error {
	return newError("core: adapter already tracked", goerrors.CategoryConflict, ErrorAdapterConflict,
		map[string]any{"adapter": name, "handle_id": handleID})
}

func AdapterCreationError(source error, name string) error {
	return wrapError(source, goerrors.CategoryOperation, ErrorAdapterCreationFailed,
		"core: adapter creation failed", map[string]any{"adapter": name})
}

func SubscriptionError(source error, kind SignalKind) error {
	return wrapError(source, goerrors.CategoryExternal, ErrorSubscriptionFailed,
		"core: signal subscription failed", map[string]any{"signal": string(kind)})
}

func IsProxyCreation(err error) bool { return hasTextCode(err, ErrorProxyCreationFailed) }

func IsEnumeration(err error) bool { return hasTextCode(err, ErrorEnumerationFailed) }

func IsNotFound(err error) bool { return hasTextCode(err, ErrorAdapterNotFound) }

func IsInvalidParameter(err error) bool { return hasTextCode(err, ErrorInvalidParameter) }

func IsAdapterConflict(err error) bool { return hasTextCode(err, ErrorAdapterConflict) }

func IsAdapterCreation(err error) bool { return hasTextCode(err, ErrorAdapterCreationFailed) }

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(richErr.TextCode), code)
}

func defaultErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureErrorEnvelope(richErr)
	}
	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureErrorEnvelope(mapped)
}

func ensureErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ErrorInvalidParameter
	case goerrors.CategoryNotFound:
		return ErrorAdapterNotFound
	case goerrors.CategoryConflict:
		return ErrorAdapterConflict
	case goerrors.CategoryOperation:
		return ErrorAdapterCreationFailed
	default:
		return ErrorInternal
	}
}

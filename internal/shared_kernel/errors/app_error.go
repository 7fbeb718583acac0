package apperrors

type Type string

const (
	TypeMissingInput         Type = "missing_input"
	TypeNotFound             Type = "not_found"
	TypeUpstream             Type = "upstream"
	TypeInvalidConfiguration Type = "invalid_configuration"
	TypeInternal             Type = "internal"
)

type AppError struct {
	Type    Type           `json:"type"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

func NewMissingInput(code, message string, details map[string]any) *AppError {
	return &AppError{
		Type:    TypeMissingInput,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func NewNotFound(code, message string, details map[string]any) *AppError {
	return &AppError{
		Type:    TypeNotFound,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func NewUpstream(code, message string, details map[string]any) *AppError {
	return &AppError{
		Type:    TypeUpstream,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func NewInvalidConfiguration(code, message string, details map[string]any) *AppError {
	return &AppError{
		Type:    TypeInvalidConfiguration,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func NewInternal(code, message string, details map[string]any) *AppError {
	return &AppError{
		Type:    TypeInternal,
		Code:    code,
		Message: message,
		Details: details,
	}
}

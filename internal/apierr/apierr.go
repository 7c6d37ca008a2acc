// Package apierr defines the JSON error body shared by handlers and middleware.
package apierr

type payload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Response is rendered as {"error":{"code":...,"message":...}}.
type Response struct {
	Error payload `json:"error"`
}

func New(code, message string) Response {
	return Response{
		Error: payload{
			Code:    code,
			Message: message,
		},
	}
}

package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// Amount pairs an integer minor-unit value with its display rendering.
type Amount struct {
	Minor   int64  `json:"minor"`
	Display string `json:"display"`
}

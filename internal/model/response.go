package model

// Response is the envelope returned by every user operation.
type Response struct {
	Code    int `json:"code"`
	Message any `json:"message"`
}

package types

// Status labels the outcome of a relay response.
type Status string

// Response status values. The SPA front-end switches on these exact strings.
const (
	// StatusSuccess indicates the request was handled and data may be present.
	StatusSuccess Status = "Success"

	// StatusFail indicates a handled failure such as invalid input or a
	// mismatched secret key.
	StatusFail Status = "Fail"

	// StatusUnauthorized indicates the request lacked a valid secret key.
	StatusUnauthorized Status = "Unauthorized"
)

// Envelope is the JSON wrapper for every non-streaming relay response.
type Envelope struct {
	// Status is the response outcome.
	Status Status `json:"status"`

	// Message is a human-readable note; empty on plain data responses.
	Message string `json:"message"`

	// Data is the endpoint-specific payload; null when there is none.
	Data interface{} `json:"data"`
}

// NewSuccess creates a Success envelope carrying data.
func NewSuccess(data interface{}) *Envelope {
	return &Envelope{
		Status: StatusSuccess,
		Data:   data,
	}
}

// NewSuccessMessage creates a Success envelope with a message and no data.
func NewSuccessMessage(message string) *Envelope {
	return &Envelope{
		Status:  StatusSuccess,
		Message: message,
	}
}

// NewFail creates a Fail envelope with a message and no data.
func NewFail(message string) *Envelope {
	return &Envelope{
		Status:  StatusFail,
		Message: message,
	}
}

// NewUnauthorized creates an Unauthorized envelope with a message and no data.
func NewUnauthorized(message string) *Envelope {
	return &Envelope{
		Status:  StatusUnauthorized,
		Message: message,
	}
}

package relay

import (
	"errors"

	"lattice-hq/hermes/pkg/relay/types"
	"lattice-hq/hermes/pkg/upstream"
)

// ErrorText returns the user-facing message for any error crossing the relay
// boundary. Request errors carry their own message; upstream failures go
// through the status message mapping.
//
// Example usage:
//
//	if err != nil {
//	    stream.WriteError(ErrorText(err))
//	    return
//	}
func ErrorText(err error) string {
	if err == nil {
		return ""
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Message
	}

	return upstream.ErrorMessage(err)
}

// FailEnvelope converts an error into the Fail envelope written by
// non-streaming endpoints.
func FailEnvelope(err error) *types.Envelope {
	return types.NewFail(ErrorText(err))
}

package protocol

// Error codes carried by ERROR messages.
const (
	// The frame is not JSON of this protocol version or has an unknown type.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"
	// The frame failed schema validation.
	ErrBadRequest = "E_BAD_REQUEST"
	// HELLO on a session that is already open.
	ErrConflict = "E_CONFLICT"
	// A fix failed while transforming the record.
	ErrInternal = "E_INTERNAL"
)

var codeText = map[string]string{
	ErrProtoBadRequest: "malformed frame",
	ErrBadRequest:      "invalid message",
	ErrConflict:        "session already open",
	ErrInternal:        "fix failed",
}

// CodeText returns the default message for code, or "" if it is unknown.
func CodeText(code string) string { return codeText[code] }

// IsKnownCode accepts the empty code of a successful reply.
func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := codeText[code]
	return ok
}

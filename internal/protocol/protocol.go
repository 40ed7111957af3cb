package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeHello   = "HELLO"
	TypeWelcome = "WELCOME"
	TypeInput   = "INPUT"
	TypeFPS     = "FPS"
	TypeEvent   = "EVENT"
	TypePose    = "POSE"
)

// Input kinds carried by INPUT messages.
const (
	InputPointerDown = "POINTER_DOWN"
	InputPointerUp   = "POINTER_UP"
	InputPointerMove = "POINTER_MOVE"
	InputKeyDown     = "KEY_DOWN"
	InputCamera      = "CAMERA"
)

// Event is a loosely-typed scene event entry; the set of keys depends on "type".
type Event map[string]any

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}

package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	ViewerName      string            `json:"viewer_name"`
	Capabilities    HelloCapabilities `json:"capabilities"`
}

type HelloCapabilities struct {
	AspectRatio float64 `json:"aspect_ratio,omitempty"`
	MaxQueue    int     `json:"max_queue,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string        `json:"type"`
	ProtocolVersion string        `json:"protocol_version"`
	SessionID       string        `json:"session_id"`
	SceneParams     SceneParams   `json:"scene_params"`
	Quality         QualityConfig `json:"quality"`
}

type SceneParams struct {
	TickRateHz    int     `json:"tick_rate_hz"`
	BoundaryR     float64 `json:"boundary_r"`
	PanelCount    int     `json:"panel_count"`
	ContentDigest string  `json:"content_digest"`
}

// QualityConfig is pushed to the client whenever the adaptive tier changes.
type QualityConfig struct {
	PixelDensity       float64 `json:"pixel_density"`
	ShadowsEnabled     bool    `json:"shadows_enabled"`
	ParticlesEnabled   bool    `json:"particles_enabled"`
	DecorationsEnabled bool    `json:"decorations_enabled"`
}

// INPUT (client -> server). Pointer coordinates are normalized device
// coordinates in [-1,1]; DragPX is the screen-space travel since POINTER_DOWN,
// reported on POINTER_UP so the server can reject orbit drags.
type InputMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	Kind            string  `json:"kind"`
	X               float64 `json:"x,omitempty"`
	Y               float64 `json:"y,omitempty"`
	DragPX          float64 `json:"drag_px,omitempty"`
	Key             string  `json:"key,omitempty"`

	// CAMERA inputs report the client-side orbit pose during free look.
	Pos    *[3]float64 `json:"pos,omitempty"`
	Target *[3]float64 `json:"target,omitempty"`
}

// FPS (client -> server): a batch of frame-rate samples for the quality tier.
type FPSMsg struct {
	Type            string    `json:"type"`
	ProtocolVersion string    `json:"protocol_version"`
	Samples         []float64 `json:"samples"`
}

// EVENT (server -> client)
type EventMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	Tick            uint64  `json:"tick"`
	Events          []Event `json:"events"`
}

// POSE (server -> client): per-tick interpolation targets for the renderer.
type PoseMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	Tick            uint64      `json:"tick"`
	Mode            string      `json:"mode"`
	Camera          CameraPose  `json:"camera"`
	Agent           AgentPose   `json:"agent"`
	Panels          []PanelPose `json:"panels"`
}

type CameraPose struct {
	Pos    [3]float64 `json:"pos"`
	Target [3]float64 `json:"target"`
}

type AgentPose struct {
	Pos     [2]float64 `json:"pos"` // x,z; y is fixed client-side
	Heading float64    `json:"heading"`
	Wheel   float64    `json:"wheel"`
	State   string     `json:"state"`
}

type PanelPose struct {
	Index          int     `json:"index"`
	Yaw            float64 `json:"yaw"`
	Tracking       bool    `json:"tracking"`
	ContentVisible bool    `json:"content_visible"`
}

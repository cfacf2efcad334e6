package protocol

import "datafixer.ai/internal/nbt"

// HELLO (client -> server): the state of the world being loaded.
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	WorldID         string `json:"world_id,omitempty"`
	// StoredVersion is absent for worlds that never recorded a fix version.
	StoredVersion *int              `json:"stored_version,omitempty"`
	SpecialMode   bool              `json:"special_mode,omitempty"`
	ModList       map[string]string `json:"mod_list,omitempty"`
}

// GATE (server -> client): whether records will be fixed at all.
type GateMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	SessionID       string         `json:"session_id"`
	Run             bool           `json:"run"`
	PreviousVersion int            `json:"previous_version"`
	PreviousName    string         `json:"previous_name"`
	Newer           bool           `json:"newer,omitempty"`
	ActiveFixes     map[string]int `json:"active_fixes"`
}

// RECORD (client -> server). Exactly one payload matching Kind is set.
type RecordMsg struct {
	Type            string        `json:"type"`
	ProtocolVersion string        `json:"protocol_version"`
	Seq             uint64        `json:"seq"`
	Kind            string        `json:"kind"`
	Item            *ItemRecord   `json:"item,omitempty"`
	Block           *BlockRecord  `json:"block,omitempty"`
	TileEntity      *nbt.Compound `json:"tile_entity,omitempty"`
}

// FIXED (server -> client): the record after the pass.
type FixedMsg struct {
	Type            string        `json:"type"`
	ProtocolVersion string        `json:"protocol_version"`
	Seq             uint64        `json:"seq"`
	Kind            string        `json:"kind"`
	Fired           bool          `json:"fired"`
	Item            *ItemRecord   `json:"item,omitempty"`
	Block           *BlockRecord  `json:"block,omitempty"`
	TileEntity      *nbt.Compound `json:"tile_entity,omitempty"`
}

// DONE (client -> server): no more records.
type DoneMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
}

// COMMIT (server -> client): the version to persist and per fix counts.
type CommitMsg struct {
	Type            string                    `json:"type"`
	ProtocolVersion string                    `json:"protocol_version"`
	Version         int                       `json:"version"`
	Fired           int                       `json:"fired"`
	Hits            map[string]map[string]int `json:"hits,omitempty"`
}

type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
	Seq             uint64 `json:"seq,omitempty"`
}

// NewError builds an ERROR reply. An empty msg takes the code's default text.
func NewError(code, msg string, seq uint64) ErrorMsg {
	if msg == "" {
		msg = CodeText(code)
	}
	return ErrorMsg{Type: TypeError, ProtocolVersion: Version, Code: code, Message: msg, Seq: seq}
}

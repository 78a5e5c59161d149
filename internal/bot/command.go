package bot

import (
	"encoding/json"
	"fmt"
)

// CommandKind discriminates callback commands. Dispatch switches on the kind
// with an explicit default arm, so an unrecognized payload is an error rather
// than a silent no-op.
type CommandKind int

const (
	CmdUnknown CommandKind = iota
	CmdList
	CmdShowItem
	CmdDeleteItem
	CmdPage
)

// String returns the wire name of the command, used as a metrics label.
func (k CommandKind) String() string {
	switch k {
	case CmdList:
		return "list"
	case CmdShowItem:
		return "item"
	case CmdDeleteItem:
		return "delete"
	case CmdPage:
		return "page"
	default:
		return "unknown"
	}
}

// Command is a decoded callback button press.
type Command struct {
	Kind   CommandKind
	ItemID int64 // set for item and delete commands
	Page   int   // 1-based page the button was rendered on or points to
}

// callbackPayload is the wire shape carried in keyboard button payloads.
type callbackPayload struct {
	Cmd  string `json:"cmd"`
	PK   int64  `json:"pk,omitempty"`
	Page int    `json:"page,omitempty"`
}

// ParseCommand decodes a callback payload into a Command. Payloads that do
// not decode or carry an unrecognized cmd come back as errors.
func ParseCommand(payload []byte) (Command, error) {
	var p callbackPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return Command{}, fmt.Errorf("decoding callback payload: %w", err)
	}

	var kind CommandKind
	switch p.Cmd {
	case "list":
		kind = CmdList
	case "item":
		kind = CmdShowItem
	case "delete":
		kind = CmdDeleteItem
	case "page":
		kind = CmdPage
	default:
		return Command{}, fmt.Errorf("unknown callback command %q", p.Cmd)
	}

	return Command{Kind: kind, ItemID: p.PK, Page: p.Page}, nil
}

func encodePayload(kind CommandKind, itemID int64, page int) string {
	raw, _ := json.Marshal(callbackPayload{Cmd: kind.String(), PK: itemID, Page: page})
	return string(raw)
}

package bot

import (
	"encoding/json"

	"github.com/avoronov/pricedrop/internal/pager"
	domain "github.com/avoronov/pricedrop/pkg/types"
)

// labelWidth is the maximum button label length the messenger renders.
const labelWidth = 40

// Keyboard is an inline keyboard in the messenger's wire format.
type Keyboard struct {
	Inline  bool       `json:"inline"`
	Buttons [][]Button `json:"buttons"`
}

// Button is a single callback button.
type Button struct {
	Action ButtonAction `json:"action"`
	Color  string       `json:"color,omitempty"`
}

// ButtonAction carries the button label and its callback payload. The
// payload field is a JSON document serialized into a string, which is how
// the messenger transports it.
type ButtonAction struct {
	Type    string `json:"type"`
	Label   string `json:"label"`
	Payload string `json:"payload,omitempty"`
}

// Marshal renders the keyboard to its wire form.
func (k *Keyboard) Marshal() ([]byte, error) {
	return json.Marshal(k)
}

func callbackButton(label, payload, color string) Button {
	return Button{
		Action: ButtonAction{
			Type:    "callback",
			Label:   pager.Ellipsis(label, labelWidth),
			Payload: payload,
		},
		Color: color,
	}
}

// startKeyboard is the single "My items" button shown with the welcome reply.
func startKeyboard() *Keyboard {
	return &Keyboard{
		Inline: true,
		Buttons: [][]Button{
			{callbackButton("My items", encodePayload(CmdList, 0, 1), "primary")},
		},
	}
}

// listKeyboard renders one row per item plus a chevron navigation row.
// Chevrons carry the adjacent page number and appear only when that page
// exists.
func listKeyboard(items []domain.Item, page pager.Page) *Keyboard {
	kb := &Keyboard{Inline: true}

	for _, item := range items {
		kb.Buttons = append(kb.Buttons, []Button{
			callbackButton(item.Name, encodePayload(CmdShowItem, item.ID, page.Number), ""),
		})
	}

	var nav []Button
	if page.HasPrev {
		nav = append(nav, callbackButton("<", encodePayload(CmdPage, 0, page.Number-1), "secondary"))
	}
	if page.HasNext {
		nav = append(nav, callbackButton(">", encodePayload(CmdPage, 0, page.Number+1), "secondary"))
	}
	if len(nav) > 0 {
		kb.Buttons = append(kb.Buttons, nav)
	}

	return kb
}

// detailKeyboard offers a way back to the list page the item was opened from
// and a stop-tracking action.
func detailKeyboard(itemID int64, page int) *Keyboard {
	return &Keyboard{
		Inline: true,
		Buttons: [][]Button{
			{callbackButton("Back to list", encodePayload(CmdPage, 0, page), "secondary")},
			{callbackButton("Stop tracking", encodePayload(CmdDeleteItem, itemID, page), "negative")},
		},
	}
}

package websocket

import (
	"encoding/json"

	"github.com/guiltyguilty/disturb/internal/domain"
)

// Frame types sent to browsers.
const (
	FrameSnapshot = "snapshot"
	FrameText     = "text"
)

type snapshotFrame struct {
	Type     string              `json:"type"`
	Elements []domain.TextChange `json:"elements"`
}

type textFrame struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Text string `json:"text"`
}

func encodeSnapshot(elements []domain.TextChange) ([]byte, error) {
	if elements == nil {
		elements = []domain.TextChange{}
	}
	return json.Marshal(snapshotFrame{Type: FrameSnapshot, Elements: elements})
}

func encodeText(change domain.TextChange) ([]byte, error) {
	return json.Marshal(textFrame{Type: FrameText, ID: change.ID, Text: change.Text})
}

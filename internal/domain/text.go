package domain

// TextTarget is a displayable text container whose content can be read and
// replaced. Implementations must tolerate concurrent calls: restores fire on
// timer goroutines while the scheduling loop may be writing another element.
type TextTarget interface {
	Text() string
	SetText(text string)
}

// TextChange is emitted whenever a discovered page element changes its text.
type TextChange struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// ChangePublisher fans out text changes to interested parties (live clients).
type ChangePublisher interface {
	PublishTextChanged(change TextChange)
}

// ElementInfo describes one disturbable element for read-only consumers.
type ElementInfo struct {
	ID             string  `json:"id"`
	Rate           float64 `json:"rate"`
	RestoreDelayMS int64   `json:"restore_delay_ms"`
	Alphabet       string  `json:"alphabet"`
	Original       string  `json:"original"`
	Text           string  `json:"text"`
}

package types

// ExecutionRequest is the body sent to the execution service
type ExecutionRequest struct {
	Language string `json:"language"`
	Script   string `json:"script"`
	// Stdin is nil when there is no input. An absent field and an explicit
	// empty string are different payloads.
	Stdin *string `json:"stdin,omitempty"`
}

// ExecutionResult is the body returned by the execution service
type ExecutionResult struct {
	Output         string `json:"output"`
	CompileMessage string `json:"compile_message"`
}

// LanguageInfo represents a catalogue entry for API responses
type LanguageInfo struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Icon    string `json:"icon"`
	Snippet string `json:"snippet"`
}

// EditorState represents the editable buffers of a session
type EditorState struct {
	Language string `json:"language"`
	Source   string `json:"source"`
	Stdin    string `json:"stdin"`
}

// ViewInfo represents the presentable outcome of the latest run
type ViewInfo struct {
	Phase   string `json:"phase"`
	Seq     uint64 `json:"seq"`
	Output  string `json:"output"`
	IsError bool   `json:"is_error"`
	Loading bool   `json:"loading"`
	Reason  string `json:"reason,omitempty"`
}

// SessionInfo represents a mounted editor session
type SessionInfo struct {
	ID    string      `json:"id"`
	State EditorState `json:"state"`
	View  ViewInfo    `json:"view"`
}

// CreateSessionRequest is the body of a session creation request
type CreateSessionRequest struct {
	Language string `json:"language,omitempty"`
}

// LanguageRequest selects a language for a session
type LanguageRequest struct {
	Language string `json:"language"`
}

// TextRequest replaces a text buffer
type TextRequest struct {
	Text string `json:"text"`
}

// KeyEvent mirrors a browser keydown event
type KeyEvent struct {
	Key      string `json:"key"`
	CtrlKey  bool   `json:"ctrlKey,omitempty"`
	AltKey   bool   `json:"altKey,omitempty"`
	ShiftKey bool   `json:"shiftKey,omitempty"`
	MetaKey  bool   `json:"metaKey,omitempty"`
}

// KeyResponse reports whether a key event triggered an action
type KeyResponse struct {
	Handled bool `json:"handled"`
}

// RunResponse reports the sequence number of a submitted run
type RunResponse struct {
	Seq uint64 `json:"seq"`
}

// VersionResponse is returned by the root endpoint
type VersionResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

// WebSocketMessage represents a WebSocket message
type WebSocketMessage struct {
	Type     string       `json:"type"`
	Language string       `json:"language,omitempty"`
	Text     string       `json:"text,omitempty"`
	Key      *KeyEvent    `json:"key,omitempty"`
	State    *EditorState `json:"state,omitempty"`
	View     *ViewInfo    `json:"view,omitempty"`
	Seq      uint64       `json:"seq,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code,omitempty"`
}

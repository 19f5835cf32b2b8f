package model

import "encoding/json"

// Parameter bounds enforced by the session mutation layer.
const (
	MinMaxTokens = 1
	MaxMaxTokens = 200000

	MinTemperature = 0.0
	MaxTemperature = 1.0
)

// Defaults for a freshly created session.
const (
	DefaultModel       = "claude-sonnet-4-5"
	DefaultMaxTokens   = 8192
	DefaultTemperature = 1.0
)

type BlockType string

const (
	BlockText       BlockType = "text"
	BlockImage      BlockType = "image"
	BlockToolUse    BlockType = "tool_use"
	BlockToolResult BlockType = "tool_result"
)

// ContentBlock is a typed unit of system or message content. Blocks are value
// records: edits replace the block at an index rather than mutating in place.
type ContentBlock struct {
	Type BlockType `json:"type"`

	// Text is set for BlockText.
	Text string `json:"text,omitempty"`

	// Source is set for BlockImage.
	Source *ImageSource `json:"source,omitempty"`

	// ID/Name/Input are set for BlockToolUse.
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`

	// ToolUseID/Content are set for BlockToolResult.
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
}

type ImageSource struct {
	Type      string `json:"type"` // currently always "base64"
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// ToolDescriptor describes one tool offered to the model. Order in the tools
// list is preserved but carries no semantics.
type ToolDescriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema,omitempty"`
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Next returns the role that may follow r under the alternation invariant.
func (r Role) Next() Role {
	if r == RoleUser {
		return RoleAssistant
	}
	return RoleUser
}

type Message struct {
	Role    Role           `json:"role"`
	Content []ContentBlock `json:"content"`
}

// Session is the in-memory session document: model parameters, ordered system
// prompt blocks, ordered tool descriptors and the alternating message history.
// Order of System and Messages is semantically significant.
type Session struct {
	Model       string           `json:"model"`
	MaxTokens   int              `json:"max_tokens"`
	Temperature float64          `json:"temperature"`
	System      []ContentBlock   `json:"system"`
	Tools       []ToolDescriptor `json:"tools"`
	Messages    []Message        `json:"messages"`
}

// NewSession returns a fresh session with default parameters and empty lists.
func NewSession() *Session {
	return &Session{
		Model:       DefaultModel,
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
		System:      []ContentBlock{},
		Tools:       []ToolDescriptor{},
		Messages:    []Message{},
	}
}

// Clone returns a deep copy. Save snapshots are taken via Clone so an
// in-flight save is isolated from subsequent edits.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := &Session{
		Model:       s.Model,
		MaxTokens:   s.MaxTokens,
		Temperature: s.Temperature,
		System:      cloneBlocks(s.System),
		Tools:       make([]ToolDescriptor, len(s.Tools)),
		Messages:    make([]Message, len(s.Messages)),
	}
	for i, t := range s.Tools {
		t.InputSchema = cloneRaw(t.InputSchema)
		out.Tools[i] = t
	}
	for i, m := range s.Messages {
		out.Messages[i] = Message{Role: m.Role, Content: cloneBlocks(m.Content)}
	}
	return out
}

func cloneBlocks(bs []ContentBlock) []ContentBlock {
	out := make([]ContentBlock, len(bs))
	for i, b := range bs {
		b.Input = cloneRaw(b.Input)
		if b.Source != nil {
			src := *b.Source
			b.Source = &src
		}
		out[i] = b
	}
	return out
}

func cloneRaw(r json.RawMessage) json.RawMessage {
	if r == nil {
		return nil
	}
	return append(json.RawMessage(nil), r...)
}

// TextBlock is a convenience constructor for the most common block kind.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: BlockText, Text: text}
}

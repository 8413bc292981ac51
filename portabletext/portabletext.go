// Package portabletext decodes Sanity portable text into a typed block tree
// and renders it as HTML.
package portabletext

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/eringen/place2b/asset"
)

// Node is one top-level entry of a Body. The concrete types are *Block,
// *ImageBlock, *CodeBlock and *Unknown.
type Node interface {
	NodeType() string
}

// BlockKind classifies a text block.
type BlockKind int

const (
	KindParagraph BlockKind = iota
	KindHeading
	KindQuote
	KindListItem
)

// Style names used by the editor.
const (
	StyleNormal     = "normal"
	StyleBlockquote = "blockquote"

	ListBullet = "bullet"
	ListNumber = "number"
)

// Block is a run of text: paragraph, heading, quote or list item.
type Block struct {
	Key      string    `json:"_key,omitempty"`
	Style    string    `json:"style,omitempty"`
	ListItem string    `json:"listItem,omitempty"`
	Level    int       `json:"level,omitempty"`
	Children []Span    `json:"children"`
	MarkDefs []MarkDef `json:"markDefs,omitempty"`
}

func (*Block) NodeType() string { return "block" }

// Kind reports how the block should be presented.
func (b *Block) Kind() BlockKind {
	switch {
	case b.ListItem != "":
		return KindListItem
	case b.HeadingLevel() > 0:
		return KindHeading
	case b.Style == StyleBlockquote:
		return KindQuote
	default:
		return KindParagraph
	}
}

// HeadingLevel returns 1-6 for h1..h6 styles and 0 otherwise.
func (b *Block) HeadingLevel() int {
	if len(b.Style) == 2 && b.Style[0] == 'h' && b.Style[1] >= '1' && b.Style[1] <= '6' {
		return int(b.Style[1] - '0')
	}
	return 0
}

// Ordered reports whether a list item belongs to a numbered list.
func (b *Block) Ordered() bool {
	return b.ListItem == ListNumber
}

// Depth returns the list nesting depth, starting at 1.
func (b *Block) Depth() int {
	if b.Level < 1 {
		return 1
	}
	return b.Level
}

// MarkDef looks up an annotation by key.
func (b *Block) MarkDef(key string) (MarkDef, bool) {
	for _, md := range b.MarkDefs {
		if md.Key == key {
			return md, true
		}
	}
	return MarkDef{}, false
}

// Text concatenates the block's span text.
func (b *Block) Text() string {
	var sb strings.Builder
	for _, s := range b.Children {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Span is an inline run of text with decorator marks or annotation keys.
type Span struct {
	Key   string   `json:"_key,omitempty"`
	Type  string   `json:"_type,omitempty"`
	Text  string   `json:"text"`
	Marks []string `json:"marks,omitempty"`
}

// Decorator marks.
const (
	MarkStrong = "strong"
	MarkEm     = "em"
	MarkCode   = "code"
	MarkUnder  = "underline"
	MarkStrike = "strike-through"
)

// MarkDef is an annotation referenced from span marks, such as a link.
type MarkDef struct {
	Key  string `json:"_key"`
	Type string `json:"_type"`
	Href string `json:"href,omitempty"`
}

// ImageBlock is an image embedded in the body.
type ImageBlock struct {
	Key string `json:"_key,omitempty"`
	asset.Image
}

func (*ImageBlock) NodeType() string { return "image" }

// CodeBlock is a fenced code sample.
type CodeBlock struct {
	Key      string `json:"_key,omitempty"`
	Language string `json:"language,omitempty"`
	Code     string `json:"code"`
	Filename string `json:"filename,omitempty"`
}

func (*CodeBlock) NodeType() string { return "code" }

// Unknown keeps any node type the site does not know how to present, so it
// survives a decode/encode round trip untouched.
type Unknown struct {
	Type string
	Raw  json.RawMessage
}

func (u *Unknown) NodeType() string { return u.Type }

// Body is an ordered list of nodes.
type Body []Node

type typeProbe struct {
	Type string `json:"_type"`
}

// UnmarshalJSON dispatches each element on its _type.
func (b *Body) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return fmt.Errorf("portabletext: decode body: %w", err)
	}
	if raws == nil {
		*b = nil
		return nil
	}
	out := make(Body, 0, len(raws))
	for i, raw := range raws {
		var probe typeProbe
		if err := json.Unmarshal(raw, &probe); err != nil {
			return fmt.Errorf("portabletext: node %d: %w", i, err)
		}
		var n Node
		switch probe.Type {
		case "block":
			n = &Block{}
		case "image":
			n = &ImageBlock{}
		case "code":
			n = &CodeBlock{}
		default:
			out = append(out, &Unknown{Type: probe.Type, Raw: append(json.RawMessage(nil), raw...)})
			continue
		}
		if err := json.Unmarshal(raw, n); err != nil {
			return fmt.Errorf("portabletext: node %d (%s): %w", i, probe.Type, err)
		}
		out = append(out, n)
	}
	*b = out
	return nil
}

// MarshalJSON writes every node back with its _type.
func (b Body) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("null"), nil
	}
	parts := make([]json.RawMessage, 0, len(b))
	for _, n := range b {
		raw, err := marshalNode(n)
		if err != nil {
			return nil, err
		}
		parts = append(parts, raw)
	}
	return json.Marshal(parts)
}

func marshalNode(n Node) (json.RawMessage, error) {
	switch v := n.(type) {
	case *Unknown:
		return v.Raw, nil
	case *Block:
		type alias Block
		return json.Marshal(struct {
			Type string `json:"_type"`
			*alias
		}{"block", (*alias)(v)})
	case *ImageBlock:
		cp := *v
		cp.Image.Type = "image"
		type alias ImageBlock
		return json.Marshal((*alias)(&cp))
	case *CodeBlock:
		type alias CodeBlock
		return json.Marshal(struct {
			Type string `json:"_type"`
			*alias
		}{"code", (*alias)(v)})
	default:
		return nil, fmt.Errorf("portabletext: unsupported node %T", n)
	}
}

// PlainText flattens text blocks and code into newline separated text.
func PlainText(body Body) string {
	var parts []string
	for _, n := range body {
		switch v := n.(type) {
		case *Block:
			if t := strings.TrimSpace(v.Text()); t != "" {
				parts = append(parts, t)
			}
		case *CodeBlock:
			if t := strings.TrimSpace(v.Code); t != "" {
				parts = append(parts, t)
			}
		}
	}
	return strings.Join(parts, "\n")
}

const wordsPerMinute = 200

// ReadingMinutes estimates reading time. An empty body reads in 0 minutes,
// anything else takes at least one.
func ReadingMinutes(body Body) int {
	words := len(strings.Fields(PlainText(body)))
	if words == 0 {
		return 0
	}
	return (words + wordsPerMinute - 1) / wordsPerMinute
}

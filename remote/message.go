// Package remote accepts simulation commands over a websocket.
//
// Connections are read on their own goroutines. Decoded commands are handed to
// the host over a buffered channel and applied on the frame thread with a
// Dispatcher.
package remote

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pthm-cable/smoke/config"
	"github.com/pthm-cable/smoke/splat"
)

// Kind names a command.
type Kind string

const (
	KindSplat   Kind = "splat"
	KindRandom  Kind = "random"
	KindConfig  Kind = "config"
	KindPalette Kind = "palette"
	KindPointer Kind = "pointer"
)

// Pointer actions.
const (
	ActionDown = "down"
	ActionMove = "move"
	ActionUp   = "up"
)

// MaxRandom caps the size of a random burst.
const MaxRandom = 64

// MaxMessageSize caps an incoming message in bytes. It holds a few hundred splats.
const MaxMessageSize = 32 << 10

var (
	ErrUnknownKind   = errors.New("remote: unknown message type")
	ErrEmptyMessage  = errors.New("remote: message carries nothing to apply")
	ErrUnknownAction = errors.New("remote: unknown pointer action")
)

// Message is the JSON form of a command.
//
//	{"type":"splat","splats":[{"x":10,"y":20,"dx":5,"dy":0,"color":[1,0,0]}]}
//	{"type":"random","count":5}
//	{"type":"config","config":{"curl":20,"additiveMode":true}}
//	{"type":"palette","palette":"warm"}
//	{"type":"pointer","pointer":{"action":"move","x":100,"y":80}}
type Message struct {
	Type    Kind           `json:"type"`
	Splats  []splat.Wire   `json:"splats,omitempty"`
	Count   int            `json:"count,omitempty"`
	Config  *config.Update `json:"config,omitempty"`
	Palette string         `json:"palette,omitempty"`
	Pointer *PointerEvent  `json:"pointer,omitempty"`
}

// PointerEvent drives the primary pointer.
type PointerEvent struct {
	Action string  `json:"action"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// Command is a decoded, validated Message.
type Command struct {
	Kind    Kind
	Splats  splat.Batch
	Dropped int // wire splats rejected while decoding
	Count   int // random burst size, 0 for the configured default
	Config  config.Update
	Palette string
	Pointer PointerEvent
}

// Reply acknowledges a message.
type Reply struct {
	OK      bool   `json:"ok"`
	Dropped int    `json:"dropped,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Decode parses and validates a message. Splats with missing or non-finite
// fields are dropped and counted; a splat message left with none is an error.
func Decode(data []byte) (Command, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Command{}, fmt.Errorf("decoding message: %w", err)
	}

	cmd := Command{Kind: m.Type}
	switch m.Type {
	case KindSplat:
		cmd.Splats = splat.FromWire(m.Splats)
		cmd.Dropped = len(m.Splats) - len(cmd.Splats)
		if len(cmd.Splats) == 0 {
			return cmd, fmt.Errorf("%w: no valid splats", ErrEmptyMessage)
		}
	case KindRandom:
		cmd.Count = min(max(m.Count, 0), MaxRandom)
	case KindConfig:
		if m.Config == nil || m.Config.Empty() {
			return cmd, fmt.Errorf("%w: empty config", ErrEmptyMessage)
		}
		cmd.Config = *m.Config
	case KindPalette:
		if m.Palette == "" {
			return cmd, fmt.Errorf("%w: no palette name", ErrEmptyMessage)
		}
		cmd.Palette = m.Palette
	case KindPointer:
		if m.Pointer == nil {
			return cmd, fmt.Errorf("%w: no pointer event", ErrEmptyMessage)
		}
		switch m.Pointer.Action {
		case ActionDown, ActionMove, ActionUp:
		default:
			return cmd, fmt.Errorf("%w: %q", ErrUnknownAction, m.Pointer.Action)
		}
		cmd.Pointer = *m.Pointer
	default:
		return cmd, fmt.Errorf("%w: %q", ErrUnknownKind, m.Type)
	}
	return cmd, nil
}

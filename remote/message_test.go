package remote

import (
	"errors"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		msg     string
		kind    Kind
		wantErr error
		check   func(t *testing.T, c Command)
	}{
		{
			name: "splat",
			msg:  `{"type":"splat","splats":[{"x":10,"y":20,"dx":5,"dy":-5,"color":[1,0,0]}]}`,
			kind: KindSplat,
			check: func(t *testing.T, c Command) {
				if len(c.Splats) != 1 || c.Splats[0].X != 10 || c.Splats[0].DY != -5 || c.Splats[0].Color[0] != 1 {
					t.Errorf("splats = %+v", c.Splats)
				}
			},
		},
		{
			name: "splat with missing fields",
			msg:  `{"type":"splat","splats":[{"x":10,"y":20,"dx":5,"dy":0,"color":[1,1,1]},{"x":1,"y":2}]}`,
			kind: KindSplat,
			check: func(t *testing.T, c Command) {
				if len(c.Splats) != 1 || c.Dropped != 1 {
					t.Errorf("splats = %d dropped = %d", len(c.Splats), c.Dropped)
				}
			},
		},
		{
			name:    "splat with nothing valid",
			msg:     `{"type":"splat","splats":[{"x":1}]}`,
			wantErr: ErrEmptyMessage,
		},
		{
			name: "random clamps count",
			msg:  `{"type":"random","count":1000}`,
			kind: KindRandom,
			check: func(t *testing.T, c Command) {
				if c.Count != MaxRandom {
					t.Errorf("count = %d, want %d", c.Count, MaxRandom)
				}
			},
		},
		{
			name: "random default count",
			msg:  `{"type":"random"}`,
			kind: KindRandom,
			check: func(t *testing.T, c Command) {
				if c.Count != 0 {
					t.Errorf("count = %d, want 0", c.Count)
				}
			},
		},
		{
			name: "config",
			msg:  `{"type":"config","config":{"curl":20,"additiveMode":true}}`,
			kind: KindConfig,
			check: func(t *testing.T, c Command) {
				if c.Config.Curl == nil || *c.Config.Curl != 20 || c.Config.AdditiveMode == nil || !*c.Config.AdditiveMode {
					t.Errorf("config = %+v", c.Config)
				}
				if c.Config.SplatRadius != nil {
					t.Error("unset field decoded")
				}
			},
		},
		{
			name:    "empty config",
			msg:     `{"type":"config","config":{}}`,
			wantErr: ErrEmptyMessage,
		},
		{
			name: "palette",
			msg:  `{"type":"palette","palette":"warm"}`,
			kind: KindPalette,
		},
		{
			name: "pointer",
			msg:  `{"type":"pointer","pointer":{"action":"move","x":3,"y":4}}`,
			kind: KindPointer,
			check: func(t *testing.T, c Command) {
				if c.Pointer.Action != ActionMove || c.Pointer.X != 3 || c.Pointer.Y != 4 {
					t.Errorf("pointer = %+v", c.Pointer)
				}
			},
		},
		{
			name:    "pointer with bad action",
			msg:     `{"type":"pointer","pointer":{"action":"wiggle"}}`,
			wantErr: ErrUnknownAction,
		},
		{
			name:    "unknown type",
			msg:     `{"type":"explode"}`,
			wantErr: ErrUnknownKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Decode([]byte(tt.msg))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.Kind != tt.kind {
				t.Errorf("kind = %q, want %q", c.Kind, tt.kind)
			}
			if tt.check != nil {
				tt.check(t, c)
			}
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	if _, err := Decode([]byte(`{"type":`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

package script

import (
	"errors"
	"strings"
	"testing"

	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/dom"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Kind
		skip    bool
		wantErr bool
	}{
		{name: "blank", input: "   ", skip: true},
		{name: "hash comment", input: "# setup", skip: true},
		{name: "slash comment", input: "// setup", skip: true},
		{name: "plain event", input: `{"target":"btn","type":"click"}`, want: KindEvent},
		{name: "crlf", input: "{\"target\":\"btn\",\"type\":\"click\"}\r", want: KindEvent},
		{name: "mouse", input: `{"target":"btn","type":"click","kind":"mouse","mouse":{"client_x":3}}`, want: KindMouse},
		{name: "keyboard", input: `{"target":"#window","type":"keydown","kind":"keyboard","keyboard":{"key":"a","code":"KeyA"}}`, want: KindKeyboard},
		{name: "gamepad", input: `{"target":"#window","type":"gamepadconnected","kind":"gamepad","gamepad":{"index":0,"id":"pad","connected":true}}`, want: KindGamepad},
		{name: "bad json", input: `{"target":`, wantErr: true},
		{name: "unknown field", input: `{"target":"btn","type":"click","colour":1}`, wantErr: true},
		{name: "trailing data", input: `{"target":"btn","type":"click"} {}`, wantErr: true},
		{name: "missing target", input: `{"type":"click"}`, wantErr: true},
		{name: "missing type", input: `{"target":"btn"}`, wantErr: true},
		{name: "unknown kind", input: `{"target":"btn","type":"click","kind":"touch"}`, wantErr: true},
		{name: "payload mismatch", input: `{"target":"btn","type":"click","kind":"mouse","keyboard":{"key":"a"}}`, wantErr: true},
		{name: "payload on plain event", input: `{"target":"btn","type":"click","wheel":{}}`, wantErr: true},
		{name: "gamepad without payload", input: `{"target":"#window","type":"gamepadconnected","kind":"gamepad"}`, wantErr: true},
		{name: "negative gamepad index", input: `{"target":"#window","type":"x","kind":"gamepad","gamepad":{"index":-1,"id":"p","connected":true}}`, wantErr: true},
		{name: "negative timestamp", input: `{"target":"btn","type":"click","time_stamp":-1}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse() error = nil, want error")
				}
				if !errors.Is(err, ErrInvalidRecord) {
					t.Errorf("Parse() error = %v, want ErrInvalidRecord", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() unexpected error: %v", err)
			}
			if tt.skip {
				if got != nil {
					t.Errorf("Parse() = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("Parse() = nil, want record")
			}
			if got.Kind != tt.want {
				t.Errorf("Kind = %q, want %q", got.Kind, tt.want)
			}
		})
	}
}

func TestRead(t *testing.T) {
	input := strings.Join([]string{
		"# two clicks",
		`{"target":"btn","type":"click"}`,
		"",
		`{"target":"btn","type":"click","seq":2}`,
	}, "\n")

	records, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Read() returned %d records, want 2", len(records))
	}
	if records[1].Seq != 2 {
		t.Errorf("records[1].Seq = %d, want 2", records[1].Seq)
	}
}

func TestRead_LineError(t *testing.T) {
	input := "{\"target\":\"btn\",\"type\":\"click\"}\n\n{\"target\":\"btn\"}\n"

	records, err := Read(strings.NewReader(input))
	var lerr *LineError
	if !errors.As(err, &lerr) {
		t.Fatalf("Read() error = %v, want *LineError", err)
	}
	if lerr.Line != 3 {
		t.Errorf("LineError.Line = %d, want 3", lerr.Line)
	}
	if !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("error does not wrap ErrInvalidRecord: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("got %d records before the error, want 1", len(records))
	}
}

func TestRecord_Event(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		r := &Record{Target: "btn", Type: "change", Bubbles: true, Cancelable: true, TimeStamp: 12}
		ev := r.Event()
		b, ok := ev.(*dom.BaseEvent)
		if !ok {
			t.Fatalf("Event() = %T, want *dom.BaseEvent", ev)
		}
		if b.Type != "change" || !b.Bubbles || !b.Cancelable || b.TimeStamp != 12 || !b.IsTrusted {
			t.Errorf("unexpected base event: %+v", b)
		}
	})

	t.Run("pointer", func(t *testing.T) {
		r, err := Parse(`{"target":"c","type":"pointerdown","kind":"pointer","pointer":{"client_x":5,"ctrl":true,"pointer_id":9,"pointer_type":"pen","is_primary":true}}`)
		if err != nil {
			t.Fatal(err)
		}
		ev, ok := r.Event().(*dom.PointerEvent)
		if !ok {
			t.Fatalf("Event() = %T, want *dom.PointerEvent", r.Event())
		}
		if ev.Type != "pointerdown" || ev.ClientX != 5 || !ev.CtrlKey || ev.PointerID != 9 || ev.PointerType != "pen" || !ev.IsPrimary {
			t.Errorf("unexpected pointer event: %+v", ev)
		}
	})

	t.Run("wheel without payload", func(t *testing.T) {
		r := &Record{Target: "c", Type: "wheel", Kind: KindWheel}
		ev, ok := r.Event().(*dom.WheelEvent)
		if !ok {
			t.Fatalf("Event() = %T, want *dom.WheelEvent", r.Event())
		}
		if ev.Type != "wheel" {
			t.Errorf("Type = %q, want wheel", ev.Type)
		}
	})

	t.Run("keyboard", func(t *testing.T) {
		r := &Record{Target: "#window", Type: "keydown", Kind: KindKeyboard, Keyboard: &Keyboard{Key: "Enter", Code: "Enter", Repeat: true}}
		ev, ok := r.Event().(*dom.KeyboardEvent)
		if !ok {
			t.Fatalf("Event() = %T, want *dom.KeyboardEvent", r.Event())
		}
		if ev.Key != "Enter" || ev.Code != "Enter" || !ev.Repeat {
			t.Errorf("unexpected keyboard event: %+v", ev)
		}
	})

	t.Run("gamepad", func(t *testing.T) {
		r := &Record{Target: "#window", Type: "gamepadconnected", Kind: KindGamepad, Gamepad: &Gamepad{
			Index: 1, ID: "pad", Connected: true,
			Buttons: []GamepadButton{{Value: 1, Pressed: true}},
			Axes:    []float64{0.5},
		}}
		ev, ok := r.Event().(*dom.GamepadEvent)
		if !ok {
			t.Fatalf("Event() = %T, want *dom.GamepadEvent", r.Event())
		}
		if ev.Gamepad == nil || ev.Gamepad.Index != 1 || len(ev.Gamepad.Buttons) != 1 || ev.Gamepad.Axes[0] != 0.5 {
			t.Errorf("unexpected gamepad: %+v", ev.Gamepad)
		}
	})

	t.Run("fresh per call", func(t *testing.T) {
		r := &Record{Target: "btn", Type: "click"}
		if r.Event() == r.Event() {
			t.Error("Event() returned the same value twice")
		}
	})
}

func TestMarshal(t *testing.T) {
	r := &Record{Target: "a<b", Type: "click", Kind: KindEvent}
	data, err := Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "\n") {
		t.Errorf("Marshal() output has a newline: %q", data)
	}
	back, err := Parse(string(data))
	if err != nil {
		t.Fatalf("Parse(Marshal()) error: %v", err)
	}
	if back.Target != "a<b" {
		t.Errorf("Target = %q, want a<b", back.Target)
	}
}

package dom

// GamepadButton is the state of one gamepad button.
type GamepadButton struct {
	Value   float64
	Pressed bool
	Touched bool
}

// Gamepad is a connected controller.
type Gamepad struct {
	ID        string
	Mapping   string
	Index     int
	Connected bool
	// Timestamp is in milliseconds relative to the realm's time origin.
	Timestamp float64
	Buttons   []GamepadButton
	Axes      []float64
}

// Navigator exposes the gamepad slots.
type Navigator struct {
	gamepads []*Gamepad
}

// SetGamepad places g in slot g.Index, growing the slot list as needed.
func (n *Navigator) SetGamepad(g *Gamepad) {
	if g.Index < 0 {
		return
	}
	for len(n.gamepads) <= g.Index {
		n.gamepads = append(n.gamepads, nil)
	}
	n.gamepads[g.Index] = g
}

// RemoveGamepad empties slot i.
func (n *Navigator) RemoveGamepad(i int) {
	if i >= 0 && i < len(n.gamepads) {
		n.gamepads[i] = nil
	}
}

// Gamepad returns the gamepad in slot i. It reports false for an index out
// of range or an empty slot.
func (n *Navigator) Gamepad(i int) (*Gamepad, bool) {
	if i < 0 || i >= len(n.gamepads) || n.gamepads[i] == nil {
		return nil, false
	}
	return n.gamepads[i], true
}

// Gamepads returns all slots; empty slots are nil.
func (n *Navigator) Gamepads() []*Gamepad {
	return n.gamepads
}

package dom

// Phase is the dispatch phase of an event, numbered like Event.eventPhase.
type Phase uint8

const (
	PhaseNone Phase = iota
	PhaseCapturing
	PhaseAtTarget
	PhaseBubbling
)

// Event is any event that can be dispatched to a Target. All event types
// embed BaseEvent, which provides Base.
type Event interface {
	Base() *BaseEvent
}

// BaseEvent holds the state shared by every event. A bare *BaseEvent is
// itself an Event and is what custom events use.
type BaseEvent struct {
	Type        string
	Bubbles     bool
	Cancelable  bool
	Composed    bool
	IsComposing bool
	IsTrusted   bool
	// TimeStamp is in milliseconds relative to the realm's time origin.
	TimeStamp float64

	target        Target
	currentTarget Target
	phase         Phase
	stopped       bool
	stoppedNow    bool
	canceled      bool
}

// Base implements Event.
func (e *BaseEvent) Base() *BaseEvent { return e }

// Target returns the object the event was dispatched to.
func (e *BaseEvent) Target() Target { return e.target }

// CurrentTarget returns the object whose listeners are running, or nil
// outside of dispatch.
func (e *BaseEvent) CurrentTarget() Target { return e.currentTarget }

// Phase returns the current dispatch phase.
func (e *BaseEvent) Phase() Phase { return e.phase }

// StopPropagation prevents the event from reaching further targets.
func (e *BaseEvent) StopPropagation() { e.stopped = true }

// StopImmediatePropagation additionally skips the remaining listeners on the
// current target.
func (e *BaseEvent) StopImmediatePropagation() {
	e.stopped = true
	e.stoppedNow = true
}

// PreventDefault marks a cancelable event as canceled.
func (e *BaseEvent) PreventDefault() {
	if e.Cancelable {
		e.canceled = true
	}
}

// DefaultPrevented reports whether PreventDefault took effect.
func (e *BaseEvent) DefaultPrevented() bool { return e.canceled }

// PropagationStopped reports whether propagation was stopped.
func (e *BaseEvent) PropagationStopped() bool { return e.stopped }

// MouseEvent is a mouse event. Coordinates are CSS pixels.
type MouseEvent struct {
	BaseEvent
	ScreenX, ScreenY     float64
	ClientX, ClientY     float64
	OffsetX, OffsetY     float64
	PageX, PageY         float64
	MovementX, MovementY float64
	CtrlKey              bool
	ShiftKey             bool
	AltKey               bool
	MetaKey              bool
	Button               int16
	Buttons              uint16
}

// Mouse returns the mouse part of the event. It is promoted to every type
// that embeds MouseEvent.
func (e *MouseEvent) Mouse() *MouseEvent { return e }

// PointerEvent extends MouseEvent with pointer device data.
type PointerEvent struct {
	MouseEvent
	AltitudeAngle      float64
	AzimuthAngle       float64
	PersistentDeviceID int64
	PointerID          int64
	Width, Height      float64
	Pressure           float64
	TangentialPressure float64
	TiltX, TiltY       float64
	Twist              float64
	PointerType        string // "mouse", "pen", "touch"
	IsPrimary          bool
}

// Pointer returns the pointer part of the event.
func (e *PointerEvent) Pointer() *PointerEvent { return e }

// Wheel delta modes.
const (
	DeltaPixel uint32 = iota
	DeltaLine
	DeltaPage
)

// WheelEvent is a wheel event.
type WheelEvent struct {
	MouseEvent
	DeltaX, DeltaY, DeltaZ float64
	DeltaMode              uint32
}

// Key locations.
const (
	KeyLocationStandard uint8 = iota
	KeyLocationLeft
	KeyLocationRight
	KeyLocationNumpad
)

// KeyboardEvent is a keyboard event.
type KeyboardEvent struct {
	BaseEvent
	Key      string
	Code     string
	Location uint8
	CtrlKey  bool
	ShiftKey bool
	AltKey   bool
	MetaKey  bool
	Repeat   bool
	CharCode int32
}

// GamepadEvent carries a gamepad connection change.
type GamepadEvent struct {
	BaseEvent
	Gamepad *Gamepad
}

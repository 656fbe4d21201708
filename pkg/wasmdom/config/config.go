// Package config loads wasmdom runtime configuration files.
//
// A configuration file is YAML. It selects the guest module and word width
// and describes the DOM the guest starts with:
//
//	version: 1
//	module: app.wasm
//	word_width: 4
//	frame_interval: 16ms
//	window:
//	  screen_width: 1920
//	  screen_height: 1080
//	document:
//	  elements:
//	    - id: canvas
//	      tag: canvas
//	      rect: {x: 0, y: 0, width: 640, height: 480}
//	    - id: volume
//	      tag: input
//	      parent: canvas
//	      value: 0.5
//	      min: 0
//	      max: 1
//	gamepads:
//	  - index: 0
//	    id: Xbox Wireless Controller
//	    mapping: standard
//	    connected: true
//	    buttons: [{value: 1, pressed: true}]
//	    axes: [0, -0.5]
package config

import "time"

// File is a parsed configuration file.
type File struct {
	Version          int           `yaml:"version"`
	Module           string        `yaml:"module,omitempty"`
	WordWidth        int           `yaml:"word_width,omitempty"`
	MemoryLimitPages uint32        `yaml:"memory_limit_pages,omitempty"`
	FrameInterval    time.Duration `yaml:"frame_interval,omitempty"`
	Console          Console       `yaml:"console,omitempty"`
	Window           Window        `yaml:"window,omitempty"`
	Document         Document      `yaml:"document,omitempty"`
	Gamepads         []Gamepad     `yaml:"gamepads,omitempty"`
}

// Console configures guest output handling.
type Console struct {
	RateLimit float64 `yaml:"rate_limit,omitempty"`
	History   int     `yaml:"history,omitempty"`
}

// Window describes the window geometry.
type Window struct {
	ScreenX          float64 `yaml:"screen_x,omitempty"`
	ScreenY          float64 `yaml:"screen_y,omitempty"`
	ScreenWidth      float64 `yaml:"screen_width,omitempty"`
	ScreenHeight     float64 `yaml:"screen_height,omitempty"`
	ScrollX          float64 `yaml:"scroll_x,omitempty"`
	ScrollY          float64 `yaml:"scroll_y,omitempty"`
	DevicePixelRatio float64 `yaml:"device_pixel_ratio,omitempty"`
}

// Document describes the initial document.
type Document struct {
	Hidden   bool      `yaml:"hidden,omitempty"`
	Elements []Element `yaml:"elements,omitempty"`
}

// Element describes one element. Value and property values may be
// numbers, strings or booleans.
type Element struct {
	ID         string            `yaml:"id"`
	Tag        string            `yaml:"tag"`
	Parent     string            `yaml:"parent,omitempty"`
	Value      any               `yaml:"value,omitempty"`
	Min        *float64          `yaml:"min,omitempty"`
	Max        *float64          `yaml:"max,omitempty"`
	Rect       *Rect             `yaml:"rect,omitempty"`
	Style      map[string]string `yaml:"style,omitempty"`
	Properties map[string]any    `yaml:"properties,omitempty"`
}

// Rect is an element box.
type Rect struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Gamepad describes a connected gamepad.
type Gamepad struct {
	Index     int             `yaml:"index"`
	ID        string          `yaml:"id"`
	Mapping   string          `yaml:"mapping,omitempty"`
	Connected bool            `yaml:"connected"`
	Buttons   []GamepadButton `yaml:"buttons,omitempty"`
	Axes      []float64       `yaml:"axes,omitempty"`
}

// GamepadButton is one button state.
type GamepadButton struct {
	Value   float64 `yaml:"value"`
	Pressed bool    `yaml:"pressed,omitempty"`
	Touched bool    `yaml:"touched,omitempty"`
}

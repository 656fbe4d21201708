// Package wasmdom runs wasm guests written against Odin's js_wasm32 and
// js_wasm64p32 targets outside the browser.
//
// The guest sees the odin_env and odin_dom host modules backed by an
// in-memory DOM: a window, a document of elements, and gamepads. Events
// dispatched on that DOM reach the guest's registered listeners as the same
// binary event records a browser host would write into guest memory.
//
// # Basic Usage
//
//	rt, err := wasmdom.New(ctx, wasmdom.WithWordWidth(4))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	mod, err := rt.Load(ctx, "app.wasm")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	inst, err := rt.Instantiate(ctx, mod, wasmdom.WithStdout(os.Stdout))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer inst.Close(ctx)
//
//	if err := inst.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	frames, err := inst.Run(ctx, wasmdom.RunOptions{MaxFrames: 600})
//
// # Events
//
// Elements are created on the instance's [dom.Realm] before or after the
// guest starts. [Instance.DispatchEvent] runs the capture, target and
// bubble phases and calls into the guest for each matching listener:
//
//	btn, _ := inst.Realm().Document.CreateElement("button", "ok")
//	click := &dom.MouseEvent{BaseEvent: dom.BaseEvent{Type: "click", Bubbles: true}}
//	allowed, err := inst.DispatchEvent(ctx, btn, click)
//
// The replay and remote subpackages feed scripted or network events through
// the same path.
//
// # Word Width
//
// The word width (4 or 8) is the guest's int size. It fixes the host
// function signatures, so every module loaded by one Runtime shares it.
package wasmdom

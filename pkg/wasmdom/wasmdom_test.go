package wasmdom

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/dom"
)

func guestPath(width int) string {
	if width == 8 {
		return "testdata/guest64.wasm"
	}
	return "testdata/guest32.wasm"
}

type guestFixture struct {
	rt     *Runtime
	inst   *Instance
	stdout *bytes.Buffer
	btn    *dom.Element
}

func startGuest(t *testing.T, width int) *guestFixture {
	t.Helper()
	ctx := context.Background()

	rt, err := New(ctx, WithWordWidth(width), WithDiskCache(false))
	require.NoError(t, err)
	t.Cleanup(func() { rt.Close(ctx) })

	mod, err := rt.Load(ctx, guestPath(width))
	require.NoError(t, err)
	assert.True(t, mod.HasExport("step"))
	assert.Len(t, mod.Digest(), 64)

	stdout := &bytes.Buffer{}
	inst, err := rt.Instantiate(ctx, mod, WithStdout(stdout))
	require.NoError(t, err)
	t.Cleanup(func() { inst.Close(ctx) })

	var btn *dom.Element
	inst.Update(func(r *dom.Realm) {
		btn, err = r.Document.CreateElement("button", "btn")
	})
	require.NoError(t, err)

	require.NoError(t, inst.Start(ctx))
	return &guestFixture{rt: rt, inst: inst, stdout: stdout, btn: btn}
}

func TestNew_RejectsWordWidth(t *testing.T) {
	_, err := New(context.Background(), WithWordWidth(3), WithDiskCache(false))
	require.Error(t, err)
}

func TestNew_RejectsNegativeModuleCache(t *testing.T) {
	_, err := New(context.Background(), WithModuleCacheSize(-1), WithDiskCache(false))
	require.Error(t, err)
}

func TestRuntime_LoadBytesInvalid(t *testing.T) {
	ctx := context.Background()
	rt, err := New(ctx, WithDiskCache(false))
	require.NoError(t, err)
	defer rt.Close(ctx)

	_, err = rt.LoadBytes(ctx, []byte("nope"))
	assert.ErrorIs(t, err, ErrInvalidWasm)
}

func TestInstance_StartRegistersListener(t *testing.T) {
	for _, width := range []int{4, 8} {
		t.Run(guestPath(width), func(t *testing.T) {
			g := startGuest(t, width)
			mem := g.inst.Memory()

			assert.Equal(t, "hello\n", g.stdout.String())
			assert.Equal(t, 1, g.inst.Listeners())
			assert.Equal(t, uint32(1), mem.LoadU32(1028), "add_event_listener result")
			assert.Equal(t, 1, g.btn.ListenerCount("click"))
		})
	}
}

func TestInstance_DispatchEventReachesGuest(t *testing.T) {
	for _, width := range []int{4, 8} {
		t.Run(guestPath(width), func(t *testing.T) {
			g := startGuest(t, width)
			mem := g.inst.Memory()

			click := &dom.MouseEvent{
				BaseEvent: dom.BaseEvent{Type: "click", Bubbles: true, Cancelable: true, TimeStamp: 1500},
				ClientX:   10,
				ClientY:   20,
			}
			allowed, err := g.inst.DispatchEvent(context.Background(), g.btn, click)
			require.NoError(t, err)
			assert.False(t, allowed, "guest calls event_prevent_default")

			assert.Equal(t, uint32(1), mem.LoadU32(1024), "callback count")
			assert.Equal(t, uint32(0xAA), mem.LoadU32(1036))
			assert.Equal(t, uint32(0xBB), mem.LoadU32(1040))
			assert.Equal(t, uint32(256), mem.LoadU32(1044))
			assert.Equal(t, "hello\nclicked\n", g.stdout.String())

			const ep = 2048
			assert.Equal(t, uint32(7), mem.LoadU32(ep), "name code")
			idPtr, idLen := ep+12, ep+16
			tsAddr := uint32(ep + 24)
			if width == 8 {
				idPtr, idLen = ep+16, ep+24
				tsAddr = ep + 32
			}
			assert.Equal(t, uint64(16), mem.LoadUint(uint32(idPtr)), "id.ptr is the guest's own id string")
			assert.Equal(t, uint64(3), mem.LoadUint(uint32(idLen)))
			assert.Equal(t, 1.5, mem.LoadF64(tsAddr), "timestamp in seconds")
			assert.Equal(t, uint8(dom.PhaseAtTarget), mem.LoadU8(tsAddr+8))

			lines := g.inst.ConsoleLines()
			require.Len(t, lines, 2)
			assert.Equal(t, ConsoleLine{Stream: Stdout, Text: "clicked"}, lines[1])
		})
	}
}

func TestInstance_RunUntilGuestStops(t *testing.T) {
	g := startGuest(t, 4)
	mem := g.inst.Memory()

	frames, err := g.inst.Run(context.Background(), RunOptions{FrameInterval: time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, 3, frames)
	assert.Equal(t, uint32(256), mem.LoadU32(1032), "step receives the default context")
	assert.Equal(t, uint32(1), mem.LoadU32(1048), "_end ran")
}

func TestInstance_RunMaxFrames(t *testing.T) {
	g := startGuest(t, 8)

	frames, err := g.inst.Run(context.Background(), RunOptions{FrameInterval: time.Millisecond, MaxFrames: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, frames)
	assert.Equal(t, uint32(1), g.inst.Memory().LoadU32(1048), "_end ran")
}

func TestInstance_Step(t *testing.T) {
	g := startGuest(t, 4)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		more, err := g.inst.Step(ctx, 0.016)
		require.NoError(t, err)
		assert.True(t, more)
	}
	more, err := g.inst.Step(ctx, 0.016)
	require.NoError(t, err)
	assert.False(t, more)

	require.NoError(t, g.inst.End(ctx))
}

func TestInstance_Target(t *testing.T) {
	g := startGuest(t, 4)
	realm := g.inst.Realm()

	tests := []struct {
		name string
		want dom.Target
	}{
		{TargetWindow, realm.Window},
		{TargetDocument, realm.Document},
		{"btn", g.btn},
		{"#btn", g.btn},
	}
	for _, tt := range tests {
		got, err := g.inst.Target(tt.name)
		require.NoError(t, err, tt.name)
		assert.Same(t, tt.want, got, tt.name)
	}

	_, err := g.inst.Target("missing")
	assert.ErrorIs(t, err, ErrUnknownTarget)
	var targetErr *TargetError
	require.ErrorAs(t, err, &targetErr)
	assert.Equal(t, "missing", targetErr.Name)
}

func TestInstance_InvalidOptions(t *testing.T) {
	ctx := context.Background()
	rt, err := New(ctx, WithDiskCache(false))
	require.NoError(t, err)
	defer rt.Close(ctx)

	mod, err := rt.Load(ctx, guestPath(4))
	require.NoError(t, err)

	_, err = rt.Instantiate(ctx, mod, WithConsoleHistory(-1))
	assert.Error(t, err)
	_, err = rt.Instantiate(ctx, mod, WithConsoleRateLimit(-1))
	assert.Error(t, err)
}

func TestInstance_CloseStopsGuest(t *testing.T) {
	g := startGuest(t, 4)
	ctx := context.Background()

	require.NoError(t, g.inst.Close(ctx))
	_, err := g.inst.Step(ctx, 0)
	assert.ErrorIs(t, err, ErrClosed)
}

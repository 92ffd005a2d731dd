package host

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/leoassist/leo/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	name string
	args []string
}

func newRecordingBridge(goos string, output string, err error) (*ExecBridge, *[]recordedCall) {
	calls := &[]recordedCall{}
	b := &ExecBridge{
		title: "leo",
		goos:  goos,
		run: func(_ context.Context, name string, args ...string) ([]byte, error) {
			*calls = append(*calls, recordedCall{name: name, args: args})
			return []byte(output), err
		},
	}
	return b, calls
}

func TestNew_Kinds(t *testing.T) {
	b, err := New("none", "")
	require.NoError(t, err)
	assert.IsType(t, &HeadlessBridge{}, b)

	_, err = New("wayland", "leo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown bridge")

	b, err = New("auto", "leo")
	require.NoError(t, err)
	assert.NotNil(t, b)
}

func TestExecBridge_LinuxCommands(t *testing.T) {
	b, calls := newRecordingBridge("linux", "", nil)
	ctx := context.Background()

	require.NoError(t, b.SetSize(ctx, types.Size{Width: 280, Height: 340}))
	require.NoError(t, b.SetPosition(ctx, types.Position{X: -85, Y: -35}))
	require.NoError(t, b.SetVisible(ctx, false))
	require.NoError(t, b.SetVisible(ctx, true))

	require.Len(t, *calls, 4)
	for _, c := range *calls {
		assert.Equal(t, "xdotool", c.name)
		assert.Equal(t, []string{"search", "--name", "^leo$"}, c.args[:3])
	}
	assert.Equal(t, []string{"windowsize", "%@", "280", "340"}, (*calls)[0].args[3:])
	assert.Equal(t, []string{"windowmove", "%@", "--", "-85", "-35"}, (*calls)[1].args[3:])
	assert.Equal(t, "windowunmap", (*calls)[2].args[3])
	assert.Equal(t, "windowmap", (*calls)[3].args[3])
}

func TestExecBridge_DarwinScripts(t *testing.T) {
	b, calls := newRecordingBridge("darwin", "", nil)
	ctx := context.Background()

	require.NoError(t, b.SetSize(ctx, types.Size{Width: 70, Height: 70}))
	require.NoError(t, b.SetPosition(ctx, types.Position{X: 20, Y: 100}))

	require.Len(t, *calls, 2)
	assert.Equal(t, "osascript", (*calls)[0].name)
	assert.True(t, strings.Contains((*calls)[0].args[1], "set size to {70, 70}"))
	assert.True(t, strings.Contains((*calls)[1].args[1], "set position to {20, 100}"))

	err := b.StartDrag(ctx)
	assert.ErrorIs(t, err, ErrUnsupportedPlatform)
}

func TestExecBridge_PropagatesFailure(t *testing.T) {
	b, _ := newRecordingBridge("linux", "", errors.New("no window"))
	err := b.SetSize(context.Background(), types.Size{Width: 1, Height: 1})
	assert.EqualError(t, err, "no window")
}

func TestExecBridge_StartDragMovesToPointer(t *testing.T) {
	b, calls := newRecordingBridge("linux", "X=412\nY=300\nSCREEN=0\nWINDOW=1234\n", nil)
	require.NoError(t, b.StartDrag(context.Background()))

	require.Len(t, *calls, 2)
	assert.Equal(t, []string{"getmouselocation", "--shell"}, (*calls)[0].args)
	assert.Equal(t, []string{"windowmove", "%@", "--", "412", "300"}, (*calls)[1].args[3:])
}

func TestParseMouseLocation(t *testing.T) {
	pos, err := parseMouseLocation("X=10\nY=-20\n")
	require.NoError(t, err)
	assert.Equal(t, types.Position{X: 10, Y: -20}, pos)

	_, err = parseMouseLocation("garbage")
	assert.Error(t, err)
}

func TestHeadlessBridge_TracksGeometry(t *testing.T) {
	b := NewHeadlessBridge()
	ctx := context.Background()

	require.NoError(t, b.SetSize(ctx, types.Size{Width: 320, Height: 480}))
	require.NoError(t, b.SetPosition(ctx, types.Position{X: 5, Y: 6}))
	require.NoError(t, b.SetVisible(ctx, false))
	require.NoError(t, b.StartDrag(ctx))

	rect, visible := b.Geometry()
	assert.Equal(t, types.Rect{Position: types.Position{X: 5, Y: 6}, Size: types.Size{Width: 320, Height: 480}}, rect)
	assert.False(t, visible)
}

func TestLookup_CoversRequiredTools(t *testing.T) {
	found := Lookup()
	for _, tool := range RequiredTools() {
		_, ok := found[tool]
		assert.True(t, ok, tool)
	}
}

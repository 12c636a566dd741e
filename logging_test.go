package starride

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gekko3d/starride/celestial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lockedBuffer is written by the fetch goroutine and read by the test.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestDefaultLogger_Lines(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewLogger(&out, &errOut, "ride", false)

	l.Debugf("hidden %d", 1)
	l.Infof("placed %d captions", 3)
	l.Warnf("crew missing")
	l.Errorf("bad %s", "template")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "[ride] INFO: placed 3 captions")
	assert.Contains(t, errOut.String(), "[ride] WARN: crew missing")
	assert.Contains(t, errOut.String(), "[ride] ERROR: bad template")

	l.SetDebug(true)
	l.Debugf("shown")
	assert.Contains(t, out.String(), "[ride] DEBUG: shown")

	var bare bytes.Buffer
	NewLogger(&bare, &bare, "", false).Infof("no prefix")
	assert.Contains(t, bare.String(), " INFO: no prefix")
	assert.NotContains(t, bare.String(), "[")
}

func TestDefaultLogger_Named(t *testing.T) {
	var out bytes.Buffer
	root := NewLogger(&out, &out, "ride", false)
	child := root.Named("celestial")
	assert.Equal(t, "ride/celestial", child.Prefix())
	assert.Equal(t, "celestial", NewLogger(&out, &out, "", false).Named("celestial").Prefix())

	child.Infof("fetched")
	assert.Contains(t, out.String(), "[ride/celestial] INFO: fetched")

	root.SetDebug(true)
	assert.True(t, child.DebugEnabled())
	child.Debugf("both see it")
	assert.Contains(t, out.String(), "[ride/celestial] DEBUG: both see it")
}

func TestNamedLogger_LeavesOtherLoggers(t *testing.T) {
	nop := NewNopLogger()
	assert.Same(t, nop, namedLogger(nop, "celestial"))

	var c celestial.Logger = namedLogger(NewLogger(&bytes.Buffer{}, &bytes.Buffer{}, "ride", false), "celestial")
	require.IsType(t, &DefaultLogger{}, c)
	assert.Equal(t, "ride/celestial", c.(*DefaultLogger).Prefix())
}

func TestFlight_CelestialLogsUnderItsOwnPrefix(t *testing.T) {
	srv := httptest.NewServer(&spaceAPI{})
	t.Cleanup(srv.Close)

	scene := DefaultScene()
	scene.Name = "ride"
	scene.Celestial.CrewURL = srv.URL + "/astros.json"
	scene.Celestial.BodiesURL = srv.URL + "/bodies/"

	var buf lockedBuffer
	app, err := NewFlight(scene, FlightOptions{Logger: NewLogger(&buf, &buf, scene.Name, false)})
	require.NoError(t, err)
	flyUntilCaptioned(t, app)
	app.Close()

	var fetchLines int
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "celestial fetch") {
			fetchLines++
			assert.Contains(t, line, "[ride/celestial]")
		}
	}
	assert.Positive(t, fetchLines)
	assert.Contains(t, buf.String(), "[ride] INFO: placed 3 of 3 captions")
}

package starride

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockResource1 struct {
	name string
}
type MockResource2 struct {
	name string
}

func TestApp_addResources(t *testing.T) {
	app := newApp()

	resource1 := &MockResource1{name: "Resource1"}
	app.addResources(resource1)
	assert.Contains(t, app.resources, reflect.TypeOf(resource1).Elem())

	require.PanicsWithValue(t, fmt.Sprintf("%s is already in resources", reflect.TypeOf(resource1)), func() {
		app.addResources(resource1)
	})
	require.Panics(t, func() { app.addResources(MockResource2{}) }, "resources must be pointers")

	app.addResources(&MockResource2{name: "Resource2"})
	r2, ok := Resource[MockResource2](app)
	require.True(t, ok)
	assert.Equal(t, "Resource2", r2.name)

	_, ok = Resource[Time](app)
	assert.False(t, ok)
}

type counter struct{ n int }

func TestApp_FrameRunsStagesInOrder(t *testing.T) {
	app := newApp()
	app.addResources(&counter{})

	var order []string
	for _, stage := range []Stage{Finale, PreUpdate, Prelude, Update, PostUpdate} {
		name := stage.Name
		app.UseSystem(System(func(c *counter) {
			c.n++
			order = append(order, name)
		}).InStage(stage))
	}

	app.Frame(time.Millisecond)

	assert.Equal(t, []string{"Prelude", "PreUpdate", "Update", "PostUpdate", "Finale"}, order)
	c, _ := Resource[counter](app)
	assert.Equal(t, 5, c.n)
}

func TestApp_CommandsFlushBetweenStages(t *testing.T) {
	app := newApp()

	seen := -1
	app.UseSystem(System(func(cmd *Commands) {
		cmd.AddEntity(&comp1{a: 1})
		assert.Equal(t, 0, MakeQuery1[comp1](cmd).Count(), "additions are buffered")
	}).InStage(PreUpdate))
	app.UseSystem(System(func(cmd *Commands) {
		seen = MakeQuery1[comp1](cmd).Count()
	}).InStage(Update))

	app.Frame(0)
	assert.Equal(t, 1, seen)
}

func TestApp_EntityCommands(t *testing.T) {
	app := newApp()
	cmd := app.Commands()

	eid := cmd.AddEntity(&comp1{a: 1})
	assert.Nil(t, cmd.GetAllComponents(eid))
	app.FlushCommands()
	assert.Equal(t, []any{comp1{a: 1}}, cmd.GetAllComponents(eid))

	cmd.AddComponents(eid, comp2{b: 2})
	app.FlushCommands()
	assert.Len(t, cmd.GetAllComponents(eid), 2)

	cmd.RemoveComponents(eid, comp1{})
	app.FlushCommands()
	assert.Equal(t, []any{comp2{b: 2}}, cmd.GetAllComponents(eid))

	cmd.RemoveEntity(eid)
	app.FlushCommands()
	assert.Nil(t, cmd.GetAllComponents(eid))
}

func TestApp_UnresolvedSystemDependencyPanics(t *testing.T) {
	var buf bytes.Buffer
	app := newApp()
	app.addResources(NewLogger(&buf, &buf, "test", false))
	app.UseSystem(System(func(r *MockResource1) {}))

	assert.Panics(t, func() { app.Frame(0) })
	assert.Contains(t, buf.String(), "Unable to resolve System dependency")
}

func TestApp_UseStage(t *testing.T) {
	app := newApp()
	render := Stage{Name: "Render"}
	app.UseStage(render, AfterStage(PostUpdate))

	assert.Equal(t, []Stage{Prelude, PreUpdate, Update, PostUpdate, render, Finale}, app.stages)
	assert.Panics(t, func() { app.UseStage(render, BeforeStage(Update)) })
	assert.Panics(t, func() { app.UseSystem(System(func() {}).InStage(Stage{Name: "Missing"})) })
}

func TestApp_TimeAdvancesWithFrames(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	app := NewAppBuilder().UseModule(TimeModule{Start: start}).Build()

	app.Frame(16 * time.Millisecond)
	app.Frame(-time.Second)

	clock, ok := Resource[Time](app)
	require.True(t, ok)
	assert.Equal(t, uint64(2), clock.Frame)
	assert.Equal(t, time.Duration(0), clock.Dt)
	assert.Equal(t, start.Add(16*time.Millisecond), clock.Time)
}

func TestApp_RunStopsOnCancelAndCloses(t *testing.T) {
	app := NewAppBuilder().UseModule(TimeModule{}).Build()
	closed := 0
	app.OnClose(func() { closed++ })

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := app.Run(ctx, 200)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	app.Close()

	assert.Equal(t, 1, closed)
	clock, _ := Resource[Time](app)
	assert.Positive(t, clock.Frame)
}

package starride

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEcs_MakeEcs(t *testing.T) {
	ecs := MakeEcs()

	assert.Empty(t, ecs.archetypes)
	assert.Empty(t, ecs.entityIndex)
	assert.Equal(t, EntityId(0), ecs.entityIdCounter)
	assert.Equal(t, 0, ecs.entityCount())
}

func TestEcs_AddEntity(t *testing.T) {
	type TestComponent struct{ x string }

	ecs := MakeEcs()
	entityId := ecs.addEntity()
	entityId2 := ecs.addEntity(TestComponent{x: "test"})

	require.True(t, ecs.hasEntity(entityId))
	require.True(t, ecs.hasEntity(entityId2))
	assert.NotEqual(t, ecs.entityIndex[entityId], ecs.entityIndex[entityId2],
		"entities with different components should live in different archetypes")
}

func TestEcs_AddComponents(t *testing.T) {
	type TestComponent0 struct{ a int }
	type TestComponent1 struct{ x string }
	type TestComponent2 struct{ y string }
	type TestComponent3 struct{ z string }

	ecs := MakeEcs()
	entityId := ecs.addEntity(TestComponent0{a: 1337})
	ecs.addComponents(entityId, TestComponent1{x: "test"}, TestComponent2{y: "hello"})
	// Pointers are stored by value too
	ecs.addComponents(entityId, &TestComponent3{z: "test-2"})

	arch := ecs.archetypes[ecs.entityIndex[entityId]]
	require.Len(t, arch.componentData, 4)

	r := int(arch.entities[entityId])
	id0 := ecs.getComponentId(reflect.TypeOf(TestComponent0{}))
	id3 := ecs.getComponentId(reflect.TypeOf(TestComponent3{}))
	assert.Equal(t, TestComponent0{a: 1337}, reflectSliceGet(arch.componentData[id0], r).Interface())
	assert.Equal(t, TestComponent3{z: "test-2"}, reflectSliceGet(arch.componentData[id3], r).Interface())
}

func TestEcs_AddExistingComponentOverwrites(t *testing.T) {
	type Position struct{ X, Y float64 }

	ecs := MakeEcs()
	id := ecs.addEntity(Position{1, 2})
	before := ecs.entityIndex[id]
	ecs.addComponents(id, Position{3, 4})

	assert.Equal(t, before, ecs.entityIndex[id])
	arch := ecs.archetypes[before]
	cid := ecs.getComponentId(reflect.TypeOf(Position{}))
	assert.Equal(t, Position{3, 4}, reflectSliceGet(arch.componentData[cid], int(arch.entities[id])).Interface())
}

func TestEcs_RemoveComponents(t *testing.T) {
	type Position struct{ X, Y float64 }
	type Velocity struct{ X, Y float64 }

	ecs := MakeEcs()
	id := ecs.addEntity(Position{1, 2}, Velocity{3, 4})
	ecs.removeComponents(id, Velocity{})

	arch := ecs.archetypes[ecs.entityIndex[id]]
	require.Len(t, arch.key, 1)
	cid := ecs.getComponentId(reflect.TypeOf(Position{}))
	assert.Equal(t, Position{1, 2}, reflectSliceGet(arch.componentData[cid], int(arch.entities[id])).Interface())
}

func TestEcs_AddInvalidComponentShouldPanic(t *testing.T) {
	ecs := MakeEcs()
	assert.Panics(t, func() { ecs.addEntity(123) })
}

func TestEcs_ComponentRegistration(t *testing.T) {
	type Position struct{ x, y float64 }

	ecs := MakeEcs()
	id1 := ecs.getComponentId(reflect.TypeOf(Position{}))
	id2 := ecs.getComponentId(reflect.TypeOf(Position{}))

	assert.Equal(t, id1, id2)
	assert.Equal(t, reflect.TypeOf(Position{}), ecs.componentType[id1])
}

func TestEcs_NormalizeKey(t *testing.T) {
	assert.Equal(t, archetypeKey{1, 2, 3}, normalizeKey(archetypeKey{3, 1, 2, 1, 3}))
	assert.Equal(t, hashKey(archetypeKey{1, 2}), hashKey(normalizeKey(archetypeKey{2, 1})))
	assert.NotEqual(t, hashKey(archetypeKey{1, 2}), hashKey(archetypeKey{1, 3}))
}

func TestEcs_RemoveEntity(t *testing.T) {
	type Position struct{ X, Y float64 }

	ecs := MakeEcs()
	id := ecs.addEntity(Position{1, 2})
	ecs.removeEntity(id)
	ecs.removeEntity(id)

	assert.False(t, ecs.hasEntity(id))
	assert.Equal(t, 0, ecs.entityCount())
}

func TestEcs_RecycledRowsAreZeroed(t *testing.T) {
	type Position struct{ X, Y float64 }

	ecs := MakeEcs()
	a := ecs.addEntity(Position{1, 2})
	ecs.removeEntity(a)
	b := ecs.addEntity()
	ecs.addComponents(b, Position{5, 6})
	c := ecs.insertEntity(ecs.nextEntityId(), &Position{})

	arch := ecs.archetypes[ecs.entityIndex[c]]
	cid := ecs.getComponentId(reflect.TypeOf(Position{}))
	assert.Equal(t, 2, reflectSliceLen(arch.componentData[cid]), "freed row should be reused")
	assert.Equal(t, Position{}, reflectSliceGet(arch.componentData[cid], int(arch.entities[c])).Interface())
	assert.Equal(t, Position{5, 6}, reflectSliceGet(arch.componentData[cid], int(arch.entities[b])).Interface())
}

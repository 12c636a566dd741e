package starride

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"reflect"
	"slices"
	"sync"
)

type EntityId uint64
type archetypeId uint64
type archetypeKey []componentId
type componentId uint32
type row int
type set[T comparable] = map[T]struct{}

// Ecs stores entities grouped by archetype: every entity with exactly the
// same set of component types lives in one archetype, one row per entity,
// one typed slice per component type.
type Ecs struct {
	archetypes  map[archetypeId]*archetype
	entityIndex map[EntityId]archetypeId

	idLock          sync.Mutex
	entityIdCounter EntityId

	componentLock sync.Mutex
	componentIds  map[reflect.Type]componentId
	componentType map[componentId]reflect.Type
}

type archetype struct {
	id            archetypeId
	key           archetypeKey
	entities      map[EntityId]row
	componentData map[componentId]any // []T per component type
	recycled      []row
}

func MakeEcs() Ecs {
	return Ecs{
		archetypes:    make(map[archetypeId]*archetype),
		entityIndex:   make(map[EntityId]archetypeId),
		componentIds:  make(map[reflect.Type]componentId),
		componentType: make(map[componentId]reflect.Type),
	}
}

func (ecs *Ecs) addEntity(components ...any) EntityId {
	return ecs.insertEntity(ecs.nextEntityId(), components...)
}

func (ecs *Ecs) insertEntity(entityId EntityId, components ...any) EntityId {
	archId, arch := ecs.getOrMakeArchetype(ecs.keyOf(components...))

	r := ecs.reserveRow(arch)
	arch.entities[entityId] = r
	for _, component := range components {
		ecs.writeComponent(arch, r, component)
	}
	ecs.entityIndex[entityId] = archId
	return entityId
}

func (ecs *Ecs) hasEntity(entityId EntityId) bool {
	_, ok := ecs.entityIndex[entityId]
	return ok
}

func (ecs *Ecs) removeEntity(entityId EntityId) {
	if !ecs.hasEntity(entityId) {
		return
	}
	ecs.releaseRow(entityId)
}

func (ecs *Ecs) addComponents(entityId EntityId, components ...any) {
	if !ecs.hasEntity(entityId) {
		return
	}
	src := ecs.archetypes[ecs.entityIndex[entityId]]
	dstKey := normalizeKey(append(slices.Clone(src.key), ecs.keyOf(components...)...))
	dst := ecs.moveEntity(entityId, src, dstKey)

	r := dst.entities[entityId]
	for _, component := range components {
		ecs.writeComponent(dst, r, component)
	}
}

func (ecs *Ecs) removeComponents(entityId EntityId, components ...any) {
	if !ecs.hasEntity(entityId) {
		return
	}
	src := ecs.archetypes[ecs.entityIndex[entityId]]

	drop := make(set[componentId])
	for _, c := range components {
		drop[ecs.getComponentId(componentTypeOf(c))] = struct{}{}
	}
	var dstKey archetypeKey
	for _, id := range src.key {
		if _, ok := drop[id]; !ok {
			dstKey = append(dstKey, id)
		}
	}
	ecs.moveEntity(entityId, src, dstKey)
}

// moveEntity copies the components shared by src and the archetype of
// dstKey into a fresh row and frees the old one.
func (ecs *Ecs) moveEntity(entityId EntityId, src *archetype, dstKey archetypeKey) *archetype {
	dstId, dst := ecs.getOrMakeArchetype(dstKey)
	if dst == src {
		return src
	}
	srcRow := src.entities[entityId]
	dstRow := ecs.reserveRow(dst)

	for _, id := range dst.key {
		if data, ok := src.componentData[id]; ok {
			reflectSliceSet(dst.componentData[id], int(dstRow), reflectSliceGet(data, int(srcRow)))
		}
	}

	ecs.releaseRow(entityId)
	dst.entities[entityId] = dstRow
	ecs.entityIndex[entityId] = dstId
	return dst
}

func (ecs *Ecs) writeComponent(arch *archetype, r row, component any) {
	value := reflect.ValueOf(component)
	if value.Kind() == reflect.Pointer {
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		panic(fmt.Errorf("expected component to be a struct or a pointer to a struct, got %s", value.Kind()))
	}
	id := ecs.getComponentId(value.Type())
	reflectSliceSet(arch.componentData[id], int(r), value)
}

func (ecs *Ecs) releaseRow(entityId EntityId) {
	arch := ecs.archetypes[ecs.entityIndex[entityId]]
	arch.recycled = append(arch.recycled, arch.entities[entityId])

	delete(arch.entities, entityId)
	delete(ecs.entityIndex, entityId)
}

func (ecs *Ecs) reserveRow(arch *archetype) row {
	if n := len(arch.recycled); n > 0 {
		r := arch.recycled[n-1]
		arch.recycled = arch.recycled[:n-1]
		for _, id := range arch.key {
			reflectSliceSet(arch.componentData[id], int(r), reflect.Zero(ecs.componentType[id]))
		}
		return r
	}

	r := row(len(arch.entities))
	for _, id := range arch.key {
		arch.componentData[id] = reflectSliceAppend(arch.componentData[id], reflect.Zero(ecs.componentType[id]))
	}
	return r
}

func (ecs *Ecs) getOrMakeArchetype(key archetypeKey) (archetypeId, *archetype) {
	id := hashKey(key)
	if arch, ok := ecs.archetypes[id]; ok {
		return id, arch
	}

	arch := &archetype{
		id:            id,
		key:           key,
		entities:      make(map[EntityId]row),
		componentData: make(map[componentId]any, len(key)),
	}
	for _, compId := range key {
		arch.componentData[compId] = reflectSliceMake(ecs.componentType[compId])
	}
	ecs.archetypes[id] = arch
	return id, arch
}

// keyOf returns the canonical (sorted, deduplicated) archetype key for a set
// of components.
func (ecs *Ecs) keyOf(components ...any) archetypeKey {
	key := make(archetypeKey, 0, len(components))
	for _, c := range components {
		t := componentTypeOf(c)
		if t.Kind() != reflect.Struct {
			panic("component should be a struct")
		}
		key = append(key, ecs.getComponentId(t))
	}
	return normalizeKey(key)
}

func normalizeKey(key archetypeKey) archetypeKey {
	slices.Sort(key)
	return slices.Compact(key)
}

func hashKey(key archetypeKey) archetypeId {
	h := fnv.New64a()
	var b [4]byte
	for _, id := range key {
		binary.LittleEndian.PutUint32(b[:], uint32(id))
		h.Write(b[:])
	}
	return archetypeId(h.Sum64())
}

func componentTypeOf(c any) reflect.Type {
	t := reflect.TypeOf(c)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func (ecs *Ecs) nextEntityId() EntityId {
	ecs.idLock.Lock()
	defer ecs.idLock.Unlock()

	id := ecs.entityIdCounter
	ecs.entityIdCounter++
	return id
}

func (ecs *Ecs) getComponentId(t reflect.Type) componentId {
	ecs.componentLock.Lock()
	defer ecs.componentLock.Unlock()

	if id, ok := ecs.componentIds[t]; ok {
		return id
	}
	id := componentId(len(ecs.componentIds))
	ecs.componentIds[t] = id
	ecs.componentType[id] = t
	return id
}

func (ecs *Ecs) entityCount() int {
	return len(ecs.entityIndex)
}

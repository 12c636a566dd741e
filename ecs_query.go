package starride

import (
	"reflect"
	"slices"
)

// Queries visit every entity that has all the queried component types.
// Types passed as optionals may be missing; the callback then receives nil
// for them. Entities are visited in ascending EntityId order. Returning false
// from the callback stops the iteration.
type Query1[A any] struct{ ecs *Ecs }
type Query2[A, B any] struct{ ecs *Ecs }
type Query3[A, B, C any] struct{ ecs *Ecs }

func MakeQuery1[A any](cmd *Commands) Query1[A]       { return Query1[A]{ecs: cmd.app.ecs} }
func MakeQuery2[A, B any](cmd *Commands) Query2[A, B] { return Query2[A, B]{ecs: cmd.app.ecs} }
func MakeQuery3[A, B, C any](cmd *Commands) Query3[A, B, C] {
	return Query3[A, B, C]{ecs: cmd.app.ecs}
}

type entityRow struct {
	eid EntityId
	row row
}

type match struct {
	arch *archetype
	cols []any // nil where an optional component is absent
}

func (ecs *Ecs) match(ids []componentId, optionals ...any) []match {
	opt := make(set[componentId])
	for _, o := range optionals {
		opt[ecs.getComponentId(componentTypeOf(o))] = struct{}{}
	}

	var out []match
	for _, arch := range ecs.archetypes {
		m := match{arch: arch, cols: make([]any, len(ids))}
		ok := true
		for i, id := range ids {
			if data, found := arch.componentData[id]; found {
				m.cols[i] = data
			} else if _, isOpt := opt[id]; !isOpt {
				ok = false
				break
			}
		}
		if ok && len(arch.entities) > 0 {
			out = append(out, m)
		}
	}
	return out
}

func sortedRows(matches []match) ([]entityRow, map[EntityId]int) {
	var rows []entityRow
	owner := make(map[EntityId]int)
	for i, m := range matches {
		for eid, r := range m.arch.entities {
			rows = append(rows, entityRow{eid: eid, row: r})
			owner[eid] = i
		}
	}
	slices.SortFunc(rows, func(a, b entityRow) int {
		switch {
		case a.eid < b.eid:
			return -1
		case a.eid > b.eid:
			return 1
		}
		return 0
	})
	return rows, owner
}

func column[T any](col any, r row) *T {
	if col == nil {
		return nil
	}
	return &col.([]T)[r]
}

func (q Query1[A]) Map(m func(EntityId, *A) bool, optionals ...any) {
	matches := q.ecs.match([]componentId{typeId[A](q.ecs)}, optionals...)
	rows, owner := sortedRows(matches)
	for _, er := range rows {
		cols := matches[owner[er.eid]].cols
		if !m(er.eid, column[A](cols[0], er.row)) {
			return
		}
	}
}

func (q Query2[A, B]) Map(m func(EntityId, *A, *B) bool, optionals ...any) {
	matches := q.ecs.match([]componentId{typeId[A](q.ecs), typeId[B](q.ecs)}, optionals...)
	rows, owner := sortedRows(matches)
	for _, er := range rows {
		cols := matches[owner[er.eid]].cols
		if !m(er.eid, column[A](cols[0], er.row), column[B](cols[1], er.row)) {
			return
		}
	}
}

func (q Query3[A, B, C]) Map(m func(EntityId, *A, *B, *C) bool, optionals ...any) {
	matches := q.ecs.match([]componentId{typeId[A](q.ecs), typeId[B](q.ecs), typeId[C](q.ecs)}, optionals...)
	rows, owner := sortedRows(matches)
	for _, er := range rows {
		cols := matches[owner[er.eid]].cols
		if !m(er.eid, column[A](cols[0], er.row), column[B](cols[1], er.row), column[C](cols[2], er.row)) {
			return
		}
	}
}

// Count returns how many entities the query would visit.
func (q Query1[A]) Count() int {
	n := 0
	q.Map(func(EntityId, *A) bool { n++; return true })
	return n
}

func typeId[T any](ecs *Ecs) componentId {
	return ecs.getComponentId(reflect.TypeFor[T]())
}

// Component returns the entity's component of type T. The pointer is only
// valid until the entity changes archetype.
func Component[T any](cmd *Commands, eid EntityId) (*T, bool) {
	ecs := cmd.app.ecs
	archId, ok := ecs.entityIndex[eid]
	if !ok {
		return nil, false
	}
	arch := ecs.archetypes[archId]
	col, ok := arch.componentData[typeId[T](ecs)]
	if !ok {
		return nil, false
	}
	return column[T](col, arch.entities[eid]), true
}

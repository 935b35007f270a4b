package ir

import "fmt"

// VarID indexes a variable record in a VarTable.
type VarID int

// ErrTypeMismatch is returned when two variables of different known types
// are unified, or a known type is changed.
type ErrTypeMismatch struct {
	Want, Got Type
}

func (e *ErrTypeMismatch) Error() string {
	return fmt.Sprintf("type mismatch: %s vs %s", e.Want, e.Got)
}

type varRecord struct {
	parent VarID
	typ    Type
	name   string
}

// VarTable is the arena of local variables of one function. Variables are
// merged with Union; every query goes through the class representative,
// which is always the lowest id of the class.
type VarTable struct {
	vars []varRecord
}

// NewVarTable creates an empty table.
func NewVarTable() *VarTable {
	return &VarTable{}
}

// New allocates a fresh variable and returns a Local referencing it.
func (t *VarTable) New(typ Type) Local {
	id := VarID(len(t.vars))
	t.vars = append(t.vars, varRecord{parent: id, typ: typ})
	return Local{ID: id, Vars: t}
}

// Len returns the number of allocated ids.
func (t *VarTable) Len() int {
	return len(t.vars)
}

// Find returns the class representative of id, compressing the path.
func (t *VarTable) Find(id VarID) VarID {
	root := id
	for t.vars[root].parent != root {
		root = t.vars[root].parent
	}
	for id != root {
		next := t.vars[id].parent
		t.vars[id].parent = root
		id = next
	}
	return root
}

// Union merges the classes of a and b. Types are merged: an unknown type is
// refined by a known one, two different known types are an error and leave
// the table unchanged.
func (t *VarTable) Union(a, b VarID) (VarID, error) {
	ra, rb := t.Find(a), t.Find(b)
	if ra == rb {
		return ra, nil
	}
	typ, err := mergeTypes(t.vars[ra].typ, t.vars[rb].typ)
	if err != nil {
		return ra, err
	}
	if rb < ra {
		ra, rb = rb, ra
	}
	t.vars[rb].parent = ra
	t.vars[ra].typ = typ
	if t.vars[ra].name == "" {
		t.vars[ra].name = t.vars[rb].name
	}
	return ra, nil
}

func mergeTypes(a, b Type) (Type, error) {
	switch {
	case a == b:
		return a, nil
	case a == TypeUnknown:
		return b, nil
	case b == TypeUnknown:
		return a, nil
	}
	return a, &ErrTypeMismatch{Want: a, Got: b}
}

// Type returns the type of id's class.
func (t *VarTable) Type(id VarID) Type {
	return t.vars[t.Find(id)].typ
}

// Refine sets the type of id's class. A type can only change from
// TypeUnknown; once known, refining it to another type is an
// *ErrTypeMismatch and refining it to TypeUnknown keeps it.
func (t *VarTable) Refine(id VarID, typ Type) error {
	root := t.Find(id)
	merged, err := mergeTypes(t.vars[root].typ, typ)
	if err != nil {
		return err
	}
	t.vars[root].typ = merged
	return nil
}

// Name returns the name given to id's class, or "" before naming.
func (t *VarTable) Name(id VarID) string {
	return t.vars[t.Find(id)].name
}

// SetName names id's class.
func (t *VarTable) SetName(id VarID, name string) {
	t.vars[t.Find(id)].name = name
}

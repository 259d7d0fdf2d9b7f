package types

import (
	"fmt"
	"sort"
)

// ActLv is the placement rule of an action kind.
type ActLv int8

const (
	ActLvTopOnly      ActLv = -4  // the only action of the transaction
	ActLvTopUnique    ActLv = -3  // at most once per transaction, top level
	ActLvTop          ActLv = -2  // top level of the transaction
	ActLvAst          ActLv = -1  // top level or inside an ast node
	ActLvMainCall     ActLv = 0   // up to MainCallDepthMax
	ActLvContractCall ActLv = 1   // up to ContractCallMax
	ActLvAny          ActLv = 127 // anywhere
)

func (l ActLv) String() string {
	switch l {
	case ActLvTopOnly:
		return "TOP_ONLY"
	case ActLvTopUnique:
		return "TOP_UNIQUE"
	case ActLvTop:
		return "TOP"
	case ActLvAst:
		return "AST"
	case ActLvMainCall:
		return "MAIN_CALL"
	case ActLvContractCall:
		return "CONTRACT_CALL"
	case ActLvAny:
		return "ANY"
	}
	return fmt.Sprintf("LEVEL(%d)", int8(l))
}

// Action is one operation of a transaction. Serialize includes the 2 byte
// kind, Parse expects it. Execute runs the body only; level checks and the
// base gas are applied by Context.ActionCall.
type Action interface {
	Field
	Kind() uint16
	Level() ActLv
	Burn90() bool
	ReqSign() []AddrOrPtr
	Describe() string
	Execute(ctx Context) ([]byte, error)
}

// ActionParser reads an action of a known kind from the front of buf, the
// kind bytes included.
type ActionParser func(reg *ActionRegistry, buf []byte) (Action, int, error)

// ActionEntry binds a kind to its parser.
type ActionEntry struct {
	Kind   uint16
	Name   string
	Parser ActionParser
}

// ActionRegistry maps action kinds to parsers. It is immutable once built.
type ActionRegistry struct {
	entries map[uint16]ActionEntry
}

// NewActionRegistry builds a registry from entry groups. Later groups may not
// redefine a kind.
func NewActionRegistry(groups ...[]ActionEntry) (*ActionRegistry, error) {
	r := &ActionRegistry{entries: make(map[uint16]ActionEntry)}
	for _, g := range groups {
		for _, e := range g {
			if _, ok := r.entries[e.Kind]; ok {
				return nil, fmt.Errorf("action kind %d registered twice", e.Kind)
			}
			if e.Parser == nil {
				return nil, fmt.Errorf("action kind %d has no parser", e.Kind)
			}
			r.entries[e.Kind] = e
		}
	}
	return r, nil
}

// Parse reads the kind prefix of buf and dispatches to its parser.
func (r *ActionRegistry) Parse(buf []byte) (Action, int, error) {
	if len(buf) < 2 {
		return nil, 0, fmt.Errorf("%w: action kind", ErrBufTooShort)
	}
	kind := uint16(buf[0])<<8 | uint16(buf[1])
	e, ok := r.entries[kind]
	if !ok {
		return nil, 0, fmt.Errorf("action kind %d not find", kind)
	}
	return e.Parser(r, buf)
}

// Has reports whether kind is registered.
func (r *ActionRegistry) Has(kind uint16) bool {
	_, ok := r.entries[kind]
	return ok
}

// Kinds returns every registered kind in ascending order.
func (r *ActionRegistry) Kinds() []uint16 {
	ks := make([]uint16, 0, len(r.entries))
	for k := range r.entries {
		ks = append(ks, k)
	}
	sort.Slice(ks, func(i, j int) bool { return ks[i] < ks[j] })
	return ks
}

// Name returns the registered name of kind.
func (r *ActionRegistry) Name(kind uint16) string {
	return r.entries[kind].Name
}

// ParseActionList reads count actions back to back.
func ParseActionList(reg *ActionRegistry, buf []byte, count int) ([]Action, int, error) {
	if reg == nil {
		return nil, 0, fmt.Errorf("action registry not set")
	}
	acts := make([]Action, 0, count)
	seek := 0
	for i := 0; i < count; i++ {
		act, n, err := reg.Parse(buf[seek:])
		if err != nil {
			return nil, 0, err
		}
		seek += n
		acts = append(acts, act)
	}
	return acts, seek, nil
}

// SerializeActionList concatenates the serialized actions.
func SerializeActionList(acts []Action) []byte {
	var out []byte
	for _, a := range acts {
		out = append(out, a.Serialize()...)
	}
	return out
}

// ActionListSize sums the serialized sizes.
func ActionListSize(acts []Action) int {
	sz := 0
	for _, a := range acts {
		sz += a.Size()
	}
	return sz
}

// KindHead serializes an action kind.
func KindHead(kind uint16) []byte {
	return []byte{byte(kind >> 8), byte(kind)}
}

// CheckKindHead verifies the kind prefix of buf.
func CheckKindHead(kind uint16, buf []byte) error {
	if len(buf) < 2 {
		return fmt.Errorf("%w: action kind", ErrBufTooShort)
	}
	if got := uint16(buf[0])<<8 | uint16(buf[1]); got != kind {
		return fmt.Errorf("action kind need %d but got %d", kind, got)
	}
	return nil
}

// DynActionListW1 is a 1 byte count list of polymorphic actions.
type DynActionListW1 struct {
	Registry *ActionRegistry
	Items    []Action
}

func (l *DynActionListW1) Parse(buf []byte) (int, error) {
	if len(buf) < 1 {
		return 0, ErrBufTooShort
	}
	acts, n, err := ParseActionList(l.Registry, buf[1:], int(buf[0]))
	if err != nil {
		return 0, err
	}
	l.Items = acts
	return 1 + n, nil
}

func (l DynActionListW1) Serialize() []byte {
	return append([]byte{byte(len(l.Items))}, SerializeActionList(l.Items)...)
}

func (l DynActionListW1) Size() int { return 1 + ActionListSize(l.Items) }

// ParseActionBody checks the kind prefix of buf and reads fs after it.
func ParseActionBody(kind uint16, buf []byte, fs ...Field) (int, error) {
	if err := CheckKindHead(kind, buf); err != nil {
		return 0, err
	}
	seek := 2
	for _, f := range fs {
		n, err := f.Parse(buf[seek:])
		if err != nil {
			return 0, fmt.Errorf("action %d: %w", kind, err)
		}
		seek += n
	}
	return seek, nil
}

// SerializeActionBody writes the kind prefix followed by fs.
func SerializeActionBody(kind uint16, fs ...Field) []byte {
	out := KindHead(kind)
	for _, f := range fs {
		out = append(out, f.Serialize()...)
	}
	return out
}

// ActionBodySize is the size of the kind prefix plus fs.
func ActionBodySize(fs ...Field) int {
	sz := 2
	for _, f := range fs {
		sz += f.Size()
	}
	return sz
}

package types

import (
	"fmt"
)

// ListW1 is a list prefixed by a 1 byte count.
type ListW1[T any, PT FieldPtr[T]] struct {
	Items []T
}

// ListW2 is a list prefixed by a 2 byte count.
type ListW2[T any, PT FieldPtr[T]] struct {
	Items []T
}

func parseList[T any, PT FieldPtr[T]](buf []byte, width int) ([]T, int, error) {
	count, err := readUint(buf, width)
	if err != nil {
		return nil, 0, err
	}
	items := make([]T, 0, count)
	seek := width
	for i := uint64(0); i < count; i++ {
		var v T
		n, err := PT(&v).Parse(buf[seek:])
		if err != nil {
			return nil, 0, fmt.Errorf("list item %d: %w", i, err)
		}
		seek += n
		items = append(items, v)
	}
	return items, seek, nil
}

func serializeList[T any, PT FieldPtr[T]](items []T, width int) []byte {
	out := writeUint(uint64(len(items)), width)
	for i := range items {
		out = append(out, PT(&items[i]).Serialize()...)
	}
	return out
}

func sizeList[T any, PT FieldPtr[T]](items []T, width int) int {
	sz := width
	for i := range items {
		sz += PT(&items[i]).Size()
	}
	return sz
}

func (l *ListW1[T, PT]) Parse(buf []byte) (int, error) {
	items, n, err := parseList[T, PT](buf, 1)
	if err != nil {
		return 0, err
	}
	l.Items = items
	return n, nil
}
func (l ListW1[T, PT]) Serialize() []byte { return serializeList[T, PT](l.Items, 1) }
func (l ListW1[T, PT]) Size() int         { return sizeList[T, PT](l.Items, 1) }
func (l ListW1[T, PT]) Len() int          { return len(l.Items) }

// Push appends v, failing if the count no longer fits one byte.
func (l *ListW1[T, PT]) Push(v T) error {
	if len(l.Items) >= 255 {
		return fmt.Errorf("%w: list length over 255", ErrSizeOverflow)
	}
	l.Items = append(l.Items, v)
	return nil
}

func (l *ListW2[T, PT]) Parse(buf []byte) (int, error) {
	items, n, err := parseList[T, PT](buf, 2)
	if err != nil {
		return 0, err
	}
	l.Items = items
	return n, nil
}
func (l ListW2[T, PT]) Serialize() []byte { return serializeList[T, PT](l.Items, 2) }
func (l ListW2[T, PT]) Size() int         { return sizeList[T, PT](l.Items, 2) }
func (l ListW2[T, PT]) Len() int          { return len(l.Items) }

// Push appends v, failing if the count no longer fits two bytes.
func (l *ListW2[T, PT]) Push(v T) error {
	if len(l.Items) >= 65535 {
		return fmt.Errorf("%w: list length over 65535", ErrSizeOverflow)
	}
	l.Items = append(l.Items, v)
	return nil
}

// Optional is a presence byte followed by the payload when present.
type Optional[T any, PT FieldPtr[T]] struct {
	Value *T
}

// Some wraps v.
func Some[T any, PT FieldPtr[T]](v T) Optional[T, PT] {
	return Optional[T, PT]{Value: &v}
}

func (o Optional[T, PT]) IsSome() bool { return o.Value != nil }

func (o *Optional[T, PT]) Parse(buf []byte) (int, error) {
	if len(buf) < 1 {
		return 0, ErrBufTooShort
	}
	switch buf[0] {
	case 0:
		o.Value = nil
		return 1, nil
	case 1:
		var v T
		n, err := PT(&v).Parse(buf[1:])
		if err != nil {
			return 0, err
		}
		o.Value = &v
		return 1 + n, nil
	}
	return 0, fmt.Errorf("%w: optional flag %d", ErrUnknownTag, buf[0])
}

func (o Optional[T, PT]) Serialize() []byte {
	if o.Value == nil {
		return []byte{0}
	}
	return append([]byte{1}, PT(o.Value).Serialize()...)
}

func (o Optional[T, PT]) Size() int {
	if o.Value == nil {
		return 1
	}
	return 1 + PT(o.Value).Size()
}

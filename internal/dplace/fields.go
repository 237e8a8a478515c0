package dplace

import (
	"reflect"
	"strconv"
	"strings"
)

// Kind is the declared value type of a record field.
type Kind int

const (
	KindString Kind = iota
	KindFloat
	// KindNested marks fields that hold derived, non-tabular values (for
	// example a variable's codes). They are never read from a CSV cell.
	KindNested
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindFloat:
		return "float"
	case KindNested:
		return "nested"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Field is one declared field of a record type. Name is the field's csv tag,
// which is also the column header used in the D-PLACE files.
type Field struct {
	Name  string
	Kind  Kind
	index []int
}

// FieldsOf returns the declared fields of record type T in declaration order.
// Struct fields without a csv tag are not part of the record shape.
func FieldsOf[T any]() []Field {
	t := reflect.TypeFor[T]()
	out := make([]Field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name := sf.Tag.Get("csv")
		if name == "" || name == "-" || !sf.IsExported() {
			continue
		}
		kind := KindNested
		switch sf.Type.Kind() {
		case reflect.String:
			kind = KindString
		case reflect.Float64:
			kind = KindFloat
		}
		out = append(out, Field{Name: name, Kind: kind, index: sf.Index})
	}
	return out
}

// Value returns the value of f held by rec, which must be a T (or *T) that f
// was obtained from.
func (f Field) Value(rec any) any {
	v := reflect.ValueOf(rec)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	return v.FieldByIndex(f.index).Interface()
}

// set assigns a parsed cell to f on the addressable struct value v.
func (f Field) set(v reflect.Value, cell string) error {
	fv := v.FieldByIndex(f.index)
	switch f.Kind {
	case KindString:
		fv.SetString(cell)
	case KindFloat:
		// Surrounding blanks occur in upstream coordinate columns.
		x, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			return err
		}
		fv.SetFloat(x)
	}
	return nil
}

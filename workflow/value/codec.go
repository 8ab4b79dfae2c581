package value

import (
	"github.com/vmihailenco/msgpack/v5"
)

// wireValue is the exported shadow of Value used purely for msgpack framing;
// Value keeps its fields unexported so constructors stay the only way to
// build one, but msgpack needs something it can reflect over.
type wireValue struct {
	Kind   Kind
	Bool   bool              `msgpack:",omitempty"`
	NumK   NumberKind        `msgpack:",omitempty"`
	NumU   uint64            `msgpack:",omitempty"`
	NumI   int64             `msgpack:",omitempty"`
	NumF   float64           `msgpack:",omitempty"`
	Str    string            `msgpack:",omitempty"`
	Arr    []Value           `msgpack:",omitempty"`
	Obj    map[string]Value  `msgpack:",omitempty"`
}

// EncodeMsgpack implements msgpack.CustomEncoder.
func (v Value) EncodeMsgpack(enc *msgpack.Encoder) error {
	w := wireValue{Kind: v.kind}
	switch v.kind {
	case KindBool:
		w.Bool = v.b
	case KindNumber:
		w.NumK = v.n.Kind
		w.NumU = v.n.UInt
		w.NumI = v.n.Int
		w.NumF = v.n.Float
	case KindString:
		w.Str = v.s
	case KindArray:
		w.Arr = v.arr
	case KindObject:
		w.Obj = v.obj
	}
	return enc.Encode(w)
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (v *Value) DecodeMsgpack(dec *msgpack.Decoder) error {
	var w wireValue
	if err := dec.Decode(&w); err != nil {
		return err
	}
	switch w.Kind {
	case KindNull:
		*v = Null
	case KindBool:
		*v = NewBool(w.Bool)
	case KindNumber:
		*v = NewNumber(Number{Kind: w.NumK, UInt: w.NumU, Int: w.NumI, Float: w.NumF})
	case KindString:
		*v = NewString(w.Str)
	case KindArray:
		*v = NewArray(w.Arr)
	case KindObject:
		*v = NewObject(w.Obj)
	default:
		*v = Null
	}
	return nil
}

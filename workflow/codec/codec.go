// Package codec implements the engine's binary state/definition archive.
// The original design calls for a zero-copy, mmap-style archive (the
// source used Rust's rkyv); no such zero-copy binary framework exists
// anywhere in the retrieval pack, so this substitutes an eager-decode,
// self-describing binary codec (msgpack) that still satisfies the required
// round-trip property: decode(encode(x)) == x.
package codec

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/flowcore/bpmnengine/workflow/errs"
	"github.com/flowcore/bpmnengine/workflow/graph"
	"github.com/flowcore/bpmnengine/workflow/state"
)

// schemaVersion is bumped whenever the wire shape of stateEnvelope or
// definitionEnvelope changes incompatibly; EncodeState/DecodeState reject a
// mismatch as a CodecError rather than silently misinterpreting bytes.
const schemaVersion = 1

type stateEnvelope struct {
	SchemaVersion int
	Locked        state.Locked
}

// EncodeState serializes an instance's locked record.
func EncodeState(l state.Locked) ([]byte, error) {
	data, err := msgpack.Marshal(stateEnvelope{SchemaVersion: schemaVersion, Locked: l})
	if err != nil {
		return nil, errs.Codec("encode state", err)
	}
	return data, nil
}

// DecodeState deserializes bytes previously produced by EncodeState.
func DecodeState(data []byte) (state.Locked, error) {
	var env stateEnvelope
	if err := msgpack.Unmarshal(data, &env); err != nil {
		return state.Locked{}, errs.Codec("decode state", err)
	}
	if env.SchemaVersion != schemaVersion {
		return state.Locked{}, errs.Codec(fmt.Sprintf("unsupported state schema version %d", env.SchemaVersion), nil)
	}
	return env.Locked, nil
}

type definitionEnvelope struct {
	SchemaVersion int
	Definition    graph.Definition
}

// EncodeDefinition serializes a compiled Definition.
func EncodeDefinition(def *graph.Definition) ([]byte, error) {
	data, err := msgpack.Marshal(definitionEnvelope{SchemaVersion: schemaVersion, Definition: *def})
	if err != nil {
		return nil, errs.Codec("encode definition", err)
	}
	return data, nil
}

// DecodeDefinition deserializes bytes previously produced by
// EncodeDefinition, then re-validates the result the same way Compile
// does, since a definition's invariants must hold regardless of how it
// reached the interpreter.
func DecodeDefinition(data []byte) (*graph.Definition, error) {
	var env definitionEnvelope
	if err := msgpack.Unmarshal(data, &env); err != nil {
		return nil, errs.Codec("decode definition", err)
	}
	if env.SchemaVersion != schemaVersion {
		return nil, errs.Codec(fmt.Sprintf("unsupported definition schema version %d", env.SchemaVersion), nil)
	}
	def := env.Definition
	if err := def.Validate(); err != nil {
		return nil, errs.Codec("decoded definition failed validation", err)
	}
	return &def, nil
}

package graph

import (
	"fmt"

	"github.com/flowcore/bpmnengine/workflow/ast"
)

// Schema is the intermediate representation a BPMN XML parser hands to the
// compiler: string-keyed nodes and edges, exactly the shape the external
// parser collaborator is specified to produce (§3.1, §6 parser contract).
// It is deliberately flat and JSON-friendly so hosts can build it from any
// source format.
type Schema struct {
	ID        string
	Version   string
	Autostart bool
	Nodes     []SchemaNode
	Edges     []SchemaEdge
}

// SchemaNode is one BPMN element as seen by the parser, before arena
// indices are assigned.
type SchemaNode struct {
	ID      string
	Type    string // "startEvent" | "endEvent" | "userTask" | "exclusiveGateway"
	Default string // outgoing edge id used as the gateway default, "" if none
}

// SchemaEdge is one BPMN sequence flow, before arena indices are assigned.
type SchemaEdge struct {
	ID          string
	Source      string
	Target      string
	Language    string // only "jsep" carries a condition; anything else is ignored
	ConditionJS []byte // raw jsep-shaped JSON, nil when no condition
}

// Compile converts a Schema into an immutable Definition, assigning arena
// indices and resolving default/condition references. Unknown node types
// fail fast, mirroring the parser contract's "unknown elements fail fast
// with a line-located error" (the line location itself is the XML parser's
// responsibility, out of scope here).
func Compile(schema *Schema) (*Definition, error) {
	nodeIndex := make(map[string]int32, len(schema.Nodes))
	for i, n := range schema.Nodes {
		nodeIndex[n.ID] = int32(i)
	}
	edgeIndex := make(map[string]int32, len(schema.Edges))
	for i, e := range schema.Edges {
		edgeIndex[e.ID] = int32(i)
	}

	flows := make([]Flow, len(schema.Edges))
	flowIDs := make([]string, len(schema.Edges))
	for i, e := range schema.Edges {
		src, ok := nodeIndex[e.Source]
		if !ok {
			return nil, fmt.Errorf("edge %q references unknown source node %q", e.ID, e.Source)
		}
		dst, ok := nodeIndex[e.Target]
		if !ok {
			return nil, fmt.Errorf("edge %q references unknown target node %q", e.ID, e.Target)
		}
		flow := Flow{ID: int32(i), SourceRef: src, TargetRef: dst}
		if e.Language == "jsep" && len(e.ConditionJS) > 0 {
			node, err := ast.FromJSON(e.ConditionJS)
			if err != nil {
				return nil, fmt.Errorf("edge %q condition: %w", e.ID, err)
			}
			flow.Condition = &Condition{Expr: node}
		}
		flows[i] = flow
		flowIDs[i] = e.ID
	}

	incoming := make(map[string][]int32, len(schema.Nodes))
	outgoing := make(map[string][]int32, len(schema.Nodes))
	for i, e := range schema.Edges {
		outgoing[e.Source] = append(outgoing[e.Source], int32(i))
		incoming[e.Target] = append(incoming[e.Target], int32(i))
	}

	tasks := make([]Task, len(schema.Nodes))
	taskIDs := make([]string, len(schema.Nodes))
	startEvent := int32(-1)
	for i, n := range schema.Nodes {
		kind, err := taskKind(n.Type)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", n.ID, err)
		}
		def := int32(-1)
		if n.Default != "" {
			idx, ok := edgeIndex[n.Default]
			if !ok {
				return nil, fmt.Errorf("node %q default edge %q not found", n.ID, n.Default)
			}
			def = idx
		}
		tasks[i] = Task{
			ID:       int32(i),
			Kind:     kind,
			Incoming: incoming[n.ID],
			Outgoing: outgoing[n.ID],
			Default:  def,
		}
		taskIDs[i] = n.ID
		if kind == TaskStartEvent {
			if startEvent != -1 {
				return nil, fmt.Errorf("multiple start events found (%q and %q)", taskIDs[startEvent], n.ID)
			}
			startEvent = int32(i)
		}
	}
	if startEvent == -1 {
		return nil, fmt.Errorf("no start event found")
	}

	def := &Definition{
		ID:         schema.ID,
		Version:    schema.Version,
		StartEvent: startEvent,
		Tasks:      tasks,
		Flows:      flows,
		TaskIDs:    taskIDs,
		FlowIDs:    flowIDs,
		Autostart:  schema.Autostart,
	}
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("compiled definition invalid: %w", err)
	}
	return def, nil
}

func taskKind(t string) (TaskKind, error) {
	switch t {
	case "startEvent":
		return TaskStartEvent, nil
	case "endEvent":
		return TaskEndEvent, nil
	case "userTask":
		return TaskUserTask, nil
	case "exclusiveGateway":
		return TaskExclusiveGateway, nil
	default:
		return 0, fmt.Errorf("unsupported node type %q", t)
	}
}

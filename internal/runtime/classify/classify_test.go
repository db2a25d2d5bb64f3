package classify

import (
	"testing"

	"github.com/pipestream-ai/schemaflow/internal/runtime/symtab"
)

// orderTable declares OrderEvent two inheritance levels below the marker, a
// sibling class with no relation to it, and a legacy class on the old base
// implementation.
func orderTable() *symtab.Table {
	return symtab.NewTable().
		AddClass("events.OrderEvent", "events.BaseEvent").
		AddClass("events.BaseEvent", DefaultMarker).
		AddClass("events.PlainClass", "util.Helper").
		AddClass("util.Helper", "").
		AddClass("events.LegacyEvent", DefaultBaseImpl).
		AddClass("events.IfaceEvent", "", DefaultMarker)
}

func TestIsStructuredPayload(t *testing.T) {
	c := New(orderTable(), Ruleset{}, nil)

	tests := []struct {
		name string
		ref  symtab.TypeRef
		want bool
	}{
		{
			name: "marker type itself",
			ref:  symtab.ClassRef(DefaultMarker),
			want: true,
		},
		{
			name: "two levels up the inheritance chain",
			ref:  symtab.ClassRef("events.OrderEvent"),
			want: true,
		},
		{
			name: "legacy base implementation on the superclass chain",
			ref:  symtab.ClassRef("events.LegacyEvent"),
			want: true,
		},
		{
			name: "marker on the direct interface list",
			ref:  symtab.ClassRef("events.IfaceEvent"),
			want: true,
		},
		{
			name: "unrelated plain class",
			ref:  symtab.ClassRef("events.PlainClass"),
			want: false,
		},
		{
			name: "class absent from the index",
			ref:  symtab.ClassRef("events.NotIndexed"),
			want: false,
		},
		{
			name: "emitter wrapping a payload",
			ref:  symtab.ParameterizedRef("messaging.Emitter", symtab.ClassRef("events.OrderEvent")),
			want: true,
		},
		{
			name: "emitter wrapping an unrelated class",
			ref:  symtab.ParameterizedRef("messaging.Emitter", symtab.ClassRef("events.PlainClass")),
			want: false,
		},
		{
			name: "parameterized with no arguments",
			ref:  symtab.ParameterizedRef("messaging.Emitter"),
			want: false,
		},
		{
			name: "multi-argument wrapper inspects only the first argument",
			ref: symtab.ParameterizedRef("messaging.Record",
				symtab.ClassRef("events.PlainClass"), symtab.ClassRef("events.OrderEvent")),
			want: false,
		},
		{
			name: "zero reference",
			ref:  symtab.TypeRef{},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsStructuredPayload(tt.ref); got != tt.want {
				t.Errorf("IsStructuredPayload(%v) = %v, want %v", tt.ref, got, tt.want)
			}
		})
	}
}

func TestIsStructuredPayloadIdempotent(t *testing.T) {
	c := New(orderTable(), Ruleset{}, nil)
	ref := symtab.ClassRef("events.OrderEvent")

	first := c.IsStructuredPayload(ref)
	second := c.IsStructuredPayload(ref)
	if first != second {
		t.Errorf("classification not idempotent: first=%v second=%v", first, second)
	}
}

func TestCustomRuleset(t *testing.T) {
	table := symtab.NewTable().
		AddClass("acme.Invoice", "acme.Document")

	c := New(table, Ruleset{Marker: "acme.Document"}, nil)
	if !c.IsStructuredPayload(symtab.ClassRef("acme.Invoice")) {
		t.Error("expected custom marker to classify acme.Invoice")
	}

	// The default marker no longer applies under a custom ruleset.
	defaultOnly := symtab.NewTable().AddClass("events.E", DefaultMarker)
	c2 := New(defaultOnly, Ruleset{Marker: "acme.Document"}, nil)
	if c2.IsStructuredPayload(symtab.ClassRef("events.E")) {
		t.Error("default marker should not match under a custom ruleset")
	}
}

func TestBrokenChainStopsAtMissingAncestor(t *testing.T) {
	table := symtab.NewTable().
		AddClass("events.Orphan", "events.MissingParent")

	c := New(table, Ruleset{}, nil)
	if c.IsStructuredPayload(symtab.ClassRef("events.Orphan")) {
		t.Error("missing ancestor must classify as false, not panic")
	}
}

func TestFirstTypeArgument(t *testing.T) {
	ref := symtab.ParameterizedRef("messaging.Emitter", symtab.ClassRef("events.OrderEvent"))
	arg, ok := FirstTypeArgument(ref)
	if !ok || arg.Name != "events.OrderEvent" {
		t.Errorf("FirstTypeArgument = %v ok=%v, want events.OrderEvent", arg, ok)
	}

	if _, ok := FirstTypeArgument(symtab.ClassRef("events.OrderEvent")); ok {
		t.Error("plain class has no type argument")
	}
}

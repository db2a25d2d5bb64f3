package symtab

import "testing"

func TestFirstArgument(t *testing.T) {
	tests := []struct {
		name    string
		ref     TypeRef
		want    string
		wantOK  bool
	}{
		{
			name:   "parameterized with one argument",
			ref:    ParameterizedRef("Emitter", ClassRef("OrderEvent")),
			want:   "OrderEvent",
			wantOK: true,
		},
		{
			name:   "parameterized with two arguments returns the first",
			ref:    ParameterizedRef("Record", ClassRef("Key"), ClassRef("Value")),
			want:   "Key",
			wantOK: true,
		},
		{
			name:   "parameterized with no arguments",
			ref:    ParameterizedRef("Emitter"),
			wantOK: false,
		},
		{
			name:   "plain class",
			ref:    ClassRef("OrderEvent"),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arg, ok := tt.ref.FirstArgument()
			if ok != tt.wantOK {
				t.Fatalf("FirstArgument() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && arg.Name != tt.want {
				t.Errorf("FirstArgument() = %q, want %q", arg.Name, tt.want)
			}
		})
	}
}

func TestTableLookup(t *testing.T) {
	table := NewTable().
		AddClass("OrderEvent", "BaseEvent").
		AddClass("BaseEvent", "", "events.Payload").
		AddInterface("events.Payload")

	info, ok := table.ClassByName("OrderEvent")
	if !ok {
		t.Fatal("expected OrderEvent to be declared")
	}
	if info.Superclass != "BaseEvent" {
		t.Errorf("Superclass = %q, want %q", info.Superclass, "BaseEvent")
	}

	if _, ok := table.ClassByName("Missing"); ok {
		t.Error("expected Missing to be absent")
	}

	iface, ok := table.ClassByName("events.Payload")
	if !ok || iface.Kind != ClassKindInterface {
		t.Errorf("expected events.Payload to be an interface, got %+v ok=%v", iface, ok)
	}
}

func TestTableNamesSorted(t *testing.T) {
	table := NewTable().
		AddClass("b.Second", "").
		AddClass("a.First", "")

	names := table.Names()
	if len(names) != 2 || names[0] != "a.First" || names[1] != "b.Second" {
		t.Errorf("Names() = %v, want sorted [a.First b.Second]", names)
	}
}

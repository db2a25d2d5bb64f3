// Package bindings scans declaration sites (methods, fields, method
// parameters) for channel binding annotations and turns them into the set of
// channels that need structured-payload configuration. It also rewrites the
// convenience proto-* annotations into their native forms so downstream
// consumers only ever see the native ones.
package bindings

import (
	"github.com/pipestream-ai/schemaflow/internal/runtime/logging"
	"github.com/pipestream-ai/schemaflow/internal/runtime/symtab"
)

// Native channel binding annotations of the messaging framework.
const (
	AnnIncoming = "incoming"
	AnnOutgoing = "outgoing"
	AnnChannel  = "channel"
)

// Convenience annotations. They declare "this channel always carries
// structured payloads" and are rewritten to the native forms before the rest
// of the system runs.
const (
	AnnProtoIncoming = "proto-incoming"
	AnnProtoOutgoing = "proto-outgoing"
	AnnProtoChannel  = "proto-channel"
)

// Annotation is a name with a single string argument, the channel name.
type Annotation struct {
	Name  string
	Value string
}

// Method is an annotated method declaration site.
type Method struct {
	Class       string
	Name        string
	Params      []symtab.TypeRef
	Returns     symtab.TypeRef
	Annotations []Annotation
}

// Field is an annotated field declaration site.
type Field struct {
	Class       string
	Name        string
	Type        symtab.TypeRef
	Annotations []Annotation
}

// Param is an annotated method parameter declaration site.
type Param struct {
	Class       string
	Method      string
	Index       int
	Type        symtab.TypeRef
	Annotations []Annotation
}

// Declarations is the annotated-member view of the symbol index. It is built
// by the same metadata producer that populates the symtab.Table and is
// mutated only by Rewrite.
type Declarations struct {
	Methods []Method
	Fields  []Field
	Params  []Param
}

// annotation returns the first annotation with the given name, if any.
func annotation(anns []Annotation, name string) (Annotation, bool) {
	for _, a := range anns {
		if a.Name == name {
			return a, true
		}
	}
	return Annotation{}, false
}

// rewriteOne replaces every convenience annotation from the from name with
// the native to name, carrying the channel value over verbatim. It reports
// how many annotations were rewritten.
func rewriteOne(anns []Annotation, from, to string) ([]Annotation, int) {
	rewritten := 0
	out := anns[:0]
	for _, a := range anns {
		if a.Name == from {
			out = append(out, Annotation{Name: to, Value: a.Value})
			rewritten++
			continue
		}
		out = append(out, a)
	}
	return out, rewritten
}

var rewriteRules = []struct {
	from string
	to   string
}{
	{AnnProtoIncoming, AnnIncoming},
	{AnnProtoOutgoing, AnnOutgoing},
	{AnnProtoChannel, AnnChannel},
}

// Rewrite structurally replaces the convenience annotations with their native
// forms across all declaration sites. The transformation is pure and
// idempotent: a second application finds nothing to rewrite and reports zero.
func (d *Declarations) Rewrite(log logging.ServiceLogger) int {
	if log == nil {
		log = logging.NewNopServiceLogger()
	}
	total := 0
	apply := func(anns []Annotation, site string, member string) []Annotation {
		for _, rule := range rewriteRules {
			var n int
			anns, n = rewriteOne(anns, rule.from, rule.to)
			if n > 0 {
				total += n
				log.Debug("rewrote convenience annotation", logging.LogFields{
					"from":   rule.from,
					"to":     rule.to,
					"site":   site,
					"member": member,
				})
			}
		}
		return anns
	}

	for i := range d.Methods {
		d.Methods[i].Annotations = apply(d.Methods[i].Annotations, "method", d.Methods[i].Name)
	}
	for i := range d.Fields {
		d.Fields[i].Annotations = apply(d.Fields[i].Annotations, "field", d.Fields[i].Name)
	}
	for i := range d.Params {
		d.Params[i].Annotations = apply(d.Params[i].Annotations, "param", d.Params[i].Method)
	}
	return total
}

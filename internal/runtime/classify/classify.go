// Package classify decides whether a declared type reference denotes a
// structured payload type: a type transitively derived from a known base
// marker. The decision runs purely over a symtab.Index; nothing here touches
// source text or runtime reflection.
package classify

import (
	"github.com/pipestream-ai/schemaflow/internal/runtime/logging"
	"github.com/pipestream-ai/schemaflow/internal/runtime/symtab"
)

// Default marker names. The marker is the interface every generated protobuf
// message satisfies; the base implementation is the legacy generated-message
// interface older codebases still extend.
const (
	DefaultMarker   = "google.golang.org/protobuf/proto.Message"
	DefaultBaseImpl = "github.com/golang/protobuf/proto.Message"
)

// Ruleset names the types the classifier matches against. Zero fields fall
// back to the defaults above; Root falls back to symtab.UniversalRoot.
type Ruleset struct {
	// Marker is the base marker type. A direct reference, an ancestor, or a
	// directly declared interface matching it classifies as a structured
	// payload.
	Marker string
	// BaseImpl is one additional well-known base implementation matched only
	// along the superclass chain.
	BaseImpl string
	// Root terminates superclass walks without being matched.
	Root string
}

func (r Ruleset) withDefaults() Ruleset {
	if r.Marker == "" {
		r.Marker = DefaultMarker
	}
	if r.BaseImpl == "" {
		r.BaseImpl = DefaultBaseImpl
	}
	if r.Root == "" {
		r.Root = symtab.UniversalRoot
	}
	return r
}

// Classifier answers structured-payload queries against one symbol index.
// It is stateless apart from its configuration and safe for concurrent use.
type Classifier struct {
	rules Ruleset
	index symtab.Index
	log   logging.ServiceLogger
}

// New returns a Classifier over the given index. A nil logger falls back to a
// nop logger.
func New(index symtab.Index, rules Ruleset, log logging.ServiceLogger) *Classifier {
	if log == nil {
		log = logging.NewNopServiceLogger()
	}
	return &Classifier{rules: rules.withDefaults(), index: index, log: log}
}

// IsStructuredPayload reports whether ref denotes a structured payload type,
// directly, through its supertype chain, or through the first argument of a
// generic wrapper.
//
// Only the first type argument of a parameterized reference is inspected.
// Multi-argument wrappers (key/value record types and the like) must be
// unwrapped by the caller before classification; see FirstTypeArgument.
func (c *Classifier) IsStructuredPayload(ref symtab.TypeRef) bool {
	if ref.IsZero() {
		return false
	}

	if ref.Kind == symtab.KindParameterized {
		arg, ok := ref.FirstArgument()
		if !ok {
			return false
		}
		return c.IsStructuredPayload(arg)
	}

	if ref.Name == c.rules.Marker {
		return true
	}

	info, ok := c.index.ClassByName(ref.Name)
	if !ok {
		// Absence is a valid "not classified" result, never a failure.
		c.log.Debug("type not found in symbol index", logging.LogFields{"type": ref.Name})
		return false
	}

	for super := info.Superclass; super != "" && super != c.rules.Root; {
		if super == c.rules.Marker || super == c.rules.BaseImpl {
			return true
		}
		parent, ok := c.index.ClassByName(super)
		if !ok {
			break
		}
		super = parent.Superclass
	}

	for _, iface := range info.Interfaces {
		if iface == c.rules.Marker {
			return true
		}
	}

	return false
}

// FirstTypeArgument returns the first type argument of a parameterized
// reference, or false for plain classes and argument-less generics. Callers
// use it to pre-unwrap known wrapper shapes (an emitter of T, a stream of T)
// before classifying T.
func FirstTypeArgument(ref symtab.TypeRef) (symtab.TypeRef, bool) {
	return ref.FirstArgument()
}

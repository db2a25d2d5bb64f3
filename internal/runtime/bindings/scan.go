package bindings

import (
	"sort"

	"github.com/pipestream-ai/schemaflow/internal/runtime/classify"
	"github.com/pipestream-ai/schemaflow/internal/runtime/logging"
)

// ChannelSet holds the detected channel names per direction. Insertion is
// idempotent and order-insensitive; the same name may live in both directions.
type ChannelSet struct {
	incoming map[string]struct{}
	outgoing map[string]struct{}
}

// NewChannelSet returns an empty set.
func NewChannelSet() *ChannelSet {
	return &ChannelSet{
		incoming: make(map[string]struct{}),
		outgoing: make(map[string]struct{}),
	}
}

// AddIncoming registers an incoming channel. It reports whether the name was
// newly added.
func (s *ChannelSet) AddIncoming(name string) bool {
	if _, ok := s.incoming[name]; ok {
		return false
	}
	s.incoming[name] = struct{}{}
	return true
}

// AddOutgoing registers an outgoing channel. It reports whether the name was
// newly added.
func (s *ChannelSet) AddOutgoing(name string) bool {
	if _, ok := s.outgoing[name]; ok {
		return false
	}
	s.outgoing[name] = struct{}{}
	return true
}

// HasIncoming reports whether name is registered as incoming.
func (s *ChannelSet) HasIncoming(name string) bool {
	_, ok := s.incoming[name]
	return ok
}

// HasOutgoing reports whether name is registered as outgoing.
func (s *ChannelSet) HasOutgoing(name string) bool {
	_, ok := s.outgoing[name]
	return ok
}

// Incoming returns the sorted incoming channel names.
func (s *ChannelSet) Incoming() []string {
	return sortedKeys(s.incoming)
}

// Outgoing returns the sorted outgoing channel names.
func (s *ChannelSet) Outgoing() []string {
	return sortedKeys(s.outgoing)
}

// Empty reports whether no channel is registered in either direction.
func (s *ChannelSet) Empty() bool {
	return len(s.incoming) == 0 && len(s.outgoing) == 0
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Scanner detects channels across the three annotation sources. Registration
// is commutative; scan order never changes the resulting sets.
type Scanner struct {
	classifier *classify.Classifier
	log        logging.ServiceLogger
}

// NewScanner returns a Scanner using the given classifier. A nil logger falls
// back to a nop logger.
func NewScanner(classifier *classify.Classifier, log logging.ServiceLogger) *Scanner {
	if log == nil {
		log = logging.NewNopServiceLogger()
	}
	return &Scanner{classifier: classifier, log: log}
}

// Scan walks all declaration sites and returns the detected channel sets.
// Convenience annotations register unconditionally (explicit user intent
// overrides inference); native annotations register only when the associated
// type classifies as a structured payload. Scan reads the declarations as
// they are, so run it before Rewrite when convenience annotations should keep
// their unconditional semantics.
func (s *Scanner) Scan(decls *Declarations) *ChannelSet {
	set := NewChannelSet()
	if decls == nil {
		return set
	}

	s.scanConvenience(decls, set)
	s.scanNativeMethods(decls, set)
	s.scanNativeChannels(decls, set)

	s.log.Info("channel scan complete", logging.LogFields{
		"incoming": len(set.incoming),
		"outgoing": len(set.outgoing),
	})
	return set
}

func (s *Scanner) scanConvenience(decls *Declarations, set *ChannelSet) {
	each := func(anns []Annotation) {
		if a, ok := annotation(anns, AnnProtoIncoming); ok && a.Value != "" {
			if set.AddIncoming(a.Value) {
				s.log.Debug("registered convenience incoming channel", logging.LogFields{"channel": a.Value})
			}
		}
		if a, ok := annotation(anns, AnnProtoOutgoing); ok && a.Value != "" {
			if set.AddOutgoing(a.Value) {
				s.log.Debug("registered convenience outgoing channel", logging.LogFields{"channel": a.Value})
			}
		}
		if a, ok := annotation(anns, AnnProtoChannel); ok && a.Value != "" {
			if set.AddOutgoing(a.Value) {
				s.log.Debug("registered convenience channel binding", logging.LogFields{"channel": a.Value})
			}
		}
	}

	for _, m := range decls.Methods {
		each(m.Annotations)
	}
	for _, f := range decls.Fields {
		each(f.Annotations)
	}
	for _, p := range decls.Params {
		each(p.Annotations)
	}
}

func (s *Scanner) scanNativeMethods(decls *Declarations, set *ChannelSet) {
	for _, m := range decls.Methods {
		if a, ok := annotation(m.Annotations, AnnIncoming); ok && a.Value != "" {
			for _, param := range m.Params {
				if s.classifier.IsStructuredPayload(param) {
					if set.AddIncoming(a.Value) {
						s.log.Debug("detected structured payload for incoming channel", logging.LogFields{
							"channel": a.Value,
							"method":  m.Name,
						})
					}
					break
				}
			}
		}
		if a, ok := annotation(m.Annotations, AnnOutgoing); ok && a.Value != "" {
			if s.classifier.IsStructuredPayload(m.Returns) {
				if set.AddOutgoing(a.Value) {
					s.log.Debug("detected structured payload for outgoing channel", logging.LogFields{
						"channel": a.Value,
						"method":  m.Name,
					})
				}
			}
		}
	}
}

// scanNativeChannels handles channel bindings on fields and parameters
// wrapped in a generic emitter-like type.
func (s *Scanner) scanNativeChannels(decls *Declarations, set *ChannelSet) {
	for _, f := range decls.Fields {
		if a, ok := annotation(f.Annotations, AnnChannel); ok && a.Value != "" {
			if payload, ok := classify.FirstTypeArgument(f.Type); ok && s.classifier.IsStructuredPayload(payload) {
				if set.AddOutgoing(a.Value) {
					s.log.Debug("detected structured payload for channel emitter field", logging.LogFields{
						"channel": a.Value,
						"field":   f.Name,
					})
				}
			}
		}
	}
	for _, p := range decls.Params {
		if a, ok := annotation(p.Annotations, AnnChannel); ok && a.Value != "" {
			if payload, ok := classify.FirstTypeArgument(p.Type); ok && s.classifier.IsStructuredPayload(payload) {
				if set.AddOutgoing(a.Value) {
					s.log.Debug("detected structured payload for channel emitter parameter", logging.LogFields{
						"channel": a.Value,
						"method":  p.Method,
					})
				}
			}
		}
	}
}

// DefaultBindings emits the low-priority per-channel connector defaults so
// downstream provisioning can discover registered channels even before the
// user supplies an explicit connector binding.
func DefaultBindings(set *ChannelSet, connector string) map[string]string {
	out := make(map[string]string, len(set.incoming)+len(set.outgoing))
	for name := range set.incoming {
		out["incoming."+name+".connector"] = connector
	}
	for name := range set.outgoing {
		out["outgoing."+name+".connector"] = connector
	}
	return out
}

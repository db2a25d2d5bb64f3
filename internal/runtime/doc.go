// Package runtime contains the implementation behind the public schemaflow
// API: the structured-payload classifier, the channel binding scanner, the
// ordinal-ranked property resolver with its synthesized channel overlay, and
// the dev-service lifecycle manager. The root package re-exports the stable
// surface; import this package tree only from within the module.
package runtime

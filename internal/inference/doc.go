// Package inference talks to the tagging backend that actually runs the
// models. tagsmith only needs to know which models are active and which
// categories they cover; failures here degrade API responses rather than
// break them.
package inference

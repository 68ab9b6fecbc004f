// Package topology implements the resolution algorithms that turn digitised
// map fragments into a consistent feature network.
//
// Healer reduces a bag of fragments to one clean line or a set of disjoint
// rings. Connector joins open lines endpoint by endpoint. LabelPropagator
// assigns contour elevations along containment chains. RiverTracer levels a
// stream network outward from the shoreline, recursing through lakes.
//
// Every algorithm mutates a store.Store and delegates geometry work to a
// geometry.Engine. None of them is safe for concurrent use.
package topology

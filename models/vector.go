package models

// VectorRelation is the outcome of comparing two version vectors.
type VectorRelation int

const (
	// VectorEqual means both vectors carry identical counters.
	VectorEqual VectorRelation = iota

	// VectorDominates means the receiver has seen everything the other has,
	// and more. The other side is simply stale.
	VectorDominates

	// VectorDominated means the other vector has seen everything the
	// receiver has, and more.
	VectorDominated

	// VectorConcurrent means neither side dominates: both hold a component
	// the other has not seen. This is a genuinely concurrent edit.
	VectorConcurrent
)

// VersionVector maps an actor (client) id to that actor's local monotonic
// counter for one entity. It is created on the first local mutation,
// incremented only inside the owning client, and compared — never merged —
// by this layer.
type VersionVector map[string]int64

// NewVersionVector returns an empty vector.
func NewVersionVector() VersionVector {
	return make(VersionVector)
}

// Increment bumps the counter for actor and returns the new value.
func (v VersionVector) Increment(actor string) int64 {
	v[actor]++
	return v[actor]
}

// Clone returns a deep copy of the vector.
func (v VersionVector) Clone() VersionVector {
	out := make(VersionVector, len(v))
	for actor, n := range v {
		out[actor] = n
	}
	return out
}

// Compare reports how v relates to other. A missing component counts as 0.
func (v VersionVector) Compare(other VersionVector) VectorRelation {
	var ahead, behind bool

	for actor, n := range v {
		if n > other[actor] {
			ahead = true
		}
	}
	for actor, n := range other {
		if n > v[actor] {
			behind = true
		}
	}

	switch {
	case ahead && behind:
		return VectorConcurrent
	case ahead:
		return VectorDominates
	case behind:
		return VectorDominated
	default:
		return VectorEqual
	}
}

// Concurrent reports whether v and other represent concurrent edits, i.e.
// neither vector dominates the other. A plain staleness case (one side
// dominates) is not a conflict in this sense.
func (v VersionVector) Concurrent(other VersionVector) bool {
	return v.Compare(other) == VectorConcurrent
}

/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package data

// msgpackSerializers lists the content types the "main" object (the
// empty-ContentType locator) can be rendered as, since it is stored
// once as msgpack but can be negotiated out as any of its equivalent
// representations. Grounded on the accept-negotiation loop of
// Data::get_accepted in original_source/src/database/data.cc, which
// expands the main locator into this same kind of candidate list
// (msgpack_serializers) before running it through the accept set.
var msgpackSerializers = []ContentType{
	{First: "application", Second: "msgpack"},
	{First: "application", Second: "x-msgpack"},
	{First: "application", Second: "json"},
	{First: "application", Second: "x-ndjson"},
	{First: "application", Second: "yaml"},
}

// Accept is one entry of a client's Accept header, expanded into a
// concrete (content-type, priority) pair. ContentType may use "*" in
// either half as a wildcard.
type Accept struct {
	ContentType ContentType
	Priority    float64
}

// GetAccepted runs content negotiation over the record's locators
// against acceptSet, honoring an optional exact mimeHint short-circuit.
// It returns the chosen locator and the Accept entry that selected it.
// Ties are broken in favor of the last equal-or-higher-priority match
// encountered (locators outer, candidate content types middle, accept
// entries inner) exactly as Data::get_accepted does: `priority >=
// accepted_priority` means a later entry of equal priority wins over an
// earlier one.
func (d *Data) GetAccepted(acceptSet []Accept, mimeHint ContentType) (Locator, Accept, bool) {
	var (
		accepted   Locator
		acceptedBy Accept
		found      bool
		bestPrio   = -1.0
	)
	for _, loc := range d.Locators {
		var candidates []ContentType
		if loc.ContentType.Empty() {
			candidates = msgpackSerializers
		} else {
			candidates = []ContentType{loc.ContentType}
		}
		for _, ct := range candidates {
			for _, accept := range acceptSet {
				if !accept.ContentType.matches(ct) {
					continue
				}
				if !mimeHint.Empty() && ct == mimeHint {
					return loc, accept, true
				}
				if accept.Priority >= bestPrio {
					bestPrio = accept.Priority
					accepted = loc
					acceptedBy = accept
					found = true
				}
			}
		}
	}
	return accepted, acceptedBy, found
}

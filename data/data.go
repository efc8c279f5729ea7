/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package data

import (
	"github.com/Kronuz/xapiand-core/xlog"
)

// headerMagic/footerMagic bracket a serialised Data record so a torn or
// corrupt record is detected on read instead of silently misparsed, the
// same role DATABASE_DATA_HEADER_MAGIC/FOOTER_MAGIC play in
// original_source/src/database/data.cc. The exact byte values are not
// load-bearing outside this package; only internal consistency is.
const (
	headerMagic byte = 0x11
	footerMagic byte = 0xfe
)

// Data is a document's full payload: its "main" object (the locator
// whose ContentType is empty) plus any number of additionally stored
// representations, each independently compressed or not.
type Data struct {
	Locators []Locator
}

// New returns an empty Data record, equivalent to feeding the codec a
// bare header/footer with no locators (the default-constructed Data of
// original_source/src/database/data.cc).
func New() *Data {
	return &Data{}
}

// Feed parses a serialised Data record. Following the original's
// non-throwing contract, a malformed record does not return an error to
// propagate up the indexing pipeline: it logs a warning and leaves d
// with no locators, so a corrupt stored record degrades to "no extra
// representations" rather than aborting the read path.
func Feed(serialised []byte) *Data {
	d := &Data{}
	if len(serialised) == 0 {
		return d
	}
	if serialised[0] != headerMagic {
		xlog.Warningf("data: bad header magic")
		return d
	}
	buf := serialised[1:]
	var locators []Locator
	for {
		if len(buf) == 0 {
			xlog.Warningf("data: truncated record, missing terminator")
			return &Data{}
		}
		if buf[0] == 0 {
			buf = buf[1:]
			break
		}
		loc, rest, ok := unserialiseLocator(buf)
		if !ok {
			xlog.Warningf("data: failed to parse locator")
			return &Data{}
		}
		locators = append(locators, loc)
		buf = rest
	}
	if len(buf) != 1 || buf[0] != footerMagic {
		xlog.Warningf("data: bad footer magic")
		return &Data{}
	}
	d.Locators = locators
	return d
}

// Serialise writes the record back to its wire form. An empty Data
// (no locators) serialises to an empty slice, mirroring
// Data::serialise()'s empty-sentinel handling in the original.
func (d *Data) Serialise() []byte {
	if len(d.Locators) == 0 {
		return nil
	}
	out := []byte{headerMagic}
	for _, loc := range d.Locators {
		out = append(out, loc.serialise()...)
	}
	out = append(out, 0, footerMagic)
	return out
}

// Get returns the locator for the given content type, if present.
func (d *Data) Get(ct ContentType) (Locator, bool) {
	for _, loc := range d.Locators {
		if loc.ContentType == ct {
			return loc, true
		}
	}
	return Locator{}, false
}

// GetObject returns the raw bytes of the "main" object (the
// empty-ContentType locator), decompressing if needed.
func (d *Data) GetObject() ([]byte, bool, error) {
	loc, ok := d.Get(ContentType{})
	if !ok {
		return nil, false, nil
	}
	raw, err := loc.Data()
	return raw, true, err
}

// SetObject installs raw as the document's main object, compressing it
// inplace if it is large enough to benefit (see Locator.SetData).
func (d *Data) SetObject(raw []byte, compress bool) {
	d.upsert(Locator{ContentType: ContentType{}, Type: locatorType(compress, false)}, raw)
}

// SetStored installs raw as a stored representation under ct, recording
// its external (volume, offset) location. Compressed stored locators
// still carry raw inline until written out by the caller's storage
// layer; SetData performs the same ≥128-byte compression test as for
// inplace locators.
func (d *Data) SetStored(ct ContentType, volume, offset int64, raw []byte, compress bool) {
	loc := Locator{ContentType: ct, Type: locatorType(compress, true), Volume: volume, Offset: offset}
	d.upsert(loc, raw)
}

func locatorType(compress, stored bool) LocatorType {
	switch {
	case compress && stored:
		return CompressedStored
	case stored:
		return Stored
	case compress:
		return CompressedInplace
	default:
		return Inplace
	}
}

// upsert replaces any existing locator with the same content type
// (per Locator.equalContentType) and installs raw into the new one,
// matching the merge-by-content-type semantics of Data::flush.
func (d *Data) upsert(loc Locator, raw []byte) {
	loc.SetData(raw)
	for i := range d.Locators {
		if d.Locators[i].equalContentType(loc) {
			d.Locators[i] = loc
			return
		}
	}
	d.Locators = append(d.Locators, loc)
}

// Remove drops the locator for ct, if present.
func (d *Data) Remove(ct ContentType) {
	for i := range d.Locators {
		if d.Locators[i].ContentType == ct {
			d.Locators = append(d.Locators[:i], d.Locators[i+1:]...)
			return
		}
	}
}

// Flush applies a batch of locator updates/removals atomically against
// the current locator set: each update in ops replaces any existing
// locator sharing its content type, updates not present are appended,
// and existing locators untouched by ops are carried over unchanged.
// This mirrors the three-pass merge in Data::flush, simplified to plain
// slice operations since Go has no analogue of the original's in-place
// zero-size-disables-locator trick.
func (d *Data) Flush(ops []Locator) {
	merged := make([]Locator, 0, len(d.Locators)+len(ops))
	replaced := make(map[ContentType]bool, len(ops))
	for _, op := range ops {
		replaced[op.ContentType] = true
	}
	for _, existing := range d.Locators {
		if !replaced[existing.ContentType] {
			merged = append(merged, existing)
		}
	}
	merged = append(merged, ops...)
	d.Locators = merged
}

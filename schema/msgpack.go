/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package schema

import (
	"bytes"

	"github.com/tinylib/msgp/msgp"
)

// Serialise encodes the schema as MsgPack, the wire format
// original_source/src/schemas_lru.cc itself stores schema documents as
// (as opposed to the JSON mirror jsoniter provides for the rest of this
// port's ambient config/logging surface). EncodeMsg/DecodeMsg below are
// hand-written in the same field-by-field style msgp's code generator
// would otherwise produce for this struct pair.
func (s *Schema) Serialise() ([]byte, error) {
	var buf bytes.Buffer
	w := msgp.NewWriter(&buf)
	if err := s.EncodeMsg(w); err != nil {
		return nil, err
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unserialise decodes a schema previously produced by Serialise.
func Unserialise(data []byte) (*Schema, error) {
	r := msgp.NewReader(bytes.NewReader(data))
	s := &Schema{Fields: map[string]*FieldSpec{}}
	if err := s.DecodeMsg(r); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Schema) EncodeMsg(w *msgp.Writer) error {
	if err := w.WriteMapHeader(4); err != nil {
		return err
	}
	if err := w.WriteString("fields"); err != nil {
		return err
	}
	if err := w.WriteMapHeader(uint32(len(s.Fields))); err != nil {
		return err
	}
	for path, fs := range s.Fields {
		if err := w.WriteString(path); err != nil {
			return err
		}
		if err := fs.EncodeMsg(w); err != nil {
			return err
		}
	}
	if err := w.WriteString("detection"); err != nil {
		return err
	}
	if err := s.Detection.encodeMsg(w); err != nil {
		return err
	}
	if err := w.WriteString("strict"); err != nil {
		return err
	}
	if err := w.WriteBool(s.Strict); err != nil {
		return err
	}
	if err := w.WriteString("foreign"); err != nil {
		return err
	}
	return w.WriteString(s.Foreign)
}

func (s *Schema) DecodeMsg(r *msgp.Reader) error {
	n, err := r.ReadMapHeader()
	if err != nil {
		return err
	}
	for i := uint32(0); i < n; i++ {
		key, err := r.ReadString()
		if err != nil {
			return err
		}
		switch key {
		case "fields":
			fn, err := r.ReadMapHeader()
			if err != nil {
				return err
			}
			s.Fields = make(map[string]*FieldSpec, fn)
			for j := uint32(0); j < fn; j++ {
				path, err := r.ReadString()
				if err != nil {
					return err
				}
				fs := &FieldSpec{}
				if err := fs.DecodeMsg(r); err != nil {
					return err
				}
				s.Fields[path] = fs
			}
		case "detection":
			if err := s.Detection.decodeMsg(r); err != nil {
				return err
			}
		case "strict":
			if s.Strict, err = r.ReadBool(); err != nil {
				return err
			}
		case "foreign":
			if s.Foreign, err = r.ReadString(); err != nil {
				return err
			}
		default:
			if err := r.Skip(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d Detection) encodeMsg(w *msgp.Writer) error {
	if err := w.WriteMapHeader(8); err != nil {
		return err
	}
	fields := []struct {
		name string
		val  bool
	}{
		{"date", d.Date}, {"time", d.Time}, {"numeric", d.Numeric}, {"geo", d.Geo},
		{"bool", d.Bool}, {"text", d.Text}, {"term", d.Term}, {"uuid", d.UUID},
	}
	for _, f := range fields {
		if err := w.WriteString(f.name); err != nil {
			return err
		}
		if err := w.WriteBool(f.val); err != nil {
			return err
		}
	}
	return nil
}

func (d *Detection) decodeMsg(r *msgp.Reader) error {
	n, err := r.ReadMapHeader()
	if err != nil {
		return err
	}
	for i := uint32(0); i < n; i++ {
		key, err := r.ReadString()
		if err != nil {
			return err
		}
		v, err := r.ReadBool()
		if err != nil {
			return err
		}
		switch key {
		case "date":
			d.Date = v
		case "time":
			d.Time = v
		case "numeric":
			d.Numeric = v
		case "geo":
			d.Geo = v
		case "bool":
			d.Bool = v
		case "text":
			d.Text = v
		case "term":
			d.Term = v
		case "uuid":
			d.UUID = v
		}
	}
	return nil
}

func (f *FieldSpec) EncodeMsg(w *msgp.Writer) error {
	if err := w.WriteMapHeader(15); err != nil {
		return err
	}
	strs := []struct {
		name string
		val  string
	}{{"path", f.Path}, {"lang", f.Lang}}
	ints := []struct {
		name string
		val  int64
	}{
		{"kind", int64(f.Kind)}, {"concrete", int64(f.Concrete)}, {"slot", int64(f.Slot)},
		{"stop", int64(f.Stop)}, {"stem", int64(f.Stem)},
	}
	bools := []struct {
		name string
		val  bool
	}{
		{"bool_term", f.BoolTerm}, {"partials", f.Partials},
		{"namespace", f.Namespace}, {"partial_paths", f.PartialPaths},
	}
	for _, s := range strs {
		if err := w.WriteString(s.name); err != nil {
			return err
		}
		if err := w.WriteString(s.val); err != nil {
			return err
		}
	}
	for _, v := range ints {
		if err := w.WriteString(v.name); err != nil {
			return err
		}
		if err := w.WriteInt64(v.val); err != nil {
			return err
		}
	}
	for _, b := range bools {
		if err := w.WriteString(b.name); err != nil {
			return err
		}
		if err := w.WriteBool(b.val); err != nil {
			return err
		}
	}
	if err := w.WriteString("prefix"); err != nil {
		return err
	}
	if err := w.WriteBytes(f.Prefix); err != nil {
		return err
	}
	if err := w.WriteString("error"); err != nil {
		return err
	}
	if err := w.WriteFloat64(f.Error); err != nil {
		return err
	}
	if err := w.WriteString("index"); err != nil {
		return err
	}
	if err := f.Index.encodeMsg(w); err != nil {
		return err
	}
	if err := w.WriteString("accuracy"); err != nil {
		return err
	}
	if err := w.WriteArrayHeader(uint32(len(f.Accuracy))); err != nil {
		return err
	}
	for _, a := range f.Accuracy {
		if err := w.WriteInt64(a); err != nil {
			return err
		}
	}
	if err := w.WriteString("accuracy_prefixes"); err != nil {
		return err
	}
	if err := w.WriteArrayHeader(uint32(len(f.AccuracyPrefixes))); err != nil {
		return err
	}
	for _, p := range f.AccuracyPrefixes {
		if err := w.WriteBytes(p); err != nil {
			return err
		}
	}
	return nil
}

func (f *FieldSpec) DecodeMsg(r *msgp.Reader) error {
	n, err := r.ReadMapHeader()
	if err != nil {
		return err
	}
	for i := uint32(0); i < n; i++ {
		key, err := r.ReadString()
		if err != nil {
			return err
		}
		switch key {
		case "path":
			f.Path, err = r.ReadString()
		case "lang":
			f.Lang, err = r.ReadString()
		case "kind":
			var v int64
			v, err = r.ReadInt64()
			f.Kind = Kind(v)
		case "concrete":
			var v int64
			v, err = r.ReadInt64()
			f.Concrete = ConcreteType(v)
		case "slot":
			var v int64
			v, err = r.ReadInt64()
			f.Slot = uint32(v)
		case "stop":
			var v int64
			v, err = r.ReadInt64()
			f.Stop = StopStrategy(v)
		case "stem":
			var v int64
			v, err = r.ReadInt64()
			f.Stem = StemStrategy(v)
		case "bool_term":
			f.BoolTerm, err = r.ReadBool()
		case "partials":
			f.Partials, err = r.ReadBool()
		case "namespace":
			f.Namespace, err = r.ReadBool()
		case "partial_paths":
			f.PartialPaths, err = r.ReadBool()
		case "prefix":
			f.Prefix, err = r.ReadBytes(nil)
		case "error":
			f.Error, err = r.ReadFloat64()
		case "index":
			err = f.Index.decodeMsg(r)
		case "accuracy":
			var an uint32
			an, err = r.ReadArrayHeader()
			if err != nil {
				return err
			}
			f.Accuracy = make([]int64, an)
			for j := uint32(0); j < an; j++ {
				if f.Accuracy[j], err = r.ReadInt64(); err != nil {
					return err
				}
			}
			continue
		case "accuracy_prefixes":
			var an uint32
			an, err = r.ReadArrayHeader()
			if err != nil {
				return err
			}
			f.AccuracyPrefixes = make([][]byte, an)
			for j := uint32(0); j < an; j++ {
				if f.AccuracyPrefixes[j], err = r.ReadBytes(nil); err != nil {
					return err
				}
			}
			continue
		default:
			err = r.Skip()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (idx IndexFlags) encodeMsg(w *msgp.Writer) error {
	if err := w.WriteMapHeader(4); err != nil {
		return err
	}
	fields := []struct {
		name string
		val  bool
	}{{"terms", idx.Terms}, {"values", idx.Values}, {"positions", idx.Positions}, {"spelling", idx.Spelling}}
	for _, f := range fields {
		if err := w.WriteString(f.name); err != nil {
			return err
		}
		if err := w.WriteBool(f.val); err != nil {
			return err
		}
	}
	return nil
}

func (idx *IndexFlags) decodeMsg(r *msgp.Reader) error {
	n, err := r.ReadMapHeader()
	if err != nil {
		return err
	}
	for i := uint32(0); i < n; i++ {
		key, err := r.ReadString()
		if err != nil {
			return err
		}
		v, err := r.ReadBool()
		if err != nil {
			return err
		}
		switch key {
		case "terms":
			idx.Terms = v
		case "values":
			idx.Values = v
		case "positions":
			idx.Positions = v
		case "spelling":
			idx.Spelling = v
		}
	}
	return nil
}

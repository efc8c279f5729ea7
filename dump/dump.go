/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */

// Package dump implements the single-file dump format of spec.md §6:
// a varlen-string-tagged stream of metadata/schema/document entries
// terminated by an xxh32 checksum, grounded on the Data record codec's
// varlen primitive (data/varlen.go) and on aistore's own xxhash-backed
// checksum idiom (cmn/cksum).
package dump

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/OneOfOne/xxhash"
)

// Kind selects the dump's body shape.
type Kind string

const (
	KindMeta   Kind = "meta"
	KindSchema Kind = "schm"
	KindDocs   Kind = "docs"
)

func magic(kind Kind) string { return "xapiand-dump-" + string(kind) }

// MetaEntry is one (key, value) pair; a zero-value entry (empty key)
// terminates the metadata section.
type MetaEntry struct {
	Key   string
	Value []byte
}

// DocEntry is one (blob, content-type, type-byte) tuple; an entry with
// an empty blob terminates the documents section.
type DocEntry struct {
	Blob        []byte
	ContentType string
	TypeByte    byte
}

func putVarlenString(buf *bytes.Buffer, s string) {
	putVarlenBytes(buf, []byte(s))
}

func putVarlenBytes(buf *bytes.Buffer, b []byte) {
	var lenBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenBuf[:], uint64(len(b)))
	buf.Write(lenBuf[:n])
	buf.Write(b)
}

func takeVarlenBytes(r *bytes.Reader) ([]byte, error) {
	l, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, l)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func takeVarlenString(r *bytes.Reader) (string, error) {
	b, err := takeVarlenBytes(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteMeta serialises a metadata dump: the magic header, the dump's
// endpoints string, each (key,value) pair, an empty-key terminator,
// and a trailing xxh32 checksum over everything written before it.
func WriteMeta(endpoints string, entries []MetaEntry) []byte {
	var body bytes.Buffer
	putVarlenString(&body, magic(KindMeta))
	putVarlenString(&body, endpoints)
	for _, e := range entries {
		putVarlenString(&body, e.Key)
		putVarlenBytes(&body, e.Value)
	}
	putVarlenString(&body, "") // terminator: empty key

	return appendChecksum(body.Bytes())
}

// ReadMeta parses a buffer produced by WriteMeta, validating its
// checksum first.
func ReadMeta(buf []byte) (endpoints string, entries []MetaEntry, err error) {
	body, err := verifyChecksum(buf)
	if err != nil {
		return "", nil, err
	}
	r := bytes.NewReader(body)
	if err := expectMagic(r, KindMeta); err != nil {
		return "", nil, err
	}
	endpoints, err = takeVarlenString(r)
	if err != nil {
		return "", nil, err
	}
	for {
		key, err := takeVarlenString(r)
		if err != nil {
			return "", nil, err
		}
		if key == "" {
			break
		}
		val, err := takeVarlenBytes(r)
		if err != nil {
			return "", nil, err
		}
		entries = append(entries, MetaEntry{Key: key, Value: val})
	}
	return endpoints, entries, nil
}

// WriteDocs serialises a documents dump.
func WriteDocs(endpoints string, entries []DocEntry) []byte {
	var body bytes.Buffer
	putVarlenString(&body, magic(KindDocs))
	putVarlenString(&body, endpoints)
	for _, e := range entries {
		putVarlenBytes(&body, e.Blob)
		putVarlenString(&body, e.ContentType)
		body.WriteByte(e.TypeByte)
	}
	putVarlenBytes(&body, nil) // terminator: empty blob

	return appendChecksum(body.Bytes())
}

// ReadDocs parses a buffer produced by WriteDocs.
func ReadDocs(buf []byte) (endpoints string, entries []DocEntry, err error) {
	body, err := verifyChecksum(buf)
	if err != nil {
		return "", nil, err
	}
	r := bytes.NewReader(body)
	if err := expectMagic(r, KindDocs); err != nil {
		return "", nil, err
	}
	endpoints, err = takeVarlenString(r)
	if err != nil {
		return "", nil, err
	}
	for {
		blob, err := takeVarlenBytes(r)
		if err != nil {
			return "", nil, err
		}
		if len(blob) == 0 {
			break
		}
		ct, err := takeVarlenString(r)
		if err != nil {
			return "", nil, err
		}
		typeByte, err := r.ReadByte()
		if err != nil {
			return "", nil, err
		}
		entries = append(entries, DocEntry{Blob: blob, ContentType: ct, TypeByte: typeByte})
	}
	return endpoints, entries, nil
}

// WriteSchema serialises a single schema-dump entry: a serialised
// MsgPack(-compatible JSON) Schema snapshot.
func WriteSchema(endpoints string, serialisedSchema []byte) []byte {
	var body bytes.Buffer
	putVarlenString(&body, magic(KindSchema))
	putVarlenString(&body, endpoints)
	putVarlenBytes(&body, serialisedSchema)
	return appendChecksum(body.Bytes())
}

// ReadSchema parses a buffer produced by WriteSchema.
func ReadSchema(buf []byte) (endpoints string, serialisedSchema []byte, err error) {
	body, err := verifyChecksum(buf)
	if err != nil {
		return "", nil, err
	}
	r := bytes.NewReader(body)
	if err := expectMagic(r, KindSchema); err != nil {
		return "", nil, err
	}
	endpoints, err = takeVarlenString(r)
	if err != nil {
		return "", nil, err
	}
	serialisedSchema, err = takeVarlenBytes(r)
	return endpoints, serialisedSchema, err
}

func expectMagic(r *bytes.Reader, kind Kind) error {
	got, err := takeVarlenString(r)
	if err != nil {
		return err
	}
	if got != magic(kind) {
		return errors.New("dump: unexpected magic " + got)
	}
	return nil
}

func appendChecksum(body []byte) []byte {
	sum := xxhash.Checksum32(body)
	out := make([]byte, len(body)+4)
	copy(out, body)
	binary.LittleEndian.PutUint32(out[len(body):], sum)
	return out
}

func verifyChecksum(buf []byte) ([]byte, error) {
	if len(buf) < 4 {
		return nil, errors.New("dump: truncated checksum")
	}
	body, want := buf[:len(buf)-4], binary.LittleEndian.Uint32(buf[len(buf)-4:])
	got := xxhash.Checksum32(body)
	if got != want {
		return nil, errors.New("dump: checksum mismatch")
	}
	return body, nil
}

// Package document holds exported records and assembles the final
// artifacts.
//
// A [Document] groups [Record] values into named collections ("objects",
// "meshes", ...). Records point at each other through [Ref] values, never
// through embedded copies, which lets the exporter retract a record and
// redirect every reference to a substitute with [Document.RewriteRefs].
//
// The [Assembler] turns a document, the binary buffers and the collected
// messages into the JSON text and the sidecar bytes.
package document

import "slices"

// Collection tags in document order.
var Tags = []string{
	"actions",
	"images",
	"textures",
	"materials",
	"meshes",
	"armatures",
	"cameras",
	"curves",
	"lamps",
	"sounds",
	"speakers",
	"particles",
	"objects",
	"groups",
	"scenes",
	"worlds",
	"node_groups",
}

// Document is the set of exported records, grouped by collection.
type Document struct {
	collections map[string][]*Record
}

// New returns an empty document with every collection present.
func New() *Document {
	d := &Document{collections: make(map[string][]*Record, len(Tags))}
	for _, tag := range Tags {
		d.collections[tag] = []*Record{}
	}
	return d
}

// Add appends r to the collection tag.
func (d *Document) Add(tag string, r *Record) {
	d.collections[tag] = append(d.collections[tag], r)
}

// Collection returns the records of one collection in insertion order.
func (d *Document) Collection(tag string) []*Record {
	return d.collections[tag]
}

// Find returns the first record of collection tag with the given identity.
func (d *Document) Find(tag, uuid string) (*Record, bool) {
	for _, r := range d.collections[tag] {
		if r.UUID() == uuid {
			return r, true
		}
	}
	return nil, false
}

// RemoveWhere drops every record of collection tag for which fn reports
// true and returns the dropped records.
func (d *Document) RemoveWhere(tag string, fn func(*Record) bool) []*Record {
	var removed []*Record
	d.collections[tag] = slices.DeleteFunc(d.collections[tag], func(r *Record) bool {
		if fn(r) {
			removed = append(removed, r)
			return true
		}
		return false
	})
	return removed
}

// Remove drops every record of collection tag with the given identity.
func (d *Document) Remove(tag, uuid string) []*Record {
	return d.RemoveWhere(tag, func(r *Record) bool { return r.UUID() == uuid })
}

// Count returns how many records across all collections carry uuid.
func (d *Document) Count(uuid string) int {
	n := 0
	d.Each(func(_ string, r *Record) {
		if r.UUID() == uuid {
			n++
		}
	})
	return n
}

// Len returns the total number of records.
func (d *Document) Len() int {
	n := 0
	for _, recs := range d.collections {
		n += len(recs)
	}
	return n
}

// Each calls fn for every record in document order.
func (d *Document) Each(fn func(tag string, r *Record)) {
	for _, tag := range Tags {
		for _, r := range d.collections[tag] {
			fn(tag, r)
		}
	}
}

// RewriteRefs redirects every reference to from so it points at to, and
// returns the number of references changed. A record's own uuid field is
// not a reference and is left alone.
func (d *Document) RewriteRefs(from, to string) int {
	n := 0
	d.Each(func(_ string, r *Record) { n += rewriteRecord(r, from, to) })
	return n
}

// Refs returns every identity referenced anywhere in the document.
func (d *Document) Refs() []string {
	var out []string
	d.Each(func(_ string, r *Record) {
		walkRefs(r, func(ref *Ref) { out = append(out, ref.UUID) })
	})
	return out
}

func rewriteRecord(r *Record, from, to string) int {
	n := 0
	walkRefs(r, func(ref *Ref) {
		if ref.UUID == from {
			ref.UUID = to
			n++
		}
	})
	return n
}

// RecordHolder is implemented by values that keep records under their own
// type, such as exported node trees. Their records take part in
// [Document.Refs] and [Document.RewriteRefs].
type RecordHolder interface {
	EachRecord(fn func(*Record))
}

// walkRefs visits every reference reachable from v, allowing in-place
// updates.
func walkRefs(v any, fn func(*Ref)) {
	switch t := v.(type) {
	case RecordHolder:
		if t != nil {
			t.EachRecord(func(r *Record) { walkRefs(r, fn) })
		}
	case *Record:
		if t == nil {
			return
		}
		for _, k := range t.keys {
			val := t.vals[k]
			if ref, ok := val.(Ref); ok {
				if !ref.IsNull() {
					fn(&ref)
					t.vals[k] = ref
				}
				continue
			}
			walkRefs(val, fn)
		}
	case *Ref:
		if t != nil && !t.IsNull() {
			fn(t)
		}
	case []Ref:
		for i := range t {
			if !t[i].IsNull() {
				fn(&t[i])
			}
		}
	case []*Record:
		for _, r := range t {
			walkRefs(r, fn)
		}
	case []any:
		for i, e := range t {
			if ref, ok := e.(Ref); ok {
				if !ref.IsNull() {
					fn(&ref)
					t[i] = ref
				}
				continue
			}
			walkRefs(e, fn)
		}
	}
}

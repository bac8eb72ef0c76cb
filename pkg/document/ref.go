package document

import "encoding/json"

// Ref is an identity-only pointer to another record. It encodes as
// {"uuid": "..."}; the zero Ref encodes as null.
type Ref struct {
	UUID string
}

// RefTo returns a reference to the record with the given identity.
func RefTo(uuid string) Ref { return Ref{UUID: uuid} }

// IsNull reports whether the reference points nowhere.
func (r Ref) IsNull() bool { return r.UUID == "" }

// MarshalJSON encodes the reference.
func (r Ref) MarshalJSON() ([]byte, error) {
	if r.UUID == "" {
		return []byte("null"), nil
	}
	return json.Marshal(struct {
		UUID string `json:"uuid"`
	}{r.UUID})
}

// AsRef reports whether a decoded value is a reference and returns it.
// Decoded documents hold references as single-key records.
func AsRef(v any) (Ref, bool) {
	switch r := v.(type) {
	case Ref:
		return r, true
	case *Ref:
		if r != nil {
			return *r, true
		}
	case *Record:
		if r != nil && r.Len() == 1 {
			if u, ok := r.vals["uuid"].(string); ok {
				return Ref{UUID: u}, true
			}
		}
	}
	return Ref{}, false
}

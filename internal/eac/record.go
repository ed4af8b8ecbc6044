package eac

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const activityMapField = "activityConfigMap"

// Record is one application's stored configuration document. Top-level
// fields are kept as raw JSON in document order; only activityConfigMap
// is ever materialized and rewritten, so fields this tool does not
// understand survive a read-modify-write cycle untouched.
type Record struct {
	fields []recordField
}

type recordField struct {
	name string
	raw  json.RawMessage
}

// DecodeRecord parses a stored record value. An empty value or anything
// that is not a well-formed JSON object yields ok=false; callers treat
// that the same as an absent record.
func DecodeRecord(raw string) (*Record, bool) {
	dec := json.NewDecoder(strings.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, false
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, false
	}

	rec := &Record{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, false
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, false
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, false
		}
		rec.setField(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, false
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, false
	}
	return rec, true
}

// Encode serializes the record compactly. Untouched field values are
// emitted verbatim, so re-encoding an unmodified record reproduces the
// stored bytes exactly.
func (r *Record) Encode() string {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(encodeString(f.name))
		buf.WriteByte(':')
		buf.Write(f.raw)
	}
	buf.WriteByte('}')
	return buf.String()
}

// Activities decodes the activityConfigMap field. Absent or null maps
// return (nil, nil); a map that is present but not a JSON object
// returns errMapMalformed.
func (r *Record) Activities() (*ActivityMap, error) {
	var raw json.RawMessage
	for _, f := range r.fields {
		if f.name == activityMapField {
			raw = f.raw
			break
		}
	}
	if raw == nil || string(bytes.TrimSpace(raw)) == "null" {
		return nil, nil
	}
	return decodeActivityMap(raw)
}

// SetActivities re-serializes m into the record, keeping the field's
// original position; a record without the field gains it as the last
// top-level field.
func (r *Record) SetActivities(m *ActivityMap) {
	r.setField(activityMapField, m.encode())
}

// setField keeps the first occurrence's position and the last
// occurrence's value, mirroring how the device's parser resolves
// duplicate keys.
func (r *Record) setField(name string, raw json.RawMessage) {
	for i := range r.fields {
		if r.fields[i].name == name {
			r.fields[i].raw = raw
			return
		}
	}
	r.fields = append(r.fields, recordField{name: name, raw: raw})
}

// ActivityMap is the decoded activityConfigMap: activity class name to
// configuration entry, in document order. Entries read from the store
// keep their original bytes until overwritten or deleted.
type ActivityMap struct {
	entries []activityEntry
}

type activityEntry struct {
	name string
	raw  json.RawMessage
}

// NewActivityMap returns an empty map.
func NewActivityMap() *ActivityMap {
	return &ActivityMap{}
}

func decodeActivityMap(raw json.RawMessage) (*ActivityMap, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, errMapMalformed
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errMapMalformed
	}

	m := &ActivityMap{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, errMapMalformed
		}
		name, ok := keyTok.(string)
		if !ok {
			return nil, errMapMalformed
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, errMapMalformed
		}
		m.setRaw(name, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, errMapMalformed
	}
	return m, nil
}

// Len returns the number of entries.
func (m *ActivityMap) Len() int {
	return len(m.entries)
}

// Names returns activity names in document order.
func (m *ActivityMap) Names() []string {
	names := make([]string, len(m.entries))
	for i, e := range m.entries {
		names[i] = e.name
	}
	return names
}

// Has reports whether name has an entry.
func (m *ActivityMap) Has(name string) bool {
	for _, e := range m.entries {
		if e.name == name {
			return true
		}
	}
	return false
}

// Set stores cfg under name, fully replacing any existing entry in
// place; new names append at the end of the map.
func (m *ActivityMap) Set(name string, cfg ActivityConfig) {
	m.setRaw(name, marshalCompact(cfg))
}

func (m *ActivityMap) setRaw(name string, raw json.RawMessage) {
	for i := range m.entries {
		if m.entries[i].name == name {
			m.entries[i].raw = raw
			return
		}
	}
	m.entries = append(m.entries, activityEntry{name: name, raw: raw})
}

// Delete removes name's entry, reporting whether it existed.
func (m *ActivityMap) Delete(name string) bool {
	for i := range m.entries {
		if m.entries[i].name == name {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Probe reads the fields of name's entry that decide the active test.
func (m *ActivityMap) Probe(name string) (ActivityProbe, bool) {
	for _, e := range m.entries {
		if e.name == name {
			return probeEntry(e.raw), true
		}
	}
	return ActivityProbe{}, false
}

func (m *ActivityMap) encode() json.RawMessage {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(encodeString(e.name))
		buf.WriteByte(':')
		buf.Write(e.raw)
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

// ActivityProbe is the active-test view of one entry.
type ActivityProbe struct {
	Enabled     bool
	DrawViewKey string
}

// Active reports whether the entry passes the active test:
// noteConfig.enable true and noteConfig.drawViewKey non-empty.
func (p ActivityProbe) Active() bool {
	return p.Enabled && p.DrawViewKey != ""
}

// probeEntry tolerates malformed entries: anything that cannot be read
// as {noteConfig:{enable, drawViewKey}} fails the active test.
func probeEntry(raw json.RawMessage) ActivityProbe {
	var v struct {
		NoteConfig struct {
			DrawViewKey string `json:"drawViewKey"`
			Enable      bool   `json:"enable"`
		} `json:"noteConfig"`
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return ActivityProbe{}
	}
	return ActivityProbe{Enabled: v.NoteConfig.Enable, DrawViewKey: v.NoteConfig.DrawViewKey}
}

// encodeString serializes a JSON string the way the device writer does:
// compact, HTML escaping off, NFC-normalized at the serialization
// boundary.
func encodeString(s string) []byte {
	return marshalCompact(norm.NFC.String(s))
}

// marshalCompact marshals v without HTML escaping or the trailing
// newline json.Encoder appends.
func marshalCompact(v any) json.RawMessage {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		// Only reachable with unmarshalable types; every caller passes
		// strings or fixed-shape structs.
		panic(err)
	}
	b := buf.Bytes()
	if n := len(b); n > 0 && b[n-1] == '\n' {
		b = b[:n-1]
	}
	return b
}

package compose

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Form records which YAML shape a multi-shape field was written in.
type Form int

const (
	// FormAbsent means the key was missing or its value was null.
	FormAbsent Form = iota
	// FormSequence is a YAML list.
	FormSequence
	// FormMapping is a YAML mapping; its keys are the names.
	FormMapping
	// FormMalformed is any other present value, such as a bare scalar.
	FormMalformed
)

// String returns the form's name.
func (f Form) String() string {
	switch f {
	case FormSequence:
		return "sequence"
	case FormMapping:
		return "mapping"
	case FormMalformed:
		return "malformed"
	default:
		return "absent"
	}
}

// MarshalText encodes the form as its name.
func (f Form) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// UnmarshalText decodes a form name written by MarshalText.
func (f *Form) UnmarshalText(text []byte) error {
	switch string(text) {
	case "absent":
		*f = FormAbsent
	case "sequence":
		*f = FormSequence
	case "mapping":
		*f = FormMapping
	case "malformed":
		*f = FormMalformed
	default:
		return fmt.Errorf("unknown form %q", text)
	}
	return nil
}

// NameList is a field written either as a list of names or as a mapping
// keyed by name, such as networks and depends_on. Names holds the
// normalized, ordered result for both shapes.
type NameList struct {
	Form  Form
	Names []string
}

// Present reports whether the field was given a non-null value.
func (l NameList) Present() bool { return l.Form != FormAbsent }

// nameListJSON is the tagged encoding of a list not written as a sequence.
type nameListJSON struct {
	Form  Form     `json:"form"`
	Names []string `json:"names,omitempty"`
}

// MarshalJSON encodes a sequence as a bare array of names and null when
// absent. The mapping and malformed forms are written as an object that
// carries the form alongside the names.
func (l NameList) MarshalJSON() ([]byte, error) {
	switch l.Form {
	case FormAbsent:
		return []byte("null"), nil
	case FormSequence:
		if l.Names == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(l.Names)
	}
	return json.Marshal(nameListJSON{Form: l.Form, Names: l.Names})
}

// UnmarshalJSON decodes any encoding written by MarshalJSON.
func (l *NameList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*l = NameList{}
		return nil
	case len(data) > 0 && data[0] == '[':
		var names []string
		if err := json.Unmarshal(data, &names); err != nil {
			return err
		}
		if len(names) == 0 {
			names = nil
		}
		*l = NameList{Form: FormSequence, Names: names}
		return nil
	case len(data) > 0 && data[0] == '{':
		var v nameListJSON
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*l = NameList{Form: v.Form, Names: v.Names}
		return nil
	}
	return fmt.Errorf("name list: unexpected JSON %s", data)
}

func decodeNameList(n *yaml.Node) NameList {
	switch {
	case isNull(n):
		return NameList{}
	case isSequence(n):
		l := NameList{Form: FormSequence}
		for _, item := range items(n) {
			if s, ok := scalar(item); ok {
				l.Names = append(l.Names, s)
			}
		}
		return l
	case isMapping(n):
		l := NameList{Form: FormMapping}
		for _, p := range pairs(n) {
			l.Names = append(l.Names, p.key.Value)
		}
		return l
	}
	return NameList{Form: FormMalformed}
}

// PortKind distinguishes the shapes a ports entry can take.
type PortKind int

const (
	// PortLiteral is a short-syntax string such as "8080:80".
	PortLiteral PortKind = iota
	// PortNumber is a bare YAML integer, a container port with no host side.
	PortNumber
	// PortStructured is a long-syntax mapping with published/target keys.
	PortStructured
	// PortMalformed is anything else.
	PortMalformed
)

var portKindNames = [...]string{
	PortLiteral:    "literal",
	PortNumber:     "number",
	PortStructured: "structured",
	PortMalformed:  "malformed",
}

// String returns the kind's name.
func (k PortKind) String() string {
	if int(k) < 0 || int(k) >= len(portKindNames) {
		return fmt.Sprintf("PortKind(%d)", int(k))
	}
	return portKindNames[k]
}

// MarshalText encodes the kind as its name.
func (k PortKind) MarshalText() ([]byte, error) {
	if int(k) < 0 || int(k) >= len(portKindNames) {
		return nil, fmt.Errorf("unknown port kind %d", int(k))
	}
	return []byte(portKindNames[k]), nil
}

// UnmarshalText decodes a kind name written by MarshalText.
func (k *PortKind) UnmarshalText(text []byte) error {
	for i, name := range portKindNames {
		if name == string(text) {
			*k = PortKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown port kind %q", text)
}

// PortBinding is one entry of a service's ports list.
type PortBinding struct {
	Kind      PortKind `json:"kind"`
	Literal   string   `json:"literal,omitempty"`
	Published string   `json:"published,omitempty"`
	Target    string   `json:"target,omitempty"`
}

// PublishedPort returns the host-side port this binding publishes. A literal
// is split at its first colon; a literal without a colon is its own
// published value. Numbers, malformed entries and structured entries with
// no published value publish nothing.
func (p PortBinding) PublishedPort() (string, bool) {
	switch p.Kind {
	case PortLiteral, PortStructured:
		return p.Published, p.Published != ""
	}
	return "", false
}

// HostAddress returns the part of a literal binding before its first colon,
// when the literal has one. It is the field inspected for bindings on all
// interfaces.
func (p PortBinding) HostAddress() (string, bool) {
	if p.Kind != PortLiteral {
		return "", false
	}
	host, _, found := strings.Cut(p.Literal, ":")
	if !found {
		return "", false
	}
	return host, true
}

func decodePort(n *yaml.Node) PortBinding {
	n = resolve(n)
	switch {
	case isString(n):
		published, rest, _ := strings.Cut(n.Value, ":")
		target := rest
		if i := strings.LastIndex(rest, ":"); i >= 0 {
			target = rest[i+1:]
		}
		return PortBinding{Kind: PortLiteral, Literal: n.Value, Published: published, Target: target}
	case isMapping(n):
		p := PortBinding{Kind: PortStructured}
		for _, kv := range pairs(n) {
			switch kv.key.Value {
			case "published":
				if truthy(kv.value) {
					p.Published, _ = numberText(kv.value)
				}
			case "target":
				p.Target, _ = numberText(kv.value)
			}
		}
		return p
	case n != nil && n.Kind == yaml.ScalarNode && (n.ShortTag() == "!!int" || n.ShortTag() == "!!float"):
		return PortBinding{Kind: PortNumber, Literal: n.Value}
	}
	return PortBinding{Kind: PortMalformed}
}

// Mount is one entry of a service's volumes list.
type Mount struct {
	Structured bool   `json:"structured,omitempty"`
	Malformed  bool   `json:"malformed,omitempty"`
	Literal    string `json:"literal,omitempty"`
	Type       string `json:"type,omitempty"`
	Source     string `json:"source,omitempty"`
	Target     string `json:"target,omitempty"`
	Mode       string `json:"mode,omitempty"`
}

// VolumeName returns the managed volume this mount refers to. A short-syntax
// source starting with "." or "/" is a host path. A structured mount's
// source always names a volume, whatever its type.
func (m Mount) VolumeName() (string, bool) {
	if m.Malformed || m.Source == "" {
		return "", false
	}
	if !m.Structured && (strings.HasPrefix(m.Source, ".") || strings.HasPrefix(m.Source, "/")) {
		return "", false
	}
	return m.Source, true
}

func decodeMount(n *yaml.Node) Mount {
	n = resolve(n)
	switch {
	case isString(n):
		parts := strings.Split(n.Value, ":")
		m := Mount{Literal: n.Value, Source: parts[0]}
		if len(parts) > 1 {
			m.Target = parts[1]
		}
		if len(parts) > 2 {
			m.Mode = parts[2]
		}
		return m
	case isMapping(n):
		m := Mount{Structured: true}
		for _, kv := range pairs(n) {
			s, _ := scalar(kv.value)
			switch kv.key.Value {
			case "type":
				m.Type = s
			case "source":
				m.Source = s
			case "target":
				m.Target = s
			case "read_only":
				if boolTrue(kv.value) {
					m.Mode = "ro"
				}
			}
		}
		return m
	}
	return Mount{Malformed: true}
}

// Build describes how a service image is built. The string form sets only
// Context.
type Build struct {
	Context    string `json:"context,omitempty"`
	Dockerfile string `json:"dockerfile,omitempty"`
}

func decodeBuild(n *yaml.Node) *Build {
	if !truthy(n) {
		return nil
	}
	if isMapping(n) {
		b := &Build{}
		for _, kv := range pairs(n) {
			s, _ := scalar(kv.value)
			switch kv.key.Value {
			case "context":
				b.Context = s
			case "dockerfile":
				b.Dockerfile = s
			}
		}
		return b
	}
	s, _ := scalar(n)
	return &Build{Context: s}
}

// decodeEnvironment normalizes both environment shapes to KEY=VALUE strings.
// A mapping entry with a null value becomes a bare KEY.
func decodeEnvironment(n *yaml.Node) []string {
	var env []string
	switch {
	case isSequence(n):
		for _, item := range items(n) {
			if s, ok := scalar(item); ok {
				env = append(env, s)
			}
		}
	case isMapping(n):
		for _, kv := range pairs(n) {
			if v, ok := scalar(kv.value); ok {
				env = append(env, kv.key.Value+"="+v)
			} else {
				env = append(env, kv.key.Value)
			}
		}
	}
	return env
}

// decodeCommand returns the argument list; a string command is kept as a
// single element.
func decodeCommand(n *yaml.Node) []string {
	if s, ok := scalar(n); ok {
		return []string{s}
	}
	var args []string
	for _, item := range items(n) {
		if s, ok := scalar(item); ok {
			args = append(args, s)
		}
	}
	return args
}

func decodeStrings(n *yaml.Node) []string {
	var out []string
	for _, item := range items(n) {
		if isString(item) {
			out = append(out, item.Value)
		}
	}
	return out
}

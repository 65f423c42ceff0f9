package compose

import (
	"errors"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is a decoded compose file. Services, networks and volumes appear
// in document order.
type Document struct {
	Version  string     `json:"version,omitempty" bson:"version,omitempty"`
	Services []Service  `json:"services" bson:"services"`
	Networks []Resource `json:"networks" bson:"networks"`
	Volumes  []Resource `json:"volumes" bson:"volumes"`

	services map[string]int
	networks map[string]int
	volumes  map[string]int
}

// Service is a named entry of the services section.
type Service struct {
	Name string      `json:"name" bson:"name"`
	Line int         `json:"line,omitempty" bson:"line,omitempty"`
	Spec ServiceSpec `json:"spec" bson:"spec"`
}

// ServiceSpec holds the service fields the graph builder and validator look
// at. Unknown keys are ignored.
type ServiceSpec struct {
	Image          string        `json:"image,omitempty" bson:"image,omitempty"`
	Build          *Build        `json:"build,omitempty" bson:"build,omitempty"`
	ContainerName  string        `json:"container_name,omitempty" bson:"container_name,omitempty"`
	Ports          []PortBinding `json:"ports,omitempty" bson:"ports,omitempty"`
	Volumes        []Mount       `json:"volumes,omitempty" bson:"volumes,omitempty"`
	Networks       NameList      `json:"networks,omitzero" bson:"networks,omitempty"`
	Environment    []string      `json:"environment,omitempty" bson:"environment,omitempty"`
	DependsOn      NameList      `json:"depends_on,omitzero" bson:"depends_on,omitempty"`
	Links          []string      `json:"links,omitempty" bson:"links,omitempty"`
	Command        []string      `json:"command,omitempty" bson:"command,omitempty"`
	Privileged     bool          `json:"privileged,omitempty" bson:"privileged,omitempty"`
	User           string        `json:"user,omitempty" bson:"user,omitempty"`
	HasHealthcheck bool          `json:"has_healthcheck,omitempty" bson:"has_healthcheck,omitempty"`
}

// HasSource reports whether the service names an image or a build.
func (s ServiceSpec) HasSource() bool { return s.Image != "" || s.Build != nil }

// Resource is a named entry of the networks or volumes section.
type Resource struct {
	Name string       `json:"name" bson:"name"`
	Line int          `json:"line,omitempty" bson:"line,omitempty"`
	Spec ResourceSpec `json:"spec" bson:"spec"`
}

// ResourceSpec is the shared shape of network and volume definitions.
type ResourceSpec struct {
	Driver   string `json:"driver,omitempty" bson:"driver,omitempty"`
	External bool   `json:"external,omitempty" bson:"external,omitempty"`
	Name     string `json:"name,omitempty" bson:"name,omitempty"`
}

// Service returns the service with the given name.
func (d *Document) Service(name string) (*Service, bool) {
	i, ok := d.services[name]
	if !ok {
		return nil, false
	}
	return &d.Services[i], true
}

// HasService reports whether name is a key of the services section.
func (d *Document) HasService(name string) bool {
	_, ok := d.services[name]
	return ok
}

// HasNetwork reports whether name is a key of the networks section.
func (d *Document) HasNetwork(name string) bool {
	_, ok := d.networks[name]
	return ok
}

// HasVolume reports whether name is a key of the volumes section.
func (d *Document) HasVolume(name string) bool {
	_, ok := d.volumes[name]
	return ok
}

// Load decodes document text. It fails only on syntax errors and on a root
// that is not a mapping; see the package documentation.
func Load(text string) (*Document, error) {
	dec := yaml.NewDecoder(strings.NewReader(text))

	var root yaml.Node
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, newSyntaxError(err)
	}

	var extra yaml.Node
	switch err := dec.Decode(&extra); {
	case err == nil:
		return nil, &SyntaxError{Line: extra.Line, Msg: "expected a single document in the stream"}
	case !errors.Is(err, io.EOF):
		return nil, newSyntaxError(err)
	}

	if err := checkDuplicates(&root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 || isNull(root.Content[0]) {
		return nil, ErrEmpty
	}
	if !isMapping(root.Content[0]) {
		return nil, ErrNotMapping
	}
	return decodeDocument(root.Content[0]), nil
}

func decodeDocument(n *yaml.Node) *Document {
	doc := &Document{
		services: make(map[string]int),
		networks: make(map[string]int),
		volumes:  make(map[string]int),
	}
	for _, p := range pairs(n) {
		switch p.key.Value {
		case "version":
			doc.Version, _ = scalar(p.value)
		case "services":
			for _, sp := range pairs(p.value) {
				if sp.key.Value == "" {
					continue
				}
				doc.services[sp.key.Value] = len(doc.Services)
				doc.Services = append(doc.Services, Service{
					Name: sp.key.Value,
					Line: sp.key.Line,
					Spec: decodeService(sp.value),
				})
			}
		case "networks":
			doc.Networks = decodeResources(p.value, doc.networks)
		case "volumes":
			doc.Volumes = decodeResources(p.value, doc.volumes)
		}
	}
	return doc
}

// decodeService reads the fields of one service. A null or non-mapping
// value yields an empty spec.
func decodeService(n *yaml.Node) ServiceSpec {
	var s ServiceSpec
	for _, p := range pairs(n) {
		v := p.value
		switch p.key.Value {
		case "image":
			if truthy(v) {
				s.Image, _ = scalar(v)
			}
		case "build":
			s.Build = decodeBuild(v)
		case "container_name":
			s.ContainerName, _ = scalar(v)
		case "ports":
			for _, item := range items(v) {
				s.Ports = append(s.Ports, decodePort(item))
			}
		case "volumes":
			for _, item := range items(v) {
				s.Volumes = append(s.Volumes, decodeMount(item))
			}
		case "networks":
			s.Networks = decodeNameList(v)
		case "environment":
			s.Environment = decodeEnvironment(v)
		case "depends_on":
			s.DependsOn = decodeNameList(v)
		case "links":
			s.Links = decodeStrings(v)
		case "command":
			s.Command = decodeCommand(v)
		case "privileged":
			s.Privileged = boolTrue(v)
		case "user":
			s.User, _ = scalar(v)
		case "healthcheck":
			s.HasHealthcheck = true
		}
	}
	return s
}

func decodeResources(n *yaml.Node, index map[string]int) []Resource {
	var out []Resource
	for _, p := range pairs(n) {
		index[p.key.Value] = len(out)
		out = append(out, Resource{
			Name: p.key.Value,
			Line: p.key.Line,
			Spec: decodeResourceSpec(p.value),
		})
	}
	return out
}

func decodeResourceSpec(n *yaml.Node) ResourceSpec {
	var r ResourceSpec
	for _, p := range pairs(n) {
		switch p.key.Value {
		case "driver":
			r.Driver, _ = scalar(p.value)
		case "name":
			r.Name, _ = scalar(p.value)
		case "external":
			if isMapping(p.value) {
				// legacy form: external: {name: foo}
				r.External = true
				for _, e := range pairs(p.value) {
					if e.key.Value == "name" && r.Name == "" {
						r.Name, _ = scalar(e.value)
					}
				}
			} else {
				r.External = boolTrue(p.value)
			}
		}
	}
	return r
}

package validate

import (
	"github.com/matzehuels/composeviz/pkg/graph"
)

// Severity grades an issue. Only [SeverityError] affects validity.
type Severity string

// Severities, from most to least severe.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Field names attached to issues.
const (
	FieldSource      = "image/build"
	FieldDependsOn   = "depends_on"
	FieldNetworks    = "networks"
	FieldPorts       = "ports"
	FieldPrivileged  = "privileged"
	FieldUser        = "user"
	FieldHealthcheck = "healthcheck"
)

// Issue is one finding.
type Issue struct {
	Severity Severity `json:"severity" bson:"severity"`
	Message  string   `json:"message" bson:"message"`
	Service  string   `json:"service,omitempty" bson:"service,omitempty"`
	Field    string   `json:"field,omitempty" bson:"field,omitempty"`
	// Line is 1-based; 0 means unknown.
	Line int `json:"line,omitempty" bson:"line,omitempty"`
}

// PortConflict is a host port published by more than one service.
// Services lists every publishing entry in document order, so a service
// publishing the port twice appears twice.
type PortConflict struct {
	Port     string   `json:"port" bson:"port"`
	Services []string `json:"services" bson:"services"`
}

// Report is the result of validating one document.
type Report struct {
	IsValid          bool           `json:"is_valid" bson:"is_valid"`
	Issues           []Issue        `json:"issues" bson:"issues"`
	PortConflicts    []PortConflict `json:"port_conflicts" bson:"port_conflicts"`
	Cycles           [][]string     `json:"cycles" bson:"cycles"`
	SecurityWarnings []Issue        `json:"security_warnings" bson:"security_warnings"`
}

func newReport() Report {
	return Report{
		Issues:           []Issue{},
		PortConflicts:    []PortConflict{},
		Cycles:           [][]string{},
		SecurityWarnings: []Issue{},
	}
}

func (r *Report) finish() {
	r.IsValid = true
	for _, is := range r.Issues {
		if is.Severity == SeverityError {
			r.IsValid = false
			return
		}
	}
}

// Count returns the number of issues and security warnings with the given
// severity.
func (r Report) Count(sev Severity) int {
	n := 0
	for _, is := range r.All() {
		if is.Severity == sev {
			n++
		}
	}
	return n
}

// All returns the issues followed by the security warnings.
func (r Report) All() []Issue {
	out := make([]Issue, 0, len(r.Issues)+len(r.SecurityWarnings))
	out = append(out, r.Issues...)
	return append(out, r.SecurityWarnings...)
}

// ForService returns every issue and security warning about one service.
func (r Report) ForService(name string) []Issue {
	var out []Issue
	for _, is := range r.All() {
		if is.Service == name {
			out = append(out, is)
		}
	}
	return out
}

// NodeIDs returns the graph ids of the services involved in a port conflict
// or a cycle, each once, in order of first mention. Hosts use them to mark
// nodes of the graph built by [graph.Parse].
func (r Report) NodeIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(name string) {
		id := graph.ServiceID(name)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, c := range r.PortConflicts {
		for _, s := range c.Services {
			add(s)
		}
	}
	for _, cycle := range r.Cycles {
		for _, s := range cycle {
			add(s)
		}
	}
	return ids
}

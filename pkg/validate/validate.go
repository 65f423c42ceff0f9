package validate

import (
	"errors"
	"fmt"

	"github.com/matzehuels/composeviz/pkg/compose"
	"github.com/matzehuels/composeviz/pkg/graph"
)

// Validate decodes text and runs every pass over it.
func Validate(text string) Report {
	doc, err := compose.Load(text)
	if err != nil {
		r := newReport()
		r.Issues = append(r.Issues, loadIssue(err))
		return r
	}
	return Analyze(doc)
}

// Analyze runs every pass over an already decoded document.
func Analyze(doc *compose.Document) Report {
	r := newReport()
	r.Issues = checkStructure(doc)
	r.PortConflicts = detectPortConflicts(doc)
	r.Cycles = detectCycles(doc)
	r.SecurityWarnings = detectSecurityIssues(doc)
	r.finish()
	return r
}

func loadIssue(err error) Issue {
	var se *compose.SyntaxError
	if errors.As(err, &se) {
		return Issue{
			Severity: SeverityError,
			Message:  fmt.Sprintf("YAML parsing error: %s", se.Msg),
			Line:     se.Line,
		}
	}
	msg := "Invalid document structure"
	if errors.Is(err, compose.ErrEmpty) {
		msg += ": document is empty"
	} else if errors.Is(err, compose.ErrNotMapping) {
		msg += ": root must be a mapping"
	}
	return Issue{Severity: SeverityError, Message: msg}
}

func checkStructure(doc *compose.Document) []Issue {
	issues := []Issue{}
	for _, svc := range doc.Services {
		if !svc.Spec.HasSource() {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Message:  "Service must have either image or build specified",
				Service:  svc.Name,
				Field:    FieldSource,
				Line:     svc.Line,
			})
		}

		for _, dep := range svc.Spec.DependsOn.Names {
			if !doc.HasService(dep) {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("Service depends on '%s' which is not defined", dep),
					Service:  svc.Name,
					Field:    FieldDependsOn,
					Line:     svc.Line,
				})
			}
		}

		for _, net := range svc.Spec.Networks.Names {
			if !doc.HasNetwork(net) && net != graph.DefaultNetwork {
				issues = append(issues, Issue{
					Severity: SeverityInfo,
					Message:  fmt.Sprintf("Network '%s' is not explicitly defined (will use default)", net),
					Service:  svc.Name,
					Field:    FieldNetworks,
					Line:     svc.Line,
				})
			}
		}
	}
	return issues
}

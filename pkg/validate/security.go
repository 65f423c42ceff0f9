package validate

import "github.com/matzehuels/composeviz/pkg/compose"

func detectSecurityIssues(doc *compose.Document) []Issue {
	warnings := []Issue{}
	for _, svc := range doc.Services {
		s := svc.Spec
		add := func(sev Severity, field, msg string) {
			warnings = append(warnings, Issue{
				Severity: sev,
				Message:  msg,
				Service:  svc.Name,
				Field:    field,
				Line:     svc.Line,
			})
		}

		for _, p := range s.Ports {
			if host, ok := p.HostAddress(); ok && (host == "0.0.0.0" || host == "*") {
				add(SeverityWarning, FieldPorts,
					"Port exposed on all interfaces (0.0.0.0). Consider restricting to specific IP.")
			}
		}
		if s.Privileged {
			add(SeverityWarning, FieldPrivileged,
				"Service runs in privileged mode, which has security implications")
		}
		// A YAML integer 0 decodes to the same text as the string "0".
		if s.User == "root" || s.User == "0" {
			add(SeverityWarning, FieldUser,
				"Service runs as root user. Consider using a non-root user.")
		}
		if !s.HasHealthcheck && s.Image != "" && s.Build == nil {
			add(SeverityInfo, FieldHealthcheck,
				"Consider adding a healthcheck for better container management")
		}
	}
	return warnings
}

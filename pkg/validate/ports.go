package validate

import "github.com/matzehuels/composeviz/pkg/compose"

// detectPortConflicts groups publishing entries by host port. Ports are
// reported in the order they were first published.
func detectPortConflicts(doc *compose.Document) []PortConflict {
	var order []string
	users := make(map[string][]string)
	distinct := make(map[string]map[string]bool)

	for _, svc := range doc.Services {
		for _, p := range svc.Spec.Ports {
			port, ok := p.PublishedPort()
			if !ok {
				continue
			}
			if _, seen := users[port]; !seen {
				order = append(order, port)
				distinct[port] = make(map[string]bool)
			}
			users[port] = append(users[port], svc.Name)
			distinct[port][svc.Name] = true
		}
	}

	conflicts := []PortConflict{}
	for _, port := range order {
		if len(distinct[port]) > 1 {
			conflicts = append(conflicts, PortConflict{Port: port, Services: users[port]})
		}
	}
	return conflicts
}

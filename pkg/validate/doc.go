// Package validate analyses a compose document and reports problems.
//
// [Validate] decodes the text on its own, independently of
// [graph.Parse], so the two may run concurrently on the same text and may
// disagree about a document that is half-edited. Decoding failure is the only
// fatal condition: it yields an invalid [Report] holding one error issue.
// Otherwise every pass runs over every service and none stops another:
//
//   - structural checks (runnable source, dangling depends_on, undeclared
//     networks) fill [Report.Issues]
//   - published host ports shared between services fill
//     [Report.PortConflicts]
//   - depends_on cycles fill [Report.Cycles]
//   - security and hygiene heuristics fill [Report.SecurityWarnings]
//
// A report is valid when no issue in [Report.Issues] has [SeverityError].
//
// [graph.Parse]: github.com/matzehuels/composeviz/pkg/graph.Parse
package validate

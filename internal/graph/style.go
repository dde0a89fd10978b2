package graph

import "strings"

// Role colors used by the viewer.
const (
	ColorModule    = "#ffcfcf"
	ColorComponent = "#cfffcf"
	ColorService   = "#ffcfff"
	ColorState     = "#cfcfcf"
)

type roleRule struct {
	suffixes []string
	color    string
}

// Rules are checked in order; the first matching suffix wins.
var roleRules = []roleRule{
	{suffixes: []string{"module"}, color: ColorModule},
	{suffixes: []string{"component"}, color: ColorComponent},
	{suffixes: []string{"service"}, color: ColorService},
	{
		suffixes: []string{
			"effect", "effects",
			"selector", "selectors",
			"action", "actions",
			"reducer", "reducers",
			"state", "facade",
		},
		color: ColorState,
	},
}

// ColorFor returns the role color for a canonical identifier, or "" when
// its ending names no known architectural role. Matching is case-sensitive
// and runs against the whole identifier.
func ColorFor(id string) string {
	for _, rule := range roleRules {
		for _, suffix := range rule.suffixes {
			if strings.HasSuffix(id, suffix) {
				return rule.color
			}
		}
	}
	return ""
}

package directives

import (
	"regexp"
	"strings"
)

var (
	eventSignature = regexp.MustCompile(`^([^ ]+)\s*\((.*)\)`)
	spaceRuns      = regexp.MustCompile(`\s{2,}`)
)

// Event documents an extension event. Signatures look like
// "name (param, param)"; the parameter list is split on commas with
// blank entries dropped. Signatures without a parameter list have runs
// of two or more spaces removed and become the bare name.
func Event() Directive {
	return Directive{
		Kind:  "event",
		Label: "[ev]",
		Parse: parseEvent,
	}
}

func parseEvent(signature string) Object {
	match := eventSignature.FindStringSubmatch(signature)
	if match == nil {
		return Object{Name: spaceRuns.ReplaceAllString(signature, "")}
	}

	var params []string
	for _, arg := range strings.Split(match[2], ",") {
		if arg = strings.TrimSpace(arg); arg != "" {
			params = append(params, arg)
		}
	}
	return Object{
		Name:   match[1],
		Params: params,
	}
}

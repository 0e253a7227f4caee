package directives

import "regexp"

var confvalSignature = regexp.MustCompile(`^([^ ]+)\s*=\s*(.*)`)

// Confval documents a configuration value. Signatures look like
// "name = default"; without the "=" part the whole signature is the
// name and no default is recorded.
func Confval() Directive {
	return Directive{
		Kind:  "confval",
		Label: "[cv]",
		Parse: parseConfval,
	}
}

func parseConfval(signature string) Object {
	match := confvalSignature.FindStringSubmatch(signature)
	if match == nil {
		return Object{Name: signature}
	}
	return Object{
		Name:    match[1],
		Default: match[2],
	}
}

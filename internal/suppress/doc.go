// Package suppress implements configurable suppression of log records
// emitted during a documentation build.
//
// Suppression is expressed as rules: a rule is a predicate over a log record
// (logger name, severity, rendered message) deciding whether the record is
// dropped. Three rule shapes exist:
//
//   - LoggerRule: matches a logger-name prefix and a set of severities
//     (or every severity when configured with `true`)
//   - PatternRule: matches the rendered message against compiled regular
//     expressions with substring-search semantics
//   - the combination of both via AllOf, dropping a record only when the
//     name/severity rule and the pattern rule independently agree
//
// A Registry is built once from configuration and holds the default
// (pattern-only) rule plus an ordered rule list per logger-name prefix.
// The Installer attaches the applicable rules to every registered module
// logger of every non-protected extension, exactly once per rule identity.
// Installation runs in both application lifecycle phases so loggers created
// before and after extension setup are both covered.
//
// Configuration surface (docfold.toml):
//
//	[suppress]
//	protect = ["search"]
//	records = [
//	    "deprecated option",            # global pattern, all loggers
//	    ["toc", "skipping .*\\.bak"],   # patterns scoped to docfold.toc
//	]
//
//	[suppress.loggers]
//	transform = true                    # every severity
//	toc = "WARNING"                     # one severity by name
//	search = ["WARN", "ERROR"]          # several severities
package suppress

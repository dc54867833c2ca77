package vhdl

// keywords are reserved words that can never be used as bare identifiers.
// Comparison is case-insensitive.
var keywords = []string{
	"abs", "access", "across", "after", "alias", "all", "and", "architecture", "array",
	"assert", "attribute", "begin", "block", "body", "break", "buffer", "bus", "case",
	"component", "configuration", "constant", "context", "default", "disconnect", "downto",
	"else", "elsif", "end", "entity", "exit", "file", "for", "force", "function", "generate",
	"generic", "group", "guarded", "if", "impure", "in", "inertial", "inout", "is", "label",
	"library", "limit", "linkage", "literal", "loop", "map", "mod", "nand", "nature", "new",
	"next", "noise", "nor", "not", "null", "of", "on", "open", "or", "others", "out",
	"package", "parameter", "port", "postponed", "procedural", "procedure", "process",
	"protected", "pure", "quantity", "range", "record", "reference", "register", "reject",
	"release", "rem", "report", "return", "reverse_range", "rol", "ror", "select", "severity",
	"shared", "signal", "sla", "sll", "spectrum", "sra", "srl", "subnature", "subtype",
	"terminal", "then", "through", "to", "tolerance", "transport", "type", "unaffected",
	"units", "until", "use", "variable", "wait", "when", "while", "with", "xnor", "xor",
}

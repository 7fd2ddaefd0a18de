package recover

import (
	"fmt"
	"strings"

	"github.com/abcd-project/abcd/ir"
)

// ArgOrVar classifies a register index per the register-layout convention:
// [0, numVregs) are locals, followed by three implicit parameters
// (function object, new.target, this), followed by user parameters.
func ArgOrVar(index uint16, numVregs uint32) ir.Expr {
	i := uint32(index)
	switch {
	case i < numVregs:
		return ir.Ident{Name: fmt.Sprintf("r%d", i+1)}
	case i == numVregs:
		return ir.Ident{Name: "__funcObj"}
	case i == numVregs+1:
		return ir.NewTargetExpr{}
	case i == numVregs+2:
		return ir.ThisExpr{}
	default:
		return ir.Ident{Name: fmt.Sprintf("p%d", i-numVregs-2)}
	}
}

// CleanABCName recovers a readable identifier from ABC's internal naming
// scheme for synthesised class/method/function placeholders:
//   - "=#Name" / "=#Name=#N" -> constructor-affiliated class name "Name"
//   - ">#Name"               -> method name "Name"
//   - "#*#" or "#*#N"        -> anonymous, rendered as "anonymous"
//
// Any name without these markers keeps its text, with characters that
// cannot appear in a JS identifier replaced by underscores.
func CleanABCName(name string) string {
	switch {
	case name == "#*#" || strings.HasPrefix(name, "#*#"):
		return "anonymous"
	case strings.HasPrefix(name, "=#"):
		return sanitizeIdent(trimAffiliateSuffix(name[2:]))
	case strings.HasPrefix(name, ">#"):
		return sanitizeIdent(trimAffiliateSuffix(name[2:]))
	default:
		return sanitizeIdent(name)
	}
}

// trimAffiliateSuffix strips a trailing "=#N" class-affiliate marker
// sometimes appended to constructor/method names.
func trimAffiliateSuffix(name string) string {
	if idx := strings.Index(name, "=#"); idx >= 0 {
		return name[:idx]
	}
	return name
}

// sanitizeIdent replaces characters that cannot appear in a JS identifier
// with underscores, leaving already-valid identifiers untouched.
func sanitizeIdent(name string) string {
	if name == "" {
		return "_"
	}
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '_' || r == '$':
			b.WriteRune(r)
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

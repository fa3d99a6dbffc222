package render

import "strings"

// symbols maps the LaTeX command subset that actually occurs in the catalog
// to displayable glyphs.
var symbols = map[string]string{
	"in":            "∈",
	"subset":        "⊂",
	"subseteq":      "⊆",
	"forall":        "∀",
	"exists":        "∃",
	"to":            "→",
	"rightarrow":    "→",
	"leftarrow":     "←",
	"Rightarrow":    "⇒",
	"Leftarrow":     "⇐",
	"Leftrightarrow": "⇔",
	"infty":         "∞",
	"int":           "∫",
	"sum":           "∑",
	"prod":          "∏",
	"sqrt":          "√",
	"leq":           "≤",
	"geq":           "≥",
	"neq":           "≠",
	"approx":        "≈",
	"times":         "×",
	"cdot":          "·",
	"pm":            "±",
	"alpha":         "α",
	"beta":          "β",
	"gamma":         "γ",
	"Delta":         "Δ",
	"pi":            "π",
	"theta":         "θ",
	"lambda":        "λ",
	"mu":            "μ",
	"sigma":         "σ",
	"omega":         "ω",
}

var blackboard = map[string]string{
	"R": "ℝ", "N": "ℕ", "Z": "ℤ", "Q": "ℚ", "C": "ℂ",
}

// Flatten translates a LaTeX fragment to plain displayable text in a single
// left-to-right pass: known commands become glyphs, math delimiters are
// unwrapped, braced arguments of unknown commands keep their (translated)
// contents, and leftover commands are stripped. Raw backslash sequences never
// survive into the output.
func Flatten(src string) string {
	var b strings.Builder
	b.Grow(len(src))
	i := 0
	for i < len(src) {
		c := src[i]
		switch c {
		case '$':
			i++ // math mode delimiter, contents render inline
		case '{', '}':
			i++ // grouping braces carry no display weight
		case '\\':
			i = flattenCommand(src, i, &b)
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// flattenCommand consumes the command starting at src[i] == '\\' and returns
// the index after it.
func flattenCommand(src string, i int, b *strings.Builder) int {
	j := i + 1
	for j < len(src) && isCommandLetter(src[j]) {
		j++
	}
	name := src[i+1 : j]
	if name == "" {
		if j < len(src) {
			if src[j] == '\\' { // line break
				b.WriteByte('\n')
			} else {
				// escaped single character, e.g. \% or \$
				b.WriteByte(src[j])
			}
			return j + 1
		}
		return j
	}

	if name == "mathbb" {
		if arg, next, ok := bracedArg(src, j); ok {
			if g, ok := blackboard[arg]; ok {
				b.WriteString(g)
			} else {
				b.WriteString(arg)
			}
			return next
		}
		return j
	}

	if g, ok := symbols[name]; ok {
		b.WriteString(g)
		return j
	}

	// Unknown command: keep the braced argument's content, drop the command.
	if arg, next, ok := bracedArg(src, j); ok {
		b.WriteString(Flatten(arg))
		return next
	}
	return j
}

// bracedArg reads a {...} group starting at src[i], honoring nesting.
func bracedArg(src string, i int) (arg string, next int, ok bool) {
	if i >= len(src) || src[i] != '{' {
		return "", i, false
	}
	depth := 0
	for j := i; j < len(src); j++ {
		switch src[j] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return src[i+1 : j], j + 1, true
			}
		}
	}
	return "", i, false
}

func isCommandLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

package render

import (
	"strings"
	"testing"
)

func TestFlatten(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text passes through", "Rezolvati ecuatia.", "Rezolvati ecuatia."},
		{"math delimiters unwrap", "Fie $x + 1 = 0$.", "Fie x + 1 = 0."},
		{"blackboard set", `$x \in \mathbb{R}$`, "x ∈ ℝ"},
		{"unknown blackboard arg kept", `\mathbb{K}`, "K"},
		{"symbol commands", `\forall x \geq 0, \sqrt{x} \leq x + 1`, "∀ x ≥ 0, √x ≤ x + 1"},
		{"greek letters", `\alpha + \beta = \pi`, "α + β = π"},
		{"escaped characters", `50\% din total`, "50% din total"},
		{"unknown command keeps braced content", `\textbf{important}`, "important"},
		{"nested braces", `\frac{x+1}{2}`, "x+12"},
		{"unknown command without braces dropped", `\quad x`, " x"},
		{"nested commands inside argument", `\text{cu $x \in \mathbb{N}$}`, "cu x ∈ ℕ"},
		{"bare braces dropped", "f: {1, 2} -> R", "f: 1, 2 -> R"},
		{"trailing backslash", `x\`, "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Flatten(tt.in); got != tt.want {
				t.Errorf("Flatten(%q) = %q; want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFlatten_NoBackslashSurvives(t *testing.T) {
	inputs := []string{
		`\int_0^1 f(x)\,dx`,
		`\lim_{x \to \infty} \frac{1}{x}`,
		`\begin{cases} x & x > 0 \\ -x & x \leq 0 \end{cases}`,
		`\mathbb{R} \setminus \{0\}`,
	}
	for _, in := range inputs {
		if got := Flatten(in); strings.ContainsRune(got, '\\') {
			t.Errorf("Flatten(%q) = %q; backslash survived", in, got)
		}
	}
}

package render

import "testing"

func TestMarkup(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"plain text", "hello", "hello"},
		{"bold", "a **b** c", "a <strong>b</strong> c"},
		{"two bold spans", "**a** and **b**", "<strong>a</strong> and <strong>b</strong>"},
		{"line breaks", "one\ntwo\r\nthree", "one<br>two<br>three"},
		{"unclosed bold", "**open", "**open"},
		{"escapes metacharacters", `<&>"'`, "&lt;&amp;&gt;&#34;&#39;"},
		{"script inside bold", "**<script>x</script>**", "<strong>&lt;script&gt;x&lt;/script&gt;</strong>"},
		{"bold cannot span lines", "**a\nb**", "**a<br>b**"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Markup(tc.in); got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestPlain(t *testing.T) {
	if got := Plain("our **camera** gear"); got != "our camera gear" {
		t.Errorf("Expected bold markers stripped, got %q", got)
	}
}

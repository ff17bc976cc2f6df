package table

import (
	"strings"
	"testing"
)

func TestVerify(t *testing.T) {
	tests := []struct {
		name     string
		spec     string
		opts     Options
		markdown string // empty - render spec
		problems []string
	}{
		{
			name: "clean table",
			spec: `{"columns": ["a", "b"], "rows": [{"a": "1", "b": "2"}, {"a": "3"}]}`,
		},
		{
			name:     "unescaped pipe",
			spec:     `{"columns": ["a", "b"], "rows": [{"a": "x|y", "b": "2"}]}`,
			problems: []string{`row 0, column "a" contains unescaped '|'`},
		},
		{
			name: "escaped pipe",
			spec: `{"columns": ["a", "b"], "rows": [{"a": "x|y", "b": "2"}]}`,
			opts: Options{EscapePipes: true},
		},
		{
			name:     "no columns",
			spec:     `{"columns": [], "rows": []}`,
			problems: []string{"not recognized as a table"},
		},
		{
			name:     "row lost",
			spec:     `{"columns": ["a"], "rows": [{"a": 1}, {"a": 2}]}`,
			markdown: "|a|\n|---|\n|1|\n",
			problems: []string{"table has 1 rows, spec has 2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := Parse([]byte(tt.spec), tt.name)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			md := tt.markdown
			if md == "" {
				md = spec.Render(tt.opts)
			}
			got := spec.Verify(md, tt.opts)
			if len(got) != len(tt.problems) {
				t.Fatalf("Verify() = %q, want %d problems", got, len(tt.problems))
			}
			for i, want := range tt.problems {
				if !strings.Contains(got[i], want) {
					t.Errorf("problem[%d] = %q, want it to contain %q", i, got[i], want)
				}
			}
		})
	}
}

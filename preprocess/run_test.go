package preprocess

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"mdjt/book"
	"mdjt/config"
	"mdjt/state"
)

// setupTestEnv creates a test environment with proper context and logger
func setupTestEnv(t *testing.T, input string) (context.Context, *state.LocalEnv, *bytes.Buffer) {
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Log = logger
	env.Cfg = cfg

	out := &bytes.Buffer{}
	env.In = strings.NewReader(input)
	env.Out = out
	return ctx, env, out
}

func bookInput(t *testing.T, root string, options map[string]any, chapters ...string) string {
	t.Helper()

	items := make([]book.BookItem, 0, len(chapters))
	for i, content := range chapters {
		item := book.NewChapter("Chapter", content)
		item.Chapter.Number = []int{i + 1}
		src := "chapter.md"
		item.Chapter.SourcePath = &src
		item.Chapter.Path = &src
		items = append(items, item)
	}
	b := &book.Book{Sections: items}

	pctx := map[string]any{
		"root":           root,
		"renderer":       "html",
		"mdbook_version": "0.4.52",
		"config": map[string]any{
			"book":         map[string]any{"src": "src", "title": "Test"},
			"preprocessor": map[string]any{"json-table": options},
		},
	}

	data, err := json.Marshal([]any{pctx, b})
	if err != nil {
		t.Fatalf("marshal input: %v", err)
	}
	return string(data)
}

func writeSpec(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write spec: %v", err)
	}
	return path
}

func decodeOutput(t *testing.T, out *bytes.Buffer) *book.Book {
	t.Helper()
	b := &book.Book{}
	if err := json.Unmarshal(out.Bytes(), b); err != nil {
		t.Fatalf("decode output %q: %v", out.String(), err)
	}
	return b
}

func TestProcess(t *testing.T) {
	root := t.TempDir()
	writeSpec(t, root, "src/t.json", `{"columns": ["a", "b"], "rows": [{"a": "1", "b": "2"}]}`)

	input := bookInput(t, root, map[string]any{"command": "mdbook-json-table", "base": "src"},
		"# Table\n\n{{json-table path=\"t.json\"}}\n",
		"no tags here",
	)
	ctx, env, out := setupTestEnv(t, input)

	if err := process(ctx, env, env.Log); err != nil {
		t.Fatalf("process() error = %v", err)
	}

	b := decodeOutput(t, out)
	if len(b.Sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(b.Sections))
	}
	if got, want := b.Sections[0].Chapter.Content, "# Table\n\n|a|b|\n|---|---|\n|1|2|\n\n"; got != want {
		t.Errorf("chapter 1 = %q, want %q", got, want)
	}
	if got := b.Sections[1].Chapter.Content; got != "no tags here" {
		t.Errorf("chapter 2 = %q", got)
	}
	if !strings.Contains(out.String(), `"__non_exhaustive":null`) {
		t.Errorf("output lacks __non_exhaustive: %s", out.String())
	}
}

func TestProcess_Errors(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name   string
		input  string
		target error
	}{
		{"bad input", `{"not": "a pair"}`, book.ErrBadInput},
		{"empty input", ``, book.ErrBadInput},
		{"absent table", bookInput(t, root, map[string]any{"base": "root"}, `{{json-table path="absent.json"}}`), fs.ErrNotExist},
		{"bad option", bookInput(t, root, map[string]any{"expand-all": "yes"}, "text"), errOptionType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, env, out := setupTestEnv(t, tt.input)
			err := process(ctx, env, env.Log)
			if !errors.Is(err, tt.target) {
				t.Fatalf("process() error = %v, want %v", err, tt.target)
			}
			if out.Len() != 0 {
				t.Errorf("output must be empty on error, got %q", out.String())
			}
		})
	}
}

func TestProcess_Report(t *testing.T) {
	root := t.TempDir()
	writeSpec(t, root, "t.json", `{"columns": ["a"], "rows": []}`)

	ctx, env, out := setupTestEnv(t, bookInput(t, root, map[string]any{"base": "root"}, `{{json-table path="t.json"}}`))
	conf := config.ReporterConfig{Destination: filepath.Join(root, "report.zip")}
	rpt, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	env.Rpt = rpt

	if err := process(ctx, env, env.Log); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	if err := rpt.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if out.Len() == 0 {
		t.Error("no output")
	}
	if fi, err := os.Stat(conf.Destination); err != nil || fi.Size() == 0 {
		t.Errorf("report not written: %v", err)
	}
}

func TestRun_Command(t *testing.T) {
	root := t.TempDir()
	writeSpec(t, root, "t.json", `{"columns": ["n"], "rows": [{"n": 1}, {"n": 2}]}`)

	ctx, _, out := setupTestEnv(t, bookInput(t, root, map[string]any{"base": "root", "expand-all": true},
		`{{json-table path="t.json"}}{{json-table path="t.json"}}`))

	cmd := &cli.Command{Name: "mdbook-json-table", Action: Run}
	if err := cmd.Run(ctx, []string{"mdbook-json-table"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	table := "|n|\n|---|\n|1|\n|2|\n"
	if got := decodeOutput(t, out).Sections[0].Chapter.Content; got != table+table {
		t.Errorf("content = %q", got)
	}
}

func TestSupports(t *testing.T) {
	for _, args := range [][]string{
		{"supports", "html"},
		{"supports", "not-a-renderer"},
		{"supports"},
		{"supports", "html", "extra"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			ctx, _, out := setupTestEnv(t, "")
			cmd := &cli.Command{Name: "supports", Action: Supports}
			if err := cmd.Run(ctx, args); err != nil {
				t.Errorf("Supports() error = %v", err)
			}
			if out.Len() != 0 {
				t.Errorf("unexpected output %q", out.String())
			}
		})
	}
}

func TestApplyBookOptions(t *testing.T) {
	tests := []struct {
		name    string
		opts    map[string]any
		want    config.TableConfig
		wantErr bool
	}{
		{
			name: "nil",
			want: config.TableConfig{Base: config.BaseCwd},
		},
		{
			name: "mdbook keys ignored",
			opts: map[string]any{"command": "x", "renderers": []any{"html"}, "before": []any{"links"}, "custom": 1.0},
			want: config.TableConfig{Base: config.BaseCwd},
		},
		{
			name: "all set",
			opts: map[string]any{"expand-all": true, "escape-pipes": true, "verify": true, "base": "chapter"},
			want: config.TableConfig{ExpandAll: true, EscapePipes: true, Verify: true, Base: config.BaseChapter},
		},
		{
			name:    "bool as string",
			opts:    map[string]any{"verify": "true"},
			wantErr: true,
		},
		{
			name:    "base as number",
			opts:    map[string]any{"base": 1.0},
			wantErr: true,
		},
		{
			name:    "unknown base",
			opts:    map[string]any{"base": "home"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.TableConfig{Base: config.BaseCwd}
			err := applyBookOptions(&cfg, tt.opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("applyBookOptions() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && cfg != tt.want {
				t.Errorf("applyBookOptions() = %+v, want %+v", cfg, tt.want)
			}
		})
	}
}

package main

import (
	"strings"
	"testing"
)

func TestLintFile(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		want    int
		message string
	}{
		{
			name: "marked query",
			src: "package q\nconst QGet = `--sql 0b7e3c52-3f7e-4a53-9a55-0c1f1c6a8e11\nselect 1`\n",
			want: 0,
		},
		{
			name:    "unmarked query",
			src:     "package q\nconst QGet = `select id from designs`\n",
			want:    1,
			message: "missing or invalid",
		},
		{
			name:    "schema slice entry",
			src:     "package q\nvar Schema = []string{\n`--sql 0b7e3c52-3f7e-4a53-9a55-0c1f1c6a8e12\ncreate table a (id int)`,\n`create index b on a (id)`,\n}\n",
			want:    1,
			message: "missing or invalid",
		},
		{
			name:    "duplicate marker",
			src:     "package q\nconst (\nQA = `--sql 0b7e3c52-3f7e-4a53-9a55-0c1f1c6a8e13\nselect 1`\nQB = `--sql 0b7e3c52-3f7e-4a53-9a55-0c1f1c6a8e13\nselect 2`\n)\n",
			want:    1,
			message: "already used by QA",
		},
		{
			name: "plain strings ignored",
			src:  "package q\nconst greeting = \"merhaba dünya\"\n",
			want: 0,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := newLinter()
			if err := l.lintFile("q.go", tc.src); err != nil {
				t.Fatalf("lintFile: %v", err)
			}
			if len(l.violations) != tc.want {
				t.Fatalf("violations = %+v, want %d", l.violations, tc.want)
			}
			if tc.message != "" && !strings.Contains(l.violations[0].message, tc.message) {
				t.Fatalf("message = %q, want substring %q", l.violations[0].message, tc.message)
			}
		})
	}
}

func TestLintTargetRepositoryQueries(t *testing.T) {
	l := newLinter()
	if err := l.lintTarget("../../sqlinline"); err != nil {
		t.Fatalf("lintTarget: %v", err)
	}
	if len(l.violations) != 0 {
		t.Fatalf("inline queries have marker problems: %+v", l.violations)
	}
}

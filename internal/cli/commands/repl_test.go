package commands

import (
	"testing"

	clitestutil "github.com/leapstack-labs/leapcell/internal/cli/testutil"
	"github.com/leapstack-labs/leapcell/pkg/sheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) (*session, *clitestutil.TestRenderer) {
	t.Helper()
	tr := clitestutil.NewTestRendererAuto()
	return newSession(sheet.New(), tr.Renderer), tr
}

func TestSession_Execute(t *testing.T) {
	tests := []struct {
		name    string
		setup   []string
		line    string
		wantOut string
		wantErr string
	}{
		{
			name:    "assign integer",
			line:    "A1 = 5",
			wantOut: "A1 = 5\n",
		},
		{
			name:    "assign formula",
			setup:   []string{"A1=5"},
			line:    "B1==A1*2",
			wantOut: "B1 = 10\n",
		},
		{
			name:    "assign formula with spaces",
			setup:   []string{"A1=5"},
			line:    "B1 = =A1 + 1",
			wantOut: "B1 = 6\n",
		},
		{
			name:    "print value",
			setup:   []string{"A1=5", "B1==A1^2"},
			line:    "B1",
			wantOut: "B1 = 25\n",
		},
		{
			name:    "print missing cell",
			line:    "Q7",
			wantOut: "Q7 = #REF!\n",
		},
		{
			name:    "runtime error value",
			line:    "A1==1/0",
			wantOut: "A1 = #DIV/0!\n",
		},
		{
			name:    "cycle is reported",
			setup:   []string{"A1==B1"},
			line:    "B1==A1",
			wantErr: "Error: circular dependency: B1 -> A1 -> B1\n",
		},
		{
			name:    "garbage",
			line:    "hello",
			wantErr: "expected CELL = TEXT",
		},
		{
			name: "blank line",
			line: "   ",
		},
		{
			name:    "deps",
			setup:   []string{"C1==Sum(B1, A1)"},
			line:    ".deps C1",
			wantOut: "A1 B1\n",
		},
		{
			name:    "dependents",
			setup:   []string{"B1==A1", "A2==A1+1"},
			line:    ".dependents A1",
			wantOut: "B1 A2\n",
		},
		{
			name:    "precedents",
			setup:   []string{"B1==A1", "C1==B1+1"},
			line:    ".precedents C1",
			wantOut: "A1 B1\n",
		},
		{
			name:    "trace alias",
			setup:   []string{"B1==A1"},
			line:    ".trace B1",
			wantOut: "A1\n",
		},
		{
			name:    "no deps",
			setup:   []string{"A1=1"},
			line:    ".deps A1",
			wantOut: "(none)\n",
		},
		{
			name:    "deps usage",
			line:    ".deps",
			wantErr: "usage: .deps <cell>",
		},
		{
			name:    "deps bad cell",
			line:    ".deps nope",
			wantErr: "invalid cell id",
		},
		{
			name:    "expr formula",
			setup:   []string{"A1==1+2+3"},
			line:    ".expr A1",
			wantOut: "- **Text**: =1+2+3\n- **Kind**: formula\n- **Parsed**: =Sum(1, 2, 3)\n",
		},
		{
			name:    "expr invalid formula",
			setup:   []string{"A1==Sum("},
			line:    ".expr A1",
			wantOut: "- **Text**: =Sum(\n- **Kind**: invalid formula\n- **Error**: parse error at column",
		},
		{
			name:    "expr empty",
			line:    ".expr A1",
			wantOut: "(empty)\n",
		},
		{
			name:    "stats",
			setup:   []string{"A1=1", "B1==A1+C1"},
			line:    ".stats",
			wantOut: "- **Cells**: 2\n- **Referenced**: 3\n- **Edges**: 2\n- **Cached**: 0\n- **Evaluations**: 0\n",
		},
		{
			name:    "cells",
			setup:   []string{"A1=1"},
			line:    ".cells",
			wantOut: "| A1 | 1 | 1 |",
		},
		{
			name:    "unknown command",
			line:    ".bogus",
			wantErr: "unknown command: .bogus",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess, tr := newTestSession(t)
			for _, line := range tt.setup {
				name, text, ok := parseAssignment(line)
				require.True(t, ok, "bad setup line %q", line)
				require.NoError(t, sess.sheet.SetCell(name, text))
			}

			quit := sess.execute(tt.line)
			assert.False(t, quit)

			if tt.wantOut != "" {
				assert.Contains(t, tr.Output(), tt.wantOut)
			} else {
				assert.Empty(t, tr.Output())
			}
			if tt.wantErr != "" {
				assert.Contains(t, tr.ErrorOutput(), tt.wantErr)
			} else {
				assert.Empty(t, tr.ErrorOutput())
			}
		})
	}
}

func TestSession_Quit(t *testing.T) {
	for _, line := range []string{".quit", ".exit", ".QUIT"} {
		sess, _ := newTestSession(t)
		assert.True(t, sess.execute(line), line)
	}
}

func TestSession_Clear(t *testing.T) {
	sess, tr := newTestSession(t)
	sess.execute("A1=1")
	sess.execute("B1==A1")
	tr.Reset()

	sess.execute(".clear")
	assert.Equal(t, "Sheet cleared\n", tr.Output())
	assert.Empty(t, sess.sheet.Cells())

	tr.Reset()
	sess.execute(".cells")
	assert.Equal(t, "(0 cells)\n", tr.Output())
}

func TestSession_Recalculates(t *testing.T) {
	sess, tr := newTestSession(t)
	sess.execute("A1=2")
	sess.execute("B1==A1*10")
	sess.execute("A1=3")
	tr.Reset()

	sess.execute("B1")
	assert.Equal(t, "B1 = 30\n", tr.Output())
}

func TestSession_TextStyles(t *testing.T) {
	tr := clitestutil.NewTestRendererText()
	sess := newSession(sheet.New(), tr.Renderer)

	sess.execute("A1==1/0")
	assert.Equal(t, "A1 = #DIV/0!\n", clitestutil.StripANSI(tr.Output()))
}

func TestSession_Completer(t *testing.T) {
	sess, _ := newTestSession(t)
	sess.execute("B2=1")

	pc := sess.completer()
	var names []string
	for _, child := range pc.GetChildren() {
		names = append(names, string(child.GetName()))
	}
	assert.Contains(t, names, ".deps ")
	assert.Contains(t, names, ".quit ")
}

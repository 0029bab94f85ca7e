package rulescmd_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/myrjola/sherlockchat/cmd/cli/rulescmd"
	"github.com/myrjola/sherlockchat/internal/ai"
	"github.com/myrjola/sherlockchat/internal/rules"
	"github.com/myrjola/sherlockchat/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

const caseJSON = `{
	"title": "창고의 비밀",
	"case_overview": "연구소 창고에서 연구원이 사라졌다. 연구원의 동료는 창고 열쇠를 가지고 있었다.",
	"characters": [{"name": "박도윤", "description": "연구소 경비원. 연구소 출입 기록을 관리한다."}],
	"locations": {"창고": true}
}`

func writeCase(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "case_low.json"), []byte(caseJSON), 0o600))
	return dir
}

func TestGenerate(t *testing.T) {
	for _, format := range []string{"json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			casesDir := writeCase(t)
			rulesDir := filepath.Join(casesDir, "rules")
			logger := testhelpers.NewLogger(io.Discard)
			ctx := context.Background()
			var out bytes.Buffer

			opts := rulescmd.GenerateOptions{CasesDir: casesDir, RulesDir: rulesDir, Format: format, Force: false, CaseIDs: nil}
			require.NoError(t, rulescmd.Generate(ctx, opts, &out, logger))
			require.Contains(t, out.String(), "case_low: wrote")

			set, err := rules.NewStore(rulesDir, logger).Load(ctx, "case_low")
			require.NoError(t, err)
			require.Contains(t, set.ClueIDs(), "창고")

			out.Reset()
			require.NoError(t, rulescmd.Generate(ctx, opts, &out, logger))
			require.Contains(t, out.String(), "skipped")
		})
	}
}

func TestGenerate_unknownFormat(t *testing.T) {
	opts := rulescmd.GenerateOptions{CasesDir: writeCase(t), RulesDir: t.TempDir(), Format: "toml", Force: false, CaseIDs: nil}
	err := rulescmd.Generate(context.Background(), opts, io.Discard, testhelpers.NewLogger(io.Discard))
	require.ErrorIs(t, err, rulescmd.ErrUnknownFormat)
}

func TestEmbed(t *testing.T) {
	rulesDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(rulesDir, "case_low_rules.json"), []byte(`[
		{"pattern": "발자국", "verdict": "yes", "hint": "'발자국'은 사건의 핵심 단서입니다."},
		{"pattern": "사고사", "verdict": "no", "hint": "사고로 보기 어렵습니다."}
	]`), 0o600))
	logger := testhelpers.NewLogger(io.Discard)
	ctx := context.Background()
	mock := ai.NewMockClient()

	var out bytes.Buffer
	require.NoError(t, rulescmd.Embed(ctx, mock, rulesDir, []string{"case_low"}, &out, logger))
	require.Contains(t, out.String(), "embedded 1 rules")
	require.Equal(t, [][]string{{"발자국 '발자국'은 사건의 핵심 단서입니다."}}, mock.EmbedCalls)

	set, err := rules.NewStore(rulesDir, logger).Load(ctx, "case_low")
	require.NoError(t, err)
	require.Len(t, set.Embedded(), 1)
	require.Equal(t, "발자국", set.Embedded()[0].ClueID())
}

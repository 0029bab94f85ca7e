package casescmd_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/myrjola/sherlockchat/cmd/cli/casescmd"
	"github.com/myrjola/sherlockchat/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	rulesDir := filepath.Join(dir, "rules")
	require.NoError(t, os.MkdirAll(rulesDir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "case_low.json"), []byte(`{
		"title": "사막의 밤",
		"characters": [{"name": "한서진", "description": "연구소장"}],
		"locations": {"창고": true}
	}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "case_mid.json"), []byte(`{
		"characters": [{"name": "", "description": "이름 없는 인물"}]
	}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "case_high.json"), []byte(`{"title": "눈 속의 발자국"}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(rulesDir, "case_high_rules.json"), []byte(`not json`), 0o600))

	logger := testhelpers.NewLogger(io.Discard)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, casescmd.Validate(ctx, dir, rulesDir, []string{"case_low"}, &out, logger))
	require.Contains(t, out.String(), "ok   case_low: 1 characters, 0 evidence, 1 locations, 0 rules, 1 required clues")

	out.Reset()
	err := casescmd.Validate(ctx, dir, rulesDir, nil, &out, logger)
	require.ErrorIs(t, err, casescmd.ErrInvalid)
	require.Contains(t, out.String(), "FAIL case_high")
	require.Contains(t, out.String(), "FAIL case_mid")
	require.Contains(t, out.String(), "ok   case_low")
}

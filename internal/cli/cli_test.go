package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/politikcred/internal/classify"
	"github.com/ppiankov/politikcred/internal/model"
	"github.com/ppiankov/politikcred/internal/rules"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns what it wrote to stdout
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetOut(nil) })
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("POLITIKCRED_LOGGING_LEVEL", "warn")
	return home
}

func TestSetDefaultsEnvOverride(t *testing.T) {
	v := viper.New()
	v.SetEnvPrefix("POLITIKCRED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	require.NoError(t, setDefaults(v, model.DefaultConfig()))

	t.Setenv("POLITIKCRED_MATCHING_KEYWORD_THRESHOLD", "0.2")
	t.Setenv("POLITIKCRED_STORE_DRIVER", "memory")
	t.Setenv("POLITIKCRED_EMBEDDING_API_KEY", "sk-test")

	cfg := model.DefaultConfig()
	require.NoError(t, v.Unmarshal(cfg))

	assert.Equal(t, 0.2, cfg.Matching.KeywordThreshold)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "sk-test", cfg.Embedding.APIKey)
	assert.Equal(t, 10*time.Second, cfg.Embedding.Timeout, "durations survive the round trip")
	assert.Equal(t, 200.0, cfg.Credibility.Max)
}

func TestCompileRules(t *testing.T) {
	cfg := model.DefaultConfig()
	c, err := compileRules(cfg)
	require.NoError(t, err)
	assert.Same(t, rules.MustCompileDefault(), c, "built-in table is compiled once")

	cfg.Matching.MinKeywordLength = 5
	custom, err := compileRules(cfg)
	require.NoError(t, err)
	assert.NotSame(t, c, custom)

	cfg = model.DefaultConfig()
	cfg.RulesFile = filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(cfg.RulesFile, []byte("stop_words: [\"budget\"]\n"), 0o644))
	fromFile, err := compileRules(cfg)
	require.NoError(t, err)
	assert.NotSame(t, c, fromFile)
}

func TestVersion(t *testing.T) {
	isolate(t)
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "politikcred "+Version)
	assert.Contains(t, out, model.DefaultConfig().Matching.ThresholdVersion)
}

func TestConfigInit(t *testing.T) {
	home := isolate(t)

	_, err := execute(t, "config", "init")
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(home, ".politikcred", "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "keyword_threshold: 0.1")
	assert.Contains(t, string(data), "threshold_version")

	_, err = execute(t, "config", "init")
	assert.Error(t, err, "second init must not overwrite")
}

func TestClassifyFile(t *testing.T) {
	dir := isolate(t)
	input := filepath.Join(dir, "discours.txt")
	require.NoError(t, os.WriteFile(input, []byte(
		"Je m'engage à réduire les impôts de 5 milliards d'euros d'ici 2027. "+
			"Peut-être que nous pourrions faire mieux. Il fait beau."), 0o644))

	out, err := execute(t, "classify", input, "--json")
	require.NoError(t, err)

	var candidates []classify.Candidate
	require.NoError(t, json.Unmarshal([]byte(out), &candidates))
	require.Len(t, candidates, 1)
	assert.Equal(t, model.CategoryEconomic, candidates[0].Category)
	assert.True(t, candidates[0].Actionable)
}

func TestClassifySaveRequiresOfficial(t *testing.T) {
	isolate(t)
	_, err := execute(t, "classify", "-", "--save", "--official", "")
	assert.Error(t, err)
	classifySave = false
}

func TestDemoImportRunHistory(t *testing.T) {
	dir := isolate(t)
	dsn := filepath.Join(dir, "politikcred.db")
	out := filepath.Join(dir, "demo.json")

	_, err := execute(t, "demo", out, "--import", "--store-dsn", dsn)
	require.NoError(t, err)
	demoImport = false
	_, err = os.Stat(out)
	require.NoError(t, err)

	_, err = execute(t, "run", "--store-dsn", dsn)
	require.NoError(t, err)

	// A second run finds nothing new to verify
	summary, err := execute(t, "match", "--json", "--store-dsn", dsn)
	require.NoError(t, err)
	matchJSON = false
	var s model.MatchSummary
	require.NoError(t, json.Unmarshal([]byte(summary), &s))
	assert.Equal(t, 0, s.Matched)
	assert.Equal(t, 0, s.Failed)

	history, err := execute(t, "history", "demo-official-001", "--json", "--verify", "--store-dsn", dsn)
	require.NoError(t, err)
	historyJSON, historyVerify = false, false
	var entries []model.HistoryEntry
	require.NoError(t, json.Unmarshal([]byte(history), &entries))
	for i, e := range entries {
		assert.Equal(t, i+1, e.Sequence)
	}

	_, err = execute(t, "dispute", "no-such-verification", "--store-dsn", dsn)
	assert.Error(t, err)

	list := filepath.Join(dir, "deputes.txt")
	require.NoError(t, os.WriteFile(list, []byte("# first two\ndemo-official-001\ndemo-official-002\ndemo-official-001\n"), 0o644))
	scores, err := execute(t, "score", "--officials-file", list, "--json", "--store-dsn", dsn)
	require.NoError(t, err)
	var got []model.ConsistencyScore
	require.NoError(t, json.Unmarshal([]byte(scores), &got))
	require.Len(t, got, 2, "duplicate ids are read once")
	assert.Equal(t, "demo-official-001", got[0].OfficialID)

	_, err = execute(t, "match", "--officials-file", list, "--official", "demo-official-001", "--store-dsn", dsn)
	assert.Error(t, err, "--official and --officials-file are exclusive")
	matchFile, matchOfficial, matchJSON = "", "", false
}

func TestAdjustRequiresSource(t *testing.T) {
	isolate(t)
	_, err := execute(t, "adjust", "off-1", "3", "Correction after review", "--store-driver", "memory")
	assert.Error(t, err)
}

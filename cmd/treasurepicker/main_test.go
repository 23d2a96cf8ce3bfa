package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"treasurepicker/internal/config"
	"treasurepicker/internal/logging"
	"treasurepicker/internal/ranking"
	"treasurepicker/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("TREASUREPICKER_MAPS_DIR", "")

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nmaps_dir = %q\nlog_dir = %q\n\n[matching]\nworkers = 2\n\n[cache]\nenabled = %t\ndir = %q\n\n[logging]\nlevel = \"error\"\n",
		cfg.Paths.MapsDir,
		cfg.Paths.LogDir,
		cfg.Cache.Enabled,
		cfg.Cache.Dir,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// seedGallery writes a small maps tree: cave pairs with a copy of the query,
// pontaudy pairs with a flat image, tour pairs with a corrupt file and
// orphan has no localisation.
func seedGallery(t *testing.T, env *cliTestEnv) string {
	t.Helper()
	regions := env.cfg.Paths.RegionsDir
	locs := env.cfg.Paths.LocalisationDir

	testsupport.WriteImage(t, filepath.Join(regions, "cave_nord.png"), testsupport.Pattern(24, 16, 1))
	testsupport.WriteImage(t, filepath.Join(regions, "pontaudy_sud_est_x2.png"), testsupport.Pattern(24, 16, 2))
	testsupport.WriteImage(t, filepath.Join(regions, "tour.png"), testsupport.Pattern(24, 16, 3))
	testsupport.WriteImage(t, filepath.Join(regions, "orphan.png"), testsupport.Pattern(24, 16, 4))

	testsupport.WriteImage(t, filepath.Join(locs, "loc_cave_nord.png"), testsupport.Pattern(48, 32, 1))
	testsupport.WriteImage(t, filepath.Join(locs, "loc_pontaudy_sud_est_x2.png"), testsupport.Flat(30, 20, 90))
	testsupport.WriteFile(t, filepath.Join(locs, "loc_tour.png"), []byte("corrupt"))

	query := filepath.Join(env.baseDir, "query", "treasure.png")
	testsupport.WriteImage(t, query, testsupport.Pattern(48, 32, 1))
	return query
}

func TestDecodeCommand(t *testing.T) {
	stdout, _, err := runCLI(t, []string{"decode", "pontaudy_sud_est_x2", "donjon", "maps/localisation_treasure/loc_cave_nord.png"}, "")
	if err != nil {
		t.Fatalf("decode returned error: %v", err)
	}
	for _, want := range []string{
		"pontaudy_sud_est_x2: pontaudy | ⬇️ Sud + ➡️➡️ Est x2",
		"donjon: donjon",
		"cave_nord: cave | ⬆️ Nord",
	} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("decode output %q missing %q", stdout, want)
		}
	}
}

func TestDecodeCommandJSON(t *testing.T) {
	stdout, _, err := runCLI(t, []string{"decode", "--json", "ruines_ouest_x2"}, "")
	if err != nil {
		t.Fatalf("decode returned error: %v", err)
	}
	var keys []struct {
		BaseName   string `json:"base_name"`
		Directions []struct {
			Word    string `json:"word"`
			Doubled bool   `json:"doubled"`
		} `json:"directions"`
	}
	if err := json.Unmarshal([]byte(stdout), &keys); err != nil {
		t.Fatalf("decode JSON: %v (%q)", err, stdout)
	}
	if len(keys) != 1 || keys[0].BaseName != "ruines" || len(keys[0].Directions) != 1 || !keys[0].Directions[0].Doubled {
		t.Fatalf("unexpected decode JSON %+v", keys)
	}
}

func TestPairsCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	seedGallery(t, env)

	stdout, _, err := runCLI(t, []string{"pairs"}, env.configPath)
	if err != nil {
		t.Fatalf("pairs returned error: %v", err)
	}
	for _, want := range []string{"Regions: 4 | Loc: 3 | Paires: 3", "cave", "⬆️ Nord", "loc_pontaudy_sud_est_x2.png"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("pairs output missing %q:\n%s", want, stdout)
		}
	}
	if strings.Contains(stdout, "orphan") {
		t.Fatalf("unpaired region listed:\n%s", stdout)
	}

	stdout, _, err = runCLI(t, []string{"pairs", "--json", "--search", "PONT"}, env.configPath)
	if err != nil {
		t.Fatalf("pairs --json returned error: %v", err)
	}
	var result pairsResult
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("pairs JSON: %v", err)
	}
	if result.Paired != 3 || len(result.Pairs) != 1 || result.Pairs[0].BaseName != "pontaudy" {
		t.Fatalf("unexpected pairs result %+v", result)
	}
	if result.Pairs[0].Directions != "⬇️ Sud + ➡️➡️ Est x2" {
		t.Fatalf("unexpected directions %q", result.Pairs[0].Directions)
	}
}

func TestPairsCommandEmptyMaps(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, []string{"pairs"}, env.configPath)
	if err != nil {
		t.Fatalf("pairs returned error: %v", err)
	}
	if !strings.Contains(stdout, "Regions: 0 | Loc: 0 | Paires: 0") || !strings.Contains(stdout, "No pairs found") {
		t.Fatalf("unexpected output:\n%s", stdout)
	}
}

func TestMatchCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	query := seedGallery(t, env)

	stdout, _, err := runCLI(t, []string{"match", "--json", query}, env.configPath)
	if err != nil {
		t.Fatalf("match returned error: %v", err)
	}
	var result matchResult
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("match JSON: %v (%q)", err, stdout)
	}
	if result.Best.ID != "loc_cave_nord.png" || result.Best.BaseName != "cave" || result.Best.Directions != "⬆️ Nord" {
		t.Fatalf("unexpected best %+v", result.Best)
	}
	if !result.Reliable || result.Status != "reliable" {
		t.Fatalf("expected reliable verdict, got %+v", result)
	}
	if result.AmbiguousWith != nil {
		t.Fatalf("flat runner-up must not be ambiguous: %+v", result.AmbiguousWith)
	}
	if len(result.Scores) != 2 || result.Scores[1].ID != "loc_pontaudy_sud_est_x2.png" || result.Scores[1].Score != 0 {
		t.Fatalf("unexpected scores %+v", result.Scores)
	}
	if len(result.Excluded) != 1 || result.Excluded[0].ID != "loc_tour.png" {
		t.Fatalf("expected corrupt candidate to be excluded, got %+v", result.Excluded)
	}
	if result.RunID == "" || result.Threshold != 0.65 || result.DeltaSecond != 0.03 {
		t.Fatalf("unexpected run metadata %+v", result)
	}
}

func TestMatchCommandWritesAndReleasesRunLog(t *testing.T) {
	env := setupCLITestEnv(t)
	query := seedGallery(t, env)

	stdout, stderr, err := runCLI(t, []string{"match", "--json", query}, env.configPath)
	if err != nil {
		t.Fatalf("match returned error: %v", err)
	}
	var result matchResult
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("match JSON: %v (%q)", err, stdout)
	}
	if strings.Contains(stderr, "inventory loaded") {
		t.Fatalf("info record reached the error-level console: %q", stderr)
	}

	logPath := filepath.Join(env.cfg.Paths.LogDir, logging.LogFileName)
	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read run log: %v", err)
	}
	var found bool
	for _, line := range strings.Split(strings.TrimSpace(string(content)), "\n") {
		var record map[string]any
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			t.Fatalf("run log line is not JSON: %v (%q)", err, line)
		}
		if record["msg"] == "inventory loaded" {
			found = true
			if record[logging.FieldRunID] != result.RunID {
				t.Fatalf("run log run_id = %v, want %q", record[logging.FieldRunID], result.RunID)
			}
		}
	}
	if !found {
		t.Fatalf("run log missing inventory record: %q", content)
	}

	resolved, err := filepath.EvalSymlinks(logPath)
	if err != nil {
		t.Fatalf("resolve run log path: %v", err)
	}
	fds, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		t.Skipf("descriptor table unavailable: %v", err)
	}
	for _, fd := range fds {
		if target, err := os.Readlink(filepath.Join("/proc/self/fd", fd.Name())); err == nil && target == resolved {
			t.Fatalf("run log still open after the command returned")
		}
	}
}

func TestMatchCommandText(t *testing.T) {
	env := setupCLITestEnv(t)
	query := seedGallery(t, env)

	stdout, _, err := runCLI(t, []string{"match", "--delta", "2", query}, env.configPath)
	if err != nil {
		t.Fatalf("match returned error: %v", err)
	}
	for _, want := range []string{
		"- loc_cave_nord.png | score=1.000",
		"Region: cave | ⬆️ Nord",
		"Reliable match",
		"Two very close results:",
		"loc_pontaudy_sud_est_x2.png | score=0.000",
		"Excluded 1 candidate(s):",
	} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("match output missing %q:\n%s", want, stdout)
		}
	}
	if strings.Contains(stdout, "\x1b[") {
		t.Fatalf("non-terminal output must not be colorized:\n%s", stdout)
	}
}

func TestMatchCommandAllIncludesUnpairedLocalisations(t *testing.T) {
	env := setupCLITestEnv(t)
	query := seedGallery(t, env)
	testsupport.WriteImage(t, filepath.Join(env.cfg.Paths.LocalisationDir, "loc_volcan.png"), testsupport.Pattern(10, 10, 7))

	stdout, _, err := runCLI(t, []string{"match", "--json", "--all", query}, env.configPath)
	if err != nil {
		t.Fatalf("match --all returned error: %v", err)
	}
	var result matchResult
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("match JSON: %v", err)
	}
	if len(result.Scores) != 3 {
		t.Fatalf("expected 3 ranked candidates, got %+v", result.Scores)
	}
}

func TestMatchCommandErrors(t *testing.T) {
	env := setupCLITestEnv(t)

	query := filepath.Join(env.baseDir, "query.png")
	testsupport.WriteImage(t, query, testsupport.Pattern(8, 8, 1))

	_, _, err := runCLI(t, []string{"match", query}, env.configPath)
	if !errors.Is(err, ranking.ErrEmptyGallery) {
		t.Fatalf("expected ErrEmptyGallery, got %v", err)
	}

	_, _, err = runCLI(t, []string{"match", filepath.Join(env.baseDir, "missing.png")}, env.configPath)
	if !errors.Is(err, ranking.ErrQueryMissing) {
		t.Fatalf("expected ErrQueryMissing, got %v", err)
	}

	_, _, err = runCLI(t, []string{"match", "--threshold", "4", query}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "matching.threshold") {
		t.Fatalf("expected threshold validation error, got %v", err)
	}
}

func TestCacheCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	query := seedGallery(t, env)

	if _, _, err := runCLI(t, []string{"match", query}, env.configPath); err != nil {
		t.Fatalf("match returned error: %v", err)
	}

	stdout, _, err := runCLI(t, []string{"cache", "status", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("cache status returned error: %v", err)
	}
	var stats struct {
		Entries int `json:"entries"`
	}
	if err := json.Unmarshal([]byte(stdout), &stats); err != nil {
		t.Fatalf("cache status JSON: %v", err)
	}
	if stats.Entries != 2 {
		t.Fatalf("expected 2 cached buffers, got %d", stats.Entries)
	}

	stdout, _, err = runCLI(t, []string{"cache", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("cache clear returned error: %v", err)
	}
	if !strings.Contains(stdout, "Removed 2 cached image(s)") {
		t.Fatalf("unexpected clear output %q", stdout)
	}

	stdout, _, err = runCLI(t, []string{"cache", "status"}, env.configPath)
	if err != nil {
		t.Fatalf("cache status returned error: %v", err)
	}
	if !strings.Contains(stdout, "Entries: 0") {
		t.Fatalf("unexpected status output %q", stdout)
	}
}

func TestConfigCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(env.baseDir, "generated", "config.toml")

	stdout, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init returned error: %v", err)
	}
	if !strings.Contains(stdout, target) {
		t.Fatalf("unexpected init output %q", stdout)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error when config already exists")
	}

	stdout, _, err = runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate returned error: %v", err)
	}
	for _, want := range []string{"Config path: " + env.configPath, "Threshold: 0.650", "Configuration valid"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("validate output missing %q:\n%s", want, stdout)
		}
	}
}

func TestLogFormatOverrideIsValidated(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"--log-format", "xml", "pairs"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "logging.format") {
		t.Fatalf("expected logging.format error, got %v", err)
	}
}

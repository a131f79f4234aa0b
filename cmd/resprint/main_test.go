package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resprint/internal/testsupport"
)

type cliTestEnv struct {
	configPath string
	libraryDir string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	libraryDir := filepath.Join(base, "nrl")

	sensor := testsupport.SensorStages(1500,
		[]complex128{complex(-0.037, 0.037), complex(-0.037, -0.037)},
		[]complex128{complex(0, 0), complex(0, 0)})
	testsupport.WriteResponseXML(t, filepath.Join(libraryDir, "sensor", "acme", "AS1", "AS1.xml"), sensor)

	datalogger := testsupport.DataloggerStages(32, 400000,
		testsupport.FIRSpec{Coefficients: []float64{0.25, 0.5, 0.25}, Decimation: 2})
	testsupport.WriteResponseXML(t, filepath.Join(libraryDir, "datalogger", "brand", "DL1", "DL1.xml"), datalogger)

	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
nrl_dir = %q
index_path = %q
log_dir = %q

[logging]
format = "console"
level = "error"
`, libraryDir, filepath.Join(base, "index.json"), filepath.Join(base, "logs"))
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{configPath: configPath, libraryDir: libraryDir, baseDir: base}
}

func runCommand(t *testing.T, env *cliTestEnv, args ...string) string {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	if err := cmd.Execute(); err != nil {
		t.Fatalf("command %v failed: %v\nstderr: %s", args, err, errOut.String())
	}
	return out.String()
}

func TestIndexBuildAndStatus(t *testing.T) {
	env := setupCLITestEnv(t)

	out := runCommand(t, env, "index", "build")
	if !strings.Contains(out, "Indexed 1 sensor signatures and 1 datalogger signatures.") {
		t.Errorf("build output: %q", out)
	}

	out = runCommand(t, env, "index", "status")
	if !strings.Contains(out, "Rebuild needed") || !strings.Contains(out, "no") {
		t.Errorf("status output: %q", out)
	}
}

func TestIndexStatusBeforeBuild(t *testing.T) {
	env := setupCLITestEnv(t)
	out := runCommand(t, env, "index", "status")
	if !strings.Contains(out, "Index not built") {
		t.Errorf("status output: %q", out)
	}
}

func TestDetectCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	runCommand(t, env, "index", "build")

	sensor := testsupport.SensorStages(1500,
		[]complex128{complex(-0.037, 0.037), complex(-0.037, -0.037)},
		[]complex128{complex(0, 0), complex(0, 0)})
	datalogger := testsupport.DataloggerStages(32, 400000,
		testsupport.FIRSpec{Coefficients: []float64{0.25, 0.5, 0.25}, Decimation: 2})
	queryPath := filepath.Join(env.baseDir, "query.xml")
	testsupport.WriteResponseXML(t, queryPath, testsupport.CombinedStages(sensor, datalogger))

	out := runCommand(t, env, "detect", queryPath)
	if !strings.Contains(out, "Sensor: Acme AS1") {
		t.Errorf("detect output missing sensor: %q", out)
	}
	if !strings.Contains(out, "Datalogger: Brand DL1") {
		t.Errorf("detect output missing datalogger: %q", out)
	}
	if !strings.Contains(out, " | ") {
		t.Errorf("single-line output should join with a pipe: %q", out)
	}

	out = runCommand(t, env, "detect", "--multiline", queryPath)
	if strings.Contains(out, " | ") {
		t.Errorf("multiline output should not join with a pipe: %q", out)
	}
}

func TestDetectCommandNoMatch(t *testing.T) {
	env := setupCLITestEnv(t)
	runCommand(t, env, "index", "build")

	other := testsupport.SensorStages(999, []complex128{complex(-5, 5)}, nil)
	queryPath := filepath.Join(env.baseDir, "other.xml")
	testsupport.WriteResponseXML(t, queryPath, other)

	out := runCommand(t, env, "detect", queryPath)
	if !strings.Contains(out, "No match found.") {
		t.Errorf("detect output: %q", out)
	}
}

func TestConfigShowDefaults(t *testing.T) {
	env := setupCLITestEnv(t)
	out := runCommand(t, env, "config", "show")
	if !strings.Contains(out, "nrl_dir") {
		t.Errorf("config show output: %q", out)
	}
}

func TestConfigInit(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(env.baseDir, "fresh", "config.toml")
	out := runCommand(t, env, "config", "init", "--path", target)
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Errorf("config init output: %q", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Errorf("sample config not written: %v", err)
	}
}

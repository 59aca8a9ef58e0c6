package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/legendpack/pkg/cache"
	"github.com/matzehuels/legendpack/pkg/config"
	legendio "github.com/matzehuels/legendpack/pkg/io"
)

// execute runs the CLI with args against isolated config and cache
// directories and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWithStdin(t, "", args...)
}

func executeWithStdin(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	c := New(&bytes.Buffer{}, LogInfo)
	var out bytes.Buffer
	c.SetOutput(&out)

	root := c.RootCommand()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// isolate points the XDG directories at a temp dir for the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

const stubLegend = `[{"type":"layer","id":"a","height":4},{"type":"layer","id":"b","height":2},{"type":"layer","id":"c","height":2},{"type":"layer","id":"d","height":4}]`

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	for _, name := range []string{"pack", "sections", "preview", "comb", "serve", "cache", "completion"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestComb(t *testing.T) {
	isolate(t)
	out, err := execute(t, "comb", "4", "2")
	if err != nil {
		t.Fatal(err)
	}
	want := "1100\n1010\n1001\n0110\n0101\n0011\n"
	if out != want {
		t.Errorf("comb 4 2 =\n%s\nwant\n%s", out, want)
	}

	out, err = execute(t, "comb", "30", "15", "--count")
	if err != nil || strings.TrimSpace(out) != "155117520" {
		t.Errorf("comb --count = %q, %v", out, err)
	}

	if _, err := execute(t, "comb", "30", "15"); err == nil {
		t.Error("long listing without --all should fail")
	}
	if _, err := execute(t, "comb", "2", "3"); err == nil {
		t.Error("k > n should fail")
	}
}

func TestPackToStdout(t *testing.T) {
	dir := isolate(t)
	in := writeFile(t, dir, "legend.json", stubLegend)

	out, err := execute(t, "pack", in, "-n", "3", "-f", "txt")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "3 sections (optimal), tallest 4 of 12 px") {
		t.Errorf("pack txt output:\n%s", out)
	}
}

func TestPackFromStdin(t *testing.T) {
	isolate(t)
	out, err := executeWithStdin(t, stubLegend, "pack", "-", "-n", "2", "--no-cache")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"sectionsUsed": 2`) {
		t.Errorf("pack json output:\n%s", out)
	}
}

func TestPackWritesFiles(t *testing.T) {
	dir := isolate(t)
	in := writeFile(t, dir, "legend.json", stubLegend)
	base := filepath.Join(dir, "out", "legend")

	out, err := execute(t, "pack", in, "-n", "3", "-f", "json,txt,dot", "-o", base)
	if err != nil {
		t.Fatal(err)
	}
	for _, ext := range []string{".json", ".txt", ".dot"} {
		if _, err := os.Stat(base + ext); err != nil {
			t.Errorf("missing %s: %v", ext, err)
		}
		if !strings.Contains(out, base+ext) {
			t.Errorf("output does not list %s", base+ext)
		}
	}

	f, err := os.Open(base + ".json")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	packed, err := legendio.ReadPacked(f)
	if err != nil {
		t.Fatal(err)
	}
	if packed.SectionsUsed != 3 || len(packed.Layers) != 4 {
		t.Errorf("exported json = %+v", packed)
	}

	if _, err := execute(t, "pack", in, "-f", "json,txt"); err == nil {
		t.Error("several formats without --output should fail")
	}
	if _, err := execute(t, "pack", in, "-f", "gif"); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestSettingsPrecedence(t *testing.T) {
	dir := isolate(t)
	doc := writeFile(t, dir, "hinted.json", `{"maxSections": 2, "layers": `+stubLegend+`}`)

	out, err := execute(t, "pack", doc, "-f", "txt")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "2 sections") {
		t.Errorf("document hint ignored:\n%s", out)
	}

	out, err = execute(t, "pack", doc, "-f", "txt", "-n", "3")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "3 sections") {
		t.Errorf("flag did not override the document:\n%s", out)
	}

	plain := writeFile(t, dir, "plain.json", stubLegend)
	cfg := writeFile(t, dir, "legendpack.toml", "max_sections = 1\n")
	out, err = execute(t, "--config", cfg, "pack", plain, "-f", "txt")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "1 section (single)") {
		t.Errorf("config file ignored:\n%s", out)
	}
}

func TestBadConfig(t *testing.T) {
	dir := isolate(t)
	cfg := writeFile(t, dir, "bad.toml", "max_sectoins = 3\n")
	if _, err := execute(t, "--config", cfg, "comb", "1", "1"); err == nil {
		t.Error("unknown config key should fail")
	}
	if _, err := execute(t, "--config", filepath.Join(dir, "missing.toml"), "comb", "1", "1"); err == nil {
		t.Error("missing explicit config should fail")
	}
}

func TestSectionsCommand(t *testing.T) {
	dir := isolate(t)
	in := writeFile(t, dir, "legend.json", stubLegend)
	out, err := execute(t, "sections", in, "-n", "3")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Opens with", "3 sections", "12px"} {
		if !strings.Contains(out, want) {
			t.Errorf("sections output missing %q:\n%s", want, out)
		}
	}
}

func TestCacheCommands(t *testing.T) {
	dir := isolate(t)
	out, err := execute(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, "cache", appName)
	if strings.TrimSpace(out) != want {
		t.Errorf("cache path = %q, want %q", out, want)
	}

	in := writeFile(t, dir, "legend.json", stubLegend)
	if _, err := execute(t, "pack", in, "-n", "2"); err != nil {
		t.Fatal(err)
	}
	out, err = execute(t, "cache", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cleared 2 cached entries") {
		t.Errorf("cache clear output: %q", out)
	}
}

func TestCompletion(t *testing.T) {
	isolate(t)
	out, err := execute(t, "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "legendpack") {
		t.Error("bash completion does not mention the command")
	}
}

func TestNewKeyerNamespace(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	c.Config = config.Default()
	if got := c.newKeyer().LegendKey("abc", cache.LegendKeyOpts{}); !strings.HasPrefix(got, "legend:") {
		t.Errorf("unscoped key = %q", got)
	}

	c.Config.Cache.Namespace = "staging"
	if got := c.newKeyer().LegendKey("abc", cache.LegendKeyOpts{}); !strings.HasPrefix(got, "staging:legend:") {
		t.Errorf("scoped key = %q", got)
	}
	if got := c.newKeyer().ArtifactKey("abc", cache.ArtifactKeyOpts{Format: "svg"}); !strings.HasPrefix(got, "staging:artifact:") {
		t.Errorf("scoped artifact key = %q", got)
	}
}

func TestMaxCandidatesFlag(t *testing.T) {
	dir := isolate(t)
	in := writeFile(t, dir, "legend.json", stubLegend)
	out, err := execute(t, "pack", in, "-n", "3", "-f", "txt", "--max-candidates", "2")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "(greedy)") {
		t.Errorf("candidate limit ignored:\n%s", out)
	}
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func noEnv(string) (string, bool) { return "", false }

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	writeFile(t, path, `
[templates]
dir = "mail"

[decorations]
marker_color = "#010203"

[check]
jobs = 4
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Language.ID != DefaultLanguageID {
		t.Fatalf("language id = %q", cfg.Language.ID)
	}
	if cfg.Templates.Dir != filepath.Join(dir, "mail") {
		t.Fatalf("template dir = %q", cfg.Templates.Dir)
	}
	if cfg.Decorations.MarkerColor != "#010203" || cfg.Decorations.PlaceholderColor != "#9CDCFE" {
		t.Fatalf("colors = %+v", cfg.Decorations)
	}
	if cfg.Check.Jobs != 4 || cfg.Check.MaxDiagnostics != DefaultMaxDiagnostics {
		t.Fatalf("check = %+v", cfg.Check)
	}
}

func TestLoadFileErrors(t *testing.T) {
	cases := map[string]string{
		"bad color":     "[decorations]\nplaceholder_color = \"blue\"\n",
		"unknown key":   "[language]\nname = \"x\"\n",
		"empty id":      "[language]\nid = \"\"\n",
		"bad extension": "[templates]\nextension = \"meel\"\n",
		"negative jobs": "[check]\njobs = -1\n",
		"broken toml":   "[check\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			writeFile(t, path, content)
			_, err := LoadFile(path)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.HasPrefix(err.Error(), path+": ") {
				t.Fatalf("error lacks path prefix: %v", err)
			}
		})
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, FileName), "")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path, ok, err := Find(nested)
	if err != nil || !ok {
		t.Fatalf("find: %v %v", ok, err)
	}
	if path != filepath.Join(root, FileName) {
		t.Fatalf("found %q", path)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	cfg.Templates.Dir = "/custom"
	env := map[string]string{EnvTemplateDirectory: "", EnvLanguageID: " mail "}
	cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	if cfg.Templates.Dir != DefaultTemplateDir {
		t.Fatalf("empty env must reset to default dir, got %q", cfg.Templates.Dir)
	}
	if cfg.Language.ID != "mail" {
		t.Fatalf("language id = %q", cfg.Language.ID)
	}

	cfg = Default()
	cfg.ApplyEnv(noEnv)
	if cfg.Templates.Dir != DefaultTemplateDir || cfg.Language.ID != DefaultLanguageID {
		t.Fatalf("defaults changed without env: %+v", cfg)
	}
}

func TestLoadExplicitAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	writeFile(t, path, "[language]\nid = \"tpl\"\n")
	t.Setenv(EnvTemplateDirectory, "/srv/templates")
	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Language.ID != "tpl" || cfg.Templates.Dir != "/srv/templates" || cfg.Path != path {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestTemplatesResolve(t *testing.T) {
	store := Templates{Dir: "/data/templates", Extension: ".meel"}
	got, err := store.Resolve(" welcome ")
	if err != nil || got != filepath.Join("/data/templates", "welcome.meel") {
		t.Fatalf("resolve = %q, %v", got, err)
	}
	got, err = store.Resolve("mail/reset")
	if err != nil || got != filepath.Join("/data/templates", "mail", "reset.meel") {
		t.Fatalf("nested resolve = %q, %v", got, err)
	}
	for _, bad := range []string{"", "  ", "../secret", "a/../../b", "/etc/passwd"} {
		if _, err := store.Resolve(bad); !errors.Is(err, ErrInvalidTemplateName) {
			t.Fatalf("Resolve(%q) = %v, want ErrInvalidTemplateName", bad, err)
		}
	}
}

func TestTemplatesOpen(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "hello.meel"), "Hello {{name}}")
	store := Templates{Dir: dir, Extension: ".meel"}
	_, content, err := store.Open("hello")
	if err != nil || string(content) != "Hello {{name}}" {
		t.Fatalf("open = %q, %v", content, err)
	}
	if _, _, err := store.Open("missing"); !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

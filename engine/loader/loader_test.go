package loader

import (
	"bytes"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-rig/engine/skeleton"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoadPicksFormatByExtension(t *testing.T) {
	dir := t.TempDir()
	jsonPath := writeFile(t, dir, "rig.JSON", []byte(richJSON))
	skelPath := writeFile(t, dir, "rig.skel", richBinary())

	l := NewLoader()
	fromJSON, err := l.Load(jsonPath)
	if err != nil {
		t.Fatalf("Load json: %v", err)
	}
	fromBinary, err := l.Load(skelPath)
	if err != nil {
		t.Fatalf("Load binary: %v", err)
	}
	if len(fromJSON.Bones()) != 3 || len(fromBinary.Bones()) != 3 {
		t.Fatalf("bones got json=%d binary=%d want=3", len(fromJSON.Bones()), len(fromBinary.Bones()))
	}
	if FormatForPath("a/b.skel") != FormatBinary || FormatForPath("x.json") != FormatJSON {
		t.Fatalf("FormatForPath mismatch")
	}
}

func TestLoadCachesByPath(t *testing.T) {
	var logs bytes.Buffer
	path := writeFile(t, t.TempDir(), "rig.skel", minimalBinary())
	l := NewLoader(WithLogger(log.New(&logs, "", 0)))

	first, err := l.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	second, err := l.Load(path)
	if err != nil {
		t.Fatalf("Load again: %v", err)
	}
	if first != second {
		t.Fatalf("second load did not hit the cache")
	}
	if !strings.Contains(logs.String(), "cache hit") {
		t.Fatalf("cache hit not logged: %q", logs.String())
	}
	if src, ok := l.Source(path); !ok || src != path {
		t.Fatalf("Source got=%q,%v want=%q", src, ok, path)
	}
	if len(l.All()) != 1 || l.Get(path) != first {
		t.Fatalf("cache contents got=%v", l.All())
	}
	if !l.Evict(path) || l.Get(path) != nil || l.Evict(path) {
		t.Fatalf("Evict did not remove the entry")
	}
}

func TestLoadReaderAndBytes(t *testing.T) {
	l := NewLoader()
	sd, err := l.LoadReader("r", bytes.NewReader(minimalBinary()), FormatBinary, DefaultLoadOptions())
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	if sd.Name() != "r" || l.Get("r") != sd {
		t.Fatalf("reader load got name=%q cached=%v", sd.Name(), l.Get("r"))
	}
	if _, ok := l.Source("r"); ok {
		t.Fatalf("reader entry reported a source file")
	}
	if _, err := l.Reload("r"); !errors.Is(err, ErrArgument) {
		t.Fatalf("Reload of reader entry got=%v want ErrArgument", err)
	}
}

func TestLoadArgumentErrors(t *testing.T) {
	l := NewLoader()
	cases := []struct {
		name string
		call func() error
	}{
		{"empty path", func() error { _, err := l.Load(""); return err }},
		{"empty name", func() error {
			_, err := l.LoadBytes("", minimalBinary(), FormatBinary, DefaultLoadOptions())
			return err
		}},
		{"nil reader", func() error { _, err := l.LoadReader("x", nil, FormatBinary, DefaultLoadOptions()); return err }},
		{"nil data", func() error { _, err := l.LoadBytes("x", nil, FormatBinary, DefaultLoadOptions()); return err }},
		{"zero scale", func() error { _, err := l.LoadBytes("x", minimalBinary(), FormatBinary, LoadOptions{}); return err }},
		{"negative scale", func() error {
			_, err := l.LoadBytes("x", minimalBinary(), FormatBinary, LoadOptions{Scale: -1})
			return err
		}},
		{"nil factory", func() error {
			_, err := NewLoader(WithFactory(nil)).LoadBytes("x", minimalBinary(), FormatBinary, DefaultLoadOptions())
			return err
		}},
		{"nil manifest", func() error { _, err := l.LoadAll(nil); return err }},
	}
	for _, c := range cases {
		if err := c.call(); !errors.Is(err, ErrArgument) {
			t.Fatalf("%s: err got=%v want ErrArgument", c.name, err)
		}
	}
	if _, err := l.LoadBytes("x", minimalBinary(), Format(7), DefaultLoadOptions()); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("unknown format err got=%v want ErrUnsupportedFormat", err)
	}
	if len(l.All()) != 0 {
		t.Fatalf("failed loads were cached: %v", l.All())
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewLoader().Load(filepath.Join(t.TempDir(), "missing.skel"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err got=%v want os.ErrNotExist", err)
	}
}

func TestWithSkeletonDataPreSeedsCache(t *testing.T) {
	sd := skeleton.NewDataBuilder("seed").Build()
	l := NewLoader(WithSkeletonData("seed", sd))
	got, err := l.LoadBytes("seed", []byte("ignored"), FormatJSON, DefaultLoadOptions())
	if err != nil || got != sd {
		t.Fatalf("pre-seeded entry got=%v,%v", got, err)
	}
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "rig.json", []byte(richJSON))
	writeFile(t, dir, "small.skel", minimalBinary())
	writeFile(t, dir, "broken.skel", []byte{1})
	manifestPath := writeFile(t, dir, "assets.yaml", []byte(`
workers: 2
assets:
  - name: rig
    path: rig.json
  - name: small
    path: small.skel
    scale: 0.5
  - name: broken
    path: broken.skel
`))

	m, err := LoadManifest(manifestPath)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	l := NewLoader(WithWorkers(4))
	defer l.Close()
	loaded, err := l.LoadAll(m)
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("LoadAll err got=%v want ErrFormat from broken entry", err)
	}
	if len(loaded) != 2 || loaded["rig"] == nil || loaded["small"] == nil {
		t.Fatalf("loaded got=%v want rig and small", loaded)
	}
	if got := loaded["small"].Bones()[0].Length; got != 50 {
		t.Fatalf("small bone length got=%v want=50", got)
	}
	if l.Get("rig") != loaded["rig"] || l.Get("broken") != nil {
		t.Fatalf("cache does not match LoadAll result")
	}
	if src, _ := l.Source("small"); src != filepath.Join(dir, "small.skel") {
		t.Fatalf("small source got=%q", src)
	}

	// Entries already cached are not decoded again.
	again, err := l.LoadAll(&Manifest{Assets: m.Assets[:2]})
	if err != nil || again["rig"] != loaded["rig"] {
		t.Fatalf("second LoadAll got=%v,%v", again, err)
	}
}

func TestLoadAllReusesPoolUntilClosed(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "small.skel", minimalBinary())
	l := NewLoader(WithWorkers(1))

	for i, name := range []string{"a", "b", "c"} {
		loaded, err := l.LoadAll(&Manifest{Workers: 8, Assets: []ManifestEntry{{Name: name, Path: path, Scale: 1}}})
		if err != nil || loaded[name] == nil {
			t.Fatalf("batch %d got=%v,%v", i, loaded, err)
		}
	}

	l.Close()
	l.Close()
	if _, err := l.LoadAll(&Manifest{Assets: []ManifestEntry{{Name: "d", Path: path, Scale: 1}}}); !errors.Is(err, ErrClosed) {
		t.Fatalf("LoadAll after Close got=%v want ErrClosed", err)
	}
	if l.Get("a") == nil {
		t.Fatalf("cache dropped by Close")
	}
	if _, err := l.Load(path); err != nil {
		t.Fatalf("Load after Close: %v", err)
	}
}

func TestReloadSwapsDefinition(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "rig.skel", minimalBinary())
	l := NewLoader(WithDefaultOptions(LoadOptions{Scale: 2}))
	old, err := l.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	writeFile(t, dir, "rig.skel", richBinary())
	fresh, err := l.Reload(path)
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if fresh == old || l.Get(path) != fresh || len(fresh.Bones()) != 3 {
		t.Fatalf("reload did not replace the cache entry")
	}
	if fresh.FindBone("arm").X != 10 {
		t.Fatalf("reload lost the original scale: arm x=%v", fresh.FindBone("arm").X)
	}
	if len(old.Bones()) != 1 {
		t.Fatalf("previous definition was mutated")
	}

	writeFile(t, dir, "rig.skel", []byte{1, 2})
	if _, err := l.Reload(path); err == nil || l.Get(path) != fresh {
		t.Fatalf("failed reload got err=%v and replaced the entry", err)
	}
	if _, err := l.Reload("unknown"); !errors.Is(err, ErrArgument) {
		t.Fatalf("unknown reload err got=%v want ErrArgument", err)
	}
}

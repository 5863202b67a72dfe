package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func writeTestZip(t *testing.T, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batch.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	w := zip.NewWriter(f)
	for name, content := range files {
		zf, err := w.Create(name)
		if err != nil {
			t.Fatalf("create entry %s: %v", name, err)
		}
		if _, err := zf.Write([]byte(content)); err != nil {
			t.Fatalf("write entry %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	f.Close()
	return path
}

func TestZipReader_ReadsCardsAndPrompt(t *testing.T) {
	path := writeTestZip(t, map[string]string{
		"card1.json": `{"title":"Moby Dick","author":"Herman Melville","editions":[{"placeOfPublication":"Boston","yearOfPublication":1851}]}`,
		"batch.prompt": "Pick the best match.",
		"__MACOSX/card1.json": "junk",
	})

	batch, err := NewZipReader().Read(path, 1)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(batch.Queries) != 1 {
		t.Fatalf("len(Queries) = %d, want 1", len(batch.Queries))
	}
	if batch.Queries[0].Title() != "Moby Dick" {
		t.Errorf("title = %q", batch.Queries[0].Title())
	}
	if batch.PromptUsed != "Pick the best match." {
		t.Errorf("PromptUsed = %q", batch.PromptUsed)
	}
}

func TestZipReader_DeterministicOrderAcrossFiles(t *testing.T) {
	path := writeTestZip(t, map[string]string{
		"z-card.json": `{"title":"Z","author":"A","editions":[{"placeOfPublication":"P"}]}`,
		"a-card.json": `{"title":"A","author":"A","editions":[{"placeOfPublication":"P"}]}`,
	})

	batch, err := NewZipReader().Read(path, 1)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(batch.Queries) != 2 {
		t.Fatalf("len(Queries) = %d, want 2", len(batch.Queries))
	}
	if batch.Queries[0].Filename() != "a-card.json" || batch.Queries[1].Filename() != "z-card.json" {
		t.Errorf("order = %q, %q, want a-card.json then z-card.json",
			batch.Queries[0].Filename(), batch.Queries[1].Filename())
	}
}

func TestZipReader_Directory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "card1.json"),
		[]byte(`{"title":"Moby Dick","author":"Herman Melville","editions":[{"placeOfPublication":"Boston"}]}`), 0o644); err != nil {
		t.Fatalf("write card: %v", err)
	}

	batch, err := NewZipReader().Read(dir, 1)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(batch.Queries) != 1 || batch.Queries[0].Title() != "Moby Dick" {
		t.Fatalf("batch = %+v", batch)
	}
}

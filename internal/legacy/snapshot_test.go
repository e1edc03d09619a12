package legacy

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSnapshotReader_ReadsJSONL(t *testing.T) {
	dir := t.TempDir()
	content := `{"IDmandant": 1, "Mandant": "Commune de Sion"}
{"IDmandant": 2, "Mandant": "Etat du Valais"}

{"IDmandant": 3}
`
	if err := os.WriteFile(filepath.Join(dir, "Mandants.json"), []byte(content), 0644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	records := NewSnapshotReader(dir).Read("Mandants")
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if name := records[0].TrimStr("Mandant"); name != "Commune de Sion" {
		t.Fatalf("first record name = %q", name)
	}
	if id, ok := records[2].Int("IDmandant"); !ok || id != 3 {
		t.Fatalf("third record id = %d ok=%v", id, ok)
	}
}

func TestSnapshotReader_SkipsCorruptLines(t *testing.T) {
	dir := t.TempDir()
	content := `{"IDtype": 1, "Type": "Géologie"}
{not json at all
{"IDtype": 2, "Type": "Sondages"}
`
	if err := os.WriteFile(filepath.Join(dir, "Types.json"), []byte(content), 0644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	records := NewSnapshotReader(dir).Read("Types")
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
}

func TestSnapshotReader_FallsBackToASCIIName(t *testing.T) {
	dir := t.TempDir()
	// Export tooling stripped the accents from the filename.
	if err := os.WriteFile(filepath.Join(dir, "Localites.json"),
		[]byte(`{"IDlocalité": 7, "Localité": "Sierre"}`+"\n"), 0644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	records := NewSnapshotReader(dir).Read("Localités")
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if name := records[0].TrimStr("Localité"); name != "Sierre" {
		t.Fatalf("name = %q", name)
	}
}

func TestSnapshotReader_MissingFileIsEmpty(t *testing.T) {
	records := NewSnapshotReader(t.TempDir()).Read("Heures")
	if records != nil {
		t.Fatalf("missing snapshot should yield no records, got %d", len(records))
	}
}

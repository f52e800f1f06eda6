package journal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/grit-vcs/grit/internal/models"
)

func TestAppendAndReadAll(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.log")

	e1 := NewEntry(models.OpInit, "aaa111222333", 3, 0, 0, "")
	e2 := NewEntry(models.OpCommit, "bbb111222333", 1, 0, 0, "add D")

	if err := Append(path, e1); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := Append(path, e2); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	entries, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ReadAll() len = %d, want 2", len(entries))
	}
	if entries[0].Operation != models.OpInit || entries[1].Operation != models.OpCommit {
		t.Errorf("ReadAll() operations = %v, %v", entries[0].Operation, entries[1].Operation)
	}
	if entries[1].Message != "add D" {
		t.Errorf("ReadAll() message = %v, want %v", entries[1].Message, "add D")
	}
}

func TestReadAllMissingFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	entries, err := ReadAll(filepath.Join(dir, "nope.log"))
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if entries != nil {
		t.Errorf("ReadAll() on missing file = %v, want nil", entries)
	}
}

func TestReadAllRejectsCorruptLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.log")

	if err := Append(path, NewEntry(models.OpInit, "aaa111222333", 0, 0, 0, "")); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	if _, err := f.WriteString("not json\n"); err != nil {
		t.Fatalf("WriteString() error = %v", err)
	}
	f.Close()

	if _, err := ReadAll(path); err == nil {
		t.Errorf("ReadAll() expected error on corrupt trailing line, got nil")
	}
}

func TestLast(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.log")

	if _, ok, err := Last(path); err != nil || ok {
		t.Fatalf("Last() on empty journal = (_, %v, %v), want (_, false, nil)", ok, err)
	}

	if err := Append(path, NewEntry(models.OpInit, "hash1hash1h1", 0, 0, 0, "")); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := Append(path, NewEntry(models.OpCommit, "hash2hash2h2", 1, 0, 0, "")); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	last, ok, err := Last(path)
	if err != nil || !ok {
		t.Fatalf("Last() = (_, %v, %v), want (_, true, nil)", ok, err)
	}
	if last.SnapshotHash != "hash2hash2h2" {
		t.Errorf("Last().SnapshotHash = %v, want hash2hash2h2", last.SnapshotHash)
	}
}

package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "same content produces same ID", content: "test content"},
		{name: "empty string", content: ""},
		{name: "long content", content: "This is a much longer piece of content that should still hash consistently"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestNewManifest(t *testing.T) {
	files := []FileDescriptor{
		{ID: "f1", Name: "a.pdf", Fingerprint: "etagA"},
		{ID: "f2", Name: "b.docx", Fingerprint: "etagB"},
	}

	m := NewManifest("sales", files)

	if m.HubName != "sales" {
		t.Errorf("HubName = %q, want %q", m.HubName, "sales")
	}
	if m.FileCount != 2 {
		t.Errorf("FileCount = %d, want 2", m.FileCount)
	}
	if m.FileByID["f1"] != "etagA" || m.FileByID["f2"] != "etagB" {
		t.Errorf("FileByID = %v, want fingerprints keyed by id", m.FileByID)
	}
	if m.CreatedAt.IsZero() {
		t.Error("CreatedAt not populated")
	}
}

func TestDiffResult_Changed(t *testing.T) {
	d := &DiffResult{
		Added:   []FileDescriptor{{ID: "a"}},
		Updated: []FileDescriptor{{ID: "u1"}, {ID: "u2"}},
	}

	changed := d.Changed()
	if len(changed) != 3 {
		t.Fatalf("Changed() returned %d descriptors, want 3", len(changed))
	}
	if changed[0].ID != "a" || changed[1].ID != "u1" || changed[2].ID != "u2" {
		t.Errorf("Changed() order = %v, want added then updated", changed)
	}
}

func TestDiffResult_HasChanges(t *testing.T) {
	if (&DiffResult{Unchanged: []FileDescriptor{{ID: "f1"}}}).HasChanges() {
		t.Error("unchanged-only diff reported changes")
	}
	if !(&DiffResult{Removed: []string{"f1"}}).HasChanges() {
		t.Error("removal-only diff reported no changes")
	}
}

package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestIdentityKeyIsFilesystemSafe(t *testing.T) {
	id := TestIdentity{Suite: "TestRender", Case: "html output/v2", Discriminator: "en:GB"}
	if got := id.Key(); got != "TestRender.html%20output%2Fv2.en%3AGB" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := (TestIdentity{Suite: "TestOnly"}).Key(); got != "TestOnly" {
		t.Fatalf("trailing empty parts should be dropped, got %q", got)
	}
	if got := (TestIdentity{Suite: "TestGreet", Case: "café_1"}).Key(); got != "TestGreet.café_1" {
		t.Fatalf("letters outside ASCII should be kept, got %q", got)
	}
	if !(TestIdentity{Case: "  "}).IsZero() {
		t.Fatalf("blank identity should be zero")
	}
}

func TestDistinctIdentitiesHaveDistinctKeys(t *testing.T) {
	ids := []TestIdentity{
		{Suite: "TestParse", Case: "input.json"},
		{Suite: "TestParse", Case: "input_json"},
		{Suite: "TestParse", Case: "input%2Ejson"},
		{Suite: "TestParse", Case: "input", Discriminator: "json"},
		{Suite: "TestGreet", Case: "café"},
		{Suite: "TestGreet", Case: "cafè"},
		{Suite: "TestGreet", Case: "caf?"},
		{Suite: "TestGreet", Case: "caf\xff"},
		{Suite: "TestGreet", Case: "caf\xfe"},
		{Suite: "TestNamed", Discriminator: "first"},
		{Suite: "TestNamed", Case: "first"},
		{Suite: "TestNamed", Case: "a/b"},
		{Suite: "TestNamed", Case: "a", Discriminator: "b"},
	}
	seen := map[string]TestIdentity{}
	for _, id := range ids {
		key := id.Key()
		if strings.ContainsAny(key, `/\:*?"<>|`) {
			t.Fatalf("key %q for %+v is not a safe file name", key, id)
		}
		if prev, ok := seen[key]; ok {
			t.Fatalf("%+v and %+v share key %q", prev, id, key)
		}
		seen[key] = id
	}
}

func TestStorePaths(t *testing.T) {
	store := NewStore(WithDir("approvals"), WithExtension(".json"))
	id := TestIdentity{Suite: "Scenario", Case: "WhenTheTestIsRun"}
	approved, err := store.ApprovedPath(id)
	if err != nil {
		t.Fatalf("approved path: %v", err)
	}
	received, err := store.ReceivedPath(id)
	if err != nil {
		t.Fatalf("received path: %v", err)
	}
	if approved != filepath.Join("approvals", "Scenario.WhenTheTestIsRun.approved.json") {
		t.Fatalf("unexpected approved path %s", approved)
	}
	if received != filepath.Join("approvals", "Scenario.WhenTheTestIsRun.received.json") {
		t.Fatalf("unexpected received path %s", received)
	}
}

func TestStoreCustomNamer(t *testing.T) {
	store := NewStore(WithNamer(func(id TestIdentity) string { return strings.ToLower(id.Case) }))
	path, err := store.ApprovedPath(TestIdentity{Suite: "S", Case: "Upper"})
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if filepath.Base(path) != "upper.approved.txt" {
		t.Fatalf("namer not applied: %s", path)
	}
}

func TestStoreRejectsEmptyName(t *testing.T) {
	if _, err := NewStore().ApprovedPath(TestIdentity{}); err == nil {
		t.Fatalf("expected error for empty identity")
	}
}

func TestReadApprovedMissingIsNotAnError(t *testing.T) {
	store := NewStore(WithDir(t.TempDir()))
	path, _ := store.ApprovedPath(TestIdentity{Suite: "New"})
	content, found, err := store.ReadApproved(path)
	if err != nil {
		t.Fatalf("missing approved file must not error: %v", err)
	}
	if found || content != "" {
		t.Fatalf("expected absent approved, got found=%v content=%q", found, content)
	}
}

func TestWriteAndRemoveReceivedOnDisk(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "testdata")
	store := NewStore(WithDir(dir))
	path, _ := store.ReceivedPath(TestIdentity{Suite: "Disk"})
	if err := store.WriteReceived(path, "Foo_Bar"); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "Foo_Bar" {
		t.Fatalf("unexpected content %q", data)
	}
	if err := store.RemoveReceived(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := store.RemoveReceived(path); err != nil {
		t.Fatalf("second remove should be a no-op: %v", err)
	}
}

func TestReadApprovedPropagatesIOErrors(t *testing.T) {
	boom := errors.New("permission denied")
	mem := NewMemory(nil)
	mem.Fail = func(op, _ string) error {
		if op == "read" {
			return boom
		}
		return nil
	}
	store := NewStore(WithReaderWriter(mem))
	_, _, err := store.ReadApproved("x.approved.txt")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped io error, got %v", err)
	}
}

func TestMemoryReaderWriter(t *testing.T) {
	mem := NewMemory(map[string]string{"a/b.approved.txt": "x"})
	if content, ok, _ := mem.Read("a/./b.approved.txt"); !ok || content != "x" {
		t.Fatalf("paths should be cleaned, got ok=%v content=%q", ok, content)
	}
	_ = mem.Write("a/b.received.txt", "y")
	_ = mem.Remove("a/b.approved.txt")
	paths := mem.Paths()
	if len(paths) != 1 || paths[0] != filepath.Clean("a/b.received.txt") {
		t.Fatalf("unexpected paths %v", paths)
	}
}

func TestCounterpart(t *testing.T) {
	got, ok := Counterpart(filepath.Join("testdata", "T.case.received.txt"))
	if !ok || got != filepath.Join("testdata", "T.case.approved.txt") {
		t.Fatalf("received->approved failed: %s %v", got, ok)
	}
	got, ok = Counterpart("T.approved.json")
	if !ok || got != "T.received.json" {
		t.Fatalf("approved->received failed: %s %v", got, ok)
	}
	if _, ok := Counterpart("plain.txt"); ok {
		t.Fatalf("plain file has no counterpart")
	}
	if !IsReceived("x/T.received.txt") || IsReceived("x/T.approved.txt") {
		t.Fatalf("IsReceived misclassified")
	}
}

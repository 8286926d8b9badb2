package service

import (
	"context"
	"testing"

	"promptstash/internal/domain/models"
	"promptstash/internal/domain/services"
)

func newTreeServiceForTest(t *testing.T) (services.TreeService, *testEnv) {
	t.Helper()
	env := newTestEnv()
	svc := NewTreeService(env.folders, env.prompts, testLogger())
	return svc, env
}

// flatten walks the forest depth-first, recording each node with the id
// of the parent it hangs from.
func flatten(roots []*models.Folder) map[string]*string {
	out := make(map[string]*string)
	var walk func(nodes []*models.Folder, parent *string)
	walk = func(nodes []*models.Folder, parent *string) {
		for _, n := range nodes {
			out[n.ID] = parent
			walk(n.Children, &n.ID)
		}
	}
	walk(roots, nil)
	return out
}

func TestGetTreeRoundTrip(t *testing.T) {
	svc, env := newTreeServiceForTest(t)
	ctx := context.Background()

	// Four levels deep, multiple roots, a foreign tree mixed in.
	env.folder("r1", testUser, nil, 1)
	env.folder("r2", testUser, nil, 2)
	env.folder("r1a", testUser, strPtr("r1"), 1)
	env.folder("r1b", testUser, strPtr("r1"), 2)
	env.folder("r1a1", testUser, strPtr("r1a"), 1)
	env.folder("r1a1x", testUser, strPtr("r1a1"), 1)
	env.folder("foreign", otherUser, nil, 1)

	roots, err := svc.GetTree(ctx, testUser)
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}

	got := flatten(roots)
	want := map[string]*string{
		"r1":    nil,
		"r2":    nil,
		"r1a":   strPtr("r1"),
		"r1b":   strPtr("r1"),
		"r1a1":  strPtr("r1a"),
		"r1a1x": strPtr("r1a1"),
	}

	if len(got) != len(want) {
		t.Fatalf("tree has %d nodes, want %d", len(got), len(want))
	}
	for id, wantParent := range want {
		gotParent, ok := got[id]
		if !ok {
			t.Errorf("node %s missing from tree", id)
			continue
		}
		switch {
		case wantParent == nil && gotParent != nil:
			t.Errorf("node %s under %s, want root", id, *gotParent)
		case wantParent != nil && (gotParent == nil || *gotParent != *wantParent):
			t.Errorf("node %s parent = %v, want %s", id, gotParent, *wantParent)
		}
	}
	if _, ok := got["foreign"]; ok {
		t.Error("foreign folder leaked into tree")
	}
}

func TestGetTreeSiblingOrderAndCounts(t *testing.T) {
	svc, env := newTreeServiceForTest(t)
	ctx := context.Background()

	env.folder("b", testUser, nil, 2)
	env.folder("a", testUser, nil, 1)
	env.folder("c", testUser, nil, 3)
	env.prompt("p1", testUser, strPtr("b"))
	env.prompt("p2", testUser, strPtr("b"))
	env.prompt("deleted", testUser, strPtr("b"))
	env.prompts.prompts["deleted"].DeletedAt = timePtr(env.prompts.prompts["deleted"].CreatedAt)

	roots, err := svc.GetTree(ctx, testUser)
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}

	if len(roots) != 3 {
		t.Fatalf("roots = %d, want 3", len(roots))
	}
	for i, wantID := range []string{"a", "b", "c"} {
		if roots[i].ID != wantID {
			t.Errorf("roots[%d] = %s, want %s", i, roots[i].ID, wantID)
		}
	}
	if roots[1].PromptsCount != 2 {
		t.Errorf("b prompt count = %d, want 2 (deleted prompt excluded)", roots[1].PromptsCount)
	}
}

// A node whose parent was tombstoned out from under it surfaces as a
// root instead of vanishing.
func TestGetTreeOrphanSurfacesAsRoot(t *testing.T) {
	svc, env := newTreeServiceForTest(t)
	ctx := context.Background()

	env.deletedFolder("gone", testUser, nil, 1)
	env.folder("orphan", testUser, strPtr("gone"), 1)

	roots, err := svc.GetTree(ctx, testUser)
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	if len(roots) != 1 || roots[0].ID != "orphan" {
		t.Fatalf("roots = %v, want [orphan]", roots)
	}
}

func TestListRootsTrimsToOneLevel(t *testing.T) {
	svc, env := newTreeServiceForTest(t)
	ctx := context.Background()

	env.folder("root", testUser, nil, 1)
	env.folder("child", testUser, strPtr("root"), 1)
	env.folder("grandchild", testUser, strPtr("child"), 1)
	env.prompt("p", testUser, strPtr("root"))

	roots, err := svc.ListRoots(ctx, testUser)
	if err != nil {
		t.Fatalf("ListRoots: %v", err)
	}

	if len(roots) != 1 {
		t.Fatalf("roots = %d, want 1", len(roots))
	}
	root := roots[0]
	if root.PromptsCount != 1 {
		t.Errorf("root prompt count = %d, want 1", root.PromptsCount)
	}
	if len(root.Children) != 1 {
		t.Fatalf("children = %d, want 1", len(root.Children))
	}
	if root.Children[0].Children != nil {
		t.Error("grandchildren not trimmed from ListRoots")
	}
}

func TestGetTreeEmpty(t *testing.T) {
	svc, _ := newTreeServiceForTest(t)

	roots, err := svc.GetTree(context.Background(), testUser)
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	if len(roots) != 0 {
		t.Errorf("roots = %d, want 0", len(roots))
	}
}

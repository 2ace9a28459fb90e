package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/apierr"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/types"
)

func TestCreateNodeValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateNodeInput
		kind  apierr.Kind
		code  string
	}{
		{
			name:  "empty name",
			input: CreateNodeInput{Name: ""},
			kind:  apierr.KindValidation,
			code:  "empty_name",
		},
		{
			name:  "unknown node type",
			input: CreateNodeInput{Name: "Fracciones", NodeType: "CHAPTER"},
			kind:  apierr.KindValidation,
			code:  "invalid_node_type",
		},
		{
			name:  "unknown grade level",
			input: CreateNodeInput{Name: "Fracciones", GradeLevels: []types.GradeLevel{"FOURTH"}},
			kind:  apierr.KindValidation,
			code:  "invalid_grade_level",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.nodeService.Create(ctx, nil, tt.input)
			requireAPIErr(t, err, tt.kind, tt.code)
		})
	}
}

func TestCreateNodeDefaultsToGenericType(t *testing.T) {
	env := newTestEnv(t)

	node, err := env.nodeService.Create(context.Background(), nil, CreateNodeInput{Name: "Sin tipo"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if node.NodeType != types.NodeTypeGeneric {
		t.Errorf("expected type %s, got %s", types.NodeTypeGeneric, node.NodeType)
	}
}

func TestCreateNodeUnderMissingParent(t *testing.T) {
	env := newTestEnv(t)
	ghost := uuid.New()

	_, err := env.nodeService.Create(context.Background(), nil, CreateNodeInput{
		Name:     "Huérfano",
		ParentID: &ghost,
	})
	e := requireAPIErr(t, err, apierr.KindReferential, "node_not_found")
	if len(e.IDs) == 0 || e.IDs[0] != ghost {
		t.Errorf("expected missing parent id %s, got %v", ghost, e.IDs)
	}
}

func TestGetNodeDetail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	year := env.mustCreateNode(t, "Primer Año", types.NodeTypeYear, nil, types.GradeLevelFirst)
	axis := env.mustCreateNode(t, "Números y Operaciones", types.NodeTypeAxis, &year.ID)
	unitA := env.mustCreateNode(t, "Fracciones", types.NodeTypeUnit, &axis.ID)
	unitB := env.mustCreateNode(t, "Números enteros", types.NodeTypeUnit, &axis.ID)

	detail, err := env.nodeService.Get(ctx, nil, axis.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if detail.Parent == nil || detail.Parent.ID != year.ID {
		t.Fatalf("expected parent %s, got %+v", year.ID, detail.Parent)
	}
	if len(detail.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(detail.Children))
	}
	gotChildren := map[uuid.UUID]bool{}
	for _, c := range detail.Children {
		gotChildren[c.ID] = true
	}
	if !gotChildren[unitA.ID] || !gotChildren[unitB.ID] {
		t.Errorf("children missing expected units: %v", detail.Children)
	}

	_, err = env.nodeService.Get(ctx, nil, uuid.New())
	requireAPIErr(t, err, apierr.KindReferential, "node_not_found")
}

func TestListRootsAndChildrenOrderedByPosition(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	year := env.mustCreateNode(t, "Primer Año", types.NodeTypeYear, nil)
	// Created out of order on purpose; "order" must win over creation time.
	second, err := env.nodeService.Create(ctx, nil, CreateNodeInput{
		Name: "Geometría y Medida", NodeType: types.NodeTypeAxis, Order: intPtr(2), ParentID: &year.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	first, err := env.nodeService.Create(ctx, nil, CreateNodeInput{
		Name: "Números y Operaciones", NodeType: types.NodeTypeAxis, Order: intPtr(1), ParentID: &year.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	children, err := env.nodeService.ListChildren(ctx, nil, year.ID)
	if err != nil {
		t.Fatalf("list children: %v", err)
	}
	if len(children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(children))
	}
	if children[0].ID != first.ID || children[1].ID != second.ID {
		t.Errorf("children out of order: got [%s, %s]", children[0].Name, children[1].Name)
	}

	roots, err := env.nodeService.ListRoots(ctx, nil)
	if err != nil {
		t.Fatalf("list roots: %v", err)
	}
	if len(roots) != 1 || roots[0].ID != year.ID {
		t.Fatalf("expected single root %s, got %d roots", year.ID, len(roots))
	}
}

func TestUpdateNodeFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	node := env.mustCreateNode(t, "Fracciones", types.NodeTypeUnit, nil, types.GradeLevelFirst)

	newName := "Fracciones y decimales"
	levels := []types.GradeLevel{types.GradeLevelFirst, types.GradeLevelSecond}
	updated, err := env.nodeService.Update(ctx, nil, node.ID, UpdateNodeInput{
		Name:        &newName,
		GradeLevels: &levels,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != newName {
		t.Errorf("expected name %q, got %q", newName, updated.Name)
	}
	got := types.DecodeGradeLevels(updated.GradeLevels)
	if len(got) != 2 {
		t.Errorf("expected 2 grade levels, got %v", got)
	}

	empty := ""
	_, err = env.nodeService.Update(ctx, nil, node.ID, UpdateNodeInput{Name: &empty})
	requireAPIErr(t, err, apierr.KindValidation, "empty_name")
}

func TestUpdateNodeDetachToRoot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	year := env.mustCreateNode(t, "Primer Año", types.NodeTypeYear, nil)
	axis := env.mustCreateNode(t, "Números y Operaciones", types.NodeTypeAxis, &year.ID)

	updated, err := env.nodeService.Update(ctx, nil, axis.ID, UpdateNodeInput{SetParent: true, ParentID: nil})
	if err != nil {
		t.Fatalf("detach: %v", err)
	}
	if updated.ParentID != nil {
		t.Fatalf("expected nil parent, got %s", *updated.ParentID)
	}

	roots, err := env.nodeService.ListRoots(ctx, nil)
	if err != nil {
		t.Fatalf("list roots: %v", err)
	}
	if len(roots) != 2 {
		t.Errorf("expected 2 roots after detach, got %d", len(roots))
	}
}

func TestDeleteNodeBlockedUntilLeaf(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	unit := env.mustCreateNode(t, "Fracciones", types.NodeTypeUnit, nil)
	topic := env.mustCreateNode(t, "Fracciones equivalentes", types.NodeTypeTopic, &unit.ID)

	err := env.nodeService.Delete(ctx, nil, unit.ID)
	requireAPIErr(t, err, apierr.KindDependencyBlocked, "children_exist")

	// Still fully intact after the refused delete.
	if _, err := env.nodeService.Get(ctx, nil, unit.ID); err != nil {
		t.Fatalf("node disappeared after blocked delete: %v", err)
	}

	if err := env.nodeService.Delete(ctx, nil, topic.ID); err != nil {
		t.Fatalf("delete leaf: %v", err)
	}
	if err := env.nodeService.Delete(ctx, nil, unit.ID); err != nil {
		t.Fatalf("delete emptied unit: %v", err)
	}
	_, err = env.nodeService.Get(ctx, nil, unit.ID)
	requireAPIErr(t, err, apierr.KindReferential, "node_not_found")
}

func TestDeleteNodeCascadesPrerequisiteEdges(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.mustCreateNode(t, "Fracciones", types.NodeTypeUnit, nil)
	b := env.mustCreateNode(t, "Proporcionalidad", types.NodeTypeUnit, nil)
	c := env.mustCreateNode(t, "Porcentaje", types.NodeTypeUnit, nil)

	if _, err := env.prereqService.UpsertEdge(ctx, nil, a.ID, b.ID, types.StrengthRequired); err != nil {
		t.Fatalf("upsert edge a->b: %v", err)
	}
	if _, err := env.prereqService.UpsertEdge(ctx, nil, b.ID, c.ID, types.StrengthRecommended); err != nil {
		t.Fatalf("upsert edge b->c: %v", err)
	}

	if err := env.nodeService.Delete(ctx, nil, b.ID); err != nil {
		t.Fatalf("delete node with edges: %v", err)
	}

	// Both edges touching b are gone; a and c survive unconnected.
	edgesA, err := env.prereqService.ListForNode(ctx, nil, a.ID)
	if err != nil {
		t.Fatalf("list edges for a: %v", err)
	}
	if len(edgesA) != 0 {
		t.Errorf("expected no edges left on a, got %d", len(edgesA))
	}
	edgesC, err := env.prereqService.ListForNode(ctx, nil, c.ID)
	if err != nil {
		t.Fatalf("list edges for c: %v", err)
	}
	if len(edgesC) != 0 {
		t.Errorf("expected no edges left on c, got %d", len(edgesC))
	}
}

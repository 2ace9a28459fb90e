package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/apierr"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/types"
)

func TestCreateSequenceValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.seqService.Create(ctx, nil, CreateSequenceInput{Name: ""})
	requireAPIErr(t, err, apierr.KindValidation, "empty_name")

	ghost := uuid.New()
	_, err = env.seqService.Create(ctx, nil, CreateSequenceInput{
		Name:             "Secuencia huérfana",
		CurriculumNodeID: &ghost,
	})
	requireAPIErr(t, err, apierr.KindReferential, "node_not_found")
}

func TestSequenceGradeLevelsDerivedFromNode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	node := env.mustCreateNode(t, "Fracciones", types.NodeTypeUnit, nil, types.GradeLevelFirst, types.GradeLevelSecond)
	attached := env.mustCreateSequence(t, "Fracciones paso a paso", &node.ID)
	detached := env.mustCreateSequence(t, "Repaso general", nil)

	detail, err := env.seqService.Get(ctx, nil, attached.ID)
	if err != nil {
		t.Fatalf("get attached: %v", err)
	}
	if len(detail.GradeLevels) != 2 {
		t.Errorf("expected node's 2 grade levels, got %v", detail.GradeLevels)
	}

	detail, err = env.seqService.Get(ctx, nil, detached.ID)
	if err != nil {
		t.Fatalf("get detached: %v", err)
	}
	if len(detail.GradeLevels) != 0 {
		t.Errorf("detached sequence should have the empty set, got %v", detail.GradeLevels)
	}
}

func TestUpdateSequenceNodeAssociation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	node := env.mustCreateNode(t, "Fracciones", types.NodeTypeUnit, nil)
	sequence := env.mustCreateSequence(t, "Fracciones paso a paso", nil)

	updated, err := env.seqService.Update(ctx, nil, sequence.ID, UpdateSequenceInput{
		SetNode:          true,
		CurriculumNodeID: &node.ID,
	})
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if updated.CurriculumNodeID == nil || *updated.CurriculumNodeID != node.ID {
		t.Fatalf("expected node %s, got %v", node.ID, updated.CurriculumNodeID)
	}

	ghost := uuid.New()
	_, err = env.seqService.Update(ctx, nil, sequence.ID, UpdateSequenceInput{
		SetNode:          true,
		CurriculumNodeID: &ghost,
	})
	requireAPIErr(t, err, apierr.KindReferential, "node_not_found")

	// Detaching clears the association without touching other fields.
	updated, err = env.seqService.Update(ctx, nil, sequence.ID, UpdateSequenceInput{SetNode: true})
	if err != nil {
		t.Fatalf("detach: %v", err)
	}
	if updated.CurriculumNodeID != nil {
		t.Errorf("expected detached sequence, got node %s", *updated.CurriculumNodeID)
	}
	if updated.Name != sequence.Name {
		t.Errorf("name changed unexpectedly: %q", updated.Name)
	}
}

func TestDeleteSequenceRemovesPositions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sequence := env.mustCreateSequence(t, "Fracciones paso a paso", nil)
	content := env.mustCreateContent(t, "Introducción a fracciones")
	position := env.mustAddContent(t, sequence.ID, content.ID, nil)

	if err := env.seqService.Delete(ctx, nil, sequence.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	_, err := env.seqService.Get(ctx, nil, sequence.ID)
	requireAPIErr(t, err, apierr.KindReferential, "sequence_not_found")

	rows, err := env.positionRepo.GetByIDs(ctx, nil, []uuid.UUID{position.ID})
	if err != nil {
		t.Fatalf("get positions: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected positions removed with the sequence, got %d", len(rows))
	}

	// The content itself is untouched.
	if _, err := env.contentService.Get(ctx, nil, content.ID); err != nil {
		t.Fatalf("content disappeared with sequence: %v", err)
	}
}

package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/apierr"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/logger"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/repos"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/types"
)

type testEnv struct {
	db             *gorm.DB
	nodeRepo       repos.CurriculumNodeRepo
	edgeRepo       repos.PrerequisiteEdgeRepo
	contentRepo    repos.ContentResourceRepo
	sequenceRepo   repos.LearningSequenceRepo
	positionRepo   repos.SequencePositionRepo
	guard          TreeIntegrityGuard
	nodeService    NodeService
	prereqService  PrerequisiteService
	contentService ContentService
	seqService     SequenceService
	engine         SequenceOrderingEngine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&types.CurriculumNode{},
		&types.PrerequisiteEdge{},
		&types.ContentResource{},
		&types.LearningSequence{},
		&types.SequencePosition{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log := logger.NewNop()
	nodeRepo := repos.NewCurriculumNodeRepo(db, log)
	edgeRepo := repos.NewPrerequisiteEdgeRepo(db, log)
	contentRepo := repos.NewContentResourceRepo(db, log)
	sequenceRepo := repos.NewLearningSequenceRepo(db, log)
	positionRepo := repos.NewSequencePositionRepo(db, log)
	guard := NewTreeIntegrityGuard(db, log, nodeRepo, contentRepo)

	return &testEnv{
		db:             db,
		nodeRepo:       nodeRepo,
		edgeRepo:       edgeRepo,
		contentRepo:    contentRepo,
		sequenceRepo:   sequenceRepo,
		positionRepo:   positionRepo,
		guard:          guard,
		nodeService:    NewNodeService(db, log, guard, nodeRepo, edgeRepo),
		prereqService:  NewPrerequisiteService(db, log, nodeRepo, edgeRepo),
		contentService: NewContentService(db, log, contentRepo, nodeRepo),
		seqService:     NewSequenceService(db, log, sequenceRepo, positionRepo, nodeRepo, contentRepo),
		engine:         NewSequenceOrderingEngine(db, log, sequenceRepo, positionRepo, nodeRepo, contentRepo),
	}
}

func (env *testEnv) mustCreateNode(t *testing.T, name string, nodeType types.NodeType, parentID *uuid.UUID, levels ...types.GradeLevel) *types.CurriculumNode {
	t.Helper()
	node, err := env.nodeService.Create(context.Background(), nil, CreateNodeInput{
		Name:        name,
		NodeType:    nodeType,
		GradeLevels: levels,
		ParentID:    parentID,
	})
	if err != nil {
		t.Fatalf("create node %q: %v", name, err)
	}
	return node
}

func (env *testEnv) mustCreateContent(t *testing.T, title string, levels ...types.GradeLevel) *types.ContentResource {
	t.Helper()
	content, err := env.contentService.Create(context.Background(), nil, CreateContentInput{
		Title:       title,
		GradeLevels: levels,
	})
	if err != nil {
		t.Fatalf("create content %q: %v", title, err)
	}
	return content
}

func (env *testEnv) mustCreateSequence(t *testing.T, name string, nodeID *uuid.UUID) *types.LearningSequence {
	t.Helper()
	sequence, err := env.seqService.Create(context.Background(), nil, CreateSequenceInput{
		Name:             name,
		CurriculumNodeID: nodeID,
	})
	if err != nil {
		t.Fatalf("create sequence %q: %v", name, err)
	}
	return sequence
}

func (env *testEnv) mustAddContent(t *testing.T, sequenceID, contentID uuid.UUID, position *int) *types.SequencePosition {
	t.Helper()
	result, err := env.engine.AddContent(context.Background(), nil, AddContentInput{
		SequenceID:        sequenceID,
		ContentResourceID: contentID,
		Position:          position,
	})
	if err != nil {
		t.Fatalf("add content %s to sequence %s: %v", contentID, sequenceID, err)
	}
	return result.Position
}

func requireAPIErr(t *testing.T, err error, kind apierr.Kind, code string) *apierr.Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s/%s error, got nil", kind, code)
	}
	e, ok := apierr.As(err)
	if !ok {
		t.Fatalf("expected %s/%s error, got %T: %v", kind, code, err, err)
	}
	if e.Kind != kind {
		t.Fatalf("expected kind %s, got %s (%v)", kind, e.Kind, err)
	}
	if e.Code != code {
		t.Fatalf("expected code %s, got %s (%v)", code, e.Code, err)
	}
	return e
}

func intPtr(v int) *int { return &v }

// Command seed loads an initial curriculum taxonomy from a YAML file into the
// node store. Every parent link goes through the same validation path as the
// API, so a malformed seed file cannot corrupt the tree.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/db"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/logger"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/repos"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/services"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/types"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/utils"
)

type seedNode struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Type        string     `yaml:"type"`
	Order       *int       `yaml:"order"`
	GradeLevels []string   `yaml:"grade_levels"`
	Children    []seedNode `yaml:"children"`
}

type seedFile struct {
	Nodes []seedNode `yaml:"nodes"`
}

func main() {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	seedPath := utils.GetEnv("SEED_FILE", "seed/taxonomy.yaml", log)
	raw, err := os.ReadFile(seedPath)
	if err != nil {
		log.Fatal("Failed to read seed file", "path", seedPath, "error", err)
	}
	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		log.Fatal("Failed to parse seed file", "path", seedPath, "error", err)
	}

	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	nodeRepo := repos.NewCurriculumNodeRepo(thePG, log)
	edgeRepo := repos.NewPrerequisiteEdgeRepo(thePG, log)
	contentRepo := repos.NewContentResourceRepo(thePG, log)
	treeGuard := services.NewTreeIntegrityGuard(thePG, log, nodeRepo, contentRepo)
	nodeService := services.NewNodeService(thePG, log, treeGuard, nodeRepo, edgeRepo)

	ctx := context.Background()
	total := 0
	for _, root := range file.Nodes {
		n, err := seedSubtree(ctx, nodeService, root, nil)
		if err != nil {
			log.Fatal("Seeding failed", "node", root.Name, "error", err)
		}
		total += n
	}
	log.Info("Taxonomy seeded", "nodes", total, "path", seedPath)
}

func seedSubtree(ctx context.Context, nodeService services.NodeService, sn seedNode, parentID *uuid.UUID) (int, error) {
	levels := make([]types.GradeLevel, 0, len(sn.GradeLevels))
	for _, g := range sn.GradeLevels {
		levels = append(levels, types.GradeLevel(g))
	}
	node, err := nodeService.Create(ctx, nil, services.CreateNodeInput{
		Name:        sn.Name,
		Description: sn.Description,
		NodeType:    types.NodeType(sn.Type),
		Order:       sn.Order,
		GradeLevels: levels,
		ParentID:    parentID,
	})
	if err != nil {
		return 0, err
	}
	total := 1
	for _, child := range sn.Children {
		n, err := seedSubtree(ctx, nodeService, child, &node.ID)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

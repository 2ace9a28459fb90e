package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/cache"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/logger"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/services"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/types"
)

type NodeHandler struct {
	log            *logger.Logger
	nodeService    services.NodeService
	prereqService  services.PrerequisiteService
	contentService services.ContentService
	nodeCache      cache.NodeCache
}

func NewNodeHandler(
	log *logger.Logger,
	nodeService services.NodeService,
	prereqService services.PrerequisiteService,
	contentService services.ContentService,
	nodeCache cache.NodeCache,
) *NodeHandler {
	return &NodeHandler{
		log:            log.With("handler", "NodeHandler"),
		nodeService:    nodeService,
		prereqService:  prereqService,
		contentService: contentService,
		nodeCache:      nodeCache,
	}
}

type createNodeRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	NodeType    string          `json:"node_type"`
	Order       *int            `json:"order"`
	GradeLevels []string        `json:"grade_levels"`
	Metadata    json.RawMessage `json:"metadata"`
	ParentID    *string         `json:"parent_id"`
}

// updateNodeRequest keeps parent_id as raw JSON so "absent", "null" (move to
// root) and a concrete id stay distinguishable.
type updateNodeRequest struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	NodeType    *string         `json:"node_type"`
	Order       *int            `json:"order"`
	GradeLevels *[]string       `json:"grade_levels"`
	Metadata    json.RawMessage `json:"metadata"`
	ParentID    json.RawMessage `json:"parent_id"`
}

func (h *NodeHandler) CreateNode(c *gin.Context) {
	var req createNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	parentID, err := parseOptionalUUID(req.ParentID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_parent_id", err)
		return
	}
	node, err := h.nodeService.Create(c.Request.Context(), nil, services.CreateNodeInput{
		Name:        req.Name,
		Description: req.Description,
		NodeType:    types.NodeType(req.NodeType),
		Order:       req.Order,
		GradeLevels: toGradeLevels(req.GradeLevels),
		Metadata:    datatypes.JSON(req.Metadata),
		ParentID:    parentID,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	// The parent's cached detail lists its children; the new child makes it
	// stale.
	h.invalidate(c, node.ID, node.ParentID)
	c.JSON(http.StatusCreated, gin.H{"node": node})
}

func (h *NodeHandler) GetNode(c *gin.Context) {
	nodeID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	contentQuery := c.Query("content_id")

	// Advisory-annotated responses vary per query, so only the plain detail
	// payload is cached.
	if h.nodeCache != nil && contentQuery == "" {
		if raw, hit := h.nodeCache.Get(c.Request.Context(), nodeID.String()); hit {
			c.Data(http.StatusOK, "application/json", raw)
			return
		}
	}

	detail, err := h.nodeService.Get(c.Request.Context(), nil, nodeID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	if contentQuery != "" {
		contentID, err := uuid.Parse(contentQuery)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_content_id", err)
			return
		}
		content, err := h.contentService.Get(c.Request.Context(), nil, contentID)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		verdict := services.Compatibility(
			types.DecodeGradeLevels(detail.Node.GradeLevels),
			types.DecodeGradeLevels(content.GradeLevels),
		)
		RespondOK(c, gin.H{"node": detail.Node, "parent": detail.Parent, "children": detail.Children, "grade_advisory": verdict})
		return
	}

	payload := gin.H{"node": detail.Node, "parent": detail.Parent, "children": detail.Children}
	if h.nodeCache != nil {
		if raw, err := json.Marshal(payload); err == nil {
			h.nodeCache.Set(c.Request.Context(), nodeID.String(), raw)
		}
	}
	RespondOK(c, payload)
}

func (h *NodeHandler) ListRoots(c *gin.Context) {
	roots, err := h.nodeService.ListRoots(c.Request.Context(), nil)
	if err != nil {
		h.log.Error("ListRoots failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "load_roots_failed", err)
		return
	}
	RespondOK(c, gin.H{"nodes": roots})
}

func (h *NodeHandler) ListChildren(c *gin.Context) {
	nodeID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	children, err := h.nodeService.ListChildren(c.Request.Context(), nil, nodeID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"nodes": children})
}

func (h *NodeHandler) UpdateNode(c *gin.Context) {
	nodeID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req updateNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	input := services.UpdateNodeInput{
		Name:        req.Name,
		Description: req.Description,
		Order:       req.Order,
		Metadata:    datatypes.JSON(req.Metadata),
	}
	if req.NodeType != nil {
		nodeType := types.NodeType(*req.NodeType)
		input.NodeType = &nodeType
	}
	if req.GradeLevels != nil {
		levels := toGradeLevels(*req.GradeLevels)
		input.GradeLevels = &levels
	}
	if len(req.ParentID) > 0 {
		input.SetParent = true
		if string(req.ParentID) != "null" {
			var rawID string
			if err := json.Unmarshal(req.ParentID, &rawID); err != nil {
				RespondError(c, http.StatusBadRequest, "invalid_parent_id", err)
				return
			}
			parentID, err := uuid.Parse(rawID)
			if err != nil {
				RespondError(c, http.StatusBadRequest, "invalid_parent_id", err)
				return
			}
			input.ParentID = &parentID
		}
	}

	// Capture the pre-update parent: on a reparent both the old and the new
	// parent's cached children lists go stale.
	var oldParentID *uuid.UUID
	if h.nodeCache != nil {
		if detail, err := h.nodeService.Get(c.Request.Context(), nil, nodeID); err == nil {
			oldParentID = detail.Node.ParentID
		}
	}

	node, err := h.nodeService.Update(c.Request.Context(), nil, nodeID, input)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	h.invalidate(c, nodeID, oldParentID, node.ParentID)
	RespondOK(c, gin.H{"node": node})
}

func (h *NodeHandler) DeleteNode(c *gin.Context) {
	nodeID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var parentID *uuid.UUID
	if h.nodeCache != nil {
		if detail, err := h.nodeService.Get(c.Request.Context(), nil, nodeID); err == nil {
			parentID = detail.Node.ParentID
		}
	}
	if err := h.nodeService.Delete(c.Request.Context(), nil, nodeID); err != nil {
		RespondDomainError(c, err)
		return
	}
	h.invalidate(c, nodeID, parentID)
	RespondOK(c, gin.H{"deleted": nodeID})
}

type upsertPrerequisiteRequest struct {
	StrengthLevel string `json:"strength_level"`
}

func (h *NodeHandler) UpsertPrerequisite(c *gin.Context) {
	dependentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	prereqID, ok := pathUUID(c, "prereqId")
	if !ok {
		return
	}
	var req upsertPrerequisiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	edge, err := h.prereqService.UpsertEdge(c.Request.Context(), nil, prereqID, dependentID, types.StrengthLevel(req.StrengthLevel))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"edge": edge})
}

func (h *NodeHandler) DeletePrerequisite(c *gin.Context) {
	dependentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	prereqID, ok := pathUUID(c, "prereqId")
	if !ok {
		return
	}
	if err := h.prereqService.DeleteEdge(c.Request.Context(), nil, prereqID, dependentID); err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": gin.H{"prerequisite_node_id": prereqID, "dependent_node_id": dependentID}})
}

func (h *NodeHandler) ListPrerequisites(c *gin.Context) {
	nodeID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	edges, err := h.prereqService.ListForNode(c.Request.Context(), nil, nodeID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"edges": edges})
}

func (h *NodeHandler) invalidate(c *gin.Context, nodeID uuid.UUID, parentIDs ...*uuid.UUID) {
	if h.nodeCache == nil {
		return
	}
	seen := map[string]struct{}{nodeID.String(): {}}
	ids := []string{nodeID.String()}
	for _, parentID := range parentIDs {
		if parentID == nil {
			continue
		}
		key := parentID.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		ids = append(ids, key)
	}
	h.nodeCache.Invalidate(c.Request.Context(), ids...)
}

func pathUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("path parameter %q is not a uuid", param))
		return uuid.Nil, false
	}
	return id, true
}

func parseOptionalUUID(raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func toGradeLevels(raw []string) []types.GradeLevel {
	levels := make([]types.GradeLevel, 0, len(raw))
	for _, g := range raw {
		levels = append(levels, types.GradeLevel(g))
	}
	return levels
}

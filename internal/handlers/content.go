package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/logger"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/services"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/types"
)

type ContentHandler struct {
	log            *logger.Logger
	contentService services.ContentService
}

func NewContentHandler(log *logger.Logger, contentService services.ContentService) *ContentHandler {
	return &ContentHandler{
		log:            log.With("handler", "ContentHandler"),
		contentService: contentService,
	}
}

type createContentRequest struct {
	Title            string          `json:"title"`
	ContentType      string          `json:"content_type"`
	GradeLevels      []string        `json:"grade_levels"`
	CurriculumNodeID *string         `json:"curriculum_node_id"`
	Metadata         json.RawMessage `json:"metadata"`
}

func (h *ContentHandler) CreateContent(c *gin.Context) {
	var req createContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	nodeID, err := parseOptionalUUID(req.CurriculumNodeID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_node_id", err)
		return
	}
	content, err := h.contentService.Create(c.Request.Context(), nil, services.CreateContentInput{
		Title:            req.Title,
		ContentType:      types.ContentResourceType(req.ContentType),
		GradeLevels:      toGradeLevels(req.GradeLevels),
		CurriculumNodeID: nodeID,
		Metadata:         datatypes.JSON(req.Metadata),
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"content": content})
}

func (h *ContentHandler) GetContent(c *gin.Context) {
	contentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	content, err := h.contentService.Get(c.Request.Context(), nil, contentID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"content": content})
}

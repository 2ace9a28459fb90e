package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/apierr"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/logger"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/services"
)

type SequenceHandler struct {
	log             *logger.Logger
	sequenceService services.SequenceService
	orderingEngine  services.SequenceOrderingEngine
}

func NewSequenceHandler(
	log *logger.Logger,
	sequenceService services.SequenceService,
	orderingEngine services.SequenceOrderingEngine,
) *SequenceHandler {
	return &SequenceHandler{
		log:             log.With("handler", "SequenceHandler"),
		sequenceService: sequenceService,
		orderingEngine:  orderingEngine,
	}
}

type createSequenceRequest struct {
	Name             string  `json:"name"`
	Description      string  `json:"description"`
	IsTemplate       bool    `json:"is_template"`
	CurriculumNodeID *string `json:"curriculum_node_id"`
}

type updateSequenceRequest struct {
	Name             *string         `json:"name"`
	Description      *string         `json:"description"`
	IsTemplate       *bool           `json:"is_template"`
	CurriculumNodeID json.RawMessage `json:"curriculum_node_id"`
}

type addContentRequest struct {
	ContentResourceID string `json:"content_resource_id"`
	Position          *int   `json:"position"`
	IsOptional        bool   `json:"is_optional"`
}

type patchPositionRequest struct {
	IsOptional *bool `json:"is_optional"`
	Position   *int  `json:"position"`
}

type reorderRequest struct {
	Positions []services.PositionUpdate `json:"positions"`
}

func (h *SequenceHandler) CreateSequence(c *gin.Context) {
	var req createSequenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	nodeID, err := parseOptionalUUID(req.CurriculumNodeID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_node_id", err)
		return
	}
	sequence, err := h.sequenceService.Create(c.Request.Context(), nil, services.CreateSequenceInput{
		Name:             req.Name,
		Description:      req.Description,
		IsTemplate:       req.IsTemplate,
		CurriculumNodeID: nodeID,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"sequence": sequence})
}

func (h *SequenceHandler) GetSequence(c *gin.Context) {
	sequenceID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	detail, err := h.sequenceService.Get(c.Request.Context(), nil, sequenceID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, detail)
}

func (h *SequenceHandler) UpdateSequence(c *gin.Context) {
	sequenceID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req updateSequenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	input := services.UpdateSequenceInput{
		Name:        req.Name,
		Description: req.Description,
		IsTemplate:  req.IsTemplate,
	}
	if len(req.CurriculumNodeID) > 0 {
		input.SetNode = true
		if string(req.CurriculumNodeID) != "null" {
			var rawID string
			if err := json.Unmarshal(req.CurriculumNodeID, &rawID); err != nil {
				RespondError(c, http.StatusBadRequest, "invalid_node_id", err)
				return
			}
			nodeID, err := uuid.Parse(rawID)
			if err != nil {
				RespondError(c, http.StatusBadRequest, "invalid_node_id", err)
				return
			}
			input.CurriculumNodeID = &nodeID
		}
	}

	// Per the API contract a bad associated node is a 400, not a 404.
	sequence, err := h.sequenceService.Update(c.Request.Context(), nil, sequenceID, input)
	if err != nil {
		if e, ok := apierr.As(err); ok && e.Code == "node_not_found" {
			RespondError(c, http.StatusBadRequest, e.Code, e)
			return
		}
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"sequence": sequence})
}

func (h *SequenceHandler) DeleteSequence(c *gin.Context) {
	sequenceID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.sequenceService.Delete(c.Request.Context(), nil, sequenceID); err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": sequenceID})
}

func (h *SequenceHandler) AddContent(c *gin.Context) {
	sequenceID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req addContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	contentID, err := uuid.Parse(req.ContentResourceID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_content_id", err)
		return
	}
	result, err := h.orderingEngine.AddContent(c.Request.Context(), nil, services.AddContentInput{
		SequenceID:        sequenceID,
		ContentResourceID: contentID,
		Position:          req.Position,
		IsOptional:        req.IsOptional,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *SequenceHandler) PatchPosition(c *gin.Context) {
	sequenceID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	positionID, ok := pathUUID(c, "positionId")
	if !ok {
		return
	}
	var req patchPositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	position, err := h.orderingEngine.UpdatePlacement(c.Request.Context(), nil, sequenceID, positionID, req.Position, req.IsOptional)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"position": position})
}

func (h *SequenceHandler) RemoveContent(c *gin.Context) {
	sequenceID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	positionID, ok := pathUUID(c, "positionId")
	if !ok {
		return
	}
	if err := h.orderingEngine.RemoveContent(c.Request.Context(), nil, sequenceID, positionID); err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": positionID})
}

func (h *SequenceHandler) Reorder(c *gin.Context) {
	sequenceID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	positions, err := h.orderingEngine.Reorder(c.Request.Context(), nil, sequenceID, req.Positions)
	if err != nil {
		// The bulk contract reports unknown position ids as a 400 listing the
		// offending ids, not a 404.
		if e, ok := apierr.As(err); ok && e.Code == "position_not_in_sequence" {
			c.JSON(http.StatusBadRequest, ErrorEnvelope{
				Error: APIError{Message: e.Error(), Code: e.Code, Kind: string(e.Kind), IDs: e.IDs},
			})
			return
		}
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"positions": positions})
}

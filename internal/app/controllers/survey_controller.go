package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deniz/commverse/internal/app/models/dto"
	"github.com/deniz/commverse/internal/app/services"
)

// SurveyController handles survey endpoints
type SurveyController struct {
	surveyService services.SurveyService
}

// NewSurveyController creates a new SurveyController
func NewSurveyController(surveyService services.SurveyService) *SurveyController {
	return &SurveyController{surveyService: surveyService}
}

// Create opens a survey in a community
func (sc *SurveyController) Create(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	communityID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.CreateSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	resp, err := sc.surveyService.Create(c.Request.Context(), communityID, userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// Get returns a survey with its tallies
func (sc *SurveyController) Get(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	surveyID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := sc.surveyService.Get(c.Request.Context(), surveyID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// ListByCommunity returns a community's surveys
func (sc *SurveyController) ListByCommunity(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	communityID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := sc.surveyService.ListByCommunity(c.Request.Context(), communityID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// Answer records or changes the caller's answer
func (sc *SurveyController) Answer(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	surveyID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := sc.surveyService.Answer(c.Request.Context(), surveyID, userID, &req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewMessageResponse("Answer recorded"))
}

// Close stops a survey from accepting answers
func (sc *SurveyController) Close(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	surveyID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := sc.surveyService.Close(c.Request.Context(), surveyID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewMessageResponse("Survey closed"))
}

// Delete removes a survey
func (sc *SurveyController) Delete(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	surveyID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := sc.surveyService.Delete(c.Request.Context(), surveyID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewMessageResponse("Survey deleted"))
}

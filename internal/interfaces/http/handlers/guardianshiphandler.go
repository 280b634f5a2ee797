package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pawhaven/pawhaven/internal/application/guardianship/usecases"
	"github.com/pawhaven/pawhaven/internal/domain/guardianship"
	"github.com/pawhaven/pawhaven/internal/interfaces/http/middleware"
	"github.com/pawhaven/pawhaven/internal/shared/logger"
	"github.com/pawhaven/pawhaven/internal/shared/utils"
)

type GuardianshipHandler struct {
	createUC   *usecases.CreateGuardianshipUseCase
	completeUC *usecases.CompleteGuardianshipUseCase
	cancelUC   *usecases.CancelGuardianshipUseCase
	renewUC    *usecases.RenewGuardianshipUseCase
	listUC     *usecases.ListMyGuardianshipsUseCase
	logger     logger.Interface
}

func NewGuardianshipHandler(
	createUC *usecases.CreateGuardianshipUseCase,
	completeUC *usecases.CompleteGuardianshipUseCase,
	cancelUC *usecases.CancelGuardianshipUseCase,
	renewUC *usecases.RenewGuardianshipUseCase,
	listUC *usecases.ListMyGuardianshipsUseCase,
	logger logger.Interface,
) *GuardianshipHandler {
	return &GuardianshipHandler{
		createUC:   createUC,
		completeUC: completeUC,
		cancelUC:   cancelUC,
		renewUC:    renewUC,
		listUC:     listUC,
		logger:     logger,
	}
}

type CreateGuardianshipRequest struct {
	AnimalID  uint   `json:"animal_id" binding:"required"`
	Amount    int64  `json:"amount" binding:"required,gt=0"`
	Currency  string `json:"currency" binding:"omitempty,len=3"`
	ResultURL string `json:"result_url" binding:"omitempty,url"`
}

type CreateGuardianshipResponse struct {
	GuardianshipSID string `json:"guardianship_sid"`
	SubscriptionSID string `json:"subscription_sid"`
	PaymentSID      string `json:"payment_sid"`
	CheckoutURL     string `json:"checkout_url"`
	Data            string `json:"data"`
	Signature       string `json:"signature"`
}

// CreateGuardianship opens a guardianship with its funding subscription and
// first pending charge, then returns the checkout for that charge.
func (h *GuardianshipHandler) CreateGuardianship(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req CreateGuardianshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, bindingErrorMessage(err))
		return
	}

	result, err := h.createUC.Execute(c.Request.Context(), usecases.CreateGuardianshipCommand{
		UserID:    userID,
		AnimalID:  req.AnimalID,
		Amount:    req.Amount,
		Currency:  req.Currency,
		ResultURL: req.ResultURL,
	})
	if err != nil {
		h.logger.Errorw("failed to create guardianship", "error", err, "user_id", userID)
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, CreateGuardianshipResponse{
		GuardianshipSID: result.Guardianship.SID(),
		SubscriptionSID: result.Subscription.SID(),
		PaymentSID:      result.Payment.SID(),
		CheckoutURL:     result.CheckoutURL,
		Data:            result.Data,
		Signature:       result.Signature,
	})
}

// CompleteGuardianship ends a guardianship on the guardian's request and
// cancels the subscription funding it.
func (h *GuardianshipHandler) CompleteGuardianship(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	err := h.completeUC.Execute(c.Request.Context(), usecases.CompleteGuardianshipCommand{
		GuardianshipSID: c.Param("sid"),
		UserID:          userID,
	})
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "guardianship completed", nil)
}

func (h *GuardianshipHandler) CancelGuardianship(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	err := h.cancelUC.Execute(c.Request.Context(), usecases.CancelGuardianshipCommand{
		GuardianshipSID: c.Param("sid"),
		UserID:          userID,
	})
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "guardianship cancelled", nil)
}

type RenewGuardianshipRequest struct {
	Amount    int64  `json:"amount" binding:"required,gt=0"`
	Currency  string `json:"currency" binding:"omitempty,len=3"`
	ResultURL string `json:"result_url" binding:"omitempty,url"`
}

// RenewGuardianship re-funds a guardianship whose subscription ended, creating
// a replacement subscription with a fresh checkout.
func (h *GuardianshipHandler) RenewGuardianship(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req RenewGuardianshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, bindingErrorMessage(err))
		return
	}

	result, err := h.renewUC.Execute(c.Request.Context(), usecases.RenewGuardianshipCommand{
		GuardianshipSID: c.Param("sid"),
		UserID:          userID,
		Amount:          req.Amount,
		Currency:        req.Currency,
		ResultURL:       req.ResultURL,
	})
	if err != nil {
		h.logger.Errorw("failed to renew guardianship", "error", err, "user_id", userID)
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, CreateGuardianshipResponse{
		GuardianshipSID: result.Guardianship.SID(),
		SubscriptionSID: result.Subscription.SID(),
		PaymentSID:      result.Payment.SID(),
		CheckoutURL:     result.CheckoutURL,
		Data:            result.Data,
		Signature:       result.Signature,
	})
}

func (h *GuardianshipHandler) ListMyGuardianships(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	list, err := h.listUC.Execute(c.Request.Context(), usecases.ListMyGuardianshipsCommand{
		UserID: userID,
		Status: c.Query("status"),
	})
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	responses := make([]GuardianshipResponse, 0, len(list))
	for _, g := range list {
		responses = append(responses, guardianshipToResponse(g))
	}

	utils.SuccessResponse(c, http.StatusOK, "", responses)
}

type GuardianshipResponse struct {
	SID        string  `json:"sid"`
	AnimalID   uint    `json:"animal_id"`
	Status     string  `json:"status"`
	StartDate  string  `json:"start_date"`
	GraceUntil *string `json:"grace_until,omitempty"`
}

func guardianshipToResponse(g *guardianship.Guardianship) GuardianshipResponse {
	resp := GuardianshipResponse{
		SID:       g.SID(),
		AnimalID:  g.AnimalID(),
		Status:    string(g.Status()),
		StartDate: g.StartDate().UTC().Format(time.RFC3339),
	}
	if until := g.GraceUntil(); until != nil {
		s := until.UTC().Format(time.RFC3339)
		resp.GraceUntil = &s
	}
	return resp
}

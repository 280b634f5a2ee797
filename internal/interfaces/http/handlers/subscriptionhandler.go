package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pawhaven/pawhaven/internal/application/subscription/usecases"
	"github.com/pawhaven/pawhaven/internal/domain/subscription"
	"github.com/pawhaven/pawhaven/internal/interfaces/http/middleware"
	"github.com/pawhaven/pawhaven/internal/shared/logger"
	"github.com/pawhaven/pawhaven/internal/shared/utils"
)

type SubscriptionHandler struct {
	createUC           *usecases.CreateSubscriptionUseCase
	cancelUC           *usecases.CancelSubscriptionUseCase
	listUC             *usecases.ListMySubscriptionsUseCase
	expectedPaymentsUC *usecases.GetExpectedPaymentsUseCase
	logger             logger.Interface
}

func NewSubscriptionHandler(
	createUC *usecases.CreateSubscriptionUseCase,
	cancelUC *usecases.CancelSubscriptionUseCase,
	listUC *usecases.ListMySubscriptionsUseCase,
	expectedPaymentsUC *usecases.GetExpectedPaymentsUseCase,
	logger logger.Interface,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		createUC:           createUC,
		cancelUC:           cancelUC,
		listUC:             listUC,
		expectedPaymentsUC: expectedPaymentsUC,
		logger:             logger,
	}
}

type CreateSubscriptionRequest struct {
	Amount    int64  `json:"amount" binding:"required,gt=0"`
	Currency  string `json:"currency" binding:"omitempty,len=3"`
	ResultURL string `json:"result_url" binding:"omitempty,url"`
}

type CreateSubscriptionResponse struct {
	SubscriptionSID string `json:"subscription_sid"`
	PaymentSID      string `json:"payment_sid"`
	CheckoutURL     string `json:"checkout_url"`
	Data            string `json:"data"`
	Signature       string `json:"signature"`
}

// CreateSubscription opens a standalone recurring donation and returns the
// checkout for its first charge.
func (h *SubscriptionHandler) CreateSubscription(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, bindingErrorMessage(err))
		return
	}

	result, err := h.createUC.Execute(c.Request.Context(), usecases.CreateSubscriptionCommand{
		UserID:    userID,
		Amount:    req.Amount,
		Currency:  req.Currency,
		ResultURL: req.ResultURL,
	})
	if err != nil {
		h.logger.Errorw("failed to create subscription", "error", err, "user_id", userID)
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, CreateSubscriptionResponse{
		SubscriptionSID: result.Subscription.SID(),
		PaymentSID:      result.Payment.SID(),
		CheckoutURL:     result.CheckoutURL,
		Data:            result.Data,
		Signature:       result.Signature,
	})
}

// CancelSubscription stops a recurring donation. For a guardianship-scoped
// subscription the guardianship it funds is completed as well.
func (h *SubscriptionHandler) CancelSubscription(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	err := h.cancelUC.Execute(c.Request.Context(), usecases.CancelSubscriptionCommand{
		SubscriptionSID: c.Param("sid"),
		UserID:          userID,
	})
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "subscription cancelled", nil)
}

func (h *SubscriptionHandler) ListMySubscriptions(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	subs, err := h.listUC.Execute(c.Request.Context(), usecases.ListMySubscriptionsCommand{UserID: userID})
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	responses := make([]SubscriptionResponse, 0, len(subs))
	for _, sub := range subs {
		responses = append(responses, subscriptionToResponse(sub))
	}

	utils.SuccessResponse(c, http.StatusOK, "", responses)
}

// GetExpectedPayments returns the caller's upcoming charges across all live
// subscriptions.
func (h *SubscriptionHandler) GetExpectedPayments(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	expected, err := h.expectedPaymentsUC.Execute(c.Request.Context(), usecases.GetExpectedPaymentsCommand{UserID: userID})
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", expected)
}

type SubscriptionResponse struct {
	SID          string  `json:"sid"`
	Amount       int64   `json:"amount"`
	Currency     string  `json:"currency"`
	Status       string  `json:"status"`
	ScopeType    string  `json:"scope_type"`
	NextChargeAt *string `json:"next_charge_at,omitempty"`
	LastChargeAt *string `json:"last_charge_at,omitempty"`
}

func subscriptionToResponse(s *subscription.Subscription) SubscriptionResponse {
	resp := SubscriptionResponse{
		SID:       s.SID(),
		Amount:    s.Amount().AmountInCents(),
		Currency:  s.Amount().Currency(),
		Status:    string(s.Status()),
		ScopeType: string(s.Scope().Type()),
	}
	if next := s.NextChargeAt(); next != nil {
		v := next.UTC().Format(time.RFC3339)
		resp.NextChargeAt = &v
	}
	if last := s.LastChargeAt(); last != nil {
		v := last.UTC().Format(time.RFC3339)
		resp.LastChargeAt = &v
	}
	return resp
}

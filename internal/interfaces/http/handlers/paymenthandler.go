package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pawhaven/pawhaven/internal/application/payment/usecases"
	"github.com/pawhaven/pawhaven/internal/domain/payment"
	"github.com/pawhaven/pawhaven/internal/interfaces/http/middleware"
	"github.com/pawhaven/pawhaven/internal/shared/logger"
	"github.com/pawhaven/pawhaven/internal/shared/utils"
)

type PaymentHandler struct {
	createDonationUC  *usecases.CreateDonationUseCase
	processCallbackUC *usecases.ProcessCallbackUseCase
	queryStatusUC     *usecases.QueryPaymentStatusUseCase
	listPaymentsUC    *usecases.ListMyPaymentsUseCase
	logger            logger.Interface
}

func NewPaymentHandler(
	createDonationUC *usecases.CreateDonationUseCase,
	processCallbackUC *usecases.ProcessCallbackUseCase,
	queryStatusUC *usecases.QueryPaymentStatusUseCase,
	listPaymentsUC *usecases.ListMyPaymentsUseCase,
	logger logger.Interface,
) *PaymentHandler {
	return &PaymentHandler{
		createDonationUC:  createDonationUC,
		processCallbackUC: processCallbackUC,
		queryStatusUC:     queryStatusUC,
		listPaymentsUC:    listPaymentsUC,
		logger:            logger,
	}
}

type CreateDonationRequest struct {
	Amount     int64  `json:"amount" binding:"required,gt=0"`
	Currency   string `json:"currency" binding:"omitempty,len=3"`
	Purpose    string `json:"purpose" binding:"required,oneof=general medical food"`
	TargetType string `json:"target_type" binding:"omitempty,oneof=project"`
	TargetID   uint   `json:"target_id"`
	Anonymous  bool   `json:"anonymous"`
	Comment    string `json:"comment" binding:"max=1000"`
	ResultURL  string `json:"result_url" binding:"omitempty,url"`
}

type CheckoutResponse struct {
	PaymentSID  string `json:"payment_sid"`
	CheckoutURL string `json:"checkout_url"`
	Data        string `json:"data"`
	Signature   string `json:"signature"`
}

// CreateDonation records a one-off donation and returns the signed checkout
// the client redirects the donor to. Works for anonymous visitors too.
func (h *PaymentHandler) CreateDonation(c *gin.Context) {
	var req CreateDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, bindingErrorMessage(err))
		return
	}

	cmd := usecases.CreateDonationCommand{
		Amount:     req.Amount,
		Currency:   req.Currency,
		Purpose:    req.Purpose,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		Anonymous:  req.Anonymous,
		Comment:    req.Comment,
		ResultURL:  req.ResultURL,
	}
	if userID, ok := middleware.UserID(c); ok {
		cmd.UserID = &userID
	}

	result, err := h.createDonationUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		h.logger.Errorw("failed to create donation", "error", err)
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, CheckoutResponse{
		PaymentSID:  result.Payment.SID(),
		CheckoutURL: result.CheckoutURL,
		Data:        result.Data,
		Signature:   result.Signature,
	})
}

type callbackRequest struct {
	Data      string `form:"data" binding:"required"`
	Signature string `form:"signature" binding:"required"`
}

// HandleCallback receives provider notifications. A verified notification
// always gets 200 even when it loses the idempotency race; only signature or
// decode failures are rejected.
func (h *PaymentHandler) HandleCallback(c *gin.Context) {
	var req callbackRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "missing callback fields")
		return
	}

	err := h.processCallbackUC.Execute(c.Request.Context(), usecases.ProcessCallbackCommand{
		Data:      req.Data,
		Signature: req.Signature,
	})
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "callback processed", nil)
}

// GetPayment returns one of the caller's payments, refreshing a pending one
// against the provider first.
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	entry, err := h.queryStatusUC.Execute(c.Request.Context(), usecases.QueryPaymentStatusCommand{
		PaymentSID: c.Param("sid"),
		UserID:     userID,
	})
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", paymentToResponse(entry))
}

func (h *PaymentHandler) ListMyPayments(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	entries, err := h.listPaymentsUC.Execute(c.Request.Context(), usecases.ListMyPaymentsCommand{UserID: userID})
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	responses := make([]PaymentResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, paymentToResponse(entry))
	}

	utils.SuccessResponse(c, http.StatusOK, "", responses)
}

type PaymentResponse struct {
	SID           string  `json:"sid"`
	Amount        int64   `json:"amount"`
	Currency      string  `json:"currency"`
	Status        string  `json:"status"`
	Recurring     bool    `json:"recurring"`
	Purpose       string  `json:"purpose"`
	TargetType    string  `json:"target_type,omitempty"`
	TargetID      uint    `json:"target_id,omitempty"`
	DonationDate  string  `json:"donation_date"`
	Anonymous     bool    `json:"anonymous"`
	Comment       string  `json:"comment,omitempty"`
	FailureReason *string `json:"failure_reason,omitempty"`
}

func paymentToResponse(p *payment.Payment) PaymentResponse {
	return PaymentResponse{
		SID:           p.SID(),
		Amount:        p.Amount().AmountInCents(),
		Currency:      p.Amount().Currency(),
		Status:        string(p.Status()),
		Recurring:     p.Recurring(),
		Purpose:       p.Purpose().String(),
		TargetType:    string(p.Target().Type()),
		TargetID:      p.Target().ID(),
		DonationDate:  p.DonationDate().UTC().Format(time.RFC3339),
		Anonymous:     p.Anonymous(),
		Comment:       p.Comment(),
		FailureReason: p.FailureReason(),
	}
}

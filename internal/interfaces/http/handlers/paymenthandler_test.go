package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pawhaven/pawhaven/internal/application/payment/payment_gateway"
	"github.com/pawhaven/pawhaven/internal/application/payment/usecases"
	"github.com/pawhaven/pawhaven/internal/domain/payment"
	paymentvo "github.com/pawhaven/pawhaven/internal/domain/payment/valueobjects"
	"github.com/pawhaven/pawhaven/internal/infrastructure/persistence/models"
	"github.com/pawhaven/pawhaven/internal/infrastructure/repository"
	"github.com/pawhaven/pawhaven/internal/shared/clock"
	"github.com/pawhaven/pawhaven/internal/shared/db"
	"github.com/pawhaven/pawhaven/internal/shared/logger"
)

type callbackHandlerEnv struct {
	engine      *gin.Engine
	paymentRepo *repository.PaymentRepository
	gateway     *payment_gateway.MockGateway
}

func setupCallbackHandler(t *testing.T) *callbackHandlerEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&models.PaymentModel{},
		&models.SubscriptionModel{},
		&models.GuardianshipModel{},
	))

	log := logger.NewLogger()
	env := &callbackHandlerEnv{
		paymentRepo: repository.NewPaymentRepository(gdb),
		gateway:     payment_gateway.NewMockGateway(true),
	}

	processUC := usecases.NewProcessCallbackUseCase(
		env.paymentRepo,
		repository.NewSubscriptionRepository(gdb),
		repository.NewGuardianshipRepository(gdb),
		env.gateway,
		db.NewTransactionManager(gdb),
		nil,
		clock.System(),
		usecases.CallbackConfig{GracePeriod: 14 * 24 * time.Hour},
		log,
	)
	handler := NewPaymentHandler(nil, processUC, nil, nil, log)

	env.engine = gin.New()
	env.engine.POST("/callback", handler.HandleCallback)
	return env
}

func postCallback(t *testing.T, env *callbackHandlerEnv, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	env.engine.ServeHTTP(rec, req)
	return rec
}

func TestHandleCallback_MissingFields(t *testing.T) {
	env := setupCallbackHandler(t)

	rec := postCallback(t, env, url.Values{"data": {"ord_1"}})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCallback_UnknownOrderRejected(t *testing.T) {
	env := setupCallbackHandler(t)

	rec := postCallback(t, env, url.Values{
		"data":      {"ord_ghost"},
		"signature": {"sig"},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCallback_SettlesPayment(t *testing.T) {
	env := setupCallbackHandler(t)
	ctx := context.Background()

	userID := uint(7)
	entry, err := payment.NewPayment(payment.NewPaymentParams{
		ProviderOrderID: "ord_cb_1",
		UserID:          &userID,
		Amount:          paymentvo.NewMoney(10000, "UAH"),
		Purpose:         paymentvo.PurposeGeneral,
		Target:          paymentvo.NoTarget(),
	})
	require.NoError(t, err)
	require.NoError(t, env.paymentRepo.Create(ctx, entry))

	rec := postCallback(t, env, url.Values{
		"data":      {"ord_cb_1"},
		"signature": {"sig"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	reloaded, err := env.paymentRepo.GetByProviderOrderID(ctx, "ord_cb_1")
	require.NoError(t, err)
	assert.Equal(t, paymentvo.PaymentStatusSucceeded, reloaded.Status())
}

func TestHandleCallback_DuplicateDeliveryStillAcknowledged(t *testing.T) {
	env := setupCallbackHandler(t)
	ctx := context.Background()

	userID := uint(7)
	entry, err := payment.NewPayment(payment.NewPaymentParams{
		ProviderOrderID: "ord_cb_2",
		UserID:          &userID,
		Amount:          paymentvo.NewMoney(10000, "UAH"),
		Purpose:         paymentvo.PurposeGeneral,
		Target:          paymentvo.NoTarget(),
	})
	require.NoError(t, err)
	require.NoError(t, env.paymentRepo.Create(ctx, entry))

	form := url.Values{"data": {"ord_cb_2"}, "signature": {"sig"}}
	assert.Equal(t, http.StatusOK, postCallback(t, env, form).Code)
	assert.Equal(t, http.StatusOK, postCallback(t, env, form).Code)
}

package payment

import (
	"net/http"

	paymentAPI "payway-adapter/internal/api/v1/payment"
	"payway-adapter/internal/middleware"
	"payway-adapter/internal/models"
	"payway-adapter/internal/payment/payway"
	"payway-adapter/internal/services"
	"payway-adapter/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	providers *services.ProviderStore
	payments  *services.PaymentService
	logger    *zap.Logger
}

func NewHandler(providers *services.ProviderStore, payments *services.PaymentService, logger *zap.Logger) *Handler {
	return &Handler{providers: providers, payments: payments, logger: logger}
}

// ListProviders returns all provider configurations
func (h *Handler) ListProviders(c *gin.Context) {
	providers, err := h.providers.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, err.Error()))
		return
	}

	response := make([]ProviderResponse, 0, len(providers))
	for i := range providers {
		response = append(response, NewProviderResponse(&providers[i]))
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", response))
}

func (h *Handler) GetProvider(c *gin.Context) {
	provider, err := h.providers.GetByUUID(c.Request.Context(), c.Param("uuid"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", NewProviderResponse(provider)))
}

func (h *Handler) CreateProvider(c *gin.Context) {
	var req CreateProviderRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	provider, err := h.providers.Create(c.Request.Context(), services.CreateProviderInput{
		Code:       payway.Code,
		Name:       req.Name,
		MerchantID: req.MerchantID,
		PublicKey:  req.PublicKey,
		State:      models.ProviderState(req.State),
		Currencies: req.Currencies,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	h.logger.Info("provider created",
		zap.String("uuid", provider.UUID),
		zap.String("merchant_id", provider.MerchantID),
		zap.String("by", c.GetString(middleware.SubjectKey)),
	)
	c.JSON(http.StatusCreated, utils.NewResponse(http.StatusCreated, "success", NewProviderResponse(provider)))
}

func (h *Handler) UpdateProvider(c *gin.Context) {
	var req UpdateProviderRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	in := services.UpdateProviderInput{
		Name:       req.Name,
		MerchantID: req.MerchantID,
		PublicKey:  req.PublicKey,
		Currencies: req.Currencies,
	}
	if req.State != nil {
		state := models.ProviderState(*req.State)
		in.State = &state
	}

	provider, err := h.providers.Update(c.Request.Context(), c.Param("uuid"), in)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.logger.Info("provider updated", zap.String("uuid", provider.UUID), zap.String("by", c.GetString(middleware.SubjectKey)))
	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", NewProviderResponse(provider)))
}

func (h *Handler) DeleteProvider(c *gin.Context) {
	if err := h.providers.Delete(c.Request.Context(), c.Param("uuid")); err != nil {
		h.fail(c, err)
		return
	}

	h.logger.Info("provider deleted", zap.String("uuid", c.Param("uuid")), zap.String("by", c.GetString(middleware.SubjectKey)))
	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", nil))
}

// ReconcileTransaction re-checks one transaction against the gateway.
func (h *Handler) ReconcileTransaction(c *gin.Context) {
	id, ok := paymentAPI.TransactionID(c)
	if !ok {
		return
	}

	tx, err := h.payments.ReconcileTransaction(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", paymentAPI.NewTransactionResponse(tx)))
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := paymentAPI.ErrorStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("admin payment request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, utils.NewErrorResponse(status, err.Error()))
}

package payment

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"payway-adapter/internal/payment"
	"payway-adapter/internal/services"
	"payway-adapter/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service *services.PaymentService
	logger  *zap.Logger
}

func NewHandler(service *services.PaymentService, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// CreateTransaction stores a draft transaction.
func (h *Handler) CreateTransaction(c *gin.Context) {
	var req CreateTransactionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	tx, err := h.service.CreateTransaction(c.Request.Context(), services.CreateTransactionRequest{
		ProviderUUID:      req.ProviderUUID,
		Amount:            req.Amount,
		Currency:          req.Currency,
		PartnerName:       req.PartnerName,
		PartnerFirstName:  req.PartnerFirstName,
		PartnerLastName:   req.PartnerLastName,
		PartnerEmail:      req.PartnerEmail,
		PaymentMethodCode: req.PaymentMethodCode,
	})
	if err != nil {
		status := ErrorStatus(err)
		c.JSON(status, utils.NewErrorResponse(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, utils.NewResponse(http.StatusCreated, "success", NewTransactionResponse(tx)))
}

func (h *Handler) GetTransaction(c *gin.Context) {
	id, ok := TransactionID(c)
	if !ok {
		return
	}

	tx, err := h.service.GetTransaction(c.Request.Context(), id)
	if err != nil {
		status := ErrorStatus(err)
		c.JSON(status, utils.NewErrorResponse(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", NewTransactionResponse(tx)))
}

// Checkout returns the signed purchase form for a draft transaction.
func (h *Handler) Checkout(c *gin.Context) {
	id, ok := TransactionID(c)
	if !ok {
		return
	}

	req, err := h.service.Checkout(c.Request.Context(), id)
	if err != nil {
		status := ErrorStatus(err)
		c.JSON(status, utils.NewErrorResponse(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", NewCheckoutResponse(req)))
}

// Webhook receives a gateway pushback. It answers "OK" unless the body cannot
// be read or handling failed for an infrastructure reason.
func (h *Handler) Webhook(providerCode string) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := readNotification(c.Writer, c.Request)
		if err != nil {
			h.logger.Warn("unreadable notification", zap.String("provider", providerCode), zap.Error(err))
			c.String(http.StatusBadRequest, "Bad Request")
			return
		}

		ack, err := h.service.ReceiveNotification(c.Request.Context(), providerCode, n)
		if err != nil {
			_ = c.Error(err)
			c.String(http.StatusBadGateway, http.StatusText(http.StatusBadGateway))
			return
		}
		c.String(http.StatusOK, ack)
	}
}

// Return sends the payer back to the status page. The redirect carries no
// trusted payment data.
func (h *Handler) Return(statusPage string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Redirect(http.StatusFound, statusPage)
	}
}

// maxNotificationBytes caps webhook bodies; the endpoint is unauthenticated.
const maxNotificationBytes = 64 << 10

func readNotification(w http.ResponseWriter, r *http.Request) (payment.Notification, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxNotificationBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxNotificationBytes); err != nil {
			return nil, fmt.Errorf("parse multipart body: %w", err)
		}
		return payment.NotificationFromValues(r.Form), nil
	case "application/json":
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, fmt.Errorf("decode json body: %w", err)
		}
		n := make(payment.Notification, len(body))
		for k, v := range body {
			switch val := v.(type) {
			case nil:
			case string:
				n[k] = val
			case float64:
				n[k] = strconv.FormatFloat(val, 'f', -1, 64)
			default:
				n[k] = fmt.Sprint(val)
			}
		}
		return n, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return payment.NotificationFromValues(r.Form), nil
}

// TransactionID parses the :id path parameter, answering 400 when it is invalid.
func TransactionID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid ID"))
		return 0, false
	}
	return uint(id), true
}

package payway

import (
	"context"
	"fmt"

	"payway-adapter/internal/models"
	"payway-adapter/internal/payment"

	"go.uber.org/zap"
)

// Reconcile asks PayWay for the authoritative status of the transaction named
// by the notification and applies it to tx. Status fields carried by the
// notification itself are ignored.
func (d *Driver) Reconcile(ctx context.Context, tx *models.Transaction, notification payment.Notification, provider *models.ProviderConfig) error {
	tranID, ok := notification.Get("tran_id")
	if !ok {
		return &payment.MissingFieldError{Field: "tran_id"}
	}
	if tranID != tx.TranID() {
		return fmt.Errorf("%w: notification tran_id %s, transaction %s", payment.ErrTransactionNotFound, tranID, tx.TranID())
	}

	fields := map[string]string{
		"req_time":    d.requestTime(),
		"merchant_id": provider.MerchantID,
		"tran_id":     tranID,
	}
	hash, err := SignFields(fields, CheckTransactionHashKeys[:], []byte(provider.PublicKey))
	if err != nil {
		return err
	}
	fields[HashField] = hash

	resp, err := d.client.CheckTransaction(ctx, d.APIURL(provider)+CheckTransactionPath, fields)
	if err != nil {
		return err
	}

	log := d.logger.With(zap.String("tran_id", tranID), zap.String("reference", tx.Reference))

	statusCode, statusMessage, err := resp.StatusCode()
	if err != nil {
		return err
	}
	if statusCode != statusCodeOK {
		log.Warn("check transaction rejected by gateway",
			zap.String("status_code", statusCode),
			zap.String("status_message", statusMessage),
		)
		d.apply(log, tx, models.StateError, fmt.Sprintf("PayWay: Error code: %s, message: %s", statusCode, statusMessage))
		return nil
	}

	paymentCode, paymentStatus, apv, err := resp.PaymentStatus()
	if err != nil {
		return err
	}

	tx.ProviderReference = apv

	if _, known := StatusDescription(paymentCode); !known {
		log.Warn("received invalid payment code", zap.Int("payment_code", paymentCode))
	}
	state, _ := MapStatus(paymentCode)
	d.apply(log, tx, state, StatusMessage(paymentCode, paymentStatus, apv))
	return nil
}

func (d *Driver) apply(log *zap.Logger, tx *models.Transaction, state models.TransactionState, message string) {
	from := tx.State
	if !tx.SetState(state, message) {
		log.Info("transaction already final, status ignored",
			zap.String("state", string(from)),
			zap.String("gateway_state", string(state)),
		)
		return
	}
	log.Info("transaction status reconciled",
		zap.String("from", string(from)),
		zap.String("to", string(state)),
	)
}

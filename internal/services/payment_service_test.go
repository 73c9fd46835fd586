package services

import (
	"context"
	"net/http"
	"testing"

	"payway-adapter/internal/models"
	"payway-adapter/internal/payment"
	"payway-adapter/internal/payment/payway"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreateTransaction(t *testing.T) {
	env := newTestEnv(t, nil)
	tx := env.createTransaction(t)

	assert.NotZero(t, tx.ID)
	assert.Len(t, tx.Reference, 32)
	assert.Equal(t, models.StateDraft, tx.State)
	assert.Equal(t, "USD", tx.Currency)
	assert.Equal(t, "Sok", tx.PartnerFirstName)
	assert.Equal(t, "Dara", tx.PartnerLastName)
	assert.Equal(t, payway.Code, tx.ProviderCode)
}

func TestCreateTransactionRejectsInput(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.service.CreateTransaction(ctx, CreateTransactionRequest{
		ProviderUUID: env.provider.UUID,
		Amount:       decimal.Zero,
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = env.service.CreateTransaction(ctx, CreateTransactionRequest{
		ProviderUUID: env.provider.UUID,
		Amount:       decimal.NewFromInt(5),
		Currency:     "KHR",
	})
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	_, err = env.service.CreateTransaction(ctx, CreateTransactionRequest{
		ProviderUUID: "missing",
		Amount:       decimal.NewFromInt(5),
	})
	assert.ErrorIs(t, err, payment.ErrProviderNotFound)

	disabled := models.ProviderStateDisabled
	_, err = env.providers.Update(ctx, env.provider.UUID, UpdateProviderInput{State: &disabled})
	require.NoError(t, err)
	_, err = env.service.CreateTransaction(ctx, CreateTransactionRequest{
		ProviderUUID: env.provider.UUID,
		Amount:       decimal.NewFromInt(5),
	})
	assert.ErrorIs(t, err, models.ErrProviderDisabled)
}

func TestCheckout(t *testing.T) {
	env := newTestEnv(t, nil)
	tx := env.createTransaction(t)

	req, err := env.service.Checkout(context.Background(), tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "cards", req.Fields["payment_option"])
	assert.Equal(t, "USD", req.Fields["currency"])
	assert.Equal(t, "10.00", req.Fields["amount"])
	assert.Equal(t, tx.TranID(), req.Fields["tran_id"])
	assert.NotEmpty(t, req.SecureHash)
	assert.Equal(t, models.StateDraft, env.reload(t, tx.ID).State)
}

func TestCheckoutRequiresDraft(t *testing.T) {
	env := newTestEnv(t, nil)
	tx := env.createTransaction(t)
	require.NoError(t, env.db.Model(tx).Update("state", models.StatePending).Error)

	_, err := env.service.Checkout(context.Background(), tx.ID)
	assert.ErrorIs(t, err, ErrInvalidTransactionState)

	_, err = env.service.Checkout(context.Background(), 999)
	assert.ErrorIs(t, err, payment.ErrTransactionNotFound)
}

func TestReceiveNotificationApproved(t *testing.T) {
	env := newTestEnv(t, nil)
	tx := env.createTransaction(t)

	ack, err := env.service.ReceiveNotification(context.Background(), payway.Code,
		payment.Notification{"tran_id": tx.TranID(), "status": "3"})
	require.NoError(t, err)
	assert.Equal(t, Acknowledgement, ack)

	got := env.reload(t, tx.ID)
	assert.Equal(t, models.StateDone, got.State)
	assert.Equal(t, "REF123", got.ProviderReference)
	assert.Contains(t, got.StateMessage, "Approved")
	assert.NotNil(t, got.LastStateChange)

	logs, err := env.notifications.ListByTranID(context.Background(), tx.TranID())
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.NotificationStatusHandled, logs[0].Status)
	assert.Contains(t, string(logs[0].Payload), `"tran_id"`)
}

func TestReceiveNotificationMissingTranID(t *testing.T) {
	env := newTestEnv(t, nil)
	tx := env.createTransaction(t)

	ack, err := env.service.ReceiveNotification(context.Background(), payway.Code, payment.Notification{"apv": "X"})
	assert.NoError(t, err)
	assert.Equal(t, Acknowledgement, ack)
	assert.Equal(t, models.StateDraft, env.reload(t, tx.ID).State)
	assert.Zero(t, env.gateway.callCount())

	var entry models.NotificationLog
	require.NoError(t, env.db.First(&entry).Error)
	assert.Equal(t, models.NotificationStatusHandleFailed, entry.Status)
	assert.Contains(t, entry.Error, "tran_id")
}

func TestReceiveNotificationUnknownTransaction(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, tranID := range []string{"999", "not-a-number"} {
		ack, err := env.service.ReceiveNotification(context.Background(), payway.Code, payment.Notification{"tran_id": tranID})
		assert.NoError(t, err)
		assert.Equal(t, Acknowledgement, ack)
	}
	assert.Zero(t, env.gateway.callCount())
}

func TestReceiveNotificationUnknownProvider(t *testing.T) {
	env := newTestEnv(t, nil)
	tx := env.createTransaction(t)

	ack, err := env.service.ReceiveNotification(context.Background(), "stripe", payment.Notification{"tran_id": tx.TranID()})
	assert.NoError(t, err)
	assert.Equal(t, Acknowledgement, ack)
	assert.Equal(t, models.StateDraft, env.reload(t, tx.ID).State)
}

func TestReceiveNotificationIsIdempotent(t *testing.T) {
	env := newTestEnv(t, nil)
	tx := env.createTransaction(t)
	n := payment.Notification{"tran_id": tx.TranID()}

	_, err := env.service.ReceiveNotification(context.Background(), payway.Code, n)
	require.NoError(t, err)
	require.Equal(t, models.StateDone, env.reload(t, tx.ID).State)

	env.gateway.respond(http.StatusOK, `{"status":{"code":"00"},"data":{"payment_status_code":"3","apv":"OTHER"}}`)
	ack, err := env.service.ReceiveNotification(context.Background(), payway.Code, n)
	assert.NoError(t, err)
	assert.Equal(t, Acknowledgement, ack)

	got := env.reload(t, tx.ID)
	assert.Equal(t, models.StateDone, got.State)
	assert.Equal(t, "REF123", got.ProviderReference)
	assert.Equal(t, 1, env.gateway.callCount())
}

func TestReceiveNotificationGatewayRejected(t *testing.T) {
	env := newTestEnv(t, nil)
	tx := env.createTransaction(t)
	env.gateway.respond(http.StatusOK, `{"status":{"code":"01","message":"bad hash"}}`)

	ack, err := env.service.ReceiveNotification(context.Background(), payway.Code, payment.Notification{"tran_id": tx.TranID()})
	require.NoError(t, err)
	assert.Equal(t, Acknowledgement, ack)

	got := env.reload(t, tx.ID)
	assert.Equal(t, models.StateError, got.State)
	assert.Contains(t, got.StateMessage, "bad hash")
}

func TestReceiveNotificationPending(t *testing.T) {
	env := newTestEnv(t, nil)
	tx := env.createTransaction(t)
	env.gateway.respond(http.StatusOK, `{"status":{"code":"00"},"data":{"payment_status_code":2,"payment_status":"PENDING","apv":null}}`)

	_, err := env.service.ReceiveNotification(context.Background(), payway.Code, payment.Notification{"tran_id": tx.TranID()})
	require.NoError(t, err)

	got := env.reload(t, tx.ID)
	assert.Equal(t, models.StatePending, got.State)
	assert.Contains(t, got.StateMessage, "PENDING")
}

func TestReceiveNotificationProtocolErrorIsAcknowledged(t *testing.T) {
	env := newTestEnv(t, nil)
	tx := env.createTransaction(t)
	env.gateway.respond(http.StatusOK, `not json`)

	ack, err := env.service.ReceiveNotification(context.Background(), payway.Code, payment.Notification{"tran_id": tx.TranID()})
	assert.NoError(t, err)
	assert.Equal(t, Acknowledgement, ack)
	assert.Equal(t, models.StateDraft, env.reload(t, tx.ID).State)
}

func TestReceiveNotificationPropagatesGatewayOutage(t *testing.T) {
	env := newTestEnv(t, nil)
	tx := env.createTransaction(t)
	env.gateway.respond(http.StatusBadGateway, `upstream down`)

	ack, err := env.service.ReceiveNotification(context.Background(), payway.Code, payment.Notification{"tran_id": tx.TranID()})
	assert.Error(t, err)
	assert.False(t, payment.IsDomainError(err))
	assert.Equal(t, Acknowledgement, ack)
	assert.Equal(t, models.StateDraft, env.reload(t, tx.ID).State)

	var entry models.NotificationLog
	require.NoError(t, env.db.First(&entry).Error)
	assert.Equal(t, models.NotificationStatusHandleFailed, entry.Status)
}

func TestReceiveNotificationLockHeld(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	env := newTestEnv(t, NewRedisLocker(client, 0, zap.NewNop()))
	tx := env.createTransaction(t)
	require.NoError(t, mr.Set(reconcileLockKey(payway.Code, tx.TranID()), "someone-else"))

	ack, err := env.service.ReceiveNotification(context.Background(), payway.Code, payment.Notification{"tran_id": tx.TranID()})
	assert.NoError(t, err)
	assert.Equal(t, Acknowledgement, ack)
	assert.Zero(t, env.gateway.callCount())
	assert.Equal(t, models.StateDraft, env.reload(t, tx.ID).State)

	mr.Del(reconcileLockKey(payway.Code, tx.TranID()))
	_, err = env.service.ReceiveNotification(context.Background(), payway.Code, payment.Notification{"tran_id": tx.TranID()})
	require.NoError(t, err)
	assert.Equal(t, models.StateDone, env.reload(t, tx.ID).State)
	assert.False(t, mr.Exists(reconcileLockKey(payway.Code, tx.TranID())))
}

func TestReconcileTransaction(t *testing.T) {
	env := newTestEnv(t, nil)
	tx := env.createTransaction(t)

	got, err := env.service.ReconcileTransaction(context.Background(), tx.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateDone, got.State)
	assert.Equal(t, "REF123", got.ProviderReference)

	_, err = env.service.ReconcileTransaction(context.Background(), 999)
	assert.ErrorIs(t, err, payment.ErrTransactionNotFound)
}

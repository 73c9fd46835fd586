package payway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"payway-adapter/internal/models"
	"payway-adapter/internal/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway serves check-transaction-2 with a canned body and records the form.
func fakeGateway(t *testing.T, status int, body string) (*httptest.Server, *[]map[string]string) {
	t.Helper()
	var calls []map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, CheckTransactionPath, r.URL.Path)
		assert.NoError(t, r.ParseForm())
		form := map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		calls = append(calls, form)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestReconcileApproved(t *testing.T) {
	srv, calls := fakeGateway(t, http.StatusOK,
		`{"status":{"code":"00"},"data":{"payment_status_code":"0","apv":"REF123"}}`)
	d := newTestDriver(srv.URL)
	tx := testTransaction()

	err := d.Reconcile(context.Background(), tx, payment.Notification{"tran_id": "42", "status": "3"}, testProvider())
	require.NoError(t, err)

	assert.Equal(t, "REF123", tx.ProviderReference)
	assert.Equal(t, models.StateDone, tx.State)
	assert.Contains(t, tx.StateMessage, "Approved")

	require.Len(t, *calls, 1)
	form := (*calls)[0]
	assert.Equal(t, "20240101000000", form["req_time"])
	assert.Equal(t, "M1", form["merchant_id"])
	assert.Equal(t, "42", form["tran_id"])
	assert.Equal(t,
		"zLxe8XIhbVlpUXbVEEUR0settopKHPlGYLm8Jts7uNtN1n1bLuidNnVp3TfEznk3I5uKPqhK2iniH+J1EKhmyQ==",
		form["hash"],
	)
}

func TestReconcileNumericStatusCode(t *testing.T) {
	srv, _ := fakeGateway(t, http.StatusOK,
		`{"status":{"code":"00","message":"Success!"},"data":{"payment_status_code":2,"payment_status":"PENDING","apv":""}}`)
	tx := testTransaction()

	err := newTestDriver(srv.URL).Reconcile(context.Background(), tx, payment.Notification{"tran_id": "42"}, testProvider())
	require.NoError(t, err)
	assert.Equal(t, models.StatePending, tx.State)
	assert.Contains(t, tx.StateMessage, "PENDING")
}

func TestReconcileGatewayRejects(t *testing.T) {
	srv, _ := fakeGateway(t, http.StatusOK, `{"status":{"code":"01","message":"bad hash"}}`)
	tx := testTransaction()

	err := newTestDriver(srv.URL).Reconcile(context.Background(), tx, payment.Notification{"tran_id": "42"}, testProvider())
	require.NoError(t, err)
	assert.Equal(t, models.StateError, tx.State)
	assert.Contains(t, tx.StateMessage, "bad hash")
	assert.Contains(t, tx.StateMessage, "01")
	assert.Empty(t, tx.ProviderReference)
}

func TestReconcileDeclinedAndUnknown(t *testing.T) {
	srv, _ := fakeGateway(t, http.StatusOK,
		`{"status":{"code":"00"},"data":{"payment_status_code":"3","payment_status":"DECLINED","apv":"REF9"}}`)
	tx := testTransaction()
	require.NoError(t, newTestDriver(srv.URL).Reconcile(context.Background(), tx, payment.Notification{"tran_id": "42"}, testProvider()))
	assert.Equal(t, models.StateError, tx.State)
	assert.Equal(t, "REF9", tx.ProviderReference)

	srv2, _ := fakeGateway(t, http.StatusOK,
		`{"status":{"code":"00"},"data":{"payment_status_code":"999","apv":"REF10"}}`)
	tx2 := testTransaction()
	require.NoError(t, newTestDriver(srv2.URL).Reconcile(context.Background(), tx2, payment.Notification{"tran_id": "42"}, testProvider()))
	assert.Equal(t, models.StateError, tx2.State)
	assert.Contains(t, tx2.StateMessage, "Unknown payment code: 999")
}

func TestReconcileIdempotentAfterDone(t *testing.T) {
	srv, _ := fakeGateway(t, http.StatusOK,
		`{"status":{"code":"00"},"data":{"payment_status_code":"0","apv":"REF123"}}`)
	d := newTestDriver(srv.URL)
	tx := testTransaction()
	n := payment.Notification{"tran_id": "42"}

	require.NoError(t, d.Reconcile(context.Background(), tx, n, testProvider()))
	require.NoError(t, d.Reconcile(context.Background(), tx, n, testProvider()))
	assert.Equal(t, models.StateDone, tx.State)

	// a later pending or failing answer never downgrades a final state
	srvPending, _ := fakeGateway(t, http.StatusOK,
		`{"status":{"code":"00"},"data":{"payment_status_code":"1","apv":"REF123"}}`)
	require.NoError(t, newTestDriver(srvPending.URL).Reconcile(context.Background(), tx, n, testProvider()))
	assert.Equal(t, models.StateDone, tx.State)

	srvReject, _ := fakeGateway(t, http.StatusOK, `{"status":{"code":"01","message":"bad hash"}}`)
	require.NoError(t, newTestDriver(srvReject.URL).Reconcile(context.Background(), tx, n, testProvider()))
	assert.Equal(t, models.StateDone, tx.State)
}

func TestReconcileMissingTranID(t *testing.T) {
	tx := testTransaction()
	err := newTestDriver("http://127.0.0.1:1").Reconcile(context.Background(), tx, payment.Notification{}, testProvider())

	var missing *payment.MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "tran_id", missing.Field)
	assert.Equal(t, models.StateDraft, tx.State)
}

func TestReconcileMismatchedTranID(t *testing.T) {
	tx := testTransaction()
	err := newTestDriver("http://127.0.0.1:1").Reconcile(context.Background(), tx, payment.Notification{"tran_id": "43"}, testProvider())
	assert.ErrorIs(t, err, payment.ErrTransactionNotFound)
}

func TestReconcileProtocolErrors(t *testing.T) {
	bodies := map[string]string{
		"not json":          `<html>oops</html>`,
		"no status":         `{"data":{"payment_status_code":"0"}}`,
		"no data":           `{"status":{"code":"00"}}`,
		"no payment code":   `{"status":{"code":"00"},"data":{"apv":"REF1"}}`,
		"non numeric code":  `{"status":{"code":"00"},"data":{"payment_status_code":"abc","apv":"REF1"}}`,
		"client error page": `bad request`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			status := http.StatusOK
			if name == "client error page" {
				status = http.StatusBadRequest
			}
			srv, _ := fakeGateway(t, status, body)
			tx := testTransaction()

			err := newTestDriver(srv.URL).Reconcile(context.Background(), tx, payment.Notification{"tran_id": "42"}, testProvider())
			var protocol *payment.ProtocolError
			require.ErrorAs(t, err, &protocol)
			assert.True(t, payment.IsDomainError(err))
			assert.Equal(t, models.StateDraft, tx.State)
		})
	}
}

func TestReconcileTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	tx := testTransaction()
	err := newTestDriver(url).Reconcile(context.Background(), tx, payment.Notification{"tran_id": "42"}, testProvider())
	require.Error(t, err)
	assert.False(t, payment.IsDomainError(err))
	assert.Equal(t, models.StateDraft, tx.State)
}

func TestReconcileGatewayServerError(t *testing.T) {
	srv, _ := fakeGateway(t, http.StatusBadGateway, `upstream down`)
	tx := testTransaction()

	err := newTestDriver(srv.URL).Reconcile(context.Background(), tx, payment.Notification{"tran_id": "42"}, testProvider())
	require.Error(t, err)
	assert.False(t, payment.IsDomainError(err))
}

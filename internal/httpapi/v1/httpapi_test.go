package v1

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/fin"
	"fintrack/internal/storage/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func setup(t *testing.T) (*memory.Store, http.Handler, uuid.UUID) {
	t.Helper()
	store := memory.New()
	user := fin.User{ID: uuid.New()}
	store.SeedUser(user)
	h := New(store, testLogger(), "INR").Handler()
	return store, h, user.ID
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode: %v: %s", err, rec.Body.String())
	}
}

func TestIncome_CreateListDelete(t *testing.T) {
	_, h, userID := setup(t)

	rec := do(t, h, http.MethodPost, "/v1/income", map[string]any{
		"user_id":      userID.String(),
		"date":         time.Now().UTC().Format(time.RFC3339),
		"source":       "Salary",
		"amount_minor": 50000,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created incomeResponse
	decode(t, rec, &created)
	if created.Currency != "INR" || created.AmountMinor != 50000 {
		t.Fatalf("unexpected response: %+v", created)
	}

	rec = do(t, h, http.MethodGet, "/v1/income?user_id="+userID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list expected 200, got %d", rec.Code)
	}
	var list []incomeResponse
	decode(t, rec, &list)
	if len(list) != 1 {
		t.Fatalf("expected 1 income, got %d", len(list))
	}

	rec = do(t, h, http.MethodDelete, "/v1/income/"+created.ID.String()+"?user_id="+userID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = do(t, h, http.MethodGet, "/v1/income/"+created.ID.String()+"?user_id="+userID.String(), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestRepaymentFlow(t *testing.T) {
	_, h, userID := setup(t)

	rec := do(t, h, http.MethodPost, "/v1/borrowed", map[string]any{
		"user_id":      userID.String(),
		"date":         time.Now().UTC().Format(time.RFC3339),
		"person_name":  "Asha",
		"amount_minor": 1000,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create borrowed expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// Partial repayment keeps the record pending.
	rec = do(t, h, http.MethodPost, "/v1/repayment", map[string]any{
		"user_id":        userID.String(),
		"date":           time.Now().UTC().Format(time.RFC3339),
		"repayment_type": "Borrowed",
		"paid_to":        "Asha",
		"amount_minor":   400,
		"mode":           "UPI",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("repayment expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var sub submitRepaymentResponse
	decode(t, rec, &sub)
	if sub.UpdatedRecord.RepaidMinor != 400 || sub.UpdatedRecord.Status != fin.StatusPending {
		t.Fatalf("unexpected updated record: %+v", sub.UpdatedRecord)
	}

	// Options still offer the record with the reduced balance.
	rec = do(t, h, http.MethodGet, "/v1/repayment/options?user_id="+userID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("options expected 200, got %d", rec.Code)
	}
	var opts repaymentOptionsResponse
	decode(t, rec, &opts)
	if len(opts.Borrowed) != 1 || opts.Borrowed[0].BalanceMinor != 600 {
		t.Fatalf("unexpected options: %+v", opts)
	}

	// Settling the rest flips the record to Paid and empties the options.
	rec = do(t, h, http.MethodPost, "/v1/repayment", map[string]any{
		"user_id":        userID.String(),
		"date":           time.Now().UTC().Format(time.RFC3339),
		"repayment_type": "Borrowed",
		"paid_to":        "Asha",
		"amount_minor":   600,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("second repayment expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	decode(t, rec, &sub)
	if sub.UpdatedRecord.Status != fin.StatusPaid {
		t.Fatalf("expected Paid, got %s", sub.UpdatedRecord.Status)
	}

	rec = do(t, h, http.MethodGet, "/v1/repayment/options?user_id="+userID.String(), nil)
	decode(t, rec, &opts)
	if len(opts.Borrowed) != 0 {
		t.Fatalf("paid record must not be offered: %+v", opts)
	}

	// Records endpoint replays the full history.
	rec = do(t, h, http.MethodGet, "/v1/repayment/records?user_id="+userID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("records expected 200, got %d", rec.Code)
	}
	var recs repaymentRecordsResponse
	decode(t, rec, &recs)
	if len(recs.Borrowed) != 1 || len(recs.Borrowed[0].History) != 2 {
		t.Fatalf("unexpected records: %+v", recs)
	}
	if recs.Borrowed[0].RemainingMinor != 0 {
		t.Fatalf("expected remaining 0, got %d", recs.Borrowed[0].RemainingMinor)
	}
}

func TestRepayment_Errors(t *testing.T) {
	_, h, userID := setup(t)

	rec := do(t, h, http.MethodPost, "/v1/repayment", map[string]any{
		"user_id":        userID.String(),
		"date":           time.Now().UTC().Format(time.RFC3339),
		"repayment_type": "Borrowed",
		"paid_to":        "Asha",
		"amount_minor":   0,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("zero amount expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodPost, "/v1/repayment", map[string]any{
		"user_id":        userID.String(),
		"date":           time.Now().UTC().Format(time.RFC3339),
		"repayment_type": "Borrowed",
		"paid_to":        "Nobody",
		"amount_minor":   100,
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("no active record expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
	var er errorResponse
	decode(t, rec, &er)
	if !strings.HasPrefix(er.Error, "no active borrowed record found for Nobody") {
		t.Fatalf("unexpected error message: %q", er.Error)
	}
}

func TestDashboardAndTransactions(t *testing.T) {
	_, h, userID := setup(t)
	now := time.Now().UTC().Format(time.RFC3339)

	do(t, h, http.MethodPost, "/v1/income", map[string]any{
		"user_id": userID.String(), "date": now, "source": "Salary", "amount_minor": 500,
	})
	do(t, h, http.MethodPost, "/v1/expense", map[string]any{
		"user_id": userID.String(), "date": now, "category": "Food", "amount_minor": 200, "payment_method": "Cash",
	})

	rec := do(t, h, http.MethodGet, "/v1/dashboard?user_id="+userID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var dash dashboardResponse
	decode(t, rec, &dash)
	if dash.NetBalanceMinor != 300 {
		t.Fatalf("expected net balance 300, got %d", dash.NetBalanceMinor)
	}

	rec = do(t, h, http.MethodGet, "/v1/transactions?user_id="+userID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("transactions expected 200, got %d", rec.Code)
	}
	var txs []transactionResponse
	decode(t, rec, &txs)
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
	var total int64
	for _, tx := range txs {
		total += tx.AmountMinor
	}
	if total != 300 {
		t.Fatalf("signed amounts should net to 300, got %d", total)
	}

	// Delete via the unified ledger.
	var target transactionResponse
	for _, tx := range txs {
		if tx.Kind == fin.KindExpense {
			target = tx
		}
	}
	rec = do(t, h, http.MethodDelete, "/v1/transactions/"+target.ID.String()+"/expense?user_id="+userID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete transaction expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = do(t, h, http.MethodGet, "/v1/transactions?user_id="+userID.String(), nil)
	decode(t, rec, &txs)
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction after delete, got %d", len(txs))
	}
}

func TestForbiddenOnForeignRecord(t *testing.T) {
	store, h, _ := setup(t)
	owner := fin.User{ID: uuid.New()}
	store.SeedUser(owner)
	intruder := uuid.New()

	rec := do(t, h, http.MethodPost, "/v1/expense", map[string]any{
		"user_id":        owner.ID.String(),
		"date":           time.Now().UTC().Format(time.RFC3339),
		"category":       "Food",
		"amount_minor":   100,
		"payment_method": "Cash",
	})
	var created expenseResponse
	decode(t, rec, &created)

	rec = do(t, h, http.MethodGet, "/v1/expense/"+created.ID.String()+"?user_id="+intruder.String(), nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHealthEndpoints(t *testing.T) {
	_, h, _ := setup(t)
	if rec := do(t, h, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/readyz", nil); rec.Code != http.StatusOK {
		t.Fatalf("readyz: %d", rec.Code)
	}
}

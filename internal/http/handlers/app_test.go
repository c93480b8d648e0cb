package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"crowlands/internal/domain"
	"crowlands/internal/grimoire"
	"crowlands/internal/infra/pgxtest"
	"crowlands/internal/ledger"
	"crowlands/internal/middleware"
	"crowlands/internal/orchestrator"
	"crowlands/internal/payments"
	"crowlands/internal/persona"
)

const testUserID = "4f9d8a6e-0000-0000-0000-000000000001"

type fakeGenerator struct {
	result *orchestrator.Result
	err    error
	calls  int
	last   orchestrator.Request
}

func (f *fakeGenerator) Generate(_ context.Context, req orchestrator.Request) (*orchestrator.Result, error) {
	f.calls++
	f.last = req
	return f.result, f.err
}

type fakeConfirmer struct {
	status domain.PaymentStatus
	err    error
	calls  int
}

func (f *fakeConfirmer) CheckOnce(context.Context, string) (domain.PaymentStatus, error) {
	f.calls++
	return f.status, f.err
}

type fakeProcessor struct {
	session payments.CheckoutSession
	err     error
}

func (f *fakeProcessor) CreateSession(context.Context, string, string, string) (payments.CheckoutSession, error) {
	return f.session, f.err
}

func (f *fakeProcessor) SessionStatus(context.Context, string) (domain.PaymentStatus, error) {
	return domain.PaymentPending, nil
}

func newTestApp(t *testing.T, exec *pgxtest.Executor) *App {
	t.Helper()
	if exec == nil {
		exec = &pgxtest.Executor{}
	}
	reg, err := persona.NewRegistry()
	require.NoError(t, err)
	logger := zerolog.Nop()
	return &App{
		Logger:   logger,
		Personas: reg,
		Ledger:   ledger.New(exec, logger, 3),
		Grimoire: grimoire.NewStore(exec, logger),
		Sessions: payments.NewStore(exec, logger),
	}
}

// withURLParam seeds a chi route parameter the way the router would.
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// serve runs the handler with the user already authenticated, the way the
// router's auth middleware would leave the context.
func serve(handler http.HandlerFunc, req *http.Request, userID string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	if userID != "" {
		req = req.WithContext(middleware.ContextWithUserID(req.Context(), userID))
	}
	handler(rec, req)
	return rec
}

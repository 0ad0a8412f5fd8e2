package tracing

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func attr(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestMiddlewareNamesSpanByRoute(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	r := chi.NewRouter()
	r.Use(Middleware(tp))
	r.Get("/gradescales/{id}", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) { http.Error(w, "x", http.StatusBadGateway) })

	req := httptest.NewRequest("GET", "/gradescales/abc", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	r.ServeHTTP(httptest.NewRecorder(), req)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/boom", nil))

	spans := sr.Ended()
	if len(spans) != 2 {
		t.Fatalf("spans: %d", len(spans))
	}
	ok := spans[0]
	if ok.Name() != "GET /gradescales/{id}" {
		t.Fatalf("name %q", ok.Name())
	}
	if v, found := attr(ok.Attributes(), "http.status_code"); !found || v.AsInt64() != 200 {
		t.Fatalf("status attr %v", ok.Attributes())
	}
	if got := ok.Parent().TraceID().String(); got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Fatalf("parent trace %s", got)
	}
	if ok.Status().Code == codes.Error {
		t.Fatalf("200 marked as error")
	}

	if spans[1].Status().Code != codes.Error {
		t.Fatalf("502 status %+v", spans[1].Status())
	}
}

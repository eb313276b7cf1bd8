package httpapi

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestServe_WaitsForInFlightRequests(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	entered := make(chan struct{})
	release := make(chan struct{})
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		w.WriteHeader(http.StatusOK)
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := serve(ctx, &http.Server{Handler: h}, ln, zap.NewNop())

	status := make(chan int, 1)
	go func() {
		resp, err := http.Get("http://" + ln.Addr().String() + "/slow")
		if err != nil {
			status <- 0
			return
		}
		_ = resp.Body.Close()
		status <- resp.StatusCode
	}()

	<-entered
	cancel()
	select {
	case <-done:
		t.Fatal("server stopped while a request was in flight")
	case <-time.After(200 * time.Millisecond):
	}

	close(release)
	if got := <-status; got != http.StatusOK {
		t.Fatalf("in-flight request status = %d", got)
	}
	select {
	case <-done:
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("server did not stop")
	}
}

func TestStart_BadAddr(t *testing.T) {
	if _, err := Start(context.Background(), "127.0.0.1:-1", http.NotFoundHandler(), zap.NewNop()); err == nil {
		t.Fatal("expected listen error")
	}
}

package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/encoding"

	"edgeproxy/domain"
)

// rawMessage is a gRPC message whose wire bytes are exactly its payload, so
// an end-to-end call can run without .proto-generated types. The codec is
// registered under a content-subtype distinct from "proto" so it never
// shadows any real protobuf traffic elsewhere in the process.
type rawMessage []byte

type rawCodec struct{}

func (rawCodec) Marshal(v any) ([]byte, error) {
	m, ok := v.(*rawMessage)
	if !ok {
		return nil, fmt.Errorf("rawCodec: unsupported type %T", v)
	}
	return *m, nil
}

func (rawCodec) Unmarshal(data []byte, v any) error {
	m, ok := v.(*rawMessage)
	if !ok {
		return fmt.Errorf("rawCodec: unsupported type %T", v)
	}
	*m = append((*m)[:0], data...)
	return nil
}

func (rawCodec) Name() string { return "edgeproxytest" }

func init() {
	encoding.RegisterCodec(rawCodec{})
}

// greeterBackend is a minimal gRPC server answering a single streaming
// method with a fixed reply, standing in for Greeter.SayHello without any
// generated stub. It accepts any method name via UnknownServiceHandler,
// since the proxy strips the gRPC route's prefix before forwarding and this
// test only cares about the reply payload.
func newGreeterBackend(t *testing.T, reply string) *grpc.Server {
	t.Helper()
	srv := grpc.NewServer(grpc.UnknownServiceHandler(func(_ any, stream grpc.ServerStream) error {
		var req rawMessage
		if err := stream.RecvMsg(&req); err != nil {
			return err
		}
		resp := rawMessage(reply)
		return stream.SendMsg(&resp)
	}))
	return srv
}

func TestScenario_S1_HTTPPassthrough(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/hello" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"message":"hello from backend"}`))
	}))
	t.Cleanup(backend.Close)

	d := newTestDispatcher(t, backend.URL, "http://127.0.0.1:1")
	front := httptest.NewServer(d)
	t.Cleanup(front.Close)

	resp, err := http.Get(front.URL + "/api/hello")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"message":"hello from backend"}`, string(body))
}

func TestScenario_S2_GRPCRoundRobin(t *testing.T) {
	serverA := newGreeterBackend(t, "Hello from backend-a")
	serverB := newGreeterBackend(t, "Hello from backend-b")

	h2sA := &http2.Server{}
	h2sB := &http2.Server{}
	backendA := httptest.NewServer(h2c.NewHandler(serverA, h2sA))
	backendB := httptest.NewServer(h2c.NewHandler(serverB, h2sB))
	t.Cleanup(backendA.Close)
	t.Cleanup(backendB.Close)
	t.Cleanup(serverA.Stop)
	t.Cleanup(serverB.Stop)

	destA, err := domain.NewDestination("a", backendA.URL)
	require.NoError(t, err)
	destB, err := domain.NewDestination("b", backendB.URL)
	require.NoError(t, err)

	routes := []domain.Route{domain.NewRoute("/grpc/", "grpc", domain.RouteGRPC, true)}
	cfg, err := domain.NewProxyConfig(routes, []domain.Cluster{
		{ID: "grpc", Destinations: []domain.Destination{destA, destB}},
	})
	require.NoError(t, err)

	provider := staticConfigProviderStub{cfg: cfg}
	dispatcher := NewDispatcher(provider, NewRouteMatcher(cfg.Routes), NewRoundRobinBalancer(), NewRequestForwarder(NewUpstreamClient(), log.NewNopLogger()), log.NewNopLogger())

	h2sFront := &http2.Server{}
	front := httptest.NewServer(h2c.NewHandler(dispatcher, h2sFront))
	t.Cleanup(front.Close)

	conn, err := grpc.NewClient(front.URL[len("http://"):], grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	var messages []string
	for i := 0; i < 6; i++ {
		var reply rawMessage
		err := conn.Invoke(context.Background(), "/grpc/Greeter/SayHello", rawMessageOf(fmt.Sprintf("test-%d", i)), &reply, grpc.CallContentSubtype(rawCodec{}.Name()))
		require.NoError(t, err)
		messages = append(messages, string(reply))
	}

	assert.Len(t, messages, 6)
	var sawA, sawB bool
	for _, m := range messages {
		if m == "Hello from backend-a" {
			sawA = true
		}
		if m == "Hello from backend-b" {
			sawB = true
		}
	}
	assert.True(t, sawA, "expected at least one reply from backend-a")
	assert.True(t, sawB, "expected at least one reply from backend-b")
}

func rawMessageOf(s string) *rawMessage {
	m := rawMessage(s)
	return &m
}

func TestScenario_S5_Unroutable(t *testing.T) {
	d := newTestDispatcher(t, "http://127.0.0.1:1", "http://127.0.0.1:1")
	front := httptest.NewServer(d)
	t.Cleanup(front.Close)

	resp, err := http.Get(front.URL + "/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestScenario_S6_EmptyCluster(t *testing.T) {
	routes := []domain.Route{domain.NewRoute("/api/", "api", domain.RouteHTTP, false)}
	cfg, err := domain.NewProxyConfig(routes, []domain.Cluster{{ID: "api"}})
	require.NoError(t, err)
	d := NewDispatcher(
		staticConfigProviderStub{cfg: cfg},
		NewRouteMatcher(cfg.Routes),
		NewRoundRobinBalancer(),
		NewRequestForwarder(NewUpstreamClient(), log.NewNopLogger()),
		log.NewNopLogger(),
	)
	front := httptest.NewServer(d)
	t.Cleanup(front.Close)

	resp, err := http.Get(front.URL + "/api/anything")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

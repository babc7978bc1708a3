package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/catalog/internal/domain/ranking"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/shared/stream"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/shared/types"
)

type fakeEngine struct {
	results *stream.Value[ranking.Result]

	mu        sync.Mutex
	query     string
	activated []string
}

func (f *fakeEngine) Watch(ctx context.Context) <-chan ranking.Result {
	return f.results.Subscribe(ctx)
}

func (f *fakeEngine) SetQuery(query string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.query = query
	return nil
}

func (f *fakeEngine) Activate(_ context.Context, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activated = append(f.activated, itemID)
	return nil
}

func (f *fakeEngine) SecondaryActivate(context.Context, string) error {
	return types.ErrUnsupported
}

// frame mirrors message with a decodable result.
type frame struct {
	Type    string `json:"type"`
	ConnID  string `json:"conn_id"`
	Action  string `json:"action"`
	ItemID  string `json:"item_id"`
	Message string `json:"message"`
	Result  *struct {
		Items []types.ItemInfo `json:"items"`
		Query string           `json:"query"`
	} `json:"result"`
	Request *types.StartRequest `json:"request"`
}

func setup(t *testing.T) (*Hub, *fakeEngine, *monitoring.Metrics, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	metrics := monitoring.NewMetrics()
	hub := NewHub(nil).WithMetrics(metrics)
	eng := &fakeEngine{results: stream.NewValue[ranking.Result]()}

	router := gin.New()
	router.GET("/stream", NewHandler(hub, eng, nil).HandleConnection)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return hub, eng, metrics, "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	first := read(t, conn)
	require.Equal(t, msgConnected, first.Type)
	assert.NotEmpty(t, first.ConnID)
	return conn
}

func read(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

// readType skips frames until one of type typ arrives.
func readType(t *testing.T, conn *websocket.Conn, typ string) frame {
	t.Helper()
	for {
		f := read(t, conn)
		if f.Type == typ {
			return f
		}
	}
}

func mail() types.Application {
	return types.NewApplication(types.AppRecord{
		Label:     "Mail",
		UserScope: "0",
		Component: types.ComponentName{Package: "org.mail", Class: "Inbox"},
	})
}

func TestStreamSendsResults(t *testing.T) {
	_, eng, _, url := setup(t)
	conn := dial(t, url)

	eng.results.Publish(ranking.Result{Items: []types.LaunchItem{mail()}, Query: "ma"})

	f := readType(t, conn, msgResult)
	require.NotNil(t, f.Result)
	require.Len(t, f.Result.Items, 1)
	assert.Equal(t, "Mail", f.Result.Items[0].Label)
	assert.Equal(t, "ma", f.Result.Query)
}

func TestStreamMessages(t *testing.T) {
	_, eng, _, url := setup(t)
	conn := dial(t, url)

	require.NoError(t, conn.WriteJSON(message{Type: msgQuery, Query: "mail"}))
	ack := readType(t, conn, msgAck)
	assert.Equal(t, msgQuery, ack.Action)

	require.NoError(t, conn.WriteJSON(message{Type: msgActivate, ItemID: "0/org.mail/Inbox"}))
	ack = readType(t, conn, msgAck)
	assert.Equal(t, "0/org.mail/Inbox", ack.ItemID)

	require.NoError(t, conn.WriteJSON(message{Type: msgSecondary, ItemID: "aSettings"}))
	errFrame := readType(t, conn, msgError)
	assert.Contains(t, errFrame.Message, "not supported")

	require.NoError(t, conn.WriteJSON(message{Type: msgPing}))
	readType(t, conn, msgPong)

	require.NoError(t, conn.WriteJSON(message{Type: "bogus"}))
	errFrame = readType(t, conn, msgError)
	assert.Equal(t, "unknown message type", errFrame.Message)

	eng.mu.Lock()
	defer eng.mu.Unlock()
	assert.Equal(t, "mail", eng.query)
	assert.Equal(t, []string{"0/org.mail/Inbox"}, eng.activated)
}

func TestHubBroadcastsStartRequests(t *testing.T) {
	hub, _, metrics, url := setup(t)
	a := dial(t, url)
	b := dial(t, url)
	require.Eventually(t, func() bool { return hub.Clients() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.WSConnections))

	req := mail().LaunchRequest()
	require.NoError(t, hub.Start(context.Background(), req))

	for _, conn := range []*websocket.Conn{a, b} {
		f := readType(t, conn, msgStart)
		require.NotNil(t, f.Request)
		assert.Equal(t, req, *f.Request)
	}

	a.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)
}

func TestHubStartWithoutClients(t *testing.T) {
	hub := NewHub(nil)

	assert.NoError(t, hub.Start(context.Background(), mail().LaunchRequest()))
	assert.Zero(t, hub.Clients())
}

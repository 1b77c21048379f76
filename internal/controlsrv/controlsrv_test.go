package controlsrv

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/birchlabs/irengine/internal/acstate"
	"github.com/birchlabs/irengine/internal/actions"
	"github.com/birchlabs/irengine/internal/ircode"
	"github.com/birchlabs/irengine/internal/kvstore"
	"github.com/birchlabs/irengine/internal/learn"
	"github.com/birchlabs/irengine/internal/orchestrator"
	"github.com/birchlabs/irengine/internal/protocol"
	"github.com/birchlabs/irengine/internal/pulse"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct{}

func (fakeSink) SetCarrier(ctx context.Context, freqHz int, dutyFraction float64) error { return nil }
func (fakeSink) Emit(ctx context.Context, buf pulse.Buffer) error                        { return nil }
func (fakeSink) WaitComplete(ctx context.Context) error                                 { return nil }

func newTestServer(t *testing.T) (*httptest.Server, *actions.Store) {
	t.Helper()
	store := actions.New(kvstore.NewMemStore())
	ac := acstate.New(kvstore.NewMemStore())
	require.NoError(t, ac.Init())
	require.NoError(t, ac.SetProtocol(protocol.Carrier, ""))
	orch := orchestrator.New(store, noopSource{}, learn.New(), orchestrator.Callbacks{})
	s := New(store, ac, orch, fakeSink{})

	ts := httptest.NewServer(s.Handler())
	return ts, store
}

type noopSource struct{}

func (noopSource) Rearm(ctx context.Context) error { return nil }

func dial(t *testing.T, ts *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestServer_ExecuteUnsavedActionReturnsError(t *testing.T) {
	ts, _ := newTestServer(t)
	defer ts.Close()
	conn := dial(t, ts, "/tv")
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(Mutation{Param: "Power", Value: []byte(`null`)}))

	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "error", ev.Type)
}

func TestServer_ExecuteSavedActionAcks(t *testing.T) {
	ts, store := newTestServer(t)
	defer ts.Close()
	require.NoError(t, store.Save(actions.TV, actions.ActionPower, ircode.Code{Protocol: protocol.NEC, Data: 1, Bits: 32}))

	conn := dial(t, ts, "/tv")
	defer conn.Close()
	require.NoError(t, conn.WriteJSON(Mutation{Param: "Power", Value: []byte(`null`)}))

	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "ack", ev.Type)
}

func TestServer_ACSetPowerAcks(t *testing.T) {
	ts, _ := newTestServer(t)
	defer ts.Close()
	conn := dial(t, ts, "/ac")
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(Mutation{Param: "Power", Value: []byte(`true`)}))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "ack", ev.Type)
}

func TestServer_LearnModeArmsLearner(t *testing.T) {
	ts, _ := newTestServer(t)
	defer ts.Close()
	conn := dial(t, ts, "/tv")
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(Mutation{Param: "Learn_Mode", Value: []byte(`"Power"`)}))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "ack", ev.Type)
	assert.NotEmpty(t, ev.Message)
}

func TestServer_LearnModeNoneIsRejected(t *testing.T) {
	ts, _ := newTestServer(t)
	defer ts.Close()
	conn := dial(t, ts, "/tv")
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(Mutation{Param: "Learn_Mode", Value: []byte(`"None"`)}))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "error", ev.Type)
}

func TestCallbacks_OnLearnFailNotifies(t *testing.T) {
	var got learn.Target
	cb := Callbacks(func(t learn.Target, ev Event) { got = t })
	cb.OnLearnFail(learn.Target{Device: "tv", Action: "Power"})
	assert.Equal(t, "tv", got.Device)
}

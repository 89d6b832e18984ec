package swapprovider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestStreamSubscribeAndReceiveUpdate(t *testing.T) {
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		var got wireEnvelope
		require.NoError(t, conn.ReadJSON(&got))
		require.Equal(t, "subscribe", got.Op)
		require.Equal(t, []string{"swap-1"}, got.Args)

		update := map[string]interface{}{
			"event": "update",
			"args": []interface{}{
				map[string]interface{}{"id": "swap-1", "status": "transaction.mempool"},
			},
		}
		require.NoError(t, conn.WriteJSON(update))
		time.Sleep(50 * time.Millisecond)
	}))
	defer srv.Close()

	c := New(srv.URL)
	stream, err := c.Dial(context.Background())
	require.NoError(t, err)
	defer stream.Close()

	require.NoError(t, stream.Subscribe([]string{"swap-1"}))

	select {
	case update := <-stream.Updates():
		require.Equal(t, "swap-1", update.ID)
		require.Equal(t, "transaction.mempool", string(update.Status))
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for update")
	}
}

func TestWireEnvelopeIgnoresMalformedFrames(t *testing.T) {
	var env inboundEnvelope
	err := json.Unmarshal([]byte(`{"event":"update","args":["not-an-object"]}`), &env)
	require.NoError(t, err)
	require.Equal(t, "update", env.Event)
}

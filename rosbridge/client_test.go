// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rosbridge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/net/websocket"

	"github.com/bureau-foundation/turtlebridge/lib/testutil"
)

const testTimeout = 5 * time.Second

// fakeServer is a minimal rosbridge server. It records every frame it
// receives and answers each subscribe with one publish on that topic.
type fakeServer struct {
	server *httptest.Server
	frames chan frame
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fake := &fakeServer{frames: make(chan frame, 32)}
	fake.server = httptest.NewServer(websocket.Handler(func(conn *websocket.Conn) {
		for {
			var incoming frame
			if err := websocket.JSON.Receive(conn, &incoming); err != nil {
				return
			}
			fake.frames <- incoming
			if incoming.Op == opSubscribe {
				reply := frame{
					Op:    opPublish,
					Topic: incoming.Topic,
					Msg:   json.RawMessage(`{"count": 5, "label": "from-robot"}`),
				}
				if err := websocket.JSON.Send(conn, reply); err != nil {
					return
				}
			}
		}
	}))
	t.Cleanup(fake.server.Close)
	return fake
}

func (f *fakeServer) url() string {
	return "ws" + strings.TrimPrefix(f.server.URL, "http")
}

func TestClientSubscribeAndPublish(t *testing.T) {
	fake := newFakeServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	client, err := Dial(ctx, ClientConfig{URL: fake.url(), Logger: discardLogger()})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	received := make(chan json.RawMessage, 4)
	err = client.Subscribe("/counter", "std_msgs/Counter", SubscribeOptions{ThrottleRate: 500}, func(message json.RawMessage) {
		received <- message
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	subscribe := testutil.RequireReceive(t, fake.frames, testTimeout, "waiting for subscribe frame")
	if subscribe.Op != opSubscribe || subscribe.Topic != "/counter" || subscribe.Type != "std_msgs/Counter" || subscribe.ThrottleRate != 500 {
		t.Errorf("subscribe frame = %+v", subscribe)
	}

	message := testutil.RequireReceive(t, received, testTimeout, "waiting for delivered message")
	var decoded counterMessage
	if err := json.Unmarshal(message, &decoded); err != nil {
		t.Fatalf("decoding delivered message: %v", err)
	}
	if decoded.Count != 5 || decoded.Label != "from-robot" {
		t.Errorf("delivered %+v", decoded)
	}

	for i := 0; i < 2; i++ {
		if err := client.Publish("/goal", "std_msgs/Counter", counterMessage{Count: i}); err != nil {
			t.Fatalf("Publish %d: %v", i, err)
		}
	}

	advertise := testutil.RequireReceive(t, fake.frames, testTimeout, "waiting for advertise frame")
	if advertise.Op != opAdvertise || advertise.Topic != "/goal" || advertise.Type != "std_msgs/Counter" {
		t.Errorf("advertise frame = %+v", advertise)
	}
	for i := 0; i < 2; i++ {
		publish := testutil.RequireReceive(t, fake.frames, testTimeout, "waiting for publish frame %d", i)
		if publish.Op != opPublish || publish.Topic != "/goal" {
			t.Fatalf("frame %d = %+v, want publish on /goal (advertised once)", i, publish)
		}
		var published counterMessage
		if err := json.Unmarshal(publish.Msg, &published); err != nil {
			t.Fatalf("decoding published message: %v", err)
		}
		if published.Count != i {
			t.Errorf("published count %d, want %d", published.Count, i)
		}
	}
}

func TestClientSecondHandlerDoesNotResubscribe(t *testing.T) {
	fake := newFakeServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	client, err := Dial(ctx, ClientConfig{URL: fake.url(), Logger: discardLogger()})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	first := make(chan json.RawMessage, 4)
	second := make(chan json.RawMessage, 4)
	if err := client.Subscribe("/counter", "std_msgs/Counter", SubscribeOptions{}, func(m json.RawMessage) { first <- m }); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	testutil.RequireReceive(t, fake.frames, testTimeout, "waiting for subscribe frame")
	testutil.RequireReceive(t, first, testTimeout, "waiting for first handler")

	if err := client.Subscribe("/counter", "std_msgs/Counter", SubscribeOptions{}, func(m json.RawMessage) { second <- m }); err != nil {
		t.Fatalf("second Subscribe: %v", err)
	}
	// A publish after the second Subscribe is the next frame the server
	// sees; a duplicate subscribe would arrive first.
	if err := client.Publish("/marker", "std_msgs/Empty", struct{}{}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	next := testutil.RequireReceive(t, fake.frames, testTimeout, "waiting for marker advertise")
	if next.Op != opAdvertise || next.Topic != "/marker" {
		t.Fatalf("next frame = %+v, want advertise of /marker", next)
	}
}

func TestClientCloseEndsReadLoop(t *testing.T) {
	fake := newFakeServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	client, err := Dial(ctx, ClientConfig{URL: fake.url(), Logger: discardLogger()})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	if client.Err() != nil {
		t.Fatalf("Err() on open connection = %v", client.Err())
	}

	client.Close()
	testutil.RequireClosed(t, client.Done(), testTimeout, "read loop did not exit")
	if !errors.Is(client.Err(), ErrClosed) {
		t.Errorf("Err() = %v, want ErrClosed", client.Err())
	}
	if err := client.Publish("/goal", "std_msgs/Empty", struct{}{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Publish after Close = %v, want ErrClosed", err)
	}
}

func TestDialRequiresLogger(t *testing.T) {
	if _, err := Dial(context.Background(), ClientConfig{URL: "ws://127.0.0.1:1"}); err == nil {
		t.Fatal("expected error without logger")
	}
}

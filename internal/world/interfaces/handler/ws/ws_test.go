package ws

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/Chinaskijl/stttg/internal/shared/transport"
	"github.com/Chinaskijl/stttg/internal/shared/transport/ws"
	"github.com/Chinaskijl/stttg/internal/world/actors"
	"github.com/Chinaskijl/stttg/internal/world/app"
	"github.com/Chinaskijl/stttg/internal/world/entity"
	"github.com/Chinaskijl/stttg/internal/world/interfaces/handler/handlertest"
	"github.com/Chinaskijl/stttg/modules/kit/logx"
)

type fakeConn struct {
	frames [][]byte
	full   bool
}

func (c *fakeConn) ID() string              { return "viewer-1" }
func (c *fakeConn) SetProperty(string, any) {}
func (c *fakeConn) GetProperty(string) any  { return nil }
func (c *fakeConn) RemoveProperty(string)   {}
func (c *fakeConn) Addr() string            { return "127.0.0.1:5000" }
func (c *fakeConn) Push(string, any) bool   { return !c.full }
func (c *fakeConn) Close()                  {}
func (c *fakeConn) Done() <-chan struct{}   { return nil }
func (c *fakeConn) SendRaw(frame []byte) bool {
	if c.full {
		return false
	}
	c.frames = append(c.frames, frame)
	return true
}

func TestOnConnect_PushesStateThenCities(t *testing.T) {
	h := NewWsHandler(&handlertest.World{}, logx.Nop())
	conn := &fakeConn{}
	h.OnConnect(context.Background(), conn)

	if len(conn.frames) != 2 {
		t.Fatalf("frames=%d", len(conn.frames))
	}
	var first actors.GameUpdate
	if err := json.Unmarshal(conn.frames[0], &first); err != nil || first.Type != actors.EventGameUpdate {
		t.Fatalf("first=%s err=%v", conn.frames[0], err)
	}
	var second actors.CitiesUpdate
	if err := json.Unmarshal(conn.frames[1], &second); err != nil || second.Type != actors.EventCitiesUpdate || len(second.Cities) != 1 {
		t.Fatalf("second=%s err=%v", conn.frames[1], err)
	}
}

func TestOnConnect_WorldUnavailable(t *testing.T) {
	h := NewWsHandler(&handlertest.World{Err: app.ErrUnavailable}, logx.Nop())
	conn := &fakeConn{}
	h.OnConnect(context.Background(), conn)
	if len(conn.frames) != 0 {
		t.Fatalf("frames=%d", len(conn.frames))
	}
}

func TestCommands(t *testing.T) {
	r := ws.NewRouter(logx.Nop())
	w := &handlertest.World{}
	NewWsHandler(w, logx.Nop()).RegisterRoutes(r)

	dispatch := func(name string, msg any) *ws.RespBody {
		resp := &ws.WsMsgResp{Body: &ws.RespBody{Seq: 3, Name: name}}
		r.Dispatch(&ws.WsMsgReq{Body: &ws.ReqBody{Seq: 3, Name: name, Msg: msg}, Conn: &fakeConn{}}, resp)
		return resp.Body
	}

	if body := dispatch("city.list", nil); body.Code != transport.OK {
		t.Fatalf("city.list=%+v", body)
	} else if cities, ok := body.Msg.([]entity.Settlement); !ok || len(cities) != 1 {
		t.Fatalf("city.list msg=%v", body.Msg)
	}
	if body := dispatch("game.state", nil); body.Code != transport.OK {
		t.Fatalf("game.state=%+v", body)
	}
	if body := dispatch("market.listings", nil); body.Code != transport.OK {
		t.Fatalf("market.listings=%+v", body)
	}
	if body := dispatch("market.prices", map[string]any{"resource": "steel", "days": float64(4)}); body.Code != transport.OK || w.Days != 4 {
		t.Fatalf("market.prices=%+v days=%d", body, w.Days)
	}
	if body := dispatch("market.prices", map[string]any{"resource": "mithril"}); body.Code != transport.InvalidParam || body.Msg != "unknown resource" {
		t.Fatalf("unknown resource=%+v", body)
	}
}

func TestCommands_Unavailable(t *testing.T) {
	r := ws.NewRouter(logx.Nop())
	NewWsHandler(&handlertest.World{Err: app.ErrUnavailable}, logx.Nop()).RegisterRoutes(r)

	resp := &ws.WsMsgResp{Body: &ws.RespBody{}}
	r.Dispatch(&ws.WsMsgReq{Body: &ws.ReqBody{Name: "game.state"}}, resp)
	if resp.Body.Code != transport.Unavailable {
		t.Fatalf("code=%d", resp.Body.Code)
	}
}

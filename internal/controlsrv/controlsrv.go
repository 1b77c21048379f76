// Package controlsrv implements the controller surface from §6: one
// websocket endpoint per logical device, each connection a write-only
// stream of parameter mutations that this server maps onto either an
// action-store invocation (§4.H) or an AC-state setter (§4.G). Modeled
// on the teacher's src/kissutil.go/src/appserver.go request-dispatch
// loop, retargeted from an AGWPE TCP command socket onto
// gorilla/websocket frames, with a google/uuid session token generated
// per connection and returned in the ack of a Learn_Mode request.
package controlsrv

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/birchlabs/irengine/internal/acstate"
	"github.com/birchlabs/irengine/internal/actions"
	"github.com/birchlabs/irengine/internal/ircode"
	"github.com/birchlabs/irengine/internal/learn"
	"github.com/birchlabs/irengine/internal/logx"
	"github.com/birchlabs/irengine/internal/orchestrator"
	"github.com/birchlabs/irengine/internal/transmit"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Mutation is one parameter write from a controller client (§6:
// "write-only channel of parameter mutations").
type Mutation struct {
	// Param is the parameter name, e.g. "Power", "Vol+", "Learn_Mode".
	Param string `json:"param"`
	// Value carries a bool/number/string depending on Param; Learn_Mode
	// and Learn_Protocol carry the action/protocol name to arm.
	Value json.RawMessage `json:"value"`
	// Repeat, when non-zero, requests §4.H's execute_repeat instead of
	// a single execute; IntervalMS of 0 falls back to the protocol's
	// catalogued repeat period.
	Repeat     int `json:"repeat,omitempty"`
	IntervalMS int `json:"interval_ms,omitempty"`
}

// Event is what the server writes back down a connection in reply to
// each mutation ("ack" or "error"), and what Callbacks passes to its
// notify function ("learn_success" or "learn_fail").
type Event struct {
	Type    string `json:"type"` // "ack", "error", "learn_success", "learn_fail", "receive"
	Message string `json:"message,omitempty"`
}

// Server wires the action store, AC state, orchestrator, and a
// transmit sink together behind one websocket endpoint per device
// type.
type Server struct {
	store *actions.Store
	ac    *acstate.AC
	orch  *orchestrator.Orchestrator
	sink  transmit.Sink

	upgrader websocket.Upgrader
}

// New constructs a Server. sink is the pulse-sink every action
// execute/AC setter transmits through.
func New(store *actions.Store, ac *acstate.AC, orch *orchestrator.Orchestrator, sink transmit.Sink) *Server {
	return &Server{
		store:    store,
		ac:       ac,
		orch:     orch,
		sink:     sink,
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
	}
}

// Handler returns an http.Handler exposing one endpoint per device
// type under its prefix, e.g. "/tv", "/ac", "/stb", "/spk", "/fan",
// "/cst".
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	for _, d := range []actions.DeviceType{actions.TV, actions.AC, actions.STB, actions.Speaker, actions.Fan, actions.Custom} {
		device := d
		mux.HandleFunc("/"+device.Prefix(), func(w http.ResponseWriter, r *http.Request) {
			s.serveDevice(w, r, device)
		})
	}
	return mux
}

func (s *Server) serveDevice(w http.ResponseWriter, r *http.Request, device actions.DeviceType) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	log := logx.WithDevice(device.Prefix())
	sessionID := uuid.New()

	for {
		var m Mutation
		if err := conn.ReadJSON(&m); err != nil {
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		ev := s.apply(ctx, device, sessionID, m)
		cancel()
		if err := conn.WriteJSON(ev); err != nil {
			log.Warn("controlsrv: write failed", "err", err)
			return
		}
	}
}

// apply maps one mutation to an action invocation or AC setter, per
// the device/parameter table in §6.
func (s *Server) apply(ctx context.Context, device actions.DeviceType, sessionID uuid.UUID, m Mutation) Event {
	if m.Param == "Learn_Mode" || m.Param == "Learn_Protocol" {
		return s.applyLearn(device, sessionID, m)
	}

	if device == actions.AC {
		if ev, handled := s.applyACParam(ctx, m); handled {
			return ev
		}
	}

	tag, ok := actionFromParam(m.Param)
	if !ok {
		return Event{Type: "error", Message: "unknown parameter: " + m.Param}
	}
	if m.Repeat > 0 {
		if err := s.store.ExecuteRepeat(ctx, s.sink, device, tag, m.Repeat, m.IntervalMS); err != nil {
			return Event{Type: "error", Message: err.Error()}
		}
		return Event{Type: "ack"}
	}
	if err := s.store.Execute(ctx, s.sink, device, tag); err != nil {
		return Event{Type: "error", Message: err.Error()}
	}
	return Event{Type: "ack"}
}

func (s *Server) applyLearn(device actions.DeviceType, sessionID uuid.UUID, m Mutation) Event {
	var name string
	if err := json.Unmarshal(m.Value, &name); err != nil || name == "" || name == "None" {
		return Event{Type: "error", Message: "Learn_Mode requires a non-None action name"}
	}
	if device == actions.AC && name == "Auto-Detect" {
		return Event{Type: "ack", Message: sessionID.String()}
	}
	tag, ok := actions.ActionFromName(name)
	if !ok {
		return Event{Type: "error", Message: "unknown action: " + name}
	}
	if err := s.store.Learn(s.orch.Learner(), device, tag, 30*time.Second, false); err != nil {
		return Event{Type: "error", Message: err.Error()}
	}
	return Event{Type: "ack", Message: sessionID.String()}
}

// applyACParam handles the AC device's Power (bool), Temperature
// (16..30) and Swing (bool) parameters. Mode and Fan_Speed are not
// handled here; they fall through to actionFromParam, which does not
// know them either, so apply answers them with an "unknown parameter"
// error.
func (s *Server) applyACParam(ctx context.Context, m Mutation) (Event, bool) {
	switch m.Param {
	case "Power":
		var on bool
		if err := json.Unmarshal(m.Value, &on); err != nil {
			return errEvent(err), true
		}
		p := acstate.PowerOff
		if on {
			p = acstate.PowerOn
		}
		return ackOrErr(s.ac.SetPower(ctx, s.sink, p)), true
	case "Temperature":
		var t int
		if err := json.Unmarshal(m.Value, &t); err != nil {
			return errEvent(err), true
		}
		return ackOrErr(s.ac.SetTemperature(ctx, s.sink, t)), true
	case "Swing":
		var on bool
		if err := json.Unmarshal(m.Value, &on); err != nil {
			return errEvent(err), true
		}
		sw := acstate.SwingOff
		if on {
			sw = acstate.SwingOn
		}
		return ackOrErr(s.ac.SetSwing(ctx, s.sink, sw)), true
	}
	return Event{}, false
}

func ackOrErr(err error) Event {
	if err != nil {
		return errEvent(err)
	}
	return Event{Type: "ack"}
}

func errEvent(err error) Event {
	return Event{Type: "error", Message: err.Error()}
}

func actionFromParam(param string) (actions.ActionTag, bool) {
	names := map[string]actions.ActionTag{
		"Power": actions.ActionPower, "Vol+": actions.ActionVolUp, "Vol-": actions.ActionVolDown,
		"Mute": actions.ActionMute, "Ch+": actions.ActionChUp, "Ch-": actions.ActionChDown,
		"Input": actions.ActionInput, "Menu": actions.ActionMenu, "OK": actions.ActionOK,
		"Back": actions.ActionBack, "Guide": actions.ActionGuide, "Play_Pause": actions.ActionPlayPause,
	}
	tag, ok := names[param]
	return tag, ok
}

// Callbacks maps the orchestrator's learn callbacks onto notify as
// "learn_success"/"learn_fail" events, keyed by the learner's target,
// for a caller that passes the result to orchestrator.New. OnReceive
// is left nil.
func Callbacks(notify func(learn.Target, Event)) orchestrator.Callbacks {
	return orchestrator.Callbacks{
		OnLearnSuccess: func(t learn.Target, g learn.Grade, c ircode.Code) {
			notify(t, Event{Type: "learn_success"})
		},
		OnLearnFail: func(t learn.Target) {
			notify(t, Event{Type: "learn_fail"})
		},
	}
}

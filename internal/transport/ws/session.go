package ws

import (
	"encoding/json"
	"fmt"

	"datafixer.ai/internal/datafix"
	"datafixer.ai/internal/protocol"
)

// session is one world load. It is driven by a single reader goroutine.
type session struct {
	id       string
	worldID  string
	decision datafix.Decision
	engine   *datafix.Engine // nil when the gate is closed

	fired int
	hits  map[string]map[string]int
	done  bool
}

func newSession(id string, reg *datafix.Registry, hello protocol.HelloMsg) *session {
	stored, has := 0, hello.StoredVersion != nil
	if has {
		stored = *hello.StoredVersion
	}
	sess := &session{
		id:       id,
		worldID:  hello.WorldID,
		decision: datafix.ShouldRun(stored, has, hello.SpecialMode),
		hits:     map[string]map[string]int{},
	}
	if sess.decision.Run {
		sess.engine = datafix.NewEngine(reg, sess.decision.Previous, datafix.ModList(hello.ModList),
			datafix.WithObserver(sess.observe))
	}
	return sess
}

func (s *session) observe(h datafix.Hit) {
	byFix := s.hits[h.Kind.String()]
	if byFix == nil {
		byFix = map[string]int{}
		s.hits[h.Kind.String()] = byFix
	}
	byFix[h.Fix]++
	s.fired++
}

func (s *session) gate() protocol.GateMsg {
	active := map[string]int{}
	for _, k := range datafix.Kinds {
		n := 0
		if s.engine != nil {
			n = s.engine.Active(k)
		}
		active[k.String()] = n
	}
	return protocol.GateMsg{
		Type:            protocol.TypeGate,
		ProtocolVersion: protocol.Version,
		SessionID:       s.id,
		Run:             s.decision.Run,
		PreviousVersion: s.decision.Previous,
		PreviousName:    datafix.VersionName(s.decision.Previous),
		Newer:           s.decision.Newer(),
		ActiveFixes:     active,
	}
}

// handle answers one client message. done is set once the session has
// committed.
func (s *session) handle(msg []byte) (reply any, done bool) {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return protocol.NewError(protocol.ErrProtoBadRequest, "invalid json", 0), false
	}
	if base.ProtocolVersion != protocol.Version {
		return protocol.NewError(protocol.ErrProtoBadRequest, "bad protocol_version", 0), false
	}
	switch base.Type {
	case protocol.TypeRecord:
		if err := protocol.Validate(protocol.TypeRecord, msg); err != nil {
			return protocol.NewError(protocol.ErrBadRequest, err.Error(), seqOf(msg)), false
		}
		var rec protocol.RecordMsg
		if err := json.Unmarshal(msg, &rec); err != nil {
			return protocol.NewError(protocol.ErrBadRequest, err.Error(), seqOf(msg)), false
		}
		return s.safeFix(rec), false

	case protocol.TypeDone:
		if err := protocol.Validate(protocol.TypeDone, msg); err != nil {
			return protocol.NewError(protocol.ErrBadRequest, err.Error(), 0), false
		}
		s.done = true
		return protocol.CommitMsg{
			Type:            protocol.TypeCommit,
			ProtocolVersion: protocol.Version,
			Version:         datafix.VersionCurrent,
			Fired:           s.fired,
			Hits:            s.hits,
		}, true

	case protocol.TypeHello:
		return protocol.NewError(protocol.ErrConflict, "", 0), false

	default:
		return protocol.NewError(protocol.ErrProtoBadRequest, fmt.Sprintf("unknown message type %q", base.Type), 0), false
	}
}

func (s *session) safeFix(rec protocol.RecordMsg) (reply any) {
	defer func() {
		if r := recover(); r != nil {
			reply = protocol.NewError(protocol.ErrInternal, fmt.Sprintf("%s: %v", protocol.CodeText(protocol.ErrInternal), r), rec.Seq)
		}
	}()
	return s.fix(rec)
}

// fix runs the engine over one record. With the gate closed the record is
// echoed unchanged.
func (s *session) fix(rec protocol.RecordMsg) protocol.FixedMsg {
	out := protocol.FixedMsg{
		Type:            protocol.TypeFixed,
		ProtocolVersion: protocol.Version,
		Seq:             rec.Seq,
		Kind:            rec.Kind,
		Item:            rec.Item,
		Block:           rec.Block,
		TileEntity:      rec.TileEntity,
	}
	if s.engine == nil {
		return out
	}
	kind, _ := datafix.ParseKind(rec.Kind)
	switch kind {
	case datafix.KindItem:
		st := rec.Item.Stack()
		out.Fired = s.engine.ApplyItem(st)
		out.Item = protocol.ItemFromStack(st)
	case datafix.KindBlock:
		st := rec.Block.State()
		out.Fired = s.engine.ApplyBlock(st, rec.Block.Supplier())
		out.Block = protocol.BlockFromState(st, rec.Block.TileEntity)
	case datafix.KindTileEntity:
		out.Fired = s.engine.ApplyTileEntity(rec.TileEntity)
	}
	return out
}

func seqOf(msg []byte) uint64 {
	var v struct {
		Seq uint64 `json:"seq"`
	}
	_ = json.Unmarshal(msg, &v)
	return v.Seq
}

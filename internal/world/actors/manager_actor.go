package actors

import (
	"github.com/asynkron/protoactor-go/actor"
)

// ManagerActor supervises the world actor and forwards requests to it. The
// world is spawned as soon as the manager starts so the clock runs without
// waiting for a first request.
type ManagerActor struct {
	world World
	opts  Options
	pid   *actor.PID
}

func NewManagerActor(w World, opts Options) *ManagerActor {
	return &ManagerActor{world: w, opts: opts}
}

func (m *ManagerActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		m.getOrSpawn(ctx)
	case *actor.Terminated:
		if m.pid != nil && msg.Who != nil && msg.Who.Id == m.pid.Id {
			m.pid = nil
		}
	case WorldMessage:
		ctx.Forward(m.getOrSpawn(ctx))
	}
}

func (m *ManagerActor) getOrSpawn(ctx actor.Context) *actor.PID {
	if m.pid != nil {
		return m.pid
	}
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewWorldActor(m.world, m.opts)
	})
	m.pid = ctx.Spawn(props)
	return m.pid
}

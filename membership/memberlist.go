package membership

import (
	"context"
	"fmt"
	"time"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/hashicorp/memberlist"
)

// Handler consumes batches of membership events.
type Handler interface {
	Handle(events ...Event) error
}

// Agent is a member of a gossip cluster that reports membership changes as
// events, the same way serf reports them to its event handlers.
type Agent struct {
	list       *memberlist.Memberlist
	events     chan memberlist.NodeEvent
	logger     kitlog.Logger
	maxBackoff time.Duration
}

// Start creates the gossip listener. The local node is reported as joined as
// soon as Run is called.
func Start(conf Config) (*Agent, error) {
	events := make(chan memberlist.NodeEvent, conf.EventBuffer)

	mlConf := memberlist.DefaultLANConfig()
	mlConf.Name = conf.NodeName
	mlConf.BindAddr = conf.BindAddr
	mlConf.BindPort = conf.BindPort
	mlConf.AdvertiseAddr = conf.AdvertiseAddr
	mlConf.AdvertisePort = conf.AdvertisePort
	mlConf.ProbeInterval = conf.ProbeInterval
	mlConf.ProbeTimeout = conf.ProbeTimeout
	mlConf.Delegate = &metaDelegate{meta: []byte(conf.Role)}
	mlConf.Events = &memberlist.ChannelEventDelegate{Ch: events}
	mlConf.LogOutput = kitlog.NewStdlibAdapter(level.Debug(kitlog.With(conf.Logger, "component", "memberlist")))

	if mlConf.AdvertisePort == 0 {
		mlConf.AdvertisePort = conf.BindPort
	}

	list, err := memberlist.Create(mlConf)
	if err != nil {
		return nil, fmt.Errorf("failed to create memberlist: %w", err)
	}

	return &Agent{
		list:       list,
		events:     events,
		logger:     conf.Logger,
		maxBackoff: conf.JoinMaxBackoff,
	}, nil
}

// Members returns the currently alive members, including the local node.
func (a *Agent) Members() []Member {
	nodes := a.list.Members()
	members := make([]Member, 0, len(nodes))

	for _, node := range nodes {
		members = append(members, memberFromNode(node))
	}

	return members
}

// Join keeps trying to join the cluster through any of the given addresses
// until it succeeds or the context is done.
func (a *Agent) Join(ctx context.Context, addrs []string) error {
	backoff := 1 * time.Second

	for {
		n, err := a.list.Join(addrs)
		if err == nil {
			level.Info(a.logger).Log("msg", "joined cluster", "contacted", n)
			return nil
		}

		level.Error(a.logger).Log("msg", "failed to join cluster", "addrs", fmt.Sprint(addrs), "err", err)

		backoff = backoff * 2
		if a.maxBackoff > 0 && backoff > a.maxBackoff {
			backoff = a.maxBackoff
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
			continue
		}
	}
}

// Run passes membership events to the handler until the context is done. All
// notifications that have piled up while the handler was busy are passed as a
// single batch.
func (a *Agent) Run(ctx context.Context, h Handler) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-a.events:
			batch := a.drain([]Event{eventFromNode(ev)})

			level.Debug(a.logger).Log("msg", "handling membership events", "count", len(batch))

			if err := h.Handle(batch...); err != nil {
				level.Error(a.logger).Log("msg", "failed to handle membership events", "err", err)
			}
		}
	}
}

func (a *Agent) drain(batch []Event) []Event {
	for {
		select {
		case ev := <-a.events:
			batch = append(batch, eventFromNode(ev))
		default:
			return batch
		}
	}
}

// Leave notifies the other members that the node is leaving and stops the
// gossip listener.
func (a *Agent) Leave(timeout time.Duration) error {
	level.Info(a.logger).Log("msg", "leaving cluster")

	if err := a.list.Leave(timeout); err != nil {
		level.Warn(a.logger).Log("msg", "failed to leave cluster gracefully", "err", err)
	}

	return a.list.Shutdown()
}

func memberFromNode(node *memberlist.Node) Member {
	return Member{
		Name: node.Name,
		Addr: node.Addr.String(),
		Role: string(node.Meta),
	}
}

func eventFromNode(ev memberlist.NodeEvent) Event {
	kind := EventUnknown

	switch ev.Event {
	case memberlist.NodeJoin:
		kind = EventMemberJoin
	case memberlist.NodeLeave:
		if ev.Node.State == memberlist.StateLeft {
			kind = EventMemberLeave
		} else {
			kind = EventMemberFailed
		}
	case memberlist.NodeUpdate:
		kind = EventMemberUpdate
	}

	return Event{
		Kind:    kind,
		Members: []Member{memberFromNode(ev.Node)},
	}
}

// metaDelegate advertises the role of the node in its metadata. The agent does
// not exchange any messages or state besides that.
type metaDelegate struct {
	meta []byte
}

func (d *metaDelegate) NodeMeta(limit int) []byte {
	if len(d.meta) > limit {
		return d.meta[:limit]
	}

	return d.meta
}

func (d *metaDelegate) NotifyMsg([]byte)                           {}
func (d *metaDelegate) GetBroadcasts(overhead, limit int) [][]byte { return nil }
func (d *metaDelegate) LocalState(join bool) []byte                { return nil }
func (d *metaDelegate) MergeRemoteState(buf []byte, join bool)     {}

var _ memberlist.Delegate = &metaDelegate{}

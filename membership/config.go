package membership

import (
	"time"

	kitlog "github.com/go-kit/log"
)

type Config struct {
	// NodeName is the unique name of the local node. Other nodes will use it
	// as the hostname of this node.
	NodeName string

	// Role is advertised to other nodes in the node metadata.
	Role string

	// BindAddr and BindPort is where the gossip listener binds to.
	BindAddr string
	BindPort int

	// AdvertiseAddr and AdvertisePort is the address other nodes will use to
	// reach this node, and the address written to their hosts files. If not
	// set, the bind address is used.
	AdvertiseAddr string
	AdvertisePort int

	ProbeInterval time.Duration
	ProbeTimeout  time.Duration

	// JoinMaxBackoff caps the exponential backoff between failed attempts to
	// join the cluster.
	JoinMaxBackoff time.Duration

	// EventBuffer is the number of membership notifications that may be queued
	// while the previous batch is being handled.
	EventBuffer int

	Logger kitlog.Logger
}

func DefaultConfig() Config {
	return Config{
		BindAddr:       "0.0.0.0",
		BindPort:       7946,
		ProbeInterval:  1 * time.Second,
		ProbeTimeout:   500 * time.Millisecond,
		JoinMaxBackoff: 30 * time.Second,
		EventBuffer:    256,
		Logger:         kitlog.NewNopLogger(),
	}
}

package main

import (
	"strings"
)

var opts struct {
	Node struct {
		Name string `long:"name" env:"NAME" required:"true" description:"node name, used as its hostname by other nodes"`
		Role string `long:"role" env:"ROLE" description:"node role advertised to other nodes"`
	} `group:"node" namespace:"node" env-namespace:"NODE"`

	Gossip struct {
		BindAddr      string `long:"bind-addr" description:"address to bind gossip listener" env:"BIND_ADDR" default:"0.0.0.0"`
		BindPort      int    `long:"bind-port" description:"port to bind gossip listener" env:"BIND_PORT" default:"7946"`
		AdvertiseAddr string `long:"advertise-addr" description:"address to advertise to other nodes" env:"ADVERTISE_ADDR"`
		AdvertisePort int    `long:"advertise-port" description:"port to advertise to other nodes" env:"ADVERTISE_PORT"`
		JoinAddrs     string `long:"join-addrs" description:"comma-separated list of nodes to join" env:"JOIN_ADDRS"`
		ProbeTimeout  int    `long:"probe-timeout" description:"failure detection timeout (ms)" env:"PROBE_TIMEOUT" default:"500"`
		ProbeInterval int    `long:"probe-interval" description:"failure detection interval (ms)" env:"PROBE_INTERVAL" default:"1000"`
	} `group:"gossip" namespace:"gossip" env-namespace:"GOSSIP"`

	Hosts struct {
		File          string `long:"file" description:"path to the hosts file" env:"FILE" default:"/etc/hosts"`
		StaticEntries string `long:"static-entries" description:"YAML file with entries that must always be present" env:"STATIC_ENTRIES"`
		InPlace       bool   `long:"in-place" description:"overwrite the hosts file in place instead of replacing it" env:"IN_PLACE"`
	} `group:"hosts" namespace:"hosts" env-namespace:"HOSTS"`

	Metrics struct {
		BindAddr string `long:"bind-addr" description:"address to serve prometheus metrics on, disabled if empty" env:"BIND_ADDR"`
	} `group:"metrics" namespace:"metrics" env-namespace:"METRICS"`

	Verbose bool `long:"verbose" description:"verbose mode" env:"VERBOSE"`
}

func parseAddrs(addrs string) []string {
	sl := strings.Split(addrs, ",")
	res := make([]string, 0, len(sl))

	for _, addr := range sl {
		trimmed := strings.TrimSpace(addr)
		if trimmed != "" {
			res = append(res, trimmed)
		}
	}

	return res
}

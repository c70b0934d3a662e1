package main

var opts struct {
	HostsFile     string `long:"hosts-file" description:"path to the hosts file" env:"HOSTS_FILE" default:"/etc/hosts"`
	InPlace       bool   `long:"in-place" description:"overwrite the hosts file in place instead of replacing it" env:"IN_PLACE"`
	StaticEntries string `long:"static-entries" description:"YAML file with entries that must always be present" env:"STATIC_ENTRIES"`
	Event         string `long:"event" description:"membership event kind" env:"SERF_EVENT"`
	Verbose       bool   `long:"verbose" description:"verbose mode" env:"VERBOSE"`
}

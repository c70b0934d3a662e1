// Package reconcile applies membership events to a hosts file.
package reconcile

import (
	"fmt"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/maxpoletaev/hostsync/hostsfile"
	"github.com/maxpoletaev/hostsync/internal/multierror"
	"github.com/maxpoletaev/hostsync/membership"
	"github.com/maxpoletaev/hostsync/telemetry"
)

type Config struct {
	// HostsFile is the path of the managed hosts file.
	HostsFile string

	// InPlace makes the file be overwritten in place rather than replaced.
	InPlace bool

	// Static entries are applied on every run, before the events.
	Static []StaticEntry

	Logger log.Logger
}

func DefaultConfig() Config {
	return Config{
		HostsFile: "/etc/hosts",
		Logger:    log.NewNopLogger(),
	}
}

// Handler applies membership events to the hosts file.
type Handler struct {
	path       string
	static     []StaticEntry
	writerOpts []hostsfile.WriterOption
	logger     log.Logger
}

func New(conf Config) *Handler {
	if conf.Logger == nil {
		conf.Logger = log.NewNopLogger()
	}

	opts := []hostsfile.WriterOption{hostsfile.WithLogger(conf.Logger)}
	if conf.InPlace {
		opts = append(opts, hostsfile.WithInPlace())
	}

	return &Handler{
		path:       conf.HostsFile,
		static:     conf.Static,
		writerOpts: opts,
		logger:     conf.Logger,
	}
}

// Handle loads the hosts file, applies the static entries and the events, and
// saves the file if it has changed. The file is saved even if no event has
// changed the table, so that it is brought to the canonical form. Member
// records that cannot be applied are skipped; they are reported in the
// returned *multierror.Error after the file has been saved.
func (h *Handler) Handle(events ...membership.Event) error {
	table, err := hostsfile.LoadFile(h.path)
	if err != nil {
		telemetry.SavesTotal.WithLabelValues(telemetry.SaveError).Inc()
		return fmt.Errorf("failed to load hosts file: %w", err)
	}

	if err := applyStatic(table, h.static); err != nil {
		return err
	}

	rejected := multierror.New[string]()

	for _, ev := range events {
		telemetry.EventsTotal.WithLabelValues(ev.Kind.String()).Inc()

		for _, m := range ev.Members {
			if err := apply(table, ev.Kind, m); err != nil {
				level.Warn(h.logger).Log("msg", "skipping member record", "event", ev.Kind, "member", m, "err", err)
				telemetry.RecordsRejected.Inc()
				rejected.Add(m.String(), err)

				continue
			}

			level.Debug(h.logger).Log("msg", "applied member record", "event", ev.Kind, "member", m)
		}
	}

	written, err := hostsfile.NewWriter(h.path, h.writerOpts...).Save(table)
	if err != nil {
		telemetry.SavesTotal.WithLabelValues(telemetry.SaveError).Inc()
		return err
	}

	if written {
		telemetry.SavesTotal.WithLabelValues(telemetry.SaveWritten).Inc()
	} else {
		telemetry.SavesTotal.WithLabelValues(telemetry.SaveUnchanged).Inc()
	}

	telemetry.Entries.Set(float64(len(table.UniqueEntries())))

	return rejected.Combined()
}

func apply(table *hostsfile.Table, kind membership.EventKind, m membership.Member) error {
	switch kind {
	case membership.EventMemberJoin:
		ip, err := m.IP()
		if err != nil {
			return err
		}

		return table.Append(hostsfile.Record{IP: ip, Hostname: m.Name}, false)

	case membership.EventMemberLeave, membership.EventMemberFailed:
		ip, err := m.IP()
		if err != nil {
			return err
		}

		table.Remove(ip)
	}

	return nil
}

var _ membership.Handler = &Handler{}

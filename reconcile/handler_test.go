package reconcile

import (
	"net/netip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxpoletaev/hostsync/hostsfile"
	"github.com/maxpoletaev/hostsync/internal/multierror"
	"github.com/maxpoletaev/hostsync/membership"
	"github.com/maxpoletaev/hostsync/telemetry"
)

const header = `#
# This file is managed by hostsync.
# Editing this file by hand is highly discouraged!
#
# Comments containing an @ sign should not be modified or else
# hostsync will be unable to guarantee relative priority in
# future runs!
#

`

func newHandler(t *testing.T, static ...StaticEntry) (*Handler, string) {
	path := filepath.Join(t.TempDir(), "hosts")

	conf := DefaultConfig()
	conf.HostsFile = path
	conf.Static = static

	return New(conf), path
}

func readFile(t *testing.T, path string) string {
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(data)
}

func TestHandler_Join(t *testing.T) {
	h, path := newHandler(t)

	members := []membership.Member{{Name: "db1", Addr: "10.0.0.9", Role: "worker"}}
	require.NoError(t, h.Handle(membership.Event{Kind: membership.EventMemberJoin, Members: members}))

	contents := readFile(t, path)
	assert.Equal(t, header+"10.0.0.9\tdb1\n", contents)
	assert.NotContains(t, contents, "@")
}

func TestHandler_JoinMergesIntoExistingEntry(t *testing.T) {
	h, path := newHandler(t)
	require.NoError(t, os.WriteFile(path, []byte("10.0.0.9 db1 # primary @70\n"), 0o644))

	members := []membership.Member{{Name: "db1-replica", Addr: "10.0.0.9"}}
	require.NoError(t, h.Handle(membership.Event{Kind: membership.EventMemberJoin, Members: members}))

	assert.Equal(t, header+"10.0.0.9\tdb1 db1-replica\t# primary @70\n", readFile(t, path))
}

func TestHandler_JoinKeepsDuplicateNames(t *testing.T) {
	h, path := newHandler(t)
	require.NoError(t, os.WriteFile(path, []byte("10.0.0.1 db1\n"), 0o644))

	members := []membership.Member{{Name: "db1", Addr: "10.0.0.9"}}
	require.NoError(t, h.Handle(membership.Event{Kind: membership.EventMemberJoin, Members: members}))

	assert.Equal(t, header+"10.0.0.1\tdb1\n10.0.0.9\tdb1\n", readFile(t, path))
}

func TestHandler_LeaveAndFailed(t *testing.T) {
	h, path := newHandler(t)
	require.NoError(t, os.WriteFile(path, []byte("10.0.0.1 web1\n10.0.0.2 web2\n10.0.0.3 web3\n"), 0o644))

	err := h.Handle(
		membership.Event{Kind: membership.EventMemberLeave, Members: []membership.Member{{Name: "web1", Addr: "10.0.0.1"}}},
		membership.Event{Kind: membership.EventMemberFailed, Members: []membership.Member{{Name: "web3", Addr: "10.0.0.3"}}},
	)
	require.NoError(t, err)

	assert.Equal(t, header+"10.0.0.2\tweb2\n", readFile(t, path))
}

func TestHandler_IgnoredEventStillNormalizes(t *testing.T) {
	h, path := newHandler(t)
	require.NoError(t, os.WriteFile(path, []byte("10.0.0.1 a\n10.0.0.1   b # two\n"), 0o644))

	for _, kind := range []membership.EventKind{membership.EventMemberUpdate, membership.EventUser, membership.EventUnknown} {
		members := []membership.Member{{Name: "x", Addr: "10.0.0.5"}}
		require.NoError(t, h.Handle(membership.Event{Kind: kind, Members: members}))
	}

	assert.Equal(t, header+"10.0.0.1\ta b\t# two\n", readFile(t, path))
}

func TestHandler_RejectedRecords(t *testing.T) {
	h, path := newHandler(t)

	before := testutil.ToFloat64(telemetry.RecordsRejected)

	bad := membership.Member{Name: "bad", Addr: "not-an-ip"}
	members := []membership.Member{
		{Name: "db1", Addr: "10.0.0.9"},
		bad,
		{Name: "db2", Addr: "10.0.0.10"},
	}

	err := h.Handle(membership.Event{Kind: membership.EventMemberJoin, Members: members})
	require.Error(t, err)

	var merr *multierror.Error[string]
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, []string{bad.String()}, merr.Keys())

	assert.Equal(t, header+"10.0.0.9\tdb1\n10.0.0.10\tdb2\n", readFile(t, path))
	assert.Equal(t, before+1, testutil.ToFloat64(telemetry.RecordsRejected))
}

func TestHandler_LoadErrorLeavesFileUntouched(t *testing.T) {
	h, path := newHandler(t)

	original := "10.0.0.1 web1\nnot-an-ip web2\n"
	require.NoError(t, os.WriteFile(path, []byte(original), 0o644))

	members := []membership.Member{{Name: "db1", Addr: "10.0.0.9"}}
	err := h.Handle(membership.Event{Kind: membership.EventMemberJoin, Members: members})

	require.ErrorIs(t, err, hostsfile.ErrInvalidAddress)
	assert.Equal(t, original, readFile(t, path))
}

func TestHandler_Idempotent(t *testing.T) {
	h, path := newHandler(t)
	event := membership.Event{
		Kind:    membership.EventMemberJoin,
		Members: []membership.Member{{Name: "db1", Addr: "10.0.0.9"}},
	}

	require.NoError(t, h.Handle(event))

	past := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(path, past, past))

	unchanged := telemetry.SavesTotal.WithLabelValues(telemetry.SaveUnchanged)
	before := testutil.ToFloat64(unchanged)

	require.NoError(t, h.Handle(event))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(past))
	assert.Equal(t, before+1, testutil.ToFloat64(unchanged))
}

func TestHandler_InPlace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hosts")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	conf := DefaultConfig()
	conf.HostsFile = path
	conf.InPlace = true
	h := New(conf)

	members := []membership.Member{{Name: "db1", Addr: "10.0.0.9"}}
	require.NoError(t, h.Handle(membership.Event{Kind: membership.EventMemberJoin, Members: members}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	assert.Equal(t, header+"10.0.0.9\tdb1\n", readFile(t, path))
}

func TestHandler_StaticEntries(t *testing.T) {
	gateway := StaticEntry{
		Record: hostsfile.Record{
			IP:       netip.MustParseAddr("10.0.0.100"),
			Hostname: "gateway",
			Priority: hostsfile.Explicit(90),
		},
		Replace: true,
	}

	h, path := newHandler(t, gateway)
	require.NoError(t, os.WriteFile(path, []byte("10.0.0.1 gateway web\n"), 0o644))

	require.NoError(t, h.Handle())
	assert.Equal(t, header+"10.0.0.100\tgateway\t# @90\n10.0.0.1\tweb\n", readFile(t, path))

	// A leave removes a static entry only until the next run.
	leave := membership.Event{
		Kind:    membership.EventMemberLeave,
		Members: []membership.Member{{Name: "gateway", Addr: "10.0.0.100"}},
	}
	require.NoError(t, h.Handle(leave))
	require.NoError(t, h.Handle())

	assert.Equal(t, header+"10.0.0.100\tgateway\t# @90\n10.0.0.1\tweb\n", readFile(t, path))
}

func TestHandler_StaticEntryReplace(t *testing.T) {
	gateway := StaticEntry{
		Record: hostsfile.Record{
			IP:       netip.MustParseAddr("10.0.0.100"),
			Hostname: "gateway",
			Comment:  "edge",
		},
		Replace: true,
	}

	h, path := newHandler(t, gateway)
	require.NoError(t, os.WriteFile(path, []byte("10.0.0.100 router gw # old @10\n"), 0o644))

	require.NoError(t, h.Handle())
	assert.Equal(t, header+"10.0.0.100\tgateway\t# edge\n", readFile(t, path))
}

func TestHandler_StaticEntryAppend(t *testing.T) {
	gateway := StaticEntry{
		Record: hostsfile.Record{
			IP:       netip.MustParseAddr("10.0.0.100"),
			Hostname: "gateway",
		},
	}

	h, path := newHandler(t, gateway)
	require.NoError(t, os.WriteFile(path, []byte("10.0.0.100 router # old @10\n10.0.0.1 gateway web\n"), 0o644))

	require.NoError(t, h.Handle())
	assert.Equal(t, header+"10.0.0.1\tweb\n10.0.0.100\trouter gateway\t# old @10\n", readFile(t, path))
}

func TestHandler_JoinRejectsUnwritableName(t *testing.T) {
	h, path := newHandler(t)
	event := membership.Event{
		Kind:    membership.EventMemberJoin,
		Members: []membership.Member{{Name: "db#1", Addr: "10.0.0.9"}, {Name: "db2", Addr: "10.0.0.10"}},
	}

	for i := 0; i < 3; i++ {
		err := h.Handle(event)

		var merr *multierror.Error[string]
		require.ErrorAs(t, err, &merr)
		require.ErrorIs(t, err, hostsfile.ErrInvalidEntry)

		assert.Equal(t, header+"10.0.0.10\tdb2\n", readFile(t, path))
	}
}

func TestHandler_StaticEntryFailureIsNotASaveError(t *testing.T) {
	broken := StaticEntry{Record: hostsfile.Record{IP: netip.MustParseAddr("10.0.0.100")}}
	h, path := newHandler(t, broken)

	saveErrors := telemetry.SavesTotal.WithLabelValues(telemetry.SaveError)
	before := testutil.ToFloat64(saveErrors)

	err := h.Handle()
	require.ErrorIs(t, err, hostsfile.ErrInvalidEntry)

	assert.Equal(t, before, testutil.ToFloat64(saveErrors))
	assert.NoFileExists(t, path)
}

package keyring

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	name string
}

func (s *fakeStore) Set(Entry) error { return nil }

func (s *fakeStore) Get(string, string) (*Entry, error) { return nil, nil }

func (s *fakeStore) Delete(string, string) error { return nil }

func (s *fakeStore) List() ([]string, error) { return nil, nil }

func (s *fakeStore) Name() string { return s.name }

func okProbe(name string) probe {
	return probe{name: name, open: func(Config, *slog.Logger) (Store, error) {
		return &fakeStore{name: name}, nil
	}}
}

func failProbe(name string) probe {
	return probe{name: name, open: func(Config, *slog.Logger) (Store, error) {
		return nil, errors.New(name + " unavailable")
	}}
}

func TestOpen_FirstAvailableWins(t *testing.T) {
	t.Parallel()

	store, err := open([]probe{okProbe("first"), okProbe("second")}, Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.Equal(t, "first", store.Name())
}

func TestOpen_FailedProbeAdvances(t *testing.T) {
	t.Parallel()

	store, err := open([]probe{failProbe("first"), failProbe("second"), okProbe("third")}, Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.Equal(t, "third", store.Name())
}

func TestOpen_ForceBackendSkipsEarlierCandidates(t *testing.T) {
	t.Parallel()

	cfg := Config{ForceBackend: "second"}
	store, err := open([]probe{okProbe("first"), okProbe("second")}, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.Equal(t, "second", store.Name())
}

func TestOpen_ForcedBackendFailureIsTerminal(t *testing.T) {
	t.Parallel()

	cfg := Config{ForceBackend: "first"}
	_, err := open([]probe{failProbe("first"), okProbe("second")}, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.ErrorIs(t, err, ErrNoBackend)
}

func TestOpen_NoBackend(t *testing.T) {
	t.Parallel()

	_, err := open([]probe{failProbe("only")}, Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.ErrorIs(t, err, ErrNoBackend)
}

func TestPlatformProbes_FileIsAlwaysLast(t *testing.T) {
	t.Parallel()

	probes := platformProbes()
	require.NotEmpty(t, probes)
	assert.Equal(t, "file", probes[len(probes)-1].name)
}

//go:build linux

package keyring

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"
)

// embeddedStore talks to the dowel keystore daemon, the secure-element
// broker shipped on dowel devices. The protocol is one JSON request and
// one JSON response per connection over a unix socket.
type embeddedStore struct {
	socket string
}

const (
	defaultKeystoreSocket = "/run/dowel/keystored.sock"
	keystoreDialTimeout   = 2 * time.Second
)

type keystoreRequest struct {
	Op          string `json:"op"` // get, set, delete, list, ping
	Service     string `json:"service,omitempty"`
	Account     string `json:"account,omitempty"`
	Secret      []byte `json:"secret,omitempty"`
	Description string `json:"description,omitempty"`
	TimeoutSec  int64  `json:"timeout_sec,omitempty"`
	RequireAuth bool   `json:"require_auth,omitempty"`
}

type keystoreResponse struct {
	OK          bool     `json:"ok"`
	Found       bool     `json:"found,omitempty"`
	Error       string   `json:"error,omitempty"`
	Secret      []byte   `json:"secret,omitempty"`
	Description string   `json:"description,omitempty"`
	TimeoutSec  int64    `json:"timeout_sec,omitempty"`
	RequireAuth bool     `json:"require_auth,omitempty"`
	CreatedAt   int64    `json:"created_at,omitempty"`
	Keys        []string `json:"keys,omitempty"`
}

func embeddedProbe() probe {
	return probe{name: "embedded", open: func(cfg Config, log *slog.Logger) (Store, error) {
		socket := cfg.KeystoreSocket
		if socket == "" {
			socket = defaultKeystoreSocket
		}
		info, err := os.Stat(socket)
		if err != nil {
			return nil, errors.Join(ErrProbeUnavailable, err)
		}
		if info.Mode()&os.ModeSocket == 0 {
			return nil, errors.Join(ErrProbeUnavailable, fmt.Errorf("%s is not a socket", socket))
		}

		s := &embeddedStore{socket: socket}
		if _, err := s.roundTrip(keystoreRequest{Op: "ping"}); err != nil {
			return nil, errors.Join(ErrProbeUnavailable, err)
		}
		return s, nil
	}}
}

func (s *embeddedStore) Name() string { return "embedded" }

func (s *embeddedStore) roundTrip(req keystoreRequest) (*keystoreResponse, error) {
	conn, err := net.DialTimeout("unix", s.socket, keystoreDialTimeout)
	if err != nil {
		return nil, errors.Join(ErrBackendFailed, err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(keystoreDialTimeout))

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return nil, errors.Join(ErrBackendFailed, err)
	}

	var resp keystoreResponse
	if err := json.NewDecoder(bufio.NewReader(conn)).Decode(&resp); err != nil {
		return nil, errors.Join(ErrBackendFailed, err)
	}
	if !resp.OK {
		return nil, errors.Join(ErrBackendFailed, errors.New(resp.Error))
	}
	return &resp, nil
}

func (s *embeddedStore) Set(e Entry) error {
	if !e.valid() {
		return ErrInvalidEntry
	}
	_, err := s.roundTrip(keystoreRequest{
		Op:          "set",
		Service:     e.Service,
		Account:     e.Account,
		Secret:      e.Secret,
		Description: e.Description,
		TimeoutSec:  int64(e.Timeout / time.Second),
		RequireAuth: e.RequireAuth,
	})
	return err
}

func (s *embeddedStore) Get(service, account string) (*Entry, error) {
	resp, err := s.roundTrip(keystoreRequest{Op: "get", Service: service, Account: account})
	if err != nil {
		return nil, err
	}
	if !resp.Found {
		return nil, nil
	}
	e := &Entry{
		Service:     service,
		Account:     account,
		Secret:      resp.Secret,
		Description: resp.Description,
		Timeout:     time.Duration(resp.TimeoutSec) * time.Second,
		RequireAuth: resp.RequireAuth,
	}
	if resp.CreatedAt > 0 {
		e.CreatedAt = time.Unix(resp.CreatedAt, 0)
	}
	return e, nil
}

func (s *embeddedStore) Delete(service, account string) error {
	_, err := s.roundTrip(keystoreRequest{Op: "delete", Service: service, Account: account})
	return err
}

func (s *embeddedStore) List() ([]string, error) {
	resp, err := s.roundTrip(keystoreRequest{Op: "list"})
	if err != nil {
		return nil, err
	}
	return resp.Keys, nil
}

//go:build linux

package keyring

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/dowelhq/steek/pkg/cryptoutil"
)

// Sandboxed apps cannot reach the host Secret Service directly. The
// org.freedesktop.portal.Secret portal hands the app one master secret
// scoped to its app id; entries are then kept in an encrypted file store
// keyed by that secret inside the sandbox's data directory.
const (
	portalBusName    = "org.freedesktop.portal.Desktop"
	portalObjectPath = "/org/freedesktop/portal/desktop"
	portalTimeout    = 30 * time.Second
)

func portalProbe() probe {
	return probe{name: "portal", open: func(cfg Config, log *slog.Logger) (Store, error) {
		if _, err := os.Stat("/.flatpak-info"); err != nil {
			return nil, errors.Join(ErrProbeUnavailable, err)
		}

		conn, err := dbus.SessionBus()
		if err != nil {
			return nil, errors.Join(ErrProbeUnavailable, err)
		}

		master, err := retrievePortalSecret(conn)
		if err != nil {
			return nil, errors.Join(ErrProbeUnavailable, err)
		}
		defer cryptoutil.Zero(master)

		// The portal secret is opaque bytes of unspecified length;
		// derive a fixed-size file key from it.
		key, err := cryptoutil.SubKey(master, "steek-portal-keyring")
		if err != nil {
			return nil, err
		}

		dir := cfg.Dir
		if dir == "" {
			dir = filepath.Join(os.Getenv("XDG_DATA_HOME"), "steek", "keyring")
		}
		return newFileStore("portal", dir, key, log)
	}}
}

// retrievePortalSecret performs the RetrieveSecret request/response dance:
// the portal writes the secret to a pipe we pass in, and completion is
// signalled on a org.freedesktop.portal.Request object.
func retrievePortalSecret(conn *dbus.Conn) ([]byte, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	token := fmt.Sprintf("steek%d", time.Now().UnixNano())
	sender := strings.TrimPrefix(conn.Names()[0], ":")
	sender = strings.ReplaceAll(sender, ".", "_")
	requestPath := dbus.ObjectPath("/org/freedesktop/portal/desktop/request/" + sender + "/" + token)

	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(requestPath),
		dbus.WithMatchInterface("org.freedesktop.portal.Request"),
		dbus.WithMatchMember("Response"),
	); err != nil {
		w.Close()
		return nil, err
	}
	signals := make(chan *dbus.Signal, 1)
	conn.Signal(signals)
	defer conn.RemoveSignal(signals)

	portal := conn.Object(portalBusName, portalObjectPath)
	call := portal.Call("org.freedesktop.portal.Secret.RetrieveSecret", 0,
		dbus.UnixFD(w.Fd()),
		map[string]dbus.Variant{"handle_token": dbus.MakeVariant(token)},
	)
	w.Close()
	if call.Err != nil {
		return nil, call.Err
	}

	select {
	case sig := <-signals:
		if len(sig.Body) == 0 {
			return nil, errors.New("portal returned empty response")
		}
		if code, ok := sig.Body[0].(uint32); !ok || code != 0 {
			return nil, fmt.Errorf("portal request denied (code %v)", sig.Body[0])
		}
	case <-time.After(portalTimeout):
		return nil, errors.New("timed out waiting for portal response")
	}

	secret, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(secret) == 0 {
		return nil, errors.New("portal returned empty secret")
	}
	return secret, nil
}

//go:build linux

package keyring

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/godbus/dbus/v5"
)

// secretServiceStore speaks the org.freedesktop.secrets D-Bus API exposed
// by GNOME Keyring and KWallet. Entries go into the default collection
// with attribute-based lookup; metadata rides along as item attributes.
type secretServiceStore struct {
	conn    *dbus.Conn
	session dbus.ObjectPath
}

const (
	ssBusName        = "org.freedesktop.secrets"
	ssObjectPath     = "/org/freedesktop/secrets"
	ssServiceIface   = "org.freedesktop.Secret.Service"
	ssItemIface      = "org.freedesktop.Secret.Item"
	ssCollectionPath = "/org/freedesktop/secrets/aliases/default"

	ssAppAttribute = "steek"
)

// ssSecret mirrors the Secret Service (oayays) secret struct.
type ssSecret struct {
	Session     dbus.ObjectPath
	Params      []byte
	Value       []byte
	ContentType string
}

func secretServiceProbe() probe {
	return probe{name: "secret-service", open: func(cfg Config, log *slog.Logger) (Store, error) {
		conn, err := dbus.SessionBus()
		if err != nil {
			return nil, errors.Join(ErrProbeUnavailable, err)
		}

		var owner string
		if err := conn.BusObject().Call("org.freedesktop.DBus.GetNameOwner", 0, ssBusName).Store(&owner); err != nil {
			return nil, errors.Join(ErrProbeUnavailable, err)
		}

		var discard dbus.Variant
		var session dbus.ObjectPath
		svc := conn.Object(ssBusName, ssObjectPath)
		if err := svc.Call(ssServiceIface+".OpenSession", 0, "plain", dbus.MakeVariant("")).Store(&discard, &session); err != nil {
			return nil, errors.Join(ErrProbeUnavailable, err)
		}

		return &secretServiceStore{conn: conn, session: session}, nil
	}}
}

func (s *secretServiceStore) Name() string { return "secret-service" }

func (s *secretServiceStore) attributes(service, account string) map[string]string {
	return map[string]string{
		"application": ssAppAttribute,
		"service":     service,
		"account":     account,
	}
}

func (s *secretServiceStore) Set(e Entry) error {
	if !e.valid() {
		return ErrInvalidEntry
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	attrs := s.attributes(e.Service, e.Account)
	attrs["created_at"] = strconv.FormatInt(e.CreatedAt.Unix(), 10)
	if e.Timeout > 0 {
		attrs["timeout_sec"] = strconv.FormatInt(int64(e.Timeout/time.Second), 10)
	}
	if e.RequireAuth {
		attrs["require_auth"] = "1"
	}
	if e.Description != "" {
		attrs["description"] = e.Description
	}

	properties := map[string]dbus.Variant{
		ssItemIface + ".Label":      dbus.MakeVariant(fmt.Sprintf("steek: %s/%s", e.Service, e.Account)),
		ssItemIface + ".Attributes": dbus.MakeVariant(attrs),
	}
	secret := ssSecret{
		Session:     s.session,
		Params:      []byte{},
		Value:       e.Secret,
		ContentType: "application/octet-stream",
	}

	collection := s.conn.Object(ssBusName, ssCollectionPath)
	var item, prompt dbus.ObjectPath
	if err := collection.Call("org.freedesktop.Secret.Collection.CreateItem", 0,
		properties, secret, true).Store(&item, &prompt); err != nil {
		return errors.Join(ErrBackendFailed, err)
	}
	return nil
}

func (s *secretServiceStore) find(service, account string) (dbus.ObjectPath, error) {
	svc := s.conn.Object(ssBusName, ssObjectPath)
	var unlocked, locked []dbus.ObjectPath
	if err := svc.Call(ssServiceIface+".SearchItems", 0, s.attributes(service, account)).Store(&unlocked, &locked); err != nil {
		return "", errors.Join(ErrBackendFailed, err)
	}
	if len(unlocked) > 0 {
		return unlocked[0], nil
	}
	if len(locked) > 0 {
		var nowUnlocked []dbus.ObjectPath
		var prompt dbus.ObjectPath
		if err := svc.Call(ssServiceIface+".Unlock", 0, locked).Store(&nowUnlocked, &prompt); err != nil {
			return "", errors.Join(ErrBackendFailed, err)
		}
		if len(nowUnlocked) > 0 {
			return nowUnlocked[0], nil
		}
		return "", errors.Join(ErrBackendFailed, errors.New("item locked and prompt required"))
	}
	return "", nil
}

func (s *secretServiceStore) Get(service, account string) (*Entry, error) {
	itemPath, err := s.find(service, account)
	if err != nil {
		return nil, err
	}
	if itemPath == "" {
		return nil, nil
	}

	item := s.conn.Object(ssBusName, itemPath)

	var secret ssSecret
	if err := item.Call(ssItemIface+".GetSecret", 0, s.session).Store(&secret); err != nil {
		return nil, errors.Join(ErrBackendFailed, err)
	}

	e := &Entry{Service: service, Account: account, Secret: secret.Value}

	attrsVar, err := item.GetProperty(ssItemIface + ".Attributes")
	if err == nil {
		if attrs, ok := attrsVar.Value().(map[string]string); ok {
			e.Description = attrs["description"]
			if v, err := strconv.ParseInt(attrs["timeout_sec"], 10, 64); err == nil {
				e.Timeout = time.Duration(v) * time.Second
			}
			e.RequireAuth = attrs["require_auth"] == "1"
			if v, err := strconv.ParseInt(attrs["created_at"], 10, 64); err == nil {
				e.CreatedAt = time.Unix(v, 0)
			}
		}
	}
	return e, nil
}

func (s *secretServiceStore) Delete(service, account string) error {
	itemPath, err := s.find(service, account)
	if err != nil {
		return err
	}
	if itemPath == "" {
		return nil
	}

	item := s.conn.Object(ssBusName, itemPath)
	var prompt dbus.ObjectPath
	if err := item.Call(ssItemIface+".Delete", 0).Store(&prompt); err != nil {
		return errors.Join(ErrBackendFailed, err)
	}
	return nil
}

func (s *secretServiceStore) List() ([]string, error) {
	svc := s.conn.Object(ssBusName, ssObjectPath)
	var unlocked, locked []dbus.ObjectPath
	if err := svc.Call(ssServiceIface+".SearchItems", 0,
		map[string]string{"application": ssAppAttribute}).Store(&unlocked, &locked); err != nil {
		return nil, errors.Join(ErrBackendFailed, err)
	}

	var keys []string
	for _, paths := range [][]dbus.ObjectPath{unlocked, locked} {
		for _, p := range paths {
			attrsVar, err := s.conn.Object(ssBusName, p).GetProperty(ssItemIface + ".Attributes")
			if err != nil {
				continue // best-effort
			}
			if attrs, ok := attrsVar.Value().(map[string]string); ok {
				keys = append(keys, attrs["service"]+"/"+attrs["account"])
			}
		}
	}
	return keys, nil
}

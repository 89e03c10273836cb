package keyring

import (
	"log/slog"
	"time"

	"github.com/dowelhq/steek/pkg/logger"
)

// Entry is one stored secret. (Service, Account) is the unique key within
// a backend. The Secret slice is owned by the caller on Set and by the
// caller again on Get; whoever holds it last zeroes it.
type Entry struct {
	Service     string
	Account     string
	Secret      []byte
	Description string
	Timeout     time.Duration // 0 means no expiry
	RequireAuth bool          // backend should re-authenticate the user before release
	CreatedAt   time.Time
}

func (e Entry) valid() bool {
	return e.Service != "" && e.Account != ""
}

// Store is the single capability surface over all secret-storage
// backends. Contract shared by every implementation:
//
//   - Set overwrites silently on a duplicate (Service, Account) key;
//     last write wins, there is no versioning.
//   - Get of a missing key returns (nil, nil), not an error.
//   - Delete of a missing key is a no-op success.
//   - List is best-effort "service/account" keys and may be empty even
//     when entries exist; some backends cannot enumerate.
//
// Name is for diagnostics only and must never steer security logic.
type Store interface {
	Set(e Entry) error
	Get(service, account string) (*Entry, error)
	Delete(service, account string) error
	List() ([]string, error)
	Name() string
}

// probe attempts to construct one backend. Returning an error advances
// the search to the next candidate.
type probe struct {
	name string
	open func(cfg Config, log *slog.Logger) (Store, error)
}

// Option configures Open.
type Option func(*options)

type options struct {
	log *slog.Logger
	cfg *Config
}

// WithLogger sets a logger for backend selection diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithConfig bypasses environment loading, mainly for tests.
func WithConfig(cfg Config) Option {
	return func(o *options) { o.cfg = &cfg }
}

// Open selects the secret-storage backend for this process. Candidates
// are probed in platform priority order; the first that initializes wins
// and stays active for the process lifetime. The encrypted-file fallback
// is always last, so a missing platform facility degrades to local
// storage instead of failing Open.
func Open(opts ...Option) (Store, error) {
	o := &options{log: logger.Discard()}
	for _, opt := range opts {
		opt(o)
	}

	cfg := Config{}
	if o.cfg != nil {
		cfg = *o.cfg
	} else {
		loaded, err := LoadConfig()
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	return open(platformProbes(), cfg, o.log)
}

func open(probes []probe, cfg Config, log *slog.Logger) (Store, error) {
	for _, p := range probes {
		if cfg.ForceBackend != "" && cfg.ForceBackend != p.name {
			continue
		}
		store, err := p.open(cfg, log)
		if err != nil {
			log.Debug("keyring backend unavailable", logger.Backend(p.name), logger.Error(err))
			continue
		}
		log.Info("keyring backend selected", logger.Backend(store.Name()))
		return store, nil
	}
	return nil, ErrNoBackend
}

package auth

import (
	"context"
	stderrors "errors"
	"testing"

	"neonrpc/cli/internal/errors"
	"neonrpc/cli/internal/keychain"
)

type fakeStore struct {
	key, secret string
	err         error
}

func (f fakeStore) LoadAPIKey() (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.key == "" {
		return "", keychain.ErrNotFound
	}
	return f.key, nil
}

func (f fakeStore) LoadSharedSecret() (string, error) {
	if f.secret == "" {
		return "", keychain.ErrNotFound
	}
	return f.secret, nil
}

func env(vals map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vals[k]
		return v, ok
	}
}

func opener(s Store) func() (Store, error) {
	return func() (Store, error) { return s, nil }
}

func TestChain_Order(t *testing.T) {
	tests := []struct {
		name       string
		env        map[string]string
		store      fakeStore
		wantKey    string
		wantSource string
		wantKind   errors.Kind
	}{
		{
			name:       "env wins over keychain",
			env:        map[string]string{EnvAPIKey: "napi_env"},
			store:      fakeStore{key: "napi_ring"},
			wantKey:    "napi_env",
			wantSource: "env:" + EnvAPIKey,
		},
		{
			name:       "blank env falls through",
			env:        map[string]string{EnvAPIKey: "  "},
			store:      fakeStore{key: "napi_ring"},
			wantKey:    "napi_ring",
			wantSource: "keychain",
		},
		{
			name:     "nothing configured",
			env:      map[string]string{},
			wantKind: errors.CredentialMissing,
		},
		{
			name:     "keychain failure is a missing credential",
			env:      map[string]string{},
			store:    fakeStore{err: stderrors.New("dbus down")},
			wantKind: errors.CredentialMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Chain{
				EnvProvider{Var: EnvAPIKey, Lookup: env(tt.env)},
				KeychainProvider{Open: opener(tt.store)},
			}
			source, key, err := c.Resolve(context.Background())
			if tt.wantKind != "" {
				if !errors.Is(err, tt.wantKind) {
					t.Fatalf("err = %v, want kind %s", err, tt.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if key != tt.wantKey || source != tt.wantSource {
				t.Errorf("got (%q, %q), want (%q, %q)", source, key, tt.wantSource, tt.wantKey)
			}
		})
	}
}

type brokenProvider struct{}

func (brokenProvider) APIKey(context.Context) (string, error) {
	return "", stderrors.New("boom")
}

func TestChain_StopsOnHardError(t *testing.T) {
	c := Chain{brokenProvider{}, Static("napi_x")}
	if _, err := c.APIKey(context.Background()); err == nil || err.Error() != "boom" {
		t.Fatalf("err = %v, want boom", err)
	}
}

func TestStatic(t *testing.T) {
	if k, err := Static("napi_1").APIKey(context.Background()); err != nil || k != "napi_1" {
		t.Fatalf("Static = %q, %v", k, err)
	}
	if _, err := Static("").APIKey(context.Background()); !errors.Is(err, errors.CredentialMissing) {
		t.Fatalf("empty Static err = %v", err)
	}
}

func TestSharedSecret(t *testing.T) {
	got, err := SharedSecret(env(map[string]string{EnvSharedSecret: "from-env"}), opener(fakeStore{secret: "from-ring"}))
	if err != nil || got != "from-env" {
		t.Fatalf("env override: %q, %v", got, err)
	}

	got, err = SharedSecret(env(nil), opener(fakeStore{secret: "from-ring"}))
	if err != nil || got != "from-ring" {
		t.Fatalf("keychain: %q, %v", got, err)
	}

	got, err = SharedSecret(env(nil), opener(fakeStore{}))
	if err != nil || got != "" {
		t.Fatalf("unset: %q, %v", got, err)
	}

	got, err = SharedSecret(env(nil), func() (Store, error) { return nil, stderrors.New("dbus: session bus unavailable") })
	if !errors.Is(err, errors.TransportFailed) || got != "" {
		t.Fatalf("keychain unavailable: %q, %v", got, err)
	}

	got, err = SharedSecret(env(map[string]string{EnvSharedSecret: "from-env"}), func() (Store, error) { return nil, stderrors.New("dbus: session bus unavailable") })
	if err != nil || got != "from-env" {
		t.Fatalf("env override with keychain unavailable: %q, %v", got, err)
	}

	got, err = SharedSecret(env(nil), opener(brokenStore{}))
	if !errors.Is(err, errors.TransportFailed) || got != "" {
		t.Fatalf("keychain read failure: %q, %v", got, err)
	}
}

type brokenStore struct{ fakeStore }

func (brokenStore) LoadSharedSecret() (string, error) {
	return "", stderrors.New("keyring locked")
}

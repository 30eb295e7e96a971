package auth

import (
	stderrors "errors"
	"os"
	"strings"

	"neonrpc/cli/internal/errors"
	"neonrpc/cli/internal/keychain"
)

// EnvSharedSecret overrides the keychain-stored transport secret.
const EnvSharedSecret = "NEONRPC_SHARED_SECRET"

// SharedSecret returns the bearer secret network transports require.
// An empty result with a nil error means the keychain was readable and holds
// no secret, so transports accept unauthenticated callers. A keychain that
// cannot be opened or read is a TransportFailed error: a stored secret may
// exist and must not be silently skipped.
func SharedSecret(lookup func(string) (string, bool), open func() (Store, error)) (string, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(EnvSharedSecret); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), nil
	}
	if open == nil {
		return "", nil
	}
	st, err := open()
	if err != nil {
		return "", errors.Wrap(errors.TransportFailed, "open keychain for shared secret", err)
	}
	v, err := st.LoadSharedSecret()
	switch {
	case stderrors.Is(err, keychain.ErrNotFound):
		return "", nil
	case err != nil:
		return "", errors.Wrap(errors.TransportFailed, "read shared secret from keychain", err)
	}
	return v, nil
}

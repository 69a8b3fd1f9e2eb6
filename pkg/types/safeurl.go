package types

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// SafeAppHost is the host of the official Safe web app.
const SafeAppHost = "app.safe.global"

var ErrNotSafeURL = errors.New("not a Safe app URL")

// SafeRef is a Safe account reference taken from a Safe app URL.
type SafeRef struct {
	// Network is empty when the URL carries no EIP-3770 prefix.
	Network NetworkCode
	Address string
}

// ParseSafeURL extracts the Safe reference from a Safe app URL such as
// https://app.safe.global/transactions/queue?safe=sep:0x0275E1...458A.
// The "safe" query parameter wins; otherwise the first path segment that
// looks like an address is used.
func ParseSafeURL(raw string) (SafeRef, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return SafeRef{}, fmt.Errorf("parse safe url: %w", err)
	}
	if u.Scheme != "https" || u.Host != SafeAppHost {
		return SafeRef{}, ErrNotSafeURL
	}

	if param := u.Query().Get("safe"); param != "" {
		prefix, addr, found := strings.Cut(param, ":")
		if !found {
			if strings.HasPrefix(param, "0x") {
				return SafeRef{Address: param}, nil
			}
			return SafeRef{}, fmt.Errorf("safe parameter %q has no address", param)
		}
		ref := SafeRef{Address: addr}
		if n, ok := LookupShortName(prefix); ok {
			ref.Network = n.Code
		}
		return ref, nil
	}

	for _, segment := range strings.Split(u.Path, "/") {
		if strings.HasPrefix(segment, "0x") && len(segment) >= 42 {
			return SafeRef{Address: segment}, nil
		}
	}
	return SafeRef{}, fmt.Errorf("no Safe address in %q", raw)
}

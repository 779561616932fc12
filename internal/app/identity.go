package app

import (
	"errors"
	"os"
	"os/user"
	"strings"
)

// ErrNoIdentity is returned when no source yields a user name.
var ErrNoIdentity = errors.New("cannot determine the current user from USERPROFILE, the OS account, USERNAME or USER")

// DetectIdentity returns the name of the current user's profile folder.
// Sources, in order: the last element of USERPROFILE (the profile folder
// can differ from the login name), the OS account name with any domain
// prefix removed, then USERNAME and USER.
func DetectIdentity() (string, error) {
	return detectIdentity(os.Getenv, user.Current)
}

func detectIdentity(getenv func(string) string, current func() (*user.User, error)) (string, error) {
	if name := lastElement(getenv("USERPROFILE")); name != "" {
		return name, nil
	}
	if u, err := current(); err == nil {
		if name := lastElement(u.Username); name != "" {
			return name, nil
		}
	}
	for _, key := range []string{"USERNAME", "USER"} {
		if name := strings.TrimSpace(getenv(key)); name != "" {
			return name, nil
		}
	}
	return "", ErrNoIdentity
}

// lastElement returns the final element of a path or DOMAIN\user name,
// splitting on both separators regardless of the host OS.
func lastElement(s string) string {
	s = strings.TrimRight(strings.TrimSpace(s), `\/`)
	if i := strings.LastIndexAny(s, `\/`); i >= 0 {
		s = s[i+1:]
	}
	return s
}

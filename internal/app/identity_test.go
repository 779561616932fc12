package app

import (
	"errors"
	"os/user"
	"testing"
)

func TestDetectIdentity(t *testing.T) {
	noUser := func() (*user.User, error) { return nil, errors.New("no account") }
	account := func(name string) func() (*user.User, error) {
		return func() (*user.User, error) { return &user.User{Username: name}, nil }
	}

	tests := []struct {
		name    string
		env     map[string]string
		current func() (*user.User, error)
		want    string
		wantErr bool
	}{
		{
			name:    "profile folder wins",
			env:     map[string]string{"USERPROFILE": `C:\Users\Alice`, "USERNAME": "alice.w"},
			current: account(`CORP\alice.w`),
			want:    "Alice",
		},
		{
			name:    "profile with trailing separator",
			env:     map[string]string{"USERPROFILE": `C:\Users\Bob\`},
			current: noUser,
			want:    "Bob",
		},
		{
			name:    "account with domain prefix",
			env:     map[string]string{},
			current: account(`WORKGROUP\carol`),
			want:    "carol",
		},
		{
			name:    "plain account",
			env:     map[string]string{},
			current: account("dave"),
			want:    "dave",
		},
		{
			name:    "USERNAME fallback",
			env:     map[string]string{"USERNAME": "erin"},
			current: noUser,
			want:    "erin",
		},
		{
			name:    "USER fallback",
			env:     map[string]string{"USER": "frank"},
			current: noUser,
			want:    "frank",
		},
		{
			name:    "nothing available",
			env:     map[string]string{},
			current: noUser,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getenv := func(k string) string { return tt.env[k] }
			got, err := detectIdentity(getenv, tt.current)
			if tt.wantErr {
				if !errors.Is(err, ErrNoIdentity) {
					t.Fatalf("detectIdentity() error = %v, want ErrNoIdentity", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("detectIdentity() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("detectIdentity() = %q, want %q", got, tt.want)
			}
		})
	}
}

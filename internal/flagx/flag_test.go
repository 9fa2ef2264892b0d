package flagx

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

var (
	clientFlags = []string{"-a", "-d", "-l", "-t", "-w", "-v"}
	serverFlags = []string{"-a", "-u", "-l", "-s", "-d", "-t", "-r", "-v"}
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "client keeps its flags and drops the config file",
			args:    []string{"-c", "client.json", "-a", "http://127.0.0.1:8080", "-l", "127.0.0.1:9876"},
			allowed: clientFlags,
			want:    []string{"-a", "http://127.0.0.1:8080", "-l", "127.0.0.1:9876"},
		},
		{
			name:    "server ignores client-only sign-in wait",
			args:    []string{"-w", "5", "-s", "secret", "-r", "10080"},
			allowed: serverFlags,
			want:    []string{"-s", "secret", "-r", "10080"},
		},
		{
			name:    "equals form for a redirect URL",
			args:    []string{"-l=http://127.0.0.1:9876/callback", "-x"},
			allowed: serverFlags,
			want:    []string{"-l=http://127.0.0.1:9876/callback"},
		},
		{
			name:    "dsn value starting with a dash is not taken",
			args:    []string{"-d", "-v", "debug"},
			allowed: serverFlags,
			want:    []string{"-d", "-v", "debug"},
		},
		{
			name:    "trailing flag without value",
			args:    []string{"-v"},
			allowed: clientFlags,
			want:    []string{"-v"},
		},
		{
			name:    "repeated flag kept in order",
			args:    []string{"-t", "5", "-t", "30"},
			allowed: clientFlags,
			want:    []string{"-t", "5", "-t", "30"},
		},
		{
			name:    "nothing recognised",
			args:    []string{"login", "--verbose"},
			allowed: clientFlags,
			want:    []string{},
		},
		{
			name:    "no args",
			args:    nil,
			allowed: serverFlags,
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowed)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("FilterArgs() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConfigFile(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "short form among server flags", args: []string{"-s", "k", "-c", "server.json"}, want: "server.json"},
		{name: "long equals form", args: []string{"-config=client.json", "-w", "5"}, want: "client.json"},
		{name: "last one wins", args: []string{"-config", "a.json", "-c", "b.json"}, want: "b.json"},
		{name: "absent", args: []string{"-a", ":8080"}, want: ""},
		{name: "nil", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfigFile(tt.args))
		})
	}
}

func TestJsonConfigFlags_ReadsProcessArgs(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"authsession", "-l", "127.0.0.1:9876", "-c", "/etc/authsession/client.json"}
	assert.Equal(t, "/etc/authsession/client.json", JsonConfigFlags())

	os.Args = []string{"authsession"}
	assert.Empty(t, JsonConfigFlags())
}

package tools

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestToAddressString(t *testing.T) {
	tests := []struct {
		name string
		host string
		port int
		want string
	}{
		{name: "ipv4", host: "127.0.0.1", port: 2022, want: "127.0.0.1:2022"},
		{name: "hostname", host: "dp.throwbackbbs.com", port: 513, want: "dp.throwbackbbs.com:513"},
		{name: "ipv6", host: "::1", port: 22, want: "[::1]:22"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToAddressString(tt.host, tt.port); got != tt.want {
				t.Errorf("ToAddressString() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPathExist(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "temp dir exist", path: dir, want: true},
		{name: "os.Args[0] exist", path: os.Args[0], want: true},
		{name: "missing file", path: filepath.Join(dir, "qazwsxedc"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PathExist(tt.path); got != tt.want {
				t.Errorf("PathExist() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProgramDir(t *testing.T) {
	if got := ProgramDir(); !PathExist(got) {
		t.Errorf("ProgramDir() = %v, which does not exist", got)
	}
}

func TestReadOrCreateFile(t *testing.T) {
	tmpPath := filepath.Join(t.TempDir(), "nested", "key")
	content := []byte("abc")
	calls := 0
	f := func() []byte {
		calls++
		return content
	}
	tests := []struct {
		name      string
		wantCalls int
	}{
		{name: "create on first read", wantCalls: 1},
		{name: "read existing", wantCalls: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadOrCreateFile(tmpPath, f)
			if err != nil {
				t.Errorf("ReadOrCreateFile() error = %v", err)
				return
			}
			if !reflect.DeepEqual(got, content) {
				t.Errorf("ReadOrCreateFile() = %v, want %v", got, content)
			}
			if calls != tt.wantCalls {
				t.Errorf("ReadOrCreateFile() generator calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

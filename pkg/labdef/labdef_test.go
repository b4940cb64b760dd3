package labdef

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bgplab-net/bgplab/pkg/util"
)

func writeLab(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lab.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing lab file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeLab(t, `
name: demo
location: eastus
ip_address: 198.51.100.7
subnet_count: 4
name_prefix: demo
alias: alice
vm:
  size: standard-2v
  admin_user: operator
state:
  redis_addr: redis.internal:6379
  redis_db: 2
provider:
  endpoint: https://cloud.example
`)
	lab, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if lab.Name != "demo" || lab.SubnetCount != 4 || lab.IPAddress != "198.51.100.7" {
		t.Errorf("Load() = %+v", lab)
	}
	if lab.RedisAddr() != "redis.internal:6379" {
		t.Errorf("RedisAddr() = %s", lab.RedisAddr())
	}

	p := lab.Params()
	if p.Lab != "demo" || p.VMSize != "standard-2v" || p.AdminUser != "operator" {
		t.Errorf("Params() = %+v", p)
	}
}

func TestLoadMinimal(t *testing.T) {
	path := writeLab(t, "name: demo\nip_address: 1.2.3.4\nsubnet_count: 2\n")
	lab, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if lab.RedisAddr() != "127.0.0.1:6379" {
		t.Errorf("default RedisAddr() = %s", lab.RedisAddr())
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "missing name",
			content: "ip_address: 1.2.3.4\nsubnet_count: 2\n",
		},
		{
			name:    "missing ip",
			content: "name: demo\nsubnet_count: 2\n",
		},
		{
			name:    "bad ip",
			content: "name: demo\nip_address: 300.1.1.1\nsubnet_count: 2\n",
			wantErr: util.ErrBadFormat,
		},
		{
			name:    "count too low",
			content: "name: demo\nip_address: 1.2.3.4\nsubnet_count: 1\n",
			wantErr: util.ErrOutOfRange,
		},
		{
			name:    "count too high",
			content: "name: demo\nip_address: 1.2.3.4\nsubnet_count: 100\n",
			wantErr: util.ErrOutOfRange,
		},
		{
			name:    "not yaml",
			content: "{{{",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeLab(t, tt.content))
			if err == nil {
				t.Fatal("Load() should have failed")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() of missing file should fail")
	}
}

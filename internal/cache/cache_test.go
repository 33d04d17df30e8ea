package cache

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// storeContract exercises the behavior every Store must share: miss, write, read back
// byte-for-byte, and whole-slot overwrite.
func storeContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Read(ctx, "08540")
	if err != nil {
		t.Fatalf("Read() miss error = %v", err)
	}
	if ok {
		t.Fatal("Read() ok = true, want false for miss")
	}

	first := []byte("<zip>08540</zip>\n<temp>72.0</temp>\n")
	if err := s.Write(ctx, "08540", first); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	got, ok, err := s.Read(ctx, "08540")
	if err != nil || !ok {
		t.Fatalf("Read() = ok %v, err %v", ok, err)
	}
	if !bytes.Equal(got, first) {
		t.Errorf("Read() = %q, want %q", got, first)
	}

	second := []byte("<zip>08540</zip>\n")
	if err := s.Write(ctx, "08540", second); err != nil {
		t.Fatalf("Write() overwrite error = %v", err)
	}
	got, _, _ = s.Read(ctx, "08540")
	if !bytes.Equal(got, second) {
		t.Errorf("Read() after overwrite = %q, want %q", got, second)
	}

	if _, ok, _ := s.Read(ctx, "98101"); ok {
		t.Error("Read() of another key ok = true, want false")
	}
}

func TestInMemoryStore(t *testing.T) {
	storeContract(t, NewInMemoryStore())
}

// TestInMemoryStore_CopiesBlob verifies callers cannot mutate a stored record.
func TestInMemoryStore_CopiesBlob(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	blob := []byte("abc")
	_ = s.Write(ctx, "k", blob)
	blob[0] = 'x'
	got, _, _ := s.Read(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("Read() = %q, want abc", got)
	}
}

func TestInMemoryStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewInMemoryStore()
	if err := s.Write(ctx, "k", []byte("v")); err == nil {
		t.Error("Write() with canceled context error = nil")
	}
	if _, _, err := s.Read(ctx, "k"); err == nil {
		t.Error("Read() with canceled context error = nil")
	}
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "data"))
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	storeContract(t, s)
}

// TestFileStore_Layout verifies one file per key named by the key, with no temp files left.
func TestFileStore_Layout(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if err := s.Write(context.Background(), "08540", []byte("x")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got := s.Path("08540"); got != filepath.Join(dir, "08540") {
		t.Errorf("Path() = %q", got)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "08540" {
		t.Errorf("dir entries = %v, want [08540]", entries)
	}
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "db", "attire.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	defer s.Close()
	if err := s.Ping(); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	storeContract(t, s)
}

func TestParseAddrs(t *testing.T) {
	got := parseAddrs(" a:1 , ,b:2")
	if len(got) != 2 || got[0] != "a:1" || got[1] != "b:2" {
		t.Errorf("parseAddrs() = %v", got)
	}
}

func TestExpiration(t *testing.T) {
	tests := []struct {
		name string
		in   time.Duration
		want int32
	}{
		{"zero falls back to a day", 0, 86400},
		{"one hour", time.Hour, 3600},
		{"beyond 30 days falls back", 31 * 24 * time.Hour, 86400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expiration(tt.in); got != tt.want {
				t.Errorf("expiration() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		opts    Options
		check   func(Store) bool
		wantErr bool
	}{
		{"default is file", Options{Dir: dir}, func(s Store) bool { _, ok := s.(*FileStore); return ok }, false},
		{"file", Options{Backend: "file", Dir: dir}, func(s Store) bool { _, ok := s.(*FileStore); return ok }, false},
		{"sqlite", Options{Backend: "sqlite", SQLitePath: filepath.Join(dir, "open.db")}, func(s Store) bool { _, ok := s.(*SQLiteStore); return ok }, false},
		{"in_memory", Options{Backend: "in_memory"}, func(s Store) bool { _, ok := s.(*InMemoryStore); return ok }, false},
		{"unknown", Options{Backend: "redis"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(tt.opts)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Open() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer Close(s)
			if !tt.check(s) {
				t.Errorf("Open() = %T", s)
			}
			if err := Ping(s); err != nil {
				t.Errorf("Ping() error = %v", err)
			}
		})
	}
}

func TestMemcachedKey(t *testing.T) {
	s := &MemcachedStore{}
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"digits", "08540", "attire:08540"},
		{"space", "SW1A 1AA", "attire:SW1A+1AA"},
		{"hyphen", "12345-6789", "attire:12345-6789"},
		{"control", "a\tb", "attire:a%09b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.key(tt.in)
			if got != tt.want {
				t.Errorf("key(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if len(got) > 250 {
				t.Errorf("key(%q) length %d exceeds 250", tt.in, len(got))
			}
			for i := 0; i < len(got); i++ {
				if got[i] <= ' ' || got[i] == 0x7f {
					t.Errorf("key(%q) = %q contains byte %#x", tt.in, got, got[i])
				}
			}
		})
	}
}

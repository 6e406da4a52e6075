package preflight

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vocamail/internal/config"
	"vocamail/internal/subscribers"
	"vocamail/internal/testsupport"
	"vocamail/internal/vocab"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckWordPools(t *testing.T) {
	dir := t.TempDir()
	if result := CheckWordPools(dir); result.Passed {
		t.Fatalf("empty pools should fail, got %s", result.Detail)
	}

	if err := vocab.NewStore(dir).SaveLevel(2, []vocab.WordEntry{{Word: "apple"}}); err != nil {
		t.Fatal(err)
	}
	result := CheckWordPools(dir)
	if !result.Passed || result.Detail != "level1=0 level2=1 level3=0" {
		t.Fatalf("unexpected result %+v", result)
	}

	if err := os.WriteFile(filepath.Join(dir, "level3.json"), []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckWordPools(dir); result.Passed {
		t.Fatal("malformed pool should fail")
	}
}

func TestCheckSubscriberStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "subscribers.db")
	if result := CheckSubscriberStore(ctx, path); result.Passed {
		t.Fatalf("empty store should fail, got %s", result.Detail)
	}

	store, err := subscribers.Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Add(ctx, subscribers.NewSubscriber{Email: "a@example.com", Name: "A", Level: 1}); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	result := CheckSubscriberStore(ctx, path)
	if !result.Passed || result.Detail != "1 subscribers" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestCheckMailConfig(t *testing.T) {
	if result := CheckMailConfig(config.Mail{Port: 587}); result.Passed || result.Detail != "missing server, from" {
		t.Fatalf("unexpected result %+v", result)
	}
	result := CheckMailConfig(config.Mail{Server: "smtp.example.com", Port: 587, From: "bot@example.com", User: "bot", Password: "x"})
	if !result.Passed || !strings.Contains(result.Detail, "auth as bot") {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestCheckSMTPReachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			_ = conn.Close()
		}
	}()

	if result := CheckSMTPReachable(context.Background(), "127.0.0.1", port); !result.Passed {
		t.Fatalf("expected reachable, got %s", result.Detail)
	}
	_ = ln.Close()

	if result := CheckSMTPReachable(context.Background(), "127.0.0.1", port); result.Passed {
		t.Fatalf("closed port should be unreachable, got %s", result.Detail)
	}
}

func TestRunAllSkipsSMTPProbeWithoutConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	results := RunAll(context.Background(), cfg)
	if len(results) != 5 {
		t.Fatalf("expected 5 results without SMTP probe, got %d", len(results))
	}
	for _, r := range results {
		if r.Name == "SMTP server" {
			t.Fatal("SMTP probe should be skipped")
		}
	}
	if AllPassed(results) {
		t.Fatal("empty pools and missing mail config should fail")
	}
}

func TestRunAllPassesWithSeededData(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			_ = conn.Close()
		}
	}()

	cfg := testsupport.NewConfig(t, testsupport.WithMail("127.0.0.1", ln.Addr().(*net.TCPAddr).Port))
	testsupport.SeedLevel(t, cfg.Paths.DataDir, 1, "apple", "banana")
	subs := testsupport.MustOpenSubscribers(t, cfg)
	testsupport.AddSubscriber(t, subs, "a@example.com", 1)

	results := RunAll(context.Background(), cfg)
	if len(results) != 6 {
		t.Fatalf("expected 6 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Fatalf("%s failed: %s", r.Name, r.Detail)
		}
	}
}

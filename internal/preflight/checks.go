package preflight

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"vocamail/internal/config"
	"vocamail/internal/subscribers"
	"vocamail/internal/vocab"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckWordPools verifies that every level pool parses and reports its size.
// At least one pool must hold words.
func CheckWordPools(dataDir string) Result {
	const name = "Word pools"
	store := vocab.NewStore(dataDir)
	parts := make([]string, 0, len(vocab.Levels))
	total := 0
	for _, level := range vocab.Levels {
		pool, err := store.LoadLevel(level)
		if err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("level %d unreadable (%v)", level, err)}
		}
		total += len(pool)
		parts = append(parts, fmt.Sprintf("level%d=%d", level, len(pool)))
	}
	detail := strings.Join(parts, " ")
	if total == 0 {
		return Result{Name: name, Detail: detail + " (no words to mail)"}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckSubscriberStore opens the subscriber database and counts rows.
func CheckSubscriberStore(ctx context.Context, path string) Result {
	const name = "Subscriber store"
	store, err := subscribers.Open(ctx, path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	defer store.Close()

	subs, err := store.List(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if len(subs) == 0 {
		return Result{Name: name, Detail: "no subscribers"}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d subscribers", len(subs))}
}

// CheckMailConfig verifies that the SMTP server and sender are configured.
func CheckMailConfig(cfg config.Mail) Result {
	const name = "Mail transport"
	var missing []string
	if strings.TrimSpace(cfg.Server) == "" {
		missing = append(missing, "server")
	}
	if strings.TrimSpace(cfg.From) == "" {
		missing = append(missing, "from")
	}
	if len(missing) > 0 {
		return Result{Name: name, Detail: "missing " + strings.Join(missing, ", ")}
	}
	auth := "no auth"
	if cfg.User != "" && cfg.Password != "" {
		auth = "auth as " + cfg.User
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s:%d from %s (%s)", cfg.Server, cfg.Port, cfg.From, auth)}
}

// CheckSMTPReachable opens a TCP connection to the SMTP server.
func CheckSMTPReachable(ctx context.Context, server string, port int) Result {
	const name = "SMTP server"
	addr := net.JoinHostPort(strings.TrimSpace(server), strconv.Itoa(port))

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var dialer net.Dialer
	conn, err := dialer.DialContext(checkCtx, "tcp", addr)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s unreachable (%v)", addr, err)}
	}
	_ = conn.Close()
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s reachable", addr)}
}

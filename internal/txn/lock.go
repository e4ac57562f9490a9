package txn

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
)

// LockBusyError means another transaction, possibly in another
// process, holds the host-wide lock. Recoverable by retrying later.
type LockBusyError struct {
	Path string
}

func (e *LockBusyError) Error() string {
	return fmt.Sprintf("identity databases are locked by another process (%s)", e.Path)
}

type fileLock struct {
	f    *os.File
	path string
}

// acquireLock takes an exclusive flock on path, retrying with
// exponential backoff for at most wait. The advisory lock is released
// by the kernel if the process dies, so a crashed administrator tool
// never wedges the databases.
func acquireLock(path string, wait time.Duration) (*fileLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, err
	}

	try := func() error {
		err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			return nil
		}
		if errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EAGAIN) {
			return err
		}
		return backoff.Permanent(err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 25 * time.Millisecond
	bo.MaxInterval = 500 * time.Millisecond
	bo.MaxElapsedTime = wait

	if err := backoff.Retry(try, bo); err != nil {
		_ = f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EAGAIN) {
			return nil, &LockBusyError{Path: path}
		}
		return nil, err
	}
	log.Debug().Str("path", path).Msg("acquired database lock")
	return &fileLock{f: f, path: path}, nil
}

func (l *fileLock) release() {
	if l.f == nil {
		return
	}
	if err := unix.Flock(int(l.f.Fd()), unix.LOCK_UN); err != nil {
		log.Warn().Err(err).Str("path", l.path).Msg("failed to unlock database lock")
	}
	_ = l.f.Close()
	l.f = nil
	log.Debug().Str("path", l.path).Msg("released database lock")
}

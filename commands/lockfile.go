package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// lockfile is an flock(2) based lock that prevents concurrent updates of the same
// worksheet from overlapping cron jobs. The lock is released when the process exits.
//
// The lock file is left in place on release: removing it would let a waiting process
// hold a lock on the unlinked file while a later process locks a new one.
type lockfile struct {
	file *os.File
}

func lock(path string) (*lockfile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0770); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0660)
	if err != nil {
		return nil, err
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()

		if err == unix.EWOULDBLOCK {
			return nil, fmt.Errorf("%v is locked by another %v process", path, APP)
		}

		return nil, fmt.Errorf("Unable to lock %v (%v)", path, err)
	}

	if err := f.Truncate(0); err == nil {
		fmt.Fprintf(f, "%d\n", os.Getpid())
	}

	return &lockfile{file: f}, nil
}

func (l *lockfile) release() {
	if l != nil && l.file != nil {
		unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
		l.file.Close()
	}
}

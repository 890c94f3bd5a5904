// +build linux darwin

// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package rest

import (
	"syscall"

	"github.com/mlnoga/filmr/internal/filmerrors"
	"github.com/mlnoga/filmr/internal/filmrlog"
)

// MakeSandbox secures the current process by chrooting into chroot
// (requires root) and dropping to setuid afterwards. Either step is
// skipped when its argument is empty/-1. Failures are returned as a
// *filmerrors.ConfigurationError rather than panicking, so the server's
// main can log and exit with a normal status code.
func MakeSandbox(chroot string, setuid int) error {
	if len(chroot) > 0 {
		filmrlog.Printf("changing filesystem root to %s...\n", chroot)
		if err := syscall.Chroot(chroot); err != nil {
			return &filmerrors.ConfigurationError{Field: "chroot", Msg: err.Error()}
		}
		if err := syscall.Chdir("/"); err != nil {
			return &filmerrors.ConfigurationError{Field: "chroot", Msg: err.Error()}
		}
	}
	if setuid >= 0 {
		filmrlog.Printf("setting user id from %d/%d to %d\n", syscall.Getuid(), syscall.Geteuid(), setuid)
		if err := syscall.Setuid(setuid); err != nil {
			return &filmerrors.ConfigurationError{Field: "setuid", Msg: err.Error()}
		}
	}
	return nil
}

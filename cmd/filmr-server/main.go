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

package main

import (
	"flag"
	"os"

	"github.com/mlnoga/filmr/internal/filmrlog"
	"github.com/mlnoga/filmr/internal/rest"
)

var (
	chroot = flag.String("chroot", "", "chroot to this directory before serving (requires root)")
	setuid = flag.Int("setuid", -1, "drop to this user id after chrooting, -1=do not drop")
)

func main() {
	flag.Parse()
	if *chroot != "" || *setuid >= 0 {
		if err := rest.MakeSandbox(*chroot, *setuid); err != nil {
			filmrlog.Printf("error setting up sandbox: %s\n", err.Error())
			os.Exit(2)
		}
	}
	filmrlog.Printf("filmr-server listening on :8080\n")
	rest.Serve()
}

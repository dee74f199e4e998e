/*
Copyright © 2026 the ionmc authors.
This file is part of ionmc.

ionmc is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ionmc is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ionmc.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command ionmc is the command-line interface for the ionmc 3D Monte
// Carlo photoionization code.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/ionmc/ionmcutil"
)

func main() {
	if err := ionmcutil.Root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

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

package ionmcutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/sirupsen/logrus"
)

// Version is the release version; overridden at build time with
// -ldflags "-X github.com/spatialmodel/ionmc/ionmcutil.Version=...".
var Version = "dev"

// DirtyBuild is set to "true" at build time when the working tree had
// uncommitted changes. Running a dirty build is refused unless --dirty
// is given, since its results cannot be reproduced from a repository
// revision.
var DirtyBuild = "false"

// NewLogger builds the run logger. verbose lowers the level to debug;
// a non-empty logfile redirects output to that file.
func NewLogger(verbose bool, logfile string) (*logrus.Logger, error) {
	log := logrus.New()
	log.Level = logrus.InfoLevel
	if verbose {
		log.Level = logrus.DebugLevel
	}
	if logfile != "" {
		f, err := os.Create(logfile)
		if err != nil {
			return nil, fmt.Errorf("ionmcutil: opening log file: %v", err)
		}
		log.Out = f
	}
	return log, nil
}

// LogBanner writes the startup banner.
func LogBanner(log *logrus.Logger) {
	log.Infof("this is ionmc, version %s", Version)
	log.Infof("running on %s/%s with %d CPUs available",
		runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
}

// Fatal reports err with the file:function:line of the caller and
// aborts the process with a nonzero exit code.
func Fatal(log *logrus.Logger, err error) {
	pc, file, line, ok := runtime.Caller(1)
	if !ok {
		log.Fatal(err)
	}
	fn := filepath.Base(runtime.FuncForPC(pc).Name())
	log.Fatalf("%s:%s:%d: %v", filepath.Base(file), fn, line, err)
}

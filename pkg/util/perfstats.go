// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package util

import (
	"fmt"
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"
)

// PerfStats records the time, allocation and garbage collection counters at
// the point it was created, so that the cost of some piece of work can be
// reported afterwards.
type PerfStats struct {
	start time.Time
	// Total bytes allocated at start
	alloc uint64
	// Garbage collection cycles at start
	gcs uint32
}

// NewPerfStats takes a snapshot of the current counters.
func NewPerfStats() *PerfStats {
	var m runtime.MemStats
	//
	runtime.ReadMemStats(&m)
	//
	return &PerfStats{time.Now(), m.TotalAlloc, m.NumGC}
}

// Elapsed returns the time since this snapshot was taken.
func (p *PerfStats) Elapsed() time.Duration {
	return time.Since(p.start)
}

// Log reports (at debug level) the time taken, the memory allocated and the
// garbage collection cycles run since this snapshot was taken, along with the
// heap currently in use.
func (p *PerfStats) Log(prefix string) {
	if !log.IsLevelEnabled(log.DebugLevel) {
		return
	}
	//
	var m runtime.MemStats
	//
	runtime.ReadMemStats(&m)
	//
	log.WithFields(log.Fields{
		"seconds": p.Elapsed().Seconds(),
		"alloc":   megabytes(m.TotalAlloc - p.alloc),
		"gc":      m.NumGC - p.gcs,
		"heap":    megabytes(m.Alloc),
	}).Debugf("%s done", prefix)
}

func megabytes(n uint64) string {
	return fmt.Sprintf("%dMb", n/1024/1024)
}

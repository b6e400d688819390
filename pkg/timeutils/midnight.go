// Copyright 2021 the DP3T WS authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package timeutils defines functions to close the gaps present in Golang's
// default implementation of Time.
package timeutils

import (
	"time"
)

// UTCMidnight returns the midnight (00:00) UTC time of the given time.
func UTCMidnight(t time.Time) time.Time {
	return Midnight(t.UTC())
}

// LocalMidnight returns the midnight (00:00) of the given time, in the time's
// local timezone.
func LocalMidnight(t time.Time) time.Time {
	return Midnight(t.Local())
}

// Midnight returns the midnight (00:00) of the given time, in the time's
// existing timezone.
func Midnight(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// SubtractDays returns the time t minus the given number of days. Days are
// calendar days, not 24h periods, so the wall clock is preserved across DST
// boundaries.
func SubtractDays(t time.Time, days uint) time.Time {
	return t.AddDate(0, 0, -1*int(days))
}

// Copyright 2016 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package common

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// PrettyDuration prints a time.Duration with at most three decimals.
type PrettyDuration time.Duration

var prettyDurationRe = regexp.MustCompile(`\.[0-9]+`)

func (d PrettyDuration) String() string {
	label := time.Duration(d).String()
	if match := prettyDurationRe.FindString(label); len(match) > 4 {
		label = strings.Replace(label, match, match[:4], 1)
	}
	return label
}

// PrettyAge prints the time passed since a moment, in its three most
// significant units. Block ages in the status table use it.
type PrettyAge time.Time

var ageUnits = []struct {
	Size   time.Duration
	Symbol string
}{
	{12 * 30 * 24 * time.Hour, "y"},
	{30 * 24 * time.Hour, "mo"},
	{7 * 24 * time.Hour, "w"},
	{24 * time.Hour, "d"},
	{time.Hour, "h"},
	{time.Minute, "m"},
	{time.Second, "s"},
}

func (t PrettyAge) String() string {
	diff := time.Since(time.Time(t))
	if diff < time.Second {
		return "0"
	}
	var b strings.Builder
	prec := 0
	for _, unit := range ageUnits {
		if diff < unit.Size {
			continue
		}
		fmt.Fprintf(&b, "%d%s", diff/unit.Size, unit.Symbol)
		diff %= unit.Size
		if prec++; prec == 3 {
			break
		}
	}
	return b.String()
}

// StorageSize prints a byte count in binary units.
type StorageSize float64

var storageUnits = []struct {
	Size   float64
	Symbol string
}{
	{1 << 40, "TiB"},
	{1 << 30, "GiB"},
	{1 << 20, "MiB"},
	{1 << 10, "KiB"},
}

func (s StorageSize) String() string {
	for _, unit := range storageUnits {
		if float64(s) > unit.Size {
			return fmt.Sprintf("%.2f %s", float64(s)/unit.Size, unit.Symbol)
		}
	}
	return fmt.Sprintf("%.2f B", float64(s))
}

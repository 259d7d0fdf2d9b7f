package types

import (
	"fmt"
	"strings"

	"github.com/hacash/node/params"
)

const diamondNameChars = "WTYUIAHXVMEKBSZN"

// DiamondName is the six letter name of a diamond.
type DiamondName = Fixed6

// DiamondNumber is the serial number of a diamond, 3 bytes.
type DiamondNumber = Uint3

// IsValidDiamondName checks the length and the alphabet.
func IsValidDiamondName(b []byte) bool {
	if len(b) != 6 {
		return false
	}
	for _, c := range b {
		if !strings.ContainsRune(diamondNameChars, rune(c)) {
			return false
		}
	}
	return true
}

// DiamondNameFromString converts a readable name.
func DiamondNameFromString(s string) (DiamondName, error) {
	var d DiamondName
	if !IsValidDiamondName([]byte(s)) {
		return d, fmt.Errorf("diamond name %s is not valid", s)
	}
	copy(d[:], s)
	return d, nil
}

// DiamondNameList is a 1 byte count list of at most 200 diamond names.
type DiamondNameList struct {
	ListW1[DiamondName, *DiamondName]
}

// DiamondNameListFromString splits a run of six letter names, separators
// are ignored.
func DiamondNameListFromString(s string) (DiamondNameList, error) {
	s = strings.NewReplacer(" ", "", "\n", "", "|", "", ",", "").Replace(s)
	var l DiamondNameList
	if len(s) == 0 {
		return l, fmt.Errorf("diamond list empty")
	}
	if len(s)%6 != 0 {
		return l, fmt.Errorf("diamond list format error")
	}
	for i := 0; i < len(s); i += 6 {
		var d DiamondName
		copy(d[:], s[i:i+6])
		l.Items = append(l.Items, d)
	}
	if _, err := l.Check(); err != nil {
		return DiamondNameList{}, err
	}
	return l, nil
}

// Check validates the count bound, the names and the uniqueness.
func (l DiamondNameList) Check() (int, error) {
	n := len(l.Items)
	if n == 0 {
		return 0, fmt.Errorf("diamonds quantity cannot be zero")
	}
	if n > params.DiamondListMax {
		return 0, fmt.Errorf("diamonds quantity cannot over %d", params.DiamondListMax)
	}
	seen := make(map[DiamondName]struct{}, n)
	for _, d := range l.Items {
		if !IsValidDiamondName(d[:]) {
			return 0, fmt.Errorf("diamond name %s is not valid", string(d[:]))
		}
		if _, ok := seen[d]; ok {
			return 0, fmt.Errorf("diamond name list contains duplicates")
		}
		seen[d] = struct{}{}
	}
	return n, nil
}

// Readable joins the names with commas.
func (l DiamondNameList) Readable() string {
	names := make([]string, len(l.Items))
	for i, d := range l.Items {
		names[i] = string(d[:])
	}
	return strings.Join(names, ",")
}

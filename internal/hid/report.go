package hid

import "fmt"

// ReportSize is the length of a boot keyboard input report.
const ReportSize = 8

// maxKeys is the rollover limit of a boot keyboard report.
const maxKeys = 6

// Report is a boot keyboard input report:
// [modifiers, reserved, key1..key6].
type Report struct {
	Modifiers uint8
	Keys      [maxKeys]uint8
}

// NewReport builds the report that holds every named key down at once.
func NewReport(names []string) (Report, error) {
	var r Report
	n := 0
	for _, name := range names {
		mod, usage, err := Lookup(name)
		if err != nil {
			return Report{}, err
		}
		if mod != 0 {
			r.Modifiers |= mod
			continue
		}
		if n == maxKeys {
			return Report{}, fmt.Errorf("combination %v holds more than %d keys", names, maxKeys)
		}
		r.Keys[n] = usage
		n++
	}
	return r, nil
}

// MarshalTo writes the report into buf and returns the bytes written, or
// 0 when buf is too short.
func (r Report) MarshalTo(buf []byte) int {
	if len(buf) < ReportSize {
		return 0
	}
	buf[0] = r.Modifiers
	buf[1] = 0
	copy(buf[2:ReportSize], r.Keys[:])
	return ReportSize
}

func (r Report) Bytes() []byte {
	buf := make([]byte, ReportSize)
	r.MarshalTo(buf)
	return buf
}

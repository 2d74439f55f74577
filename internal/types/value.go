package types

import (
	"math"
	"strconv"
	"time"
)

// Kind identifies which payload a Value carries.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindString
	KindNumber
	KindBool
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindDate:
		return "date"
	}
	return "empty"
}

// excelEpoch is day zero of the 1900 date system as spreadsheets count it.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Value is a single typed cell value. The zero Value is empty.
//
// Values are comparable and can be used directly as map keys. Two values
// are equal only when both kind and payload match, so the number 5 and the
// string "5" are different values.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
}

func String(s string) Value { return Value{kind: KindString, str: s} }

func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// DateSerial builds a date from a spreadsheet serial day number.
func DateSerial(serial float64) Value { return Value{kind: KindDate, num: serial} }

// Date builds a date value from t, stored as its serial day number.
func Date(t time.Time) Value {
	t = t.UTC()
	d := t.Sub(excelEpoch)
	return DateSerial(d.Hours() / 24)
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

// Truthy reports whether the value counts as "set": empty strings, zero
// numbers and dates, and false are not.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindString:
		return v.str != ""
	case KindNumber, KindDate:
		return v.num != 0 && !math.IsNaN(v.num)
	case KindBool:
		return v.b
	}
	return false
}

// Float returns the numeric payload of numbers and dates.
func (v Value) Float() (float64, bool) {
	if v.kind == KindNumber || v.kind == KindDate {
		return v.num, true
	}
	return 0, false
}

// Time converts a date value back to wall time in UTC.
func (v Value) Time() (time.Time, bool) {
	if v.kind != KindDate {
		return time.Time{}, false
	}
	ms := math.Round(v.num * 24 * 60 * 60 * 1000)
	return excelEpoch.Add(time.Duration(ms) * time.Millisecond), true
}

// Interface returns the payload as a plain Go value for writers such as
// excelize.SetCellValue.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindDate:
		t, _ := v.Time()
		return t
	}
	return nil
}

func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindDate:
		t, _ := v.Time()
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format("2006-01-02 15:04:05")
	}
	return ""
}

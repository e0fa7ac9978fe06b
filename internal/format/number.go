// Package format provides the number and temporal formatters charts refer to
// by format id (d3-format style number specifiers and strftime patterns).
package format

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// SmartNumber is the default number format id.
const SmartNumber = "SMART_NUMBER"

// numberSpec is the supported subset of d3-format: optional grouping comma,
// optional precision, optional "~" to trim trailing zeros, and a type.
var numberSpec = regexp.MustCompile(`^(,)?(?:\.(\d+))?(~)?([dfs%g])$`)

var siPrefixes = map[int]string{
	-24: "y", -21: "z", -18: "a", -15: "f", -12: "p", -9: "n", -6: "µ", -3: "m",
	0: "", 3: "k", 6: "M", 9: "G", 12: "T", 15: "P", 18: "E", 21: "Z", 24: "Y",
}

// NumberFormat formats numbers according to one format id.
type NumberFormat struct {
	id      string
	group   bool
	prec    int
	hasPrec bool
	trim    bool
	kind    byte
	lang    language.Tag
}

// ParseNumberFormat compiles a format id. ok is false when the id is not
// understood; the returned formatter then behaves as SMART_NUMBER.
func ParseNumberFormat(id string) (f *NumberFormat, ok bool) {
	f = &NumberFormat{id: id, lang: language.English}
	if id == "" || strings.EqualFold(id, SmartNumber) {
		f.id = SmartNumber
		return f, true
	}
	m := numberSpec.FindStringSubmatch(id)
	if m == nil {
		f.id = SmartNumber
		return f, false
	}
	f.group = m[1] == ","
	if m[2] != "" {
		f.prec, _ = strconv.Atoi(m[2])
		f.hasPrec = true
	}
	f.trim = m[3] == "~"
	f.kind = m[4][0]
	return f, true
}

// ID returns the format id this formatter implements.
func (f *NumberFormat) ID() string { return f.id }

// FormatNumber implements ports.NumberFormatter.
func (f *NumberFormat) FormatNumber(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	if math.IsInf(v, 0) {
		if v > 0 {
			return "∞"
		}
		return "-∞"
	}
	if f.id == SmartNumber {
		return smartNumber(v)
	}

	switch f.kind {
	case 'd':
		n := math.Round(v)
		if math.Abs(n) >= math.MaxInt64 {
			return f.fixed(n, 0)
		}
		if f.group {
			return message.NewPrinter(f.lang).Sprintf("%d", int64(n))
		}
		return strconv.FormatInt(int64(n), 10)
	case 'f':
		prec := 6
		if f.hasPrec {
			prec = f.prec
		}
		return f.fixed(v, prec)
	case '%':
		prec := 6
		if f.hasPrec {
			prec = f.prec
		}
		return f.fixed(v*100, prec) + "%"
	case 's':
		prec := 6
		if f.hasPrec {
			prec = f.prec
		}
		return siFormat(v, prec, f.trim)
	default: // 'g'
		prec := -1
		if f.hasPrec {
			prec = f.prec
		}
		s := strconv.FormatFloat(v, 'g', prec, 64)
		if f.trim {
			s = trimZeros(s)
		}
		return s
	}
}

func (f *NumberFormat) fixed(v float64, prec int) string {
	var s string
	if f.group {
		s = message.NewPrinter(f.lang).Sprintf("%."+strconv.Itoa(prec)+"f", v)
	} else {
		s = strconv.FormatFloat(v, 'f', prec, 64)
	}
	if f.trim {
		s = trimZeros(s)
	}
	return s
}

// smartNumber picks a representation by magnitude: SI for thousands and up,
// two decimals for ordinary values, four for small ones.
func smartNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	abs := math.Abs(v)
	switch {
	case abs >= 1000:
		return strings.Replace(siFormat(v, 3, true), "G", "B", 1)
	case abs >= 1:
		return trimZeros(strconv.FormatFloat(v, 'f', 2, 64))
	case abs >= 0.001:
		return trimZeros(strconv.FormatFloat(v, 'f', 4, 64))
	default:
		return siFormat(v, 3, true)
	}
}

// siFormat renders v with sig significant digits and an SI prefix.
func siFormat(v float64, sig int, trim bool) string {
	if sig < 1 {
		sig = 1
	}
	if v == 0 {
		return "0"
	}
	abs := math.Abs(v)
	exp := int(math.Floor(math.Log10(abs)/3)) * 3
	exp = clampExp(exp)

	scaled := v / math.Pow(10, float64(exp))
	decimals := sig - digitsBeforePoint(math.Abs(scaled))
	if decimals < 0 {
		decimals = 0
	}
	s := strconv.FormatFloat(scaled, 'f', decimals, 64)

	// Rounding can carry into the next prefix, e.g. 999.95k -> 1000k.
	if r, err := strconv.ParseFloat(s, 64); err == nil && math.Abs(r) >= 1000 && exp < 24 {
		exp += 3
		scaled = v / math.Pow(10, float64(exp))
		decimals = sig - digitsBeforePoint(math.Abs(scaled))
		if decimals < 0 {
			decimals = 0
		}
		s = strconv.FormatFloat(scaled, 'f', decimals, 64)
	}
	if trim {
		s = trimZeros(s)
	}
	return s + siPrefixes[exp]
}

func clampExp(exp int) int {
	if exp < -24 {
		return -24
	}
	if exp > 24 {
		return 24
	}
	return exp
}

func digitsBeforePoint(abs float64) int {
	if abs < 1 {
		return 1
	}
	return int(math.Floor(math.Log10(abs))) + 1
}

func trimZeros(s string) string {
	if !strings.Contains(s, ".") || strings.ContainsAny(s, "eE") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

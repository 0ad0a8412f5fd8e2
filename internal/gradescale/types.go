package gradescale

import (
	"fmt"
	"strings"
)

// ScaleType is the unit a grading scale is denominated in.
type ScaleType string

const (
	Points       ScaleType = "points"
	Percent      ScaleType = "percent"
	Distribution ScaleType = "distrib"
)

// AllTypes lists the scale types in selector order.
var AllTypes = []ScaleType{Points, Percent, Distribution}

func (t ScaleType) Valid() bool {
	switch t {
	case Points, Percent, Distribution:
		return true
	}
	return false
}

// Unit is the suffix shown next to a row value.
func (t ScaleType) Unit() string {
	if t == Points {
		return ""
	}
	return "%"
}

// ValueHeader is the column header of the value column.
func (t ScaleType) ValueHeader() string {
	switch t {
	case Points:
		return "Points"
	case Percent:
		return "Percent"
	case Distribution:
		return "Percent of students"
	}
	return ""
}

// Label is the option text in the type selector.
func (t ScaleType) Label() string {
	switch t {
	case Points:
		return "Points"
	case Percent:
		return "Percent"
	case Distribution:
		return "Distribution"
	}
	return string(t)
}

func ParseScaleType(s string) (ScaleType, error) {
	t := ScaleType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown scale type %q", ErrInvalidArgument, s)
	}
	return t, nil
}
